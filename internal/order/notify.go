package order

import (
	"fmt"

	"miaumarket-be/internal/notification"
)

func newOrderAlert(adminID uint, o *Order) *notification.Notification {
	id := o.ID
	return &notification.Notification{
		UserID:  adminID,
		Title:   "Nuevo pedido",
		Message: fmt.Sprintf("%s realizó el pedido #%d (%s) por $%s.", o.CustomerName, o.ID, o.InvoiceNumber, o.Total.StringFixed(2)),
		Type:    notification.TypeNewOrder,
		OrderID: &id,
	}
}

func orderConfirmation(o *Order) *notification.Notification {
	id := o.ID
	return &notification.Notification{
		UserID:  o.UserID,
		Title:   "Pedido confirmado",
		Message: fmt.Sprintf("Recibimos tu pedido #%d (%s). Te avisaremos cuando sea enviado.", o.ID, o.InvoiceNumber),
		Type:    notification.TypeOrderConfirmed,
		OrderID: &id,
	}
}

func statusNotice(o *Order) *notification.Notification {
	id := o.ID
	n := &notification.Notification{UserID: o.UserID, OrderID: &id}

	switch o.Status {
	case StatusShipped:
		n.Type = notification.TypeOrderShipped
		n.Title = "Pedido enviado"
		n.Message = fmt.Sprintf("Tu pedido #%d está en camino a %s.", o.ID, o.ShippingAddress)
	case StatusDelivered:
		n.Type = notification.TypeOrderDelivered
		n.Title = "Pedido entregado"
		n.Message = fmt.Sprintf("Tu pedido #%d fue entregado. ¡Gracias por comprar en MiauMarket!", o.ID)
	case StatusReturned:
		n.Type = notification.TypeOrderReturned
		n.Title = "Pedido devuelto"
		n.Message = fmt.Sprintf("Tu pedido #%d fue marcado como devuelto.", o.ID)
	default:
		n.Type = notification.TypeOrderConfirmed
		n.Title = "Pedido confirmado"
		n.Message = fmt.Sprintf("Tu pedido #%d está pendiente de envío.", o.ID)
	}
	return n
}
