package notification

import (
	"fmt"
	"time"
)

type Type string

const (
	TypeNewOrder       Type = "nuevo_pedido"
	TypeOrderConfirmed Type = "pedido_confirmado"
	TypeOrderShipped   Type = "pedido_enviado"
	TypeOrderDelivered Type = "pedido_entregado"
	TypeOrderReturned  Type = "pedido_devuelto"
	TypeProductExpired Type = "producto_caducado"
)

// Retention caps: only the newest N notifications per recipient survive a write.
const (
	AdminCap = 10
	UserCap  = 7
)

func CapFor(isAdmin bool) int {
	if isAdmin {
		return AdminCap
	}
	return UserCap
}

type Notification struct {
	ID        uint
	UserID    uint
	Title     string
	Message   string
	Type      Type
	OrderID   *uint
	IsRead    bool
	CreatedAt time.Time
}

// productMarker ends every expiry alert so the sweep can recognise an alert
// it already sent for the same product. Only the suffix is matched, since the
// title earlier in the message is free text.
func productMarker(productID uint) string {
	return fmt.Sprintf("(ID %d)", productID)
}

func ExpiredProductAlert(adminID, productID uint, title string) *Notification {
	return &Notification{
		UserID:  adminID,
		Title:   "⚠️ Producto Caducado",
		Message: fmt.Sprintf("El producto de comida \"%s\" ha caducado hoy %s", title, productMarker(productID)),
		Type:    TypeProductExpired,
	}
}
