package order

import (
	"encoding/json"
	"net/http"
	"time"

	"miaumarket-be/internal/transport"

	"github.com/shopspring/decimal"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

type lineRequest struct {
	ProductID uint            `json:"Id_Products"`
	Quantity  int             `json:"Cantidad"`
	UnitPrice decimal.Decimal `json:"Precio_Unitario"`
}

type placeOrderRequest struct {
	UserID          uint            `json:"Id_User"`
	Total           decimal.Decimal `json:"Total"`
	PaymentMethod   string          `json:"Metodo_Pago"`
	ShippingAddress string          `json:"direccion_envio"`
	ShippingPhone   string          `json:"telefono_envio"`
	Lines           []lineRequest   `json:"productos"`
}

type updateStatusRequest struct {
	Status string `json:"Estado"`
}

type lineResponse struct {
	ID           uint        `json:"id"`
	ProductID    uint        `json:"Id_Products"`
	ProductTitle string      `json:"Titulo"`
	Quantity     int         `json:"Cantidad"`
	UnitPrice    json.Number `json:"Precio_Unitario"`
	Subtotal     json.Number `json:"Subtotal"`
}

type orderResponse struct {
	ID              uint           `json:"Id_Factura"`
	InvoiceNumber   string         `json:"Numero_Factura"`
	UserID          uint           `json:"Id_User"`
	CustomerName    string         `json:"Cliente"`
	Total           json.Number    `json:"Total"`
	PaymentMethod   string         `json:"Metodo_Pago"`
	Status          Status         `json:"Estado"`
	ShippingAddress string         `json:"direccion_envio"`
	ShippingPhone   string         `json:"telefono_envio"`
	CreatedAt       time.Time      `json:"Fecha"`
	UpdatedAt       time.Time      `json:"Fecha_Actualizacion"`
	Lines           []lineResponse `json:"productos"`
}

func money(d decimal.Decimal) json.Number {
	return json.Number(d.StringFixed(2))
}

func toResponse(o *Order) orderResponse {
	lines := make([]lineResponse, 0, len(o.Lines))
	for _, l := range o.Lines {
		lines = append(lines, lineResponse{
			ID:           l.ID,
			ProductID:    l.ProductID,
			ProductTitle: l.ProductTitle,
			Quantity:     l.Quantity,
			UnitPrice:    money(l.UnitPrice),
			Subtotal:     money(l.Subtotal),
		})
	}
	return orderResponse{
		ID:              o.ID,
		InvoiceNumber:   o.InvoiceNumber,
		UserID:          o.UserID,
		CustomerName:    o.CustomerName,
		Total:           money(o.Total),
		PaymentMethod:   o.PaymentMethod,
		Status:          o.Status,
		ShippingAddress: o.ShippingAddress,
		ShippingPhone:   o.ShippingPhone,
		CreatedAt:       o.CreatedAt,
		UpdatedAt:       o.UpdatedAt,
		Lines:           lines,
	}
}

func toResponses(orders []Order) []orderResponse {
	out := make([]orderResponse, 0, len(orders))
	for i := range orders {
		out = append(out, toResponse(&orders[i]))
	}
	return out
}

func (h *Handler) Place(w http.ResponseWriter, r *http.Request) {
	var req placeOrderRequest
	if err := transport.DecodeJSON(r, &req); err != nil {
		transport.WriteError(w, r, err)
		return
	}

	params := PlaceOrderParams{
		UserID:          req.UserID,
		Total:           req.Total,
		PaymentMethod:   req.PaymentMethod,
		ShippingAddress: req.ShippingAddress,
		ShippingPhone:   req.ShippingPhone,
	}
	for _, l := range req.Lines {
		params.Lines = append(params.Lines, LineParams{
			ProductID: l.ProductID,
			Quantity:  l.Quantity,
			UnitPrice: l.UnitPrice,
		})
	}

	o, err := h.svc.PlaceOrder(r.Context(), params)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}

	transport.WriteJSON(w, http.StatusCreated, map[string]any{
		"mensaje":        "Pedido creado exitosamente",
		"Id_Factura":     o.ID,
		"Numero_Factura": o.InvoiceNumber,
	})
}

func (h *Handler) UpdateStatus(w http.ResponseWriter, r *http.Request) {
	id, err := transport.PathID(r, "id")
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}

	var req updateStatusRequest
	if err := transport.DecodeJSON(r, &req); err != nil {
		transport.WriteError(w, r, err)
		return
	}

	o, err := h.svc.UpdateStatus(r.Context(), id, req.Status)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, toResponse(o))
}

func (h *Handler) ListMine(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.ListMine(r.Context())
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, toResponses(orders))
}

func (h *Handler) ListAll(w http.ResponseWriter, r *http.Request) {
	orders, err := h.svc.ListAll(r.Context())
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, toResponses(orders))
}
