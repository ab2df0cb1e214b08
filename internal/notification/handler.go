package notification

import (
	"net/http"
	"time"

	"miaumarket-be/internal/transport"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

type notificationResponse struct {
	ID        uint      `json:"id"`
	UserID    uint      `json:"Id_User"`
	Title     string    `json:"Titulo"`
	Message   string    `json:"Mensaje"`
	Type      Type      `json:"Tipo"`
	OrderID   *uint     `json:"Id_Factura"`
	IsRead    bool      `json:"Leida"`
	CreatedAt time.Time `json:"Fecha_Creacion"`
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context())
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}

	out := make([]notificationResponse, 0, len(items))
	for _, n := range items {
		out = append(out, notificationResponse{
			ID:        n.ID,
			UserID:    n.UserID,
			Title:     n.Title,
			Message:   n.Message,
			Type:      n.Type,
			OrderID:   n.OrderID,
			IsRead:    n.IsRead,
			CreatedAt: n.CreatedAt,
		})
	}
	transport.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) MarkRead(w http.ResponseWriter, r *http.Request) {
	id, err := transport.PathID(r, "id")
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}

	if err := h.svc.MarkRead(r.Context(), id); err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, map[string]string{"mensaje": "Notificación marcada como leída"})
}

func (h *Handler) MarkAllRead(w http.ResponseWriter, r *http.Request) {
	n, err := h.svc.MarkAllRead(r.Context())
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, map[string]any{
		"mensaje":      "Todas las notificaciones marcadas como leídas",
		"actualizadas": n,
	})
}
