package category

import (
	"net/http"
	"strconv"

	"miaumarket-be/internal/transport"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

type categoryResponse struct {
	Name     string `json:"Categoria"`
	Products int    `json:"Total_Productos"`
}

// List serves GET /categorias/?q=&limit=&page=.
func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	limit, _ := strconv.Atoi(q.Get("limit"))
	page, _ := strconv.Atoi(q.Get("page"))

	items, total, err := h.svc.List(r.Context(), q.Get("q"), limit, page)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}

	out := make([]categoryResponse, 0, len(items))
	for _, c := range items {
		out = append(out, categoryResponse{Name: c.Name, Products: c.Products})
	}
	transport.WriteJSON(w, http.StatusOK, map[string]any{
		"total":      total,
		"categorias": out,
	})
}
