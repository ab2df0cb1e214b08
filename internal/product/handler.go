package product

import (
	"context"
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"miaumarket-be/internal/apperr"
	"miaumarket-be/internal/transport"
	"miaumarket-be/internal/utils"

	"github.com/shopspring/decimal"
)

// Sweeper is the part of ExpirySweeper the HTTP trigger needs.
type Sweeper interface {
	Sweep(ctx context.Context) (int, error)
}

type Handler struct {
	svc     Service
	sweeper Sweeper
}

func NewHandler(svc Service, sweeper Sweeper) *Handler {
	return &Handler{svc: svc, sweeper: sweeper}
}

type productRequest struct {
	Title       *string          `json:"Titulo"`
	Description *string          `json:"Descripcion"`
	Category    *string          `json:"Categoria"`
	Price       *decimal.Decimal `json:"Precio"`
	Stock       *int             `json:"Stock"`
	Image       *string          `json:"Imagen"`
	ExpiresOn   *string          `json:"Fecha_Caducidad"`
}

type productResponse struct {
	ID          uint        `json:"Id_Products"`
	Title       string      `json:"Titulo"`
	Description string      `json:"Descripcion"`
	Category    string      `json:"Categoria"`
	Price       json.Number `json:"Precio"`
	Stock       int         `json:"Stock"`
	Image       string      `json:"Imagen"`
	ExpiresOn   *string     `json:"Fecha_Caducidad"`
	CreatedBy   *uint       `json:"created_by"`
	CreatedAt   time.Time   `json:"Fecha_creacion"`
}

func toResponse(p *Product) productResponse {
	resp := productResponse{
		ID:          p.ID,
		Title:       p.Title,
		Description: p.Description,
		Category:    p.Category,
		Price:       json.Number(p.Price.StringFixed(2)),
		Stock:       p.Stock,
		Image:       p.Image,
		CreatedBy:   p.CreatedBy,
		CreatedAt:   p.CreatedAt,
	}
	if p.ExpiresOn != nil {
		d := p.ExpiresOn.Format(dateLayout)
		resp.ExpiresOn = &d
	}
	return resp
}

// parseExpiry returns (date, clear). An empty string clears the date.
func parseExpiry(raw *string, fields apperr.FieldErrors) (*time.Time, bool) {
	if raw == nil {
		return nil, false
	}
	v := strings.TrimSpace(*raw)
	if v == "" {
		return nil, true
	}
	t, err := time.Parse(dateLayout, v)
	if err != nil {
		fields.Add("Fecha_Caducidad", msgInvalidDate)
		return nil, false
	}
	return &t, false
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.List(r.Context(), r.URL.Query().Get("categoria"))
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}

	out := make([]productResponse, 0, len(items))
	for i := range items {
		out = append(out, toResponse(&items[i]))
	}
	transport.WriteJSON(w, http.StatusOK, out)
}

func (h *Handler) Get(w http.ResponseWriter, r *http.Request) {
	id, err := transport.PathID(r, "id")
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}

	p, err := h.svc.Get(r.Context(), id)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, toResponse(p))
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	var req productRequest
	if err := transport.DecodeJSON(r, &req); err != nil {
		transport.WriteError(w, r, err)
		return
	}

	fields := apperr.FieldErrors{}
	if req.Price == nil {
		fields.Add("Precio", msgRequired)
	}
	expiresOn, _ := parseExpiry(req.ExpiresOn, fields)
	if !fields.Empty() {
		transport.WriteError(w, r, fields.Err())
		return
	}

	params := CreateParams{
		Title:       utils.PtrString(req.Title),
		Description: utils.PtrString(req.Description),
		Category:    utils.PtrString(req.Category),
		Price:       *req.Price,
		Image:       utils.PtrString(req.Image),
		ExpiresOn:   expiresOn,
	}
	if req.Stock != nil {
		params.Stock = *req.Stock
	}

	p, err := h.svc.Create(r.Context(), params)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusCreated, toResponse(p))
}

func (h *Handler) Update(w http.ResponseWriter, r *http.Request) {
	id, err := transport.PathID(r, "id")
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}

	var req productRequest
	if err := transport.DecodeJSON(r, &req); err != nil {
		transport.WriteError(w, r, err)
		return
	}

	fields := apperr.FieldErrors{}
	expiresOn, clearExpiry := parseExpiry(req.ExpiresOn, fields)
	if !fields.Empty() {
		transport.WriteError(w, r, fields.Err())
		return
	}

	p, err := h.svc.Update(r.Context(), UpdateParams{
		ID:          id,
		Title:       req.Title,
		Description: req.Description,
		Category:    req.Category,
		Price:       req.Price,
		Stock:       req.Stock,
		Image:       req.Image,
		ExpiresOn:   expiresOn,
		ClearExpiry: clearExpiry,
	})
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, toResponse(p))
}

func (h *Handler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := transport.PathID(r, "id")
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}

	if err := h.svc.Delete(r.Context(), id); err != nil {
		transport.WriteError(w, r, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// SweepExpired is the admin trigger for the expiry sweep.
func (h *Handler) SweepExpired(w http.ResponseWriter, r *http.Request) {
	created, err := h.sweeper.Sweep(r.Context())
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, map[string]any{
		"mensaje": "Verificación de productos caducados completada",
		"creadas": created,
	})
}
