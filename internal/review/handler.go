package review

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

type reviewRequest struct {
	Rating  int    `json:"Rating"`
	Comment string `json:"Comentario"`
}

type reviewResponse struct {
	ID        uint      `json:"Id_Review"`
	ProductID uint      `json:"Id_Products"`
	UserID    uint      `json:"Id_User"`
	Rating    int       `json:"Rating"`
	Comment   string    `json:"Comentario"`
	CreatedAt time.Time `json:"Fecha"`
	UpdatedAt time.Time `json:"Fecha_Actualizacion"`
	FirstName string    `json:"usuario_nombre,omitempty"`
	LastName  string    `json:"usuario_apellido,omitempty"`
}

type ratingResponse struct {
	ProductID    uint    `json:"Id_Products"`
	Title        string  `json:"Titulo"`
	TotalReviews int     `json:"Total_Reviews"`
	Average      float64 `json:"Rating_Promedio"`
	FiveStars    int     `json:"Reviews_5_Estrellas"`
	FourStars    int     `json:"Reviews_4_Estrellas"`
	ThreeStars   int     `json:"Reviews_3_Estrellas"`
	TwoStars     int     `json:"Reviews_2_Estrellas"`
	OneStar      int     `json:"Reviews_1_Estrella"`
}

func toResponse(rv *Review) reviewResponse {
	return reviewResponse{
		ID:        rv.ID,
		ProductID: rv.ProductID,
		UserID:    rv.UserID,
		Rating:    rv.Rating,
		Comment:   rv.Comment,
		CreatedAt: rv.CreatedAt,
		UpdatedAt: rv.UpdatedAt,
		FirstName: rv.FirstName,
		LastName:  rv.LastName,
	}
}

func toRatingResponse(rt *Rating) ratingResponse {
	return ratingResponse{
		ProductID:    rt.ProductID,
		Title:        rt.Title,
		TotalReviews: rt.TotalReviews,
		Average:      rt.Average,
		FiveStars:    rt.FiveStars,
		FourStars:    rt.FourStars,
		ThreeStars:   rt.ThreeStars,
		TwoStars:     rt.TwoStars,
		OneStar:      rt.OneStar,
	}
}

func (h *Handler) List(w http.ResponseWriter, r *http.Request) {
	productID, err := transport.PathID(r, "id")
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}

	items, err := h.svc.ListForProduct(r.Context(), productID)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}

	out := make([]reviewResponse, 0, len(items))
	for i := range items {
		out = append(out, toResponse(&items[i]))
	}
	transport.WriteJSON(w, http.StatusOK, map[string]any{"total": len(out), "reviews": out})
}

func (h *Handler) Create(w http.ResponseWriter, r *http.Request) {
	productID, err := transport.PathID(r, "id")
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}

	var req reviewRequest
	if err := transport.DecodeJSON(r, &req); err != nil {
		transport.WriteError(w, r, err)
		return
	}

	rv, err := h.svc.Create(r.Context(), productID, Input{Rating: req.Rating, Comment: req.Comment})
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusCreated, toResponse(rv))
}

func (h *Handler) GetMine(w http.ResponseWriter, r *http.Request) {
	productID, err := transport.PathID(r, "id")
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}

	rv, err := h.svc.GetMine(r.Context(), productID)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	if rv == nil {
		transport.WriteJSON(w, http.StatusOK, map[string]any{"review": nil})
		return
	}
	transport.WriteJSON(w, http.StatusOK, map[string]any{"review": toResponse(rv)})
}

func (h *Handler) UpdateMine(w http.ResponseWriter, r *http.Request) {
	productID, err := transport.PathID(r, "id")
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}

	var req reviewRequest
	if err := transport.DecodeJSON(r, &req); err != nil {
		transport.WriteError(w, r, err)
		return
	}

	rv, err := h.svc.UpdateMine(r.Context(), productID, Input{Rating: req.Rating, Comment: req.Comment})
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, toResponse(rv))
}

func (h *Handler) DeleteMine(w http.ResponseWriter, r *http.Request) {
	productID, err := transport.PathID(r, "id")
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}

	if err := h.svc.DeleteMine(r.Context(), productID); err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, map[string]string{"mensaje": "Reseña eliminada"})
}

func (h *Handler) Rating(w http.ResponseWriter, r *http.Request) {
	productID, err := transport.PathID(r, "id")
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}

	rt, err := h.svc.Rating(r.Context(), productID)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, map[string]any{"rating": toRatingResponse(rt)})
}

func (h *Handler) AllRatings(w http.ResponseWriter, r *http.Request) {
	items, err := h.svc.AllRatings(r.Context())
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}

	out := make([]ratingResponse, 0, len(items))
	for i := range items {
		out = append(out, toRatingResponse(&items[i]))
	}
	transport.WriteJSON(w, http.StatusOK, map[string]any{"ratings": out})
}
