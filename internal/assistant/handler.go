package assistant

import (
	"net/http"

	"miaumarket-be/internal/transport"
)

type Handler struct {
	svc Service
}

func NewHandler(svc Service) *Handler {
	return &Handler{svc: svc}
}

// Chat answers 200 for every valid message, even when the model is down.
func (h *Handler) Chat(w http.ResponseWriter, r *http.Request) {
	var req ChatRequest
	if err := transport.DecodeJSON(r, &req); err != nil {
		transport.WriteError(w, r, err)
		return
	}

	resp, err := h.svc.Chat(r.Context(), req)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, resp)
}

func (h *Handler) Describe(w http.ResponseWriter, r *http.Request) {
	var req DescribeRequest
	if err := transport.DecodeJSON(r, &req); err != nil {
		transport.WriteError(w, r, err)
		return
	}

	resp, err := h.svc.Describe(r.Context(), req)
	if err != nil {
		transport.WriteError(w, r, err)
		return
	}
	transport.WriteJSON(w, http.StatusOK, resp)
}
