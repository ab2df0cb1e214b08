package transport

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"

	"miaumarket-be/internal/apperr"
	"miaumarket-be/internal/logger"
	"miaumarket-be/internal/utils"

	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if v == nil {
		return
	}
	_ = json.NewEncoder(w).Encode(v)
}

// WriteError maps err to a status code through its apperr kind. Unclassified
// errors are logged and answered with a generic 500.
func WriteError(w http.ResponseWriter, r *http.Request, err error) {
	var appErr *apperr.Error
	if !errors.As(err, &appErr) {
		logger.FromCtx(r.Context()).Error("unhandled error",
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
		WriteJSON(w, http.StatusInternalServerError, map[string]string{"error": "internal server error"})
		return
	}

	body := map[string]any{"error": err.Error()}
	if len(appErr.Fields) > 0 {
		body["fields"] = appErr.Fields
	}
	WriteJSON(w, appErr.Kind.HTTPStatus(), body)
}

// DecodeJSON reads a single JSON document from the request body into dst.
func DecodeJSON(r *http.Request, dst any) error {
	dec := json.NewDecoder(io.LimitReader(r.Body, maxBodyBytes))
	if err := dec.Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.Validation("request body is empty")
		}
		return apperr.Validation(fmt.Sprintf("invalid JSON body: %v", err))
	}
	return nil
}

// PathID parses a positive integer path value such as {id}.
func PathID(r *http.Request, name string) (uint, error) {
	raw := r.PathValue(name)
	id, err := utils.ToUint(raw)
	if err != nil || id == 0 {
		return 0, apperr.Validation(fmt.Sprintf("invalid %s %q", name, raw))
	}
	return id, nil
}
