package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	e "github.com/gartstein/cadastro/internal/cadastro/errors"
	"go.uber.org/zap"
)

const maxBodyBytes = 1 << 20

// ErrorResponse is the body of every error reply.
type ErrorResponse struct {
	Error string `json:"error"`
}

func respondJSON(w http.ResponseWriter, status int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if payload != nil {
		_ = json.NewEncoder(w).Encode(payload)
	}
}

// mapServiceError maps service errors to an HTTP status and a client safe message.
func mapServiceError(err error) (int, string) {
	switch {
	case errors.Is(err, e.ErrNotFound):
		return http.StatusNotFound, err.Error()
	case errors.Is(err, e.ErrInvalidInput):
		return http.StatusBadRequest, err.Error()
	case errors.Is(err, e.ErrConflict):
		return http.StatusConflict, err.Error()
	case errors.Is(err, e.ErrUnavailable):
		return http.StatusServiceUnavailable, err.Error()
	default:
		return http.StatusInternalServerError, "internal server error"
	}
}

// outcome labels an operation result for metrics.
func outcome(err error) string {
	switch {
	case err == nil:
		return "success"
	case errors.Is(err, e.ErrNotFound):
		return "not_found"
	case errors.Is(err, e.ErrInvalidInput):
		return "invalid"
	case errors.Is(err, e.ErrConflict):
		return "conflict"
	case errors.Is(err, e.ErrUnavailable):
		return "unavailable"
	default:
		return "error"
	}
}

func (h *Handler) respondError(w http.ResponseWriter, r *http.Request, op string, err error) {
	h.metrics.ObserveOperation(op, outcome(err))
	status, msg := mapServiceError(err)
	if status == http.StatusInternalServerError {
		h.logger.Error("request failed",
			zap.String("operation", op),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.Error(err),
		)
	}
	respondJSON(w, status, ErrorResponse{Error: msg})
}

func (h *Handler) respondOK(w http.ResponseWriter, op string, status int, payload interface{}) {
	h.metrics.ObserveOperation(op, outcome(nil))
	respondJSON(w, status, payload)
}

// decodeJSON reads a single JSON document from the request body.
func decodeJSON(w http.ResponseWriter, r *http.Request, dst interface{}) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return fmt.Errorf("%w: invalid JSON body: %v", e.ErrInvalidInput, err)
	}
	return nil
}
