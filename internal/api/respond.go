package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"go.uber.org/zap"

	"github.com/emsi-platform/studyhub/internal/apperr"
	"github.com/emsi-platform/studyhub/internal/chat"
)

type errorResponse struct {
	Detail string `json:"detail"`
}

func (h *Handler) writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		h.logger.Error("Failed to encode response", zap.Error(err))
	}
}

func (h *Handler) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.HTTPStatus(err)
	fields := []zap.Field{
		zap.Error(err),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Int("status", status),
		zap.String("request_id", RequestIDFromContext(r.Context())),
	}
	if status >= http.StatusInternalServerError {
		h.logger.Error("Request failed", fields...)
	} else {
		h.logger.Info("Request rejected", fields...)
	}
	h.writeJSON(w, status, errorResponse{Detail: apperr.MessageOf(err)})
}

// decodeJSON reads at most h.maxBody bytes of JSON into v.
func (h *Handler) decodeJSON(w http.ResponseWriter, r *http.Request, v any) error {
	r.Body = http.MaxBytesReader(w, r.Body, h.maxBody)
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			return apperr.Invalid("request body exceeds %d bytes", tooLarge.Limit)
		}
		return apperr.Wrap(apperr.KindInvalid, err, "invalid request body")
	}
	return nil
}

// requireUser returns the caller id set by the identity middleware.
func requireUser(r *http.Request) (string, error) {
	id := chat.UserFromContext(r.Context())
	if id == "" {
		return "", apperr.New(apperr.KindUnauthenticated, fmt.Sprintf("%s header required", userHeader))
	}
	return id, nil
}
