package handlers

import (
	"errors"
	"net/http"

	e "github.com/gartstein/registry/internal/registry/errors"
	"go.uber.org/zap"
)

// handleServiceError maps registry errors to HTTP status codes.
func (h *RegistryHandler) handleServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, e.ErrNotFound):
		h.respondError(w, http.StatusNotFound, "not found", err.Error())
	case errors.Is(err, e.ErrDuplicateName):
		h.respondError(w, http.StatusConflict, "conflict", err.Error())
	case errors.Is(err, e.ErrInvalidInput):
		h.respondError(w, http.StatusBadRequest, "invalid input", err.Error())
	default:
		h.logger.Error("unexpected service error", zap.Error(err))
		h.respondError(w, http.StatusInternalServerError, "internal server error", "")
	}
}
