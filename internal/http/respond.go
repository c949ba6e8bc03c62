package http

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/nikolayk812/foodie/internal/app"
	"github.com/nikolayk812/foodie/internal/auth"
	"github.com/nikolayk812/foodie/internal/checkout"
	"github.com/nikolayk812/foodie/internal/domain"
	"go.uber.org/zap"
)

type ErrorResponse struct {
	Error  string          `json:"error"`
	Code   string          `json:"code,omitempty"`
	Fields []FieldErrorDTO `json:"fields,omitempty"`
}

type FieldErrorDTO struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

func respondJSON(w http.ResponseWriter, logger *zap.Logger, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Warn("failed to encode response", zap.Error(err))
	}
}

func respondError(w http.ResponseWriter, logger *zap.Logger, status int, code, message string) {
	respondJSON(w, logger, status, ErrorResponse{
		Error: message,
		Code:  code,
	})
}

// handleAppError maps the domain error taxonomy to HTTP statuses.
func handleAppError(w http.ResponseWriter, logger *zap.Logger, err error) {
	var verr *domain.ValidationError
	if errors.As(err, &verr) {
		fields := make([]FieldErrorDTO, 0, len(verr.Fields))
		for _, f := range verr.Fields {
			fields = append(fields, FieldErrorDTO{Field: f.Field, Message: f.Message})
		}
		respondJSON(w, logger, http.StatusUnprocessableEntity, ErrorResponse{
			Error:  "validation failed",
			Code:   "validation_failed",
			Fields: fields,
		})
		return
	}

	switch {
	case errors.Is(err, domain.ErrUnknownItem):
		respondError(w, logger, http.StatusNotFound, "unknown_item", err.Error())
	case errors.Is(err, auth.ErrInvalidCredentials):
		respondError(w, logger, http.StatusUnauthorized, "invalid_credentials", err.Error())
	case errors.Is(err, checkout.ErrEmptyCart):
		respondError(w, logger, http.StatusConflict, "empty_cart", err.Error())
	case errors.Is(err, checkout.ErrSubmissionInProgress):
		respondError(w, logger, http.StatusConflict, "submission_in_progress", err.Error())
	case errors.Is(err, checkout.ErrIllegalTransition):
		respondError(w, logger, http.StatusConflict, "illegal_transition", err.Error())
	case errors.Is(err, app.ErrOrderingDisabled), errors.Is(err, domain.ErrCatalogUnavailable):
		respondError(w, logger, http.StatusServiceUnavailable, "catalog_unavailable", err.Error())
	case errors.Is(err, domain.ErrSubmissionFailed):
		respondError(w, logger, http.StatusBadGateway, "submission_failed", err.Error())
	default:
		logger.Error("unhandled error", zap.Error(err))
		respondError(w, logger, http.StatusInternalServerError, "internal_error", "internal server error")
	}
}
