package handlers

import (
	"errors"
	"log/slog"
	"net/http"

	"github.com/SscSPs/blood_bank_app/internal/apperrors"
	"github.com/gin-gonic/gin"
)

// ErrorResponse is a generic error response structure for handlers.
type ErrorResponse struct {
	Error string `json:"error"`
}

// InsufficientInventoryResponse is returned when an out request exceeds what the scope holds.
type InsufficientInventoryResponse struct {
	Error     string `json:"error"`
	BloodType string `json:"bloodType"`
	Requested int64  `json:"requested"`
	Available int64  `json:"available"`
}

// respondError maps a service error onto a status code and body.
// Unexpected errors are logged and hidden behind fallbackMsg.
func respondError(c *gin.Context, logger *slog.Logger, err error, fallbackMsg string) {
	var insufficient *apperrors.InsufficientInventoryError
	if errors.As(err, &insufficient) {
		logger.Warn("Insufficient inventory", slog.String("error", err.Error()))
		c.JSON(http.StatusBadRequest, InsufficientInventoryResponse{
			Error:     insufficient.Error(),
			BloodType: insufficient.BloodType,
			Requested: insufficient.Requested,
			Available: insufficient.Available,
		})
		return
	}

	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error(fallbackMsg, slog.String("error", err.Error()))
		c.JSON(status, ErrorResponse{Error: fallbackMsg})
		return
	}
	logger.Warn("Request rejected", slog.Int("status", status), slog.String("error", err.Error()))
	c.JSON(status, ErrorResponse{Error: err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrStorageFailure):
		return http.StatusInternalServerError
	case errors.Is(err, apperrors.ErrValidation),
		errors.Is(err, apperrors.ErrInvalidDonor),
		errors.Is(err, apperrors.ErrDuplicateEmail),
		errors.Is(err, apperrors.ErrInvalidBloodType):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrUnauthorized):
		return http.StatusUnauthorized
	case errors.Is(err, apperrors.ErrRoleNotPermitted),
		errors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden
	case errors.Is(err, apperrors.ErrScopeNotFound),
		errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrDuplicate),
		errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}
