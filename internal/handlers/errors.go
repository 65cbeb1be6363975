package handlers

import (
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"github.com/SscSPs/erp_ledger_engine/internal/apperrors"
	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
)

// statusFor maps an error category to an HTTP status.
func statusFor(err error) int {
	switch {
	case errors.Is(err, apperrors.ErrValidation):
		return http.StatusBadRequest
	case errors.Is(err, apperrors.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, apperrors.ErrDuplicate), errors.Is(err, apperrors.ErrConflict):
		return http.StatusConflict
	case errors.Is(err, apperrors.ErrForbidden):
		return http.StatusForbidden
	default:
		return http.StatusInternalServerError
	}
}

// respondError writes err with the status of its category. Internal failures are logged
// at error level and their detail is not exposed.
func respondError(c *gin.Context, logger *slog.Logger, err error, failure string) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		logger.Error(failure, slog.String("error", err.Error()))
		c.JSON(status, gin.H{"error": failure})
		return
	}
	logger.Warn(failure, slog.String("error", err.Error()), slog.Int("status", status))
	c.JSON(status, gin.H{"error": err.Error()})
}

// respondBindError reports request binding failures, listing each failed field.
func respondBindError(c *gin.Context, logger *slog.Logger, err error) {
	logger.Warn("Failed to bind request", slog.String("error", err.Error()))

	var verrs validator.ValidationErrors
	if errors.As(err, &verrs) {
		fields := make([]string, 0, len(verrs))
		for _, fe := range verrs {
			fields = append(fields, fieldMessage(fe))
		}
		c.JSON(http.StatusBadRequest, gin.H{"error": "Validation failed", "fields": fields})
		return
	}
	c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request format: " + err.Error()})
}

func fieldMessage(fe validator.FieldError) string {
	field := fe.Namespace()
	if i := strings.Index(field, "."); i >= 0 {
		field = field[i+1:]
	}
	if fe.Param() != "" {
		return fmt.Sprintf("%s: failed '%s=%s'", field, fe.Tag(), fe.Param())
	}
	return fmt.Sprintf("%s: failed '%s'", field, fe.Tag())
}
