package handlers

import (
	"errors"
	"net/http"

	"naco/internal/domain"
	"naco/internal/http/middleware"
	"naco/internal/services"
	"naco/internal/utils"

	"github.com/gin-gonic/gin"
)

// ErrorResponse standardizes error payloads.
type ErrorResponse struct {
	Error   string `json:"error"`
	Code    string `json:"code,omitempty"`
	Details any    `json:"details,omitempty"`
}

func respondError(c *gin.Context, status int, code, message string, details any) {
	if code == "" {
		code = http.StatusText(status)
	}
	resp := ErrorResponse{
		Error:   message,
		Code:    code,
		Details: details,
	}
	reqID := middleware.GetRequestID(c)
	if reqID != "" {
		c.JSON(status, gin.H{
			"error":      resp.Error,
			"code":       resp.Code,
			"details":    resp.Details,
			"request_id": reqID,
			"message":    message,
		})
		return
	}
	c.JSON(status, resp)
}

// RespondDomainError maps domain errors to HTTP responses.
func RespondDomainError(c *gin.Context, err error) {
	var verr domain.ValidationError
	switch {
	case domain.IsInvalidBooking(err):
		respondError(c, http.StatusBadRequest, "invalid_booking", err.Error(), fieldDetails(err))
	case domain.IsInvalidReview(err):
		respondError(c, http.StatusBadRequest, "invalid_review", err.Error(), fieldDetails(err))
	case errors.As(err, &verr):
		respondError(c, http.StatusBadRequest, "validation_error", err.Error(), fieldDetails(err))
	case errors.Is(err, services.ErrInvalidCredentials), errors.Is(err, services.ErrInvalidToken):
		respondError(c, http.StatusUnauthorized, "unauthenticated", err.Error(), nil)
	case domain.IsUnauthorized(err):
		respondError(c, http.StatusForbidden, "unauthorized", err.Error(), nil)
	case domain.IsNotFound(err):
		respondError(c, http.StatusNotFound, "not_found", err.Error(), nil)
	case domain.IsInvalidTransition(err):
		var terr domain.TransitionError
		errors.As(err, &terr)
		respondError(c, http.StatusConflict, "invalid_transition", err.Error(), gin.H{
			"status": terr.From,
			"action": terr.Action,
		})
	case domain.IsConflict(err):
		respondError(c, http.StatusConflict, "conflict", err.Error(), nil)
	default:
		utils.LogEvent(middleware.GetRequestID(c), "http", "error", err.Error())
		respondError(c, http.StatusInternalServerError, "internal_error", "internal error", nil)
	}
}

func fieldDetails(err error) any {
	var verr domain.ValidationError
	if errors.As(err, &verr) && verr.Field != "" {
		return gin.H{"field": verr.Field}
	}
	return nil
}
