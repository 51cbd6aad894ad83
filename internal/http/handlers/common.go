package handlers

import (
	"net/http"

	"naco/internal/services"

	"github.com/gin-gonic/gin"
)

// API carries the services the HTTP handlers call.
type API struct {
	Lifecycle     *services.Lifecycle
	Auth          services.AuthService
	Directory     services.DirectoryService
	Notifications services.NotificationService
	Receipts      services.ReceiptService
}

// BindJSONOrError ensures body is present and parsable.
func BindJSONOrError[T any](c *gin.Context, dst *T) bool {
	if c.Request.Body == nil || c.Request.ContentLength == 0 {
		respondError(c, http.StatusBadRequest, "invalid_body", "empty body", nil)
		return false
	}
	if err := c.ShouldBindJSON(dst); err != nil {
		respondError(c, http.StatusBadRequest, "invalid_json", "invalid payload", err.Error())
		return false
	}
	return true
}
