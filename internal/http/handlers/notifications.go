package handlers

import (
	"net/http"
	"strconv"

	"naco/internal/http/middleware"

	"github.com/gin-gonic/gin"
)

// GET /api/notifications?unread=true
func (a *API) ListNotifications(c *gin.Context) {
	unread, _ := strconv.ParseBool(c.DefaultQuery("unread", "false"))
	out, err := a.Notifications.List(c.Request.Context(), middleware.Identity(c).UserID, unread)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, out)
}

// PATCH /api/notifications/:id/read
func (a *API) MarkNotificationRead(c *gin.Context) {
	if err := a.Notifications.MarkRead(c.Request.Context(), c.Param("id"), middleware.Identity(c).UserID); err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

// POST /api/notifications/read-all
func (a *API) MarkAllNotificationsRead(c *gin.Context) {
	n, err := a.Notifications.MarkAllRead(c.Request.Context(), middleware.Identity(c).UserID)
	if err != nil {
		RespondDomainError(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"ok": true, "updated": n})
}
