package middleware

import (
	"net/http"
	"strings"

	"naco/internal/domain"

	"github.com/gin-gonic/gin"
)

const (
	userIDKey   = "userID"
	userRoleKey = "userRole"
)

// TokenParser turns a bearer token into the caller's identity.
type TokenParser interface {
	ParseToken(raw string) (domain.RequestContext, error)
}

// RequireAuth rejects requests without a valid bearer token and stores
// userID and userRole on the context.
func RequireAuth(p TokenParser) gin.HandlerFunc {
	return func(c *gin.Context) {
		header := strings.TrimSpace(c.GetHeader("Authorization"))
		raw, found := strings.CutPrefix(header, "Bearer ")
		if !found || strings.TrimSpace(raw) == "" {
			abortAuth(c, http.StatusUnauthorized, "missing bearer token")
			return
		}
		rc, err := p.ParseToken(strings.TrimSpace(raw))
		if err != nil {
			abortAuth(c, http.StatusUnauthorized, err.Error())
			return
		}
		c.Set(userIDKey, rc.UserID)
		c.Set(userRoleKey, string(rc.Role))
		c.Next()
	}
}

// RequireRoles only lets through callers whose userRole is one of allowedRoles.
// RequireAuth must run first.
func RequireRoles(allowedRoles ...domain.Role) gin.HandlerFunc {
	allowed := make(map[string]struct{}, len(allowedRoles))
	for _, r := range allowedRoles {
		allowed[strings.ToLower(strings.TrimSpace(string(r)))] = struct{}{}
	}

	return func(c *gin.Context) {
		role := c.GetString(userRoleKey)
		if role == "" {
			abortAuth(c, http.StatusUnauthorized, "unauthorized: no role on request")
			return
		}
		if _, ok := allowed[strings.ToLower(strings.TrimSpace(role))]; !ok {
			abortAuth(c, http.StatusForbidden, "forbidden: role not allowed")
			return
		}
		c.Next()
	}
}

// Identity returns the authenticated caller, if any.
func Identity(c *gin.Context) domain.RequestContext {
	return domain.RequestContext{
		UserID: c.GetString(userIDKey),
		Role:   domain.Role(c.GetString(userRoleKey)),
	}
}

func abortAuth(c *gin.Context, status int, message string) {
	code := "unauthorized"
	if status == http.StatusForbidden {
		code = "forbidden"
	}
	c.AbortWithStatusJSON(status, gin.H{
		"error":      message,
		"code":       code,
		"request_id": GetRequestID(c),
		"message":    message,
	})
}
