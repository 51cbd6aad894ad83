package handlers

import (
	"context"
	"net/http"
	"sync"
	"time"

	"github.com/gin-gonic/gin"
)

var (
	routerMu sync.RWMutex
	router   *gin.Engine
)

// SetRouter stores the active gin engine for later inspection (e.g., /api/routes).
func SetRouter(r *gin.Engine) {
	routerMu.Lock()
	defer routerMu.Unlock()
	router = r
}

func Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok", "message": "naco backend running"})
}

// DBCheck reports storage reachability through ping; nil ping means an
// in-process store.
func DBCheck(ping func(context.Context) error) gin.HandlerFunc {
	return func(c *gin.Context) {
		if ping == nil {
			c.JSON(http.StatusOK, gin.H{"message": "memory storage", "storage": "memory"})
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := ping(ctx); err != nil {
			respondError(c, http.StatusServiceUnavailable, "db_unavailable", "database unreachable: "+err.Error(), nil)
			return
		}
		c.JSON(http.StatusOK, gin.H{"message": "database connection OK", "storage": "mysql"})
	}
}

func Routes(c *gin.Context) {
	routerMu.RLock()
	r := router
	routerMu.RUnlock()
	if r == nil {
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "router not ready"})
		return
	}

	routes := r.Routes()
	out := make([]gin.H, 0, len(routes))
	for _, rt := range routes {
		out = append(out, gin.H{
			"method":  rt.Method,
			"path":    rt.Path,
			"handler": rt.Handler,
		})
	}
	c.JSON(http.StatusOK, gin.H{"routes": out})
}
