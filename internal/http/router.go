package api

import (
	"context"
	"log"
	stdhttp "net/http"

	intconfig "naco/internal/config"
	"naco/internal/domain"
	h "naco/internal/http/handlers"
	"naco/internal/http/middleware"
	"naco/internal/metrics"

	"github.com/gin-gonic/gin"
)

// Options wires the router to its collaborators.
type Options struct {
	API     *h.API
	Metrics *metrics.Metrics
	// Ping checks storage; nil for the memory backend.
	Ping func(context.Context) error
}

func NewRouter(env intconfig.Env, opts Options) *gin.Engine {
	r := gin.New()
	r.Use(middleware.RequestID(), middleware.Logger(), gin.Recovery(), middleware.CORS(env.CORSAllowedOrigins))

	if err := r.SetTrustedProxies(nil); err != nil {
		log.Printf("warning: failed to set trusted proxies: %v", err)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(stdhttp.StatusNotFound, gin.H{
			"error":  "route not found",
			"path":   c.Request.URL.Path,
			"method": c.Request.Method,
		})
	})

	r.GET("/metrics", gin.WrapH(opts.Metrics.Handler()))

	a := opts.API
	authed := middleware.RequireAuth(a.Auth)

	api := r.Group("/api")
	{
		api.GET("/health", h.Health)
		api.GET("/db-check", h.DBCheck(opts.Ping))
		api.GET("/routes", h.Routes)

		// Auth
		auth := api.Group("/auth")
		auth.POST("/register", a.Register)
		auth.POST("/login", a.Login)

		// Directory
		api.GET("/artisans", a.ListArtisans)
		api.GET("/users/:id", a.GetUser)

		// Bookings
		bookings := api.Group("/bookings", authed)
		bookings.POST("", middleware.RequireRoles(domain.RoleClient), a.CreateBooking)
		bookings.GET("", a.ListBookings)
		bookings.GET("/:id", a.GetBooking)
		bookings.POST("/:id/actions", middleware.RequireRoles(domain.RoleClient, domain.RoleArtisan), a.BookingAction)
		bookings.POST("/:id/review", middleware.RequireRoles(domain.RoleClient), a.CreateReview)
		bookings.GET("/:id/receipt", a.BookingReceipt)

		// Notifications
		notifications := api.Group("/notifications", authed)
		notifications.GET("", a.ListNotifications)
		notifications.PATCH("/:id/read", a.MarkNotificationRead)
		notifications.POST("/read-all", a.MarkAllNotificationsRead)
	}

	h.SetRouter(r)
	return r
}
