package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"golang.org/x/time/rate"

	"aulas-booking-client/config"
	"aulas-booking-client/internal/mw"
)

// NewRouter creates and configures a new Gin router for the shell.
func NewRouter(h *Handler, cfg *config.ServerConfig) *gin.Engine {
	r := gin.Default()

	// Rate limit: 10 requests per second with a burst of 5 unless
	// configured otherwise.
	perSec, burst := cfg.RateLimitPerSec, cfg.RateLimitBurst
	if perSec <= 0 {
		perSec = 10
	}
	if burst <= 0 {
		burst = 5
	}
	rateLimiter := mw.RateLimiter(rate.Limit(perSec), burst, cfg.RequestIPHeader)

	ttl := time.Duration(cfg.CacheTTLSeconds) * time.Second
	if ttl <= 0 {
		ttl = 5 * time.Minute
	}
	caching := mw.Cache(h.responses, ttl)

	// API group
	api := r.Group("/api")
	api.Use(rateLimiter)
	{
		api.GET("/rooms", caching, h.GetRooms)
		api.GET("/rooms/:room_id/availability", caching, h.GetAvailability)

		api.POST("/bookings", h.CreateBooking)
		api.GET("/bookings/history", h.GetHistory)

		api.GET("/queue", h.ListQueue)
		api.POST("/queue/:id/retry", h.RetryQueued)
		api.DELETE("/queue/:id", h.DeleteQueued)

		api.POST("/auth/login", h.Login)
		api.POST("/auth/logout", h.Logout)
		api.GET("/user", h.GetUser)
		api.PUT("/user", h.UpdateUser)
		api.POST("/user/password", h.ChangePassword)

		api.GET("/status", h.GetStatus)
		api.POST("/network", h.ReportNetwork)

		api.GET("/subscriptions", h.GetSubscription)
		api.PUT("/subscriptions", h.PutSubscription)
		api.DELETE("/subscriptions", h.DeleteSubscription)
		api.GET("/vapid_public_key", h.GetVAPIDPublicKey)
	}

	return r
}
