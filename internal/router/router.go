package router // route registration for the USSD and REST surfaces

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/seedlink/platform/internal/config"
	"github.com/seedlink/platform/internal/handler"
	"github.com/seedlink/platform/internal/middleware"
)

// RegisterRoutes registers the unauthenticated infrastructure routes.
func RegisterRoutes(e *echo.Echo) {
	e.GET("/healthz", handler.Health)
}

// RegisterUssd registers the gateway callback endpoint. The token
// bucket in front of it keys on the caller's phone number, so one
// handset hammering the shortcode cannot crowd out the rest.
func RegisterUssd(e *echo.Echo, h *handler.UssdHandler, rlCfg config.RateLimitConfig, rdb *redis.Client) {
	e.POST("/ussd", h.Handle, middleware.NewTokenBucket(rlCfg, rdb))
}

// RegisterPublic registers the unauthenticated browse endpoints behind
// the response cache.
func RegisterPublic(e *echo.Echo, s *handler.StationHandler, cacheCfg config.CacheConfig, rdb *redis.Client) {
	e.GET("/v1/stations", s.ListByCounty, middleware.NewRedisCache(cacheCfg, rdb))
}

// RegisterBooking registers the authenticated booking API under /v1.
// Any authenticated role may book; the engine applies the account-type
// quota itself.
func RegisterBooking(e *echo.Echo, h *handler.BookingHandler, jwtSecret string) {
	g := e.Group("/v1", middleware.JWTAuth(jwtSecret))
	g.POST("/bookings", h.Create)
	g.GET("/bookings", h.List)
}

// RegisterProfile registers self-service account endpoints.
func RegisterProfile(e *echo.Echo, h *handler.ProfileHandler, jwtSecret string) {
	g := e.Group("/v1/profile", middleware.JWTAuth(jwtSecret))
	g.PUT("/pin", h.SetPin)
}

// RegisterAdmin registers station-manager endpoints, restricted to the
// ADMIN role.
func RegisterAdmin(e *echo.Echo, h *handler.AdminHandler, jwtSecret string) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole("ADMIN"),
	)
	g.POST("/inventory/restock", h.Restock)
}

// RegisterCron registers the scheduler trigger endpoints. They carry
// their own shared-secret check instead of JWT, schedulers don't hold
// user tokens.
func RegisterCron(e *echo.Echo, h *handler.CronHandler) {
	e.POST("/v1/cron/expire-bookings", h.ExpireBookings)
	e.POST("/v1/cron/reminders", h.SendReminders)
}
