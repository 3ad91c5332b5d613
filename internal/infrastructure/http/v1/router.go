// Package v1 provides HTTP API version 1.
package v1

import (
	"github.com/gin-gonic/gin"

	"flightbook/internal/domain/auth"
	"flightbook/internal/domain/itinerary"
	"flightbook/internal/domain/reservation"
	"flightbook/internal/domain/session"
	"flightbook/internal/infrastructure/http/v1/handlers"
	"flightbook/internal/infrastructure/http/v1/middleware"
	"flightbook/internal/infrastructure/storage/postgres"
	"flightbook/pkg/logger"
)

// RouterConfig holds router configuration.
type RouterConfig struct {
	// Logger for request logging
	Logger *logger.Logger

	// Pool is the database connection pool (health checks, per-request managers)
	Pool *postgres.Pool

	// Registry tracks live sessions
	Registry *session.Registry

	// Tokens signs and validates session tokens
	Tokens *session.TokenService

	// Services
	AuthService        *auth.Service
	SessionService     *session.Service
	ItineraryService   *itinerary.Service
	ReservationService *reservation.Service

	// AdminEnabled exposes the destructive reset endpoint
	AdminEnabled bool
}

// NewRouter creates and configures the Gin router.
func NewRouter(cfg RouterConfig) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)

	router := gin.New()

	// Global middleware (order matters!)
	router.Use(middleware.Recovery())
	router.Use(middleware.Trace())
	router.Use(middleware.Logger(cfg.Logger))
	router.Use(middleware.Gzip())
	router.Use(middleware.ErrorHandler())
	router.Use(middleware.RequestTxManager(cfg.Pool))

	// Health endpoints (no session required)
	healthHandler := handlers.NewHealthHandler(cfg.Pool)
	health := router.Group("/health")
	{
		health.GET("/live", healthHandler.Live)
		health.GET("/ready", healthHandler.Ready)
		health.GET("/info", healthHandler.Info)
	}

	base := handlers.NewBaseHandler()
	sessionHandler := handlers.NewSessionHandler(base, cfg.Registry, cfg.Tokens, cfg.SessionService)
	userHandler := handlers.NewUserHandler(base, cfg.AuthService)
	flightHandler := handlers.NewFlightHandler(base, cfg.ItineraryService)
	reservationHandler := handlers.NewReservationHandler(base, cfg.ReservationService)

	// API v1
	v1 := router.Group("/api/v1")
	{
		// Sessionless endpoints
		v1.POST("/session", sessionHandler.Create)
		v1.POST("/users", userHandler.Create)

		if cfg.AdminEnabled {
			adminHandler := handlers.NewAdminHandler(base, postgres.NewAdminRepo())
			v1.POST("/admin/reset", adminHandler.Reset)
		}

		// Session-bound endpoints
		bound := v1.Group("")
		bound.Use(middleware.SessionAuth(cfg.Tokens, cfg.Registry))
		{
			bound.POST("/session/login", sessionHandler.Login)
			bound.GET("/flights/search", flightHandler.Search)
			bound.POST("/reservations", reservationHandler.Book)
			bound.GET("/reservations", reservationHandler.List)
			bound.POST("/reservations/:id/pay", reservationHandler.Pay)
			bound.DELETE("/reservations/:id", reservationHandler.Cancel)
		}
	}

	return router
}
