// Package main is the entry point for the flightbook API server.
package main

import (
	"context"
	"flag"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"flightbook/config"
	"flightbook/internal/core/tx"
	"flightbook/internal/domain/auth"
	"flightbook/internal/domain/itinerary"
	"flightbook/internal/domain/reservation"
	"flightbook/internal/domain/session"
	v1 "flightbook/internal/infrastructure/http/v1"
	"flightbook/internal/infrastructure/storage/postgres"
	"flightbook/pkg/logger"
)

func main() {
	configPath := flag.String("config", "", "path to config file")
	flag.Parse()

	cfg, err := config.Load(*configPath)
	if err != nil {
		fmt.Printf("failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(logger.Config{
		Level:       cfg.Log.Level,
		Development: cfg.Log.Development,
	})
	if err != nil {
		fmt.Printf("failed to initialize logger: %v\n", err)
		os.Exit(1)
	}

	ctx := context.Background()
	log.Info("starting flightbook server")

	// --- Database ---
	poolCfg := postgres.DefaultPoolConfig(cfg.Database.DSN)
	poolCfg.MaxConns = cfg.Database.MaxConns
	poolCfg.MinConns = cfg.Database.MinConns

	pool, err := postgres.NewPool(ctx, poolCfg)
	if err != nil {
		log.Fatalw("failed to connect to database", "error", err)
	}
	defer pool.Close()
	log.Info("database connection established")

	go func() {
		ticker := time.NewTicker(time.Minute)
		defer ticker.Stop()
		for range ticker.C {
			postgres.LogPoolStats(ctx, pool.Unwrap())
		}
	}()

	// --- Sessions ---
	// Each session gets its own transaction manager so open-transaction
	// accounting never crosses sessions.
	registry := session.NewRegistry(func() tx.Manager {
		return postgres.NewTxManager(pool)
	})

	tokenCfg := session.DefaultTokenConfig(cfg.Session.TokenSecret)
	if cfg.Session.TokenTTL > 0 {
		tokenCfg.TTL = cfg.Session.TokenTTL
	}
	tokens := session.NewTokenService(tokenCfg)

	// --- Repositories and services ---
	userRepo := postgres.NewUserRepo()
	flightRepo := postgres.NewFlightRepo()
	scratchRepo := postgres.NewScratchRepo()
	reservationRepo := postgres.NewReservationRepo()

	authService := auth.NewService(userRepo)
	sessionService := session.NewService(authService)
	itineraryService := itinerary.NewService(flightRepo, scratchRepo)
	reservationService := reservation.NewService(reservationRepo, flightRepo, userRepo)

	// --- Router ---
	router := v1.NewRouter(v1.RouterConfig{
		Logger:             log.WithComponent("http"),
		Pool:               pool,
		Registry:           registry,
		Tokens:             tokens,
		AuthService:        authService,
		SessionService:     sessionService,
		ItineraryService:   itineraryService,
		ReservationService: reservationService,
		AdminEnabled:       cfg.Server.AdminEnabled,
	})

	// --- HTTP Server ---
	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      router,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	// Start server in goroutine
	go func() {
		log.Infow("server starting", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalw("server failed", "error", err)
		}
	}()

	// --- Graceful shutdown ---
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info("shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatalw("server forced to shutdown", "error", err)
	}

	log.Info("server stopped")
}
