package main

import (
	"context"
	"errors"
	"log"
	"log/slog"
	"net/http"
	_ "net/http/pprof"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
	"github.com/lmittmann/tint"

	appLogger "github.com/FACorreiaa/go-travel-budget-planner/app/logger"
	appMiddleware "github.com/FACorreiaa/go-travel-budget-planner/app/middleware"
	"github.com/FACorreiaa/go-travel-budget-planner/app/observability/metrics"
	"github.com/FACorreiaa/go-travel-budget-planner/app/tracer"
	"github.com/FACorreiaa/go-travel-budget-planner/config"
	"github.com/FACorreiaa/go-travel-budget-planner/internal/container"
	api "github.com/FACorreiaa/go-travel-budget-planner/internal/router"
)

func main() {
	// Use standard log until slog is configured, in case godotenv fails
	err := godotenv.Load()
	if err != nil {
		log.Println("Warning: .env file not found or error loading:", err)
	}

	cfg, err := config.InitConfig()
	if err != nil {
		log.Fatalf("FATAL: Error initializing config: %v", err)
	}

	logger := setupLogger(cfg.Mode)
	slog.SetDefault(logger)

	ctx, cancel := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer cancel()

	metricsHandler := tracer.InitTracingAndMetrics("TravelBudgetPlanner")
	metrics.InitAppMetrics()

	deps, err := container.NewContainer(ctx, &cfg, logger)
	if err != nil {
		logger.Error("Failed to initialize dependencies", slog.Any("error", err))
		os.Exit(1)
	}

	mainRouter := api.SetupRouter(&api.Config{
		BudgetHandler:    deps.BudgetHandler,
		ItineraryHandler: deps.ItineraryHandler,
		MetricsHandler:   metricsHandler,
		BudgetTimeout:    cfg.Budget.HardTimeout,
	})

	router := chi.NewMux()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(appLogger.StructuredLogger(logger))
	router.Use(appMiddleware.Metrics())
	router.Use(middleware.Recoverer)
	router.Use(middleware.StripSlashes)
	router.Use(middleware.Timeout(cfg.Server.Timeout))
	router.Use(middleware.Compress(5, "application/json"))
	router.Mount("/", mainRouter)

	// pprof stays on its own port, never on the public listener.
	if port := cfg.Handlers.Pprof.Port; port != "" {
		go func() {
			logger.Info("Starting pprof server", slog.String("address", port))
			if err := http.ListenAndServe(port, nil); err != nil {
				logger.Error("pprof server error", slog.Any("error", err))
			}
		}()
	}

	srv := &http.Server{
		Addr:        cfg.Server.HTTPPort,
		Handler:     router,
		ReadTimeout: 10 * time.Second,
		// The budget route may run for its full hard timeout, so the write
		// timeout has to outlive every route deadline.
		WriteTimeout: cfg.Server.Timeout + 30*time.Second,
		IdleTimeout:  120 * time.Second,
		ErrorLog:     slog.NewLogLogger(logger.Handler(), slog.LevelError), // Pipe server errors to slog
	}

	go func() {
		logger.Info("Starting HTTP server", slog.String("address", srv.Addr))
		err := srv.ListenAndServe()
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logger.Error("HTTP server ListenAndServe error", slog.Any("error", err))
			cancel() // Trigger shutdown if server fails unexpectedly
		}
	}()

	<-ctx.Done() // Block until context is cancelled (Ctrl+C, SIGTERM)

	logger.Info("Shutdown signal received, starting graceful shutdown...")

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("HTTP server graceful shutdown failed", slog.Any("error", err))
	} else {
		logger.Info("HTTP server gracefully stopped")
	}

	logger.Info("Application shut down complete.")
}

// setupLogger configures and returns the application logger.
func setupLogger(mode string) *slog.Logger {
	var logger *slog.Logger

	if mode == "development" || mode == "" {
		// Colored logs for development
		tintOpts := &tint.Options{
			Level:      slog.LevelDebug, // More verbose in dev
			TimeFormat: time.Kitchen,
			AddSource:  true, // Show file:line
		}
		logger = slog.New(tint.NewHandler(os.Stdout, tintOpts))
		log.Println("Initialized development logger (tint)") // Use standard log before slog default is set
	} else {
		// JSON logs for production or other environments
		jsonOpts := &slog.HandlerOptions{
			Level:     slog.LevelInfo,
			AddSource: false,
		}
		logger = slog.New(slog.NewJSONHandler(os.Stdout, jsonOpts))
		log.Println("Initialized production logger (JSON)")
	}
	return logger
}
