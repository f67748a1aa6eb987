package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/Unitive-Technologies/Retail-ERP-sub003/internal/cache"
	"github.com/Unitive-Technologies/Retail-ERP-sub003/internal/handler"
	"github.com/Unitive-Technologies/Retail-ERP-sub003/internal/job"
	mid "github.com/Unitive-Technologies/Retail-ERP-sub003/internal/middleware"
	"github.com/Unitive-Technologies/Retail-ERP-sub003/internal/scheduler"
	"github.com/Unitive-Technologies/Retail-ERP-sub003/pkg/config"
	"github.com/Unitive-Technologies/Retail-ERP-sub003/pkg/database"
	"github.com/Unitive-Technologies/Retail-ERP-sub003/pkg/jwtutil"
	"github.com/Unitive-Technologies/Retail-ERP-sub003/pkg/logger"
	"github.com/Unitive-Technologies/Retail-ERP-sub003/pkg/metrics"
	"github.com/Unitive-Technologies/Retail-ERP-sub003/prometheus"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"go.uber.org/zap"
)

const shutdownTimeout = 15 * time.Second

func main() {
	// Load configuration
	appConfig, err := config.Load()
	if err != nil {
		// Can't use structured logger yet since it's not initialized
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	if err := logger.InitLogger(appConfig); err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	log := logger.GetLogger()
	defer log.Sync()

	log.Info("Starting "+appConfig.ServiceName,
		zap.String("environment", appConfig.Server.Env),
		zap.String("port", appConfig.Server.Port))

	// Initialize database
	db, err := database.InitDB(&appConfig.DB, log)
	if err != nil {
		log.Fatal("Failed to initialize database", zap.Error(err))
	}
	if err := database.Migrate(db); err != nil {
		log.Fatal("Failed to migrate database", zap.Error(err))
	}
	log.Info("Database connection established")

	prometheus.InitMetrics()
	log.Info("Prometheus metrics initialized", zap.String("metrics_prefix", appConfig.Metrics.Prefix))

	dropdowns, err := cache.New(context.Background(), appConfig.Redis, log)
	if err != nil {
		log.Fatal("Failed to connect to Redis", zap.Error(err))
	}

	jwt := jwtutil.NewJWTUtil(&jwtutil.JWTConfig{
		SigningKey:      appConfig.JWT.SigningKey,
		ExpirationHours: appConfig.JWT.ExpirationHours,
	})

	cleanup := job.NewOnHoldInvoiceCleanup(db, appConfig.Scheduler.OnHoldMaxAge, log)

	jobs := scheduler.New(log)
	if appConfig.Scheduler.Enabled {
		err := jobs.Register(appConfig.Scheduler.CleanupSpec, job.OnHoldCleanupName, func(ctx context.Context) error {
			_, err := cleanup.Run(ctx)
			return err
		})
		if err != nil {
			log.Fatal("Failed to schedule cleanup", zap.Error(err))
		}
		jobs.Start()
		if next, ok := jobs.Next(job.OnHoldCleanupName, time.Now()); ok {
			log.Info("Cleanup scheduled",
				zap.String("spec", appConfig.Scheduler.CleanupSpec),
				zap.Time("next_run", next))
		}
	}

	// Initialize Echo instance
	e := echo.New()
	e.HideBanner = true

	// Middleware
	e.Use(middleware.Recover())
	e.Use(middleware.CORS())
	e.Use(mid.RequestIDMiddleware())
	e.Use(logger.Middleware())
	e.Use(metrics.NewHTTPMetrics(appConfig.Metrics.Prefix).Middleware())

	e.GET("/metrics", echo.WrapHandler(metrics.GetPrometheusHandler()))
	handler.New(db, dropdowns, appConfig, jwt, cleanup, log).Register(e)

	go func() {
		log.Info("Starting server", zap.String("port", appConfig.Server.Port))
		if err := e.Start(":" + appConfig.Server.Port); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal("Server error", zap.Error(err))
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down")

	ctx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()

	if err := jobs.Stop(ctx); err != nil {
		log.Warn("Scheduler did not stop cleanly", zap.Error(err))
	}
	if err := e.Shutdown(ctx); err != nil {
		log.Error("Server shutdown failed", zap.Error(err))
	}
	if err := dropdowns.Close(); err != nil {
		log.Warn("Failed to close cache", zap.Error(err))
	}
	if err := database.Close(); err != nil {
		log.Warn("Failed to close database", zap.Error(err))
	}
	log.Info("Server stopped")
}
