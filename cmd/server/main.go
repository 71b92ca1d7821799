package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	metricsapp "github.com/facturo/backend/internal/application/metrics"
	reportapp "github.com/facturo/backend/internal/application/report"
	"github.com/facturo/backend/internal/infrastructure/cache"
	"github.com/facturo/backend/internal/infrastructure/config"
	"github.com/facturo/backend/internal/infrastructure/logger"
	"github.com/facturo/backend/internal/infrastructure/persistence"
	"github.com/facturo/backend/internal/infrastructure/scheduler"
	"github.com/facturo/backend/internal/interfaces/http/handler"
	"github.com/facturo/backend/internal/interfaces/http/middleware"
	"github.com/facturo/backend/internal/interfaces/http/router"
)

const version = "1.0.0"

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		panic("Failed to load configuration: " + err.Error())
	}

	// Initialize logger
	log, err := logger.New(&logger.Config{
		Level:      cfg.Log.Level,
		Format:     cfg.Log.Format,
		Output:     cfg.Log.Output,
		TimeFormat: "2006-01-02T15:04:05.000Z07:00",
	})
	if err != nil {
		panic("Failed to initialize logger: " + err.Error())
	}
	defer func() {
		_ = logger.Sync(log)
	}()

	log.Info("Starting Facturo Metrics API",
		zap.String("app", cfg.App.Name),
		zap.String("env", cfg.App.Env),
		zap.String("port", cfg.App.Port),
	)

	// Create GORM logger backed by zap
	gormLogLevel := logger.MapGormLogLevel(cfg.Log.Level)
	gormLog := logger.NewGormLogger(log, gormLogLevel)

	// Initialize database connection with custom logger
	db, err := persistence.NewDatabaseWithLogger(&cfg.Database, gormLog)
	if err != nil {
		log.Fatal("Failed to connect to database", zap.Error(err))
	}
	defer func() {
		if err := db.Close(); err != nil {
			log.Error("Error closing database", zap.Error(err))
		}
	}()
	log.Info("Database connected successfully")

	// Initialize the metric cache store (Redis, or in-memory fallback)
	store := cache.NewMetricStore(cfg, log)
	defer func() {
		if err := store.Close(); err != nil {
			log.Error("Error closing metric store", zap.Error(err))
		}
	}()

	// Initialize repositories
	metricsRepo := persistence.NewGormMetricsRepository(db.DB)

	// Initialize application services
	keys := cache.NewKeyBuilder(cfg.Cache.Namespace)
	metricsService := metricsapp.NewMetricsService(metricsRepo, store, keys, log, metricsapp.Options{
		SnapshotTTL:  cfg.Cache.SnapshotTTL,
		TopCustomers: cfg.Cache.TopCustomersN,
	})
	reportService := reportapp.NewReportService(log)

	// Start the snapshot warmup scheduler (if enabled)
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	warmupTenants := make([]uuid.UUID, 0, len(cfg.Warmup.Tenants))
	for _, raw := range cfg.Warmup.Tenants {
		id, err := uuid.Parse(raw)
		if err != nil {
			log.Warn("Skipping invalid warmup tenant id", zap.String("tenant_id", raw), zap.Error(err))
			continue
		}
		warmupTenants = append(warmupTenants, id)
	}
	warmup := scheduler.NewWarmupScheduler(metricsService, scheduler.WarmupConfig{
		Enabled:      cfg.Warmup.Enabled,
		CronSchedule: cfg.Warmup.CronSchedule,
		Tenants:      warmupTenants,
	}, log)
	if err := warmup.Start(ctx); err != nil {
		log.Fatal("Failed to start warmup scheduler", zap.Error(err))
	}

	// Initialize HTTP handlers
	metricsHandler := handler.NewMetricsHandler(metricsService)
	reportHandler := handler.NewReportHandler(reportService)
	systemHandler := handler.NewSystemHandler(version)

	// Set Gin mode based on environment
	if cfg.App.Env == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Setup validation
	middleware.SetupValidator()

	// Initialize router with custom middleware
	engine := gin.New()

	// Configure trusted proxies
	if len(cfg.HTTP.TrustedProxies) > 0 {
		if err := engine.SetTrustedProxies(cfg.HTTP.TrustedProxies); err != nil {
			log.Warn("Failed to set trusted proxies", zap.Error(err))
		}
	}

	// Apply middleware stack in order:
	// 1. RequestID - Generate/propagate request ID
	// 2. Recovery - Catch panics
	// 3. Logger - Log requests
	// 4. CORS - Handle cross-origin requests
	engine.Use(middleware.RequestID())
	engine.Use(logger.Recovery(log))
	engine.Use(logger.GinMiddleware(log))
	engine.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.HTTP.CORSAllowOrigins,
		AllowMethods: cfg.HTTP.CORSAllowMethods,
		AllowHeaders: cfg.HTTP.CORSAllowHeaders,
		MaxAge:       12 * time.Hour,
	}))

	// Health check endpoint (outside API versioning)
	engine.GET("/health", healthHandler(db, store))

	// Setup API routes
	r := router.NewRouter(engine, router.WithAPIVersion("v1"))
	r.Register(metricsHandler).
		Register(reportHandler).
		Register(systemHandler)
	r.Setup()

	// Create HTTP server with config
	srv := &http.Server{
		Addr:           ":" + cfg.App.Port,
		Handler:        engine,
		ReadTimeout:    cfg.HTTP.ReadTimeout,
		WriteTimeout:   cfg.HTTP.WriteTimeout,
		IdleTimeout:    cfg.HTTP.IdleTimeout,
		MaxHeaderBytes: cfg.HTTP.MaxHeaderBytes,
	}

	// Start server in goroutine
	go func() {
		log.Info("Server starting", zap.String("addr", srv.Addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatal("Failed to start server", zap.Error(err))
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	log.Info("Shutting down server...")
	cancel()

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer shutdownCancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown", zap.Error(err))
	}

	log.Info("Server exited gracefully")
}

// healthHandler reports database and cache reachability. The cache is
// advisory: a down cache degrades latency, not correctness, so it never
// flips the overall status.
func healthHandler(db *persistence.Database, store cache.MetricStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		reqLog := logger.GetGinLogger(c)

		cacheState := "ok"
		if err := store.Ping(c.Request.Context()); err != nil {
			reqLog.Warn("Cache health check failed", zap.Error(err))
			cacheState = "error"
		}

		if err := db.Ping(); err != nil {
			reqLog.Warn("Health check failed", zap.Error(err))
			c.JSON(http.StatusServiceUnavailable, gin.H{
				"status":   "unhealthy",
				"time":     time.Now().Format(time.RFC3339),
				"database": "error",
				"cache":    cacheState,
			})
			return
		}
		c.JSON(http.StatusOK, gin.H{
			"status":   "healthy",
			"time":     time.Now().Format(time.RFC3339),
			"database": "ok",
			"cache":    cacheState,
		})
	}
}
