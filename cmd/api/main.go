package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	sentrygin "github.com/getsentry/sentry-go/gin"
	"github.com/gin-contrib/gzip"
	_ "github.com/joho/godotenv/autoload"
	"github.com/redis/go-redis/v9"

	"github.com/dvillanueva/loanpulse-api/internal/config"
	"github.com/dvillanueva/loanpulse-api/internal/database"
	"github.com/dvillanueva/loanpulse-api/internal/handlers"
	"github.com/dvillanueva/loanpulse-api/internal/jobs"
	"github.com/dvillanueva/loanpulse-api/internal/middleware"
	"github.com/dvillanueva/loanpulse-api/internal/repository"
	"github.com/dvillanueva/loanpulse-api/internal/services"
	"github.com/dvillanueva/loanpulse-api/pkg/logger"

	"github.com/gin-gonic/gin"
)

func main() {
	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	// Initialize logger
	logger.Setup(cfg.Environment)

	// Initialize Sentry when DSN is configured
	if cfg.SentryDSN != "" {
		if err := sentry.Init(sentry.ClientOptions{
			Dsn:              cfg.SentryDSN,
			TracesSampleRate: 0.2,
			Environment:      cfg.Environment,
		}); err != nil {
			logger.Error("Sentry initialization failed", "error", err)
		} else {
			logger.Info("Sentry initialized")
		}
	}

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Connect to database
	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		logger.Error("Failed to connect to database", "error", err)
		os.Exit(1)
	}
	logger.Info("Connected to database")

	if err := database.Migrate(db); err != nil {
		logger.Error("Failed to run migrations", "error", err)
		os.Exit(1)
	}

	// Redis is optional; without it payment recording is not idempotent
	var rdb *redis.Client
	if cfg.RedisAddr != "" {
		rdb, err = database.OpenRedis(cfg.RedisAddr, cfg.RedisDB)
		if err != nil {
			logger.Error("Failed to connect to redis", "error", err)
			os.Exit(1)
		}
		logger.Info("Connected to redis", "addr", cfg.RedisAddr)
	} else {
		logger.Warn("REDIS_ADDR not set, idempotent payment recording disabled")
	}

	// Initialize repositories
	repos := repository.NewRepositories(db)

	// Initialize background worker
	worker := jobs.NewWorker(cfg.WorkerCount)
	logger.Info("Started background worker", "goroutines", cfg.WorkerCount)

	// Initialize services
	svcs := services.NewServices(repos, services.NoMetrics(), nil, db)

	// Schedule the covenant monitoring tick
	scheduler := jobs.NewScheduler(worker)
	err = scheduler.Add(cfg.CovenantTickSpec, "covenant tick", func(ctx context.Context) error {
		evaluated, err := svcs.Recovery.RunScheduledTick(ctx)
		logger.Info("[Job] Covenant tick finished", "loans_evaluated", evaluated)
		return err
	})
	if err != nil {
		logger.Error("Failed to schedule covenant tick", "error", err)
		os.Exit(1)
	}
	scheduler.Start()
	logger.Info("Scheduled covenant tick", "spec", cfg.CovenantTickSpec)

	// Initialize handlers
	h := handlers.NewHandlers(svcs)

	// Setup router
	router := setupRouter(h, cfg, rdb)

	// Create HTTP server
	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      router,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logger.Info("Server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Error("Failed to start server", "error", err)
			os.Exit(1)
		}
	}()

	// Wait for interrupt signal for graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logger.Info("Shutting down server...")

	// Create context with timeout for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown HTTP server
	if err := server.Shutdown(ctx); err != nil {
		logger.Error("Server forced to shutdown", "error", err)
	}

	// Stop the cron loop, then drain the worker
	scheduler.Stop()
	worker.Shutdown()
	logger.Info("Background worker stopped")

	// Flush Sentry events before exit
	if cfg.SentryDSN != "" {
		sentry.Flush(5 * time.Second)
	}

	logger.Info("Server exited gracefully")
}

func setupRouter(h *handlers.Handlers, cfg *config.Config, rdb *redis.Client) *gin.Engine {
	router := gin.New()

	// Global middleware
	if cfg.SentryDSN != "" {
		router.Use(sentrygin.New(sentrygin.Options{Repanic: true}))
	}
	router.Use(gin.Recovery())
	router.Use(middleware.RequestLogger())
	router.Use(middleware.CORS(cfg.AllowedOrigins))
	router.Use(gzip.Gzip(gzip.DefaultCompression))

	// API v1 routes
	v1 := router.Group("/api/v1")
	{
		// Health check (public)
		v1.GET("/health", h.Health.Index)

		// Loan lifecycle
		loans := v1.Group("/loans")
		{
			loans.POST("", h.Loan.Create)
			loans.GET("", h.Loan.Index)
			loans.GET("/:loan_id", h.Loan.Show)
			loans.DELETE("/:loan_id", h.Loan.Delete)
			loans.POST("/:loan_id/transition", h.Loan.Transition)
			loans.POST("/:loan_id/recovery_status", h.Loan.UpdateRecoveryStatus)
			loans.POST("/:loan_id/assign_agent", h.Loan.AssignAgent)
			loans.GET("/:loan_id/schedule", h.Loan.Schedule)
			loans.GET("/:loan_id/payment_status", h.Loan.PaymentStatus)

			// Payment ledger; recording replays safely under an Idempotency-Key
			if rdb != nil {
				loans.POST("/:loan_id/payments", middleware.Idempotency(rdb, 24*time.Hour), h.Payment.Create)
			} else {
				loans.POST("/:loan_id/payments", h.Payment.Create)
			}
			loans.GET("/:loan_id/payments", h.Payment.Index)

			// Covenant monitoring
			loans.GET("/:loan_id/covenants", h.Covenant.Index)
			loans.POST("/:loan_id/covenants", h.Covenant.Create)
			loans.POST("/:loan_id/covenants/evaluate", h.Covenant.Evaluate)
		}

		// Covenant overrides and audit trail
		covenants := v1.Group("/covenants")
		{
			covenants.POST("/:covenant_id/waive", h.Covenant.Waive)
			covenants.POST("/:covenant_id/reactivate", h.Covenant.Reactivate)
			covenants.POST("/:covenant_id/deactivate", h.Covenant.Deactivate)
			covenants.GET("/:covenant_id/audit", h.Covenant.Audit)
		}

		// Loan-level audit log (admin only)
		v1.GET("/audits", h.Audit.Index)
	}

	return router
}
