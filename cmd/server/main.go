package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"expensetrack/internal/config"
	"expensetrack/internal/database"
	"expensetrack/internal/handlers"
	"expensetrack/internal/middleware"
	"expensetrack/internal/repositories"
	"expensetrack/internal/services"

	"github.com/labstack/echo/v4"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

func main() {
	config.LoadDotEnv(".env")
	cfg := config.Load()

	logger := newLogger(cfg)
	slog.SetDefault(logger)

	db, err := database.Initialize(cfg)
	if err != nil {
		logger.Error("failed to initialize database", "error", err)
		os.Exit(1)
	}

	expenseRepo := repositories.NewExpenseRepository(db)
	notifications := services.NewNotificationCenter(cfg.Tracker.NotificationTTL)
	metrics := services.NewPrometheusMetrics()
	tracker := services.NewTrackerService(expenseRepo, notifications, metrics, logger)

	seedSampleData(db, expenseRepo, logger)

	e := newServer(cfg, db, tracker, notifications)

	go func() {
		address := cfg.Server.Host + ":" + cfg.Server.Port
		logger.Info("starting server", "address", address, "environment", cfg.Server.Environment)
		if err := e.Start(address); err != nil && err != http.ErrServerClosed {
			logger.Error("server stopped", "error", err)
			os.Exit(1)
		}
	}()

	waitForShutdown(e, notifications, logger)
}

// newLogger builds the process logger; production gets JSON output
func newLogger(cfg *config.Config) *slog.Logger {
	if cfg.IsProduction() {
		return slog.New(slog.NewJSONHandler(os.Stdout, nil))
	}
	return slog.New(slog.NewTextHandler(os.Stdout, nil))
}

// newServer wires the Echo instance, middleware, and routes
func newServer(cfg *config.Config, db *gorm.DB, tracker services.TrackerServiceInterface, notifications services.NotificationCenterInterface) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Server.ReadTimeout = cfg.Server.ReadTimeout
	e.Server.WriteTimeout = cfg.Server.WriteTimeout

	e.HTTPErrorHandler = middleware.CustomHTTPErrorHandler
	e.Validator = handlers.NewValidator()

	e.Use(middleware.RequestID())
	e.Use(middleware.PanicRecovery())
	e.Use(middleware.SecurityHeaders())
	e.Use(middleware.RateLimiterWithConfig(cfg.Tracker.RateLimitPerSecond, cfg.Tracker.RateLimitBurst))

	expenseHandler := handlers.NewExpenseHandler(tracker)
	notificationHandler := handlers.NewNotificationHandler(notifications)
	healthHandler := handlers.NewHealthCheckHandler(db)

	e.GET("/health", healthHandler.HealthCheck)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api/v1")
	api.GET("/expenses", expenseHandler.ListExpenses)
	api.POST("/expenses", expenseHandler.CreateExpense)
	api.GET("/expenses/summary", expenseHandler.CategorySummary)
	api.DELETE("/expenses/:expenseId", expenseHandler.DeleteExpense)
	api.POST("/range/clear", expenseHandler.ClearRange)
	api.GET("/notification", notificationHandler.GetNotification)
	api.DELETE("/notification", notificationHandler.DismissNotification)

	return e
}

// seedSampleData fills an empty store with generated expenses for local
// development. Gated behind SEED_SAMPLE_DATA=true.
func seedSampleData(db *gorm.DB, repo repositories.ExpenseRepositoryInterface, logger *slog.Logger) {
	if os.Getenv("SEED_SAMPLE_DATA") != "true" {
		return
	}

	var count int64
	if err := db.Table("expenses").Count(&count).Error; err != nil {
		logger.Warn("sample data seed skipped", "error", err)
		return
	}
	if count > 0 {
		return
	}

	generator := services.NewExpenseGenerator()
	end := time.Now().UTC()
	start := end.AddDate(0, -2, 0)

	seeded := 0
	for _, expense := range generator.GenerateExpenses(start, end, 60) {
		if err := repo.Create(expense); err != nil {
			logger.Warn("failed to seed expense", "error", err)
			continue
		}
		seeded++
	}
	logger.Info("seeded sample expenses", "count", seeded)
}

// waitForShutdown blocks until SIGTERM or SIGINT, then drains the server
func waitForShutdown(e *echo.Echo, notifications services.NotificationCenterInterface, logger *slog.Logger) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGTERM, syscall.SIGINT)

	sig := <-sigChan
	logger.Info("shutting down", "signal", sig.String())

	notifications.Shutdown()

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(ctx); err != nil {
		logger.Error("forced shutdown", "error", err)
	}
	logger.Info("server stopped")
}
