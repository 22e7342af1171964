package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/lmh1306048089-eng/DigitalTradeSim-sub002/internal/archive"
	"github.com/lmh1306048089-eng/DigitalTradeSim-sub002/internal/archive/drivers"
	"github.com/lmh1306048089-eng/DigitalTradeSim-sub002/internal/config"
	"github.com/lmh1306048089-eng/DigitalTradeSim-sub002/internal/database"
	"github.com/lmh1306048089-eng/DigitalTradeSim-sub002/internal/declaration/router"
	"github.com/lmh1306048089-eng/DigitalTradeSim-sub002/internal/declaration/service"
	"github.com/lmh1306048089-eng/DigitalTradeSim-sub002/internal/declaration/store"
	"github.com/lmh1306048089-eng/DigitalTradeSim-sub002/internal/middleware"
	"github.com/lmh1306048089-eng/DigitalTradeSim-sub002/internal/validation"
	"github.com/lmh1306048089-eng/DigitalTradeSim-sub002/utils"
)

func main() {
	// Load configuration from environment variables
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("failed to load configuration: %v", err)
	}

	slog.Info("configuration loaded successfully",
		"db_driver", cfg.Database.Driver,
		"db_host", cfg.Database.Host,
		"db_port", cfg.Database.Port,
		"db_name", cfg.Database.Name,
		"storage_type", cfg.Storage.Type,
	)

	slog.Info("CORS configuration",
		"allowed_origins", cfg.CORS.AllowedOrigins,
		"allowed_methods", cfg.CORS.AllowedMethods,
		"allowed_headers", cfg.CORS.AllowedHeaders,
		"allow_credentials", cfg.CORS.AllowCredentials,
		"max_age", cfg.CORS.MaxAge,
	)

	slog.Info("validation configuration",
		"rules_file", cfg.Validation.RulesFile,
		"parallel", cfg.Validation.Parallel,
	)

	// Initialize database connection
	db, err := database.New(&cfg.Database)
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}
	defer func() {
		if err := database.Close(db); err != nil {
			slog.Error("failed to close database", "error", err)
		}
	}()

	if err := database.HealthCheck(db); err != nil {
		log.Fatalf("database health check failed: %v", err)
	}
	if err := database.Migrate(db); err != nil {
		log.Fatalf("database migration failed: %v", err)
	}

	// Validation engine
	rules, err := validation.LoadRuleSet(cfg.Validation.RulesFile)
	if err != nil {
		log.Fatalf("failed to load validation rules: %v", err)
	}
	registry := prometheus.NewRegistry()
	registry.MustRegister(collectors.NewGoCollector(), collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}))
	metrics := validation.NewMetrics(registry)
	validator := validation.NewValidator(
		validation.WithRules(rules),
		validation.WithParallel(cfg.Validation.Parallel),
		validation.WithMetrics(metrics),
	)

	// Report archive
	ctx := context.Background()
	storage, err := archive.NewStorageFromConfig(ctx, cfg.Storage)
	if err != nil {
		log.Fatalf("failed to initialize report storage: %v", err)
	}
	var (
		archiver service.ReportArchiver
		reports  router.ReportReader
	)
	if storage != nil {
		reportArchive := archive.NewReportArchive(storage)
		archiver = reportArchive
		// local reports are served by the API itself
		if _, local := storage.(*drivers.LocalFSDriver); local {
			reports = reportArchive
		}
	}

	pages := utils.Pagination{DefaultLimit: cfg.Pagination.DefaultLimit, MaxLimit: cfg.Pagination.MaxLimit}
	declarations := store.NewDeclarationStore(db).WithPagination(pages)
	hsCodes := store.NewHSCodeStore(db).WithPagination(pages)
	svc := service.NewDeclarationService(validator, declarations, hsCodes, archiver, metrics)

	// Set up HTTP routes
	gin.SetMode(gin.ReleaseMode)
	engine := gin.New()
	engine.Use(gin.Recovery(), middleware.CORS(&cfg.CORS), middleware.Trainee())

	router.NewDeclarationRouter(svc, reports).RegisterRoutes(engine)
	engine.GET("/health", func(c *gin.Context) {
		if err := database.HealthCheck(db); err != nil {
			c.JSON(http.StatusServiceUnavailable, gin.H{"status": "unhealthy", "error": err.Error()})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})
	engine.GET("/metrics", gin.WrapH(promhttp.HandlerFor(registry, promhttp.HandlerOpts{})))

	serverAddr := fmt.Sprintf(":%d", cfg.Server.Port)
	server := &http.Server{
		Addr:              serverAddr,
		Handler:           engine,
		ReadHeaderTimeout: 10 * time.Second,
	}

	// Channel to listen for interrupt signals
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	// Start server in a goroutine
	go func() {
		slog.Info("starting server", "port", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			slog.Error("failed to start server", "error", err)
			quit <- syscall.SIGTERM
		}
	}()

	// Wait for interrupt signal
	<-quit
	slog.Info("shutting down server...")

	// Create a context with timeout for graceful shutdown
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.Error("server forced to shutdown", "error", err)
	} else {
		slog.Info("server gracefully stopped")
	}

	slog.Info("server stopped")
}
