package main

import (
	"context"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	"qualisync.app/bridge/common/id"
	"qualisync.app/bridge/common/logger"
	"qualisync.app/bridge/common/otel"
	"qualisync.app/bridge/core/config"
	"qualisync.app/bridge/internal/http/middleware"
	httprouter "qualisync.app/bridge/internal/http/router"
	"qualisync.app/bridge/internal/jira"
	"qualisync.app/bridge/internal/scheduler"
	"qualisync.app/bridge/internal/sonar"
	"qualisync.app/bridge/internal/sync"
)

func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	// OTel must init before logger (logger uses OTel provider in production)
	telemetry, err := otel.Setup(ctx, cfg.OTel)
	if err != nil {
		os.Stderr.WriteString("failed to initialize otel: " + err.Error() + "\n")
		os.Exit(1)
	}

	logger.Setup(cfg)

	slog.InfoContext(ctx, "bridge starting", "env", cfg.Env, "service", cfg.OTel.ServiceName)
	if err := id.Init(1); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	syncService, err := buildSyncService(cfg)
	if err != nil {
		slog.ErrorContext(ctx, "failed to build sync service", "error", err)
		os.Exit(1)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	router := setupRouter(cfg, syncService)
	server := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: 10 * time.Second,
		ReadTimeout:       30 * time.Second,
		WriteTimeout:      10 * time.Minute,
		IdleTimeout:       120 * time.Second,
	}

	schedulerCtx, stopScheduler := context.WithCancel(ctx)
	defer stopScheduler()
	if cfg.Sync.Schedule != "" {
		sched := scheduler.New(syncService)
		if err := sched.Register(cfg.Sync.Schedule); err != nil {
			slog.ErrorContext(ctx, "failed to register sync schedule", "error", err)
			os.Exit(1)
		}
		go func() {
			_ = sched.Start(schedulerCtx)
		}()
	}

	go func() {
		slog.InfoContext(ctx, "http server starting", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			slog.ErrorContext(ctx, "http server error", "error", err)
			os.Exit(1)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	slog.InfoContext(ctx, "shutting down...")
	stopScheduler()

	shutdownCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		slog.ErrorContext(shutdownCtx, "http server shutdown error", "error", err)
	}

	if telemetry != nil {
		if err := telemetry.Shutdown(shutdownCtx); err != nil {
			slog.ErrorContext(shutdownCtx, "otel shutdown error", "error", err)
		}
	}

	slog.InfoContext(shutdownCtx, "shutdown complete")
}

func buildSyncService(cfg config.Config) (sync.Service, error) {
	projects, err := config.LoadProjects(cfg.Sync.ProjectsFile)
	if err != nil {
		return nil, err
	}

	scannerClient, err := sonar.New(cfg.Sonar.BaseURL, cfg.Sonar.Token)
	if err != nil {
		return nil, err
	}

	trackerClient, err := jira.New(cfg.Jira.BaseURL, cfg.Jira.Username, cfg.Jira.Token)
	if err != nil {
		return nil, err
	}

	return sync.NewService(sync.ServiceConfig{
		Source:            sonar.NewSourceAdapter(scannerClient, cfg.Sonar.FallbackProjectKey),
		Scanner:           scannerClient,
		Tracker:           trackerClient,
		Projects:          projects,
		Cache:             sync.NewAccountCache(),
		TrackerProjectKey: cfg.Jira.ProjectKey,
		ReferenceField:    cfg.Jira.ReferenceField,
		ScannerBaseURL:    cfg.Sonar.BaseURL,
	}), nil
}

func setupRouter(cfg config.Config, syncService sync.Service) *gin.Engine {
	router := gin.New()

	// Order matters: OTel creates span → Recovery catches panics → Logger logs with trace context
	if cfg.OTel.Enabled() {
		router.Use(otelgin.Middleware(cfg.OTel.ServiceName))
	}
	router.Use(middleware.Recovery())
	router.Use(middleware.Logger())

	httprouter.SetupRoutes(router, syncService)

	return router
}
