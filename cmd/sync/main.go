package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"qualisync.app/bridge/common/id"
	"qualisync.app/bridge/common/logger"
	"qualisync.app/bridge/core/config"
	"qualisync.app/bridge/internal/jira"
	"qualisync.app/bridge/internal/sonar"
	"qualisync.app/bridge/internal/sync"
)

// One-shot sync for CI jobs: file tickets for new findings, then close
// tickets whose findings are gone, and print both reports as JSON.
func main() {
	ctx := context.Background()

	cfg, err := config.Load()
	if err != nil {
		slog.ErrorContext(ctx, "failed to load config", "error", err)
		os.Exit(1)
	}

	logger.Setup(cfg)

	if err := id.Init(1); err != nil {
		slog.ErrorContext(ctx, "failed to initialize snowflake id generator", "error", err)
		os.Exit(1)
	}

	syncService, err := buildSyncService(cfg)
	if err != nil {
		slog.ErrorContext(ctx, "failed to build sync service", "error", err)
		os.Exit(1)
	}

	syncReport, err := syncService.SyncFindings(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "finding sync failed", "error", err)
		os.Exit(1)
	}

	closeReport, err := syncService.CloseResolved(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "reconciliation pass failed", "error", err)
		os.Exit(1)
	}

	out, _ := json.MarshalIndent(map[string]any{
		"sync":  syncReport,
		"close": closeReport,
	}, "", "  ")
	fmt.Println(string(out))
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
