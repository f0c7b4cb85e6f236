package scheduler

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/robfig/cron/v3"

	"qualisync.app/bridge/internal/sync"
)

// Scheduler runs the full sync (finding sync, then reconciliation) on a
// cron schedule.
type Scheduler struct {
	cron        *cron.Cron
	syncService sync.Service
}

func New(syncService sync.Service) *Scheduler {
	return &Scheduler{
		cron:        cron.New(),
		syncService: syncService,
	}
}

// Register adds the periodic full sync. The schedule is a standard cron
// expression or a predefined one like "@every 1h".
func (s *Scheduler) Register(schedule string) error {
	_, err := s.cron.AddFunc(schedule, s.runOnce)
	if err != nil {
		return fmt.Errorf("scheduler: invalid schedule %q: %w", schedule, err)
	}
	slog.Info("periodic sync registered", "schedule", schedule)
	return nil
}

// Start begins the cron scheduler and blocks until the context is
// cancelled.
func (s *Scheduler) Start(ctx context.Context) error {
	s.cron.Start()
	slog.Info("scheduler started")

	<-ctx.Done()
	s.cron.Stop()
	slog.Info("scheduler stopped")
	return ctx.Err()
}

func (s *Scheduler) runOnce() {
	ctx := context.Background()

	syncReport, err := s.syncService.SyncFindings(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "scheduled finding sync failed", "error", err)
	} else {
		slog.InfoContext(ctx, "scheduled finding sync finished",
			"created", len(syncReport.Created), "existing", len(syncReport.Existing))
	}

	closeReport, err := s.syncService.CloseResolved(ctx)
	if err != nil {
		slog.ErrorContext(ctx, "scheduled reconciliation failed", "error", err)
		return
	}
	slog.InfoContext(ctx, "scheduled reconciliation finished",
		"checked", closeReport.Checked, "closed", closeReport.Closed,
		"not_resolved", closeReport.NotResolved, "with_errors", closeReport.WithErrors)
}
