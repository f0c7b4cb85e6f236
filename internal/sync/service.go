package sync

import (
	"context"
	"log/slog"

	"qualisync.app/bridge/common/id"
	"qualisync.app/bridge/common/logger"
	"qualisync.app/bridge/core/config"
	"qualisync.app/bridge/internal/model"
)

// FindingSource is the scanner-side finding feed.
type FindingSource interface {
	FetchFindings(ctx context.Context, projects []config.Project) (issues, hotspots []model.Finding)
}

type service struct {
	source         FindingSource
	projects       []config.Project
	resolver       *UserResolver
	index          *IndexBuilder
	creator        *CreationEngine
	reconciler     *Reconciler
	closer         *ClosureEngine
	tracker        TrackerGateway
	referenceField string
}

type ServiceConfig struct {
	Source   FindingSource
	Scanner  ScannerGateway
	Tracker  TrackerGateway
	Projects []config.Project
	Cache    *AccountCache

	TrackerProjectKey string
	ReferenceField    string
	ScannerBaseURL    string
}

func NewService(cfg ServiceConfig) Service {
	resolver := NewUserResolver(cfg.Tracker, cfg.Cache)
	pacer := NewPacer(writeGap)

	return &service{
		source:   cfg.Source,
		projects: cfg.Projects,
		resolver: resolver,
		index:    NewIndexBuilder(cfg.Tracker, cfg.ReferenceField),
		creator: NewCreationEngine(CreationEngineConfig{
			Tracker:        cfg.Tracker,
			Resolver:       resolver,
			Pacer:          pacer,
			ProjectKey:     cfg.TrackerProjectKey,
			ReferenceField: cfg.ReferenceField,
			ScannerBaseURL: cfg.ScannerBaseURL,
		}),
		reconciler:     NewReconciler(cfg.Scanner),
		closer:         NewClosureEngine(cfg.Tracker, pacer),
		tracker:        cfg.Tracker,
		referenceField: cfg.ReferenceField,
	}
}

func (s *service) SyncFindings(ctx context.Context) (model.SyncReport, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		RunID:     logger.Ptr(id.New()),
		Component: "bridge.sync",
	})

	issues, hotspots := s.source.FetchFindings(ctx, s.projects)
	findings := make([]model.Finding, 0, len(issues)+len(hotspots))
	findings = append(findings, issues...)
	findings = append(findings, hotspots...)

	slog.InfoContext(ctx, "findings fetched", "issues", len(issues), "hotspots", len(hotspots))

	if len(findings) == 0 {
		return model.SyncReport{Created: []string{}, Existing: []string{}}, nil
	}

	emails := make([]string, 0, len(s.projects))
	for _, p := range s.projects {
		emails = append(emails, p.AssigneeEmail)
	}
	s.resolver.Resolve(ctx, emails)

	keys := make([]string, len(findings))
	for i, f := range findings {
		keys[i] = f.Key
	}
	index := s.index.Build(ctx, keys)

	projectsByKey := make(map[string]config.Project, len(s.projects))
	for _, p := range s.projects {
		projectsByKey[p.Key] = p
	}

	created, existing := s.creator.Run(ctx, findings, index, projectsByKey)
	if created == nil {
		created = []string{}
	}
	if existing == nil {
		existing = []string{}
	}

	slog.InfoContext(ctx, "finding sync finished", "created", len(created), "existing", len(existing))
	return model.SyncReport{Created: created, Existing: existing}, nil
}

func (s *service) CloseResolved(ctx context.Context) (model.CloseReport, error) {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		RunID:     logger.Ptr(id.New()),
		Component: "bridge.reconcile",
	})

	orchestrator := &closeOrchestrator{
		tracker:        s.tracker,
		reconciler:     s.reconciler,
		closer:         s.closer,
		referenceField: s.referenceField,
	}

	report, err := orchestrator.run(ctx)
	if err != nil {
		return model.CloseReport{}, err
	}

	slog.InfoContext(ctx, "reconciliation pass finished",
		"checked", report.Checked, "closed", report.Closed,
		"not_resolved", report.NotResolved, "with_errors", report.WithErrors)
	return report, nil
}
