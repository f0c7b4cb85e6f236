package sonar

import (
	"context"
	"log/slog"

	"qualisync.app/bridge/common/logger"
	"qualisync.app/bridge/core/config"
	"qualisync.app/bridge/internal/model"
)

// API is the slice of the scanner client the source adapter uses.
type API interface {
	SearchUnresolvedIssues(ctx context.Context, projectKey string) ([]Issue, error)
	SearchHotspots(ctx context.Context, projectKey string) ([]Hotspot, error)
}

// SourceAdapter fetches findings per project, tolerating partial failure:
// a project where either fetch fails contributes zero findings, issues
// included, and never aborts the run.
type SourceAdapter struct {
	api API
	// fallbackKey is used when no project list is configured.
	fallbackKey string
}

func NewSourceAdapter(api API, fallbackKey string) *SourceAdapter {
	return &SourceAdapter{api: api, fallbackKey: fallbackKey}
}

// FetchFindings returns all unresolved issues and all hotspots for the
// given projects, concatenated in input order. With no enabled projects
// and no fallback key it returns empty sequences without error.
func (a *SourceAdapter) FetchFindings(ctx context.Context, projects []config.Project) (issues []model.Finding, hotspots []model.Finding) {
	keys := make([]string, 0, len(projects))
	for _, p := range projects {
		keys = append(keys, p.Key)
	}
	if len(keys) == 0 && a.fallbackKey != "" {
		keys = append(keys, a.fallbackKey)
	}

	for _, key := range keys {
		pctx := logger.WithLogFields(ctx, logger.LogFields{ProjectKey: logger.Ptr(key)})

		projectIssues, err := a.api.SearchUnresolvedIssues(pctx, key)
		if err != nil {
			slog.WarnContext(pctx, "fetching issues failed, skipping project", "error", err)
			continue
		}
		projectHotspots, err := a.api.SearchHotspots(pctx, key)
		if err != nil {
			slog.WarnContext(pctx, "fetching hotspots failed, skipping project", "error", err)
			continue
		}

		for _, issue := range projectIssues {
			issues = append(issues, toIssueFinding(issue))
		}
		for _, hotspot := range projectHotspots {
			hotspots = append(hotspots, toHotspotFinding(hotspot))
		}
	}

	return issues, hotspots
}

func toIssueFinding(issue Issue) model.Finding {
	return model.Finding{
		Key:        issue.Key,
		ProjectKey: issue.Project,
		Component:  issue.Component,
		Message:    issue.Message,
		Kind:       model.FindingKindIssue,
		Severity:   issue.Severity,
		CreatedAt:  issue.CreationDate,
		Assignee:   issue.Assignee,
	}
}

func toHotspotFinding(hotspot Hotspot) model.Finding {
	return model.Finding{
		Key:        hotspot.Key,
		ProjectKey: hotspot.Project,
		Component:  hotspot.Component,
		Message:    hotspot.Message,
		Kind:       model.FindingKindHotspot,
		Severity:   hotspot.VulnerabilityProbability,
		CreatedAt:  hotspot.CreationDate,
	}
}
