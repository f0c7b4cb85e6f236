package sync

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"qualisync.app/bridge/common/logger"
	"qualisync.app/bridge/core/config"
	"qualisync.app/bridge/internal/jira"
	"qualisync.app/bridge/internal/model"
)

// summaryLimit is the tracker's effective summary length in characters.
// Longer summaries are cut to 251 characters plus an ellipsis.
const summaryLimit = 254

// CreationEngine files one ticket per un-ticketed finding.
type CreationEngine struct {
	tracker        TrackerGateway
	resolver       *UserResolver
	pacer          *Pacer
	projectKey     string
	referenceField string
	scannerBaseURL string
}

type CreationEngineConfig struct {
	Tracker        TrackerGateway
	Resolver       *UserResolver
	Pacer          *Pacer
	ProjectKey     string
	ReferenceField string
	ScannerBaseURL string
}

func NewCreationEngine(cfg CreationEngineConfig) *CreationEngine {
	return &CreationEngine{
		tracker:        cfg.Tracker,
		resolver:       cfg.Resolver,
		pacer:          cfg.Pacer,
		projectKey:     cfg.ProjectKey,
		referenceField: cfg.ReferenceField,
		scannerBaseURL: strings.TrimSuffix(cfg.ScannerBaseURL, "/"),
	}
}

// Run creates a ticket for every finding not present in the index.
// Findings already indexed are reported under existing. Per-finding
// creation failures are logged and skipped; the engine always finishes
// the whole set.
func (e *CreationEngine) Run(ctx context.Context, findings []model.Finding, index ExistenceIndex, projects map[string]config.Project) (created, existing []string) {
	for _, finding := range findings {
		fctx := logger.WithLogFields(ctx, logger.LogFields{
			FindingKey: logger.Ptr(finding.Key),
			ProjectKey: logger.Ptr(finding.ProjectKey),
		})

		if ticketKey, ok := index[finding.Key]; ok {
			existing = append(existing, ticketKey)
			continue
		}

		fields := e.buildFields(finding, projects[finding.ProjectKey])

		if err := e.pacer.Wait(fctx); err != nil {
			slog.WarnContext(fctx, "ticket creation cancelled", "error", err)
			return created, existing
		}
		ticketKey, err := e.tracker.CreateIssue(fctx, fields)
		if err != nil {
			slog.WarnContext(fctx, "ticket creation failed", "error", err)
			continue
		}

		slog.InfoContext(fctx, "ticket created", "ticket_key", ticketKey)
		created = append(created, ticketKey)
	}

	return created, existing
}

func (e *CreationEngine) buildFields(finding model.Finding, project config.Project) map[string]any {
	fields := map[string]any{
		"project":        map[string]any{"key": e.projectKey},
		"issuetype":      map[string]any{"name": "Bug"},
		"summary":        buildSummary(finding),
		"priority":       map[string]any{"name": PriorityFor(finding)},
		"description":    e.buildDescription(finding, project),
		e.referenceField: jira.TextDocument(finding.Key),
	}

	if project.Component != "" {
		fields["labels"] = []string{project.Component}
	}
	if accountID, ok := e.resolver.Lookup(project.AssigneeEmail); ok {
		fields["assignee"] = map[string]any{"accountId": accountID}
	}

	return fields
}

// buildSummary renders "{message} in {filename}", truncated to 254
// characters with a trailing ellipsis when longer. The limit counts
// characters, not bytes, so multibyte messages are never cut mid-rune.
func buildSummary(finding model.Finding) string {
	summary := fmt.Sprintf("%s in %s", finding.Message, finding.FileName())
	runes := []rune(summary)
	if len(runes) > summaryLimit {
		return string(runes[:summaryLimit-3]) + "..."
	}
	return summary
}

// PriorityFor maps finding severity to ticket priority. Blocker and
// critical issues, and high or medium probability hotspots, go Highest;
// everything else goes High.
func PriorityFor(finding model.Finding) string {
	switch finding.Kind {
	case model.FindingKindHotspot:
		if finding.Severity == model.ProbabilityHigh || finding.Severity == model.ProbabilityMedium {
			return model.PriorityHighest
		}
	default:
		if finding.Severity == model.SeverityBlocker || finding.Severity == model.SeverityCritical {
			return model.PriorityHighest
		}
	}
	return model.PriorityHigh
}

func (e *CreationEngine) buildDescription(finding model.Finding, project config.Project) jira.ADF {
	projectName := project.Name
	if projectName == "" {
		projectName = finding.ProjectKey
	}

	return jira.Document(
		jira.Paragraph(jira.Text(fmt.Sprintf("Project: %s (%s)", projectName, finding.ProjectKey))),
		jira.Paragraph(jira.Text(finding.Message)),
		jira.Paragraph(jira.Text(fmt.Sprintf("File: %s", finding.FileName()))),
		jira.Paragraph(jira.Link("View in SonarQube", e.permalink(finding))),
	)
}

// permalink deep-links back to the finding; issues and hotspots have
// different URL shapes in the scanner UI.
func (e *CreationEngine) permalink(finding model.Finding) string {
	switch finding.Kind {
	case model.FindingKindHotspot:
		return fmt.Sprintf("%s/security_hotspots?id=%s&hotspots=%s",
			e.scannerBaseURL, url.QueryEscape(finding.ProjectKey), url.QueryEscape(finding.Key))
	default:
		return fmt.Sprintf("%s/project/issues?id=%s&issues=%s&open=%s",
			e.scannerBaseURL, url.QueryEscape(finding.ProjectKey),
			url.QueryEscape(finding.Key), url.QueryEscape(finding.Key))
	}
}
