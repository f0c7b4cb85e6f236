package sync

import (
	"context"

	"qualisync.app/bridge/internal/jira"
	"qualisync.app/bridge/internal/model"
	"qualisync.app/bridge/internal/sonar"
)

// ScannerGateway is the slice of the scanner API the reconciler needs.
type ScannerGateway interface {
	SearchIssuesByKeys(ctx context.Context, keys []string) ([]sonar.Issue, error)
	ShowHotspot(ctx context.Context, key string) (*sonar.Hotspot, error)
}

// TrackerGateway is the slice of the tracker API the engines need.
type TrackerGateway interface {
	CreateIssue(ctx context.Context, fields map[string]any) (string, error)
	Search(ctx context.Context, req jira.SearchRequest) (*jira.SearchResponse, error)
	GetTransitions(ctx context.Context, ticketKey string) ([]jira.Transition, error)
	ApplyTransition(ctx context.Context, params jira.ApplyTransitionParams) error
	AddComment(ctx context.Context, ticketKey string, body jira.ADF) error
	SearchUsers(ctx context.Context, query string) ([]jira.User, error)
}

// Service exposes the two outward-facing operations.
type Service interface {
	// SyncFindings fetches findings from the scanner and files a ticket for
	// every finding that has no open ticket yet.
	SyncFindings(ctx context.Context) (model.SyncReport, error)
	// CloseResolved reconciles open tickets against the scanner and closes
	// those whose finding is no longer reported.
	CloseResolved(ctx context.Context) (model.CloseReport, error)
}
