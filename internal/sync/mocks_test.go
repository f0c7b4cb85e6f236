package sync_test

import (
	"context"

	"qualisync.app/bridge/core/config"
	"qualisync.app/bridge/internal/jira"
	"qualisync.app/bridge/internal/model"
	"qualisync.app/bridge/internal/sonar"
)

type mockTracker struct {
	createIssueFn     func(ctx context.Context, fields map[string]any) (string, error)
	searchFn          func(ctx context.Context, req jira.SearchRequest) (*jira.SearchResponse, error)
	getTransitionsFn  func(ctx context.Context, ticketKey string) ([]jira.Transition, error)
	applyTransitionFn func(ctx context.Context, params jira.ApplyTransitionParams) error
	addCommentFn      func(ctx context.Context, ticketKey string, body jira.ADF) error
	searchUsersFn     func(ctx context.Context, query string) ([]jira.User, error)

	createCalls    int
	applyCalls     int
	commentCalls   int
	appliedParams  []jira.ApplyTransitionParams
	createdFields  []map[string]any
	searchRequests []jira.SearchRequest
}

func (m *mockTracker) CreateIssue(ctx context.Context, fields map[string]any) (string, error) {
	m.createCalls++
	m.createdFields = append(m.createdFields, fields)
	if m.createIssueFn != nil {
		return m.createIssueFn(ctx, fields)
	}
	return "", nil
}

func (m *mockTracker) Search(ctx context.Context, req jira.SearchRequest) (*jira.SearchResponse, error) {
	m.searchRequests = append(m.searchRequests, req)
	if m.searchFn != nil {
		return m.searchFn(ctx, req)
	}
	return &jira.SearchResponse{}, nil
}

func (m *mockTracker) GetTransitions(ctx context.Context, ticketKey string) ([]jira.Transition, error) {
	if m.getTransitionsFn != nil {
		return m.getTransitionsFn(ctx, ticketKey)
	}
	return nil, nil
}

func (m *mockTracker) ApplyTransition(ctx context.Context, params jira.ApplyTransitionParams) error {
	m.applyCalls++
	m.appliedParams = append(m.appliedParams, params)
	if m.applyTransitionFn != nil {
		return m.applyTransitionFn(ctx, params)
	}
	return nil
}

func (m *mockTracker) AddComment(ctx context.Context, ticketKey string, body jira.ADF) error {
	m.commentCalls++
	if m.addCommentFn != nil {
		return m.addCommentFn(ctx, ticketKey, body)
	}
	return nil
}

func (m *mockTracker) SearchUsers(ctx context.Context, query string) ([]jira.User, error) {
	if m.searchUsersFn != nil {
		return m.searchUsersFn(ctx, query)
	}
	return nil, nil
}

type mockScanner struct {
	searchIssuesByKeysFn func(ctx context.Context, keys []string) ([]sonar.Issue, error)
	showHotspotFn        func(ctx context.Context, key string) (*sonar.Hotspot, error)

	hotspotCalls []string
}

func (m *mockScanner) SearchIssuesByKeys(ctx context.Context, keys []string) ([]sonar.Issue, error) {
	if m.searchIssuesByKeysFn != nil {
		return m.searchIssuesByKeysFn(ctx, keys)
	}
	return nil, nil
}

func (m *mockScanner) ShowHotspot(ctx context.Context, key string) (*sonar.Hotspot, error) {
	m.hotspotCalls = append(m.hotspotCalls, key)
	if m.showHotspotFn != nil {
		return m.showHotspotFn(ctx, key)
	}
	return nil, &sonar.APIError{Operation: "show hotspot", StatusCode: 404, Message: "not found"}
}

type mockSource struct {
	fetchFn func(ctx context.Context, projects []config.Project) ([]model.Finding, []model.Finding)
}

func (m *mockSource) FetchFindings(ctx context.Context, projects []config.Project) ([]model.Finding, []model.Finding) {
	if m.fetchFn != nil {
		return m.fetchFn(ctx, projects)
	}
	return nil, nil
}
