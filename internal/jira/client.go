package jira

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"qualisync.app/bridge/common/retry"
)

// Client talks to a Jira Cloud REST v3 API with basic auth
// (username + API token).
type Client struct {
	baseURL    string
	username   string
	token      string
	httpClient *http.Client
	policy     retry.Policy
}

// Option configures the Client during construction.
type Option func(*Client)

// New creates a Client for the given tracker instance.
func New(baseURL, username, token string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("jira: baseURL is required")
	}

	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		username:   username,
		token:      token,
		httpClient: &http.Client{Timeout: 30 * time.Second},
		policy:     retry.DefaultPolicy(),
	}
	c.policy.Retryable = isRetryable

	for _, opt := range opts {
		opt(c)
	}
	return c, nil
}

// WithHTTPClient overrides the default HTTP client.
func WithHTTPClient(hc *http.Client) Option {
	return func(c *Client) { c.httpClient = hc }
}

// WithRetryPolicy overrides the default retry policy.
func WithRetryPolicy(p retry.Policy) Option {
	return func(c *Client) { c.policy = p }
}

// CreateIssue files a new ticket and returns its key. Fields are a raw
// field map so dynamically named custom fields (the reference field) can
// be included.
func (c *Client) CreateIssue(ctx context.Context, fields map[string]any) (string, error) {
	body := map[string]any{"fields": fields}

	var resp createIssueResponse
	if err := c.do(ctx, http.MethodPost, "/rest/api/3/issue", "create issue", body, &resp); err != nil {
		return "", err
	}
	return resp.Key, nil
}

// Search runs a JQL query with field projection and pagination.
func (c *Client) Search(ctx context.Context, req SearchRequest) (*SearchResponse, error) {
	var resp SearchResponse
	if err := c.do(ctx, http.MethodPost, "/rest/api/3/search", "search issues", req, &resp); err != nil {
		return nil, err
	}
	return &resp, nil
}

// GetTransitions lists the workflow transitions currently available on a
// ticket.
func (c *Client) GetTransitions(ctx context.Context, ticketKey string) ([]Transition, error) {
	path := fmt.Sprintf("/rest/api/3/issue/%s/transitions", url.PathEscape(ticketKey))

	var resp transitionsResponse
	if err := c.do(ctx, http.MethodGet, path, "get transitions", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Transitions, nil
}

// ApplyTransition moves a ticket through a transition, optionally setting
// the resolution and attaching a comment in the same request.
func (c *Client) ApplyTransition(ctx context.Context, params ApplyTransitionParams) error {
	body := map[string]any{
		"transition": map[string]any{"id": params.TransitionID},
	}
	if params.Resolution != "" {
		body["fields"] = map[string]any{
			"resolution": map[string]any{"name": params.Resolution},
		}
	}
	if params.Comment != nil {
		body["update"] = map[string]any{
			"comment": []map[string]any{
				{"add": map[string]any{"body": *params.Comment}},
			},
		}
	}

	path := fmt.Sprintf("/rest/api/3/issue/%s/transitions", url.PathEscape(params.TicketKey))
	return c.do(ctx, http.MethodPost, path, "apply transition", body, nil)
}

// AddComment posts a standalone comment on a ticket.
func (c *Client) AddComment(ctx context.Context, ticketKey string, body ADF) error {
	path := fmt.Sprintf("/rest/api/3/issue/%s/comment", url.PathEscape(ticketKey))
	payload := map[string]any{"body": body}
	return c.do(ctx, http.MethodPost, path, "add comment", payload, nil)
}

// SearchUsers finds tracker accounts matching the query (typically an
// email address).
func (c *Client) SearchUsers(ctx context.Context, query string) ([]User, error) {
	path := "/rest/api/3/user/search?query=" + url.QueryEscape(query)

	var users []User
	if err := c.do(ctx, http.MethodGet, path, "search users", nil, &users); err != nil {
		return nil, err
	}
	return users, nil
}

func (c *Client) do(ctx context.Context, method, path, operation string, body, dst any) error {
	var payload []byte
	if body != nil {
		var err error
		payload, err = json.Marshal(body)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", operation, err)
		}
	}

	return retry.Do(ctx, c.policy, func() error {
		return c.doJSON(ctx, method, path, operation, payload, dst)
	})
}

func (c *Client) doJSON(ctx context.Context, method, path, operation string, payload []byte, dst any) error {
	var reader io.Reader
	if payload != nil {
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", operation, err)
	}
	req.SetBasicAuth(c.username, c.token)
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	slog.DebugContext(ctx, "tracker request", "operation", operation, "method", method, "path", path)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: do request: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		respBody, _ := io.ReadAll(resp.Body)
		msg := string(respBody)
		if msg == "" {
			msg = resp.Status
		}
		return &APIError{Operation: operation, StatusCode: resp.StatusCode, Message: msg}
	}

	if dst != nil {
		if err := json.NewDecoder(resp.Body).Decode(dst); err != nil {
			return fmt.Errorf("%s: decode response: %w", operation, err)
		}
	}
	return nil
}
