package sonar

import (
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

const pageSize = 500

// Client talks to a SonarQube-compatible API. Authentication is a basic
// credential pair with the token as username and an empty password.
type Client struct {
	baseURL    string
	token      string
	httpClient *http.Client
	policy     retry.Policy
}

// Option configures the Client during construction.
type Option func(*Client)

// New creates a Client for the given scanner instance.
func New(baseURL, token string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("sonar: baseURL is required")
	}

	c := &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
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

// SearchUnresolvedIssues returns all unresolved bugs and vulnerabilities
// for one project.
func (c *Client) SearchUnresolvedIssues(ctx context.Context, projectKey string) ([]Issue, error) {
	query := url.Values{
		"componentKeys": {projectKey},
		"types":         {"BUG,VULNERABILITY"},
		"resolved":      {"false"},
		"ps":            {fmt.Sprint(pageSize)},
	}

	var resp issueSearchResponse
	if err := c.get(ctx, "/api/issues/search", query, "search unresolved issues", &resp); err != nil {
		return nil, err
	}
	return resp.Issues, nil
}

// SearchIssuesByKeys returns the subset of the given issue keys that are
// still unresolved in the scanner.
func (c *Client) SearchIssuesByKeys(ctx context.Context, keys []string) ([]Issue, error) {
	query := url.Values{
		"issues":   {strings.Join(keys, ",")},
		"resolved": {"false"},
		"ps":       {fmt.Sprint(pageSize)},
	}

	var resp issueSearchResponse
	if err := c.get(ctx, "/api/issues/search", query, "search issues by keys", &resp); err != nil {
		return nil, err
	}
	return resp.Issues, nil
}

// SearchHotspots returns all security hotspots reported for one project.
func (c *Client) SearchHotspots(ctx context.Context, projectKey string) ([]Hotspot, error) {
	query := url.Values{
		"projectKey": {projectKey},
		"ps":         {fmt.Sprint(pageSize)},
	}

	var resp hotspotSearchResponse
	if err := c.get(ctx, "/api/hotspots/search", query, "search hotspots", &resp); err != nil {
		return nil, err
	}
	return resp.Hotspots, nil
}

// ShowHotspot fetches a single hotspot by key. A missing hotspot surfaces
// as an *APIError with status 404, matched by IsNotFound.
func (c *Client) ShowHotspot(ctx context.Context, key string) (*Hotspot, error) {
	query := url.Values{"hotspot": {key}}

	var hotspot Hotspot
	if err := c.get(ctx, "/api/hotspots/show", query, "show hotspot", &hotspot); err != nil {
		return nil, err
	}
	return &hotspot, nil
}

func (c *Client) get(ctx context.Context, path string, query url.Values, operation string, dst any) error {
	return retry.Do(ctx, c.policy, func() error {
		return c.doJSON(ctx, path, query, operation, dst)
	})
}

func (c *Client) doJSON(ctx context.Context, path string, query url.Values, operation string, dst any) error {
	u := c.baseURL + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return fmt.Errorf("%s: create request: %w", operation, err)
	}
	req.SetBasicAuth(c.token, "")

	slog.DebugContext(ctx, "scanner request", "operation", operation, "url", u)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s: do request: %w", operation, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(resp.Body)
		msg := string(body)
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
