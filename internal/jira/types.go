package jira

import (
	"encoding/json"
	"errors"
	"fmt"
)

// APIError is a non-2xx response from the tracker API.
type APIError struct {
	Operation  string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("jira: %s: status %d: %s", e.Operation, e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a structured 404 from the tracker.
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 404
}

func isRetryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429 || apiErr.StatusCode >= 500
	}
	return true
}

// User is a tracker account returned by user search.
type User struct {
	AccountID    string `json:"accountId"`
	EmailAddress string `json:"emailAddress"`
	DisplayName  string `json:"displayName"`
	Active       bool   `json:"active"`
}

// SearchRequest is a JQL search with field projection and pagination.
type SearchRequest struct {
	JQL        string   `json:"jql"`
	StartAt    int      `json:"startAt"`
	MaxResults int      `json:"maxResults"`
	Fields     []string `json:"fields,omitempty"`
}

type SearchResponse struct {
	StartAt    int      `json:"startAt"`
	MaxResults int      `json:"maxResults"`
	Total      int      `json:"total"`
	Issues     []Ticket `json:"issues"`
}

// Ticket is one search hit. Fields stay raw so dynamically named custom
// fields (the reference field) can be decoded per call site.
type Ticket struct {
	ID     string                     `json:"id"`
	Key    string                     `json:"key"`
	Fields map[string]json.RawMessage `json:"fields"`
}

// ReferenceDocument decodes the named custom field as an ADF document.
func (t Ticket) ReferenceDocument(field string) (ADF, error) {
	raw, ok := t.Fields[field]
	if !ok || string(raw) == "null" {
		return ADF{}, fmt.Errorf("ticket %s: reference field %s is empty", t.Key, field)
	}
	doc, err := ParseDocument(raw)
	if err != nil {
		return ADF{}, fmt.Errorf("ticket %s: parsing reference field: %w", t.Key, err)
	}
	return doc, nil
}

// Transition is one workflow transition available on a ticket.
type Transition struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

type transitionsResponse struct {
	Transitions []Transition `json:"transitions"`
}

type createIssueResponse struct {
	ID  string `json:"id"`
	Key string `json:"key"`
}

// ApplyTransitionParams moves a ticket through a workflow transition,
// optionally setting a resolution and adding a comment in the same call.
type ApplyTransitionParams struct {
	TicketKey    string
	TransitionID string
	Resolution   string
	Comment      *ADF
}
