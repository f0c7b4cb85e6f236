package sonar

import (
	"errors"
	"fmt"
)

// Issue is one unresolved scanner issue (bug or vulnerability).
type Issue struct {
	Key          string `json:"key"`
	Rule         string `json:"rule"`
	Severity     string `json:"severity"`
	Component    string `json:"component"`
	Project      string `json:"project"`
	Message      string `json:"message"`
	Type         string `json:"type"`
	Assignee     string `json:"assignee"`
	CreationDate string `json:"creationDate"`
}

// Hotspot is a security-sensitive location pending manual review.
type Hotspot struct {
	Key                      string `json:"key"`
	Component                string `json:"component"`
	Project                  string `json:"project"`
	SecurityCategory         string `json:"securityCategory"`
	VulnerabilityProbability string `json:"vulnerabilityProbability"`
	Status                   string `json:"status"`
	Resolution               string `json:"resolution"`
	Message                  string `json:"message"`
	CreationDate             string `json:"creationDate"`
}

// Reviewed reports whether the hotspot has been reviewed away. Anything
// still TO_REVIEW counts as active.
func (h Hotspot) Reviewed() bool {
	return h.Status == "REVIEWED"
}

type issueSearchResponse struct {
	Issues []Issue `json:"issues"`
	Paging paging  `json:"paging"`
}

type hotspotSearchResponse struct {
	Hotspots []Hotspot `json:"hotspots"`
	Paging   paging    `json:"paging"`
}

type paging struct {
	PageIndex int `json:"pageIndex"`
	PageSize  int `json:"pageSize"`
	Total     int `json:"total"`
}

// APIError is a non-2xx response from the scanner API.
type APIError struct {
	Operation  string
	StatusCode int
	Message    string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("sonar: %s: status %d: %s", e.Operation, e.StatusCode, e.Message)
}

// IsNotFound reports whether err is a structured 404 from the scanner.
// The reconciler relies on this to tell "confirmed absent" from "unknown".
func IsNotFound(err error) bool {
	var apiErr *APIError
	return errors.As(err, &apiErr) && apiErr.StatusCode == 404
}

func isRetryable(err error) bool {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.StatusCode == 429 || apiErr.StatusCode >= 500
	}
	// Network-level failures are always worth another attempt.
	return true
}
