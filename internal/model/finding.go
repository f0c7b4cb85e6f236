package model

import "strings"

type FindingKind string

const (
	FindingKindIssue   FindingKind = "issue"
	FindingKindHotspot FindingKind = "hotspot"
)

// Issue severities and hotspot vulnerability probabilities as reported by
// the scanner. Both land in Finding.Severity.
const (
	SeverityBlocker  = "BLOCKER"
	SeverityCritical = "CRITICAL"
	SeverityMajor    = "MAJOR"
	SeverityMinor    = "MINOR"
	SeverityInfo     = "INFO"

	ProbabilityHigh   = "HIGH"
	ProbabilityMedium = "MEDIUM"
	ProbabilityLow    = "LOW"
)

// Finding is one scanner result, issue or security hotspot. Immutable once
// fetched; it lives for a single synchronization run.
type Finding struct {
	Key        string
	ProjectKey string
	Component  string
	Message    string
	Kind       FindingKind
	Severity   string
	CreatedAt  string
	Assignee   string
}

// FileName returns the last colon-delimited segment of the component path,
// which is the file path without the project prefix.
func (f Finding) FileName() string {
	parts := strings.Split(f.Component, ":")
	return parts[len(parts)-1]
}
