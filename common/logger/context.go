package logger

import "context"

type contextKey string

const logFieldsKey contextKey = "log_fields"

// LogFields contains structured fields automatically added to all logs
// within a context. Business context (run id, project, finding, ticket)
// flows through context enrichment so call sites never repeat it.
type LogFields struct {
	RunID      *int64  // sync run id
	ProjectKey *string // scanner project key
	FindingKey *string // scanner finding key (issue or hotspot)
	TicketKey  *string // tracker ticket key
	Component  string  // component name, e.g. "bridge.sync.reconciler"
}

// WithLogFields enriches context with structured log fields. Multiple calls
// merge fields, newer non-nil/non-empty values taking precedence.
func WithLogFields(ctx context.Context, fields LogFields) context.Context {
	merged := mergeFields(GetLogFields(ctx), fields)
	return context.WithValue(ctx, logFieldsKey, merged)
}

// GetLogFields retrieves log fields from context, empty if none are set.
func GetLogFields(ctx context.Context) LogFields {
	if fields, ok := ctx.Value(logFieldsKey).(LogFields); ok {
		return fields
	}
	return LogFields{}
}

func mergeFields(existing, next LogFields) LogFields {
	result := existing

	if next.RunID != nil {
		result.RunID = next.RunID
	}
	if next.ProjectKey != nil {
		result.ProjectKey = next.ProjectKey
	}
	if next.FindingKey != nil {
		result.FindingKey = next.FindingKey
	}
	if next.TicketKey != nil {
		result.TicketKey = next.TicketKey
	}
	if next.Component != "" {
		result.Component = next.Component
	}

	return result
}

// Ptr is a helper to create a pointer from a value, for inline LogFields.
func Ptr[T any](v T) *T {
	return &v
}
