package sync

import (
	"fmt"
	"strings"

	"qualisync.app/bridge/internal/model"
)

// jqlField converts a REST custom field id ("customfield_10200") into its
// JQL clause form ("cf[10200]").
func jqlField(field string) string {
	if id, ok := strings.CutPrefix(field, "customfield_"); ok {
		return fmt.Sprintf("cf[%s]", id)
	}
	return fmt.Sprintf("%q", field)
}

func quotedList(values []string) string {
	quoted := make([]string, len(values))
	for i, v := range values {
		quoted[i] = fmt.Sprintf("%q", v)
	}
	return strings.Join(quoted, ", ")
}

// existenceJQL matches open tickets whose reference field contains any of
// the given finding keys.
func existenceJQL(referenceField string, keys []string) string {
	clauses := make([]string, len(keys))
	for i, key := range keys {
		clauses[i] = fmt.Sprintf("%s ~ %q", jqlField(referenceField), key)
	}
	return fmt.Sprintf("(%s) AND status NOT IN (%s)",
		strings.Join(clauses, " OR "), quotedList(model.TerminalStatuses))
}

// reconcileJQL matches every open ticket that carries a reference field
// and is neither terminal nor under manual review.
func reconcileJQL(referenceField string) string {
	excluded := append(append([]string{}, model.TerminalStatuses...), model.InReviewStatus)
	return fmt.Sprintf("%s IS NOT EMPTY AND status NOT IN (%s)",
		jqlField(referenceField), quotedList(excluded))
}
