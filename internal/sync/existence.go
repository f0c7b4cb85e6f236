package sync

import (
	"context"
	"log/slog"

	"qualisync.app/bridge/internal/jira"
)

// existenceBatchSize is how many finding keys go into one search query.
const existenceBatchSize = 50

// ExistenceIndex maps finding key to the key of its open ticket. It is a
// read-only snapshot built once per creation run and discarded afterwards.
type ExistenceIndex map[string]string

// IndexBuilder builds the existence index via batched tracker searches.
type IndexBuilder struct {
	tracker        TrackerGateway
	referenceField string
}

func NewIndexBuilder(tracker TrackerGateway, referenceField string) *IndexBuilder {
	return &IndexBuilder{tracker: tracker, referenceField: referenceField}
}

// Build queries the tracker for open tickets referencing any of the given
// finding keys, in batches of 50. A failed batch contributes no entries;
// tickets whose reference field cannot be parsed are skipped. Neither is
// fatal: duplicate-prevention degrades, the run continues.
func (b *IndexBuilder) Build(ctx context.Context, keys []string) ExistenceIndex {
	index := make(ExistenceIndex)

	for start := 0; start < len(keys); start += existenceBatchSize {
		end := min(start+existenceBatchSize, len(keys))
		batch := keys[start:end]

		resp, err := b.tracker.Search(ctx, jira.SearchRequest{
			JQL:        existenceJQL(b.referenceField, batch),
			MaxResults: len(batch),
			Fields:     []string{b.referenceField},
		})
		if err != nil {
			slog.WarnContext(ctx, "existence index batch query failed",
				"batch_start", start, "batch_size", len(batch), "error", err)
			continue
		}

		for _, ticket := range resp.Issues {
			doc, err := ticket.ReferenceDocument(b.referenceField)
			if err != nil {
				slog.WarnContext(ctx, "skipping ticket with unreadable reference field",
					"ticket_key", ticket.Key, "error", err)
				continue
			}
			findingKey, ok := jira.FirstText(doc)
			if !ok {
				slog.WarnContext(ctx, "skipping ticket with malformed reference field",
					"ticket_key", ticket.Key)
				continue
			}
			index[findingKey] = ticket.Key
		}
	}

	return index
}
