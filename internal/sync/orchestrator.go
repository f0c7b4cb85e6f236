package sync

import (
	"context"
	"fmt"
	"log/slog"
	stdsync "sync"

	"golang.org/x/sync/errgroup"

	"qualisync.app/bridge/internal/jira"
	"qualisync.app/bridge/internal/model"
)

const (
	// reconcilePageSize is the ticket search page size.
	reconcilePageSize = 100
	// closureConcurrency bounds in-flight closures within one batch.
	closureConcurrency = 5
)

// ticketRef pairs an open ticket with the finding key extracted from its
// reference field.
type ticketRef struct {
	ticketKey  string
	findingKey string
}

// closeOrchestrator pages through open tickets, reconciles their findings
// against the scanner in one pass, and dispatches closures in bounded
// concurrent batches.
type closeOrchestrator struct {
	tracker        TrackerGateway
	reconciler     *Reconciler
	closer         *ClosureEngine
	referenceField string
}

func (o *closeOrchestrator) run(ctx context.Context) (model.CloseReport, error) {
	tickets, err := o.fetchOpenTickets(ctx)
	if err != nil {
		return model.CloseReport{}, err
	}

	report := model.CloseReport{Checked: len(tickets)}

	var refs []ticketRef
	for _, ticket := range tickets {
		findingKey, ok := o.extractFindingKey(ctx, ticket)
		if !ok {
			report.WithErrors++
			continue
		}
		refs = append(refs, ticketRef{ticketKey: ticket.Key, findingKey: findingKey})
	}

	if len(refs) == 0 {
		return report, nil
	}

	keys := make([]string, len(refs))
	for i, ref := range refs {
		keys[i] = ref.findingKey
	}
	resolved := o.reconciler.Resolve(ctx, keys)

	var mu stdsync.Mutex
	for start := 0; start < len(refs); start += closureConcurrency {
		end := min(start+closureConcurrency, len(refs))

		g, gctx := errgroup.WithContext(ctx)
		for _, ref := range refs[start:end] {
			g.Go(func() error {
				isResolved, ok := resolved[ref.findingKey]
				if !ok {
					mu.Lock()
					report.WithErrors++
					mu.Unlock()
					return nil
				}
				if !isResolved {
					mu.Lock()
					report.NotResolved++
					mu.Unlock()
					return nil
				}

				closed := o.closer.Close(gctx, ref.ticketKey, ref.findingKey)

				mu.Lock()
				if closed {
					report.Closed++
				} else {
					report.WithErrors++
				}
				mu.Unlock()
				return nil
			})
		}
		// Closures never error; Wait is the batch join.
		_ = g.Wait()
	}

	return report, nil
}

// fetchOpenTickets pages through every open ticket carrying a reference
// field. A page failure mid-stream degrades to processing the tickets
// fetched so far; a failure with nothing fetched is pipeline-fatal.
func (o *closeOrchestrator) fetchOpenTickets(ctx context.Context) ([]jira.Ticket, error) {
	var tickets []jira.Ticket

	for startAt := 0; ; {
		resp, err := o.tracker.Search(ctx, jira.SearchRequest{
			JQL:        reconcileJQL(o.referenceField),
			StartAt:    startAt,
			MaxResults: reconcilePageSize,
			Fields:     []string{o.referenceField},
		})
		if err != nil {
			if len(tickets) == 0 {
				return nil, fmt.Errorf("fetching open tickets: %w", err)
			}
			slog.WarnContext(ctx, "ticket page fetch failed, processing tickets fetched so far",
				"fetched", len(tickets), "error", err)
			break
		}

		tickets = append(tickets, resp.Issues...)
		startAt += len(resp.Issues)
		if len(resp.Issues) == 0 || startAt >= resp.Total {
			break
		}
	}

	return tickets, nil
}

func (o *closeOrchestrator) extractFindingKey(ctx context.Context, ticket jira.Ticket) (string, bool) {
	doc, err := ticket.ReferenceDocument(o.referenceField)
	if err != nil {
		slog.WarnContext(ctx, "ticket has unreadable reference field",
			"ticket_key", ticket.Key, "error", err)
		return "", false
	}
	findingKey, ok := jira.FirstText(doc)
	if !ok {
		slog.WarnContext(ctx, "ticket has malformed reference field", "ticket_key", ticket.Key)
		return "", false
	}
	return findingKey, true
}
