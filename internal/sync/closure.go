package sync

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"qualisync.app/bridge/common/logger"
	"qualisync.app/bridge/internal/jira"
)

// preferredTransitions is the terminal-transition preference order. The
// first one available on the ticket wins.
var preferredTransitions = []string{"wont do", "Done", "Closed", "Resolved", "Verified"}

// resolutionByTransition maps the chosen transition name (lowercased) to
// the resolution set alongside it.
var resolutionByTransition = map[string]string{
	"wont do":  "Won't Do",
	"done":     "Done",
	"closed":   "Done",
	"resolved": "Done",
	"verified": "Done",
}

// ClosureEngine transitions tickets with resolved findings to a terminal
// state. Close never returns an error: every failure mode yields false so
// the orchestrator can keep processing the rest of the batch.
type ClosureEngine struct {
	tracker TrackerGateway
	pacer   *Pacer
}

func NewClosureEngine(tracker TrackerGateway, pacer *Pacer) *ClosureEngine {
	return &ClosureEngine{tracker: tracker, pacer: pacer}
}

// Close picks the first preferred transition available on the ticket and
// applies it with an explanatory comment. When no preferred transition
// exists the ticket is left open and false is returned; that is a normal
// outcome for workflows not yet configured for auto-close.
func (e *ClosureEngine) Close(ctx context.Context, ticketKey, findingKey string) bool {
	ctx = logger.WithLogFields(ctx, logger.LogFields{
		TicketKey:  logger.Ptr(ticketKey),
		FindingKey: logger.Ptr(findingKey),
	})

	transitions, err := e.tracker.GetTransitions(ctx, ticketKey)
	if err != nil {
		slog.WarnContext(ctx, "fetching transitions failed", "error", err)
		return false
	}

	transition := pickTransition(transitions)
	if transition == nil {
		slog.InfoContext(ctx, "no terminal transition available, leaving ticket open",
			"available", transitionNames(transitions))
		return false
	}

	comment := jira.TextDocument(fmt.Sprintf(
		"Closing: finding %s is no longer reported by the code quality scanner.", findingKey))

	params := jira.ApplyTransitionParams{
		TicketKey:    ticketKey,
		TransitionID: transition.ID,
		Resolution:   resolutionByTransition[strings.ToLower(transition.Name)],
		Comment:      &comment,
	}

	if err := e.pacer.Wait(ctx); err != nil {
		return false
	}
	if err := e.tracker.ApplyTransition(ctx, params); err == nil {
		slog.InfoContext(ctx, "ticket closed", "transition", transition.Name)
		return true
	} else {
		slog.WarnContext(ctx, "transition with comment failed, retrying transition only", "error", err)
	}

	// Some workflows reject the combined comment payload; apply the bare
	// transition and attach the comment best-effort afterwards.
	params.Comment = nil
	if err := e.pacer.Wait(ctx); err != nil {
		return false
	}
	if err := e.tracker.ApplyTransition(ctx, params); err != nil {
		slog.WarnContext(ctx, "transition failed", "error", err)
		return false
	}

	if err := e.pacer.Wait(ctx); err == nil {
		if err := e.tracker.AddComment(ctx, ticketKey, comment); err != nil {
			slog.WarnContext(ctx, "adding closure comment failed", "error", err)
		}
	}

	slog.InfoContext(ctx, "ticket closed", "transition", transition.Name)
	return true
}

func pickTransition(transitions []jira.Transition) *jira.Transition {
	for _, preferred := range preferredTransitions {
		for i := range transitions {
			if strings.EqualFold(transitions[i].Name, preferred) {
				return &transitions[i]
			}
		}
	}
	return nil
}

func transitionNames(transitions []jira.Transition) []string {
	names := make([]string, len(transitions))
	for i, t := range transitions {
		names[i] = t.Name
	}
	return names
}
