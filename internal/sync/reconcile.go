package sync

import (
	"context"
	"log/slog"
	"time"

	"qualisync.app/bridge/internal/sonar"
)

const (
	// reconcileBatchSize is how many finding keys one scanner query covers.
	reconcileBatchSize = 50
	// hotspotGap spaces the per-key hotspot lookups.
	hotspotGap = 50 * time.Millisecond
	// batchGap spaces consecutive batches.
	batchGap = 200 * time.Millisecond
)

// Reconciler determines, per finding key, whether the finding is still
// active in the scanner. Every key starts as resolved and is only left
// that way when the scanner explicitly confirms absence: the unresolved-
// issues search flips returned keys to active, and the per-key hotspot
// lookup flips found-and-unreviewed hotspots to active. If the check
// machinery fails altogether, every requested key is reported active:
// a ticket is never closed on ambiguous information.
type Reconciler struct {
	scanner    ScannerGateway
	hotspotGap time.Duration
	batchGap   time.Duration
}

func NewReconciler(scanner ScannerGateway) *Reconciler {
	return &Reconciler{
		scanner:    scanner,
		hotspotGap: hotspotGap,
		batchGap:   batchGap,
	}
}

// Resolve returns finding key → resolved. True means the finding is
// confirmed gone from the scanner and its ticket may be closed.
func (r *Reconciler) Resolve(ctx context.Context, keys []string) map[string]bool {
	resolved := make(map[string]bool, len(keys))

	for start := 0; start < len(keys); start += reconcileBatchSize {
		end := min(start+reconcileBatchSize, len(keys))

		if start > 0 {
			if err := sleep(ctx, r.batchGap); err != nil {
				return allActive(keys)
			}
		}

		if err := r.checkBatch(ctx, keys[start:end], resolved); err != nil {
			slog.ErrorContext(ctx, "resolution check failed, treating all findings as active",
				"error", err)
			return allActive(keys)
		}
	}

	return resolved
}

func (r *Reconciler) checkBatch(ctx context.Context, batch []string, resolved map[string]bool) error {
	for _, key := range batch {
		resolved[key] = true
	}

	issues, err := r.scanner.SearchIssuesByKeys(ctx, batch)
	if err != nil {
		return err
	}
	for _, issue := range issues {
		resolved[issue.Key] = false
	}

	first := true
	for _, key := range batch {
		if !resolved[key] {
			continue
		}

		// The gap goes between lookups, not before the first one.
		if !first {
			if err := sleep(ctx, r.hotspotGap); err != nil {
				return err
			}
		}
		first = false

		hotspot, err := r.scanner.ShowHotspot(ctx, key)
		if err != nil {
			if sonar.IsNotFound(err) {
				// Confirmed absent from the scanner: stays resolved.
				continue
			}
			// No information; the key keeps its already-determined status.
			slog.WarnContext(ctx, "hotspot lookup failed", "finding_key", key, "error", err)
			continue
		}
		if !hotspot.Reviewed() {
			resolved[key] = false
		}
	}

	return nil
}

func allActive(keys []string) map[string]bool {
	resolved := make(map[string]bool, len(keys))
	for _, key := range keys {
		resolved[key] = false
	}
	return resolved
}

func sleep(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return nil
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}
