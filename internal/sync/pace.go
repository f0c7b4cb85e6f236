package sync

import (
	"context"
	"time"

	"golang.org/x/time/rate"
)

// writeGap is the minimum spacing between tracker mutation calls.
const writeGap = 100 * time.Millisecond

// Pacer spaces tracker writes a minimum interval apart. It is shared by
// the creation and closure engines so their combined write rate stays
// bounded even when closures run in concurrent batches.
type Pacer struct {
	limiter *rate.Limiter
}

func NewPacer(gap time.Duration) *Pacer {
	return &Pacer{limiter: rate.NewLimiter(rate.Every(gap), 1)}
}

// Wait blocks until the next write slot, or until ctx is done.
func (p *Pacer) Wait(ctx context.Context) error {
	return p.limiter.Wait(ctx)
}
