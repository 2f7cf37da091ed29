package services

import (
	"context"
	"time"
)

// Runner starts fire-and-forget work such as notifications.
type Runner func(fn func())

// GoRunner runs fn on its own goroutine.
func GoRunner(fn func()) { go fn() }

// InlineRunner runs fn before returning. Used by tools and tests.
func InlineRunner(fn func()) { fn() }

// detach returns a context that survives the end of the request that started
// the work but still expires after timeout.
func detach(parent context.Context, timeout time.Duration) (context.Context, context.CancelFunc) {
	return context.WithTimeout(context.WithoutCancel(parent), timeout)
}

// sleepCtx waits for d or until ctx is done, reporting whether the full delay elapsed.
func sleepCtx(ctx context.Context, d time.Duration) bool {
	if d <= 0 {
		return ctx.Err() == nil
	}
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-t.C:
		return true
	case <-ctx.Done():
		return false
	}
}
