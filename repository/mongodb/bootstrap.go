package mongodb

import (
	"context"
	"sync"
	"time"
)

// bootstrap runs a task at most once per instance. The first caller starts
// it; every caller, concurrent or later, waits on the same outcome.
type bootstrap struct {
	mu      sync.Mutex
	started bool
	done    chan struct{}
	err     error
}

func newBootstrap() *bootstrap {
	return &bootstrap{done: make(chan struct{})}
}

// Wait starts run if nobody has, then blocks until it finishes or ctx ends.
// run never sees the caller's cancellation; only timeout bounds it.
func (b *bootstrap) Wait(ctx context.Context, timeout time.Duration, run func(context.Context) error) error {
	select {
	case <-b.done:
		return b.err
	default:
	}

	b.mu.Lock()
	if !b.started {
		b.started = true
		go b.run(context.WithoutCancel(ctx), timeout, run)
	}
	b.mu.Unlock()

	select {
	case <-b.done:
		return b.err
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (b *bootstrap) run(ctx context.Context, timeout time.Duration, run func(context.Context) error) {
	if timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, timeout)
		defer cancel()
	}
	defer close(b.done)
	b.err = run(ctx)
}

// Finished reports whether the task ran to completion, and its error.
func (b *bootstrap) Finished() (bool, error) {
	select {
	case <-b.done:
		return true, b.err
	default:
		return false, nil
	}
}
