package embedding

import (
	"context"
	"fmt"
	"sync"
	"time"
)

// Lazy defers construction of the underlying Provider until the first Embed
// call and memoizes the result. Lifecycle: uninitialized → initializing →
// ready. Concurrent first callers serialize on one in-flight construction
// rather than each building their own; a failed construction is not cached,
// so a later call retries it. Once ready, Embed calls run concurrently
// without locking the provider.
//
// Every call is bounded by the configured timeout, and every failure —
// construction or inference — surfaces as ErrUnavailable.
type Lazy struct {
	build   func(ctx context.Context) (Provider, error)
	timeout time.Duration

	mu       sync.Mutex
	provider Provider
}

// NewLazy wraps a provider constructor. A non-positive timeout disables the
// per-call deadline.
func NewLazy(build func(ctx context.Context) (Provider, error), timeout time.Duration) *Lazy {
	return &Lazy{build: build, timeout: timeout}
}

// Embed initializes the provider if needed, then delegates to it.
func (l *Lazy) Embed(ctx context.Context, text string) ([]float32, error) {
	if l.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, l.timeout)
		defer cancel()
	}

	p, err := l.get(ctx)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}

	vec, err := p.Embed(ctx, text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	return vec, nil
}

func (l *Lazy) get(ctx context.Context) (Provider, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.provider != nil {
		return l.provider, nil
	}

	p, err := l.build(ctx)
	if err != nil {
		return nil, err
	}
	l.provider = p
	return p, nil
}

// Close releases the underlying provider if it was ever built.
func (l *Lazy) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if l.provider == nil {
		return nil
	}
	err := l.provider.Close()
	l.provider = nil
	return err
}
