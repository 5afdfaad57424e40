package embedding

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"testing"
	"time"
)

type fakeProvider struct {
	vec   []float32
	delay time.Duration
}

func (f *fakeProvider) Embed(ctx context.Context, text string) ([]float32, error) {
	if f.delay > 0 {
		select {
		case <-time.After(f.delay):
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	return f.vec, nil
}

func (f *fakeProvider) Close() error { return nil }

func TestLazy_BuildsOnce(t *testing.T) {
	var builds int32
	lazy := NewLazy(func(ctx context.Context) (Provider, error) {
		atomic.AddInt32(&builds, 1)
		return &fakeProvider{vec: []float32{1, 2, 3}}, nil
	}, 0)

	for i := 0; i < 3; i++ {
		vec, err := lazy.Embed(context.Background(), "hello")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(vec) != 3 {
			t.Fatalf("expected 3-dim vector, got %d", len(vec))
		}
	}

	if n := atomic.LoadInt32(&builds); n != 1 {
		t.Errorf("expected exactly one build, got %d", n)
	}
}

func TestLazy_ConcurrentFirstCallsShareOneBuild(t *testing.T) {
	var builds int32
	lazy := NewLazy(func(ctx context.Context) (Provider, error) {
		atomic.AddInt32(&builds, 1)
		time.Sleep(10 * time.Millisecond) // widen the race window
		return &fakeProvider{vec: []float32{1}}, nil
	}, 0)

	var wg sync.WaitGroup
	errs := make([]error, 20)
	for i := 0; i < 20; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = lazy.Embed(context.Background(), "x")
		}(i)
	}
	wg.Wait()

	for i, err := range errs {
		if err != nil {
			t.Fatalf("caller %d: unexpected error: %v", i, err)
		}
	}
	if n := atomic.LoadInt32(&builds); n != 1 {
		t.Errorf("expected one shared build, got %d", n)
	}
}

func TestLazy_BuildFailureIsRetried(t *testing.T) {
	var builds int32
	lazy := NewLazy(func(ctx context.Context) (Provider, error) {
		if atomic.AddInt32(&builds, 1) == 1 {
			return nil, fmt.Errorf("model download failed")
		}
		return &fakeProvider{vec: []float32{1}}, nil
	}, 0)

	_, err := lazy.Embed(context.Background(), "x")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable on failed build, got %v", err)
	}

	// The failure must not be cached.
	if _, err := lazy.Embed(context.Background(), "x"); err != nil {
		t.Fatalf("expected retry to succeed, got %v", err)
	}
	if n := atomic.LoadInt32(&builds); n != 2 {
		t.Errorf("expected 2 build attempts, got %d", n)
	}
}

func TestLazy_TimeoutSurfacesAsUnavailable(t *testing.T) {
	lazy := NewLazy(func(ctx context.Context) (Provider, error) {
		return &fakeProvider{vec: []float32{1}, delay: time.Second}, nil
	}, 10*time.Millisecond)

	_, err := lazy.Embed(context.Background(), "x")
	if !errors.Is(err, ErrUnavailable) {
		t.Fatalf("expected ErrUnavailable on timeout, got %v", err)
	}
}
