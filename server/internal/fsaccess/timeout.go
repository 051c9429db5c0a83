package fsaccess

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"
)

// ErrTimeout is returned when a call does not finish within the configured
// deadline.
var ErrTimeout = errors.New("filesystem call timed out")

// Timeout wraps an Accessor with a per-call deadline. A zero or negative
// deadline disables it and calls run directly on the caller's goroutine.
//
// The abandoned call keeps running in the background when a deadline fires;
// filesystem syscalls cannot be interrupted.
type Timeout struct {
	inner Accessor
	d     atomic.Int64
}

// WithTimeout wraps inner with deadline d.
func WithTimeout(inner Accessor, d time.Duration) *Timeout {
	t := &Timeout{inner: inner}
	t.d.Store(int64(d))
	return t
}

// SetTimeout changes the deadline for subsequent calls.
func (t *Timeout) SetTimeout(d time.Duration) {
	t.d.Store(int64(d))
}

// Deadline returns the current per-call deadline.
func (t *Timeout) Deadline() time.Duration {
	return time.Duration(t.d.Load())
}

func (t *Timeout) Exists(ctx context.Context, path string) (bool, error) {
	return run(ctx, t.Deadline(), func(ctx context.Context) (bool, error) {
		return t.inner.Exists(ctx, path)
	})
}

func (t *Timeout) ReadTextFile(ctx context.Context, path string) (string, error) {
	return run(ctx, t.Deadline(), func(ctx context.Context) (string, error) {
		return t.inner.ReadTextFile(ctx, path)
	})
}

func (t *Timeout) ListDir(ctx context.Context, path string) ([]string, error) {
	return run(ctx, t.Deadline(), func(ctx context.Context) ([]string, error) {
		return t.inner.ListDir(ctx, path)
	})
}

type result[T any] struct {
	v   T
	err error
}

func run[T any](ctx context.Context, d time.Duration, fn func(context.Context) (T, error)) (T, error) {
	if d <= 0 {
		return fn(ctx)
	}
	callCtx, cancel := context.WithTimeout(ctx, d)
	defer cancel()

	ch := make(chan result[T], 1)
	go func() {
		v, err := fn(callCtx)
		ch <- result[T]{v: v, err: err}
	}()

	select {
	case r := <-ch:
		return r.v, r.err
	case <-callCtx.Done():
		var zero T
		// A caller cancellation is reported as is; any expired deadline is a timeout.
		if err := ctx.Err(); err != nil && !errors.Is(err, context.DeadlineExceeded) {
			return zero, err
		}
		return zero, fmt.Errorf("%w after %s", ErrTimeout, d)
	}
}

var _ Accessor = (*Timeout)(nil)
