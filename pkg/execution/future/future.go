package future

import (
	"context"
	"sync"
	"time"

	gxerrors "github.com/vnykmshr/goexec/pkg/common/errors"
)

// cell is the shared state between a Promise and its Futures. It transitions
// from pending to exactly one terminal outcome; done closes on the
// transition so every waiter wakes.
type cell[T any] struct {
	mu       sync.Mutex
	done     chan struct{}
	resolved bool
	value    T
	err      error
}

// Promise is the write-once producer half of a result channel.
type Promise[T any] struct {
	c *cell[T]
}

// Future is the read half of a result channel. Any number of goroutines may
// hold and wait on the same Future; reading never consumes the result.
type Future[T any] struct {
	c *cell[T]
}

// New creates a linked Promise/Future pair sharing one pending cell.
func New[T any]() (*Promise[T], *Future[T]) {
	c := &cell[T]{done: make(chan struct{})}
	return &Promise[T]{c: c}, &Future[T]{c: c}
}

func (c *cell[T]) resolve(v T, err error) error {
	c.mu.Lock()
	if c.resolved {
		c.mu.Unlock()
		return gxerrors.ErrAlreadySatisfied
	}
	c.value = v
	c.err = err
	c.resolved = true
	c.mu.Unlock()
	close(c.done)
	return nil
}

// Complete resolves the cell with a value. It returns ErrAlreadySatisfied if
// the cell already holds an outcome; the first outcome is never overwritten.
func (p *Promise[T]) Complete(v T) error {
	return p.c.resolve(v, nil)
}

// Fail resolves the cell with an error. It returns ErrAlreadySatisfied if
// the cell already holds an outcome.
func (p *Promise[T]) Fail(err error) error {
	var zero T
	return p.c.resolve(zero, err)
}

// Abandon resolves a still-pending cell with ErrBrokenPromise so waiters do
// not block forever. Abandoning an already-resolved cell is a no-op; it is
// safe to defer unconditionally.
func (p *Promise[T]) Abandon() {
	var zero T
	_ = p.c.resolve(zero, gxerrors.ErrBrokenPromise)
}

// Future returns another handle on the same cell.
func (p *Promise[T]) Future() *Future[T] {
	return &Future[T]{c: p.c}
}

// Get blocks until the future is resolved or ctx is done. A ctx error only
// affects this wait; the underlying task keeps running and the future can
// still be read later.
func (f *Future[T]) Get(ctx context.Context) (T, error) {
	select {
	case <-f.c.done:
		return f.c.value, f.c.err
	default:
	}
	select {
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	case <-f.c.done:
		return f.c.value, f.c.err
	}
}

// GetWithTimeout blocks up to timeout for the outcome. It returns ErrTimeout
// when the future is still pending; the underlying task keeps running and
// the future can still be read later.
func (f *Future[T]) GetWithTimeout(timeout time.Duration) (T, error) {
	if !f.Wait(timeout) {
		var zero T
		return zero, gxerrors.ErrTimeout
	}
	return f.c.value, f.c.err
}

// Wait blocks up to timeout and reports whether the future is ready. It
// never consumes the result.
func (f *Future[T]) Wait(timeout time.Duration) bool {
	select {
	case <-f.c.done:
		return true
	default:
	}
	t := time.NewTimer(timeout)
	defer t.Stop()
	select {
	case <-f.c.done:
		return true
	case <-t.C:
		return false
	}
}

// Poll reports the outcome without blocking. ok is false while pending.
func (f *Future[T]) Poll() (v T, err error, ok bool) {
	select {
	case <-f.c.done:
		return f.c.value, f.c.err, true
	default:
		var zero T
		return zero, nil, false
	}
}

// Done returns a channel closed when the future resolves, for use in select.
func (f *Future[T]) Done() <-chan struct{} {
	return f.c.done
}

// Join waits for all futures and returns their values in submission order.
// The first failure is returned immediately; remaining tasks keep running.
func Join[T any](ctx context.Context, futures ...*Future[T]) ([]T, error) {
	results := make([]T, len(futures))
	for i, f := range futures {
		v, err := f.Get(ctx)
		if err != nil {
			return nil, err
		}
		results[i] = v
	}
	return results, nil
}
