package task

import (
	"context"
	"runtime/debug"

	gxerrors "github.com/vnykmshr/goexec/pkg/common/errors"
	"github.com/vnykmshr/goexec/pkg/execution/future"
)

// Task represents a unit of work that can be executed by a worker.
type Task interface {
	// Execute runs the task with the given context.
	// It should respect context cancellation and return any error encountered.
	Execute(ctx context.Context) error
}

// TaskFunc is a function type that implements the Task interface.
type TaskFunc func(ctx context.Context) error

// Execute implements the Task interface for TaskFunc.
func (f TaskFunc) Execute(ctx context.Context) error {
	return f(ctx)
}

// Unit is a boxed task bound to the promise that receives its outcome. The
// concrete return type is captured inside the box, so pools handle every
// task uniformly. A unit is enqueued once and either run or discarded,
// exactly once, by exactly one worker.
type Unit interface {
	// Run executes the task body and resolves the bound promise with its
	// value, its error, or a PanicError if the body panicked. The promise
	// never remains pending after Run returns. The returned error mirrors
	// the outcome routed into the future, for pool-side observability.
	Run(ctx context.Context) error

	// Discard resolves the bound promise with err without running the task.
	// Pools use it for work thrown away by a non-draining shutdown.
	Discard(err error)
}

type unit[R any] struct {
	fn      func(ctx context.Context) (R, error)
	promise *future.Promise[R]
}

// Bind boxes fn with a fresh promise and returns the erased unit together
// with the future observing it. One allocation per task.
func Bind[R any](fn func(ctx context.Context) (R, error)) (Unit, *future.Future[R]) {
	p, f := future.New[R]()
	return &unit[R]{fn: fn, promise: p}, f
}

// BindTask boxes a plain Task whose only outcome is an error.
func BindTask(t Task) (Unit, *future.Future[struct{}]) {
	return Bind(func(ctx context.Context) (struct{}, error) {
		return struct{}{}, t.Execute(ctx)
	})
}

func (u *unit[R]) Run(ctx context.Context) (err error) {
	// Abandon covers the case where the body escapes without a terminal
	// transition, e.g. runtime.Goexit from a test helper inside the task.
	defer u.promise.Abandon()
	defer func() {
		if r := recover(); r != nil {
			err = &gxerrors.PanicError{Value: r, Stack: debug.Stack()}
			_ = u.promise.Fail(err)
		}
	}()

	v, err := u.fn(ctx)
	if err != nil {
		_ = u.promise.Fail(err)
		return err
	}
	_ = u.promise.Complete(v)
	return nil
}

func (u *unit[R]) Discard(err error) {
	_ = u.promise.Fail(err)
}
