/*
Package task defines the unit of work shared by every goexec pool.

Task is the caller-facing interface, identical in shape across all pools:

	type Task interface {
		Execute(ctx context.Context) error
	}

TaskFunc adapts a plain function:

	t := task.TaskFunc(func(ctx context.Context) error {
		return doWork(ctx)
	})

Unit is the internal currency of the pools: a type-erased box coupling a
zero-argument callable with the promise that receives its outcome. Bind
captures a typed result function and hides the type behind the Unit
interface; pools run units without knowing their result types, and the
caller keeps a typed Future:

	u, f := task.Bind(func(ctx context.Context) (int, error) {
		return 42, nil
	})
	pool.Enqueue(u)
	v, err := f.Get(ctx)

Run recovers panics into *errors.PanicError and guarantees the bound promise
is resolved before it returns, so a retained future never hangs. Discard
resolves the promise without running the body; pools use it when shutdown
throws queued work away.
*/
package task
