/*
Package workerpool provides a fixed-size worker pool draining one shared
FIFO queue.

A pool owns N long-lived worker goroutines. Each worker waits for the queue
to become non-empty, pops exactly one task, executes it, and loops. Task
errors and panics resolve the task's own future and never destabilize the
worker.

Basic usage:

	pool := workerpool.New(4, 0) // 4 workers, unbounded queue
	defer func() { <-pool.Shutdown(true) }()

	f, err := pool.Submit(task.TaskFunc(func(ctx context.Context) error {
		return doWork(ctx)
	}))
	if err != nil {
		log.Printf("submit: %v", err)
		return
	}

	if _, err := f.Get(ctx); err != nil {
		log.Printf("task failed: %v", err)
	}

Typed results use the package-level SubmitFunc:

	f, err := workerpool.SubmitFunc(pool, func(ctx context.Context) (int, error) {
		return countRows(ctx)
	})
	n, err := f.Get(ctx)

Ordering:

Dequeue order is strictly FIFO; with a single worker and non-blocking tasks,
start order equals submission order. Completion order across multiple
workers is not guaranteed.

Queue capacity:

A capacity of zero means the queue grows without bound. A positive capacity
bounds it, and Submit blocks while the queue is full rather than dropping
work. Submissions unblock as workers free space, or fail with ErrPoolStopped
if shutdown begins first.

Shutdown:

	// Finish everything already queued, then stop.
	<-pool.Shutdown(true)

	// Stop promptly; queued tasks are discarded and their futures
	// resolve to ErrPoolStopped.
	<-pool.Shutdown(false)

Shutdown is idempotent; the second call returns the same channel and changes
nothing. In-flight tasks are never cancelled; the returned channel closes
after the last worker exits.

Metrics:

NewWithMetrics and NewWithConfigAndMetrics wrap the pool with Prometheus
instrumentation; see the metrics package for the exported series.
*/
package workerpool
