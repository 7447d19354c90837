/*
Package goexec provides a Go library for concurrent task execution with
typed results, priorities, work stealing, and deadline scheduling.

Futures and tasks (pkg/execution):
  - future: Promise/Future result channel with broadcast completion
  - task: Task interface and the boxed units pools execute

Pools (pkg/execution):
  - workerpool: Fixed workers over a shared FIFO queue
  - prioritypool: Highest priority first, submission order on ties
  - stealpool: Per-worker queues with work stealing

Scheduling (pkg/execution):
  - deadline: Run tasks at deadlines, on fixed periods, or on cron
    expressions, dispatching to a worker pool

Supporting packages:
  - pkg/config: YAML configuration loading
  - pkg/metrics: Prometheus instrumentation
  - pkg/common/errors: Shared error types

Example usage:

	import (
		"github.com/vnykmshr/goexec/pkg/execution/workerpool"
	)

	pool := workerpool.New(5, 100) // 5 workers, queue 100
	defer func() { <-pool.Shutdown(true) }()

	f, err := workerpool.SubmitFunc(pool, func(ctx context.Context) (int, error) {
		return expensiveComputation(ctx)
	})
	if err != nil {
		return err
	}
	result, err := f.Get(ctx)
*/
package goexec
