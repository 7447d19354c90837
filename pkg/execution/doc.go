/*
Package execution provides the task-execution primitives of goexec.

Components:

  - future: write-once Promise/Future result channels
  - task: the Task interface and the boxed unit pools execute
  - workerpool: fixed worker pool draining one shared FIFO queue
  - prioritypool: worker pool ordered by priority with FIFO tie-break
  - stealpool: per-worker queues with work stealing for load balancing
  - deadline: time-ordered scheduler dispatching to a worker pool

Every pool shares the same contract: submit a Task (or a typed function via
the pool package's SubmitFunc), receive a Future immediately, retrieve the
outcome later by blocking, polling, or waiting with a timeout. Task failures
and panics are captured into the task's own future and never destabilize the
workers. Shutdown either drains or discards queued work; discarded futures
resolve to errors.ErrPoolStopped, so a retained future never hangs.

Dequeue order is defined per pool (FIFO, priority, or none once stealing
occurs); completion order is never guaranteed because workers run in
parallel.
*/
package execution
