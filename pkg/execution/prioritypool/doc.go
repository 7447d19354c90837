/*
Package prioritypool provides a worker pool whose shared queue dequeues by
priority instead of arrival order.

Entries are ordered by priority descending with a submission-sequence
tie-break, so the ordering is total: among equal priorities the pool behaves
exactly like a FIFO. The worker-loop and shutdown contracts match the
workerpool package.

	pool := prioritypool.New(2)
	defer func() { <-pool.Shutdown(true) }()

	pool.SubmitPriority(cleanupTask, prioritypool.PriorityLow)
	pool.SubmitPriority(userFacingTask, prioritypool.PriorityHigh)

	f, _ := prioritypool.SubmitFunc(pool, prioritypool.PriorityNormal,
		func(ctx context.Context) (int, error) {
			return compute(ctx)
		})

Ordering applies to dequeue only: with several workers, completion order is
not guaranteed.

Starvation: there is no aging or fairness quota. A sustained stream of
high-priority submissions starves lower priorities indefinitely. This is a
known limitation of the design, not a bug; callers that need fairness should
partition work across pools.
*/
package prioritypool
