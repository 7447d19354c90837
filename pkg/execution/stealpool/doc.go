// Package stealpool provides a work-stealing task pool.
//
// Each worker owns a private FIFO queue. Submissions are spread across the
// queues with a round-robin counter, so contention on submit is limited to
// a single queue lock. A worker drains its own queue first and, when empty,
// scans its peers in a fixed order and steals the oldest task from the
// first non-empty queue it finds. A worker holds at most one queue lock at
// a time, so own pops and steals can never deadlock.
//
// Stealing trades strict FIFO for throughput: tasks within one queue run in
// order, but a stolen task may overtake tasks submitted before it to other
// queues. Use workerpool when global FIFO order matters.
//
// Basic usage:
//
//	pool := stealpool.New(4)
//	defer func() { <-pool.Shutdown(true) }()
//
//	f, err := stealpool.SubmitFunc(pool, func(ctx context.Context) (int, error) {
//		return compute(ctx)
//	})
//	if err != nil {
//		return err
//	}
//	v, err := f.Get(context.Background())
package stealpool
