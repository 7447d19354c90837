// Package deadline provides time-based task scheduling on top of a worker
// pool.
//
// A single dispatch goroutine keeps pending entries in a binary heap ordered
// by due time (scheduling order breaks ties) and sleeps until the earliest
// deadline. Scheduling a new entry wakes the loop, so an earlier deadline is
// never slept past. Due entries are handed to the worker pool asynchronously
// in non-decreasing due-time order; a slow task occupies a pool worker, not
// the dispatch loop, so later entries are not delayed.
//
// One-shot entries return a future observing the task's outcome. Recurring
// entries (fixed period or cron expression) return a Handle whose Cancel
// stops future occurrences; each occurrence is dispatched as an independent
// unit. Fixed-period entries advance their due time by the period from the
// previous due time, so occurrences missed while the process was busy are
// dispatched in quick succession rather than skipped.
//
// Basic usage:
//
//	sched := deadline.New()
//	defer func() { <-sched.Stop() }()
//
//	f, err := sched.ScheduleOnce(task.TaskFunc(cleanup), 5*time.Minute)
//	if err != nil {
//		return err
//	}
//
//	handle, err := sched.SchedulePeriodic(task.TaskFunc(heartbeat), 10*time.Second, 0)
//	if err != nil {
//		return err
//	}
//	defer handle.Cancel()
package deadline
