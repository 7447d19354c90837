package deadline

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/emirpasic/gods/trees/binaryheap"
	"github.com/robfig/cron/v3"

	gxerrors "github.com/vnykmshr/goexec/pkg/common/errors"
	"github.com/vnykmshr/goexec/pkg/execution/future"
	"github.com/vnykmshr/goexec/pkg/execution/task"
	"github.com/vnykmshr/goexec/pkg/execution/workerpool"
)

// Scheduler runs tasks at deadlines. A single goroutine keeps entries in a
// time-ordered heap and hands each one to a worker pool when it comes due;
// the scheduler itself never executes task bodies.
type Scheduler interface {
	// ScheduleOnce runs the task once after delay. The future observes the
	// task's outcome; if the scheduler or pool stops first, it resolves to
	// ErrPoolStopped.
	ScheduleOnce(t task.Task, delay time.Duration) (*future.Future[struct{}], error)

	// ScheduleAt runs the task once at the given time. A time in the past
	// dispatches promptly.
	ScheduleAt(t task.Task, at time.Time) (*future.Future[struct{}], error)

	// EnqueueAt schedules an already-boxed unit for the given time. This is
	// the type-erased path ScheduleFunc uses.
	EnqueueAt(u task.Unit, at time.Time) error

	// SchedulePeriodic runs the task every period, first after initialDelay
	// (negative means immediately). Each occurrence is dispatched
	// independently; the next due time advances by period from the previous
	// due time, not from completion.
	SchedulePeriodic(t task.Task, period, initialDelay time.Duration) (*Handle, error)

	// ScheduleCron runs the task on a six-field cron expression
	// (seconds granularity).
	ScheduleCron(t task.Task, expr string) (*Handle, error)

	// PendingEntries returns the number of entries waiting for their due time.
	PendingEntries() int

	// TotalDispatched returns how many occurrences have been handed to the pool.
	TotalDispatched() int64

	// Stop halts the dispatch loop, resolves the futures of not-yet-due
	// one-shot entries to ErrPoolStopped, and, when the scheduler owns its
	// pool, drains and shuts it down. The channel closes when all of that
	// is finished. Stop is idempotent.
	Stop() <-chan struct{}
}

// Config holds scheduler configuration.
type Config struct {
	// WorkerPool executes dispatched tasks. Nil means the scheduler creates
	// and owns an unbounded 4-worker pool, shut down by Stop.
	WorkerPool workerpool.Pool

	// Location is the time zone for cron schedules. Nil means time.Local.
	Location *time.Location

	// MaxEntries caps the number of pending entries (default 10000).
	MaxEntries int

	// OnDispatch is called for every occurrence handed to the pool with the
	// delay between its due time and dispatch.
	OnDispatch func(lag time.Duration)
}

// Handle identifies a recurring schedule.
type Handle struct {
	cancelled int32

	mu  sync.Mutex
	tag any
}

// Cancel stops future occurrences. Occurrences already handed to the pool
// still run. Returns false when the handle was already cancelled.
func (h *Handle) Cancel() bool {
	return atomic.CompareAndSwapInt32(&h.cancelled, 0, 1)
}

// Cancelled reports whether Cancel has been called.
func (h *Handle) Cancelled() bool {
	return atomic.LoadInt32(&h.cancelled) == 1
}

// SetTag attaches an opaque value to the handle. The scheduler never reads it.
func (h *Handle) SetTag(v any) {
	h.mu.Lock()
	h.tag = v
	h.mu.Unlock()
}

// Tag returns the value set with SetTag, or nil.
func (h *Handle) Tag() any {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.tag
}

// ScheduleFunc schedules a typed function to run once after delay.
func ScheduleFunc[R any](s Scheduler, delay time.Duration, fn func(ctx context.Context) (R, error)) (*future.Future[R], error) {
	if fn == nil {
		return nil, fmt.Errorf("fn cannot be nil")
	}
	u, f := task.Bind(fn)
	if err := s.EnqueueAt(u, time.Now().Add(delay)); err != nil {
		return nil, err
	}
	return f, nil
}

// entry is one pending occurrence. One-shot entries carry their boxed unit;
// recurring entries carry the task and box a fresh unit per occurrence.
type entry struct {
	seq   uint64
	runAt time.Time

	unit task.Unit

	t        task.Task
	period   time.Duration
	schedule cron.Schedule
	handle   *Handle
}

// compareEntries orders by due time, then by insertion sequence, so entries
// with equal due times dispatch in scheduling order.
func compareEntries(a, b interface{}) int {
	ea, eb := a.(*entry), b.(*entry)
	switch {
	case ea.runAt.Before(eb.runAt):
		return -1
	case ea.runAt.After(eb.runAt):
		return 1
	case ea.seq < eb.seq:
		return -1
	case ea.seq > eb.seq:
		return 1
	default:
		return 0
	}
}

type scheduler struct {
	config     Config
	pool       workerpool.Pool
	ownPool    bool
	location   *time.Location
	maxEntries int
	cronParser cron.Parser

	mu      sync.Mutex
	heap    *binaryheap.Heap
	nextSeq uint64
	stopped bool

	wake     chan struct{}
	stopCh   chan struct{}
	loopDone chan struct{}
	done     chan struct{}
	stopOnce sync.Once

	dispatched int64
}

// New creates a scheduler with default configuration and starts its
// dispatch loop.
func New() Scheduler {
	return NewWithConfig(Config{})
}

// NewWithConfig creates a scheduler with the specified configuration and
// starts its dispatch loop.
func NewWithConfig(cfg Config) Scheduler {
	pool := cfg.WorkerPool
	ownPool := false
	if pool == nil {
		pool = workerpool.New(4, 0)
		ownPool = true
	}

	location := cfg.Location
	if location == nil {
		location = time.Local
	}

	maxEntries := cfg.MaxEntries
	if maxEntries <= 0 {
		maxEntries = 10000
	}

	s := &scheduler{
		config:     cfg,
		pool:       pool,
		ownPool:    ownPool,
		location:   location,
		maxEntries: maxEntries,
		cronParser: cron.NewParser(cron.Second | cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow),
		heap:       binaryheap.NewWith(compareEntries),
		wake:       make(chan struct{}, 1),
		stopCh:     make(chan struct{}),
		loopDone:   make(chan struct{}),
		done:       make(chan struct{}),
	}

	go s.run()
	return s
}

func (s *scheduler) ScheduleOnce(t task.Task, delay time.Duration) (*future.Future[struct{}], error) {
	return s.ScheduleAt(t, time.Now().Add(delay))
}

func (s *scheduler) ScheduleAt(t task.Task, at time.Time) (*future.Future[struct{}], error) {
	if t == nil {
		return nil, fmt.Errorf("task cannot be nil")
	}
	if at.IsZero() {
		return nil, fmt.Errorf("task run time cannot be zero")
	}

	u, f := task.BindTask(t)
	if err := s.insert(&entry{runAt: at, unit: u}); err != nil {
		return nil, err
	}
	return f, nil
}

func (s *scheduler) EnqueueAt(u task.Unit, at time.Time) error {
	if u == nil {
		return fmt.Errorf("unit cannot be nil")
	}
	return s.insert(&entry{runAt: at, unit: u})
}

func (s *scheduler) SchedulePeriodic(t task.Task, period, initialDelay time.Duration) (*Handle, error) {
	if t == nil {
		return nil, fmt.Errorf("task cannot be nil")
	}
	if period <= 0 {
		return nil, fmt.Errorf("period must be positive, got %v", period)
	}
	if initialDelay < 0 {
		initialDelay = 0
	}

	h := &Handle{}
	e := &entry{
		runAt:  time.Now().Add(initialDelay),
		t:      t,
		period: period,
		handle: h,
	}
	if err := s.insert(e); err != nil {
		return nil, err
	}
	return h, nil
}

func (s *scheduler) ScheduleCron(t task.Task, expr string) (*Handle, error) {
	if t == nil {
		return nil, fmt.Errorf("task cannot be nil")
	}
	if expr == "" {
		return nil, fmt.Errorf("cron expression cannot be empty")
	}

	schedule, err := s.cronParser.Parse(expr)
	if err != nil {
		return nil, fmt.Errorf("invalid cron expression: %w", err)
	}

	h := &Handle{}
	e := &entry{
		runAt:    schedule.Next(time.Now().In(s.location)),
		t:        t,
		schedule: schedule,
		handle:   h,
	}
	if err := s.insert(e); err != nil {
		return nil, err
	}
	return h, nil
}

func (s *scheduler) PendingEntries() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.heap.Size()
}

func (s *scheduler) TotalDispatched() int64 {
	return atomic.LoadInt64(&s.dispatched)
}

func (s *scheduler) Stop() <-chan struct{} {
	s.stopOnce.Do(func() {
		s.mu.Lock()
		s.stopped = true
		s.mu.Unlock()
		close(s.stopCh)

		go func() {
			<-s.loopDone

			s.mu.Lock()
			var orphans []task.Unit
			for !s.heap.Empty() {
				v, _ := s.heap.Pop()
				if e := v.(*entry); e.unit != nil {
					orphans = append(orphans, e.unit)
				}
			}
			s.mu.Unlock()

			for _, u := range orphans {
				u.Discard(gxerrors.ErrPoolStopped)
			}
			if s.ownPool {
				<-s.pool.Shutdown(true)
			}
			close(s.done)
		}()
	})

	return s.done
}

// insert adds the entry and wakes the loop so a new earliest deadline is
// never slept past.
func (s *scheduler) insert(e *entry) error {
	s.mu.Lock()
	if s.stopped {
		s.mu.Unlock()
		return gxerrors.ErrPoolStopped
	}
	if s.heap.Size() >= s.maxEntries {
		s.mu.Unlock()
		return fmt.Errorf("cannot schedule entry: maximum number of entries (%d) reached", s.maxEntries)
	}
	e.seq = s.nextSeq
	s.nextSeq++
	s.heap.Push(e)
	s.mu.Unlock()

	select {
	case s.wake <- struct{}{}:
	default:
	}
	return nil
}

func (s *scheduler) run() {
	defer close(s.loopDone)

	for {
		s.mu.Lock()
		now := time.Now()
		var due []*entry
		for !s.heap.Empty() {
			v, _ := s.heap.Peek()
			e := v.(*entry)
			if e.runAt.After(now) {
				break
			}
			s.heap.Pop()
			due = append(due, e)
		}

		var timerC <-chan time.Time
		var timer *time.Timer
		if v, ok := s.heap.Peek(); ok {
			timer = time.NewTimer(v.(*entry).runAt.Sub(now))
			timerC = timer.C
		}
		s.mu.Unlock()

		if len(due) > 0 {
			if timer != nil {
				timer.Stop()
			}
			// Heap order makes this pass non-decreasing in due time.
			for _, e := range due {
				s.dispatch(e, now)
			}
			continue
		}

		select {
		case <-s.stopCh:
			if timer != nil {
				timer.Stop()
			}
			return
		case <-s.wake:
			if timer != nil {
				timer.Stop()
			}
		case <-timerC:
		}
	}
}

// dispatch hands one due occurrence to the pool, then re-inserts recurring
// entries for their next due time. Recurring occurrences each get a fresh
// boxed unit.
func (s *scheduler) dispatch(e *entry, now time.Time) {
	if e.handle != nil && e.handle.Cancelled() {
		return
	}

	u := e.unit
	if u == nil {
		u, _ = task.BindTask(e.t)
	}
	if err := s.pool.Enqueue(u); err != nil {
		u.Discard(err)
		return
	}

	atomic.AddInt64(&s.dispatched, 1)
	if cb := s.config.OnDispatch; cb != nil {
		cb(now.Sub(e.runAt))
	}

	if e.handle == nil {
		return
	}
	if e.period > 0 {
		e.runAt = e.runAt.Add(e.period)
	} else if e.schedule != nil {
		e.runAt = e.schedule.Next(now.In(s.location))
	}
	e.unit = nil
	// insert fails only after Stop; the recurrence simply ends then.
	_ = s.insert(e)
}
