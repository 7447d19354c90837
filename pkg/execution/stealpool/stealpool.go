package stealpool

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	gxerrors "github.com/vnykmshr/goexec/pkg/common/errors"
	"github.com/vnykmshr/goexec/pkg/execution/future"
	"github.com/vnykmshr/goexec/pkg/execution/task"
)

// Pool is a work-stealing pool: every worker owns a private FIFO queue,
// submissions are distributed round-robin, and an idle worker steals one
// task at a time from its peers.
type Pool interface {
	// Submit adds a task, assigning it to a worker queue by round-robin.
	Submit(t task.Task) (*future.Future[struct{}], error)

	// Enqueue adds an already-boxed unit by round-robin.
	Enqueue(u task.Unit) error

	// Shutdown stops the pool. drain=false discards every queued unit to
	// ErrPoolStopped. drain=true is best-effort: each worker exits once a
	// full own-plus-steal scan finds nothing, with no ordering guarantee
	// across workers. The channel closes after all workers are joined.
	Shutdown(drain bool) <-chan struct{}

	// Size returns the number of workers in the pool.
	Size() int

	// QueueSize returns the total number of queued tasks across all workers.
	QueueSize() int

	// Stats returns a snapshot of pool counters.
	Stats() Stats
}

// Config holds configuration options for creating a work-stealing pool.
type Config struct {
	// Workers is the number of worker goroutines, each with a private
	// queue. Zero means runtime.NumCPU(); negative values panic.
	Workers int

	// IdleSleep is how long a worker sleeps after a full scan of every
	// queue found nothing. Zero means 1ms.
	IdleSleep time.Duration

	// OnTaskComplete is called after each task execution.
	OnTaskComplete func(workerID int, duration time.Duration)

	// OnSteal is called when a worker takes a task from a peer's queue.
	OnSteal func(thiefID, victimID int)
}

// Stats is a snapshot of pool-wide counters.
type Stats struct {
	Submitted uint64
	Completed uint64
	Stolen    uint64
	Workers   []WorkerStats
}

// WorkerStats is a per-worker snapshot.
type WorkerStats struct {
	WorkerID  int
	Executed  uint64
	QueueSize int
}

// SubmitFunc submits a typed function to the pool.
func SubmitFunc[R any](p Pool, fn func(ctx context.Context) (R, error)) (*future.Future[R], error) {
	if fn == nil {
		return nil, fmt.Errorf("fn cannot be nil")
	}
	u, f := task.Bind(fn)
	if err := p.Enqueue(u); err != nil {
		return nil, err
	}
	return f, nil
}

type poolState int32

const (
	stateRunning poolState = iota
	stateDraining
	stateStopped
)

// workerQueue is one worker's private FIFO, guarded by its own lock. A unit
// lives in exactly one queue until the owning or a stealing worker removes
// it; removal is atomic under the queue lock, so no unit is ever duplicated.
type workerQueue struct {
	mu     sync.Mutex
	items  []task.Unit
	closed bool
}

// push appends a unit. It reports false if the queue has been closed by
// shutdown, in which case the caller must not consider the unit enqueued.
func (q *workerQueue) push(u task.Unit) bool {
	q.mu.Lock()
	if q.closed {
		q.mu.Unlock()
		return false
	}
	q.items = append(q.items, u)
	q.mu.Unlock()
	return true
}

// tryPop removes the oldest unit without blocking.
func (q *workerQueue) tryPop() (task.Unit, bool) {
	q.mu.Lock()
	if len(q.items) == 0 {
		q.mu.Unlock()
		return nil, false
	}
	u := q.items[0]
	q.items[0] = nil
	q.items = q.items[1:]
	q.mu.Unlock()
	return u, true
}

// closeAndDrain marks the queue closed and returns everything left in it.
func (q *workerQueue) closeAndDrain() []task.Unit {
	q.mu.Lock()
	items := q.items
	q.items = nil
	q.closed = true
	q.mu.Unlock()
	return items
}

func (q *workerQueue) size() int {
	q.mu.Lock()
	defer q.mu.Unlock()
	return len(q.items)
}

type stealPool struct {
	config Config
	queues []*workerQueue

	state      int32 // poolState
	nextWorker uint64

	stopCh       chan struct{}
	done         chan struct{}
	shutdownOnce sync.Once
	workerWg     sync.WaitGroup

	submitted uint64
	completed uint64
	stolen    uint64
	executed  []uint64 // per-worker, atomic
}

// New creates a work-stealing pool with the given worker count.
// workers=0 means runtime.NumCPU().
func New(workers int) Pool {
	return NewWithConfig(Config{Workers: workers})
}

// NewWithConfig creates a work-stealing pool with the specified
// configuration and starts its workers.
func NewWithConfig(config Config) Pool {
	if config.Workers < 0 {
		panic("worker count must be non-negative")
	}
	if config.Workers == 0 {
		config.Workers = runtime.NumCPU()
	}
	if config.IdleSleep <= 0 {
		config.IdleSleep = time.Millisecond
	}

	p := &stealPool{
		config:   config,
		queues:   make([]*workerQueue, config.Workers),
		stopCh:   make(chan struct{}),
		done:     make(chan struct{}),
		executed: make([]uint64, config.Workers),
	}
	for i := range p.queues {
		p.queues[i] = &workerQueue{}
	}

	p.workerWg.Add(config.Workers)
	for i := 0; i < config.Workers; i++ {
		go p.runWorker(i)
	}

	return p
}

func (p *stealPool) Submit(t task.Task) (*future.Future[struct{}], error) {
	if t == nil {
		return nil, fmt.Errorf("task cannot be nil")
	}
	u, f := task.BindTask(t)
	if err := p.Enqueue(u); err != nil {
		return nil, err
	}
	return f, nil
}

// Enqueue assigns the unit to a worker queue by round-robin counter,
// establishing initial locality regardless of load.
func (p *stealPool) Enqueue(u task.Unit) error {
	if u == nil {
		return fmt.Errorf("unit cannot be nil")
	}
	if poolState(atomic.LoadInt32(&p.state)) != stateRunning {
		return gxerrors.ErrPoolStopped
	}

	idx := int(atomic.AddUint64(&p.nextWorker, 1) % uint64(len(p.queues)))
	if !p.queues[idx].push(u) {
		return gxerrors.ErrPoolStopped
	}
	atomic.AddUint64(&p.submitted, 1)
	return nil
}

func (p *stealPool) Shutdown(drain bool) <-chan struct{} {
	p.shutdownOnce.Do(func() {
		if drain {
			atomic.StoreInt32(&p.state, int32(stateDraining))
		} else {
			atomic.StoreInt32(&p.state, int32(stateStopped))
		}
		close(p.stopCh)

		if !drain {
			for _, q := range p.queues {
				for _, u := range q.closeAndDrain() {
					u.Discard(gxerrors.ErrPoolStopped)
				}
			}
		}

		go func() {
			p.workerWg.Wait()
			// Sweep whatever raced in after the workers left; their
			// futures must still resolve.
			for _, q := range p.queues {
				for _, u := range q.closeAndDrain() {
					u.Discard(gxerrors.ErrPoolStopped)
				}
			}
			atomic.StoreInt32(&p.state, int32(stateStopped))
			close(p.done)
		}()
	})

	return p.done
}

func (p *stealPool) Size() int {
	return p.config.Workers
}

func (p *stealPool) QueueSize() int {
	total := 0
	for _, q := range p.queues {
		total += q.size()
	}
	return total
}

func (p *stealPool) Stats() Stats {
	s := Stats{
		Submitted: atomic.LoadUint64(&p.submitted),
		Completed: atomic.LoadUint64(&p.completed),
		Stolen:    atomic.LoadUint64(&p.stolen),
		Workers:   make([]WorkerStats, len(p.queues)),
	}
	for i, q := range p.queues {
		s.Workers[i] = WorkerStats{
			WorkerID:  i,
			Executed:  atomic.LoadUint64(&p.executed[i]),
			QueueSize: q.size(),
		}
	}
	return s
}

// trySteal scans peer queues in a fixed order starting after self and
// removes one unit. Only the victim's lock is held during the attempt; a
// worker never touches two queue locks at once, so no circular wait is
// possible.
func (p *stealPool) trySteal(self int) (task.Unit, bool) {
	n := len(p.queues)
	for i := 1; i < n; i++ {
		victim := (self + i) % n
		if u, ok := p.queues[victim].tryPop(); ok {
			atomic.AddUint64(&p.stolen, 1)
			if cb := p.config.OnSteal; cb != nil {
				cb(self, victim)
			}
			return u, true
		}
	}
	return nil, false
}

func (p *stealPool) runWorker(id int) {
	defer p.workerWg.Done()

	own := p.queues[id]
	idle := p.config.IdleSleep

	for {
		u, ok := own.tryPop()
		if !ok {
			u, ok = p.trySteal(id)
		}
		if ok {
			p.execute(id, u)
			continue
		}

		// Nothing anywhere. Exit when stopping: a draining worker leaves
		// after one full empty scan (best-effort), a stopped one leaves
		// immediately.
		if poolState(atomic.LoadInt32(&p.state)) != stateRunning {
			return
		}

		timer := time.NewTimer(idle)
		select {
		case <-p.stopCh:
			timer.Stop()
		case <-timer.C:
		}
	}
}

func (p *stealPool) execute(id int, u task.Unit) {
	start := time.Now()

	u.Run(context.Background())

	atomic.AddUint64(&p.completed, 1)
	atomic.AddUint64(&p.executed[id], 1)

	if cb := p.config.OnTaskComplete; cb != nil {
		cb(id, time.Since(start))
	}
}
