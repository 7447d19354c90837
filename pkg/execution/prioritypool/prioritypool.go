package prioritypool

import (
	"context"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/emirpasic/gods/trees/binaryheap"

	gxerrors "github.com/vnykmshr/goexec/pkg/common/errors"
	"github.com/vnykmshr/goexec/pkg/execution/future"
	"github.com/vnykmshr/goexec/pkg/execution/task"
)

// Named priority levels. Priorities are plain ints; anything between and
// beyond these levels is valid.
const (
	PriorityLow    = -10
	PriorityNormal = 0
	PriorityHigh   = 10
)

// Pool is a worker pool whose queue dequeues the highest-priority,
// earliest-submitted task first.
type Pool interface {
	// Submit adds a task at PriorityNormal.
	Submit(t task.Task) (*future.Future[struct{}], error)

	// SubmitPriority adds a task at an explicit priority. Higher values
	// dequeue first; equal priorities dequeue in submission order.
	SubmitPriority(t task.Task, priority int) (*future.Future[struct{}], error)

	// Enqueue adds an already-boxed unit at the given priority.
	Enqueue(u task.Unit, priority int) error

	// Shutdown stops the pool; see workerpool.Pool.Shutdown for the contract.
	Shutdown(drain bool) <-chan struct{}

	// Size returns the number of workers in the pool.
	Size() int

	// QueueSize returns the current number of queued tasks.
	QueueSize() int

	// ActiveWorkers returns the number of workers currently executing tasks.
	ActiveWorkers() int

	// TotalSubmitted returns the total number of tasks accepted by the pool.
	TotalSubmitted() int64

	// TotalCompleted returns the total number of tasks executed by the pool.
	TotalCompleted() int64
}

// Config holds configuration options for creating a priority pool.
type Config struct {
	// Workers is the number of worker goroutines.
	// Zero means runtime.NumCPU(); negative values panic.
	Workers int

	// QueueCapacity bounds the queue. Zero means unbounded. On a bounded
	// pool, submissions block while the queue is full.
	QueueCapacity int

	// OnTaskComplete is called after each task execution.
	OnTaskComplete func(workerID int, duration time.Duration)
}

// SubmitFunc submits a typed function at the given priority.
func SubmitFunc[R any](p Pool, priority int, fn func(ctx context.Context) (R, error)) (*future.Future[R], error) {
	if fn == nil {
		return nil, fmt.Errorf("fn cannot be nil")
	}
	u, f := task.Bind(fn)
	if err := p.Enqueue(u, priority); err != nil {
		return nil, err
	}
	return f, nil
}

// entry is one queued unit. seq breaks priority ties in submission order,
// making the heap ordering total: no two entries ever compare equal.
type entry struct {
	priority int
	seq      uint64
	unit     task.Unit
}

// compareEntries orders by priority descending, then sequence ascending.
func compareEntries(a, b interface{}) int {
	ea, eb := a.(*entry), b.(*entry)
	switch {
	case ea.priority > eb.priority:
		return -1
	case ea.priority < eb.priority:
		return 1
	case ea.seq < eb.seq:
		return -1
	case ea.seq > eb.seq:
		return 1
	default:
		return 0
	}
}

type poolState int

const (
	stateRunning poolState = iota
	stateShuttingDown
	stateStopped
)

type priorityPool struct {
	config Config

	mu       sync.Mutex
	cond     *sync.Cond
	heap     *binaryheap.Heap
	nextSeq  uint64
	state    poolState
	draining bool

	done         chan struct{}
	shutdownOnce sync.Once

	workerWg       sync.WaitGroup
	activeWorkers  int32
	totalSubmitted int64
	totalCompleted int64
}

// New creates a priority pool with the given worker count and an unbounded
// queue. workers=0 means runtime.NumCPU().
func New(workers int) Pool {
	return NewWithConfig(Config{Workers: workers})
}

// NewWithConfig creates a priority pool with the specified configuration and
// starts its workers.
func NewWithConfig(config Config) Pool {
	if config.Workers < 0 {
		panic("worker count must be non-negative")
	}
	if config.QueueCapacity < 0 {
		panic("queue capacity must be non-negative")
	}
	if config.Workers == 0 {
		config.Workers = runtime.NumCPU()
	}

	p := &priorityPool{
		config: config,
		heap:   binaryheap.NewWith(compareEntries),
		done:   make(chan struct{}),
	}
	p.cond = sync.NewCond(&p.mu)

	p.workerWg.Add(config.Workers)
	for i := 0; i < config.Workers; i++ {
		go p.runWorker(i)
	}

	return p
}

func (p *priorityPool) Submit(t task.Task) (*future.Future[struct{}], error) {
	return p.SubmitPriority(t, PriorityNormal)
}

func (p *priorityPool) SubmitPriority(t task.Task, priority int) (*future.Future[struct{}], error) {
	if t == nil {
		return nil, fmt.Errorf("task cannot be nil")
	}
	u, f := task.BindTask(t)
	if err := p.Enqueue(u, priority); err != nil {
		return nil, err
	}
	return f, nil
}

func (p *priorityPool) Enqueue(u task.Unit, priority int) error {
	if u == nil {
		return fmt.Errorf("unit cannot be nil")
	}

	p.mu.Lock()
	for p.state == stateRunning && p.config.QueueCapacity > 0 && p.heap.Size() >= p.config.QueueCapacity {
		p.cond.Wait()
	}
	if p.state != stateRunning {
		p.mu.Unlock()
		return gxerrors.ErrPoolStopped
	}
	e := &entry{priority: priority, seq: p.nextSeq, unit: u}
	p.nextSeq++
	p.heap.Push(e)
	atomic.AddInt64(&p.totalSubmitted, 1)
	p.cond.Broadcast()
	p.mu.Unlock()

	return nil
}

func (p *priorityPool) Shutdown(drain bool) <-chan struct{} {
	p.shutdownOnce.Do(func() {
		p.mu.Lock()
		p.state = stateShuttingDown
		p.draining = drain
		var discarded []task.Unit
		if !drain {
			for !p.heap.Empty() {
				v, _ := p.heap.Pop()
				discarded = append(discarded, v.(*entry).unit)
			}
		}
		p.cond.Broadcast()
		p.mu.Unlock()

		for _, u := range discarded {
			u.Discard(gxerrors.ErrPoolStopped)
		}

		go func() {
			p.workerWg.Wait()
			p.mu.Lock()
			p.state = stateStopped
			p.mu.Unlock()
			close(p.done)
		}()
	})

	return p.done
}

func (p *priorityPool) Size() int {
	return p.config.Workers
}

func (p *priorityPool) QueueSize() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.heap.Size()
}

func (p *priorityPool) ActiveWorkers() int {
	return int(atomic.LoadInt32(&p.activeWorkers))
}

func (p *priorityPool) TotalSubmitted() int64 {
	return atomic.LoadInt64(&p.totalSubmitted)
}

func (p *priorityPool) TotalCompleted() int64 {
	return atomic.LoadInt64(&p.totalCompleted)
}

// next pops the highest-priority, earliest-submitted unit, blocking until
// work arrives or the pool stops.
func (p *priorityPool) next() (task.Unit, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for {
		if !p.heap.Empty() && (p.state == stateRunning || p.draining) {
			v, _ := p.heap.Pop()
			p.cond.Broadcast()
			return v.(*entry).unit, true
		}
		if p.state != stateRunning {
			return nil, false
		}
		p.cond.Wait()
	}
}

func (p *priorityPool) runWorker(id int) {
	defer p.workerWg.Done()

	for {
		u, ok := p.next()
		if !ok {
			return
		}

		start := time.Now()
		atomic.AddInt32(&p.activeWorkers, 1)
		u.Run(context.Background())
		atomic.AddInt32(&p.activeWorkers, -1)
		atomic.AddInt64(&p.totalCompleted, 1)

		if cb := p.config.OnTaskComplete; cb != nil {
			cb(id, time.Since(start))
		}
	}
}
