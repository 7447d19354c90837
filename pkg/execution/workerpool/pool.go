package workerpool

import (
	"runtime"
	"sync"
	"time"

	"github.com/vnykmshr/goexec/pkg/execution/future"
	"github.com/vnykmshr/goexec/pkg/execution/task"
)

// Pool represents a worker pool that executes tasks concurrently.
type Pool interface {
	// Submit adds a task to the pool and returns the future observing its
	// outcome. Returns ErrPoolStopped once shutdown has begun. On a bounded
	// pool Submit blocks while the queue is full; it never drops work.
	Submit(t task.Task) (*future.Future[struct{}], error)

	// Enqueue adds an already-boxed unit to the pool. This is the
	// type-erased path used by SubmitFunc and by the deadline scheduler.
	Enqueue(u task.Unit) error

	// Shutdown transitions the pool to stopped. With drain=true workers
	// finish all queued work first; with drain=false queued units are
	// discarded and their futures resolve to ErrPoolStopped. The returned
	// channel closes after all workers have been joined. Shutdown is
	// idempotent: later calls return the same channel and change nothing.
	Shutdown(drain bool) <-chan struct{}

	// Size returns the number of workers in the pool.
	Size() int

	// QueueSize returns the current number of queued tasks waiting for execution.
	QueueSize() int

	// ActiveWorkers returns the number of workers currently executing tasks.
	ActiveWorkers() int

	// TotalSubmitted returns the total number of tasks accepted by the pool.
	TotalSubmitted() int64

	// TotalCompleted returns the total number of tasks executed by the pool.
	TotalCompleted() int64
}

// Config holds configuration options for creating a worker pool.
type Config struct {
	// Workers is the number of worker goroutines.
	// Zero means runtime.NumCPU(); negative values panic.
	Workers int

	// QueueCapacity bounds the shared queue. Zero means unbounded.
	// On a bounded pool, Submit blocks while the queue is full.
	QueueCapacity int

	// OnWorkerStart is called when a worker starts.
	// Useful for per-worker initialization.
	OnWorkerStart func(workerID int)

	// OnWorkerStop is called when a worker stops.
	OnWorkerStop func(workerID int)

	// OnTaskComplete is called after each task execution with the time the
	// task occupied its worker. Task outcomes live in the task's future.
	OnTaskComplete func(workerID int, duration time.Duration)
}

type poolState int

const (
	stateRunning poolState = iota
	stateShuttingDown
	stateStopped
)

// workerPool implements the Pool interface.
type workerPool struct {
	config Config

	// queue and lifecycle state share one mutex and one condition.
	// Producers blocked on a full bounded queue and workers blocked on an
	// empty queue wait on the same condition, so transitions broadcast.
	mu       sync.Mutex
	cond     *sync.Cond
	queue    []task.Unit
	state    poolState
	draining bool

	done         chan struct{}
	shutdownOnce sync.Once

	workerWg       sync.WaitGroup
	activeWorkers  int32
	totalSubmitted int64
	totalCompleted int64
}

// worker represents a single worker in the pool.
type worker struct {
	id   int
	pool *workerPool
}

// New creates a worker pool with the given worker count and queue capacity.
// workers=0 means runtime.NumCPU(); capacity=0 means unbounded.
func New(workers, capacity int) Pool {
	return NewWithConfig(Config{
		Workers:       workers,
		QueueCapacity: capacity,
	})
}

// NewWithConfig creates a worker pool with the specified configuration and
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

	p := &workerPool{
		config: config,
		done:   make(chan struct{}),
	}
	p.cond = sync.NewCond(&p.mu)

	p.workerWg.Add(config.Workers)
	for i := 0; i < config.Workers; i++ {
		w := &worker{id: i, pool: p}
		go w.run()
	}

	return p
}
