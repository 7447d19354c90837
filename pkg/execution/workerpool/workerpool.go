package workerpool

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	gxerrors "github.com/vnykmshr/goexec/pkg/common/errors"
	"github.com/vnykmshr/goexec/pkg/execution/future"
	"github.com/vnykmshr/goexec/pkg/execution/task"
)

// SubmitFunc submits a typed function to any Pool and returns a typed
// future for its result. The function's arguments are captured in its
// closure at submission time.
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

// Submit adds a task to the pool for execution.
func (p *workerPool) Submit(t task.Task) (*future.Future[struct{}], error) {
	if t == nil {
		return nil, fmt.Errorf("task cannot be nil")
	}
	u, f := task.BindTask(t)
	if err := p.Enqueue(u); err != nil {
		return nil, err
	}
	return f, nil
}

// Enqueue appends a boxed unit to the shared queue, blocking while a bounded
// queue is full, and wakes a waiting worker.
func (p *workerPool) Enqueue(u task.Unit) error {
	if u == nil {
		return fmt.Errorf("unit cannot be nil")
	}

	p.mu.Lock()
	for p.state == stateRunning && p.config.QueueCapacity > 0 && len(p.queue) >= p.config.QueueCapacity {
		p.cond.Wait()
	}
	if p.state != stateRunning {
		p.mu.Unlock()
		return gxerrors.ErrPoolStopped
	}
	p.queue = append(p.queue, u)
	atomic.AddInt64(&p.totalSubmitted, 1)
	p.cond.Broadcast()
	p.mu.Unlock()

	return nil
}

// Shutdown initiates pool shutdown. See Pool.Shutdown for the contract.
func (p *workerPool) Shutdown(drain bool) <-chan struct{} {
	p.shutdownOnce.Do(func() {
		p.mu.Lock()
		p.state = stateShuttingDown
		p.draining = drain
		var discarded []task.Unit
		if !drain {
			discarded = p.queue
			p.queue = nil
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

// Size returns the number of workers in the pool.
func (p *workerPool) Size() int {
	return p.config.Workers
}

// QueueSize returns the current number of queued tasks waiting for execution.
func (p *workerPool) QueueSize() int {
	p.mu.Lock()
	defer p.mu.Unlock()
	return len(p.queue)
}

// ActiveWorkers returns the number of workers currently executing tasks.
func (p *workerPool) ActiveWorkers() int {
	return int(atomic.LoadInt32(&p.activeWorkers))
}

// TotalSubmitted returns the total number of tasks accepted by the pool.
func (p *workerPool) TotalSubmitted() int64 {
	return atomic.LoadInt64(&p.totalSubmitted)
}

// TotalCompleted returns the total number of tasks executed by the pool.
func (p *workerPool) TotalCompleted() int64 {
	return atomic.LoadInt64(&p.totalCompleted)
}

// next pops the oldest queued unit, blocking until work arrives or the pool
// stops. ok is false when the worker should exit: the pool is stopping and
// either the queue is empty or a non-draining shutdown discarded it.
func (p *workerPool) next() (task.Unit, bool) {
	p.mu.Lock()
	defer p.mu.Unlock()

	for {
		if len(p.queue) > 0 && (p.state == stateRunning || p.draining) {
			u := p.queue[0]
			p.queue[0] = nil
			p.queue = p.queue[1:]
			// Space freed: wake producers blocked on a bounded queue.
			p.cond.Broadcast()
			return u, true
		}
		if p.state != stateRunning {
			return nil, false
		}
		p.cond.Wait()
	}
}

// run is the main loop for a worker.
func (w *worker) run() {
	defer w.pool.workerWg.Done()

	if cb := w.pool.config.OnWorkerStart; cb != nil {
		cb(w.id)
	}
	defer func() {
		if cb := w.pool.config.OnWorkerStop; cb != nil {
			cb(w.id)
		}
	}()

	for {
		u, ok := w.pool.next()
		if !ok {
			return
		}
		w.execute(u)
	}
}

// execute runs one unit. Task errors and panics resolve the unit's own
// future inside Run; the worker loops on regardless.
func (w *worker) execute(u task.Unit) {
	start := time.Now()
	atomic.AddInt32(&w.pool.activeWorkers, 1)

	u.Run(context.Background())

	atomic.AddInt32(&w.pool.activeWorkers, -1)
	atomic.AddInt64(&w.pool.totalCompleted, 1)

	if cb := w.pool.config.OnTaskComplete; cb != nil {
		cb(w.id, time.Since(start))
	}
}
