package workerpool

import (
	"context"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/vnykmshr/goexec/pkg/execution/future"
	"github.com/vnykmshr/goexec/pkg/execution/task"
	"github.com/vnykmshr/goexec/pkg/metrics"
)

// MetricsPool wraps a worker Pool with Prometheus metrics collection.
type MetricsPool struct {
	pool     Pool
	name     string
	registry *metrics.Registry
	enabled  bool
}

// NewWithMetrics creates a new worker pool with metrics enabled.
func NewWithMetrics(workers int, name string) Pool {
	// Separate registry per metrics-enabled component to avoid conflicts.
	registry := prometheus.NewRegistry()
	config := metrics.Config{
		Enabled:  true,
		Registry: registry,
	}

	return NewWithConfigAndMetrics(Config{Workers: workers}, name, config)
}

// NewWithConfigAndMetrics creates a new worker pool with custom config and metrics.
func NewWithConfigAndMetrics(config Config, name string, metricsConfig metrics.Config) Pool {
	basePool := NewWithConfig(config)

	if !metricsConfig.Enabled {
		return basePool
	}

	registry := metrics.DefaultRegistry
	if metricsConfig.Registry != nil {
		registry = metrics.NewRegistry(metricsConfig.Registry)
	}

	mp := &MetricsPool{
		pool:     basePool,
		name:     name,
		registry: registry,
		enabled:  true,
	}

	mp.updateGauges()

	return mp
}

// updateGauges refreshes the current state gauges.
func (mp *MetricsPool) updateGauges() {
	if !mp.enabled {
		return
	}

	mp.registry.WorkerPoolSize.WithLabelValues(mp.name).Set(float64(mp.pool.Size()))
	mp.registry.WorkerPoolActive.WithLabelValues(mp.name).Set(float64(mp.pool.ActiveWorkers()))
	mp.registry.WorkerPoolQueued.WithLabelValues(mp.name).Set(float64(mp.pool.QueueSize()))
}

// Submit adds a task to the pool for execution.
func (mp *MetricsPool) Submit(t task.Task) (*future.Future[struct{}], error) {
	u, f := task.BindTask(t)
	if err := mp.Enqueue(u); err != nil {
		return nil, err
	}
	return f, nil
}

// Enqueue adds a boxed unit, instrumented for queue wait, duration, and outcome.
func (mp *MetricsPool) Enqueue(u task.Unit) error {
	wrapped := &metricsUnit{
		inner:      u,
		pool:       mp,
		submitTime: time.Now(),
	}

	err := mp.pool.Enqueue(wrapped)

	if mp.enabled {
		if err == nil {
			mp.registry.TasksSubmitted.WithLabelValues(mp.name).Inc()
		}
		mp.updateGauges()
	}

	return err
}

// metricsUnit wraps a Unit to collect execution metrics.
type metricsUnit struct {
	inner      task.Unit
	pool       *MetricsPool
	submitTime time.Time
}

// Run executes the inner unit and records metrics.
func (mu *metricsUnit) Run(ctx context.Context) error {
	start := time.Now()

	if mu.pool.enabled {
		queueWait := start.Sub(mu.submitTime)
		mu.pool.registry.TaskQueueWait.WithLabelValues(mu.pool.name).Observe(queueWait.Seconds())
	}

	err := mu.inner.Run(ctx)

	if mu.pool.enabled {
		mu.pool.registry.TaskExecutionDuration.WithLabelValues(mu.pool.name).Observe(time.Since(start).Seconds())

		if err != nil {
			mu.pool.registry.TasksFailed.WithLabelValues(mu.pool.name).Inc()
		} else {
			mu.pool.registry.TasksCompleted.WithLabelValues(mu.pool.name).Inc()
		}

		mu.pool.updateGauges()
	}

	return err
}

// Discard resolves the inner unit and counts the discarded task.
func (mu *metricsUnit) Discard(err error) {
	if mu.pool.enabled {
		mu.pool.registry.TasksDiscarded.WithLabelValues(mu.pool.name).Inc()
	}
	mu.inner.Discard(err)
}

// Shutdown initiates shutdown of the underlying pool.
func (mp *MetricsPool) Shutdown(drain bool) <-chan struct{} {
	return mp.pool.Shutdown(drain)
}

// Size returns the number of workers in the pool.
func (mp *MetricsPool) Size() int {
	return mp.pool.Size()
}

// QueueSize returns the current number of queued tasks.
func (mp *MetricsPool) QueueSize() int {
	queueSize := mp.pool.QueueSize()

	if mp.enabled {
		mp.registry.WorkerPoolQueued.WithLabelValues(mp.name).Set(float64(queueSize))
	}

	return queueSize
}

// ActiveWorkers returns the number of workers currently executing tasks.
func (mp *MetricsPool) ActiveWorkers() int {
	activeWorkers := mp.pool.ActiveWorkers()

	if mp.enabled {
		mp.registry.WorkerPoolActive.WithLabelValues(mp.name).Set(float64(activeWorkers))
	}

	return activeWorkers
}

// TotalSubmitted returns the total number of tasks submitted.
func (mp *MetricsPool) TotalSubmitted() int64 {
	return mp.pool.TotalSubmitted()
}

// TotalCompleted returns the total number of tasks completed.
func (mp *MetricsPool) TotalCompleted() int64 {
	return mp.pool.TotalCompleted()
}
