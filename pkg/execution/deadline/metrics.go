package deadline

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/vnykmshr/goexec/pkg/execution/future"
	"github.com/vnykmshr/goexec/pkg/execution/task"
	"github.com/vnykmshr/goexec/pkg/metrics"
)

// MetricsScheduler wraps a Scheduler with Prometheus metrics collection.
type MetricsScheduler struct {
	scheduler Scheduler
	name      string
	registry  *metrics.Registry
}

// NewWithMetrics creates a new scheduler with metrics enabled.
func NewWithMetrics(name string) Scheduler {
	// Separate registry per metrics-enabled component to avoid conflicts.
	registry := prometheus.NewRegistry()
	config := metrics.Config{
		Enabled:  true,
		Registry: registry,
	}

	return NewWithConfigAndMetrics(Config{}, name, config)
}

// NewWithConfigAndMetrics creates a new scheduler with custom config and metrics.
func NewWithConfigAndMetrics(cfg Config, name string, metricsConfig metrics.Config) Scheduler {
	if !metricsConfig.Enabled {
		return NewWithConfig(cfg)
	}

	registry := metrics.DefaultRegistry
	if metricsConfig.Registry != nil {
		registry = metrics.NewRegistry(metricsConfig.Registry)
	}

	next := cfg.OnDispatch
	cfg.OnDispatch = func(lag time.Duration) {
		registry.EntriesDispatched.WithLabelValues(name).Inc()
		registry.DispatchLag.WithLabelValues(name).Observe(lag.Seconds())
		if next != nil {
			next(lag)
		}
	}

	return &MetricsScheduler{
		scheduler: NewWithConfig(cfg),
		name:      name,
		registry:  registry,
	}
}

func (ms *MetricsScheduler) scheduled() {
	ms.registry.EntriesScheduled.WithLabelValues(ms.name).Inc()
}

// ScheduleOnce schedules a one-shot task, counting the entry.
func (ms *MetricsScheduler) ScheduleOnce(t task.Task, delay time.Duration) (*future.Future[struct{}], error) {
	f, err := ms.scheduler.ScheduleOnce(t, delay)
	if err == nil {
		ms.scheduled()
	}
	return f, err
}

// ScheduleAt schedules a one-shot task, counting the entry.
func (ms *MetricsScheduler) ScheduleAt(t task.Task, at time.Time) (*future.Future[struct{}], error) {
	f, err := ms.scheduler.ScheduleAt(t, at)
	if err == nil {
		ms.scheduled()
	}
	return f, err
}

// EnqueueAt schedules a boxed unit, counting the entry.
func (ms *MetricsScheduler) EnqueueAt(u task.Unit, at time.Time) error {
	err := ms.scheduler.EnqueueAt(u, at)
	if err == nil {
		ms.scheduled()
	}
	return err
}

// SchedulePeriodic schedules a recurring task, counting the entry.
func (ms *MetricsScheduler) SchedulePeriodic(t task.Task, period, initialDelay time.Duration) (*Handle, error) {
	h, err := ms.scheduler.SchedulePeriodic(t, period, initialDelay)
	if err == nil {
		ms.scheduled()
	}
	return h, err
}

// ScheduleCron schedules a cron-expression task, counting the entry.
func (ms *MetricsScheduler) ScheduleCron(t task.Task, expr string) (*Handle, error) {
	h, err := ms.scheduler.ScheduleCron(t, expr)
	if err == nil {
		ms.scheduled()
	}
	return h, err
}

// PendingEntries returns the number of entries waiting for their due time.
func (ms *MetricsScheduler) PendingEntries() int {
	return ms.scheduler.PendingEntries()
}

// TotalDispatched returns how many occurrences have been handed to the pool.
func (ms *MetricsScheduler) TotalDispatched() int64 {
	return ms.scheduler.TotalDispatched()
}

// Stop stops the underlying scheduler.
func (ms *MetricsScheduler) Stop() <-chan struct{} {
	return ms.scheduler.Stop()
}
