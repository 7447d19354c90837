// Package metrics provides Prometheus instrumentation for goexec components.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Registry holds all metric instances for goexec components.
type Registry struct {
	// Task execution metrics
	TasksSubmitted        *prometheus.CounterVec
	TasksCompleted        *prometheus.CounterVec
	TasksFailed           *prometheus.CounterVec
	TasksDiscarded        *prometheus.CounterVec
	TaskExecutionDuration *prometheus.HistogramVec
	TaskQueueWait         *prometheus.HistogramVec

	// Worker pool metrics
	WorkerPoolSize   *prometheus.GaugeVec
	WorkerPoolActive *prometheus.GaugeVec
	WorkerPoolQueued *prometheus.GaugeVec

	// Work stealing metrics
	TasksStolen *prometheus.CounterVec

	// Deadline scheduler metrics
	EntriesScheduled  *prometheus.CounterVec
	EntriesDispatched *prometheus.CounterVec
	DispatchLag       *prometheus.HistogramVec
}

// DefaultRegistry is the default metrics registry used by goexec components.
var DefaultRegistry *Registry

func init() {
	DefaultRegistry = NewRegistry(prometheus.DefaultRegisterer)
}

// NewRegistry creates a new metrics registry with the given Prometheus registerer.
func NewRegistry(reg prometheus.Registerer) *Registry {
	factory := promauto.With(reg)

	return &Registry{
		TasksSubmitted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "goexec",
				Subsystem: "pool",
				Name:      "tasks_submitted_total",
				Help:      "Total number of tasks accepted by the pool",
			},
			[]string{"pool_name"},
		),

		TasksCompleted: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "goexec",
				Subsystem: "pool",
				Name:      "tasks_completed_total",
				Help:      "Total number of tasks that completed successfully",
			},
			[]string{"pool_name"},
		),

		TasksFailed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "goexec",
				Subsystem: "pool",
				Name:      "tasks_failed_total",
				Help:      "Total number of tasks that returned an error or panicked",
			},
			[]string{"pool_name"},
		),

		TasksDiscarded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "goexec",
				Subsystem: "pool",
				Name:      "tasks_discarded_total",
				Help:      "Total number of queued tasks discarded at shutdown",
			},
			[]string{"pool_name"},
		),

		TaskExecutionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "goexec",
				Subsystem: "pool",
				Name:      "task_duration_seconds",
				Help:      "Time spent executing tasks",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"pool_name"},
		),

		TaskQueueWait: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "goexec",
				Subsystem: "pool",
				Name:      "task_queue_wait_seconds",
				Help:      "Time tasks spent queued before a worker picked them up",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"pool_name"},
		),

		WorkerPoolSize: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "goexec",
				Subsystem: "pool",
				Name:      "size",
				Help:      "Current worker pool size",
			},
			[]string{"pool_name"},
		),

		WorkerPoolActive: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "goexec",
				Subsystem: "pool",
				Name:      "active_workers",
				Help:      "Number of workers currently executing tasks",
			},
			[]string{"pool_name"},
		),

		WorkerPoolQueued: factory.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: "goexec",
				Subsystem: "pool",
				Name:      "queued_tasks",
				Help:      "Number of queued tasks",
			},
			[]string{"pool_name"},
		),

		TasksStolen: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "goexec",
				Subsystem: "stealpool",
				Name:      "tasks_stolen_total",
				Help:      "Total number of tasks stolen from peer queues",
			},
			[]string{"pool_name"},
		),

		EntriesScheduled: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "goexec",
				Subsystem: "deadline",
				Name:      "entries_scheduled_total",
				Help:      "Total number of entries scheduled",
			},
			[]string{"scheduler_name"},
		),

		EntriesDispatched: factory.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "goexec",
				Subsystem: "deadline",
				Name:      "entries_dispatched_total",
				Help:      "Total number of entries handed to the worker pool",
			},
			[]string{"scheduler_name"},
		),

		DispatchLag: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "goexec",
				Subsystem: "deadline",
				Name:      "dispatch_lag_seconds",
				Help:      "Delay between an entry's due time and its dispatch",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"scheduler_name"},
		),
	}
}
