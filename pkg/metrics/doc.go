// Package metrics provides Prometheus instrumentation for goexec components.
//
// Metrics are collected through a Registry of counter, gauge, and histogram
// vectors created with promauto. Components never require metrics; the
// metrics-enabled constructors wrap the plain implementations.
//
// # Quick Start
//
//	pool := workerpool.NewWithMetrics(4, "render_pool")
//
//	http.Handle("/metrics", promhttp.Handler())
//	log.Fatal(http.ListenAndServe(":8080", nil))
//
// # Custom Registry
//
// Use a custom Prometheus registry for isolation:
//
//	registry := prometheus.NewRegistry()
//	pool := workerpool.NewWithConfigAndMetrics(
//		workerpool.Config{Workers: 4},
//		"render_pool",
//		metrics.Config{Enabled: true, Registry: registry},
//	)
//
// # Available Metrics
//
// Worker pools (labeled pool_name):
//
//   - goexec_pool_tasks_submitted_total
//   - goexec_pool_tasks_completed_total
//   - goexec_pool_tasks_failed_total
//   - goexec_pool_tasks_discarded_total
//   - goexec_pool_task_duration_seconds
//   - goexec_pool_task_queue_wait_seconds
//   - goexec_pool_size, goexec_pool_active_workers, goexec_pool_queued_tasks
//
// Work stealing (labeled pool_name):
//
//   - goexec_stealpool_tasks_stolen_total
//
// Deadline scheduler (labeled scheduler_name):
//
//   - goexec_deadline_entries_scheduled_total
//   - goexec_deadline_entries_dispatched_total
//   - goexec_deadline_dispatch_lag_seconds
package metrics
