package stealpool

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/vnykmshr/goexec/pkg/metrics"
)

// NewWithMetrics creates a work-stealing pool with metrics enabled.
func NewWithMetrics(workers int, name string) Pool {
	// Separate registry per metrics-enabled component to avoid conflicts.
	registry := prometheus.NewRegistry()
	config := metrics.Config{
		Enabled:  true,
		Registry: registry,
	}

	return NewWithConfigAndMetrics(Config{Workers: workers}, name, config)
}

// NewWithConfigAndMetrics creates a work-stealing pool with custom config and
// metrics. The pool publishes through its lifecycle callbacks, so the caller's
// own callbacks, when set, still run.
func NewWithConfigAndMetrics(config Config, name string, metricsConfig metrics.Config) Pool {
	if !metricsConfig.Enabled {
		return NewWithConfig(config)
	}

	registry := metrics.DefaultRegistry
	if metricsConfig.Registry != nil {
		registry = metrics.NewRegistry(metricsConfig.Registry)
	}

	nextComplete := config.OnTaskComplete
	config.OnTaskComplete = func(workerID int, d time.Duration) {
		registry.TasksCompleted.WithLabelValues(name).Inc()
		registry.TaskExecutionDuration.WithLabelValues(name).Observe(d.Seconds())
		if nextComplete != nil {
			nextComplete(workerID, d)
		}
	}

	nextSteal := config.OnSteal
	config.OnSteal = func(thiefID, victimID int) {
		registry.TasksStolen.WithLabelValues(name).Inc()
		if nextSteal != nil {
			nextSteal(thiefID, victimID)
		}
	}

	return NewWithConfig(config)
}
