package stealpool

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/vnykmshr/goexec/internal/testutil"
	"github.com/vnykmshr/goexec/pkg/execution/task"
	"github.com/vnykmshr/goexec/pkg/metrics"
)

func gatherCounter(t *testing.T, reg *prometheus.Registry, name string) float64 {
	t.Helper()
	families, err := reg.Gather()
	testutil.AssertNoError(t, err)
	for _, mf := range families {
		if mf.GetName() == name {
			return mf.GetMetric()[0].GetCounter().GetValue()
		}
	}
	t.Fatalf("metric %s not found", name)
	return 0
}

func TestMetricsCountsCompletionsAndSteals(t *testing.T) {
	reg := prometheus.NewRegistry()
	pool := NewWithConfigAndMetrics(Config{Workers: 2}, "test_steal", metrics.Config{
		Enabled:  true,
		Registry: reg,
	})

	g := newGate(1)
	blocker, err := pool.Submit(g.task())
	testutil.AssertNoError(t, err)
	g.waitStarted(t, 1)

	// With one worker pinned, round-robin guarantees the idle worker must
	// steal at least one of these.
	var executed int32
	for i := 0; i < 4; i++ {
		_, err := pool.Submit(task.TaskFunc(func(ctx context.Context) error {
			atomic.AddInt32(&executed, 1)
			return nil
		}))
		testutil.AssertNoError(t, err)
	}
	testutil.WaitForInt32(t, &executed, 4, 2*time.Second)

	close(g.release)
	waitDone(t, pool.Shutdown(true))
	_, err = blocker.Get(context.Background())
	testutil.AssertNoError(t, err)

	testutil.AssertEqual(t, gatherCounter(t, reg, "goexec_pool_tasks_completed_total"), 5.0)
	testutil.AssertEqual(t, gatherCounter(t, reg, "goexec_stealpool_tasks_stolen_total") >= 1.0, true)
}

func TestMetricsDisabledReturnsPlainPool(t *testing.T) {
	pool := NewWithConfigAndMetrics(Config{Workers: 1}, "noop", metrics.Config{Enabled: false})
	defer func() { <-pool.Shutdown(true) }()

	_, err := pool.Submit(task.TaskFunc(func(ctx context.Context) error { return nil }))
	testutil.AssertNoError(t, err)
}
