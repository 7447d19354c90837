package prioritypool

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/vnykmshr/goexec/internal/testutil"
	gxerrors "github.com/vnykmshr/goexec/pkg/common/errors"
	"github.com/vnykmshr/goexec/pkg/execution/future"
	"github.com/vnykmshr/goexec/pkg/execution/task"
)

func TestCompareEntriesTotalOrder(t *testing.T) {
	tests := []struct {
		name string
		a, b *entry
		want int
	}{
		{"higher priority first", &entry{priority: 5, seq: 2}, &entry{priority: 1, seq: 1}, -1},
		{"lower priority later", &entry{priority: 1, seq: 1}, &entry{priority: 5, seq: 2}, 1},
		{"equal priority earlier seq first", &entry{priority: 3, seq: 1}, &entry{priority: 3, seq: 2}, -1},
		{"equal priority later seq after", &entry{priority: 3, seq: 9}, &entry{priority: 3, seq: 2}, 1},
		{"identical only when same seq", &entry{priority: 3, seq: 4}, &entry{priority: 3, seq: 4}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			testutil.AssertEqual(t, compareEntries(tt.a, tt.b), tt.want)
		})
	}
}

// blockWorker occupies the pool's single worker until the returned release
// function is called, so subsequent submissions queue up.
func blockWorker(t *testing.T, p Pool) (release func(), wait *future.Future[struct{}]) {
	t.Helper()
	gate := make(chan struct{})
	running := make(chan struct{})
	f, err := p.Submit(task.TaskFunc(func(_ context.Context) error {
		close(running)
		<-gate
		return nil
	}))
	testutil.AssertNoError(t, err)
	<-running
	return func() { close(gate) }, f
}

func TestHighPriorityDequeuesFirst(t *testing.T) {
	pool := New(1)
	defer func() { <-pool.Shutdown(true) }()

	release, blocker := blockWorker(t, pool)

	started := make(chan string, 2)
	low, err := pool.SubmitPriority(task.TaskFunc(func(_ context.Context) error {
		started <- "low"
		return nil
	}), PriorityLow)
	testutil.AssertNoError(t, err)

	high, err := pool.SubmitPriority(task.TaskFunc(func(_ context.Context) error {
		started <- "high"
		return nil
	}), PriorityHigh)
	testutil.AssertNoError(t, err)

	release()
	_, _ = blocker.Get(context.Background())

	testutil.AssertEqual(t, <-started, "high")
	testutil.AssertEqual(t, <-started, "low")

	_, err = high.Get(context.Background())
	testutil.AssertNoError(t, err)
	_, err = low.Get(context.Background())
	testutil.AssertNoError(t, err)
}

func TestEqualPriorityIsFIFO(t *testing.T) {
	pool := New(1)
	defer func() { <-pool.Shutdown(true) }()

	release, blocker := blockWorker(t, pool)

	const n = 5
	started := make(chan int, n)
	var futures []*future.Future[struct{}]
	for i := 0; i < n; i++ {
		i := i
		f, err := pool.Submit(task.TaskFunc(func(_ context.Context) error {
			started <- i
			return nil
		}))
		testutil.AssertNoError(t, err)
		futures = append(futures, f)
	}

	release()
	_, _ = blocker.Get(context.Background())

	for i := 0; i < n; i++ {
		select {
		case id := <-started:
			testutil.AssertEqual(t, id, i)
		case <-time.After(time.Second):
			t.Fatalf("task %d never started", i)
		}
	}

	for _, f := range futures {
		_, err := f.Get(context.Background())
		testutil.AssertNoError(t, err)
	}
}

func TestMixedPriorityOrdering(t *testing.T) {
	pool := New(1)
	defer func() { <-pool.Shutdown(true) }()

	release, blocker := blockWorker(t, pool)

	started := make(chan int, 6)
	submit := func(priority int) {
		_, err := pool.SubmitPriority(task.TaskFunc(func(_ context.Context) error {
			started <- priority
			return nil
		}), priority)
		testutil.AssertNoError(t, err)
	}

	// Interleaved submissions across three levels.
	submit(PriorityNormal)
	submit(PriorityHigh)
	submit(PriorityLow)
	submit(PriorityHigh)
	submit(PriorityNormal)
	submit(PriorityLow)

	release()
	_, _ = blocker.Get(context.Background())

	want := []int{PriorityHigh, PriorityHigh, PriorityNormal, PriorityNormal, PriorityLow, PriorityLow}
	for i, w := range want {
		select {
		case got := <-started:
			if got != w {
				t.Fatalf("position %d: got priority %d, want %d", i, got, w)
			}
		case <-time.After(time.Second):
			t.Fatalf("task %d never started", i)
		}
	}
}

func TestSubmitFuncTypedResult(t *testing.T) {
	pool := New(2)
	defer func() { <-pool.Shutdown(true) }()

	f, err := SubmitFunc(pool, PriorityHigh, func(_ context.Context) (float64, error) {
		return 2.5, nil
	})
	testutil.AssertNoError(t, err)

	v, err := f.Get(context.Background())
	testutil.AssertNoError(t, err)
	testutil.AssertEqual(t, v, 2.5)
}

func TestTaskErrorAndPanicRouting(t *testing.T) {
	pool := New(1)
	defer func() { <-pool.Shutdown(true) }()

	failF, err := pool.Submit(task.TaskFunc(func(_ context.Context) error {
		return errors.New("bad input")
	}))
	testutil.AssertNoError(t, err)
	_, err = failF.Get(context.Background())
	testutil.AssertEqual(t, err.Error(), "bad input")

	panicF, err := pool.Submit(task.TaskFunc(func(_ context.Context) error {
		panic("diverged")
	}))
	testutil.AssertNoError(t, err)
	_, err = panicF.Get(context.Background())
	testutil.AssertEqual(t, gxerrors.IsTaskPanic(err), true)

	// Worker keeps serving after both failures.
	okF, err := pool.Submit(task.TaskFunc(func(_ context.Context) error { return nil }))
	testutil.AssertNoError(t, err)
	_, err = okF.Get(context.Background())
	testutil.AssertNoError(t, err)
}

func TestSubmitAfterShutdown(t *testing.T) {
	pool := New(1)
	<-pool.Shutdown(true)

	_, err := pool.Submit(task.TaskFunc(func(_ context.Context) error { return nil }))
	testutil.AssertEqual(t, errors.Is(err, gxerrors.ErrPoolStopped), true)
}

func TestShutdownDiscardResolvesFutures(t *testing.T) {
	pool := New(1)

	release, blocker := blockWorker(t, pool)

	var executed int32
	var futures []*future.Future[struct{}]
	for i := 0; i < 4; i++ {
		f, err := pool.Submit(task.TaskFunc(func(_ context.Context) error {
			atomic.AddInt32(&executed, 1)
			return nil
		}))
		testutil.AssertNoError(t, err)
		futures = append(futures, f)
	}

	done := pool.Shutdown(false)

	for _, f := range futures {
		_, err := f.Get(context.Background())
		testutil.AssertEqual(t, errors.Is(err, gxerrors.ErrPoolStopped), true)
	}
	testutil.AssertEqual(t, atomic.LoadInt32(&executed), int32(0))

	release()
	_, _ = blocker.Get(context.Background())
	<-done
}

func TestShutdownDrainRunsByPriority(t *testing.T) {
	pool := New(1)

	release, _ := blockWorker(t, pool)

	started := make(chan int, 2)
	_, err := pool.SubmitPriority(task.TaskFunc(func(_ context.Context) error {
		started <- PriorityLow
		return nil
	}), PriorityLow)
	testutil.AssertNoError(t, err)
	_, err = pool.SubmitPriority(task.TaskFunc(func(_ context.Context) error {
		started <- PriorityHigh
		return nil
	}), PriorityHigh)
	testutil.AssertNoError(t, err)

	release()
	done := pool.Shutdown(true)

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("drain shutdown did not complete")
	}

	testutil.AssertEqual(t, <-started, PriorityHigh)
	testutil.AssertEqual(t, <-started, PriorityLow)
}

func TestCounters(t *testing.T) {
	pool := New(2)

	const n = 8
	var futures []*future.Future[struct{}]
	for i := 0; i < n; i++ {
		f, err := pool.Submit(task.TaskFunc(func(_ context.Context) error { return nil }))
		testutil.AssertNoError(t, err)
		futures = append(futures, f)
	}
	for _, f := range futures {
		_, _ = f.Get(context.Background())
	}

	<-pool.Shutdown(true)

	testutil.AssertEqual(t, pool.TotalSubmitted(), int64(n))
	testutil.AssertEqual(t, pool.TotalCompleted(), int64(n))
	testutil.AssertEqual(t, pool.QueueSize(), 0)
}

func TestBoundedQueueBlocksSubmit(t *testing.T) {
	pool := NewWithConfig(Config{Workers: 1, QueueCapacity: 1})
	defer func() { <-pool.Shutdown(true) }()

	release, _ := blockWorker(t, pool)

	_, err := pool.Submit(task.TaskFunc(func(_ context.Context) error { return nil }))
	testutil.AssertNoError(t, err)

	submitted := make(chan struct{})
	go func() {
		_, err := pool.Submit(task.TaskFunc(func(_ context.Context) error { return nil }))
		if err != nil {
			t.Errorf("blocked submit failed: %v", err)
		}
		close(submitted)
	}()

	select {
	case <-submitted:
		t.Fatal("submit returned while queue was full")
	case <-time.After(50 * time.Millisecond):
	}

	release()

	select {
	case <-submitted:
	case <-time.After(time.Second):
		t.Fatal("submit never unblocked")
	}
}
