package workerpool_test

import (
	"context"
	"fmt"
	"log"

	"github.com/vnykmshr/goexec/pkg/execution/task"
	"github.com/vnykmshr/goexec/pkg/execution/workerpool"
)

// Example demonstrates basic usage of the worker pool.
func Example() {
	pool := workerpool.New(3, 10)
	defer func() { <-pool.Shutdown(true) }()

	f, err := pool.Submit(task.TaskFunc(func(ctx context.Context) error {
		fmt.Println("task executed")
		return nil
	}))
	if err != nil {
		log.Printf("failed to submit task: %v", err)
		return
	}

	if _, err := f.Get(context.Background()); err != nil {
		log.Printf("task failed: %v", err)
	}

	// Output: task executed
}

// Example_typedResult demonstrates retrieving a typed value from a task.
func Example_typedResult() {
	pool := workerpool.New(2, 0)
	defer func() { <-pool.Shutdown(true) }()

	f, err := workerpool.SubmitFunc(pool, func(ctx context.Context) (int, error) {
		return 6 * 7, nil
	})
	if err != nil {
		log.Printf("failed to submit: %v", err)
		return
	}

	v, err := f.Get(context.Background())
	if err != nil {
		log.Printf("task failed: %v", err)
		return
	}
	fmt.Println(v)

	// Output: 42
}

// Example_fireAndForget demonstrates submitting without awaiting the future.
func Example_fireAndForget() {
	pool := workerpool.New(2, 0)

	for i := 0; i < 3; i++ {
		if _, err := pool.Submit(task.TaskFunc(func(ctx context.Context) error {
			return nil
		})); err != nil {
			log.Printf("submit: %v", err)
		}
	}

	// Draining shutdown still runs everything queued.
	<-pool.Shutdown(true)
	fmt.Println("all done")

	// Output: all done
}
