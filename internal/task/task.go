// Package task runs a function on its own goroutine and exposes its single outcome.
package task

import (
	"context"
	"fmt"
)

type Task[T any] struct {
	done  chan struct{}
	value T
	err   error
}

// Run starts fn immediately. fn receives ctx unchanged; callers that want the work
// to outlive their own cancellation pass context.WithoutCancel.
func Run[T any](ctx context.Context, fn func(ctx context.Context) (T, error)) *Task[T] {
	t := &Task[T]{done: make(chan struct{})}

	go func() {
		defer close(t.done)
		defer func() {
			if r := recover(); r != nil {
				t.err = fmt.Errorf("task panicked: %v", r)
			}
		}()
		t.value, t.err = fn(ctx)
	}()

	return t
}

// Done is closed once the outcome is available.
func (t *Task[T]) Done() <-chan struct{} {
	return t.done
}

// Wait blocks until the task finishes or ctx is done. A cancelled Wait does not stop the task.
func (t *Task[T]) Wait(ctx context.Context) (T, error) {
	select {
	case <-t.done:
		return t.value, t.err
	case <-ctx.Done():
		var zero T
		return zero, ctx.Err()
	}
}

// Finished reports whether the outcome is available without blocking.
func (t *Task[T]) Finished() bool {
	select {
	case <-t.done:
		return true
	default:
		return false
	}
}
