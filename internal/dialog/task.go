package dialog

import (
	"context"
	"sync"
)

// Task runs a function in its own goroutine with a cancellable context.
// It replaces fire-and-forget timers: once cancelled, the function observes
// ctx.Done() and its result is discarded by the owner.
type Task struct {
	cancel context.CancelFunc
	done   chan struct{}
	once   sync.Once
	err    error
}

// Go starts fn. The task's context is derived from ctx.
func Go(ctx context.Context, fn func(ctx context.Context) error) *Task {
	ctx, cancel := context.WithCancel(ctx)
	t := &Task{cancel: cancel, done: make(chan struct{})}
	go func() {
		defer close(t.done)
		defer cancel()
		t.err = fn(ctx)
	}()
	return t
}

// Cancel asks the task to stop. It does not wait.
func (t *Task) Cancel() {
	t.once.Do(t.cancel)
}

// Done is closed when the task function has returned
func (t *Task) Done() <-chan struct{} { return t.done }

// Wait blocks until the task finishes and returns its error
func (t *Task) Wait() error {
	<-t.done
	return t.err
}
