// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tasks

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"
)

// Error variables for task submission.
var (
	// ErrQueueFull indicates the room already has the maximum number of
	// outstanding sends.
	ErrQueueFull = errors.New("queue is full")

	// ErrWorkerClosed indicates the worker no longer accepts tasks.
	ErrWorkerClosed = errors.New("worker is closed")
)

// DefaultQueueSize is used when WorkerOptions.QueueSize is not positive.
const DefaultQueueSize = 4

// Handler executes one task. A returned error marks the task as failed.
type Handler func(ctx context.Context, task *Task) error

// WorkerOptions configures a Worker.
type WorkerOptions struct {
	// QueueSize bounds the outstanding tasks, the running one included.
	QueueSize int

	// TaskTimeout bounds one Handler call (0 = no timeout).
	TaskTimeout time.Duration

	Handler Handler

	// OnDone is called after a task reaches a terminal state and has been
	// removed from the pending list. Optional.
	OnDone func(task *Task)
}

// =============================================================================
// WORKER
// =============================================================================

// Worker runs tasks for one room, one at a time and in submission order.
// The goroutine is started lazily by the first Submit and lives until Close.
type Worker struct {
	room string
	opts WorkerOptions

	queue   chan *Task
	pending []*Task // queued and running tasks, oldest first

	ctx    context.Context
	cancel context.CancelFunc

	mu      sync.Mutex
	started bool
	closed  bool
	done    chan struct{}
}

// NewWorker creates a worker for room. No goroutine is started yet.
func NewWorker(room string, opts WorkerOptions) *Worker {
	if opts.QueueSize <= 0 {
		opts.QueueSize = DefaultQueueSize
	}
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		room:   room,
		opts:   opts,
		queue:  make(chan *Task, opts.QueueSize),
		ctx:    ctx,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// Room returns the room this worker serves.
func (w *Worker) Room() string {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.room
}

// SetRoom changes the room name reported for tasks submitted from now on.
// Used when an idle room is renamed.
func (w *Worker) SetRoom(room string) {
	w.mu.Lock()
	defer w.mu.Unlock()
	w.room = room
}

// Submit queues task. It never blocks: a full queue yields ErrQueueFull and a
// closed worker yields ErrWorkerClosed.
func (w *Worker) Submit(task *Task) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.closed {
		return ErrWorkerClosed
	}
	if len(w.pending) >= w.opts.QueueSize {
		return fmt.Errorf("%w: %d outstanding sends (max: %d)", ErrQueueFull, len(w.pending), w.opts.QueueSize)
	}

	w.pending = append(w.pending, task)
	w.queue <- task // capacity equals QueueSize, so this cannot block

	if !w.started {
		w.started = true
		go w.loop()
	}
	return nil
}

// Pending returns copies of the queued and running tasks, oldest first.
func (w *Worker) Pending() []*Task {
	w.mu.Lock()
	defer w.mu.Unlock()

	out := make([]*Task, len(w.pending))
	for i, t := range w.pending {
		out[i] = t.Clone()
	}
	return out
}

// Busy reports whether any task is queued or running.
func (w *Worker) Busy() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return len(w.pending) > 0
}

// Close stops accepting tasks and waits for the queued ones to finish. If ctx
// ends first, the running task's context is canceled, tasks that have not
// started are marked canceled, and ctx.Err() is returned.
func (w *Worker) Close(ctx context.Context) error {
	w.mu.Lock()
	if !w.closed {
		w.closed = true
		close(w.queue)
	}
	started := w.started
	w.mu.Unlock()

	if !started {
		w.cancel()
		return nil
	}

	select {
	case <-w.done:
		w.cancel()
		return nil
	case <-ctx.Done():
		w.cancel()
		<-w.done
		return ctx.Err()
	}
}

// loop executes tasks until the queue is closed and drained.
func (w *Worker) loop() {
	defer close(w.done)

	for task := range w.queue {
		w.run(task)

		w.mu.Lock()
		for i, t := range w.pending {
			if t == task {
				w.pending = append(w.pending[:i], w.pending[i+1:]...)
				break
			}
		}
		w.mu.Unlock()

		if w.opts.OnDone != nil {
			w.opts.OnDone(task)
		}
	}
}

// run executes one task and records its outcome.
func (w *Worker) run(task *Task) {
	if w.ctx.Err() != nil {
		_ = task.MarkCanceled()
		return
	}
	_ = task.MarkStarted()

	ctx, cancel := w.ctx, context.CancelFunc(func() {})
	if w.opts.TaskTimeout > 0 {
		ctx, cancel = context.WithTimeout(w.ctx, w.opts.TaskTimeout)
	}
	defer cancel()

	var err error
	if w.opts.Handler == nil {
		err = errors.New("no handler configured")
	} else {
		err = w.opts.Handler(ctx, task)
	}

	switch {
	case err == nil:
		_ = task.MarkComplete()
	case errors.Is(ctx.Err(), context.DeadlineExceeded):
		_ = task.SetError(fmt.Errorf("task timeout after %v: %w", w.opts.TaskTimeout, err))
	case errors.Is(err, context.Canceled):
		_ = task.MarkCanceled()
	default:
		_ = task.SetError(err)
	}
}
