// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tasks

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// collector records finished tasks in order.
type collector struct {
	mu   sync.Mutex
	done []*Task
	ch   chan *Task
}

func newCollector() *collector {
	return &collector{ch: make(chan *Task, 64)}
}

func (c *collector) onDone(t *Task) {
	c.mu.Lock()
	c.done = append(c.done, t)
	c.mu.Unlock()
	c.ch <- t
}

func (c *collector) wait(t *testing.T, n int) []*Task {
	t.Helper()
	out := make([]*Task, 0, n)
	for len(out) < n {
		select {
		case task := <-c.ch:
			out = append(out, task)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for %d tasks, got %d", n, len(out))
		}
	}
	return out
}

func TestWorkerRunsInOrder(t *testing.T) {
	col := newCollector()
	var mu sync.Mutex
	var order []string
	w := NewWorker("room", WorkerOptions{
		QueueSize: 4,
		Handler: func(ctx context.Context, task *Task) error {
			mu.Lock()
			order = append(order, task.Message)
			mu.Unlock()
			return nil
		},
		OnDone: col.onDone,
	})

	for _, msg := range []string{"one", "two", "three"} {
		require.NoError(t, w.Submit(NewTask("room", msg, "m")))
	}
	done := col.wait(t, 3)

	assert.Equal(t, []string{"one", "two", "three"}, order)
	for _, task := range done {
		assert.Equal(t, TaskStatusComplete, task.GetStatus())
	}
	assert.False(t, w.Busy())
	require.NoError(t, w.Close(context.Background()))
}

func TestWorkerSerializes(t *testing.T) {
	col := newCollector()
	var mu sync.Mutex
	running, maxRunning := 0, 0
	w := NewWorker("room", WorkerOptions{
		QueueSize: 4,
		Handler: func(ctx context.Context, task *Task) error {
			mu.Lock()
			running++
			if running > maxRunning {
				maxRunning = running
			}
			mu.Unlock()
			time.Sleep(5 * time.Millisecond)
			mu.Lock()
			running--
			mu.Unlock()
			return nil
		},
		OnDone: col.onDone,
	})

	for i := 0; i < 4; i++ {
		require.NoError(t, w.Submit(NewTask("room", "x", "m")))
	}
	col.wait(t, 4)
	assert.Equal(t, 1, maxRunning)
}

func TestWorkerQueueFull(t *testing.T) {
	release := make(chan struct{})
	col := newCollector()
	w := NewWorker("room", WorkerOptions{
		QueueSize: 2,
		Handler: func(ctx context.Context, task *Task) error {
			<-release
			return nil
		},
		OnDone: col.onDone,
	})

	require.NoError(t, w.Submit(NewTask("room", "a", "m")))
	require.NoError(t, w.Submit(NewTask("room", "b", "m")))
	err := w.Submit(NewTask("room", "c", "m"))
	assert.True(t, errors.Is(err, ErrQueueFull), "err = %v", err)

	pending := w.Pending()
	require.Len(t, pending, 2)
	assert.Equal(t, "a", pending[0].Message)
	assert.Equal(t, "b", pending[1].Message)
	assert.True(t, w.Busy())

	close(release)
	col.wait(t, 2)
	assert.Empty(t, w.Pending())
	require.NoError(t, w.Submit(NewTask("room", "d", "m")), "queue should accept work again")
	col.wait(t, 1)
}

func TestWorkerHandlerError(t *testing.T) {
	col := newCollector()
	w := NewWorker("room", WorkerOptions{
		Handler: func(ctx context.Context, task *Task) error {
			return errors.New("save failed")
		},
		OnDone: col.onDone,
	})

	require.NoError(t, w.Submit(NewTask("room", "a", "m")))
	task := col.wait(t, 1)[0]
	assert.Equal(t, TaskStatusFailed, task.GetStatus())
	assert.Equal(t, "save failed", task.GetError())
}

func TestWorkerTaskTimeout(t *testing.T) {
	col := newCollector()
	w := NewWorker("room", WorkerOptions{
		TaskTimeout: 20 * time.Millisecond,
		Handler: func(ctx context.Context, task *Task) error {
			<-ctx.Done()
			return ctx.Err()
		},
		OnDone: col.onDone,
	})

	require.NoError(t, w.Submit(NewTask("room", "slow", "m")))
	task := col.wait(t, 1)[0]
	assert.Equal(t, TaskStatusFailed, task.GetStatus())
	assert.Contains(t, task.GetError(), "timeout")
}

func TestWorkerCloseDrains(t *testing.T) {
	col := newCollector()
	w := NewWorker("room", WorkerOptions{
		Handler: func(ctx context.Context, task *Task) error {
			time.Sleep(5 * time.Millisecond)
			return nil
		},
		OnDone: col.onDone,
	})

	require.NoError(t, w.Submit(NewTask("room", "a", "m")))
	require.NoError(t, w.Submit(NewTask("room", "b", "m")))
	require.NoError(t, w.Close(context.Background()))

	col.mu.Lock()
	assert.Len(t, col.done, 2)
	col.mu.Unlock()

	assert.ErrorIs(t, w.Submit(NewTask("room", "late", "m")), ErrWorkerClosed)
}

func TestWorkerCloseDeadlineCancels(t *testing.T) {
	col := newCollector()
	w := NewWorker("room", WorkerOptions{
		Handler: func(ctx context.Context, task *Task) error {
			<-ctx.Done()
			return ctx.Err()
		},
		OnDone: col.onDone,
	})

	require.NoError(t, w.Submit(NewTask("room", "stuck", "m")))
	require.NoError(t, w.Submit(NewTask("room", "never", "m")))

	ctx, cancel := context.WithTimeout(context.Background(), 20*time.Millisecond)
	defer cancel()
	err := w.Close(ctx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	done := col.wait(t, 2)
	assert.Equal(t, TaskStatusCanceled, done[0].GetStatus())
	assert.Equal(t, TaskStatusCanceled, done[1].GetStatus())
}

func TestWorkerCloseUnstarted(t *testing.T) {
	w := NewWorker("room", WorkerOptions{})
	require.NoError(t, w.Close(context.Background()))
	require.NoError(t, w.Close(context.Background()))
}
