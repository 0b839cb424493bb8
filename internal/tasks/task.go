// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tasks provides the per-room send queue.
package tasks

import (
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// =============================================================================
// TASK STATUS
// =============================================================================

// TaskStatus represents the current state of a send.
type TaskStatus string

const (
	// TaskStatusQueued indicates the task is waiting for the room's worker
	TaskStatusQueued TaskStatus = "Queued"

	// TaskStatusRunning indicates the worker is processing the task
	TaskStatusRunning TaskStatus = "Running"

	// TaskStatusComplete indicates the task produced an answer
	TaskStatusComplete TaskStatus = "Complete"

	// TaskStatusFailed indicates the handler returned an error
	TaskStatusFailed TaskStatus = "Failed"

	// TaskStatusCanceled indicates the worker shut down before the task ran
	TaskStatusCanceled TaskStatus = "Canceled"
)

// String returns the string representation of the task status.
func (s TaskStatus) String() string {
	return string(s)
}

// IsTerminal reports whether no further transitions are possible.
func (s TaskStatus) IsTerminal() bool {
	return s == TaskStatusComplete || s == TaskStatusFailed || s == TaskStatusCanceled
}

// =============================================================================
// TASK STRUCTURE
// =============================================================================

// Task is one user message submitted to a room.
type Task struct {
	// ID is a unique identifier for this task
	ID string

	// Room is the room the message was sent to
	Room string

	// Message is the raw user input
	Message string

	// Model is the model requested for this turn
	Model string

	// Status is the current state of the task
	Status TaskStatus

	// EnqueuedAt is when the task was created
	EnqueuedAt time.Time

	// StartTime is when the worker picked the task up
	StartTime time.Time

	// EndTime is when the task reached a terminal state
	EndTime time.Time

	// Error is the error message if the task failed
	Error string

	mu sync.RWMutex
}

// NewTask creates a queued task.
func NewTask(room, message, model string) *Task {
	return &Task{
		ID:         uuid.New().String(),
		Room:       room,
		Message:    message,
		Model:      model,
		Status:     TaskStatusQueued,
		EnqueuedAt: time.Now(),
	}
}

// =============================================================================
// TASK METHODS
// =============================================================================

// SetStatus updates the task status (thread-safe).
// Valid transitions: Queued -> Running -> Complete/Failed/Canceled, and
// Queued -> Canceled.
func (t *Task) SetStatus(status TaskStatus) error {
	t.mu.Lock()
	defer t.mu.Unlock()

	if !isValidTransition(t.Status, status) {
		return fmt.Errorf("invalid status transition from %s to %s", t.Status, status)
	}
	t.Status = status
	now := time.Now()
	switch {
	case status == TaskStatusRunning:
		t.StartTime = now
	case status.IsTerminal() && t.EndTime.IsZero():
		t.EndTime = now
	}
	return nil
}

// isValidTransition checks if a status transition is valid.
func isValidTransition(from, to TaskStatus) bool {
	if from == to {
		return true
	}
	switch from {
	case TaskStatusQueued:
		return to == TaskStatusRunning || to == TaskStatusCanceled
	case TaskStatusRunning:
		return to == TaskStatusComplete || to == TaskStatusFailed || to == TaskStatusCanceled
	default:
		return false
	}
}

// GetStatus returns the current task status (thread-safe).
func (t *Task) GetStatus() TaskStatus {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.Status
}

// MarkStarted marks the task as running.
func (t *Task) MarkStarted() error {
	return t.SetStatus(TaskStatusRunning)
}

// MarkComplete marks the task as successfully completed.
func (t *Task) MarkComplete() error {
	return t.SetStatus(TaskStatusComplete)
}

// MarkCanceled marks the task as canceled.
func (t *Task) MarkCanceled() error {
	return t.SetStatus(TaskStatusCanceled)
}

// SetError records err and marks the task as failed.
func (t *Task) SetError(err error) error {
	if err == nil {
		return nil
	}
	if serr := t.SetStatus(TaskStatusFailed); serr != nil {
		return serr
	}
	t.mu.Lock()
	t.Error = err.Error()
	t.mu.Unlock()
	return nil
}

// GetError returns the error message (thread-safe).
func (t *Task) GetError() string {
	t.mu.RLock()
	defer t.mu.RUnlock()
	return t.Error
}

// Duration returns how long the task has been running or took to complete.
func (t *Task) Duration() time.Duration {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.StartTime.IsZero() {
		return 0
	}
	if t.EndTime.IsZero() {
		return time.Since(t.StartTime)
	}
	return t.EndTime.Sub(t.StartTime)
}

// Wait returns how long the task sat in the queue before it started.
func (t *Task) Wait() time.Duration {
	t.mu.RLock()
	defer t.mu.RUnlock()

	if t.StartTime.IsZero() {
		return time.Since(t.EnqueuedAt)
	}
	return t.StartTime.Sub(t.EnqueuedAt)
}

// IsComplete returns true if the task has finished (success, failure, or canceled).
func (t *Task) IsComplete() bool {
	return t.GetStatus().IsTerminal()
}

// Summary returns a one-line summary of the task.
func (t *Task) Summary() string {
	summary := fmt.Sprintf("[%s] %s - %s", t.ID[:8], t.Room, t.GetStatus())
	if d := t.Duration(); d > 0 {
		summary += fmt.Sprintf(" (%.1fs)", d.Seconds())
	}
	return summary
}

// Clone creates a copy of the task for reading.
func (t *Task) Clone() *Task {
	t.mu.RLock()
	defer t.mu.RUnlock()

	return &Task{
		ID:         t.ID,
		Room:       t.Room,
		Message:    t.Message,
		Model:      t.Model,
		Status:     t.Status,
		EnqueuedAt: t.EnqueuedAt,
		StartTime:  t.StartTime,
		EndTime:    t.EndTime,
		Error:      t.Error,
	}
}
