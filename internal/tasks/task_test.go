// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package tasks

import (
	"errors"
	"testing"
)

func TestNewTask(t *testing.T) {
	task := NewTask("Physics", "?explain tunneling", "gpt-4o")

	if task.ID == "" {
		t.Error("Task ID should not be empty")
	}
	if task.Room != "Physics" {
		t.Errorf("Expected room 'Physics', got '%s'", task.Room)
	}
	if task.Message != "?explain tunneling" {
		t.Errorf("Expected message '?explain tunneling', got '%s'", task.Message)
	}
	if task.GetStatus() != TaskStatusQueued {
		t.Errorf("Expected status Queued, got %s", task.GetStatus())
	}
	if NewTask("a", "b", "c").ID == task.ID {
		t.Error("Task IDs should be unique")
	}
}

func TestTaskLifecycle(t *testing.T) {
	task := NewTask("room", "hi", "gpt-4o")

	if err := task.MarkStarted(); err != nil {
		t.Fatalf("MarkStarted: %v", err)
	}
	if task.GetStatus() != TaskStatusRunning {
		t.Error("Task should be running after MarkStarted()")
	}
	if err := task.MarkComplete(); err != nil {
		t.Fatalf("MarkComplete: %v", err)
	}
	if !task.IsComplete() {
		t.Error("Task should be complete after MarkComplete()")
	}
	if task.Duration() < 0 {
		t.Error("Task duration should not be negative")
	}
	if err := task.MarkStarted(); err == nil {
		t.Error("Terminal task should not transition back to Running")
	}
}

func TestTaskInvalidTransitions(t *testing.T) {
	task := NewTask("room", "hi", "gpt-4o")

	if err := task.MarkComplete(); err == nil {
		t.Error("Queued task should not complete without running")
	}
	if err := task.MarkCanceled(); err != nil {
		t.Errorf("Queued task should be cancelable: %v", err)
	}
	if err := task.SetError(errors.New("late")); err == nil {
		t.Error("Canceled task should not become failed")
	}
}

func TestTaskError(t *testing.T) {
	task := NewTask("room", "hi", "gpt-4o")
	task.MarkStarted()

	if err := task.SetError(errors.New("disk full")); err != nil {
		t.Fatalf("SetError: %v", err)
	}
	if task.GetStatus() != TaskStatusFailed {
		t.Error("Task should be failed after SetError()")
	}
	if task.GetError() != "disk full" {
		t.Errorf("Expected error 'disk full', got '%s'", task.GetError())
	}
	if task.SetError(nil) != nil {
		t.Error("SetError(nil) should be a no-op")
	}
}

func TestTaskClone(t *testing.T) {
	task := NewTask("room", "hi", "gpt-4o")
	task.MarkStarted()

	clone := task.Clone()
	task.MarkComplete()

	if clone.Status != TaskStatusRunning {
		t.Errorf("Clone status changed to %s", clone.Status)
	}
	if clone.ID != task.ID || clone.Message != task.Message {
		t.Error("Clone should copy identity fields")
	}
}

func TestTaskSummary(t *testing.T) {
	task := NewTask("Physics", "hi", "gpt-4o")
	summary := task.Summary()
	if summary[:10] != "["+task.ID[:8]+"]" {
		t.Errorf("Summary should start with the short ID: %q", summary)
	}
}
