// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package tasks provides the per-room send queue.
//
// Each room gets one Worker: a goroutine that executes the room's sends one
// at a time, in submission order. Submissions beyond the queue size are
// rejected with ErrQueueFull instead of overwriting work already queued.
//
// # Key Types
//
//   - Task: One user message waiting for, or receiving, an answer
//   - Worker: Serial executor with a bounded queue for one room
//   - TaskStatus: Status enumeration (Queued, Running, Complete, Failed, Canceled)
//
// # Usage
//
//	w := tasks.NewWorker("Physics", tasks.WorkerOptions{
//	    QueueSize: 4,
//	    Handler:   func(ctx context.Context, t *tasks.Task) error { ... },
//	    OnDone:    func(t *tasks.Task) { ... },
//	})
//	err := w.Submit(tasks.NewTask("Physics", "?explain tunneling", "gpt-4o"))
//	...
//	err = w.Close(ctx)
package tasks
