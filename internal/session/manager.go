// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package session

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"

	"github.com/jeranaias/opal-tui/internal/model"
	"github.com/jeranaias/opal-tui/internal/pipeline"
	"github.com/jeranaias/opal-tui/internal/storage"
	"github.com/jeranaias/opal-tui/internal/tasks"
)

// DefaultReplyBuffer is the capacity of the reply channel.
const DefaultReplyBuffer = 64

// newRoomPrefix names rooms created with NewRoom.
const newRoomPrefix = "New Chat "

// Processor runs one user turn against a transcript.
type Processor interface {
	Process(ctx context.Context, userMessage string, transcript model.Transcript, modelID string) pipeline.Result
}

// Reply is emitted on the manager's channel when a send finishes.
type Reply struct {
	Room   string
	Text   string
	URL    string
	TaskID string

	// Failed is set when the answer is the fixed failure text.
	Failed bool

	// Err is a persistence error from saving the turn. The turn is still
	// kept in memory.
	Err error
}

// Options configures a Manager.
type Options struct {
	// QueueSize bounds the outstanding sends per room.
	QueueSize int

	// TaskTimeout bounds one turn including retries (0 = no bound).
	TaskTimeout time.Duration

	// ReplyBuffer is the capacity of the reply channel.
	ReplyBuffer int

	Logger zerolog.Logger
}

// =============================================================================
// MANAGER
// =============================================================================

// Manager tracks every room, its transcript and its worker.
type Manager struct {
	mu sync.Mutex

	store     *storage.Store
	processor Processor
	opts      Options
	logger    zerolog.Logger

	rooms   map[string]model.Transcript
	workers map[string]*tasks.Worker

	replies chan Reply
	// stopping is closed when Close starts; pending notifications are
	// dropped from then on instead of blocking the drain.
	stopping chan struct{}
	closed   bool
}

// NewManager loads every persisted room from store and returns a manager
// ready to accept sends. The reserved unsaved room is always present.
func NewManager(store *storage.Store, processor Processor, opts Options) (*Manager, error) {
	if store == nil || processor == nil {
		return nil, errors.New("session: store and processor are required")
	}
	if opts.QueueSize <= 0 {
		opts.QueueSize = tasks.DefaultQueueSize
	}
	if opts.ReplyBuffer <= 0 {
		opts.ReplyBuffer = DefaultReplyBuffer
	}

	rooms, err := store.LoadAll()
	if err != nil {
		return nil, fmt.Errorf("loading rooms: %w", err)
	}
	if _, ok := rooms[model.UnsavedRoom]; !ok {
		rooms[model.UnsavedRoom] = model.Transcript{}
	}

	opts.Logger.Info().Int("rooms", len(rooms)).Str("dir", store.Dir()).Msg("rooms loaded")

	return &Manager{
		store:     store,
		processor: processor,
		opts:      opts,
		logger:    opts.Logger,
		rooms:     rooms,
		workers:   make(map[string]*tasks.Worker),
		replies:   make(chan Reply, opts.ReplyBuffer),
		stopping:  make(chan struct{}),
	}, nil
}

// Replies returns the channel finished turns are reported on. It is closed
// by Close once every worker has stopped.
func (m *Manager) Replies() <-chan Reply {
	return m.replies
}

// =============================================================================
// SENDING
// =============================================================================

// Send queues text for room and returns the task ID. Unknown rooms are
// created. A room with QueueSize outstanding sends yields ErrQueueFull.
func (m *Manager) Send(room, text, modelID string) (string, error) {
	if strings.TrimSpace(text) == "" {
		return "", ErrEmptyMessage
	}
	name, err := storage.NormalizeRoomName(room)
	if err != nil {
		return "", err
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return "", ErrClosed
	}
	if _, ok := m.rooms[name]; !ok {
		m.rooms[name] = model.Transcript{}
	}

	task := tasks.NewTask(name, text, modelID)
	if err := m.workerLocked(name).Submit(task); err != nil {
		return "", err
	}

	m.logger.Debug().
		Str("room", name).
		Str("task", task.ID).
		Str("model", modelID).
		Str("preview", model.NewUserMessage(text).Preview(40)).
		Msg("send queued")
	return task.ID, nil
}

// workerLocked returns the room's worker, creating it on first use.
// Caller must hold m.mu.
func (m *Manager) workerLocked(room string) *tasks.Worker {
	if w, ok := m.workers[room]; ok {
		return w
	}
	w := tasks.NewWorker(room, tasks.WorkerOptions{
		QueueSize:   m.opts.QueueSize,
		TaskTimeout: m.opts.TaskTimeout,
		Handler:     m.handle,
		OnDone:      m.onDone,
	})
	m.workers[room] = w
	return w
}

// handle runs one turn. The lock is released while the pipeline runs.
func (m *Manager) handle(ctx context.Context, task *tasks.Task) error {
	m.mu.Lock()
	transcript := m.rooms[task.Room].Clone()
	m.mu.Unlock()

	result := m.processor.Process(ctx, task.Message, transcript, task.Model)

	m.mu.Lock()
	m.rooms[task.Room] = result.Transcript
	saveErr := m.store.Save(task.Room, result.Transcript)
	m.mu.Unlock()

	if saveErr != nil {
		m.logger.Error().Err(saveErr).Str("room", task.Room).Msg("failed to save room")
	}

	m.notify(Reply{
		Room:   task.Room,
		Text:   result.Text,
		URL:    result.URL,
		TaskID: task.ID,
		Failed: result.Failed(),
		Err:    saveErr,
	})
	return saveErr
}

// onDone runs on the worker goroutine once the task has left the pending list.
func (m *Manager) onDone(task *tasks.Task) {
	m.logger.Debug().
		Str("task", task.ID).
		Str("room", task.Room).
		Str("status", task.GetStatus().String()).
		Dur("wait", task.Wait()).
		Dur("duration", task.Duration()).
		Msg("send finished")
}

// notify delivers r, waiting for the reader when the channel is full. Once
// Close has started a reply that cannot be buffered is dropped.
func (m *Manager) notify(r Reply) {
	select {
	case m.replies <- r:
		return
	default:
	}
	select {
	case m.replies <- r:
	case <-m.stopping:
		m.logger.Warn().Str("room", r.Room).Str("task", r.TaskID).Msg("shutting down, dropping notification")
	}
}

// Pending returns the queued and running sends for room, oldest first.
func (m *Manager) Pending(room string) []*tasks.Task {
	m.mu.Lock()
	w, ok := m.workers[room]
	m.mu.Unlock()
	if !ok {
		return nil
	}
	return w.Pending()
}

// Busy reports whether room has queued or running sends.
func (m *Manager) Busy(room string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.busyLocked(room)
}

func (m *Manager) busyLocked(room string) bool {
	w, ok := m.workers[room]
	return ok && w.Busy()
}

// =============================================================================
// ROOMS
// =============================================================================

// Rooms returns every room name: the reserved room first, then the rest in
// sorted order.
func (m *Manager) Rooms() []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	names := make([]string, 0, len(m.rooms))
	for name := range m.rooms {
		if name != model.UnsavedRoom {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return append([]string{model.UnsavedRoom}, names...)
}

// Has reports whether room exists.
func (m *Manager) Has(room string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.rooms[room]
	return ok
}

// Transcript returns a copy of room's transcript.
func (m *Manager) Transcript(room string) (model.Transcript, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	t, ok := m.rooms[room]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrRoomNotFound, room)
	}
	return t.Clone(), nil
}

// NewRoom creates an empty room named "New Chat N" and returns its name.
// The room is persisted with its first turn.
func (m *Manager) NewRoom() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.closed {
		return "", ErrClosed
	}
	n := len(m.rooms) + 1
	name := fmt.Sprintf("%s%d", newRoomPrefix, n)
	for {
		if _, taken := m.rooms[name]; !taken && !m.store.Exists(name) {
			break
		}
		n++
		name = fmt.Sprintf("%s%d", newRoomPrefix, n)
	}
	m.rooms[name] = model.Transcript{}
	m.logger.Info().Str("room", name).Msg("room created")
	return name, nil
}

// Rename gives oldRoom a new name and returns the normalized name. Renaming
// the reserved room keeps its conversation under the new name and starts a
// fresh reserved room.
func (m *Manager) Rename(oldRoom, newRoom string) (string, error) {
	name, err := storage.NormalizeRoomName(newRoom)
	if err != nil {
		return "", err
	}
	if model.IsUnsaved(name) {
		return "", fmt.Errorf("%w: %q", ErrReservedRoom, name)
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	transcript, ok := m.rooms[oldRoom]
	if !ok {
		return "", fmt.Errorf("%w: %q", ErrRoomNotFound, oldRoom)
	}
	if name == oldRoom {
		return name, nil
	}
	if m.busyLocked(oldRoom) {
		return "", fmt.Errorf("%w: %q", ErrRoomBusy, oldRoom)
	}
	if _, taken := m.rooms[name]; taken {
		return "", fmt.Errorf("%w: %q", ErrRoomExists, name)
	}

	if err := m.store.Rename(oldRoom, name); err != nil {
		if !errors.Is(err, storage.ErrRoomNotFound) {
			return "", err
		}
		// Never persisted yet: write it under the new name.
		if err := m.store.Save(name, transcript); err != nil {
			return "", err
		}
	}

	m.rooms[name] = transcript
	delete(m.rooms, oldRoom)
	if w, ok := m.workers[oldRoom]; ok {
		w.SetRoom(name)
		m.workers[name] = w
		delete(m.workers, oldRoom)
	}
	if model.IsUnsaved(oldRoom) {
		m.rooms[model.UnsavedRoom] = model.Transcript{}
	}
	return name, nil
}

// Delete removes room and its file. Deleting the reserved room clears it.
func (m *Manager) Delete(room string) error {
	m.mu.Lock()

	if _, ok := m.rooms[room]; !ok {
		m.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrRoomNotFound, room)
	}
	if m.busyLocked(room) {
		m.mu.Unlock()
		return fmt.Errorf("%w: %q", ErrRoomBusy, room)
	}
	if err := m.store.Delete(room); err != nil {
		m.mu.Unlock()
		return err
	}

	var idle *tasks.Worker
	if model.IsUnsaved(room) {
		m.rooms[room] = model.Transcript{}
	} else {
		delete(m.rooms, room)
		idle = m.workers[room]
		delete(m.workers, room)
	}
	m.mu.Unlock()

	if idle != nil {
		_ = idle.Close(context.Background())
	}
	return nil
}

// =============================================================================
// SHUTDOWN
// =============================================================================

// Close stops accepting sends and waits for every worker, bounded by ctx.
// The reserved room's file is then removed; a conversation the user kept has
// already moved to its own file by Rename.
func (m *Manager) Close(ctx context.Context) error {
	m.mu.Lock()
	if m.closed {
		m.mu.Unlock()
		return nil
	}
	m.closed = true
	close(m.stopping)
	workers := make([]*tasks.Worker, 0, len(m.workers))
	for _, w := range m.workers {
		workers = append(workers, w)
	}
	m.mu.Unlock()

	var errs []error
	for _, w := range workers {
		if err := w.Close(ctx); err != nil {
			errs = append(errs, fmt.Errorf("room %q: %w", w.Room(), err))
		}
	}

	if err := m.store.DiscardUnsaved(); err != nil {
		errs = append(errs, err)
	}

	close(m.replies)
	m.logger.Info().Int("workers", len(workers)).Msg("session closed")
	return errors.Join(errs...)
}
