// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package storage persists room transcripts as JSON files.
package storage

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/text/unicode/norm"

	"github.com/jeranaias/opal-tui/internal/model"
	"github.com/jeranaias/opal-tui/internal/util"
)

const (
	fileExt  = ".json"
	filePerm = 0644
	dirPerm  = 0755

	// maxNameBytes keeps room file names under common filesystem limits.
	maxNameBytes = 200
)

// =============================================================================
// ROOM NAMES
// =============================================================================

// NormalizeRoomName returns the NFC form of name with surrounding whitespace
// removed, or ErrInvalidRoomName when it cannot be used as a file name.
func NormalizeRoomName(name string) (string, error) {
	n := norm.NFC.String(strings.TrimSpace(name))
	switch {
	case n == "":
		return "", fmt.Errorf("%w: empty", ErrInvalidRoomName)
	case strings.HasPrefix(n, "."):
		return "", fmt.Errorf("%w: %q starts with a dot", ErrInvalidRoomName, n)
	case strings.ContainsAny(n, `/\`+"\x00"):
		return "", fmt.Errorf("%w: %q contains a path separator", ErrInvalidRoomName, n)
	case len(n) > maxNameBytes:
		return "", fmt.Errorf("%w: longer than %d bytes", ErrInvalidRoomName, maxNameBytes)
	}
	return n, nil
}

// =============================================================================
// STORE
// =============================================================================

// RoomInfo is listing metadata for one persisted room.
type RoomInfo struct {
	Name     string
	Messages int
	Modified time.Time
	// Err is set when the file could not be parsed.
	Err error
}

// Store handles room persistence in a single directory.
// It is safe for concurrent use.
type Store struct {
	dir    string
	mu     sync.Mutex
	logger zerolog.Logger

	// aliases maps a room name to the base name of its file when the file
	// on disk is not in canonical form (NFC, trimmed).
	aliases map[string]string
}

// NewStore creates a store rooted at dir, creating the directory if needed.
func NewStore(dir string, logger zerolog.Logger) (*Store, error) {
	if dir == "" {
		return nil, opError("open", "", errors.New("empty directory"))
	}
	if err := os.MkdirAll(dir, dirPerm); err != nil {
		return nil, opError("open", "", err)
	}
	return &Store{
		dir:     dir,
		logger:  logger.With().Str("component", "storage").Logger(),
		aliases: make(map[string]string),
	}, nil
}

// Dir returns the directory the store writes to.
func (s *Store) Dir() string {
	return s.dir
}

// path returns the canonical file path for an already normalized room name.
func (s *Store) path(room string) string {
	return filepath.Join(s.dir, room+fileExt)
}

// sourcePath returns the file a room is read from: its alias when one was
// found by the last listing, otherwise the canonical path.
// Caller must hold s.mu.
func (s *Store) sourcePath(room string) string {
	if alias, ok := s.aliases[room]; ok {
		return filepath.Join(s.dir, alias+fileExt)
	}
	return s.path(room)
}

// dropAlias removes a room's non-canonical file after its content has been
// written elsewhere. Caller must hold s.mu.
func (s *Store) dropAlias(room string) error {
	alias, ok := s.aliases[room]
	if !ok {
		return nil
	}
	delete(s.aliases, room)
	err := os.Remove(filepath.Join(s.dir, alias+fileExt))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	return nil
}

// =============================================================================
// LOAD OPERATIONS
// =============================================================================

// LoadAll loads every room in the directory. A room whose file cannot be read
// or parsed is returned with an empty transcript and the failure is logged.
// A missing directory yields an empty map.
func (s *Store) LoadAll() (map[string]model.Transcript, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	names, err := s.listNames()
	if err != nil {
		return nil, err
	}

	rooms := make(map[string]model.Transcript, len(names))
	for _, name := range names {
		t, err := s.read(name)
		if err != nil {
			s.logger.Error().Err(err).Str("room", name).Msg("skipping unreadable room")
			t = model.Transcript{}
		}
		rooms[name] = t
	}
	return rooms, nil
}

// Load reads one room. A missing file yields ErrRoomNotFound.
func (s *Store) Load(room string) (model.Transcript, error) {
	name, err := NormalizeRoomName(room)
	if err != nil {
		return nil, opError("load", room, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	return s.read(name)
}

// List returns metadata for every persisted room, sorted by name.
func (s *Store) List() ([]RoomInfo, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	names, err := s.listNames()
	if err != nil {
		return nil, err
	}

	infos := make([]RoomInfo, 0, len(names))
	for _, name := range names {
		info := RoomInfo{Name: name}
		if st, err := os.Stat(s.sourcePath(name)); err == nil {
			info.Modified = st.ModTime()
		}
		t, err := s.read(name)
		if err != nil {
			info.Err = err
		}
		info.Messages = len(t)
		infos = append(infos, info)
	}
	return infos, nil
}

// Exists reports whether a room has a file.
func (s *Store) Exists(room string) bool {
	name, err := NormalizeRoomName(room)
	if err != nil {
		return false
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := os.Stat(s.path(name)); err == nil {
		return true
	}
	if _, err := s.listNames(); err != nil {
		return false
	}
	_, ok := s.aliases[name]
	return ok
}

// listNames returns the sorted room names found in the directory and
// rebuilds the alias table. A canonical file wins over non-canonical files
// that normalize to the same name; the extras are skipped with a warning.
// Caller must hold s.mu.
func (s *Store) listNames() ([]string, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, nil
		}
		return nil, opError("list", "", err)
	}

	seen := make(map[string]bool, len(entries))
	var aliased []string
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), fileExt) {
			continue
		}
		raw := strings.TrimSuffix(entry.Name(), fileExt)
		name, err := NormalizeRoomName(raw)
		if err != nil {
			continue
		}
		if name == raw {
			seen[name] = true
		} else {
			aliased = append(aliased, raw)
		}
	}

	s.aliases = make(map[string]string)
	sort.Strings(aliased)
	for _, raw := range aliased {
		name, _ := NormalizeRoomName(raw)
		if seen[name] {
			s.logger.Warn().Str("room", name).Str("file", raw+fileExt).Msg("ignoring duplicate room file")
			continue
		}
		seen[name] = true
		s.aliases[name] = raw
	}

	names := make([]string, 0, len(seen))
	for name := range seen {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, nil
}

// read decodes one room file. Caller must hold s.mu.
func (s *Store) read(name string) (model.Transcript, error) {
	data, err := os.ReadFile(s.sourcePath(name))
	if errors.Is(err, fs.ErrNotExist) {
		// The file may exist under a non-canonical name not listed yet.
		if _, lerr := s.listNames(); lerr == nil {
			data, err = os.ReadFile(s.sourcePath(name))
		}
	}
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, opError("load", name, ErrRoomNotFound)
		}
		return nil, opError("load", name, err)
	}

	var t model.Transcript
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, opError("load", name, fmt.Errorf("decode: %w", err))
	}
	for i, msg := range t {
		if !msg.Role.Valid() {
			return nil, opError("load", name, fmt.Errorf("message %d has invalid role %q", i, msg.Role))
		}
	}
	if t == nil {
		t = model.Transcript{}
	}
	return t, nil
}

// =============================================================================
// WRITE OPERATIONS
// =============================================================================

// Save replaces the room's file with transcript.
func (s *Store) Save(room string, transcript model.Transcript) error {
	name, err := NormalizeRoomName(room)
	if err != nil {
		return opError("save", room, err)
	}

	if transcript == nil {
		transcript = model.Transcript{}
	}
	data, err := json.MarshalIndent(transcript, "", "  ")
	if err != nil {
		return opError("save", name, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	// Listing first keeps a non-canonical file of this room known as its
	// alias, so it is replaced instead of left behind.
	if _, err := s.listNames(); err != nil {
		return err
	}
	if err := util.AtomicWriteFileWithDir(s.path(name), data, filePerm, dirPerm); err != nil {
		return opError("save", name, err)
	}
	if err := s.dropAlias(name); err != nil {
		return opError("save", name, err)
	}
	s.logger.Debug().Str("room", name).Int("messages", len(transcript)).Msg("room saved")
	return nil
}

// Rename moves a room's file: the old content is written under the new name
// and the old file is removed. An existing target yields ErrRoomExists.
func (s *Store) Rename(oldRoom, newRoom string) error {
	oldName, err := NormalizeRoomName(oldRoom)
	if err != nil {
		return opError("rename", oldRoom, err)
	}
	newName, err := NormalizeRoomName(newRoom)
	if err != nil {
		return opError("rename", newRoom, err)
	}
	if oldName == newName {
		return nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := os.Stat(s.path(newName)); err == nil {
		return opError("rename", newName, ErrRoomExists)
	}
	if _, err := s.listNames(); err != nil {
		return err
	}
	if _, ok := s.aliases[newName]; ok {
		return opError("rename", newName, ErrRoomExists)
	}

	source := s.sourcePath(oldName)
	data, err := os.ReadFile(source)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return opError("rename", oldName, ErrRoomNotFound)
		}
		return opError("rename", oldName, err)
	}
	if err := util.AtomicWriteFileWithDir(s.path(newName), data, filePerm, dirPerm); err != nil {
		return opError("rename", newName, err)
	}
	if err := os.Remove(source); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return opError("rename", oldName, err)
	}
	delete(s.aliases, oldName)

	s.logger.Info().Str("from", oldName).Str("to", newName).Msg("room renamed")
	return nil
}

// Delete removes a room's file. Deleting a room without a file is not an error.
func (s *Store) Delete(room string) error {
	name, err := NormalizeRoomName(room)
	if err != nil {
		return opError("delete", room, err)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if err := os.Remove(s.path(name)); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return opError("delete", name, err)
	}
	if _, err := s.listNames(); err != nil {
		return err
	}
	if err := s.dropAlias(name); err != nil {
		return opError("delete", name, err)
	}
	s.logger.Info().Str("room", name).Msg("room deleted")
	return nil
}

// DiscardUnsaved removes the reserved unsaved room's file.
func (s *Store) DiscardUnsaved() error {
	return s.Delete(model.UnsavedRoom)
}
