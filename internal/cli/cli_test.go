// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/opal-tui/internal/config"
	"github.com/jeranaias/opal-tui/internal/export"
	"github.com/jeranaias/opal-tui/internal/model"
	"github.com/jeranaias/opal-tui/internal/storage"
)

// isolate points HOME at a temp dir so no real config or rooms are read.
func isolate(t *testing.T) string {
	t.Helper()
	home := t.TempDir()
	t.Setenv("HOME", home)
	for _, v := range []string{"OPAL_MODEL", "OPAL_CHAT_DIR", "OPAL_BASE_URL", "OPAL_LOG_LEVEL", "OPAL_THEME", "OPAL_RETRY_LIMIT"} {
		t.Setenv(v, "")
	}
	return home
}

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	cmd := NewRootCmd()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestVersionCmd(t *testing.T) {
	out, err := execute(t, "version")
	require.NoError(t, err)
	assert.Contains(t, out, "opal "+Version)
	assert.Contains(t, out, "commit: "+GitCommit)
}

func TestVersionCmdJSON(t *testing.T) {
	out, err := execute(t, "version", "--json")
	require.NoError(t, err)

	var resp struct {
		Success bool        `json:"success"`
		Command string      `json:"command"`
		Data    VersionData `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	assert.True(t, resp.Success)
	assert.Equal(t, "version", resp.Command)
	assert.Equal(t, Version, resp.Data.Version)
	assert.True(t, strings.HasPrefix(resp.Data.GoVersion, "go"))
}

func TestRoomsCmd(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Physics.json"),
		[]byte(`[{"role":"system","content":"s"},{"role":"user","content":"hi"}]`), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Broken.json"), []byte("{"), 0644))

	out, err := execute(t, "rooms", "--chat-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "ROOM")
	assert.Contains(t, out, "Physics")
	assert.Contains(t, out, "unreadable")

	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.True(t, strings.HasPrefix(lines[1], "Broken"), "rooms are sorted: %q", lines[1])
	assert.Equal(t, []string{"Physics", "2"}, strings.Fields(lines[2])[:2])
}

func TestRoomsCmdJSON(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, "Ideas.json"), []byte(`[]`), 0644))

	out, err := execute(t, "rooms", "--json", "--chat-dir", dir)
	require.NoError(t, err)

	var resp struct {
		Data []RoomData `json:"data"`
	}
	require.NoError(t, json.Unmarshal([]byte(out), &resp))
	require.Len(t, resp.Data, 1)
	assert.Equal(t, "Ideas", resp.Data[0].Name)
	assert.Equal(t, 0, resp.Data[0].Messages)
	assert.Empty(t, resp.Data[0].Error)
}

func TestRoomsCmdEmpty(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	out, err := execute(t, "rooms", "--chat-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "No rooms in")
}

func TestRootRejectsUnknownModel(t *testing.T) {
	isolate(t)
	_, err := execute(t, "rooms", "--model", "gpt-5")
	assert.ErrorIs(t, err, config.ErrConfiguration)
}

func TestRootRequiresTerminal(t *testing.T) {
	isolate(t)
	orig := isTerminal
	isTerminal = func(*os.File) bool { return false }
	defer func() { isTerminal = orig }()

	_, err := execute(t, "--chat-dir", t.TempDir())
	assert.ErrorIs(t, err, ErrNotTerminal)
}

func TestNewAppRequiresKey(t *testing.T) {
	isolate(t)
	cfg := config.Default()
	cfg.API.EnvFile = ""
	t.Setenv(cfg.API.KeyEnv, "")

	_, err := newApp(cfg, zerolog.Nop(), time.Now())
	assert.ErrorIs(t, err, config.ErrMissingAPIKey)
}

func TestNewAppWiresSession(t *testing.T) {
	isolate(t)
	cfg := config.Default()
	cfg.API.EnvFile = ""
	cfg.Chat.Dir = t.TempDir()
	cfg.UI.Theme = "dark"
	t.Setenv(cfg.API.KeyEnv, "sk-test")

	a, err := newApp(cfg, zerolog.Nop(), time.Now())
	require.NoError(t, err)

	assert.Equal(t, []string{model.UnsavedRoom}, a.manager.Rooms())
	assert.True(t, a.theme.IsDark)

	m := a.model()
	assert.Equal(t, "gpt-4o", m.CurrentModel())
	assert.Equal(t, model.UnsavedRoom, m.CurrentRoom())

	require.NoError(t, a.close())
}

func writeRoom(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name+".json"), []byte(body), 0644))
}

const physicsRoom = `[{"role":"system","content":"sys"},{"role":"user","content":"What is light?"},{"role":"assistant","content":"Waves.","url":"https://example.com"}]`

func TestExportCmdMarkdown(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	writeRoom(t, dir, "Physics", physicsRoom)

	out, err := execute(t, "export", "Physics", "--chat-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "# Physics")
	assert.Contains(t, out, "### Me\n\nWhat is light?")
	assert.Contains(t, out, "URL: <https://example.com>")
	assert.NotContains(t, out, "sys\n")
}

func TestExportCmdJSONToDir(t *testing.T) {
	isolate(t)
	dir := t.TempDir()
	outDir := t.TempDir()
	writeRoom(t, dir, "Physics", physicsRoom)

	out, err := execute(t, "export", "Physics", "-f", "json", "-o", outDir, "--include-system", "--chat-dir", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "Exported Physics to")

	data, err := os.ReadFile(filepath.Join(outDir, "Physics.json"))
	require.NoError(t, err)
	var doc struct {
		Room     string          `json:"room"`
		Messages []model.Message `json:"messages"`
	}
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "Physics", doc.Room)
	assert.Len(t, doc.Messages, 3)
}

func TestExportCmdErrors(t *testing.T) {
	isolate(t)
	dir := t.TempDir()

	_, err := execute(t, "export", "Nope", "--chat-dir", dir)
	assert.ErrorIs(t, err, storage.ErrRoomNotFound)

	_, err = execute(t, "export", "Nope", "--format", "pdf", "--chat-dir", dir)
	assert.ErrorIs(t, err, export.ErrUnknownFormat)

	_, err = execute(t, "export", "--chat-dir", dir)
	assert.Error(t, err)
}

func TestRoomsCmdJSONError(t *testing.T) {
	isolate(t)
	out, err := execute(t, "rooms", "--json", "--model", "gpt-5")
	require.Error(t, err)

	var resp JSONResponse
	require.NoError(t, json.NewDecoder(strings.NewReader(out)).Decode(&resp))
	assert.False(t, resp.Success)
	require.NotNil(t, resp.Error)
	assert.Contains(t, *resp.Error, "gpt-5")
}

func TestSessionOptionsFromConfig(t *testing.T) {
	cfg := config.Default()
	cfg.Chat.QueueSize = 7
	cfg.Chat.TurnTimeout = 42 * time.Second

	opts := sessionOptions(cfg, zerolog.Nop())
	assert.Equal(t, 7, opts.QueueSize)
	assert.Equal(t, 42*time.Second, opts.TaskTimeout)
}
