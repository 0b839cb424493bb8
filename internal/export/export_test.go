// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/opal-tui/internal/model"
)

var fixedNow = time.Date(2024, 3, 4, 15, 4, 0, 0, time.UTC)

func sample() model.Transcript {
	return model.Transcript{
		{Role: model.RoleSystem, Content: "You are Opal."},
		{Role: model.RoleUser, Content: "What is a photon?"},
		{Role: model.RoleAssistant, Content: "A quantum of light.", URL: "https://example.com/photon"},
	}
}

func opts() Options {
	return Options{Now: func() time.Time { return fixedNow }}
}

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in   string
		want Format
		err  bool
	}{
		{"", FormatMarkdown, false},
		{"md", FormatMarkdown, false},
		{"Markdown", FormatMarkdown, false},
		{" json ", FormatJSON, false},
		{"html", "", true},
	}
	for _, tt := range tests {
		got, err := ParseFormat(tt.in)
		if tt.err {
			assert.ErrorIs(t, err, ErrUnknownFormat, tt.in)
			continue
		}
		require.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}
}

func TestMarkdownExport(t *testing.T) {
	data, err := NewMarkdownExporter(opts()).Export("Physics", sample())
	require.NoError(t, err)
	out := string(data)

	assert.True(t, strings.HasPrefix(out, "# Physics\n"))
	assert.Contains(t, out, "### Me\n\nWhat is a photon?")
	assert.Contains(t, out, "### Opal\n\nA quantum of light.")
	assert.Contains(t, out, "URL: <https://example.com/photon>")
	assert.Contains(t, out, "March 4, 2024 at 3:04 PM")
	assert.NotContains(t, out, "You are Opal.")
}

func TestMarkdownExportIncludeSystem(t *testing.T) {
	o := opts()
	o.IncludeSystem = true
	data, err := NewMarkdownExporter(o).Export("Physics", sample())
	require.NoError(t, err)
	assert.Contains(t, string(data), "### System\n\nYou are Opal.")
}

func TestMarkdownExportEmpty(t *testing.T) {
	data, err := NewMarkdownExporter(opts()).Export("New_Chat *1*", nil)
	require.NoError(t, err)
	assert.Contains(t, string(data), `# New\_Chat \*1\*`)
	assert.Contains(t, string(data), "No messages yet.")
}

func TestJSONExport(t *testing.T) {
	data, err := NewJSONExporter(opts()).Export("Physics", sample())
	require.NoError(t, err)

	var doc Document
	require.NoError(t, json.Unmarshal(data, &doc))
	assert.Equal(t, "Physics", doc.Room)
	assert.True(t, doc.Exported.Equal(fixedNow))
	require.Len(t, doc.Messages, 2)
	assert.Equal(t, model.RoleUser, doc.Messages[0].Role)
	assert.Equal(t, "https://example.com/photon", doc.Messages[1].URL)
}

func TestJSONExportEmptyIsArray(t *testing.T) {
	data, err := NewJSONExporter(opts()).Export("Empty", model.Transcript{})
	require.NoError(t, err)
	assert.Contains(t, string(data), `"messages": []`)
}

func TestNew(t *testing.T) {
	e, err := New(FormatJSON, opts())
	require.NoError(t, err)
	assert.Equal(t, ".json", e.FileExtension())

	e, err = New(FormatMarkdown, opts())
	require.NoError(t, err)
	assert.Equal(t, ".md", e.FileExtension())

	_, err = New("pdf", opts())
	assert.ErrorIs(t, err, ErrUnknownFormat)
}

func TestToFile(t *testing.T) {
	dir := filepath.Join(t.TempDir(), "out")
	path, err := ToFile(dir, "Q&A: photons?", sample(), NewMarkdownExporter(opts()))
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(dir, "Q&A-_photons-.md"), path)
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "# Q&A: photons?")
}

func TestSanitizeFilename(t *testing.T) {
	assert.Equal(t, "room", sanitizeFilename("   "))
	assert.Equal(t, "a-b-c", sanitizeFilename("a/b\\c"))
	assert.Equal(t, "tab_space", sanitizeFilename("tab\tspace\t"))
	assert.Len(t, []rune(sanitizeFilename(strings.Repeat("é", 80))), 50)
}
