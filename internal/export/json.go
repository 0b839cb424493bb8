// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"encoding/json"
	"time"

	"github.com/jeranaias/opal-tui/internal/model"
)

// =============================================================================
// JSON EXPORTER
// =============================================================================

// Document is the JSON export layout.
type Document struct {
	Room     string          `json:"room"`
	Exported time.Time       `json:"exported"`
	Messages []model.Message `json:"messages"`
}

// JSONExporter exports transcripts as indented JSON.
type JSONExporter struct {
	options Options
}

// NewJSONExporter creates a new JSON exporter.
func NewJSONExporter(opts Options) *JSONExporter {
	return &JSONExporter{options: opts}
}

// Export converts a transcript to JSON.
func (e *JSONExporter) Export(room string, t model.Transcript) ([]byte, error) {
	doc := Document{
		Room:     room,
		Exported: e.options.now().UTC(),
		Messages: e.options.messages(t),
	}
	if doc.Messages == nil {
		doc.Messages = []model.Message{}
	}
	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return nil, err
	}
	return append(data, '\n'), nil
}

// FileExtension returns the file extension for JSON.
func (e *JSONExporter) FileExtension() string {
	return ".json"
}
