// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package export

import (
	"fmt"
	"strings"

	"github.com/jeranaias/opal-tui/internal/model"
)

// =============================================================================
// MARKDOWN EXPORTER
// =============================================================================

// MarkdownExporter exports transcripts as Markdown, one section per message.
type MarkdownExporter struct {
	options Options
}

// NewMarkdownExporter creates a new Markdown exporter.
func NewMarkdownExporter(opts Options) *MarkdownExporter {
	return &MarkdownExporter{options: opts}
}

// Export converts a transcript to Markdown.
func (e *MarkdownExporter) Export(room string, t model.Transcript) ([]byte, error) {

	var sb strings.Builder
	fmt.Fprintf(&sb, "# %s\n\n", escapeMarkdown(room))

	msgs := e.options.messages(t)
	if len(msgs) == 0 {
		sb.WriteString("*No messages yet.*\n")
	}
	for i, msg := range msgs {
		fmt.Fprintf(&sb, "### %s\n\n", msg.Role.DisplayName())
		sb.WriteString(strings.TrimSpace(msg.Content))
		sb.WriteString("\n")
		if msg.URL != "" {
			fmt.Fprintf(&sb, "\nURL: <%s>\n", msg.URL)
		}
		if i < len(msgs)-1 {
			sb.WriteString("\n---\n\n")
		}
	}

	fmt.Fprintf(&sb, "\n*Exported from Opal on %s*\n",
		e.options.now().Format("January 2, 2006 at 3:04 PM"))
	return []byte(sb.String()), nil
}

// FileExtension returns the file extension for Markdown.
func (e *MarkdownExporter) FileExtension() string {
	return ".md"
}

// escapeMarkdown escapes characters that would change a heading's meaning.
func escapeMarkdown(s string) string {
	r := strings.NewReplacer(`\`, `\\`, "*", `\*`, "_", `\_`, "`", "\\`", "#", `\#`, "[", `\[`, "]", `\]`)
	return r.Replace(s)
}
