// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package pipeline

import (
	"regexp"
	"strings"
)

var urlPattern = regexp.MustCompile(`https?://[^\s<>"'` + "`" + `]+`)

// ExtractURL returns the first http(s) URL in text, or "" when there is none.
// Trailing punctuation and unbalanced closing brackets are not part of the URL.
func ExtractURL(text string) string {
	raw := urlPattern.FindString(text)
	if raw == "" {
		return ""
	}
	for {
		trimmed := strings.TrimRight(raw, ".,;:!?*")
		switch {
		case strings.HasSuffix(trimmed, ")") && strings.Count(trimmed, "(") < strings.Count(trimmed, ")"):
			trimmed = trimmed[:len(trimmed)-1]
		case strings.HasSuffix(trimmed, "]") && strings.Count(trimmed, "[") < strings.Count(trimmed, "]"):
			trimmed = trimmed[:len(trimmed)-1]
		}
		if trimmed == raw {
			return raw
		}
		raw = trimmed
	}
}
