// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package prompt

import (
	"fmt"
	"strings"
	"unicode"
)

// Directive bounds and defaults.
const (
	MinLevel     = 0
	MaxLevel     = 5
	DefaultLevel = 3
)

// Directives are the verbosity and technicality levels requested by a message.
type Directives struct {
	Verbosity    int
	Technicality int
	// Explicit is true when at least one marker was present.
	Explicit bool
}

// DefaultDirectives returns V=3 T=3.
func DefaultDirectives() Directives {
	return Directives{Verbosity: DefaultLevel, Technicality: DefaultLevel}
}

// String formats the directives as "V=n T=n".
func (d Directives) String() string {
	return fmt.Sprintf("V=%d T=%d", d.Verbosity, d.Technicality)
}

// ParseDirectives scans the start of raw for V=n and T=n markers. A single
// leading sigil character is skipped. Markers may appear in any order,
// separated by whitespace or commas; scanning stops at the first token that
// is not a marker. Values outside 0-5 are ignored.
func ParseDirectives(raw string) Directives {
	d := DefaultDirectives()

	s := strings.TrimLeftFunc(raw, unicode.IsSpace)
	if s != "" && (s[0] == '?' || s[0] == '!') {
		s = s[1:]
	}

	fields := strings.FieldsFunc(s, func(r rune) bool {
		return unicode.IsSpace(r) || r == ','
	})
	for _, f := range fields {
		if len(f) != 3 || f[1] != '=' || f[2] < '0' || f[2] > '9' {
			break
		}
		n := int(f[2] - '0')
		if n < MinLevel || n > MaxLevel {
			continue
		}
		switch f[0] {
		case 'V', 'v':
			d.Verbosity = n
			d.Explicit = true
		case 'T', 't':
			d.Technicality = n
			d.Explicit = true
		default:
			return d
		}
	}
	return d
}
