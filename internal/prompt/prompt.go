// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package prompt

import (
	"fmt"
	"strings"
	"time"

	"github.com/jeranaias/opal-tui/internal/model"
)

// DateLayout is the layout used for the date embedded in every template.
const DateLayout = "Monday, January 2, 2006"

// DateZone is the IANA zone the embedded date is computed in.
const DateZone = "America/New_York"

// datePlaceholder is substituted with the rendered date in each template.
const datePlaceholder = "{{TODAYS_DATE}}"

// =============================================================================
// VARIANT TYPE
// =============================================================================

// Variant names a system prompt.
type Variant string

const (
	VariantDefault Variant = "default"
	VariantExpert  Variant = "expert"
	VariantComedy  Variant = "comedy"
)

// String returns the string representation of the variant.
func (v Variant) String() string {
	return string(v)
}

// Rule maps a leading sigil of the raw user input to a variant.
type Rule struct {
	Sigil   string
	Variant Variant
}

// DefaultRules returns the built-in dispatch table.
func DefaultRules() []Rule {
	return []Rule{
		{Sigil: "?", Variant: VariantExpert},
		{Sigil: "!", Variant: VariantComedy},
	}
}

// DefaultTemplates returns the built-in templates keyed by variant.
func DefaultTemplates() map[Variant]string {
	return map[Variant]string{
		VariantDefault: defaultTemplate,
		VariantExpert:  expertTemplate,
		VariantComedy:  comedyTemplate,
	}
}

// =============================================================================
// SET
// =============================================================================

// Set is an immutable collection of rendered system prompts plus the rules
// that select among them. It is safe for concurrent use.
type Set struct {
	date     string
	messages map[Variant]model.Message
	rules    []Rule
}

// New builds a Set from templates and rules, rendering the date from now.
// The templates map must contain VariantDefault, and every rule must point
// at a variant present in templates.
func New(now time.Time, templates map[Variant]string, rules []Rule) (*Set, error) {
	if _, ok := templates[VariantDefault]; !ok {
		return nil, fmt.Errorf("prompt: missing %q template", VariantDefault)
	}

	date := FormatDate(now)
	messages := make(map[Variant]model.Message, len(templates))
	for v, tmpl := range templates {
		content := strings.TrimSpace(strings.ReplaceAll(tmpl, datePlaceholder, date))
		messages[v] = model.NewSystemMessage(content)
	}

	for _, r := range rules {
		if r.Sigil == "" {
			return nil, fmt.Errorf("prompt: empty sigil for variant %q", r.Variant)
		}
		if _, ok := messages[r.Variant]; !ok {
			return nil, fmt.Errorf("prompt: rule %q references unknown variant %q", r.Sigil, r.Variant)
		}
	}

	return &Set{
		date:     date,
		messages: messages,
		rules:    append([]Rule(nil), rules...),
	}, nil
}

// Default builds the Set with the built-in templates and rules.
func Default(now time.Time) *Set {
	s, err := New(now, DefaultTemplates(), DefaultRules())
	if err != nil {
		// Built-in tables are static; an error here is a programming mistake.
		panic(err)
	}
	return s
}

// Select returns the variant for raw user input. Rules are checked in order
// and the first matching sigil wins; no match yields VariantDefault.
func (s *Set) Select(raw string) Variant {
	for _, r := range s.rules {
		if strings.HasPrefix(raw, r.Sigil) {
			return r.Variant
		}
	}
	return VariantDefault
}

// System returns the system message for a variant. Unknown variants fall
// back to the default persona.
func (s *Set) System(v Variant) model.Message {
	if msg, ok := s.messages[v]; ok {
		return msg
	}
	return s.messages[VariantDefault]
}

// For is shorthand for s.System(s.Select(raw)).
func (s *Set) For(raw string) (Variant, model.Message) {
	v := s.Select(raw)
	return v, s.System(v)
}

// Date returns the date string embedded in the templates.
func (s *Set) Date() string {
	return s.date
}

// Rules returns a copy of the dispatch table.
func (s *Set) Rules() []Rule {
	return append([]Rule(nil), s.rules...)
}

// FormatDate renders t in DateZone using DateLayout, or in UTC when the zone
// database is unavailable.
func FormatDate(t time.Time) string {
	loc, err := time.LoadLocation(DateZone)
	if err != nil {
		loc = time.UTC
	}
	return t.In(loc).Format(DateLayout)
}
