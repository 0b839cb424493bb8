// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

// Package prompt holds the system prompt variants and the sigil dispatch
// table that picks one of them for each user message.
//
// A Set is built once per process. Every template is rendered with the
// current date at construction time, so a long-running session keeps the
// date it started with.
//
// # Variants
//
//   - VariantDefault: the Opal persona
//   - VariantExpert: expert instruction template, selected by a leading "?"
//   - VariantComedy: comedy writer persona, selected by a leading "!"
//
// # Directives
//
// ParseDirectives reads the V=[0-5] (verbosity) and T=[0-5] (technicality)
// markers the expert template documents. The message text is never rewritten;
// the markers are left for the model to interpret.
package prompt
