// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package pipeline

import (
	"context"

	"github.com/rs/zerolog"

	"github.com/jeranaias/opal-tui/internal/model"
	"github.com/jeranaias/opal-tui/internal/prompt"
)

// Result is the outcome of processing one user message.
type Result struct {
	Text       string
	URL        string
	Transcript model.Transcript
	Model      string
	Variant    prompt.Variant
	Directives prompt.Directives
}

// Failed reports whether the answer is the failure sentinel.
func (r Result) Failed() bool {
	return IsFailure(r.Text)
}

// IsFailure reports whether text is the failure sentinel.
func IsFailure(text string) bool {
	return text == FailureMessage
}

// ProcessorOptions configures a Processor.
type ProcessorOptions struct {
	// MaxLength is the number of messages kept per room, slot 0 included.
	// Zero disables trimming.
	MaxLength    int
	DefaultModel string
	Logger       zerolog.Logger
}

// Processor builds the next transcript for a room from one user message.
// It holds no per-room state and is safe for concurrent use.
type Processor struct {
	prompts      *prompt.Set
	answerer     Answerer
	maxLength    int
	defaultModel string
	logger       zerolog.Logger
}

// NewProcessor creates a Processor.
func NewProcessor(prompts *prompt.Set, answerer Answerer, opts ProcessorOptions) *Processor {
	return &Processor{
		prompts:      prompts,
		answerer:     answerer,
		maxLength:    opts.MaxLength,
		defaultModel: opts.DefaultModel,
		logger:       opts.Logger,
	}
}

// Process appends userMessage to transcript, installs the system prompt its
// sigil selects, asks for an answer and appends it, then trims the result.
// The caller's transcript is never modified. API failures show up as
// FailureMessage in Result.Text, never as an error.
func (p *Processor) Process(ctx context.Context, userMessage string, transcript model.Transcript, modelID string) Result {
	if modelID == "" {
		modelID = p.defaultModel
	}

	next := transcript.Clone()
	if len(next) == 0 {
		next = model.Transcript{p.prompts.System(prompt.VariantDefault)}
	}

	next = next.Append(model.NewUserMessage(userMessage))

	variant, system := p.prompts.For(userMessage)
	next = next.WithSystem(system)

	directives := prompt.ParseDirectives(userMessage)
	p.logger.Debug().
		Str("model", modelID).
		Str("variant", variant.String()).
		Int("verbosity", directives.Verbosity).
		Int("technicality", directives.Technicality).
		Int("messages", len(next)).
		Msg("processing message")

	text, url := p.answerer.Ask(ctx, next, modelID)

	next = next.Append(model.NewAssistantMessage(text, url))
	next = next.Trim(p.maxLength)

	return Result{
		Text:       text,
		URL:        url,
		Transcript: next,
		Model:      modelID,
		Variant:    variant,
		Directives: directives,
	}
}
