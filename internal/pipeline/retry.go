// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package pipeline

import (
	"context"
	"math/rand"
	"time"

	"github.com/rs/zerolog"

	"github.com/jeranaias/opal-tui/internal/cloud"
	"github.com/jeranaias/opal-tui/internal/model"
)

// FailureMessage is returned in place of an answer when the completion fails.
const FailureMessage = "Sorry, something went wrong. Please try again."

// maxShift caps the exponent so the delay computation cannot overflow.
const maxShift = 30

// =============================================================================
// BACKOFF
// =============================================================================

// Backoff describes the retry schedule for connectivity failures.
type Backoff struct {
	Limit     int
	BaseDelay time.Duration
	MaxDelay  time.Duration
	Jitter    time.Duration
}

// Ceiling returns the maximum number of attempts. A limit of zero or less
// still allows the first attempt.
func (b Backoff) Ceiling() int {
	if b.Limit < 1 {
		return 1
	}
	return b.Limit
}

// Delay returns min(MaxDelay, BaseDelay*2^attempt + Jitter*u) for u in [0,1).
func (b Backoff) Delay(attempt int, u float64) time.Duration {
	if attempt < 0 {
		attempt = 0
	}
	if attempt > maxShift {
		attempt = maxShift
	}
	d := b.BaseDelay*time.Duration(1<<uint(attempt)) + time.Duration(float64(b.Jitter)*u)
	if b.MaxDelay > 0 && d > b.MaxDelay {
		d = b.MaxDelay
	}
	return d
}

// Sleeper waits for d or until ctx is done.
type Sleeper func(ctx context.Context, d time.Duration) error

// SleepContext is the default Sleeper.
func SleepContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-time.After(d):
		return nil
	}
}

// =============================================================================
// ASKER
// =============================================================================

// Answerer is the retry-wrapped completion consumed by the Processor.
type Answerer interface {
	Ask(ctx context.Context, transcript model.Transcript, modelID string) (text, url string)
}

// Asker wraps a Completer with retry and backoff. Retry state lives on the
// stack of each Ask call, so one Asker may serve many rooms at once.
type Asker struct {
	client  cloud.Completer
	backoff Backoff
	sleep   Sleeper
	rand    func() float64
	logger  zerolog.Logger
}

var _ Answerer = (*Asker)(nil)

// AskerOption configures an Asker.
type AskerOption func(*Asker)

// WithSleeper replaces the sleep function.
func WithSleeper(s Sleeper) AskerOption {
	return func(a *Asker) { a.sleep = s }
}

// WithRand replaces the jitter source. f must return values in [0,1).
func WithRand(f func() float64) AskerOption {
	return func(a *Asker) { a.rand = f }
}

// WithLogger sets the logger.
func WithLogger(l zerolog.Logger) AskerOption {
	return func(a *Asker) { a.logger = l }
}

// NewAsker creates an Asker.
func NewAsker(client cloud.Completer, backoff Backoff, opts ...AskerOption) *Asker {
	a := &Asker{
		client:  client,
		backoff: backoff,
		sleep:   SleepContext,
		rand:    rand.Float64,
		logger:  zerolog.Nop(),
	}
	for _, opt := range opts {
		opt(a)
	}
	return a
}

// Ask requests an answer for transcript. Connectivity failures are retried
// with backoff up to the ceiling; any other failure stops immediately. When
// no answer is obtained, FailureMessage is returned with an empty URL.
//
// The sleep after the final attempt is skipped: with a limit of 3 and a
// client that always fails, Ask calls the client three times and sleeps twice.
func (a *Asker) Ask(ctx context.Context, transcript model.Transcript, modelID string) (string, string) {
	ceiling := a.backoff.Ceiling()

	for attempt := 0; attempt < ceiling; {
		text, err := a.client.Complete(ctx, transcript, modelID)
		if err == nil {
			return text, ExtractURL(text)
		}

		if !cloud.IsConnectivity(err) {
			a.logger.Error().Err(err).Str("model", modelID).Msg("completion failed, not retrying")
			break
		}

		attempt++
		if attempt >= ceiling {
			a.logger.Error().Err(err).Int("attempts", attempt).Msg("retry limit reached")
			break
		}

		delay := a.backoff.Delay(attempt, a.rand())
		a.logger.Warn().Err(err).Int("attempt", attempt).Dur("delay", delay).Msg("connectivity error, retrying")
		if err := a.sleep(ctx, delay); err != nil {
			a.logger.Warn().Err(err).Msg("retry wait interrupted")
			break
		}
	}

	return FailureMessage, ""
}
