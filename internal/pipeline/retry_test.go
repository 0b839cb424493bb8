// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package pipeline

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/opal-tui/internal/cloud"
	"github.com/jeranaias/opal-tui/internal/model"
)

var (
	errConnectivity = &cloud.CompletionError{Kind: cloud.KindConnectivity, Err: errors.New("connection refused")}
	errOther        = &cloud.CompletionError{Kind: cloud.KindOther, Status: 401, Err: errors.New("bad key")}
)

// stubCompleter fails with the queued errors in order, then answers.
type stubCompleter struct {
	mu     sync.Mutex
	errs   []error
	answer string
	calls  int
	seen   []model.Transcript
}

func (s *stubCompleter) Complete(ctx context.Context, t model.Transcript, modelID string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	s.seen = append(s.seen, t.Clone())
	if len(s.errs) > 0 {
		err := s.errs[0]
		if len(s.errs) > 1 {
			s.errs = s.errs[1:]
		} else if s.answer != "" {
			s.errs = nil
		}
		return "", err
	}
	return s.answer, nil
}

// recordingSleeper records requested delays without waiting.
type recordingSleeper struct {
	delays []time.Duration
}

func (r *recordingSleeper) sleep(ctx context.Context, d time.Duration) error {
	r.delays = append(r.delays, d)
	return ctx.Err()
}

var testBackoff = Backoff{
	Limit:     3,
	BaseDelay: 2 * time.Second,
	MaxDelay:  10 * time.Second,
	Jitter:    500 * time.Millisecond,
}

func newTestAsker(c cloud.Completer, b Backoff, s *recordingSleeper) *Asker {
	return NewAsker(c, b, WithSleeper(s.sleep), WithRand(func() float64 { return 0.5 }))
}

func validTranscript() model.Transcript {
	return model.Transcript{model.NewSystemMessage("s"), model.NewUserMessage("q")}
}

func TestAskSucceedsAfterConnectivityFailures(t *testing.T) {
	for k := 0; k < testBackoff.Limit; k++ {
		errs := make([]error, k)
		for i := range errs {
			errs[i] = errConnectivity
		}
		stub := &stubCompleter{errs: errs, answer: "ok"}
		sleeper := &recordingSleeper{}

		text, url := newTestAsker(stub, testBackoff, sleeper).Ask(context.Background(), validTranscript(), "gpt-4o")

		assert.Equal(t, "ok", text, "k=%d", k)
		assert.Empty(t, url)
		assert.Equal(t, k+1, stub.calls, "k=%d", k)
		require.Len(t, sleeper.delays, k)
		for i := 1; i < len(sleeper.delays); i++ {
			assert.GreaterOrEqual(t, sleeper.delays[i], sleeper.delays[i-1], "delays must not decrease")
		}
	}
}

func TestAskOtherErrorDoesNotRetry(t *testing.T) {
	stub := &stubCompleter{errs: []error{errOther}}
	sleeper := &recordingSleeper{}

	text, url := newTestAsker(stub, testBackoff, sleeper).Ask(context.Background(), validTranscript(), "gpt-4o")

	assert.Equal(t, FailureMessage, text)
	assert.Empty(t, url)
	assert.Equal(t, 1, stub.calls)
	assert.Empty(t, sleeper.delays)
}

func TestAskAlwaysConnectivitySleepsTwice(t *testing.T) {
	stub := &stubCompleter{errs: []error{errConnectivity}}
	sleeper := &recordingSleeper{}

	text, url := newTestAsker(stub, testBackoff, sleeper).Ask(context.Background(), validTranscript(), "gpt-4o")

	assert.Equal(t, FailureMessage, text)
	assert.Empty(t, url)
	assert.Equal(t, 3, stub.calls)
	// attempt 1: 2s*2 + 0.25s, attempt 2: 2s*4 + 0.25s
	assert.Equal(t, []time.Duration{4250 * time.Millisecond, 8250 * time.Millisecond}, sleeper.delays)
}

func TestAskZeroLimitIsSingleAttempt(t *testing.T) {
	stub := &stubCompleter{errs: []error{errConnectivity}}
	sleeper := &recordingSleeper{}
	b := testBackoff
	b.Limit = 0

	text, _ := newTestAsker(stub, b, sleeper).Ask(context.Background(), validTranscript(), "gpt-4o")

	assert.Equal(t, FailureMessage, text)
	assert.Equal(t, 1, stub.calls)
	assert.Empty(t, sleeper.delays)
}

func TestAskStopsWhenSleepInterrupted(t *testing.T) {
	stub := &stubCompleter{errs: []error{errConnectivity}}
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	a := NewAsker(stub, testBackoff)
	start := time.Now()
	text, _ := a.Ask(ctx, validTranscript(), "gpt-4o")

	assert.Equal(t, FailureMessage, text)
	assert.Equal(t, 1, stub.calls)
	assert.Less(t, time.Since(start), time.Second)
}

func TestAskExtractsURL(t *testing.T) {
	stub := &stubCompleter{answer: "Additional Resources:\n- Go: https://google.com/search?q=Go.\n- More: https://example.com"}
	text, url := newTestAsker(stub, testBackoff, &recordingSleeper{}).Ask(context.Background(), validTranscript(), "gpt-4o")
	assert.Contains(t, text, "Additional Resources")
	assert.Equal(t, "https://google.com/search?q=Go", url)
}

func TestBackoffDelay(t *testing.T) {
	b := testBackoff
	tests := []struct {
		attempt int
		u       float64
		want    time.Duration
	}{
		{0, 0, 2 * time.Second},
		{1, 0, 4 * time.Second},
		{1, 1, 4500 * time.Millisecond},
		{2, 0, 8 * time.Second},
		{3, 0, 10 * time.Second},
		{100, 0.9, 10 * time.Second},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, b.Delay(tt.attempt, tt.u), "Delay(%d, %v)", tt.attempt, tt.u)
	}
}

func TestBackoffCeiling(t *testing.T) {
	assert.Equal(t, 1, Backoff{Limit: 0}.Ceiling())
	assert.Equal(t, 1, Backoff{Limit: -2}.Ceiling())
	assert.Equal(t, 3, Backoff{Limit: 3}.Ceiling())
}

func TestSleepContext(t *testing.T) {
	require.NoError(t, SleepContext(context.Background(), time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	assert.ErrorIs(t, SleepContext(ctx, time.Hour), context.Canceled)
}

func TestExtractURL(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"no links here", ""},
		{"see https://example.com/a?b=c", "https://example.com/a?b=c"},
		{"plain http://google.com/search?q=Jupiter%27s+Composition.", "http://google.com/search?q=Jupiter%27s+Composition"},
		{"[Go](https://go.dev/doc) docs", "https://go.dev/doc"},
		{"(https://en.wikipedia.org/wiki/Go_(programming_language))", "https://en.wikipedia.org/wiki/Go_(programming_language)"},
		{"first https://a.example then https://b.example", "https://a.example"},
		{"ftp://files.example is ignored", ""},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, ExtractURL(tt.in), "ExtractURL(%q)", tt.in)
	}
}
