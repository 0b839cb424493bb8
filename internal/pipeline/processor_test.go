// Copyright (c) 2024-2025 Jesse Morgan / Morgan Forge
// SPDX-License-Identifier: AGPL-3.0-or-later

package pipeline

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jeranaias/opal-tui/internal/model"
	"github.com/jeranaias/opal-tui/internal/prompt"
)

var prompts = prompt.Default(time.Date(2024, time.March, 4, 12, 0, 0, 0, time.UTC))

func newTestProcessor(c *stubCompleter, maxLength int) *Processor {
	asker := newTestAsker(c, testBackoff, &recordingSleeper{})
	return NewProcessor(prompts, asker, ProcessorOptions{MaxLength: maxLength, DefaultModel: "gpt-4o"})
}

func TestProcessHelloScenario(t *testing.T) {
	stub := &stubCompleter{answer: "Hi there"}
	p := newTestProcessor(stub, 100)

	res := p.Process(context.Background(), "Hello", nil, "gpt-4o")

	want := model.Transcript{
		prompts.System(prompt.VariantDefault),
		model.NewUserMessage("Hello"),
		model.NewAssistantMessage("Hi there", ""),
	}
	assert.Equal(t, "Hi there", res.Text)
	assert.Empty(t, res.URL)
	assert.True(t, want.Equal(res.Transcript), "transcript = %v", res.Transcript)
	assert.False(t, res.Failed())
	assert.Equal(t, prompt.VariantDefault, res.Variant)
}

func TestProcessExpertOnFreshRoom(t *testing.T) {
	stub := &stubCompleter{answer: "EXPERT: Physicist"}
	p := newTestProcessor(stub, 100)

	res := p.Process(context.Background(), "?explain quantum tunneling", model.Transcript{}, "gpt-4o")

	assert.Equal(t, prompts.System(prompt.VariantExpert), res.Transcript[0])
	assert.NotEqual(t, prompts.System(prompt.VariantDefault), res.Transcript[0])
	assert.Equal(t, prompt.VariantExpert, res.Variant)
	// The completion client sees the expert prompt too.
	require.Len(t, stub.seen, 1)
	assert.Equal(t, prompts.System(prompt.VariantExpert), stub.seen[0][0])
	// The user text is sent unchanged.
	assert.Equal(t, "?explain quantum tunneling", res.Transcript[1].Content)
}

func TestProcessAlwaysInstallsSystemSlot(t *testing.T) {
	stub := &stubCompleter{answer: "ok"}
	p := newTestProcessor(stub, 100)

	for _, msg := range []string{"hi", "?why", "!joke", "", "V=1 short"} {
		res := p.Process(context.Background(), msg, nil, "")
		require.NotEmpty(t, res.Transcript)
		assert.True(t, res.Transcript.HasSystem(), "message %q", msg)
	}
}

func TestProcessExpertForEveryPriorState(t *testing.T) {
	stub := &stubCompleter{answer: "ok"}
	p := newTestProcessor(stub, 100)

	priors := []model.Transcript{
		nil,
		{prompts.System(prompt.VariantDefault), model.NewUserMessage("a"), model.NewAssistantMessage("b", "")},
		{prompts.System(prompt.VariantComedy), model.NewUserMessage("!a"), model.NewAssistantMessage("b", "")},
		{prompts.System(prompt.VariantExpert)},
		{model.NewUserMessage("no system slot")},
	}
	for i, prior := range priors {
		res := p.Process(context.Background(), "?question", prior, "gpt-4o")
		assert.Equal(t, prompts.System(prompt.VariantExpert), res.Transcript[0], "prior %d", i)
		assert.Equal(t, 1, countSystem(res.Transcript), "prior %d", i)
	}
}

func TestProcessSamePrefixKeepsSlotZero(t *testing.T) {
	stub := &stubCompleter{answer: "ok"}
	p := newTestProcessor(stub, 100)

	first := p.Process(context.Background(), "?one", nil, "gpt-4o")
	second := p.Process(context.Background(), "?two", first.Transcript, "gpt-4o")

	assert.Equal(t, first.Transcript[0], second.Transcript[0])
	assert.Equal(t, 1, countSystem(second.Transcript))
	assert.Len(t, second.Transcript, 5)
}

func TestProcessPersonaChangesMidConversation(t *testing.T) {
	stub := &stubCompleter{answer: "ok"}
	p := newTestProcessor(stub, 100)

	first := p.Process(context.Background(), "?explain", nil, "gpt-4o")
	second := p.Process(context.Background(), "thanks", first.Transcript, "gpt-4o")

	assert.Equal(t, prompts.System(prompt.VariantDefault), second.Transcript[0])
	assert.Equal(t, 1, countSystem(second.Transcript))
}

func TestProcessDoesNotMutateCaller(t *testing.T) {
	stub := &stubCompleter{answer: "ok"}
	p := newTestProcessor(stub, 100)

	prior := make(model.Transcript, 1, 16)
	prior[0] = prompts.System(prompt.VariantDefault)
	snapshot := prior.Clone()

	res := p.Process(context.Background(), "?swap the prompt", prior, "gpt-4o")

	assert.True(t, snapshot.Equal(prior), "caller transcript changed")
	assert.Len(t, res.Transcript, 3)
}

func TestProcessTrims(t *testing.T) {
	stub := &stubCompleter{answer: "ok"}
	p := newTestProcessor(stub, 10)

	tr := model.Transcript{prompts.System(prompt.VariantDefault)}
	for i := 0; i < 20; i++ {
		tr = tr.Append(model.NewUserMessage(fmt.Sprintf("u%d", i)))
	}

	res := p.Process(context.Background(), "latest", tr, "gpt-4o")

	assert.Len(t, res.Transcript, 10)
	assert.Equal(t, prompts.System(prompt.VariantDefault), res.Transcript[0])
	last, _ := res.Transcript.Last()
	assert.Equal(t, model.RoleAssistant, last.Role)
	assert.Equal(t, "latest", res.Transcript[8].Content)
}

func TestProcessFailureIsAssistantTurn(t *testing.T) {
	stub := &stubCompleter{errs: []error{errOther}}
	p := newTestProcessor(stub, 100)

	res := p.Process(context.Background(), "Hello", nil, "gpt-4o")

	assert.True(t, res.Failed())
	assert.True(t, IsFailure(res.Text))
	last, _ := res.Transcript.Last()
	assert.Equal(t, model.NewAssistantMessage(FailureMessage, ""), last)
}

func TestProcessDefaultsModelAndURL(t *testing.T) {
	stub := &stubCompleter{answer: "Read https://go.dev/doc for more."}
	p := newTestProcessor(stub, 100)

	res := p.Process(context.Background(), "V=1 T=5 go docs?", nil, "")

	assert.Equal(t, "gpt-4o", res.Model)
	assert.Equal(t, "https://go.dev/doc", res.URL)
	last, _ := res.Transcript.Last()
	assert.Equal(t, "https://go.dev/doc", last.URL)
	assert.Equal(t, prompt.Directives{Verbosity: 1, Technicality: 5, Explicit: true}, res.Directives)
}

func countSystem(t model.Transcript) int {
	n := 0
	for _, m := range t {
		if m.IsSystem() {
			n++
		}
	}
	return n
}
