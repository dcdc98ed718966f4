package pattern

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexcodex/agentloop/framework"
)

func TestParseReflection(t *testing.T) {
	raw := "SUCCESS: yes\nCRITIQUE: solid approach\nLESSONS: read before writing\nIMPROVED_ANSWER: the better answer"
	r := ParseReflection(raw)
	assert.True(t, r.Success)
	assert.Equal(t, "solid approach", r.Critique)
	assert.Equal(t, "read before writing", r.Lessons)
	assert.Equal(t, "the better answer", r.ImprovedAnswer)

	empty := ParseReflection("unstructured rambling")
	assert.False(t, empty.Success)
	assert.Empty(t, empty.Lessons)
}

func TestReflexionSucceedsFirstAttempt(t *testing.T) {
	model := &stubLLM{responses: []string{
		"Thought: easy\nAction: ANSWER: first try",
		"SUCCESS: yes\nCRITIQUE: fine\nLESSONS:",
	}}
	agent := &Reflexion{Base: newTestBase(model)}

	outcome, err := agent.Run(context.Background(), "goal", framework.TierDefault, newState(15))
	require.NoError(t, err)
	assert.Equal(t, "first try", outcome.Answer)
	assert.Equal(t, "reflexion", outcome.Strategy)
	assert.Equal(t, 1, outcome.Metadata["attempts"])
}

func TestReflexionRetriesWithLessons(t *testing.T) {
	model := &stubLLM{responses: []string{
		// attempt 1
		"Thought: guess\nAction: ANSWER: wrong",
		"SUCCESS: no\nCRITIQUE: guessed\nLESSONS: check the note first",
		// attempt 2
		"Thought: apply lesson\nAction: note \"check\"",
		"Thought: now answer\nAction: ANSWER: right",
		"SUCCESS: yes\nCRITIQUE: grounded\nLESSONS:",
	}}
	capture := &goalCapturingLLM{inner: model}
	agent := &Reflexion{Base: newTestBase(model)}
	agent.Model = capture

	outcome, err := agent.Run(context.Background(), "goal", framework.TierDefault, newState(15))
	require.NoError(t, err)
	assert.Equal(t, "right", outcome.Answer)
	assert.Equal(t, 2, outcome.Metadata["attempts"])
	// the second attempt's prompt carries the first attempt's lesson
	assert.Contains(t, capture.prompts[2], "Lessons from previous attempts:")
	assert.Contains(t, capture.prompts[2], "check the note first")
}

func TestReflexionAttemptsExhausted(t *testing.T) {
	model := &stubLLM{responses: []string{
		"Action: ANSWER: a", "SUCCESS: no\nCRITIQUE: c1\nLESSONS: l1",
		"Action: ANSWER: b", "SUCCESS: no\nCRITIQUE: c2\nLESSONS: l2",
		"Action: ANSWER: c", "SUCCESS: no\nCRITIQUE: c3\nLESSONS: l3",
	}}
	capture := &goalCapturingLLM{inner: model}
	agent := &Reflexion{Base: newTestBase(model)}
	agent.Model = capture

	outcome, err := agent.Run(context.Background(), "goal", framework.TierDefault, newState(15))
	assert.Nil(t, outcome)
	assert.Equal(t, framework.ErrAttemptsExhausted, framework.KindOf(err))
	assert.Equal(t, 6, model.calls)
	// attempt 3's prompt carries the lessons from attempts 1 and 2, in order
	third := capture.prompts[4]
	assert.Less(t, strings.Index(third, "l1"), strings.Index(third, "l2"))
	assert.Contains(t, third, "l1")
}

func TestReflexionInnerBudgetIsOrdinaryFailure(t *testing.T) {
	model := &stubLLM{responses: []string{
		// attempt 1 burns its whole inner cap without answering
		"Action: note \"1\"", "Action: note \"2\"", "Action: note \"3\"",
		"Action: note \"4\"", "Action: note \"5\"",
		"SUCCESS: no\nCRITIQUE: ran out\nLESSONS: answer sooner",
		// attempt 2 succeeds
		"Action: ANSWER: quick",
		"SUCCESS: yes\nCRITIQUE: good\nLESSONS:",
	}}
	agent := &Reflexion{Base: newTestBase(model)}

	outcome, err := agent.Run(context.Background(), "goal", framework.TierDefault, newState(15))
	require.NoError(t, err)
	assert.Equal(t, "quick", outcome.Answer)
	assert.Equal(t, 6, outcome.Steps)
}

func TestReflexionUsesImprovedAnswerWhenInnerFailed(t *testing.T) {
	model := &stubLLM{responses: []string{
		"Action: note \"1\"", "Action: note \"2\"", "Action: note \"3\"",
		"Action: note \"4\"", "Action: note \"5\"",
		"SUCCESS: yes\nCRITIQUE: the trace already contains the answer\nLESSONS:\nIMPROVED_ANSWER: synthesized from trace",
	}}
	agent := &Reflexion{Base: newTestBase(model)}

	outcome, err := agent.Run(context.Background(), "goal", framework.TierDefault, newState(15))
	require.NoError(t, err)
	assert.Equal(t, "synthesized from trace", outcome.Answer)
}

func TestReflexionRetriesAfterInnerModelFailure(t *testing.T) {
	model := &flakyLLM{
		failures: 1,
		inner: &stubLLM{responses: []string{
			// reflection on the failed attempt, then a clean attempt 2
			"SUCCESS: no\nCRITIQUE: backend failed mid-attempt\nLESSONS: just retry",
			"Thought: retry\nAction: ANSWER: recovered",
			"SUCCESS: yes\nCRITIQUE: fine\nLESSONS:",
		}},
	}
	agent := &Reflexion{Base: newTestBase(&stubLLM{})}
	agent.Model = model

	outcome, err := agent.Run(context.Background(), "goal", framework.TierDefault, newState(15))
	require.NoError(t, err)
	assert.Equal(t, "recovered", outcome.Answer)
	assert.Equal(t, 2, outcome.Metadata["attempts"])
}

func TestReflexionReflectionModelFailureIsTerminal(t *testing.T) {
	// the inner attempt answers, but the reflection call finds an empty queue
	model := &stubLLM{responses: []string{"Action: ANSWER: draft"}}
	agent := &Reflexion{Base: newTestBase(model)}

	outcome, err := agent.Run(context.Background(), "goal", framework.TierDefault, newState(15))
	assert.Nil(t, outcome)
	assert.Equal(t, framework.ErrModelCall, framework.KindOf(err))
}

// flakyLLM fails its first calls, then delegates to the queued stub.
type flakyLLM struct {
	inner    *stubLLM
	failures int
}

func (s *flakyLLM) Ask(ctx context.Context, prompt string, tier framework.Tier) (string, error) {
	if s.failures > 0 {
		s.failures--
		return "", errors.New("transient backend blip")
	}
	return s.inner.Ask(ctx, prompt, tier)
}

func (s *flakyLLM) AskMessages(ctx context.Context, messages []framework.Message, tier framework.Tier) (string, error) {
	return s.Ask(ctx, messages[len(messages)-1].Content, tier)
}

type goalCapturingLLM struct {
	inner   *stubLLM
	prompts []string
}

func (s *goalCapturingLLM) Ask(ctx context.Context, prompt string, tier framework.Tier) (string, error) {
	s.prompts = append(s.prompts, prompt)
	return s.inner.Ask(ctx, prompt, tier)
}

func (s *goalCapturingLLM) AskMessages(ctx context.Context, messages []framework.Message, tier framework.Tier) (string, error) {
	return s.Ask(ctx, messages[len(messages)-1].Content, tier)
}
