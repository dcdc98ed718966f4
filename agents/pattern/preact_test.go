package pattern

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexcodex/agentloop/framework"
)

func TestParseNumberedPlan(t *testing.T) {
	plan := ParseNumberedPlan("Here is the plan:\n1. file_read \"a\"\n2) note \"b\"\n\nsome trailing text")
	require.Len(t, plan, 2)
	assert.Equal(t, `file_read "a"`, plan[0])
	assert.Equal(t, `note "b"`, plan[1])

	assert.Empty(t, ParseNumberedPlan("no ordinals here"))
}

func TestPreActExecutesPlanAndSynthesizes(t *testing.T) {
	model := &stubLLM{responses: []string{
		"1. note \"alpha\"\n2. note \"beta\"",
		"ANSWER: alpha and beta recorded",
	}}
	agent := &PreAct{Base: newTestBase(model)}

	outcome, err := agent.Run(context.Background(), "record both", framework.TierDefault, newState(10))
	require.NoError(t, err)
	assert.Equal(t, "alpha and beta recorded", outcome.Answer)
	assert.Equal(t, 2, outcome.Steps)
	assert.Equal(t, "pre_act", outcome.Strategy)
	assert.Equal(t, []string{`note "alpha"`, `note "beta"`}, outcome.Metadata["plan"])
	require.Len(t, outcome.History, 2)
	assert.Equal(t, "noted alpha", outcome.History[0].Observation)
}

func TestPreActEmptyPlanIsTerminal(t *testing.T) {
	model := &stubLLM{responses: []string{"I cannot plan this."}}
	agent := &PreAct{Base: newTestBase(model)}

	outcome, err := agent.Run(context.Background(), "goal", framework.TierDefault, newState(10))
	assert.Nil(t, outcome)
	assert.Equal(t, framework.ErrPlanEmpty, framework.KindOf(err))
}

func TestPreActReplansOnFailureObservation(t *testing.T) {
	model := &stubLLM{responses: []string{
		"1. probe \"bad target\"\n2. probe \"second\"",
		"1. probe \"fallback\"",
		"all probes resolved",
	}}
	agent := &PreAct{Base: newTestBase(model)}

	outcome, err := agent.Run(context.Background(), "probe things", framework.TierDefault, newState(10))
	require.NoError(t, err)
	// replacement steps are spliced in after the failed one
	assert.Equal(t, 3, outcome.Steps)
	require.Len(t, outcome.History, 3)
	assert.Contains(t, outcome.History[0].Observation, "error: probe failed")
	assert.Equal(t, `probe "fallback"`, outcome.History[1].Action)
	assert.Equal(t, `probe "second"`, outcome.History[2].Action)
	assert.Equal(t, "all probes resolved", outcome.Answer)
}

func TestPreActReplanFailureIsNonFatal(t *testing.T) {
	model := &stubLLM{responses: []string{
		"1. probe \"bad target\"\n2. probe \"second\"",
		// replan call exhausts the queue; the run continues on the original plan
	}}
	model.responses = append(model.responses, "", "done anyway")
	agent := &PreAct{Base: newTestBase(model)}

	outcome, err := agent.Run(context.Background(), "probe things", framework.TierDefault, newState(10))
	require.NoError(t, err)
	assert.Equal(t, 2, outcome.Steps)
	assert.Equal(t, "done anyway", outcome.Answer)
}
