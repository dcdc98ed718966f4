package pattern

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/lexcodex/agentloop/framework"
)

type stubLLM struct {
	responses []string
	idx       int
	calls     int
}

// Ask returns the next queued response for deterministic tests.
func (s *stubLLM) Ask(ctx context.Context, prompt string, tier framework.Tier) (string, error) {
	s.calls++
	return s.next()
}

// AskMessages is unused by the strategies but satisfies the interface.
func (s *stubLLM) AskMessages(ctx context.Context, messages []framework.Message, tier framework.Tier) (string, error) {
	s.calls++
	return s.next()
}

func (s *stubLLM) next() (string, error) {
	if s.idx >= len(s.responses) {
		return "", errors.New("no response queued")
	}
	resp := s.responses[s.idx]
	s.idx++
	return resp, nil
}

// newTestBase wires a stub model and a dispatcher with a "note" tool whose
// observation echoes the argument, plus a "probe" tool that fails on "bad".
func newTestBase(model *stubLLM) Base {
	d := framework.NewDispatcher()
	d.Register(framework.ToolSpec{Name: "note", Description: "record a note", Usage: `note "text"`},
		func(ctx context.Context, arg string) string {
			return "noted " + arg
		})
	d.Register(framework.ToolSpec{Name: "probe", Description: "probe a target", Usage: `probe "target"`},
		func(ctx context.Context, arg string) string {
			if strings.Contains(arg, "bad") {
				return "error: probe failed for " + arg
			}
			return "probe ok for " + arg
		})
	cfg := &framework.Config{}
	cfg.Defaults()
	return Base{
		Model:      model,
		Dispatcher: d,
		Prompts:    &framework.PromptBuilder{Identity: "You are a test runner."},
		Config:     cfg,
	}
}

func newState(maxSteps int) *framework.TaskState {
	return framework.NewTaskState(maxSteps, 0, framework.DefaultHistoryLimit)
}

func TestRenderTrace(t *testing.T) {
	trace := renderTrace([]framework.Step{
		{Index: 1, Thought: "look", Action: `note "a"`, Observation: "noted a"},
		{Index: 2, Thought: "done", Action: "ANSWER: fine"},
	})
	assert.Contains(t, trace, "Step 1")
	assert.Contains(t, trace, "Observation: noted a")
	assert.Contains(t, trace, "ANSWER: fine")
	assert.NotContains(t, trace, "Observation: \n")
}
