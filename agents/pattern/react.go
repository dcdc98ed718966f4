package pattern

import (
	"context"

	"github.com/lexcodex/agentloop/framework"
)

// ReAct runs the tight reason-then-act loop: each iteration asks the model for
// a thought and an action, dispatches the action, and feeds the observation
// back through the next prompt's history window.
type ReAct struct {
	Base
}

// Name identifies the strategy on the façade surface.
func (s *ReAct) Name() string { return "react" }

// Run loops until the model emits a completion marker, the step budget runs
// out, the wall clock expires, or a model call fails.
func (s *ReAct) Run(ctx context.Context, goal string, tier framework.Tier, state *framework.TaskState) (*framework.Outcome, error) {
	for state.StepCount < state.MaxSteps {
		if state.Expired() {
			last := ""
			if step, ok := state.History.Last(); ok {
				last = step.Observation
			}
			return nil, framework.Errf(framework.ErrWallClock,
				"wall clock exceeded after %d steps; last observation: %s",
				state.StepCount, framework.Excerpt(last, 200))
		}
		state.StepCount++
		prompt := s.Prompts.BuildPrompt(goal, s.Dispatcher.Specs(), state.History.Recent(s.Config.HistoryWindow))
		s.emit(framework.Event{Type: framework.EventModelCall, Strategy: s.Name(), Step: state.StepCount})
		raw, err := s.Model.Ask(ctx, prompt, tier)
		if err != nil {
			return nil, framework.Errf(framework.ErrModelCall, "step %d: %v", state.StepCount, err)
		}
		resp := framework.ParseResponse(raw)
		state.History.Record(framework.Step{Index: state.StepCount, Thought: resp.Thought, Action: resp.Action})
		if answer, done := framework.FinalAnswer(resp.Action); done {
			s.emitStep(s.Name(), state.StepCount, resp.Thought, resp.Action, "")
			return &framework.Outcome{
				Answer:   answer,
				Steps:    state.StepCount,
				Strategy: s.Name(),
				History:  state.History.All(),
				Metadata: map[string]any{},
			}, nil
		}
		s.emit(framework.Event{Type: framework.EventToolCall, Strategy: s.Name(), Step: state.StepCount, Message: framework.Excerpt(resp.Action, 120)})
		observation := s.Dispatcher.Dispatch(ctx, resp.Action)
		state.History.SetLastObservation(observation)
		s.emit(framework.Event{Type: framework.EventToolResult, Strategy: s.Name(), Step: state.StepCount, Message: framework.Excerpt(observation, 120)})
		s.emitStep(s.Name(), state.StepCount, resp.Thought, resp.Action, observation)
		s.debugf("react step=%d action=%q", state.StepCount, framework.Excerpt(resp.Action, 80))
	}
	return nil, framework.Errf(framework.ErrStepBudget, "no answer after %d steps", state.MaxSteps)
}
