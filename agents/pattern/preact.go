package pattern

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/lexcodex/agentloop/framework"
)

// PreAct plans the whole run up front, executes the plan step by step without
// intermediate model calls, replans when an observation looks like a failure,
// and synthesizes the final answer from the collected observations.
type PreAct struct {
	Base
}

// Name identifies the strategy on the façade surface.
func (s *PreAct) Name() string { return "pre_act" }

var numberedLineRe = regexp.MustCompile(`(?m)^\s*\d+[.)]\s+(.+)$`)

// replanTriggers are the observation substrings that prompt a replan.
var replanTriggers = []string{"error", "not found"}

// Run drives the plan, execute, synthesize phases.
func (s *PreAct) Run(ctx context.Context, goal string, tier framework.Tier, state *framework.TaskState) (*framework.Outcome, error) {
	if state.Expired() {
		return nil, framework.Errf(framework.ErrWallClock, "wall clock exceeded before planning")
	}
	plan, err := s.plan(ctx, goal, tier)
	if err != nil {
		return nil, err
	}
	state.Plan = plan
	s.emit(framework.Event{Type: framework.EventPlan, Strategy: s.Name(), Metadata: map[string]interface{}{"steps": len(plan)}})

	for i := 0; i < len(state.Plan); i++ {
		action := state.Plan[i]
		state.StepCount++
		observation := s.Dispatcher.Dispatch(ctx, action)
		state.History.Record(framework.Step{
			Index:       state.StepCount,
			Thought:     fmt.Sprintf("Executing planned step %d of %d", i+1, len(state.Plan)),
			Action:      action,
			Observation: observation,
		})
		s.emitStep(s.Name(), state.StepCount, "", action, observation)
		if needsReplan(observation) {
			// Replan failures are non-fatal: execution continues with the
			// original remaining plan.
			if extra, err := s.replan(ctx, goal, tier, state.History.All()); err == nil && len(extra) > 0 {
				rest := append([]string{}, state.Plan[i+1:]...)
				state.Plan = append(append(state.Plan[:i+1], extra...), rest...)
				s.emit(framework.Event{Type: framework.EventReplan, Strategy: s.Name(), Step: state.StepCount, Metadata: map[string]interface{}{"spliced": len(extra)}})
			} else if err != nil {
				s.debugf("replan failed, continuing with original plan: %v", err)
			}
		}
	}

	if state.Expired() {
		return nil, framework.Errf(framework.ErrWallClock, "wall clock exceeded before synthesis")
	}
	answer, err := s.synthesize(ctx, goal, tier, state.History.All())
	if err != nil {
		return nil, err
	}
	return &framework.Outcome{
		Answer:   answer,
		Steps:    state.StepCount,
		Strategy: s.Name(),
		History:  state.History.All(),
		Metadata: map[string]any{"plan": append([]string{}, state.Plan...)},
	}, nil
}

// plan asks the model for a numbered list of tool invocations.
func (s *PreAct) plan(ctx context.Context, goal string, tier framework.Tier) ([]string, error) {
	var sb strings.Builder
	sb.WriteString("Produce a numbered list of tool invocations that accomplishes this task.\n")
	sb.WriteString("One invocation per line, no commentary.\n\nTask: " + goal + "\n\nAvailable tools:\n")
	for _, spec := range s.Dispatcher.Specs() {
		fmt.Fprintf(&sb, "- %s\n", spec.Usage)
	}
	raw, err := s.Model.Ask(ctx, sb.String(), tier)
	if err != nil {
		return nil, framework.Errf(framework.ErrModelCall, "planning: %v", err)
	}
	plan := ParseNumberedPlan(raw)
	if len(plan) == 0 {
		return nil, framework.Errf(framework.ErrPlanEmpty, "planning call produced no parseable steps")
	}
	return plan, nil
}

// replan asks for replacement steps after a failed observation.
func (s *PreAct) replan(ctx context.Context, goal string, tier framework.Tier, done []framework.Step) ([]string, error) {
	var sb strings.Builder
	sb.WriteString("A planned step failed. Produce a numbered list of replacement tool invocations.\n\n")
	sb.WriteString("Task: " + goal + "\n\nCompleted steps so far:\n")
	for _, step := range done {
		fmt.Fprintf(&sb, "%d. %s -> %s\n", step.Index, step.Action, framework.Excerpt(step.Observation, 200))
	}
	raw, err := s.Model.Ask(ctx, sb.String(), tier)
	if err != nil {
		return nil, err
	}
	return ParseNumberedPlan(raw), nil
}

// synthesize folds every step/observation pair into the terminal answer.
func (s *PreAct) synthesize(ctx context.Context, goal string, tier framework.Tier, steps []framework.Step) (string, error) {
	var sb strings.Builder
	sb.WriteString("Summarize the results of these steps into a final answer for the task.\n\n")
	sb.WriteString("Task: " + goal + "\n\n")
	sb.WriteString(renderTrace(steps))
	raw, err := s.Model.Ask(ctx, sb.String(), tier)
	if err != nil {
		return "", framework.Errf(framework.ErrModelCall, "synthesis: %v", err)
	}
	if answer, done := framework.FinalAnswer(strings.TrimSpace(raw)); done {
		return answer, nil
	}
	return strings.TrimSpace(raw), nil
}

// ParseNumberedPlan extracts ordered steps from line-anchored ordinal
// prefixes, discarding blank lines.
func ParseNumberedPlan(raw string) []string {
	var plan []string
	for _, m := range numberedLineRe.FindAllStringSubmatch(raw, -1) {
		step := strings.TrimSpace(m[1])
		if step != "" {
			plan = append(plan, step)
		}
	}
	return plan
}

// needsReplan reports whether the observation text contains a trigger
// substring.
func needsReplan(observation string) bool {
	lower := strings.ToLower(observation)
	for _, trigger := range replanTriggers {
		if strings.Contains(lower, trigger) {
			return true
		}
	}
	return false
}
