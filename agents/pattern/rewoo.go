package pattern

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strconv"
	"strings"

	"github.com/lexcodex/agentloop/framework"
)

// ReWOO (Reasoning WithOut Observation) plans every tool call in a single
// model call using #E placeholders, executes the calls with placeholder
// substitution, and synthesizes the answer from the evidence map.
type ReWOO struct {
	Base
}

// Name identifies the strategy on the façade surface.
func (s *ReWOO) Name() string { return "rewoo" }

var (
	evidenceLineRe = regexp.MustCompile(`(?m)^\s*#E(\d+)\s*=\s*(.+)$`)
	evidenceRefRe  = regexp.MustCompile(`#E(\d+)`)
)

// EvidenceStep is one planned (placeholder id, action) pair.
type EvidenceStep struct {
	ID     int
	Action string
}

// Run drives the plan, execute, synthesize phases over the evidence map.
func (s *ReWOO) Run(ctx context.Context, goal string, tier framework.Tier, state *framework.TaskState) (*framework.Outcome, error) {
	if state.Expired() {
		return nil, framework.Errf(framework.ErrWallClock, "wall clock exceeded before planning")
	}
	reasoning, steps, err := s.plan(ctx, goal, tier)
	if err != nil {
		return nil, err
	}
	for _, step := range steps {
		state.Plan = append(state.Plan, step.Action)
	}
	s.emit(framework.Event{Type: framework.EventPlan, Strategy: s.Name(), Metadata: map[string]interface{}{"steps": len(steps)}})

	evidence := make(map[int]string, len(steps))
	for _, step := range steps {
		state.StepCount++
		resolved := SubstituteEvidence(step.Action, evidence)
		observation := s.Dispatcher.Dispatch(ctx, resolved)
		evidence[step.ID] = observation
		state.History.Record(framework.Step{
			Index:       state.StepCount,
			Thought:     fmt.Sprintf("Resolving evidence #E%d", step.ID),
			Action:      resolved,
			Observation: observation,
		})
		s.emitStep(s.Name(), state.StepCount, "", resolved, observation)
	}

	if state.Expired() {
		return nil, framework.Errf(framework.ErrWallClock, "wall clock exceeded before synthesis")
	}
	answer, err := s.synthesize(ctx, goal, tier, reasoning, evidence)
	if err != nil {
		return nil, err
	}
	return &framework.Outcome{
		Answer:   answer,
		Steps:    state.StepCount,
		Strategy: s.Name(),
		History:  state.History.All(),
		Metadata: map[string]any{"evidence": evidenceMetadata(evidence)},
	}, nil
}

// plan asks for free-text reasoning followed by "#En = tool_call" lines.
func (s *ReWOO) plan(ctx context.Context, goal string, tier framework.Tier) (string, []EvidenceStep, error) {
	var sb strings.Builder
	sb.WriteString("Plan every tool call needed for this task before executing anything.\n")
	sb.WriteString("First write your reasoning, then one line per call in the form:\n")
	sb.WriteString("#E1 = tool_name \"argument\"\n")
	sb.WriteString("Later calls may reference earlier results as #E1, #E2, ...\n\nTask: " + goal + "\n\nAvailable tools:\n")
	for _, spec := range s.Dispatcher.Specs() {
		fmt.Fprintf(&sb, "- %s\n", spec.Usage)
	}
	raw, err := s.Model.Ask(ctx, sb.String(), tier)
	if err != nil {
		return "", nil, framework.Errf(framework.ErrModelCall, "planning: %v", err)
	}
	reasoning, steps := ParseEvidencePlan(raw)
	if len(steps) == 0 {
		return "", nil, framework.Errf(framework.ErrPlanEmpty, "planning call produced no #E steps")
	}
	return reasoning, steps, nil
}

// synthesize summarizes the reasoning plus evidence into a terse answer.
func (s *ReWOO) synthesize(ctx context.Context, goal string, tier framework.Tier, reasoning string, evidence map[int]string) (string, error) {
	var sb strings.Builder
	sb.WriteString("Using the plan reasoning and collected evidence, answer the task tersely.\n")
	sb.WriteString("Do not repeat raw tool output.\n\nTask: " + goal + "\n\nPlan reasoning:\n" + reasoning + "\n\nEvidence:\n")
	for _, id := range sortedEvidenceIDs(evidence) {
		fmt.Fprintf(&sb, "#E%d: %s\n", id, framework.Excerpt(evidence[id], 400))
	}
	raw, err := s.Model.Ask(ctx, sb.String(), tier)
	if err != nil {
		return "", framework.Errf(framework.ErrModelCall, "synthesis: %v", err)
	}
	if answer, done := framework.FinalAnswer(strings.TrimSpace(raw)); done {
		return answer, nil
	}
	return strings.TrimSpace(raw), nil
}

// ParseEvidencePlan splits a planning response into the reasoning prefix and
// ordered (id, action) pairs.
func ParseEvidencePlan(raw string) (string, []EvidenceStep) {
	var steps []EvidenceStep
	for _, m := range evidenceLineRe.FindAllStringSubmatch(raw, -1) {
		id, err := strconv.Atoi(m[1])
		if err != nil {
			continue
		}
		steps = append(steps, EvidenceStep{ID: id, Action: strings.TrimSpace(m[2])})
	}
	reasoning := raw
	if loc := evidenceLineRe.FindStringIndex(raw); loc != nil {
		reasoning = raw[:loc[0]]
	}
	return strings.TrimSpace(reasoning), steps
}

// SubstituteEvidence replaces every #Ek reference with the recorded evidence
// for k. Unresolved references resolve to the empty string rather than
// failing, so forward references degrade silently.
func SubstituteEvidence(action string, evidence map[int]string) string {
	return evidenceRefRe.ReplaceAllStringFunc(action, func(ref string) string {
		id, err := strconv.Atoi(ref[2:])
		if err != nil {
			return ""
		}
		return evidence[id]
	})
}

func sortedEvidenceIDs(evidence map[int]string) []int {
	ids := make([]int, 0, len(evidence))
	for id := range evidence {
		ids = append(ids, id)
	}
	sort.Ints(ids)
	return ids
}

func evidenceMetadata(evidence map[int]string) map[string]string {
	out := make(map[string]string, len(evidence))
	for id, value := range evidence {
		out[fmt.Sprintf("E%d", id)] = value
	}
	return out
}
