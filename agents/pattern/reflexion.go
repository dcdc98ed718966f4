package pattern

import (
	"context"
	"regexp"
	"strings"

	"github.com/lexcodex/agentloop/framework"
)

// Reflexion wraps a capped ReAct run with a critique-and-retry loop. Each
// failed attempt produces a Reflection whose lessons seed the goal of the
// next attempt.
type Reflexion struct {
	Base
}

// Name identifies the strategy on the façade surface.
func (s *Reflexion) Name() string { return "reflexion" }

// innerStepCap bounds a single attempt's ReAct loop.
const innerStepCap = 5

var (
	successFieldRe  = regexp.MustCompile(`(?im)^SUCCESS:\s*(.+)$`)
	critiqueFieldRe = regexp.MustCompile(`(?is)CRITIQUE:\s*(.*?)(?:LESSONS:|IMPROVED_ANSWER:|$)`)
	lessonsFieldRe  = regexp.MustCompile(`(?is)LESSONS:\s*(.*?)(?:IMPROVED_ANSWER:|$)`)
	improvedFieldRe = regexp.MustCompile(`(?is)IMPROVED_ANSWER:\s*(.*)$`)
)

// Run executes up to Config.MaxAttempts critique-and-retry cycles. Inner
// attempts share the overall step budget and wall-clock deadline.
func (s *Reflexion) Run(ctx context.Context, goal string, tier framework.Tier, state *framework.TaskState) (*framework.Outcome, error) {
	inner := &ReAct{Base: s.Base}
	maxAttempts := s.Config.MaxAttempts
	stepsUsed := 0

	for attempt := 1; attempt <= maxAttempts; attempt++ {
		remaining := state.MaxSteps - stepsUsed
		if remaining <= 0 {
			return nil, framework.Errf(framework.ErrStepBudget, "overall budget spent after %d attempts", attempt-1)
		}
		budget := innerStepCap
		if remaining < budget {
			budget = remaining
		}
		attemptState := &framework.TaskState{
			MaxSteps:  budget,
			StartTime: state.StartTime,
			WallClock: state.WallClock,
			History:   framework.NewHistory(state.History.Len() + framework.DefaultHistoryLimit),
		}

		outcome, runErr := inner.Run(ctx, s.augmentGoal(goal, state.Reflections), tier, attemptState)
		stepsUsed += attemptState.StepCount
		state.StepCount = stepsUsed
		state.History = attemptState.History
		if runErr != nil {
			// An exhausted inner budget or a failed inner model call is an
			// ordinary failed attempt, retried as a fresh attempt; the wall
			// clock terminates the whole run.
			switch framework.KindOf(runErr) {
			case framework.ErrStepBudget, framework.ErrModelCall:
			default:
				return nil, runErr
			}
		}

		reflection, err := s.reflect(ctx, goal, tier, attemptState, outcome, runErr)
		if err != nil {
			return nil, err
		}
		state.Reflections = append(state.Reflections, reflection)
		s.emit(framework.Event{
			Type:     framework.EventReflection,
			Strategy: s.Name(),
			Step:     stepsUsed,
			Message:  framework.Excerpt(reflection.Critique, 120),
			Metadata: map[string]interface{}{"attempt": attempt, "success": reflection.Success},
		})

		if reflection.Success {
			answer := ""
			if outcome != nil {
				answer = outcome.Answer
			}
			if answer == "" {
				answer = reflection.ImprovedAnswer
			}
			return &framework.Outcome{
				Answer:   answer,
				Steps:    stepsUsed,
				Strategy: s.Name(),
				History:  state.History.All(),
				Metadata: map[string]any{
					"attempts":    attempt,
					"reflections": append([]framework.Reflection{}, state.Reflections...),
				},
			}, nil
		}
		s.debugf("attempt %d judged unsuccessful, retrying", attempt)
	}
	return nil, framework.Errf(framework.ErrAttemptsExhausted, "no successful attempt in %d tries", maxAttempts)
}

// augmentGoal appends accumulated lessons to the original goal, in order.
func (s *Reflexion) augmentGoal(goal string, reflections []framework.Reflection) string {
	var lessons []string
	for _, r := range reflections {
		if strings.TrimSpace(r.Lessons) != "" {
			lessons = append(lessons, strings.TrimSpace(r.Lessons))
		}
	}
	if len(lessons) == 0 {
		return goal
	}
	return goal + "\n\nLessons from previous attempts:\n" + strings.Join(lessons, "\n")
}

// reflect asks the model to critique the attempt and parses the four labeled
// fields.
func (s *Reflexion) reflect(ctx context.Context, goal string, tier framework.Tier, attemptState *framework.TaskState, outcome *framework.Outcome, runErr error) (framework.Reflection, error) {
	var sb strings.Builder
	sb.WriteString("Critique this attempt at the task below.\n")
	sb.WriteString("Respond with exactly these fields:\n")
	sb.WriteString("SUCCESS: yes or no\nCRITIQUE: what went wrong or right\nLESSONS: concrete guidance for the next attempt\nIMPROVED_ANSWER: a better final answer, if you can produce one\n\n")
	sb.WriteString("Task: " + goal + "\n\nTrace:\n" + renderTrace(attemptState.History.All()) + "\n")
	if outcome != nil {
		sb.WriteString("Result: " + outcome.Answer + "\n")
	} else if runErr != nil {
		sb.WriteString("Result: attempt failed (" + runErr.Error() + ")\n")
	}
	raw, err := s.Model.Ask(ctx, sb.String(), tier)
	if err != nil {
		return framework.Reflection{}, framework.Errf(framework.ErrModelCall, "reflection: %v", err)
	}
	return ParseReflection(raw), nil
}

// ParseReflection extracts the SUCCESS/CRITIQUE/LESSONS/IMPROVED_ANSWER
// fields from a reflection response. Missing fields default to empty values
// and an unsuccessful verdict.
func ParseReflection(raw string) framework.Reflection {
	var reflection framework.Reflection
	if m := successFieldRe.FindStringSubmatch(raw); m != nil {
		value := strings.ToLower(strings.TrimSpace(m[1]))
		reflection.Success = strings.HasPrefix(value, "yes") || strings.HasPrefix(value, "true")
	}
	if m := critiqueFieldRe.FindStringSubmatch(raw); m != nil {
		reflection.Critique = strings.TrimSpace(m[1])
	}
	if m := lessonsFieldRe.FindStringSubmatch(raw); m != nil {
		reflection.Lessons = strings.TrimSpace(m[1])
	}
	if m := improvedFieldRe.FindStringSubmatch(raw); m != nil {
		reflection.ImprovedAnswer = strings.TrimSpace(m[1])
	}
	return reflection
}
