// Package pattern implements the interchangeable execution strategies the
// runtime can drive a language model with: a tight reasoning loop (ReAct),
// plan-then-execute (Pre-Act), batch planning with evidence placeholders
// (ReWOO), and critique-and-retry (Reflexion). All four share the dispatcher,
// parser, and prompt builder as injected collaborators instead of
// re-implementing them per variant.
package pattern

import (
	"context"
	"fmt"
	"log"
	"strings"

	"github.com/lexcodex/agentloop/framework"
)

// Strategy is the single contract every engine implements. Run owns the
// supplied TaskState for the duration of the call.
type Strategy interface {
	Name() string
	Run(ctx context.Context, goal string, tier framework.Tier, state *framework.TaskState) (*framework.Outcome, error)
}

// Base carries the collaborators shared by every strategy.
type Base struct {
	Model      framework.LanguageModel
	Dispatcher *framework.Dispatcher
	Prompts    *framework.PromptBuilder
	Config     *framework.Config
}

// debugf logs formatted messages whenever agent debug logging is enabled.
func (b *Base) debugf(format string, args ...interface{}) {
	if b.Config == nil || !b.Config.DebugAgent {
		return
	}
	log.Printf("[pattern] "+format, args...)
}

// emit forwards an event to the configured telemetry sink, if any.
func (b *Base) emit(event framework.Event) {
	if b.Config == nil {
		return
	}
	framework.EmitEvent(b.Config.Telemetry, event)
}

// emitStep publishes the standard per-step progress line.
func (b *Base) emitStep(strategy string, step int, thought, action, observation string) {
	b.emit(framework.Event{
		Type:     framework.EventStep,
		Strategy: strategy,
		Step:     step,
		Message: fmt.Sprintf("thought=%q action=%q observation=%q",
			framework.Excerpt(thought, 80),
			framework.Excerpt(action, 80),
			framework.Excerpt(observation, 80)),
	})
}

// renderTrace flattens history steps into prompt-ready text.
func renderTrace(steps []framework.Step) string {
	var sb strings.Builder
	for _, step := range steps {
		fmt.Fprintf(&sb, "Step %d\nThought: %s\nAction: %s\n", step.Index, step.Thought, step.Action)
		if step.Observation != "" {
			fmt.Fprintf(&sb, "Observation: %s\n", framework.Excerpt(step.Observation, 400))
		}
	}
	return sb.String()
}
