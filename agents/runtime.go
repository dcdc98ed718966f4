// Package agents owns the runtime façade: it selects an execution strategy by
// name, creates the per-run mutable state, and hands both to the strategy
// engine. All mutable state lives in the TaskState created here, so one
// Runtime instance can serve many concurrent runs.
package agents

import (
	"context"
	"strings"

	"github.com/google/uuid"

	"github.com/lexcodex/agentloop/agents/pattern"
	"github.com/lexcodex/agentloop/framework"
)

// RunRecorder persists finished runs. Implementations must tolerate being
// called with either a populated outcome or a terminal error.
type RunRecorder interface {
	SaveRun(ctx context.Context, id string, goal string, outcome *framework.Outcome, runErr error) error
}

// Runtime is the façade callers drive. Model, Dispatcher, Prompts, and Config
// are required; Store is optional.
type Runtime struct {
	Model      framework.LanguageModel
	Dispatcher *framework.Dispatcher
	Prompts    *framework.PromptBuilder
	Config     *framework.Config
	Store      RunRecorder
}

// New wires a Runtime and applies config defaults.
func New(model framework.LanguageModel, dispatcher *framework.Dispatcher, prompts *framework.PromptBuilder, cfg *framework.Config) *Runtime {
	if cfg == nil {
		cfg = &framework.Config{}
	}
	cfg.Defaults()
	return &Runtime{Model: model, Dispatcher: dispatcher, Prompts: prompts, Config: cfg}
}

// StrategyNames lists the selectable strategies.
func StrategyNames() []string {
	return []string{"react", "pre_act", "rewoo", "reflexion"}
}

// strategyFor resolves a strategy tag to an engine.
func (r *Runtime) strategyFor(name string) (pattern.Strategy, error) {
	base := pattern.Base{
		Model:      r.Model,
		Dispatcher: r.Dispatcher,
		Prompts:    r.Prompts,
		Config:     r.Config,
	}
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "react", "":
		return &pattern.ReAct{Base: base}, nil
	case "pre_act", "preact", "pre-act":
		return &pattern.PreAct{Base: base}, nil
	case "rewoo":
		return &pattern.ReWOO{Base: base}, nil
	case "reflexion":
		return &pattern.Reflexion{Base: base}, nil
	default:
		return nil, framework.Errf(framework.ErrUnknownStrategy, "%q is not one of %s", name, strings.Join(StrategyNames(), ", "))
	}
}

// Run executes the goal under the named strategy and tier. The returned
// Outcome carries the answer, step count, history, and per-strategy metadata;
// terminal failures surface as *framework.RuntimeError.
func (r *Runtime) Run(ctx context.Context, goal string, strategy string, tier framework.Tier) (*framework.Outcome, error) {
	engine, err := r.strategyFor(strategy)
	if err != nil {
		return nil, err
	}
	runID := uuid.NewString()
	state := framework.NewTaskState(r.Config.MaxSteps, r.Config.WallClock, r.Config.HistoryLimit)
	framework.EmitEvent(r.Config.Telemetry, framework.Event{
		Type:     framework.EventRunStart,
		Strategy: engine.Name(),
		Message:  framework.Excerpt(goal, 120),
		Metadata: map[string]interface{}{"run_id": runID},
	})
	outcome, runErr := engine.Run(ctx, goal, tier, state)
	if outcome != nil {
		if outcome.Metadata == nil {
			outcome.Metadata = map[string]any{}
		}
		outcome.Metadata["run_id"] = runID
	}
	framework.EmitEvent(r.Config.Telemetry, framework.Event{
		Type:     framework.EventRunFinish,
		Strategy: engine.Name(),
		Step:     state.StepCount,
		Message:  finishMessage(outcome, runErr),
		Metadata: map[string]interface{}{"run_id": runID},
	})
	if r.Store != nil {
		// Persistence is observational; a failed save never fails the run.
		_ = r.Store.SaveRun(ctx, runID, goal, outcome, runErr)
	}
	return outcome, runErr
}

func finishMessage(outcome *framework.Outcome, err error) string {
	if err != nil {
		return err.Error()
	}
	return framework.Excerpt(outcome.Answer, 120)
}
