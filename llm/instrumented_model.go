package llm

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/lexcodex/agentloop/framework"
)

// InstrumentedModel wraps a LanguageModel and emits telemetry for every call.
type InstrumentedModel struct {
	Inner     framework.LanguageModel
	Telemetry framework.Telemetry
	calls     atomic.Int64
}

// NewInstrumentedModel wraps the inner model.
func NewInstrumentedModel(inner framework.LanguageModel, telemetry framework.Telemetry) *InstrumentedModel {
	return &InstrumentedModel{Inner: inner, Telemetry: telemetry}
}

// Calls reports how many backend calls this wrapper has issued.
func (m *InstrumentedModel) Calls() int64 { return m.calls.Load() }

// Ask delegates to the inner model and records the call.
func (m *InstrumentedModel) Ask(ctx context.Context, prompt string, tier framework.Tier) (string, error) {
	start := time.Now()
	answer, err := m.Inner.Ask(ctx, prompt, tier)
	m.record("ask", tier, len(prompt), start, err)
	return answer, err
}

// AskMessages delegates to the inner model and records the call.
func (m *InstrumentedModel) AskMessages(ctx context.Context, messages []framework.Message, tier framework.Tier) (string, error) {
	start := time.Now()
	answer, err := m.Inner.AskMessages(ctx, messages, tier)
	size := 0
	for _, msg := range messages {
		size += len(msg.Content)
	}
	m.record("ask_messages", tier, size, start, err)
	return answer, err
}

func (m *InstrumentedModel) record(op string, tier framework.Tier, promptBytes int, start time.Time, err error) {
	m.calls.Add(1)
	metadata := map[string]interface{}{
		"op":           op,
		"tier":         string(tier),
		"prompt_bytes": promptBytes,
		"duration_ms":  time.Since(start).Milliseconds(),
	}
	message := ""
	if err != nil {
		message = err.Error()
	}
	framework.EmitEvent(m.Telemetry, framework.Event{
		Type:     framework.EventModelCall,
		Message:  framework.Excerpt(message, 120),
		Metadata: metadata,
	})
}
