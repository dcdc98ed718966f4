package llm

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexcodex/agentloop/framework"
)

type fixedModel struct {
	answer string
	err    error
}

func (m *fixedModel) Ask(ctx context.Context, prompt string, tier framework.Tier) (string, error) {
	return m.answer, m.err
}

func (m *fixedModel) AskMessages(ctx context.Context, messages []framework.Message, tier framework.Tier) (string, error) {
	return m.answer, m.err
}

type recordingSink struct {
	events []framework.Event
}

func (r *recordingSink) Emit(event framework.Event) {
	r.events = append(r.events, event)
}

func TestInstrumentedModelCountsAndEmits(t *testing.T) {
	sink := &recordingSink{}
	m := NewInstrumentedModel(&fixedModel{answer: "ok"}, sink)

	answer, err := m.Ask(context.Background(), "hello", framework.TierFast)
	require.NoError(t, err)
	assert.Equal(t, "ok", answer)

	_, err = m.AskMessages(context.Background(), []framework.Message{{Role: "user", Content: "hey"}}, framework.TierDefault)
	require.NoError(t, err)

	assert.Equal(t, int64(2), m.Calls())
	require.Len(t, sink.events, 2)
	assert.Equal(t, framework.EventModelCall, sink.events[0].Type)
	assert.Equal(t, "ask", sink.events[0].Metadata["op"])
	assert.Equal(t, "fast", sink.events[0].Metadata["tier"])
	assert.Equal(t, 5, sink.events[0].Metadata["prompt_bytes"])
	assert.Equal(t, "ask_messages", sink.events[1].Metadata["op"])
}

func TestInstrumentedModelRecordsFailures(t *testing.T) {
	sink := &recordingSink{}
	m := NewInstrumentedModel(&fixedModel{err: errors.New("down")}, sink)

	_, err := m.Ask(context.Background(), "p", framework.TierDefault)
	assert.Error(t, err)
	assert.Equal(t, int64(1), m.Calls())
	require.Len(t, sink.events, 1)
	assert.Equal(t, "down", sink.events[0].Message)
}

func TestInstrumentedModelNilTelemetry(t *testing.T) {
	m := NewInstrumentedModel(&fixedModel{answer: "ok"}, nil)
	answer, err := m.Ask(context.Background(), "p", framework.TierDefault)
	require.NoError(t, err)
	assert.Equal(t, "ok", answer)
	assert.Equal(t, int64(1), m.Calls())
}
