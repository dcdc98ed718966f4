package framework

import (
	"encoding/json"
	"log"
	"os"
	"sync"
	"time"
)

// EventType categorizes telemetry events.
type EventType string

const (
	EventRunStart   EventType = "run_start"
	EventRunFinish  EventType = "run_finish"
	EventStep       EventType = "step"
	EventModelCall  EventType = "model_call"
	EventToolCall   EventType = "tool_call"
	EventToolResult EventType = "tool_result"
	EventPlan       EventType = "plan"
	EventReplan     EventType = "replan"
	EventReflection EventType = "reflection"
)

// Event captures structured telemetry data. Excerpt fields are already
// clamped by the emitter; sinks can render them directly.
type Event struct {
	Type      EventType              `json:"type"`
	Strategy  string                 `json:"strategy,omitempty"`
	Step      int                    `json:"step,omitempty"`
	Message   string                 `json:"message,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Metadata  map[string]interface{} `json:"metadata,omitempty"`
}

// Telemetry receives execution traces. It is purely observational: sinks must
// never affect control flow. Tests typically swap in lightweight recorders.
type Telemetry interface {
	Emit(event Event)
}

// EmitEvent sends an event to a possibly nil sink, stamping the time.
func EmitEvent(sink Telemetry, event Event) {
	if sink == nil {
		return
	}
	if event.Timestamp.IsZero() {
		event.Timestamp = time.Now()
	}
	sink.Emit(event)
}

// MultiplexTelemetry broadcasts events to multiple sinks.
type MultiplexTelemetry struct {
	Sinks []Telemetry
}

// Emit forwards the event to all registered sinks.
func (m MultiplexTelemetry) Emit(event Event) {
	for _, s := range m.Sinks {
		s.Emit(event)
	}
}

// LoggerTelemetry emits events via the standard logger.
type LoggerTelemetry struct {
	Logger *log.Logger
}

// Emit logs the event.
func (t LoggerTelemetry) Emit(event Event) {
	logger := t.Logger
	if logger == nil {
		logger = log.Default()
	}
	logger.Printf("[%s] strategy=%s step=%d msg=%s meta=%v\n", event.Type, event.Strategy, event.Step, event.Message, event.Metadata)
}

// JSONFileTelemetry writes events as newline-delimited JSON to a file so
// external tools can tail and process the stream in real time.
type JSONFileTelemetry struct {
	file *os.File
	enc  *json.Encoder
	mu   sync.Mutex
}

// NewJSONFileTelemetry opens (or creates) the log file.
func NewJSONFileTelemetry(path string) (*JSONFileTelemetry, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o644)
	if err != nil {
		return nil, err
	}
	return &JSONFileTelemetry{file: f, enc: json.NewEncoder(f)}, nil
}

// Emit writes the JSON record.
func (j *JSONFileTelemetry) Emit(event Event) {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.enc != nil {
		_ = j.enc.Encode(event)
	}
}

// Close releases the file handle.
func (j *JSONFileTelemetry) Close() error {
	j.mu.Lock()
	defer j.mu.Unlock()
	if j.file != nil {
		return j.file.Close()
	}
	return nil
}

// Excerpt shortens a string for telemetry messages.
func Excerpt(s string, limit int) string {
	s = trimOneLine(s)
	if len(s) <= limit {
		return s
	}
	return s[:limit] + "..."
}

func trimOneLine(s string) string {
	for i := 0; i < len(s); i++ {
		if s[i] == '\n' {
			return s[:i]
		}
	}
	return s
}
