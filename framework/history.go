package framework

// Step is one thought/action/observation triple produced during a run. Steps
// are appended in order; the observation is attached once the action has been
// dispatched.
type Step struct {
	Index       int
	Thought     string
	Action      string
	Observation string
}

// DefaultHistoryLimit bounds how many steps a run retains.
const DefaultHistoryLimit = 50

// History is an append-only bounded log of steps. When the limit is exceeded
// the oldest entry is evicted before the new one is appended. A History is
// owned by exactly one task run and is not safe for concurrent use.
type History struct {
	limit int
	steps []Step
}

// NewHistory builds a history with the given capacity. Non-positive limits
// fall back to DefaultHistoryLimit.
func NewHistory(limit int) *History {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}
	return &History{limit: limit}
}

// Record appends a step, evicting the oldest entry when full.
func (h *History) Record(step Step) {
	if len(h.steps) >= h.limit {
		h.steps = h.steps[1:]
	}
	h.steps = append(h.steps, step)
}

// Recent returns the most recent n steps in insertion order.
func (h *History) Recent(n int) []Step {
	if n <= 0 || len(h.steps) == 0 {
		return nil
	}
	if n > len(h.steps) {
		n = len(h.steps)
	}
	out := make([]Step, n)
	copy(out, h.steps[len(h.steps)-n:])
	return out
}

// Last returns the most recent step, if any.
func (h *History) Last() (Step, bool) {
	if len(h.steps) == 0 {
		return Step{}, false
	}
	return h.steps[len(h.steps)-1], true
}

// SetLastObservation attaches the observation to the most recent step. Used by
// strategies that record a step before its action has been dispatched.
func (h *History) SetLastObservation(observation string) {
	if len(h.steps) == 0 {
		return
	}
	h.steps[len(h.steps)-1].Observation = observation
}

// Len reports the number of retained steps.
func (h *History) Len() int { return len(h.steps) }

// All returns a copy of every retained step in order.
func (h *History) All() []Step {
	out := make([]Step, len(h.steps))
	copy(out, h.steps)
	return out
}

// Reset drops every retained step. Reflexion uses this between attempts.
func (h *History) Reset() {
	h.steps = h.steps[:0]
}
