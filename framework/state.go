package framework

import "time"

// Reflection is one structured self-assessment produced by a Reflexion
// attempt. Reflections accumulate across attempts and are never mutated after
// creation.
type Reflection struct {
	Success        bool
	Critique       string
	Lessons        string
	ImprovedAnswer string
}

// Outcome is the structured success payload of a strategy run.
type Outcome struct {
	Answer   string
	Steps    int
	Strategy string
	History  []Step
	Metadata map[string]any
}

// TaskState aggregates the mutable state of a single run. It is created at
// strategy entry and owned exclusively by that run, so no locking is needed.
type TaskState struct {
	StepCount   int
	MaxSteps    int
	StartTime   time.Time
	WallClock   time.Duration
	History     *History
	Plan        []string
	Reflections []Reflection
}

// NewTaskState builds run state with the configured budgets.
func NewTaskState(maxSteps int, wallClock time.Duration, historyLimit int) *TaskState {
	return &TaskState{
		MaxSteps:  maxSteps,
		StartTime: time.Now(),
		WallClock: wallClock,
		History:   NewHistory(historyLimit),
	}
}

// Expired reports whether the wall-clock budget has been spent. A zero
// WallClock means no deadline.
func (s *TaskState) Expired() bool {
	if s.WallClock <= 0 {
		return false
	}
	return time.Since(s.StartTime) >= s.WallClock
}

// Remaining reports how many steps are left in the budget.
func (s *TaskState) Remaining() int {
	left := s.MaxSteps - s.StepCount
	if left < 0 {
		return 0
	}
	return left
}
