package framework

import (
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestErrfCarriesKind(t *testing.T) {
	err := Errf(ErrStepBudget, "no answer after %d steps", 15)
	assert.Equal(t, ErrStepBudget, KindOf(err))
	assert.Contains(t, err.Error(), "no answer after 15 steps")
	assert.Contains(t, err.Error(), string(ErrStepBudget))
}

func TestKindOfWrappedError(t *testing.T) {
	err := fmt.Errorf("outer: %w", Errf(ErrWallClock, "deadline hit"))
	assert.Equal(t, ErrWallClock, KindOf(err))
}

func TestKindOfForeignError(t *testing.T) {
	assert.Equal(t, ErrorKind(""), KindOf(errors.New("plain")))
	assert.Equal(t, ErrorKind(""), KindOf(nil))
}

func TestTaskStateExpiry(t *testing.T) {
	state := NewTaskState(5, time.Hour, 10)
	assert.False(t, state.Expired())
	assert.Equal(t, 5, state.Remaining())

	state.StepCount = 3
	assert.Equal(t, 2, state.Remaining())

	state.StartTime = time.Now().Add(-2 * time.Hour)
	assert.True(t, state.Expired())
}
