package operations_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tweetpulse/internal/operations"
)

func TestStepStateTransitions(t *testing.T) {
	s := operations.NewStepState("load", "Dataset Loading")
	assert.Equal(t, operations.StepStatusPending, s.GetStatus())
	assert.Zero(t, s.Duration())

	s.Start()
	assert.Equal(t, operations.StepStatusActive, s.GetStatus())
	require.NotNil(t, s.StartTime)

	time.Sleep(time.Millisecond)
	s.Complete()
	assert.Equal(t, operations.StepStatusCompleted, s.GetStatus())
	assert.Greater(t, s.Duration(), time.Duration(0))
}

func TestStepStateFailAndSkip(t *testing.T) {
	boom := errors.New("boom")

	failed := operations.NewStepState("x", "X")
	failed.Start()
	failed.Fail(boom)
	assert.Equal(t, operations.StepStatusFailed, failed.GetStatus())
	assert.Equal(t, boom, failed.Error)

	skipped := operations.NewStepState("y", "Y")
	skipped.Skip("price fetch disabled")
	assert.Equal(t, operations.StepStatusSkipped, skipped.GetStatus())
	assert.Equal(t, "price fetch disabled", skipped.Message)
}

func TestStepStateMetadata(t *testing.T) {
	s := operations.NewStepState("x", "X")
	s.SetMetadata("posts", 3)
	assert.Equal(t, 3, s.Metadata["posts"])

	var missing *operations.StepState
	assert.NotPanics(t, func() { missing.SetMetadata("posts", 1) })
}

func TestBaseStage(t *testing.T) {
	b := operations.NewBaseStage("id", "Name")
	assert.Equal(t, "id", b.ID())
	assert.Equal(t, "Name", b.Name())
	assert.NoError(t, b.Validate(nil))

	var nilStage *operations.BaseStage
	assert.Equal(t, "", nilStage.ID())
	assert.Error(t, nilStage.Validate(nil))
}
