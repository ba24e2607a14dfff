package operations_test

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tweetpulse/internal/operations"
)

func TestOperationStateLifecycle(t *testing.T) {
	state := operations.NewOperationState("run-1", "tweets.csv")
	assert.Equal(t, operations.OperationStatusPending, state.GetStatus())
	assert.Equal(t, "tweets.csv", state.InputPath)
	assert.Nil(t, state.EndTime)

	state.Start()
	assert.Equal(t, operations.OperationStatusRunning, state.GetStatus())

	state.Complete()
	assert.Equal(t, operations.OperationStatusCompleted, state.GetStatus())
	require.NotNil(t, state.EndTime)
	assert.GreaterOrEqual(t, state.Duration(), time.Duration(0))
}

func TestOperationStateFailAndCancel(t *testing.T) {
	boom := errors.New("boom")

	failed := operations.NewOperationState("a", "")
	failed.Fail(boom)
	assert.Equal(t, operations.OperationStatusFailed, failed.GetStatus())
	assert.Equal(t, boom, failed.Error)

	cancelled := operations.NewOperationState("b", "")
	cancelled.Cancel(boom)
	assert.Equal(t, operations.OperationStatusCancelled, cancelled.GetStatus())
	assert.NotNil(t, cancelled.EndTime)
}

func TestOperationStateStagesKeepOrder(t *testing.T) {
	state := operations.NewOperationState("run", "")
	state.SetStage("b", operations.NewStepState("b", "B"))
	state.SetStage("a", operations.NewStepState("a", "A"))
	state.SetStage("b", operations.NewStepState("b", "B again"))

	states := state.StageStates()
	require.Len(t, states, 2)
	assert.Equal(t, "b", states[0].ID)
	assert.Equal(t, "B again", states[0].Name)
	assert.Equal(t, "a", states[1].ID)

	assert.Nil(t, state.GetStage("missing"))
}

func TestOperationStateArtifacts(t *testing.T) {
	state := operations.NewOperationState("run", "")
	state.AddArtifact(operations.ArtifactCSV, "daily.csv")
	state.AddArtifact(operations.ArtifactPNG, "daily.png")

	got := state.Artifacts()
	assert.Equal(t, []operations.Artifact{
		{Kind: "csv", Path: "daily.csv"},
		{Kind: "png", Path: "daily.png"},
	}, got)

	// returned slice is a copy
	got[0].Path = "changed"
	assert.Equal(t, "daily.csv", state.Artifacts()[0].Path)
}
