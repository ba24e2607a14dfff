package operations_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tweetpulse/internal/operations"
	"tweetpulse/internal/operations/testutil"
)

func TestRegistryRegister(t *testing.T) {
	r := operations.NewRegistry()
	require.NoError(t, r.Register(testutil.NewMockStage("b")))
	require.NoError(t, r.Register(testutil.NewMockStage("a")))

	assert.Equal(t, 2, r.Count())
	assert.True(t, r.Has("a"))
	assert.False(t, r.Has("c"))
	assert.Equal(t, []string{"b", "a"}, r.ListIDs())

	steps := r.List()
	require.Len(t, steps, 2)
	assert.Equal(t, "b", steps[0].ID())

	got, err := r.Get("a")
	require.NoError(t, err)
	assert.Equal(t, "a", got.ID())

	_, err = r.Get("missing")
	assert.Error(t, err)
}

func TestRegistryRejects(t *testing.T) {
	r := operations.NewRegistry()

	assert.Error(t, r.Register(nil))
	assert.Error(t, r.Register(testutil.NewMockStage("")))

	require.NoError(t, r.Register(testutil.NewMockStage("dup")))
	assert.Error(t, r.Register(testutil.NewMockStage("dup")))
	assert.Equal(t, 1, r.Count())
}

func TestRegistryMustRegisterPanics(t *testing.T) {
	r := operations.NewRegistry()
	assert.Panics(t, func() {
		r.MustRegister(testutil.NewMockStage("x"), testutil.NewMockStage("x"))
	})
}

func TestConfigStageTimeouts(t *testing.T) {
	cfg := operations.NewConfig()
	assert.Equal(t, operations.DefaultPricesTimeout, cfg.GetStageTimeout(operations.StageIDPrices))
	assert.Equal(t, operations.DefaultStageTimeout, cfg.GetStageTimeout(operations.StageIDLoad))

	cfg.SetStageTimeout(operations.StageIDLoad, 0)
	assert.Equal(t, operations.DefaultStageTimeout, cfg.GetStageTimeout(operations.StageIDLoad))

	empty := &operations.Config{}
	empty.SetStageTimeout("x", 42)
	assert.EqualValues(t, 42, empty.GetStageTimeout("x"))

	var nilCfg *operations.Config
	assert.Equal(t, operations.DefaultStageTimeout, nilCfg.GetStageTimeout("x"))
}
