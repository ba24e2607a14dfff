package app

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tweetpulse/internal/config"
	"tweetpulse/internal/operations"
	"tweetpulse/internal/shared/testutil"
)

const chartBody = `{"chart":{"result":[{"meta":{"symbol":"BTC-USD"},
"timestamp":[1546300800,1546387200,1546473600],
"indicators":{"quote":[{"close":[3843.52,3943.41,3836.74]}]}}],"error":null}}`

type testEnv struct {
	dir   string
	input string
	cfg   *config.Config
	hits  atomic.Int32
}

func newTestEnv(t *testing.T, status int) *testEnv {
	t.Helper()
	env := &testEnv{dir: t.TempDir()}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		env.hits.Add(1)
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		fmt.Fprint(w, chartBody)
	}))
	t.Cleanup(srv.Close)

	env.input = testutil.WritePostsCSV(t, env.dir, "tweets.csv", [][]string{
		testutil.PostRow("2018-12-31 10:00:00", "great gains, love bitcoin", "10", "2", "1"),
		testutil.PostRow("2019-01-01 10:00:00", "awful dump, hate it", "3", "4", "0"),
		testutil.PostRow("2019-01-02 10:00:00", "happy new year", "8", "1", "2"),
	})

	cfg := config.Default()
	cfg.Paths.BaseDir = env.dir
	cfg.Market.BaseURL = srv.URL
	cfg.Market.StartDate = "2019-01-01"
	cfg.Market.EndDate = "2019-01-04"
	cfg.Market.MaxAttempts = 2
	cfg.Market.InitialBackoff = time.Millisecond
	cfg.Market.RateLimitWait = time.Millisecond
	cfg.Market.RequestsPerSec = 1000
	cfg.Pipeline.ChartWidth = 400
	cfg.Pipeline.ChartHeight = 300
	env.cfg = cfg
	return env
}

func (e *testEnv) options(t *testing.T) Options {
	logger, _ := testutil.NewTestLogger(t)
	return Options{
		Config:    e.cfg,
		InputPath: e.input,
		Logger:    logger,
	}
}

func TestNewApplication_Wiring(t *testing.T) {
	env := newTestEnv(t, http.StatusOK)
	app, err := NewApplication(env.options(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close(context.Background()) })

	assert.NotEmpty(t, app.RunID)
	assert.Equal(t, env.input, app.Paths.PostsFile)
	assert.DirExists(t, app.Paths.ReportsDir)
	assert.DirExists(t, app.Paths.LogsDir)
	assert.Equal(t, 8, app.Manager.GetRegistry().Count())
	assert.Equal(t, "BTC-USD", app.market.Symbol)
}

func TestNewApplication_Overrides(t *testing.T) {
	env := newTestEnv(t, http.StatusOK)
	opts := env.options(t)
	opts.Symbol = "ETH-USD"
	opts.StartDate = "2019-02-01"
	opts.EndDate = "2019-03-01"
	opts.Workers = 3
	opts.SkipPrices = true
	opts.OutputDir = filepath.Join(env.dir, "out")

	app, err := NewApplication(opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close(context.Background()) })

	assert.Equal(t, "ETH-USD", app.Config.Market.Symbol)
	assert.Equal(t, 3, app.Config.Pipeline.Workers)
	assert.True(t, app.Config.Pipeline.SkipPrices)
	assert.Equal(t, time.Date(2019, 2, 1, 0, 0, 0, 0, time.UTC), app.market.Start)
	assert.Equal(t, filepath.Join(env.dir, "out"), app.Paths.ReportsDir)
	assert.Equal(t, filepath.Join(env.dir, "out", config.WorkbookFileName), app.Paths.WorkbookFile)
}

func TestNewApplication_InvalidOverrides(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Options)
	}{
		{"end before start", func(o *Options) { o.StartDate = "2019-05-01"; o.EndDate = "2019-04-01" }},
		{"malformed date", func(o *Options) { o.StartDate = "01/05/2019" }},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			env := newTestEnv(t, http.StatusOK)
			opts := env.options(t)
			tt.mutate(&opts)
			_, err := NewApplication(opts)
			assert.Error(t, err)
		})
	}
}

func TestRun_WritesEveryArtifact(t *testing.T) {
	env := newTestEnv(t, http.StatusOK)
	app, err := NewApplication(env.options(t))
	require.NoError(t, err)

	resp, err := app.Run(context.Background())
	require.NoError(t, err)
	require.NoError(t, app.Close(context.Background()))

	assert.Equal(t, operations.OperationStatusCompleted, resp.Status)
	assert.EqualValues(t, 1, env.hits.Load())

	kinds := map[string]int{}
	for _, a := range resp.Artifacts {
		kinds[a.Kind]++
		assert.FileExists(t, a.Path)
	}
	assert.Equal(t, 5, kinds[operations.ArtifactCSV])
	assert.Equal(t, 6, kinds[operations.ArtifactPNG])
	assert.Equal(t, 1, kinds[operations.ArtifactXLSX])

	metrics, err := os.ReadFile(app.Paths.MetricsFile)
	require.NoError(t, err)
	assert.Contains(t, string(metrics), "tweetpulse_posts_loaded")
	assert.Contains(t, string(metrics), "tweetpulse_step_duration_seconds")

	assert.FileExists(t, app.Paths.TracesFile)
}

func TestRun_PriceOutageStillSucceeds(t *testing.T) {
	env := newTestEnv(t, http.StatusServiceUnavailable)
	app, err := NewApplication(env.options(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close(context.Background()) })

	resp, err := app.Run(context.Background())
	require.NoError(t, err)
	assert.Equal(t, operations.OperationStatusCompleted, resp.Status)
	assert.EqualValues(t, 2, env.hits.Load())

	for _, s := range resp.Steps {
		if s.ID == operations.StageIDPrices {
			assert.Equal(t, operations.StepStatusSkipped, s.GetStatus())
		}
	}
	assert.FileExists(t, app.Paths.WorkbookFile)
}

func TestRun_MissingInputFails(t *testing.T) {
	env := newTestEnv(t, http.StatusOK)
	opts := env.options(t)
	opts.InputPath = filepath.Join(env.dir, "absent.csv")

	app, err := NewApplication(opts)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close(context.Background()) })

	resp, err := app.Run(context.Background())
	require.Error(t, err)
	assert.Equal(t, operations.OperationStatusFailed, resp.Status)
	assert.EqualValues(t, 0, env.hits.Load())
}

func TestFetchPrices(t *testing.T) {
	env := newTestEnv(t, http.StatusOK)
	app, err := NewApplication(env.options(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close(context.Background()) })

	series, path, err := app.FetchPrices(context.Background(), "")
	require.NoError(t, err)
	assert.Equal(t, 3, series.Len())
	assert.Equal(t, filepath.Join(app.Paths.ReportsDir, "prices_BTC-USD_20190101_20190104.csv"), path)
	assert.FileExists(t, path)

	custom := filepath.Join(env.dir, "btc.csv")
	_, path, err = app.FetchPrices(context.Background(), custom)
	require.NoError(t, err)
	assert.Equal(t, custom, path)
}

func TestFetchPrices_Failure(t *testing.T) {
	env := newTestEnv(t, http.StatusNotFound)
	app, err := NewApplication(env.options(t))
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close(context.Background()) })

	_, path, err := app.FetchPrices(context.Background(), "")
	require.Error(t, err)
	assert.Empty(t, path)
	assert.EqualValues(t, 1, env.hits.Load())
}
