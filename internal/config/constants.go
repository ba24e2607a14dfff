package config

import (
	"time"

	"tweetpulse/pkg/contracts"
)

// Application constants
const (
	// Application Info
	AppName    = "TweetPulse"
	AppVersion = contracts.Version

	// DateLayout is the calendar-day format used in config and file names
	DateLayout = "2006-01-02"

	// Default input dataset
	DefaultInputFile = "bitcoin_tweets.csv"

	// Market data; the end date is exclusive
	DefaultMarketBaseURL    = "https://query1.finance.yahoo.com"
	DefaultMarketSymbol     = "BTC-USD"
	DefaultMarketStart      = "2009-01-01"
	DefaultMarketEnd        = "2020-01-01"
	DefaultHTTPTimeout      = 30 * time.Second
	DefaultFetchAttempts    = 3
	DefaultFetchBackoff     = 2 * time.Second
	DefaultRateLimitBackoff = 30 * time.Second
	DefaultRequestsPerSec   = 1.0

	// Pipeline
	DefaultWorkers     = 8
	DefaultChartWidth  = 1000
	DefaultChartHeight = 600

	// File Paths (relative to executable)
	DefaultDataDir    = "data"
	DefaultInputDir   = "data/input"
	DefaultReportsDir = "data/reports"
	DefaultChartsDir  = "data/reports/charts"
	DefaultLogsDir    = "logs"

	// Well-known output files
	WorkbookFileName = "sentiment_report.xlsx"
	MetricsFileName  = "metrics.prom"
	TracesFileName   = "traces.json"

	// Log Settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)
