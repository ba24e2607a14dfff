package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix namespaces every environment variable read by Load
const EnvPrefix = "TWEETPULSE"

// Config represents the complete application configuration
type Config struct {
	Logging   LoggingConfig   `yaml:"logging" envconfig:"LOGGING"`
	Paths     PathsConfig     `yaml:"paths" envconfig:"PATHS"`
	Pipeline  PipelineConfig  `yaml:"pipeline" envconfig:"PIPELINE"`
	Market    MarketConfig    `yaml:"market" envconfig:"MARKET"`
	Telemetry TelemetryConfig `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL" validate:"omitempty,oneof=debug info warn warning error"`
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT" validate:"omitempty,oneof=console file both"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig contains file system paths configuration.
// An empty BaseDir resolves everything relative to the executable.
type PathsConfig struct {
	BaseDir   string `yaml:"base_dir" envconfig:"BASE_DIR"`
	InputFile string `yaml:"input_file" envconfig:"INPUT_FILE"`
}

// PipelineConfig tunes the sentiment pipeline
type PipelineConfig struct {
	Workers     int  `yaml:"workers" envconfig:"WORKERS" validate:"min=1,max=256"`
	SkipPrices  bool `yaml:"skip_prices" envconfig:"SKIP_PRICES"`
	ChartWidth  int  `yaml:"chart_width" envconfig:"CHART_WIDTH" validate:"min=200"`
	ChartHeight int  `yaml:"chart_height" envconfig:"CHART_HEIGHT" validate:"min=150"`
}

// MarketConfig configures the market-data provider
type MarketConfig struct {
	BaseURL        string        `yaml:"base_url" envconfig:"BASE_URL" validate:"required,url"`
	Symbol         string        `yaml:"symbol" envconfig:"SYMBOL" validate:"required"`
	StartDate      string        `yaml:"start_date" envconfig:"START_DATE" validate:"required,datetime=2006-01-02"`
	EndDate        string        `yaml:"end_date" envconfig:"END_DATE" validate:"required,datetime=2006-01-02"`
	RequestTimeout time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
	MaxAttempts    int           `yaml:"max_attempts" envconfig:"MAX_ATTEMPTS" validate:"min=1,max=10"`
	InitialBackoff time.Duration `yaml:"initial_backoff" envconfig:"INITIAL_BACKOFF"`
	RateLimitWait  time.Duration `yaml:"rate_limit_wait" envconfig:"RATE_LIMIT_WAIT"`
	RequestsPerSec float64       `yaml:"requests_per_sec" envconfig:"REQUESTS_PER_SEC" validate:"gt=0"`
}

// TelemetryConfig controls tracing and metrics export
type TelemetryConfig struct {
	EnableTracing bool `yaml:"enable_tracing" envconfig:"ENABLE_TRACING"`
	EnableMetrics bool `yaml:"enable_metrics" envconfig:"ENABLE_METRICS"`
}

// Load loads configuration from defaults, an optional YAML file, a .env file
// and environment variables, in increasing order of precedence.
func Load() (*Config, error) {
	return LoadFrom(getConfigFilePath())
}

// LoadFrom is Load with an explicit YAML path; an empty path skips the file
func LoadFrom(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// .env only seeds variables that are not already set
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("failed to load .env: %w", err)
	}

	// No default tags: envconfig would otherwise overwrite file values
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays a YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// Validate checks the configuration and fills derived logging defaults
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		return err
	}

	start, end, err := c.Market.Range()
	if err != nil {
		return err
	}
	if !end.After(start) {
		return fmt.Errorf("market end date %s must be after start date %s", c.Market.EndDate, c.Market.StartDate)
	}

	// Logs are always JSON
	c.Logging.Format = "json"
	if c.Logging.Level == "" {
		c.Logging.Level = DefaultLogLevel
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "both"
	}

	return nil
}

// Range parses the configured market date range
func (m MarketConfig) Range() (time.Time, time.Time, error) {
	start, err := time.Parse(DateLayout, m.StartDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid market start date: %w", err)
	}
	end, err := time.Parse(DateLayout, m.EndDate)
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("invalid market end date: %w", err)
	}
	return start, end, nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return ""
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Logging: LoggingConfig{
			Level:    DefaultLogLevel,
			Format:   "json",
			Output:   "both",
			FilePath: "",
		},
		Pipeline: PipelineConfig{
			Workers:     DefaultWorkers,
			ChartWidth:  DefaultChartWidth,
			ChartHeight: DefaultChartHeight,
		},
		Market: MarketConfig{
			BaseURL:        DefaultMarketBaseURL,
			Symbol:         DefaultMarketSymbol,
			StartDate:      DefaultMarketStart,
			EndDate:        DefaultMarketEnd,
			RequestTimeout: DefaultHTTPTimeout,
			MaxAttempts:    DefaultFetchAttempts,
			InitialBackoff: DefaultFetchBackoff,
			RateLimitWait:  DefaultRateLimitBackoff,
			RequestsPerSec: DefaultRequestsPerSec,
		},
		Telemetry: TelemetryConfig{
			EnableTracing: true,
			EnableMetrics: true,
		},
	}
}
