// Package config provides centralized configuration management for TweetPulse.
// It handles loading configuration from multiple sources, validation, and
// executable-relative path resolution.
//
// # Configuration Sources
//
// Configuration is loaded from the following sources in order of precedence:
//
//	1. Environment variables (highest priority)
//	2. A .env file in the working directory
//	3. config.yaml (working directory or configs/)
//	4. Default values (lowest priority)
//
// # Environment Variables
//
// All environment variables follow the pattern TWEETPULSE_* for namespacing:
//
//	TWEETPULSE_LOGGING_LEVEL=debug
//	TWEETPULSE_PIPELINE_WORKERS=16
//	TWEETPULSE_MARKET_SYMBOL=ETH-USD
//	TWEETPULSE_MARKET_START_DATE=2015-01-01
//	TWEETPULSE_PATHS_BASE_DIR=/srv/tweetpulse
//
// # Path Management
//
// Paths lays out the data and log directories relative to the executable
// (or PathsConfig.BaseDir):
//
//	paths, _ := config.ResolvePaths(cfg.Paths)
//	chart := paths.GetChartPath("daily_sentiment.png")
//
// # Validation
//
// Configuration is validated at load time with go-playground/validator
// struct tags; the market date range must be well formed and non-empty.
package config
