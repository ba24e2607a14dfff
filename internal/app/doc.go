// Package app wires configuration, logging, telemetry and the analysis
// pipeline into a runnable application.
//
// # Initialization Flow
//
//	1. Load configuration from defaults, YAML, .env and the environment
//	2. Apply command-line overrides and validate
//	3. Resolve and create the data, reports and logs directories
//	4. Initialize the JSON logger and OpenTelemetry providers
//	5. Build the market provider, exporters and pipeline steps
//
// Run executes the pipeline once. Close writes the collected metrics to the
// reports directory, flushes spans and releases the log file.
package app
