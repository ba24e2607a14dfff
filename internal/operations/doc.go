// Package operations runs the analysis pipeline as an ordered list of steps.
//
// A Manager executes the steps registered in a Registry one after another
// against a shared OperationState. Each step reads what earlier steps stored
// and adds its own outputs. The first failing step halts the run and the
// remaining steps are marked skipped. A step may skip itself without failing
// the run by returning an error that wraps ErrSkipStep; the market prices
// step does this when the price source is unavailable.
//
// Every step runs under its own timeout from Config and inside its own
// OpenTelemetry span. Step outcomes are recorded as pipeline metrics.
package operations
