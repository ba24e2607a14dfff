package exporter

import (
	"strconv"

	"github.com/shopspring/decimal"
)

// formatFloat formats a float64 value for CSV output with exactly 2 decimal places
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', 2, 64)
}

// formatRatio keeps the shortest exact representation, for values in [0, 1]
func formatRatio(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}

// formatInt formats an int64 value for CSV output
func formatInt(i int64) string {
	return strconv.FormatInt(i, 10)
}

// formatDecimal formats a price without losing precision
func formatDecimal(d decimal.Decimal) string {
	return d.String()
}
