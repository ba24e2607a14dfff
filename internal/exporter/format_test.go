package exporter

import (
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
)

func TestFormatFloat(t *testing.T) {
	tests := []struct {
		name     string
		input    float64
		expected string
	}{
		{name: "zero value", input: 0, expected: "0.00"},
		{name: "integer", input: 123, expected: "123.00"},
		{name: "rounds half up", input: 13.456, expected: "13.46"},
		{name: "negative", input: -0.5, expected: "-0.50"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, formatFloat(tt.input))
		})
	}
}

func TestFormatRatio(t *testing.T) {
	assert.Equal(t, "0", formatRatio(0))
	assert.Equal(t, "1", formatRatio(1))
	assert.Equal(t, "0.5", formatRatio(0.5))
	assert.Equal(t, "0.6666666666666666", formatRatio(2.0/3.0))
}

func TestFormatInt(t *testing.T) {
	assert.Equal(t, "0", formatInt(0))
	assert.Equal(t, "1234567", formatInt(1234567))
}

func TestFormatDecimal(t *testing.T) {
	assert.Equal(t, "3843.52", formatDecimal(decimal.RequireFromString("3843.5200")))
	assert.Equal(t, "0.0001", formatDecimal(decimal.RequireFromString("0.0001")))
}
