package operations

import (
	"time"
)

// Config represents the operation execution configuration
type Config struct {
	// Step-specific timeouts
	StageTimeouts map[string]time.Duration `json:"stage_timeouts"`
}

// NewConfig returns the default operation configuration
func NewConfig() *Config {
	return &Config{
		StageTimeouts: map[string]time.Duration{
			StageIDPrices: DefaultPricesTimeout,
		},
	}
}

// GetStageTimeout returns the timeout for a specific Step
func (c *Config) GetStageTimeout(stageID string) time.Duration {
	if c != nil {
		if timeout, ok := c.StageTimeouts[stageID]; ok && timeout > 0 {
			return timeout
		}
	}
	return DefaultStageTimeout
}

// SetStageTimeout sets the timeout for a specific Step
func (c *Config) SetStageTimeout(stageID string, timeout time.Duration) {
	if c.StageTimeouts == nil {
		c.StageTimeouts = make(map[string]time.Duration)
	}
	c.StageTimeouts[stageID] = timeout
}
