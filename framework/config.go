package framework

import "time"

// Config carries the runtime knobs shared by every strategy. It is assembled
// once (by the CLI or an embedding host) and treated as immutable afterwards,
// which makes concurrent runs against the same Config safe.
type Config struct {
	Model         string
	FastModel     string
	MaxSteps      int
	WallClock     time.Duration
	HistoryLimit  int
	HistoryWindow int
	MaxAttempts   int
	DebugAgent    bool
	DebugLLM      bool
	Telemetry     Telemetry
}

// Defaults fills unset fields with the documented runtime defaults.
func (c *Config) Defaults() {
	if c.MaxSteps <= 0 {
		c.MaxSteps = 15
	}
	if c.WallClock <= 0 {
		c.WallClock = 5 * time.Minute
	}
	if c.HistoryLimit <= 0 {
		c.HistoryLimit = DefaultHistoryLimit
	}
	if c.HistoryWindow <= 0 {
		c.HistoryWindow = 10
	}
	if c.MaxAttempts <= 0 {
		c.MaxAttempts = 3
	}
}

// ModelFor maps a tier onto a configured model name.
func (c *Config) ModelFor(tier Tier) string {
	if tier == TierFast && c.FastModel != "" {
		return c.FastModel
	}
	return c.Model
}
