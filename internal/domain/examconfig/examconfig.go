package examconfig

import "time"

// Bounds offered by the settings screen.
const (
	MinQuestionCount = 10
	MaxQuestionCount = 100
	MinMinutes       = 10
	MaxMinutes       = 180
	MinPassScore     = 40
	MaxPassScore     = 100
)

// Config holds the mock exam defaults. It is owned by the persistence layer
// and read-only to sessions.
type Config struct {
	MockQuestionCount   int `json:"mockCount"`
	MockDurationMinutes int `json:"mockMinutes"`
	PassScorePercent    int `json:"passScore"`
}

// Default returns the stock 60 questions / 60 minutes / 60% configuration.
func Default() Config {
	return Config{
		MockQuestionCount:   60,
		MockDurationMinutes: 60,
		PassScorePercent:    60,
	}
}

// Normalize clamps every field into its allowed range. Zero values fall
// back to the defaults.
func (c Config) Normalize() Config {
	def := Default()
	if c.MockQuestionCount == 0 {
		c.MockQuestionCount = def.MockQuestionCount
	}
	if c.MockDurationMinutes == 0 {
		c.MockDurationMinutes = def.MockDurationMinutes
	}
	if c.PassScorePercent == 0 {
		c.PassScorePercent = def.PassScorePercent
	}
	c.MockQuestionCount = clamp(c.MockQuestionCount, MinQuestionCount, MaxQuestionCount)
	c.MockDurationMinutes = clamp(c.MockDurationMinutes, MinMinutes, MaxMinutes)
	c.PassScorePercent = clamp(c.PassScorePercent, MinPassScore, MaxPassScore)
	return c
}

// Duration is the mock time budget.
func (c Config) Duration() time.Duration {
	return time.Duration(c.MockDurationMinutes) * time.Minute
}

// Passed reports whether a percentage score meets the pass mark.
func (c Config) Passed(percent int) bool {
	return percent >= c.PassScorePercent
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}
