package weather

import (
	"fmt"
	"time"

	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/pkg/envvar"
)

// DefaultBaseURL is the Open-Meteo historical archive endpoint.
const DefaultBaseURL = "https://archive-api.open-meteo.com/v1/archive"

// Config holds Open-Meteo client settings.
type Config struct {
	BaseURL      string  `toml:"base_url"`
	Timeout      string  `toml:"timeout"`
	RateLimit    float64 `toml:"rate_limit"`
	LookbackDays int     `toml:"lookback_days"`
}

// Env maps config fields to environment variable names.
type Env struct {
	BaseURL      string
	Timeout      string
	RateLimit    string
	LookbackDays string
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	if c.BaseURL == "" {
		c.BaseURL = DefaultBaseURL
	}
	if c.Timeout == "" {
		c.Timeout = "10s"
	}
	if c.RateLimit <= 0 {
		c.RateLimit = 5
	}
	if c.LookbackDays <= 0 {
		c.LookbackDays = 7
	}
	if env != nil {
		envvar.String(&c.BaseURL, env.BaseURL)
		envvar.String(&c.Timeout, env.Timeout)
		envvar.Float(&c.RateLimit, env.RateLimit)
		envvar.Int(&c.LookbackDays, env.LookbackDays)
	}
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	if c.RateLimit <= 0 {
		return fmt.Errorf("rate_limit must be positive, got %v", c.RateLimit)
	}
	if c.LookbackDays <= 0 {
		return fmt.Errorf("lookback_days must be positive, got %d", c.LookbackDays)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if overlay.RateLimit > 0 {
		c.RateLimit = overlay.RateLimit
	}
	if overlay.LookbackDays > 0 {
		c.LookbackDays = overlay.LookbackDays
	}
}
