package geocode

import (
	"fmt"
	"time"

	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/pkg/envvar"
)

// DefaultBaseURL is the Google Geocoding JSON endpoint.
const DefaultBaseURL = "https://maps.googleapis.com/maps/api/geocode/json"

// Config holds reverse geocoding settings. An empty APIKey disables lookups.
type Config struct {
	APIKey    string  `toml:"api_key"`
	BaseURL   string  `toml:"base_url"`
	Timeout   string  `toml:"timeout"`
	RateLimit float64 `toml:"rate_limit"`
}

// Env maps config fields to environment variable names.
type Env struct {
	APIKey    string
	BaseURL   string
	Timeout   string
	RateLimit string
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
		c.RateLimit = 10
	}
	if env != nil {
		envvar.String(&c.APIKey, env.APIKey)
		envvar.String(&c.BaseURL, env.BaseURL)
		envvar.String(&c.Timeout, env.Timeout)
		envvar.Float(&c.RateLimit, env.RateLimit)
	}
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	if c.RateLimit <= 0 {
		return fmt.Errorf("rate_limit must be positive, got %v", c.RateLimit)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.APIKey != "" {
		c.APIKey = overlay.APIKey
	}
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if overlay.RateLimit > 0 {
		c.RateLimit = overlay.RateLimit
	}
}
