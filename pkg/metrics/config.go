package metrics

import (
	"fmt"
	"strings"

	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/pkg/envvar"
)

// Config controls the Prometheus exposition endpoint.
type Config struct {
	Enabled bool   `toml:"enabled"`
	Path    string `toml:"path"`
}

// Env maps config fields to environment variable names.
type Env struct {
	Enabled string
	Path    string
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	if c.Path == "" {
		c.Path = "/metrics"
	}
	if env != nil {
		envvar.Bool(&c.Enabled, env.Enabled)
		envvar.String(&c.Path, env.Path)
	}
	if !strings.HasPrefix(c.Path, "/") {
		return fmt.Errorf("metrics path must start with /: %s", c.Path)
	}
	return nil
}

// Merge overwrites fields from overlay. Enabled always applies.
func (c *Config) Merge(overlay *Config) {
	c.Enabled = overlay.Enabled
	if overlay.Path != "" {
		c.Path = overlay.Path
	}
}
