package config

import (
	"fmt"
	"time"

	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/pkg/envvar"
)

const (
	EnvPipelineEnsembleRuns    = "AGROVISION_PIPELINE_ENSEMBLE_RUNS"
	EnvPipelineVerify          = "AGROVISION_PIPELINE_VERIFY"
	EnvPipelineProbeTimeout    = "AGROVISION_PIPELINE_PROBE_TIMEOUT"
	EnvPipelineDownloadTimeout = "AGROVISION_PIPELINE_DOWNLOAD_TIMEOUT"
	EnvPipelineChatTimeout     = "AGROVISION_PIPELINE_CHAT_TIMEOUT"
)

// PipelineConfig tunes the consultation pipeline. Verify is a pointer so an
// overlay can switch verification off.
type PipelineConfig struct {
	EnsembleRuns    int    `toml:"ensemble_runs"`
	Verify          *bool  `toml:"verify"`
	ProbeTimeout    string `toml:"probe_timeout"`
	DownloadTimeout string `toml:"download_timeout"`
	ChatTimeout     string `toml:"chat_timeout"`
}

// VerifyEnabled reports whether reference verification runs.
func (c *PipelineConfig) VerifyEnabled() bool {
	return c.Verify == nil || *c.Verify
}

func (c *PipelineConfig) ProbeTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ProbeTimeout)
	return d
}

func (c *PipelineConfig) DownloadTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.DownloadTimeout)
	return d
}

func (c *PipelineConfig) ChatTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ChatTimeout)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *PipelineConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *PipelineConfig) Merge(overlay *PipelineConfig) {
	if overlay.EnsembleRuns != 0 {
		c.EnsembleRuns = overlay.EnsembleRuns
	}
	if overlay.Verify != nil {
		v := *overlay.Verify
		c.Verify = &v
	}
	if overlay.ProbeTimeout != "" {
		c.ProbeTimeout = overlay.ProbeTimeout
	}
	if overlay.DownloadTimeout != "" {
		c.DownloadTimeout = overlay.DownloadTimeout
	}
	if overlay.ChatTimeout != "" {
		c.ChatTimeout = overlay.ChatTimeout
	}
}

func (c *PipelineConfig) loadDefaults() {
	if c.EnsembleRuns == 0 {
		c.EnsembleRuns = 3
	}
	if c.Verify == nil {
		v := true
		c.Verify = &v
	}
	if c.ProbeTimeout == "" {
		c.ProbeTimeout = "5s"
	}
	if c.DownloadTimeout == "" {
		c.DownloadTimeout = "15s"
	}
	if c.ChatTimeout == "" {
		c.ChatTimeout = "60s"
	}
}

func (c *PipelineConfig) loadEnv() {
	envvar.Int(&c.EnsembleRuns, EnvPipelineEnsembleRuns)
	envvar.Bool(c.Verify, EnvPipelineVerify)
	envvar.String(&c.ProbeTimeout, EnvPipelineProbeTimeout)
	envvar.String(&c.DownloadTimeout, EnvPipelineDownloadTimeout)
	envvar.String(&c.ChatTimeout, EnvPipelineChatTimeout)
}

func (c *PipelineConfig) validate() error {
	if c.EnsembleRuns < 1 || c.EnsembleRuns > 9 {
		return fmt.Errorf("ensemble_runs must be between 1 and 9, got %d", c.EnsembleRuns)
	}
	for name, v := range map[string]string{
		"probe_timeout":    c.ProbeTimeout,
		"download_timeout": c.DownloadTimeout,
		"chat_timeout":     c.ChatTimeout,
	} {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
		if d <= 0 {
			return fmt.Errorf("%s must be positive", name)
		}
	}
	return nil
}
