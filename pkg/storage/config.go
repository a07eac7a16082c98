package storage

import (
	"fmt"

	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/pkg/envvar"
	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/pkg/formatting"
)

// Config holds Azure Blob Storage connection parameters. Either ConnectionString
// or AccountURL must be set; AccountURL authenticates with the default Azure
// credential chain.
type Config struct {
	ContainerName    string `toml:"container_name"`
	ConnectionString string `toml:"connection_string"`
	AccountURL       string `toml:"account_url"`
	MaxDownloadSize  string `toml:"max_download_size"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	ContainerName    string
	ConnectionString string
	AccountURL       string
	MaxDownloadSize  string
}

// MaxDownloadBytes returns MaxDownloadSize in bytes.
func (c *Config) MaxDownloadBytes() int64 {
	n, err := formatting.ParseBytes(c.MaxDownloadSize)
	if err != nil {
		return 20 * 1024 * 1024
	}
	return n
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.ContainerName != "" {
		c.ContainerName = overlay.ContainerName
	}
	if overlay.ConnectionString != "" {
		c.ConnectionString = overlay.ConnectionString
	}
	if overlay.AccountURL != "" {
		c.AccountURL = overlay.AccountURL
	}
	if overlay.MaxDownloadSize != "" {
		c.MaxDownloadSize = overlay.MaxDownloadSize
	}
}

func (c *Config) loadDefaults() {
	if c.ContainerName == "" {
		c.ContainerName = "crop-images"
	}
	if c.MaxDownloadSize == "" {
		c.MaxDownloadSize = "20MB"
	}
}

func (c *Config) loadEnv(env *Env) {
	envvar.String(&c.ContainerName, env.ContainerName)
	envvar.String(&c.ConnectionString, env.ConnectionString)
	envvar.String(&c.AccountURL, env.AccountURL)
	envvar.String(&c.MaxDownloadSize, env.MaxDownloadSize)
}

func (c *Config) validate() error {
	if c.ContainerName == "" {
		return fmt.Errorf("container_name required")
	}
	if c.ConnectionString == "" && c.AccountURL == "" {
		return fmt.Errorf("connection_string or account_url required")
	}
	if _, err := formatting.ParseBytes(c.MaxDownloadSize); err != nil {
		return fmt.Errorf("invalid max_download_size: %w", err)
	}
	return nil
}
