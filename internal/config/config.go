// Package config loads the service configuration from config.toml, an
// optional per-environment overlay, and AGROVISION_* environment variables.
package config

import (
	"fmt"
	"os"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/internal/agents"
	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/pkg/database"
	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/pkg/geocode"
	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/pkg/metrics"
	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/pkg/storage"
	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/pkg/weather"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvAgroVisionEnv             = "AGROVISION_ENV"
	EnvAgroVisionShutdownTimeout = "AGROVISION_SHUTDOWN_TIMEOUT"
	EnvAgroVisionVersion         = "AGROVISION_VERSION"
)

var databaseEnv = &database.Env{
	URL:             "AGROVISION_DB_URL",
	Host:            "AGROVISION_DB_HOST",
	Port:            "AGROVISION_DB_PORT",
	Name:            "AGROVISION_DB_NAME",
	User:            "AGROVISION_DB_USER",
	Password:        "AGROVISION_DB_PASSWORD",
	SSLMode:         "AGROVISION_DB_SSL_MODE",
	MaxOpenConns:    "AGROVISION_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "AGROVISION_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "AGROVISION_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "AGROVISION_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	ContainerName:    "AGROVISION_STORAGE_CONTAINER_NAME",
	ConnectionString: "AGROVISION_STORAGE_CONNECTION_STRING",
	AccountURL:       "AGROVISION_STORAGE_ACCOUNT_URL",
	MaxDownloadSize:  "AGROVISION_STORAGE_MAX_DOWNLOAD_SIZE",
}

var classifierEnv = agentEnv("AGROVISION_CLASSIFIER")

var reasoningEnv = agentEnv("AGROVISION_REASONING")

var weatherEnv = &weather.Env{
	BaseURL:      "AGROVISION_WEATHER_BASE_URL",
	Timeout:      "AGROVISION_WEATHER_TIMEOUT",
	RateLimit:    "AGROVISION_WEATHER_RATE_LIMIT",
	LookbackDays: "AGROVISION_WEATHER_LOOKBACK_DAYS",
}

var geocodeEnv = &geocode.Env{
	APIKey:    "AGROVISION_GEOCODE_API_KEY",
	BaseURL:   "AGROVISION_GEOCODE_BASE_URL",
	Timeout:   "AGROVISION_GEOCODE_TIMEOUT",
	RateLimit: "AGROVISION_GEOCODE_RATE_LIMIT",
}

var metricsEnv = &metrics.Env{
	Enabled: "AGROVISION_METRICS_ENABLED",
	Path:    "AGROVISION_METRICS_PATH",
}

func agentEnv(prefix string) *agents.Env {
	return &agents.Env{
		Provider:    prefix + "_PROVIDER",
		Model:       prefix + "_MODEL",
		APIKey:      prefix + "_API_KEY",
		BaseURL:     prefix + "_BASE_URL",
		Timeout:     prefix + "_TIMEOUT",
		Temperature: prefix + "_TEMPERATURE",
		TopP:        prefix + "_TOP_P",
		TopK:        prefix + "_TOP_K",
		MaxTokens:   prefix + "_MAX_TOKENS",
		RateLimit:   prefix + "_RATE_LIMIT",
		Burst:       prefix + "_BURST",
	}
}

// Config is the root configuration for the AgroVision service.
type Config struct {
	Server          ServerConfig    `toml:"server"`
	Database        database.Config `toml:"database"`
	Storage         storage.Config  `toml:"storage"`
	API             APIConfig       `toml:"api"`
	Classifier      agents.Config   `toml:"classifier"`
	Reasoning       agents.Config   `toml:"reasoning"`
	Pipeline        PipelineConfig  `toml:"pipeline"`
	Weather         weather.Config  `toml:"weather"`
	Geocode         geocode.Config  `toml:"geocode"`
	Metrics         metrics.Config  `toml:"metrics"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`
}

// Env returns the AGROVISION_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvAgroVisionEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.Finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Parse decodes TOML data into a Config without finalizing it.
func Parse(data []byte) (*Config, error) {
	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}
	return &cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.API.Merge(&overlay.API)
	c.Classifier.Merge(&overlay.Classifier)
	c.Reasoning.Merge(&overlay.Reasoning)
	c.Pipeline.Merge(&overlay.Pipeline)
	c.Weather.Merge(&overlay.Weather)
	c.Geocode.Merge(&overlay.Geocode)
	c.Metrics.Merge(&overlay.Metrics)
}

// Finalize applies defaults, environment overrides, and validation to every
// section.
func (c *Config) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Classifier.Finalize(agents.ClassifierDefaults(), classifierEnv); err != nil {
		return fmt.Errorf("classifier: %w", err)
	}
	if !c.Classifier.Enabled() {
		return fmt.Errorf("classifier: provider %q cannot classify", c.Classifier.Provider)
	}
	if err := c.Reasoning.Finalize(agents.ReasonerDefaults(), reasoningEnv); err != nil {
		return fmt.Errorf("reasoning: %w", err)
	}
	if err := c.Pipeline.Finalize(); err != nil {
		return fmt.Errorf("pipeline: %w", err)
	}
	if err := c.Weather.Finalize(weatherEnv); err != nil {
		return fmt.Errorf("weather: %w", err)
	}
	if err := c.Geocode.Finalize(geocodeEnv); err != nil {
		return fmt.Errorf("geocode: %w", err)
	}
	if err := c.Metrics.Finalize(metricsEnv); err != nil {
		return fmt.Errorf("metrics: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvAgroVisionShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvAgroVisionVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

func overlayPath() string {
	if env := os.Getenv(EnvAgroVisionEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
