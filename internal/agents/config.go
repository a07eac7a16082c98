package agents

import (
	"fmt"
	"slices"
	"time"

	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/pkg/envvar"
)

const (
	ProviderOpenAI    = "openai"
	ProviderGemini    = "gemini"
	ProviderAnthropic = "anthropic"
	ProviderNone      = "none"
)

var providers = []string{ProviderOpenAI, ProviderGemini, ProviderAnthropic, ProviderNone}

// Config describes one model endpoint. Temperature and TopP are pointers so
// that an explicit zero survives Merge.
type Config struct {
	Provider    string   `toml:"provider"`
	Model       string   `toml:"model"`
	APIKey      string   `toml:"api_key"`
	BaseURL     string   `toml:"base_url"`
	Timeout     string   `toml:"timeout"`
	Temperature *float64 `toml:"temperature"`
	TopP        *float64 `toml:"top_p"`
	TopK        int      `toml:"top_k"`
	MaxTokens   int      `toml:"max_tokens"`
	RateLimit   float64  `toml:"rate_limit"`
	Burst       int      `toml:"burst"`
}

// Env maps config fields to environment variable names.
type Env struct {
	Provider    string
	Model       string
	APIKey      string
	BaseURL     string
	Timeout     string
	Temperature string
	TopP        string
	TopK        string
	MaxTokens   string
	RateLimit   string
	Burst       string
}

// ClassifierDefaults returns the vision classifier settings: deterministic,
// JSON output capped at 800 tokens.
func ClassifierDefaults() Config {
	return Config{
		Provider:    ProviderOpenAI,
		Model:       "gpt-4o",
		Timeout:     "60s",
		Temperature: ptr(0.0),
		MaxTokens:   800,
		RateLimit:   5,
		Burst:       3,
	}
}

// ReasonerDefaults returns the verification and chat model settings.
func ReasonerDefaults() Config {
	return Config{
		Provider:    ProviderGemini,
		Model:       "gemini-2.5-flash",
		Timeout:     "90s",
		Temperature: ptr(0.3),
		TopP:        ptr(0.8),
		TopK:        40,
		MaxTokens:   1024,
		RateLimit:   2,
		Burst:       2,
	}
}

// Enabled reports whether a provider is configured.
func (c *Config) Enabled() bool {
	return c.Provider != ProviderNone
}

// TimeoutDuration returns Timeout as a time.Duration.
func (c *Config) TimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.Timeout)
	return d
}

func (c *Config) temperature() float64 {
	if c.Temperature == nil {
		return 0
	}
	return *c.Temperature
}

// Finalize layers c over defaults, applies environment overrides, and
// validates the result.
func (c *Config) Finalize(defaults Config, env *Env) error {
	defaults.Merge(c)
	*c = defaults
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.Provider != "" {
		c.Provider = overlay.Provider
	}
	if overlay.Model != "" {
		c.Model = overlay.Model
	}
	if overlay.APIKey != "" {
		c.APIKey = overlay.APIKey
	}
	if overlay.BaseURL != "" {
		c.BaseURL = overlay.BaseURL
	}
	if overlay.Timeout != "" {
		c.Timeout = overlay.Timeout
	}
	if overlay.Temperature != nil {
		c.Temperature = ptr(*overlay.Temperature)
	}
	if overlay.TopP != nil {
		c.TopP = ptr(*overlay.TopP)
	}
	if overlay.TopK != 0 {
		c.TopK = overlay.TopK
	}
	if overlay.MaxTokens != 0 {
		c.MaxTokens = overlay.MaxTokens
	}
	if overlay.RateLimit != 0 {
		c.RateLimit = overlay.RateLimit
	}
	if overlay.Burst != 0 {
		c.Burst = overlay.Burst
	}
}

func (c *Config) loadEnv(env *Env) {
	envvar.String(&c.Provider, env.Provider)
	envvar.String(&c.Model, env.Model)
	envvar.String(&c.APIKey, env.APIKey)
	envvar.String(&c.BaseURL, env.BaseURL)
	envvar.String(&c.Timeout, env.Timeout)
	envvar.Int(&c.TopK, env.TopK)
	envvar.Int(&c.MaxTokens, env.MaxTokens)
	envvar.Float(&c.RateLimit, env.RateLimit)
	envvar.Int(&c.Burst, env.Burst)

	t := c.temperature()
	envvar.Float(&t, env.Temperature)
	c.Temperature = &t

	if c.TopP != nil {
		envvar.Float(c.TopP, env.TopP)
	} else {
		var p float64
		envvar.Float(&p, env.TopP)
		if p > 0 {
			c.TopP = &p
		}
	}
}

func (c *Config) validate() error {
	if !slices.Contains(providers, c.Provider) {
		return fmt.Errorf("%w: %q", ErrUnsupportedProvider, c.Provider)
	}
	if !c.Enabled() {
		return nil
	}
	if c.Model == "" {
		return fmt.Errorf("model required")
	}
	if c.APIKey == "" {
		return ErrMissingAPIKey
	}
	if _, err := time.ParseDuration(c.Timeout); err != nil {
		return fmt.Errorf("invalid timeout: %w", err)
	}
	if t := c.temperature(); t < 0 || t > 2 {
		return fmt.Errorf("temperature must be between 0 and 2")
	}
	if c.TopP != nil && (*c.TopP <= 0 || *c.TopP > 1) {
		return fmt.Errorf("top_p must be in (0, 1]")
	}
	if c.MaxTokens <= 0 {
		return fmt.Errorf("max_tokens must be positive")
	}
	if c.RateLimit < 0 {
		return fmt.Errorf("rate_limit must not be negative")
	}
	return nil
}

func ptr[T any](v T) *T { return &v }
