package config

import (
	"fmt"
	"strings"

	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/pkg/envvar"
	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/pkg/formatting"
	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/pkg/middleware"
	"github.com/TanishBhandari286/AI-Plant-disease-Analysis/pkg/pagination"
)

const (
	EnvAPIBasePath      = "AGROVISION_API_BASE_PATH"
	EnvAPIMaxUploadSize = "AGROVISION_API_MAX_UPLOAD_SIZE"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "AGROVISION_CORS_ENABLED",
	Origins:          "AGROVISION_CORS_ORIGINS",
	AllowedMethods:   "AGROVISION_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "AGROVISION_CORS_ALLOWED_HEADERS",
	AllowCredentials: "AGROVISION_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "AGROVISION_CORS_MAX_AGE",
}

var paginationEnv = &pagination.ConfigEnv{
	DefaultPageSize: "AGROVISION_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "AGROVISION_PAGINATION_MAX_PAGE_SIZE",
}

// APIConfig holds API routing, upload limits, CORS, and pagination settings.
type APIConfig struct {
	BasePath      string                `toml:"base_path"`
	MaxUploadSize string                `toml:"max_upload_size"`
	CORS          middleware.CORSConfig `toml:"cors"`
	Pagination    pagination.Config     `toml:"pagination"`
}

// MaxUploadSizeBytes returns the multipart limit for one submission.
func (c *APIConfig) MaxUploadSizeBytes() int64 {
	size, err := formatting.ParseBytes(c.MaxUploadSize)
	if err != nil {
		return 30 * 1024 * 1024
	}
	return size
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested CORS and pagination configs.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxUploadSize != "" {
		c.MaxUploadSize = overlay.MaxUploadSize
	}

	c.CORS.Merge(&overlay.CORS)
	c.Pagination.Merge(&overlay.Pagination)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = "30MB"
	}
}

func (c *APIConfig) loadEnv() {
	envvar.String(&c.BasePath, EnvAPIBasePath)
	envvar.String(&c.MaxUploadSize, EnvAPIMaxUploadSize)
}

func (c *APIConfig) validate() error {
	if !strings.HasPrefix(c.BasePath, "/") {
		return fmt.Errorf("base_path must start with /: %q", c.BasePath)
	}
	if _, err := formatting.ParseBytes(c.MaxUploadSize); err != nil {
		return fmt.Errorf("invalid max_upload_size: %w", err)
	}
	return nil
}
