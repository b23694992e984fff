package config

import (
	"fmt"
	"os"

	"github.com/JaimeStill/statecheck/pkg/formatting"
	"github.com/JaimeStill/statecheck/pkg/middleware"
)

const (
	EnvAPIBasePath    = "STATECHECK_API_BASE_PATH"
	EnvAPIMaxBodySize = "STATECHECK_API_MAX_BODY_SIZE"

	defaultMaxBodySize = 64 * 1024
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "STATECHECK_CORS_ENABLED",
	Origins:          "STATECHECK_CORS_ORIGINS",
	AllowedMethods:   "STATECHECK_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "STATECHECK_CORS_ALLOWED_HEADERS",
	AllowCredentials: "STATECHECK_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "STATECHECK_CORS_MAX_AGE",
}

// APIConfig holds API routing, request limits, and CORS settings.
type APIConfig struct {
	BasePath    string                `toml:"base_path"`
	MaxBodySize string                `toml:"max_body_size"`
	CORS        middleware.CORSConfig `toml:"cors"`
}

// MaxBodySizeBytes returns MaxBodySize in bytes.
func (c *APIConfig) MaxBodySizeBytes() int64 {
	size, err := formatting.ParseBytes(c.MaxBodySize)
	if err != nil || size <= 0 {
		return defaultMaxBodySize
	}
	return size
}

// Finalize applies defaults, environment variable overrides, and validation
// for the API config and its nested CORS config.
func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	return nil
}

// Merge overwrites non-zero fields from overlay across nested configs.
func (c *APIConfig) Merge(overlay *APIConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.MaxBodySize != "" {
		c.MaxBodySize = overlay.MaxBodySize
	}
	c.CORS.Merge(&overlay.CORS)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxBodySize == "" {
		c.MaxBodySize = "64KB"
	}
}

func (c *APIConfig) loadEnv() {
	if v := os.Getenv(EnvAPIBasePath); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv(EnvAPIMaxBodySize); v != "" {
		c.MaxBodySize = v
	}
}

func (c *APIConfig) validate() error {
	if err := validateBasePath(c.BasePath); err != nil {
		return err
	}
	size, err := formatting.ParseBytes(c.MaxBodySize)
	if err != nil {
		return fmt.Errorf("invalid max_body_size: %w", err)
	}
	if size <= 0 {
		return fmt.Errorf("invalid max_body_size: %s", c.MaxBodySize)
	}
	return nil
}
