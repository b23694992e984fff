package config

import (
	"fmt"
	"os"
	"strings"
)

const (
	EnvAppBasePath = "STATECHECK_APP_BASE_PATH"
	EnvAppTitle    = "STATECHECK_APP_TITLE"
)

// AppConfig holds settings for the diagnostic page.
type AppConfig struct {
	BasePath string `toml:"base_path"`
	Title    string `toml:"title"`
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *AppConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return validateBasePath(c.BasePath)
}

// Merge overwrites non-zero fields from overlay.
func (c *AppConfig) Merge(overlay *AppConfig) {
	if overlay.BasePath != "" {
		c.BasePath = overlay.BasePath
	}
	if overlay.Title != "" {
		c.Title = overlay.Title
	}
}

func (c *AppConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/app"
	}
	if c.Title == "" {
		c.Title = "Session State Check"
	}
}

func (c *AppConfig) loadEnv() {
	if v := os.Getenv(EnvAppBasePath); v != "" {
		c.BasePath = v
	}
	if v := os.Getenv(EnvAppTitle); v != "" {
		c.Title = v
	}
}

// validateBasePath requires a module prefix such as "/api": a leading slash,
// no trailing slash, and not the root.
func validateBasePath(p string) error {
	if !strings.HasPrefix(p, "/") || p == "/" || strings.HasSuffix(p, "/") {
		return fmt.Errorf("invalid base_path: %q", p)
	}
	return nil
}
