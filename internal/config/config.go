package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/statecheck/internal/sessions"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvStatecheckEnv             = "STATECHECK_ENV"
	EnvStatecheckShutdownTimeout = "STATECHECK_SHUTDOWN_TIMEOUT"
	EnvStatecheckVersion         = "STATECHECK_VERSION"
	EnvStatecheckLogLevel        = "STATECHECK_LOG_LEVEL"
)

var sessionEnv = &sessions.Env{
	CookieName:    "STATECHECK_SESSION_COOKIE_NAME",
	Secure:        "STATECHECK_SESSION_SECURE",
	IdleTimeout:   "STATECHECK_SESSION_IDLE_TIMEOUT",
	SweepInterval: "STATECHECK_SESSION_SWEEP_INTERVAL",
}

// Config is the root configuration for the statecheck service.
type Config struct {
	Server          ServerConfig    `toml:"server"`
	API             APIConfig       `toml:"api"`
	App             AppConfig       `toml:"app"`
	Session         sessions.Config `toml:"session"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`
	LogLevel        string          `toml:"log_level"`
}

// Env returns the STATECHECK_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvStatecheckEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// SlogLevel returns LogLevel as a slog.Level.
func (c *Config) SlogLevel() slog.Level {
	level, _ := parseLevel(c.LogLevel)
	return level
}

// Load reads config.toml from the working directory (if present), applies any
// environment overlay, and finalizes all values.
func Load() (*Config, error) {
	return LoadFile(BaseConfigFile)
}

// LoadFile behaves like Load with an explicit base config path. The overlay
// config.<env>.toml is resolved next to it. A missing base file is not an
// error; defaults and environment variables provide all configuration.
func LoadFile(path string) (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(path); err == nil {
		loaded, err := load(path)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if overlay := overlayPath(path); overlay != "" {
		o, err := load(overlay)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", overlay, err)
		}
		cfg.Merge(o)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	if overlay.LogLevel != "" {
		c.LogLevel = overlay.LogLevel
	}
	c.Server.Merge(&overlay.Server)
	c.API.Merge(&overlay.API)
	c.App.Merge(&overlay.App)
	c.Session.Merge(&overlay.Session)
}

// Marshal renders the config as TOML.
func (c *Config) Marshal() ([]byte, error) {
	return toml.Marshal(c)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.App.Finalize(); err != nil {
		return fmt.Errorf("app: %w", err)
	}
	if err := c.Session.Finalize(sessionEnv); err != nil {
		return fmt.Errorf("session: %w", err)
	}
	if c.API.BasePath == c.App.BasePath {
		return fmt.Errorf("api and app base paths collide: %s", c.API.BasePath)
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
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvStatecheckShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvStatecheckVersion); v != "" {
		c.Version = v
	}
	if v := os.Getenv(EnvStatecheckLogLevel); v != "" {
		c.LogLevel = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	if _, err := parseLevel(c.LogLevel); err != nil {
		return err
	}
	return nil
}

func parseLevel(s string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(strings.TrimSpace(s))); err != nil {
		return slog.LevelInfo, fmt.Errorf("invalid log_level: %w", err)
	}
	return level, nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath(base string) string {
	env := os.Getenv(EnvStatecheckEnv)
	if env == "" {
		return ""
	}

	dir := ""
	if i := strings.LastIndexAny(base, `/\`); i >= 0 {
		dir = base[:i+1]
	}

	path := dir + fmt.Sprintf(OverlayConfigPattern, env)
	if _, err := os.Stat(path); err == nil {
		return path
	}
	return ""
}
