package sessions

import (
	"fmt"
	"net/http"
	"os"
	"strconv"
	"time"
)

// Config holds session cookie and expiry settings.
type Config struct {
	CookieName    string `toml:"cookie_name"`
	Secure        bool   `toml:"secure"`
	IdleTimeout   string `toml:"idle_timeout"`
	SweepInterval string `toml:"sweep_interval"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	CookieName    string
	Secure        string
	IdleTimeout   string
	SweepInterval string
}

// IdleTimeoutDuration returns IdleTimeout as a time.Duration.
func (c *Config) IdleTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.IdleTimeout)
	return d
}

// SweepIntervalDuration returns SweepInterval as a time.Duration.
func (c *Config) SweepIntervalDuration() time.Duration {
	d, _ := time.ParseDuration(c.SweepInterval)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay. Secure always applies.
func (c *Config) Merge(overlay *Config) {
	if overlay.CookieName != "" {
		c.CookieName = overlay.CookieName
	}
	if overlay.IdleTimeout != "" {
		c.IdleTimeout = overlay.IdleTimeout
	}
	if overlay.SweepInterval != "" {
		c.SweepInterval = overlay.SweepInterval
	}
	c.Secure = overlay.Secure
}

func (c *Config) loadDefaults() {
	if c.CookieName == "" {
		c.CookieName = "statecheck_session"
	}
	if c.IdleTimeout == "" {
		c.IdleTimeout = "30m"
	}
	if c.SweepInterval == "" {
		c.SweepInterval = "1m"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.CookieName != "" {
		if v := os.Getenv(env.CookieName); v != "" {
			c.CookieName = v
		}
	}
	if env.Secure != "" {
		if v := os.Getenv(env.Secure); v != "" {
			if secure, err := strconv.ParseBool(v); err == nil {
				c.Secure = secure
			}
		}
	}
	if env.IdleTimeout != "" {
		if v := os.Getenv(env.IdleTimeout); v != "" {
			c.IdleTimeout = v
		}
	}
	if env.SweepInterval != "" {
		if v := os.Getenv(env.SweepInterval); v != "" {
			c.SweepInterval = v
		}
	}
}

func (c *Config) validate() error {
	if err := (&http.Cookie{Name: c.CookieName, Value: "x"}).Valid(); err != nil {
		return fmt.Errorf("invalid cookie_name: %w", err)
	}
	idle, err := time.ParseDuration(c.IdleTimeout)
	if err != nil {
		return fmt.Errorf("invalid idle_timeout: %w", err)
	}
	if idle <= 0 {
		return fmt.Errorf("idle_timeout must be positive: %s", c.IdleTimeout)
	}
	sweep, err := time.ParseDuration(c.SweepInterval)
	if err != nil {
		return fmt.Errorf("invalid sweep_interval: %w", err)
	}
	if sweep <= 0 {
		return fmt.Errorf("sweep_interval must be positive: %s", c.SweepInterval)
	}
	return nil
}
