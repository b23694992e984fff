package config

import (
	"fmt"
	"net"
	"os"
	"strconv"
	"time"
)

const (
	EnvServerHost              = "STATECHECK_SERVER_HOST"
	EnvServerPort              = "STATECHECK_SERVER_PORT"
	EnvServerReadTimeout       = "STATECHECK_SERVER_READ_TIMEOUT"
	EnvServerReadHeaderTimeout = "STATECHECK_SERVER_READ_HEADER_TIMEOUT"
	EnvServerWriteTimeout      = "STATECHECK_SERVER_WRITE_TIMEOUT"
	EnvServerIdleTimeout       = "STATECHECK_SERVER_IDLE_TIMEOUT"
	EnvServerShutdownTimeout   = "STATECHECK_SERVER_SHUTDOWN_TIMEOUT"
)

// ServerConfig holds HTTP listener parameters. Timeouts are duration strings.
type ServerConfig struct {
	Host              string `toml:"host"`
	Port              int    `toml:"port"`
	ReadTimeout       string `toml:"read_timeout"`
	ReadHeaderTimeout string `toml:"read_header_timeout"`
	WriteTimeout      string `toml:"write_timeout"`
	IdleTimeout       string `toml:"idle_timeout"`
	ShutdownTimeout   string `toml:"shutdown_timeout"`
}

// Addr returns the listen address. IPv6 hosts are bracketed.
func (c *ServerConfig) Addr() string {
	return net.JoinHostPort(c.Host, strconv.Itoa(c.Port))
}

func (c *ServerConfig) ReadTimeoutDuration() time.Duration {
	return mustDuration(c.ReadTimeout)
}

func (c *ServerConfig) ReadHeaderTimeoutDuration() time.Duration {
	return mustDuration(c.ReadHeaderTimeout)
}

func (c *ServerConfig) WriteTimeoutDuration() time.Duration {
	return mustDuration(c.WriteTimeout)
}

func (c *ServerConfig) IdleTimeoutDuration() time.Duration {
	return mustDuration(c.IdleTimeout)
}

func (c *ServerConfig) ShutdownTimeoutDuration() time.Duration {
	return mustDuration(c.ShutdownTimeout)
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *ServerConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *ServerConfig) Merge(overlay *ServerConfig) {
	if overlay.Host != "" {
		c.Host = overlay.Host
	}
	if overlay.Port != 0 {
		c.Port = overlay.Port
	}
	for _, f := range c.timeouts(overlay) {
		if *f.src != "" {
			*f.dst = *f.src
		}
	}
}

func (c *ServerConfig) loadDefaults() {
	if c.Host == "" {
		c.Host = "0.0.0.0"
	}
	if c.Port == 0 {
		c.Port = 8080
	}
	defaults := map[*string]string{
		&c.ReadTimeout:       "15s",
		&c.ReadHeaderTimeout: "5s",
		&c.WriteTimeout:      "30s",
		&c.IdleTimeout:       "2m",
		&c.ShutdownTimeout:   "30s",
	}
	for field, value := range defaults {
		if *field == "" {
			*field = value
		}
	}
}

func (c *ServerConfig) loadEnv() {
	if v := os.Getenv(EnvServerHost); v != "" {
		c.Host = v
	}
	if v := os.Getenv(EnvServerPort); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Port = port
		}
	}
	for _, f := range c.timeouts(nil) {
		if v := os.Getenv(f.env); v != "" {
			*f.dst = v
		}
	}
}

func (c *ServerConfig) validate() error {
	if c.Port < 1 || c.Port > 65535 {
		return fmt.Errorf("invalid port: %d", c.Port)
	}
	for _, f := range c.timeouts(nil) {
		d, err := time.ParseDuration(*f.dst)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", f.name, err)
		}
		if d <= 0 {
			return fmt.Errorf("invalid %s: must be positive", f.name)
		}
	}
	return nil
}

type timeoutField struct {
	name string
	env  string
	dst  *string
	src  *string
}

// timeouts pairs each timeout field with its config name and env variable.
// src points into overlay when one is given.
func (c *ServerConfig) timeouts(overlay *ServerConfig) []timeoutField {
	fields := []timeoutField{
		{"read_timeout", EnvServerReadTimeout, &c.ReadTimeout, nil},
		{"read_header_timeout", EnvServerReadHeaderTimeout, &c.ReadHeaderTimeout, nil},
		{"write_timeout", EnvServerWriteTimeout, &c.WriteTimeout, nil},
		{"idle_timeout", EnvServerIdleTimeout, &c.IdleTimeout, nil},
		{"shutdown_timeout", EnvServerShutdownTimeout, &c.ShutdownTimeout, nil},
	}
	if overlay != nil {
		srcs := []*string{
			&overlay.ReadTimeout,
			&overlay.ReadHeaderTimeout,
			&overlay.WriteTimeout,
			&overlay.IdleTimeout,
			&overlay.ShutdownTimeout,
		}
		for i := range fields {
			fields[i].src = srcs[i]
		}
	}
	return fields
}

// mustDuration parses a duration that validate has already accepted.
func mustDuration(s string) time.Duration {
	d, _ := time.ParseDuration(s)
	return d
}
