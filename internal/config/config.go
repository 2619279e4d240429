package config

import (
	"errors"
	"fmt"
	"net/url"
	"time"
)

// Config holds server configuration values.
type Config struct {
	Addr               string        `mapstructure:"addr" yaml:"addr"`
	ReadHeaderTimeout  time.Duration `mapstructure:"read_header_timeout" yaml:"read_header_timeout"`
	ShutdownTimeout    time.Duration `mapstructure:"shutdown_timeout" yaml:"shutdown_timeout"`
	LogLevel           string        `mapstructure:"log_level" yaml:"log_level"`
	AllowedOrigins     []string      `mapstructure:"allowed_origins" yaml:"allowed_origins"`
	MaxMessageBytes    int64         `mapstructure:"max_message_bytes" yaml:"max_message_bytes"`
	ClientBuffer       int           `mapstructure:"client_buffer" yaml:"client_buffer"`
	EphemeralRateLimit int           `mapstructure:"ephemeral_rate_limit" yaml:"ephemeral_rate_limit"`
	JournalPath        string        `mapstructure:"journal_path" yaml:"journal_path"`
	MDNSEnabled        bool          `mapstructure:"mdns_enabled" yaml:"mdns_enabled"`
	MDNSInstance       string        `mapstructure:"mdns_instance" yaml:"mdns_instance"`
}

// Default returns configuration with reasonable starter defaults.
func Default() Config {
	return Config{
		Addr:               ":3001",
		ReadHeaderTimeout:  5 * time.Second,
		ShutdownTimeout:    5 * time.Second,
		LogLevel:           "info",
		AllowedOrigins:     []string{"http://localhost:3000"},
		MaxMessageBytes:    1 << 20,
		ClientBuffer:       256,
		EphemeralRateLimit: 120,
		MDNSInstance:       "wirecanvas",
	}
}

// UpdateFrom overwrites non-zero values from other config into receiver.
func (c *Config) UpdateFrom(other Config) {
	if other.Addr != "" {
		c.Addr = other.Addr
	}
	if other.ReadHeaderTimeout != 0 {
		c.ReadHeaderTimeout = other.ReadHeaderTimeout
	}
	if other.ShutdownTimeout != 0 {
		c.ShutdownTimeout = other.ShutdownTimeout
	}
	if other.LogLevel != "" {
		c.LogLevel = other.LogLevel
	}
	if len(other.AllowedOrigins) > 0 {
		c.AllowedOrigins = other.AllowedOrigins
	}
	if other.MaxMessageBytes != 0 {
		c.MaxMessageBytes = other.MaxMessageBytes
	}
	if other.ClientBuffer != 0 {
		c.ClientBuffer = other.ClientBuffer
	}
	if other.EphemeralRateLimit != 0 {
		c.EphemeralRateLimit = other.EphemeralRateLimit
	}
	if other.JournalPath != "" {
		c.JournalPath = other.JournalPath
	}
	if other.MDNSEnabled {
		c.MDNSEnabled = true
	}
	if other.MDNSInstance != "" {
		c.MDNSInstance = other.MDNSInstance
	}
}

// AllowsAnyOrigin reports whether the origin list contains "*".
func (c *Config) AllowsAnyOrigin() bool {
	for _, o := range c.AllowedOrigins {
		if o == "*" {
			return true
		}
	}
	return false
}

// Validate checks values that would otherwise fail at startup.
func (c *Config) Validate() error {
	if c.Addr == "" {
		return errors.New("addr is required")
	}
	if c.MaxMessageBytes <= 0 {
		return fmt.Errorf("max_message_bytes must be positive, got %d", c.MaxMessageBytes)
	}
	if c.ClientBuffer < 0 {
		return fmt.Errorf("client_buffer must not be negative, got %d", c.ClientBuffer)
	}
	if len(c.AllowedOrigins) == 0 {
		return errors.New("allowed_origins must not be empty")
	}
	for _, o := range c.AllowedOrigins {
		if o == "*" {
			continue
		}
		u, err := url.Parse(o)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("allowed origin %q must be \"*\" or an http(s) origin", o)
		}
	}
	return nil
}
