// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"fmt"
	"time"
)

const (
	// EngineDocker drives the system Docker daemon.
	EngineDocker Engine = "docker"
	// EngineRootless drives a per-user rootless Docker daemon.
	EngineRootless Engine = "rootless"
)

var (
	// ErrInvalidEngine is the sentinel error wrapped by InvalidEngineError.
	ErrInvalidEngine = errors.New("invalid container engine")

	// ErrInvalidSSHPort is returned when the configured SSH port is out of range.
	ErrInvalidSSHPort = errors.New("invalid ssh port")

	// ErrInvalidTimeout is returned when a configured duration is not positive.
	ErrInvalidTimeout = errors.New("invalid timeout")
)

type (
	// Engine selects which container daemon podsmith drives.
	Engine string

	// InvalidEngineError is returned when an Engine value is not recognized.
	// It wraps ErrInvalidEngine for errors.Is() compatibility.
	InvalidEngineError struct {
		Value Engine
	}

	// SSHSettings configures the remote transport. An empty Host means
	// local execution.
	SSHSettings struct {
		Host    string `mapstructure:"host"`
		User    string `mapstructure:"user"`
		Port    int    `mapstructure:"port"`
		KeyPath string `mapstructure:"key_path"`
	}

	// UISettings configures command output.
	UISettings struct {
		Verbose bool `mapstructure:"verbose"`
	}

	// Config is the application configuration.
	Config struct {
		// Engine selects docker or rootless.
		Engine Engine `mapstructure:"engine"`
		// NamePrefix prefixes generated container names.
		NamePrefix string `mapstructure:"name_prefix"`
		// CommandTimeoutSeconds bounds each runtime CLI invocation.
		CommandTimeoutSeconds int `mapstructure:"command_timeout_seconds"`
		// SettleIntervalSeconds is the pause between create and inspect.
		SettleIntervalSeconds int `mapstructure:"settle_interval_seconds"`

		SSH SSHSettings `mapstructure:"ssh"`
		UI  UISettings  `mapstructure:"ui"`
	}
)

// Error implements the error interface.
func (e *InvalidEngineError) Error() string {
	return fmt.Sprintf("invalid container engine %q (must be %q or %q)", e.Value, EngineDocker, EngineRootless)
}

// Unwrap returns the sentinel for errors.Is().
func (e *InvalidEngineError) Unwrap() error {
	return ErrInvalidEngine
}

// Validate checks the engine value.
func (e Engine) Validate() error {
	switch e {
	case EngineDocker, EngineRootless:
		return nil
	default:
		return &InvalidEngineError{Value: e}
	}
}

// Validate checks the full configuration.
func (c *Config) Validate() error {
	if err := c.Engine.Validate(); err != nil {
		return err
	}
	if c.CommandTimeoutSeconds <= 0 {
		return fmt.Errorf("%w: command_timeout_seconds must be positive, got %d", ErrInvalidTimeout, c.CommandTimeoutSeconds)
	}
	if c.SettleIntervalSeconds < 0 {
		return fmt.Errorf("%w: settle_interval_seconds must not be negative, got %d", ErrInvalidTimeout, c.SettleIntervalSeconds)
	}
	if c.SSH.Host != "" && (c.SSH.Port < 1 || c.SSH.Port > 65535) {
		return fmt.Errorf("%w: %d", ErrInvalidSSHPort, c.SSH.Port)
	}
	return nil
}

// CommandTimeout returns the per-command timeout as a duration.
func (c *Config) CommandTimeout() time.Duration {
	return time.Duration(c.CommandTimeoutSeconds) * time.Second
}

// SettleInterval returns the create-to-inspect pause as a duration.
func (c *Config) SettleInterval() time.Duration {
	return time.Duration(c.SettleIntervalSeconds) * time.Second
}

// Remote reports whether commands should run over SSH.
func (c *Config) Remote() bool {
	return c.SSH.Host != ""
}

// DefaultConfig returns the configuration used when no config file exists.
func DefaultConfig() *Config {
	return &Config{
		Engine:                EngineDocker,
		NamePrefix:            "podsmith",
		CommandTimeoutSeconds: 120,
		SettleIntervalSeconds: 2,
		SSH: SSHSettings{
			Port: 22,
		},
	}
}
