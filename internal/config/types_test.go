// SPDX-License-Identifier: MPL-2.0

package config

import (
	"errors"
	"testing"
	"time"
)

func TestEngineValidate(t *testing.T) {
	tests := []struct {
		engine  Engine
		wantErr bool
	}{
		{EngineDocker, false},
		{EngineRootless, false},
		{"podman", true},
		{"", true},
	}

	for _, tt := range tests {
		err := tt.engine.Validate()
		if (err != nil) != tt.wantErr {
			t.Errorf("Engine(%q).Validate() = %v, wantErr %v", tt.engine, err, tt.wantErr)
		}
		if err != nil && !errors.Is(err, ErrInvalidEngine) {
			t.Errorf("Engine(%q).Validate() must wrap ErrInvalidEngine, got %v", tt.engine, err)
		}
	}
}

func TestConfigValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr error
	}{
		{name: "defaults are valid", mutate: func(*Config) {}},
		{
			name:    "bad engine",
			mutate:  func(c *Config) { c.Engine = "lxc" },
			wantErr: ErrInvalidEngine,
		},
		{
			name:    "zero timeout",
			mutate:  func(c *Config) { c.CommandTimeoutSeconds = 0 },
			wantErr: ErrInvalidTimeout,
		},
		{
			name:    "negative settle interval",
			mutate:  func(c *Config) { c.SettleIntervalSeconds = -1 },
			wantErr: ErrInvalidTimeout,
		},
		{
			name: "ssh port out of range",
			mutate: func(c *Config) {
				c.SSH.Host = "10.0.0.5"
				c.SSH.Port = 99999
			},
			wantErr: ErrInvalidSSHPort,
		},
		{
			name: "ssh port ignored without host",
			mutate: func(c *Config) {
				c.SSH.Port = 0
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := DefaultConfig()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == nil && err != nil {
				t.Errorf("Validate() = %v, want nil", err)
			}
			if tt.wantErr != nil && !errors.Is(err, tt.wantErr) {
				t.Errorf("Validate() = %v, want %v", err, tt.wantErr)
			}
		})
	}
}

func TestConfigDurations(t *testing.T) {
	cfg := DefaultConfig()

	if cfg.CommandTimeout() != 120*time.Second {
		t.Errorf("CommandTimeout() = %v", cfg.CommandTimeout())
	}
	if cfg.SettleInterval() != 2*time.Second {
		t.Errorf("SettleInterval() = %v", cfg.SettleInterval())
	}
}

func TestConfigRemote(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Remote() {
		t.Error("defaults must be local")
	}
	cfg.SSH.Host = "10.0.0.5"
	if !cfg.Remote() {
		t.Error("a configured host selects the remote transport")
	}
}
