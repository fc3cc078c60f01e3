// SPDX-License-Identifier: MPL-2.0

package transport

import (
	"context"
	"errors"
	"testing"
	"time"

	"golang.org/x/crypto/ssh"
)

type failingSessionClient struct {
	err error
}

func (f *failingSessionClient) NewSession() (*ssh.Session, error) {
	return nil, f.err
}

func TestSSHTransport_SessionFailureIsTransportFailure(t *testing.T) {
	tr := NewSSHTransport(&failingSessionClient{err: errors.New("connection lost")})

	res := tr.Run(context.Background(), "docker ps", time.Second)

	if !res.TransportFailed() {
		t.Fatalf("expected transport failure, got %+v", res)
	}
	if res.Stderr != "open SSH session: connection lost" {
		t.Errorf("Stderr = %q", res.Stderr)
	}
}

func TestSSHTransport_Context(t *testing.T) {
	tr := NewSSHTransport(&failingSessionClient{err: errors.New("x")})
	if tr.Context() != ContextSSH {
		t.Errorf("Context() = %q", tr.Context())
	}
}

func TestSSHConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		cfg     SSHConfig
		wantErr bool
	}{
		{
			name:    "valid with key",
			cfg:     SSHConfig{Host: "10.0.0.1", User: "ops", KeyPath: "/home/ops/.ssh/id_ed25519"},
			wantErr: false,
		},
		{
			name:    "valid with password",
			cfg:     SSHConfig{Host: "10.0.0.1", User: "ops", Password: "hunter2"},
			wantErr: false,
		},
		{
			name:    "missing host",
			cfg:     SSHConfig{User: "ops", KeyPath: "/k"},
			wantErr: true,
		},
		{
			name:    "missing user",
			cfg:     SSHConfig{Host: "10.0.0.1", KeyPath: "/k"},
			wantErr: true,
		},
		{
			name:    "missing credentials",
			cfg:     SSHConfig{Host: "10.0.0.1", User: "ops"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.cfg.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}
