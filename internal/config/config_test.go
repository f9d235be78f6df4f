package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.NoError(t, err)

	require.Equal(t, ":8080", cfg.APIAddr)
	require.Equal(t, 5*time.Second, cfg.PollInterval)
	require.Equal(t, 30*time.Second, cfg.EvaluationInterval)
	require.Equal(t, 20, cfg.BufferCapacity)
	require.Equal(t, 60.0, cfg.Rules.ResponseTimeMs)
	require.Equal(t, 0.03, cfg.Rules.ErrorRate)
	require.Equal(t, 150, cfg.Rules.Connections)
	require.Equal(t, 5, cfg.Alerts.Capacity)
	require.False(t, cfg.NATS.Enabled)
	require.Empty(t, cfg.Services)
}

func TestLoad_File(t *testing.T) {
	path := writeConfig(t, `
poll_interval: 10s
buffer_capacity: 50
rules:
  error_rate: 0.1
services:
  - name: accounts
    url: http://localhost:8001/health
    description: Account management
  - name: payments
    url: http://localhost:8002/health
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	require.Equal(t, 10*time.Second, cfg.PollInterval)
	require.Equal(t, 50, cfg.BufferCapacity)
	require.Equal(t, 0.1, cfg.Rules.ErrorRate)
	// Unset keys keep their defaults.
	require.Equal(t, 60.0, cfg.Rules.ResponseTimeMs)

	require.Len(t, cfg.Services, 2)
	require.Equal(t, "accounts", cfg.Services[0].Name)
	require.Equal(t, "http://localhost:8002/health", cfg.Services[1].URL)
}

func TestValidate(t *testing.T) {
	cfg := &Config{}
	require.Error(t, cfg.Validate(), "empty service list must be reported")

	cfg.Services = []ServiceEntry{{Name: "accounts"}}
	require.Error(t, cfg.Validate(), "missing url must be reported")

	cfg.Services = []ServiceEntry{{Name: "accounts", URL: "http://localhost:8001/health"}}
	require.NoError(t, cfg.Validate())
}

func TestLoad_Malformed(t *testing.T) {
	path := writeConfig(t, "services: [unclosed")
	_, err := Load(path)
	require.Error(t, err)
}
