package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func validConfig() *Config {
	cfg, _ := Load("")
	return cfg
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "fleet-autoscaler", cfg.App.Name)
	assert.Equal(t, 30*time.Second, cfg.Monitor.Interval)
	assert.Equal(t, 24*time.Hour, cfg.Metrics.Retention)
	assert.Equal(t, 2, cfg.Fleet.MinInstances)
	assert.Equal(t, 20, cfg.Fleet.MaxInstances)
	assert.Equal(t, 70.0, cfg.Predictor.TargetUtilization)
	assert.Equal(t, 8080, cfg.API.Port)
	assert.False(t, cfg.Database.Enabled)

	require.NoError(t, cfg.Validate())
}

func TestLoad_FromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	content := `
app:
  name: staging-autoscaler
  mode: release
monitor:
  interval: 10s
fleet:
  max_instances: 50
database:
  enabled: true
  host: db.internal
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "staging-autoscaler", cfg.App.Name)
	assert.Equal(t, "release", cfg.App.Mode)
	assert.Equal(t, 10*time.Second, cfg.Monitor.Interval)
	assert.Equal(t, 50, cfg.Fleet.MaxInstances)
	assert.True(t, cfg.Database.Enabled)
	assert.Equal(t, "db.internal", cfg.Database.Host)

	// Unset keys keep their defaults.
	assert.Equal(t, 8080, cfg.API.Port)
}

func TestLoad_BadFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("app: [not: valid"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name        string
		modifyFunc  func(*Config)
		errContains string
	}{
		{
			name:       "defaults are valid",
			modifyFunc: func(c *Config) {},
		},
		{
			name:        "non-positive interval",
			modifyFunc:  func(c *Config) { c.Monitor.Interval = 0 },
			errContains: "monitor.interval",
		},
		{
			name:        "non-positive retention",
			modifyFunc:  func(c *Config) { c.Metrics.Retention = -time.Hour },
			errContains: "metrics.retention",
		},
		{
			name:        "non-positive probe timeout",
			modifyFunc:  func(c *Config) { c.Health.ProbeTimeout = 0 },
			errContains: "health.probe_timeout",
		},
		{
			name:        "non-positive in-flight limit",
			modifyFunc:  func(c *Config) { c.Health.MaxInFlight = 0 },
			errContains: "health.max_in_flight",
		},
		{
			name:        "negative min instances",
			modifyFunc:  func(c *Config) { c.Fleet.MinInstances = -1 },
			errContains: "fleet.min_instances",
		},
		{
			name: "min above max",
			modifyFunc: func(c *Config) {
				c.Fleet.MinInstances = 30
				c.Fleet.MaxInstances = 20
			},
			errContains: "exceeds fleet.max_instances",
		},
		{
			name:        "target utilization out of range",
			modifyFunc:  func(c *Config) { c.Predictor.TargetUtilization = 150 },
			errContains: "predictor.target_utilization",
		},
		{
			name:        "invalid port",
			modifyFunc:  func(c *Config) { c.API.Port = 70000 },
			errContains: "api.port",
		},
		{
			name: "database enabled without host",
			modifyFunc: func(c *Config) {
				c.Database.Enabled = true
				c.Database.Host = ""
			},
			errContains: "database.host",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modifyFunc(cfg)

			err := cfg.Validate()
			if tt.errContains == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errContains)
		})
	}
}

func TestDatabaseDSN(t *testing.T) {
	d := DatabaseConfig{
		Host:     "db.internal",
		Port:     5432,
		Name:     "autoscaler",
		User:     "svc",
		Password: "secret",
		SSLMode:  "require",
	}
	assert.Equal(t,
		"host=db.internal port=5432 user=svc password=secret dbname=autoscaler sslmode=require",
		d.DSN())

	// Empty ssl mode falls back to disable.
	d.SSLMode = ""
	assert.Contains(t, d.DSN(), "sslmode=disable")
}
