package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

func Load(configPath string) (*Config, error) {
	v := viper.New()

	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/fleet-autoscaler")
	}

	v.SetEnvPrefix("AUTOSCALER")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, use defaults and env vars
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	// App defaults
	v.SetDefault("app.name", "fleet-autoscaler")
	v.SetDefault("app.mode", "development")
	v.SetDefault("app.log_level", "info")
	v.SetDefault("app.shutdown_timeout", "30s")

	// Monitor defaults
	v.SetDefault("monitor.interval", "30s")

	// Metrics defaults
	v.SetDefault("metrics.retention", "24h")
	v.SetDefault("metrics.circuit_breaker.max_failures", 5)
	v.SetDefault("metrics.circuit_breaker.timeout", "30s")

	// Health defaults
	v.SetDefault("health.probe_timeout", "5s")
	v.SetDefault("health.max_in_flight", 8)
	v.SetDefault("health.startup_delay", "30s")
	v.SetDefault("health.drain_delay", "30s")
	v.SetDefault("health.recovery_delay", "5m")

	// Fleet defaults
	v.SetDefault("fleet.min_instances", 2)
	v.SetDefault("fleet.max_instances", 20)
	v.SetDefault("fleet.region", "us-east-1")
	v.SetDefault("fleet.zone", "us-east-1a")

	// Predictor defaults
	v.SetDefault("predictor.enabled", true)
	v.SetDefault("predictor.target_utilization", 70.0)

	// API defaults
	v.SetDefault("api.port", 8080)
	v.SetDefault("api.read_timeout", "15s")
	v.SetDefault("api.write_timeout", "15s")
	v.SetDefault("api.idle_timeout", "60s")
	v.SetDefault("api.cors.allowed_origins", []string{"*"})
	v.SetDefault("api.cors.allowed_methods", []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"})
	v.SetDefault("api.cors.allowed_headers", []string{"Content-Type", "X-Trace-ID"})

	// WebSocket defaults
	v.SetDefault("websocket.ping_interval", "30s")
	v.SetDefault("websocket.write_timeout", "10s")
	v.SetDefault("websocket.pong_timeout", "60s")
	v.SetDefault("websocket.read_buffer_size", 1024)
	v.SetDefault("websocket.write_buffer_size", 1024)
	v.SetDefault("websocket.client_buffer", 64)

	// Database defaults (audit sink disabled unless configured)
	v.SetDefault("database.enabled", false)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.name", "autoscaler")
	v.SetDefault("database.user", "autoscaler")
	v.SetDefault("database.ssl_mode", "disable")
	v.SetDefault("database.max_connections", 10)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.ping_timeout", "5s")

	// Events defaults
	v.SetDefault("events.buffer_size", 100)
}
