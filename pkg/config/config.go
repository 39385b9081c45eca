package config

import (
	"fmt"
	"time"
)

type Config struct {
	App       AppConfig       `mapstructure:"app"`
	Monitor   MonitorConfig   `mapstructure:"monitor"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Health    HealthConfig    `mapstructure:"health"`
	Fleet     FleetConfig     `mapstructure:"fleet"`
	Predictor PredictorConfig `mapstructure:"predictor"`
	API       APIConfig       `mapstructure:"api"`
	WebSocket WebSocketConfig `mapstructure:"websocket"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Events    EventsConfig    `mapstructure:"events"`
}

type AppConfig struct {
	Name            string        `mapstructure:"name"`
	Mode            string        `mapstructure:"mode"`
	LogLevel        string        `mapstructure:"log_level"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

type MonitorConfig struct {
	Interval time.Duration `mapstructure:"interval"`
}

type MetricsConfig struct {
	Retention      time.Duration        `mapstructure:"retention"`
	CircuitBreaker CircuitBreakerConfig `mapstructure:"circuit_breaker"`
}

type CircuitBreakerConfig struct {
	MaxFailures int           `mapstructure:"max_failures"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type HealthConfig struct {
	ProbeTimeout  time.Duration `mapstructure:"probe_timeout"`
	MaxInFlight   int           `mapstructure:"max_in_flight"`
	StartupDelay  time.Duration `mapstructure:"startup_delay"`
	DrainDelay    time.Duration `mapstructure:"drain_delay"`
	RecoveryDelay time.Duration `mapstructure:"recovery_delay"`
}

type FleetConfig struct {
	MinInstances int            `mapstructure:"min_instances"`
	MaxInstances int            `mapstructure:"max_instances"`
	Region       string         `mapstructure:"region"`
	Zone         string         `mapstructure:"zone"`
	EndpointBase string         `mapstructure:"endpoint_base"`
	Seed         []SeedInstance `mapstructure:"seed"`
}

// SeedInstance describes one instance registered at startup.
type SeedInstance struct {
	Type     string `mapstructure:"type"`
	Count    int    `mapstructure:"count"`
	Region   string `mapstructure:"region"`
	Zone     string `mapstructure:"zone"`
	Endpoint string `mapstructure:"endpoint"`
}

type PredictorConfig struct {
	Enabled           bool    `mapstructure:"enabled"`
	TargetUtilization float64 `mapstructure:"target_utilization"`
}

type APIConfig struct {
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
	CORS         CORSConfig    `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins   []string `mapstructure:"allowed_origins"`
	AllowedMethods   []string `mapstructure:"allowed_methods"`
	AllowedHeaders   []string `mapstructure:"allowed_headers"`
	AllowCredentials bool     `mapstructure:"allow_credentials"`
}

type WebSocketConfig struct {
	PingInterval    time.Duration `mapstructure:"ping_interval"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	PongTimeout     time.Duration `mapstructure:"pong_timeout"`
	ReadBufferSize  int           `mapstructure:"read_buffer_size"`
	WriteBufferSize int           `mapstructure:"write_buffer_size"`
	ClientBuffer    int           `mapstructure:"client_buffer"`
}

type DatabaseConfig struct {
	Enabled         bool          `mapstructure:"enabled"`
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	Name            string        `mapstructure:"name"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	SSLMode         string        `mapstructure:"ssl_mode"`
	MaxConnections  int           `mapstructure:"max_connections"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	PingTimeout     time.Duration `mapstructure:"ping_timeout"`
}

func (d DatabaseConfig) DSN() string {
	sslMode := d.SSLMode
	if sslMode == "" {
		sslMode = "disable"
	}
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, sslMode,
	)
}

type EventsConfig struct {
	BufferSize int `mapstructure:"buffer_size"`
}
