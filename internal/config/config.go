// Package config provides configuration management for the VeloPortal
// service.
package config

// Config represents the complete application configuration
type Config struct {
	App       AppConfig       `mapstructure:"app" validate:"required"`
	Server    ServerConfig    `mapstructure:"server" validate:"required"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Snapshot  SnapshotConfig  `mapstructure:"snapshot" validate:"required"`
	Startlist StartlistConfig `mapstructure:"startlist"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
}

// AppConfig represents application-level configuration
type AppConfig struct {
	Name        string `mapstructure:"name" validate:"required"`
	Environment string `mapstructure:"environment" validate:"required,environment"`
	LogLevel    string `mapstructure:"log_level" validate:"required,loglevel"`
}

// ServerConfig represents the HTTP API server configuration
type ServerConfig struct {
	Port            int `mapstructure:"port" validate:"required,min=1,max=65535"`
	CacheTTLSeconds int `mapstructure:"cache_ttl_seconds" validate:"gte=0"`
	ReadTimeoutSecs int `mapstructure:"read_timeout_seconds" validate:"gte=0"`
}

// DatabaseConfig represents the snapshot database connection, only needed
// when the snapshot backend is postgres.
type DatabaseConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Name           string `mapstructure:"name"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	SSLMode        string `mapstructure:"ssl_mode"`
	MaxConnections int    `mapstructure:"max_connections"`
}

// SnapshotConfig represents state persistence configuration
type SnapshotConfig struct {
	Backend      string `mapstructure:"backend" validate:"required,oneof=file postgres"`
	FilePath     string `mapstructure:"file_path"`
	AutosaveCron string `mapstructure:"autosave_cron"`
}

// StartlistConfig represents the startlist feed configuration
type StartlistConfig struct {
	URL            string  `mapstructure:"url"`
	APIKey         string  `mapstructure:"api_key"`
	RateLimit      float64 `mapstructure:"rate_limit"`
	TimeoutSeconds int     `mapstructure:"timeout_seconds"`
	MaxRetries     int     `mapstructure:"max_retries"`
}

// MetricsConfig represents metrics exposure configuration
type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}
