package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server      ServerConfig      `mapstructure:"server"`
	Database    DatabasesConfig   `mapstructure:"database"`
	Syndication SyndicationConfig `mapstructure:"syndication"`
	Revenue     RevenueConfig     `mapstructure:"revenue"`
	Webhook     WebhookConfig     `mapstructure:"webhook"`
	Logging     LoggingConfig     `mapstructure:"logging"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Hostname     string        `mapstructure:"hostname"`
	Port         int           `mapstructure:"port"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	IdleTimeout  time.Duration `mapstructure:"idle_timeout"`
}

// DatabasesConfig holds all database configurations
type DatabasesConfig struct {
	Syndication DatabaseConfig `mapstructure:"syndication"`
}

// DatabaseConfig holds individual database configuration
type DatabaseConfig struct {
	Type            string        `mapstructure:"type"`
	Hostname        string        `mapstructure:"hostname"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	Database        string        `mapstructure:"database"`
	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// SyndicationConfig holds consent, token, and sweep behaviour knobs
type SyndicationConfig struct {
	TokenTTL        time.Duration `mapstructure:"token_ttl"`
	DedupWindow     time.Duration `mapstructure:"dedup_window"`
	SweepInterval   time.Duration `mapstructure:"sweep_interval"`
	SweepBatchSize  int           `mapstructure:"sweep_batch_size"`
	ConflictRetries int           `mapstructure:"conflict_retries"`
}

// RevenueConfig holds revenue attribution configuration
type RevenueConfig struct {
	PerEventRateCents int64 `mapstructure:"per_event_rate_cents"`
}

// WebhookConfig holds the partner notification dispatcher configuration
type WebhookConfig struct {
	Enabled       bool          `mapstructure:"enabled"`
	BaseURL       string        `mapstructure:"base_url"`
	Timeout       time.Duration `mapstructure:"timeout"`
	RetryAttempts int           `mapstructure:"retry_attempts"`
	RetryBackoff  time.Duration `mapstructure:"retry_backoff"`
	QueueSize     int           `mapstructure:"queue_size"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

var globalConfig *Config

// Load reads configuration from file and environment variables
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath("./configs")
		v.AddConfigPath("../configs")
		v.AddConfigPath(".")
	}

	v.AutomaticEnv()
	v.SetEnvPrefix("SYNDICATION")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	applyDefaults(&config)

	if err := validateConfig(&config); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	globalConfig = &config
	return &config, nil
}

func applyDefaults(config *Config) {
	if config.Syndication.TokenTTL <= 0 {
		config.Syndication.TokenTTL = 15 * time.Minute
	}
	if config.Syndication.DedupWindow <= 0 {
		config.Syndication.DedupWindow = 24 * time.Hour
	}
	if config.Syndication.SweepInterval <= 0 {
		config.Syndication.SweepInterval = 5 * time.Minute
	}
	if config.Syndication.SweepBatchSize <= 0 {
		config.Syndication.SweepBatchSize = 100
	}
	if config.Syndication.ConflictRetries <= 0 {
		config.Syndication.ConflictRetries = 3
	}
	if config.Revenue.PerEventRateCents <= 0 {
		config.Revenue.PerEventRateCents = 5
	}
	if config.Webhook.Timeout <= 0 {
		config.Webhook.Timeout = 10 * time.Second
	}
	if config.Webhook.RetryAttempts <= 0 {
		config.Webhook.RetryAttempts = 3
	}
	if config.Webhook.RetryBackoff <= 0 {
		config.Webhook.RetryBackoff = 2 * time.Second
	}
	if config.Webhook.QueueSize <= 0 {
		config.Webhook.QueueSize = 256
	}
}

// validateConfig validates the configuration
func validateConfig(config *Config) error {
	if config.Server.Port <= 0 || config.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", config.Server.Port)
	}

	if config.Database.Syndication.Hostname == "" {
		return fmt.Errorf("database hostname is required")
	}

	if config.Database.Syndication.Database == "" {
		return fmt.Errorf("database name is required")
	}

	if config.Webhook.Enabled && config.Webhook.BaseURL == "" {
		return fmt.Errorf("webhook base URL is required when webhook dispatch is enabled")
	}

	return nil
}

// Get returns the global configuration
func Get() *Config {
	return globalConfig
}

// SetGlobal sets the global configuration (for testing purposes)
func SetGlobal(cfg *Config) {
	globalConfig = cfg
}

// GetDSN returns the database connection string
func (d *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf("%s:%s@tcp(%s:%d)/%s?parseTime=true&multiStatements=true",
		d.User,
		d.Password,
		d.Hostname,
		d.Port,
		d.Database,
	)
}

// GetServerAddress returns the server address in host:port format
func (s *ServerConfig) GetServerAddress() string {
	return fmt.Sprintf("%s:%d", s.Hostname, s.Port)
}
