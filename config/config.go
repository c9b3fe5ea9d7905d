package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Billing  BillingConfig  `mapstructure:"billing"`
	Retry    RetryConfig    `mapstructure:"retry"`
	Gateway  GatewayConfig  `mapstructure:"gateway"`
	Seed     SeedConfig     `mapstructure:"seed"`
	Log      LogConfig      `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
	Mode string `mapstructure:"mode"` // debug, release, test
}

type DatabaseConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	User            string        `mapstructure:"user"`
	Password        string        `mapstructure:"password"`
	DBName          string        `mapstructure:"dbname"`
	SSLMode         string        `mapstructure:"sslmode"`
	MaxConns        int32         `mapstructure:"max_conns"`
	MinConns        int32         `mapstructure:"min_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN returns the PostgreSQL connection string.
func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Addr returns the Redis address string.
func (r RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", r.Host, r.Port)
}

// BillingConfig controls the billing cycle cadence and worker pool.
type BillingConfig struct {
	// Schedule is a cron expression (robfig/cron, standard 5-field).
	// Default fires at 03:00 on the 1st of every month.
	Schedule string `mapstructure:"schedule"`
	// Workers is the number of concurrent billing consumers.
	Workers int `mapstructure:"workers"`
	// DrainPollInterval is how often a draining cycle checks queue depth.
	DrainPollInterval time.Duration `mapstructure:"drain_poll_interval"`
}

// RetryConfig bounds retries of transient charge failures.
type RetryConfig struct {
	// MaxAttempts is the total number of gateway calls per invoice per cycle.
	MaxAttempts int `mapstructure:"max_attempts"`
	// InitialBackoff is the delay before the second attempt; each further
	// attempt doubles it, capped at MaxBackoff.
	InitialBackoff time.Duration `mapstructure:"initial_backoff"`
	MaxBackoff     time.Duration `mapstructure:"max_backoff"`
}

// GatewayConfig tunes the simulated payment provider.
type GatewayConfig struct {
	// NetworkFailureRate is the probability [0,1) that a charge call
	// fails with a network error before a decision is reached.
	NetworkFailureRate float64 `mapstructure:"network_failure_rate"`
	// DeclineRate is the probability [0,1) that the provider declines
	// an otherwise valid charge.
	DeclineRate float64 `mapstructure:"decline_rate"`
}

// SeedConfig controls demo data insertion on startup.
type SeedConfig struct {
	Enabled   bool `mapstructure:"enabled"`
	Customers int  `mapstructure:"customers"`
	// InvoicesPerCustomer pending invoices are created per customer.
	InvoicesPerCustomer int `mapstructure:"invoices_per_customer"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Pretty bool   `mapstructure:"pretty"` // human-readable output (dev only)
}

// Load reads configuration from file and environment variables.
// Environment variables override file values. Prefix: BIL.
// Nested keys use underscore: BIL_DATABASE_HOST, BIL_BILLING_SCHEDULE, etc.
func Load(path string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 7000)
	v.SetDefault("server.mode", "debug")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.dbname", "billing")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.max_conns", 20)
	v.SetDefault("database.min_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("redis.host", "localhost")
	v.SetDefault("redis.port", 6379)
	v.SetDefault("redis.password", "")
	v.SetDefault("redis.db", 0)
	v.SetDefault("billing.schedule", "0 3 1 * *")
	v.SetDefault("billing.workers", 4)
	v.SetDefault("billing.drain_poll_interval", "250ms")
	v.SetDefault("retry.max_attempts", 3)
	v.SetDefault("retry.initial_backoff", "2s")
	v.SetDefault("retry.max_backoff", "1m")
	v.SetDefault("gateway.network_failure_rate", 0.1)
	v.SetDefault("gateway.decline_rate", 0.1)
	v.SetDefault("seed.enabled", false)
	v.SetDefault("seed.customers", 100)
	v.SetDefault("seed.invoices_per_customer", 10)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.pretty", false)

	// File config
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables: BIL_DATABASE_HOST -> database.host
	v.SetEnvPrefix("BIL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (not required — env vars can suffice)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshaling config: %w", err)
	}

	return &cfg, nil
}
