package config

import "fmt"

// Config holds runtime configuration for the finance bot.
type Config struct {
	AppEnv string `mapstructure:"app_env"`

	Logger     LoggerConfig     `mapstructure:"logger"`
	Database   DatabaseConfig   `mapstructure:"database" validate:"required"`
	Bot        BotConfig        `mapstructure:"bot" validate:"required"`
	Redis      RedisConfig      `mapstructure:"redis"`
	Categories CategoriesConfig `mapstructure:"categories"`
	Reminder   ReminderConfig   `mapstructure:"reminder"`
	RateLimit  RateLimitConfig  `mapstructure:"rate_limit"`
	Metrics    MetricsConfig    `mapstructure:"metrics"`
	Sentry     SentryConfig     `mapstructure:"sentry"`
}

// LoggerConfig controls log output.
type LoggerConfig struct {
	Level    string `mapstructure:"level" validate:"omitempty,oneof=debug info warn error"`
	Format   string `mapstructure:"format" validate:"omitempty,oneof=json text"`
	File     string `mapstructure:"file"`
	MaxSize  int    `mapstructure:"max_size_mb"`
	MaxAge   int    `mapstructure:"max_age_days"`
	Backups  int    `mapstructure:"backups"`
	Compress bool   `mapstructure:"compress"`
}

// DatabaseConfig describes the PostgreSQL connection.
type DatabaseConfig struct {
	Host         string `mapstructure:"host" validate:"required"`
	Port         int    `mapstructure:"port" validate:"required"`
	User         string `mapstructure:"user" validate:"required"`
	Password     string `mapstructure:"password"`
	Name         string `mapstructure:"name" validate:"required"`
	SSLMode      string `mapstructure:"ssl_mode"`
	MaxOpenConns int    `mapstructure:"max_open_conns"`
	MaxIdleConns int    `mapstructure:"max_idle_conns"`

	// Migrations is the directory of .up.sql files applied at startup.
	Migrations string `mapstructure:"migrations"`

	// TransactionTypes is false only for legacy databases that predate the
	// transaction_type column.
	TransactionTypes bool `mapstructure:"transaction_types"`
}

// DSN returns the PostgreSQL connection string.
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

// BotConfig holds Telegram transport settings.
type BotConfig struct {
	Token       string `mapstructure:"token" validate:"required"`
	PollTimeout int    `mapstructure:"poll_timeout_seconds"`
}

// RedisConfig describes the optional Redis connection used for idempotency.
// When Addr is empty the bot falls back to in-memory deduplication.
type RedisConfig struct {
	Addr     string `mapstructure:"addr"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// Enabled reports whether a Redis address was configured.
func (r RedisConfig) Enabled() bool { return r.Addr != "" }

// CategoriesConfig points at the editable category keyword table.
type CategoriesConfig struct {
	File  string `mapstructure:"file"`
	Watch bool   `mapstructure:"watch"`
}

// ReminderConfig controls the low balance sweep.
type ReminderConfig struct {
	Enabled             bool    `mapstructure:"enabled"`
	Schedule            string  `mapstructure:"schedule"`
	LowBalanceThreshold float64 `mapstructure:"low_balance_threshold"`
}

// RateLimitConfig bounds how many messages a single chat may send.
type RateLimitConfig struct {
	Enabled       bool `mapstructure:"enabled"`
	PerMinute     int  `mapstructure:"per_minute"`
	Burst         int  `mapstructure:"burst"`
	WindowSeconds int  `mapstructure:"window_seconds"`
}

// MetricsConfig exposes the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Addr    string `mapstructure:"addr"`
}

// SentryConfig enables error reporting for high severity failures.
type SentryConfig struct {
	Enabled     bool    `mapstructure:"enabled"`
	DSN         string  `mapstructure:"dsn"`
	Environment string  `mapstructure:"environment"`
	SampleRate  float64 `mapstructure:"sample_rate"`
}
