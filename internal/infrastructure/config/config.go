package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for our application
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Log          LogConfig          `mapstructure:"log"`
	Engagement   EngagementConfig   `mapstructure:"engagement"`
	Notify       NotifyConfig       `mapstructure:"notify"`
	Auth         AuthConfig         `mapstructure:"auth"`
	Achievements AchievementsConfig `mapstructure:"achievements"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	HTTPPort        int           `mapstructure:"http_port"`
	AllowedOrigins  []string      `mapstructure:"allowed_origins"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig holds database configuration
type DatabaseConfig struct {
	// Driver is one of sqlite3, postgres or pgx.
	Driver   string `mapstructure:"driver"`
	DSN      string `mapstructure:"dsn"`
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Name     string `mapstructure:"name"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	SSLMode  string `mapstructure:"sslmode"`
	LogSQL   bool   `mapstructure:"log_sql"`
	MaxConns int32  `mapstructure:"max_conns"`
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

// EngagementConfig tunes the engagement engine.
type EngagementConfig struct {
	// Timezone decides which calendar day a completed session counts for.
	Timezone         string `mapstructure:"timezone"`
	MaxRetries       int    `mapstructure:"max_retries"`
	RecomputeWorkers int    `mapstructure:"recompute_workers"`
	// RecomputeCron schedules the nightly bulk recompute in serve; empty disables it.
	RecomputeCron string `mapstructure:"recompute_cron"`
}

// NotifyConfig configures achievement and milestone delivery.
type NotifyConfig struct {
	Timeout     time.Duration  `mapstructure:"timeout"`
	MaxInFlight int            `mapstructure:"max_in_flight"`
	Telegram    TelegramConfig `mapstructure:"telegram"`
}

// TelegramConfig enables the Telegram notifier when Token is set.
type TelegramConfig struct {
	Token  string `mapstructure:"token"`
	ChatID int64  `mapstructure:"chat_id"`
}

// AuthConfig holds bearer token verification settings.
type AuthConfig struct {
	JWTSecret string `mapstructure:"jwt_secret"`
	Issuer    string `mapstructure:"issuer"`
}

// AchievementsConfig adds CEL-defined achievements to the built-in registry.
type AchievementsConfig struct {
	Rules []RuleConfig `mapstructure:"rules"`
}

// RuleConfig is a single CEL-defined achievement.
type RuleConfig struct {
	ID          string `mapstructure:"id"`
	Title       string `mapstructure:"title"`
	Description string `mapstructure:"description"`
	Icon        string `mapstructure:"icon"`
	Kind        string `mapstructure:"kind"`
	Expr        string `mapstructure:"expr"`
}

// Load reads configuration from file and environment variables. An explicit file path takes
// precedence over the .env lookup.
func Load(file ...string) (*Config, error) {
	if len(file) > 0 && file[0] != "" {
		viper.SetConfigFile(file[0])
	} else {
		viper.SetConfigName(".env")
		viper.SetConfigType("env")
		viper.AddConfigPath(".")
		viper.AddConfigPath("./config")
	}

	// Set default values
	setDefaults()

	// Enable reading from environment variables
	viper.AutomaticEnv()
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read configuration file
	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("error unmarshaling config: %w", err)
	}
	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults() {
	// Server defaults
	viper.SetDefault("server.host", "localhost")
	viper.SetDefault("server.http_port", 8080)
	viper.SetDefault("server.allowed_origins", []string{"*"})
	viper.SetDefault("server.shutdown_timeout", 10*time.Second)

	// Database defaults
	viper.SetDefault("database.driver", "sqlite3")
	viper.SetDefault("database.dsn", "")
	viper.SetDefault("database.host", "localhost")
	viper.SetDefault("database.port", 5432)
	viper.SetDefault("database.name", "vocengage")
	viper.SetDefault("database.user", "postgres")
	viper.SetDefault("database.password", "postgres")
	viper.SetDefault("database.sslmode", "disable")
	viper.SetDefault("database.max_conns", 10)

	// Log defaults
	viper.SetDefault("log.level", "info")
	viper.SetDefault("log.format", "json")

	// Engagement defaults
	viper.SetDefault("engagement.timezone", "UTC")
	viper.SetDefault("engagement.max_retries", 3)
	viper.SetDefault("engagement.recompute_workers", 4)
	viper.SetDefault("engagement.recompute_cron", "")

	// Notification defaults
	viper.SetDefault("notify.timeout", 5*time.Second)
	viper.SetDefault("notify.max_in_flight", 16)
}

// Validate rejects settings the engine cannot run with.
func (c *Config) Validate() error {
	switch c.DatabaseDriver() {
	case "sqlite3", "postgres", "pgx":
	default:
		return fmt.Errorf("unsupported database driver %q", c.Database.Driver)
	}
	if _, err := c.Location(); err != nil {
		return err
	}
	if c.Engagement.MaxRetries < 0 {
		return fmt.Errorf("engagement.max_retries must not be negative")
	}
	return nil
}

// DatabaseDriver returns the normalized driver name.
func (c *Config) DatabaseDriver() string {
	return strings.ToLower(strings.TrimSpace(c.Database.Driver))
}

const defaultSQLiteDSN = "file:vocengage.db?cache=shared&_fk=1"

// DatabaseURL returns the configured DSN, or a default assembled for the driver.
func (c *Config) DatabaseURL() string {
	if c.Database.DSN != "" {
		return c.Database.DSN
	}
	if c.DatabaseDriver() == "sqlite3" {
		return defaultSQLiteDSN
	}
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

// Location returns the engagement time zone.
func (c *Config) Location() (*time.Location, error) {
	name := c.Engagement.Timezone
	if name == "" {
		return time.UTC, nil
	}
	loc, err := time.LoadLocation(name)
	if err != nil {
		return nil, fmt.Errorf("engagement.timezone: %w", err)
	}
	return loc, nil
}
