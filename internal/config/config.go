package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the price engine
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Logging   LoggingConfig   `mapstructure:"logging"`
	Optimizer OptimizerConfig `mapstructure:"optimizer"`
	Estimator EstimatorConfig `mapstructure:"estimator"`
	Analytics AnalyticsConfig `mapstructure:"analytics"`
}

// ServerConfig holds listener and auth settings
type ServerConfig struct {
	GRPCAddress     string        `mapstructure:"grpc_address"`
	MetricsAddress  string        `mapstructure:"metrics_address"`
	APIToken        string        `mapstructure:"api_token"`
	Environment     string        `mapstructure:"environment"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig selects and configures the storage backend
type DatabaseConfig struct {
	Driver      string `mapstructure:"driver"` // "postgres" or "memory"
	DSN         string `mapstructure:"dsn"`
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	User        string `mapstructure:"user"`
	Password    string `mapstructure:"password"`
	Name        string `mapstructure:"name"`
	SSLMode     string `mapstructure:"sslmode"`
	AutoMigrate bool   `mapstructure:"auto_migrate"`
	SeedDemo    bool   `mapstructure:"seed_demo"`

	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
	ConnMaxIdleTime time.Duration `mapstructure:"conn_max_idle_time"`
}

// ConnectionString returns the DSN, built from the individual fields when unset
func (d DatabaseConfig) ConnectionString() string {
	if d.DSN != "" {
		return d.DSN
	}
	return fmt.Sprintf("host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		d.Host, d.Port, d.User, d.Password, d.Name, d.SSLMode)
}

// LoggingConfig configures the zap logger
type LoggingConfig struct {
	Level       string `mapstructure:"level"`
	Format      string `mapstructure:"format"`
	Development bool   `mapstructure:"development"`
}

// OptimizerConfig holds the optimizer constants
type OptimizerConfig struct {
	DefaultEstimate  string `mapstructure:"default_estimate"`
	MinutesPerStore  int    `mapstructure:"minutes_per_store"`
	MaxAlternatives  int    `mapstructure:"max_alternatives"`
	MaxBudgetCuts    int    `mapstructure:"max_budget_cuts"`
	DefaultMaxStores int    `mapstructure:"default_max_stores"`
	FallbackCategory string `mapstructure:"fallback_category"`
}

// EstimatorConfig configures the optional price estimate service
type EstimatorConfig struct {
	Enabled           bool          `mapstructure:"enabled"`
	BaseURL           string        `mapstructure:"base_url"`
	APIKey            string        `mapstructure:"api_key"`
	RequestsPerSecond float64       `mapstructure:"requests_per_second"`
	Burst             int           `mapstructure:"burst"`
	Timeout           time.Duration `mapstructure:"timeout"`
	MaxAttempts       int           `mapstructure:"max_attempts"`
}

// AnalyticsConfig configures price analytics
type AnalyticsConfig struct {
	DefaultRangeDays int `mapstructure:"default_range_days"`
}

// Load loads configuration from an optional config file and PRICEENGINE_* environment variables
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/priceengine/")

	return load(v)
}

// LoadFile loads configuration from the given file, still honoring the environment
func LoadFile(path string) (*Config, error) {
	v := viper.New()
	v.SetConfigFile(path)
	return load(v)
}

func load(v *viper.Viper) (*Config, error) {
	v.SetEnvPrefix("PRICEENGINE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.grpc_address", ":8080")
	v.SetDefault("server.metrics_address", ":9090")
	v.SetDefault("server.api_token", "dev-token")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("database.driver", "memory")
	v.SetDefault("database.dsn", "")
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "postgres")
	v.SetDefault("database.password", "postgres")
	v.SetDefault("database.name", "food_inventory")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("database.auto_migrate", true)
	v.SetDefault("database.seed_demo", false)
	v.SetDefault("database.max_open_conns", 25)
	v.SetDefault("database.max_idle_conns", 5)
	v.SetDefault("database.conn_max_lifetime", "30m")
	v.SetDefault("database.conn_max_idle_time", "5m")

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.development", false)

	v.SetDefault("optimizer.default_estimate", "3.00")
	v.SetDefault("optimizer.minutes_per_store", 20)
	v.SetDefault("optimizer.max_alternatives", 3)
	v.SetDefault("optimizer.max_budget_cuts", 3)
	v.SetDefault("optimizer.default_max_stores", 3)
	v.SetDefault("optimizer.fallback_category", "General")

	v.SetDefault("estimator.enabled", false)
	v.SetDefault("estimator.base_url", "")
	v.SetDefault("estimator.api_key", "")
	v.SetDefault("estimator.requests_per_second", 2.0)
	v.SetDefault("estimator.burst", 5)
	v.SetDefault("estimator.timeout", "5s")
	v.SetDefault("estimator.max_attempts", 2)

	v.SetDefault("analytics.default_range_days", 30)
}

// validate validates the configuration
func validate(config *Config) error {
	if config.Server.APIToken == "" {
		return fmt.Errorf("API token is required (set PRICEENGINE_SERVER_API_TOKEN)")
	}

	switch config.Database.Driver {
	case "memory":
	case "postgres":
		if config.Database.DSN == "" && config.Database.Host == "" {
			return fmt.Errorf("database host or DSN is required when driver is 'postgres'")
		}
	default:
		return fmt.Errorf("database driver must be 'postgres' or 'memory', got: %s", config.Database.Driver)
	}

	if config.Database.MaxOpenConns < 0 || config.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database connection limits cannot be negative")
	}

	if config.Logging.Format != "json" && config.Logging.Format != "console" {
		return fmt.Errorf("log format must be 'json' or 'console', got: %s", config.Logging.Format)
	}

	if config.Estimator.Enabled && config.Estimator.BaseURL == "" {
		return fmt.Errorf("estimator base URL is required when the estimator is enabled")
	}

	if config.Analytics.DefaultRangeDays <= 0 {
		return fmt.Errorf("analytics default range must be positive, got: %d", config.Analytics.DefaultRangeDays)
	}

	return nil
}
