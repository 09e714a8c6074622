package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadFile_Defaults(t *testing.T) {
	// Setup
	path := writeConfig(t, "server:\n  environment: test\n")

	// Execute
	cfg, err := LoadFile(path)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, "test", cfg.Server.Environment)
	assert.Equal(t, ":8080", cfg.Server.GRPCAddress)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "memory", cfg.Database.Driver)
	assert.Equal(t, 25, cfg.Database.MaxOpenConns)
	assert.Equal(t, 5, cfg.Database.MaxIdleConns)
	assert.Equal(t, 30*time.Minute, cfg.Database.ConnMaxLifetime)
	assert.Equal(t, 5*time.Minute, cfg.Database.ConnMaxIdleTime)
	assert.Equal(t, "3.00", cfg.Optimizer.DefaultEstimate)
	assert.Equal(t, 20, cfg.Optimizer.MinutesPerStore)
	assert.Equal(t, 30, cfg.Analytics.DefaultRangeDays)
	assert.Equal(t, 5*time.Second, cfg.Estimator.Timeout)
	assert.False(t, cfg.Estimator.Enabled)
}

func TestLoadFile_EnvironmentOverridesFile(t *testing.T) {
	// Setup
	path := writeConfig(t, "optimizer:\n  minutes_per_store: 15\nlogging:\n  level: debug\n")
	t.Setenv("PRICEENGINE_OPTIMIZER_MINUTES_PER_STORE", "25")
	t.Setenv("PRICEENGINE_DATABASE_DRIVER", "postgres")
	t.Setenv("PRICEENGINE_DATABASE_DSN", "postgres://localhost/food")

	// Execute
	cfg, err := LoadFile(path)

	// Assert
	require.NoError(t, err)
	assert.Equal(t, 25, cfg.Optimizer.MinutesPerStore)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, "postgres", cfg.Database.Driver)
	assert.Equal(t, "postgres://localhost/food", cfg.Database.ConnectionString())
}

func TestLoadFile_Validation(t *testing.T) {
	tests := []struct {
		name    string
		content string
		errMsg  string
	}{
		{"unknown driver", "database:\n  driver: sqlite\n", "database driver must be"},
		{"empty token", "server:\n  api_token: \"\"\n", "API token is required"},
		{"negative pool size", "database:\n  max_open_conns: -1\n", "database connection limits"},
		{"bad log format", "logging:\n  format: xml\n", "log format must be"},
		{"estimator without url", "estimator:\n  enabled: true\n", "estimator base URL is required"},
		{"non-positive range", "analytics:\n  default_range_days: 0\n", "analytics default range"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFile(writeConfig(t, tt.content))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.errMsg)
		})
	}
}

func TestDatabaseConfig_ConnectionString(t *testing.T) {
	cfg := DatabaseConfig{Host: "db", Port: 5433, User: "u", Password: "p", Name: "food", SSLMode: "disable"}
	assert.Equal(t, "host=db port=5433 user=u password=p dbname=food sslmode=disable", cfg.ConnectionString())
}
