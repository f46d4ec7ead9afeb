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
	return &Config{
		App: AppConfig{
			Name:            "hostmon",
			Mode:            "development",
			LogLevel:        "info",
			ShutdownTimeout: 10 * time.Second,
		},
		Source: SourceConfig{Type: SourceHost},
		Store: StoreConfig{
			Type: StorePostgres,
			CircuitBreaker: CircuitBreakerConfig{
				MaxFailures: 5,
				Timeout:     30 * time.Second,
			},
		},
		Database: DatabaseConfig{
			Host:             "localhost",
			Port:             5432,
			Name:             "testdb",
			User:             "user",
			Password:         "pass",
			MaxConnections:   10,
			MigrationTimeout: time.Minute,
		},
		API: APIConfig{
			Port:      8080,
			RateLimit: 100,
		},
		WebSocket: WebSocketConfig{
			Enabled:        true,
			MaxConnections: 10,
			PingInterval:   30 * time.Second,
			PongTimeout:    60 * time.Second,
		},
		Prometheus: PrometheusConfig{Enabled: true, Path: "/metrics"},
	}
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name        string
		modifyFunc  func(*Config)
		expectErr   bool
		errContains string
	}{
		{
			name:       "valid config",
			modifyFunc: func(c *Config) {},
		},
		{
			name: "memory store ignores database section",
			modifyFunc: func(c *Config) {
				c.Store.Type = StoreMemory
				c.Database = DatabaseConfig{}
			},
		},
		{
			name: "postgres store requires database host",
			modifyFunc: func(c *Config) {
				c.Database.Host = ""
			},
			expectErr:   true,
			errContains: "database.host is required",
		},
		{
			name: "unknown store type",
			modifyFunc: func(c *Config) {
				c.Store.Type = "sqlite"
			},
			expectErr:   true,
			errContains: "store.type must be one of",
		},
		{
			name: "unknown source type",
			modifyFunc: func(c *Config) {
				c.Source.Type = "snmp"
			},
			expectErr:   true,
			errContains: "source.type must be one of",
		},
		{
			name: "synthetic base cpu out of range",
			modifyFunc: func(c *Config) {
				c.Source = SourceConfig{Type: SourceSynthetic, Synthetic: SyntheticConfig{BaseCPU: 120}}
			},
			expectErr:   true,
			errContains: "base_cpu must be between 0 and 100",
		},
		{
			name: "invalid log level",
			modifyFunc: func(c *Config) {
				c.App.LogLevel = "trace"
			},
			expectErr:   true,
			errContains: "app.log_level must be one of",
		},
		{
			name: "invalid api port",
			modifyFunc: func(c *Config) {
				c.API.Port = 70000
			},
			expectErr:   true,
			errContains: "api.port must be between 1 and 65535",
		},
		{
			name: "pong timeout not above ping interval",
			modifyFunc: func(c *Config) {
				c.WebSocket.PongTimeout = c.WebSocket.PingInterval
			},
			expectErr:   true,
			errContains: "pong_timeout must be greater than ping_interval",
		},
		{
			name: "disabled websocket skips its checks",
			modifyFunc: func(c *Config) {
				c.WebSocket = WebSocketConfig{Enabled: false}
			},
		},
		{
			name: "relative prometheus path",
			modifyFunc: func(c *Config) {
				c.Prometheus.Path = "metrics"
			},
			expectErr:   true,
			errContains: "prometheus.path must start with /",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := validConfig()
			tt.modifyFunc(cfg)

			err := cfg.Validate()

			if tt.expectErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, ErrInvalidConfig)
				assert.Contains(t, err.Error(), tt.errContains)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestConfig_ValidateCollectsAllErrors(t *testing.T) {
	cfg := validConfig()
	cfg.App.Name = ""
	cfg.API.Port = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "app.name is required")
	assert.Contains(t, err.Error(), "api.port must be between 1 and 65535")
}

func TestDatabaseConfig_ToDBConfig(t *testing.T) {
	dbCfg := DatabaseConfig{
		Host:           "localhost",
		Port:           5432,
		Name:           "testdb",
		User:           "admin",
		Password:       "secret",
		SSLMode:        "require",
		MaxConnections: 4,
		PingTimeout:    time.Second,
	}

	converted := dbCfg.ToDBConfig()

	assert.Equal(t, 4, converted.MaxConnections)
	assert.Equal(t, time.Second, converted.PingTimeout)
	assert.Equal(t, "host=localhost port=5432 user=admin password=secret dbname=testdb sslmode=require", converted.DSN())
}

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, "hostmon", cfg.App.Name)
	assert.Equal(t, 15*time.Second, cfg.App.ShutdownTimeout)
	assert.Equal(t, SourceHost, cfg.Source.Type)
	assert.Equal(t, StorePostgres, cfg.Store.Type)
	assert.Equal(t, 5, cfg.Store.CircuitBreaker.MaxFailures)
	assert.Equal(t, 5432, cfg.Database.Port)
	assert.Equal(t, "/metrics", cfg.Prometheus.Path)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FileAndEnvOverrides(t *testing.T) {
	path := filepath.Join(t.TempDir(), "hostmon.yaml")
	content := `
app:
  mode: test
  log_level: debug
source:
  type: synthetic
  synthetic:
    base_cpu: 85
    variance: 0
store:
  type: memory
api:
  port: 9000
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	t.Setenv("HOSTMON_API_PORT", "9191")

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "test", cfg.App.Mode)
	assert.Equal(t, "debug", cfg.App.LogLevel)
	assert.Equal(t, SourceSynthetic, cfg.Source.Type)
	assert.Equal(t, 85.0, cfg.Source.Synthetic.BaseCPU)
	assert.Equal(t, 0.0, cfg.Source.Synthetic.Variance)
	assert.Equal(t, StoreMemory, cfg.Store.Type)
	assert.Equal(t, 9191, cfg.API.Port)
	assert.NoError(t, cfg.Validate())
}

func TestLoad_MissingExplicitFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
