package config

import (
	"errors"
	"fmt"
	"strings"
)

var ErrInvalidConfig = errors.New("config validation failed")

func (c *Config) Validate() error {
	var errs []error

	// App validation
	if c.App.Name == "" {
		errs = append(errs, errors.New("app.name is required"))
	}

	validModes := map[string]bool{"development": true, "production": true, "test": true}
	if !validModes[c.App.Mode] {
		errs = append(errs, fmt.Errorf("app.mode must be one of: development, production, test"))
	}

	validLogLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLogLevels[c.App.LogLevel] {
		errs = append(errs, fmt.Errorf("app.log_level must be one of: debug, info, warn, error"))
	}
	if c.App.ShutdownTimeout <= 0 {
		errs = append(errs, errors.New("app.shutdown_timeout must be positive"))
	}

	// Source validation
	switch c.Source.Type {
	case SourceHost:
	case SourceSynthetic:
		errs = append(errs, c.Source.Synthetic.validate()...)
	default:
		errs = append(errs, fmt.Errorf("source.type must be one of: %s, %s", SourceHost, SourceSynthetic))
	}

	// Store validation
	switch c.Store.Type {
	case StoreMemory:
	case StorePostgres:
		errs = append(errs, c.Database.validate()...)
	default:
		errs = append(errs, fmt.Errorf("store.type must be one of: %s, %s", StorePostgres, StoreMemory))
	}
	if c.Store.CircuitBreaker.MaxFailures <= 0 {
		errs = append(errs, errors.New("store.circuit_breaker.max_failures must be positive"))
	}
	if c.Store.CircuitBreaker.Timeout <= 0 {
		errs = append(errs, errors.New("store.circuit_breaker.timeout must be positive"))
	}

	// API validation
	if c.API.Port <= 0 || c.API.Port > 65535 {
		errs = append(errs, errors.New("api.port must be between 1 and 65535"))
	}
	if c.API.RateLimit < 0 {
		errs = append(errs, errors.New("api.rate_limit must not be negative"))
	}

	// WebSocket validation
	if c.WebSocket.Enabled {
		if c.WebSocket.MaxConnections <= 0 {
			errs = append(errs, errors.New("websocket.max_connections must be positive"))
		}
		if c.WebSocket.PingInterval <= 0 || c.WebSocket.PongTimeout <= c.WebSocket.PingInterval {
			errs = append(errs, errors.New("websocket.pong_timeout must be greater than ping_interval"))
		}
	}

	// Prometheus validation
	if c.Prometheus.Enabled && !strings.HasPrefix(c.Prometheus.Path, "/") {
		errs = append(errs, errors.New("prometheus.path must start with /"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %v", ErrInvalidConfig, errs)
	}

	return nil
}

func (s SyntheticConfig) validate() []error {
	var errs []error
	if s.BaseCPU < 0 || s.BaseCPU > 100 {
		errs = append(errs, errors.New("source.synthetic.base_cpu must be between 0 and 100"))
	}
	if s.BaseMemory < 0 || s.BaseMemory > 100 {
		errs = append(errs, errors.New("source.synthetic.base_memory must be between 0 and 100"))
	}
	if s.Variance < 0 {
		errs = append(errs, errors.New("source.synthetic.variance must not be negative"))
	}
	return errs
}

func (d DatabaseConfig) validate() []error {
	var errs []error
	if d.Host == "" {
		errs = append(errs, errors.New("database.host is required"))
	}
	if d.Port <= 0 || d.Port > 65535 {
		errs = append(errs, errors.New("database.port must be between 1 and 65535"))
	}
	if d.Name == "" {
		errs = append(errs, errors.New("database.name is required"))
	}
	if d.MaxConnections <= 0 {
		errs = append(errs, errors.New("database.max_connections must be positive"))
	}
	if d.MigrationTimeout <= 0 {
		errs = append(errs, errors.New("database.migration_timeout must be positive"))
	}
	return errs
}
