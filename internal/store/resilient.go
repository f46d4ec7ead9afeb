package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/OldStager01/hostmon/internal/logger"
	"github.com/OldStager01/hostmon/internal/metrics"
	"github.com/OldStager01/hostmon/internal/resilience"
	"github.com/OldStager01/hostmon/pkg/models"
)

const breakerName = "store"

type ResilientConfig struct {
	CircuitBreaker resilience.CircuitBreakerConfig
	Metrics        *metrics.Metrics
}

// ResilientStore puts a circuit breaker in front of writes so an unreachable
// database fails a tick's writes fast instead of waiting on each one.
// Reads and health checks go straight to the wrapped store.
type ResilientStore struct {
	next    Store
	breaker *resilience.CircuitBreaker
}

func NewResilientStore(next Store, cfg ResilientConfig) *ResilientStore {
	cbConfig := cfg.CircuitBreaker
	if cbConfig.Name == "" {
		cbConfig.Name = breakerName
	}
	m := cfg.Metrics
	cbConfig.OnStateChange = func(name string, from, to resilience.State) {
		logger.WithFields(map[string]interface{}{
			"breaker": name,
			"from":    from.String(),
			"to":      to.String(),
		}).Warn("Circuit breaker state changed")
		m.SetCircuitBreakerState(name, int(to))
	}

	breaker := resilience.NewCircuitBreaker(cbConfig)
	m.SetCircuitBreakerState(breaker.Name(), int(resilience.StateClosed))

	return &ResilientStore{next: next, breaker: breaker}
}

func (s *ResilientStore) SaveSnapshot(ctx context.Context, snapshot *models.Snapshot) (int64, error) {
	var id int64
	err := s.breaker.ExecuteContext(ctx, func(ctx context.Context) error {
		var err error
		id, err = s.next.SaveSnapshot(ctx, snapshot)
		return err
	})
	return id, s.wrap(err)
}

func (s *ResilientStore) SaveAlert(ctx context.Context, alert *models.Alert) (int64, error) {
	var id int64
	err := s.breaker.ExecuteContext(ctx, func(ctx context.Context) error {
		var err error
		id, err = s.next.SaveAlert(ctx, alert)
		return err
	})
	return id, s.wrap(err)
}

func (s *ResilientStore) wrap(err error) error {
	if errors.Is(err, resilience.ErrCircuitOpen) {
		return fmt.Errorf("%w: %w", ErrPersistenceFailed, err)
	}
	return err
}

func (s *ResilientStore) ListSnapshots(ctx context.Context) ([]models.Snapshot, error) {
	return s.next.ListSnapshots(ctx)
}

func (s *ResilientStore) ListAlerts(ctx context.Context) ([]models.Alert, error) {
	return s.next.ListAlerts(ctx)
}

func (s *ResilientStore) HealthCheck(ctx context.Context) error {
	return s.next.HealthCheck(ctx)
}

func (s *ResilientStore) BreakerState() resilience.State {
	return s.breaker.State()
}
