package store

import (
	"context"
	"fmt"

	"github.com/OldStager01/hostmon/pkg/database"
	"github.com/OldStager01/hostmon/pkg/database/queries"
	"github.com/OldStager01/hostmon/pkg/models"
)

type PostgresStore struct {
	db        *database.DB
	snapshots *queries.SnapshotRepository
	alerts    *queries.AlertRepository
}

func NewPostgresStore(db *database.DB) *PostgresStore {
	return &PostgresStore{
		db:        db,
		snapshots: queries.NewSnapshotRepository(db.DB),
		alerts:    queries.NewAlertRepository(db.DB),
	}
}

func (s *PostgresStore) SaveSnapshot(ctx context.Context, snapshot *models.Snapshot) (int64, error) {
	id, err := s.snapshots.Insert(ctx, snapshot)
	if err != nil {
		return 0, fmt.Errorf("%w: insert snapshot: %w", ErrPersistenceFailed, err)
	}
	return id, nil
}

func (s *PostgresStore) SaveAlert(ctx context.Context, alert *models.Alert) (int64, error) {
	id, err := s.alerts.Insert(ctx, alert)
	if err != nil {
		return 0, fmt.Errorf("%w: insert alert: %w", ErrPersistenceFailed, err)
	}
	return id, nil
}

func (s *PostgresStore) ListSnapshots(ctx context.Context) ([]models.Snapshot, error) {
	snapshots, err := s.snapshots.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	return snapshots, nil
}

func (s *PostgresStore) ListAlerts(ctx context.Context) ([]models.Alert, error) {
	alerts, err := s.alerts.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list alerts: %w", err)
	}
	return alerts, nil
}

func (s *PostgresStore) HealthCheck(ctx context.Context) error {
	return s.db.HealthCheck(ctx)
}
