package store

import (
	"context"
	"errors"

	"github.com/OldStager01/hostmon/pkg/models"
)

var ErrPersistenceFailed = errors.New("persistence failed")

// Store is the append-only record of snapshots and alerts.
type Store interface {
	SaveSnapshot(ctx context.Context, snapshot *models.Snapshot) (int64, error)
	SaveAlert(ctx context.Context, alert *models.Alert) (int64, error)
	ListSnapshots(ctx context.Context) ([]models.Snapshot, error)
	ListAlerts(ctx context.Context) ([]models.Alert, error)
	HealthCheck(ctx context.Context) error
}
