package store

import (
	"context"
	"sync"

	"github.com/OldStager01/hostmon/pkg/models"
)

type MemoryStore struct {
	mu        sync.RWMutex
	snapshots []models.Snapshot
	alerts    []models.Alert
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (s *MemoryStore) SaveSnapshot(_ context.Context, snapshot *models.Snapshot) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *snapshot
	stored.ID = int64(len(s.snapshots) + 1)
	s.snapshots = append(s.snapshots, stored)
	return stored.ID, nil
}

func (s *MemoryStore) SaveAlert(_ context.Context, alert *models.Alert) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	stored := *alert
	if alert.SnapshotID != nil {
		id := *alert.SnapshotID
		stored.SnapshotID = &id
	}
	stored.ID = int64(len(s.alerts) + 1)
	s.alerts = append(s.alerts, stored)
	return stored.ID, nil
}

func (s *MemoryStore) ListSnapshots(_ context.Context) ([]models.Snapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Snapshot, len(s.snapshots))
	copy(out, s.snapshots)
	return out, nil
}

func (s *MemoryStore) ListAlerts(_ context.Context) ([]models.Alert, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	out := make([]models.Alert, len(s.alerts))
	copy(out, s.alerts)
	return out, nil
}

func (s *MemoryStore) HealthCheck(_ context.Context) error {
	return nil
}
