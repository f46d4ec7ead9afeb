package store

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/OldStager01/hostmon/internal/metrics"
	"github.com/OldStager01/hostmon/internal/resilience"
	"github.com/OldStager01/hostmon/pkg/database"
	"github.com/OldStager01/hostmon/pkg/models"
)

var takenAt = time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)

func testAlert(snapshotID *int64) *models.Alert {
	c := models.NewAlertClassification(models.SeverityWarning, models.MetricMemory, models.DirectionHigh, 70)
	return models.NewAlert(c, snapshotID, takenAt)
}

func TestMemoryStore_SequentialIDsAndOrder(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	first, err := s.SaveSnapshot(ctx, &models.Snapshot{CPUPercent: 10, TakenAt: takenAt})
	require.NoError(t, err)
	second, err := s.SaveSnapshot(ctx, &models.Snapshot{CPUPercent: 20, TakenAt: takenAt})
	require.NoError(t, err)
	alertID, err := s.SaveAlert(ctx, testAlert(&second))
	require.NoError(t, err)

	assert.Equal(t, int64(1), first)
	assert.Equal(t, int64(2), second)
	assert.Equal(t, int64(1), alertID)

	snapshots, err := s.ListSnapshots(ctx)
	require.NoError(t, err)
	require.Len(t, snapshots, 2)
	assert.Equal(t, 10.0, snapshots[0].CPUPercent)
	assert.Equal(t, int64(2), snapshots[1].ID)

	alerts, err := s.ListAlerts(ctx)
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, int64(2), *alerts[0].SnapshotID)
	assert.NoError(t, s.HealthCheck(ctx))
}

func TestMemoryStore_ListIsACopy(t *testing.T) {
	s := NewMemoryStore()
	ctx := context.Background()

	snapshot := &models.Snapshot{CPUPercent: 10}
	_, _ = s.SaveSnapshot(ctx, snapshot)
	snapshot.CPUPercent = 99

	listed, _ := s.ListSnapshots(ctx)
	listed[0].CPUPercent = 50

	again, _ := s.ListSnapshots(ctx)
	assert.Equal(t, 10.0, again[0].CPUPercent)
}

func TestMemoryStore_EmptyListsAreNotNil(t *testing.T) {
	s := NewMemoryStore()

	snapshots, _ := s.ListSnapshots(context.Background())
	alerts, _ := s.ListAlerts(context.Background())

	assert.NotNil(t, snapshots)
	assert.NotNil(t, alerts)
}

func TestMemoryStore_ConcurrentWrites(t *testing.T) {
	s := NewMemoryStore()
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = s.SaveSnapshot(context.Background(), &models.Snapshot{})
		}()
	}
	wg.Wait()

	snapshots, _ := s.ListSnapshots(context.Background())
	assert.Len(t, snapshots, 50)
	assert.Equal(t, int64(50), snapshots[49].ID)
}

func newPostgresStore(t *testing.T) (*PostgresStore, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New(sqlmock.MonitorPingsOption(true))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewPostgresStore(&database.DB{DB: db}), mock
}

func TestPostgresStore_SaveSnapshot(t *testing.T) {
	s, mock := newPostgresStore(t)

	mock.ExpectQuery("INSERT INTO system_snapshot").
		WillReturnRows(sqlmock.NewRows([]string{"id"}).AddRow(5))

	id, err := s.SaveSnapshot(context.Background(), &models.Snapshot{MemoryTotalBytes: 1, TakenAt: takenAt})
	require.NoError(t, err)
	assert.Equal(t, int64(5), id)
}

func TestPostgresStore_SaveErrorsArePersistenceFailures(t *testing.T) {
	s, mock := newPostgresStore(t)
	driverErr := errors.New("connection refused")

	mock.ExpectQuery("INSERT INTO system_snapshot").WillReturnError(driverErr)
	mock.ExpectQuery("INSERT INTO alert").WillReturnError(driverErr)

	_, err := s.SaveSnapshot(context.Background(), &models.Snapshot{TakenAt: takenAt})
	assert.ErrorIs(t, err, ErrPersistenceFailed)
	assert.ErrorIs(t, err, driverErr)

	_, err = s.SaveAlert(context.Background(), testAlert(nil))
	assert.ErrorIs(t, err, ErrPersistenceFailed)
	assert.ErrorIs(t, err, driverErr)
}

func TestPostgresStore_ListAlerts(t *testing.T) {
	s, mock := newPostgresStore(t)

	rows := sqlmock.NewRows([]string{"id", "snapshot_id", "severity", "metric", "direction", "value", "message", "created_at"}).
		AddRow(1, nil, "danger", "cpu", "high", 99.0, "High CPU Usage: 99.00%", takenAt)
	mock.ExpectQuery("FROM alert").WillReturnRows(rows)

	alerts, err := s.ListAlerts(context.Background())
	require.NoError(t, err)
	require.Len(t, alerts, 1)
	assert.Equal(t, models.SeverityDanger, alerts[0].Severity)
}

func TestPostgresStore_HealthCheck(t *testing.T) {
	s, mock := newPostgresStore(t)

	mock.ExpectPing().WillReturnError(errors.New("down"))

	assert.EqualError(t, s.HealthCheck(context.Background()), "down")
}

// flakyStore fails writes while failing is set.
type flakyStore struct {
	*MemoryStore
	mu      sync.Mutex
	failing bool
	calls   int
}

func (f *flakyStore) setFailing(v bool) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failing = v
}

func (f *flakyStore) SaveSnapshot(ctx context.Context, s *models.Snapshot) (int64, error) {
	f.mu.Lock()
	f.calls++
	failing := f.failing
	f.mu.Unlock()
	if failing {
		return 0, ErrPersistenceFailed
	}
	return f.MemoryStore.SaveSnapshot(ctx, s)
}

func TestResilientStore_OpensAfterFailures(t *testing.T) {
	next := &flakyStore{MemoryStore: NewMemoryStore(), failing: true}
	m := metrics.New()
	s := NewResilientStore(next, ResilientConfig{
		CircuitBreaker: resilience.CircuitBreakerConfig{MaxFailures: 2, Timeout: time.Hour},
		Metrics:        m,
	})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		_, err := s.SaveSnapshot(ctx, &models.Snapshot{})
		assert.ErrorIs(t, err, ErrPersistenceFailed)
	}
	assert.Equal(t, resilience.StateOpen, s.BreakerState())

	_, err := s.SaveSnapshot(ctx, &models.Snapshot{})
	assert.ErrorIs(t, err, ErrPersistenceFailed)
	assert.ErrorIs(t, err, resilience.ErrCircuitOpen)
	assert.Equal(t, 2, next.calls)

	expected := `
# HELP hostmon_circuit_breaker_state 0=closed, 1=open, 2=half-open.
# TYPE hostmon_circuit_breaker_state gauge
hostmon_circuit_breaker_state{name="store"} 1
`
	assert.NoError(t, testutil.GatherAndCompare(m.Registry(), strings.NewReader(expected), "hostmon_circuit_breaker_state"))
}

func TestResilientStore_PassesThrough(t *testing.T) {
	next := NewMemoryStore()
	s := NewResilientStore(next, ResilientConfig{})
	ctx := context.Background()

	snapshotID, err := s.SaveSnapshot(ctx, &models.Snapshot{CPUPercent: 12})
	require.NoError(t, err)
	_, err = s.SaveAlert(ctx, testAlert(&snapshotID))
	require.NoError(t, err)

	snapshots, _ := s.ListSnapshots(ctx)
	alerts, _ := s.ListAlerts(ctx)
	assert.Len(t, snapshots, 1)
	assert.Len(t, alerts, 1)
	assert.NoError(t, s.HealthCheck(ctx))
	assert.Equal(t, resilience.StateClosed, s.BreakerState())
}
