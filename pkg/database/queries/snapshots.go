package queries

import (
	"context"
	"database/sql"

	"github.com/OldStager01/hostmon/pkg/models"
)

type SnapshotRepository struct {
	db *sql.DB
}

func NewSnapshotRepository(db *sql.DB) *SnapshotRepository {
	return &SnapshotRepository{db: db}
}

func (r *SnapshotRepository) Insert(ctx context.Context, s *models.Snapshot) (int64, error) {
	query := `
		INSERT INTO system_snapshot (cpu_usage, memory_usage, memory_total, memory_percent, created_at)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id`

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		s.CPUPercent, int64(s.MemoryUsedBytes), int64(s.MemoryTotalBytes), s.MemoryPercent, s.TakenAt,
	).Scan(&id)
	if err != nil {
		return 0, err
	}

	return id, nil
}

// List returns every snapshot in insertion order.
func (r *SnapshotRepository) List(ctx context.Context) ([]models.Snapshot, error) {
	query := `
		SELECT id, cpu_usage, memory_usage, memory_total, memory_percent, created_at
		FROM system_snapshot
		ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	snapshots := []models.Snapshot{}
	for rows.Next() {
		var s models.Snapshot
		var used, total int64
		if err := rows.Scan(&s.ID, &s.CPUPercent, &used, &total, &s.MemoryPercent, &s.TakenAt); err != nil {
			return nil, err
		}
		s.MemoryUsedBytes = uint64(used)
		s.MemoryTotalBytes = uint64(total)
		snapshots = append(snapshots, s)
	}

	return snapshots, rows.Err()
}
