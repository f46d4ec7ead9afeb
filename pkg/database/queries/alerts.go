package queries

import (
	"context"
	"database/sql"

	"github.com/OldStager01/hostmon/pkg/models"
)

type AlertRepository struct {
	db *sql.DB
}

func NewAlertRepository(db *sql.DB) *AlertRepository {
	return &AlertRepository{db: db}
}

func (r *AlertRepository) Insert(ctx context.Context, a *models.Alert) (int64, error) {
	query := `
		INSERT INTO alert (snapshot_id, severity, metric, direction, value, message, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id`

	var snapshotID sql.NullInt64
	if a.SnapshotID != nil {
		snapshotID = sql.NullInt64{Int64: *a.SnapshotID, Valid: true}
	}

	var id int64
	err := r.db.QueryRowContext(ctx, query,
		snapshotID, string(a.Severity), string(a.Metric), string(a.Direction),
		a.Value, a.Message, a.CreatedAt,
	).Scan(&id)
	if err != nil {
		return 0, err
	}

	return id, nil
}

// List returns every alert in insertion order.
func (r *AlertRepository) List(ctx context.Context) ([]models.Alert, error) {
	query := `
		SELECT id, snapshot_id, severity, metric, direction, value, message, created_at
		FROM alert
		ORDER BY id`

	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	alerts := []models.Alert{}
	for rows.Next() {
		var a models.Alert
		var snapshotID sql.NullInt64
		var severity, metric, direction string
		err := rows.Scan(
			&a.ID, &snapshotID, &severity, &metric, &direction,
			&a.Value, &a.Message, &a.CreatedAt,
		)
		if err != nil {
			return nil, err
		}
		if snapshotID.Valid {
			id := snapshotID.Int64
			a.SnapshotID = &id
		}
		a.Severity = models.Severity(severity)
		a.Metric = models.Metric(metric)
		a.Direction = models.Direction(direction)
		alerts = append(alerts, a)
	}

	return alerts, rows.Err()
}
