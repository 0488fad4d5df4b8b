package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/readsync/kosync-server/internal/model"
)

var _ model.ProgressStore = (*ProgressRepository)(nil)

type ProgressRepository struct {
	db *Connection
}

func NewProgressRepository(db *Connection) *ProgressRepository {
	return &ProgressRepository{
		db: db,
	}
}

func (r *ProgressRepository) Get(ctx context.Context, username, document string) (model.Progress, error) {
	var p model.Progress
	query := `SELECT username, document, progress, percentage, device, device_id, timestamp
			  FROM progress WHERE username = $1 AND document = $2`

	err := r.db.QueryRow(ctx, query, username, document).Scan(
		&p.Username, &p.Document, &p.Position, &p.Percentage, &p.Device, &p.DeviceID, &p.Timestamp,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return model.Progress{}, model.ErrNotFound
		}
		return model.Progress{}, fmt.Errorf("failed to get progress: %w", err)
	}

	return p, nil
}

func (r *ProgressRepository) Upsert(ctx context.Context, progress model.Progress) error {
	query := `INSERT INTO progress (username, document, progress, percentage, device, device_id, timestamp)
			  VALUES ($1, $2, $3, $4, $5, $6, $7)
			  ON CONFLICT (username, document) DO UPDATE SET
				  progress = EXCLUDED.progress,
				  percentage = EXCLUDED.percentage,
				  device = EXCLUDED.device,
				  device_id = EXCLUDED.device_id,
				  timestamp = EXCLUDED.timestamp`

	_, err := r.db.Exec(ctx, query,
		progress.Username, progress.Document, progress.Position,
		progress.Percentage, progress.Device, progress.DeviceID, progress.Timestamp,
	)
	if err != nil {
		return fmt.Errorf("failed to upsert progress: %w", err)
	}

	return nil
}
