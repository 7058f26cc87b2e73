// Package uploads provides the PostgreSQL-backed repository for received
// upload metadata.
package uploads

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cotsubo/camsync/internal/common"
	"github.com/cotsubo/camsync/internal/dbx"
	"github.com/cotsubo/camsync/internal/server/models"
)

// PostgresRepository implements upload storage over a dbx.DBTX (*sql.DB or *sql.Tx).
type PostgresRepository struct {
	db dbx.DBTX
}

// NewPostgresRepository constructs a repository bound to the given DBTX.
func NewPostgresRepository(db dbx.DBTX) *PostgresRepository {
	return &PostgresRepository{db: db}
}

func (r *PostgresRepository) Insert(ctx context.Context, u *models.Upload) error {
	query := `
		INSERT INTO uploads (id, device_id, file_name, mime_type, is_photo, captured_at, size, storage_key, uploaded_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9)
	`
	_, err := r.db.ExecContext(ctx, query,
		u.ID, u.DeviceID, u.FileName, u.MimeType, u.IsPhoto, u.CapturedAt, u.Size, u.StorageKey, u.UploadedAt)
	if err != nil {
		return fmt.Errorf("db error: %w", err)
	}
	return nil
}

func (r *PostgresRepository) GetByID(ctx context.Context, id string) (*models.Upload, error) {
	query := `
		SELECT id, device_id, file_name, mime_type, is_photo, captured_at, size, storage_key, uploaded_at
		FROM uploads WHERE id=$1
	`
	row := r.db.QueryRowContext(ctx, query, id)

	u := &models.Upload{}
	err := row.Scan(&u.ID, &u.DeviceID, &u.FileName, &u.MimeType, &u.IsPhoto,
		&u.CapturedAt, &u.Size, &u.StorageKey, &u.UploadedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select upload: %w", err)
	}
	return u, nil
}

func (r *PostgresRepository) ListByDevice(ctx context.Context, deviceID string, limit int) ([]*models.Upload, error) {
	query := `
		SELECT id, device_id, file_name, mime_type, is_photo, captured_at, size, storage_key, uploaded_at
		FROM uploads WHERE device_id=$1 ORDER BY captured_at DESC LIMIT $2
	`
	rows, err := r.db.QueryContext(ctx, query, deviceID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to select uploads: %w", err)
	}
	defer rows.Close()

	var result []*models.Upload
	for rows.Next() {
		var item models.Upload
		if err := rows.Scan(&item.ID, &item.DeviceID, &item.FileName, &item.MimeType, &item.IsPhoto,
			&item.CapturedAt, &item.Size, &item.StorageKey, &item.UploadedAt); err != nil {
			return nil, err
		}
		result = append(result, &item)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}
