package media

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/cotsubo/camsync/internal/client/models"
	"github.com/cotsubo/camsync/internal/common"
	"github.com/cotsubo/camsync/internal/dbx"
)

// SQLiteRepository implements Repository using a DBTX (either *sql.DB or *sql.Tx).
type SQLiteRepository struct {
	db dbx.DBTX
}

// NewSQLiteRepository returns a new SQLiteRepository bound to the given DBTX.
func NewSQLiteRepository(db dbx.DBTX) *SQLiteRepository {
	return &SQLiteRepository{db: db}
}

// InitSchema creates the captured_media table and its index in one
// transaction so a partially created schema never survives a crash.
func InitSchema(ctx context.Context, db *sql.DB) error {
	statements := []string{
		`CREATE TABLE IF NOT EXISTS captured_media (
  id INTEGER PRIMARY KEY AUTOINCREMENT,
  file_path TEXT NOT NULL,
  file_name TEXT NOT NULL,
  mime_type TEXT NOT NULL,
  is_photo INTEGER NOT NULL,
  timestamp INTEGER NOT NULL,
  file_size INTEGER NOT NULL,
  upload_status TEXT NOT NULL DEFAULT 'pending',
  upload_attempts INTEGER NOT NULL DEFAULT 0,
  last_upload_attempt INTEGER,
  server_url TEXT
)`,
		`CREATE INDEX IF NOT EXISTS idx_media_status ON captured_media(upload_status)`,
	}
	err := dbx.WithTx(ctx, db, nil, func(ctx context.Context, tx dbx.DBTX) error {
		for _, stmt := range statements {
			if _, err := tx.ExecContext(ctx, stmt); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to create schema: %w", err)
	}
	return nil
}

func (r *SQLiteRepository) Insert(ctx context.Context, m *models.CapturedMedia) (int64, error) {
	query := `INSERT INTO captured_media
			(file_path, file_name, mime_type, is_photo, timestamp, file_size, upload_status, upload_attempts, last_upload_attempt, server_url)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, query,
		m.FilePath, m.FileName, m.MimeType, m.IsPhoto, m.Timestamp, m.FileSize,
		m.UploadStatus, m.UploadAttempts, m.LastUploadAttempt, m.ServerURL)
	if err != nil {
		return 0, fmt.Errorf("failed to insert media: %w", err)
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, fmt.Errorf("failed to get insert id: %w", err)
	}
	m.ID = id
	return id, nil
}

func (r *SQLiteRepository) GetByID(ctx context.Context, id int64) (*models.CapturedMedia, error) {
	query := `SELECT id, file_path, file_name, mime_type, is_photo, timestamp, file_size,
			upload_status, upload_attempts, last_upload_attempt, server_url
			FROM captured_media WHERE id=?`
	row := r.db.QueryRowContext(ctx, query, id)

	m := &models.CapturedMedia{}
	err := row.Scan(&m.ID, &m.FilePath, &m.FileName, &m.MimeType, &m.IsPhoto, &m.Timestamp,
		&m.FileSize, &m.UploadStatus, &m.UploadAttempts, &m.LastUploadAttempt, &m.ServerURL)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to select media: %w", err)
	}
	return m, nil
}

func (r *SQLiteRepository) Update(ctx context.Context, m *models.CapturedMedia) error {
	query := `UPDATE captured_media SET
			file_path=?, file_name=?, mime_type=?, is_photo=?, timestamp=?, file_size=?,
			upload_status=?, upload_attempts=?, last_upload_attempt=?, server_url=?
			WHERE id=?`
	res, err := r.db.ExecContext(ctx, query,
		m.FilePath, m.FileName, m.MimeType, m.IsPhoto, m.Timestamp, m.FileSize,
		m.UploadStatus, m.UploadAttempts, m.LastUploadAttempt, m.ServerURL, m.ID)
	if err != nil {
		return fmt.Errorf("failed to update media: %w", err)
	}
	return r.requireOneRow(res)
}

func (r *SQLiteRepository) GetAll(ctx context.Context) ([]models.CapturedMedia, error) {
	query := `SELECT id, file_path, file_name, mime_type, is_photo, timestamp, file_size,
			upload_status, upload_attempts, last_upload_attempt, server_url
			FROM captured_media ORDER BY timestamp DESC`
	return r.queryList(ctx, query)
}

func (r *SQLiteRepository) GetByStatus(ctx context.Context, status models.UploadStatus) ([]models.CapturedMedia, error) {
	query := `SELECT id, file_path, file_name, mime_type, is_photo, timestamp, file_size,
			upload_status, upload_attempts, last_upload_attempt, server_url
			FROM captured_media WHERE upload_status=? ORDER BY timestamp DESC`
	return r.queryList(ctx, query, status)
}

func (r *SQLiteRepository) DeleteByID(ctx context.Context, id int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM captured_media WHERE id=?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete media: %w", err)
	}
	return r.requireOneRow(res)
}

func (r *SQLiteRepository) UpdateUploadStatus(ctx context.Context, id int64, status models.UploadStatus) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE captured_media SET upload_status=? WHERE id=?`, status, id)
	if err != nil {
		return fmt.Errorf("failed to update status: %w", err)
	}
	return r.requireOneRow(res)
}

func (r *SQLiteRepository) UpdateUploadAttempt(ctx context.Context, id int64, status models.UploadStatus, attempts int, lastAttempt int64) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE captured_media SET upload_status=?, upload_attempts=?, last_upload_attempt=? WHERE id=?`,
		status, attempts, lastAttempt, id)
	if err != nil {
		return fmt.Errorf("failed to update attempt: %w", err)
	}
	return r.requireOneRow(res)
}

func (r *SQLiteRepository) queryList(ctx context.Context, query string, args ...any) ([]models.CapturedMedia, error) {
	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select media list: %w", err)
	}
	defer rows.Close()

	var result []models.CapturedMedia
	for rows.Next() {
		var m models.CapturedMedia
		if err := rows.Scan(&m.ID, &m.FilePath, &m.FileName, &m.MimeType, &m.IsPhoto, &m.Timestamp,
			&m.FileSize, &m.UploadStatus, &m.UploadAttempts, &m.LastUploadAttempt, &m.ServerURL); err != nil {
			return nil, err
		}
		result = append(result, m)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

func (r *SQLiteRepository) requireOneRow(res sql.Result) error {
	ra, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("failed to get rows affected: %w", err)
	}
	if ra == 0 {
		return common.ErrNotFound
	}
	return nil
}
