package media

import (
	"context"

	"github.com/cotsubo/camsync/internal/client/models"
)

// Repository is the durable store of CapturedMedia records.
//
// Implementations must serialize concurrent reads/writes to a single record's
// underlying storage; cross-record operations need not be mutually exclusive.
// Absent records are reported as common.ErrNotFound.
type Repository interface {
	// Insert stores a new record and returns the store-assigned ID.
	// The ID is immutable thereafter.
	Insert(ctx context.Context, m *models.CapturedMedia) (int64, error)

	// GetByID returns the record with the given ID.
	GetByID(ctx context.Context, id int64) (*models.CapturedMedia, error)

	// Update replaces the whole record identified by m.ID.
	Update(ctx context.Context, m *models.CapturedMedia) error

	// GetAll lists all records, newest capture first.
	GetAll(ctx context.Context) ([]models.CapturedMedia, error)

	// GetByStatus lists records in the given upload status, newest first.
	GetByStatus(ctx context.Context, status models.UploadStatus) ([]models.CapturedMedia, error)

	// DeleteByID removes a record.
	DeleteByID(ctx context.Context, id int64) error

	// UpdateUploadStatus writes only the status field, leaving the attempt
	// counter and last-attempt timestamp untouched.
	UpdateUploadStatus(ctx context.Context, id int64, status models.UploadStatus) error

	// UpdateUploadAttempt writes status, attempt counter and last-attempt
	// timestamp in one go.
	UpdateUploadAttempt(ctx context.Context, id int64, status models.UploadStatus, attempts int, lastAttempt int64) error
}
