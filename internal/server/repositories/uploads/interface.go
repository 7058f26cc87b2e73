package uploads

import (
	"context"

	"github.com/cotsubo/camsync/internal/server/models"
)

// Repository persists upload metadata rows.
type Repository interface {
	// Insert stores the metadata row for a received upload.
	Insert(ctx context.Context, u *models.Upload) error

	// GetByID returns one upload or common.ErrNotFound.
	GetByID(ctx context.Context, id string) (*models.Upload, error)

	// ListByDevice returns a device's uploads, newest capture first.
	ListByDevice(ctx context.Context, deviceID string, limit int) ([]*models.Upload, error)
}
