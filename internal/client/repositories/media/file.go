package media

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"sync"

	"github.com/cotsubo/camsync/internal/client/models"
	"github.com/cotsubo/camsync/internal/common"
)

// FileRepository is a flat-file implementation of Repository: the whole record
// list lives in one JSON document that is loaded, modified and written back
// under a single writer lock. It is interchangeable with SQLiteRepository and
// intended for installations without a database.
type FileRepository struct {
	path string
	mu   sync.Mutex
}

// NewFileRepository returns a repository backed by the JSON file at path.
// The file is created on first write.
func NewFileRepository(path string) *FileRepository {
	return &FileRepository{path: path}
}

func (r *FileRepository) Insert(ctx context.Context, m *models.CapturedMedia) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list, err := r.load()
	if err != nil {
		return 0, err
	}

	var maxID int64
	for _, e := range list {
		if e.ID > maxID {
			maxID = e.ID
		}
	}
	m.ID = maxID + 1

	// newest first
	list = append([]models.CapturedMedia{*m}, list...)
	if err := r.save(list); err != nil {
		return 0, err
	}
	return m.ID, nil
}

func (r *FileRepository) GetByID(ctx context.Context, id int64) (*models.CapturedMedia, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list, err := r.load()
	if err != nil {
		return nil, err
	}
	for i := range list {
		if list[i].ID == id {
			m := list[i]
			return &m, nil
		}
	}
	return nil, common.ErrNotFound
}

func (r *FileRepository) Update(ctx context.Context, m *models.CapturedMedia) error {
	return r.modify(func(list []models.CapturedMedia) ([]models.CapturedMedia, error) {
		for i := range list {
			if list[i].ID == m.ID {
				list[i] = *m
				return list, nil
			}
		}
		return nil, common.ErrNotFound
	})
}

func (r *FileRepository) GetAll(ctx context.Context) ([]models.CapturedMedia, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list, err := r.load()
	if err != nil {
		return nil, err
	}
	sortNewestFirst(list)
	return list, nil
}

func (r *FileRepository) GetByStatus(ctx context.Context, status models.UploadStatus) ([]models.CapturedMedia, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list, err := r.load()
	if err != nil {
		return nil, err
	}
	var result []models.CapturedMedia
	for _, e := range list {
		if e.UploadStatus == status {
			result = append(result, e)
		}
	}
	sortNewestFirst(result)
	return result, nil
}

func (r *FileRepository) DeleteByID(ctx context.Context, id int64) error {
	return r.modify(func(list []models.CapturedMedia) ([]models.CapturedMedia, error) {
		for i := range list {
			if list[i].ID == id {
				return append(list[:i], list[i+1:]...), nil
			}
		}
		return nil, common.ErrNotFound
	})
}

func (r *FileRepository) UpdateUploadStatus(ctx context.Context, id int64, status models.UploadStatus) error {
	return r.modify(func(list []models.CapturedMedia) ([]models.CapturedMedia, error) {
		for i := range list {
			if list[i].ID == id {
				list[i].UploadStatus = status
				return list, nil
			}
		}
		return nil, common.ErrNotFound
	})
}

func (r *FileRepository) UpdateUploadAttempt(ctx context.Context, id int64, status models.UploadStatus, attempts int, lastAttempt int64) error {
	return r.modify(func(list []models.CapturedMedia) ([]models.CapturedMedia, error) {
		for i := range list {
			if list[i].ID == id {
				list[i].UploadStatus = status
				list[i].UploadAttempts = attempts
				ts := lastAttempt
				list[i].LastUploadAttempt = &ts
				return list, nil
			}
		}
		return nil, common.ErrNotFound
	})
}

func (r *FileRepository) modify(fn func([]models.CapturedMedia) ([]models.CapturedMedia, error)) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	list, err := r.load()
	if err != nil {
		return err
	}
	list, err = fn(list)
	if err != nil {
		return err
	}
	return r.save(list)
}

func (r *FileRepository) load() ([]models.CapturedMedia, error) {
	data, err := os.ReadFile(r.path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read store file: %w", err)
	}
	if len(data) == 0 {
		return nil, nil
	}
	var list []models.CapturedMedia
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, fmt.Errorf("failed to parse store file: %w", err)
	}
	return list, nil
}

func (r *FileRepository) save(list []models.CapturedMedia) error {
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("failed to encode store file: %w", err)
	}

	// write-then-rename so a crash mid-write never corrupts the store
	tmp := r.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("failed to write store file: %w", err)
	}
	if err := os.Rename(tmp, r.path); err != nil {
		return fmt.Errorf("failed to replace store file: %w", err)
	}
	return nil
}

func sortNewestFirst(list []models.CapturedMedia) {
	sort.SliceStable(list, func(i, j int) bool {
		return list[i].Timestamp > list[j].Timestamp
	})
}
