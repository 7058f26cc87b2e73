// Package watcher scans the capture directory and turns new media files into
// pending upload records.
package watcher

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/cotsubo/camsync/internal/client/models"
	"github.com/cotsubo/camsync/internal/client/repositories/media"
	"github.com/cotsubo/camsync/internal/logging"
)

// mimeByExtension maps the capture formats we expect to find on disk.
// Anything else in the directory is not media and is skipped.
var mimeByExtension = map[string]struct {
	mime    string
	isPhoto bool
}{
	".jpg":  {"image/jpeg", true},
	".jpeg": {"image/jpeg", true},
	".png":  {"image/png", true},
	".mp4":  {"video/mp4", false},
	".webm": {"video/webm", false},
	".mkv":  {"video/x-matroska", false},
}

// Enqueuer is the slice of the upload scheduler the watcher drives.
type Enqueuer interface {
	Enqueue(ctx context.Context, mediaID int64) bool
}

// Watcher polls a directory and registers each media file exactly once.
type Watcher struct {
	store    media.Repository
	enqueuer Enqueuer
	dir      string
	interval time.Duration
	log      logging.Logger

	seen map[string]struct{}
}

// New builds a Watcher for the given capture directory.
func New(store media.Repository, enqueuer Enqueuer, dir string, interval time.Duration, log logging.Logger) *Watcher {
	if log == nil {
		log = logging.NopLogger{}
	}
	return &Watcher{
		store:    store,
		enqueuer: enqueuer,
		dir:      dir,
		interval: interval,
		log:      log,
		seen:     make(map[string]struct{}),
	}
}

// Run scans immediately and then on every tick until the context is
// cancelled. Paths already present in the store are never re-inserted,
// including across restarts.
func (w *Watcher) Run(ctx context.Context) error {
	if err := w.prime(ctx); err != nil {
		return err
	}

	if err := w.Scan(ctx); err != nil {
		w.log.Error(ctx, "capture scan failed", "dir", w.dir, "error", err)
	}

	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			if err := w.Scan(ctx); err != nil {
				w.log.Error(ctx, "capture scan failed", "dir", w.dir, "error", err)
			}
		}
	}
}

// prime seeds the dedupe set from the store so a restart does not insert
// duplicates for files that were already registered.
func (w *Watcher) prime(ctx context.Context) error {
	existing, err := w.store.GetAll(ctx)
	if err != nil {
		return err
	}
	for _, m := range existing {
		w.seen[m.FilePath] = struct{}{}
	}
	return nil
}

// Scan walks the capture directory once, inserting and enqueueing every
// media file not seen before.
func (w *Watcher) Scan(ctx context.Context) error {
	entries, err := os.ReadDir(w.dir)
	if err != nil {
		return err
	}

	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		kind, ok := mimeByExtension[strings.ToLower(filepath.Ext(entry.Name()))]
		if !ok {
			continue
		}

		path := filepath.Join(w.dir, entry.Name())
		if _, ok := w.seen[path]; ok {
			continue
		}

		info, err := entry.Info()
		if err != nil {
			w.log.Warn(ctx, "cannot stat capture file", "path", path, "error", err)
			continue
		}

		m := &models.CapturedMedia{
			FilePath:     path,
			FileName:     entry.Name(),
			MimeType:     kind.mime,
			IsPhoto:      kind.isPhoto,
			Timestamp:    info.ModTime().UnixMilli(),
			FileSize:     info.Size(),
			UploadStatus: models.StatusPending,
		}

		id, err := w.store.Insert(ctx, m)
		if err != nil {
			w.log.Error(ctx, "failed to register capture", "path", path, "error", err)
			continue
		}
		w.seen[path] = struct{}{}

		w.log.Info(ctx, "registered capture", "mediaID", id, "file", entry.Name())
		w.enqueuer.Enqueue(ctx, id)
	}
	return nil
}
