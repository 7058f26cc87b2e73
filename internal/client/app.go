// Package client initializes and runs the capture client: it opens the media
// record store, wires the upload pipeline, and keeps the capture directory
// watcher running until shutdown.
package client

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"sync"
	"syscall"

	"github.com/cotsubo/camsync/internal/client/config"
	"github.com/cotsubo/camsync/internal/client/models"
	"github.com/cotsubo/camsync/internal/client/netwatch"
	"github.com/cotsubo/camsync/internal/client/repositories/media"
	"github.com/cotsubo/camsync/internal/client/transport"
	"github.com/cotsubo/camsync/internal/client/uploader"
	"github.com/cotsubo/camsync/internal/client/watcher"
	"github.com/cotsubo/camsync/internal/filex"
	"github.com/cotsubo/camsync/internal/logging"

	_ "modernc.org/sqlite"
)

type App struct {
	config    *config.Config
	logger    logging.Logger
	store     media.Repository
	scheduler *uploader.Scheduler
	watcher   *watcher.Watcher
	db        *sql.DB
}

func NewApp(c *config.Config) (*App, error) {
	sl := slog.New(slog.NewJSONHandler(os.Stdout, nil))
	logger := logging.NewSlogLogger(sl)

	if err := c.EnsureDeviceID(); err != nil {
		return nil, fmt.Errorf("device id init error: %w", err)
	}

	app := &App{config: c, logger: logger}

	store, err := app.openStore(c.StorePath)
	if err != nil {
		return nil, fmt.Errorf("store init error: %w", err)
	}
	app.store = store

	gate := netwatch.NewInterfaceGate()
	client := transport.NewHTTPClient(c.ServerURL, c.ServerAuthToken, c.UploadTimeout)

	worker := uploader.NewWorker(store, client, gate, uploader.Config{
		AutoUploadEnabled: c.AutoUploadEnabled,
		UploadOnlyOnWifi:  c.UploadOnlyOnWifi,
		ServerURL:         c.ServerURL,
		ServerAuthToken:   c.ServerAuthToken,
		DeviceID:          c.DeviceID,
	}, logger)

	watchDir, err := filex.EnsureDir(c.WatchDir)
	if err != nil {
		return nil, fmt.Errorf("capture dir init error: %w", err)
	}

	policy := uploader.RetryPolicy{MinBackoff: c.MinBackoff, MaxBackoff: c.MaxBackoff}
	app.scheduler = uploader.NewScheduler(worker, gate, policy, logger)
	app.watcher = watcher.New(store, app.scheduler, watchDir, c.ScanInterval, logger)

	return app, nil
}

// openStore picks the store backend by path: .json files get the flat-file
// store, everything else is opened as a SQLite database.
func (app *App) openStore(path string) (media.Repository, error) {
	if strings.HasSuffix(path, ".json") {
		return media.NewFileRepository(path), nil
	}

	db, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, err
	}
	if err := media.InitSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, err
	}
	app.db = db
	return media.NewSQLiteRepository(db), nil
}

func (app *App) initSignalHandler(cancelFunc context.CancelFunc) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, syscall.SIGINT, syscall.SIGTERM, syscall.SIGQUIT)

	go func() {
		<-sigs
		cancelFunc()
	}()
}

// resumePending re-enqueues records a previous run left unfinished, including
// those stranded in "uploading" by a crash.
func (app *App) resumePending(ctx context.Context) {
	for _, status := range []models.UploadStatus{models.StatusPending, models.StatusUploading} {
		records, err := app.store.GetByStatus(ctx, status)
		if err != nil {
			app.logger.Error(ctx, "failed to load unfinished records", "status", status, "error", err)
			continue
		}
		for _, m := range records {
			app.scheduler.Enqueue(ctx, m.ID)
		}
	}
}

func (app *App) Run(ctx context.Context) {
	ctx, cancelFunc := context.WithCancel(ctx)
	defer cancelFunc()

	app.logger.Info(ctx, "Starting app...", "deviceID", app.config.DeviceID)

	app.initSignalHandler(cancelFunc)

	app.resumePending(ctx)

	var wg sync.WaitGroup

	wg.Add(1)
	go func() {
		defer wg.Done()
		if err := app.watcher.Run(ctx); err != nil && ctx.Err() == nil {
			app.logger.Error(ctx, "watcher stopped", "error", err)
			cancelFunc()
		}
	}()

	wg.Wait()
	app.scheduler.Wait()

	if app.db != nil {
		if err := app.db.Close(); err != nil {
			app.logger.Error(ctx, "failed to close store", "error", err)
		}
	}

	app.logger.Info(ctx, "Shutdown complete")
}
