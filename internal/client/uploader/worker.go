// Package uploader contains the background upload pipeline: the per-record
// upload state machine (Worker), the retry/backoff policy, and the Scheduler
// that drives workers until a terminal outcome.
package uploader

import (
	"context"
	"time"

	"github.com/cotsubo/camsync/internal/client/models"
	"github.com/cotsubo/camsync/internal/client/netwatch"
	"github.com/cotsubo/camsync/internal/client/repositories/media"
	"github.com/cotsubo/camsync/internal/client/transport"
	"github.com/cotsubo/camsync/internal/filex"
	"github.com/cotsubo/camsync/internal/logging"
)

// Config is the read-only upload configuration the Worker consults on every
// attempt. It is supplied from outside; the Worker never mutates it.
type Config struct {
	AutoUploadEnabled bool
	UploadOnlyOnWifi  bool
	ServerURL         string
	ServerAuthToken   string
	DeviceID          string
}

// Worker executes one upload attempt for one record at a time.
//
// Every attempt re-reads the record from the store, so repeated invocations
// for the same ID are safe: preconditions are always validated against
// current state, and a record already uploaded is left untouched.
type Worker struct {
	store  media.Repository
	client transport.Client
	gate   netwatch.Gate
	cfg    Config
	log    logging.Logger
	now    func() time.Time
}

// NewWorker wires a Worker from its collaborators.
func NewWorker(store media.Repository, client transport.Client, gate netwatch.Gate, cfg Config, log logging.Logger) *Worker {
	if log == nil {
		log = logging.NopLogger{}
	}
	return &Worker{
		store:  store,
		client: client,
		gate:   gate,
		cfg:    cfg,
		log:    log,
		now:    time.Now,
	}
}

// AttemptUpload runs one complete upload attempt for the record with the
// given ID and classifies the result.
//
// Nothing is propagated as an error across this boundary: every failure is
// absorbed into a persisted status change plus the returned Outcome.
func (w *Worker) AttemptUpload(ctx context.Context, mediaID int64) Outcome {
	m, err := w.store.GetByID(ctx, mediaID)
	if err != nil {
		// A missing identifier is not a transient condition.
		w.log.Warn(ctx, "media record not found", "mediaID", mediaID, "error", err)
		return OutcomePermanentFailure
	}

	// An already-uploaded record is a no-op: the second invocation must not
	// mutate status or counters.
	if m.UploadStatus == models.StatusSuccess {
		return OutcomeSuccess
	}

	// Preconditions, in order, each short-circuiting without a store write.
	if !w.cfg.AutoUploadEnabled {
		w.log.Debug(ctx, "auto upload disabled", "mediaID", mediaID)
		return OutcomePermanentFailure
	}
	if w.cfg.UploadOnlyOnWifi && !w.gate.IsWifiConnected() {
		w.log.Debug(ctx, "waiting for wifi", "mediaID", mediaID)
		return OutcomeRetry
	}
	if w.cfg.ServerURL == "" {
		w.log.Warn(ctx, "server url not configured", "mediaID", mediaID)
		return OutcomePermanentFailure
	}

	// Persist "uploading" before touching the network so a crash mid-upload
	// leaves observable state rather than a stale "pending".
	if err := w.store.UpdateUploadStatus(ctx, mediaID, models.StatusUploading); err != nil {
		w.log.Error(ctx, "failed to mark record uploading", "mediaID", mediaID, "error", err)
		return w.failAttempt(ctx, m)
	}

	// A missing source file cannot be fixed by retrying. The attempt counter
	// and last-attempt timestamp keep their prior values: only failures that
	// reached the network count toward the retry budget.
	if !filex.Exists(m.FilePath) {
		w.log.Warn(ctx, "source file missing", "mediaID", mediaID, "path", m.FilePath)
		if err := w.store.UpdateUploadStatus(ctx, mediaID, models.StatusFailed); err != nil {
			w.log.Error(ctx, "failed to mark record failed", "mediaID", mediaID, "error", err)
		}
		return OutcomePermanentFailure
	}

	res, err := w.client.Upload(ctx, transport.UploadRequest{
		FilePath:  m.FilePath,
		FileName:  m.FileName,
		MimeType:  m.MimeType,
		Timestamp: m.Timestamp,
		IsPhoto:   m.IsPhoto,
		DeviceID:  w.cfg.DeviceID,
	})
	if err != nil {
		w.log.Warn(ctx, "upload transport error", "mediaID", mediaID, "error", err)
		return w.failAttempt(ctx, m)
	}

	// Only "HTTP success AND remote body reports success" counts; a 2xx with
	// success=false (or no parseable body) is still a failed attempt.
	if res.OK && res.Response != nil && res.Response.Success {
		if err := w.store.UpdateUploadStatus(ctx, mediaID, models.StatusSuccess); err != nil {
			w.log.Error(ctx, "failed to mark record uploaded", "mediaID", mediaID, "error", err)
			return w.failAttempt(ctx, m)
		}
		w.log.Info(ctx, "upload finished", "mediaID", mediaID, "file", m.FileName)
		return OutcomeSuccess
	}

	w.log.Warn(ctx, "upload rejected", "mediaID", mediaID, "status", res.StatusCode)
	return w.failAttempt(ctx, m)
}

// failAttempt records one failed transport attempt and classifies the record
// against the attempt budget.
func (w *Worker) failAttempt(ctx context.Context, m *models.CapturedMedia) Outcome {
	attempts := m.UploadAttempts + 1
	ts := w.now().UnixMilli()

	if err := w.store.UpdateUploadAttempt(ctx, m.ID, models.StatusFailed, attempts, ts); err != nil {
		w.log.Error(ctx, "failed to persist attempt", "mediaID", m.ID, "error", err)
	}

	if attempts < models.MaxUploadAttempts {
		w.log.Info(ctx, "upload failed, will retry", "mediaID", m.ID, "attempts", attempts)
		return OutcomeRetry
	}
	w.log.Warn(ctx, "upload failed permanently", "mediaID", m.ID, "attempts", attempts)
	return OutcomePermanentFailure
}
