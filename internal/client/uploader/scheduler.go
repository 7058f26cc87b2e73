package uploader

import (
	"context"
	"errors"
	"sync"

	"github.com/cotsubo/camsync/internal/client/netwatch"
	"github.com/cotsubo/camsync/internal/logging"
	"github.com/sethvargo/go-retry"
)

var (
	errOffline    = errors.New("network unavailable")
	errRetryLater = errors.New("attempt not terminal yet")
	errPermanent  = errors.New("upload permanently failed")
)

// attemptRunner is the slice of Worker the Scheduler needs.
type attemptRunner interface {
	AttemptUpload(ctx context.Context, mediaID int64) Outcome
}

// Scheduler drives upload attempts for individual records.
//
// Each enqueued record gets its own retry loop in a goroutine; at most one
// loop runs per record ID at a time, while distinct records proceed
// concurrently with no ordering guarantee. Network connectivity is a
// precondition to invoking the Worker at all, so offline periods burn backoff
// intervals rather than attempt budget.
type Scheduler struct {
	worker attemptRunner
	gate   netwatch.Gate
	policy RetryPolicy
	log    logging.Logger

	mu       sync.Mutex
	inflight map[int64]struct{}
	wg       sync.WaitGroup
}

// NewScheduler wires a Scheduler.
func NewScheduler(worker attemptRunner, gate netwatch.Gate, policy RetryPolicy, log logging.Logger) *Scheduler {
	if log == nil {
		log = logging.NopLogger{}
	}
	return &Scheduler{
		worker:   worker,
		gate:     gate,
		policy:   policy,
		log:      log,
		inflight: make(map[int64]struct{}),
	}
}

// Enqueue starts the retry loop for a record. It returns false if a loop for
// this ID is already running; the running loop re-reads current state on each
// attempt, so a duplicate trigger has nothing to add.
func (s *Scheduler) Enqueue(ctx context.Context, mediaID int64) bool {
	s.mu.Lock()
	if _, ok := s.inflight[mediaID]; ok {
		s.mu.Unlock()
		s.log.Debug(ctx, "record already enqueued", "mediaID", mediaID)
		return false
	}
	s.inflight[mediaID] = struct{}{}
	s.mu.Unlock()

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer func() {
			s.mu.Lock()
			delete(s.inflight, mediaID)
			s.mu.Unlock()
		}()
		s.run(ctx, mediaID)
	}()
	return true
}

// Wait blocks until all in-flight retry loops have finished.
func (s *Scheduler) Wait() {
	s.wg.Wait()
}

func (s *Scheduler) run(ctx context.Context, mediaID int64) {
	err := retry.Do(ctx, s.policy.Backoff(), func(ctx context.Context) error {
		if !s.gate.IsOnline() {
			return retry.RetryableError(errOffline)
		}

		switch s.worker.AttemptUpload(ctx, mediaID) {
		case OutcomeSuccess:
			return nil
		case OutcomeRetry:
			return retry.RetryableError(errRetryLater)
		default:
			return errPermanent
		}
	})

	switch {
	case err == nil:
		s.log.Debug(ctx, "upload loop finished", "mediaID", mediaID)
	case errors.Is(err, errPermanent):
		s.log.Warn(ctx, "upload loop gave up", "mediaID", mediaID)
	default:
		// context cancelled or deadline exceeded mid-loop
		s.log.Info(ctx, "upload loop interrupted", "mediaID", mediaID, "error", err)
	}
}
