package uploader

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/cotsubo/camsync/internal/client/models"
	"github.com/cotsubo/camsync/internal/client/transport"
	"github.com/cotsubo/camsync/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// fakeStore is an in-memory media.Repository that records every write.
type fakeStore struct {
	records map[int64]*models.CapturedMedia
	writes  []string

	failStatusWrite  bool
	failAttemptWrite bool
}

func newFakeStore(records ...*models.CapturedMedia) *fakeStore {
	s := &fakeStore{records: make(map[int64]*models.CapturedMedia)}
	for _, r := range records {
		s.records[r.ID] = r
	}
	return s
}

func (s *fakeStore) Insert(ctx context.Context, m *models.CapturedMedia) (int64, error) {
	id := int64(len(s.records) + 1)
	m.ID = id
	s.records[id] = m
	return id, nil
}

func (s *fakeStore) GetByID(ctx context.Context, id int64) (*models.CapturedMedia, error) {
	m, ok := s.records[id]
	if !ok {
		return nil, common.ErrNotFound
	}
	cp := *m
	return &cp, nil
}

func (s *fakeStore) Update(ctx context.Context, m *models.CapturedMedia) error {
	s.writes = append(s.writes, "update")
	cp := *m
	s.records[m.ID] = &cp
	return nil
}

func (s *fakeStore) GetAll(ctx context.Context) ([]models.CapturedMedia, error) {
	return nil, nil
}

func (s *fakeStore) GetByStatus(ctx context.Context, status models.UploadStatus) ([]models.CapturedMedia, error) {
	return nil, nil
}

func (s *fakeStore) DeleteByID(ctx context.Context, id int64) error {
	delete(s.records, id)
	return nil
}

func (s *fakeStore) UpdateUploadStatus(ctx context.Context, id int64, status models.UploadStatus) error {
	if s.failStatusWrite {
		return errors.New("disk full")
	}
	s.writes = append(s.writes, "status:"+string(status))
	m, ok := s.records[id]
	if !ok {
		return common.ErrNotFound
	}
	m.UploadStatus = status
	return nil
}

func (s *fakeStore) UpdateUploadAttempt(ctx context.Context, id int64, status models.UploadStatus, attempts int, lastAttempt int64) error {
	if s.failAttemptWrite {
		return errors.New("disk full")
	}
	s.writes = append(s.writes, "attempt:"+string(status))
	m, ok := s.records[id]
	if !ok {
		return common.ErrNotFound
	}
	m.UploadStatus = status
	m.UploadAttempts = attempts
	ts := lastAttempt
	m.LastUploadAttempt = &ts
	return nil
}

// fakeTransport returns canned results.
type fakeTransport struct {
	result *transport.UploadResult
	err    error

	calls   int
	lastReq transport.UploadRequest
}

func (f *fakeTransport) Upload(ctx context.Context, req transport.UploadRequest) (*transport.UploadResult, error) {
	f.calls++
	f.lastReq = req
	return f.result, f.err
}

// fakeGate reports fixed connectivity.
type fakeGate struct {
	wifi   bool
	online bool
}

func (g *fakeGate) IsWifiConnected() bool { return g.wifi }
func (g *fakeGate) IsOnline() bool        { return g.online }

func okResult() *transport.UploadResult {
	return &transport.UploadResult{
		StatusCode: 200,
		OK:         true,
		Response:   &transport.UploadResponse{Success: true},
	}
}

func failedResult(status int) *transport.UploadResult {
	return &transport.UploadResult{
		StatusCode: status,
		OK:         status >= 200 && status < 300,
		Response:   &transport.UploadResponse{Success: false},
	}
}

func enabledConfig() Config {
	return Config{
		AutoUploadEnabled: true,
		ServerURL:         "http://server.local",
		DeviceID:          "device-1",
	}
}

func mediaOnDisk(t *testing.T, id int64, attempts int) *models.CapturedMedia {
	t.Helper()
	path := filepath.Join(t.TempDir(), "clip.mp4")
	require.NoError(t, os.WriteFile(path, []byte("video"), 0o600))
	return &models.CapturedMedia{
		ID:             id,
		FilePath:       path,
		FileName:       "clip.mp4",
		MimeType:       "video/mp4",
		Timestamp:      1700000000000,
		FileSize:       5,
		UploadStatus:   models.StatusPending,
		UploadAttempts: attempts,
	}
}

func newTestWorker(store *fakeStore, tr transport.Client, gate *fakeGate, cfg Config) *Worker {
	w := NewWorker(store, tr, gate, cfg, nil)
	w.now = func() time.Time { return time.UnixMilli(1700000099999) }
	return w
}

func TestAttemptUpload_RecordNotFound(t *testing.T) {
	store := newFakeStore()
	w := newTestWorker(store, &fakeTransport{}, &fakeGate{}, enabledConfig())

	outcome := w.AttemptUpload(context.Background(), 42)

	assert.Equal(t, OutcomePermanentFailure, outcome)
	assert.Empty(t, store.writes, "no store write may happen")
}

func TestAttemptUpload_AutoUploadDisabled(t *testing.T) {
	m := mediaOnDisk(t, 1, 0)
	store := newFakeStore(m)
	cfg := enabledConfig()
	cfg.AutoUploadEnabled = false
	tr := &fakeTransport{result: okResult()}
	w := newTestWorker(store, tr, &fakeGate{wifi: true}, cfg)

	outcome := w.AttemptUpload(context.Background(), 1)

	assert.Equal(t, OutcomePermanentFailure, outcome)
	assert.Empty(t, store.writes)
	assert.Zero(t, tr.calls)
	got, _ := store.GetByID(context.Background(), 1)
	assert.Equal(t, models.StatusPending, got.UploadStatus)
	assert.Equal(t, 0, got.UploadAttempts)
}

func TestAttemptUpload_WifiRequiredButAbsent(t *testing.T) {
	m := mediaOnDisk(t, 1, 0)
	store := newFakeStore(m)
	cfg := enabledConfig()
	cfg.UploadOnlyOnWifi = true
	tr := &fakeTransport{result: okResult()}
	w := newTestWorker(store, tr, &fakeGate{wifi: false}, cfg)

	outcome := w.AttemptUpload(context.Background(), 1)

	assert.Equal(t, OutcomeRetry, outcome)
	assert.Empty(t, store.writes, "connectivity short-circuit must not write")
	assert.Zero(t, tr.calls)
}

func TestAttemptUpload_WifiRequiredAndPresent(t *testing.T) {
	m := mediaOnDisk(t, 1, 0)
	store := newFakeStore(m)
	cfg := enabledConfig()
	cfg.UploadOnlyOnWifi = true
	tr := &fakeTransport{result: okResult()}
	w := newTestWorker(store, tr, &fakeGate{wifi: true}, cfg)

	outcome := w.AttemptUpload(context.Background(), 1)

	assert.Equal(t, OutcomeSuccess, outcome)
	assert.Equal(t, 1, tr.calls)
}

func TestAttemptUpload_EmptyServerURL(t *testing.T) {
	m := mediaOnDisk(t, 1, 0)
	store := newFakeStore(m)
	cfg := enabledConfig()
	cfg.ServerURL = ""
	tr := &fakeTransport{result: okResult()}
	w := newTestWorker(store, tr, &fakeGate{}, cfg)

	outcome := w.AttemptUpload(context.Background(), 1)

	assert.Equal(t, OutcomePermanentFailure, outcome)
	assert.Empty(t, store.writes)
	assert.Zero(t, tr.calls)
}

func TestAttemptUpload_Success(t *testing.T) {
	m := mediaOnDisk(t, 1, 0)
	store := newFakeStore(m)
	tr := &fakeTransport{result: okResult()}
	w := newTestWorker(store, tr, &fakeGate{}, enabledConfig())

	outcome := w.AttemptUpload(context.Background(), 1)

	assert.Equal(t, OutcomeSuccess, outcome)
	// "uploading" is persisted before the network call, then "success"
	assert.Equal(t, []string{"status:uploading", "status:success"}, store.writes)

	got, _ := store.GetByID(context.Background(), 1)
	assert.Equal(t, models.StatusSuccess, got.UploadStatus)
	assert.Equal(t, 0, got.UploadAttempts, "attempts untouched on success")
	assert.Nil(t, got.LastUploadAttempt, "last attempt untouched on success")

	// request carries record fields plus the environment device id
	assert.Equal(t, m.FilePath, tr.lastReq.FilePath)
	assert.Equal(t, "clip.mp4", tr.lastReq.FileName)
	assert.Equal(t, "video/mp4", tr.lastReq.MimeType)
	assert.Equal(t, int64(1700000000000), tr.lastReq.Timestamp)
	assert.Equal(t, "device-1", tr.lastReq.DeviceID)
}

func TestAttemptUpload_MissingFile(t *testing.T) {
	m := mediaOnDisk(t, 1, 0)
	m.FilePath = filepath.Join(t.TempDir(), "gone.mp4")
	ts := int64(111)
	m.UploadAttempts = 2
	m.LastUploadAttempt = &ts
	store := newFakeStore(m)
	tr := &fakeTransport{result: okResult()}
	w := newTestWorker(store, tr, &fakeGate{}, enabledConfig())

	outcome := w.AttemptUpload(context.Background(), 1)

	assert.Equal(t, OutcomePermanentFailure, outcome)
	assert.Zero(t, tr.calls)

	got, _ := store.GetByID(context.Background(), 1)
	assert.Equal(t, models.StatusFailed, got.UploadStatus)
	assert.Equal(t, 2, got.UploadAttempts, "missing file must not consume the attempt budget")
	require.NotNil(t, got.LastUploadAttempt)
	assert.Equal(t, ts, *got.LastUploadAttempt, "missing file must not stamp an attempt")
}

func TestAttemptUpload_TransportErrorIncrementsAttempts(t *testing.T) {
	m := mediaOnDisk(t, 1, 0)
	store := newFakeStore(m)
	tr := &fakeTransport{err: errors.New("connection reset")}
	w := newTestWorker(store, tr, &fakeGate{}, enabledConfig())

	outcome := w.AttemptUpload(context.Background(), 1)

	assert.Equal(t, OutcomeRetry, outcome)
	got, _ := store.GetByID(context.Background(), 1)
	assert.Equal(t, models.StatusFailed, got.UploadStatus)
	assert.Equal(t, 1, got.UploadAttempts)
	require.NotNil(t, got.LastUploadAttempt)
	assert.Equal(t, int64(1700000099999), *got.LastUploadAttempt)
}

func TestAttemptUpload_RemoteFailureClassification(t *testing.T) {
	tests := []struct {
		name         string
		attempts     int
		result       *transport.UploadResult
		wantOutcome  Outcome
		wantAttempts int
	}{
		{
			name:         "first 500 retries",
			attempts:     0,
			result:       failedResult(500),
			wantOutcome:  OutcomeRetry,
			wantAttempts: 1,
		},
		{
			name:         "second failure retries",
			attempts:     1,
			result:       failedResult(500),
			wantOutcome:  OutcomeRetry,
			wantAttempts: 2,
		},
		{
			name:         "third failure is permanent",
			attempts:     2,
			result:       failedResult(500),
			wantOutcome:  OutcomePermanentFailure,
			wantAttempts: 3,
		},
		{
			name:         "2xx with success=false is still a failure",
			attempts:     0,
			result:       failedResult(200),
			wantOutcome:  OutcomeRetry,
			wantAttempts: 1,
		},
		{
			name:     "2xx with undecodable body is still a failure",
			attempts: 0,
			result: &transport.UploadResult{
				StatusCode: 200,
				OK:         true,
				Response:   nil,
			},
			wantOutcome:  OutcomeRetry,
			wantAttempts: 1,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			m := mediaOnDisk(t, 1, tc.attempts)
			store := newFakeStore(m)
			tr := &fakeTransport{result: tc.result}
			w := newTestWorker(store, tr, &fakeGate{}, enabledConfig())

			outcome := w.AttemptUpload(context.Background(), 1)

			assert.Equal(t, tc.wantOutcome, outcome)
			got, _ := store.GetByID(context.Background(), 1)
			assert.Equal(t, models.StatusFailed, got.UploadStatus)
			assert.Equal(t, tc.wantAttempts, got.UploadAttempts)
			require.NotNil(t, got.LastUploadAttempt)
		})
	}
}

func TestAttemptUpload_AlreadyUploadedIsNoOp(t *testing.T) {
	m := mediaOnDisk(t, 1, 0)
	m.UploadStatus = models.StatusSuccess
	store := newFakeStore(m)
	tr := &fakeTransport{result: okResult()}
	w := newTestWorker(store, tr, &fakeGate{}, enabledConfig())

	outcome := w.AttemptUpload(context.Background(), 1)
	assert.Equal(t, OutcomeSuccess, outcome)

	// second invocation: still a no-op
	outcome = w.AttemptUpload(context.Background(), 1)
	assert.Equal(t, OutcomeSuccess, outcome)

	assert.Empty(t, store.writes)
	assert.Zero(t, tr.calls)
}

func TestAttemptUpload_UploadingLeftoverIsReattempted(t *testing.T) {
	// A crash after "uploading" was persisted must not block later attempts.
	m := mediaOnDisk(t, 1, 0)
	m.UploadStatus = models.StatusUploading
	store := newFakeStore(m)
	tr := &fakeTransport{result: okResult()}
	w := newTestWorker(store, tr, &fakeGate{}, enabledConfig())

	outcome := w.AttemptUpload(context.Background(), 1)

	assert.Equal(t, OutcomeSuccess, outcome)
	assert.Equal(t, 1, tr.calls)
}

func TestAttemptUpload_StatusWriteFailureFoldsIntoRetry(t *testing.T) {
	m := mediaOnDisk(t, 1, 0)
	store := newFakeStore(m)
	store.failStatusWrite = true
	tr := &fakeTransport{result: okResult()}
	w := newTestWorker(store, tr, &fakeGate{}, enabledConfig())

	outcome := w.AttemptUpload(context.Background(), 1)

	assert.Equal(t, OutcomeRetry, outcome)
	assert.Zero(t, tr.calls, "network must not be touched if the uploading mark failed")
}
