// Package models defines the captured-media record and its upload lifecycle.
package models

// UploadStatus is the upload lifecycle state of a captured media record.
//
// pending -> uploading -> success | failed. Only the upload worker writes this
// field. success is terminal; failed is terminal once the attempt budget is
// exhausted, otherwise the scheduler re-enters via a fresh uploading.
// No transition returns to pending once left.
type UploadStatus string

const (
	StatusPending   UploadStatus = "pending"
	StatusUploading UploadStatus = "uploading"
	StatusSuccess   UploadStatus = "success"
	StatusFailed    UploadStatus = "failed"
)

// Valid reports whether s is one of the known statuses.
func (s UploadStatus) Valid() bool {
	switch s {
	case StatusPending, StatusUploading, StatusSuccess, StatusFailed:
		return true
	}
	return false
}

// MaxUploadAttempts is the inclusive budget of failed transport attempts
// before a record is considered permanently failed.
const MaxUploadAttempts = 3

// CapturedMedia is one locally captured photo or video.
//
// The store owns the canonical record; the upload worker holds a transient
// copy for the duration of one attempt and always writes back through the
// store.
type CapturedMedia struct {
	ID                int64        `json:"id"`
	FilePath          string       `json:"file_path"`
	FileName          string       `json:"file_name"`
	MimeType          string       `json:"mime_type"`
	IsPhoto           bool         `json:"is_photo"`
	Timestamp         int64        `json:"timestamp"` // capture time, epoch millis
	FileSize          int64        `json:"file_size"`
	UploadStatus      UploadStatus `json:"upload_status"`
	UploadAttempts    int          `json:"upload_attempts"`
	LastUploadAttempt *int64       `json:"last_upload_attempt,omitempty"` // epoch millis
	ServerURL         *string      `json:"server_url,omitempty"`          // server the record was uploaded to, if any
}

// TerminallyFailed reports whether the record has exhausted its attempt budget.
func (m *CapturedMedia) TerminallyFailed() bool {
	return m.UploadStatus == StatusFailed && m.UploadAttempts >= MaxUploadAttempts
}
