// Package transport implements the upload wire contract: one multipart POST
// per media record against a configurable remote endpoint.
package transport

import "context"

// UploadRequest carries everything needed for one upload attempt.
type UploadRequest struct {
	FilePath  string
	FileName  string
	MimeType  string
	Timestamp int64 // capture time, epoch millis
	IsPhoto   bool
	DeviceID  string
}

// UploadResponse is the JSON body the server answers with.
type UploadResponse struct {
	Success bool    `json:"success"`
	Message *string `json:"message,omitempty"`
	FileID  *string `json:"fileId,omitempty"`
}

// UploadResult is the structured outcome of one transport invocation.
// OK reflects the HTTP status only; callers must additionally check
// Response.Success before treating the upload as done.
type UploadResult struct {
	StatusCode int
	OK         bool
	Response   *UploadResponse
}

// Client performs one multipart upload. Transport-level problems (dial,
// timeout, local file read) are returned as an error; HTTP- and body-level
// failures come back inside UploadResult.
type Client interface {
	Upload(ctx context.Context, req UploadRequest) (*UploadResult, error)
}
