// Package models defines the server-side persistence types.
package models

import "time"

// Upload is one received media file: its metadata row plus the key of the
// blob in object storage.
type Upload struct {
	ID         string
	DeviceID   string
	FileName   string
	MimeType   string
	IsPhoto    bool
	CapturedAt time.Time
	Size       int64
	StorageKey string
	UploadedAt time.Time
}
