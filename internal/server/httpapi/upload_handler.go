// Package httpapi exposes the HTTP surface of the upload server: the
// authenticated multipart upload endpoint and a liveness probe.
package httpapi

import (
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/cotsubo/camsync/internal/logging"
	"github.com/cotsubo/camsync/internal/server/models"
	"github.com/cotsubo/camsync/internal/server/repositories/uploads"
	"github.com/cotsubo/camsync/internal/server/storage"
)

// UploadResponse is the JSON body returned for every upload request. Clients
// treat success=false as a failed attempt regardless of the HTTP status.
type UploadResponse struct {
	Success bool    `json:"success"`
	Message *string `json:"message,omitempty"`
	FileID  *string `json:"fileId,omitempty"`
}

// UploadHandler handles media upload operations.
type UploadHandler struct {
	logger logging.Logger
	blobs  storage.BlobStore
	store  uploads.Repository
	now    func() time.Time
}

// NewUploadHandler creates a new upload handler.
func NewUploadHandler(logger logging.Logger, blobs storage.BlobStore, store uploads.Repository) *UploadHandler {
	if logger == nil {
		logger = logging.NopLogger{}
	}
	return &UploadHandler{logger: logger, blobs: blobs, store: store, now: time.Now}
}

// UploadMediaRequest represents the expected form data for a media upload.
type UploadMediaRequest struct {
	Timestamp string `form:"timestamp" binding:"required"`
	IsPhoto   string `form:"isPhoto" binding:"required"`
	DeviceID  string `form:"deviceId" binding:"required"`
}

// Upload handles POST /upload.
func (h *UploadHandler) Upload(c *gin.Context) {
	ctx := c.Request.Context()

	var req UploadMediaRequest
	if err := c.ShouldBind(&req); err != nil {
		h.logger.Warn(ctx, "invalid form data", "error", err)
		h.fail(c, http.StatusBadRequest, "invalid form data: "+err.Error())
		return
	}

	// timestamp is epoch milliseconds of the capture moment
	millis, err := strconv.ParseInt(req.Timestamp, 10, 64)
	if err != nil {
		h.logger.Warn(ctx, "invalid timestamp", "timestamp", req.Timestamp, "error", err)
		h.fail(c, http.StatusBadRequest, "invalid timestamp: expected epoch milliseconds")
		return
	}
	capturedAt := time.UnixMilli(millis).UTC()

	isPhoto, err := strconv.ParseBool(req.IsPhoto)
	if err != nil {
		h.logger.Warn(ctx, "invalid isPhoto", "isPhoto", req.IsPhoto, "error", err)
		h.fail(c, http.StatusBadRequest, "invalid isPhoto: expected boolean")
		return
	}

	fileHeader, err := c.FormFile("file")
	if err != nil {
		h.logger.Warn(ctx, "missing file part", "error", err)
		h.fail(c, http.StatusBadRequest, "file part is required")
		return
	}

	file, err := fileHeader.Open()
	if err != nil {
		h.logger.Error(ctx, "failed to open uploaded file", "error", err)
		h.fail(c, http.StatusInternalServerError, "failed to process uploaded file")
		return
	}
	defer file.Close()

	contentType := fileHeader.Header.Get("Content-Type")
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	key, err := h.blobs.Put(ctx, fileHeader.Filename, contentType, fileHeader.Size, file)
	if err != nil {
		h.logger.Error(ctx, "failed to store blob", "file", fileHeader.Filename, "error", err)
		h.fail(c, http.StatusInternalServerError, "failed to store file")
		return
	}

	upload := &models.Upload{
		ID:         uuid.NewString(),
		DeviceID:   req.DeviceID,
		FileName:   fileHeader.Filename,
		MimeType:   contentType,
		IsPhoto:    isPhoto,
		CapturedAt: capturedAt,
		Size:       fileHeader.Size,
		StorageKey: key,
		UploadedAt: h.now().UTC(),
	}

	if err := h.store.Insert(ctx, upload); err != nil {
		h.logger.Error(ctx, "failed to insert upload row", "uploadID", upload.ID, "error", err)
		h.fail(c, http.StatusInternalServerError, "failed to record upload")
		return
	}

	h.logger.Info(ctx, "upload received", "uploadID", upload.ID, "deviceID", req.DeviceID, "file", fileHeader.Filename)

	c.JSON(http.StatusOK, UploadResponse{Success: true, FileID: &upload.ID})
}

// Health handles GET /health.
func (h *UploadHandler) Health(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

func (h *UploadHandler) fail(c *gin.Context, status int, message string) {
	c.JSON(status, UploadResponse{Success: false, Message: &message})
}

func ptr(s string) *string { return &s }
