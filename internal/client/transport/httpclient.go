package transport

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/cotsubo/camsync/internal/common"
)

// DefaultTimeout bounds one whole upload call.
const DefaultTimeout = 30 * time.Second

// HTTPClient implements Client over net/http.
type HTTPClient struct {
	serverURL  string
	authToken  string
	httpClient *http.Client
}

// NewHTTPClient creates an upload client for the given server base URL.
// authToken may be empty, in which case no Authorization header is sent.
func NewHTTPClient(serverURL, authToken string, timeout time.Duration) *HTTPClient {
	if timeout <= 0 {
		timeout = DefaultTimeout
	}
	return &HTTPClient{
		serverURL: strings.TrimRight(serverURL, "/"),
		authToken: authToken,
		httpClient: &http.Client{
			Timeout: timeout,
		},
	}
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

// filePartHeader builds the file part header with an explicit Content-Type,
// since multipart.Writer.CreateFormFile hardcodes application/octet-stream.
func filePartHeader(fileName, mimeType string) textproto.MIMEHeader {
	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename="%s"`, quoteEscaper.Replace(fileName)))
	h.Set("Content-Type", mimeType)
	return h
}

func (c *HTTPClient) Upload(ctx context.Context, req UploadRequest) (*UploadResult, error) {
	file, err := os.Open(req.FilePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open source file: %w", err)
	}
	defer file.Close()

	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)

	part, err := writer.CreatePart(filePartHeader(req.FileName, req.MimeType))
	if err != nil {
		return nil, fmt.Errorf("failed to create file part: %w", err)
	}
	if _, err := io.Copy(part, file); err != nil {
		return nil, fmt.Errorf("failed to read source file: %w", err)
	}

	if err := writer.WriteField("timestamp", strconv.FormatInt(req.Timestamp, 10)); err != nil {
		return nil, fmt.Errorf("failed to write timestamp field: %w", err)
	}
	if err := writer.WriteField("isPhoto", strconv.FormatBool(req.IsPhoto)); err != nil {
		return nil, fmt.Errorf("failed to write isPhoto field: %w", err)
	}
	if err := writer.WriteField("deviceId", req.DeviceID); err != nil {
		return nil, fmt.Errorf("failed to write deviceId field: %w", err)
	}

	if err := writer.Close(); err != nil {
		return nil, fmt.Errorf("failed to close multipart writer: %w", err)
	}

	url := c.serverURL + "/upload"
	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, url, &buf)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", writer.FormDataContentType())
	if c.authToken != "" {
		httpReq.Header.Set(common.AuthHeaderName, common.BearerPrefix+c.authToken)
	}

	resp, err := c.httpClient.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}
	defer resp.Body.Close()

	result := &UploadResult{
		StatusCode: resp.StatusCode,
		OK:         resp.StatusCode >= 200 && resp.StatusCode < 300,
	}

	// A body that fails to decode leaves Response nil; the caller treats
	// that as a failed upload regardless of status code.
	var body UploadResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err == nil {
		result.Response = &body
	}

	return result, nil
}
