package transport

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempFile(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "photo.jpg")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func sampleRequest(path string) UploadRequest {
	return UploadRequest{
		FilePath:  path,
		FileName:  "photo.jpg",
		MimeType:  "image/jpeg",
		Timestamp: 1712345678901,
		IsPhoto:   true,
		DeviceID:  "device-1",
	}
}

func TestUpload_SendsMultipartFormAndAuthHeader(t *testing.T) {
	path := writeTempFile(t, "jpeg-bytes")

	var gotAuth, gotTimestamp, gotIsPhoto, gotDeviceID, gotFileName, gotPartType string
	var gotFile []byte

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "/upload", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")

		require.NoError(t, r.ParseMultipartForm(1<<20))
		gotTimestamp = r.FormValue("timestamp")
		gotIsPhoto = r.FormValue("isPhoto")
		gotDeviceID = r.FormValue("deviceId")

		f, fh, err := r.FormFile("file")
		require.NoError(t, err)
		defer f.Close()
		gotFileName = fh.Filename
		gotPartType = fh.Header.Get("Content-Type")
		data, err := io.ReadAll(f)
		require.NoError(t, err)
		gotFile = data

		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"success":true,"fileId":"abc-123"}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "secret-token", time.Second)
	res, err := c.Upload(context.Background(), sampleRequest(path))
	require.NoError(t, err)

	assert.True(t, res.OK)
	assert.Equal(t, http.StatusOK, res.StatusCode)
	require.NotNil(t, res.Response)
	assert.True(t, res.Response.Success)
	require.NotNil(t, res.Response.FileID)
	assert.Equal(t, "abc-123", *res.Response.FileID)

	assert.Equal(t, "Bearer secret-token", gotAuth)
	assert.Equal(t, "1712345678901", gotTimestamp)
	assert.Equal(t, "true", gotIsPhoto)
	assert.Equal(t, "device-1", gotDeviceID)
	assert.Equal(t, "photo.jpg", gotFileName)
	assert.Equal(t, "image/jpeg", gotPartType)
	assert.Equal(t, "jpeg-bytes", string(gotFile))
}

func TestUpload_OmitsAuthHeaderWithoutToken(t *testing.T) {
	path := writeTempFile(t, "x")

	var gotAuth string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		w.Write([]byte(`{"success":true}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "", time.Second)
	_, err := c.Upload(context.Background(), sampleRequest(path))
	require.NoError(t, err)
	assert.Empty(t, gotAuth)
}

func TestUpload_Non2xxIsResultNotError(t *testing.T) {
	path := writeTempFile(t, "x")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
		w.Write([]byte(`{"success":false,"message":"boom"}`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "t", time.Second)
	res, err := c.Upload(context.Background(), sampleRequest(path))
	require.NoError(t, err)

	assert.False(t, res.OK)
	assert.Equal(t, http.StatusInternalServerError, res.StatusCode)
	require.NotNil(t, res.Response)
	assert.False(t, res.Response.Success)
}

func TestUpload_UndecodableBodyLeavesResponseNil(t *testing.T) {
	path := writeTempFile(t, "x")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`not json`))
	}))
	defer srv.Close()

	c := NewHTTPClient(srv.URL, "t", time.Second)
	res, err := c.Upload(context.Background(), sampleRequest(path))
	require.NoError(t, err)
	assert.True(t, res.OK)
	assert.Nil(t, res.Response)
}

func TestUpload_MissingFileIsError(t *testing.T) {
	c := NewHTTPClient("http://127.0.0.1:0", "t", time.Second)
	_, err := c.Upload(context.Background(), sampleRequest("/nope/missing.jpg"))
	require.Error(t, err)
}

func TestUpload_ConnectionErrorIsError(t *testing.T) {
	path := writeTempFile(t, "x")

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // refuse connections

	c := NewHTTPClient(srv.URL, "t", time.Second)
	_, err := c.Upload(context.Background(), sampleRequest(path))
	require.Error(t, err)
}
