package config

import (
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Config holds runtime settings for the capture client.
//
// Fields:
//   - AutoUploadEnabled: master switch for the upload pipeline.
//   - UploadOnlyOnWifi: defer uploads until a wifi interface is connected.
//   - ServerURL: base URL of the receiving server (no trailing /upload).
//   - ServerAuthToken: bearer token sent with each upload; empty disables auth.
//   - DeviceID: stable identifier for this device; generated and persisted
//     on first run when empty.
//   - StorePath: path of the media record store (.json for the flat-file
//     store, anything else is opened as a SQLite database).
//   - WatchDir: capture directory scanned for new media.
//   - ScanInterval: watcher polling period.
//   - UploadTimeout: per-request HTTP timeout.
//   - MinBackoff / MaxBackoff: retry interval bounds between upload attempts.
type Config struct {
	AutoUploadEnabled bool
	UploadOnlyOnWifi  bool
	ServerURL         string
	ServerAuthToken   string
	DeviceID          string
	StorePath         string
	WatchDir          string
	ScanInterval      time.Duration
	UploadTimeout     time.Duration
	MinBackoff        time.Duration
	MaxBackoff        time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.AutoUploadEnabled = true
	c.UploadOnlyOnWifi = true
	c.ServerURL = ""
	c.ServerAuthToken = ""
	c.DeviceID = ""
	c.StorePath = "media.json"
	c.WatchDir = "captures"
	c.ScanInterval = 10 * time.Second
	c.UploadTimeout = 30 * time.Second
	c.MinBackoff = 30 * time.Second
	c.MaxBackoff = 15 * time.Minute
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present), command-line flags, and environment variables. Later
// sources take precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	parseEnv(cfg)
	return cfg
}

// EnsureDeviceID fills in DeviceID when the overlays left it empty. The
// generated ID is persisted next to the record store so the device keeps its
// identity across restarts.
func (c *Config) EnsureDeviceID() error {
	if c.DeviceID != "" {
		return nil
	}

	idFile := filepath.Join(filepath.Dir(c.StorePath), "device-id")
	if data, err := os.ReadFile(idFile); err == nil {
		if id := strings.TrimSpace(string(data)); id != "" {
			c.DeviceID = id
			return nil
		}
	}

	id := uuid.NewString()
	if err := os.WriteFile(idFile, []byte(id+"\n"), 0o600); err != nil {
		return err
	}
	c.DeviceID = id
	return nil
}
