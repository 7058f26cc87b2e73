package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/cotsubo/camsync/internal/flagx"
	"github.com/cotsubo/camsync/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify intervals either as
// strings like "30s" or as integer nanoseconds. After parsing, values
// are copied into the runtime Config (which uses time.Duration).
type JsonConfig struct {
	AutoUploadEnabled *bool          `json:"auto_upload_enabled"`
	UploadOnlyOnWifi  *bool          `json:"upload_only_on_wifi"`
	ServerURL         *string        `json:"server_url"`
	ServerAuthToken   *string        `json:"server_auth_token"`
	DeviceID          *string        `json:"device_id"`
	StorePath         *string        `json:"store_path"`
	WatchDir          *string        `json:"watch_dir"`
	ScanInterval      timex.Duration `json:"scan_interval"`
	UploadTimeout     timex.Duration `json:"upload_timeout"`
	MinBackoff        timex.Duration `json:"min_backoff"`
	MaxBackoff        timex.Duration `json:"max_backoff"`
}

// parseJson overlays Config with values loaded from a JSON file. The file
// path comes from the -c/-config flags via flagx.JsonConfigFlags; when no
// path is given the overlay is a no-op. Fields absent from the JSON keep
// their current values. Panics on read or unmarshal errors.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.JsonConfigFlags()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	if jc.AutoUploadEnabled != nil {
		cfg.AutoUploadEnabled = *jc.AutoUploadEnabled
	}
	if jc.UploadOnlyOnWifi != nil {
		cfg.UploadOnlyOnWifi = *jc.UploadOnlyOnWifi
	}
	if jc.ServerURL != nil {
		cfg.ServerURL = *jc.ServerURL
	}
	if jc.ServerAuthToken != nil {
		cfg.ServerAuthToken = *jc.ServerAuthToken
	}
	if jc.DeviceID != nil {
		cfg.DeviceID = *jc.DeviceID
	}
	if jc.StorePath != nil {
		cfg.StorePath = *jc.StorePath
	}
	if jc.WatchDir != nil {
		cfg.WatchDir = *jc.WatchDir
	}
	if jc.ScanInterval.Duration > 0 {
		cfg.ScanInterval = time.Duration(jc.ScanInterval.Duration)
	}
	if jc.UploadTimeout.Duration > 0 {
		cfg.UploadTimeout = time.Duration(jc.UploadTimeout.Duration)
	}
	if jc.MinBackoff.Duration > 0 {
		cfg.MinBackoff = time.Duration(jc.MinBackoff.Duration)
	}
	if jc.MaxBackoff.Duration > 0 {
		cfg.MaxBackoff = time.Duration(jc.MaxBackoff.Duration)
	}
}
