package config

import (
	"os"
	"strconv"
)

// parseEnv overlays Config with environment variables. Unset variables keep
// the current values; boolean variables accept anything strconv.ParseBool
// does.
//
// Recognized variables:
//
//	CAMSYNC_SERVER_URL
//	CAMSYNC_AUTH_TOKEN
//	CAMSYNC_DEVICE_ID
//	CAMSYNC_AUTO_UPLOAD
//	CAMSYNC_WIFI_ONLY
func parseEnv(cfg *Config) {
	if v, ok := os.LookupEnv("CAMSYNC_SERVER_URL"); ok {
		cfg.ServerURL = v
	}
	if v, ok := os.LookupEnv("CAMSYNC_AUTH_TOKEN"); ok {
		cfg.ServerAuthToken = v
	}
	if v, ok := os.LookupEnv("CAMSYNC_DEVICE_ID"); ok {
		cfg.DeviceID = v
	}
	if v, ok := os.LookupEnv("CAMSYNC_AUTO_UPLOAD"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.AutoUploadEnabled = b
		}
	}
	if v, ok := os.LookupEnv("CAMSYNC_WIFI_ONLY"); ok {
		if b, err := strconv.ParseBool(v); err == nil {
			cfg.UploadOnlyOnWifi = b
		}
	}
}
