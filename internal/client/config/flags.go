package config

import (
	"flag"
	"os"
	"time"

	"github.com/cotsubo/camsync/internal/flagx"
)

// parseFlags populates selected Config fields from command-line flags.
//
// Supported flags (short forms):
//
//	-a string   base URL of the receiving server
//	-t string   bearer token for the upload endpoint
//	-d string   capture directory to watch
//	-s string   path of the media record store
//	-i int      capture scan interval in seconds
//	-wifi bool  upload only while on wifi
//
// Note: The function filters os.Args to only include the flags it knows about,
// using flagx.FilterArgs, to avoid interference with other components.
func parseFlags(cfg *Config) {
	args := flagx.FilterArgs(os.Args[1:], []string{"-a", "-t", "-d", "-s", "-i", "-wifi"})

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&cfg.ServerURL, "a", cfg.ServerURL, "base URL of the receiving server")
	fs.StringVar(&cfg.ServerAuthToken, "t", cfg.ServerAuthToken, "bearer token for the upload endpoint")
	fs.StringVar(&cfg.WatchDir, "d", cfg.WatchDir, "capture directory to watch")
	fs.StringVar(&cfg.StorePath, "s", cfg.StorePath, "path of the media record store")
	scanInterval := fs.Int("i", int(cfg.ScanInterval.Seconds()), "capture scan interval (in seconds)")
	fs.BoolVar(&cfg.UploadOnlyOnWifi, "wifi", cfg.UploadOnlyOnWifi, "upload only while on wifi")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	cfg.ScanInterval = time.Duration(*scanInterval) * time.Second
}
