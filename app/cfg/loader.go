package cfg

import (
	"cmp"
	"fmt"
	"time"

	"github.com/jessevdk/go-flags"
)

// Version is set at build time via -ldflags
var Version = "dev"

func GetVersion() string {
	return cmp.Or(Version, "unknown")
}

const (
	MinDelay = 500 * time.Millisecond
	MaxDelay = 5 * time.Second
)

type rawCfg struct {
	// Feed selection
	Feed   string `long:"feed" env:"FEED" description:"Feed name from the registry to process"`
	RSSURL string `long:"rss-url" env:"RSS_URL" description:"Raw RSS feed URL (overrides --feed)"`

	// Destination configuration
	Drive           bool   `long:"drive" env:"DRIVE" description:"Archive to Google Drive instead of the local filesystem"`
	OutputDir       string `long:"output-dir" env:"OUTPUT_DIR" default:"downloads" description:"Local output directory for downloaded files"`
	DriveBaseFolder string `long:"drive-base-folder" env:"DRIVE_BASE_FOLDER" default:"Shiurim" description:"Base Google Drive folder name"`
	UseSubfolders   bool   `long:"subfolders" env:"USE_SUBFOLDERS" description:"Create a per-feed subfolder under the destination"`

	// Google Drive credentials
	DriveCredentials string `long:"drive-credentials" env:"DRIVE_CREDENTIALS" default:"credentials.json" description:"Path to Google OAuth client credentials file"`
	DriveToken       string `long:"drive-token" env:"DRIVE_TOKEN" default:"token.json" description:"Path to saved Google OAuth token file"`

	// Run configuration
	Delay        float64 `long:"delay" env:"DELAY" default:"1.0" description:"Delay between episode requests in seconds (0.5-5)"`
	Limit        int     `long:"limit" env:"LIMIT" description:"Maximum number of new episodes to process per run (0 = no limit)"`
	TrackingFile string  `long:"tracking-file" env:"TRACKING_FILE" default:"downloaded_shiurim.json" description:"Path to the download tracking database file"`
	FeedsFile    string  `long:"feeds-file" env:"FEEDS_FILE" default:"rss_feeds.json" description:"Path to the RSS feed registry file"`

	// HTTP server (serve mode)
	Serve        bool   `long:"serve" env:"SERVE" description:"Run the HTTP API server instead of a one-shot sync"`
	Port         string `long:"port" env:"PORT" default:"8080" description:"HTTP server port"`
	APIAccessKey string `long:"api-key" env:"API_ACCESS_KEY" description:"API access key for authentication (optional)"`

	// Application metadata
	UserAgent string `long:"user-agent" env:"USER_AGENT" default:"shiursync/1.0" description:"User agent string for HTTP requests"`
	Timezone  string `long:"timezone" env:"TZ" default:"UTC" description:"Timezone for timestamps (e.g., UTC, America/New_York)"`
	Debug     bool   `long:"debug" env:"DEBUG" description:"Enable debug logging"`
}

var globalCfg *Cfg

func Load() (*Cfg, error) {
	var raw rawCfg

	parser := flags.NewParser(&raw, flags.Default)

	if _, err := parser.Parse(); err != nil {
		if flagsErr, ok := err.(*flags.Error); ok {
			if flagsErr.Type == flags.ErrHelp {
				return nil, nil
			}
		}
		return nil, fmt.Errorf("failed to parse configuration: %w", err)
	}

	cfg := &Cfg{
		Feed:             raw.Feed,
		RSSURL:           raw.RSSURL,
		Drive:            raw.Drive,
		OutputDir:        raw.OutputDir,
		DriveBaseFolder:  raw.DriveBaseFolder,
		UseSubfolders:    raw.UseSubfolders,
		DriveCredentials: raw.DriveCredentials,
		DriveToken:       raw.DriveToken,
		Delay:            ClampDelay(time.Duration(raw.Delay * float64(time.Second))),
		Limit:            raw.Limit,
		TrackingFile:     raw.TrackingFile,
		FeedsFile:        raw.FeedsFile,
		Serve:            raw.Serve,
		Port:             raw.Port,
		APIAccessKey:     raw.APIAccessKey,
		UserAgent:        raw.UserAgent,
		Timezone:         raw.Timezone,
		Debug:            raw.Debug,
		Version:          GetVersion(),
	}

	if err := applyTimezone(cfg.Timezone); err != nil {
		fmt.Printf("Warning: Invalid timezone '%s', using system default: %v\n", cfg.Timezone, err)
	}

	globalCfg = cfg

	return cfg, nil
}

func Get() *Cfg {
	if globalCfg == nil {
		panic("configuration not loaded - call cfg.Load() first")
	}
	return globalCfg
}

// ClampDelay bounds the inter-request delay to the allowed politeness window.
func ClampDelay(d time.Duration) time.Duration {
	if d < MinDelay {
		return MinDelay
	}
	if d > MaxDelay {
		return MaxDelay
	}
	return d
}

func applyTimezone(timezone string) error {
	if timezone != "" {
		if loc, err := time.LoadLocation(timezone); err != nil {
			return err
		} else {
			time.Local = loc
		}
	}
	return nil
}
