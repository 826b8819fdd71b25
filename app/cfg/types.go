package cfg

import "time"

type Cfg struct {
	// Feed selection
	Feed   string // feed name from the registry
	RSSURL string // raw RSS URL, overrides Feed

	// Destination configuration
	Drive           bool
	OutputDir       string
	DriveBaseFolder string
	UseSubfolders   bool

	// Google Drive credentials
	DriveCredentials string
	DriveToken       string

	// Run configuration
	Delay        time.Duration
	Limit        int
	TrackingFile string
	FeedsFile    string

	// HTTP server (serve mode)
	Serve        bool
	Port         string
	APIAccessKey string

	// Application metadata
	UserAgent string
	Timezone  string
	Debug     bool
	Version   string
}
