package extract

import "time"

// EpisodeData is the unified result of a detail page extraction. Empty string
// means the field could not be recovered. A usable result has at least one of
// DownloadURL/PlayerDownloadURL set; otherwise FailureReason explains why.
// Transient working data, never persisted beyond the current run.
type EpisodeData struct {
	PageURL string

	DownloadURL       string
	PlayerDownloadURL string
	Title             string
	Duration          string
	DurationSeconds   int
	Description       string
	TeacherName       string
	ShiurID           string
	DateText          string
	PublishedAt       *time.Time

	FailureReason       string
	AttemptedStrategies []string
	StrategyResults     []StrategyResult
}

// Usable reports whether the extraction recovered a direct audio reference.
func (d *EpisodeData) Usable() bool {
	return d.DownloadURL != "" || d.PlayerDownloadURL != ""
}

// StrategyResult records one strategy attempt. Markers are free-form
// diagnostic data (pattern counts, parse errors) kept for troubleshooting,
// never used for control flow.
type StrategyResult struct {
	Strategy  string
	Succeeded bool
	Markers   map[string]any
}

// fields is the raw output of a single strategy before normalization.
type fields struct {
	DownloadURL       string
	PlayerDownloadURL string
	Title             string
	Duration          string
	DurationSeconds   int
	Description       string
	TeacherName       string
	ShiurID           string
	DateText          string
}

// strategy is one self-contained heuristic for recovering episode data from
// raw page content. Returns nil fields when the page does not match. The
// markers map is returned even on failure.
type strategy struct {
	name string
	run  func(body []byte) (*fields, map[string]any)
}
