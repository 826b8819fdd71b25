package api

import (
	"net/http"
	"sync"

	"github.com/ymarkus/shiursync/app/archive"
	"github.com/ymarkus/shiursync/app/feed"
	"github.com/ymarkus/shiursync/app/tasks"
)

type Handler struct {
	registry   *feed.Registry
	sink       archive.Sink
	tracking   *archive.Tracking // nil in remote mode
	httpClient *http.Client
	opts       tasks.RunOptions

	// Runs are sequential by contract: one check or sync at a time.
	runMu    sync.Mutex
	statsMu  sync.RWMutex
	lastSync *tasks.RunStats
	lastRuns []RunRecord
}

// RunRecord is one entry of the run history kept for the stats endpoint.
type RunRecord struct {
	TaskID   string                 `json:"task_id"`
	Type     tasks.TaskType         `json:"type"`
	Feed     string                 `json:"feed"`
	Duration string                 `json:"duration"`
	Stats    *tasks.RunStats        `json:"stats,omitempty"`
	Failures []tasks.EpisodeFailure `json:"failures,omitempty"`
}

const runHistorySize = 20
