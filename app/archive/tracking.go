package archive

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"sort"
	"time"
)

const trackingTimeFormat = "2006-01-02 15:04:05"

// Tracking is the durable record of archived shiur IDs for local mode.
// Append-only within a run, except for an explicit Clear. Persisted after
// every successful archive rather than batched, so an interrupted run keeps
// its completed work.
type Tracking struct {
	path string
	ids  map[string]bool
}

type trackingFile struct {
	DownloadedShiurim []string `json:"downloaded_shiurim"`
	LastUpdated       string   `json:"last_updated"`
}

func NewTracking(path string) *Tracking {
	return &Tracking{
		path: path,
		ids:  make(map[string]bool),
	}
}

// Load reads the tracking file. A missing or corrupt file yields an empty
// set: losing the record must never crash a run, the worst case is
// re-offering episodes.
func (t *Tracking) Load() {
	t.ids = make(map[string]bool)

	data, err := os.ReadFile(t.path)
	if err != nil {
		if !os.IsNotExist(err) {
			slog.Warn("Could not read tracking file, starting empty", "path", t.path, "error", err)
		}
		return
	}

	var file trackingFile
	if err := json.Unmarshal(data, &file); err != nil {
		slog.Warn("Could not parse tracking file, starting empty", "path", t.path, "error", err)
		return
	}

	for _, id := range file.DownloadedShiurim {
		if id != "" {
			t.ids[id] = true
		}
	}
}

// Save writes the record with IDs sorted ascending as strings.
func (t *Tracking) Save() error {
	ids := make([]string, 0, len(t.ids))
	for id := range t.ids {
		ids = append(ids, id)
	}
	sort.Strings(ids)

	file := trackingFile{
		DownloadedShiurim: ids,
		LastUpdated:       time.Now().Format(trackingTimeFormat),
	}

	data, err := json.MarshalIndent(file, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to encode tracking record: %w", err)
	}

	if err := os.WriteFile(t.path, data, 0644); err != nil {
		return fmt.Errorf("failed to write tracking record: %w", err)
	}

	return nil
}

func (t *Tracking) Add(shiurID string) {
	if shiurID != "" {
		t.ids[shiurID] = true
	}
}

func (t *Tracking) Contains(shiurID string) bool {
	return t.ids[shiurID]
}

// IDs returns a copy of the archived set.
func (t *Tracking) IDs() map[string]bool {
	ids := make(map[string]bool, len(t.ids))
	for id := range t.ids {
		ids[id] = true
	}
	return ids
}

func (t *Tracking) Count() int {
	return len(t.ids)
}

// Clear empties the record and persists the empty state.
func (t *Tracking) Clear() error {
	t.ids = make(map[string]bool)
	return t.Save()
}
