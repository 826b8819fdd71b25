package archive

import (
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestTrackingRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "downloaded_shiurim.json")

	tracking := NewTracking(path)
	tracking.Load()
	tracking.Add("1160032")
	tracking.Add("1159876")
	tracking.Add("1160274")

	if err := tracking.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	reloaded := NewTracking(path)
	reloaded.Load()

	if reloaded.Count() != 3 {
		t.Fatalf("Expected 3 IDs after reload, got %d", reloaded.Count())
	}
	for _, id := range []string{"1159876", "1160032", "1160274"} {
		if !reloaded.Contains(id) {
			t.Errorf("Expected reloaded record to contain %s", id)
		}
	}
}

func TestTrackingFileFormat(t *testing.T) {
	path := filepath.Join(t.TempDir(), "downloaded_shiurim.json")

	tracking := NewTracking(path)
	tracking.Add("222")
	tracking.Add("111")
	tracking.Add("333")
	if err := tracking.Save(); err != nil {
		t.Fatalf("Save failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	var file struct {
		DownloadedShiurim []string `json:"downloaded_shiurim"`
		LastUpdated       string   `json:"last_updated"`
	}
	if err := json.Unmarshal(data, &file); err != nil {
		t.Fatalf("Tracking file is not valid JSON: %v", err)
	}

	// IDs are stored sorted ascending as strings.
	want := []string{"111", "222", "333"}
	for i, id := range want {
		if file.DownloadedShiurim[i] != id {
			t.Errorf("Expected ID %d to be %s, got %s", i, id, file.DownloadedShiurim[i])
		}
	}

	if _, err := time.Parse("2006-01-02 15:04:05", file.LastUpdated); err != nil {
		t.Errorf("last_updated is not a valid timestamp: %q (%v)", file.LastUpdated, err)
	}
}

func TestTrackingMissingFile(t *testing.T) {
	tracking := NewTracking(filepath.Join(t.TempDir(), "nonexistent.json"))
	tracking.Load()

	if tracking.Count() != 0 {
		t.Errorf("Expected empty set for missing file, got %d IDs", tracking.Count())
	}
}

func TestTrackingCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "corrupt.json")
	if err := os.WriteFile(path, []byte("{not valid json"), 0644); err != nil {
		t.Fatal(err)
	}

	tracking := NewTracking(path)
	tracking.Load()

	if tracking.Count() != 0 {
		t.Errorf("Expected empty set for corrupt file, got %d IDs", tracking.Count())
	}
}

func TestTrackingClear(t *testing.T) {
	path := filepath.Join(t.TempDir(), "downloaded_shiurim.json")

	tracking := NewTracking(path)
	tracking.Add("1160032")
	if err := tracking.Save(); err != nil {
		t.Fatal(err)
	}

	if err := tracking.Clear(); err != nil {
		t.Fatalf("Clear failed: %v", err)
	}

	reloaded := NewTracking(path)
	reloaded.Load()
	if reloaded.Count() != 0 {
		t.Errorf("Expected empty record after clear, got %d IDs", reloaded.Count())
	}
}

func TestTrackingIgnoresEmptyID(t *testing.T) {
	tracking := NewTracking(filepath.Join(t.TempDir(), "t.json"))
	tracking.Add("")

	if tracking.Count() != 0 {
		t.Errorf("Expected empty ID to be ignored, got %d IDs", tracking.Count())
	}
}
