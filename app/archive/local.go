package archive

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// LocalSink archives to a directory on disk. Archived IDs come from the
// tracking record, which is the authoritative store in local mode; the
// orchestrator persists it after every successful Store.
type LocalSink struct {
	tracking *Tracking
}

func NewLocalSink(tracking *Tracking) *LocalSink {
	return &LocalSink{tracking: tracking}
}

func (s *LocalSink) ResolveDestination(_ context.Context, base, feedName string, useSubfolders bool) (Destination, error) {
	dir := base
	if useSubfolders && feedName != "" {
		dir = filepath.Join(base, SanitizeFilename(feedName))
	}

	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	return Destination(dir), nil
}

func (s *LocalSink) ListArchivedIDs(_ context.Context, _ Destination) (map[string]bool, error) {
	return s.tracking.IDs(), nil
}

func (s *LocalSink) Store(_ context.Context, data []byte, filename string, dest Destination, shiurID string) error {
	path := filepath.Join(string(dest), filename)

	// An existing file means a previous run already got this far; treating
	// it as success keeps re-runs after partial failures idempotent.
	if _, err := os.Stat(path); err == nil {
		slog.Debug("File already exists, skipping write", "path", path)
		return nil
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		// Leave no partial file behind.
		os.Remove(path)
		return &StoreError{Filename: filename, Err: err}
	}

	return nil
}
