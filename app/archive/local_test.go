package archive

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func newTestLocalSink(t *testing.T) (*LocalSink, string) {
	t.Helper()
	dir := t.TempDir()
	tracking := NewTracking(filepath.Join(dir, "tracking.json"))
	tracking.Load()
	return NewLocalSink(tracking), dir
}

func TestLocalSinkResolveDestination(t *testing.T) {
	sink, dir := newTestLocalSink(t)
	ctx := context.Background()

	dest, err := sink.ResolveDestination(ctx, filepath.Join(dir, "out"), "Daf Yomi", false)
	if err != nil {
		t.Fatalf("ResolveDestination failed: %v", err)
	}
	if string(dest) != filepath.Join(dir, "out") {
		t.Errorf("Expected base dir without subfolder, got: %s", dest)
	}

	dest, err = sink.ResolveDestination(ctx, filepath.Join(dir, "out"), "Daf Yomi: Berachos", true)
	if err != nil {
		t.Fatalf("ResolveDestination with subfolder failed: %v", err)
	}
	if string(dest) != filepath.Join(dir, "out", "Daf Yomi- Berachos") {
		t.Errorf("Expected sanitized subfolder, got: %s", dest)
	}

	if info, err := os.Stat(string(dest)); err != nil || !info.IsDir() {
		t.Errorf("Expected destination directory to exist: %v", err)
	}
}

func TestLocalSinkResolveDestinationIdempotent(t *testing.T) {
	sink, dir := newTestLocalSink(t)
	ctx := context.Background()

	first, err := sink.ResolveDestination(ctx, filepath.Join(dir, "out"), "Feed", true)
	if err != nil {
		t.Fatal(err)
	}
	second, err := sink.ResolveDestination(ctx, filepath.Join(dir, "out"), "Feed", true)
	if err != nil {
		t.Fatal(err)
	}
	if first != second {
		t.Errorf("Expected identical handles, got %s and %s", first, second)
	}
}

func TestLocalSinkStore(t *testing.T) {
	sink, dir := newTestLocalSink(t)
	ctx := context.Background()

	dest, err := sink.ResolveDestination(ctx, filepath.Join(dir, "out"), "", false)
	if err != nil {
		t.Fatal(err)
	}

	content := []byte("fake mp3 bytes")
	if err := sink.Store(ctx, content, "1160032.mp3", dest, "1160032"); err != nil {
		t.Fatalf("Store failed: %v", err)
	}

	written, err := os.ReadFile(filepath.Join(string(dest), "1160032.mp3"))
	if err != nil {
		t.Fatalf("Expected stored file: %v", err)
	}
	if string(written) != string(content) {
		t.Error("Stored content does not match input")
	}
}

func TestLocalSinkStoreExistingFileIsSuccess(t *testing.T) {
	sink, dir := newTestLocalSink(t)
	ctx := context.Background()

	dest, _ := sink.ResolveDestination(ctx, filepath.Join(dir, "out"), "", false)
	path := filepath.Join(string(dest), "1160032.mp3")
	if err := os.WriteFile(path, []byte("already here"), 0644); err != nil {
		t.Fatal(err)
	}

	if err := sink.Store(ctx, []byte("new bytes"), "1160032.mp3", dest, "1160032"); err != nil {
		t.Fatalf("Expected existing file to count as success, got: %v", err)
	}

	// The original content is left untouched.
	written, _ := os.ReadFile(path)
	if string(written) != "already here" {
		t.Error("Expected existing file to be preserved")
	}
}

func TestLocalSinkStoreErrorType(t *testing.T) {
	sink, _ := newTestLocalSink(t)
	ctx := context.Background()

	// Destination directory that does not exist and was never resolved.
	err := sink.Store(ctx, []byte("x"), "a.mp3", Destination("/nonexistent/path/here"), "1")
	if err == nil {
		t.Fatal("Expected store to fail")
	}

	var storeErr *StoreError
	if !errors.As(err, &storeErr) {
		t.Errorf("Expected *StoreError, got %T: %v", err, err)
	}
}

func TestLocalSinkListArchivedIDs(t *testing.T) {
	dir := t.TempDir()
	tracking := NewTracking(filepath.Join(dir, "tracking.json"))
	tracking.Load()
	tracking.Add("1159876")
	tracking.Add("1160032")

	sink := NewLocalSink(tracking)
	ids, err := sink.ListArchivedIDs(context.Background(), Destination(dir))
	if err != nil {
		t.Fatalf("ListArchivedIDs failed: %v", err)
	}

	if len(ids) != 2 || !ids["1159876"] || !ids["1160032"] {
		t.Errorf("Unexpected archived IDs: %v", ids)
	}
}
