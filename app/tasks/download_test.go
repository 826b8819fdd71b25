package tasks

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func TestDownloadMediaRecoversAfterTransientFailures(t *testing.T) {
	prevBackoff := downloadBackoff
	downloadBackoff = time.Millisecond
	defer func() { downloadBackoff = prevBackoff }()

	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		if hits < downloadAttempts {
			w.WriteHeader(http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte("audio bytes"))
	}))
	defer srv.Close()

	data, err := downloadMedia(context.Background(), http.DefaultClient, "shiursync-test/1.0", srv.URL)
	if err != nil {
		t.Fatalf("Expected recovery on attempt %d, got error: %v", downloadAttempts, err)
	}
	if string(data) != "audio bytes" {
		t.Errorf("Expected audio payload, got %q", data)
	}
	if hits != downloadAttempts {
		t.Errorf("Expected %d attempts, got %d", downloadAttempts, hits)
	}
}

func TestDownloadMediaGivesUpAfterAllAttempts(t *testing.T) {
	prevBackoff := downloadBackoff
	downloadBackoff = time.Millisecond
	defer func() { downloadBackoff = prevBackoff }()

	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	_, err := downloadMedia(context.Background(), http.DefaultClient, "shiursync-test/1.0", srv.URL)
	if err == nil {
		t.Fatal("Expected error after exhausting attempts")
	}

	var dlErr *DownloadError
	if !errors.As(err, &dlErr) {
		t.Fatalf("Expected DownloadError, got %T: %v", err, err)
	}
	if dlErr.URL != srv.URL {
		t.Errorf("Expected URL %s in error, got %s", srv.URL, dlErr.URL)
	}
	if hits != downloadAttempts {
		t.Errorf("Expected %d attempts, got %d", downloadAttempts, hits)
	}
}

func TestDownloadMediaStopsOnCancelledContext(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := downloadMedia(ctx, http.DefaultClient, "shiursync-test/1.0", srv.URL)
	if err == nil {
		t.Fatal("Expected error for cancelled context")
	}

	var dlErr *DownloadError
	if !errors.As(err, &dlErr) {
		t.Fatalf("Expected DownloadError, got %T: %v", err, err)
	}
	if !errors.Is(err, context.Canceled) {
		t.Errorf("Expected context.Canceled in chain, got %v", err)
	}
}
