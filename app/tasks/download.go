package tasks

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"
)

const (
	feedFetchTimeout  = 30 * time.Second
	mediaFetchTimeout = 5 * time.Minute

	downloadAttempts = 3
)

// Linear backoff base between download attempts. Variable so tests don't
// have to wait it out.
var downloadBackoff = 2 * time.Second

// DownloadError marks a failure in the media download stage, distinct from
// archive-stage failures so operators can tell "source gave us nothing" from
// "we found the audio but couldn't save it".
type DownloadError struct {
	URL string
	Err error
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("failed to download %s: %v", e.URL, e.Err)
}

func (e *DownloadError) Unwrap() error {
	return e.Err
}

func fetchURL(ctx context.Context, client *http.Client, userAgent, url string, timeout time.Duration) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", url, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", userAgent)

	resp, err := client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return data, nil
}

// downloadMedia fetches audio bytes with a fixed retry policy: 3 attempts
// with linear backoff. The policy applies to media downloads only; feed and
// page fetches get a single attempt.
func downloadMedia(ctx context.Context, client *http.Client, userAgent, url string) ([]byte, error) {
	var lastErr error

	for attempt := 1; attempt <= downloadAttempts; attempt++ {
		data, err := fetchURL(ctx, client, userAgent, url, mediaFetchTimeout)
		if err == nil {
			return data, nil
		}
		lastErr = err

		if attempt < downloadAttempts {
			wait := time.Duration(attempt) * downloadBackoff
			slog.Debug("Media download failed, retrying",
				"url", url, "attempt", attempt, "wait", wait, "error", err)

			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return nil, &DownloadError{URL: url, Err: ctx.Err()}
			}
		}
	}

	return nil, &DownloadError{URL: url, Err: lastErr}
}
