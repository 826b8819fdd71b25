package extract

import (
	"bytes"
	"cmp"
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"codeberg.org/readeck/go-readability"
	"github.com/araddon/dateparse"
)

const fetchTimeout = 30 * time.Second

// Extractor recovers episode data from detail pages by running an ordered
// chain of extraction strategies. The chain goes from most structured
// (explicit JSON payloads with known keys) to most speculative (raw tag
// scraping), and stops at the first strategy that yields a usable audio
// reference.
type Extractor struct {
	httpClient *http.Client
	userAgent  string
}

func NewExtractor(httpClient *http.Client, userAgent string) *Extractor {
	return &Extractor{
		httpClient: httpClient,
		userAgent:  userAgent,
	}
}

// strategies returns the chain in fixed order. Reordering or adding a
// strategy is a local change here.
func strategies() []strategy {
	return []strategy{
		shiurDataStrategy(),
		nextDataStrategy(),
		scriptBlobStrategy(),
		audioTagStrategy(),
	}
}

// StrategyNames lists the chain in execution order.
func StrategyNames() []string {
	chain := strategies()
	names := make([]string, len(chain))
	for i, s := range chain {
		names[i] = s.name
	}
	return names
}

// Extract fetches the detail page and runs the strategy chain. It never
// returns an error: transport failures and extraction exhaustion are normal
// outcomes represented in the result's FailureReason, with the shiur ID still
// derived from the URL alone where possible.
func (e *Extractor) Extract(ctx context.Context, pageURL string) *EpisodeData {
	data := &EpisodeData{
		PageURL:             pageURL,
		ShiurID:             ShiurID(pageURL),
		AttemptedStrategies: []string{},
	}

	body, err := e.fetchPage(ctx, pageURL)
	if err != nil {
		data.FailureReason = fmt.Sprintf("page_fetch_error: %v", err)
		return data
	}

	var winner *fields
	for _, s := range strategies() {
		f, markers := s.run(body)
		usable := f != nil && (f.DownloadURL != "" || f.PlayerDownloadURL != "")

		data.AttemptedStrategies = append(data.AttemptedStrategies, s.name)
		data.StrategyResults = append(data.StrategyResults, StrategyResult{
			Strategy:  s.name,
			Succeeded: usable,
			Markers:   markers,
		})

		if usable {
			winner = f
			slog.Debug("Extraction strategy succeeded", "strategy", s.name, "url", pageURL)
			break
		}
	}

	if winner == nil {
		data.FailureReason = "no_supported_audio_payload_found"
		return data
	}

	e.normalize(data, winner, body)
	return data
}

// normalize maps the winning strategy's fields into the common schema and
// fills gaps: the two download URLs default to each other, the shiur ID falls
// back to the URL-derived one, and a missing description falls back to the
// page's readable excerpt.
func (e *Extractor) normalize(data *EpisodeData, f *fields, body []byte) {
	data.DownloadURL = cmp.Or(f.DownloadURL, f.PlayerDownloadURL)
	data.PlayerDownloadURL = cmp.Or(f.PlayerDownloadURL, f.DownloadURL)
	data.ShiurID = cmp.Or(f.ShiurID, data.ShiurID)
	data.Title = f.Title
	data.Duration = f.Duration
	data.DurationSeconds = f.DurationSeconds
	data.Description = f.Description
	data.TeacherName = f.TeacherName
	data.DateText = f.DateText

	if data.DurationSeconds == 0 && data.Duration != "" {
		data.DurationSeconds = parseDurationSeconds(data.Duration)
	}

	if data.DateText != "" {
		if ts, err := dateparse.ParseAny(data.DateText); err == nil {
			data.PublishedAt = &ts
		}
	}

	if data.Description == "" {
		if article, err := readability.FromReader(bytes.NewReader(body), nil); err == nil {
			data.Description = strings.TrimSpace(article.Excerpt)
		}
	}
}

func (e *Extractor) fetchPage(ctx context.Context, pageURL string) ([]byte, error) {
	timeoutCtx, cancel := context.WithTimeout(ctx, fetchTimeout)
	defer cancel()

	req, err := http.NewRequestWithContext(timeoutCtx, "GET", pageURL, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("User-Agent", e.userAgent)

	resp, err := e.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch page: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("HTTP error: %d %s", resp.StatusCode, resp.Status)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read response body: %w", err)
	}

	return body, nil
}

// parseDurationSeconds converts "h:mm:ss" or "mm:ss" into seconds.
func parseDurationSeconds(s string) int {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) < 2 || len(parts) > 3 {
		return 0
	}

	total := 0
	for _, part := range parts {
		n, err := strconv.Atoi(strings.TrimSpace(part))
		if err != nil || n < 0 {
			return 0
		}
		total = total*60 + n
	}
	return total
}

// ResolveURL makes a possibly-relative media URL absolute against the page it
// was extracted from.
func ResolveURL(pageURL, mediaURL string) string {
	if strings.HasPrefix(mediaURL, "http://") || strings.HasPrefix(mediaURL, "https://") {
		return mediaURL
	}

	base, err := url.Parse(pageURL)
	if err != nil {
		return mediaURL
	}
	ref, err := url.Parse(mediaURL)
	if err != nil {
		return mediaURL
	}
	return base.ResolveReference(ref).String()
}
