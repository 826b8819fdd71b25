package tasks

import (
	"cmp"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/time/rate"

	"github.com/ymarkus/shiursync/app/archive"
	"github.com/ymarkus/shiursync/app/extract"
	"github.com/ymarkus/shiursync/app/feed"
	"github.com/ymarkus/shiursync/app/metrics"
	"github.com/ymarkus/shiursync/app/reconcile"
)

// RunOptions carries the per-run knobs shared by check and sync tasks.
type RunOptions struct {
	DestBase      string
	UseSubfolders bool
	Delay         time.Duration
	Limit         int
	UserAgent     string
}

// RunStats aggregates the outcome of one sync run.
type RunStats struct {
	Feed               string `json:"feed"`
	TotalEpisodes      int    `json:"total_episodes"`
	NewEpisodes        int    `json:"new_episodes"`
	Archived           int    `json:"archived"`
	ExtractionFailures int    `json:"extraction_failures"`
	DownloadFailures   int    `json:"download_failures"`
	ArchiveFailures    int    `json:"archive_failures"`
}

// EpisodeFailure records one per-episode failure with enough diagnostic
// payload to reproduce manually.
type EpisodeFailure struct {
	Title               string   `json:"title"`
	PageURL             string   `json:"page_url"`
	Stage               string   `json:"stage"` // extraction, download, archive
	Reason              string   `json:"reason"`
	AttemptedStrategies []string `json:"attempted_strategies,omitempty"`
}

// SyncFeedTask runs the full reconciliation for one feed: fetch the feed,
// compute new episodes against the archived set, then per episode extract
// the audio URL, download and archive it, persisting tracking state after
// every success. A feed-level failure aborts the task; per-episode failures
// are recorded and the loop continues.
type SyncFeedTask struct {
	Task
	rssURL     string
	sink       archive.Sink
	tracking   *archive.Tracking // nil in remote mode
	httpClient *http.Client
	parser     *feed.Parser
	extractor  *extract.Extractor
	limiter    *rate.Limiter
	opts       RunOptions

	Stats    RunStats
	Failures []EpisodeFailure
}

func NewSyncFeedTask(feedName, rssURL string, sink archive.Sink, tracking *archive.Tracking,
	httpClient *http.Client, opts RunOptions) *SyncFeedTask {
	return &SyncFeedTask{
		Task:       NewTask(TaskTypeSyncFeed, feedName),
		rssURL:     rssURL,
		sink:       sink,
		tracking:   tracking,
		httpClient: httpClient,
		parser:     feed.NewParser(),
		extractor:  extract.NewExtractor(httpClient, opts.UserAgent),
		limiter:    rate.NewLimiter(rate.Every(opts.Delay), 1),
		opts:       opts,
	}
}

func (t *SyncFeedTask) Execute(ctx context.Context) error {
	t.Start()
	t.Stats = RunStats{Feed: t.FeedName}
	metrics.RunsTotal.WithLabelValues(t.FeedName).Inc()

	candidates, dest, err := t.prepare(ctx)
	if err != nil {
		return err
	}

	if t.opts.Limit > 0 && len(candidates) > t.opts.Limit {
		candidates = candidates[:t.opts.Limit]
	}
	t.Stats.NewEpisodes = len(candidates)

	slog.Info("Starting sync",
		"feed", t.FeedName,
		"total", t.Stats.TotalEpisodes,
		"new", len(candidates))

	for i, candidate := range candidates {
		// Politeness throttle between successive requests to the source site.
		if err := t.limiter.Wait(ctx); err != nil {
			return fmt.Errorf("run interrupted: %w", err)
		}

		slog.Info("Processing episode",
			"feed", t.FeedName,
			"index", fmt.Sprintf("%d/%d", i+1, len(candidates)),
			"title", candidate.Episode.Title)

		t.processEpisode(ctx, candidate, dest)
	}

	slog.Info("Task completed",
		"type", t.Type,
		"feed", t.FeedName,
		"duration", t.GetDuration(),
		"archived", t.Stats.Archived,
		"extraction_failures", t.Stats.ExtractionFailures,
		"download_failures", t.Stats.DownloadFailures,
		"archive_failures", t.Stats.ArchiveFailures)

	return nil
}

// prepare runs the feed-level stages: fetch, parse, destination resolution,
// archived-ID listing and reconciliation. Any failure here is fatal to the
// run.
func (t *SyncFeedTask) prepare(ctx context.Context) ([]reconcile.Candidate, archive.Destination, error) {
	data, err := fetchURL(ctx, t.httpClient, t.opts.UserAgent, t.rssURL, feedFetchTimeout)
	if err != nil {
		return nil, "", &feed.FetchError{URL: t.rssURL, Err: err}
	}

	episodes, err := t.parser.Run(data)
	if err != nil {
		return nil, "", err
	}
	t.Stats.TotalEpisodes = len(episodes)

	dest, err := t.sink.ResolveDestination(ctx, t.opts.DestBase, t.FeedName, t.opts.UseSubfolders)
	if err != nil {
		return nil, "", fmt.Errorf("failed to resolve destination: %w", err)
	}

	archived, err := t.sink.ListArchivedIDs(ctx, dest)
	if err != nil {
		return nil, "", fmt.Errorf("failed to list archived episodes: %w", err)
	}

	return reconcile.New(episodes, archived), dest, nil
}

func (t *SyncFeedTask) processEpisode(ctx context.Context, candidate reconcile.Candidate, dest archive.Destination) {
	episode := candidate.Episode

	data := t.extractor.Extract(ctx, episode.PageURL)
	if !data.Usable() {
		t.Stats.ExtractionFailures++
		metrics.ExtractionFailures.WithLabelValues(t.FeedName).Inc()
		t.Failures = append(t.Failures, EpisodeFailure{
			Title:               episode.Title,
			PageURL:             episode.PageURL,
			Stage:               "extraction",
			Reason:              data.FailureReason,
			AttemptedStrategies: data.AttemptedStrategies,
		})
		slog.Warn("No audio reference extracted",
			"feed", t.FeedName,
			"url", episode.PageURL,
			"reason", data.FailureReason,
			"attempted", data.AttemptedStrategies)
		return
	}

	mediaURL := extract.ResolveURL(episode.PageURL, data.DownloadURL)

	audio, err := downloadMedia(ctx, t.httpClient, t.opts.UserAgent, mediaURL)
	if err != nil {
		t.Stats.DownloadFailures++
		metrics.DownloadFailures.WithLabelValues(t.FeedName).Inc()
		t.Failures = append(t.Failures, EpisodeFailure{
			Title:   episode.Title,
			PageURL: episode.PageURL,
			Stage:   "download",
			Reason:  err.Error(),
		})
		slog.Warn("Media download failed", "feed", t.FeedName, "url", mediaURL, "error", err)
		return
	}

	title := cmp.Or(episode.Title, data.Title)
	filename := archive.AudioFilename(mediaURL, title)
	shiurID := data.ShiurID

	if err := t.sink.Store(ctx, audio, filename, dest, shiurID); err != nil {
		t.Stats.ArchiveFailures++
		metrics.ArchiveFailures.WithLabelValues(t.FeedName).Inc()
		t.Failures = append(t.Failures, EpisodeFailure{
			Title:   episode.Title,
			PageURL: episode.PageURL,
			Stage:   "archive",
			Reason:  err.Error(),
		})
		slog.Warn("Archive failed", "feed", t.FeedName, "filename", filename, "error", err)
		return
	}

	t.Stats.Archived++
	metrics.EpisodesArchived.WithLabelValues(t.FeedName).Inc()

	// Persist tracking per item, not batched, so an interrupted run keeps
	// its completed work.
	if t.tracking != nil && shiurID != "" {
		t.tracking.Add(shiurID)
		if err := t.tracking.Save(); err != nil {
			slog.Warn("Could not save tracking record", "error", err)
		}
	}

	slog.Info("Episode archived", "feed", t.FeedName, "filename", filename, "shiur_id", shiurID)
}
