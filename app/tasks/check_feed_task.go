package tasks

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/ymarkus/shiursync/app/archive"
	"github.com/ymarkus/shiursync/app/feed"
	"github.com/ymarkus/shiursync/app/reconcile"
)

// CheckSummary is the dry-run result: what a sync would do, without
// downloading anything.
type CheckSummary struct {
	Feed          string   `json:"feed"`
	TotalEpisodes int      `json:"total_episodes"`
	ArchivedCount int      `json:"archived_count"`
	NewEpisodes   []NewRef `json:"new_episodes"`
}

type NewRef struct {
	Title   string `json:"title"`
	PageURL string `json:"page_url"`
	ShiurID string `json:"shiur_id,omitempty"`
}

// CheckFeedTask reconciles a feed against the archive without touching any
// episode pages or media.
type CheckFeedTask struct {
	Task
	rssURL     string
	sink       archive.Sink
	httpClient *http.Client
	parser     *feed.Parser
	opts       RunOptions

	Summary CheckSummary
}

func NewCheckFeedTask(feedName, rssURL string, sink archive.Sink, httpClient *http.Client, opts RunOptions) *CheckFeedTask {
	return &CheckFeedTask{
		Task:       NewTask(TaskTypeCheckFeed, feedName),
		rssURL:     rssURL,
		sink:       sink,
		httpClient: httpClient,
		parser:     feed.NewParser(),
		opts:       opts,
	}
}

func (t *CheckFeedTask) Execute(ctx context.Context) error {
	t.Start()

	data, err := fetchURL(ctx, t.httpClient, t.opts.UserAgent, t.rssURL, feedFetchTimeout)
	if err != nil {
		return &feed.FetchError{URL: t.rssURL, Err: err}
	}

	episodes, err := t.parser.Run(data)
	if err != nil {
		return err
	}

	dest, err := t.sink.ResolveDestination(ctx, t.opts.DestBase, t.FeedName, t.opts.UseSubfolders)
	if err != nil {
		return fmt.Errorf("failed to resolve destination: %w", err)
	}

	archived, err := t.sink.ListArchivedIDs(ctx, dest)
	if err != nil {
		return fmt.Errorf("failed to list archived episodes: %w", err)
	}

	candidates := reconcile.New(episodes, archived)

	t.Summary = CheckSummary{
		Feed:          t.FeedName,
		TotalEpisodes: len(episodes),
		ArchivedCount: len(archived),
		NewEpisodes:   make([]NewRef, 0, len(candidates)),
	}
	for _, c := range candidates {
		t.Summary.NewEpisodes = append(t.Summary.NewEpisodes, NewRef{
			Title:   c.Episode.Title,
			PageURL: c.Episode.PageURL,
			ShiurID: c.ShiurID,
		})
	}

	slog.Info("Task completed",
		"type", t.Type,
		"feed", t.FeedName,
		"duration", t.GetDuration(),
		"total", t.Summary.TotalEpisodes,
		"new", len(t.Summary.NewEpisodes))

	return nil
}
