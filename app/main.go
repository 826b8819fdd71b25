package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/ymarkus/shiursync/app/api"
	"github.com/ymarkus/shiursync/app/archive"
	"github.com/ymarkus/shiursync/app/cfg"
	"github.com/ymarkus/shiursync/app/feed"
	"github.com/ymarkus/shiursync/app/tasks"
)

func main() {
	appCfg, err := cfg.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if appCfg == nil {
		// Help was shown, exit gracefully
		return
	}

	setupLogger(appCfg.Debug)

	slog.Info("Starting shiursync", "version", appCfg.Version)

	registry := feed.NewRegistry(appCfg.FeedsFile)
	if err := registry.Load(); err != nil {
		slog.Error("Could not load feed registry", "path", appCfg.FeedsFile, "error", err)
		os.Exit(1)
	}

	httpClient := &http.Client{}

	sink, tracking, err := buildSink(appCfg)
	if err != nil {
		slog.Error("Could not initialize archive destination", "error", err)
		os.Exit(1)
	}

	opts := tasks.RunOptions{
		UseSubfolders: appCfg.UseSubfolders,
		Delay:         appCfg.Delay,
		Limit:         appCfg.Limit,
		UserAgent:     appCfg.UserAgent,
	}
	if appCfg.Drive {
		opts.DestBase = appCfg.DriveBaseFolder
	} else {
		opts.DestBase = appCfg.OutputDir
	}

	if appCfg.Serve {
		runServer(appCfg, registry, sink, tracking, httpClient, opts)
		return
	}

	if err := runOnce(appCfg, registry, sink, tracking, httpClient, opts); err != nil {
		slog.Error("Run failed", "error", err)
		os.Exit(1)
	}
}

func setupLogger(debug bool) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}
	slog.SetDefault(slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
		Level: level,
	})))
}

// buildSink picks the archive backend: Google Drive when --drive is set,
// otherwise the local filesystem backed by the tracking file. The tracking
// file is not used in Drive mode, where file description tags are the source
// of truth for the archived set.
func buildSink(appCfg *cfg.Cfg) (archive.Sink, *archive.Tracking, error) {
	if appCfg.Drive {
		client, err := archive.NewDriveClient(context.Background(),
			appCfg.DriveCredentials, appCfg.DriveToken)
		if err != nil {
			return nil, nil, fmt.Errorf("google drive auth: %w", err)
		}
		sink, err := archive.NewDriveSink(context.Background(), client)
		if err != nil {
			return nil, nil, fmt.Errorf("google drive client: %w", err)
		}
		slog.Info("Archiving to Google Drive", "base_folder", appCfg.DriveBaseFolder)
		return sink, nil, nil
	}

	tracking := archive.NewTracking(appCfg.TrackingFile)
	tracking.Load()
	slog.Info("Archiving to local filesystem",
		"output_dir", appCfg.OutputDir,
		"tracked_episodes", tracking.Count())
	return archive.NewLocalSink(tracking), tracking, nil
}

// runOnce performs a single sync of the selected feed and exits.
func runOnce(appCfg *cfg.Cfg, registry *feed.Registry, sink archive.Sink,
	tracking *archive.Tracking, httpClient *http.Client, opts tasks.RunOptions) error {

	selector := appCfg.RSSURL
	if selector == "" {
		selector = appCfg.Feed
	}
	if selector == "" && registry.Count() == 1 {
		selector = registry.Names()[0]
	}
	if selector == "" {
		return fmt.Errorf("no feed selected: pass --feed or --rss-url (registry has %d feeds)", registry.Count())
	}

	name, url, err := registry.Resolve(selector)
	if err != nil {
		return err
	}
	if name == "" {
		name = "ad-hoc"
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	task := tasks.NewSyncFeedTask(name, url, sink, tracking, httpClient, opts)
	if err := task.Execute(ctx); err != nil {
		return err
	}

	if len(task.Failures) > 0 {
		slog.Warn("Run finished with failures",
			"archived", task.Stats.Archived,
			"failed", len(task.Failures))
	}
	return nil
}

// runServer exposes the feed registry and run operations over HTTP until
// interrupted.
func runServer(appCfg *cfg.Cfg, registry *feed.Registry, sink archive.Sink,
	tracking *archive.Tracking, httpClient *http.Client, opts tasks.RunOptions) {

	handler := api.NewHandler(registry, sink, tracking, httpClient, opts)
	server := api.NewServer(handler, appCfg.APIAccessKey)

	httpServer := &http.Server{
		Addr:        ":" + appCfg.Port,
		Handler:     server,
		ReadTimeout: 30 * time.Second,
		// Sync runs stream no response until done, so the write timeout has
		// to cover a full feed run.
		WriteTimeout: 30 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	serverErrChan := make(chan error, 1)
	go func() {
		slog.Info("Starting HTTP server", "port", appCfg.Port)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErrChan <- fmt.Errorf("HTTP server error: %w", err)
		}
	}()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	select {
	case sig := <-sigChan:
		slog.Info("Received signal", "signal", sig.String())
	case err := <-serverErrChan:
		slog.Error("Server error", "error", err)
	}

	slog.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := httpServer.Shutdown(shutdownCtx); err != nil {
		slog.Error("HTTP server shutdown error", "error", err)
	}

	slog.Info("Shutdown complete")
}
