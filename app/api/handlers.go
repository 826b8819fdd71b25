package api

import (
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ymarkus/shiursync/app/archive"
	"github.com/ymarkus/shiursync/app/feed"
	"github.com/ymarkus/shiursync/app/tasks"
)

func NewHandler(registry *feed.Registry, sink archive.Sink, tracking *archive.Tracking,
	httpClient *http.Client, opts tasks.RunOptions) *Handler {
	return &Handler{
		registry:   registry,
		sink:       sink,
		tracking:   tracking,
		httpClient: httpClient,
		opts:       opts,
	}
}

func (h *Handler) GetHealth(c *gin.Context) {
	health := map[string]interface{}{
		"timestamp": time.Now().In(time.Local).Format(time.RFC3339),
		"feeds":     h.registry.Count(),
	}

	if h.tracking != nil {
		health["archived_episodes"] = h.tracking.Count()
	}

	c.JSON(http.StatusOK, health)
}

func (h *Handler) GetStats(c *gin.Context) {
	h.statsMu.RLock()
	defer h.statsMu.RUnlock()

	stats := gin.H{
		"feeds": h.registry.Count(),
		"runs":  h.lastRuns,
	}
	if h.lastSync != nil {
		stats["last_sync"] = h.lastSync
	}
	if h.tracking != nil {
		stats["archived_episodes"] = h.tracking.Count()
	}

	c.JSON(http.StatusOK, stats)
}

func (h *Handler) APIListFeeds(c *gin.Context) {
	names := h.registry.Names()

	feeds := make([]map[string]string, 0, len(names))
	for _, name := range names {
		url, _ := h.registry.Get(name)
		feeds = append(feeds, map[string]string{
			"name": name,
			"url":  url,
		})
	}

	c.JSON(http.StatusOK, gin.H{
		"feeds": feeds,
		"total": len(feeds),
	})
}

func (h *Handler) APIAddFeed(c *gin.Context) {
	var req struct {
		Name string `json:"name" binding:"required"`
		URL  string `json:"url" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Feed name and URL are required"})
		return
	}

	if !strings.HasPrefix(req.URL, "http://") && !strings.HasPrefix(req.URL, "https://") {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Feed URL must be absolute"})
		return
	}

	if err := h.registry.Add(req.Name, req.URL); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if err := h.registry.Save(); err != nil {
		slog.Error("Could not save feed registry", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save feed registry"})
		return
	}

	slog.Info("Feed added", "feed", req.Name, "url", req.URL)
	c.JSON(http.StatusCreated, gin.H{"name": req.Name, "url": req.URL})
}

func (h *Handler) APIDeleteFeed(c *gin.Context) {
	name := c.Param("name")

	if err := h.registry.Delete(name); err != nil {
		c.JSON(http.StatusNotFound, gin.H{"error": err.Error()})
		return
	}
	if err := h.registry.Save(); err != nil {
		slog.Error("Could not save feed registry", "error", err)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "Failed to save feed registry"})
		return
	}

	slog.Info("Feed removed", "feed", name)
	c.JSON(http.StatusOK, gin.H{"deleted": name})
}

func (h *Handler) APICheckFeed(c *gin.Context) {
	name := c.Param("name")
	url, ok := h.registry.Get(name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Feed not found in registry"})
		return
	}

	if !h.runMu.TryLock() {
		c.JSON(http.StatusConflict, gin.H{"error": "Another run is in progress"})
		return
	}
	defer h.runMu.Unlock()

	task := tasks.NewCheckFeedTask(name, url, h.sink, h.httpClient, h.opts)
	if err := task.Execute(c.Request.Context()); err != nil {
		slog.Error("Check run failed", "feed", name, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	h.recordRun(RunRecord{
		TaskID:   task.ID,
		Type:     task.Type,
		Feed:     name,
		Duration: task.GetDuration().String(),
	}, nil)

	c.JSON(http.StatusOK, task.Summary)
}

func (h *Handler) APISyncFeed(c *gin.Context) {
	name := c.Param("name")
	url, ok := h.registry.Get(name)
	if !ok {
		c.JSON(http.StatusNotFound, gin.H{"error": "Feed not found in registry"})
		return
	}

	if !h.runMu.TryLock() {
		c.JSON(http.StatusConflict, gin.H{"error": "Another run is in progress"})
		return
	}
	defer h.runMu.Unlock()

	// The sync runs inline. Politeness delays make feed runs slow for large
	// backlogs, so callers should pair this endpoint with a limit.
	task := tasks.NewSyncFeedTask(name, url, h.sink, h.tracking, h.httpClient, h.opts)
	if err := task.Execute(c.Request.Context()); err != nil {
		slog.Error("Sync run failed", "feed", name, "error", err)
		c.JSON(http.StatusBadGateway, gin.H{"error": err.Error()})
		return
	}

	h.recordRun(RunRecord{
		TaskID:   task.ID,
		Type:     task.Type,
		Feed:     name,
		Duration: task.GetDuration().String(),
		Stats:    &task.Stats,
		Failures: task.Failures,
	}, &task.Stats)

	c.JSON(http.StatusOK, gin.H{
		"stats":    task.Stats,
		"failures": task.Failures,
	})
}

func (h *Handler) recordRun(record RunRecord, syncStats *tasks.RunStats) {
	h.statsMu.Lock()
	defer h.statsMu.Unlock()

	h.lastRuns = append(h.lastRuns, record)
	if len(h.lastRuns) > runHistorySize {
		h.lastRuns = h.lastRuns[len(h.lastRuns)-runHistorySize:]
	}
	if syncStats != nil {
		h.lastSync = syncStats
	}
}
