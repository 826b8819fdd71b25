// Package metrics exposes Prometheus counters for sync runs.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	RunsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shiursync_runs_total",
		Help: "Number of sync runs started, by feed.",
	}, []string{"feed"})

	EpisodesArchived = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shiursync_episodes_archived_total",
		Help: "Number of episodes successfully archived, by feed.",
	}, []string{"feed"})

	ExtractionFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shiursync_extraction_failures_total",
		Help: "Number of detail pages that yielded no usable audio reference, by feed.",
	}, []string{"feed"})

	DownloadFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shiursync_download_failures_total",
		Help: "Number of media downloads that failed after retries, by feed.",
	}, []string{"feed"})

	ArchiveFailures = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "shiursync_archive_failures_total",
		Help: "Number of archive writes or uploads that failed, by feed.",
	}, []string{"feed"})
)
