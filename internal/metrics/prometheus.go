package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Prometheus metrics for the sync worker

var (
	// Sync run metrics
	SyncRunsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "footdata_sync_runs_total",
			Help: "Total number of sync workflow runs",
		},
		[]string{"status"}, // completed, failed, skipped
	)

	SyncRunDuration = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "footdata_sync_run_duration_seconds",
			Help:    "Duration of full sync workflow runs in seconds",
			Buckets: []float64{10, 30, 60, 120, 300, 600, 1200, 1800},
		},
	)

	// Activity metrics
	ActivitiesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "footdata_sync_activities_total",
			Help: "Total number of sync activity executions",
		},
		[]string{"activity", "status"}, // success, failure, replayed
	)

	ActivityRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "footdata_sync_activity_retries_total",
			Help: "Total number of activity retry attempts",
		},
		[]string{"activity"},
	)

	ActivityDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "footdata_sync_activity_duration_seconds",
			Help:    "Duration of sync activity executions in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"activity"},
	)

	// Batch metrics
	BatchesTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "footdata_sync_batches_total",
			Help: "Total number of activity batches executed",
		},
	)

	BatchWaitsTotal = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "footdata_sync_batch_waits_total",
			Help: "Total number of inter-batch rate limit waits",
		},
	)

	// Trigger metrics
	TriggerTicksTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "footdata_sync_trigger_ticks_total",
			Help: "Total number of scheduler trigger ticks",
		},
		[]string{"outcome"}, // completed, skipped, failed
	)

	// Data gauges
	CompetitionsTracked = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "footdata_competitions_tracked",
			Help: "Number of competitions configured for sync",
		},
	)

	SystemUptime = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "footdata_system_uptime_seconds",
			Help: "Worker uptime in seconds",
		},
	)
)
