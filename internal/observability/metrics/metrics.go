// Package metrics registers prometheus instrumentation for both pipelines.
package metrics

import "github.com/prometheus/client_golang/prometheus"

// Metrics bundles pipeline metrics.
type Metrics struct {
	IngestRunsTotal    *prometheus.CounterVec
	IngestRowsTotal    *prometheus.CounterVec
	IngestSkippedTotal *prometheus.CounterVec
	IngestDuration     prometheus.Histogram

	ArchiveRunsTotal     *prometheus.CounterVec
	ArchiveReadingsTotal *prometheus.CounterVec
	ArchiveDuration      prometheus.Histogram
}

// New constructs and registers metrics.
func New() *Metrics {
	m := &Metrics{
		IngestRunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "plantwatch_ingest_runs_total",
				Help: "Total ingest runs by result",
			},
			[]string{"result"},
		),
		IngestRowsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "plantwatch_ingest_rows_created_total",
				Help: "Rows created per entity kind",
			},
			[]string{"kind"},
		),
		IngestSkippedTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "plantwatch_ingest_skipped_total",
				Help: "Records skipped by reason",
			},
			[]string{"reason"},
		),
		IngestDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "plantwatch_ingest_duration_seconds",
			Help:    "Ingest run duration in seconds",
			Buckets: prometheus.DefBuckets,
		}),
		ArchiveRunsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "plantwatch_archive_runs_total",
				Help: "Total archive runs by result",
			},
			[]string{"result"},
		),
		ArchiveReadingsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Name: "plantwatch_archive_readings_total",
				Help: "Readings handled by the archive run, by outcome",
			},
			[]string{"outcome"},
		),
		ArchiveDuration: prometheus.NewHistogram(prometheus.HistogramOpts{
			Name:    "plantwatch_archive_duration_seconds",
			Help:    "Archive run duration in seconds",
			Buckets: prometheus.DefBuckets,
		}),
	}
	prometheus.MustRegister(
		m.IngestRunsTotal,
		m.IngestRowsTotal,
		m.IngestSkippedTotal,
		m.IngestDuration,
		m.ArchiveRunsTotal,
		m.ArchiveReadingsTotal,
		m.ArchiveDuration,
	)
	return m
}
