// Package metrics defines the Prometheus instrumentation surface nanolog
// exposes for its append, read, rotation, and compaction operations.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics groups every counter and gauge nanolog's subsystems report to.
type Metrics struct {
	AppendsTotal          *prometheus.CounterVec
	EntryBytesWritten      prometheus.Counter
	ReadsTotal             *prometheus.CounterVec
	SyncsTotal             *prometheus.CounterVec
	SegmentRotationsTotal  prometheus.Counter
	SegmentsDeletedTotal   prometheus.Counter
	ActiveSegments         prometheus.Gauge
}

// New registers and returns a Metrics instance against reg. Callers
// typically pass prometheus.DefaultRegisterer or a per-instance registry
// when running multiple nanolog directories in one process.
func New(reg prometheus.Registerer) *Metrics {
	return &Metrics{
		AppendsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "nanolog",
			Name:      "appends_total",
			Help:      "Number of individual record appends, single or batched, labeled by outcome.",
		}, []string{"outcome"}),
		EntryBytesWritten: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "nanolog",
			Name:      "entry_bytes_written_total",
			Help:      "Total content bytes written across all appends.",
		}),
		ReadsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "nanolog",
			Name:      "reads_total",
			Help:      "Number of read_entry_at calls, labeled by outcome.",
		}, []string{"outcome"}),
		SyncsTotal: promauto.With(reg).NewCounterVec(prometheus.CounterOpts{
			Namespace: "nanolog",
			Name:      "syncs_total",
			Help:      "Number of data-fsync operations issued, labeled by outcome.",
		}, []string{"outcome"}),
		SegmentRotationsTotal: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "nanolog",
			Name:      "segment_rotations_total",
			Help:      "Number of times an active segment expired and a new one was created.",
		}),
		SegmentsDeletedTotal: promauto.With(reg).NewCounter(prometheus.CounterOpts{
			Namespace: "nanolog",
			Name:      "segments_deleted_total",
			Help:      "Number of segment files removed by compaction.",
		}),
		ActiveSegments: promauto.With(reg).NewGauge(prometheus.GaugeOpts{
			Namespace: "nanolog",
			Name:      "active_segments",
			Help:      "Current number of open, appendable segment handles.",
		}),
	}
}
