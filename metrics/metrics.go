// Package metrics exposes engine counters as Prometheus collectors.
//
// Collectors belong to one engine. They are registered on the Registerer
// passed to New; a nil Registerer leaves them unregistered, which is the
// usual choice in tests and embedded use.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "draft"

// Metrics holds the collectors of one engine. A nil *Metrics is valid and
// records nothing.
type Metrics struct {
	CommandsApplied  prometheus.Counter
	BuffersRejected  *prometheus.CounterVec
	OpsSkipped       prometheus.Counter
	HistoryDepth     prometheus.Gauge
	Undos            prometheus.Counter
	Redos            prometheus.Counter
	Picks            *prometheus.CounterVec
	RenderRebuilds   *prometheus.CounterVec
	TransformCommits *prometheus.CounterVec
	SnapshotBytes    prometheus.Histogram
}

// New creates the collectors and registers them on reg, if non-nil.
// Registering two engines on one registry panics unless constLabels tell
// them apart.
func New(reg prometheus.Registerer, constLabels prometheus.Labels) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		CommandsApplied: f.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "commands_applied_total",
			Help:        "Commands applied from accepted command buffers.",
			ConstLabels: constLabels,
		}),
		BuffersRejected: f.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "command_buffers_rejected_total",
			Help:        "Command buffers rejected, by status.",
			ConstLabels: constLabels,
		}, []string{"status"}),
		OpsSkipped: f.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "unknown_ops_skipped_total",
			Help:        "Records with an unknown op code skipped by the decoder.",
			ConstLabels: constLabels,
		}),
		HistoryDepth: f.NewGauge(prometheus.GaugeOpts{
			Namespace:   namespace,
			Name:        "history_depth",
			Help:        "Undo entries currently held.",
			ConstLabels: constLabels,
		}),
		Undos: f.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "undo_total",
			Help:        "Undo steps performed.",
			ConstLabels: constLabels,
		}),
		Redos: f.NewCounter(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "redo_total",
			Help:        "Redo steps performed.",
			ConstLabels: constLabels,
		}),
		Picks: f.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "picks_total",
			Help:        "Pick queries, by result.",
			ConstLabels: constLabels,
		}, []string{"result"}),
		RenderRebuilds: f.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "render_rebuilds_total",
			Help:        "Render buffer rebuilds, by buffer.",
			ConstLabels: constLabels,
		}, []string{"buffer"}),
		TransformCommits: f.NewCounterVec(prometheus.CounterOpts{
			Namespace:   namespace,
			Name:        "transform_commits_total",
			Help:        "Committed transform sessions, by mode.",
			ConstLabels: constLabels,
		}, []string{"mode"}),
		SnapshotBytes: f.NewHistogram(prometheus.HistogramOpts{
			Namespace:   namespace,
			Name:        "snapshot_bytes",
			Help:        "Size of saved snapshots.",
			Buckets:     prometheus.ExponentialBuckets(256, 4, 8),
			ConstLabels: constLabels,
		}),
	}
}

// Applied records an accepted buffer of n commands with skipped unknown ops.
func (m *Metrics) Applied(n, skipped int) {
	if m == nil {
		return
	}
	m.CommandsApplied.Add(float64(n))
	m.OpsSkipped.Add(float64(skipped))
}

// Rejected records a rejected buffer.
func (m *Metrics) Rejected(status string) {
	if m == nil {
		return
	}
	m.BuffersRejected.WithLabelValues(status).Inc()
}

// Depth sets the history depth gauge.
func (m *Metrics) Depth(n int) {
	if m == nil {
		return
	}
	m.HistoryDepth.Set(float64(n))
}

// Undo records an undo step.
func (m *Metrics) Undo() {
	if m != nil {
		m.Undos.Inc()
	}
}

// Redo records a redo step.
func (m *Metrics) Redo() {
	if m != nil {
		m.Redos.Inc()
	}
}

// Pick records a pick query.
func (m *Metrics) Pick(hit bool) {
	if m == nil {
		return
	}
	if hit {
		m.Picks.WithLabelValues("hit").Inc()
	} else {
		m.Picks.WithLabelValues("miss").Inc()
	}
}

// Rebuilt records render rebuilds.
func (m *Metrics) Rebuilt(shapes, text int) {
	if m == nil {
		return
	}
	m.RenderRebuilds.WithLabelValues("shapes").Add(float64(shapes))
	m.RenderRebuilds.WithLabelValues("text").Add(float64(text))
}

// Committed records a transform commit.
func (m *Metrics) Committed(mode string) {
	if m == nil {
		return
	}
	m.TransformCommits.WithLabelValues(mode).Inc()
}

// Saved records the size of a snapshot.
func (m *Metrics) Saved(n int) {
	if m == nil {
		return
	}
	m.SnapshotBytes.Observe(float64(n))
}
