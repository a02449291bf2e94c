// Package metrics defines the Prometheus collectors for the content pipeline
// and exposes an HTTP handler for scraping.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/canhta/CareCircle/pkg/carecircle"
)

const namespace = "carecircle"

// Metrics holds all Prometheus collectors for the pipeline. It implements
// carecircle.Observer.
type Metrics struct {
	ItemsProcessed   prometheus.Counter
	ItemsRejected    *prometheus.CounterVec
	ChunksGenerated  *prometheus.CounterVec
	ItemDuration     *prometheus.HistogramVec
	QualityScore     prometheus.Histogram
	BatchesCompleted prometheus.Counter
	SuccessRate      prometheus.Gauge
	Fingerprints     *prometheus.GaugeVec

	gatherer prometheus.Gatherer
}

// New creates the collectors and registers them with reg. A nil reg uses a
// fresh registry.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}

	m := &Metrics{
		ItemsProcessed: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "items_processed_total",
				Help:      "Total number of items admitted by the pipeline.",
			},
		),
		ItemsRejected: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "items_rejected_total",
				Help:      "Total rejected items by reason (structural, cleaning, duplicate, quality, relevance, unexpected).",
			},
			[]string{"reason"},
		),
		ChunksGenerated: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "chunks_generated_total",
				Help:      "Total chunks generated by chunk type.",
			},
			[]string{"chunk_type"},
		),
		ItemDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "item_duration_seconds",
				Help:      "Per-item processing latency in seconds.",
				Buckets:   []float64{0.0005, 0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1},
			},
			[]string{"outcome"},
		),
		QualityScore: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "quality_score",
				Help:      "Quality score of admitted items.",
				Buckets:   prometheus.LinearBuckets(0.1, 0.1, 10),
			},
		),
		BatchesCompleted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "batches_completed_total",
				Help:      "Total completed batches.",
			},
		),
		SuccessRate: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "success_rate",
				Help:      "Share of admitted items since the last reset.",
			},
		),
		Fingerprints: prometheus.NewGaugeVec(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "unique_fingerprints",
				Help:      "Registered duplicate-detection fingerprints by kind (content, semantic).",
			},
			[]string{"kind"},
		),
		gatherer: reg,
	}

	reg.MustRegister(
		m.ItemsProcessed,
		m.ItemsRejected,
		m.ChunksGenerated,
		m.ItemDuration,
		m.QualityScore,
		m.BatchesCompleted,
		m.SuccessRate,
		m.Fingerprints,
	)

	return m
}

// ItemProcessed implements carecircle.Observer.
func (m *Metrics) ItemProcessed(item carecircle.ProcessedItem, elapsed time.Duration) {
	m.ItemsProcessed.Inc()
	m.QualityScore.Observe(item.QualityScore)
	m.ItemDuration.WithLabelValues("processed").Observe(elapsed.Seconds())
	for _, c := range item.Chunks {
		m.ChunksGenerated.WithLabelValues(c.ChunkType).Inc()
	}
}

// ItemRejected implements carecircle.Observer.
func (m *Metrics) ItemRejected(reason string, elapsed time.Duration) {
	m.ItemsRejected.WithLabelValues(reason).Inc()
	m.ItemDuration.WithLabelValues("rejected").Observe(elapsed.Seconds())
}

// BatchCompleted implements carecircle.Observer.
func (m *Metrics) BatchCompleted(stats carecircle.Stats) {
	m.BatchesCompleted.Inc()
	m.SuccessRate.Set(stats.SuccessRate)
	m.Fingerprints.WithLabelValues("content").Set(float64(stats.UniqueContentFingerprints))
	m.Fingerprints.WithLabelValues("semantic").Set(float64(stats.UniqueSemanticFingerprints))
}

// Handler returns the Prometheus scrape HTTP handler for the registry the
// collectors live in.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.gatherer, promhttp.HandlerOpts{})
}

var _ carecircle.Observer = (*Metrics)(nil)
