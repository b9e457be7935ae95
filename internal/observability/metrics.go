// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

const namespace = "research_vault"

// Metrics holds the Prometheus collectors. A nil *Metrics is valid and
// records nothing, so library callers need not wire a registry.
type Metrics struct {
	// EntriesScored counts history entries that reached the scorer.
	EntriesScored prometheus.Counter

	// EntriesSkipped counts entries dropped before scoring, by reason
	// ("filtered", "known", "duplicate").
	EntriesSkipped *prometheus.CounterVec

	// AcademicEntries counts scored entries classified as academic.
	AcademicEntries prometheus.Counter

	// CitationsGenerated counts rendered citations by style and kind
	// ("full", "in_text").
	CitationsGenerated *prometheus.CounterVec

	// CitationErrors counts full citations refused for incomplete data.
	CitationErrors prometheus.Counter

	// StyleFallbacks counts unrecognized style names replaced by APA.
	StyleFallbacks prometheus.Counter

	// HTTPRequestDuration observes API latency by route and status.
	HTTPRequestDuration *prometheus.HistogramVec
}

// NewMetrics registers all collectors with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	f := promauto.With(reg)
	return &Metrics{
		EntriesScored: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "history",
			Name:      "entries_scored_total",
			Help:      "History entries scored for academic relevance.",
		}),
		EntriesSkipped: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "history",
			Name:      "entries_skipped_total",
			Help:      "History entries dropped before scoring.",
		}, []string{"reason"}),
		AcademicEntries: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "history",
			Name:      "academic_entries_total",
			Help:      "Scored history entries classified as academic.",
		}),
		CitationsGenerated: f.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "citation",
			Name:      "generated_total",
			Help:      "Citations rendered, by style and kind.",
		}, []string{"style", "kind"}),
		CitationErrors: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "citation",
			Name:      "incomplete_total",
			Help:      "Full citations refused because the title was missing.",
		}),
		StyleFallbacks: f.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "citation",
			Name:      "style_fallbacks_total",
			Help:      "Unrecognized citation styles replaced by APA.",
		}),
		HTTPRequestDuration: f.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP API request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"route", "status"}),
	}
}

// Scored records one scored entry.
func (m *Metrics) Scored(academic bool) {
	if m == nil {
		return
	}
	m.EntriesScored.Inc()
	if academic {
		m.AcademicEntries.Inc()
	}
}

// Skipped records n entries dropped for reason.
func (m *Metrics) Skipped(reason string, n int) {
	if m == nil || n <= 0 {
		return
	}
	m.EntriesSkipped.WithLabelValues(reason).Add(float64(n))
}

// Citation records one rendered citation.
func (m *Metrics) Citation(style, kind string) {
	if m == nil {
		return
	}
	m.CitationsGenerated.WithLabelValues(style, kind).Inc()
}

// Incomplete records a refused full citation.
func (m *Metrics) Incomplete() {
	if m == nil {
		return
	}
	m.CitationErrors.Inc()
}

// StyleFallback records an unrecognized style.
func (m *Metrics) StyleFallback() {
	if m == nil {
		return
	}
	m.StyleFallbacks.Inc()
}

// ObserveRequest records the latency of one HTTP request.
func (m *Metrics) ObserveRequest(route, status string, seconds float64) {
	if m == nil {
		return
	}
	m.HTTPRequestDuration.WithLabelValues(route, status).Observe(seconds)
}
