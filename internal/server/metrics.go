// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package server

import (
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/pdiddy/govmeta/internal/extract"
	"github.com/pdiddy/govmeta/internal/fetch"
)

// Metrics holds the extraction counters exported on /metrics.
type Metrics struct {
	extractions *prometheus.CounterVec
	duration    *prometheus.HistogramVec
}

// NewMetrics creates the collectors and registers them with reg.
func NewMetrics(reg prometheus.Registerer) *Metrics {
	m := &Metrics{
		extractions: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "govmeta_extractions_total",
			Help: "Extraction attempts by result and failure kind.",
		}, []string{"result", "kind"}),
		duration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "govmeta_extraction_duration_seconds",
			Help:    "Time spent fetching, expanding and extracting a document.",
			Buckets: prometheus.DefBuckets,
		}, []string{"endpoint"}),
	}
	reg.MustRegister(m.extractions, m.duration)
	return m
}

// observe records one extraction attempt.
func (m *Metrics) observe(endpoint string, start time.Time, err error) {
	m.duration.WithLabelValues(endpoint).Observe(time.Since(start).Seconds())
	if err == nil {
		m.extractions.WithLabelValues("ok", "").Inc()
		return
	}
	m.extractions.WithLabelValues("error", failureKind(err)).Inc()
}

// failureKind labels a failure by its extraction kind, or by the fetch
// stage when extraction never ran.
func failureKind(err error) string {
	if k := extract.KindOf(err); k != "" {
		return string(k)
	}
	if st := fetch.StageOf(err); st != "" {
		return string(st)
	}
	var mbe *maxBytesError
	if errors.As(err, &mbe) {
		return "too_large"
	}
	return "other"
}
