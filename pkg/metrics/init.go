package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

func (r *Registry) initDetectionMetrics() {
	r.DetectionRunsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "scd_detection_runs_total",
			Help: "Total number of community detection runs",
		},
		[]string{"strategy", "mode"},
	)

	r.DetectionErrorsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "scd_detection_errors_total",
			Help: "Total number of failed community detection runs",
		},
		[]string{"strategy"},
	)

	r.DetectionDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scd_detection_duration_seconds",
			Help:    "Community detection latency in seconds",
			Buckets: prometheus.ExponentialBuckets(0.001, 4, 10),
		},
		[]string{"strategy"},
	)

	r.SeedConductance = promauto.With(r.registry).NewHistogram(
		prometheus.HistogramOpts{
			Name:    "scd_seed_conductance",
			Help:    "Conductance of the community found around each seed",
			Buckets: prometheus.LinearBuckets(0.05, 0.05, 20),
		},
	)

	r.RevertedSeedsTotal = promauto.With(r.registry).NewCounter(
		prometheus.CounterOpts{
			Name: "scd_reverted_seeds_total",
			Help: "Seeds whose subset was reverted during partition merging",
		},
	)

	r.DatasetsLoaded = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "scd_datasets_loaded",
			Help: "Number of graphs currently held in memory",
		},
	)
}

func (r *Registry) initHTTPMetrics() {
	r.HTTPRequestsTotal = promauto.With(r.registry).NewCounterVec(
		prometheus.CounterOpts{
			Name: "scd_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "code"},
	)

	r.HTTPRequestDuration = promauto.With(r.registry).NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "scd_http_request_duration_seconds",
			Help:    "HTTP request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)

	r.HTTPRequestsInFlight = promauto.With(r.registry).NewGauge(
		prometheus.GaugeOpts{
			Name: "scd_http_requests_in_flight",
			Help: "Current number of HTTP requests being processed",
		},
	)
}
