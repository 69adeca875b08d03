package metrics

import (
	"math"
	"strconv"
	"time"
)

// RecordDetection records a successful detection run. Infinite conductances
// are not observed.
func (r *Registry) RecordDetection(strategy string, partition bool, duration time.Duration, conductances []float64, reverted int) {
	mode := "communities"
	if partition {
		mode = "partition"
	}
	r.DetectionRunsTotal.WithLabelValues(strategy, mode).Inc()
	r.DetectionDuration.WithLabelValues(strategy).Observe(duration.Seconds())

	for _, c := range conductances {
		if !math.IsInf(c, 0) && !math.IsNaN(c) {
			r.SeedConductance.Observe(c)
		}
	}
	r.RevertedSeedsTotal.Add(float64(reverted))
}

// RecordDetectionError records a failed detection run
func (r *Registry) RecordDetectionError(strategy string) {
	r.DetectionErrorsTotal.WithLabelValues(strategy).Inc()
}

// SetDatasets sets the number of graphs held in memory
func (r *Registry) SetDatasets(n int) {
	r.DatasetsLoaded.Set(float64(n))
}

// RecordHTTPRequest records an HTTP request with its duration
func (r *Registry) RecordHTTPRequest(method, route string, code int, duration time.Duration) {
	r.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(code)).Inc()
	r.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
