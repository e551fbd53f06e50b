package metrics

/*
crtree — subdomain trees from Certificate Transparency search results
Copyright (C) 2025  Pepijn van der Stap <rxtls@vanderstap.info>

This program is free software: you can redistribute it and/or modify
it under the terms of the GNU Affero General Public License as published by
the Free Software Foundation, either version 3 of the License, or
(at your option) any later version.

This program is distributed in the hope that it will be useful,
but WITHOUT ANY WARRANTY; without even the implied warranty of
MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
GNU Affero General Public License for more details.

You should have received a copy of the GNU Affero General Public License
along with this program.  If not, see <https://www.gnu.org/licenses/>.
*/

import (
	"context"
	"errors"
	"net/http"
	"sync"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/log"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

var (
	registry           = prometheus.NewRegistry()
	defaultRegisterer  = promauto.With(registry)
	metricsInitialized sync.Once
	metricsEnabled     atomic.Bool
	metricsServer      *http.Server
)

// Metrics contains all the Prometheus metrics for the application
type Metrics struct {
	// Fetch metrics
	FetchDuration      *prometheus.HistogramVec
	FetchRequestsTotal *prometheus.CounterVec
	FetchErrorsTotal   *prometheus.CounterVec
	NamesReceived      *prometheus.CounterVec

	// Forest metrics
	ForestNodes        *prometheus.HistogramVec
	BuildFailuresTotal *prometheus.CounterVec
	NamesSkippedTotal  *prometheus.CounterVec
	RenderDuration     *prometheus.HistogramVec

	// Serve mode metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
}

// Global instance of metrics
var globalMetrics *Metrics
var metricsOnce sync.Once

// GetMetrics returns the global metrics instance
func GetMetrics() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = newMetrics()
	})
	return globalMetrics
}

// EnableMetrics enables metrics collection
func EnableMetrics() {
	metricsEnabled.Store(true)
}

// IsMetricsEnabled returns whether metrics collection is enabled
func IsMetricsEnabled() bool {
	return metricsEnabled.Load()
}

// newMetrics creates and registers all metrics
func newMetrics() *Metrics {
	buckets := []float64{.001, .005, .01, .025, .05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60}
	sizeBuckets := prometheus.ExponentialBuckets(1, 4, 10)

	return &Metrics{
		FetchDuration: defaultRegisterer.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "crtree_fetch_duration_seconds",
				Help:    "Time spent querying the certificate search source",
				Buckets: buckets,
			},
			[]string{"source"},
		),
		FetchRequestsTotal: defaultRegisterer.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crtree_fetch_requests_total",
				Help: "Total number of certificate search requests by response status",
			},
			[]string{"source", "status"},
		),
		FetchErrorsTotal: defaultRegisterer.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crtree_fetch_errors_total",
				Help: "Total number of failed domain lookups",
			},
			[]string{"source", "error_type"},
		),
		NamesReceived: defaultRegisterer.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crtree_names_received_total",
				Help: "Total number of unique certificate names received",
			},
			[]string{"source"},
		),
		ForestNodes: defaultRegisterer.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "crtree_forest_nodes",
				Help:    "Number of nodes in each built forest",
				Buckets: sizeBuckets,
			},
			[]string{"operation"},
		),
		BuildFailuresTotal: defaultRegisterer.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crtree_build_failures_total",
				Help: "Total number of forest builds that were aborted",
			},
			[]string{"error_type"},
		),
		NamesSkippedTotal: defaultRegisterer.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crtree_names_skipped_total",
				Help: "Total number of names left out of a forest",
			},
			[]string{"reason"},
		),
		RenderDuration: defaultRegisterer.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "crtree_render_duration_seconds",
				Help:    "Time spent rendering a forest",
				Buckets: buckets,
			},
			[]string{"format"},
		),
		HTTPRequestsTotal: defaultRegisterer.NewCounterVec(
			prometheus.CounterOpts{
				Name: "crtree_http_requests_total",
				Help: "Total number of HTTP requests served",
			},
			[]string{"route", "code"},
		),
		HTTPRequestDuration: defaultRegisterer.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "crtree_http_request_duration_seconds",
				Help:    "Time spent serving HTTP requests",
				Buckets: buckets,
			},
			[]string{"route"},
		),
	}
}

// Handler serves the application registry in the Prometheus text format.
func Handler() http.Handler {
	return promhttp.HandlerFor(registry, promhttp.HandlerOpts{})
}

// StartMetricsServer starts an HTTP server to expose Prometheus metrics
func StartMetricsServer(addr string) error {
	if !IsMetricsEnabled() {
		return nil
	}
	if addr == "" {
		return errors.New("metrics address is empty")
	}

	// Only start once
	metricsInitialized.Do(func() {
		mux := http.NewServeMux()
		mux.Handle("/metrics", Handler())

		metricsServer = &http.Server{
			Addr:              addr,
			Handler:           mux,
			ReadHeaderTimeout: 5 * time.Second,
		}

		go func() {
			log.Info("Starting metrics server", "addr", addr)
			if err := metricsServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
				log.Error("Metrics server error", "err", err)
			}
		}()
	})

	return nil
}

// ShutdownMetricsServer gracefully shuts down the metrics server
func ShutdownMetricsServer(ctx context.Context) error {
	if metricsServer != nil {
		log.Debug("Shutting down metrics server...")
		return metricsServer.Shutdown(ctx)
	}
	return nil
}

// MeasureDuration is a helper to measure the duration of a function
func MeasureDuration(histogram *prometheus.HistogramVec, labels prometheus.Labels) func() {
	if !IsMetricsEnabled() {
		return func() {}
	}

	start := time.Now()
	return func() {
		histogram.With(labels).Observe(time.Since(start).Seconds())
	}
}

// CountFetch records one search request and its response status.
func (m *Metrics) CountFetch(source, status string) {
	if !IsMetricsEnabled() {
		return
	}
	m.FetchRequestsTotal.WithLabelValues(source, status).Inc()
}

// CountFetchError records a failed domain lookup.
func (m *Metrics) CountFetchError(source, errorType string) {
	if !IsMetricsEnabled() {
		return
	}
	m.FetchErrorsTotal.WithLabelValues(source, errorType).Inc()
}

// AddNames records the number of unique names a lookup returned.
func (m *Metrics) AddNames(source string, n int) {
	if !IsMetricsEnabled() {
		return
	}
	m.NamesReceived.WithLabelValues(source).Add(float64(n))
}

// ObserveForest records the size of a built forest.
func (m *Metrics) ObserveForest(nodes int) {
	if !IsMetricsEnabled() {
		return
	}
	m.ForestNodes.WithLabelValues("build").Observe(float64(nodes))
}

// CountBuildFailure records an aborted forest build.
func (m *Metrics) CountBuildFailure(errorType string) {
	if !IsMetricsEnabled() {
		return
	}
	m.BuildFailuresTotal.WithLabelValues(errorType).Inc()
}

// CountSkippedName records a name left out of a forest.
func (m *Metrics) CountSkippedName(reason string) {
	if !IsMetricsEnabled() {
		return
	}
	m.NamesSkippedTotal.WithLabelValues(reason).Inc()
}

// CountHTTPRequest records one served request.
func (m *Metrics) CountHTTPRequest(route, code string) {
	if !IsMetricsEnabled() {
		return
	}
	m.HTTPRequestsTotal.WithLabelValues(route, code).Inc()
}
