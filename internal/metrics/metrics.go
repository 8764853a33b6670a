package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Lookup results recorded in GeoLookupsTotal
const (
	ResultMatch   = "match"
	ResultNoMatch = "no_match"
	ResultError   = "error"
	ResultInvalid = "invalid"
)

// Metrics holds all Prometheus metrics for the application
type Metrics struct {
	// HTTP Metrics
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPResponseSize    *prometheus.HistogramVec

	// Geolocation Metrics
	GeoLookupsTotal   *prometheus.CounterVec
	GeoLookupDuration *prometheus.HistogramVec
	PagesServedTotal  *prometheus.CounterVec
}

// New creates all metrics and registers them on reg.
// Tests pass a fresh prometheus.NewRegistry() to avoid duplicate
// registration panics on the default registry.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests",
			},
			[]string{"method", "endpoint", "status"},
		),

		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_request_duration_seconds",
				Help:    "HTTP request latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"method", "endpoint", "status"},
		),

		HTTPResponseSize: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "http_response_size_bytes",
				Help:    "HTTP response size in bytes",
				Buckets: prometheus.ExponentialBuckets(100, 10, 7),
			},
			[]string{"method", "endpoint", "status"},
		),

		GeoLookupsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "geo_lookups_total",
				Help: "Total number of geolocation lookups by provider and result",
			},
			[]string{"provider", "result"},
		),

		GeoLookupDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "geo_lookup_duration_seconds",
				Help:    "Geolocation lookup latency in seconds",
				Buckets: prometheus.DefBuckets,
			},
			[]string{"provider"},
		),

		PagesServedTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "pages_served_total",
				Help: "Total number of pages served by variant",
			},
			[]string{"page"},
		),
	}
}
