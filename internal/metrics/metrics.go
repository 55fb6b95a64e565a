package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Catalog metrics
	CatalogRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "booklist_catalog_request_duration_seconds",
			Help:    "Duration of Open Library requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	CatalogRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booklist_catalog_requests_total",
			Help: "Total number of Open Library requests by outcome",
		},
		[]string{"operation", "outcome"}, // "ok", "not_found", "unavailable", "malformed"
	)

	LikedBooksSkipped = promauto.NewCounter(
		prometheus.CounterOpts{
			Name: "booklist_liked_books_skipped_total",
			Help: "Liked books left out of a likes page because the catalog failed",
		},
	)

	// HTTP metrics
	HTTPRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "booklist_http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"method", "route", "status"},
	)

	HTTPRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "booklist_http_request_duration_seconds",
			Help:    "Duration of HTTP requests in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"method", "route"},
	)
)

// RecordCatalogRequest records one Open Library round trip.
func RecordCatalogRequest(operation, outcome string, duration time.Duration) {
	CatalogRequestDuration.WithLabelValues(operation).Observe(duration.Seconds())
	CatalogRequestsTotal.WithLabelValues(operation, outcome).Inc()
}

// RecordSkippedBook counts a liked book that could not be built.
func RecordSkippedBook() {
	LikedBooksSkipped.Inc()
}

// RecordHTTPRequest records a served request. Unmatched routes share one label.
func RecordHTTPRequest(method, route, status string, duration time.Duration) {
	if route == "" {
		route = "unmatched"
	}
	HTTPRequestsTotal.WithLabelValues(method, route, status).Inc()
	HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}
