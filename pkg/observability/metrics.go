package observability

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	gatewayRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "girocheckout_requests_total",
			Help: "Total number of GiroCheckout API calls",
		},
		[]string{"operation", "status"},
	)

	gatewayRequestDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "girocheckout_request_duration_seconds",
			Help:    "Duration of GiroCheckout API calls in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"operation"},
	)

	hashFailuresTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "girocheckout_hash_failures_total",
			Help: "Inbound messages rejected because their hash did not validate",
		},
		[]string{"direction"},
	)
)

// RecordRequest records one completed API call. Status is a coarse label:
// ok, transport_error, integrity_error or decode_error.
func RecordRequest(operation, status string, elapsed time.Duration) {
	gatewayRequestsTotal.WithLabelValues(operation, status).Inc()
	gatewayRequestDuration.WithLabelValues(operation).Observe(elapsed.Seconds())
}

// RecordHashFailure counts a rejected inbound message. Direction is
// "response" for direct API answers and "notification" for redirect/notify
// callbacks.
func RecordHashFailure(direction string) {
	hashFailuresTotal.WithLabelValues(direction).Inc()
}
