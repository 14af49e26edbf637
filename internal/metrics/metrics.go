package metrics

import "github.com/prometheus/client_golang/prometheus"

// Prometheus metrics for monitoring service health and performance
var (
	FulfillmentsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "fulfillments_total",
			Help: "Total number of fulfillment attempts processed",
		},
	)

	FulfillmentsFailedTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "fulfillments_failed_total",
			Help: "Total number of failed fulfillment attempts by error kind",
		},
		[]string{"kind"},
	)

	MetricRecordFailuresTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "metric_record_failures_total",
			Help: "Total number of fulfillment log writes that failed",
		},
	)

	ReportedErrorsTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Name: "reported_errors_total",
			Help: "Total number of faults handed to the error reporter",
		},
	)

	HTTPRequestsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Name: "http_requests_total",
			Help: "Total number of HTTP requests",
		},
		[]string{"handler", "method", "status"},
	)

	HTTPRequestDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "http_request_duration_seconds",
			Help:    "HTTP request duration in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"handler", "method"},
	)
)

// Register registers all Prometheus metrics
func Register() {
	prometheus.MustRegister(FulfillmentsTotal)
	prometheus.MustRegister(FulfillmentsFailedTotal)
	prometheus.MustRegister(MetricRecordFailuresTotal)
	prometheus.MustRegister(ReportedErrorsTotal)
	prometheus.MustRegister(HTTPRequestsTotal)
	prometheus.MustRegister(HTTPRequestDuration)
}
