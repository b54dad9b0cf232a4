package metric

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	HTTPRequestsTotal = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "prioritizer_http_requests_total",
		Help: "The number of http requests handled since the service was started",
	}, []string{"route", "code"})

	RecordsPrioritized = promauto.NewCounter(prometheus.CounterOpts{
		Name: "prioritizer_records_prioritized_total",
		Help: "The number of test records that were prioritized since the service was started",
	})

	ValidationFailures = promauto.NewCounter(prometheus.CounterOpts{
		Name: "prioritizer_validation_failures_total",
		Help: "The number of prioritization requests rejected because of an invalid payload",
	})

	RequestRecords = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "prioritizer_request_records",
		Help:    "The number of test records per prioritization request",
		Buckets: prometheus.ExponentialBuckets(1, 4, 8),
	})
)
