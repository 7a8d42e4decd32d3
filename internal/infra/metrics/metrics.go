// Package metrics holds the prometheus collectors shared across the service.
package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// FetchRequestsTotal tracks API fetches per path and outcome tag
	FetchRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_fetch_requests_total",
			Help: "Total number of API fetches by outcome",
		},
		[]string{"path", "outcome"},
	)

	// FetchDuration tracks API fetch latency
	FetchDuration = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "catalog_fetch_duration_seconds",
			Help:    "API fetch latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"path"},
	)

	// FetchRetriesTotal tracks retries granted by the retry predicate
	FetchRetriesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_fetch_retries_total",
			Help: "Total number of retried API fetches",
		},
		[]string{"path"},
	)

	// CategoryCacheLookups tracks category query cache hits and misses
	CategoryCacheLookups = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "catalog_category_cache_lookups_total",
			Help: "Category query cache lookups by result",
		},
		[]string{"result"},
	)
)

// OutcomeSuccess is the outcome label for successful fetches.
const OutcomeSuccess = "success"
