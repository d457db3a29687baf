package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	CDORequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parkweather_cdo_requests_total",
			Help: "Total NOAA CDO API requests",
		},
		[]string{"endpoint", "status"},
	)

	CDORequestLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "parkweather_cdo_request_latency_seconds",
			Help:    "NOAA CDO API request latency in seconds",
			Buckets: prometheus.DefBuckets,
		},
		[]string{"endpoint"},
	)

	LookupsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parkweather_station_lookups_total",
			Help: "Station lookups by terminal status",
		},
		[]string{"status"},
	)

	LookupAttempts = promauto.NewHistogram(
		prometheus.HistogramOpts{
			Name:    "parkweather_station_lookup_attempts",
			Help:    "Directory queries issued per station lookup",
			Buckets: prometheus.LinearBuckets(1, 1, 10),
		},
	)

	MonthlyFetchesTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parkweather_monthly_fetches_total",
			Help: "Monthly temperature fetches by outcome",
		},
		[]string{"outcome"},
	)

	CacheRequestsTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "parkweather_cache_requests_total",
			Help: "Cache lookups by cache layer and result",
		},
		[]string{"cache", "result"},
	)
)
