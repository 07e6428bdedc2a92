package resolver

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	// Pricing document fetches partitioned by source and outcome
	configFetchTotal = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "pricing_config_fetch_total",
			Help: "Total number of pricing document fetches",
		},
		[]string{"source", "result"},
	)

	// Seconds since the cached pricing document was fetched, -1 when empty
	configCacheAge = promauto.NewGauge(
		prometheus.GaugeOpts{
			Name: "pricing_config_cache_age_seconds",
			Help: "Age of the cached pricing document in seconds",
		},
	)
)
