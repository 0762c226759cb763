package observability

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

var (
	registerOnce sync.Once

	lookups = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ssrpctl",
			Subsystem: "resolver",
			Name:      "lookups_total",
			Help:      "Total SSRP lookups by request kind and outcome.",
		},
		[]string{"host", "kind", "outcome"},
	)
	lookupDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: "ssrpctl",
			Subsystem: "resolver",
			Name:      "lookup_duration_seconds",
			Help:      "SSRP request/response round trip in seconds.",
			Buckets:   prometheus.DefBuckets,
		},
		[]string{"host", "kind"},
	)
	cacheHits = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: "ssrpctl",
			Subsystem: "resolver",
			Name:      "cache_hits_total",
			Help:      "Lookups answered from the response cache.",
		},
		[]string{"host", "kind"},
	)
	breakerState = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: "ssrpctl",
			Subsystem: "transport",
			Name:      "breaker_state",
			Help:      "Circuit breaker state per target (0 closed, 1 half-open, 2 open).",
		},
		[]string{"target"},
	)
)

func RegisterMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(lookups, lookupDuration, cacheHits, breakerState)
	})
}

// RecordLookup counts one network exchange and its round trip.
func RecordLookup(host, kind, outcome string, duration time.Duration) {
	RegisterMetrics()
	lookups.WithLabelValues(host, kind, outcome).Inc()
	lookupDuration.WithLabelValues(host, kind).Observe(duration.Seconds())
}

func RecordCacheHit(host, kind string) {
	RegisterMetrics()
	cacheHits.WithLabelValues(host, kind).Inc()
}

func RecordBreakerState(target string, state int) {
	RegisterMetrics()
	breakerState.WithLabelValues(target).Set(float64(state))
}
