package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Cache lookup results recorded by the fetcher.
const (
	ResultHit   = "hit"
	ResultMiss  = "miss"
	ResultStale = "stale"
	ResultError = "error"
)

var (
	// CacheRequests counts fetches by how they were served
	CacheRequests = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "binhmovie_cache_requests_total",
		Help: "Total number of cached fetches by result (hit, miss, stale, error)",
	}, []string{"result"})

	// CacheEntries tracks the number of URLs held by the response cache
	CacheEntries = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "binhmovie_cache_entries",
		Help: "Number of entries in the upstream response cache",
	})

	// UpstreamErrors tracks failed upstream requests by error type
	UpstreamErrors = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "binhmovie_upstream_errors_total",
		Help: "Total number of failed upstream catalog requests",
	}, []string{"error_type"})

	// CircuitBreakerState tracks the current state of circuit breakers
	// 0=closed, 1=open, 2=half-open
	CircuitBreakerState = promauto.NewGaugeVec(prometheus.GaugeOpts{
		Name: "binhmovie_circuit_breaker_state",
		Help: "Current state of circuit breaker (0=closed, 1=open, 2=half-open)",
	}, []string{"name"})

	// CircuitBreakerTrips tracks how many times a circuit breaker transitioned to OPEN
	CircuitBreakerTrips = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "binhmovie_circuit_breaker_trips_total",
		Help: "Total number of times circuit breaker transitioned to OPEN state",
	}, []string{"name"})
)

// RecordCacheResult increments the cache request counter for a result
func RecordCacheResult(result string) {
	CacheRequests.WithLabelValues(result).Inc()
}

// SetCacheEntries sets the current number of cache entries
func SetCacheEntries(count int) {
	CacheEntries.Set(float64(count))
}

// RecordUpstreamError increments the upstream error counter for an error type
func RecordUpstreamError(errorType string) {
	UpstreamErrors.WithLabelValues(errorType).Inc()
}

// SetCircuitBreakerState updates the circuit breaker state metric
// state should be one of: "CLOSED" (0), "OPEN" (1), "HALF-OPEN" (2)
func SetCircuitBreakerState(name, state string) {
	var value float64
	switch state {
	case "CLOSED":
		value = 0
	case "OPEN":
		value = 1
	case "HALF-OPEN":
		value = 2
	}
	CircuitBreakerState.WithLabelValues(name).Set(value)
}

// RecordCircuitBreakerTrip increments the circuit breaker trip counter
func RecordCircuitBreakerTrip(name string) {
	CircuitBreakerTrips.WithLabelValues(name).Inc()
}
