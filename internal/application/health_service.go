package application

import (
	"context"

	"github.com/chandubinh-create/binhmovie/internal/circuitbreaker"
	"github.com/chandubinh-create/binhmovie/internal/port/driven"
)

// CacheStats reports the size of the response cache.
type CacheStats interface {
	Len() int
}

// HealthService orchestrates health checks for the application and its dependencies.
type HealthService struct {
	db      driven.HistoryRepository
	cache   CacheStats
	breaker circuitbreaker.CircuitBreaker
}

// NewHealthService creates a new health check service. breaker may be nil.
func NewHealthService(db driven.HistoryRepository, cache CacheStats, breaker circuitbreaker.CircuitBreaker) *HealthService {
	return &HealthService{
		db:      db,
		cache:   cache,
		breaker: breaker,
	}
}

// ComponentHealth represents the health status of a single component.
type ComponentHealth struct {
	Status string // "ok" or "error"
	Error  string // empty if status is "ok", otherwise contains error message
}

// HealthStatus represents the overall health status of the application.
type HealthStatus struct {
	Status       string          // "ok" if all components are healthy, "degraded" otherwise
	DB           ComponentHealth // database health
	Upstream     ComponentHealth // "error" while the circuit breaker is open
	BreakerState string
	CacheEntries int
}

// Check performs health checks on all dependencies.
// An open breaker degrades the status; cached responses are still served meanwhile.
func (s *HealthService) Check(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:   "ok",
		DB:       ComponentHealth{Status: "ok"},
		Upstream: ComponentHealth{Status: "ok"},
	}

	if err := s.db.Ping(ctx); err != nil {
		status.DB = ComponentHealth{
			Status: "error",
			Error:  err.Error(),
		}
		status.Status = "degraded"
	}

	if s.breaker != nil {
		state := s.breaker.State()
		status.BreakerState = state.String()
		if state == circuitbreaker.StateOpen {
			status.Upstream = ComponentHealth{
				Status: "error",
				Error:  circuitbreaker.ErrCircuitOpen.Error(),
			}
			status.Status = "degraded"
		}
	}

	if s.cache != nil {
		status.CacheEntries = s.cache.Len()
	}

	return status
}
