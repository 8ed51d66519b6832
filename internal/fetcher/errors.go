package fetcher

import (
	"errors"
	"fmt"

	"github.com/chandubinh-create/binhmovie/internal/circuitbreaker"
)

// ErrFetchFailed is returned when the upstream request fails and nothing is cached for the URL.
var ErrFetchFailed = errors.New("upstream fetch failed and no cache available")

// errMalformedBody marks a 2xx response whose body is not valid JSON.
var errMalformedBody = errors.New("response body is not valid JSON")

// StatusError reports a non-2xx upstream response.
type StatusError struct {
	StatusCode int
	Status     string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("HTTP request returned status %d: %s", e.StatusCode, e.Status)
}

// countsAsOutage reports whether err says something about upstream health.
// A 4xx answer means the upstream is up and rejected this particular URL.
func countsAsOutage(err error) bool {
	var statusErr *StatusError
	if errors.As(err, &statusErr) {
		return statusErr.StatusCode >= 500
	}
	return true
}

// errorType classifies an upstream error for metrics.
func errorType(err error) string {
	var statusErr *StatusError
	switch {
	case errors.As(err, &statusErr) && statusErr.StatusCode >= 500:
		return "status_5xx"
	case errors.As(err, &statusErr):
		return "status_4xx"
	case errors.Is(err, errMalformedBody):
		return "malformed_body"
	case errors.Is(err, circuitbreaker.ErrCircuitOpen), errors.Is(err, circuitbreaker.ErrHalfOpenLimitReached):
		return "circuit_open"
	default:
		return "transport"
	}
}
