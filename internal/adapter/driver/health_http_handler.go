package driver

import (
	"net/http"

	"github.com/chandubinh-create/binhmovie/internal/application"
)

// HealthHTTPHandler handles HTTP requests for health checks.
type HealthHTTPHandler struct {
	service *application.HealthService
}

// NewHealthHTTPHandler creates a new HTTP handler for health checks.
func NewHealthHTTPHandler(service *application.HealthService) *HealthHTTPHandler {
	return &HealthHTTPHandler{service: service}
}

// healthResponse represents the JSON response for health check endpoint.
type healthResponse struct {
	Status       string `json:"status"`
	DB           string `json:"db"`
	Upstream     string `json:"upstream"`
	Breaker      string `json:"circuit_breaker,omitempty"`
	CacheEntries int    `json:"cache_entries"`
}

// ServeHTTP handles GET /health
func (h *HealthHTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	status := h.service.Check(r.Context())

	resp := healthResponse{
		Status:       status.Status,
		DB:           status.DB.Status,
		Upstream:     status.Upstream.Status,
		Breaker:      status.BreakerState,
		CacheEntries: status.CacheEntries,
	}

	// An open breaker still serves cached data, so only a database failure is unavailable.
	httpStatus := http.StatusOK
	if status.DB.Status != "ok" {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, resp)
}
