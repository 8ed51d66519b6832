package driver

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/chandubinh-create/binhmovie/internal/catalog"
	"github.com/chandubinh-create/binhmovie/internal/fetcher"
	"github.com/chandubinh-create/binhmovie/internal/library"
)

// errorResponse represents an error response in JSON format.
type errorResponse struct {
	Error string `json:"error"`
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(w http.ResponseWriter, status int, data interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if data != nil {
		_ = json.NewEncoder(w).Encode(data)
	}
}

// writeError writes a JSON error response.
func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

// writeServiceError maps a domain or upstream error to an HTTP status.
func writeServiceError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, catalog.ErrEmptySlug),
		errors.Is(err, catalog.ErrEmptyKeyword),
		errors.Is(err, catalog.ErrEmptyListType),
		errors.Is(err, catalog.ErrInvalidPage),
		errors.Is(err, library.ErrEmptySlug),
		errors.Is(err, library.ErrEmptyContent):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, catalog.ErrMovieNotFound),
		errors.Is(err, catalog.ErrEpisodeNotFound),
		errors.Is(err, library.ErrHistoryNotFound),
		errors.Is(err, library.ErrBookmarkNotFound),
		errors.Is(err, library.ErrCommentNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	case errors.Is(err, library.ErrBookmarkAlreadyExists):
		writeError(w, http.StatusConflict, err.Error())
	case errors.Is(err, fetcher.ErrFetchFailed):
		writeError(w, http.StatusBadGateway, fetcher.ErrFetchFailed.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal server error")
	}
}

// setCacheHeader reports where catalog data came from.
func setCacheHeader(w http.ResponseWriter, status catalog.CacheStatus) {
	if status != "" {
		w.Header().Set("X-Cache", string(status))
	}
}

// queryInt reads a positive integer query parameter, returning def when it is absent.
// ok is false when the value is present but not an integer.
func queryInt(r *http.Request, name string, def int) (value int, ok bool) {
	raw := r.URL.Query().Get(name)
	if raw == "" {
		return def, true
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, false
	}
	return v, true
}
