package driver

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/chandubinh-create/binhmovie/internal/application"
	"github.com/chandubinh-create/binhmovie/internal/catalog"
	"github.com/chandubinh-create/binhmovie/internal/library"
)

// LibraryHTTPHandler handles HTTP requests for watch history and bookmarks.
type LibraryHTTPHandler struct {
	service *application.LibraryService
	images  catalog.ImageRewriter
}

// NewLibraryHTTPHandler creates a new HTTP handler for the user library.
func NewLibraryHTTPHandler(service *application.LibraryService, images catalog.ImageRewriter) *LibraryHTTPHandler {
	return &LibraryHTTPHandler{service: service, images: images}
}

type historyResponse struct {
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	Poster      string    `json:"poster"`
	Image       string    `json:"image"`
	EpisodeName string    `json:"episode_name"`
	EpisodeSlug string    `json:"episode_slug"`
	WatchedAt   time.Time `json:"watched_at"`
}

type bookmarkRequest struct {
	Slug   string `json:"slug"`
	Name   string `json:"name"`
	Poster string `json:"poster"`
}

type bookmarkResponse struct {
	Slug    string    `json:"slug"`
	Name    string    `json:"name"`
	Poster  string    `json:"poster"`
	Image   string    `json:"image"`
	SavedAt time.Time `json:"saved_at"`
}

type bookmarkStatusResponse struct {
	Slug       string `json:"slug"`
	Bookmarked bool   `json:"bookmarked"`
}

// ServeHTTP routes the request to the appropriate handler based on method and path.
func (h *LibraryHTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if rest, ok := strings.CutPrefix(r.URL.Path, "/history"); ok {
		h.routeHistory(w, r, strings.TrimPrefix(rest, "/"))
		return
	}
	if rest, ok := strings.CutPrefix(r.URL.Path, "/bookmarks"); ok {
		h.routeBookmarks(w, r, strings.TrimPrefix(rest, "/"))
		return
	}
	writeError(w, http.StatusNotFound, "not found")
}

func (h *LibraryHTTPHandler) routeHistory(w http.ResponseWriter, r *http.Request, slug string) {
	switch {
	// GET /history - list watch history
	case r.Method == http.MethodGet && slug == "":
		h.handleListHistory(w, r)
	// DELETE /history - clear watch history
	case r.Method == http.MethodDelete && slug == "":
		h.handleClearHistory(w, r)
	// DELETE /history/{slug} - remove one movie
	case r.Method == http.MethodDelete:
		h.handleRemoveHistory(w, r, slug)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

func (h *LibraryHTTPHandler) routeBookmarks(w http.ResponseWriter, r *http.Request, slug string) {
	switch {
	// GET /bookmarks - list bookmarks
	case r.Method == http.MethodGet && slug == "":
		h.handleListBookmarks(w, r)
	// POST /bookmarks - add bookmark
	case r.Method == http.MethodPost && slug == "":
		h.handleAddBookmark(w, r)
	// GET /bookmarks/{slug} - bookmark status
	case r.Method == http.MethodGet:
		h.handleBookmarkStatus(w, r, slug)
	// DELETE /bookmarks/{slug} - remove bookmark
	case r.Method == http.MethodDelete && slug != "":
		h.handleRemoveBookmark(w, r, slug)
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleListHistory handles GET /history
func (h *LibraryHTTPHandler) handleListHistory(w http.ResponseWriter, r *http.Request) {
	items, err := h.service.History(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response := make([]historyResponse, len(items))
	for i, item := range items {
		response[i] = h.toHistoryResponse(item)
	}

	writeJSON(w, http.StatusOK, response)
}

// handleClearHistory handles DELETE /history
func (h *LibraryHTTPHandler) handleClearHistory(w http.ResponseWriter, r *http.Request) {
	if err := h.service.ClearHistory(r.Context()); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleRemoveHistory handles DELETE /history/{slug}
func (h *LibraryHTTPHandler) handleRemoveHistory(w http.ResponseWriter, r *http.Request, slug string) {
	if err := h.service.RemoveHistory(r.Context(), slug); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleListBookmarks handles GET /bookmarks
func (h *LibraryHTTPHandler) handleListBookmarks(w http.ResponseWriter, r *http.Request) {
	bookmarks, err := h.service.Bookmarks(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response := make([]bookmarkResponse, len(bookmarks))
	for i, b := range bookmarks {
		response[i] = h.toBookmarkResponse(b)
	}

	writeJSON(w, http.StatusOK, response)
}

// handleAddBookmark handles POST /bookmarks
func (h *LibraryHTTPHandler) handleAddBookmark(w http.ResponseWriter, r *http.Request) {
	var req bookmarkRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	b, err := h.service.AddBookmark(r.Context(), req.Slug, req.Name, req.Poster)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, h.toBookmarkResponse(b))
}

// handleBookmarkStatus handles GET /bookmarks/{slug}
func (h *LibraryHTTPHandler) handleBookmarkStatus(w http.ResponseWriter, r *http.Request, slug string) {
	bookmarked, err := h.service.IsBookmarked(r.Context(), slug)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, bookmarkStatusResponse{Slug: slug, Bookmarked: bookmarked})
}

// handleRemoveBookmark handles DELETE /bookmarks/{slug}
func (h *LibraryHTTPHandler) handleRemoveBookmark(w http.ResponseWriter, r *http.Request, slug string) {
	if err := h.service.RemoveBookmark(r.Context(), slug); err != nil {
		writeServiceError(w, err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (h *LibraryHTTPHandler) toHistoryResponse(item library.HistoryItem) historyResponse {
	return historyResponse{
		Slug:        item.Slug(),
		Name:        item.Name(),
		Poster:      item.Poster(),
		Image:       h.images.URL(item.Poster(), catalog.DefaultImageWidth, catalog.DefaultImageQuality),
		EpisodeName: item.EpisodeName(),
		EpisodeSlug: item.EpisodeSlug(),
		WatchedAt:   item.WatchedAt(),
	}
}

func (h *LibraryHTTPHandler) toBookmarkResponse(b library.Bookmark) bookmarkResponse {
	return bookmarkResponse{
		Slug:    b.Slug(),
		Name:    b.Name(),
		Poster:  b.Poster(),
		Image:   h.images.URL(b.Poster(), cardImageWidth, catalog.DefaultImageQuality),
		SavedAt: b.SavedAt(),
	}
}
