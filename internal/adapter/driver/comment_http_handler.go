package driver

import (
	"encoding/json"
	"net/http"
	"strings"
	"time"

	"github.com/chandubinh-create/binhmovie/internal/application"
	"github.com/chandubinh-create/binhmovie/internal/library"
)

// CommentHTTPHandler handles HTTP requests for movie comments.
type CommentHTTPHandler struct {
	service *application.LibraryService
}

// NewCommentHTTPHandler creates a new HTTP handler for comments.
func NewCommentHTTPHandler(service *application.LibraryService) *CommentHTTPHandler {
	return &CommentHTTPHandler{service: service}
}

type commentRequest struct {
	UserName string `json:"user_name"`
	Content  string `json:"content"`
}

type commentResponse struct {
	ID        string    `json:"id"`
	MovieSlug string    `json:"movie_slug"`
	UserName  string    `json:"user_name"`
	Avatar    string    `json:"avatar"`
	Content   string    `json:"content"`
	Likes     int       `json:"likes"`
	Liked     bool      `json:"liked"`
	CreatedAt time.Time `json:"created_at"`
}

// ServeHTTP routes the request to the appropriate handler based on method and path.
func (h *CommentHTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	path := strings.Trim(strings.TrimPrefix(r.URL.Path, "/comments"), "/")
	parts := strings.Split(path, "/")
	if path == "" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}

	switch {
	// GET /comments/{slug} - list comments, newest first
	case r.Method == http.MethodGet && len(parts) == 1:
		h.handleList(w, r, parts[0])
	// POST /comments/{slug} - post a comment
	case r.Method == http.MethodPost && len(parts) == 1:
		h.handleCreate(w, r, parts[0])
	// POST /comments/{slug}/{id}/like - toggle like
	case r.Method == http.MethodPost && len(parts) == 3 && parts[2] == "like":
		h.handleToggleLike(w, r, parts[0], parts[1])
	// DELETE /comments/{slug}/{id} - delete a comment
	case r.Method == http.MethodDelete && len(parts) == 2:
		h.handleDelete(w, r, parts[0], parts[1])
	default:
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
	}
}

// handleList handles GET /comments/{slug}
func (h *CommentHTTPHandler) handleList(w http.ResponseWriter, r *http.Request, slug string) {
	comments, err := h.service.Comments(r.Context(), slug)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	response := make([]commentResponse, len(comments))
	for i, c := range comments {
		response[i] = toCommentResponse(c)
	}

	writeJSON(w, http.StatusOK, response)
}

// handleCreate handles POST /comments/{slug}
func (h *CommentHTTPHandler) handleCreate(w http.ResponseWriter, r *http.Request, slug string) {
	var req commentRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, http.StatusBadRequest, "invalid request body")
		return
	}

	c, err := h.service.AddComment(r.Context(), slug, req.UserName, req.Content)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusCreated, toCommentResponse(c))
}

// handleToggleLike handles POST /comments/{slug}/{id}/like
func (h *CommentHTTPHandler) handleToggleLike(w http.ResponseWriter, r *http.Request, slug, id string) {
	c, err := h.service.ToggleCommentLike(r.Context(), slug, id)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	writeJSON(w, http.StatusOK, toCommentResponse(c))
}

// handleDelete handles DELETE /comments/{slug}/{id}
func (h *CommentHTTPHandler) handleDelete(w http.ResponseWriter, r *http.Request, slug, id string) {
	if err := h.service.DeleteComment(r.Context(), slug, id); err != nil {
		writeServiceError(w, err)
		return
	}

	w.WriteHeader(http.StatusNoContent)
}

func toCommentResponse(c library.Comment) commentResponse {
	return commentResponse{
		ID:        c.ID(),
		MovieSlug: c.MovieSlug(),
		UserName:  c.UserName(),
		Avatar:    c.Avatar(),
		Content:   c.Content(),
		Likes:     c.Likes(),
		Liked:     c.Liked(),
		CreatedAt: c.CreatedAt(),
	}
}
