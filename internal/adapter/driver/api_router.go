package driver

import (
	"net/http"

	"github.com/getkin/kin-openapi/openapi3"
)

// APIHandlers groups the handlers mounted under /api.
type APIHandlers struct {
	Catalog  *CatalogHTTPHandler
	Library  *LibraryHTTPHandler
	Comments *CommentHTTPHandler
	Health   *HealthHTTPHandler
}

// NewAPIRouter builds the /api routes behind OpenAPI request validation.
// Mount it with http.StripPrefix("/api", ...).
func NewAPIRouter(h APIHandlers, doc *openapi3.T) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/home", h.Catalog)
	mux.Handle("/lists/", h.Catalog)
	mux.Handle("/search", h.Catalog)
	mux.Handle("/movies/", h.Catalog)
	mux.Handle("/watch/", h.Catalog)
	mux.Handle("/image", h.Catalog)
	mux.Handle("/history", h.Library)
	mux.Handle("/history/", h.Library)
	mux.Handle("/bookmarks", h.Library)
	mux.Handle("/bookmarks/", h.Library)
	mux.Handle("/comments/", h.Comments)
	mux.Handle("/health", h.Health)
	mux.Handle("/openapi.json", NewOpenAPIHandler(doc))

	return NewRequestValidator(doc)(mux)
}
