package driven

import (
	"context"

	"github.com/chandubinh-create/binhmovie/internal/catalog"
)

// CatalogSource defines the interface for reading the remote movie catalog.
// This is a driven port implemented by a cached HTTP adapter.
type CatalogSource interface {
	// NewUpdates returns a page of recently updated movies.
	NewUpdates(ctx context.Context, page int) (catalog.Page, error)

	// ListByType returns a page of movies of the given list type (e.g. "phim-bo").
	ListByType(ctx context.Context, listType string, page int) (catalog.Page, error)

	// MovieDetail returns a movie with its episode servers. Returns
	// catalog.ErrMovieNotFound if the upstream does not know the slug.
	MovieDetail(ctx context.Context, slug string) (catalog.MovieDetail, error)

	// Search returns a page of movies matching keyword.
	Search(ctx context.Context, keyword string, page int) (catalog.Page, error)
}
