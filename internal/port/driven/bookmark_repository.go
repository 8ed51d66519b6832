package driven

import (
	"context"

	"github.com/chandubinh-create/binhmovie/internal/library"
)

// BookmarkRepository defines the interface for bookmark persistence.
type BookmarkRepository interface {
	// Save persists a bookmark. Returns library.ErrBookmarkAlreadyExists
	// if the slug is already bookmarked.
	Save(ctx context.Context, b library.Bookmark) error

	// FindBySlug returns library.ErrBookmarkNotFound if the slug is not bookmarked.
	FindBySlug(ctx context.Context, slug string) (library.Bookmark, error)

	// FindAll returns every bookmark, newest first.
	FindAll(ctx context.Context) ([]library.Bookmark, error)

	// Delete returns library.ErrBookmarkNotFound if the slug is not bookmarked.
	Delete(ctx context.Context, slug string) error
}
