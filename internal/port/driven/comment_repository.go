package driven

import (
	"context"

	"github.com/chandubinh-create/binhmovie/internal/library"
)

// CommentRepository defines the interface for movie comment persistence.
// Comments are scoped by movie slug.
type CommentRepository interface {
	// Save inserts or replaces a comment.
	Save(ctx context.Context, c library.Comment) error

	// FindByID returns library.ErrCommentNotFound if the movie has no such comment.
	FindByID(ctx context.Context, movieSlug, id string) (library.Comment, error)

	// FindByMovie returns the comments of a movie, newest first.
	FindByMovie(ctx context.Context, movieSlug string) ([]library.Comment, error)

	// Delete returns library.ErrCommentNotFound if the movie has no such comment.
	Delete(ctx context.Context, movieSlug, id string) error
}
