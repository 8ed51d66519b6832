package catalog

import "errors"

// Domain errors for catalog operations.
var (
	// Query validation errors
	ErrEmptySlug     = errors.New("movie slug cannot be empty")
	ErrEmptyKeyword  = errors.New("search keyword cannot be empty")
	ErrEmptyListType = errors.New("list type cannot be empty")
	ErrInvalidPage   = errors.New("page must be a positive integer")

	// Lookup errors
	ErrMovieNotFound   = errors.New("movie not found")
	ErrEpisodeNotFound = errors.New("episode not found")
)
