package library

import "errors"

// Domain errors for library operations.
var (
	// Validation errors
	ErrEmptySlug    = errors.New("movie slug cannot be empty")
	ErrEmptyContent = errors.New("comment content cannot be empty")
	ErrInvalidTime  = errors.New("timestamp must not be zero")

	// Operation errors
	ErrHistoryNotFound       = errors.New("history item not found")
	ErrBookmarkNotFound      = errors.New("bookmark not found")
	ErrBookmarkAlreadyExists = errors.New("bookmark already exists")
	ErrCommentNotFound       = errors.New("comment not found")
)
