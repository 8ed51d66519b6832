package library

import (
	"strings"
	"time"
)

// Bookmark is a movie saved by the user for later.
type Bookmark struct {
	slug    string
	name    string
	poster  string
	savedAt time.Time
}

// NewBookmark creates a bookmark. Returns ErrEmptySlug for a blank slug.
func NewBookmark(slug, name, poster string, savedAt time.Time) (Bookmark, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return Bookmark{}, ErrEmptySlug
	}
	if savedAt.IsZero() {
		return Bookmark{}, ErrInvalidTime
	}
	return Bookmark{
		slug:    slug,
		name:    strings.TrimSpace(name),
		poster:  poster,
		savedAt: savedAt,
	}, nil
}

// ReconstructBookmark rebuilds a Bookmark from persisted state without validation.
func ReconstructBookmark(slug, name, poster string, savedAt time.Time) Bookmark {
	return Bookmark{slug: slug, name: name, poster: poster, savedAt: savedAt}
}

func (b Bookmark) Slug() string       { return b.slug }
func (b Bookmark) Name() string       { return b.name }
func (b Bookmark) Poster() string     { return b.poster }
func (b Bookmark) SavedAt() time.Time { return b.savedAt }
