package library

import (
	"strings"
	"time"
)

// HistoryLimit is the number of watch history entries kept.
const HistoryLimit = 20

// DefaultEpisodeName is recorded when the watched episode has no name.
const DefaultEpisodeName = "Full"

// HistoryItem records the last episode watched for a movie.
// A movie appears at most once in the history.
type HistoryItem struct {
	slug        string
	name        string
	poster      string
	episodeName string
	episodeSlug string
	watchedAt   time.Time
}

// NewHistoryItem creates a history entry. Returns ErrEmptySlug for a blank slug
// and ErrInvalidTime for a zero watchedAt. A blank episode name becomes DefaultEpisodeName.
func NewHistoryItem(slug, name, poster, episodeName, episodeSlug string, watchedAt time.Time) (HistoryItem, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return HistoryItem{}, ErrEmptySlug
	}
	if watchedAt.IsZero() {
		return HistoryItem{}, ErrInvalidTime
	}
	if strings.TrimSpace(episodeName) == "" {
		episodeName = DefaultEpisodeName
	}
	return HistoryItem{
		slug:        slug,
		name:        name,
		poster:      poster,
		episodeName: episodeName,
		episodeSlug: strings.TrimSpace(episodeSlug),
		watchedAt:   watchedAt,
	}, nil
}

// ReconstructHistoryItem rebuilds a HistoryItem from persisted state without validation.
func ReconstructHistoryItem(slug, name, poster, episodeName, episodeSlug string, watchedAt time.Time) HistoryItem {
	return HistoryItem{
		slug:        slug,
		name:        name,
		poster:      poster,
		episodeName: episodeName,
		episodeSlug: episodeSlug,
		watchedAt:   watchedAt,
	}
}

func (h HistoryItem) Slug() string         { return h.slug }
func (h HistoryItem) Name() string         { return h.name }
func (h HistoryItem) Poster() string       { return h.poster }
func (h HistoryItem) EpisodeName() string  { return h.episodeName }
func (h HistoryItem) EpisodeSlug() string  { return h.episodeSlug }
func (h HistoryItem) WatchedAt() time.Time { return h.watchedAt }
