package application

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/chandubinh-create/binhmovie/internal/library"
	"github.com/chandubinh-create/binhmovie/internal/port/driven"
)

// LibraryService manages the user's watch history, bookmarks and comments.
type LibraryService struct {
	history   driven.HistoryRepository
	bookmarks driven.BookmarkRepository
	comments  driven.CommentRepository
	now       func() time.Time

	// historyMu serializes save-then-trim so the history never exceeds its limit.
	historyMu sync.Mutex
}

// NewLibraryService creates a new LibraryService with the given repositories.
func NewLibraryService(
	history driven.HistoryRepository,
	bookmarks driven.BookmarkRepository,
	comments driven.CommentRepository,
) *LibraryService {
	return &LibraryService{
		history:   history,
		bookmarks: bookmarks,
		comments:  comments,
		now:       time.Now,
	}
}

// RecordWatch puts a movie at the front of the history, replacing its previous entry,
// and drops the oldest entries beyond library.HistoryLimit.
func (s *LibraryService) RecordWatch(ctx context.Context, slug, name, poster, episodeName, episodeSlug string) (library.HistoryItem, error) {
	item, err := library.NewHistoryItem(slug, name, poster, episodeName, episodeSlug, s.now())
	if err != nil {
		return library.HistoryItem{}, err
	}

	s.historyMu.Lock()
	defer s.historyMu.Unlock()

	if err := s.history.Save(ctx, item); err != nil {
		return library.HistoryItem{}, err
	}

	items, err := s.history.FindAll(ctx)
	if err != nil {
		return library.HistoryItem{}, err
	}
	for i := library.HistoryLimit; i < len(items); i++ {
		if err := s.history.Delete(ctx, items[i].Slug()); err != nil && !errors.Is(err, library.ErrHistoryNotFound) {
			return library.HistoryItem{}, err
		}
	}

	return item, nil
}

// History returns the watch history, most recent first.
func (s *LibraryService) History(ctx context.Context) ([]library.HistoryItem, error) {
	return s.history.FindAll(ctx)
}

// RemoveHistory removes one movie from the history.
// Returns library.ErrHistoryNotFound if the movie is not in the history.
func (s *LibraryService) RemoveHistory(ctx context.Context, slug string) error {
	return s.history.Delete(ctx, slug)
}

// ClearHistory removes the whole history.
func (s *LibraryService) ClearHistory(ctx context.Context) error {
	s.historyMu.Lock()
	defer s.historyMu.Unlock()
	return s.history.DeleteAll(ctx)
}

// AddBookmark saves a movie for later.
// Returns library.ErrBookmarkAlreadyExists if it is already bookmarked.
func (s *LibraryService) AddBookmark(ctx context.Context, slug, name, poster string) (library.Bookmark, error) {
	b, err := library.NewBookmark(slug, name, poster, s.now())
	if err != nil {
		return library.Bookmark{}, err
	}

	if err := s.bookmarks.Save(ctx, b); err != nil {
		return library.Bookmark{}, err
	}

	return b, nil
}

// RemoveBookmark removes a bookmark.
// Returns library.ErrBookmarkNotFound if the movie is not bookmarked.
func (s *LibraryService) RemoveBookmark(ctx context.Context, slug string) error {
	return s.bookmarks.Delete(ctx, slug)
}

// Bookmarks returns all bookmarks, newest first.
func (s *LibraryService) Bookmarks(ctx context.Context) ([]library.Bookmark, error) {
	return s.bookmarks.FindAll(ctx)
}

// IsBookmarked reports whether a movie is bookmarked.
func (s *LibraryService) IsBookmarked(ctx context.Context, slug string) (bool, error) {
	_, err := s.bookmarks.FindBySlug(ctx, slug)
	if errors.Is(err, library.ErrBookmarkNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// Comments returns the comments of a movie, newest first.
func (s *LibraryService) Comments(ctx context.Context, slug string) ([]library.Comment, error) {
	slug = strings.TrimSpace(slug)
	if slug == "" {
		return nil, library.ErrEmptySlug
	}
	return s.comments.FindByMovie(ctx, slug)
}

// AddComment posts a comment on a movie. A blank userName uses the guest name.
// Returns library.ErrEmptyContent for blank content.
func (s *LibraryService) AddComment(ctx context.Context, slug, userName, content string) (library.Comment, error) {
	c, err := library.NewComment(slug, userName, content, s.now())
	if err != nil {
		return library.Comment{}, err
	}

	if err := s.comments.Save(ctx, c); err != nil {
		return library.Comment{}, err
	}

	return c, nil
}

// ToggleCommentLike likes a comment, or removes the like if already liked.
// Returns library.ErrCommentNotFound if the comment does not exist.
func (s *LibraryService) ToggleCommentLike(ctx context.Context, slug, id string) (library.Comment, error) {
	c, err := s.comments.FindByID(ctx, slug, id)
	if err != nil {
		return library.Comment{}, err
	}

	toggled := c.ToggleLike()
	if err := s.comments.Save(ctx, toggled); err != nil {
		return library.Comment{}, err
	}

	return toggled, nil
}

// DeleteComment removes a comment.
// Returns library.ErrCommentNotFound if the comment does not exist.
func (s *LibraryService) DeleteComment(ctx context.Context, slug, id string) error {
	return s.comments.Delete(ctx, slug, id)
}
