package application

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"testing"
	"time"

	"github.com/chandubinh-create/binhmovie/internal/library"
)

// mockHistoryRepository is a mock implementation of driven.HistoryRepository for testing.
type mockHistoryRepository struct {
	saveFunc      func(ctx context.Context, item library.HistoryItem) error
	findAllFunc   func(ctx context.Context) ([]library.HistoryItem, error)
	deleteFunc    func(ctx context.Context, slug string) error
	deleteAllFunc func(ctx context.Context) error
	pingFunc      func(ctx context.Context) error
}

func (m *mockHistoryRepository) Save(ctx context.Context, item library.HistoryItem) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, item)
	}
	return nil
}

func (m *mockHistoryRepository) FindAll(ctx context.Context) ([]library.HistoryItem, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx)
	}
	return []library.HistoryItem{}, nil
}

func (m *mockHistoryRepository) Delete(ctx context.Context, slug string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, slug)
	}
	return nil
}

func (m *mockHistoryRepository) DeleteAll(ctx context.Context) error {
	if m.deleteAllFunc != nil {
		return m.deleteAllFunc(ctx)
	}
	return nil
}

func (m *mockHistoryRepository) Ping(ctx context.Context) error {
	if m.pingFunc != nil {
		return m.pingFunc(ctx)
	}
	return nil
}

// mockBookmarkRepository is a mock implementation of driven.BookmarkRepository for testing.
type mockBookmarkRepository struct {
	saveFunc       func(ctx context.Context, b library.Bookmark) error
	findBySlugFunc func(ctx context.Context, slug string) (library.Bookmark, error)
	findAllFunc    func(ctx context.Context) ([]library.Bookmark, error)
	deleteFunc     func(ctx context.Context, slug string) error
}

func (m *mockBookmarkRepository) Save(ctx context.Context, b library.Bookmark) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, b)
	}
	return nil
}

func (m *mockBookmarkRepository) FindBySlug(ctx context.Context, slug string) (library.Bookmark, error) {
	if m.findBySlugFunc != nil {
		return m.findBySlugFunc(ctx, slug)
	}
	return library.Bookmark{}, library.ErrBookmarkNotFound
}

func (m *mockBookmarkRepository) FindAll(ctx context.Context) ([]library.Bookmark, error) {
	if m.findAllFunc != nil {
		return m.findAllFunc(ctx)
	}
	return []library.Bookmark{}, nil
}

func (m *mockBookmarkRepository) Delete(ctx context.Context, slug string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, slug)
	}
	return nil
}

// mockCommentRepository is a mock implementation of driven.CommentRepository for testing.
type mockCommentRepository struct {
	saveFunc        func(ctx context.Context, c library.Comment) error
	findByIDFunc    func(ctx context.Context, movieSlug, id string) (library.Comment, error)
	findByMovieFunc func(ctx context.Context, movieSlug string) ([]library.Comment, error)
	deleteFunc      func(ctx context.Context, movieSlug, id string) error
}

func (m *mockCommentRepository) Save(ctx context.Context, c library.Comment) error {
	if m.saveFunc != nil {
		return m.saveFunc(ctx, c)
	}
	return nil
}

func (m *mockCommentRepository) FindByID(ctx context.Context, movieSlug, id string) (library.Comment, error) {
	if m.findByIDFunc != nil {
		return m.findByIDFunc(ctx, movieSlug, id)
	}
	return library.Comment{}, library.ErrCommentNotFound
}

func (m *mockCommentRepository) FindByMovie(ctx context.Context, movieSlug string) ([]library.Comment, error) {
	if m.findByMovieFunc != nil {
		return m.findByMovieFunc(ctx, movieSlug)
	}
	return []library.Comment{}, nil
}

func (m *mockCommentRepository) Delete(ctx context.Context, movieSlug, id string) error {
	if m.deleteFunc != nil {
		return m.deleteFunc(ctx, movieSlug, id)
	}
	return nil
}

// memoryHistory backs a mockHistoryRepository with a map keyed by slug.
type memoryHistory struct {
	mu    sync.Mutex
	items map[string]library.HistoryItem
}

func newMemoryHistory() (*memoryHistory, *mockHistoryRepository) {
	h := &memoryHistory{items: make(map[string]library.HistoryItem)}
	repo := &mockHistoryRepository{
		saveFunc: func(ctx context.Context, item library.HistoryItem) error {
			h.mu.Lock()
			defer h.mu.Unlock()
			h.items[item.Slug()] = item
			return nil
		},
		findAllFunc: func(ctx context.Context) ([]library.HistoryItem, error) {
			h.mu.Lock()
			defer h.mu.Unlock()
			out := make([]library.HistoryItem, 0, len(h.items))
			for _, item := range h.items {
				out = append(out, item)
			}
			sort.Slice(out, func(i, j int) bool { return out[i].WatchedAt().After(out[j].WatchedAt()) })
			return out, nil
		},
		deleteFunc: func(ctx context.Context, slug string) error {
			h.mu.Lock()
			defer h.mu.Unlock()
			if _, ok := h.items[slug]; !ok {
				return library.ErrHistoryNotFound
			}
			delete(h.items, slug)
			return nil
		},
	}
	return h, repo
}

// steppingClock returns a time one second later on every call.
func steppingClock() func() time.Time {
	var mu sync.Mutex
	t := time.Date(2026, 5, 1, 20, 0, 0, 0, time.UTC)
	return func() time.Time {
		mu.Lock()
		defer mu.Unlock()
		t = t.Add(time.Second)
		return t
	}
}

func TestLibraryService_RecordWatch(t *testing.T) {
	t.Run("moves rewatched movie to the front", func(t *testing.T) {
		_, repo := newMemoryHistory()
		svc := NewLibraryService(repo, &mockBookmarkRepository{}, &mockCommentRepository{})
		svc.now = steppingClock()
		ctx := context.Background()

		for _, slug := range []string{"a", "b", "a"} {
			if _, err := svc.RecordWatch(ctx, slug, slug, "", "", ""); err != nil {
				t.Fatalf("RecordWatch(%s): %v", slug, err)
			}
		}

		items, err := svc.History(ctx)
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if len(items) != 2 {
			t.Fatalf("expected 2 items, got %d", len(items))
		}
		if items[0].Slug() != "a" || items[1].Slug() != "b" {
			t.Errorf("expected [a b], got [%s %s]", items[0].Slug(), items[1].Slug())
		}
	})

	t.Run("caps history at limit", func(t *testing.T) {
		h, repo := newMemoryHistory()
		svc := NewLibraryService(repo, &mockBookmarkRepository{}, &mockCommentRepository{})
		svc.now = steppingClock()
		ctx := context.Background()

		for i := 0; i < library.HistoryLimit+5; i++ {
			if _, err := svc.RecordWatch(ctx, fmt.Sprintf("movie-%02d", i), "", "", "", ""); err != nil {
				t.Fatalf("RecordWatch: %v", err)
			}
		}

		if len(h.items) != library.HistoryLimit {
			t.Fatalf("expected %d items, got %d", library.HistoryLimit, len(h.items))
		}
		for i := 0; i < 5; i++ {
			if _, ok := h.items[fmt.Sprintf("movie-%02d", i)]; ok {
				t.Errorf("expected oldest movie-%02d to be evicted", i)
			}
		}
		if _, ok := h.items[fmt.Sprintf("movie-%02d", library.HistoryLimit+4)]; !ok {
			t.Error("expected newest movie to be kept")
		}
	})

	t.Run("defaults episode name", func(t *testing.T) {
		_, repo := newMemoryHistory()
		svc := NewLibraryService(repo, &mockBookmarkRepository{}, &mockCommentRepository{})

		item, err := svc.RecordWatch(context.Background(), "a", "A", "thumb.jpg", "", "")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if item.EpisodeName() != library.DefaultEpisodeName {
			t.Errorf("expected %q, got %q", library.DefaultEpisodeName, item.EpisodeName())
		}
	})

	t.Run("rejects empty slug", func(t *testing.T) {
		svc := NewLibraryService(&mockHistoryRepository{}, &mockBookmarkRepository{}, &mockCommentRepository{})

		_, err := svc.RecordWatch(context.Background(), " ", "", "", "", "")
		if !errors.Is(err, library.ErrEmptySlug) {
			t.Errorf("expected ErrEmptySlug, got %v", err)
		}
	})

	t.Run("propagates save error", func(t *testing.T) {
		saveErr := errors.New("disk full")
		repo := &mockHistoryRepository{
			saveFunc: func(ctx context.Context, item library.HistoryItem) error { return saveErr },
		}
		svc := NewLibraryService(repo, &mockBookmarkRepository{}, &mockCommentRepository{})

		if _, err := svc.RecordWatch(context.Background(), "a", "", "", "", ""); !errors.Is(err, saveErr) {
			t.Errorf("expected save error, got %v", err)
		}
	})
}

func TestLibraryService_ClearHistory(t *testing.T) {
	called := false
	repo := &mockHistoryRepository{
		deleteAllFunc: func(ctx context.Context) error {
			called = true
			return nil
		},
	}
	svc := NewLibraryService(repo, &mockBookmarkRepository{}, &mockCommentRepository{})

	if err := svc.ClearHistory(context.Background()); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !called {
		t.Error("expected DeleteAll to be called")
	}
}

func TestLibraryService_Bookmarks(t *testing.T) {
	t.Run("add bookmark", func(t *testing.T) {
		var saved library.Bookmark
		repo := &mockBookmarkRepository{
			saveFunc: func(ctx context.Context, b library.Bookmark) error {
				saved = b
				return nil
			},
		}
		svc := NewLibraryService(&mockHistoryRepository{}, repo, &mockCommentRepository{})

		b, err := svc.AddBookmark(context.Background(), "one-piece", "One Piece", "op.jpg")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if saved.Slug() != "one-piece" || b.Slug() != "one-piece" {
			t.Errorf("unexpected bookmark: %+v", saved)
		}
		if b.SavedAt().IsZero() {
			t.Error("expected savedAt to be set")
		}
	})

	t.Run("duplicate bookmark", func(t *testing.T) {
		repo := &mockBookmarkRepository{
			saveFunc: func(ctx context.Context, b library.Bookmark) error {
				return library.ErrBookmarkAlreadyExists
			},
		}
		svc := NewLibraryService(&mockHistoryRepository{}, repo, &mockCommentRepository{})

		_, err := svc.AddBookmark(context.Background(), "one-piece", "", "")
		if !errors.Is(err, library.ErrBookmarkAlreadyExists) {
			t.Errorf("expected ErrBookmarkAlreadyExists, got %v", err)
		}
	})

	t.Run("is bookmarked", func(t *testing.T) {
		repo := &mockBookmarkRepository{
			findBySlugFunc: func(ctx context.Context, slug string) (library.Bookmark, error) {
				if slug == "saved" {
					return library.ReconstructBookmark(slug, "", "", time.Now()), nil
				}
				return library.Bookmark{}, library.ErrBookmarkNotFound
			},
		}
		svc := NewLibraryService(&mockHistoryRepository{}, repo, &mockCommentRepository{})
		ctx := context.Background()

		if ok, err := svc.IsBookmarked(ctx, "saved"); err != nil || !ok {
			t.Errorf("expected saved to be bookmarked, got %v, %v", ok, err)
		}
		if ok, err := svc.IsBookmarked(ctx, "other"); err != nil || ok {
			t.Errorf("expected other not to be bookmarked, got %v, %v", ok, err)
		}
	})

	t.Run("is bookmarked propagates repository errors", func(t *testing.T) {
		dbErr := errors.New("db closed")
		repo := &mockBookmarkRepository{
			findBySlugFunc: func(ctx context.Context, slug string) (library.Bookmark, error) {
				return library.Bookmark{}, dbErr
			},
		}
		svc := NewLibraryService(&mockHistoryRepository{}, repo, &mockCommentRepository{})

		if _, err := svc.IsBookmarked(context.Background(), "x"); !errors.Is(err, dbErr) {
			t.Errorf("expected db error, got %v", err)
		}
	})
}

func TestLibraryService_Comments(t *testing.T) {
	t.Run("add comment", func(t *testing.T) {
		var saved library.Comment
		repo := &mockCommentRepository{
			saveFunc: func(ctx context.Context, c library.Comment) error {
				saved = c
				return nil
			},
		}
		svc := NewLibraryService(&mockHistoryRepository{}, &mockBookmarkRepository{}, repo)

		c, err := svc.AddComment(context.Background(), "tay-du-ky", "", " Hay! ")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if saved.ID() != c.ID() || c.Content() != "Hay!" || c.UserName() != library.DefaultUserName {
			t.Errorf("unexpected comment: %+v", c)
		}
	})

	t.Run("empty content is rejected", func(t *testing.T) {
		saveCalled := false
		repo := &mockCommentRepository{
			saveFunc: func(ctx context.Context, c library.Comment) error {
				saveCalled = true
				return nil
			},
		}
		svc := NewLibraryService(&mockHistoryRepository{}, &mockBookmarkRepository{}, repo)

		_, err := svc.AddComment(context.Background(), "tay-du-ky", "", "   ")
		if !errors.Is(err, library.ErrEmptyContent) {
			t.Errorf("expected ErrEmptyContent, got %v", err)
		}
		if saveCalled {
			t.Error("expected Save not to be called")
		}
	})

	t.Run("toggle like persists the toggled comment", func(t *testing.T) {
		stored := library.ReconstructComment("c1", "tay-du-ky", "u", "a", "hi", 2, false, time.Now())
		var saved library.Comment
		repo := &mockCommentRepository{
			findByIDFunc: func(ctx context.Context, movieSlug, id string) (library.Comment, error) {
				return stored, nil
			},
			saveFunc: func(ctx context.Context, c library.Comment) error {
				saved = c
				return nil
			},
		}
		svc := NewLibraryService(&mockHistoryRepository{}, &mockBookmarkRepository{}, repo)

		c, err := svc.ToggleCommentLike(context.Background(), "tay-du-ky", "c1")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if !c.Liked() || c.Likes() != 3 || saved.Likes() != 3 {
			t.Errorf("expected 3 likes, got %d (saved %d)", c.Likes(), saved.Likes())
		}
	})

	t.Run("toggle like of unknown comment", func(t *testing.T) {
		svc := NewLibraryService(&mockHistoryRepository{}, &mockBookmarkRepository{}, &mockCommentRepository{})

		_, err := svc.ToggleCommentLike(context.Background(), "tay-du-ky", "missing")
		if !errors.Is(err, library.ErrCommentNotFound) {
			t.Errorf("expected ErrCommentNotFound, got %v", err)
		}
	})

	t.Run("list requires a slug", func(t *testing.T) {
		svc := NewLibraryService(&mockHistoryRepository{}, &mockBookmarkRepository{}, &mockCommentRepository{})

		if _, err := svc.Comments(context.Background(), " "); !errors.Is(err, library.ErrEmptySlug) {
			t.Errorf("expected ErrEmptySlug, got %v", err)
		}
	})
}
