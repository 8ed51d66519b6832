package driven

import (
	"context"
	"encoding/json"
	"errors"
	"sort"
	"time"

	"go.etcd.io/bbolt"

	"github.com/chandubinh-create/binhmovie/internal/library"
)

const (
	bookmarksBucket = "bookmarks"
)

// BookmarkBoltDBRepository implements the BookmarkRepository port using BoltDB.
type BookmarkBoltDBRepository struct {
	db *bbolt.DB
}

// NewBookmarkBoltDBRepository creates a new BoltDB-backed bookmark repository.
func NewBookmarkBoltDBRepository(db *bbolt.DB) (*BookmarkBoltDBRepository, error) {
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}

	err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(bookmarksBucket))
		return err
	})
	if err != nil {
		return nil, err
	}

	return &BookmarkBoltDBRepository{db: db}, nil
}

type bookmarkDTO struct {
	Slug    string    `json:"slug"`
	Name    string    `json:"name"`
	Poster  string    `json:"poster"`
	SavedAt time.Time `json:"saved_at"`
}

func (d bookmarkDTO) toDomain() library.Bookmark {
	return library.ReconstructBookmark(d.Slug, d.Name, d.Poster, d.SavedAt)
}

// Save persists a bookmark.
func (r *BookmarkBoltDBRepository) Save(ctx context.Context, b library.Bookmark) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bookmarksBucket))
		if bucket == nil {
			return errors.New("bookmarks bucket not found")
		}

		key := []byte(b.Slug())
		if bucket.Get(key) != nil {
			return library.ErrBookmarkAlreadyExists
		}

		data, err := json.Marshal(bookmarkDTO{
			Slug:    b.Slug(),
			Name:    b.Name(),
			Poster:  b.Poster(),
			SavedAt: b.SavedAt(),
		})
		if err != nil {
			return err
		}

		return bucket.Put(key, data)
	})
}

// FindBySlug retrieves a bookmark by movie slug.
func (r *BookmarkBoltDBRepository) FindBySlug(ctx context.Context, slug string) (library.Bookmark, error) {
	if err := ctx.Err(); err != nil {
		return library.Bookmark{}, err
	}

	var b library.Bookmark

	err := r.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bookmarksBucket))
		if bucket == nil {
			return errors.New("bookmarks bucket not found")
		}

		data := bucket.Get([]byte(slug))
		if data == nil {
			return library.ErrBookmarkNotFound
		}

		var dto bookmarkDTO
		if err := json.Unmarshal(data, &dto); err != nil {
			return err
		}
		b = dto.toDomain()
		return nil
	})

	return b, err
}

// FindAll returns every bookmark, newest first.
func (r *BookmarkBoltDBRepository) FindAll(ctx context.Context) ([]library.Bookmark, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	bookmarks := []library.Bookmark{}

	err := r.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bookmarksBucket))
		if bucket == nil {
			return errors.New("bookmarks bucket not found")
		}

		return bucket.ForEach(func(k, v []byte) error {
			var dto bookmarkDTO
			if err := json.Unmarshal(v, &dto); err != nil {
				return err
			}
			bookmarks = append(bookmarks, dto.toDomain())
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(bookmarks, func(i, j int) bool {
		return bookmarks[i].SavedAt().After(bookmarks[j].SavedAt())
	})

	return bookmarks, nil
}

// Delete removes a bookmark by movie slug.
func (r *BookmarkBoltDBRepository) Delete(ctx context.Context, slug string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(bookmarksBucket))
		if bucket == nil {
			return errors.New("bookmarks bucket not found")
		}

		key := []byte(slug)
		if bucket.Get(key) == nil {
			return library.ErrBookmarkNotFound
		}

		return bucket.Delete(key)
	})
}
