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
	historyBucket = "history"
)

// HistoryBoltDBRepository implements the HistoryRepository port using BoltDB.
// Entries are keyed by movie slug, so saving a movie again replaces its entry.
type HistoryBoltDBRepository struct {
	db *bbolt.DB
}

// NewHistoryBoltDBRepository creates a new BoltDB-backed history repository.
// It initializes the required bucket if it doesn't exist.
func NewHistoryBoltDBRepository(db *bbolt.DB) (*HistoryBoltDBRepository, error) {
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}

	err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(historyBucket))
		return err
	})
	if err != nil {
		return nil, err
	}

	return &HistoryBoltDBRepository{db: db}, nil
}

// historyDTO is used for JSON serialization.
type historyDTO struct {
	Slug        string    `json:"slug"`
	Name        string    `json:"name"`
	Poster      string    `json:"poster"`
	EpisodeName string    `json:"episode_name"`
	EpisodeSlug string    `json:"episode_slug"`
	WatchedAt   time.Time `json:"watched_at"`
}

// Save inserts or replaces the history entry for the item's slug.
func (r *HistoryBoltDBRepository) Save(ctx context.Context, item library.HistoryItem) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(historyBucket))
		if bucket == nil {
			return errors.New("history bucket not found")
		}

		data, err := json.Marshal(historyDTO{
			Slug:        item.Slug(),
			Name:        item.Name(),
			Poster:      item.Poster(),
			EpisodeName: item.EpisodeName(),
			EpisodeSlug: item.EpisodeSlug(),
			WatchedAt:   item.WatchedAt(),
		})
		if err != nil {
			return err
		}

		return bucket.Put([]byte(item.Slug()), data)
	})
}

// FindAll returns every history entry, most recently watched first.
func (r *HistoryBoltDBRepository) FindAll(ctx context.Context) ([]library.HistoryItem, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	items := []library.HistoryItem{}

	err := r.db.View(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(historyBucket))
		if bucket == nil {
			return errors.New("history bucket not found")
		}

		return bucket.ForEach(func(k, v []byte) error {
			var dto historyDTO
			if err := json.Unmarshal(v, &dto); err != nil {
				return err
			}
			items = append(items, library.ReconstructHistoryItem(
				dto.Slug, dto.Name, dto.Poster, dto.EpisodeName, dto.EpisodeSlug, dto.WatchedAt,
			))
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(items, func(i, j int) bool {
		return items[i].WatchedAt().After(items[j].WatchedAt())
	})

	return items, nil
}

// Delete removes the history entry for slug.
func (r *HistoryBoltDBRepository) Delete(ctx context.Context, slug string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.db.Update(func(tx *bbolt.Tx) error {
		bucket := tx.Bucket([]byte(historyBucket))
		if bucket == nil {
			return errors.New("history bucket not found")
		}

		key := []byte(slug)
		if bucket.Get(key) == nil {
			return library.ErrHistoryNotFound
		}

		return bucket.Delete(key)
	})
}

// DeleteAll removes every history entry by recreating the bucket.
func (r *HistoryBoltDBRepository) DeleteAll(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.db.Update(func(tx *bbolt.Tx) error {
		if tx.Bucket([]byte(historyBucket)) != nil {
			if err := tx.DeleteBucket([]byte(historyBucket)); err != nil {
				return err
			}
		}
		_, err := tx.CreateBucket([]byte(historyBucket))
		return err
	})
}

// Ping checks if the database is accessible by opening a read transaction.
func (r *HistoryBoltDBRepository) Ping(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.db.View(func(tx *bbolt.Tx) error {
		if tx.Bucket([]byte(historyBucket)) == nil {
			return errors.New("history bucket not found")
		}
		return nil
	})
}
