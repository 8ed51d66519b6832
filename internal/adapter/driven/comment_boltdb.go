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
	commentsBucket = "comments"
)

// CommentBoltDBRepository implements the CommentRepository port using BoltDB.
// Each movie gets a nested bucket under "comments", keyed by comment id.
type CommentBoltDBRepository struct {
	db *bbolt.DB
}

// NewCommentBoltDBRepository creates a new BoltDB-backed comment repository.
func NewCommentBoltDBRepository(db *bbolt.DB) (*CommentBoltDBRepository, error) {
	if db == nil {
		return nil, errors.New("db cannot be nil")
	}

	err := db.Update(func(tx *bbolt.Tx) error {
		_, err := tx.CreateBucketIfNotExists([]byte(commentsBucket))
		return err
	})
	if err != nil {
		return nil, err
	}

	return &CommentBoltDBRepository{db: db}, nil
}

type commentDTO struct {
	ID        string    `json:"id"`
	MovieSlug string    `json:"movie_slug"`
	UserName  string    `json:"user_name"`
	Avatar    string    `json:"avatar"`
	Content   string    `json:"content"`
	Likes     int       `json:"likes"`
	Liked     bool      `json:"liked"`
	CreatedAt time.Time `json:"created_at"`
}

func (d commentDTO) toDomain() library.Comment {
	return library.ReconstructComment(d.ID, d.MovieSlug, d.UserName, d.Avatar, d.Content, d.Likes, d.Liked, d.CreatedAt)
}

// Save inserts or replaces a comment in its movie's bucket.
func (r *CommentBoltDBRepository) Save(ctx context.Context, c library.Comment) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.db.Update(func(tx *bbolt.Tx) error {
		root := tx.Bucket([]byte(commentsBucket))
		if root == nil {
			return errors.New("comments bucket not found")
		}

		movie, err := root.CreateBucketIfNotExists([]byte(c.MovieSlug()))
		if err != nil {
			return err
		}

		data, err := json.Marshal(commentDTO{
			ID:        c.ID(),
			MovieSlug: c.MovieSlug(),
			UserName:  c.UserName(),
			Avatar:    c.Avatar(),
			Content:   c.Content(),
			Likes:     c.Likes(),
			Liked:     c.Liked(),
			CreatedAt: c.CreatedAt(),
		})
		if err != nil {
			return err
		}

		return movie.Put([]byte(c.ID()), data)
	})
}

// FindByID retrieves one comment of a movie.
func (r *CommentBoltDBRepository) FindByID(ctx context.Context, movieSlug, id string) (library.Comment, error) {
	if err := ctx.Err(); err != nil {
		return library.Comment{}, err
	}

	var c library.Comment

	err := r.db.View(func(tx *bbolt.Tx) error {
		movie, err := movieCommentsBucket(tx, movieSlug)
		if err != nil {
			return err
		}
		if movie == nil {
			return library.ErrCommentNotFound
		}

		data := movie.Get([]byte(id))
		if data == nil {
			return library.ErrCommentNotFound
		}

		var dto commentDTO
		if err := json.Unmarshal(data, &dto); err != nil {
			return err
		}
		c = dto.toDomain()
		return nil
	})

	return c, err
}

// FindByMovie returns the comments of a movie, newest first.
func (r *CommentBoltDBRepository) FindByMovie(ctx context.Context, movieSlug string) ([]library.Comment, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	comments := []library.Comment{}

	err := r.db.View(func(tx *bbolt.Tx) error {
		movie, err := movieCommentsBucket(tx, movieSlug)
		if err != nil || movie == nil {
			return err
		}

		return movie.ForEach(func(k, v []byte) error {
			var dto commentDTO
			if err := json.Unmarshal(v, &dto); err != nil {
				return err
			}
			comments = append(comments, dto.toDomain())
			return nil
		})
	})
	if err != nil {
		return nil, err
	}

	sort.SliceStable(comments, func(i, j int) bool {
		return comments[i].CreatedAt().After(comments[j].CreatedAt())
	})

	return comments, nil
}

// Delete removes one comment of a movie.
func (r *CommentBoltDBRepository) Delete(ctx context.Context, movieSlug, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	return r.db.Update(func(tx *bbolt.Tx) error {
		movie, err := movieCommentsBucket(tx, movieSlug)
		if err != nil {
			return err
		}
		if movie == nil || movie.Get([]byte(id)) == nil {
			return library.ErrCommentNotFound
		}

		return movie.Delete([]byte(id))
	})
}

// movieCommentsBucket returns the nested bucket of a movie, or nil if the movie
// has no comments yet.
func movieCommentsBucket(tx *bbolt.Tx, movieSlug string) (*bbolt.Bucket, error) {
	root := tx.Bucket([]byte(commentsBucket))
	if root == nil {
		return nil, errors.New("comments bucket not found")
	}
	if movieSlug == "" {
		return nil, nil
	}
	return root.Bucket([]byte(movieSlug)), nil
}
