package library

import (
	"net/url"
	"strings"
	"time"

	"github.com/google/uuid"
)

// DefaultUserName is shown for comments posted without a name.
const DefaultUserName = "Khách Xem Phim"

const avatarBaseURL = "https://api.dicebear.com/7.x/avataaars/svg?seed="

// Comment is a user comment on a movie.
type Comment struct {
	id        string
	movieSlug string
	userName  string
	avatar    string
	content   string
	likes     int
	liked     bool
	createdAt time.Time
}

// NewComment creates a comment with a fresh id and a generated avatar.
// Content is trimmed; returns ErrEmptySlug or ErrEmptyContent when blank.
func NewComment(movieSlug, userName, content string, createdAt time.Time) (Comment, error) {
	movieSlug = strings.TrimSpace(movieSlug)
	if movieSlug == "" {
		return Comment{}, ErrEmptySlug
	}
	content = strings.TrimSpace(content)
	if content == "" {
		return Comment{}, ErrEmptyContent
	}
	if createdAt.IsZero() {
		return Comment{}, ErrInvalidTime
	}
	userName = strings.TrimSpace(userName)
	if userName == "" {
		userName = DefaultUserName
	}

	id := uuid.NewString()
	return Comment{
		id:        id,
		movieSlug: movieSlug,
		userName:  userName,
		avatar:    avatarBaseURL + url.QueryEscape(id),
		content:   content,
		createdAt: createdAt,
	}, nil
}

// ReconstructComment rebuilds a Comment from persisted state without validation.
func ReconstructComment(id, movieSlug, userName, avatar, content string, likes int, liked bool, createdAt time.Time) Comment {
	return Comment{
		id:        id,
		movieSlug: movieSlug,
		userName:  userName,
		avatar:    avatar,
		content:   content,
		likes:     likes,
		liked:     liked,
		createdAt: createdAt,
	}
}

// ToggleLike likes the comment, or removes the like if already liked.
func (c Comment) ToggleLike() Comment {
	if c.liked {
		c.liked = false
		if c.likes > 0 {
			c.likes--
		}
		return c
	}
	c.liked = true
	c.likes++
	return c
}

func (c Comment) ID() string           { return c.id }
func (c Comment) MovieSlug() string    { return c.movieSlug }
func (c Comment) UserName() string     { return c.userName }
func (c Comment) Avatar() string       { return c.avatar }
func (c Comment) Content() string      { return c.content }
func (c Comment) Likes() int           { return c.likes }
func (c Comment) Liked() bool          { return c.liked }
func (c Comment) CreatedAt() time.Time { return c.createdAt }
