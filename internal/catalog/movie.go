package catalog

import (
	"strings"
)

// CacheStatus tells whether catalog data came from the network, a fresh cache entry,
// or a stale entry served because the upstream failed.
type CacheStatus string

// Cache status values, mirrored in the X-Cache response header.
const (
	CacheMiss  CacheStatus = "MISS"
	CacheHit   CacheStatus = "HIT"
	CacheStale CacheStatus = "STALE"
)

// Worse returns the less fresh of two statuses. Used when a response is assembled
// from several upstream calls.
func (s CacheStatus) Worse(other CacheStatus) CacheStatus {
	rank := func(c CacheStatus) int {
		switch c {
		case CacheStale:
			return 2
		case CacheMiss:
			return 1
		default:
			return 0
		}
	}
	if rank(other) > rank(s) {
		return other
	}
	return s
}

// Movie is a catalog listing entry.
type Movie struct {
	ID             string
	Name           string
	Slug           string
	OriginName     string
	PosterURL      string
	ThumbURL       string
	Year           int
	Quality        string
	Lang           string
	EpisodeCurrent string
	Time           string
}

// Pagination describes the position of a Page in a paged listing.
type Pagination struct {
	CurrentPage  int
	TotalPages   int
	TotalItems   int
	ItemsPerPage int
}

// Page is one page of a movie listing.
type Page struct {
	Items      []Movie
	Pagination Pagination
	Cache      CacheStatus
}

// HasMore reports whether a following page exists.
func (p Page) HasMore() bool {
	return p.Pagination.CurrentPage < p.Pagination.TotalPages
}

// Taxon is a category or country tag.
type Taxon struct {
	ID   string
	Name string
	Slug string
}

// Episode is a playable item of a movie.
type Episode struct {
	Name      string
	Slug      string
	Filename  string
	LinkEmbed string
	LinkM3U8  string
}

// Server is a named group of episodes hosted by one provider.
type Server struct {
	Name     string
	Episodes []Episode
}

// MovieDetail is the full description of a movie with its episodes.
type MovieDetail struct {
	Movie
	Content      string
	Type         string
	Status       string
	EpisodeTotal string
	Actors       []string
	Directors    []string
	Categories   []Taxon
	Countries    []Taxon
	Servers      []Server
	Cache        CacheStatus
}

// FindEpisode returns the episode with the given slug. When several servers
// carry the same slug the last server wins. An empty slug selects the first
// episode available.
func (d MovieDetail) FindEpisode(slug string) (Episode, error) {
	slug = strings.TrimSpace(slug)

	var (
		found Episode
		ok    bool
	)
	for _, server := range d.Servers {
		for _, ep := range server.Episodes {
			if slug == "" {
				return ep, nil
			}
			if ep.Slug == slug {
				found, ok = ep, true
			}
		}
	}
	if !ok {
		return Episode{}, ErrEpisodeNotFound
	}
	return found, nil
}

// Neighbors returns the episodes before and after slug in the first server's list.
// Missing neighbors are nil.
func (d MovieDetail) Neighbors(slug string) (prev, next *Episode) {
	if len(d.Servers) == 0 {
		return nil, nil
	}

	episodes := d.Servers[0].Episodes
	for i := range episodes {
		if episodes[i].Slug != slug {
			continue
		}
		if i > 0 {
			p := episodes[i-1]
			prev = &p
		}
		if i < len(episodes)-1 {
			n := episodes[i+1]
			next = &n
		}
		return prev, next
	}
	return nil, nil
}
