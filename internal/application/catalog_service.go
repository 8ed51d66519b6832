package application

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/chandubinh-create/binhmovie/internal/catalog"
	"github.com/chandubinh-create/binhmovie/internal/port/driven"
)

// HomeSectionSize is the number of movies shown per home section.
const HomeSectionSize = 14

// Home section identifiers.
const (
	SectionNewUpdates = "new-updates"
	SectionSeries     = catalog.ListSeries
	SectionSingles    = catalog.ListSingles
)

// HomeSection is one titled row of the home screen.
type HomeSection struct {
	Key    string
	Movies []catalog.Movie
}

// Home is the landing page content.
type Home struct {
	Sections []HomeSection
	Cache    catalog.CacheStatus
}

// WatchView is a movie detail with the selected episode and its neighbors.
type WatchView struct {
	Detail   catalog.MovieDetail
	Episode  catalog.Episode
	Previous *catalog.Episode
	Next     *catalog.Episode
}

// CatalogService provides read use cases over the remote movie catalog.
type CatalogService struct {
	source  driven.CatalogSource
	library *LibraryService
	logger  *slog.Logger
}

// NewCatalogService creates a new CatalogService. library may be nil, in which case
// Watch does not record history.
func NewCatalogService(source driven.CatalogSource, library *LibraryService, logger *slog.Logger) *CatalogService {
	if logger == nil {
		logger = slog.Default()
	}
	return &CatalogService{
		source:  source,
		library: library,
		logger:  logger,
	}
}

// Home loads the first page of new updates, series and single movies concurrently.
// Each section holds up to HomeSectionSize movies, and a movie already shown in an
// earlier section is skipped in later ones. Any failed load fails the whole call.
func (s *CatalogService) Home(ctx context.Context) (Home, error) {
	type load struct {
		page catalog.Page
		err  error
	}

	var (
		wg    sync.WaitGroup
		loads [3]load
	)
	fetchers := [3]func() (catalog.Page, error){
		func() (catalog.Page, error) { return s.source.NewUpdates(ctx, 1) },
		func() (catalog.Page, error) { return s.source.ListByType(ctx, catalog.ListSeries, 1) },
		func() (catalog.Page, error) { return s.source.ListByType(ctx, catalog.ListSingles, 1) },
	}
	for i, fetch := range fetchers {
		wg.Add(1)
		go func(i int, fetch func() (catalog.Page, error)) {
			defer wg.Done()
			page, err := fetch()
			loads[i] = load{page: page, err: err}
		}(i, fetch)
	}
	wg.Wait()

	keys := [3]string{SectionNewUpdates, SectionSeries, SectionSingles}
	for i, l := range loads {
		if l.err != nil {
			return Home{}, fmt.Errorf("loading %s: %w", keys[i], l.err)
		}
	}

	home := Home{Cache: catalog.CacheHit}
	seen := make(map[string]struct{})
	for i, l := range loads {
		movies := make([]catalog.Movie, 0, HomeSectionSize)
		for _, m := range l.page.Items {
			if len(movies) == HomeSectionSize {
				break
			}
			// The first section is taken as-is; later ones skip movies already shown.
			if _, dup := seen[m.ID]; dup && i > 0 {
				continue
			}
			movies = append(movies, m)
		}
		for _, m := range movies {
			seen[m.ID] = struct{}{}
		}
		home.Sections = append(home.Sections, HomeSection{Key: keys[i], Movies: movies})
		home.Cache = home.Cache.Worse(l.page.Cache)
	}

	return home, nil
}

// List returns a page of a typed listing such as "phim-bo" or "hoat-hinh".
func (s *CatalogService) List(ctx context.Context, listType string, page int) (catalog.Page, error) {
	listType, err := catalog.NormalizeListType(listType)
	if err != nil {
		return catalog.Page{}, err
	}
	if err := catalog.ValidatePage(page); err != nil {
		return catalog.Page{}, err
	}
	return s.source.ListByType(ctx, listType, page)
}

// Search returns a page of movies matching keyword.
func (s *CatalogService) Search(ctx context.Context, keyword string, page int) (catalog.Page, error) {
	keyword, err := catalog.NormalizeKeyword(keyword)
	if err != nil {
		return catalog.Page{}, err
	}
	if err := catalog.ValidatePage(page); err != nil {
		return catalog.Page{}, err
	}
	return s.source.Search(ctx, keyword, page)
}

// Detail returns a movie with its episodes.
// Returns catalog.ErrMovieNotFound if the upstream does not know the slug.
func (s *CatalogService) Detail(ctx context.Context, slug string) (catalog.MovieDetail, error) {
	slug, err := catalog.NormalizeSlug(slug)
	if err != nil {
		return catalog.MovieDetail{}, err
	}
	return s.source.MovieDetail(ctx, slug)
}

// Watch resolves an episode of a movie and records it in the watch history.
// An empty episodeSlug selects the first episode. The history entry is written even
// when the episode is missing, and a history failure is logged rather than returned.
// Returns catalog.ErrEpisodeNotFound when the episode does not exist.
func (s *CatalogService) Watch(ctx context.Context, slug, episodeSlug string) (WatchView, error) {
	detail, err := s.Detail(ctx, slug)
	if err != nil {
		return WatchView{}, err
	}

	episode, findErr := detail.FindEpisode(episodeSlug)

	if s.library != nil {
		if _, err := s.library.RecordWatch(ctx, detail.Slug, detail.Name, detail.ThumbURL, episode.Name, episode.Slug); err != nil {
			s.logger.Warn("failed to record watch history",
				"slug", detail.Slug,
				"episode", episode.Slug,
				"error", err,
			)
		}
	}

	if findErr != nil {
		return WatchView{Detail: detail}, fmt.Errorf("%w: %q", findErr, episodeSlug)
	}

	prev, next := detail.Neighbors(episode.Slug)
	return WatchView{
		Detail:   detail,
		Episode:  episode,
		Previous: prev,
		Next:     next,
	}, nil
}
