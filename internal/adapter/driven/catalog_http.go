package driven

import (
	"context"
	"encoding/json"
	"fmt"
	"net/url"
	"strconv"
	"strings"

	"github.com/chandubinh-create/binhmovie/internal/catalog"
	"github.com/chandubinh-create/binhmovie/internal/fetcher"
)

// DefaultCatalogBaseURL is the public catalog API.
const DefaultCatalogBaseURL = "https://phimapi.com"

// CatalogHTTPSource implements the CatalogSource port on top of the cached fetcher.
// Every request goes through FetchCached, so repeated reads within the TTL never
// reach the upstream and failures fall back to the last good response.
type CatalogHTTPSource struct {
	baseURL string
	fetcher fetcher.Interface
}

// NewCatalogHTTPSource creates a catalog source for baseURL. An empty baseURL uses
// DefaultCatalogBaseURL.
func NewCatalogHTTPSource(baseURL string, f fetcher.Interface) *CatalogHTTPSource {
	if baseURL == "" {
		baseURL = DefaultCatalogBaseURL
	}
	return &CatalogHTTPSource{
		baseURL: strings.TrimRight(baseURL, "/"),
		fetcher: f,
	}
}

// NewUpdatesURL builds the URL of the recently updated listing.
func (s *CatalogHTTPSource) NewUpdatesURL(page int) string {
	return fmt.Sprintf("%s/danh-sach/phim-moi-cap-nhat?page=%d", s.baseURL, page)
}

// ListURL builds the URL of a typed listing. listType is escaped as a single path segment.
func (s *CatalogHTTPSource) ListURL(listType string, page int) string {
	return fmt.Sprintf("%s/v1/api/danh-sach/%s?page=%d", s.baseURL, url.PathEscape(listType), page)
}

// DetailURL builds the URL of a movie detail. slug is escaped as a single path segment.
func (s *CatalogHTTPSource) DetailURL(slug string) string {
	return fmt.Sprintf("%s/phim/%s", s.baseURL, url.PathEscape(slug))
}

// SearchURL builds the URL of a keyword search. Spaces are encoded as %20.
func (s *CatalogHTTPSource) SearchURL(keyword string, page int) string {
	escaped := strings.ReplaceAll(url.QueryEscape(keyword), "+", "%20")
	return fmt.Sprintf("%s/v1/api/tim-kiem?keyword=%s&page=%d", s.baseURL, escaped, page)
}

// NewUpdates fetches a page of recently updated movies.
func (s *CatalogHTTPSource) NewUpdates(ctx context.Context, page int) (catalog.Page, error) {
	return s.fetchPage(ctx, s.NewUpdatesURL(page))
}

// ListByType fetches a page of a typed listing.
func (s *CatalogHTTPSource) ListByType(ctx context.Context, listType string, page int) (catalog.Page, error) {
	return s.fetchPage(ctx, s.ListURL(listType, page))
}

// Search fetches a page of search results.
func (s *CatalogHTTPSource) Search(ctx context.Context, keyword string, page int) (catalog.Page, error) {
	return s.fetchPage(ctx, s.SearchURL(keyword, page))
}

// MovieDetail fetches a movie with its episodes.
func (s *CatalogHTTPSource) MovieDetail(ctx context.Context, slug string) (catalog.MovieDetail, error) {
	dto, source, err := fetcher.Fetch[detailDTO](ctx, s.fetcher, s.DetailURL(slug))
	if err != nil {
		return catalog.MovieDetail{}, err
	}
	if dto.Movie == nil || dto.Movie.Slug == "" {
		return catalog.MovieDetail{}, catalog.ErrMovieNotFound
	}

	detail := dto.Movie.toDomainDetail(dto.Episodes)
	detail.Cache = cacheStatus(source)
	return detail, nil
}

func (s *CatalogHTTPSource) fetchPage(ctx context.Context, rawURL string) (catalog.Page, error) {
	dto, source, err := fetcher.Fetch[listDTO](ctx, s.fetcher, rawURL)
	if err != nil {
		return catalog.Page{}, err
	}

	page := dto.toDomain()
	page.Cache = cacheStatus(source)
	return page, nil
}

func cacheStatus(source fetcher.Source) catalog.CacheStatus {
	switch source {
	case fetcher.SourceCache:
		return catalog.CacheHit
	case fetcher.SourceStale:
		return catalog.CacheStale
	default:
		return catalog.CacheMiss
	}
}

// listDTO covers both listing envelopes: the legacy one with top-level items and
// pagination, and the v1 one nesting them under data.
type listDTO struct {
	Items      []movieDTO     `json:"items"`
	Pagination *paginationDTO `json:"pagination"`
	Data       *struct {
		Items  []movieDTO `json:"items"`
		Params struct {
			Pagination *paginationDTO `json:"pagination"`
		} `json:"params"`
	} `json:"data"`
}

type paginationDTO struct {
	TotalItems        flexInt `json:"totalItems"`
	TotalItemsPerPage flexInt `json:"totalItemsPerPage"`
	CurrentPage       flexInt `json:"currentPage"`
	TotalPages        flexInt `json:"totalPages"`
}

func (d listDTO) toDomain() catalog.Page {
	items := d.Items
	pagination := d.Pagination
	if d.Data != nil {
		if len(items) == 0 {
			items = d.Data.Items
		}
		if pagination == nil {
			pagination = d.Data.Params.Pagination
		}
	}

	page := catalog.Page{Items: make([]catalog.Movie, 0, len(items))}
	for _, m := range items {
		page.Items = append(page.Items, m.toDomain())
	}
	if pagination != nil {
		page.Pagination = catalog.Pagination{
			CurrentPage:  int(pagination.CurrentPage),
			TotalPages:   int(pagination.TotalPages),
			TotalItems:   int(pagination.TotalItems),
			ItemsPerPage: int(pagination.TotalItemsPerPage),
		}
	}
	return page
}

type movieDTO struct {
	ID             string     `json:"_id"`
	Name           string     `json:"name"`
	Slug           string     `json:"slug"`
	OriginName     string     `json:"origin_name"`
	PosterURL      string     `json:"poster_url"`
	ThumbURL       string     `json:"thumb_url"`
	Year           flexInt    `json:"year"`
	Quality        string     `json:"quality"`
	Lang           string     `json:"lang"`
	EpisodeCurrent string     `json:"episode_current"`
	Time           string     `json:"time"`
	Content        string     `json:"content"`
	Type           string     `json:"type"`
	Status         string     `json:"status"`
	EpisodeTotal   string     `json:"episode_total"`
	Actor          []string   `json:"actor"`
	Director       []string   `json:"director"`
	Category       []taxonDTO `json:"category"`
	Country        []taxonDTO `json:"country"`
}

type taxonDTO struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type serverDTO struct {
	ServerName string       `json:"server_name"`
	ServerData []episodeDTO `json:"server_data"`
}

type episodeDTO struct {
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	Filename  string `json:"filename"`
	LinkEmbed string `json:"link_embed"`
	LinkM3U8  string `json:"link_m3u8"`
}

type detailDTO struct {
	Movie    *movieDTO   `json:"movie"`
	Episodes []serverDTO `json:"episodes"`
}

func (m movieDTO) toDomain() catalog.Movie {
	return catalog.Movie{
		ID:             m.ID,
		Name:           m.Name,
		Slug:           m.Slug,
		OriginName:     m.OriginName,
		PosterURL:      m.PosterURL,
		ThumbURL:       m.ThumbURL,
		Year:           int(m.Year),
		Quality:        m.Quality,
		Lang:           m.Lang,
		EpisodeCurrent: m.EpisodeCurrent,
		Time:           m.Time,
	}
}

func (m movieDTO) toDomainDetail(servers []serverDTO) catalog.MovieDetail {
	detail := catalog.MovieDetail{
		Movie:        m.toDomain(),
		Content:      m.Content,
		Type:         m.Type,
		Status:       m.Status,
		EpisodeTotal: m.EpisodeTotal,
		Actors:       m.Actor,
		Directors:    m.Director,
		Categories:   toTaxa(m.Category),
		Countries:    toTaxa(m.Country),
		Servers:      make([]catalog.Server, 0, len(servers)),
	}
	for _, srv := range servers {
		server := catalog.Server{
			Name:     srv.ServerName,
			Episodes: make([]catalog.Episode, 0, len(srv.ServerData)),
		}
		for _, ep := range srv.ServerData {
			server.Episodes = append(server.Episodes, catalog.Episode{
				Name:      ep.Name,
				Slug:      ep.Slug,
				Filename:  ep.Filename,
				LinkEmbed: ep.LinkEmbed,
				LinkM3U8:  ep.LinkM3U8,
			})
		}
		detail.Servers = append(detail.Servers, server)
	}
	return detail
}

func toTaxa(in []taxonDTO) []catalog.Taxon {
	out := make([]catalog.Taxon, 0, len(in))
	for _, t := range in {
		out = append(out, catalog.Taxon{ID: t.ID, Name: t.Name, Slug: t.Slug})
	}
	return out
}

// flexInt accepts a JSON number or a numeric string. Anything else decodes as 0.
type flexInt int

func (n *flexInt) UnmarshalJSON(data []byte) error {
	var num json.Number
	if err := json.Unmarshal(data, &num); err != nil {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			*n = 0
			return nil
		}
		num = json.Number(s)
	}
	v, err := strconv.Atoi(strings.TrimSpace(num.String()))
	if err != nil {
		*n = 0
		return nil
	}
	*n = flexInt(v)
	return nil
}
