package driver

import (
	"net/http"
	"strings"

	"github.com/chandubinh-create/binhmovie/internal/application"
	"github.com/chandubinh-create/binhmovie/internal/catalog"
)

// Image widths used by the client screens.
const (
	cardImageWidth   = 300
	heroImageWidth   = 1200
	heroImageQuality = 95
)

var sectionTitles = map[string]string{
	application.SectionNewUpdates: "Mới cập nhật",
	application.SectionSeries:     "Phim bộ hot",
	application.SectionSingles:    "Phim lẻ đề cử",
}

// CatalogHTTPHandler handles HTTP requests for browsing the movie catalog.
type CatalogHTTPHandler struct {
	service *application.CatalogService
	images  catalog.ImageRewriter
}

// NewCatalogHTTPHandler creates a new HTTP handler for the catalog.
func NewCatalogHTTPHandler(service *application.CatalogService, images catalog.ImageRewriter) *CatalogHTTPHandler {
	return &CatalogHTTPHandler{service: service, images: images}
}

type movieResponse struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Slug           string `json:"slug"`
	OriginName     string `json:"origin_name"`
	PosterURL      string `json:"poster_url"`
	ThumbURL       string `json:"thumb_url"`
	Image          string `json:"image"`
	Year           int    `json:"year"`
	Quality        string `json:"quality,omitempty"`
	Lang           string `json:"lang,omitempty"`
	EpisodeCurrent string `json:"episode_current,omitempty"`
	Time           string `json:"time,omitempty"`
}

type paginationResponse struct {
	CurrentPage  int `json:"current_page"`
	TotalPages   int `json:"total_pages"`
	TotalItems   int `json:"total_items"`
	ItemsPerPage int `json:"items_per_page"`
}

type pageResponse struct {
	Items      []movieResponse    `json:"items"`
	Pagination paginationResponse `json:"pagination"`
	HasMore    bool               `json:"has_more"`
}

type sectionResponse struct {
	Key    string          `json:"key"`
	Title  string          `json:"title"`
	Movies []movieResponse `json:"movies"`
}

type homeResponse struct {
	Featured  *movieResponse    `json:"featured,omitempty"`
	HeroImage string            `json:"hero_image,omitempty"`
	Sections  []sectionResponse `json:"sections"`
}

type taxonResponse struct {
	Name string `json:"name"`
	Slug string `json:"slug"`
}

type episodeResponse struct {
	Name      string `json:"name"`
	Slug      string `json:"slug"`
	Filename  string `json:"filename"`
	LinkEmbed string `json:"link_embed"`
	LinkM3U8  string `json:"link_m3u8"`
}

type serverResponse struct {
	Name     string            `json:"name"`
	Episodes []episodeResponse `json:"episodes"`
}

type movieDetailResponse struct {
	movieResponse
	Poster       string           `json:"poster"`
	Thumb        string           `json:"thumb"`
	Content      string           `json:"content"`
	Type         string           `json:"type"`
	Status       string           `json:"status"`
	EpisodeTotal string           `json:"episode_total"`
	Actors       []string         `json:"actors"`
	Directors    []string         `json:"directors"`
	Categories   []taxonResponse  `json:"categories"`
	Countries    []taxonResponse  `json:"countries"`
	Servers      []serverResponse `json:"servers"`
}

type watchResponse struct {
	Movie    movieDetailResponse `json:"movie"`
	Episode  episodeResponse     `json:"episode"`
	Previous *episodeResponse    `json:"previous"`
	Next     *episodeResponse    `json:"next"`
}

type imageResponse struct {
	URL string `json:"url"`
}

// ServeHTTP routes the request to the appropriate handler based on method and path.
func (h *CatalogHTTPHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		writeError(w, http.StatusMethodNotAllowed, "method not allowed")
		return
	}

	path := r.URL.Path
	switch {
	// GET /home
	case path == "/home":
		h.handleHome(w, r)
	// GET /lists/{type}
	case strings.HasPrefix(path, "/lists/"):
		h.handleList(w, r, strings.TrimPrefix(path, "/lists/"))
	// GET /search?keyword=
	case path == "/search":
		h.handleSearch(w, r)
	// GET /movies/{slug}
	case strings.HasPrefix(path, "/movies/"):
		h.handleDetail(w, r, strings.TrimPrefix(path, "/movies/"))
	// GET /watch/{slug}[/{episodeSlug}]
	case strings.HasPrefix(path, "/watch/"):
		slug, episodeSlug, _ := strings.Cut(strings.TrimPrefix(path, "/watch/"), "/")
		h.handleWatch(w, r, slug, episodeSlug)
	// GET /image?path=
	case path == "/image":
		h.handleImage(w, r)
	default:
		writeError(w, http.StatusNotFound, "not found")
	}
}

// handleHome handles GET /home
func (h *CatalogHTTPHandler) handleHome(w http.ResponseWriter, r *http.Request) {
	home, err := h.service.Home(r.Context())
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := homeResponse{Sections: make([]sectionResponse, 0, len(home.Sections))}
	for _, s := range home.Sections {
		resp.Sections = append(resp.Sections, sectionResponse{
			Key:    s.Key,
			Title:  sectionTitles[s.Key],
			Movies: h.toMovieResponses(s.Movies),
		})
	}
	if len(home.Sections) > 0 && len(home.Sections[0].Movies) > 0 {
		featured := home.Sections[0].Movies[0]
		m := h.toMovieResponse(featured)
		resp.Featured = &m
		resp.HeroImage = h.images.URL(featured.PosterURL, heroImageWidth, heroImageQuality)
	}

	setCacheHeader(w, home.Cache)
	writeJSON(w, http.StatusOK, resp)
}

// handleList handles GET /lists/{type}
func (h *CatalogHTTPHandler) handleList(w http.ResponseWriter, r *http.Request, listType string) {
	page, ok := queryInt(r, "page", 1)
	if !ok {
		writeError(w, http.StatusBadRequest, catalog.ErrInvalidPage.Error())
		return
	}

	result, err := h.service.List(r.Context(), listType, page)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	setCacheHeader(w, result.Cache)
	writeJSON(w, http.StatusOK, h.toPageResponse(result))
}

// handleSearch handles GET /search
func (h *CatalogHTTPHandler) handleSearch(w http.ResponseWriter, r *http.Request) {
	page, ok := queryInt(r, "page", 1)
	if !ok {
		writeError(w, http.StatusBadRequest, catalog.ErrInvalidPage.Error())
		return
	}

	result, err := h.service.Search(r.Context(), r.URL.Query().Get("keyword"), page)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	setCacheHeader(w, result.Cache)
	writeJSON(w, http.StatusOK, h.toPageResponse(result))
}

// handleDetail handles GET /movies/{slug}
func (h *CatalogHTTPHandler) handleDetail(w http.ResponseWriter, r *http.Request, slug string) {
	detail, err := h.service.Detail(r.Context(), slug)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	setCacheHeader(w, detail.Cache)
	writeJSON(w, http.StatusOK, h.toDetailResponse(detail))
}

// handleWatch handles GET /watch/{slug}/{episodeSlug}
func (h *CatalogHTTPHandler) handleWatch(w http.ResponseWriter, r *http.Request, slug, episodeSlug string) {
	view, err := h.service.Watch(r.Context(), slug, episodeSlug)
	if err != nil {
		writeServiceError(w, err)
		return
	}

	resp := watchResponse{
		Movie:   h.toDetailResponse(view.Detail),
		Episode: toEpisodeResponse(view.Episode),
	}
	if view.Previous != nil {
		prev := toEpisodeResponse(*view.Previous)
		resp.Previous = &prev
	}
	if view.Next != nil {
		next := toEpisodeResponse(*view.Next)
		resp.Next = &next
	}

	setCacheHeader(w, view.Detail.Cache)
	writeJSON(w, http.StatusOK, resp)
}

// handleImage handles GET /image?path=&w=&q=
func (h *CatalogHTTPHandler) handleImage(w http.ResponseWriter, r *http.Request) {
	width, okW := queryInt(r, "w", catalog.DefaultImageWidth)
	quality, okQ := queryInt(r, "q", catalog.DefaultImageQuality)
	if !okW || !okQ {
		writeError(w, http.StatusBadRequest, "w and q must be integers")
		return
	}

	writeJSON(w, http.StatusOK, imageResponse{
		URL: h.images.URL(r.URL.Query().Get("path"), width, quality),
	})
}

func (h *CatalogHTTPHandler) toMovieResponse(m catalog.Movie) movieResponse {
	cover := m.PosterURL
	if cover == "" {
		cover = m.ThumbURL
	}
	return movieResponse{
		ID:             m.ID,
		Name:           m.Name,
		Slug:           m.Slug,
		OriginName:     m.OriginName,
		PosterURL:      m.PosterURL,
		ThumbURL:       m.ThumbURL,
		Image:          h.images.URL(cover, cardImageWidth, catalog.DefaultImageQuality),
		Year:           m.Year,
		Quality:        m.Quality,
		Lang:           m.Lang,
		EpisodeCurrent: m.EpisodeCurrent,
		Time:           m.Time,
	}
}

func (h *CatalogHTTPHandler) toMovieResponses(movies []catalog.Movie) []movieResponse {
	out := make([]movieResponse, len(movies))
	for i, m := range movies {
		out[i] = h.toMovieResponse(m)
	}
	return out
}

func (h *CatalogHTTPHandler) toPageResponse(p catalog.Page) pageResponse {
	return pageResponse{
		Items: h.toMovieResponses(p.Items),
		Pagination: paginationResponse{
			CurrentPage:  p.Pagination.CurrentPage,
			TotalPages:   p.Pagination.TotalPages,
			TotalItems:   p.Pagination.TotalItems,
			ItemsPerPage: p.Pagination.ItemsPerPage,
		},
		HasMore: p.HasMore(),
	}
}

func (h *CatalogHTTPHandler) toDetailResponse(d catalog.MovieDetail) movieDetailResponse {
	resp := movieDetailResponse{
		movieResponse: h.toMovieResponse(d.Movie),
		Poster:        h.images.URL(d.PosterURL, catalog.DefaultImageWidth, catalog.DefaultImageQuality),
		Thumb:         h.images.URL(d.ThumbURL, catalog.DefaultImageWidth, catalog.DefaultImageQuality),
		Content:       d.Content,
		Type:          d.Type,
		Status:        d.Status,
		EpisodeTotal:  d.EpisodeTotal,
		Actors:        nonNil(d.Actors),
		Directors:     nonNil(d.Directors),
		Categories:    toTaxonResponses(d.Categories),
		Countries:     toTaxonResponses(d.Countries),
		Servers:       make([]serverResponse, 0, len(d.Servers)),
	}
	for _, s := range d.Servers {
		server := serverResponse{Name: s.Name, Episodes: make([]episodeResponse, 0, len(s.Episodes))}
		for _, ep := range s.Episodes {
			server.Episodes = append(server.Episodes, toEpisodeResponse(ep))
		}
		resp.Servers = append(resp.Servers, server)
	}
	return resp
}

func toEpisodeResponse(ep catalog.Episode) episodeResponse {
	return episodeResponse{
		Name:      ep.Name,
		Slug:      ep.Slug,
		Filename:  ep.Filename,
		LinkEmbed: ep.LinkEmbed,
		LinkM3U8:  ep.LinkM3U8,
	}
}

func toTaxonResponses(in []catalog.Taxon) []taxonResponse {
	out := make([]taxonResponse, len(in))
	for i, t := range in {
		out[i] = taxonResponse{Name: t.Name, Slug: t.Slug}
	}
	return out
}

func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
