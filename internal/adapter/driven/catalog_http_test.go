package driven

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/chandubinh-create/binhmovie/internal/cache"
	"github.com/chandubinh-create/binhmovie/internal/catalog"
	"github.com/chandubinh-create/binhmovie/internal/fetcher"
)

const newUpdatesBody = `{
	"status": true,
	"items": [
		{"_id": "a1", "name": "Tây Du Ký", "slug": "tay-du-ky", "origin_name": "Journey to the West",
		 "poster_url": "https://phimimg.com/upload/vod/tdk-poster.jpg", "thumb_url": "https://phimimg.com/upload/vod/tdk-thumb.jpg", "year": 1986}
	],
	"pagination": {"totalItems": 24000, "totalItemsPerPage": 24, "currentPage": 1, "totalPages": 1000}
}`

const v1ListBody = `{
	"status": "success",
	"msg": "",
	"data": {
		"items": [
			{"_id": "b1", "name": "Phim Bộ", "slug": "phim-bo-1", "poster_url": "upload/vod/b1.jpg", "thumb_url": "upload/vod/b1-thumb.jpg",
			 "year": "2024", "quality": "FHD", "lang": "Vietsub", "episode_current": "Tập 12", "time": "45 phút"}
		],
		"params": {"pagination": {"totalItems": 40, "totalItemsPerPage": 24, "currentPage": 2, "totalPages": 2}}
	}
}`

const detailBody = `{
	"status": true,
	"msg": "",
	"movie": {
		"_id": "a1", "name": "Tây Du Ký", "slug": "tay-du-ky", "origin_name": "Journey to the West",
		"content": "Đường Tăng đi thỉnh kinh.", "type": "series", "status": "completed",
		"poster_url": "p.jpg", "thumb_url": "t.jpg", "time": "45 phút", "episode_current": "Hoàn Tất (25/25)",
		"episode_total": "25", "quality": "HD", "lang": "Thuyết Minh", "year": 1986,
		"actor": ["Lục Tiểu Linh Đồng"], "director": ["Dương Khiết"],
		"category": [{"id": "c1", "name": "Thần Thoại", "slug": "than-thoai"}],
		"country": [{"id": "k1", "name": "Trung Quốc", "slug": "trung-quoc"}]
	},
	"episodes": [
		{"server_name": "#Hà Nội (Vietsub)", "server_data": [
			{"name": "Tập 01", "slug": "tap-01", "filename": "TDK - 01", "link_embed": "https://embed/1", "link_m3u8": "https://m3u8/1"},
			{"name": "Tập 02", "slug": "tap-02", "filename": "TDK - 02", "link_embed": "https://embed/2", "link_m3u8": "https://m3u8/2"}
		]}
	]
}`

// catalogUpstream serves canned bodies per request path and records requested URIs.
type catalogUpstream struct {
	*httptest.Server

	mu       sync.Mutex
	requests []string
	status   int
}

func newCatalogUpstream(t *testing.T, routes map[string]string) *catalogUpstream {
	t.Helper()

	u := &catalogUpstream{status: http.StatusOK}
	u.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		u.mu.Lock()
		u.requests = append(u.requests, r.URL.RequestURI())
		status := u.status
		u.mu.Unlock()

		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}
		body, ok := routes[r.URL.Path]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(u.Close)
	return u
}

func (u *catalogUpstream) fail(status int) {
	u.mu.Lock()
	u.status = status
	u.mu.Unlock()
}

func (u *catalogUpstream) requestCount() int {
	u.mu.Lock()
	defer u.mu.Unlock()
	return len(u.requests)
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 1, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) advance(d time.Duration) {
	c.mu.Lock()
	c.now = c.now.Add(d)
	c.mu.Unlock()
}

func newTestCatalogSource(baseURL string) *CatalogHTTPSource {
	f := fetcher.New(cache.New(0), fetcher.Config{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
	})
	return NewCatalogHTTPSource(baseURL, f)
}

func TestCatalogHTTPSource_URLBuilders(t *testing.T) {
	s := NewCatalogHTTPSource("", &fetcher.MockFetcher{})

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"new updates", s.NewUpdatesURL(1), "https://phimapi.com/danh-sach/phim-moi-cap-nhat?page=1"},
		{"list by type", s.ListURL("phim-bo", 3), "https://phimapi.com/v1/api/danh-sach/phim-bo?page=3"},
		{"detail", s.DetailURL("tay-du-ky"), "https://phimapi.com/phim/tay-du-ky"},
		{"search", s.SearchURL("tây du ký", 2), "https://phimapi.com/v1/api/tim-kiem?keyword=t%C3%A2y%20du%20k%C3%BD&page=2"},
		{"search escapes reserved characters", s.SearchURL("a&b=c", 1), "https://phimapi.com/v1/api/tim-kiem?keyword=a%26b%3Dc&page=1"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %s, want %s", tt.got, tt.want)
			}
		})
	}
}

func TestCatalogHTTPSource_TrimsTrailingSlash(t *testing.T) {
	s := NewCatalogHTTPSource("http://example.com/", &fetcher.MockFetcher{})
	if got := s.DetailURL("x"); got != "http://example.com/phim/x" {
		t.Errorf("unexpected URL %s", got)
	}
}

func TestCatalogHTTPSource_NewUpdates(t *testing.T) {
	upstream := newCatalogUpstream(t, map[string]string{
		"/danh-sach/phim-moi-cap-nhat": newUpdatesBody,
	})
	s := newTestCatalogSource(upstream.URL)

	page, err := s.NewUpdates(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(page.Items))
	}
	m := page.Items[0]
	if m.ID != "a1" || m.Slug != "tay-du-ky" || m.Year != 1986 || m.OriginName != "Journey to the West" {
		t.Errorf("unexpected movie: %+v", m)
	}
	if page.Pagination.TotalPages != 1000 || page.Pagination.CurrentPage != 1 || page.Pagination.ItemsPerPage != 24 {
		t.Errorf("unexpected pagination: %+v", page.Pagination)
	}
	if page.Cache != catalog.CacheMiss {
		t.Errorf("expected MISS, got %s", page.Cache)
	}

	page, err = s.NewUpdates(context.Background(), 1)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if page.Cache != catalog.CacheHit {
		t.Errorf("expected HIT on second call, got %s", page.Cache)
	}
	if upstream.requestCount() != 1 {
		t.Errorf("expected 1 upstream request, got %d", upstream.requestCount())
	}
}

func TestCatalogHTTPSource_ListByTypeDecodesNestedEnvelope(t *testing.T) {
	upstream := newCatalogUpstream(t, map[string]string{
		"/v1/api/danh-sach/phim-bo": v1ListBody,
	})
	s := newTestCatalogSource(upstream.URL)

	page, err := s.ListByType(context.Background(), "phim-bo", 2)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(page.Items) != 1 {
		t.Fatalf("expected 1 item, got %d", len(page.Items))
	}
	m := page.Items[0]
	if m.Year != 2024 {
		t.Errorf("expected string year to decode as 2024, got %d", m.Year)
	}
	if m.EpisodeCurrent != "Tập 12" || m.Quality != "FHD" || m.Lang != "Vietsub" {
		t.Errorf("unexpected movie: %+v", m)
	}
	if page.Pagination.CurrentPage != 2 || page.Pagination.TotalPages != 2 {
		t.Errorf("unexpected pagination: %+v", page.Pagination)
	}
	if page.HasMore() {
		t.Error("expected last page to have no more results")
	}
}

func TestCatalogHTTPSource_SearchRequestsEncodedKeyword(t *testing.T) {
	upstream := newCatalogUpstream(t, map[string]string{
		"/v1/api/tim-kiem": v1ListBody,
	})
	s := newTestCatalogSource(upstream.URL)

	if _, err := s.Search(context.Background(), "one piece", 1); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	upstream.mu.Lock()
	defer upstream.mu.Unlock()
	if len(upstream.requests) != 1 || upstream.requests[0] != "/v1/api/tim-kiem?keyword=one%20piece&page=1" {
		t.Errorf("unexpected requests: %v", upstream.requests)
	}
}

func TestCatalogHTTPSource_MovieDetail(t *testing.T) {
	upstream := newCatalogUpstream(t, map[string]string{
		"/phim/tay-du-ky": detailBody,
		"/phim/unknown":   `{"status": false, "msg": "Movie not found", "movie": null, "episodes": null}`,
	})
	s := newTestCatalogSource(upstream.URL)

	t.Run("decodes movie and episodes", func(t *testing.T) {
		d, err := s.MovieDetail(context.Background(), "tay-du-ky")
		if err != nil {
			t.Fatalf("unexpected error: %v", err)
		}
		if d.Name != "Tây Du Ký" || d.Status != "completed" || d.EpisodeTotal != "25" {
			t.Errorf("unexpected detail: %+v", d)
		}
		if len(d.Actors) != 1 || len(d.Directors) != 1 {
			t.Errorf("expected actors and directors, got %v / %v", d.Actors, d.Directors)
		}
		if len(d.Categories) != 1 || d.Categories[0].Slug != "than-thoai" {
			t.Errorf("unexpected categories: %+v", d.Categories)
		}
		if len(d.Servers) != 1 || len(d.Servers[0].Episodes) != 2 {
			t.Fatalf("unexpected servers: %+v", d.Servers)
		}
		ep := d.Servers[0].Episodes[1]
		if ep.Slug != "tap-02" || ep.LinkM3U8 != "https://m3u8/2" || ep.LinkEmbed != "https://embed/2" {
			t.Errorf("unexpected episode: %+v", ep)
		}
	})

	t.Run("missing movie is not found", func(t *testing.T) {
		_, err := s.MovieDetail(context.Background(), "unknown")
		if !errors.Is(err, catalog.ErrMovieNotFound) {
			t.Errorf("expected ErrMovieNotFound, got %v", err)
		}
	})
}

func TestCatalogHTTPSource_StaleFallback(t *testing.T) {
	upstream := newCatalogUpstream(t, map[string]string{
		"/phim/tay-du-ky": detailBody,
	})
	clock := newTestClock()
	f := fetcher.New(cache.New(0), fetcher.Config{
		Logger: slog.New(slog.NewTextHandler(io.Discard, nil)),
		Now:    clock.Now,
	})
	s := NewCatalogHTTPSource(upstream.URL, f)

	if _, err := s.MovieDetail(context.Background(), "tay-du-ky"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	clock.advance(fetcher.DefaultTTL + 1)
	upstream.fail(http.StatusInternalServerError)

	d, err := s.MovieDetail(context.Background(), "tay-du-ky")
	if err != nil {
		t.Fatalf("expected stale fallback, got %v", err)
	}
	if d.Cache != catalog.CacheStale {
		t.Errorf("expected STALE, got %s", d.Cache)
	}
}

func TestCatalogHTTPSource_FailureWithoutCache(t *testing.T) {
	upstream := newCatalogUpstream(t, nil)
	upstream.fail(http.StatusBadGateway)
	s := newTestCatalogSource(upstream.URL)

	_, err := s.NewUpdates(context.Background(), 1)
	if !errors.Is(err, fetcher.ErrFetchFailed) {
		t.Fatalf("expected ErrFetchFailed, got %v", err)
	}
	var statusErr *fetcher.StatusError
	if !errors.As(err, &statusErr) || statusErr.StatusCode != http.StatusBadGateway {
		t.Errorf("expected StatusError 502, got %v", err)
	}
}

func TestCatalogHTTPSource_UsesInjectedFetcher(t *testing.T) {
	var requested string
	mock := &fetcher.MockFetcher{
		FetchCachedFunc: func(ctx context.Context, url string) (fetcher.Result, error) {
			requested = url
			return fetcher.Result{Payload: json.RawMessage(`{"items": []}`), Source: fetcher.SourceStale}, nil
		},
	}
	s := NewCatalogHTTPSource("http://upstream", mock)

	page, err := s.ListByType(context.Background(), "hoat-hinh", 4)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if requested != "http://upstream/v1/api/danh-sach/hoat-hinh?page=4" {
		t.Errorf("unexpected URL %s", requested)
	}
	if page.Items == nil || len(page.Items) != 0 {
		t.Errorf("expected empty non-nil items, got %v", page.Items)
	}
	if page.Cache != catalog.CacheStale {
		t.Errorf("expected STALE, got %s", page.Cache)
	}
}

func TestCatalogHTTPSource_EscapesPathSegments(t *testing.T) {
	s := NewCatalogHTTPSource("", &fetcher.MockFetcher{})

	tests := []struct {
		name string
		got  string
		want string
	}{
		{"list type with query", s.ListURL("phim-bo?page=99&x=", 1), "https://phimapi.com/v1/api/danh-sach/phim-bo%3Fpage=99&x=?page=1"},
		{"list type with fragment", s.ListURL("phim-le#top", 2), "https://phimapi.com/v1/api/danh-sach/phim-le%23top?page=2"},
		{"slug with traversal", s.DetailURL("a/../../v1/api/danh-sach/phim-le?page=7#"), "https://phimapi.com/phim/a%2F..%2F..%2Fv1%2Fapi%2Fdanh-sach%2Fphim-le%3Fpage=7%23"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.got != tt.want {
				t.Errorf("got %s, want %s", tt.got, tt.want)
			}
		})
	}
}

func TestCatalogHTTPSource_FetchesEscapedURLs(t *testing.T) {
	var requested []string
	mock := &fetcher.MockFetcher{
		FetchCachedFunc: func(ctx context.Context, url string) (fetcher.Result, error) {
			requested = append(requested, url)
			return fetcher.Result{}, errors.New("unavailable")
		},
	}
	s := NewCatalogHTTPSource("http://upstream", mock)

	_, _ = s.ListByType(context.Background(), "phim-bo?page=99&x=", 1)
	_, _ = s.MovieDetail(context.Background(), "a/../../v1/api/danh-sach/phim-le?page=7#")

	want := []string{
		"http://upstream/v1/api/danh-sach/phim-bo%3Fpage=99&x=?page=1",
		"http://upstream/phim/a%2F..%2F..%2Fv1%2Fapi%2Fdanh-sach%2Fphim-le%3Fpage=7%23",
	}
	if len(requested) != len(want) {
		t.Fatalf("expected %d upstream requests, got %v", len(want), requested)
	}
	for i := range want {
		if requested[i] != want[i] {
			t.Errorf("request %d: got %s, want %s", i, requested[i], want[i])
		}
	}
}

func TestFlexInt(t *testing.T) {
	tests := []struct {
		in   string
		want int
	}{
		{`2024`, 2024},
		{`"2023"`, 2023},
		{`""`, 0},
		{`null`, 0},
		{`"n/a"`, 0},
	}

	for _, tt := range tests {
		var n flexInt
		if err := json.Unmarshal([]byte(tt.in), &n); err != nil {
			t.Errorf("unmarshal %s: unexpected error %v", tt.in, err)
			continue
		}
		if int(n) != tt.want {
			t.Errorf("unmarshal %s = %d, want %d", tt.in, n, tt.want)
		}
	}
}
