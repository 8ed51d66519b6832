package fetcher

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/chandubinh-create/binhmovie/internal/cache"
	"github.com/chandubinh-create/binhmovie/internal/circuitbreaker"
	"github.com/chandubinh-create/binhmovie/internal/metrics"
)

const (
	// DefaultTTL is how long a stored response is served without contacting the upstream.
	DefaultTTL     = 10 * time.Minute
	defaultTimeout = 30 * time.Second
)

// Source tells where a result came from.
type Source int

const (
	// SourceNetwork means the upstream answered and the cache was updated.
	SourceNetwork Source = iota
	// SourceCache means a fresh entry was served without a network call.
	SourceCache
	// SourceStale means the upstream failed and an expired entry was served instead.
	SourceStale
)

// String returns the value used in the X-Cache response header.
func (s Source) String() string {
	switch s {
	case SourceNetwork:
		return "MISS"
	case SourceCache:
		return "HIT"
	case SourceStale:
		return "STALE"
	default:
		return "UNKNOWN"
	}
}

// Result is a payload returned by FetchCached. Payload is shared with the cache and
// must be treated as read-only.
type Result struct {
	Payload  json.RawMessage
	Source   Source
	StoredAt time.Time
}

// Config configures a Fetcher. Zero values fall back to defaults.
type Config struct {
	TTL     time.Duration
	Timeout time.Duration
	Client  *http.Client
	Breaker circuitbreaker.CircuitBreaker
	Logger  *slog.Logger
	Now     func() time.Time
}

// Fetcher is a read-through cache in front of the upstream catalog API.
type Fetcher struct {
	client  *http.Client
	storage cache.Storage
	ttl     time.Duration
	breaker circuitbreaker.CircuitBreaker
	logger  *slog.Logger
	now     func() time.Time
	group   singleflight.Group
}

// New creates a Fetcher that owns storage for its whole lifetime.
func New(storage cache.Storage, cfg Config) *Fetcher {
	if cfg.TTL <= 0 {
		cfg.TTL = DefaultTTL
	}
	if cfg.Client == nil {
		timeout := cfg.Timeout
		if timeout <= 0 {
			timeout = defaultTimeout
		}
		cfg.Client = &http.Client{Timeout: timeout}
	}
	if cfg.Logger == nil {
		cfg.Logger = slog.Default()
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}

	return &Fetcher{
		client:  cfg.Client,
		storage: storage,
		ttl:     cfg.TTL,
		breaker: cfg.Breaker,
		logger:  cfg.Logger,
		now:     cfg.Now,
	}
}

// FetchCached returns the JSON payload for url.
//
// A fresh entry is returned without a network call. Otherwise the URL is fetched; on
// success the entry is replaced, on failure any stored entry is returned as stale and
// ErrFetchFailed is returned only when nothing was ever stored for url.
//
// Concurrent calls for the same URL share one upstream request. That request is not
// cancelled when ctx is: it completes and updates the cache for later callers.
func (f *Fetcher) FetchCached(ctx context.Context, url string) (Result, error) {
	if res, ok := f.lookup(url); ok {
		metrics.RecordCacheResult(metrics.ResultHit)
		f.logger.Debug("serving fresh cache",
			"url", url,
			"age", f.now().Sub(res.StoredAt).String(),
		)
		return res, nil
	}

	ch := f.group.DoChan(url, func() (interface{}, error) {
		return f.refresh(context.WithoutCancel(ctx), url)
	})

	select {
	case r := <-ch:
		if r.Err != nil {
			return Result{}, r.Err
		}
		return r.Val.(Result), nil
	case <-ctx.Done():
		return Result{}, ctx.Err()
	}
}

// Len returns the number of cached URLs.
func (f *Fetcher) Len() int {
	return f.storage.Len()
}

// lookup returns the stored entry only when it may be served without a refresh.
func (f *Fetcher) lookup(url string) (Result, bool) {
	entry, present := f.storage.Get(url)
	fresh := present && entry.IsFresh(f.now(), f.ttl)
	if decide(present, fresh) != actionServeCached {
		return Result{}, false
	}
	return Result{Payload: entry.Payload, Source: SourceCache, StoredAt: entry.StoredAt}, true
}

// refresh runs once per URL at a time.
func (f *Fetcher) refresh(ctx context.Context, url string) (Result, error) {
	// another caller may have refreshed the entry just before this one got in
	if res, ok := f.lookup(url); ok {
		metrics.RecordCacheResult(metrics.ResultHit)
		return res, nil
	}

	startedAt := f.now()
	f.logger.Debug("fetching from upstream", "url", url)

	payload, err := f.get(ctx, url)
	if err == nil {
		f.storage.Set(url, cache.Entry{Payload: payload, StoredAt: startedAt})
		metrics.SetCacheEntries(f.storage.Len())
		metrics.RecordCacheResult(metrics.ResultMiss)
		f.logger.Debug("cache updated", "url", url)
		return Result{Payload: payload, Source: SourceNetwork, StoredAt: startedAt}, nil
	}

	metrics.RecordUpstreamError(errorType(err))
	f.logger.Warn("upstream fetch failed", "url", url, "error", err)

	entry, present := f.storage.Get(url)
	if resolveFailure(present) == outcomeStale {
		metrics.RecordCacheResult(metrics.ResultStale)
		f.logger.Warn("serving stale cache",
			"url", url,
			"stored_at", entry.StoredAt.Format(time.RFC3339),
			"age", entry.Age(f.now()).String(),
		)
		return Result{Payload: entry.Payload, Source: SourceStale, StoredAt: entry.StoredAt}, nil
	}

	metrics.RecordCacheResult(metrics.ResultError)
	return Result{}, fmt.Errorf("%w: %w", ErrFetchFailed, err)
}

// get performs the upstream request, through the breaker when one is configured.
// Client errors (4xx) do not count against the breaker.
func (f *Fetcher) get(ctx context.Context, url string) (json.RawMessage, error) {
	if f.breaker == nil {
		return f.fetchFromURL(ctx, url)
	}

	var (
		payload   json.RawMessage
		clientErr error
	)
	err := f.breaker.Execute(func() error {
		p, err := f.fetchFromURL(ctx, url)
		if err != nil {
			if !countsAsOutage(err) {
				clientErr = err
				return nil
			}
			return err
		}
		payload = p
		return nil
	})
	if err != nil {
		return nil, err
	}
	if clientErr != nil {
		return nil, clientErr
	}
	return payload, nil
}

// fetchFromURL performs the actual HTTP GET and validates the body as JSON.
func (f *Fetcher) fetchFromURL(ctx context.Context, url string) (json.RawMessage, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating HTTP request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("HTTP request failed: %w", err)
	}
	defer func() {
		if closeErr := resp.Body.Close(); closeErr != nil {
			f.logger.Warn("failed to close response body", "url", url, "error", closeErr)
		}
	}()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return nil, &StatusError{StatusCode: resp.StatusCode, Status: resp.Status}
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("reading response body: %w", err)
	}

	if !json.Valid(body) {
		return nil, errMalformedBody
	}

	return json.RawMessage(body), nil
}

// Fetch calls FetchCached and decodes the payload into T.
// Decoding happens after caching, so a shape mismatch never affects the stored entry.
func Fetch[T any](ctx context.Context, f Interface, url string) (T, Source, error) {
	var out T

	res, err := f.FetchCached(ctx, url)
	if err != nil {
		return out, res.Source, err
	}

	if err := json.Unmarshal(res.Payload, &out); err != nil {
		return out, res.Source, fmt.Errorf("decoding payload from %s: %w", url, err)
	}

	return out, res.Source, nil
}
