package fetcher

import "context"

// Interface defines the contract for cached upstream reads
type Interface interface {
	// FetchCached returns the payload for url, from cache when fresh or stale on upstream failure
	FetchCached(ctx context.Context, url string) (Result, error)
}
