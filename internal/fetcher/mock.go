package fetcher

import "context"

// MockFetcher is a mock implementation of Interface for testing
type MockFetcher struct {
	FetchCachedFunc func(ctx context.Context, url string) (Result, error)
}

// FetchCached implements Interface.FetchCached
func (m *MockFetcher) FetchCached(ctx context.Context, url string) (Result, error) {
	if m.FetchCachedFunc != nil {
		return m.FetchCachedFunc(ctx, url)
	}
	return Result{}, nil
}
