package driven

import (
	"context"

	"github.com/chandubinh-create/binhmovie/internal/library"
)

// HistoryRepository defines the interface for watch history persistence.
type HistoryRepository interface {
	// Save inserts or replaces the entry for the item's slug.
	Save(ctx context.Context, item library.HistoryItem) error

	// FindAll returns every entry, most recently watched first.
	FindAll(ctx context.Context) ([]library.HistoryItem, error)

	// Delete removes the entry for slug. Returns library.ErrHistoryNotFound
	// if there is none.
	Delete(ctx context.Context, slug string) error

	// DeleteAll removes every entry.
	DeleteAll(ctx context.Context) error

	// Ping checks if the underlying database is accessible.
	Ping(ctx context.Context) error
}
