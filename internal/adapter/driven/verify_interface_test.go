package driven

import (
	port "github.com/chandubinh-create/binhmovie/internal/port/driven"
)

// Compile-time check that CatalogHTTPSource implements CatalogSource interface
var _ port.CatalogSource = (*CatalogHTTPSource)(nil)

// Compile-time checks that the BoltDB repositories implement their interfaces
var (
	_ port.HistoryRepository  = (*HistoryBoltDBRepository)(nil)
	_ port.BookmarkRepository = (*BookmarkBoltDBRepository)(nil)
	_ port.CommentRepository  = (*CommentBoltDBRepository)(nil)
)
