package domain

import (
	"context"
)

// LibraryRepository provides access to media libraries and their content
type LibraryRepository interface {
	// GetLibraries returns all available libraries
	GetLibraries(ctx context.Context) ([]Library, error)

	// GetMovies returns paginated movies from a movie library
	// Returns (items, totalSize, error) for pagination support
	GetMovies(ctx context.Context, libID string, offset, limit int) ([]*Movie, int, error)
}

// HistoryRepository lists the movies of the export library and resolves
// their play history. Calls are made sequentially, one history lookup per movie.
type HistoryRepository interface {
	// ListMovies returns a page of the export library
	// Returns (items, totalSize, error) for pagination support
	ListMovies(ctx context.Context, offset, limit int) ([]*Movie, int, error)

	// GetHistory returns the play history of a single movie
	GetHistory(ctx context.Context, movieID string) ([]ViewEvent, error)
}
