package mediaserver

import (
	"context"

	"github.com/mmcdole/letterplex/internal/domain"
)

// movieClient is the server surface a Source reads from
type movieClient interface {
	GetMovies(ctx context.Context, libID string, offset, limit int) ([]*domain.Movie, int, error)
	GetHistory(ctx context.Context, ratingKey string) ([]domain.ViewEvent, error)
}

// Source binds a server client to one movie library.
// It implements domain.HistoryRepository.
type Source struct {
	client  movieClient
	library domain.Library
}

// NewSource creates a source reading from library
func NewSource(client movieClient, library domain.Library) *Source {
	return &Source{client: client, library: library}
}

// Library returns the library the source reads from
func (s *Source) Library() domain.Library {
	return s.library
}

// ListMovies returns a page of the library's movies
func (s *Source) ListMovies(ctx context.Context, offset, limit int) ([]*domain.Movie, int, error) {
	return s.client.GetMovies(ctx, s.library.ID, offset, limit)
}

// GetHistory returns the play history of one movie
func (s *Source) GetHistory(ctx context.Context, movieID string) ([]domain.ViewEvent, error) {
	return s.client.GetHistory(ctx, movieID)
}

var _ domain.HistoryRepository = (*Source)(nil)
