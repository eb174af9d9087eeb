package plex

import (
	"strings"
	"time"

	"github.com/mmcdole/letterplex/internal/domain"
)

// MapLibraries converts Plex directories to domain libraries
func MapLibraries(dirs []Directory) []domain.Library {
	libraries := make([]domain.Library, 0, len(dirs))
	for _, d := range dirs {
		updatedAt := d.ContentChangedAt
		if updatedAt == 0 {
			updatedAt = d.UpdatedAt
		}
		libraries = append(libraries, domain.Library{
			ID:        d.Key,
			Name:      d.Title,
			Type:      d.Type,
			UpdatedAt: updatedAt,
		})
	}
	return libraries
}

// MapMovies converts Plex metadata to domain movies, dropping non-movie entries
func MapMovies(metadata []Metadata) []*domain.Movie {
	movies := make([]*domain.Movie, 0, len(metadata))
	for _, m := range metadata {
		if m.Type != "" && m.Type != "movie" {
			continue
		}
		movie := mapMovie(m)
		movies = append(movies, &movie)
	}
	return movies
}

func mapMovie(m Metadata) domain.Movie {
	movie := domain.Movie{
		ID:         m.RatingKey,
		Title:      m.Title,
		Year:       m.Year,
		GUID:       m.GUID,
		UserRating: m.UserRating,
		ViewCount:  m.ViewCount,
	}
	for _, g := range m.Guids {
		if g.ID != "" {
			movie.Guids = append(movie.Guids, g.ID)
		}
	}
	return movie
}

// MapHistory converts history entries to view events.
// Entries without a timestamp are dropped.
func MapHistory(metadata []Metadata) []domain.ViewEvent {
	events := make([]domain.ViewEvent, 0, len(metadata))
	for _, m := range metadata {
		if m.ViewedAt <= 0 {
			continue
		}
		events = append(events, domain.ViewEvent{ViewedAt: time.Unix(m.ViewedAt, 0)})
	}
	return events
}

// MapServers keeps the resources that provide a media server
func MapServers(resources []Resource) []Resource {
	var servers []Resource
	for _, r := range resources {
		if strings.Contains(r.Provides, "server") {
			servers = append(servers, r)
		}
	}
	return servers
}
