package domain

import "time"

// Library represents a media library section on the server
type Library struct {
	ID        string // Section key
	Name      string // Display name, e.g. "Movies"
	Type      string // "movie", "show", ...
	UpdatedAt int64  // Unix timestamp of last content change
}

// Movie is one movie as reported by the media server, before its
// view history has been resolved.
type Movie struct {
	ID         string   // Server-specific unique identifier (Plex ratingKey)
	Title      string   // Display title
	Year       int      // Release year (0 if unknown)
	GUID       string   // Primary identifier, e.g. "imdb://tt0111161" or "plex://movie/..."
	Guids      []string // Alternate identifiers in the same "<scheme>://<id>" form
	UserRating float64  // User rating on the 0-10 scale (0 if unrated)
	ViewCount  int      // Number of completed plays reported by the server
}

// ViewEvent is a single entry in an item's play history
type ViewEvent struct {
	ViewedAt time.Time
}
