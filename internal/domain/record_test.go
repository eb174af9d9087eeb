package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestExtractIDs(t *testing.T) {
	tests := []struct {
		name       string
		primary    string
		alternates []string
		wantImdb   string
		wantTmdb   string
	}{
		{
			name:     "primary imdb",
			primary:  "imdb://tt0111161",
			wantImdb: "tt0111161",
		},
		{
			name:     "legacy agent strips query",
			primary:  "com.plexapp.agents.imdb://tt0111161?lang=en",
			wantImdb: "tt0111161",
		},
		{
			name:       "primary wins over alternate",
			primary:    "tmdb://278",
			alternates: []string{"tmdb://999", "imdb://tt0111161"},
			wantImdb:   "tt0111161",
			wantTmdb:   "278",
		},
		{
			name:       "plex agent takes both from alternates",
			primary:    "plex://movie/5d7768ba96b655001fdc0408",
			alternates: []string{"imdb://tt0111161", "tmdb://278", "tvdb://1"},
			wantImdb:   "tt0111161",
			wantTmdb:   "278",
		},
		{
			name:       "first alternate fills the gap",
			primary:    "plex://movie/abc",
			alternates: []string{"imdb://tt1", "imdb://tt2"},
			wantImdb:   "tt1",
		},
		{
			name:       "no primary ignores alternates",
			alternates: []string{"imdb://tt0111161"},
		},
		{
			name:     "themoviedb agent",
			primary:  "com.plexapp.agents.themoviedb://278?lang=en",
			wantTmdb: "278",
		},
		{
			name:    "malformed guid",
			primary: "local-12",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			imdb, tmdb := ExtractIDs(tt.primary, tt.alternates)
			assert.Equal(t, tt.wantImdb, imdb)
			assert.Equal(t, tt.wantTmdb, tmdb)
		})
	}
}

func TestFormatRating(t *testing.T) {
	assert.Equal(t, "", FormatRating(0))
	assert.Equal(t, "4.0", FormatRating(8))
	assert.Equal(t, "3.5", FormatRating(7))
	assert.Equal(t, "5.0", FormatRating(10))
	assert.Equal(t, "0.5", FormatRating(1))
}

func TestBuildRecord_LatestViewWins(t *testing.T) {
	loc := time.UTC
	movie := Movie{
		ID:         "42",
		Title:      "The Shawshank Redemption",
		Year:       1994,
		GUID:       "plex://movie/abc",
		Guids:      []string{"imdb://tt0111161", "tmdb://278"},
		UserRating: 9,
	}
	history := []ViewEvent{
		{ViewedAt: time.Date(2023, 5, 1, 20, 0, 0, 0, loc)},
		{ViewedAt: time.Date(2024, 1, 1, 21, 0, 0, 0, loc)},
		{ViewedAt: time.Date(2022, 12, 31, 23, 0, 0, 0, loc)},
	}

	rec := BuildRecord(movie, history, loc)

	assert.Equal(t, MovieRecord{
		Title:       "The Shawshank Redemption",
		Year:        1994,
		ImdbID:      "tt0111161",
		TmdbID:      "278",
		WatchedDate: "2024-01-01",
		Rating:      "4.5",
	}, rec)
	assert.True(t, rec.Watched())
}

func TestBuildRecord_NoHistoryIsUnwatched(t *testing.T) {
	rec := BuildRecord(Movie{Title: "Heat", Year: 1995}, nil, time.UTC)

	assert.False(t, rec.Watched())
	assert.Empty(t, rec.WatchedDate)
	assert.Empty(t, rec.Rating)
}

func TestBuildRecord_DateUsesLocation(t *testing.T) {
	tokyo := time.FixedZone("JST", 9*60*60)

	viewed := time.Date(2024, 3, 9, 20, 0, 0, 0, time.UTC)
	rec := BuildRecord(Movie{Title: "Ran"}, []ViewEvent{{ViewedAt: viewed}}, tokyo)

	assert.Equal(t, "2024-03-10", rec.WatchedDate)
}

func TestBuildRecord_CleansText(t *testing.T) {
	movie := Movie{
		Title: "  Padded\nTitle  ",
		Year:  2001,
		GUID:  "imdb://tt0000001 ",
		Guids: []string{"tmdb:// 77"},
	}
	viewed := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)

	rec := BuildRecord(movie, []ViewEvent{{ViewedAt: viewed}}, time.UTC)

	assert.Equal(t, "Padded Title", rec.Title)
	assert.Equal(t, "tt0000001", rec.ImdbID)
	assert.Equal(t, "77", rec.TmdbID)
}

func TestCleanText(t *testing.T) {
	assert.Equal(t, "", CleanText(" \n "))
	assert.Equal(t, "a b c", CleanText("a\r\nb\rc"))
	assert.Equal(t, "kept  inner", CleanText("\tkept  inner "))
}

func TestMovieRecord_KeyMatchesAcrossFieldRoundTrip(t *testing.T) {
	rec := MovieRecord{Title: "A", Year: 2020, WatchedDate: "2024-01-01", Rating: "4"}

	back := RecordFromFields(rec.Fields())

	assert.Equal(t, rec, back)
	assert.Equal(t, rec.Key(), back.Key())
}

func TestMovieRecord_FieldsOmitEmpty(t *testing.T) {
	fields := MovieRecord{Title: "Untitled"}.Fields()

	assert.Equal(t, map[string]string{FieldTitle: "Untitled"}, fields)
}
