package store

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmcdole/letterplex/internal/domain"
)

func TestMasterStore_LoadMissingFileIsEmpty(t *testing.T) {
	s := NewMasterStore(filepath.Join(t.TempDir(), "letterboxd_master.csv"))

	records, err := s.Load()

	require.NoError(t, err)
	assert.NotNil(t, records)
	assert.Empty(t, records)
}

func TestMasterStore_SaveLoadRoundTrip(t *testing.T) {
	s := NewMasterStore(filepath.Join(t.TempDir(), "letterboxd_master.csv"))
	records := []domain.MovieRecord{
		{Title: "Kill Bill: Vol. 1", Year: 2003, ImdbID: "tt0266697", TmdbID: "24", WatchedDate: "2024-05-01", Rating: "4.0"},
		{Title: `The "Burbs"`, Year: 1989, WatchedDate: "2024-04-01"},
		{Title: "Me, Myself & Irene", Year: 2000, TmdbID: "2123", WatchedDate: "2024-03-01", Rating: "2.5"},
	}

	require.NoError(t, s.Save(records))
	got, err := s.Load()

	require.NoError(t, err)
	assert.Equal(t, records, got)
}

func TestMasterStore_TrailingBackslashAndLineBreakTitles(t *testing.T) {
	s := NewMasterStore(filepath.Join(t.TempDir(), "letterboxd_master.csv"))

	require.NoError(t, s.Save([]domain.MovieRecord{
		{Title: `Foo, Bar\`, Year: 1999, WatchedDate: "2024-05-01", Rating: "3.0"},
		{Title: "Line\nBreak", Year: 2000, WatchedDate: "2024-04-01"},
		{Title: "After", Year: 2001, WatchedDate: "2024-03-01"},
	}))

	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, []domain.MovieRecord{
		{Title: `Foo, Bar\`, Year: 1999, WatchedDate: "2024-05-01", Rating: "3.0"},
		{Title: "Line Break", Year: 2000, WatchedDate: "2024-04-01"},
		{Title: "After", Year: 2001, WatchedDate: "2024-03-01"},
	}, got)
}

func TestMasterStore_SaveRewritesInFull(t *testing.T) {
	s := NewMasterStore(filepath.Join(t.TempDir(), "letterboxd_master.csv"))

	require.NoError(t, s.Save([]domain.MovieRecord{
		{Title: "Old", Year: 1950, WatchedDate: "2020-01-01"},
		{Title: "Older", Year: 1940, WatchedDate: "2019-01-01"},
	}))
	require.NoError(t, s.Save([]domain.MovieRecord{
		{Title: "New", Year: 2024, WatchedDate: "2024-01-01"},
	}))

	got, err := s.Load()
	require.NoError(t, err)
	assert.Equal(t, []domain.MovieRecord{{Title: "New", Year: 2024, WatchedDate: "2024-01-01"}}, got)
}

func TestMasterStore_HeaderOnlyFileIsEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "letterboxd_master.csv")
	require.NoError(t, os.WriteFile(path, []byte("Title,Year,imdbID,tmdbID,WatchedDate,Rating\n"), 0o644))

	got, err := NewMasterStore(path).Load()

	require.NoError(t, err)
	assert.NotNil(t, got)
	assert.Empty(t, got)
}

func TestMasterStore_LoadCorruptFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "letterboxd_master.csv")
	require.NoError(t, os.WriteFile(path, []byte("Title,Year\n\"never closed,1999\n"), 0o644))

	_, err := NewMasterStore(path).Load()

	assert.Error(t, err)
}

func TestJournal_RecordAndLast(t *testing.T) {
	j, err := OpenJournal(filepath.Join(t.TempDir(), "letterplex.db"), 0)
	require.NoError(t, err)
	defer j.Close()

	_, ok, err := j.Last()
	require.NoError(t, err)
	assert.False(t, ok)

	base := time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC)
	require.NoError(t, j.Record(domain.RunSummary{StartedAt: base, Watched: 10, Changes: 10}))
	require.NoError(t, j.Record(domain.RunSummary{StartedAt: base.Add(500 * time.Millisecond), Watched: 11, Changes: 1}))
	require.NoError(t, j.Record(domain.RunSummary{StartedAt: base.Add(time.Second), Error: "boom"}))

	last, ok, err := j.Last()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "boom", last.Error)
	assert.False(t, last.Succeeded())

	recent, err := j.Recent(10)
	require.NoError(t, err)
	require.Len(t, recent, 3)
	assert.Equal(t, 1, recent[1].Changes)
	assert.Equal(t, 10, recent[2].Changes)
}

func TestJournal_PrunesBeyondRetention(t *testing.T) {
	j, err := OpenJournal(filepath.Join(t.TempDir(), "letterplex.db"), 2)
	require.NoError(t, err)
	defer j.Close()

	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	for i := 0; i < 5; i++ {
		require.NoError(t, j.Record(domain.RunSummary{StartedAt: base.Add(time.Duration(i) * time.Hour), Fetched: i}))
	}

	recent, err := j.Recent(10)
	require.NoError(t, err)
	require.Len(t, recent, 2)
	assert.Equal(t, 4, recent[0].Fetched)
	assert.Equal(t, 3, recent[1].Fetched)
}
