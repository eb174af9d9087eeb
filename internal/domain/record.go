package domain

import (
	"strconv"
	"strings"
	"time"
)

// Letterboxd import column names
const (
	FieldTitle       = "Title"
	FieldYear        = "Year"
	FieldImdbID      = "imdbID"
	FieldTmdbID      = "tmdbID"
	FieldWatchedDate = "WatchedDate"
	FieldRating      = "Rating"
)

// RecordFields is the fixed column order of every exported file
var RecordFields = []string{FieldTitle, FieldYear, FieldImdbID, FieldTmdbID, FieldWatchedDate, FieldRating}

// DateLayout is the format of WatchedDate and of dated export file names
const DateLayout = "2006-01-02"

// MovieRecord is one observed movie state as exported to Letterboxd.
// An empty WatchedDate means the movie has not been watched.
type MovieRecord struct {
	Title       string
	Year        int // 0 when unknown
	ImdbID      string
	TmdbID      string
	WatchedDate string // YYYY-MM-DD
	Rating      string // 0-5 in half steps, empty when unrated
}

// RecordKey identifies a viewing event across runs
type RecordKey struct {
	Title       string
	Year        string
	WatchedDate string
}

// Key returns the identity key used for diffing.
// Year is keyed on its text form so records read back from a file match fresh ones.
func (r MovieRecord) Key() RecordKey {
	return RecordKey{
		Title:       r.Title,
		Year:        formatYear(r.Year),
		WatchedDate: r.WatchedDate,
	}
}

// Watched reports whether the record carries a watch date
func (r MovieRecord) Watched() bool {
	return r.WatchedDate != ""
}

// Fields returns the record as a column-name keyed mapping.
// Empty values are omitted so they serialize as missing.
func (r MovieRecord) Fields() map[string]string {
	fields := make(map[string]string, len(RecordFields))
	set := func(name, value string) {
		if value != "" {
			fields[name] = value
		}
	}
	set(FieldTitle, r.Title)
	set(FieldYear, formatYear(r.Year))
	set(FieldImdbID, r.ImdbID)
	set(FieldTmdbID, r.TmdbID)
	set(FieldWatchedDate, r.WatchedDate)
	set(FieldRating, r.Rating)
	return fields
}

// RecordFromFields builds a record from a column-name keyed mapping.
// A non-numeric year is treated as unknown.
func RecordFromFields(fields map[string]string) MovieRecord {
	year, _ := strconv.Atoi(strings.TrimSpace(fields[FieldYear]))
	return MovieRecord{
		Title:       fields[FieldTitle],
		Year:        year,
		ImdbID:      fields[FieldImdbID],
		TmdbID:      fields[FieldTmdbID],
		WatchedDate: fields[FieldWatchedDate],
		Rating:      fields[FieldRating],
	}
}

var lineBreaks = strings.NewReplacer("\r\n", " ", "\r", " ", "\n", " ")

// CleanText folds line breaks to spaces and trims surrounding whitespace.
// Exported files store text in this form, so fresh records must match it.
func CleanText(s string) string {
	return strings.TrimSpace(lineBreaks.Replace(s))
}

func formatYear(year int) string {
	if year == 0 {
		return ""
	}
	return strconv.Itoa(year)
}

// BuildRecord converts a server movie and its play history into a record.
// The latest view wins; dates are rendered in loc.
func BuildRecord(m Movie, history []ViewEvent, loc *time.Location) MovieRecord {
	if loc == nil {
		loc = time.Local
	}

	rec := MovieRecord{
		Title:  CleanText(m.Title),
		Year:   m.Year,
		Rating: FormatRating(m.UserRating),
	}
	imdb, tmdb := ExtractIDs(m.GUID, m.Guids)
	rec.ImdbID, rec.TmdbID = CleanText(imdb), CleanText(tmdb)

	var latest time.Time
	for _, ev := range history {
		if ev.ViewedAt.After(latest) {
			latest = ev.ViewedAt
		}
	}
	if !latest.IsZero() {
		rec.WatchedDate = latest.In(loc).Format(DateLayout)
	}

	return rec
}

// FormatRating halves a 0-10 user rating onto Letterboxd's 0-5 scale.
// Whole values keep a trailing ".0" so files written by earlier exports stay diff-stable.
func FormatRating(userRating float64) string {
	if userRating <= 0 {
		return ""
	}
	s := strconv.FormatFloat(userRating/2, 'f', -1, 64)
	if !strings.Contains(s, ".") {
		s += ".0"
	}
	return s
}

// ExtractIDs pulls IMDb and TMDb identifiers out of "<scheme>://<id>[?...]" strings.
// The primary identifier wins; alternates only fill whichever ID is still empty,
// and are only consulted when a primary identifier exists.
func ExtractIDs(primary string, alternates []string) (imdb, tmdb string) {
	if primary == "" {
		return "", ""
	}

	switch scheme, id := splitGUID(primary); {
	case isIMDbScheme(scheme):
		imdb = id
	case isTMDbScheme(scheme):
		tmdb = id
	}

	for _, alt := range alternates {
		scheme, id := splitGUID(alt)
		switch {
		case isIMDbScheme(scheme) && imdb == "":
			imdb = id
		case isTMDbScheme(scheme) && tmdb == "":
			tmdb = id
		}
	}

	return imdb, tmdb
}

// splitGUID splits "scheme://id?query" into its lowercased scheme and bare id
func splitGUID(guid string) (scheme, id string) {
	scheme, rest, ok := strings.Cut(guid, "://")
	if !ok {
		return "", ""
	}
	id, _, _ = strings.Cut(rest, "?")
	return strings.ToLower(scheme), id
}

// isIMDbScheme matches "imdb" and legacy agents such as "com.plexapp.agents.imdb"
func isIMDbScheme(scheme string) bool {
	return scheme == "imdb" || strings.HasSuffix(scheme, ".imdb")
}

// isTMDbScheme matches "tmdb" and legacy agents such as "com.plexapp.agents.themoviedb"
func isTMDbScheme(scheme string) bool {
	return scheme == "tmdb" || scheme == "themoviedb" || strings.HasSuffix(scheme, ".themoviedb")
}
