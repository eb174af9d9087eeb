package mediaserver

import (
	"context"
	"fmt"
	"log/slog"
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"

	"github.com/mmcdole/letterplex/internal/domain"
)

// ResolveMovieLibrary finds the movie section called name. An exact
// case-insensitive match wins; otherwise the closest fuzzy match is used.
func ResolveMovieLibrary(ctx context.Context, repo domain.LibraryRepository, name string, logger *slog.Logger) (domain.Library, error) {
	if logger == nil {
		logger = slog.Default()
	}

	libs, err := repo.GetLibraries(ctx)
	if err != nil {
		return domain.Library{}, fmt.Errorf("list libraries: %w", err)
	}

	var movies []domain.Library
	for _, lib := range libs {
		if lib.Type == "movie" {
			movies = append(movies, lib)
		}
	}

	for _, lib := range movies {
		if strings.EqualFold(lib.Name, name) {
			logger.Info("using library", "name", lib.Name, "id", lib.ID)
			return lib, nil
		}
	}

	titles := make([]string, len(movies))
	for i, lib := range movies {
		titles[i] = lib.Name
	}

	matches := fuzzy.RankFindNormalizedFold(name, titles)
	if len(matches) == 0 {
		return domain.Library{}, fmt.Errorf("%w: %q (movie libraries: %s)",
			domain.ErrLibraryNotFound, name, strings.Join(titles, ", "))
	}

	// Sort by distance (lower is better)
	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Distance < matches[j].Distance
	})

	lib := movies[matches[0].OriginalIndex]
	logger.Warn("library not found, using closest match", "configured", name, "using", lib.Name, "id", lib.ID)
	return lib, nil
}
