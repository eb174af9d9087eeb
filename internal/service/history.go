package service

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/mmcdole/letterplex/internal/domain"
)

// CollectResult holds the records built from the server
type CollectResult struct {
	Records []domain.MovieRecord
	Total   int // Movies listed by the server
	Skipped int // Movies dropped because their history lookup failed
}

// HistoryService builds export records from the media server's play history
type HistoryService struct {
	repo      domain.HistoryRepository
	loc       *time.Location
	chunkSize int
	logger    *slog.Logger
}

// NewHistoryService creates a new history service
func NewHistoryService(repo domain.HistoryRepository, logger *slog.Logger) *HistoryService {
	if logger == nil {
		logger = slog.Default()
	}
	return &HistoryService{
		repo:      repo,
		loc:       time.Local,
		chunkSize: defaultChunkSize,
		logger:    logger,
	}
}

// SetLocation sets the time zone watched dates are rendered in
func (s *HistoryService) SetLocation(loc *time.Location) {
	if loc != nil {
		s.loc = loc
	}
}

// Collect lists every movie and resolves its latest view, one title at a time.
// A listing failure aborts; a failed history lookup skips that title only.
func (s *HistoryService) Collect(ctx context.Context, observer domain.ProgressObserver) (*CollectResult, error) {
	if observer == nil {
		observer = domain.NoOpObserver{}
	}

	movies, err := fetchAll(ctx, s.repo.ListMovies, s.chunkSize, func(loaded, total int) {
		s.logger.Debug("listed movies", "loaded", loaded, "total", total)
	})
	if err != nil {
		s.logger.Error("failed to list movies", "error", err)
		return nil, fmt.Errorf("list movies: %w", err)
	}

	total := len(movies)
	s.logger.Info("fetched movies from library", "count", total)

	marks := progressThresholds(total)
	result := &CollectResult{
		Records: make([]domain.MovieRecord, 0, total),
		Total:   total,
	}

	for _, m := range movies {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		history, err := s.repo.GetHistory(ctx, m.ID)
		if err != nil {
			s.logger.Error("error processing movie", "title", m.Title, "year", m.Year, "error", err)
			result.Skipped++
			continue
		}

		rec := domain.BuildRecord(*m, history, s.loc)
		result.Records = append(result.Records, rec)
		s.logger.Debug("processed movie",
			"title", rec.Title,
			"year", rec.Year,
			"imdb", rec.ImdbID,
			"tmdb", rec.TmdbID,
			"watched", rec.WatchedDate,
			"rating", rec.Rating,
		)

		processed := len(result.Records)
		if _, ok := marks[processed]; ok {
			progress := domain.Progress{Processed: processed, Total: total}
			s.logger.Info("progress", "percent", int(progress.Percent()))
			observer.OnProgress(progress)
		}
	}

	if result.Skipped > 0 {
		s.logger.Warn("skipped movies with errors", "count", result.Skipped)
	}
	return result, nil
}
