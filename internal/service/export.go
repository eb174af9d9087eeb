package service

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"github.com/mmcdole/letterplex/internal/domain"
	"github.com/mmcdole/letterplex/internal/letterboxd"
)

// DefaultOutputFile is the base name the delta and unwatched files derive from
const DefaultOutputFile = "letterboxd_import.csv"

// masterStore abstracts the durable snapshot (consumer-defined interface)
type masterStore interface {
	Load() ([]domain.MovieRecord, error)
	Save(records []domain.MovieRecord) error
}

// ExportResult summarizes what an export wrote
type ExportResult struct {
	Watched       int
	Unwatched     int
	Changes       int
	DeltaFile     string // empty when there were no changes
	UnwatchedFile string // empty when every movie was watched
}

// ExportService partitions fresh records and writes the master, delta and
// unwatched files.
type ExportService struct {
	master     masterStore
	dir        string
	outputFile string
	now        func() time.Time
	logger     *slog.Logger
}

// NewExportService creates a new export service writing next to dir.
// outputFile is the base name for the dated delta and unwatched files.
func NewExportService(master masterStore, dir, outputFile string, logger *slog.Logger) *ExportService {
	if logger == nil {
		logger = slog.Default()
	}
	if outputFile == "" {
		outputFile = DefaultOutputFile
	}
	return &ExportService{
		master:     master,
		dir:        dir,
		outputFile: outputFile,
		now:        time.Now,
		logger:     logger,
	}
}

// SetClock overrides the clock used to date the delta file
func (s *ExportService) SetClock(now func() time.Time) {
	s.now = now
}

// Export runs the steps in order; any failure aborts the remaining steps.
//  1. partition into watched and unwatched
//  2. sort watched by date, newest first (stable)
//  3. load the master
//  4. diff watched against the master
//  5. save watched as the new master, even when nothing changed
//  6. write the dated delta file when there are changes
//  7. write the unwatched file when there are unwatched movies
func (s *ExportService) Export(records []domain.MovieRecord) (*ExportResult, error) {
	watched, unwatched := Partition(records)
	SortByWatchedDateDesc(watched)

	master, err := s.master.Load()
	if err != nil {
		s.logger.Error("failed to load master file", "error", err)
		return nil, fmt.Errorf("load master: %w", err)
	}

	changes := Diff(watched, master)

	result := &ExportResult{
		Watched:   len(watched),
		Unwatched: len(unwatched),
		Changes:   len(changes),
	}

	if err := s.master.Save(watched); err != nil {
		s.logger.Error("failed to save master file", "error", err)
		return nil, fmt.Errorf("save master: %w", err)
	}
	s.logger.Info("updated master file", "movies", len(watched))

	if len(changes) > 0 {
		result.DeltaFile = s.outputPath(fmt.Sprintf("_watched-%s", s.now().Format(domain.DateLayout)))
		if err := letterboxd.WriteFile(result.DeltaFile, changes); err != nil {
			s.logger.Error("failed to write delta file", "error", err, "file", result.DeltaFile)
			return nil, fmt.Errorf("write delta: %w", err)
		}
		s.logger.Info("exported new/updated movies", "count", len(changes), "file", result.DeltaFile)
	} else {
		s.logger.Info("no new changes to export")
	}

	if len(unwatched) > 0 {
		result.UnwatchedFile = s.outputPath("_unwatched")
		if err := letterboxd.WriteFile(result.UnwatchedFile, unwatched); err != nil {
			s.logger.Error("failed to write unwatched file", "error", err, "file", result.UnwatchedFile)
			return nil, fmt.Errorf("write unwatched: %w", err)
		}
		s.logger.Info("exported unwatched movies", "count", len(unwatched), "file", result.UnwatchedFile)
	}

	s.logger.Info("total movies processed", "count", len(records))
	return result, nil
}

// outputPath inserts suffix before the output file's .csv extension
func (s *ExportService) outputPath(suffix string) string {
	base := strings.TrimSuffix(s.outputFile, ".csv")
	return filepath.Join(s.dir, base+suffix+".csv")
}

// Partition splits records into watched and unwatched, preserving order
func Partition(records []domain.MovieRecord) (watched, unwatched []domain.MovieRecord) {
	for _, rec := range records {
		if rec.Watched() {
			watched = append(watched, rec)
		} else {
			unwatched = append(unwatched, rec)
		}
	}
	return watched, unwatched
}

// SortByWatchedDateDesc orders records newest first; equal dates keep their input order.
// YYYY-MM-DD strings sort the same as the dates they encode.
func SortByWatchedDateDesc(records []domain.MovieRecord) {
	sort.SliceStable(records, func(i, j int) bool {
		return records[i].WatchedDate > records[j].WatchedDate
	})
}
