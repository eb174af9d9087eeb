package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/mmcdole/letterplex/internal/config"
	"github.com/mmcdole/letterplex/internal/console"
	"github.com/mmcdole/letterplex/internal/domain"
	"github.com/mmcdole/letterplex/internal/logging"
	"github.com/mmcdole/letterplex/internal/mediaserver"
	"github.com/mmcdole/letterplex/internal/service"
	"github.com/mmcdole/letterplex/internal/store"
)

// Version is set at build time via -ldflags
var Version = "dev"

func main() {
	// Handle version flag
	var showVersion bool
	flag.BoolVar(&showVersion, "v", false, "print version")
	flag.BoolVar(&showVersion, "version", false, "print version")
	flag.Parse()

	if showVersion {
		fmt.Printf("letterplex %s\n", Version)
		return
	}

	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	// Load configuration
	cfg, err := config.Load(os.Getenv("LETTERPLEX_CONFIG"))
	if err != nil {
		if errors.Is(err, domain.ErrConfigCreated) {
			fmt.Fprintln(os.Stderr, console.AccentStyle.Render("A default config file was created. Edit it with your Plex details and run again."))
		}
		logConfigError(config.Defaults().Logging, err)
		return err
	}

	// Setup logger
	logger, err := logging.Setup(loggingConfig(cfg.Logging), os.Stderr)
	if err != nil {
		return fmt.Errorf("failed to set up logging: %w", err)
	}
	defer logger.Close()
	slog.SetDefault(logger.Logger)

	logger.Info("=== starting plex to letterboxd export ===", "version", Version, "config", cfg.Path())

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	var journal *store.Journal
	if path := cfg.JournalPath(); path != "" {
		journal, err = store.OpenJournal(path, cfg.Export.JournalRetention)
		if err != nil {
			// The journal is bookkeeping only; exports run without it
			logger.Warn("run journal unavailable", "path", path, "error", err)
		} else {
			defer journal.Close()
		}
	}

	var last *domain.RunSummary
	if journal != nil {
		if prev, ok, err := journal.Last(); err != nil {
			logger.Warn("failed to read run journal", "error", err)
		} else if ok {
			last = &prev
		}
	}
	console.Banner(os.Stdout, Version, last)

	summary := domain.RunSummary{StartedAt: time.Now()}
	runErr := export(ctx, cfg, logger.Logger, &summary)
	summary.FinishedAt = time.Now()
	if runErr != nil {
		summary.Error = runErr.Error()
		logger.Error("export failed", "error", runErr)
	}

	if journal != nil {
		if err := journal.Record(summary); err != nil {
			logger.Warn("failed to record run", "error", err)
		}
	}

	console.Summary(os.Stdout, summary)

	if runErr != nil {
		logger.Info("=== export failed ===")
		return runErr
	}

	if cfg.Logging.File != "" && cfg.Logging.ArchiveDir != "" {
		archiveDir := cfg.Logging.ArchiveDir
		if !filepath.IsAbs(archiveDir) {
			archiveDir = filepath.Join(filepath.Dir(cfg.Logging.File), archiveDir)
		}
		if _, err := logging.ArchiveBackups(cfg.Logging.File, archiveDir, time.Now(), logger.Logger); err != nil {
			logger.Error("error archiving logs", "error", err)
		}
	}

	logger.Info("=== export complete ===", "duration", summary.FinishedAt.Sub(summary.StartedAt).Round(time.Millisecond))
	return nil
}

func loggingConfig(lc config.LoggingConfig) logging.Config {
	return logging.Config{
		File:         lc.File,
		Level:        lc.Level,
		ConsoleLevel: lc.ConsoleLevel,
		MaxSizeMB:    lc.MaxSizeMB,
		MaxBackups:   lc.MaxBackups,
	}
}

// logConfigError records a configuration failure in the log file.
// The console already shows the error, so nothing is written there.
func logConfigError(lc config.LoggingConfig, err error) {
	logger, setupErr := logging.Setup(loggingConfig(lc), io.Discard)
	if setupErr != nil {
		return
	}
	defer logger.Close()

	if errors.Is(err, domain.ErrConfigCreated) {
		logger.Warn("created default config file", "error", err)
		return
	}
	logger.Error("failed to load configuration", "error", err)
}

// export connects to Plex, collects watch history and writes the export files
func export(ctx context.Context, cfg *config.Config, logger *slog.Logger, summary *domain.RunSummary) error {
	if err := cfg.EnsurePassword(os.Stdin, os.Stderr); err != nil {
		return err
	}

	client, err := mediaserver.Connect(ctx, cfg, logger)
	if err != nil {
		return err
	}

	library, err := mediaserver.ResolveMovieLibrary(ctx, client, cfg.Plex.Library, logger)
	if err != nil {
		return err
	}

	historySvc := service.NewHistoryService(mediaserver.NewSource(client, library), logger)
	collected, err := historySvc.Collect(ctx, console.NewProgressPrinter(os.Stdout))
	if err != nil {
		return fmt.Errorf("error getting watch history: %w", err)
	}
	summary.Fetched = len(collected.Records)
	summary.Skipped = collected.Skipped
	logger.Info("completed processing movies", "count", len(collected.Records))

	master := store.NewMasterStore(cfg.MasterPath())
	exportSvc := service.NewExportService(master, cfg.Export.Dir, cfg.Export.OutputFile, logger)
	result, err := exportSvc.Export(collected.Records)
	if err != nil {
		return fmt.Errorf("error exporting to csv: %w", err)
	}

	summary.Watched = result.Watched
	summary.Unwatched = result.Unwatched
	summary.Changes = result.Changes
	summary.DeltaFile = result.DeltaFile
	return nil
}
