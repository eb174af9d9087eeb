package logging

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
)

// Per-title messages stay out of the console
const (
	MsgProcessedMovie = "processed movie"
	MsgMovieError     = "error processing movie"
)

// Config holds logger configuration
type Config struct {
	File         string // rotating log file; empty disables it
	Level        string // file level
	ConsoleLevel string
	MaxSizeMB    int // megabytes before rotation
	MaxBackups   int // rotated files kept next to File
}

// Logger owns the handlers built at start and the rotating file behind them
type Logger struct {
	*slog.Logger
	rotator *lumberjack.Logger
}

// Setup builds a logger that writes JSON to a rotating file and text to console.
// The console drops per-title messages.
func Setup(cfg Config, console io.Writer) (*Logger, error) {
	consoleHandler := slog.NewTextHandler(console, &slog.HandlerOptions{
		Level: ParseLevel(cfg.ConsoleLevel),
	})
	handlers := []slog.Handler{
		NewFilterHandler(consoleHandler, MsgProcessedMovie, MsgMovieError),
	}

	var rotator *lumberjack.Logger
	if cfg.File != "" {
		if err := os.MkdirAll(filepath.Dir(cfg.File), 0755); err != nil {
			return nil, fmt.Errorf("failed to create log directory: %w", err)
		}

		maxSize := cfg.MaxSizeMB
		if maxSize <= 0 {
			maxSize = 1
		}
		rotator = &lumberjack.Logger{
			Filename:   cfg.File,
			MaxSize:    maxSize,
			MaxBackups: cfg.MaxBackups,
			LocalTime:  true,
		}
		handlers = append(handlers, slog.NewJSONHandler(rotator, &slog.HandlerOptions{
			Level: ParseLevel(cfg.Level),
		}))
	}

	return &Logger{
		Logger:  slog.New(NewTeeHandler(handlers...)),
		rotator: rotator,
	}, nil
}

// Close flushes and closes the log file
func (l *Logger) Close() error {
	if l.rotator == nil {
		return nil
	}
	return l.rotator.Close()
}

// ParseLevel converts a string log level to slog.Level
func ParseLevel(level string) slog.Level {
	switch strings.ToUpper(level) {
	case "DEBUG":
		return slog.LevelDebug
	case "INFO":
		return slog.LevelInfo
	case "WARN", "WARNING":
		return slog.LevelWarn
	case "ERROR":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// NullLogger returns a logger that discards all output
func NullLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

// TeeHandler fans records out to every handler enabled for their level
type TeeHandler struct {
	handlers []slog.Handler
}

func NewTeeHandler(handlers ...slog.Handler) *TeeHandler {
	return &TeeHandler{handlers: handlers}
}

func (t *TeeHandler) Enabled(ctx context.Context, level slog.Level) bool {
	for _, h := range t.handlers {
		if h.Enabled(ctx, level) {
			return true
		}
	}
	return false
}

func (t *TeeHandler) Handle(ctx context.Context, r slog.Record) error {
	var errs []error
	for _, h := range t.handlers {
		if h.Enabled(ctx, r.Level) {
			errs = append(errs, h.Handle(ctx, r.Clone()))
		}
	}
	return errors.Join(errs...)
}

func (t *TeeHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	next := make([]slog.Handler, len(t.handlers))
	for i, h := range t.handlers {
		next[i] = h.WithAttrs(attrs)
	}
	return &TeeHandler{handlers: next}
}

func (t *TeeHandler) WithGroup(name string) slog.Handler {
	next := make([]slog.Handler, len(t.handlers))
	for i, h := range t.handlers {
		next[i] = h.WithGroup(name)
	}
	return &TeeHandler{handlers: next}
}

// FilterHandler drops records whose message is in the excluded set
type FilterHandler struct {
	next     slog.Handler
	excluded []string
}

func NewFilterHandler(next slog.Handler, excluded ...string) *FilterHandler {
	return &FilterHandler{next: next, excluded: excluded}
}

func (f *FilterHandler) Enabled(ctx context.Context, level slog.Level) bool {
	return f.next.Enabled(ctx, level)
}

func (f *FilterHandler) Handle(ctx context.Context, r slog.Record) error {
	if slices.Contains(f.excluded, r.Message) {
		return nil
	}
	return f.next.Handle(ctx, r)
}

func (f *FilterHandler) WithAttrs(attrs []slog.Attr) slog.Handler {
	return &FilterHandler{next: f.next.WithAttrs(attrs), excluded: f.excluded}
}

func (f *FilterHandler) WithGroup(name string) slog.Handler {
	return &FilterHandler{next: f.next.WithGroup(name), excluded: f.excluded}
}

// ArchiveBackups moves rotated backups of logFile into archiveDir and returns
// the new paths. The active log file is left in place. A backup whose name is
// already taken in archiveDir gets a timestamp suffix.
func ArchiveBackups(logFile, archiveDir string, now time.Time, logger *slog.Logger) ([]string, error) {
	if logger == nil {
		logger = slog.Default()
	}
	if err := os.MkdirAll(archiveDir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create archive directory: %w", err)
	}

	// lumberjack names backups <name>-<timestamp><ext>
	ext := filepath.Ext(logFile)
	prefix := strings.TrimSuffix(filepath.Base(logFile), ext) + "-"
	backups, err := filepath.Glob(filepath.Join(filepath.Dir(logFile), globEscape(prefix)+"*"+globEscape(ext)))
	if err != nil {
		return nil, err
	}

	var moved []string
	var errs []error
	for _, src := range backups {
		dest := filepath.Join(archiveDir, filepath.Base(src))
		if _, err := os.Stat(dest); err == nil {
			base := strings.TrimSuffix(dest, filepath.Ext(dest))
			dest = fmt.Sprintf("%s_%s%s", base, now.Format("20060102_150405"), filepath.Ext(dest))
		}

		if err := os.Rename(src, dest); err != nil {
			logger.Error("failed to move log file", "file", src, "error", err)
			errs = append(errs, err)
			continue
		}
		logger.Debug("moved log file", "from", src, "to", dest)
		moved = append(moved, dest)
	}

	logger.Info("log files archived", "count", len(moved))
	return moved, errors.Join(errs...)
}

// globEscape quotes glob metacharacters in a literal path fragment
func globEscape(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `*`, `\*`, `?`, `\?`, `[`, `\[`)
	return r.Replace(s)
}
