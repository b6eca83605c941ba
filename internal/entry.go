// Package internal provides the main application initialization and runtime logic.
package internal

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/starford/recast/internal/generation"
	"github.com/starford/recast/internal/history"
	"github.com/starford/recast/internal/models"
	"github.com/starford/recast/internal/report"
	"github.com/starford/recast/internal/rewrite"
	"github.com/starford/recast/internal/storage"
)

// ErrHistoryDisabled is returned by History when no database is configured.
var ErrHistoryDisabled = errors.New("history is disabled: set history.path")

func newApplication(opts []Option) (*application, error) {
	app := &application{
		stdout: os.Stdout,
		stderr: os.Stderr,
		now:    time.Now,
		getenv: os.Getenv,
	}
	for _, opt := range opts {
		opt(app)
	}
	if app.config == nil {
		return nil, fmt.Errorf("config is required")
	}
	return app, nil
}

func (a *application) logger() *slog.Logger {
	logger := slog.New(slog.NewJSONHandler(a.stderr, &slog.HandlerOptions{
		Level: a.config.App.LogLevel,
	}))
	slog.SetDefault(logger)
	return logger
}

// Run rewrites every source once, then writes the quality log and, when
// enabled, the run history. Any error aborts the run before the log is
// written.
func Run(ctx context.Context, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	logger := app.logger()

	logger.Info("Configuration loaded",
		slog.String("source_dir", cfg.Source.Dir),
		slog.String("pattern", cfg.Source.Pattern),
		slog.String("model", cfg.Generation.Model),
		slog.Float64("temperature", float64(cfg.Generation.Temperature)),
		slog.Int("min_words", cfg.Report.MinWords),
		slog.String("history_path", cfg.History.Path),
		slog.String("log_level", cfg.App.LogLevel.String()))

	store, err := storage.NewFS(cfg.Source.Dir)
	if err != nil {
		return fmt.Errorf("init storage: %w", err)
	}

	sources := app.sources
	if sources == nil {
		sources, err = store.Sources(cfg.Source.Pattern)
		if err != nil {
			return fmt.Errorf("list sources: %w", err)
		}
	}

	var hist history.Store
	if cfg.History.Enabled() {
		db, err := history.Open(cfg.History.Path)
		if err != nil {
			return fmt.Errorf("init history: %w", err)
		}
		defer db.Close()
		hist = db
	}

	gen := app.generator
	if gen == nil {
		gen = generation.NewOpenAI(generation.Options{
			APIKey:       app.getenv(cfg.Generation.APIKeyEnv),
			BaseURL:      cfg.Generation.BaseURL,
			Model:        cfg.Generation.Model,
			Temperature:  cfg.Generation.Temperature,
			SystemPrompt: cfg.Generation.SystemPrompt,
		}, logger)
	}

	run := history.NewRun(app.now())
	logger.Info("Run starting", slog.String("run_id", run.ID), slog.Int("files", len(sources)))

	reporter := report.New(cfg.Report.MinWords)
	svc := rewrite.NewService(gen, reporter, logger,
		rewrite.WithConsole(app.stdout),
		rewrite.WithClock(app.now))

	results, err := svc.RewriteAll(ctx, sources)
	if err != nil {
		logger.Error("Run aborted", slog.String("run_id", run.ID), slog.String("error", err.Error()))
		return err
	}

	if err := store.Write(cfg.Report.LogFile, reporter.Bytes()); err != nil {
		return fmt.Errorf("write log: %w", err)
	}

	if hist != nil {
		run.FinishedAt = app.now()
		for _, r := range results {
			run.Rewrites = append(run.Rewrites, history.Rewrite{
				File:           r.File,
				WordCount:      r.WordCount,
				Flagged:        r.Flagged,
				ChecksumBefore: r.ChecksumBefore,
				ChecksumAfter:  r.ChecksumAfter,
			})
		}
		if err := hist.Record(run); err != nil {
			return fmt.Errorf("record history: %w", err)
		}
	}

	logger.Info("Run finished",
		slog.String("run_id", run.ID),
		slog.Int("files", len(results)),
		slog.Int("thin", reporter.Thin()))

	fmt.Fprintf(app.stdout, "\n✅ All rewrites complete. Check %s for status.\n", cfg.Report.LogFile)
	return nil
}

// History prints up to limit recorded runs, newest first.
func History(_ context.Context, limit int, opts ...Option) error {
	app, err := newApplication(opts)
	if err != nil {
		return err
	}
	cfg := app.config
	app.logger()

	if !cfg.History.Enabled() {
		return ErrHistoryDisabled
	}

	db, err := history.Open(cfg.History.Path)
	if err != nil {
		return fmt.Errorf("init history: %w", err)
	}
	defer db.Close()

	runs, err := db.Recent(limit)
	if err != nil {
		return err
	}
	return printRuns(app.stdout, runs)
}

func printRuns(w io.Writer, runs []history.Run) error {
	if len(runs) == 0 {
		_, err := fmt.Fprintln(w, "No runs recorded.")
		return err
	}
	for _, r := range runs {
		if _, err := fmt.Fprintf(w, "%s  %s  %d files, %d thin\n",
			r.ID, r.StartedAt.Local().Format(time.RFC3339), r.Files, r.Thin); err != nil {
			return err
		}
		for _, rw := range r.Rewrites {
			line := report.Line(models.LogEntry{File: rw.File, WordCount: rw.WordCount, Flagged: rw.Flagged})
			if _, err := fmt.Fprint(w, "  "+line); err != nil {
				return err
			}
		}
	}
	return nil
}
