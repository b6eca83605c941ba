// Package rewrite runs documents through the split, prompt, generate,
// assemble and report stages.
package rewrite

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/starford/recast/internal/assembler"
	"github.com/starford/recast/internal/checksum"
	"github.com/starford/recast/internal/generation"
	"github.com/starford/recast/internal/models"
	"github.com/starford/recast/internal/parser"
	"github.com/starford/recast/internal/prompt"
	"github.com/starford/recast/internal/report"
	"github.com/starford/recast/internal/storage"
)

// Result is the outcome of rewriting one source.
type Result struct {
	models.LogEntry
	ChecksumBefore string
	ChecksumAfter  string
}

// Option is a functional option for configuring the Service.
type Option func(*Service)

// WithConsole sets where progress lines are printed.
func WithConsole(w io.Writer) Option {
	return func(s *Service) {
		s.console = w
	}
}

// WithClock sets the time source used for date defaults.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		s.now = now
	}
}

// Service rewrites documents one at a time.
type Service struct {
	gen      generation.Generator
	reporter *report.Reporter
	logger   *slog.Logger
	console  io.Writer
	now      func() time.Time
}

// NewService creates a new rewrite service.
func NewService(gen generation.Generator, reporter *report.Reporter, logger *slog.Logger, opts ...Option) *Service {
	s := &Service{
		gen:      gen,
		reporter: reporter,
		logger:   logger,
		console:  io.Discard,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	if s.logger == nil {
		s.logger = slog.New(slog.NewTextHandler(io.Discard, nil))
	}
	return s
}

// RewriteAll processes sources in order. The first error stops the run;
// sources after the failing one are left untouched.
func (s *Service) RewriteAll(ctx context.Context, sources []storage.Source) ([]Result, error) {
	results := make([]Result, 0, len(sources))
	for _, src := range sources {
		res, err := s.Rewrite(ctx, src)
		if err != nil {
			return nil, err
		}
		results = append(results, res)
	}
	return results, nil
}

// Rewrite reads src, generates a new body and overwrites src with the
// assembled document.
func (s *Service) Rewrite(ctx context.Context, src storage.Source) (Result, error) {
	name := src.Name()

	raw, err := src.Read()
	if err != nil {
		return Result{}, fmt.Errorf("rewrite: %s: %w", name, err)
	}

	doc, err := parser.Parse(name, raw)
	if err != nil {
		return Result{}, fmt.Errorf("rewrite: %s: %w", name, err)
	}

	p := prompt.Build(doc.Title(), doc.Body)

	fmt.Fprintf(s.console, "Rewriting: %s\n", name)
	s.logger.Info("rewrite: generating",
		slog.String("file", name),
		slog.String("title", doc.Title()),
		slog.Int("body_len", len(doc.Body)))

	generated, err := s.gen.Generate(ctx, p)
	if err != nil {
		return Result{}, fmt.Errorf("rewrite: %s: %w", name, err)
	}

	out, err := assembler.Assemble(doc, generated, s.now())
	if err != nil {
		return Result{}, fmt.Errorf("rewrite: %s: %w", name, err)
	}

	if err := src.Write(out.Content); err != nil {
		return Result{}, fmt.Errorf("rewrite: %s: %w", name, err)
	}

	entry := s.reporter.Add(name, out.WordCount)
	res := Result{
		LogEntry:       entry,
		ChecksumBefore: checksum.Sum(raw),
		ChecksumAfter:  checksum.Sum(out.Content),
	}

	s.logger.Info("rewrite: done",
		slog.String("file", name),
		slog.Int("word_count", entry.WordCount),
		slog.Bool("flagged", entry.Flagged),
		slog.String("before", checksum.Short(res.ChecksumBefore)),
		slog.String("after", checksum.Short(res.ChecksumAfter)))

	return res, nil
}
