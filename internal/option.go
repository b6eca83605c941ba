package internal

import (
	"io"
	"time"

	"github.com/starford/recast/internal/generation"
	"github.com/starford/recast/internal/storage"
)

// Option is a functional option for configuring the application.
type Option func(*application)

type application struct {
	config    *Config
	generator generation.Generator
	sources   []storage.Source
	stdout    io.Writer
	stderr    io.Writer
	now       func() time.Time
	getenv    func(string) string
}

// WithConfig sets the application configuration.
func WithConfig(cfg *Config) Option {
	return func(a *application) {
		a.config = cfg
	}
}

// WithGenerator replaces the OpenAI client built from configuration.
func WithGenerator(g generation.Generator) Option {
	return func(a *application) {
		a.generator = g
	}
}

// WithSources replaces the directory listing with a fixed list of documents.
func WithSources(sources ...storage.Source) Option {
	return func(a *application) {
		a.sources = sources
	}
}

// WithOutput sets the console and log writers.
func WithOutput(stdout, stderr io.Writer) Option {
	return func(a *application) {
		a.stdout = stdout
		a.stderr = stderr
	}
}

// WithClock sets the time source for date defaults and run timestamps.
func WithClock(now func() time.Time) Option {
	return func(a *application) {
		a.now = now
	}
}

// WithGetenv sets the environment lookup used for the API key.
func WithGetenv(getenv func(string) string) Option {
	return func(a *application) {
		a.getenv = getenv
	}
}
