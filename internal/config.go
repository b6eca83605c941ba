package internal

import (
	"errors"
	"log/slog"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	validation "github.com/go-ozzo/ozzo-validation/v4"

	"github.com/starford/recast/internal/generation"
	"github.com/starford/recast/internal/report"
	"github.com/starford/recast/internal/storage"
)

// Config represents the application configuration.
type Config struct {
	App        ApplicationConfig `yaml:"app"`
	Source     SourceConfig      `yaml:"source"`
	Generation GenerationConfig  `yaml:"generation"`
	Report     ReportConfig      `yaml:"report"`
	History    HistoryConfig     `yaml:"history"`
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if err := c.Source.Validate(); err != nil {
		return err
	}
	if err := c.Generation.Validate(); err != nil {
		return err
	}
	return c.Report.Validate()
}

// ApplicationConfig holds application-level configuration.
type ApplicationConfig struct {
	LogLevel slog.Level `yaml:"log_level"`
}

// SourceConfig selects the documents to rewrite.
type SourceConfig struct {
	Dir     string `yaml:"dir"`
	Pattern string `yaml:"pattern"`
}

// Validate validates the source configuration.
func (c *SourceConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Dir, validation.Required),
		validation.Field(&c.Pattern, validation.Required, validation.By(validPattern)),
	)
}

func validPattern(value interface{}) error {
	s, _ := value.(string)
	if !doublestar.ValidatePattern(s) {
		return errors.New("must be a valid glob pattern")
	}
	return nil
}

// GenerationConfig holds the chat-completion settings.
//
// The API key itself is never stored in the file; APIKeyEnv names the
// environment variable that carries it.
type GenerationConfig struct {
	Model        string  `yaml:"model"`
	Temperature  float32 `yaml:"temperature"`
	BaseURL      string  `yaml:"base_url"`
	APIKeyEnv    string  `yaml:"api_key_env"`
	SystemPrompt string  `yaml:"system_prompt"`
}

// Validate validates the generation configuration.
func (c *GenerationConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.Model, validation.Required),
		validation.Field(&c.Temperature, validation.Min(float32(0)), validation.Max(float32(2))),
		validation.Field(&c.APIKeyEnv, validation.Required),
		validation.Field(&c.SystemPrompt, validation.Required),
	)
}

// ReportConfig holds the quality log settings.
type ReportConfig struct {
	LogFile  string `yaml:"log_file"`
	MinWords int    `yaml:"min_words"`
}

// Validate validates the report configuration.
func (c *ReportConfig) Validate() error {
	return validation.ValidateStruct(c,
		validation.Field(&c.LogFile, validation.Required, validation.By(plainFileName)),
		validation.Field(&c.MinWords, validation.Min(0)),
	)
}

// plainFileName accepts a bare file name; the log is written inside the
// source directory.
func plainFileName(value interface{}) error {
	s, _ := value.(string)
	if s == "" {
		return nil
	}
	if !filepath.IsLocal(s) || strings.ContainsAny(s, `/\`) {
		return errors.New("must be a file name without directories")
	}
	return nil
}

// HistoryConfig holds the optional run history database.
// An empty Path disables history.
type HistoryConfig struct {
	Path string `yaml:"path"`
}

// Enabled returns true when runs should be recorded.
func (c *HistoryConfig) Enabled() bool {
	return c.Path != ""
}

// NewDefaultConfig returns a new Config with the fixed defaults: the working
// directory, Markdown files, gpt-4o at temperature 0.7 and a 600 word
// threshold.
func NewDefaultConfig() *Config {
	return &Config{
		App: ApplicationConfig{
			LogLevel: slog.LevelInfo,
		},
		Source: SourceConfig{
			Dir:     ".",
			Pattern: storage.DefaultPattern,
		},
		Generation: GenerationConfig{
			Model:        generation.DefaultModel,
			Temperature:  generation.DefaultTemperature,
			APIKeyEnv:    "OPENAI_API_KEY",
			SystemPrompt: generation.DefaultSystemPrompt,
		},
		Report: ReportConfig{
			LogFile:  report.DefaultLogFile,
			MinWords: report.DefaultMinWords,
		},
	}
}
