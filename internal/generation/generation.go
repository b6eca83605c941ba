// Package generation talks to the chat-completion service that writes the new
// post bodies.
package generation

import (
	"context"
	"fmt"
	"log/slog"
	"math"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	"github.com/starford/recast/internal/apperr"
)

// Defaults used when Options leaves a field empty.
const (
	DefaultModel        = openai.GPT4o
	DefaultTemperature  = 0.7
	DefaultSystemPrompt = "You are a precise and powerful editor."
)

// Generator turns a prompt into generated text.
type Generator interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// Options configures an OpenAI client.
type Options struct {
	APIKey       string
	BaseURL      string
	Model        string
	Temperature  float32
	SystemPrompt string
}

// OpenAI implements Generator with the chat completions API.
type OpenAI struct {
	client *openai.Client
	opts   Options
	logger *slog.Logger
}

// Verify *OpenAI satisfies Generator at compile time.
var _ Generator = (*OpenAI)(nil)

// NewOpenAI creates a client. A missing API key is not reported here but on
// the first Generate call.
func NewOpenAI(opts Options, logger *slog.Logger) *OpenAI {
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.SystemPrompt == "" {
		opts.SystemPrompt = DefaultSystemPrompt
	}
	if logger == nil {
		logger = slog.Default()
	}

	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}

	return &OpenAI{
		client: openai.NewClientWithConfig(cfg),
		opts:   opts,
		logger: logger,
	}
}

// Generate sends prompt as the user message and returns the trimmed text of
// the first choice. Errors are returned as-is from the service; there is no
// retry.
func (c *OpenAI) Generate(ctx context.Context, prompt string) (string, error) {
	if c.opts.APIKey == "" {
		return "", fmt.Errorf("generation: %w", apperr.ErrMissingCredential)
	}

	req := openai.ChatCompletionRequest{
		Model: c.opts.Model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: c.opts.SystemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		Temperature: requestTemperature(c.opts.Temperature),
	}

	c.logger.Debug("generation: request",
		slog.String("model", req.Model),
		slog.Int("prompt_len", len(prompt)))

	resp, err := c.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", fmt.Errorf("generation: chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("generation: %w", apperr.ErrEmptyCompletion)
	}

	c.logger.Debug("generation: response",
		slog.String("id", resp.ID),
		slog.Int("completion_tokens", resp.Usage.CompletionTokens),
		slog.String("finish_reason", string(resp.Choices[0].FinishReason)))

	return strings.TrimSpace(resp.Choices[0].Message.Content), nil
}

// requestTemperature keeps a zero temperature on the wire; the client omits
// the field when it is 0.
func requestTemperature(t float32) float32 {
	if t == 0 {
		return math.SmallestNonzeroFloat32
	}
	return t
}
