package generation

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/go-chi/chi/v5"
	openai "github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/starford/recast/internal/apperr"
)

// fakeAPI serves /v1/chat/completions with handler and counts calls.
func fakeAPI(t *testing.T, handler http.HandlerFunc) (*httptest.Server, *atomic.Int32) {
	t.Helper()
	var calls atomic.Int32
	r := chi.NewRouter()
	r.Post("/v1/chat/completions", func(w http.ResponseWriter, req *http.Request) {
		calls.Add(1)
		handler(w, req)
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	return srv, &calls
}

func writeCompletion(w http.ResponseWriter, contents ...string) {
	resp := openai.ChatCompletionResponse{ID: "chatcmpl-test", Model: DefaultModel}
	for i, c := range contents {
		resp.Choices = append(resp.Choices, openai.ChatCompletionChoice{
			Index:        i,
			Message:      openai.ChatCompletionMessage{Role: openai.ChatMessageRoleAssistant, Content: c},
			FinishReason: openai.FinishReasonStop,
		})
	}
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(resp)
}

func TestGenerate_RequestShape(t *testing.T) {
	var got openai.ChatCompletionRequest
	var auth string
	srv, calls := fakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		auth = r.Header.Get("Authorization")
		_ = json.NewDecoder(r.Body).Decode(&got)
		writeCompletion(w, "  \n# Title\n\nBody text.\n\n", "second choice")
	})

	c := NewOpenAI(Options{
		APIKey:      "sk-test",
		BaseURL:     srv.URL + "/v1",
		Temperature: DefaultTemperature,
	}, nil)

	out, err := c.Generate(context.Background(), "the prompt")
	require.NoError(t, err)

	assert.Equal(t, "# Title\n\nBody text.", out)
	assert.Equal(t, int32(1), calls.Load())
	assert.Equal(t, "Bearer sk-test", auth)
	assert.Equal(t, DefaultModel, got.Model)
	assert.InDelta(t, 0.7, got.Temperature, 1e-6)
	require.Len(t, got.Messages, 2)
	assert.Equal(t, openai.ChatMessageRoleSystem, got.Messages[0].Role)
	assert.Equal(t, DefaultSystemPrompt, got.Messages[0].Content)
	assert.Equal(t, openai.ChatMessageRoleUser, got.Messages[1].Role)
	assert.Equal(t, "the prompt", got.Messages[1].Content)
}

func TestGenerate_ZeroTemperatureIsSent(t *testing.T) {
	var raw map[string]any
	srv, _ := fakeAPI(t, func(w http.ResponseWriter, r *http.Request) {
		_ = json.NewDecoder(r.Body).Decode(&raw)
		writeCompletion(w, "ok")
	})

	c := NewOpenAI(Options{APIKey: "k", BaseURL: srv.URL + "/v1", Temperature: 0}, nil)
	_, err := c.Generate(context.Background(), "p")
	require.NoError(t, err)

	temp, ok := raw["temperature"]
	require.True(t, ok, "temperature must be present in the request")
	assert.InDelta(t, 0, temp, 1e-6)
}

func TestGenerate_MissingCredential(t *testing.T) {
	srv, calls := fakeAPI(t, func(w http.ResponseWriter, _ *http.Request) {
		writeCompletion(w, "unused")
	})

	c := NewOpenAI(Options{BaseURL: srv.URL + "/v1"}, nil)
	_, err := c.Generate(context.Background(), "p")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrMissingCredential)
	assert.Equal(t, int32(0), calls.Load())
}

func TestGenerate_NoChoices(t *testing.T) {
	srv, _ := fakeAPI(t, func(w http.ResponseWriter, _ *http.Request) {
		writeCompletion(w)
	})

	c := NewOpenAI(Options{APIKey: "k", BaseURL: srv.URL + "/v1"}, nil)
	_, err := c.Generate(context.Background(), "p")
	require.Error(t, err)
	assert.ErrorIs(t, err, apperr.ErrEmptyCompletion)
}

func TestGenerate_ServiceErrorNotRetried(t *testing.T) {
	srv, calls := fakeAPI(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"error":{"message":"slow down","type":"rate_limit_error"}}`))
	})

	c := NewOpenAI(Options{APIKey: "k", BaseURL: srv.URL + "/v1"}, nil)
	_, err := c.Generate(context.Background(), "p")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "slow down")
	assert.Equal(t, int32(1), calls.Load())
}

func TestNewOpenAI_Defaults(t *testing.T) {
	c := NewOpenAI(Options{}, nil)
	assert.Equal(t, DefaultModel, c.opts.Model)
	assert.Equal(t, DefaultSystemPrompt, c.opts.SystemPrompt)
}
