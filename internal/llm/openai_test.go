package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestClient(t *testing.T, srv *httptest.Server) *OpenAIClient {
	t.Helper()
	client, err := NewOpenAIClient(OpenAIConfig{
		APIKey:  "test-key",
		BaseURL: srv.URL,
		Model:   "gpt-4o-mini",
		Timeout: 5 * time.Second,
	})
	require.NoError(t, err)
	return client
}

func completionResponse(text string) string {
	return `{"choices": [{"message": {"content": "` + text + `"}}]}`
}

func TestCompleteSendsSingleUserTurn(t *testing.T) {
	var got openAIRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(completionResponse("Respuesta.")))
	}))
	defer srv.Close()

	client := newTestClient(t, srv)
	text, err := client.Complete(context.Background(), "pregunta")
	require.NoError(t, err)
	assert.Equal(t, "Respuesta.", text)

	assert.Equal(t, "gpt-4o-mini", got.Model)
	assert.Equal(t, 0.5, got.Temperature)
	require.Len(t, got.Messages, 1)
	assert.Equal(t, "user", got.Messages[0].Role)
	assert.Equal(t, "pregunta", got.Messages[0].Content)
}

func TestCompleteRetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "overloaded", http.StatusServiceUnavailable)
			return
		}
		_, _ = w.Write([]byte(completionResponse("ok")))
	}))
	defer srv.Close()

	client := newTestClient(t, srv)
	client.maxRetries = 3

	text, err := client.Complete(context.Background(), "pregunta")
	require.NoError(t, err)
	assert.Equal(t, "ok", text)
	assert.Equal(t, int32(3), calls.Load())
}

func TestCompleteDoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad request", http.StatusBadRequest)
	}))
	defer srv.Close()

	client := newTestClient(t, srv)
	_, err := client.Complete(context.Background(), "pregunta")
	require.Error(t, err)
	assert.Equal(t, int32(1), calls.Load())
}

func TestCompleteSurfacesAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"error": {"message": "model not found"}}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv)
	_, err := client.Complete(context.Background(), "pregunta")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "model not found")
}

func TestCompleteEmptyChoices(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"choices": []}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv)
	_, err := client.Complete(context.Background(), "pregunta")
	require.Error(t, err)
}

func TestNewOpenAIClientRequiresKey(t *testing.T) {
	_, err := NewOpenAIClient(OpenAIConfig{})
	require.Error(t, err)
}
