package llm

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/hackathon-mentor-api/pkg/config"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return NewClient(config.LLMConfig{BaseURL: server.URL, APIKey: "key", Model: "test-model", Timeout: time.Second})
}

func TestCompleteReturnsFirstChoice(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/chat/completions", r.URL.Path)
		assert.Equal(t, "Bearer key", r.Header.Get("Authorization"))
		var req chatRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "test-model", req.Model)
		_, _ = w.Write([]byte(`{"choices":[{"message":{"role":"assistant","content":"AI, Web"}}]}`))
	})

	out, err := client.Complete(context.Background(), "classify")
	require.NoError(t, err)
	assert.Equal(t, "AI, Web", out)
}

func TestCompleteRateLimited(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`slow down`))
	})

	_, err := client.Complete(context.Background(), "classify")
	require.Error(t, err)
	assert.True(t, IsRateLimited(err))
}

func TestCompleteServerError(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})

	_, err := client.Complete(context.Background(), "classify")
	require.Error(t, err)
	assert.False(t, IsRateLimited(err))
}

func TestCompleteNotConfigured(t *testing.T) {
	client := NewClient(config.LLMConfig{})
	_, err := client.Complete(context.Background(), "classify")
	assert.ErrorIs(t, err, ErrNotConfigured)
}

func TestIsRateLimitedByMessage(t *testing.T) {
	assert.True(t, IsRateLimited(errors.New("RESOURCE_EXHAUSTED: quota exceeded")))
	assert.False(t, IsRateLimited(errors.New("connection reset")))
	assert.False(t, IsRateLimited(nil))
}
