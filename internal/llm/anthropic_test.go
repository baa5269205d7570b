package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAnthropicGenerate(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "test-key", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicAPIVersion, r.Header.Get("anthropic-version"))

		var req anthropicRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "claude-3-haiku-20240307", req.Model)
		require.Len(t, req.Messages, 1)
		assert.Equal(t, "user", req.Messages[0].Role)

		json.NewEncoder(w).Encode(anthropicResponse{
			Type: "message",
			Role: "assistant",
			Content: []anthropicContent{
				{Type: "text", Text: "hello "},
				{Type: "text", Text: "world"},
			},
			StopReason: "end_turn",
		})
	}))
	defer srv.Close()

	g := NewAnthropicGenerator("claude-3-haiku-20240307", "test-key", srv.URL, nil)
	out, err := g.Generate(context.Background(), "say hello")
	require.NoError(t, err)
	assert.Equal(t, "hello world", out)
}

func TestAnthropicGenerateAPIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
		json.NewEncoder(w).Encode(anthropicResponse{
			Type:  "error",
			Error: &anthropicError{Type: "authentication_error", Message: "invalid x-api-key"},
		})
	}))
	defer srv.Close()

	g := NewAnthropicGenerator("claude-3-haiku-20240307", "bad-key", srv.URL, nil)
	_, err := g.Generate(context.Background(), "say hello")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "authentication_error")
}
