package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lexcodex/agentloop/framework"
)

func newOllamaStub(t *testing.T, handler http.HandlerFunc) *httptest.Server {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	return server
}

func TestAskHitsGenerate(t *testing.T) {
	var gotModel string
	server := newOllamaStub(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		gotModel = payload["model"].(string)
		assert.Equal(t, false, payload["stream"])
		json.NewEncoder(w).Encode(map[string]string{"response": "generated text"})
	})

	c := NewClient(server.URL, "codellama", "")
	answer, err := c.Ask(context.Background(), "prompt", framework.TierDefault)
	require.NoError(t, err)
	assert.Equal(t, "generated text", answer)
	assert.Equal(t, "codellama", gotModel)
}

func TestAskMessagesHitsChat(t *testing.T) {
	server := newOllamaStub(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/chat", r.URL.Path)
		json.NewEncoder(w).Encode(map[string]interface{}{
			"message": map[string]string{"role": "assistant", "content": "chat reply"},
		})
	})

	c := NewClient(server.URL, "codellama", "")
	answer, err := c.AskMessages(context.Background(), []framework.Message{
		{Role: "system", Content: "sys"},
		{Role: "user", Content: "hi"},
	}, framework.TierDefault)
	require.NoError(t, err)
	assert.Equal(t, "chat reply", answer)
}

func TestFastTierSelectsFastModel(t *testing.T) {
	var gotModel string
	server := newOllamaStub(t, func(w http.ResponseWriter, r *http.Request) {
		var payload map[string]interface{}
		json.NewDecoder(r.Body).Decode(&payload)
		gotModel = payload["model"].(string)
		json.NewEncoder(w).Encode(map[string]string{"response": "ok"})
	})

	c := NewClient(server.URL, "big-model", "small-model")
	_, err := c.Ask(context.Background(), "p", framework.TierFast)
	require.NoError(t, err)
	assert.Equal(t, "small-model", gotModel)

	_, err = c.Ask(context.Background(), "p", framework.TierDefault)
	require.NoError(t, err)
	assert.Equal(t, "big-model", gotModel)
}

func TestAskSurfacesBackendErrors(t *testing.T) {
	server := newOllamaStub(t, func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"error": "model not loaded"})
	})
	c := NewClient(server.URL, "codellama", "")
	_, err := c.Ask(context.Background(), "p", framework.TierDefault)
	assert.ErrorContains(t, err, "model not loaded")
}

func TestAskSurfacesHTTPStatus(t *testing.T) {
	server := newOllamaStub(t, func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "overloaded", http.StatusServiceUnavailable)
	})
	c := NewClient(server.URL, "codellama", "")
	_, err := c.Ask(context.Background(), "p", framework.TierDefault)
	assert.ErrorContains(t, err, "status 503")
}
