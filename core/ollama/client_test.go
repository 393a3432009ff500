package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"partyfm/model"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		w.Write([]byte(`{"models": []}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "llama3.1:8b")
	assert.True(t, c.Ping(context.Background()))

	srv.Close()
	assert.False(t, c.Ping(context.Background()))
}

func TestListModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"models": [
			{"name": "llama3.1:8b", "size": 4661224676},
			{"name": "nomic-embed-text", "size": 274302450}
		]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "llama3.1:8b")
	models, err := c.ListModels(context.Background())

	require.NoError(t, err)
	require.Len(t, models, 2)
	assert.Equal(t, "llama3.1:8b", models[0].Name)
}

func TestEmbeddingSendsSelectedModel(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/embeddings", r.URL.Path)

		var req model.OllamaEmbeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "nomic-embed-text", req.Model)
		assert.Equal(t, "Queen Bohemian Rhapsody", req.Prompt)

		w.Write([]byte(`{"embedding": [0.1, 0.2, 0.3]}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "llama3.1:8b")
	c.SetModel("nomic-embed-text")

	vec, err := c.Embedding(context.Background(), "Queen Bohemian Rhapsody")

	require.NoError(t, err)
	assert.Equal(t, []float64{0.1, 0.2, 0.3}, vec)
}

func TestGenerateNonStreaming(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)

		var req model.OllamaGenerateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.False(t, req.Stream)

		w.Write([]byte(`{"model": "llama3.1:8b", "response": "queen, classic rock", "done": true}`))
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "llama3.1:8b")
	out, err := c.Generate(context.Background(), "suggest search terms")

	require.NoError(t, err)
	assert.Equal(t, "queen, classic rock", out)
}

func TestGenerateErrorStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(srv.URL, "missing-model")
	_, err := c.Generate(context.Background(), "prompt")
	assert.Error(t, err)
}
