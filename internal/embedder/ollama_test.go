package embedder

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOllamaEmbedder_Model(t *testing.T) {
	emb := NewOllamaEmbedder("http://localhost:11434", "nomic-embed-text")
	assert.Equal(t, "nomic-embed-text", emb.Model())
}

func TestOllamaEmbedder_Embed(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/embed", r.URL.Path)

		var req embedRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "nomic-embed-text", req.Model)
		require.Len(t, req.Input, 2)

		resp := embedResponse{
			Embeddings: [][]float32{
				{0.1, 0.2, 0.3},
				{0.4, 0.5, 0.6},
			},
		}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	emb := NewOllamaEmbedder(server.URL, "nomic-embed-text")
	got, err := emb.Embed(context.Background(), []string{"first", "second"})
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, []float32{0.1, 0.2, 0.3}, got[0])
	assert.Equal(t, []float32{0.4, 0.5, 0.6}, got[1])
}

func TestOllamaEmbedder_EmbedEmptyInput(t *testing.T) {
	emb := NewOllamaEmbedder("http://localhost:11434", "nomic-embed-text")
	got, err := emb.Embed(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestOllamaEmbedder_EmbedServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer server.Close()

	emb := NewOllamaEmbedder(server.URL, "missing-model")
	_, err := emb.Embed(context.Background(), []string{"text"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "404")
}

func TestOllamaEmbedder_EmbedCountMismatch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		resp := embedResponse{Embeddings: [][]float32{{0.1}}}
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(resp)
	}))
	defer server.Close()

	emb := NewOllamaEmbedder(server.URL, "nomic-embed-text")
	_, err := emb.Embed(context.Background(), []string{"a", "b"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "expected 2 embeddings")
}
