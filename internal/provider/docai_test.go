package provider

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/joseph-ayodele/receipt-pipeline/internal/common"
	"github.com/joseph-ayodele/receipt-pipeline/internal/entity"
)

func TestDocAIClient_Acquire(t *testing.T) {
	var gotAuth atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth.Store(r.Header.Get("Authorization"))

		var req docaiRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "image/png", req.RawDocument.MimeType)
		assert.NotEmpty(t, req.RawDocument.Content)

		_ = json.NewEncoder(w).Encode(map[string]any{
			"document": map[string]any{
				"text": "CHIPOTLE\nTOTAL $11.85",
				"entities": []map[string]any{
					{"type": "supplier_name", "mentionText": "Chipotle", "confidence": 0.95},
					{"type": "total_amount", "mentionText": "11.85", "confidence": 0.85},
					{"type": "line_item", "mentionText": "1 burrito 11.85", "confidence": 0.9,
						"properties": []map[string]any{
							{"type": "line_item/description", "mentionText": "burrito"},
							{"type": "line_item/amount", "mentionText": "11.85"},
						}},
				},
			},
		})
	}))
	defer srv.Close()

	c := NewDocAIClient(DocAIConfig{Endpoint: srv.URL, APIKey: "tok"}, fastExecutor(), nil)
	res, err := c.Acquire(context.Background(), Image{Data: []byte("img"), MimeType: "image/png"})
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok", gotAuth.Load())
	assert.True(t, res.Success)
	assert.Equal(t, entity.MethodDocumentAI, res.Method)
	assert.Equal(t, "CHIPOTLE\nTOTAL $11.85", res.FullText())

	require.Len(t, res.Entities, 3)
	assert.Equal(t, "supplier_name", res.Entities[0].Type)
	require.Len(t, res.Entities[2].Properties, 2)
	assert.Equal(t, "line_item/description", res.Entities[2].Properties[0].Type)

	// mean of 0.95, 0.85, 0.9
	assert.InDelta(t, 0.9, res.Confidence, 0.0001)
}

func TestDocAIClient_MissingDocument(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{})
	}))
	defer srv.Close()

	c := NewDocAIClient(DocAIConfig{Endpoint: srv.URL}, fastExecutor(), nil)
	_, err := c.Acquire(context.Background(), Image{Data: []byte("img")})
	require.Error(t, err)
	assert.False(t, common.IsTransient(err))
}

func TestDocAIClient_EmbeddedError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"error": map[string]any{"code": 7, "message": "permission denied"},
		})
	}))
	defer srv.Close()

	c := NewDocAIClient(DocAIConfig{Endpoint: srv.URL}, fastExecutor(), nil)
	res, err := c.Acquire(context.Background(), Image{Data: []byte("img")})
	require.Error(t, err)

	assert.Contains(t, res.ErrorMessage, "permission denied")
	var pe *common.ProviderError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, 7, pe.Status)
}

func TestDocAIClient_NoEntitiesStillSucceeds(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"document": map[string]any{"text": "blurry scan"},
		})
	}))
	defer srv.Close()

	c := NewDocAIClient(DocAIConfig{Endpoint: srv.URL}, fastExecutor(), nil)
	res, err := c.Acquire(context.Background(), Image{Data: []byte("img")})
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Empty(t, res.Entities)
	assert.Zero(t, res.Confidence)
}
