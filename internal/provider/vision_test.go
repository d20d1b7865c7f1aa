package provider

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

	"github.com/joseph-ayodele/receipt-pipeline/internal/common"
	"github.com/joseph-ayodele/receipt-pipeline/internal/entity"
	"github.com/joseph-ayodele/receipt-pipeline/internal/retry"
)

func fastExecutor() *retry.Executor {
	return retry.NewExecutor(3, time.Millisecond, nil)
}

func visionFullTextBody() map[string]any {
	return map[string]any{
		"responses": []map[string]any{{
			"fullTextAnnotation": map[string]any{
				"text": "STARBUCKS\nTOTAL $6.40",
				"pages": []map[string]any{{
					"blocks": []map[string]any{{
						"confidence": 0.9,
						"paragraphs": []map[string]any{{
							"confidence": 0.9,
							"words": []map[string]any{
								{"confidence": 0.92, "symbols": []map[string]any{
									{"text": "S"}, {"text": "T"}, {"text": "A"}, {"text": "R"},
								}},
							},
						}},
					}},
				}},
			},
		}},
	}
}

func TestVisionClient_Acquire(t *testing.T) {
	var gotKey atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotKey.Store(r.Header.Get("X-Goog-Api-Key"))

		var req visionRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Requests, 1)
		assert.Equal(t, "TEXT_DETECTION", req.Requests[0].Features[0].Type)
		assert.NotEmpty(t, req.Requests[0].Image.Content)

		_ = json.NewEncoder(w).Encode(visionFullTextBody())
	}))
	defer srv.Close()

	c := NewVisionClient(VisionConfig{Endpoint: srv.URL, APIKey: "test-key"}, fastExecutor(), nil)
	res, err := c.Acquire(context.Background(), Image{Data: []byte("img"), MimeType: "image/jpeg"})
	require.NoError(t, err)

	assert.Equal(t, "test-key", gotKey.Load())
	assert.True(t, res.Success)
	assert.Equal(t, entity.MethodVisionOCR, res.Method)
	assert.Equal(t, "STARBUCKS\nTOTAL $6.40", res.FullText())
	require.Len(t, res.Text.Blocks, 1)
	assert.InDelta(t, 0.9, res.Confidence, 0.0001)
	assert.Empty(t, res.Entities)
}

func TestVisionClient_LegacyTextAnnotations(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"responses": []map[string]any{{
				"textAnnotations": []map[string]any{
					{"description": "total $12.00 on 01/02/2026"},
					{"description": "total"},
					{"description": "$12.00"},
				},
			}},
		})
	}))
	defer srv.Close()

	c := NewVisionClient(VisionConfig{Endpoint: srv.URL}, fastExecutor(), nil)
	res, err := c.Acquire(context.Background(), Image{Data: []byte("img")})
	require.NoError(t, err)

	assert.Equal(t, "total $12.00 on 01/02/2026", res.FullText())
	require.Len(t, res.Text.Blocks, 1)
	assert.Len(t, res.Text.Blocks[0].Lines[0].Elements, 2)
	assert.Greater(t, res.Confidence, float32(0))
}

func TestVisionClient_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		if calls.Add(1) <= 2 {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		_ = json.NewEncoder(w).Encode(visionFullTextBody())
	}))
	defer srv.Close()

	c := NewVisionClient(VisionConfig{Endpoint: srv.URL}, fastExecutor(), nil)
	res, err := c.Acquire(context.Background(), Image{Data: []byte("img")})
	require.NoError(t, err)

	assert.True(t, res.Success)
	assert.Equal(t, int32(3), calls.Load())
}

func TestVisionClient_ClientErrorIsTerminal(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		calls.Add(1)
		http.Error(w, "bad image", http.StatusBadRequest)
	}))
	defer srv.Close()

	c := NewVisionClient(VisionConfig{Endpoint: srv.URL}, fastExecutor(), nil)
	_, err := c.Acquire(context.Background(), Image{Data: []byte("img")})
	require.Error(t, err)

	assert.False(t, common.IsTransient(err))
	assert.Equal(t, int32(1), calls.Load(), "terminal errors must not be retried")
}

func TestVisionClient_EmbeddedErrorObject(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		_ = json.NewEncoder(w).Encode(map[string]any{
			"responses": []map[string]any{{
				"error": map[string]any{"code": 3, "message": "invalid image"},
			}},
		})
	}))
	defer srv.Close()

	c := NewVisionClient(VisionConfig{Endpoint: srv.URL}, fastExecutor(), nil)
	res, err := c.Acquire(context.Background(), Image{Data: []byte("img")})
	require.Error(t, err)

	assert.False(t, res.Success)
	assert.False(t, common.IsTransient(err))
	assert.Contains(t, res.ErrorMessage, "invalid image")
}

func TestPolyToRect(t *testing.T) {
	rect := polyToRect(visionPoly{Vertices: []visionVertex{
		{X: 10, Y: 20}, {X: 110, Y: 20}, {X: 110, Y: 60}, {X: 10, Y: 60},
	}})
	assert.Equal(t, entity.Rect{X: 10, Y: 20, Width: 100, Height: 40}, rect)
}
