package embedding

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/aihub/docqa-go/internal/errors"
)

func TestOpenAIEmbedder_EmbedBatchReordersByIndex(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req struct {
			Input []string `json:"input"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Equal(t, []string{"alpha", "beta"}, req.Input)

		// 故意乱序返回，应按index字段重排
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"index": 1, "embedding": []float32{0, 1}},
				{"index": 0, "embedding": []float32{1, 0}},
			},
		})
	}))
	defer srv.Close()

	e := NewOpenAIEmbedder("test-key", srv.URL+"/v1", "text-embedding-3-small", 2)
	require.True(t, e.Ready())
	assert.Equal(t, 2, e.Dimensions())

	vectors, err := e.EmbedBatch(context.Background(), []string{"alpha", "beta"})
	require.NoError(t, err)
	require.Len(t, vectors, 2)
	assert.Equal(t, []float32{1, 0}, vectors[0])
	assert.Equal(t, []float32{0, 1}, vectors[1])
}

func TestOpenAIEmbedder_SizeMismatchIsError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"data": []map[string]any{
				{"index": 0, "embedding": []float32{1}},
			},
		})
	}))
	defer srv.Close()

	e := NewOpenAIEmbedder("test-key", srv.URL+"/v1", "text-embedding-3-small", 0)
	_, err := e.EmbedBatch(context.Background(), []string{"a", "b"})
	require.Error(t, err)

	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrCodeEmbeddingFailed, appErr.Code)
}

func TestOpenAIEmbedder_UpstreamFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	e := NewOpenAIEmbedder("test-key", srv.URL+"/v1", "", 0)
	_, err := e.EmbedBatch(context.Background(), []string{"a"})
	require.Error(t, err)
}

func TestOpenAIEmbedder_EmptyInput(t *testing.T) {
	e := NewOpenAIEmbedder("test-key", "http://127.0.0.1:1/v1", "", 0)
	vectors, err := e.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, vectors)
}

func TestNewOpenAIEmbedder_Defaults(t *testing.T) {
	e := NewOpenAIEmbedder("test-key", "", "", 0)
	assert.Equal(t, 1536, e.Dimensions())

	e = NewOpenAIEmbedder("test-key", "", "text-embedding-3-large", 0)
	assert.Equal(t, 3072, e.Dimensions())

	noop := NewOpenAIEmbedder("", "", "", 0)
	assert.False(t, noop.Ready())
}
