package answer

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

// chatHandler 返回固定聊天补全响应的测试服务端
func chatHandler(t *testing.T, content string, status int) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		if status != http.StatusOK {
			w.WriteHeader(status)
			return
		}

		var req struct {
			Messages []struct {
				Content string `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		require.Len(t, req.Messages, 1)
		assert.Contains(t, req.Messages[0].Content, "what color is the sky")
		assert.Contains(t, req.Messages[0].Content, "the sky is blue")

		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]any{
			"choices": []map[string]any{
				{"message": map[string]any{"role": "assistant", "content": content}},
			},
		})
	}
}

func TestOpenAIService_AnswerParsesJSONField(t *testing.T) {
	srv := httptest.NewServer(chatHandler(t, `{"answer":"blue","explanation":"stated in context"}`, http.StatusOK))
	defer srv.Close()

	svc := NewOpenAIService("test-key", srv.URL+"/v1", "gpt-4o-mini", 256)
	require.True(t, svc.Ready())

	got, err := svc.Answer(context.Background(), "what color is the sky", "the sky is blue")
	require.NoError(t, err)
	assert.Equal(t, "blue", got)
}

func TestOpenAIService_InvalidJSONIsAnswerError(t *testing.T) {
	srv := httptest.NewServer(chatHandler(t, "not json at all", http.StatusOK))
	defer srv.Close()

	svc := NewOpenAIService("test-key", srv.URL+"/v1", "gpt-4o-mini", 256)
	_, err := svc.Answer(context.Background(), "what color is the sky", "the sky is blue")
	require.Error(t, err)

	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrCodeAnswerFailed, appErr.Code)
}

func TestOpenAIService_UpstreamFailureIsAnswerError(t *testing.T) {
	srv := httptest.NewServer(chatHandler(t, "", http.StatusInternalServerError))
	defer srv.Close()

	svc := NewOpenAIService("test-key", srv.URL+"/v1", "gpt-4o-mini", 256)
	_, err := svc.Answer(context.Background(), "what color is the sky", "the sky is blue")
	require.Error(t, err)

	appErr := apperrors.GetAppError(err)
	require.NotNil(t, appErr)
	assert.Equal(t, apperrors.ErrCodeAnswerFailed, appErr.Code)
}

func TestNewOpenAIService_EmptyKeyReturnsNoop(t *testing.T) {
	svc := NewOpenAIService("   ", "", "", 0)
	assert.False(t, svc.Ready())

	_, err := svc.Answer(context.Background(), "q", "ctx")
	assert.Error(t, err)
}
