package answer

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	openai "github.com/sashabaranov/go-openai"

	apperrors "github.com/aihub/docqa-go/internal/errors"
)

// Service 答案生成接口
type Service interface {
	Answer(ctx context.Context, query, contextText string) (string, error)
	Ready() bool
}

const promptTemplate = `Analyze the provided document excerpts to answer this query:
%s

Relevant context:
%s

Respond in JSON format:
{
  "answer": "...",
  "explanation": "..."
}`

// NoopService 默认占位实现
type NoopService struct{}

func (n *NoopService) Answer(ctx context.Context, query, contextText string) (string, error) {
	return "", errors.New("answer provider not configured")
}

func (n *NoopService) Ready() bool {
	return false
}

// OpenAIService 通过OpenAI兼容接口（如OpenRouter）生成答案
type OpenAIService struct {
	client    *openai.Client
	model     string
	maxTokens int
}

// NewOpenAIService 创建答案生成服务
func NewOpenAIService(apiKey, baseURL, model string, maxTokens int) Service {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return &NoopService{}
	}
	if model == "" {
		model = "gpt-4o-mini"
	}
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	cfg := openai.DefaultConfig(apiKey)
	if baseURL != "" {
		cfg.BaseURL = baseURL
	}

	return &OpenAIService{
		client:    openai.NewClientWithConfig(cfg),
		model:     model,
		maxTokens: maxTokens,
	}
}

// Answer 基于检索上下文合成答案，返回JSON中的answer字段
func (s *OpenAIService) Answer(ctx context.Context, query, contextText string) (string, error) {
	resp, err := s.client.CreateChatCompletion(ctx, openai.ChatCompletionRequest{
		Model: s.model,
		Messages: []openai.ChatCompletionMessage{
			{
				Role:    openai.ChatMessageRoleSystem,
				Content: fmt.Sprintf(promptTemplate, query, contextText),
			},
		},
		ResponseFormat: &openai.ChatCompletionResponseFormat{
			Type: openai.ChatCompletionResponseFormatTypeJSONObject,
		},
		MaxTokens: s.maxTokens,
	})
	if err != nil {
		return "", apperrors.NewAnswerError(err)
	}
	if len(resp.Choices) == 0 {
		return "", apperrors.NewAnswerError(errors.New("empty completion response"))
	}

	raw := resp.Choices[0].Message.Content
	if strings.TrimSpace(raw) == "" {
		return "", apperrors.NewAnswerError(errors.New("llm returned empty content"))
	}

	var parsed struct {
		Answer string `json:"answer"`
	}
	if err := json.Unmarshal([]byte(raw), &parsed); err != nil {
		return "", apperrors.NewAnswerError(fmt.Errorf("invalid answer json: %w", err))
	}
	return parsed.Answer, nil
}

func (s *OpenAIService) Ready() bool {
	return s.client != nil
}
