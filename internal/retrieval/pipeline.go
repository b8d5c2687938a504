package retrieval

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/aihub/docqa-go/internal/answer"
	"github.com/aihub/docqa-go/internal/embedding"
	"github.com/aihub/docqa-go/internal/logger"
	"github.com/aihub/docqa-go/internal/metrics"
	"github.com/aihub/docqa-go/internal/vectorstore"
)

// 检索或合成失败时的用户可见占位答案
const (
	PlaceholderEmpty  = "No valid response generated."
	PlaceholderFailed = "Failed to generate response due to an error."
)

// contextDelimiter 上下文片段之间的分隔符
const contextDelimiter = "\n\n"

// Pipeline 检索问答流水线
type Pipeline struct {
	embedder  embedding.Embedder
	store     vectorstore.Store
	answerer  answer.Service
	namespace string
	topK      int
}

// NewPipeline 创建检索流水线
func NewPipeline(embedder embedding.Embedder, store vectorstore.Store, answerer answer.Service, namespace string, topK int) *Pipeline {
	if topK <= 0 {
		topK = 5
	}
	return &Pipeline{
		embedder:  embedder,
		store:     store,
		answerer:  answerer,
		namespace: namespace,
		topK:      topK,
	}
}

// Answer 为单个问题生成答案
// 检索或合成的任何失败都降级为占位答案，调用方始终得到可展示文本
func (p *Pipeline) Answer(ctx context.Context, query string) string {
	vectors, err := p.embedder.EmbedBatch(ctx, []string{query})
	if err != nil || len(vectors) == 0 {
		logger.Error("failed to embed query", zap.Error(err))
		metrics.QuestionsAnswered.WithLabelValues("degraded").Inc()
		return PlaceholderFailed
	}

	matches, err := p.store.Query(ctx, vectors[0], p.topK, p.namespace)
	if err != nil {
		logger.Error("vector query failed", zap.Error(err))
		metrics.QuestionsAnswered.WithLabelValues("degraded").Inc()
		return PlaceholderFailed
	}

	contextText := AssembleContext(matches)
	logger.Debug("retrieved context chunks", zap.Int("count", len(matches)))

	result, err := p.answerer.Answer(ctx, query, contextText)
	if err != nil {
		logger.Error("answer synthesis failed", zap.Error(err))
		metrics.QuestionsAnswered.WithLabelValues("degraded").Inc()
		return PlaceholderFailed
	}
	if strings.TrimSpace(result) == "" {
		metrics.QuestionsAnswered.WithLabelValues("degraded").Inc()
		return PlaceholderEmpty
	}

	metrics.QuestionsAnswered.WithLabelValues("answered").Inc()
	return result
}

// AssembleContext 按相似度降序拼接命中文本，保持向量存储返回的排序
func AssembleContext(matches []vectorstore.Match) string {
	texts := make([]string, 0, len(matches))
	for _, match := range matches {
		texts = append(texts, match.Text)
	}
	return strings.Join(texts, contextDelimiter)
}
