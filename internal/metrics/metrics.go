package metrics

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// 流水线指标
var (
	// DocumentsIngested 按结果统计文档入库次数: stored | skipped | failed
	DocumentsIngested = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "docqa_documents_ingested_total",
		Help: "Documents processed by the ingestion pipeline, by outcome.",
	}, []string{"outcome"})

	// ChunksStored 写入向量存储的分块总数
	ChunksStored = promauto.NewCounter(prometheus.CounterOpts{
		Name: "docqa_chunks_stored_total",
		Help: "Chunks upserted into the vector store.",
	})

	// QuestionsAnswered 按结果统计问题处理次数: answered | degraded
	QuestionsAnswered = promauto.NewCounterVec(prometheus.CounterOpts{
		Name: "docqa_questions_answered_total",
		Help: "Questions processed by the retrieval pipeline, by outcome.",
	}, []string{"outcome"})

	// EmbeddingBatches 嵌入批次请求耗时
	EmbeddingBatches = promauto.NewHistogram(prometheus.HistogramOpts{
		Name:    "docqa_embedding_batch_seconds",
		Help:    "Latency of embedding batch requests.",
		Buckets: prometheus.DefBuckets,
	})
)
