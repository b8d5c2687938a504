package ingest

import (
	"context"
	"sync"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/aihub/docqa-go/internal/dedup"
	"github.com/aihub/docqa-go/internal/embedding"
	"github.com/aihub/docqa-go/internal/events"
	"github.com/aihub/docqa-go/internal/logger"
	"github.com/aihub/docqa-go/internal/metrics"
	"github.com/aihub/docqa-go/internal/vectorstore"
)

// OutcomeStatus 单文档入库结果状态
type OutcomeStatus string

const (
	// OutcomeSkipped 指纹已存在，幂等跳过
	OutcomeSkipped OutcomeStatus = "skipped"
	// OutcomeStored 完成分块、向量化并写入存储
	OutcomeStored OutcomeStatus = "stored"
)

// Outcome 单文档入库结果
type Outcome struct {
	Status  OutcomeStatus
	DocHash string
	Chunks  int
}

// Result 多文档入库中单个文档的结果，失败不中断其余文档
type Result struct {
	Locator string
	Outcome Outcome
	Err     error
}

// PipelineOptions 入库流水线依赖与参数
type PipelineOptions struct {
	Fetcher   *Fetcher
	Extractor *Extractor
	Chunker   *Chunker
	Cache     dedup.Cache
	Embedder  embedding.Embedder
	Store     vectorstore.Store
	Publisher *events.Publisher

	Namespace string
	// BatchSize 单次嵌入请求的分块数
	BatchSize int
	// MaxParallel 嵌入批次的并发上限
	MaxParallel int
}

// Pipeline 文档入库流水线
// 状态机: Fetched → Extracted → Hashed → 缓存命中 ⇒ Skipped
//                                      ↘ 未命中 ⇒ Chunked → Embedded → Upserted → Cached ⇒ Stored
type Pipeline struct {
	fetcher   *Fetcher
	extractor *Extractor
	chunker   *Chunker
	cache     dedup.Cache
	embedder  embedding.Embedder
	store     vectorstore.Store
	publisher *events.Publisher

	namespace string
	batchSize int
	pool      *ants.Pool
}

// NewPipeline 创建入库流水线，内部维护有界工作池隔离阻塞的嵌入调用
func NewPipeline(opts PipelineOptions) (*Pipeline, error) {
	if opts.BatchSize <= 0 {
		opts.BatchSize = 32
	}
	if opts.MaxParallel <= 0 {
		opts.MaxParallel = 4
	}

	pool, err := ants.NewPool(opts.MaxParallel)
	if err != nil {
		return nil, err
	}

	return &Pipeline{
		fetcher:   opts.Fetcher,
		extractor: opts.Extractor,
		chunker:   opts.Chunker,
		cache:     opts.Cache,
		embedder:  opts.Embedder,
		store:     opts.Store,
		publisher: opts.Publisher,
		namespace: opts.Namespace,
		batchSize: opts.BatchSize,
		pool:      pool,
	}, nil
}

// Close 释放工作池
func (p *Pipeline) Close() {
	if p.pool != nil {
		p.pool.Release()
	}
}

// IngestAll 依次入库多个文档，单文档失败记录日志后继续处理其余文档
func (p *Pipeline) IngestAll(ctx context.Context, locators []string) []Result {
	results := make([]Result, 0, len(locators))
	for _, locator := range locators {
		outcome, err := p.Ingest(ctx, locator)
		if err != nil {
			logger.Error("document ingestion failed",
				zap.String("locator", locator), zap.Error(err))
			metrics.DocumentsIngested.WithLabelValues("failed").Inc()
		}
		results = append(results, Result{Locator: locator, Outcome: outcome, Err: err})
	}
	return results
}

// Ingest 入库单个文档，相同内容重复入库为幂等空操作
func (p *Pipeline) Ingest(ctx context.Context, locator string) (Outcome, error) {
	content, err := p.fetcher.Fetch(ctx, locator)
	if err != nil {
		return Outcome{}, err
	}

	text := p.extractor.Extract(content, KindOf(locator))
	docHash := ContentHash(content)

	exists, err := p.cache.Exists(ctx, docHash)
	if err != nil {
		return Outcome{}, err
	}
	if exists {
		logger.Info("document already processed",
			zap.String("doc_hash", shortHash(docHash)))
		metrics.DocumentsIngested.WithLabelValues("skipped").Inc()
		return Outcome{Status: OutcomeSkipped, DocHash: docHash}, nil
	}

	chunks := p.chunker.Split(text)
	for i := range chunks {
		chunks[i].ParentHash = docHash
	}

	embeddings, err := p.embedChunks(ctx, chunks)
	if err != nil {
		return Outcome{}, err
	}

	records := make([]vectorstore.Record, len(chunks))
	vectorIDs := make([]string, len(chunks))
	for i, chunk := range chunks {
		id := VectorID(docHash, chunk.Index)
		vectorIDs[i] = id
		records[i] = vectorstore.Record{
			ID:        id,
			Embedding: embeddings[i],
			Text:      chunk.Text,
			DocHash:   docHash,
		}
	}

	// 向量一经upsert即可被检索，与缓存记录是否完成无关；
	// 两步之间中断会留下无去重记录的向量，重试时确定性ID覆盖写收敛
	if err := p.store.Upsert(ctx, records, p.namespace); err != nil {
		return Outcome{}, err
	}
	if err := p.cache.Record(ctx, docHash, vectorIDs); err != nil {
		return Outcome{}, err
	}

	logger.Info("document ingested",
		zap.String("doc_hash", shortHash(docHash)),
		zap.Int("chunks", len(chunks)))
	metrics.DocumentsIngested.WithLabelValues("stored").Inc()
	metrics.ChunksStored.Add(float64(len(chunks)))

	if p.publisher != nil {
		p.publisher.Publish(events.IngestionEvent{
			DocHash:   docHash,
			Source:    locator,
			Outcome:   string(OutcomeStored),
			Chunks:    len(chunks),
			Timestamp: time.Now().UTC(),
		})
	}

	return Outcome{Status: OutcomeStored, DocHash: docHash, Chunks: len(chunks)}, nil
}

// embedChunks 按批次向量化全部分块，批次并发受工作池上限约束
// 返回切片与chunks顺序一一对应
func (p *Pipeline) embedChunks(ctx context.Context, chunks []Chunk) ([][]float32, error) {
	if len(chunks) == 0 {
		return nil, nil
	}

	type batch struct {
		start int
		texts []string
	}

	var batches []batch
	for start := 0; start < len(chunks); start += p.batchSize {
		end := start + p.batchSize
		if end > len(chunks) {
			end = len(chunks)
		}
		texts := make([]string, 0, end-start)
		for _, chunk := range chunks[start:end] {
			texts = append(texts, chunk.Text)
		}
		batches = append(batches, batch{start: start, texts: texts})
	}

	embeddings := make([][]float32, len(chunks))
	var (
		wg       sync.WaitGroup
		errOnce  sync.Once
		firstErr error
	)

	for _, b := range batches {
		b := b
		wg.Add(1)
		submitErr := p.pool.Submit(func() {
			defer wg.Done()
			if ctx.Err() != nil {
				errOnce.Do(func() { firstErr = ctx.Err() })
				return
			}

			started := time.Now()
			vectors, err := p.embedder.EmbedBatch(ctx, b.texts)
			metrics.EmbeddingBatches.Observe(time.Since(started).Seconds())
			if err != nil {
				errOnce.Do(func() { firstErr = err })
				return
			}
			for i, vec := range vectors {
				embeddings[b.start+i] = vec
			}
		})
		if submitErr != nil {
			wg.Done()
			errOnce.Do(func() { firstErr = submitErr })
		}
	}

	wg.Wait()
	if firstErr != nil {
		return nil, firstErr
	}
	return embeddings, nil
}

func shortHash(docHash string) string {
	if len(docHash) > 8 {
		return docHash[:8]
	}
	return docHash
}
