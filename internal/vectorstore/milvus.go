package vectorstore

import (
	"context"
	"fmt"
	"time"

	"github.com/milvus-io/milvus-sdk-go/v2/client"
	"github.com/milvus-io/milvus-sdk-go/v2/entity"
	"go.uber.org/zap"

	apperrors "github.com/aihub/docqa-go/internal/errors"
	"github.com/aihub/docqa-go/internal/logger"
)

// MilvusOptions Milvus客户端配置
type MilvusOptions struct {
	Address    string
	Username   string
	Password   string
	Collection string
	Database   string
	VectorSize int
	UseTLS     bool
	Timeout    time.Duration
}

type milvusStore struct {
	milvusClient client.Client
	collection   string
	vectorSize   int
}

// NewMilvusStore 创建Milvus向量存储，命名空间映射为分区
func NewMilvusStore(opts MilvusOptions) (Store, error) {
	if opts.Address == "" {
		opts.Address = "localhost:19530"
	}
	if opts.Collection == "" {
		opts.Collection = "doc_chunks"
	}
	if opts.Database == "" {
		opts.Database = "default"
	}
	if opts.VectorSize == 0 {
		opts.VectorSize = 1536
	}

	timeout := opts.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	milvusClient, err := client.NewClient(ctx, client.Config{
		Address:       opts.Address,
		DBName:        opts.Database,
		Username:      opts.Username,
		Password:      opts.Password,
		EnableTLSAuth: opts.UseTLS,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to create milvus client: %w", err)
	}

	s := &milvusStore{
		milvusClient: milvusClient,
		collection:   opts.Collection,
		vectorSize:   opts.VectorSize,
	}
	if err := s.ensureCollection(context.Background()); err != nil {
		return nil, err
	}
	return s, nil
}

func (s *milvusStore) ensureCollection(ctx context.Context) error {
	hasCollection, err := s.milvusClient.HasCollection(ctx, s.collection)
	if err != nil {
		return fmt.Errorf("failed to check collection: %w", err)
	}

	if !hasCollection {
		schema := &entity.Schema{
			CollectionName: s.collection,
			Description:    "document chunk vectors",
			Fields: []*entity.Field{
				{
					Name:       "id",
					DataType:   entity.FieldTypeVarChar,
					PrimaryKey: true,
					AutoID:     false,
					TypeParams: map[string]string{
						"max_length": "128",
					},
				},
				{
					Name:     "doc_hash",
					DataType: entity.FieldTypeVarChar,
					TypeParams: map[string]string{
						"max_length": "64",
					},
				},
				{
					Name:     "text",
					DataType: entity.FieldTypeVarChar,
					TypeParams: map[string]string{
						"max_length": "65535",
					},
				},
				{
					Name:     "vector",
					DataType: entity.FieldTypeFloatVector,
					TypeParams: map[string]string{
						"dim": fmt.Sprintf("%d", s.vectorSize),
					},
				},
			},
		}

		if err := s.milvusClient.CreateCollection(ctx, schema, entity.DefaultShardNumber); err != nil {
			return fmt.Errorf("failed to create collection: %w", err)
		}

		var index entity.Index
		index, err := entity.NewIndexHNSW(entity.COSINE, 8, 64)
		if err != nil {
			index, err = entity.NewIndexIvfFlat(entity.COSINE, 128)
			if err != nil {
				return fmt.Errorf("failed to create index: %w", err)
			}
		}
		if err := s.milvusClient.CreateIndex(ctx, s.collection, "vector", index, false); err != nil {
			logger.Warn("failed to create milvus index",
				zap.String("collection", s.collection), zap.Error(err))
		}
	}

	if err := s.milvusClient.LoadCollection(ctx, s.collection, false); err != nil {
		logger.Warn("failed to load milvus collection",
			zap.String("collection", s.collection), zap.Error(err))
	}
	return nil
}

// ensurePartition 命名空间映射为Milvus分区，空命名空间使用默认分区
func (s *milvusStore) ensurePartition(ctx context.Context, namespace string) (string, error) {
	if namespace == "" || namespace == "_default" {
		return "", nil
	}
	has, err := s.milvusClient.HasPartition(ctx, s.collection, namespace)
	if err != nil {
		return "", fmt.Errorf("failed to check partition: %w", err)
	}
	if !has {
		if err := s.milvusClient.CreatePartition(ctx, s.collection, namespace); err != nil {
			return "", fmt.Errorf("failed to create partition: %w", err)
		}
	}
	return namespace, nil
}

func (s *milvusStore) Upsert(ctx context.Context, records []Record, namespace string) error {
	if len(records) == 0 {
		return nil
	}

	partition, err := s.ensurePartition(ctx, namespace)
	if err != nil {
		return apperrors.NewVectorStoreError("upsert", err)
	}

	for start := 0; start < len(records); start += UpsertBatchLimit {
		end := start + UpsertBatchLimit
		if end > len(records) {
			end = len(records)
		}
		batch := records[start:end]

		ids := make([]string, 0, len(batch))
		hashes := make([]string, 0, len(batch))
		texts := make([]string, 0, len(batch))
		vectors := make([][]float32, 0, len(batch))
		for _, rec := range batch {
			ids = append(ids, rec.ID)
			hashes = append(hashes, rec.DocHash)
			texts = append(texts, rec.Text)
			vectors = append(vectors, padVector(rec.Embedding, s.vectorSize))
		}

		idColumn := entity.NewColumnVarChar("id", ids)
		hashColumn := entity.NewColumnVarChar("doc_hash", hashes)
		textColumn := entity.NewColumnVarChar("text", texts)
		vectorColumn := entity.NewColumnFloatVector("vector", s.vectorSize, vectors)

		// Upsert语义：相同ID覆盖，重复入库收敛到同一份数据
		if _, err := s.milvusClient.Upsert(ctx, s.collection, partition, idColumn, hashColumn, textColumn, vectorColumn); err != nil {
			return apperrors.NewVectorStoreError("upsert", err)
		}
	}

	if err := s.milvusClient.Flush(ctx, s.collection, false); err != nil {
		logger.Warn("failed to flush milvus collection",
			zap.String("collection", s.collection), zap.Error(err))
	}
	return nil
}

func (s *milvusStore) Query(ctx context.Context, embedding []float32, topK int, namespace string) ([]Match, error) {
	if len(embedding) == 0 {
		return nil, nil
	}
	if topK <= 0 {
		topK = 10
	}

	var partitions []string
	if namespace != "" && namespace != "_default" {
		partitions = []string{namespace}
	}

	sp, _ := entity.NewIndexHNSWSearchParam(64)
	queryVector := entity.FloatVector(padVector(embedding, s.vectorSize))
	searchResults, err := s.milvusClient.Search(
		ctx,
		s.collection,
		partitions,
		"",
		[]string{"doc_hash", "text"},
		[]entity.Vector{queryVector},
		"vector",
		entity.COSINE,
		topK,
		sp,
	)
	if err != nil {
		return nil, apperrors.NewVectorStoreError("query", err)
	}

	if len(searchResults) == 0 {
		return []Match{}, nil
	}
	result := searchResults[0]
	if result.Err != nil {
		return nil, apperrors.NewVectorStoreError("query", result.Err)
	}
	if result.ResultCount == 0 {
		return []Match{}, nil
	}

	var ids []string
	if idCol, ok := result.IDs.(*entity.ColumnVarChar); ok {
		ids = idCol.Data()
	}

	var hashes, texts []string
	for _, field := range result.Fields {
		switch field.Name() {
		case "doc_hash":
			if col, ok := field.(*entity.ColumnVarChar); ok {
				hashes = col.Data()
			}
		case "text":
			if col, ok := field.(*entity.ColumnVarChar); ok {
				texts = col.Data()
			}
		}
	}

	// Milvus按相似度降序返回，保持原始排序
	matches := make([]Match, 0, result.ResultCount)
	for i := 0; i < result.ResultCount; i++ {
		match := Match{}
		if i < len(ids) {
			match.ID = ids[i]
		}
		if i < len(hashes) {
			match.DocHash = hashes[i]
		}
		if i < len(texts) {
			match.Text = texts[i]
		}
		if i < len(result.Scores) {
			match.Score = result.Scores[i]
		}
		matches = append(matches, match)
	}
	return matches, nil
}

func (s *milvusStore) Purge(ctx context.Context, namespace string) error {
	partition, err := s.ensurePartition(ctx, namespace)
	if err != nil {
		return apperrors.NewVectorStoreError("purge", err)
	}
	if err := s.milvusClient.Delete(ctx, s.collection, partition, `id != ""`); err != nil {
		return apperrors.NewVectorStoreError("purge", err)
	}
	if err := s.milvusClient.Flush(ctx, s.collection, false); err != nil {
		logger.Warn("failed to flush after purge", zap.Error(err))
	}
	return nil
}

func (s *milvusStore) Ready() bool {
	if s.milvusClient == nil {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	_, err := s.milvusClient.ListCollections(ctx)
	return err == nil
}

// padVector 维度不足补零，超出截断，保证与索引维度一致
func padVector(vec []float32, size int) []float32 {
	if len(vec) == size {
		return vec
	}
	padded := make([]float32, size)
	copy(padded, vec)
	return padded
}
