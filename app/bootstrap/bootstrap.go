package bootstrap

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"
	"go.uber.org/zap"

	"github.com/aihub/docqa-go/app/controllers"
	"github.com/aihub/docqa-go/internal/answer"
	"github.com/aihub/docqa-go/internal/config"
	"github.com/aihub/docqa-go/internal/database"
	"github.com/aihub/docqa-go/internal/dedup"
	"github.com/aihub/docqa-go/internal/embedding"
	"github.com/aihub/docqa-go/internal/events"
	"github.com/aihub/docqa-go/internal/ingest"
	"github.com/aihub/docqa-go/internal/logger"
	"github.com/aihub/docqa-go/internal/retrieval"
	"github.com/aihub/docqa-go/internal/services"
	"github.com/aihub/docqa-go/internal/storage"
	"github.com/aihub/docqa-go/internal/vectorstore"
)

// App 持有需要在关闭时清理的生命周期资源
type App struct {
	store     vectorstore.Store
	pipeline  *ingest.Pipeline
	publisher *events.Publisher
	namespace string
}

// Init 初始化配置、日志、存储连接及两条流水线
func Init() (*App, error) {
	// 加载.env环境变量，缺失不致命
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found")
	}

	if err := logger.InitLogger(); err != nil {
		return nil, err
	}

	if err := config.LoadConfig(); err != nil {
		return nil, err
	}
	cfg := config.AppConfig

	app := &App{namespace: cfg.Vector.Milvus.Namespace}

	// 去重缓存
	cache, err := buildCache(cfg)
	if err != nil {
		return nil, err
	}

	// 向量存储
	store, err := buildVectorStore(cfg)
	if err != nil {
		return nil, err
	}
	app.store = store

	// 嵌入与答案生成服务：启动时构造一次，显式传入流水线
	embedder := embedding.NewOpenAIEmbedder(
		cfg.Embedding.APIKey, cfg.Embedding.BaseURL,
		cfg.Embedding.Model, cfg.Embedding.Dimensions)
	answerer := answer.NewOpenAIService(
		cfg.LLM.APIKey, cfg.LLM.BaseURL, cfg.LLM.Model, cfg.LLM.MaxTokens)

	if embedder.Ready() {
		warmupCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		if _, err := embedder.EmbedBatch(warmupCtx, []string{"warmup"}); err != nil {
			logger.Warn("embedding warmup failed", zap.Error(err))
		}
		cancel()
	}

	// 对象存储（可选）
	minioClient, err := storage.InitMinIO(cfg.Storage)
	if err != nil {
		logger.Warn("failed to initialize object storage", zap.Error(err))
	}

	// Kafka事件发布（可选）
	if cfg.Kafka.Enabled {
		publisher, err := events.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			logger.Warn("failed to initialize kafka publisher", zap.Error(err))
		} else {
			app.publisher = publisher
		}
	}

	pipeline, err := ingest.NewPipeline(ingest.PipelineOptions{
		Fetcher:     ingest.NewFetcher(minioClient),
		Extractor:   ingest.NewExtractor(),
		Chunker:     ingest.NewChunker(cfg.Knowledge.ChunkSize, cfg.Knowledge.ChunkOverlap),
		Cache:       cache,
		Embedder:    embedder,
		Store:       store,
		Publisher:   app.publisher,
		Namespace:   app.namespace,
		BatchSize:   cfg.Knowledge.BatchSize,
		MaxParallel: cfg.Knowledge.MaxParallel,
	})
	if err != nil {
		return nil, err
	}
	app.pipeline = pipeline

	retrievalPipeline := retrieval.NewPipeline(
		embedder, store, answerer, app.namespace, cfg.Knowledge.TopK)

	controllers.SetRunService(services.NewRunService(pipeline, retrievalPipeline))

	logger.Info("application bootstrapped",
		zap.String("vector_provider", cfg.Vector.Provider),
		zap.String("cache_provider", cfg.Database.Provider))
	return app, nil
}

// Shutdown 显式的生命周期清理钩子
// 向量清空仅在lifecycle.purge_on_shutdown开启时执行并记录日志
func (a *App) Shutdown() {
	if config.AppConfig != nil && config.AppConfig.Lifecycle.PurgeOnShutdown && a.store != nil {
		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()
		logger.Info("purging vector namespace on shutdown",
			zap.String("namespace", a.namespace))
		if err := a.store.Purge(ctx, a.namespace); err != nil {
			logger.Error("vector purge failed", zap.Error(err))
		}
	}

	if a.publisher != nil {
		if err := a.publisher.Close(); err != nil {
			logger.Error("failed to close kafka publisher", zap.Error(err))
		}
	}
	if a.pipeline != nil {
		a.pipeline.Close()
	}
	logger.Sync()
}

func buildCache(cfg *config.Config) (dedup.Cache, error) {
	switch cfg.Database.Provider {
	case "redis":
		return dedup.NewRedisCache(database.InitRedis(cfg.Redis)), nil
	default:
		db, err := database.InitGorm(cfg.Database)
		if err != nil {
			return nil, err
		}
		return dedup.NewGormCache(db)
	}
}

func buildVectorStore(cfg *config.Config) (vectorstore.Store, error) {
	switch cfg.Vector.Provider {
	case "milvus":
		return vectorstore.NewMilvusStore(vectorstore.MilvusOptions{
			Address:    cfg.Vector.Milvus.Address,
			Username:   cfg.Vector.Milvus.Username,
			Password:   cfg.Vector.Milvus.Password,
			Collection: cfg.Vector.Milvus.Collection,
			Database:   cfg.Vector.Milvus.Database,
			VectorSize: cfg.Vector.Milvus.VectorSize,
			UseTLS:     cfg.Vector.Milvus.UseTLS,
		})
	case "", "memory":
		return vectorstore.NewMemoryStore(), nil
	default:
		return nil, fmt.Errorf("unsupported vector store provider: %s", cfg.Vector.Provider)
	}
}
