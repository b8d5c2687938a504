package config

import (
	"os"
	"strings"

	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig
	Auth      AuthConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Knowledge KnowledgeConfig
	Vector    VectorStoreConfig
	Embedding EmbeddingConfig
	LLM       LLMConfig
	Storage   StorageConfig
	Kafka     KafkaConfig
	Lifecycle LifecycleConfig
}

type ServerConfig struct {
	Port string
	Env  string
}

type AuthConfig struct {
	// Token /run接口的Bearer令牌
	Token string
}

type DatabaseConfig struct {
	// Provider 去重缓存存储类型: sqlite | postgres | redis
	Provider string
	// DSN sqlite为文件路径，postgres为连接串
	DSN string
}

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

type KnowledgeConfig struct {
	ChunkSize    int
	ChunkOverlap int
	BatchSize    int
	MaxParallel  int
	TopK         int
}

type VectorStoreConfig struct {
	// Provider 向量存储类型: memory | milvus
	Provider string
	Milvus   MilvusConfig
}

type MilvusConfig struct {
	Address    string
	Username   string
	Password   string
	Collection string
	Database   string
	Namespace  string
	VectorSize int
	UseTLS     bool
}

type EmbeddingConfig struct {
	APIKey     string
	BaseURL    string
	Model      string
	Dimensions int
}

type LLMConfig struct {
	APIKey    string
	BaseURL   string
	Model     string
	MaxTokens int
}

type StorageConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	UseSSL    bool
}

type KafkaConfig struct {
	Enabled bool
	Brokers []string
	Topic   string
}

type LifecycleConfig struct {
	// PurgeOnShutdown 关闭时清空向量命名空间（显式开启）
	PurgeOnShutdown bool
}

var AppConfig *Config

// LoadConfig 加载配置，默认值 + 环境变量覆盖
// 重复调用会从当前环境重新构建完整配置
func LoadConfig() error {
	viper.Reset()

	viper.SetDefault("server.port", "8000")
	viper.SetDefault("server.env", "development")

	viper.SetDefault("auth.token", "")

	viper.SetDefault("database.provider", "sqlite")
	viper.SetDefault("database.dsn", "./data/processed_docs.db")

	viper.SetDefault("redis.addr", "localhost:6379")
	viper.SetDefault("redis.password", "")
	viper.SetDefault("redis.db", 0)

	// 分块与检索默认值
	viper.SetDefault("knowledge.chunk_size", 500)
	viper.SetDefault("knowledge.chunk_overlap", 50)
	viper.SetDefault("knowledge.batch_size", 32)
	viper.SetDefault("knowledge.max_parallel", 4)
	viper.SetDefault("knowledge.top_k", 5)

	viper.SetDefault("vector.provider", "memory")
	viper.SetDefault("vector.milvus.address", "localhost:19530")
	viper.SetDefault("vector.milvus.collection", "doc_chunks")
	viper.SetDefault("vector.milvus.database", "default")
	viper.SetDefault("vector.milvus.namespace", "default")
	viper.SetDefault("vector.milvus.vector_size", 1536)
	viper.SetDefault("vector.milvus.tls", false)

	viper.SetDefault("embedding.base_url", "")
	viper.SetDefault("embedding.model", "text-embedding-3-small")
	viper.SetDefault("embedding.dimensions", 1536)

	viper.SetDefault("llm.base_url", "https://openrouter.ai/api/v1")
	viper.SetDefault("llm.model", "gpt-4o-mini")
	viper.SetDefault("llm.max_tokens", 1024)

	viper.SetDefault("storage.endpoint", "")
	viper.SetDefault("storage.use_ssl", false)

	viper.SetDefault("kafka.enabled", false)
	viper.SetDefault("kafka.brokers", []string{"localhost:9092"})
	viper.SetDefault("kafka.topic", "document-ingestions")

	viper.SetDefault("lifecycle.purge_on_shutdown", false)

	// 读取环境变量 DOCQA_*
	viper.SetEnvPrefix("DOCQA")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// 常用环境变量的兼容读取
	if port := os.Getenv("PORT"); port != "" {
		viper.Set("server.port", port)
	}
	if token := os.Getenv("API_TOKEN"); token != "" {
		viper.Set("auth.token", token)
	}
	if key := os.Getenv("OPENAI_API_KEY"); key != "" {
		viper.Set("embedding.api_key", key)
	}
	if key := os.Getenv("OPENROUTER_API_KEY"); key != "" {
		viper.Set("llm.api_key", key)
	}

	cfg := &Config{
		Server: ServerConfig{
			Port: viper.GetString("server.port"),
			Env:  viper.GetString("server.env"),
		},
		Auth: AuthConfig{
			Token: viper.GetString("auth.token"),
		},
		Database: DatabaseConfig{
			Provider: viper.GetString("database.provider"),
			DSN:      viper.GetString("database.dsn"),
		},
		Redis: RedisConfig{
			Addr:     viper.GetString("redis.addr"),
			Password: viper.GetString("redis.password"),
			DB:       viper.GetInt("redis.db"),
		},
		Knowledge: KnowledgeConfig{
			ChunkSize:    viper.GetInt("knowledge.chunk_size"),
			ChunkOverlap: viper.GetInt("knowledge.chunk_overlap"),
			BatchSize:    viper.GetInt("knowledge.batch_size"),
			MaxParallel:  viper.GetInt("knowledge.max_parallel"),
			TopK:         viper.GetInt("knowledge.top_k"),
		},
		Vector: VectorStoreConfig{
			Provider: viper.GetString("vector.provider"),
			Milvus: MilvusConfig{
				Address:    viper.GetString("vector.milvus.address"),
				Username:   viper.GetString("vector.milvus.username"),
				Password:   viper.GetString("vector.milvus.password"),
				Collection: viper.GetString("vector.milvus.collection"),
				Database:   viper.GetString("vector.milvus.database"),
				Namespace:  viper.GetString("vector.milvus.namespace"),
				VectorSize: viper.GetInt("vector.milvus.vector_size"),
				UseTLS:     viper.GetBool("vector.milvus.tls"),
			},
		},
		Embedding: EmbeddingConfig{
			APIKey:     viper.GetString("embedding.api_key"),
			BaseURL:    viper.GetString("embedding.base_url"),
			Model:      viper.GetString("embedding.model"),
			Dimensions: viper.GetInt("embedding.dimensions"),
		},
		LLM: LLMConfig{
			APIKey:    viper.GetString("llm.api_key"),
			BaseURL:   viper.GetString("llm.base_url"),
			Model:     viper.GetString("llm.model"),
			MaxTokens: viper.GetInt("llm.max_tokens"),
		},
		Storage: StorageConfig{
			Endpoint:  viper.GetString("storage.endpoint"),
			AccessKey: viper.GetString("storage.access_key"),
			SecretKey: viper.GetString("storage.secret_key"),
			UseSSL:    viper.GetBool("storage.use_ssl"),
		},
		Kafka: KafkaConfig{
			Enabled: viper.GetBool("kafka.enabled"),
			Brokers: viper.GetStringSlice("kafka.brokers"),
			Topic:   viper.GetString("kafka.topic"),
		},
		Lifecycle: LifecycleConfig{
			PurgeOnShutdown: viper.GetBool("lifecycle.purge_on_shutdown"),
		},
	}

	AppConfig = cfg
	return nil
}
