package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	require.NoError(t, LoadConfig())
	require.NotNil(t, AppConfig)

	assert.Equal(t, "8000", AppConfig.Server.Port)
	assert.Equal(t, "sqlite", AppConfig.Database.Provider)
	assert.Equal(t, 500, AppConfig.Knowledge.ChunkSize)
	assert.Equal(t, 50, AppConfig.Knowledge.ChunkOverlap)
	assert.Equal(t, 5, AppConfig.Knowledge.TopK)
	assert.Equal(t, "memory", AppConfig.Vector.Provider)
	assert.Equal(t, "text-embedding-3-small", AppConfig.Embedding.Model)
	assert.False(t, AppConfig.Kafka.Enabled)
	assert.False(t, AppConfig.Lifecycle.PurgeOnShutdown)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("PORT", "9000")
	t.Setenv("API_TOKEN", "cli-token")
	t.Setenv("DOCQA_KNOWLEDGE_TOP_K", "3")
	t.Setenv("DOCQA_VECTOR_PROVIDER", "milvus")

	require.NoError(t, LoadConfig())

	assert.Equal(t, "9000", AppConfig.Server.Port)
	assert.Equal(t, "cli-token", AppConfig.Auth.Token)
	assert.Equal(t, 3, AppConfig.Knowledge.TopK)
	assert.Equal(t, "milvus", AppConfig.Vector.Provider)
}
