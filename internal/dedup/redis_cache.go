package dedup

import (
	"context"
	"strings"

	"github.com/redis/go-redis/v9"

	apperrors "github.com/aihub/docqa-go/internal/errors"
)

const redisKeyPrefix = "docqa:processed:"

// RedisCache 基于Redis的去重缓存
// 持久性依赖Redis自身的AOF/RDB配置
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache 创建Redis去重缓存
func NewRedisCache(client *redis.Client) *RedisCache {
	return &RedisCache{client: client}
}

func (c *RedisCache) Exists(ctx context.Context, docHash string) (bool, error) {
	n, err := c.client.Exists(ctx, redisKeyPrefix+docHash).Result()
	if err != nil {
		return false, apperrors.NewCacheError("exists", err)
	}
	return n > 0, nil
}

func (c *RedisCache) Record(ctx context.Context, docHash string, vectorIDs []string) error {
	// SET覆盖写，无过期时间
	err := c.client.Set(ctx, redisKeyPrefix+docHash, strings.Join(vectorIDs, ","), 0).Err()
	if err != nil {
		return apperrors.NewCacheError("record", err)
	}
	return nil
}
