package dedup

import (
	"context"
	"errors"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	apperrors "github.com/aihub/docqa-go/internal/errors"
)

// GormCache 基于gorm的持久化去重缓存（sqlite或postgres）
type GormCache struct {
	db *gorm.DB
}

// NewGormCache 创建去重缓存并迁移表结构
func NewGormCache(db *gorm.DB) (*GormCache, error) {
	if err := db.AutoMigrate(&ProcessedDoc{}); err != nil {
		return nil, apperrors.NewCacheError("migrate", err)
	}
	return &GormCache{db: db}, nil
}

// Exists 主键点查指纹是否存在
func (c *GormCache) Exists(ctx context.Context, docHash string) (bool, error) {
	var record ProcessedDoc
	err := c.db.WithContext(ctx).
		Select("doc_hash").
		Where("doc_hash = ?", docHash).
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return false, nil
	}
	if err != nil {
		return false, apperrors.NewCacheError("exists", err)
	}
	return true, nil
}

// Record 写入指纹记录，主键冲突时整体替换（幂等重入）
func (c *GormCache) Record(ctx context.Context, docHash string, vectorIDs []string) error {
	record := ProcessedDoc{
		DocHash:     docHash,
		VectorIDs:   strings.Join(vectorIDs, ","),
		ProcessedAt: time.Now().UTC(),
	}
	err := c.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "doc_hash"}},
			DoUpdates: clause.AssignmentColumns([]string{"vector_ids", "processed_at"}),
		}).
		Create(&record).Error
	if err != nil {
		return apperrors.NewCacheError("record", err)
	}
	return nil
}

// SplitVectorIDs 解析存储的向量ID列表
func SplitVectorIDs(joined string) []string {
	if joined == "" {
		return nil
	}
	return strings.Split(joined, ",")
}
