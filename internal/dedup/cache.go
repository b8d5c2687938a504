package dedup

import (
	"context"
	"time"
)

// Cache 内容指纹去重缓存
// exists/record是两次独立调用而非原子操作，并发入库相同内容可能
// 各自执行完整流程；向量ID确定性派生保证重复写入收敛到同一状态
type Cache interface {
	// Exists 检查指纹是否已处理（主键点查）
	Exists(ctx context.Context, docHash string) (bool, error)
	// Record 记录指纹对应的向量ID列表，插入或整体替换，幂等
	Record(ctx context.Context, docHash string, vectorIDs []string) error
}

// ProcessedDoc 去重记录表
type ProcessedDoc struct {
	DocHash     string    `gorm:"column:doc_hash;primaryKey;size:64"`
	VectorIDs   string    `gorm:"column:vector_ids;type:text"`
	ProcessedAt time.Time `gorm:"column:processed_at"`
}

// TableName 指定表名
func (ProcessedDoc) TableName() string {
	return "processed_docs"
}
