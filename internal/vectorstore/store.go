package vectorstore

import "context"

// UpsertBatchLimit 单次upsert调用的最大记录数
const UpsertBatchLimit = 100

// Record 待写入的向量记录
// ID由文档指纹和分块序号确定性派生，覆盖写幂等
type Record struct {
	ID        string
	Embedding []float32
	Text      string
	DocHash   string
}

// Match 检索命中结果
type Match struct {
	ID      string
	Text    string
	DocHash string
	Score   float32
}

// Store 向量存储抽象
type Store interface {
	// Upsert 批量写入，内部按UpsertBatchLimit分批，相同ID覆盖
	Upsert(ctx context.Context, records []Record, namespace string) error
	// Query 返回按相似度降序排列的至多topK条命中
	Query(ctx context.Context, embedding []float32, topK int, namespace string) ([]Match, error)
	// Purge 清空命名空间内全部向量，仅由显式生命周期钩子调用
	Purge(ctx context.Context, namespace string) error
	Ready() bool
}
