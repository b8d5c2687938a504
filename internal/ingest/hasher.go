package ingest

import (
	"crypto/sha256"
	"encoding/hex"
	"fmt"
)

// ContentHash 计算文档原始字节的SHA-256指纹，作为去重主键
func ContentHash(content []byte) string {
	sum := sha256.Sum256(content)
	return hex.EncodeToString(sum[:])
}

// VectorID 根据文档指纹和分块序号生成确定性的向量ID
// 相同内容重复入库时生成相同ID，向量存储按覆盖写处理
func VectorID(docHash string, index int) string {
	return fmt.Sprintf("%s_%d", docHash, index)
}
