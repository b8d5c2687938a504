package vectorstore

import (
	"context"
	"math"
	"sort"
	"sync"
)

// memoryStore 进程内向量存储，默认provider，也用于测试
type memoryStore struct {
	mu         sync.RWMutex
	namespaces map[string]map[string]Record
}

// NewMemoryStore 创建进程内向量存储
func NewMemoryStore() Store {
	return &memoryStore{
		namespaces: make(map[string]map[string]Record),
	}
}

func (s *memoryStore) Upsert(ctx context.Context, records []Record, namespace string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	ns, ok := s.namespaces[namespace]
	if !ok {
		ns = make(map[string]Record)
		s.namespaces[namespace] = ns
	}
	for _, rec := range records {
		ns[rec.ID] = rec
	}
	return nil
}

func (s *memoryStore) Query(ctx context.Context, embedding []float32, topK int, namespace string) ([]Match, error) {
	if topK <= 0 || len(embedding) == 0 {
		return nil, nil
	}

	s.mu.RLock()
	defer s.mu.RUnlock()

	ns := s.namespaces[namespace]
	matches := make([]Match, 0, len(ns))
	for _, rec := range ns {
		matches = append(matches, Match{
			ID:      rec.ID,
			Text:    rec.Text,
			DocHash: rec.DocHash,
			Score:   cosineSimilarity(embedding, rec.Embedding),
		})
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].Score > matches[j].Score
	})
	if len(matches) > topK {
		matches = matches[:topK]
	}
	return matches, nil
}

func (s *memoryStore) Purge(ctx context.Context, namespace string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.namespaces, namespace)
	return nil
}

func (s *memoryStore) Ready() bool {
	return true
}

func cosineSimilarity(a, b []float32) float32 {
	if len(a) == 0 || len(a) != len(b) {
		return 0
	}
	var dot, normA, normB float64
	for i := range a {
		dot += float64(a[i]) * float64(b[i])
		normA += float64(a[i]) * float64(a[i])
		normB += float64(b[i]) * float64(b[i])
	}
	if normA == 0 || normB == 0 {
		return 0
	}
	return float32(dot / (math.Sqrt(normA) * math.Sqrt(normB)))
}
