package retrieval

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/aihub/docqa-go/internal/vectorstore"
)

type stubEmbedder struct {
	vector []float32
	err    error
}

func (s *stubEmbedder) EmbedBatch(ctx context.Context, texts []string) ([][]float32, error) {
	if s.err != nil {
		return nil, s.err
	}
	out := make([][]float32, len(texts))
	for i := range texts {
		out[i] = s.vector
	}
	return out, nil
}

func (s *stubEmbedder) Dimensions() int { return len(s.vector) }
func (s *stubEmbedder) Ready() bool     { return true }

type stubStore struct {
	vectorstore.Store
	matches []vectorstore.Match
	err     error
	gotTopK int
}

func (s *stubStore) Query(ctx context.Context, embedding []float32, topK int, namespace string) ([]vectorstore.Match, error) {
	s.gotTopK = topK
	if s.err != nil {
		return nil, s.err
	}
	return s.matches, nil
}

type stubAnswerer struct {
	answer     string
	err        error
	gotQuery   string
	gotContext string
}

func (s *stubAnswerer) Answer(ctx context.Context, query, contextText string) (string, error) {
	s.gotQuery = query
	s.gotContext = contextText
	return s.answer, s.err
}

func (s *stubAnswerer) Ready() bool { return true }

func TestPipeline_AnswerAssemblesContextInScoreOrder(t *testing.T) {
	store := &stubStore{matches: []vectorstore.Match{
		{ID: "h_0", Text: "first chunk", Score: 0.82},
		{ID: "h_1", Text: "second chunk", Score: 0.41},
	}}
	answerer := &stubAnswerer{answer: "the answer"}
	p := NewPipeline(&stubEmbedder{vector: []float32{1}}, store, answerer, "ns", 5)

	result := p.Answer(context.Background(), "what is it?")

	assert.Equal(t, "the answer", result)
	assert.Equal(t, "what is it?", answerer.gotQuery)
	// 按降序拼接，分隔符为空行
	assert.Equal(t, "first chunk\n\nsecond chunk", answerer.gotContext)
	assert.Equal(t, 5, store.gotTopK)
}

func TestPipeline_AnswerSynthesisFailureDegrades(t *testing.T) {
	store := &stubStore{matches: []vectorstore.Match{{Text: "chunk", Score: 0.9}}}
	answerer := &stubAnswerer{err: errors.New("llm down")}
	p := NewPipeline(&stubEmbedder{vector: []float32{1}}, store, answerer, "ns", 5)

	assert.Equal(t, PlaceholderFailed, p.Answer(context.Background(), "q"))
}

func TestPipeline_EmptyAnswerDegrades(t *testing.T) {
	store := &stubStore{}
	answerer := &stubAnswerer{answer: "   "}
	p := NewPipeline(&stubEmbedder{vector: []float32{1}}, store, answerer, "ns", 5)

	assert.Equal(t, PlaceholderEmpty, p.Answer(context.Background(), "q"))
}

func TestPipeline_EmbeddingFailureDegrades(t *testing.T) {
	p := NewPipeline(&stubEmbedder{err: errors.New("down")}, &stubStore{}, &stubAnswerer{answer: "x"}, "ns", 5)

	assert.Equal(t, PlaceholderFailed, p.Answer(context.Background(), "q"))
}

func TestPipeline_QueryFailureDegrades(t *testing.T) {
	store := &stubStore{err: errors.New("store down")}
	p := NewPipeline(&stubEmbedder{vector: []float32{1}}, store, &stubAnswerer{answer: "x"}, "ns", 5)

	assert.Equal(t, PlaceholderFailed, p.Answer(context.Background(), "q"))
}

func TestAssembleContext(t *testing.T) {
	assert.Equal(t, "", AssembleContext(nil))

	matches := []vectorstore.Match{
		{Text: "a", Score: 0.9},
		{Text: "b", Score: 0.8},
		{Text: "c", Score: 0.1},
	}
	assert.Equal(t, "a\n\nb\n\nc", AssembleContext(matches))
}

func TestNewPipeline_DefaultTopK(t *testing.T) {
	store := &stubStore{}
	p := NewPipeline(&stubEmbedder{vector: []float32{1}}, store, &stubAnswerer{answer: "x"}, "ns", 0)
	p.Answer(context.Background(), "q")
	require.Equal(t, 5, store.gotTopK)
}
