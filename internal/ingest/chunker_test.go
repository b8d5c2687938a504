package ingest

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func tokensText(n int) string {
	tokens := make([]string, n)
	for i := range tokens {
		tokens[i] = fmt.Sprintf("t%d", i)
	}
	return strings.Join(tokens, " ")
}

func TestChunker_EmptyText(t *testing.T) {
	c := NewChunker(500, 50)
	assert.Empty(t, c.Split(""))
	assert.Empty(t, c.Split("   \n\t  "))
}

func TestChunker_SingleChunk(t *testing.T) {
	c := NewChunker(500, 50)
	chunks := c.Split(tokensText(100))

	require.Len(t, chunks, 1)
	assert.Equal(t, 0, chunks[0].TokenStart)
	assert.Equal(t, 100, chunks[0].TokenEnd)
	assert.Equal(t, 0, chunks[0].Index)
}

func TestChunker_WindowAndOverlap(t *testing.T) {
	// N=1000, W=500, O=50, 步长450 → 起点 0, 450, 900
	c := NewChunker(500, 50)
	chunks := c.Split(tokensText(1000))

	require.Len(t, chunks, 3)
	assert.Equal(t, 0, chunks[0].TokenStart)
	assert.Equal(t, 500, chunks[0].TokenEnd)
	assert.Equal(t, 450, chunks[1].TokenStart)
	assert.Equal(t, 950, chunks[1].TokenEnd)
	assert.Equal(t, 900, chunks[2].TokenStart)
	assert.Equal(t, 1000, chunks[2].TokenEnd)
}

func TestChunker_CoverageProperty(t *testing.T) {
	cases := []struct {
		tokens  int
		size    int
		overlap int
	}{
		{1, 10, 2},
		{10, 10, 2},
		{11, 10, 2},
		{137, 32, 8},
		{1000, 500, 50},
	}

	for _, tc := range cases {
		c := NewChunker(tc.size, tc.overlap)
		chunks := c.Split(tokensText(tc.tokens))
		require.NotEmpty(t, chunks, "tokens=%d", tc.tokens)

		// 覆盖: 首块从0开始，末块到N结束，无空洞
		assert.Equal(t, 0, chunks[0].TokenStart)
		assert.Equal(t, tc.tokens, chunks[len(chunks)-1].TokenEnd)

		step := tc.size - tc.overlap
		for i, chunk := range chunks {
			assert.Equal(t, i, chunk.Index)
			assert.Equal(t, i*step, chunk.TokenStart)
			if i > 0 {
				// 相邻分块重叠恰好overlap个词元
				overlap := chunks[i-1].TokenEnd - chunk.TokenStart
				if chunks[i-1].TokenEnd < tc.tokens {
					assert.Equal(t, tc.overlap, overlap)
				}
				assert.LessOrEqual(t, chunk.TokenStart, chunks[i-1].TokenEnd)
			}
		}
	}
}

func TestChunker_TextMatchesTokenRange(t *testing.T) {
	c := NewChunker(4, 1)
	chunks := c.Split("a b c d e f")

	require.Len(t, chunks, 2)
	assert.Equal(t, "a b c d", chunks[0].Text)
	assert.Equal(t, "d e f", chunks[1].Text)
}

func TestNewChunker_InvalidArgs(t *testing.T) {
	// 非法参数回退到可用默认值
	c := NewChunker(0, -1)
	chunks := c.Split(tokensText(10))
	require.Len(t, chunks, 1)

	c = NewChunker(10, 10)
	chunks = c.Split(tokensText(30))
	assert.NotEmpty(t, chunks)
	assert.Equal(t, 30, chunks[len(chunks)-1].TokenEnd)
}
