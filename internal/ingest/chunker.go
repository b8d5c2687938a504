package ingest

import "strings"

// Chunk 表示一段带词元范围的文本分块
type Chunk struct {
	ParentHash string
	Index      int
	TokenStart int
	TokenEnd   int
	Text       string
}

// Chunker 词元窗口分块器
type Chunker struct {
	chunkSize    int
	chunkOverlap int
}

// NewChunker 创建分块器，窗口与重叠非法时回退默认值
func NewChunker(chunkSize, overlap int) *Chunker {
	if chunkSize <= 0 {
		chunkSize = 500
	}
	if overlap < 0 {
		overlap = 0
	}
	if overlap >= chunkSize {
		overlap = chunkSize / 4
	}
	return &Chunker{
		chunkSize:    chunkSize,
		chunkOverlap: overlap,
	}
}

// Split 将文本按词元窗口切分为重叠分块
// 相邻分块重叠chunkOverlap个词元，分块范围完整覆盖全部词元
func (c *Chunker) Split(text string) []Chunk {
	tokens := Tokenize(text)
	if len(tokens) == 0 {
		return nil
	}

	step := c.chunkSize - c.chunkOverlap
	if step <= 0 {
		step = c.chunkSize
	}

	var chunks []Chunk
	for start := 0; start < len(tokens); start += step {
		end := start + c.chunkSize
		if end > len(tokens) {
			end = len(tokens)
		}
		chunks = append(chunks, Chunk{
			Index:      len(chunks),
			TokenStart: start,
			TokenEnd:   end,
			Text:       strings.Join(tokens[start:end], " "),
		})

		if end == len(tokens) {
			break
		}
	}

	return chunks
}

// Tokenize 将文本切分为空白分隔的词元序列
func Tokenize(text string) []string {
	return strings.Fields(text)
}
