package ingest

import (
	"bytes"
	"strings"

	"github.com/unidoc/unioffice/document"
	pdfextractor "github.com/unidoc/unipdf/v3/extractor"
	pdfmodel "github.com/unidoc/unipdf/v3/model"
	"go.uber.org/zap"

	"github.com/aihub/docqa-go/internal/logger"
)

// DocumentKind 文档类型
type DocumentKind string

const (
	KindText DocumentKind = "text"
	KindPDF  DocumentKind = "pdf"
	KindDocx DocumentKind = "docx"
)

// Extractor 文本提取器，将原始字节转为纯文本
type Extractor struct{}

// NewExtractor 创建文本提取器
func NewExtractor() *Extractor {
	return &Extractor{}
}

// Extract 按文档类型提取纯文本
// PDF/Word解析失败降级为空字符串，空文本在分块阶段产生零个分块
func (e *Extractor) Extract(content []byte, kind DocumentKind) string {
	switch kind {
	case KindPDF:
		return e.extractPDF(content)
	case KindDocx:
		return e.extractDocx(content)
	default:
		return decodeText(content)
	}
}

// extractPDF 按页序提取PDF文本并去除连字符换行
func (e *Extractor) extractPDF(content []byte) string {
	pdfReader, err := pdfmodel.NewPdfReader(bytes.NewReader(content))
	if err != nil {
		logger.Warn("failed to open pdf, indexing nothing", zap.Error(err))
		return ""
	}

	numPages, err := pdfReader.GetNumPages()
	if err != nil {
		logger.Warn("failed to read pdf page count, indexing nothing", zap.Error(err))
		return ""
	}

	var textBuilder strings.Builder
	for i := 1; i <= numPages; i++ {
		page, err := pdfReader.GetPage(i)
		if err != nil {
			continue
		}

		ex, err := pdfextractor.New(page)
		if err != nil {
			continue
		}

		text, err := ex.ExtractText()
		if err != nil {
			continue
		}

		textBuilder.WriteString(dehyphenate(text))
		textBuilder.WriteString("\n")
	}

	return textBuilder.String()
}

// extractDocx 提取Word文档段落文本
func (e *Extractor) extractDocx(content []byte) string {
	doc, err := document.Read(bytes.NewReader(content), int64(len(content)))
	if err != nil {
		logger.Warn("failed to open docx, indexing nothing", zap.Error(err))
		return ""
	}
	defer doc.Close()

	var textBuilder strings.Builder
	for _, para := range doc.Paragraphs() {
		for _, run := range para.Runs() {
			textBuilder.WriteString(run.Text())
		}
		textBuilder.WriteString("\n")
	}
	return textBuilder.String()
}

// decodeText 解码文本字节，非法UTF-8序列替换而不报错
func decodeText(content []byte) string {
	return strings.ToValidUTF8(string(content), "�")
}

// dehyphenate 合并被行尾连字符分割的单词
func dehyphenate(text string) string {
	text = strings.ReplaceAll(text, "-\r\n", "")
	return strings.ReplaceAll(text, "-\n", "")
}
