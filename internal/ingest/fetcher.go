package ingest

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/minio/minio-go/v7"
	"go.uber.org/zap"

	apperrors "github.com/aihub/docqa-go/internal/errors"
	"github.com/aihub/docqa-go/internal/logger"
)

// Fetcher 文档获取器，支持本地路径、HTTP(S) URL和s3://对象地址
type Fetcher struct {
	httpClient *http.Client
	storage    *minio.Client
}

// NewFetcher 创建文档获取器，storage可为nil（不启用对象存储）
func NewFetcher(storage *minio.Client) *Fetcher {
	return &Fetcher{
		httpClient: &http.Client{Timeout: 60 * time.Second},
		storage:    storage,
	}
}

// Fetch 解析locator并返回文档原始字节
func (f *Fetcher) Fetch(ctx context.Context, locator string) ([]byte, error) {
	switch {
	case isHTTPURL(locator):
		return f.fetchURL(ctx, locator)
	case strings.HasPrefix(locator, "s3://"):
		return f.fetchObject(ctx, locator)
	default:
		content, err := os.ReadFile(locator)
		if err != nil {
			return nil, apperrors.NewFetchError(locator, err)
		}
		return content, nil
	}
}

func isHTTPURL(locator string) bool {
	u, err := url.Parse(locator)
	if err != nil {
		return false
	}
	return u.Scheme == "http" || u.Scheme == "https"
}

// fetchURL 下载远程文档到临时文件再读取
// 无论成功失败，临时文件在函数返回前都会被删除
func (f *Fetcher) fetchURL(ctx context.Context, rawURL string) ([]byte, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, apperrors.NewFetchError(rawURL, err)
	}

	resp, err := f.httpClient.Do(req)
	if err != nil {
		return nil, apperrors.NewFetchError(rawURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, apperrors.NewFetchError(rawURL, fmt.Errorf("unexpected status %d", resp.StatusCode))
	}

	tmp, err := os.CreateTemp("", "docqa-*"+suffixForLocator(rawURL))
	if err != nil {
		return nil, apperrors.NewFetchError(rawURL, err)
	}
	tmpPath := tmp.Name()
	defer func() {
		if removeErr := os.Remove(tmpPath); removeErr != nil {
			logger.Warn("failed to remove temp file",
				zap.String("path", tmpPath), zap.Error(removeErr))
		}
	}()

	if _, err := io.Copy(tmp, resp.Body); err != nil {
		tmp.Close()
		return nil, apperrors.NewFetchError(rawURL, err)
	}
	if err := tmp.Close(); err != nil {
		return nil, apperrors.NewFetchError(rawURL, err)
	}

	content, err := os.ReadFile(tmpPath)
	if err != nil {
		return nil, apperrors.NewFetchError(rawURL, err)
	}
	return content, nil
}

// fetchObject 通过MinIO读取 s3://bucket/key 形式的文档
func (f *Fetcher) fetchObject(ctx context.Context, locator string) ([]byte, error) {
	if f.storage == nil {
		return nil, apperrors.NewFetchError(locator, fmt.Errorf("object storage not configured"))
	}

	trimmed := strings.TrimPrefix(locator, "s3://")
	bucket, key, ok := strings.Cut(trimmed, "/")
	if !ok || bucket == "" || key == "" {
		return nil, apperrors.NewFetchError(locator, fmt.Errorf("invalid object locator"))
	}

	obj, err := f.storage.GetObject(ctx, bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, apperrors.NewFetchError(locator, err)
	}
	defer obj.Close()

	content, err := io.ReadAll(obj)
	if err != nil {
		return nil, apperrors.NewFetchError(locator, err)
	}
	return content, nil
}

func suffixForLocator(locator string) string {
	if ext := strings.ToLower(filepath.Ext(locatorPath(locator))); ext != "" {
		return ext
	}
	return ".tmp"
}

func locatorPath(locator string) string {
	if u, err := url.Parse(locator); err == nil && u.Path != "" {
		return u.Path
	}
	return locator
}

// KindOf 根据locator扩展名判定文档类型
func KindOf(locator string) DocumentKind {
	switch strings.ToLower(filepath.Ext(locatorPath(locator))) {
	case ".pdf":
		return KindPDF
	case ".docx":
		return KindDocx
	default:
		return KindText
	}
}
