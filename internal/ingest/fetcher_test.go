package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	apperrors "github.com/aihub/docqa-go/internal/errors"
)

func TestFetcher_LocalFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "doc.txt")
	require.NoError(t, os.WriteFile(path, []byte("local content"), 0o644))

	f := NewFetcher(nil)
	content, err := f.Fetch(context.Background(), path)

	require.NoError(t, err)
	assert.Equal(t, []byte("local content"), content)
}

func TestFetcher_LocalFileMissing(t *testing.T) {
	f := NewFetcher(nil)
	_, err := f.Fetch(context.Background(), filepath.Join(t.TempDir(), "missing.txt"))

	require.Error(t, err)
	appErr := apperrors.GetAppError(err)
	assert.Equal(t, apperrors.ErrCodeFetchFailed, appErr.Code)
}

func TestFetcher_URL(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("remote content"))
	}))
	defer server.Close()

	f := NewFetcher(nil)
	content, err := f.Fetch(context.Background(), server.URL+"/doc.txt")

	require.NoError(t, err)
	assert.Equal(t, []byte("remote content"), content)
}

func TestFetcher_URLNonSuccessStatus(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	defer server.Close()

	f := NewFetcher(nil)
	_, err := f.Fetch(context.Background(), server.URL+"/doc.pdf")

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeFetchFailed, apperrors.GetAppError(err).Code)
}

func TestFetcher_URLUnreachable(t *testing.T) {
	f := NewFetcher(nil)
	_, err := f.Fetch(context.Background(), "http://127.0.0.1:1/doc.txt")

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeFetchFailed, apperrors.GetAppError(err).Code)
}

func TestFetcher_TempFileCleanup(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte("payload"))
	}))
	defer server.Close()

	f := NewFetcher(nil)
	_, err := f.Fetch(context.Background(), server.URL+"/doc.txt")
	require.NoError(t, err)

	// 下载用的临时文件在返回前已删除
	leftovers, globErr := filepath.Glob(filepath.Join(os.TempDir(), "docqa-*"))
	require.NoError(t, globErr)
	assert.Empty(t, leftovers)
}

func TestFetcher_ObjectStorageNotConfigured(t *testing.T) {
	f := NewFetcher(nil)
	_, err := f.Fetch(context.Background(), "s3://bucket/key.txt")

	require.Error(t, err)
	assert.Equal(t, apperrors.ErrCodeFetchFailed, apperrors.GetAppError(err).Code)
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, KindPDF, KindOf("/tmp/report.PDF"))
	assert.Equal(t, KindPDF, KindOf("https://example.com/a/report.pdf?sig=x"))
	assert.Equal(t, KindDocx, KindOf("notes.docx"))
	assert.Equal(t, KindText, KindOf("readme.md"))
	assert.Equal(t, KindText, KindOf("https://example.com/plain"))
}
