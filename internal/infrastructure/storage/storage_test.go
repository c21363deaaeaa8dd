package storage

import (
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"z-article-ai-api/internal/config"
)

func TestLocalStore_Put(t *testing.T) {
	dir := t.TempDir()
	store, err := NewLocalStore(&config.LocalConfig{Dir: dir, PublicURL: "http://localhost:8080/media/"})
	require.NoError(t, err)

	url, err := store.Put(context.Background(), "media/t1/2026/03/1-abcd1234.webp", []byte("RIFF"), "image/webp")
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:8080/media/media/t1/2026/03/1-abcd1234.webp", url)

	data, err := os.ReadFile(filepath.Join(dir, "media", "t1", "2026", "03", "1-abcd1234.webp"))
	require.NoError(t, err)
	assert.Equal(t, "RIFF", string(data))
}

func TestR2Store_Put(t *testing.T) {
	var gotMethod, gotPath, gotType string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotMethod = r.Method
		gotPath = r.URL.Path
		gotType = r.Header.Get("Content-Type")
		w.Header().Set("ETag", `"abc"`)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	store, err := NewR2Store(context.Background(), &config.R2Config{
		AccessKeyID:     "ak",
		SecretAccessKey: "sk",
		Bucket:          "articles",
		PublicURL:       "https://img.example.com",
		Endpoint:        srv.URL,
	})
	require.NoError(t, err)

	url, err := store.Put(context.Background(), "media/t1/2026/03/x.webp", []byte("RIFF"), "image/webp")
	require.NoError(t, err)
	assert.Equal(t, "https://img.example.com/media/t1/2026/03/x.webp", url)
	assert.Equal(t, http.MethodPut, gotMethod)
	assert.Equal(t, "/articles/media/t1/2026/03/x.webp", gotPath)
	assert.Equal(t, "image/webp", gotType)
}

func TestNewObjectStore(t *testing.T) {
	store, err := NewObjectStore(context.Background(), &config.StorageConfig{Driver: "local", Local: config.LocalConfig{Dir: t.TempDir()}})
	require.NoError(t, err)
	assert.IsType(t, &LocalStore{}, store)

	_, err = NewObjectStore(context.Background(), &config.StorageConfig{Driver: "ftp"})
	assert.Error(t, err)

	_, err = NewObjectStore(context.Background(), &config.StorageConfig{Driver: "r2"})
	assert.Error(t, err)
}
