package storage

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"z-article-ai-api/internal/config"
)

// LocalStore 本地文件存储，开发环境由 api-gateway 以静态目录对外提供
type LocalStore struct {
	dir       string
	publicURL string
}

// NewLocalStore 创建本地存储
func NewLocalStore(cfg *config.LocalConfig) (*LocalStore, error) {
	if cfg.Dir == "" {
		return nil, errors.New("local storage dir is required")
	}
	return &LocalStore{dir: cfg.Dir, publicURL: cfg.PublicURL}, nil
}

// Put 写入文件
func (s *LocalStore) Put(ctx context.Context, key string, body []byte, _ string) (string, error) {
	_, span := tracer.Start(ctx, "storage.Local.Put")
	defer span.End()

	path := filepath.Join(s.dir, filepath.FromSlash(key))
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to create dir: %w", err)
	}
	if err := os.WriteFile(path, body, 0o644); err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("failed to write file: %w", err)
	}
	return joinURL(s.publicURL, key), nil
}

// Dir 存储根目录
func (s *LocalStore) Dir() string {
	return s.dir
}
