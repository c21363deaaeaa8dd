// Package storage 提供图片等媒体文件的持久化存储
package storage

import (
	"context"
	"fmt"
	"strings"

	"z-article-ai-api/internal/config"
)

// ObjectStore 对象存储，写入后返回可公开访问的 URL
type ObjectStore interface {
	Put(ctx context.Context, key string, body []byte, contentType string) (string, error)
}

// NewObjectStore 按配置选择存储驱动
func NewObjectStore(ctx context.Context, cfg *config.StorageConfig) (ObjectStore, error) {
	switch strings.ToLower(cfg.Driver) {
	case "r2", "s3":
		return NewR2Store(ctx, &cfg.R2)
	case "", "local":
		return NewLocalStore(&cfg.Local)
	default:
		return nil, fmt.Errorf("unknown storage driver: %s", cfg.Driver)
	}
}

func joinURL(base, key string) string {
	return strings.TrimRight(base, "/") + "/" + strings.TrimLeft(key, "/")
}
