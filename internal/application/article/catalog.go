package article

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"z-article-ai-api/internal/domain/entity"
	"z-article-ai-api/internal/domain/repository"
	"z-article-ai-api/internal/infrastructure/persistence/redis"
)

// ConfigCache 配置读取缓存，实现见 redis.Cache
type ConfigCache interface {
	GetOrLoadSafe(ctx context.Context, key string, ttl time.Duration, loader func() (interface{}, error)) ([]byte, error)
}

var errConfigNotFound = errors.New("config record not found")

// catalog 读取分类、写手与图片风格
type catalog struct {
	categories repository.CategoryRepository
	writers    repository.WriterRepository
	patterns   repository.ImagePatternRepository
	cache      ConfigCache
	ttl        time.Duration
}

func (c *catalog) category(ctx context.Context, tenantID, id string) (*entity.Category, error) {
	return loadCached(ctx, c.cache, c.ttl, redis.ConfigKey(tenantID, "category", id), func(ctx context.Context) (*entity.Category, error) {
		return c.categories.GetByID(ctx, tenantID, id)
	})
}

func (c *catalog) writer(ctx context.Context, tenantID, id string) (*entity.Writer, error) {
	return loadCached(ctx, c.cache, c.ttl, redis.ConfigKey(tenantID, "writer", id), func(ctx context.Context) (*entity.Writer, error) {
		return c.writers.GetByID(ctx, tenantID, id)
	})
}

func (c *catalog) pattern(ctx context.Context, tenantID, id string) (*entity.ImagePattern, error) {
	return loadCached(ctx, c.cache, c.ttl, redis.ConfigKey(tenantID, "image_pattern", id), func(ctx context.Context) (*entity.ImagePattern, error) {
		return c.patterns.GetByID(ctx, tenantID, id)
	})
}

// loadCached 不存在的记录以 errConfigNotFound 返回，不会写入缓存
func loadCached[T any](ctx context.Context, cache ConfigCache, ttl time.Duration, key string, load func(ctx context.Context) (*T, error)) (*T, error) {
	loadOne := func() (*T, error) {
		v, err := load(ctx)
		if err != nil {
			return nil, err
		}
		if v == nil {
			return nil, errConfigNotFound
		}
		return v, nil
	}

	if cache == nil {
		return loadOne()
	}

	data, err := cache.GetOrLoadSafe(ctx, key, ttl, func() (interface{}, error) {
		return loadOne()
	})
	if err != nil {
		return nil, err
	}

	var out T
	if err := json.Unmarshal(data, &out); err != nil {
		return nil, err
	}
	return &out, nil
}
