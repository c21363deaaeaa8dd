package redis

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"
	"golang.org/x/sync/singleflight"
)

// Cache 分类、写手、图片风格的读穿缓存
type Cache struct {
	client *Client
	group  singleflight.Group
}

// NewCache 创建配置缓存
func NewCache(client *Client) *Cache {
	return &Cache{client: client}
}

// ConfigKey 租户配置记录的缓存键，kind 为 category / writer / pattern
func ConfigKey(tenantID, kind, id string) string {
	return fmt.Sprintf("cache:%s:%s:%s", tenantID, kind, id)
}

// GetOrLoadSafe 命中直接返回；未命中时同一键的并发请求只回源一次。
// loader 出错不写缓存，记录不存在的结果不会被缓存。
// Redis 不可用时降级为直接回源
func (c *Cache) GetOrLoadSafe(ctx context.Context, key string, ttl time.Duration, loader func() (interface{}, error)) ([]byte, error) {
	ctx, span := tracer.Start(ctx, "cache.GetOrLoadSafe",
		trace.WithAttributes(attribute.String("cache.key", key)))
	defer span.End()

	if val, err := c.client.rdb.Get(ctx, key).Bytes(); err == nil {
		span.SetAttributes(attribute.Bool("cache.hit", true))
		return val, nil
	} else if !IsNil(err) {
		span.RecordError(err)
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	result, err, shared := c.group.Do(key, func() (interface{}, error) {
		if val, err := c.client.rdb.Get(ctx, key).Bytes(); err == nil {
			return val, nil
		}

		record, err := loader()
		if err != nil {
			return nil, err
		}
		data, err := json.Marshal(record)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal %s: %w", key, err)
		}
		if err := c.client.rdb.Set(ctx, key, data, ttl).Err(); err != nil {
			span.RecordError(err)
		}
		return data, nil
	})
	span.SetAttributes(attribute.Bool("cache.shared", shared))
	if err != nil {
		return nil, err
	}
	return result.([]byte), nil
}
