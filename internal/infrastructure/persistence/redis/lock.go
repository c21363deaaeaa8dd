package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
)

// ErrLockHeld 锁已被其他持有者占用
var ErrLockHeld = errors.New("redis: lock held by another owner")

// releaseScript 只有持有者本人才能释放
var releaseScript = redis.NewScript(`
if redis.call('GET', KEYS[1]) == ARGV[1] then
	return redis.call('DEL', KEYS[1])
end
return 0
`)

// Locker 基于 SET NX 的互斥锁
type Locker struct {
	client *Client
}

// NewLocker 创建锁服务
func NewLocker(client *Client) *Locker {
	return &Locker{client: client}
}

// GenerationLockKey 同一租户同一分类的生成互斥键
func GenerationLockKey(tenantID, categoryID string) string {
	return fmt.Sprintf("lock:article-gen:%s:%s", tenantID, categoryID)
}

// Acquire 获取锁，返回释放函数；锁被占用时返回 ErrLockHeld
func (l *Locker) Acquire(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error) {
	ctx, span := tracer.Start(ctx, "redis.Lock.Acquire")
	span.SetAttributes(attribute.String("lock.key", key))
	defer span.End()

	token := uuid.NewString()
	ok, err := l.client.rdb.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to acquire lock: %w", err)
	}
	span.SetAttributes(attribute.Bool("lock.acquired", ok))
	if !ok {
		return nil, ErrLockHeld
	}

	release := func(ctx context.Context) error {
		if err := releaseScript.Run(ctx, l.client.rdb, []string{key}, token).Err(); err != nil {
			return fmt.Errorf("failed to release lock: %w", err)
		}
		return nil
	}
	return release, nil
}
