package messaging

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"z-article-ai-api/pkg/logger"
	"z-article-ai-api/pkg/metrics"
)

// MessageHandler 消息处理函数
type MessageHandler func(ctx context.Context, msg *Message) error

// errMalformed 无法解析的消息，直接确认丢弃
var errMalformed = errors.New("malformed stream entry")

// Consumer 生成任务消费者，失败消息留在 PEL 中按退避重投，超过上限进入死信流
type Consumer struct {
	client        *redis.Client
	stream        Stream
	group         ConsumerGroup
	consumerName  string
	blockTimeout  time.Duration
	claimInterval time.Duration
	reclaimIdle   time.Duration
	retryLimit    int
	backoff       BackoffConfig

	handlers map[string]MessageHandler
	mu       sync.RWMutex
	running  bool
	stopCh   chan struct{}
}

// ConsumerConfig 消费者配置
type ConsumerConfig struct {
	Stream        Stream
	Group         ConsumerGroup
	ConsumerName  string
	BlockTimeout  time.Duration
	ClaimInterval time.Duration
	RetryLimit    int
	Backoff       BackoffConfig
}

// NewConsumer 创建消费者，零值字段使用默认值
func NewConsumer(client *redis.Client, cfg ConsumerConfig) *Consumer {
	if cfg.BlockTimeout <= 0 {
		cfg.BlockTimeout = 5 * time.Second
	}
	if cfg.ClaimInterval <= 0 {
		cfg.ClaimInterval = 30 * time.Second
	}
	if cfg.RetryLimit <= 0 {
		cfg.RetryLimit = 3
	}
	if cfg.Backoff.Initial <= 0 {
		cfg.Backoff = DefaultBackoffConfig()
	}
	reclaimIdle := 2 * cfg.Backoff.Max
	if reclaimIdle < 5*time.Minute {
		reclaimIdle = 5 * time.Minute
	}

	return &Consumer{
		client:        client,
		stream:        cfg.Stream,
		group:         cfg.Group,
		consumerName:  cfg.ConsumerName,
		blockTimeout:  cfg.BlockTimeout,
		claimInterval: cfg.ClaimInterval,
		reclaimIdle:   reclaimIdle,
		retryLimit:    cfg.RetryLimit,
		backoff:       cfg.Backoff,
		handlers:      make(map[string]MessageHandler),
		stopCh:        make(chan struct{}),
	}
}

// RegisterHandler 按消息类型注册处理器
func (c *Consumer) RegisterHandler(msgType string, handler MessageHandler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.handlers[msgType] = handler
}

// Start 创建消费者组并在后台开始消费
func (c *Consumer) Start(ctx context.Context) error {
	c.mu.Lock()
	if c.running {
		c.mu.Unlock()
		return fmt.Errorf("consumer %s already running", c.consumerName)
	}
	c.running = true
	c.mu.Unlock()

	err := c.client.XGroupCreateMkStream(ctx, string(c.stream), string(c.group), "0").Err()
	if err != nil && !strings.HasPrefix(err.Error(), "BUSYGROUP") {
		return fmt.Errorf("failed to create consumer group: %w", err)
	}

	go c.loop(ctx)
	return nil
}

// Stop 停止消费
func (c *Consumer) Stop() {
	c.mu.Lock()
	defer c.mu.Unlock()
	if c.running {
		close(c.stopCh)
		c.running = false
	}
}

func (c *Consumer) stopped(ctx context.Context) bool {
	select {
	case <-ctx.Done():
		return true
	case <-c.stopCh:
		return true
	default:
		return false
	}
}

func (c *Consumer) loop(ctx context.Context) {
	log := logger.FromContext(ctx)
	log.Info("article job consumer started", "stream", c.stream, "group", c.group, "consumer", c.consumerName)
	defer log.Info("article job consumer stopped", "consumer", c.consumerName)

	lastReclaim := time.Now().Add(-c.claimInterval)
	for !c.stopped(ctx) {
		c.retryDue(ctx)
		if time.Since(lastReclaim) >= c.claimInterval {
			c.reclaimStale(ctx)
			lastReclaim = time.Now()
		}

		streams, err := c.client.XReadGroup(ctx, &redis.XReadGroupArgs{
			Group:    string(c.group),
			Consumer: c.consumerName,
			Streams:  []string{string(c.stream), ">"},
			Count:    10,
			Block:    c.blockTimeout,
		}).Result()
		switch {
		case errors.Is(err, redis.Nil):
			continue
		case err != nil:
			if ctx.Err() != nil {
				return
			}
			log.Error("failed to read article job stream", "error", err)
			time.Sleep(time.Second)
			continue
		}

		for _, s := range streams {
			for _, entry := range s.Messages {
				c.process(ctx, entry)
			}
		}
	}
}

// decode 从流条目的 data 字段解析消息
func decode(entry redis.XMessage) (*Message, error) {
	raw, ok := entry.Values["data"].(string)
	if !ok {
		return nil, errMalformed
	}
	var msg Message
	if err := json.Unmarshal([]byte(raw), &msg); err != nil {
		return nil, fmt.Errorf("%w: %v", errMalformed, err)
	}
	return &msg, nil
}

// messageContext 把租户、任务、请求与链路 id 注入日志上下文
func messageContext(ctx context.Context, msg *Message) context.Context {
	fields := []struct {
		key   logger.ContextKey
		value string
	}{
		{logger.TenantIDKey, msg.TenantID},
		{logger.JobIDKey, msg.ID},
		{logger.RequestIDKey, msg.GetMetadata("request_id")},
		{logger.TraceIDKey, msg.GetMetadata("trace_id")},
	}
	for _, f := range fields {
		if f.value != "" {
			ctx = logger.WithContext(ctx, f.key, f.value)
		}
	}
	return ctx
}

func (c *Consumer) process(ctx context.Context, entry redis.XMessage) {
	ctx, span := tracer.Start(ctx, "consumer.process",
		trace.WithAttributes(
			attribute.String("stream", string(c.stream)),
			attribute.String("stream.entry_id", entry.ID),
		))
	defer span.End()

	msg, err := decode(entry)
	if err != nil {
		logger.FromContext(ctx).Error("dropping stream entry", "error", err, "entry_id", entry.ID)
		c.ack(ctx, entry.ID)
		return
	}

	ctx = messageContext(ctx, msg)
	span.SetAttributes(
		attribute.String("message.id", msg.ID),
		attribute.String("message.type", msg.Type),
		attribute.String("tenant_id", msg.TenantID),
	)

	c.mu.RLock()
	handler, ok := c.handlers[msg.Type]
	c.mu.RUnlock()
	if !ok {
		logger.FromContext(ctx).Warn("no handler for message type", "type", msg.Type)
		c.ack(ctx, entry.ID)
		return
	}

	if err := dispatch(ctx, handler, msg); err != nil {
		span.RecordError(err)
		logger.FromContext(ctx).Error("article job handler failed", "error", err, "entry_id", entry.ID)
		metrics.RedisStreamProcessed.WithLabelValues(string(c.stream), "failed").Inc()
		c.onFailure(ctx, entry.ID, msg, err)
		return
	}

	metrics.RedisStreamProcessed.WithLabelValues(string(c.stream), "success").Inc()
	c.ack(ctx, entry.ID)
}

// dispatch 调用处理器，panic 转为错误，消息随后走普通的重试与死信路径
func dispatch(ctx context.Context, handler MessageHandler, msg *Message) (err error) {
	defer func() {
		if r := recover(); r != nil {
			logger.FromContext(ctx).Error("article job handler panicked",
				"panic", r,
				"stack", string(debug.Stack()),
			)
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()
	return handler(ctx, msg)
}

func (c *Consumer) ack(ctx context.Context, id string) {
	if err := c.client.XAck(ctx, string(c.stream), string(c.group), id).Err(); err != nil {
		logger.FromContext(ctx).Error("failed to ack stream entry", "error", err, "entry_id", id)
	}
}

// onFailure 投递次数达到上限时转入死信流，否则留在 PEL 等待 retryDue 重投
func (c *Consumer) onFailure(ctx context.Context, entryID string, msg *Message, cause error) {
	deliveries := c.deliveries(ctx, entryID)
	if deliveries >= c.retryLimit {
		logger.FromContext(ctx).Warn("article job moved to DLQ", "job_id", msg.ID, "deliveries", deliveries)
		c.deadLetter(ctx, msg, cause)
		c.ack(ctx, entryID)
		return
	}
	logger.FromContext(ctx).Info("article job left pending for retry", "job_id", msg.ID, "deliveries", deliveries)
}

func (c *Consumer) deliveries(ctx context.Context, entryID string) int {
	pending, err := c.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream: string(c.stream),
		Group:  string(c.group),
		Start:  entryID,
		End:    entryID,
		Count:  1,
	}).Result()
	if err != nil || len(pending) == 0 {
		return 0
	}
	return int(pending[0].RetryCount)
}

func (c *Consumer) deadLetter(ctx context.Context, msg *Message, cause error) {
	data, _ := json.Marshal(map[string]interface{}{
		"original_stream": string(c.stream),
		"data":            msg,
		"error":           cause.Error(),
		"failed_at":       time.Now().Unix(),
	})
	err := c.client.XAdd(ctx, &redis.XAddArgs{
		Stream: c.stream.DLQStream(),
		Values: map[string]interface{}{"data": string(data)},
	}).Err()
	if err != nil {
		logger.FromContext(ctx).Error("failed to write DLQ", "error", err, "job_id", msg.ID)
		return
	}
	metrics.RedisStreamProcessed.WithLabelValues(string(c.stream), "dlq").Inc()
}

// pending 查询 PEL，consumer 为空时查询整个组
func (c *Consumer) pending(ctx context.Context, consumer string) []redis.XPendingExt {
	entries, err := c.client.XPendingExt(ctx, &redis.XPendingExtArgs{
		Stream:   string(c.stream),
		Group:    string(c.group),
		Start:    "-",
		End:      "+",
		Count:    20,
		Consumer: consumer,
	}).Result()
	if err != nil && !errors.Is(err, redis.Nil) {
		logger.FromContext(ctx).Error("failed to query pending article jobs", "error", err)
	}
	return entries
}

// claim 认领条目到本消费者；exhausted 为 true 时直接转入死信流
func (c *Consumer) claim(ctx context.Context, id string, minIdle time.Duration, exhausted bool) {
	claimed, err := c.client.XClaim(ctx, &redis.XClaimArgs{
		Stream:   string(c.stream),
		Group:    string(c.group),
		Consumer: c.consumerName,
		MinIdle:  minIdle,
		Messages: []string{id},
	}).Result()
	if err != nil {
		logger.FromContext(ctx).Error("failed to claim article job", "error", err, "entry_id", id)
		return
	}

	for _, entry := range claimed {
		if !exhausted {
			c.process(ctx, entry)
			continue
		}
		if msg, err := decode(entry); err == nil {
			c.deadLetter(ctx, msg, fmt.Errorf("job %s exceeded %d deliveries", msg.ID, c.retryLimit))
		}
		c.ack(ctx, entry.ID)
	}
}

// retryDue 重投本消费者名下已过退避时间的失败任务
func (c *Consumer) retryDue(ctx context.Context) {
	for _, p := range c.pending(ctx, c.consumerName) {
		deliveries := int(p.RetryCount)
		if deliveries >= c.retryLimit {
			c.claim(ctx, p.ID, 0, true)
			continue
		}
		if wait := c.backoff.CalculateBackoff(deliveries); p.Idle >= wait {
			c.claim(ctx, p.ID, wait, false)
		}
	}
}

// reclaimStale 接管其他消费者长时间未确认的任务（例如进程崩溃的 worker）
func (c *Consumer) reclaimStale(ctx context.Context) {
	for _, p := range c.pending(ctx, "") {
		if p.Consumer == c.consumerName || p.Idle < c.reclaimIdle {
			continue
		}
		c.claim(ctx, p.ID, c.reclaimIdle, int(p.RetryCount) >= c.retryLimit)
	}
}

// MonitorDLQ 定期上报消费积压并在死信流超过阈值时告警
func (c *Consumer) MonitorDLQ(ctx context.Context, alertThreshold int64) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.reportLag(ctx)
			dlq := c.stream.DLQStream()
			if n, err := c.client.XLen(ctx, dlq).Result(); err == nil && n > alertThreshold {
				logger.FromContext(ctx).Warn("article job DLQ above threshold", "stream", dlq, "count", n)
			}
		}
	}
}

func (c *Consumer) reportLag(ctx context.Context) {
	groups, err := c.client.XInfoGroups(ctx, string(c.stream)).Result()
	if err != nil {
		return
	}
	for _, g := range groups {
		if g.Name == string(c.group) {
			metrics.RedisStreamLag.WithLabelValues(string(c.stream), g.Name).Set(float64(g.Lag))
		}
	}
}
