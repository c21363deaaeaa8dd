// Package wire 提供依赖注入配置
package wire

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strings"

	"z-article-ai-api/internal/application/article"
	"z-article-ai-api/internal/application/media"
	"z-article-ai-api/internal/application/quota"
	"z-article-ai-api/internal/config"
	"z-article-ai-api/internal/domain/repository"
	"z-article-ai-api/internal/domain/service"
	"z-article-ai-api/internal/infrastructure/imagegen"
	"z-article-ai-api/internal/infrastructure/llm"
	"z-article-ai-api/internal/infrastructure/messaging"
	"z-article-ai-api/internal/infrastructure/persistence/postgres"
	"z-article-ai-api/internal/infrastructure/persistence/redis"
	"z-article-ai-api/internal/infrastructure/storage"
	"z-article-ai-api/internal/interfaces/http/handler"
	"z-article-ai-api/pkg/logger"
)

// PostgresOnlyDataLayer 仅包含 PostgreSQL 的数据层（用于 bootstrap）
type PostgresOnlyDataLayer struct {
	PgClient     *postgres.Client
	TenantRepo   *postgres.TenantRepository
	CategoryRepo *postgres.CategoryRepository
	WriterRepo   *postgres.WriterRepository
	PatternRepo  *postgres.ImagePatternRepository
}

// Worker job-worker 进程依赖
type Worker struct {
	Consumer  *messaging.Consumer
	JobRunner *article.JobRunner
}

// ProvidePostgresClient 提供 PostgreSQL 客户端
func ProvidePostgresClient(cfg *config.Config) (*postgres.Client, func(), error) {
	client, err := postgres.NewClient(&cfg.Database.Postgres)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		client.Close()
	}
	return client, cleanup, nil
}

// ProvideRedisClient 提供 Redis 客户端
func ProvideRedisClient(cfg *config.Config) (*redis.Client, func(), error) {
	client, err := redis.NewClient(&cfg.Cache.Redis)
	if err != nil {
		return nil, nil, err
	}
	cleanup := func() {
		client.Close()
	}
	return client, cleanup, nil
}

// ProvideMessagingProducer 提供消息生产者
func ProvideMessagingProducer(redisClient *redis.Client, cfg *config.Config) *messaging.Producer {
	maxLen := cfg.Messaging.RedisStream.MaxLen
	if maxLen <= 0 {
		maxLen = 100000
	}
	return messaging.NewProducer(redisClient.Redis(), int64(maxLen))
}

// ProvideObjectStore 提供媒体对象存储
func ProvideObjectStore(ctx context.Context, cfg *config.Config) (storage.ObjectStore, error) {
	return storage.NewObjectStore(ctx, &cfg.Storage)
}

// ProvideMaterializer 提供图片转存器
func ProvideMaterializer(cfg *config.Config, store storage.ObjectStore, assets repository.MediaAssetRepository) *media.Materializer {
	return media.NewMaterializer(store, assets, media.Options{
		Prefix:   cfg.Storage.Prefix,
		MaxWidth: cfg.Pipeline.ImageMaxWidth,
		MaxBytes: cfg.Pipeline.MaxDownloadBytes,
	})
}

// errImageNotConfigured 未配置图片服务时的生成错误
var errImageNotConfigured = errors.New("image provider not configured")

// unconfiguredImages 未配置 API Key 时的占位实现，凭据检查会先于调用拦截
type unconfiguredImages struct{}

func (unconfiguredImages) GenerateImage(context.Context, string, string) (string, error) {
	return "", errImageNotConfigured
}

// ProvideImageGenerator 提供图片生成客户端，缺少 API Key 时不阻塞启动
func ProvideImageGenerator(ctx context.Context, cfg *config.Config) service.ImageGenerator {
	client, err := imagegen.NewClient(&cfg.Image)
	if err != nil {
		logger.Warn(ctx, "image generation not available, runs will fail configuration check", "error", err.Error())
		return unconfiguredImages{}
	}
	return client
}

// credentialChecker 汇总文本与图片提供方的凭据状态
type credentialChecker struct {
	llm   *llm.EinoFactory
	image bool
}

// Configured 实现 article.CredentialChecker
func (c credentialChecker) Configured(name string) bool {
	if name == article.ImageCredential {
		return c.image
	}
	return c.llm.Configured(name)
}

// ProvideCredentialChecker 提供凭据检查器
func ProvideCredentialChecker(cfg *config.Config, factory *llm.EinoFactory) article.CredentialChecker {
	return credentialChecker{llm: factory, image: strings.TrimSpace(cfg.Image.APIKey) != ""}
}

// ProvideQuotaChecker 提供 token 配额检查器
func ProvideQuotaChecker(cfg *config.Config, tenants repository.TenantRepository, usage repository.LLMUsageEventRepository) *quota.TokenQuotaChecker {
	return quota.NewTokenQuotaChecker(tenants, usage, cfg.Pipeline.DailyTokenBudget)
}

// ProvideGenerator 提供文章生成流水线
func ProvideGenerator(cfg *config.Config, deps article.Deps) *article.Generator {
	return article.NewGenerator(cfg.Pipeline, cfg.Cache.ConfigTTL, deps)
}

// ProvideJobRunner 提供异步任务执行器，重试上限与流的重投上限一致
func ProvideJobRunner(cfg *config.Config, jobs repository.JobRepository, generator *article.Generator, producer *messaging.Producer) *article.JobRunner {
	return article.NewJobRunner(jobs, generator, producer, cfg.Messaging.RedisStream.RetryLimit)
}

// ProvideHealthHandler 提供健康检查处理器
func ProvideHealthHandler(cfg *config.Config, pg *postgres.Client, redisClient *redis.Client) *handler.HealthHandler {
	return handler.NewHealthHandler(pg, redisClient, cfg.App.Version)
}

// ProvideConsumer 提供文章生成流的消费者
func ProvideConsumer(cfg *config.Config, redisClient *redis.Client) *messaging.Consumer {
	rs := cfg.Messaging.RedisStream
	group := messaging.ConsumerGroupArticleWorker
	if rs.ConsumerGroupPrefix != "" {
		group = messaging.ConsumerGroup(rs.ConsumerGroupPrefix + ":" + string(group))
	}
	return messaging.NewConsumer(redisClient.Redis(), messaging.ConsumerConfig{
		Stream:        messaging.StreamArticleGen,
		Group:         group,
		ConsumerName:  hostnameConsumerName(),
		BlockTimeout:  rs.BlockTimeout,
		ClaimInterval: rs.ClaimInterval,
		RetryLimit:    rs.RetryLimit,
		Backoff: messaging.BackoffConfig{
			Initial:    rs.RetryBackoff.Initial,
			Max:        rs.RetryBackoff.Max,
			Multiplier: rs.RetryBackoff.Multiplier,
		},
	})
}

func hostnameConsumerName() string {
	host, err := os.Hostname()
	if err != nil || host == "" {
		host = "worker"
	}
	return fmt.Sprintf("%s-%d", host, os.Getpid())
}
