//go:build !wireinject
// +build !wireinject

// 注入器的展开结果，与 wire.go 保持一致；修改 provider 后运行 go generate 重新生成

//go:generate go run -mod=mod github.com/google/wire/cmd/wire

package wire

import (
	"context"

	"z-article-ai-api/internal/application/article"
	"z-article-ai-api/internal/application/quota"
	"z-article-ai-api/internal/config"
	"z-article-ai-api/internal/infrastructure/llm"
	"z-article-ai-api/internal/infrastructure/persistence/postgres"
	"z-article-ai-api/internal/infrastructure/persistence/redis"
	"z-article-ai-api/internal/interfaces/http/handler"
	"z-article-ai-api/internal/interfaces/http/router"
	"z-article-ai-api/internal/workflow/prompt"
)

// Injectors from wire.go:

// InitializePostgresOnly 仅初始化 PostgreSQL 数据层（用于 bootstrap）
func InitializePostgresOnly(ctx context.Context, cfg *config.Config) (*PostgresOnlyDataLayer, func(), error) {
	client, cleanup, err := ProvidePostgresClient(cfg)
	if err != nil {
		return nil, nil, err
	}
	tenantRepository := postgres.NewTenantRepository(client)
	categoryRepository := postgres.NewCategoryRepository(client)
	writerRepository := postgres.NewWriterRepository(client)
	imagePatternRepository := postgres.NewImagePatternRepository(client)
	postgresOnlyDataLayer := &PostgresOnlyDataLayer{
		PgClient:     client,
		TenantRepo:   tenantRepository,
		CategoryRepo: categoryRepository,
		WriterRepo:   writerRepository,
		PatternRepo:  imagePatternRepository,
	}
	return postgresOnlyDataLayer, func() {
		cleanup()
	}, nil
}

// InitializeApp 初始化整个应用（带路由器）
func InitializeApp(ctx context.Context, cfg *config.Config) (*router.Router, func(), error) {
	client, cleanup, err := ProvidePostgresClient(cfg)
	if err != nil {
		return nil, nil, err
	}
	redisClient, cleanup2, err := ProvideRedisClient(cfg)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	healthHandler := ProvideHealthHandler(cfg, client, redisClient)
	generator, jobRunner, err := newPipeline(ctx, cfg, client, redisClient)
	if err != nil {
		cleanup2()
		cleanup()
		return nil, nil, err
	}
	articleRepository := postgres.NewArticleRepository(client)
	articleHandler := handler.NewArticleHandler(generator, jobRunner, articleRepository)
	jobRepository := postgres.NewJobRepository(client)
	jobHandler := handler.NewJobHandler(jobRepository)
	handlers := router.Handlers{
		Health:  healthHandler,
		Article: articleHandler,
		Job:     jobHandler,
	}
	rateLimiter := redis.NewRateLimiter(redisClient)
	routerRouter := router.New(cfg, handlers, rateLimiter)
	return routerRouter, func() {
		cleanup2()
		cleanup()
	}, nil
}

// InitializeWorker 初始化 job-worker
func InitializeWorker(ctx context.Context, cfg *config.Config) (*Worker, func(), error) {
	client, cleanup, err := ProvidePostgresClient(cfg)
	if err != nil {
		return nil, nil, err
	}
	redisClient, cleanup2, err := ProvideRedisClient(cfg)
	if err != nil {
		cleanup()
		return nil, nil, err
	}
	consumer := ProvideConsumer(cfg, redisClient)
	_, jobRunner, err := newPipeline(ctx, cfg, client, redisClient)
	if err != nil {
		cleanup2()
		cleanup()
		return nil, nil, err
	}
	worker := &Worker{
		Consumer:  consumer,
		JobRunner: jobRunner,
	}
	return worker, func() {
		cleanup2()
		cleanup()
	}, nil
}

// newPipeline PipelineSet 在两个注入器中的共同展开
func newPipeline(ctx context.Context, cfg *config.Config, client *postgres.Client, redisClient *redis.Client) (*article.Generator, *article.JobRunner, error) {
	einoFactory := llm.NewEinoFactory(cfg)
	llmUsageEventRepository := postgres.NewLLMUsageEventRepository(client)
	jobRepository := postgres.NewJobRepository(client)
	llmUsageRecorder := quota.NewLLMUsageRecorder(llmUsageEventRepository, jobRepository)
	textClient := llm.NewTextClient(einoFactory, llmUsageRecorder)
	imageGenerator := ProvideImageGenerator(ctx, cfg)
	objectStore, err := ProvideObjectStore(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	mediaAssetRepository := postgres.NewMediaAssetRepository(client)
	materializer := ProvideMaterializer(cfg, objectStore, mediaAssetRepository)
	registry := prompt.NewRegistry()
	articleRepository := postgres.NewArticleRepository(client)
	categoryRepository := postgres.NewCategoryRepository(client)
	writerRepository := postgres.NewWriterRepository(client)
	imagePatternRepository := postgres.NewImagePatternRepository(client)
	tagRepository := postgres.NewTagRepository(client)
	tenantRepository := postgres.NewTenantRepository(client)
	txManager := postgres.NewTxManager(client)
	cache := redis.NewCache(redisClient)
	locker := redis.NewLocker(redisClient)
	tokenQuotaChecker := ProvideQuotaChecker(cfg, tenantRepository, llmUsageEventRepository)
	credentialChecker := ProvideCredentialChecker(cfg, einoFactory)
	deps := article.Deps{
		Text:         textClient,
		Images:       imageGenerator,
		Materializer: materializer,
		Prompts:      registry,
		Articles:     articleRepository,
		Categories:   categoryRepository,
		Writers:      writerRepository,
		Patterns:     imagePatternRepository,
		Tags:         tagRepository,
		Tenants:      tenantRepository,
		Tx:           txManager,
		Cache:        cache,
		Locker:       locker,
		Quota:        tokenQuotaChecker,
		Credentials:  credentialChecker,
	}
	generator := ProvideGenerator(cfg, deps)
	producer := ProvideMessagingProducer(redisClient, cfg)
	jobRunner := ProvideJobRunner(cfg, jobRepository, generator, producer)
	return generator, jobRunner, nil
}
