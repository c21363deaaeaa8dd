//go:build wireinject
// +build wireinject

package wire

import (
	"context"

	"github.com/google/wire"

	"z-article-ai-api/internal/application/article"
	"z-article-ai-api/internal/application/media"
	"z-article-ai-api/internal/application/quota"
	"z-article-ai-api/internal/config"
	"z-article-ai-api/internal/domain/repository"
	"z-article-ai-api/internal/domain/service"
	"z-article-ai-api/internal/infrastructure/llm"
	"z-article-ai-api/internal/infrastructure/messaging"
	"z-article-ai-api/internal/infrastructure/persistence/postgres"
	"z-article-ai-api/internal/infrastructure/persistence/redis"
	"z-article-ai-api/internal/interfaces/http/handler"
	"z-article-ai-api/internal/interfaces/http/middleware"
	"z-article-ai-api/internal/interfaces/http/router"
	"z-article-ai-api/internal/workflow/prompt"
)

// InitializePostgresOnly 仅初始化 PostgreSQL 数据层（用于 bootstrap）
func InitializePostgresOnly(ctx context.Context, cfg *config.Config) (*PostgresOnlyDataLayer, func(), error) {
	wire.Build(
		ProvidePostgresClient,
		postgres.NewTenantRepository,
		postgres.NewCategoryRepository,
		postgres.NewWriterRepository,
		postgres.NewImagePatternRepository,
		wire.Struct(new(PostgresOnlyDataLayer), "*"),
	)
	return nil, nil, nil
}

// InitializeApp 初始化整个应用（带路由器）
func InitializeApp(ctx context.Context, cfg *config.Config) (*router.Router, func(), error) {
	wire.Build(
		RepoSet,
		RedisSet,
		MessagingSet,
		PipelineSet,
		RouterSet,
	)
	return nil, nil, nil
}

// InitializeWorker 初始化 job-worker
func InitializeWorker(ctx context.Context, cfg *config.Config) (*Worker, func(), error) {
	wire.Build(
		RepoSet,
		RedisSet,
		MessagingSet,
		PipelineSet,
		ProvideConsumer,
		wire.Struct(new(Worker), "*"),
	)
	return nil, nil, nil
}

// PostgresSet PostgreSQL 提供者集合
var PostgresSet = wire.NewSet(
	ProvidePostgresClient,
	postgres.NewTxManager,
	postgres.NewTenantRepository,
	postgres.NewCategoryRepository,
	postgres.NewWriterRepository,
	postgres.NewImagePatternRepository,
	postgres.NewTagRepository,
	postgres.NewMediaAssetRepository,
	postgres.NewArticleRepository,
	postgres.NewJobRepository,
	postgres.NewLLMUsageEventRepository,
)

// RepoSet 整合了具体实现与接口绑定的集合
var RepoSet = wire.NewSet(
	PostgresSet,
	wire.Bind(new(repository.Transactor), new(*postgres.TxManager)),
	wire.Bind(new(repository.TenantRepository), new(*postgres.TenantRepository)),
	wire.Bind(new(repository.CategoryRepository), new(*postgres.CategoryRepository)),
	wire.Bind(new(repository.WriterRepository), new(*postgres.WriterRepository)),
	wire.Bind(new(repository.ImagePatternRepository), new(*postgres.ImagePatternRepository)),
	wire.Bind(new(repository.TagRepository), new(*postgres.TagRepository)),
	wire.Bind(new(repository.MediaAssetRepository), new(*postgres.MediaAssetRepository)),
	wire.Bind(new(repository.ArticleRepository), new(*postgres.ArticleRepository)),
	wire.Bind(new(repository.JobRepository), new(*postgres.JobRepository)),
	wire.Bind(new(repository.LLMUsageEventRepository), new(*postgres.LLMUsageEventRepository)),
)

// RedisSet Redis 提供者集合
var RedisSet = wire.NewSet(
	ProvideRedisClient,
	redis.NewCache,
	redis.NewRateLimiter,
	redis.NewLocker,
	wire.Bind(new(article.ConfigCache), new(*redis.Cache)),
	wire.Bind(new(article.RunLocker), new(*redis.Locker)),
	wire.Bind(new(middleware.RateLimiter), new(*redis.RateLimiter)),
)

// MessagingSet 消息队列提供者集合
var MessagingSet = wire.NewSet(
	ProvideMessagingProducer,
)

// PipelineSet 文章生成流水线
var PipelineSet = wire.NewSet(
	llm.NewEinoFactory,
	quota.NewLLMUsageRecorder,
	llm.NewTextClient,
	prompt.NewRegistry,
	ProvideImageGenerator,
	ProvideObjectStore,
	ProvideMaterializer,
	ProvideQuotaChecker,
	ProvideCredentialChecker,
	wire.Bind(new(llm.ChatModelSource), new(*llm.EinoFactory)),
	wire.Bind(new(service.LLMUsageRecorder), new(*quota.LLMUsageRecorder)),
	wire.Bind(new(service.TextGenerator), new(*llm.TextClient)),
	wire.Bind(new(article.AssetMaterializer), new(*media.Materializer)),
	wire.Bind(new(article.QuotaChecker), new(*quota.TokenQuotaChecker)),
	wire.Struct(new(article.Deps), "*"),
	ProvideGenerator,
	ProvideJobRunner,
)

// RouterSet 路由器提供者集合
var RouterSet = wire.NewSet(
	ProvideHealthHandler,
	handler.NewArticleHandler,
	handler.NewJobHandler,
	wire.Bind(new(handler.ArticleGenerator), new(*article.Generator)),
	wire.Bind(new(handler.JobSubmitter), new(*article.JobRunner)),
	wire.Struct(new(router.Handlers), "*"),
	router.New,
)
