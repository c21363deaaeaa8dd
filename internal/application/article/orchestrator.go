package article

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"

	"z-article-ai-api/internal/config"
	"z-article-ai-api/internal/domain/entity"
	"z-article-ai-api/internal/domain/repository"
	"z-article-ai-api/internal/domain/service"
	"z-article-ai-api/internal/infrastructure/persistence/redis"
	"z-article-ai-api/internal/workflow/parser"
	"z-article-ai-api/internal/workflow/prompt"
	"z-article-ai-api/pkg/logger"
	"z-article-ai-api/pkg/metrics"
	"z-article-ai-api/pkg/retry"
	"z-article-ai-api/pkg/slug"
)

var tracer = otel.Tracer("article")

// RunLocker 同一租户+分类的运行互斥
type RunLocker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (func(context.Context) error, error)
}

// QuotaChecker 运行前的 token 配额检查
type QuotaChecker interface {
	Check(ctx context.Context, tenantID string) error
}

// ImageCredential 图片生成凭据在 CredentialChecker 中的名称
const ImageCredential = "image"

// CredentialChecker 检查模型凭据是否已配置
type CredentialChecker interface {
	Configured(name string) bool
}

// Deps 生成器依赖，Locker/Quota/Credentials/Cache/Tenants 可为空
type Deps struct {
	Text         service.TextGenerator
	Images       service.ImageGenerator
	Materializer AssetMaterializer
	Prompts      *prompt.Registry

	Articles   repository.ArticleRepository
	Categories repository.CategoryRepository
	Writers    repository.WriterRepository
	Patterns   repository.ImagePatternRepository
	Tags       repository.TagRepository
	Tenants    repository.TenantRepository
	Tx         repository.Transactor

	Cache       ConfigCache
	Locker      RunLocker
	Quota       QuotaChecker
	Credentials CredentialChecker
}

// Generator 文章生成流水线
type Generator struct {
	cfg          config.PipelineConfig
	cacheTTL     time.Duration
	text         service.TextGenerator
	images       service.ImageGenerator
	materializer AssetMaterializer
	prompts      *prompt.Registry
	articles     repository.ArticleRepository
	tags         repository.TagRepository
	tenants      repository.TenantRepository
	tx           repository.Transactor
	catalog      *catalog
	locker       RunLocker
	quota        QuotaChecker
	credentials  CredentialChecker
	now          func() time.Time
}

// NewGenerator 创建生成器，未设置的参数使用默认值
func NewGenerator(cfg config.PipelineConfig, cacheTTL time.Duration, deps Deps) *Generator {
	if cfg.RecentKeywordWindow <= 0 {
		cfg.RecentKeywordWindow = 5
	}
	if cfg.KeywordAttempts <= 0 {
		cfg.KeywordAttempts = 3
	}
	if cfg.SlugAttempts <= 0 {
		cfg.SlugAttempts = 100
	}
	if cfg.SlugMaxLen <= 0 {
		cfg.SlugMaxLen = 60
	}
	if cfg.MaxTags <= 0 {
		cfg.MaxTags = 5
	}
	if cfg.MaxInlineImages <= 0 {
		cfg.MaxInlineImages = 4
	}
	if cfg.InlineImageConcurrency <= 0 {
		cfg.InlineImageConcurrency = 2
	}
	if cfg.SourceLocale == "" {
		cfg.SourceLocale = "ja"
	}
	if len(cfg.Locales) == 0 {
		cfg.Locales = []string{cfg.SourceLocale}
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = cfg.Timeout
	}
	if cfg.LockTTL <= 0 {
		cfg.LockTTL = 20 * time.Minute
	}

	return &Generator{
		cfg:          cfg,
		cacheTTL:     cacheTTL,
		text:         deps.Text,
		images:       deps.Images,
		materializer: deps.Materializer,
		prompts:      deps.Prompts,
		articles:     deps.Articles,
		tags:         deps.Tags,
		tenants:      deps.Tenants,
		tx:           deps.Tx,
		catalog: &catalog{
			categories: deps.Categories,
			writers:    deps.Writers,
			patterns:   deps.Patterns,
			cache:      deps.Cache,
			ttl:        cacheTTL,
		},
		locker:      deps.Locker,
		quota:       deps.Quota,
		credentials: deps.Credentials,
		now:         time.Now,
	}
}

// Generate 同步执行一次完整生成（手动触发）
func (g *Generator) Generate(ctx context.Context, req GenerationRequest) (*Result, error) {
	return g.Run(ctx, req, RunOptions{Trigger: entity.TriggerManual})
}

// Run 执行流水线，手动与定时触发共用此入口
func (g *Generator) Run(ctx context.Context, req GenerationRequest, opts RunOptions) (result *Result, err error) {
	if opts.Trigger == "" {
		opts.Trigger = entity.TriggerManual
	}
	start := g.now()
	runID := uuid.New().String()

	ctx = service.WithRun(ctx, req.TenantID, opts.JobID, runID)
	ctx = logger.WithContext(ctx, logger.TenantIDKey, req.TenantID)
	ctx = logger.WithContext(ctx, logger.RunIDKey, runID)
	if opts.JobID != "" {
		ctx = logger.WithContext(ctx, logger.JobIDKey, opts.JobID)
	}

	ctx, span := tracer.Start(ctx, "article.Generate")
	span.SetAttributes(
		attribute.String("tenant_id", req.TenantID),
		attribute.String("category_id", req.CategoryID),
		attribute.String("run_id", runID),
		attribute.String("trigger", string(opts.Trigger)),
	)
	defer func() {
		status := "success"
		if err != nil {
			status = string(ReasonOf(err))
			if status == "" {
				status = "error"
			}
			span.RecordError(err)
			span.SetStatus(codes.Error, err.Error())
			logger.Error(ctx, "article generation failed", err, "duration_ms", time.Since(start).Milliseconds())
		}
		metrics.ArticleGenerationTotal.WithLabelValues(string(opts.Trigger), status).Inc()
		metrics.ArticleGenerationDuration.WithLabelValues(string(opts.Trigger)).Observe(time.Since(start).Seconds())
		span.End()
	}()

	if verr := req.Validate(); verr != nil {
		return nil, pipelineError(ReasonConfiguration, StageFetchConfig, DetailInvalidRequest, verr)
	}
	if cerr := g.checkCredentials(); cerr != nil {
		return nil, cerr
	}
	if g.quota != nil {
		if qerr := g.quota.Check(ctx, req.TenantID); qerr != nil {
			return nil, qerr
		}
	}

	if g.locker != nil {
		release, lerr := g.locker.Acquire(ctx, redis.GenerationLockKey(req.TenantID, req.CategoryID), g.cfg.LockTTL)
		if lerr != nil {
			return nil, lerr
		}
		defer func() {
			if rerr := release(context.WithoutCancel(ctx)); rerr != nil {
				logger.Warn(ctx, "failed to release generation lock", "error", rerr)
			}
		}()
	}

	if g.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, g.cfg.Timeout)
		defer cancel()
	}

	logger.Info(ctx, "article generation started",
		"category_id", req.CategoryID, "writer_id", req.WriterID, "image_pattern_id", req.ImagePatternID, "trigger", opts.Trigger)

	d := &Draft{}
	var article *entity.Article
	steps := []struct {
		stage Stage
		fn    func(ctx context.Context) error
	}{
		{StageFetchConfig, func(ctx context.Context) error { return g.fetchConfig(ctx, req, d) }},
		{StageSelectKeyword, func(ctx context.Context) error { return g.selectKeyword(ctx, req, d) }},
		{StageResearch, func(ctx context.Context) error { return g.research(ctx, d) }},
		{StageTitle, func(ctx context.Context) error { return g.title(ctx, d) }},
		{StageOutline, func(ctx context.Context) error { return g.outline(ctx, d) }},
		{StageIntroduction, func(ctx context.Context) error { return g.introduction(ctx, d) }},
		{StageBody, func(ctx context.Context) error { return g.body(ctx, d) }},
		{StageTagResolution, func(ctx context.Context) error { return g.resolveTags(ctx, req.TenantID, d) }},
		{StageFeaturedImage, func(ctx context.Context) error { return g.featuredImage(ctx, req.TenantID, d) }},
		{StageAssignWriter, func(ctx context.Context) error { return g.assignWriter(d) }},
		{StageMetadata, func(ctx context.Context) error { return g.metadata(ctx, req.TenantID, d) }},
		{StageFAQ, func(ctx context.Context) error { return g.faq(ctx, d) }},
		{StageInlineImages, func(ctx context.Context) error { return g.inlineImages(ctx, req.TenantID, d) }},
		{StagePersist, func(ctx context.Context) error {
			var perr error
			article, perr = g.persist(ctx, req, runID, d)
			return perr
		}},
	}

	for _, step := range steps {
		if err := g.runStage(ctx, step.stage, step.fn); err != nil {
			return nil, err
		}
		if opts.Progress != nil {
			opts.Progress.Report(ctx, step.stage, step.stage.Progress())
		}
	}

	logger.Info(ctx, "article generation completed",
		"article_id", article.ID, "slug", article.Slug, "tags", len(article.TagIDs),
		"inline_images", d.InlineImages, "duration_ms", time.Since(start).Milliseconds())

	return &Result{ArticleID: article.ID, Title: article.Title, Slug: article.Slug, RunID: runID}, nil
}

// runStage 记录阶段耗时与日志，非流水线错误按 provider 失败归类
func (g *Generator) runStage(ctx context.Context, stage Stage, fn func(ctx context.Context) error) error {
	ctx = logger.WithContext(ctx, logger.StageKey, string(stage))
	ctx = service.WithWorkflow(ctx, string(stage))
	ctx, span := tracer.Start(ctx, "article.stage."+string(stage))
	defer span.End()

	start := time.Now()
	logger.Debug(ctx, "stage started")

	err := fn(ctx)
	elapsed := time.Since(start)

	status := "success"
	if err != nil {
		var pe *PipelineError
		if !errors.As(err, &pe) {
			err = pipelineError(ReasonProvider, stage, "", err)
		}
		status = string(ReasonOf(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	metrics.PipelineStageDuration.WithLabelValues(string(stage), status).Observe(elapsed.Seconds())
	logger.Info(ctx, "stage finished", "status", status, "duration_ms", elapsed.Milliseconds())
	return err
}

func (g *Generator) checkCredentials() error {
	if g.credentials == nil {
		return nil
	}
	var missing []string
	for _, name := range []string{string(service.ProviderReasoning), string(service.ProviderGeneral), ImageCredential} {
		if !g.credentials.Configured(name) {
			missing = append(missing, name)
		}
	}
	if len(missing) > 0 {
		return pipelineError(ReasonConfiguration, StageFetchConfig, DetailMissingCredentials,
			fmt.Errorf("no api key for provider(s): %s", strings.Join(missing, ", ")))
	}
	return nil
}

func (g *Generator) complete(ctx context.Context, provider service.Provider, id prompt.PromptID, vars map[string]any, temperature float32, maxTokens int) (string, error) {
	system, user, err := g.prompts.Render(ctx, id, vars)
	if err != nil {
		return "", err
	}
	return g.text.Complete(ctx, provider, system, user, temperature, maxTokens)
}

// degrade 记录一次非致命降级
func degrade(ctx context.Context, stage Stage, kind string, args ...any) {
	logger.Warn(ctx, "stage degraded: "+kind, args...)
	metrics.PipelineDegradations.WithLabelValues(string(stage), kind).Inc()
}

func (g *Generator) fetchConfig(ctx context.Context, req GenerationRequest, d *Draft) error {
	cat, err := g.catalog.category(ctx, req.TenantID, req.CategoryID)
	if err != nil {
		return configError(err, DetailCategoryNotFound)
	}
	w, err := g.catalog.writer(ctx, req.TenantID, req.WriterID)
	if err != nil {
		return configError(err, DetailWriterNotFound)
	}
	p, err := g.catalog.pattern(ctx, req.TenantID, req.ImagePatternID)
	if err != nil {
		return configError(err, DetailImagePatternNotFound)
	}
	d.Category, d.Writer, d.Pattern = cat, w, p

	d.sourceLocale, d.locales = g.cfg.SourceLocale, g.cfg.Locales
	if g.tenants != nil {
		t, err := g.tenants.GetByID(ctx, req.TenantID)
		if err != nil {
			return pipelineError(ReasonPersistence, StageFetchConfig, "", err)
		}
		if t == nil {
			return pipelineError(ReasonConfiguration, StageFetchConfig, "tenant_not_found", errConfigNotFound)
		}
		if !t.IsActive() {
			return pipelineError(ReasonConfiguration, StageFetchConfig, "tenant_suspended", fmt.Errorf("tenant %s is %s", t.ID, t.Status))
		}
		if t.Settings != nil {
			if t.Settings.SourceLocale != "" {
				d.sourceLocale = t.Settings.SourceLocale
			}
			if len(t.Settings.Locales) > 0 {
				d.locales = t.Settings.Locales
			}
		}
	}
	return nil
}

func configError(err error, detail string) error {
	if errors.Is(err, errConfigNotFound) {
		return pipelineError(ReasonConfiguration, StageFetchConfig, detail, err)
	}
	return pipelineError(ReasonPersistence, StageFetchConfig, "", err)
}

func (g *Generator) dateVars() (string, string) {
	now := g.now()
	return fmt.Sprintf("%d", now.Year()), fmt.Sprintf("%d", int(now.Month()))
}

func (g *Generator) selectKeyword(ctx context.Context, req GenerationRequest, d *Draft) error {
	recent, err := g.articles.ListRecentByCategory(ctx, req.TenantID, req.CategoryID, g.cfg.RecentKeywordWindow)
	if err != nil {
		return pipelineError(ReasonPersistence, StageSelectKeyword, "", err)
	}
	used := make(map[string]struct{}, len(recent))
	list := make([]string, 0, len(recent))
	for _, a := range recent {
		if a.SelectedKeyword == "" {
			continue
		}
		used[a.SelectedKeyword] = struct{}{}
		list = append(list, a.SelectedKeyword)
	}
	recentText := "(none)"
	if len(list) > 0 {
		recentText = strings.Join(list, ", ")
	}

	year, month := g.dateVars()
	vars := map[string]any{
		"category":             d.Category.Name,
		"category_description": d.Category.Description,
		"year":                 year,
		"month":                month,
		"language":             languageName(d.sourceLocale),
		"recent_keywords":      recentText,
	}

	kw, err := retry.Until(ctx, g.cfg.KeywordAttempts,
		func(ctx context.Context, attempt int) (string, error) {
			out, err := g.complete(ctx, service.ProviderReasoning, prompt.PromptKeywordV1, vars, 0.7+0.1*float32(attempt), 256)
			if err != nil {
				return "", err
			}
			return parser.ParseKeyword(out).Get(parser.FieldKeyword), nil
		},
		func(ctx context.Context, kw string) (bool, error) {
			if kw == "" {
				return false, nil
			}
			if _, dup := used[kw]; dup {
				logger.Info(ctx, "keyword candidate rejected as recently used", "keyword", kw)
				return false, nil
			}
			return true, nil
		})
	if err != nil {
		if errors.Is(err, retry.ErrExhausted) {
			return pipelineError(ReasonUniquenessExhausted, StageSelectKeyword, DetailKeywordExhausted, err)
		}
		return pipelineError(ReasonProvider, StageSelectKeyword, "", err)
	}

	d.Keyword = kw
	logger.Info(ctx, "keyword selected", "keyword", kw)
	return nil
}

func (g *Generator) research(ctx context.Context, d *Draft) error {
	year, month := g.dateVars()
	out, err := g.complete(ctx, service.ProviderReasoning, prompt.PromptResearchV1, map[string]any{
		"year":     year,
		"month":    month,
		"language": languageName(d.sourceLocale),
		"keyword":  d.Keyword,
		"category": d.Category.Name,
	}, 0.5, 2048)
	if err != nil {
		return err
	}

	brief, res := parser.ParseResearch(out)
	if res.Status != parser.Parsed {
		degrade(ctx, StageResearch, "partial_parse", "missing", res.Missing)
	}
	d.Brief = brief
	return nil
}

func (g *Generator) title(ctx context.Context, d *Draft) error {
	out, err := g.complete(ctx, service.ProviderGeneral, prompt.PromptTitleV1, map[string]any{
		"language":      languageName(d.sourceLocale),
		"keyword":       d.Keyword,
		"persona":       d.Brief.Persona,
		"explicit_need": d.Brief.ExplicitNeed,
		"latent_need":   d.Brief.LatentNeed,
		"goal":          d.Brief.Goal,
	}, 0.7, 256)
	if err != nil {
		return err
	}

	res := parser.ParseTitle(out)
	if !res.Has(parser.FieldTitle) {
		degrade(ctx, StageTitle, "keyword_as_title")
	}
	d.Title = res.GetOr(parser.FieldTitle, d.Keyword)
	return nil
}

func (g *Generator) outline(ctx context.Context, d *Draft) error {
	out, err := g.complete(ctx, service.ProviderGeneral, prompt.PromptOutlineV1, map[string]any{
		"language":         languageName(d.sourceLocale),
		"title":            d.Title,
		"keyword":          d.Keyword,
		"persona":          d.Brief.Persona,
		"goal":             d.Brief.Goal,
		"requirements":     d.Brief.Requirements,
		"related_keywords": strings.Join(d.Brief.RelatedKeywords, ", "),
	}, 0.5, 1024)
	if err != nil {
		return err
	}

	res := parser.ParseOutline(out)
	if !res.Has(parser.FieldOutline) {
		degrade(ctx, StageOutline, "raw_outline")
	}
	d.Outline = res.GetOr(parser.FieldOutline, strings.TrimSpace(parser.StripCodeFence(out)))
	return nil
}

func (g *Generator) introduction(ctx context.Context, d *Draft) error {
	out, err := g.complete(ctx, service.ProviderGeneral, prompt.PromptIntroductionV1, map[string]any{
		"language":      languageName(d.sourceLocale),
		"title":         d.Title,
		"outline":       d.Outline,
		"persona":       d.Brief.Persona,
		"explicit_need": d.Brief.ExplicitNeed,
		"latent_need":   d.Brief.LatentNeed,
	}, 0.7, 1024)
	if err != nil {
		return err
	}
	d.Introduction = parser.ParseHTMLBody(out).Get(parser.FieldHTML)
	return nil
}

func (g *Generator) body(ctx context.Context, d *Draft) error {
	out, err := g.complete(ctx, service.ProviderGeneral, prompt.PromptBodyV1, map[string]any{
		"writer_name":      d.Writer.Name,
		"writer_style":     d.Writer.Style,
		"language":         languageName(d.sourceLocale),
		"title":            d.Title,
		"outline":          d.Outline,
		"introduction":     d.Introduction,
		"requirements":     d.Brief.Requirements,
		"related_keywords": strings.Join(d.Brief.RelatedKeywords, ", "),
	}, 0.7, 8192)
	if err != nil {
		return err
	}

	main := parser.ParseHTMLBody(out).Get(parser.FieldHTML)
	if len(FindH2(main)) == 0 {
		degrade(ctx, StageBody, "no_h2")
	}
	d.Body = d.Introduction + "\n" + main
	return nil
}

func (g *Generator) resolveTags(ctx context.Context, tenantID string, d *Draft) error {
	resolver := NewTagResolver(g.tags, g.text, g.prompts, d.sourceLocale, d.locales, g.cfg.SlugMaxLen)
	candidates := TagCandidates(d.Keyword, d.Brief.RelatedKeywords, g.cfg.MaxTags)

	res, err := resolver.ResolveAll(ctx, tenantID, candidates)
	if err != nil {
		return pipelineError(ReasonPersistence, StageTagResolution, "", err)
	}
	d.Tags = res
	return nil
}

func (g *Generator) assignWriter(d *Draft) error {
	d.WriterID = d.Writer.ID
	d.WriterName = d.Writer.Name
	return nil
}

func (g *Generator) metadata(ctx context.Context, tenantID string, d *Draft) error {
	out, err := g.complete(ctx, service.ProviderGeneral, prompt.PromptMetadataV1, map[string]any{
		"language": languageName(d.sourceLocale),
		"title":    d.Title,
		"keyword":  d.Keyword,
		"excerpt":  TruncateRunes(PlainText(d.Body), 600),
	}, 0.5, 512)
	if err != nil {
		return err
	}

	res := parser.ParseMetadata(out)
	if res.Status != parser.Parsed {
		degrade(ctx, StageMetadata, "partial_parse", "missing", res.Missing)
	}
	d.MetaTitle = TruncateRunes(res.GetOr(parser.FieldMetaTitle, d.Title), 60)
	d.MetaDescription = TruncateRunes(res.GetOr(parser.FieldMetaDescription, PlainText(d.Body)), 160)
	d.Summary = TruncateRunes(res.GetOr(parser.FieldSummary, PlainText(d.Introduction)), 200)

	s, err := g.uniqueSlug(ctx, tenantID, g.baseSlug(ctx, d.Title))
	if err != nil {
		return err
	}
	d.Slug = s
	return nil
}

// baseSlug 拉丁标题直接转换；非拉丁标题先请模型给出 slug，再退回音译
func (g *Generator) baseSlug(ctx context.Context, title string) string {
	if slug.IsLatin(title) {
		if s := slug.Make(title, g.cfg.SlugMaxLen); s != "" {
			return s
		}
	} else {
		s, err := latinSlug(ctx, g.text, g.prompts, "article titles", title, articleSlugWords, g.cfg.SlugMaxLen)
		if s != "" {
			return s
		}
		degrade(ctx, StageMetadata, "slug_transliterated", "title", title, "error", err)
	}
	if s := slug.Make(slug.Transliterate(title), g.cfg.SlugMaxLen); s != "" {
		return s
	}
	return "article-" + strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
}

// uniqueSlug 依次探测 base, base-1, base-2 ...
func (g *Generator) uniqueSlug(ctx context.Context, tenantID, base string) (string, error) {
	s, err := retry.Until(ctx, g.cfg.SlugAttempts,
		func(ctx context.Context, attempt int) (string, error) {
			return slug.WithSuffix(base, attempt), nil
		},
		func(ctx context.Context, candidate string) (bool, error) {
			exists, err := g.articles.ExistsBySlug(ctx, tenantID, candidate)
			return !exists, err
		})
	if err != nil {
		if errors.Is(err, retry.ErrExhausted) {
			return "", pipelineError(ReasonUniquenessExhausted, StageMetadata, DetailSlugExhausted, err)
		}
		return "", pipelineError(ReasonPersistence, StageMetadata, "", err)
	}
	return s, nil
}

func (g *Generator) faq(ctx context.Context, d *Draft) error {
	out, err := g.complete(ctx, service.ProviderGeneral, prompt.PromptFAQV1, map[string]any{
		"language": languageName(d.sourceLocale),
		"title":    d.Title,
		"keyword":  d.Keyword,
		"persona":  d.Brief.Persona,
		"excerpt":  TruncateRunes(PlainText(d.Body), 1200),
	}, 0.5, 1024)
	if err != nil {
		return err
	}

	d.FAQs = parser.ParseFAQ(out)
	if len(d.FAQs) == 0 {
		degrade(ctx, StageFAQ, "no_pairs")
	}
	return nil
}

func (g *Generator) persist(ctx context.Context, req GenerationRequest, runID string, d *Draft) (*entity.Article, error) {
	brief := d.Brief
	a := &entity.Article{
		ID:               uuid.New().String(),
		TenantID:         req.TenantID,
		Title:            d.Title,
		Slug:             d.Slug,
		Content:          d.Body,
		Excerpt:          d.Summary,
		MetaTitle:        d.MetaTitle,
		MetaDescription:  d.MetaDescription,
		SelectedKeyword:  d.Keyword,
		TitleJa:          d.Title,
		ContentJa:        d.Body,
		ExcerptJa:        d.Summary,
		CategoryIDs:      []string{req.CategoryID},
		TagIDs:           d.TagIDs(),
		WriterID:         d.WriterID,
		FeaturedImageID:  d.Featured.ID,
		FeaturedImageURL: d.Featured.URL,
		ResearchBrief:    &brief,
		FAQs:             d.FAQs,
		GenerationRunID:  runID,
	}
	a.ForceDraft()

	err := g.tx.WithTransaction(ctx, func(ctx context.Context) error {
		return g.articles.Create(ctx, a)
	})
	if err != nil {
		return nil, pipelineError(ReasonPersistence, StagePersist, "", err)
	}
	return a, nil
}
