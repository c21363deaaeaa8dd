package article

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"z-article-ai-api/internal/config"
	"z-article-ai-api/internal/domain/entity"
	"z-article-ai-api/internal/domain/repository"
	"z-article-ai-api/internal/domain/service"
	"z-article-ai-api/internal/workflow/prompt"
)

// stubText 按 workflow（阶段名）返回预设文本，队列耗尽后重复最后一条
type stubText struct {
	mu        sync.Mutex
	responses map[string][]string
	errs      map[string]error
	handler   func(workflow, system, user string) (string, error)
	calls     map[string]int
	providers map[string]service.Provider
}

func newStubText() *stubText {
	return &stubText{
		responses: make(map[string][]string),
		errs:      make(map[string]error),
		calls:     make(map[string]int),
		providers: make(map[string]service.Provider),
	}
}

func (s *stubText) on(workflow string, responses ...string) *stubText {
	s.responses[workflow] = responses
	return s
}

func (s *stubText) Complete(ctx context.Context, provider service.Provider, system, user string, _ float32, _ int) (string, error) {
	wf := service.WorkflowFromContext(ctx)

	s.mu.Lock()
	s.calls[wf]++
	n := s.calls[wf]
	s.providers[wf] = provider
	queue := s.responses[wf]
	err := s.errs[wf]
	handler := s.handler
	s.mu.Unlock()

	if err != nil {
		return "", err
	}
	if handler != nil {
		if out, herr := handler(wf, system, user); out != "" || herr != nil {
			return out, herr
		}
	}
	if len(queue) == 0 {
		return "", fmt.Errorf("no fixture for %s", wf)
	}
	if n > len(queue) {
		n = len(queue)
	}
	return queue[n-1], nil
}

func (s *stubText) count(workflow string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[workflow]
}

type stubImages struct {
	mu      sync.Mutex
	err     error
	prompts []string
}

func (s *stubImages) GenerateImage(_ context.Context, prompt, _ string) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.err != nil {
		return "", s.err
	}
	s.prompts = append(s.prompts, prompt)
	return fmt.Sprintf("https://provider.example/tmp/%d.png", len(s.prompts)), nil
}

// stubMaterializer alt 命中 failAlt 时失败
type stubMaterializer struct {
	mu      sync.Mutex
	failAlt string
	err     error
	assets  []*entity.MediaAsset
}

func (m *stubMaterializer) Materialize(ctx context.Context, tenantID, src string, usage entity.UsageContext, alt string) (*entity.MediaAsset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.err != nil {
		return nil, m.err
	}
	if m.failAlt != "" && alt == m.failAlt {
		return nil, errors.New("materialize failed")
	}
	a := &entity.MediaAsset{
		ID:              fmt.Sprintf("asset-%d", len(m.assets)+1),
		TenantID:        tenantID,
		URL:             fmt.Sprintf("https://cdn.example/media/%d.webp", len(m.assets)+1),
		MimeType:        "image/webp",
		Width:           1200,
		Height:          800,
		AltText:         alt,
		UsageContext:    usage,
		GenerationRunID: service.RunFromContext(ctx),
	}
	m.assets = append(m.assets, a)
	return a, nil
}

type memArticles struct {
	mu        sync.Mutex
	articles  []*entity.Article
	recent    []*entity.Article
	slugs     map[string]bool
	createErr error
}

func newMemArticles() *memArticles {
	return &memArticles{slugs: make(map[string]bool)}
}

func (r *memArticles) Create(_ context.Context, a *entity.Article) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.createErr != nil {
		return r.createErr
	}
	if r.slugs[a.Slug] {
		return repository.ErrDuplicate
	}
	r.slugs[a.Slug] = true
	r.articles = append(r.articles, a)
	return nil
}

func (r *memArticles) GetByID(_ context.Context, tenantID, id string) (*entity.Article, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.articles {
		if a.TenantID == tenantID && a.ID == id {
			return a, nil
		}
	}
	return nil, nil
}

func (r *memArticles) Update(context.Context, *entity.Article) error { return nil }

func (r *memArticles) ExistsBySlug(_ context.Context, _ string, slug string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.slugs[slug], nil
}

func (r *memArticles) ListRecentByCategory(_ context.Context, _, _ string, limit int) ([]*entity.Article, error) {
	if len(r.recent) > limit {
		return r.recent[:limit], nil
	}
	return r.recent, nil
}

func (r *memArticles) List(context.Context, string, *repository.ArticleFilter, repository.Pagination) (*repository.PagedResult[*entity.Article], error) {
	return &repository.PagedResult[*entity.Article]{Items: r.articles, Total: int64(len(r.articles))}, nil
}

// memRecords 分类、写手、图片风格共用的内存仓储
type memRecords[T any] struct {
	items map[string]*T
	key   func(*T) string
}

func (r *memRecords[T]) Create(_ context.Context, v *T) error {
	r.items[r.key(v)] = v
	return nil
}

func (r *memRecords[T]) GetByID(_ context.Context, tenantID, id string) (*T, error) {
	return r.items[tenantID+"/"+id], nil
}

func newCategories(items ...*entity.Category) *memRecords[entity.Category] {
	r := &memRecords[entity.Category]{items: map[string]*entity.Category{}, key: func(c *entity.Category) string { return c.TenantID + "/" + c.ID }}
	for _, c := range items {
		_ = r.Create(context.Background(), c)
	}
	return r
}

func newWriters(items ...*entity.Writer) *memRecords[entity.Writer] {
	r := &memRecords[entity.Writer]{items: map[string]*entity.Writer{}, key: func(w *entity.Writer) string { return w.TenantID + "/" + w.ID }}
	for _, w := range items {
		_ = r.Create(context.Background(), w)
	}
	return r
}

func newPatterns(items ...*entity.ImagePattern) *memRecords[entity.ImagePattern] {
	r := &memRecords[entity.ImagePattern]{items: map[string]*entity.ImagePattern{}, key: func(p *entity.ImagePattern) string { return p.TenantID + "/" + p.ID }}
	for _, p := range items {
		_ = r.Create(context.Background(), p)
	}
	return r
}

type memTags struct {
	mu      sync.Mutex
	tags    map[string]*entity.Tag
	creates int
	// beforeCreate 模拟并发运行抢先插入
	beforeCreate func(t *entity.Tag) *entity.Tag
}

func newMemTags(existing ...*entity.Tag) *memTags {
	r := &memTags{tags: make(map[string]*entity.Tag)}
	for _, t := range existing {
		r.tags[t.TenantID+"/"+strings.ToLower(t.Name)] = t
	}
	return r
}

func (r *memTags) Create(_ context.Context, t *entity.Tag) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := t.TenantID + "/" + strings.ToLower(t.Name)
	if r.beforeCreate != nil {
		if other := r.beforeCreate(t); other != nil {
			r.tags[key] = other
		}
	}
	if _, ok := r.tags[key]; ok {
		return repository.ErrDuplicate
	}
	r.creates++
	r.tags[key] = t
	return nil
}

func (r *memTags) GetByID(_ context.Context, tenantID, id string) (*entity.Tag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, t := range r.tags {
		if t.TenantID == tenantID && t.ID == id {
			return t, nil
		}
	}
	return nil, nil
}

func (r *memTags) FindByNameFold(_ context.Context, tenantID, name string) (*entity.Tag, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.tags[tenantID+"/"+strings.ToLower(name)], nil
}

func (r *memTags) ListByIDs(context.Context, string, []string) ([]*entity.Tag, error) {
	return nil, nil
}

func (r *memTags) all() []*entity.Tag {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := make([]*entity.Tag, 0, len(r.tags))
	for _, t := range r.tags {
		out = append(out, t)
	}
	return out
}

type passTx struct{}

func (passTx) WithTransaction(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type stubLocker struct {
	err      error
	key      string
	released bool
}

func (l *stubLocker) Acquire(_ context.Context, key string, _ time.Duration) (func(context.Context) error, error) {
	if l.err != nil {
		return nil, l.err
	}
	l.key = key
	return func(context.Context) error {
		l.released = true
		return nil
	}, nil
}

type stubCredentials map[string]bool

func (c stubCredentials) Configured(name string) bool { return c[name] }

// fixture 组装一套可运行的生成器
type fixture struct {
	text     *stubText
	images   *stubImages
	media    *stubMaterializer
	articles *memArticles
	tags     *memTags
	locker   *stubLocker
	deps     Deps
	cfg      config.PipelineConfig
}

const testTenant = "t1"

func newFixture() *fixture {
	f := &fixture{
		text:     newStubText(),
		images:   &stubImages{},
		media:    &stubMaterializer{},
		articles: newMemArticles(),
		tags:     newMemTags(),
		locker:   &stubLocker{},
		cfg: config.PipelineConfig{
			SourceLocale: "ja",
			Locales:      []string{"ja", "en", "zh"},
		},
	}
	f.deps = Deps{
		Text:         f.text,
		Images:       f.images,
		Materializer: f.media,
		Prompts:      prompt.NewRegistry(),
		Articles:     f.articles,
		Categories:   newCategories(&entity.Category{ID: "travel", TenantID: testTenant, Name: "Travel", Description: "Trips in Japan"}),
		Writers:      newWriters(&entity.Writer{ID: "w1", TenantID: testTenant, Name: "Aki", Style: "friendly, concrete"}),
		Patterns:     newPatterns(&entity.ImagePattern{ID: "p1", TenantID: testTenant, Name: "photo", Prompt: "Soft natural light photograph", Size: "1024x1024"}),
		Tags:         f.tags,
		Tx:           passTx{},
		Locker:       f.locker,
		Credentials:  stubCredentials{"reasoning": true, "general": true, ImageCredential: true},
	}
	f.stubHappyPath()
	return f
}

func (f *fixture) generator() *Generator {
	g := NewGenerator(f.cfg, time.Minute, f.deps)
	g.now = func() time.Time { return time.Date(2026, 10, 18, 9, 0, 0, 0, time.UTC) }
	return g
}

func (f *fixture) request() GenerationRequest {
	return GenerationRequest{TenantID: testTenant, CategoryID: "travel", WriterID: "w1", ImagePatternID: "p1"}
}

const (
	fixtureKeyword = "Kyoto autumn foliage"
	fixtureTitle   = "Best Kyoto Autumn Foliage Spots for 2026"
)

var fixtureBody = strings.Join([]string{
	"<h2>When to go</h2><p>Mid November.</p>",
	"<h2>Tofukuji</h2><p>Bridges and maples.</p>",
	"<h2>Eikando</h2><p>Night illumination.</p>",
	"<h2>Arashiyama</h2><p>Bamboo and river.</p>",
	"<h2>Getting around</h2><p>Buses and trains.</p>",
}, "\n")

func (f *fixture) stubHappyPath() {
	f.text.
		on(string(StageSelectKeyword), "Keyword: "+fixtureKeyword).
		on(string(StageResearch), strings.Join([]string{
			"Persona: first-time visitors in their 30s",
			"Explicit need: where to see autumn leaves",
			"Latent need: avoid crowds",
			"Goal: plan a two-day route",
			"Requirements: access, timing, costs",
			"Related keywords: kyoto temples, autumn travel, Kyoto Autumn Foliage, momiji",
		}, "\n")).
		on(string(StageTitle), "Title: "+fixtureTitle).
		on(string(StageOutline), "<h2>When to go</h2>\n<h2>Tofukuji</h2>\n<h3>Tsutenkyo</h3>").
		on(string(StageIntroduction), "<p>Kyoto in autumn is unforgettable.</p>").
		on(string(StageBody), fixtureBody).
		on(string(StageMetadata), "Meta Title: Kyoto Autumn Foliage Guide\nMeta Description: Where and when to see the leaves.\nSummary: A two-day foliage route.").
		on(string(StageFAQ), "Q: When is peak season?\nA: Late November.\nQ: Is it crowded?\nA: Go early.").
		on("translate", "Translation: translated").
		on("slug", "Slug: autumn leaves")
}

var entityPatternP1 = entity.ImagePattern{ID: "p1", TenantID: testTenant, Name: "photo", Prompt: "Soft natural light photograph", Size: "1024x1024"}

func testContext() context.Context {
	return service.WithRun(context.Background(), testTenant, "", "run-test")
}
