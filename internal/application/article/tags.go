package article

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"z-article-ai-api/internal/domain/entity"
	"z-article-ai-api/internal/domain/repository"
	"z-article-ai-api/internal/domain/service"
	"z-article-ai-api/internal/workflow/parser"
	"z-article-ai-api/internal/workflow/prompt"
	"z-article-ai-api/pkg/logger"
	"z-article-ai-api/pkg/metrics"
	"z-article-ai-api/pkg/slug"
)

// TagResolution 候选标签名与最终使用的标签
type TagResolution struct {
	Name    string
	TagID   string
	Created bool
}

var localeNames = map[string]string{
	"ja": "Japanese",
	"en": "English",
	"zh": "Simplified Chinese",
	"ko": "Korean",
	"fr": "French",
	"de": "German",
	"es": "Spanish",
}

func languageName(locale string) string {
	if n, ok := localeNames[strings.ToLower(locale)]; ok {
		return n
	}
	return locale
}

// TagResolver 把候选名解析为租户内唯一（不区分大小写）的标签。
// 每次运行创建一个新实例，memo 只在本次运行内有效。
type TagResolver struct {
	tags         repository.TagRepository
	text         service.TextGenerator
	prompts      *prompt.Registry
	sourceLocale string
	locales      []string
	slugMaxLen   int

	mu   sync.Mutex
	memo map[string]TagResolution
}

// NewTagResolver 创建标签解析器
func NewTagResolver(tags repository.TagRepository, text service.TextGenerator, prompts *prompt.Registry, sourceLocale string, locales []string, slugMaxLen int) *TagResolver {
	return &TagResolver{
		tags:         tags,
		text:         text,
		prompts:      prompts,
		sourceLocale: sourceLocale,
		locales:      locales,
		slugMaxLen:   slugMaxLen,
		memo:         make(map[string]TagResolution),
	}
}

// TagCandidates 关键词加相关关键词，忽略大小写去重后最多 max 个
func TagCandidates(keyword string, related []string, max int) []string {
	out := make([]string, 0, max)
	seen := make(map[string]struct{})
	for _, name := range append([]string{keyword}, related...) {
		name = strings.TrimSpace(name)
		if name == "" {
			continue
		}
		k := strings.ToLower(name)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, name)
		if len(out) == max {
			break
		}
	}
	return out
}

// ResolveAll 依次解析全部候选名
func (r *TagResolver) ResolveAll(ctx context.Context, tenantID string, names []string) ([]TagResolution, error) {
	out := make([]TagResolution, 0, len(names))
	for _, name := range names {
		res, err := r.Resolve(ctx, tenantID, name)
		if err != nil {
			return nil, err
		}
		out = append(out, res)
	}
	return out, nil
}

// Resolve 命中已有标签则复用，否则创建
func (r *TagResolver) Resolve(ctx context.Context, tenantID, name string) (TagResolution, error) {
	name = strings.TrimSpace(name)
	key := strings.ToLower(name)

	r.mu.Lock()
	if res, ok := r.memo[key]; ok {
		r.mu.Unlock()
		return res, nil
	}
	r.mu.Unlock()

	existing, err := r.tags.FindByNameFold(ctx, tenantID, name)
	if err != nil {
		return TagResolution{}, fmt.Errorf("find tag %q: %w", name, err)
	}
	if existing != nil {
		return r.remember(key, TagResolution{Name: name, TagID: existing.ID}), nil
	}

	tag := &entity.Tag{
		ID:              uuid.New().String(),
		TenantID:        tenantID,
		Name:            name,
		Slug:            r.tagSlug(ctx, name),
		Names:           r.translate(ctx, name),
		GenerationRunID: service.RunFromContext(ctx),
	}

	if err := r.tags.Create(ctx, tag); err != nil {
		if !errors.Is(err, repository.ErrDuplicate) {
			return TagResolution{}, fmt.Errorf("create tag %q: %w", name, err)
		}
		// 并发运行抢先创建了同名标签
		existing, ferr := r.tags.FindByNameFold(ctx, tenantID, name)
		if ferr != nil || existing == nil {
			return TagResolution{}, fmt.Errorf("create tag %q: %w", name, err)
		}
		return r.remember(key, TagResolution{Name: name, TagID: existing.ID}), nil
	}

	logger.Info(ctx, "tag created", "tag_id", tag.ID, "name", name, "slug", tag.Slug)
	return r.remember(key, TagResolution{Name: name, TagID: tag.ID, Created: true}), nil
}

func (r *TagResolver) remember(key string, res TagResolution) TagResolution {
	r.mu.Lock()
	defer r.mu.Unlock()
	if prev, ok := r.memo[key]; ok {
		return prev
	}
	r.memo[key] = res
	return res
}

// tagSlug 拉丁名直接转换；非拉丁名先请模型给出短 slug，再退回音译
func (r *TagResolver) tagSlug(ctx context.Context, name string) string {
	if slug.IsLatin(name) {
		if s := slug.Make(name, r.slugMaxLen); s != "" {
			return s
		}
	} else {
		s, err := latinSlug(ctx, r.text, r.prompts, "tag names", name, tagSlugWords, r.slugMaxLen)
		if s != "" {
			return s
		}
		degrade(ctx, StageTagResolution, "tag_slug", "name", name, "error", err)
	}

	if s := slug.Make(slug.Transliterate(name), r.slugMaxLen); s != "" {
		return s
	}
	return "tag-" + strings.ReplaceAll(uuid.New().String(), "-", "")[:8]
}

const (
	tagSlugWords     = 3
	articleSlugWords = 8
)

// latinSlug 请模型为非拉丁文本给出不超过 maxWords 个单词的拉丁 slug
func latinSlug(ctx context.Context, text service.TextGenerator, prompts *prompt.Registry, subject, name string, maxWords, maxLen int) (string, error) {
	system, user, err := prompts.Render(ctx, prompt.PromptTagSlugV1, map[string]any{
		"subject":   subject,
		"name":      name,
		"max_words": maxWords,
	})
	if err != nil {
		return "", err
	}
	out, err := text.Complete(service.WithWorkflow(ctx, "slug"), service.ProviderGeneral, system, user, 0.2, 16*maxWords)
	if err != nil {
		return "", err
	}
	words := strings.Fields(strings.ReplaceAll(parser.ParseSlug(out).Get(parser.FieldSlug), "-", " "))
	if len(words) > maxWords {
		words = words[:maxWords]
	}
	return slug.Make(strings.Join(words, " "), maxLen), nil
}

// translate 源语言之外的每个 locale 并发翻译，失败时复制原名
func (r *TagResolver) translate(ctx context.Context, name string) map[string]string {
	targets := make([]string, 0, len(r.locales))
	for _, loc := range r.locales {
		if loc != r.sourceLocale {
			targets = append(targets, loc)
		}
	}

	results := make([]string, len(targets))
	var g errgroup.Group
	for i, loc := range targets {
		g.Go(func() error {
			results[i] = r.translateOne(ctx, name, loc)
			return nil
		})
	}
	_ = g.Wait()

	names := make(map[string]string, len(targets)+1)
	if r.sourceLocale != "" {
		names[r.sourceLocale] = name
	}
	for i, loc := range targets {
		names[loc] = results[i]
	}
	return names
}

func (r *TagResolver) translateOne(ctx context.Context, name, locale string) string {
	system, user, err := r.prompts.Render(ctx, prompt.PromptTranslateV1, map[string]any{
		"source_language": languageName(r.sourceLocale),
		"target_language": languageName(locale),
		"text":            name,
	})
	if err == nil {
		var out string
		out, err = r.text.Complete(service.WithWorkflow(ctx, "translate"), service.ProviderGeneral, system, user, 0.2, 64)
		if err == nil {
			if v := parser.ParseTranslation(out); v != "" {
				return v
			}
			err = errors.New("empty translation")
		}
	}
	logger.Warn(ctx, "tag translation failed, copying source name", "name", name, "locale", locale, "error", err)
	metrics.PipelineDegradations.WithLabelValues(string(StageTagResolution), "translation").Inc()
	return name
}
