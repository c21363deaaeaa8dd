package article

import (
	"context"
	"errors"
	"regexp"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"z-article-ai-api/internal/domain/entity"
	"z-article-ai-api/internal/domain/service"
	"z-article-ai-api/internal/infrastructure/persistence/redis"
	apperrors "z-article-ai-api/pkg/errors"
)

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

func requireReason(t *testing.T, err error, reason Reason, detail string) *PipelineError {
	t.Helper()
	var pe *PipelineError
	require.ErrorAs(t, err, &pe)
	assert.Equal(t, reason, pe.Reason)
	if detail != "" {
		assert.Equal(t, detail, pe.Detail)
	}
	return pe
}

func TestGenerate_EndToEnd(t *testing.T) {
	f := newFixture()
	g := f.generator()

	res, err := g.Generate(context.Background(), f.request())
	require.NoError(t, err)
	require.Len(t, f.articles.articles, 1)
	a := f.articles.articles[0]

	assert.Equal(t, a.ID, res.ArticleID)
	assert.Equal(t, fixtureTitle, res.Title)
	assert.Equal(t, fixtureTitle, a.Title)
	assert.Equal(t, "best-kyoto-autumn-foliage-spots-for-2026", a.Slug)
	assert.Regexp(t, slugPattern, a.Slug)

	assert.GreaterOrEqual(t, len(a.TagIDs), 1)
	assert.LessOrEqual(t, len(a.TagIDs), 5)
	assert.Len(t, a.TagIDs, 4)

	figures := strings.Count(a.Content, `<figure class="inline-image"`)
	assert.Equal(t, 4, figures)
	assert.Equal(t, figures, strings.Count(a.Content, `</h2><figure class="inline-image"`))
	assert.True(t, strings.HasPrefix(a.Content, "<p>Kyoto in autumn is unforgettable.</p>\n<h2>"))

	assert.False(t, a.IsPublished)
	assert.Nil(t, a.PublishedAt)
	assert.Equal(t, fixtureKeyword, a.SelectedKeyword)
	assert.Equal(t, []string{"travel"}, []string(a.CategoryIDs))
	assert.Equal(t, "w1", a.WriterID)
	assert.Equal(t, "asset-1", a.FeaturedImageID)
	assert.NotEmpty(t, a.FeaturedImageURL)
	assert.Equal(t, "Kyoto Autumn Foliage Guide", a.MetaTitle)
	assert.Equal(t, "Where and when to see the leaves.", a.MetaDescription)
	assert.Equal(t, "A two-day foliage route.", a.Excerpt)
	assert.Equal(t, a.Title, a.TitleJa)
	assert.Len(t, a.FAQs, 2)
	require.NotNil(t, a.ResearchBrief)
	assert.Equal(t, "first-time visitors in their 30s", a.ResearchBrief.Persona)
	assert.Equal(t, res.RunID, a.GenerationRunID)

	assert.Equal(t, service.ProviderReasoning, f.text.providers[string(StageSelectKeyword)])
	assert.Equal(t, service.ProviderReasoning, f.text.providers[string(StageResearch)])
	for _, st := range []Stage{StageTitle, StageOutline, StageIntroduction, StageBody, StageMetadata, StageFAQ} {
		assert.Equal(t, service.ProviderGeneral, f.text.providers[string(st)], st)
	}

	for _, asset := range f.media.assets {
		assert.Equal(t, res.RunID, asset.GenerationRunID)
	}
	assert.Equal(t, entity.UsageFeaturedImage, f.media.assets[0].UsageContext)
	assert.Contains(t, f.images.prompts[0], "Soft natural light photograph")
	assert.Contains(t, f.images.prompts[0], fixtureTitle)

	assert.Equal(t, redis.GenerationLockKey(testTenant, "travel"), f.locker.key)
	assert.True(t, f.locker.released)
}

func TestGenerate_ReportsProgressPerStage(t *testing.T) {
	f := newFixture()
	rec := &progressRecorder{}

	_, err := f.generator().Run(context.Background(), f.request(), RunOptions{Progress: rec})
	require.NoError(t, err)

	require.Len(t, rec.stages, len(Stages))
	assert.Equal(t, Stages, rec.stages)
	assert.Equal(t, 100, rec.progress[len(rec.progress)-1])
	for i := 1; i < len(rec.progress); i++ {
		assert.Greater(t, rec.progress[i], rec.progress[i-1])
	}
}

type progressRecorder struct {
	stages   []Stage
	progress []int
}

func (r *progressRecorder) Report(_ context.Context, stage Stage, progress int) {
	r.stages = append(r.stages, stage)
	r.progress = append(r.progress, progress)
}

func TestGenerate_KeywordNeverRepeatsRecent(t *testing.T) {
	f := newFixture()
	f.articles.recent = []*entity.Article{{SelectedKeyword: fixtureKeyword}, {SelectedKeyword: "Osaka food"}}
	f.text.on(string(StageSelectKeyword), "Keyword: "+fixtureKeyword, "Keyword: Osaka food", "Keyword: Nara deer")

	_, err := f.generator().Generate(context.Background(), f.request())
	require.NoError(t, err)

	assert.Equal(t, 3, f.text.count(string(StageSelectKeyword)))
	assert.Equal(t, "Nara deer", f.articles.articles[0].SelectedKeyword)
}

func TestGenerate_KeywordExhausted(t *testing.T) {
	f := newFixture()
	f.articles.recent = []*entity.Article{{SelectedKeyword: fixtureKeyword}}

	_, err := f.generator().Generate(context.Background(), f.request())
	requireReason(t, err, ReasonUniquenessExhausted, DetailKeywordExhausted)

	assert.Equal(t, 3, f.text.count(string(StageSelectKeyword)))
	assert.Zero(t, f.text.count(string(StageResearch)))
	assert.Empty(t, f.articles.articles)
	assert.Equal(t, apperrors.CodeUniquenessExhausted, ToAppError(err).Code)
	assert.True(t, f.locker.released)
}

func TestGenerate_MissingConfiguration(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*GenerationRequest)
		detail string
		code   apperrors.ErrorCode
	}{
		{"category", func(r *GenerationRequest) { r.CategoryID = "nope" }, DetailCategoryNotFound, apperrors.CodeCategoryNotFound},
		{"writer", func(r *GenerationRequest) { r.WriterID = "nope" }, DetailWriterNotFound, apperrors.CodeWriterNotFound},
		{"pattern", func(r *GenerationRequest) { r.ImagePatternID = "nope" }, DetailImagePatternNotFound, apperrors.CodeImagePatternNotFound},
		{"empty id", func(r *GenerationRequest) { r.WriterID = "" }, DetailInvalidRequest, apperrors.CodePipelineConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f := newFixture()
			req := f.request()
			tt.mutate(&req)

			_, err := f.generator().Generate(context.Background(), req)
			requireReason(t, err, ReasonConfiguration, tt.detail)
			assert.Equal(t, tt.code, ToAppError(err).Code)
			assert.Empty(t, f.text.calls, "no provider call before configuration is loaded")
		})
	}
}

func TestGenerate_MissingCredentials(t *testing.T) {
	f := newFixture()
	f.deps.Credentials = stubCredentials{"reasoning": true}

	_, err := f.generator().Generate(context.Background(), f.request())
	requireReason(t, err, ReasonConfiguration, DetailMissingCredentials)
	assert.Empty(t, f.text.calls)
	assert.Empty(t, f.locker.key)
}

func TestGenerate_MissingImageCredentials(t *testing.T) {
	f := newFixture()
	f.deps.Credentials = stubCredentials{"reasoning": true, "general": true}

	_, err := f.generator().Generate(context.Background(), f.request())
	requireReason(t, err, ReasonConfiguration, DetailMissingCredentials)
	assert.Contains(t, err.Error(), ImageCredential)
	assert.Empty(t, f.images.prompts)
}

func TestGenerate_LockHeld(t *testing.T) {
	f := newFixture()
	f.locker.err = redis.ErrLockHeld

	_, err := f.generator().Generate(context.Background(), f.request())
	require.ErrorIs(t, err, redis.ErrLockHeld)
	assert.Equal(t, apperrors.CodeGenerationInProgress, ToAppError(err).Code)
	assert.Empty(t, f.text.calls)
}

type denyQuota struct{}

func (denyQuota) Check(context.Context, string) error { return errors.New("quota exceeded") }

func TestGenerate_QuotaCheckedFirst(t *testing.T) {
	f := newFixture()
	f.deps.Quota = denyQuota{}

	_, err := f.generator().Generate(context.Background(), f.request())
	require.Error(t, err)
	assert.Empty(t, f.text.calls)
}

func TestGenerate_FeaturedImageIsRequired(t *testing.T) {
	f := newFixture()
	f.images.err = errors.New("image provider down")

	_, err := f.generator().Generate(context.Background(), f.request())
	pe := requireReason(t, err, ReasonRequiredAsset, "")
	assert.Equal(t, StageFeaturedImage, pe.Stage)
	assert.Equal(t, apperrors.CodeRequiredAsset, ToAppError(err).Code)

	assert.Empty(t, f.articles.articles)
	tags := f.tags.all()
	require.NotEmpty(t, tags, "tags created before the failure stay behind")
	for _, tag := range tags {
		assert.NotEmpty(t, tag.GenerationRunID)
	}
}

func TestGenerate_InlineImageFailuresAreSkipped(t *testing.T) {
	f := newFixture()
	f.media.failAlt = "Tofukuji"

	_, err := f.generator().Generate(context.Background(), f.request())
	require.NoError(t, err)
	assert.Equal(t, 3, strings.Count(f.articles.articles[0].Content, `<figure class="inline-image"`))
}

func TestGenerate_ProviderErrorFailsStage(t *testing.T) {
	f := newFixture()
	f.text.errs[string(StageOutline)] = errors.New("502 from provider")

	_, err := f.generator().Generate(context.Background(), f.request())
	pe := requireReason(t, err, ReasonProvider, "")
	assert.Equal(t, StageOutline, pe.Stage)
	assert.Equal(t, apperrors.CodeLLMCallFailed, ToAppError(err).Code)
}

func TestGenerate_PersistenceFailure(t *testing.T) {
	f := newFixture()
	f.articles.createErr = errors.New("connection reset")

	_, err := f.generator().Generate(context.Background(), f.request())
	pe := requireReason(t, err, ReasonPersistence, "")
	assert.Equal(t, StagePersist, pe.Stage)
	assert.Equal(t, 500, ToAppError(err).HTTPStatus)
}

func TestGenerate_DegradedParsing(t *testing.T) {
	f := newFixture()
	f.text.
		on(string(StageTitle), "I could not think of a title").
		on(string(StageMetadata), "nothing useful").
		on(string(StageFAQ), "No questions today.")

	_, err := f.generator().Generate(context.Background(), f.request())
	require.NoError(t, err)
	a := f.articles.articles[0]

	assert.Equal(t, fixtureKeyword, a.Title)
	assert.Equal(t, "kyoto-autumn-foliage", a.Slug)
	assert.Equal(t, fixtureKeyword, a.MetaTitle)
	assert.Equal(t, "Kyoto in autumn is unforgettable.", a.Excerpt)
	assert.NotEmpty(t, a.MetaDescription)
	assert.LessOrEqual(t, len([]rune(a.MetaDescription)), 160)
	assert.NotNil(t, a.FAQs)
	assert.Empty(t, a.FAQs)
}

func TestGenerate_NonLatinTitleSlug(t *testing.T) {
	f := newFixture()
	f.text.on(string(StageTitle), "タイトル: 京都の紅葉ガイド")

	_, err := f.generator().Generate(context.Background(), f.request())
	require.NoError(t, err)
	assert.Equal(t, "autumn-leaves", f.articles.articles[0].Slug)
}

func TestGenerate_NonLatinTitleSlugKeepsLongerPhrase(t *testing.T) {
	f := newFixture()
	f.text.on(string(StageTitle), "タイトル: 京都の紅葉ガイド")
	var slugPrompt string
	f.text.handler = func(workflow, system, user string) (string, error) {
		if workflow == "slug" {
			slugPrompt = system
		}
		return "", nil
	}
	f.text.on("slug", "Slug: kyoto autumn leaves viewing guide")

	_, err := f.generator().Generate(context.Background(), f.request())
	require.NoError(t, err)
	assert.Equal(t, "kyoto-autumn-leaves-viewing-guide", f.articles.articles[0].Slug)
	assert.Contains(t, slugPrompt, "article titles")
}

func TestUniqueSlug_NumericSuffix(t *testing.T) {
	f := newFixture()
	f.articles.slugs["foo"] = true
	f.articles.slugs["foo-1"] = true

	got, err := f.generator().uniqueSlug(testContext(), testTenant, "foo")
	require.NoError(t, err)
	assert.Equal(t, "foo-2", got)
}

func TestUniqueSlug_Exhausted(t *testing.T) {
	f := newFixture()
	f.cfg.SlugAttempts = 3
	for _, s := range []string{"foo", "foo-1", "foo-2"} {
		f.articles.slugs[s] = true
	}

	_, err := f.generator().uniqueSlug(testContext(), testTenant, "foo")
	requireReason(t, err, ReasonUniquenessExhausted, DetailSlugExhausted)
}

func TestStageProgress(t *testing.T) {
	assert.Equal(t, 100, StagePersist.Progress())
	assert.Equal(t, 7, StageFetchConfig.Progress())
	assert.Equal(t, 0, Stage("unknown").Progress())
}
