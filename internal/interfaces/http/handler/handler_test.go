package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"z-article-ai-api/internal/application/article"
	"z-article-ai-api/internal/domain/entity"
	"z-article-ai-api/internal/domain/repository"
	"z-article-ai-api/internal/infrastructure/persistence/redis"
	"z-article-ai-api/internal/interfaces/http/middleware"
	apperrors "z-article-ai-api/pkg/errors"
)

func init() {
	gin.SetMode(gin.TestMode)
}

type stubGenerator struct {
	got    article.GenerationRequest
	result *article.Result
	err    error
}

func (s *stubGenerator) Generate(_ context.Context, req article.GenerationRequest) (*article.Result, error) {
	s.got = req
	return s.result, s.err
}

type stubSubmitter struct {
	got article.SubmitInput
	job *entity.GenerationJob
	err error
}

func (s *stubSubmitter) Submit(_ context.Context, in article.SubmitInput) (*entity.GenerationJob, error) {
	s.got = in
	return s.job, s.err
}

type memArticles struct {
	repository.ArticleRepository
	items      map[string]*entity.Article
	lastFilter *repository.ArticleFilter
}

func (m *memArticles) GetByID(_ context.Context, tenantID, id string) (*entity.Article, error) {
	a, ok := m.items[id]
	if !ok || a.TenantID != tenantID {
		return nil, nil
	}
	return a, nil
}

func (m *memArticles) List(_ context.Context, tenantID string, filter *repository.ArticleFilter, p repository.Pagination) (*repository.PagedResult[*entity.Article], error) {
	m.lastFilter = filter
	var out []*entity.Article
	for _, a := range m.items {
		if a.TenantID == tenantID {
			out = append(out, a)
		}
	}
	return repository.NewPagedResult(out, int64(len(out)), p), nil
}

type memJobs struct {
	repository.JobRepository
	items   map[string]*entity.GenerationJob
	updated []*entity.GenerationJob
}

func (m *memJobs) GetByID(_ context.Context, tenantID, id string) (*entity.GenerationJob, error) {
	j, ok := m.items[id]
	if !ok || j.TenantID != tenantID {
		return nil, nil
	}
	return j, nil
}

func (m *memJobs) Update(_ context.Context, job *entity.GenerationJob) error {
	m.updated = append(m.updated, job)
	return nil
}

func (m *memJobs) List(_ context.Context, tenantID string, _ *repository.JobFilter, p repository.Pagination) (*repository.PagedResult[*entity.GenerationJob], error) {
	var out []*entity.GenerationJob
	for _, j := range m.items {
		if j.TenantID == tenantID {
			out = append(out, j)
		}
	}
	return repository.NewPagedResult(out, int64(len(out)), p), nil
}

// engine 以租户 t1 的编辑身份挂载路由
func engine(articles *ArticleHandler, jobs *JobHandler) *gin.Engine {
	e := gin.New()
	v1 := e.Group("/api/v1", func(c *gin.Context) {
		c.Set("tenant_id", "t1")
		c.Set("role", "editor")
	})
	if articles != nil {
		v1.GET("/articles", articles.ListArticles)
		v1.GET("/articles/:aid", articles.GetArticle)
		v1.POST("/articles/generate", articles.Generate)
		v1.POST("/articles/generate/async", articles.GenerateAsync)
	}
	if jobs != nil {
		v1.GET("/jobs", jobs.ListJobs)
		v1.GET("/jobs/:jid", jobs.GetJob)
		v1.DELETE("/jobs/:jid", jobs.CancelJob)
	}
	return e
}

func call(e *gin.Engine, method, path string, body any, headers map[string]string) *httptest.ResponseRecorder {
	var buf bytes.Buffer
	if body != nil {
		_ = json.NewEncoder(&buf).Encode(body)
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	e.ServeHTTP(w, req)
	return w
}

type envelope struct {
	Code    int             `json:"code"`
	Message string          `json:"message"`
	Data    json.RawMessage `json:"data"`
	Error   *struct {
		ErrorCode string `json:"error_code"`
		Details   string `json:"details"`
	} `json:"error"`
}

func parse(t *testing.T, w *httptest.ResponseRecorder) envelope {
	t.Helper()
	var env envelope
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env))
	return env
}

var validBody = map[string]string{
	"category_id":      "travel",
	"writer_id":        "w1",
	"image_pattern_id": "p1",
}

func TestGenerate_UsesTenantFromAuth(t *testing.T) {
	gen := &stubGenerator{result: &article.Result{ArticleID: "a1", Title: "T", Slug: "t", RunID: "r1"}}
	e := engine(NewArticleHandler(gen, nil, nil), nil)

	w := call(e, http.MethodPost, "/api/v1/articles/generate", validBody, nil)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, article.GenerationRequest{TenantID: "t1", CategoryID: "travel", WriterID: "w1", ImagePatternID: "p1"}, gen.got)

	var data map[string]string
	require.NoError(t, json.Unmarshal(parse(t, w).Data, &data))
	assert.Equal(t, "a1", data["article_id"])
	assert.Equal(t, "t", data["slug"])
}

func TestGenerate_MissingFields(t *testing.T) {
	gen := &stubGenerator{}
	e := engine(NewArticleHandler(gen, nil, nil), nil)

	w := call(e, http.MethodPost, "/api/v1/articles/generate", map[string]string{"category_id": "travel"}, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Empty(t, gen.got.TenantID)
}

func TestGenerate_ErrorMapping(t *testing.T) {
	cases := []struct {
		name   string
		err    error
		status int
		code   apperrors.ErrorCode
	}{
		{
			name:   "category missing",
			err:    &article.PipelineError{Reason: article.ReasonConfiguration, Stage: article.StageFetchConfig, Detail: article.DetailCategoryNotFound},
			status: http.StatusNotFound,
			code:   apperrors.CodeCategoryNotFound,
		},
		{
			name:   "generation in progress",
			err:    redis.ErrLockHeld,
			status: http.StatusConflict,
			code:   apperrors.CodeGenerationInProgress,
		},
		{
			name:   "slug exhausted",
			err:    &article.PipelineError{Reason: article.ReasonUniquenessExhausted, Stage: article.StageMetadata, Detail: article.DetailSlugExhausted},
			status: http.StatusUnprocessableEntity,
			code:   apperrors.CodeUniquenessExhausted,
		},
		{
			name:   "featured image failed",
			err:    &article.PipelineError{Reason: article.ReasonRequiredAsset, Stage: article.StageFeaturedImage, Err: errors.New("provider down")},
			status: http.StatusBadGateway,
			code:   apperrors.CodeRequiredAsset,
		},
		{
			name:   "persistence",
			err:    &article.PipelineError{Reason: article.ReasonPersistence, Stage: article.StagePersist, Err: errors.New("db")},
			status: http.StatusInternalServerError,
			code:   apperrors.CodeDatabaseError,
		},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			e := engine(NewArticleHandler(&stubGenerator{err: tc.err}, nil, nil), nil)

			w := call(e, http.MethodPost, "/api/v1/articles/generate", validBody, nil)

			assert.Equal(t, tc.status, w.Code)
			env := parse(t, w)
			require.NotNil(t, env.Error)
			assert.Equal(t, string(tc.code), env.Error.ErrorCode)
		})
	}
}

func TestGenerateAsync_PassesIdempotencyKey(t *testing.T) {
	job := entity.NewGenerationJob("t1", "travel", "w1", "p1", entity.TriggerManual)
	job.ID = "job-1"
	sub := &stubSubmitter{job: job}
	e := engine(NewArticleHandler(nil, sub, nil), nil)

	w := call(e, http.MethodPost, "/api/v1/articles/generate/async", validBody, map[string]string{
		middleware.IdempotencyKeyHeader: " key-1 ",
	})

	require.Equal(t, http.StatusAccepted, w.Code)
	assert.Equal(t, "key-1", sub.got.IdempotencyKey)
	assert.Equal(t, "t1", sub.got.Request.TenantID)
	assert.Equal(t, entity.TriggerManual, sub.got.Trigger)

	var data map[string]any
	require.NoError(t, json.Unmarshal(parse(t, w).Data, &data))
	assert.Equal(t, "job-1", data["id"])
	assert.Equal(t, "pending", data["status"])
}

func TestGetArticle(t *testing.T) {
	repo := &memArticles{items: map[string]*entity.Article{
		"a1": {ID: "a1", TenantID: "t1", Title: "Mine", Slug: "mine"},
		"a2": {ID: "a2", TenantID: "t2", Title: "Theirs", Slug: "theirs"},
	}}
	e := engine(NewArticleHandler(nil, nil, repo), nil)

	w := call(e, http.MethodGet, "/api/v1/articles/a1", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)

	// 其他租户的文章不可见
	w = call(e, http.MethodGet, "/api/v1/articles/a2", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, string(apperrors.CodeArticleNotFound), parse(t, w).Error.ErrorCode)
}

func TestListArticles_Filters(t *testing.T) {
	repo := &memArticles{items: map[string]*entity.Article{
		"a1": {ID: "a1", TenantID: "t1", Title: "One"},
		"a2": {ID: "a2", TenantID: "t2", Title: "Two"},
	}}
	e := engine(NewArticleHandler(nil, nil, repo), nil)

	w := call(e, http.MethodGet, "/api/v1/articles?category_id=travel&published=false&page=1&page_size=10", nil, nil)

	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, repo.lastFilter)
	assert.Equal(t, "travel", repo.lastFilter.CategoryID)
	require.NotNil(t, repo.lastFilter.IsPublished)
	assert.False(t, *repo.lastFilter.IsPublished)

	var data struct {
		Articles []map[string]any `json:"articles"`
	}
	require.NoError(t, json.Unmarshal(parse(t, w).Data, &data))
	assert.Len(t, data.Articles, 1)
}

func TestJobHandler_GetAndCancel(t *testing.T) {
	pending := entity.NewGenerationJob("t1", "travel", "w1", "p1", entity.TriggerManual)
	pending.ID = "j1"
	done := entity.NewGenerationJob("t1", "travel", "w1", "p1", entity.TriggerManual)
	done.ID = "j2"
	done.Complete("a1", "Title")
	jobs := &memJobs{items: map[string]*entity.GenerationJob{"j1": pending, "j2": done}}
	e := engine(nil, NewJobHandler(jobs))

	w := call(e, http.MethodGet, "/api/v1/jobs/j2", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	var data map[string]any
	require.NoError(t, json.Unmarshal(parse(t, w).Data, &data))
	assert.Equal(t, "a1", data["article_id"])
	assert.EqualValues(t, 100, data["progress"])

	w = call(e, http.MethodDelete, "/api/v1/jobs/j1", nil, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, entity.JobStatusCancelled, pending.Status)
	require.Len(t, jobs.updated, 1)

	w = call(e, http.MethodDelete, "/api/v1/jobs/j2", nil, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w = call(e, http.MethodGet, "/api/v1/jobs/missing", nil, nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, string(apperrors.CodeJobNotFound), parse(t, w).Error.ErrorCode)
}

type stubChecker struct{ err error }

func (s stubChecker) HealthCheck(context.Context) error { return s.err }

func TestHealth_Ready(t *testing.T) {
	e := gin.New()
	ok := NewHealthHandler(stubChecker{}, stubChecker{}, "1.0.0")
	e.GET("/ready", ok.Ready)
	e.GET("/health", ok.Health)

	assert.Equal(t, http.StatusOK, call(e, http.MethodGet, "/ready", nil, nil).Code)
	assert.Contains(t, call(e, http.MethodGet, "/health", nil, nil).Body.String(), "1.0.0")

	bad := gin.New()
	down := NewHealthHandler(stubChecker{}, stubChecker{err: errors.New("refused")}, "")
	bad.GET("/ready", down.Ready)
	w := call(bad, http.MethodGet, "/ready", nil, nil)
	assert.Equal(t, http.StatusServiceUnavailable, w.Code)
	assert.Contains(t, w.Body.String(), "refused")
}
