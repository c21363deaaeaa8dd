package handler

import (
	"context"
	"strings"

	"github.com/gin-gonic/gin"

	"z-article-ai-api/internal/application/article"
	"z-article-ai-api/internal/domain/entity"
	"z-article-ai-api/internal/domain/repository"
	"z-article-ai-api/internal/interfaces/http/dto"
	"z-article-ai-api/internal/interfaces/http/middleware"
	"z-article-ai-api/pkg/errors"
)

// ArticleGenerator 同步生成入口
type ArticleGenerator interface {
	Generate(ctx context.Context, req article.GenerationRequest) (*article.Result, error)
}

// JobSubmitter 异步生成入口
type JobSubmitter interface {
	Submit(ctx context.Context, in article.SubmitInput) (*entity.GenerationJob, error)
}

// ArticleHandler 文章处理器
type ArticleHandler struct {
	generator   ArticleGenerator
	submitter   JobSubmitter
	articleRepo repository.ArticleRepository
}

// NewArticleHandler 创建文章处理器
func NewArticleHandler(generator ArticleGenerator, submitter JobSubmitter, articleRepo repository.ArticleRepository) *ArticleHandler {
	return &ArticleHandler{
		generator:   generator,
		submitter:   submitter,
		articleRepo: articleRepo,
	}
}

// Generate 同步生成文章
// @Summary 生成文章
// @Description 运行完整生成流水线，完成后返回草稿文章
// @Tags Articles
// @Accept json
// @Produce json
// @Param body body dto.GenerateArticleRequest true "生成参数"
// @Success 200 {object} dto.Response[dto.GenerateArticleResponse]
// @Failure 400 {object} dto.ErrorResponse
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "同一分类正在生成"
// @Failure 502 {object} dto.ErrorResponse
// @Router /v1/articles/generate [post]
func (h *ArticleHandler) Generate(c *gin.Context) {
	var req dto.GenerateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	result, err := h.generator.Generate(c.Request.Context(), req.ToGenerationRequest(tenantOf(c)))
	if err != nil {
		respondError(c, err, "article generation failed")
		return
	}

	dto.Success(c, dto.ToGenerateArticleResponse(result))
}

// GenerateAsync 提交异步生成任务
// @Summary 异步生成文章
// @Description 创建生成任务并返回任务信息，可通过 Idempotency-Key 去重
// @Tags Articles
// @Accept json
// @Produce json
// @Param body body dto.GenerateArticleRequest true "生成参数"
// @Success 202 {object} dto.Response[dto.JobResponse]
// @Router /v1/articles/generate/async [post]
func (h *ArticleHandler) GenerateAsync(c *gin.Context) {
	var req dto.GenerateArticleRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		dto.BadRequest(c, "invalid request body: "+err.Error())
		return
	}

	job, err := h.submitter.Submit(c.Request.Context(), article.SubmitInput{
		Request:        req.ToGenerationRequest(tenantOf(c)),
		Trigger:        entity.TriggerManual,
		IdempotencyKey: strings.TrimSpace(c.GetHeader(middleware.IdempotencyKeyHeader)),
		RequestID:      c.GetString("request_id"),
		TraceID:        c.GetString("trace_id"),
	})
	if err != nil {
		respondError(c, err, "failed to submit generation job")
		return
	}

	dto.Accepted(c, dto.ToJobResponse(job))
}

// GetArticle 获取文章详情
// @Summary 获取文章
// @Tags Articles
// @Produce json
// @Param aid path string true "文章 ID"
// @Success 200 {object} dto.Response[dto.ArticleResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/articles/{aid} [get]
func (h *ArticleHandler) GetArticle(c *gin.Context) {
	a, err := h.articleRepo.GetByID(c.Request.Context(), tenantOf(c), dto.BindArticleID(c))
	if err != nil {
		respondError(c, errors.Wrap(err, errors.CodeDatabaseError, "failed to get article"), "failed to get article")
		return
	}
	if a == nil {
		dto.AppError(c, errors.ErrArticleNotFound)
		return
	}

	dto.Success(c, dto.ToArticleResponse(a))
}

// ListArticles 分页列出文章
// @Summary 文章列表
// @Tags Articles
// @Produce json
// @Param category_id query string false "分类 ID"
// @Param published query bool false "是否已发布"
// @Param page query int false "页码"
// @Param page_size query int false "每页数量"
// @Success 200 {object} dto.Response[dto.ArticleListResponse]
// @Router /v1/articles [get]
func (h *ArticleHandler) ListArticles(c *gin.Context) {
	pageReq := dto.BindPage(c)

	filter := &repository.ArticleFilter{CategoryID: c.Query("category_id")}
	switch c.Query("published") {
	case "true":
		v := true
		filter.IsPublished = &v
	case "false":
		v := false
		filter.IsPublished = &v
	}

	result, err := h.articleRepo.List(c.Request.Context(), tenantOf(c), filter, repository.NewPagination(pageReq.Page, pageReq.PageSize))
	if err != nil {
		respondError(c, errors.Wrap(err, errors.CodeDatabaseError, "failed to list articles"), "failed to list articles")
		return
	}

	meta := dto.NewPageMeta(pageReq.Page, pageReq.PageSize, int(result.Total))
	dto.SuccessWithPage(c, dto.ToArticleListResponse(result.Items), meta)
}
