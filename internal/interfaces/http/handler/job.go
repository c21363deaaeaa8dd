package handler

import (
	"github.com/gin-gonic/gin"

	"z-article-ai-api/internal/domain/entity"
	"z-article-ai-api/internal/domain/repository"
	"z-article-ai-api/internal/interfaces/http/dto"
	"z-article-ai-api/pkg/errors"
)

// JobHandler 任务处理器
type JobHandler struct {
	jobRepo repository.JobRepository
}

// NewJobHandler 创建任务处理器
func NewJobHandler(jobRepo repository.JobRepository) *JobHandler {
	return &JobHandler{
		jobRepo: jobRepo,
	}
}

// GetJob 获取任务详情
// @Summary 获取任务详情
// @Description 获取指定任务的状态、阶段与进度
// @Tags Jobs
// @Produce json
// @Param jid path string true "任务 ID"
// @Success 200 {object} dto.Response[dto.JobResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Router /v1/jobs/{jid} [get]
func (h *JobHandler) GetJob(c *gin.Context) {
	job, ok := h.loadJob(c)
	if !ok {
		return
	}
	dto.Success(c, dto.ToJobResponse(job))
}

// CancelJob 取消任务
// @Summary 取消任务
// @Description 取消尚未结束的任务，运行中的流水线不会被中断
// @Tags Jobs
// @Produce json
// @Param jid path string true "任务 ID"
// @Success 200 {object} dto.Response[dto.CancelJobResponse]
// @Failure 404 {object} dto.ErrorResponse
// @Failure 409 {object} dto.ErrorResponse "任务已结束"
// @Router /v1/jobs/{jid} [delete]
func (h *JobHandler) CancelJob(c *gin.Context) {
	job, ok := h.loadJob(c)
	if !ok {
		return
	}

	switch job.Status {
	case entity.JobStatusCancelled:
		dto.Success(c, &dto.CancelJobResponse{ID: job.ID, Cancelled: true})
		return
	case entity.JobStatusCompleted, entity.JobStatusFailed:
		dto.AppError(c, errors.New(errors.CodeConflict, "job already finished"))
		return
	}

	job.Status = entity.JobStatusCancelled
	if err := h.jobRepo.Update(c.Request.Context(), job); err != nil {
		respondError(c, errors.Wrap(err, errors.CodeDatabaseError, "failed to cancel job"), "failed to cancel job")
		return
	}

	dto.Success(c, &dto.CancelJobResponse{ID: job.ID, Cancelled: true})
}

// ListJobs 获取当前租户的任务列表
// @Summary 任务列表
// @Tags Jobs
// @Produce json
// @Param status query string false "任务状态"
// @Param category_id query string false "分类 ID"
// @Success 200 {object} dto.Response[dto.JobListResponse]
// @Router /v1/jobs [get]
func (h *JobHandler) ListJobs(c *gin.Context) {
	pageReq := dto.BindPage(c)

	filter := &repository.JobFilter{
		Status:     entity.JobStatus(c.Query("status")),
		CategoryID: c.Query("category_id"),
	}

	result, err := h.jobRepo.List(c.Request.Context(), tenantOf(c), filter, repository.NewPagination(pageReq.Page, pageReq.PageSize))
	if err != nil {
		respondError(c, errors.Wrap(err, errors.CodeDatabaseError, "failed to list jobs"), "failed to list jobs")
		return
	}

	meta := dto.NewPageMeta(pageReq.Page, pageReq.PageSize, int(result.Total))
	dto.SuccessWithPage(c, dto.ToJobListResponse(result.Items), meta)
}

func (h *JobHandler) loadJob(c *gin.Context) (*entity.GenerationJob, bool) {
	job, err := h.jobRepo.GetByID(c.Request.Context(), tenantOf(c), dto.BindJobID(c))
	if err != nil {
		respondError(c, errors.Wrap(err, errors.CodeDatabaseError, "failed to get job"), "failed to get job")
		return nil, false
	}
	if job == nil {
		dto.AppError(c, errors.ErrJobNotFound)
		return nil, false
	}
	return job, true
}
