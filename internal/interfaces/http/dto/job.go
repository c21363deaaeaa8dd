package dto

import (
	"time"

	"z-article-ai-api/internal/domain/entity"
)

// JobResponse 任务响应
type JobResponse struct {
	ID             string     `json:"id"`
	TenantID       string     `json:"tenant_id"`
	JobType        string     `json:"job_type"`
	Trigger        string     `json:"trigger"`
	CategoryID     string     `json:"category_id"`
	WriterID       string     `json:"writer_id"`
	ImagePatternID string     `json:"image_pattern_id"`
	Status         string     `json:"status"`
	Stage          string     `json:"stage,omitempty"`
	Progress       int        `json:"progress"`
	ArticleID      string     `json:"article_id,omitempty"`
	Title          string     `json:"title,omitempty"`
	ErrorReason    string     `json:"error_reason,omitempty"`
	ErrorMsg       string     `json:"error_msg,omitempty"`
	RetryCount     int        `json:"retry_count"`
	DurationMs     int        `json:"duration_ms,omitempty"`
	StartedAt      *time.Time `json:"started_at,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

// JobListResponse 任务列表响应
type JobListResponse struct {
	Jobs []*JobResponse `json:"jobs"`
}

// CancelJobResponse 取消任务响应
type CancelJobResponse struct {
	ID        string `json:"id"`
	Cancelled bool   `json:"cancelled"`
}

// ToJobResponse 将领域实体转换为响应 DTO
func ToJobResponse(j *entity.GenerationJob) *JobResponse {
	if j == nil {
		return nil
	}

	return &JobResponse{
		ID:             j.ID,
		TenantID:       j.TenantID,
		JobType:        string(j.JobType),
		Trigger:        string(j.Trigger),
		CategoryID:     j.CategoryID,
		WriterID:       j.WriterID,
		ImagePatternID: j.ImagePatternID,
		Status:         string(j.Status),
		Stage:          j.Stage,
		Progress:       j.Progress,
		ArticleID:      j.ArticleID,
		Title:          j.Title,
		ErrorReason:    j.ErrorReason,
		ErrorMsg:       j.ErrorMessage,
		RetryCount:     j.RetryCount,
		DurationMs:     j.DurationMs,
		StartedAt:      j.StartedAt,
		CompletedAt:    j.CompletedAt,
		CreatedAt:      j.CreatedAt,
		UpdatedAt:      j.UpdatedAt,
	}
}

// ToJobListResponse 转换任务列表
func ToJobListResponse(jobs []*entity.GenerationJob) *JobListResponse {
	out := make([]*JobResponse, 0, len(jobs))
	for _, j := range jobs {
		out = append(out, ToJobResponse(j))
	}
	return &JobListResponse{Jobs: out}
}
