// Package entity 定义领域实体
package entity

import (
	"time"
)

// JobType 任务类型
type JobType string

const (
	JobTypeArticleGen JobType = "article_gen"
)

// JobStatus 任务状态
type JobStatus string

const (
	JobStatusPending   JobStatus = "pending"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
	JobStatusCancelled JobStatus = "cancelled"
)

// JobTrigger 触发方式
type JobTrigger string

const (
	TriggerManual    JobTrigger = "manual"
	TriggerScheduled JobTrigger = "scheduled"
)

// GenerationJob 文章生成任务
type GenerationJob struct {
	ID             string     `json:"id" gorm:"type:varchar(64);primaryKey"`
	TenantID       string     `json:"tenant_id" gorm:"type:varchar(64);index;not null"`
	JobType        JobType    `json:"job_type" gorm:"type:varchar(32);not null"`
	Trigger        JobTrigger `json:"trigger" gorm:"type:varchar(16);not null"`
	CategoryID     string     `json:"category_id" gorm:"type:varchar(64);index"`
	WriterID       string     `json:"writer_id" gorm:"type:varchar(64)"`
	ImagePatternID string     `json:"image_pattern_id" gorm:"type:varchar(64)"`
	Status         JobStatus  `json:"status" gorm:"type:varchar(16);index;not null"`
	Stage          string     `json:"stage,omitempty" gorm:"type:varchar(32)"`
	Progress       int        `json:"progress"` // 任务进度 (0-100)
	ArticleID      string     `json:"article_id,omitempty" gorm:"type:varchar(64)"`
	Title          string     `json:"title,omitempty" gorm:"type:varchar(255)"`
	ErrorMessage   string     `json:"error_message,omitempty" gorm:"type:text"`
	ErrorReason    string     `json:"error_reason,omitempty" gorm:"type:varchar(32)"`
	TokensPrompt   int        `json:"tokens_prompt,omitempty"`
	TokensComplete int        `json:"tokens_completion,omitempty"`
	DurationMs     int        `json:"duration_ms,omitempty"`
	RetryCount     int        `json:"retry_count"`
	IdempotencyKey string     `json:"idempotency_key,omitempty" gorm:"type:varchar(128);index"`
	CreatedAt      time.Time  `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt      time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
	StartedAt      *time.Time `json:"started_at,omitempty"`
	CompletedAt    *time.Time `json:"completed_at,omitempty"`
}

func (GenerationJob) TableName() string {
	return "generation_jobs"
}

// NewGenerationJob 创建新任务
func NewGenerationJob(tenantID, categoryID, writerID, imagePatternID string, trigger JobTrigger) *GenerationJob {
	return &GenerationJob{
		TenantID:       tenantID,
		JobType:        JobTypeArticleGen,
		Trigger:        trigger,
		CategoryID:     categoryID,
		WriterID:       writerID,
		ImagePatternID: imagePatternID,
		Status:         JobStatusPending,
		CreatedAt:      time.Now(),
	}
}

// Start 开始执行任务
func (j *GenerationJob) Start() {
	now := time.Now()
	j.Status = JobStatusRunning
	j.StartedAt = &now
	j.ErrorMessage = ""
	j.ErrorReason = ""
}

// Complete 完成任务
func (j *GenerationJob) Complete(articleID, title string) {
	now := time.Now()
	j.Status = JobStatusCompleted
	j.ArticleID = articleID
	j.Title = title
	j.Progress = 100
	j.CompletedAt = &now
	if j.StartedAt != nil {
		j.DurationMs = int(now.Sub(*j.StartedAt).Milliseconds())
	}
}

// Fail 任务失败
func (j *GenerationJob) Fail(reason, errMsg string) {
	now := time.Now()
	j.Status = JobStatusFailed
	j.ErrorReason = reason
	j.ErrorMessage = errMsg
	j.CompletedAt = &now
	if j.StartedAt != nil {
		j.DurationMs = int(now.Sub(*j.StartedAt).Milliseconds())
	}
}

// Retry 重试任务
func (j *GenerationJob) Retry() {
	j.RetryCount++
	j.Status = JobStatusPending
	j.StartedAt = nil
	j.CompletedAt = nil
	j.ErrorMessage = ""
	j.ErrorReason = ""
}

// CanRetry 检查是否可以重试
func (j *GenerationJob) CanRetry(maxRetries int) bool {
	return j.RetryCount < maxRetries && j.Status == JobStatusFailed
}

// IsTerminal 是否已结束
func (j *GenerationJob) IsTerminal() bool {
	switch j.Status {
	case JobStatusCompleted, JobStatusFailed, JobStatusCancelled:
		return true
	}
	return false
}

// AddTokens 累加 LLM 使用量
func (j *GenerationJob) AddTokens(promptTokens, completionTokens int) {
	j.TokensPrompt += promptTokens
	j.TokensComplete += completionTokens
}

// UpdateProgress 更新任务进度
func (j *GenerationJob) UpdateProgress(stage string, progress int) {
	if progress < 0 {
		progress = 0
	}
	if progress > 100 {
		progress = 100
	}
	j.Stage = stage
	j.Progress = progress
}
