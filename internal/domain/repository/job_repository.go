// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"z-article-ai-api/internal/domain/entity"
)

// JobFilter 任务过滤条件
type JobFilter struct {
	Status     entity.JobStatus
	CategoryID string
}

// JobRepository 生成任务仓储接口
type JobRepository interface {
	// Create 创建任务
	Create(ctx context.Context, job *entity.GenerationJob) error

	// GetByID 根据 ID 获取任务，不存在时返回 nil, nil
	GetByID(ctx context.Context, tenantID, id string) (*entity.GenerationJob, error)

	// Update 更新任务
	Update(ctx context.Context, job *entity.GenerationJob) error

	// List 获取租户任务列表
	List(ctx context.Context, tenantID string, filter *JobFilter, pagination Pagination) (*PagedResult[*entity.GenerationJob], error)

	// GetByIdempotencyKey 根据幂等键获取任务
	GetByIdempotencyKey(ctx context.Context, tenantID, key string) (*entity.GenerationJob, error)

	// UpdateProgress 更新当前阶段与进度（0-100）
	UpdateProgress(ctx context.Context, id, stage string, progress int) error

	// AddTokens 累加 LLM token 用量
	AddTokens(ctx context.Context, id string, promptTokens, completionTokens int) error
}
