// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"z-article-ai-api/internal/domain/entity"
)

// TenantRepository 租户仓储接口
type TenantRepository interface {
	// Create 创建租户
	Create(ctx context.Context, tenant *entity.Tenant) error

	// GetByID 根据 ID 获取租户，不存在时返回 nil, nil
	GetByID(ctx context.Context, id string) (*entity.Tenant, error)

	// UpdateStatus 更新租户状态
	UpdateStatus(ctx context.Context, id string, status entity.TenantStatus) error
}
