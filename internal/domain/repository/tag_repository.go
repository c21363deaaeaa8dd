package repository

import (
	"context"

	"z-article-ai-api/internal/domain/entity"
)

// TagRepository 标签仓储接口
type TagRepository interface {
	// Create 创建标签，名称（不区分大小写）冲突时返回 ErrDuplicate
	Create(ctx context.Context, tag *entity.Tag) error

	// GetByID 根据 ID 获取标签
	GetByID(ctx context.Context, tenantID, id string) (*entity.Tag, error)

	// FindByNameFold 不区分大小写按名称查找，不存在时返回 nil, nil
	FindByNameFold(ctx context.Context, tenantID, name string) (*entity.Tag, error)

	// ListByIDs 批量获取
	ListByIDs(ctx context.Context, tenantID string, ids []string) ([]*entity.Tag, error)
}

// MediaAssetRepository 媒体资源仓储接口
type MediaAssetRepository interface {
	Create(ctx context.Context, asset *entity.MediaAsset) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.MediaAsset, error)
	// ListByRun 查询某次生成留下的资源（失败运行的残留排查）
	ListByRun(ctx context.Context, tenantID, runID string) ([]*entity.MediaAsset, error)
}
