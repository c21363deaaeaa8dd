package repository

import (
	"context"

	"z-article-ai-api/internal/domain/entity"
)

// CategoryRepository 分类仓储接口
type CategoryRepository interface {
	Create(ctx context.Context, category *entity.Category) error
	// GetByID 不存在时返回 nil, nil
	GetByID(ctx context.Context, tenantID, id string) (*entity.Category, error)
}

// WriterRepository 写手仓储接口
type WriterRepository interface {
	Create(ctx context.Context, writer *entity.Writer) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.Writer, error)
}

// ImagePatternRepository 图片风格仓储接口
type ImagePatternRepository interface {
	Create(ctx context.Context, pattern *entity.ImagePattern) error
	GetByID(ctx context.Context, tenantID, id string) (*entity.ImagePattern, error)
}
