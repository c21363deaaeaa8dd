// Package repository 定义数据访问层接口
package repository

import (
	"context"

	"z-article-ai-api/internal/domain/entity"
)

// ArticleFilter 文章过滤条件
type ArticleFilter struct {
	CategoryID  string
	IsPublished *bool
}

// ArticleRepository 文章仓储接口，所有方法都显式携带租户 ID
type ArticleRepository interface {
	// Create 创建文章，slug 冲突时返回 ErrDuplicate
	Create(ctx context.Context, article *entity.Article) error

	// GetByID 根据 ID 获取文章，不存在时返回 nil, nil
	GetByID(ctx context.Context, tenantID, id string) (*entity.Article, error)

	// Update 更新文章
	Update(ctx context.Context, article *entity.Article) error

	// ExistsBySlug 检查租户内 slug 是否已被占用
	ExistsBySlug(ctx context.Context, tenantID, slug string) (bool, error)

	// ListRecentByCategory 按创建时间倒序获取分类下最近的文章
	ListRecentByCategory(ctx context.Context, tenantID, categoryID string, limit int) ([]*entity.Article, error)

	// List 分页获取文章列表
	List(ctx context.Context, tenantID string, filter *ArticleFilter, pagination Pagination) (*PagedResult[*entity.Article], error)
}
