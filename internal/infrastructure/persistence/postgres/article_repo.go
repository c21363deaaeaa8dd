// Package postgres 提供 PostgreSQL Repository 实现
package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"z-article-ai-api/internal/domain/entity"
	"z-article-ai-api/internal/domain/repository"
)

// ArticleRepository 文章仓储实现
type ArticleRepository struct {
	client *Client
}

// NewArticleRepository 创建文章仓储
func NewArticleRepository(client *Client) *ArticleRepository {
	return &ArticleRepository{client: client}
}

// Create 创建文章
func (r *ArticleRepository) Create(ctx context.Context, article *entity.Article) error {
	ctx, span := tracer.Start(ctx, "postgres.ArticleRepository.Create")
	defer span.End()

	if article.ID == "" {
		article.ID = uuid.NewString()
	}

	db := getDB(ctx, r.client.db)
	if err := db.Create(article).Error; err != nil {
		span.RecordError(err)
		if isDuplicate(err) {
			return fmt.Errorf("article slug %q: %w", article.Slug, repository.ErrDuplicate)
		}
		return fmt.Errorf("failed to create article: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取文章
func (r *ArticleRepository) GetByID(ctx context.Context, tenantID, id string) (*entity.Article, error) {
	ctx, span := tracer.Start(ctx, "postgres.ArticleRepository.GetByID")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var article entity.Article
	if err := db.First(&article, "tenant_id = ? AND id = ?", tenantID, id).Error; err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get article: %w", err)
	}
	return &article, nil
}

// Update 更新文章
func (r *ArticleRepository) Update(ctx context.Context, article *entity.Article) error {
	ctx, span := tracer.Start(ctx, "postgres.ArticleRepository.Update")
	defer span.End()

	db := getDB(ctx, r.client.db)
	if err := db.Save(article).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to update article: %w", err)
	}
	return nil
}

// ExistsBySlug 检查 slug 是否已被占用
func (r *ArticleRepository) ExistsBySlug(ctx context.Context, tenantID, slug string) (bool, error) {
	ctx, span := tracer.Start(ctx, "postgres.ArticleRepository.ExistsBySlug")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var count int64
	if err := db.Model(&entity.Article{}).
		Where("tenant_id = ? AND slug = ?", tenantID, slug).
		Limit(1).
		Count(&count).Error; err != nil {
		span.RecordError(err)
		return false, fmt.Errorf("failed to check article slug: %w", err)
	}
	return count > 0, nil
}

// ListRecentByCategory 获取分类下最近的文章
func (r *ArticleRepository) ListRecentByCategory(ctx context.Context, tenantID, categoryID string, limit int) ([]*entity.Article, error) {
	ctx, span := tracer.Start(ctx, "postgres.ArticleRepository.ListRecentByCategory")
	defer span.End()

	db := getDB(ctx, r.client.db)
	var articles []*entity.Article
	if err := db.Select("id", "tenant_id", "title", "slug", "selected_keyword", "category_ids", "created_at").
		Where("tenant_id = ? AND ? = ANY(category_ids)", tenantID, categoryID).
		Order("created_at DESC").
		Limit(limit).
		Find(&articles).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list recent articles: %w", err)
	}
	return articles, nil
}

// List 分页获取文章列表
func (r *ArticleRepository) List(ctx context.Context, tenantID string, filter *repository.ArticleFilter, pagination repository.Pagination) (*repository.PagedResult[*entity.Article], error) {
	ctx, span := tracer.Start(ctx, "postgres.ArticleRepository.List")
	defer span.End()

	db := getDB(ctx, r.client.db)
	query := db.Model(&entity.Article{}).Where("tenant_id = ?", tenantID)

	// 应用过滤条件
	if filter != nil {
		if filter.CategoryID != "" {
			query = query.Where("? = ANY(category_ids)", filter.CategoryID)
		}
		if filter.IsPublished != nil {
			query = query.Where("is_published = ?", *filter.IsPublished)
		}
	}

	// 获取总数
	var total int64
	if err := query.Count(&total).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to count articles: %w", err)
	}

	// 列表不返回正文
	var articles []*entity.Article
	if err := query.Omit("content", "content_ja").
		Order("created_at DESC").
		Offset(pagination.Offset()).
		Limit(pagination.Limit()).
		Find(&articles).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list articles: %w", err)
	}

	return repository.NewPagedResult(articles, total, pagination), nil
}
