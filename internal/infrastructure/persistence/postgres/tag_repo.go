package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"z-article-ai-api/internal/domain/entity"
	"z-article-ai-api/internal/domain/repository"
)

// TagRepository 标签仓储实现
type TagRepository struct {
	client *Client
}

// NewTagRepository 创建标签仓储
func NewTagRepository(client *Client) *TagRepository {
	return &TagRepository{client: client}
}

// Create 创建标签，依赖 (tenant_id, lower(name)) 唯一索引
func (r *TagRepository) Create(ctx context.Context, tag *entity.Tag) error {
	ctx, span := tracer.Start(ctx, "postgres.TagRepository.Create")
	defer span.End()

	if tag.ID == "" {
		tag.ID = uuid.NewString()
	}
	if err := getDB(ctx, r.client.db).Create(tag).Error; err != nil {
		span.RecordError(err)
		if isDuplicate(err) {
			return fmt.Errorf("tag %q: %w", tag.Name, repository.ErrDuplicate)
		}
		return fmt.Errorf("failed to create tag: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取标签
func (r *TagRepository) GetByID(ctx context.Context, tenantID, id string) (*entity.Tag, error) {
	ctx, span := tracer.Start(ctx, "postgres.TagRepository.GetByID")
	defer span.End()

	var tag entity.Tag
	if err := getDB(ctx, r.client.db).First(&tag, "tenant_id = ? AND id = ?", tenantID, id).Error; err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get tag: %w", err)
	}
	return &tag, nil
}

// FindByNameFold 不区分大小写按名称查找
func (r *TagRepository) FindByNameFold(ctx context.Context, tenantID, name string) (*entity.Tag, error) {
	ctx, span := tracer.Start(ctx, "postgres.TagRepository.FindByNameFold")
	defer span.End()

	var tag entity.Tag
	err := getDB(ctx, r.client.db).
		Where("tenant_id = ? AND lower(name) = lower(?)", tenantID, name).
		Order("created_at ASC").
		First(&tag).Error
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to find tag by name: %w", err)
	}
	return &tag, nil
}

// ListByIDs 批量获取
func (r *TagRepository) ListByIDs(ctx context.Context, tenantID string, ids []string) ([]*entity.Tag, error) {
	ctx, span := tracer.Start(ctx, "postgres.TagRepository.ListByIDs")
	defer span.End()

	if len(ids) == 0 {
		return nil, nil
	}
	var tags []*entity.Tag
	if err := getDB(ctx, r.client.db).
		Where("tenant_id = ? AND id IN ?", tenantID, ids).
		Find(&tags).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list tags: %w", err)
	}
	return tags, nil
}
