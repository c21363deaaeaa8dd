package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"z-article-ai-api/internal/domain/entity"
)

// CategoryRepository 分类仓储实现
type CategoryRepository struct {
	client *Client
}

// NewCategoryRepository 创建分类仓储
func NewCategoryRepository(client *Client) *CategoryRepository {
	return &CategoryRepository{client: client}
}

// Create 创建分类
func (r *CategoryRepository) Create(ctx context.Context, category *entity.Category) error {
	ctx, span := tracer.Start(ctx, "postgres.CategoryRepository.Create")
	defer span.End()

	if category.ID == "" {
		category.ID = uuid.NewString()
	}
	if err := getDB(ctx, r.client.db).Create(category).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create category: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取分类
func (r *CategoryRepository) GetByID(ctx context.Context, tenantID, id string) (*entity.Category, error) {
	ctx, span := tracer.Start(ctx, "postgres.CategoryRepository.GetByID")
	defer span.End()

	var category entity.Category
	if err := getDB(ctx, r.client.db).First(&category, "tenant_id = ? AND id = ?", tenantID, id).Error; err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get category: %w", err)
	}
	return &category, nil
}

// WriterRepository 写手仓储实现
type WriterRepository struct {
	client *Client
}

// NewWriterRepository 创建写手仓储
func NewWriterRepository(client *Client) *WriterRepository {
	return &WriterRepository{client: client}
}

// Create 创建写手
func (r *WriterRepository) Create(ctx context.Context, writer *entity.Writer) error {
	ctx, span := tracer.Start(ctx, "postgres.WriterRepository.Create")
	defer span.End()

	if writer.ID == "" {
		writer.ID = uuid.NewString()
	}
	if err := getDB(ctx, r.client.db).Create(writer).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create writer: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取写手
func (r *WriterRepository) GetByID(ctx context.Context, tenantID, id string) (*entity.Writer, error) {
	ctx, span := tracer.Start(ctx, "postgres.WriterRepository.GetByID")
	defer span.End()

	var writer entity.Writer
	if err := getDB(ctx, r.client.db).First(&writer, "tenant_id = ? AND id = ?", tenantID, id).Error; err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get writer: %w", err)
	}
	return &writer, nil
}

// ImagePatternRepository 图片风格仓储实现
type ImagePatternRepository struct {
	client *Client
}

// NewImagePatternRepository 创建图片风格仓储
func NewImagePatternRepository(client *Client) *ImagePatternRepository {
	return &ImagePatternRepository{client: client}
}

// Create 创建图片风格
func (r *ImagePatternRepository) Create(ctx context.Context, pattern *entity.ImagePattern) error {
	ctx, span := tracer.Start(ctx, "postgres.ImagePatternRepository.Create")
	defer span.End()

	if pattern.ID == "" {
		pattern.ID = uuid.NewString()
	}
	if err := getDB(ctx, r.client.db).Create(pattern).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create image pattern: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取图片风格
func (r *ImagePatternRepository) GetByID(ctx context.Context, tenantID, id string) (*entity.ImagePattern, error) {
	ctx, span := tracer.Start(ctx, "postgres.ImagePatternRepository.GetByID")
	defer span.End()

	var pattern entity.ImagePattern
	if err := getDB(ctx, r.client.db).First(&pattern, "tenant_id = ? AND id = ?", tenantID, id).Error; err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get image pattern: %w", err)
	}
	return &pattern, nil
}
