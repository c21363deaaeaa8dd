package postgres

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"z-article-ai-api/internal/domain/entity"
)

// MediaAssetRepository 媒体资源仓储实现
type MediaAssetRepository struct {
	client *Client
}

// NewMediaAssetRepository 创建媒体资源仓储
func NewMediaAssetRepository(client *Client) *MediaAssetRepository {
	return &MediaAssetRepository{client: client}
}

// Create 登记媒体资源
func (r *MediaAssetRepository) Create(ctx context.Context, asset *entity.MediaAsset) error {
	ctx, span := tracer.Start(ctx, "postgres.MediaAssetRepository.Create")
	defer span.End()

	if asset.ID == "" {
		asset.ID = uuid.NewString()
	}
	if err := getDB(ctx, r.client.db).Create(asset).Error; err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to create media asset: %w", err)
	}
	return nil
}

// GetByID 根据 ID 获取媒体资源
func (r *MediaAssetRepository) GetByID(ctx context.Context, tenantID, id string) (*entity.MediaAsset, error) {
	ctx, span := tracer.Start(ctx, "postgres.MediaAssetRepository.GetByID")
	defer span.End()

	var asset entity.MediaAsset
	if err := getDB(ctx, r.client.db).First(&asset, "tenant_id = ? AND id = ?", tenantID, id).Error; err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		span.RecordError(err)
		return nil, fmt.Errorf("failed to get media asset: %w", err)
	}
	return &asset, nil
}

// ListByRun 查询某次生成留下的资源
func (r *MediaAssetRepository) ListByRun(ctx context.Context, tenantID, runID string) ([]*entity.MediaAsset, error) {
	ctx, span := tracer.Start(ctx, "postgres.MediaAssetRepository.ListByRun")
	defer span.End()

	var assets []*entity.MediaAsset
	if err := getDB(ctx, r.client.db).
		Where("tenant_id = ? AND generation_run_id = ?", tenantID, runID).
		Order("created_at ASC").
		Find(&assets).Error; err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("failed to list media assets by run: %w", err)
	}
	return assets, nil
}
