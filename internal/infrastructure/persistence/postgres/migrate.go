package postgres

import (
	"context"
	"fmt"

	"z-article-ai-api/internal/domain/entity"
)

// models 需要建表的全部模型
var models = []interface{}{
	&entity.Tenant{},
	&entity.Category{},
	&entity.Writer{},
	&entity.ImagePattern{},
	&entity.Tag{},
	&entity.MediaAsset{},
	&entity.Article{},
	&entity.GenerationJob{},
	&entity.LLMUsageEvent{},
}

// indexes gorm 标签无法表达的表达式索引
var indexes = []string{
	`CREATE UNIQUE INDEX IF NOT EXISTS idx_tags_tenant_name_fold ON tags (tenant_id, lower(name))`,
	`CREATE INDEX IF NOT EXISTS idx_articles_category_ids ON articles USING GIN (category_ids)`,
}

// Migrate 自动建表并补齐索引
func (c *Client) Migrate(ctx context.Context) error {
	ctx, span := tracer.Start(ctx, "postgres.Migrate")
	defer span.End()

	db := c.db.WithContext(ctx)
	if err := db.AutoMigrate(models...); err != nil {
		span.RecordError(err)
		return fmt.Errorf("failed to auto migrate: %w", err)
	}
	for _, stmt := range indexes {
		if err := db.Exec(stmt).Error; err != nil {
			span.RecordError(err)
			return fmt.Errorf("failed to create index: %w", err)
		}
	}
	return nil
}
