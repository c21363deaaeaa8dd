package entity

import "time"

// UsageContext 图片用途
type UsageContext string

const (
	UsageFeaturedImage UsageContext = "featured-image"
	UsageInlineImage   UsageContext = "inline-image"
)

// MediaAsset 媒体资源登记，创建后不再修改
type MediaAsset struct {
	ID              string       `json:"id" gorm:"type:varchar(64);primaryKey"`
	TenantID        string       `json:"tenant_id" gorm:"type:varchar(64);index;not null"`
	URL             string       `json:"url" gorm:"type:text;not null"`
	StoragePath     string       `json:"storage_path" gorm:"type:text;not null"`
	Type            string       `json:"type" gorm:"type:varchar(32);not null"`
	MimeType        string       `json:"mime_type" gorm:"type:varchar(64);not null"`
	Size            int64        `json:"size" gorm:"not null"`
	Width           int          `json:"width"`
	Height          int          `json:"height"`
	AltText         string       `json:"alt_text" gorm:"type:text"`
	UsageContext    UsageContext `json:"usage_context" gorm:"type:varchar(32);index"`
	GenerationRunID string       `json:"generation_run_id,omitempty" gorm:"type:varchar(64);index"`
	CreatedAt       time.Time    `json:"created_at" gorm:"autoCreateTime"`
}

func (MediaAsset) TableName() string {
	return "media_assets"
}
