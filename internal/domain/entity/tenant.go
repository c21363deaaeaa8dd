// Package entity 定义领域实体
package entity

import (
	"time"
)

// TenantStatus 租户状态
type TenantStatus string

const (
	TenantStatusActive    TenantStatus = "active"
	TenantStatusSuspended TenantStatus = "suspended"
)

// TenantQuota 租户配额
type TenantQuota struct {
	MaxTokensPerDay int64 `json:"max_tokens_per_day"`
}

// TenantSettings 租户设置，为空的字段使用全局配置
type TenantSettings struct {
	SourceLocale string   `json:"source_locale,omitempty"`
	Locales      []string `json:"locales,omitempty"`
}

// Tenant 租户（站点）
type Tenant struct {
	ID        string          `json:"id" gorm:"type:varchar(64);primaryKey"`
	Name      string          `json:"name" gorm:"type:varchar(128);not null"`
	Slug      string          `json:"slug" gorm:"type:varchar(128);uniqueIndex"`
	Settings  *TenantSettings `json:"settings,omitempty" gorm:"type:jsonb;serializer:json"`
	Quota     *TenantQuota    `json:"quota,omitempty" gorm:"type:jsonb;serializer:json"`
	Status    TenantStatus    `json:"status" gorm:"type:varchar(16);not null;default:active"`
	CreatedAt time.Time       `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time       `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Tenant) TableName() string {
	return "tenants"
}

// NewTenant 创建新租户
func NewTenant(id, name, slug string) *Tenant {
	now := time.Now()
	return &Tenant{
		ID:        id,
		Name:      name,
		Slug:      slug,
		Status:    TenantStatusActive,
		Quota:     &TenantQuota{},
		Settings:  &TenantSettings{},
		CreatedAt: now,
		UpdatedAt: now,
	}
}

// IsActive 检查租户是否活跃
func (t *Tenant) IsActive() bool {
	return t.Status == TenantStatusActive
}
