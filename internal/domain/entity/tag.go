package entity

import "time"

// Tag 标签，同一租户下名称（不区分大小写）唯一
type Tag struct {
	ID       string `json:"id" gorm:"type:varchar(64);primaryKey"`
	TenantID string `json:"tenant_id" gorm:"type:varchar(64);index;not null"`
	Name     string `json:"name" gorm:"type:varchar(128);not null"`
	Slug     string `json:"slug" gorm:"type:varchar(128);not null"`
	// Names 各语言名称，key 为 locale
	Names           map[string]string `json:"names" gorm:"type:jsonb;serializer:json"`
	GenerationRunID string            `json:"generation_run_id,omitempty" gorm:"type:varchar(64);index"`
	CreatedAt       time.Time         `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt       time.Time         `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Tag) TableName() string {
	return "tags"
}

// NameIn 返回指定语言的名称，缺失时回退到原名
func (t *Tag) NameIn(locale string) string {
	if n, ok := t.Names[locale]; ok && n != "" {
		return n
	}
	return t.Name
}
