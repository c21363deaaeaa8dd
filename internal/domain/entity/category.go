package entity

import "time"

// Category 文章分类
type Category struct {
	ID          string    `json:"id" gorm:"type:varchar(64);primaryKey"`
	TenantID    string    `json:"tenant_id" gorm:"type:varchar(64);index;not null"`
	Name        string    `json:"name" gorm:"type:varchar(128);not null"`
	Slug        string    `json:"slug" gorm:"type:varchar(128)"`
	Description string    `json:"description" gorm:"type:text"`
	CreatedAt   time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt   time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Category) TableName() string {
	return "categories"
}

// Writer 署名写手，Style 会写入正文提示词
type Writer struct {
	ID        string    `json:"id" gorm:"type:varchar(64);primaryKey"`
	TenantID  string    `json:"tenant_id" gorm:"type:varchar(64);index;not null"`
	Name      string    `json:"name" gorm:"type:varchar(128);not null"`
	Bio       string    `json:"bio" gorm:"type:text"`
	Style     string    `json:"style" gorm:"type:text"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (Writer) TableName() string {
	return "writers"
}

// ImagePattern 图片风格模板
type ImagePattern struct {
	ID        string    `json:"id" gorm:"type:varchar(64);primaryKey"`
	TenantID  string    `json:"tenant_id" gorm:"type:varchar(64);index;not null"`
	Name      string    `json:"name" gorm:"type:varchar(128);not null"`
	Prompt    string    `json:"prompt" gorm:"type:text;not null"`
	Size      string    `json:"size" gorm:"type:varchar(32)"`
	CreatedAt time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

func (ImagePattern) TableName() string {
	return "image_patterns"
}
