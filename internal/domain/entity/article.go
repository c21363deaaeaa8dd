// Package entity 定义领域实体
package entity

import (
	"time"

	"github.com/lib/pq"
)

// ResearchBrief 调研阶段抽取出的结构化信息，随文章保存以便后台查看
type ResearchBrief struct {
	Persona         string   `json:"persona"`
	ExplicitNeed    string   `json:"explicit_need"`
	LatentNeed      string   `json:"latent_need"`
	Goal            string   `json:"goal"`
	Requirements    string   `json:"requirements"`
	RelatedKeywords []string `json:"related_keywords"`
}

// FAQEntry 问答对
type FAQEntry struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

// Article 文章实体
type Article struct {
	ID       string `json:"id" gorm:"type:varchar(64);primaryKey"`
	TenantID string `json:"tenant_id" gorm:"type:varchar(64);not null;uniqueIndex:idx_articles_tenant_slug,priority:1;index:idx_articles_tenant_created,priority:1"`

	Title           string `json:"title" gorm:"type:varchar(255);not null"`
	Slug            string `json:"slug" gorm:"type:varchar(128);not null;uniqueIndex:idx_articles_tenant_slug,priority:2"`
	Content         string `json:"content" gorm:"type:text"`
	Excerpt         string `json:"excerpt" gorm:"type:text"`
	MetaTitle       string `json:"meta_title" gorm:"type:varchar(255)"`
	MetaDescription string `json:"meta_description" gorm:"type:varchar(512)"`
	SelectedKeyword string `json:"selected_keyword" gorm:"type:varchar(255);index"`

	// 源语言便捷字段
	TitleJa   string `json:"title_ja" gorm:"column:title_ja;type:varchar(255)"`
	ContentJa string `json:"content_ja" gorm:"column:content_ja;type:text"`
	ExcerptJa string `json:"excerpt_ja" gorm:"column:excerpt_ja;type:text"`

	CategoryIDs      pq.StringArray `json:"category_ids" gorm:"type:text[]"`
	TagIDs           pq.StringArray `json:"tag_ids" gorm:"type:text[]"`
	WriterID         string         `json:"writer_id" gorm:"type:varchar(64)"`
	FeaturedImageID  string         `json:"featured_image_id" gorm:"type:varchar(64)"`
	FeaturedImageURL string         `json:"featured_image_url" gorm:"type:text"`

	ResearchBrief *ResearchBrief `json:"research_brief,omitempty" gorm:"type:jsonb;serializer:json"`
	FAQs          []FAQEntry     `json:"faqs" gorm:"type:jsonb;serializer:json"`

	IsPublished     bool       `json:"is_published" gorm:"not null;default:false"`
	GenerationRunID string     `json:"generation_run_id,omitempty" gorm:"type:varchar(64);index"`
	CreatedAt       time.Time  `json:"created_at" gorm:"autoCreateTime;index:idx_articles_tenant_created,priority:2,sort:desc"`
	UpdatedAt       time.Time  `json:"updated_at" gorm:"autoUpdateTime"`
	PublishedAt     *time.Time `json:"published_at,omitempty"`
}

// TableName 表名
func (Article) TableName() string {
	return "articles"
}

// ForceDraft 自动生成的文章一律以草稿保存
func (a *Article) ForceDraft() {
	a.IsPublished = false
	a.PublishedAt = nil
}
