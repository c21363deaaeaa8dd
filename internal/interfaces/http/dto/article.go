package dto

import (
	"time"

	"z-article-ai-api/internal/application/article"
	"z-article-ai-api/internal/domain/entity"
)

// GenerateArticleRequest 生成文章请求，租户来自认证信息
type GenerateArticleRequest struct {
	CategoryID     string `json:"category_id" binding:"required"`
	WriterID       string `json:"writer_id" binding:"required"`
	ImagePatternID string `json:"image_pattern_id" binding:"required"`
}

// ToGenerationRequest 转换为流水线请求
func (r *GenerateArticleRequest) ToGenerationRequest(tenantID string) article.GenerationRequest {
	return article.GenerationRequest{
		TenantID:       tenantID,
		CategoryID:     r.CategoryID,
		WriterID:       r.WriterID,
		ImagePatternID: r.ImagePatternID,
	}
}

// GenerateArticleResponse 同步生成结果
type GenerateArticleResponse struct {
	ArticleID string `json:"article_id"`
	Title     string `json:"title"`
	Slug      string `json:"slug"`
	RunID     string `json:"run_id"`
}

// ToGenerateArticleResponse 转换生成结果
func ToGenerateArticleResponse(r *article.Result) *GenerateArticleResponse {
	if r == nil {
		return nil
	}
	return &GenerateArticleResponse{
		ArticleID: r.ArticleID,
		Title:     r.Title,
		Slug:      r.Slug,
		RunID:     r.RunID,
	}
}

// ArticleResponse 文章响应
type ArticleResponse struct {
	ID               string                `json:"id"`
	Title            string                `json:"title"`
	Slug             string                `json:"slug"`
	Content          string                `json:"content"`
	Excerpt          string                `json:"excerpt"`
	MetaTitle        string                `json:"meta_title"`
	MetaDescription  string                `json:"meta_description"`
	SelectedKeyword  string                `json:"selected_keyword"`
	CategoryIDs      []string              `json:"category_ids"`
	TagIDs           []string              `json:"tag_ids"`
	WriterID         string                `json:"writer_id"`
	FeaturedImageURL string                `json:"featured_image_url"`
	ResearchBrief    *entity.ResearchBrief `json:"research_brief,omitempty"`
	FAQs             []entity.FAQEntry     `json:"faqs"`
	IsPublished      bool                  `json:"is_published"`
	GenerationRunID  string                `json:"generation_run_id,omitempty"`
	CreatedAt        time.Time             `json:"created_at"`
	UpdatedAt        time.Time             `json:"updated_at"`
}

// ArticleSummaryResponse 列表项，不含正文
type ArticleSummaryResponse struct {
	ID               string    `json:"id"`
	Title            string    `json:"title"`
	Slug             string    `json:"slug"`
	Excerpt          string    `json:"excerpt"`
	SelectedKeyword  string    `json:"selected_keyword"`
	FeaturedImageURL string    `json:"featured_image_url"`
	IsPublished      bool      `json:"is_published"`
	CreatedAt        time.Time `json:"created_at"`
}

// ArticleListResponse 文章列表响应
type ArticleListResponse struct {
	Articles []*ArticleSummaryResponse `json:"articles"`
}

// ToArticleResponse 将领域实体转换为响应 DTO
func ToArticleResponse(a *entity.Article) *ArticleResponse {
	if a == nil {
		return nil
	}
	return &ArticleResponse{
		ID:               a.ID,
		Title:            a.Title,
		Slug:             a.Slug,
		Content:          a.Content,
		Excerpt:          a.Excerpt,
		MetaTitle:        a.MetaTitle,
		MetaDescription:  a.MetaDescription,
		SelectedKeyword:  a.SelectedKeyword,
		CategoryIDs:      []string(a.CategoryIDs),
		TagIDs:           []string(a.TagIDs),
		WriterID:         a.WriterID,
		FeaturedImageURL: a.FeaturedImageURL,
		ResearchBrief:    a.ResearchBrief,
		FAQs:             a.FAQs,
		IsPublished:      a.IsPublished,
		GenerationRunID:  a.GenerationRunID,
		CreatedAt:        a.CreatedAt,
		UpdatedAt:        a.UpdatedAt,
	}
}

// ToArticleListResponse 转换文章列表
func ToArticleListResponse(articles []*entity.Article) *ArticleListResponse {
	out := make([]*ArticleSummaryResponse, 0, len(articles))
	for _, a := range articles {
		out = append(out, &ArticleSummaryResponse{
			ID:               a.ID,
			Title:            a.Title,
			Slug:             a.Slug,
			Excerpt:          a.Excerpt,
			SelectedKeyword:  a.SelectedKeyword,
			FeaturedImageURL: a.FeaturedImageURL,
			IsPublished:      a.IsPublished,
			CreatedAt:        a.CreatedAt,
		})
	}
	return &ArticleListResponse{Articles: out}
}
