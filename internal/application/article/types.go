// Package article 实现文章自动生成流水线
package article

import (
	"context"
	"errors"
	"strings"

	"z-article-ai-api/internal/domain/entity"
)

// Stage 流水线阶段
type Stage string

const (
	StageFetchConfig   Stage = "fetch_config"
	StageSelectKeyword Stage = "select_keyword"
	StageResearch      Stage = "research"
	StageTitle         Stage = "title"
	StageOutline       Stage = "outline"
	StageIntroduction  Stage = "introduction"
	StageBody          Stage = "body"
	StageTagResolution Stage = "tag_resolution"
	StageFeaturedImage Stage = "featured_image"
	StageAssignWriter  Stage = "assign_writer"
	StageMetadata      Stage = "metadata"
	StageFAQ           Stage = "faq"
	StageInlineImages  Stage = "inline_images"
	StagePersist       Stage = "persist"
)

// Stages 固定的执行顺序
var Stages = []Stage{
	StageFetchConfig, StageSelectKeyword, StageResearch, StageTitle, StageOutline,
	StageIntroduction, StageBody, StageTagResolution, StageFeaturedImage, StageAssignWriter,
	StageMetadata, StageFAQ, StageInlineImages, StagePersist,
}

// Progress 阶段完成后的任务进度（0-100），最后一个阶段完成时为 100
func (s Stage) Progress() int {
	for i, st := range Stages {
		if st == s {
			return (i + 1) * 100 / len(Stages)
		}
	}
	return 0
}

// GenerationRequest 一次生成的输入，构造后不再修改
type GenerationRequest struct {
	TenantID       string `json:"tenant_id"`
	CategoryID     string `json:"category_id"`
	WriterID       string `json:"writer_id"`
	ImagePatternID string `json:"image_pattern_id"`
}

// Validate 四个 ID 均不能为空
func (r GenerationRequest) Validate() error {
	var missing []string
	if strings.TrimSpace(r.TenantID) == "" {
		missing = append(missing, "tenant_id")
	}
	if strings.TrimSpace(r.CategoryID) == "" {
		missing = append(missing, "category_id")
	}
	if strings.TrimSpace(r.WriterID) == "" {
		missing = append(missing, "writer_id")
	}
	if strings.TrimSpace(r.ImagePatternID) == "" {
		missing = append(missing, "image_pattern_id")
	}
	if len(missing) > 0 {
		return errors.New("missing " + strings.Join(missing, ", "))
	}
	return nil
}

// Result 生成结果
type Result struct {
	ArticleID string `json:"article_id"`
	Title     string `json:"title"`
	Slug      string `json:"slug"`
	RunID     string `json:"run_id"`
}

// Draft 各阶段逐步填充的中间状态
type Draft struct {
	Category *entity.Category
	Writer   *entity.Writer
	Pattern  *entity.ImagePattern

	Keyword      string
	Brief        entity.ResearchBrief
	Title        string
	Outline      string
	Introduction string
	Body         string

	Tags     []TagResolution
	Featured *entity.MediaAsset

	WriterID   string
	WriterName string

	MetaTitle       string
	MetaDescription string
	Summary         string
	Slug            string

	FAQs         []entity.FAQEntry
	InlineImages int

	sourceLocale string
	locales      []string
}

// TagIDs 去重后的标签 ID，保持顺序
func (d *Draft) TagIDs() []string {
	ids := make([]string, 0, len(d.Tags))
	seen := make(map[string]struct{}, len(d.Tags))
	for _, t := range d.Tags {
		if _, ok := seen[t.TagID]; ok {
			continue
		}
		seen[t.TagID] = struct{}{}
		ids = append(ids, t.TagID)
	}
	return ids
}

// ProgressReporter 阶段完成回调，实现应为 best-effort
type ProgressReporter interface {
	Report(ctx context.Context, stage Stage, progress int)
}

// RunOptions 单次运行的附加信息
type RunOptions struct {
	JobID    string
	Trigger  entity.JobTrigger
	Progress ProgressReporter
}
