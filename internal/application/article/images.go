package article

import (
	"context"
	"fmt"
	"strings"

	"golang.org/x/sync/errgroup"

	"z-article-ai-api/internal/domain/entity"
	"z-article-ai-api/pkg/logger"
	"z-article-ai-api/pkg/metrics"
)

// AssetMaterializer 把临时图片地址转存为媒体资源
type AssetMaterializer interface {
	Materialize(ctx context.Context, tenantID, src string, usage entity.UsageContext, alt string) (*entity.MediaAsset, error)
}

const defaultImageSize = "1536x1024"

func imagePrompt(pattern *entity.ImagePattern, subject string) string {
	base := strings.TrimSpace(pattern.Prompt)
	if base == "" {
		return subject
	}
	return base + "\n\nSubject: " + subject
}

func imageSize(pattern *entity.ImagePattern) string {
	if pattern.Size != "" {
		return pattern.Size
	}
	return defaultImageSize
}

// featuredImage 生成并转存封面图，失败即终止
func (g *Generator) featuredImage(ctx context.Context, tenantID string, d *Draft) error {
	subject := fmt.Sprintf("%s (%s)", d.Title, d.Keyword)
	url, err := g.images.GenerateImage(ctx, imagePrompt(d.Pattern, subject), imageSize(d.Pattern))
	if err != nil {
		return pipelineError(ReasonRequiredAsset, StageFeaturedImage, "generate", err)
	}

	asset, err := g.materializer.Materialize(ctx, tenantID, url, entity.UsageFeaturedImage, d.Title)
	if err != nil {
		return pipelineError(ReasonRequiredAsset, StageFeaturedImage, "materialize", err)
	}

	d.Featured = asset
	return nil
}

// inlineImages 为前 max 个 <h2> 生成配图，单张失败跳过。
// 生成并发进行，插入按原始偏移倒序一次性完成。
func (g *Generator) inlineImages(ctx context.Context, tenantID string, d *Draft) error {
	headings := FindH2(d.Body)
	if len(headings) > g.cfg.MaxInlineImages {
		headings = headings[:g.cfg.MaxInlineImages]
	}
	if len(headings) == 0 {
		metrics.InlineImagesInserted.Observe(0)
		return nil
	}

	assets := make([]*entity.MediaAsset, len(headings))
	var eg errgroup.Group
	eg.SetLimit(g.cfg.InlineImageConcurrency)
	for i, h := range headings {
		eg.Go(func() error {
			subject := h.Text
			if subject == "" {
				subject = d.Title
			}
			url, err := g.images.GenerateImage(ctx, imagePrompt(d.Pattern, subject), imageSize(d.Pattern))
			if err == nil {
				assets[i], err = g.materializer.Materialize(ctx, tenantID, url, entity.UsageInlineImage, subject)
			}
			if err != nil {
				logger.Warn(ctx, "inline image skipped", "heading_index", i, "heading", subject, "error", err)
				metrics.PipelineDegradations.WithLabelValues(string(StageInlineImages), "inline_image").Inc()
			}
			return nil
		})
	}
	_ = eg.Wait()

	points := make([]Insertion, 0, len(headings))
	for i, h := range headings {
		a := assets[i]
		if a == nil {
			continue
		}
		points = append(points, Insertion{Offset: h.CloseEnd, HTML: FigureHTML(a.URL, a.AltText, a.Width, a.Height)})
	}

	d.Body = InsertAfter(d.Body, points)
	d.InlineImages = len(points)
	metrics.InlineImagesInserted.Observe(float64(len(points)))
	return nil
}
