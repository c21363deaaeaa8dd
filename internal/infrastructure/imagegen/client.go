// Package imagegen 提供文生图客户端
package imagegen

import (
	"context"
	"errors"
	"fmt"
	"strings"

	openai "github.com/openai/openai-go"
	"github.com/openai/openai-go/option"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"

	"z-article-ai-api/internal/config"
)

var tracer = otel.Tracer("imagegen")

// ErrEmptyImage 接口未返回图片
var ErrEmptyImage = errors.New("imagegen: empty image response")

// Client 基于 OpenAI Images 接口的生成客户端
type Client struct {
	client      openai.Client
	model       string
	defaultSize string
}

// NewClient 创建图片生成客户端
func NewClient(cfg *config.ImageConfig) (*Client, error) {
	if strings.TrimSpace(cfg.APIKey) == "" {
		return nil, errors.New("image api key missing")
	}

	opts := []option.RequestOption{
		option.WithAPIKey(cfg.APIKey),
		option.WithMaxRetries(0),
	}
	if cfg.BaseURL != "" {
		opts = append(opts, option.WithBaseURL(cfg.BaseURL))
	}
	if cfg.Timeout > 0 {
		opts = append(opts, option.WithRequestTimeout(cfg.Timeout))
	}

	return &Client{
		client:      openai.NewClient(opts...),
		model:       cfg.Model,
		defaultSize: cfg.DefaultSize,
	}, nil
}

// GenerateImage 生成一张图片，返回临时 URL；若接口只返回 base64 则转为 data URL
func (c *Client) GenerateImage(ctx context.Context, prompt, size string) (string, error) {
	if size == "" {
		size = c.defaultSize
	}

	ctx, span := tracer.Start(ctx, "imagegen.Generate")
	span.SetAttributes(
		attribute.String("image.model", c.model),
		attribute.String("image.size", size),
	)
	defer span.End()

	params := openai.ImageGenerateParams{
		Prompt: prompt,
		Model:  openai.ImageModel(c.model),
		N:      openai.Int(1),
	}
	if size != "" {
		params.Size = openai.ImageGenerateParamsSize(size)
	}
	// gpt-image 系列不支持 response_format，固定返回 base64
	if strings.HasPrefix(c.model, "dall-e") {
		params.ResponseFormat = openai.ImageGenerateParamsResponseFormatURL
	}

	resp, err := c.client.Images.Generate(ctx, params)
	if err != nil {
		span.RecordError(err)
		return "", fmt.Errorf("image generation failed: %w", err)
	}
	if resp == nil || len(resp.Data) == 0 {
		return "", ErrEmptyImage
	}

	img := resp.Data[0]
	switch {
	case img.URL != "":
		return img.URL, nil
	case img.B64JSON != "":
		return "data:image/png;base64," + img.B64JSON, nil
	default:
		return "", ErrEmptyImage
	}
}
