// Package media 把生成服务返回的临时图片转存为站点自有资源
package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	_ "image/png"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/HugoSmits86/nativewebp"
	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/image/draw"
	_ "golang.org/x/image/webp"

	"z-article-ai-api/internal/domain/entity"
	"z-article-ai-api/internal/domain/repository"
	"z-article-ai-api/internal/domain/service"
	"z-article-ai-api/internal/infrastructure/storage"
	"z-article-ai-api/pkg/metrics"
)

var tracer = otel.Tracer("media")

// ErrTooLarge 下载内容超过上限
var ErrTooLarge = errors.New("media: image exceeds download limit")

// Options 转存参数
type Options struct {
	Prefix   string
	MaxWidth int
	MaxBytes int64
}

// Materializer 下载、缩放、转码为 WebP、上传并登记媒体资源
type Materializer struct {
	store      storage.ObjectStore
	assets     repository.MediaAssetRepository
	httpClient *http.Client
	opts       Options
	now        func() time.Time
}

// NewMaterializer 创建转存器
func NewMaterializer(store storage.ObjectStore, assets repository.MediaAssetRepository, opts Options) *Materializer {
	if opts.MaxWidth <= 0 {
		opts.MaxWidth = 1200
	}
	if opts.MaxBytes <= 0 {
		opts.MaxBytes = 20 << 20
	}
	if opts.Prefix == "" {
		opts.Prefix = "media"
	}
	return &Materializer{
		store:      store,
		assets:     assets,
		httpClient: &http.Client{Timeout: 60 * time.Second},
		opts:       opts,
		now:        time.Now,
	}
}

// Materialize 转存一张图片，任一步骤失败都返回错误，由调用方决定是否致命
func (m *Materializer) Materialize(ctx context.Context, tenantID, src string, usage entity.UsageContext, alt string) (asset *entity.MediaAsset, err error) {
	ctx, span := tracer.Start(ctx, "media.Materialize")
	span.SetAttributes(
		attribute.String("tenant_id", tenantID),
		attribute.String("media.usage_context", string(usage)),
	)
	defer func() {
		status := "success"
		if err != nil {
			status = "error"
			span.RecordError(err)
		}
		metrics.ImageMaterializeTotal.WithLabelValues(string(usage), status).Inc()
		span.End()
	}()

	raw, err := m.fetch(ctx, src)
	if err != nil {
		return nil, err
	}

	img, _, err := image.Decode(bytes.NewReader(raw))
	if err != nil {
		return nil, fmt.Errorf("failed to decode image: %w", err)
	}
	img = fitWidth(img, m.opts.MaxWidth)

	var buf bytes.Buffer
	if err := nativewebp.Encode(&buf, img, nil); err != nil {
		return nil, fmt.Errorf("failed to encode webp: %w", err)
	}

	key := m.objectKey(tenantID)
	publicURL, err := m.store.Put(ctx, key, buf.Bytes(), "image/webp")
	if err != nil {
		return nil, err
	}
	metrics.ImageStoredBytes.Observe(float64(buf.Len()))

	bounds := img.Bounds()
	asset = &entity.MediaAsset{
		TenantID:        tenantID,
		URL:             publicURL,
		StoragePath:     key,
		Type:            "image",
		MimeType:        "image/webp",
		Size:            int64(buf.Len()),
		Width:           bounds.Dx(),
		Height:          bounds.Dy(),
		AltText:         alt,
		UsageContext:    usage,
		GenerationRunID: service.RunFromContext(ctx),
	}
	if err := m.assets.Create(ctx, asset); err != nil {
		return nil, err
	}
	return asset, nil
}

// objectKey <prefix>/<tenant>/<yyyy>/<mm>/<unixmilli>-<uuid8>.webp
func (m *Materializer) objectKey(tenantID string) string {
	now := m.now().UTC()
	return fmt.Sprintf("%s/%s/%04d/%02d/%d-%s.webp",
		strings.Trim(m.opts.Prefix, "/"), tenantID, now.Year(), int(now.Month()), now.UnixMilli(), uuid.NewString()[:8])
}

func (m *Materializer) fetch(ctx context.Context, src string) ([]byte, error) {
	if strings.HasPrefix(src, "data:") {
		return decodeDataURL(src, m.opts.MaxBytes)
	}

	u, err := url.Parse(src)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") {
		return nil, fmt.Errorf("unsupported image url: %q", src)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, src, nil)
	if err != nil {
		return nil, err
	}
	resp, err := m.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to download image: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("failed to download image: status %d", resp.StatusCode)
	}

	data, err := io.ReadAll(io.LimitReader(resp.Body, m.opts.MaxBytes+1))
	if err != nil {
		return nil, fmt.Errorf("failed to read image: %w", err)
	}
	if int64(len(data)) > m.opts.MaxBytes {
		return nil, ErrTooLarge
	}
	return data, nil
}

// decodeDataURL 解析 data:[<mediatype>][;base64],<data>
func decodeDataURL(src string, maxBytes int64) ([]byte, error) {
	meta, payload, ok := strings.Cut(strings.TrimPrefix(src, "data:"), ",")
	if !ok {
		return nil, errors.New("malformed data url")
	}

	var data []byte
	if strings.HasSuffix(meta, ";base64") {
		decoded, err := base64.StdEncoding.DecodeString(payload)
		if err != nil {
			return nil, fmt.Errorf("malformed data url: %w", err)
		}
		data = decoded
	} else {
		unescaped, err := url.PathUnescape(payload)
		if err != nil {
			return nil, fmt.Errorf("malformed data url: %w", err)
		}
		data = []byte(unescaped)
	}

	if int64(len(data)) > maxBytes {
		return nil, ErrTooLarge
	}
	return data, nil
}

// fitWidth 按比例缩放到不超过 maxWidth，不放大
func fitWidth(src image.Image, maxWidth int) image.Image {
	b := src.Bounds()
	if b.Dx() <= maxWidth {
		return src
	}
	height := b.Dy() * maxWidth / b.Dx()
	if height < 1 {
		height = 1
	}
	dst := image.NewRGBA(image.Rect(0, 0, maxWidth, height))
	draw.CatmullRom.Scale(dst, dst.Bounds(), src, b, draw.Over, nil)
	return dst
}
