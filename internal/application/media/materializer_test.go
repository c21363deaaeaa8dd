package media

import (
	"bytes"
	"context"
	"encoding/base64"
	"image"
	"image/color"
	"image/png"
	"net/http"
	"net/http/httptest"
	"regexp"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"z-article-ai-api/internal/domain/entity"
	"z-article-ai-api/internal/domain/service"
)

type memStore struct {
	objects map[string][]byte
	types   map[string]string
}

func newMemStore() *memStore {
	return &memStore{objects: map[string][]byte{}, types: map[string]string{}}
}

func (s *memStore) Put(_ context.Context, key string, body []byte, contentType string) (string, error) {
	s.objects[key] = body
	s.types[key] = contentType
	return "https://img.example.com/" + key, nil
}

type memAssets struct {
	created []*entity.MediaAsset
}

func (r *memAssets) Create(_ context.Context, a *entity.MediaAsset) error {
	a.ID = "asset-" + string(rune('a'+len(r.created)))
	r.created = append(r.created, a)
	return nil
}

func (r *memAssets) GetByID(context.Context, string, string) (*entity.MediaAsset, error) {
	return nil, nil
}

func (r *memAssets) ListByRun(context.Context, string, string) ([]*entity.MediaAsset, error) {
	return r.created, nil
}

func pngBytes(t *testing.T, w, h int) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, w, h))
	for y := 0; y < h; y += 7 {
		for x := 0; x < w; x += 5 {
			img.Set(x, y, color.RGBA{R: uint8(x), G: uint8(y), B: 120, A: 255})
		}
	}
	var buf bytes.Buffer
	require.NoError(t, png.Encode(&buf, img))
	return buf.Bytes()
}

func newTestMaterializer(store *memStore, assets *memAssets, maxBytes int64) *Materializer {
	m := NewMaterializer(store, assets, Options{Prefix: "media", MaxWidth: 1200, MaxBytes: maxBytes})
	m.now = func() time.Time { return time.Date(2026, 3, 9, 8, 0, 0, 0, time.UTC) }
	return m
}

func TestMaterialize_ResizesAndStores(t *testing.T) {
	payload := pngBytes(t, 2400, 1200)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "image/png")
		_, _ = w.Write(payload)
	}))
	defer srv.Close()

	store := newMemStore()
	assets := &memAssets{}
	m := newTestMaterializer(store, assets, 0)

	ctx := service.WithRun(context.Background(), "t1", "", "run-9")
	asset, err := m.Materialize(ctx, "t1", srv.URL+"/tmp.png", entity.UsageFeaturedImage, "kyoto")
	require.NoError(t, err)

	assert.Equal(t, 1200, asset.Width)
	assert.Equal(t, 600, asset.Height)
	assert.Equal(t, "image/webp", asset.MimeType)
	assert.Equal(t, "image", asset.Type)
	assert.Equal(t, entity.UsageFeaturedImage, asset.UsageContext)
	assert.Equal(t, "run-9", asset.GenerationRunID)
	assert.Regexp(t, regexp.MustCompile(`^media/t1/2026/03/\d+-[0-9a-f]{8}\.webp$`), asset.StoragePath)
	assert.Equal(t, "https://img.example.com/"+asset.StoragePath, asset.URL)

	stored := store.objects[asset.StoragePath]
	require.NotEmpty(t, stored)
	assert.Equal(t, int64(len(stored)), asset.Size)
	assert.Equal(t, "RIFF", string(stored[:4]))
	assert.Equal(t, "WEBP", string(stored[8:12]))
	assert.Equal(t, "image/webp", store.types[asset.StoragePath])
	assert.Len(t, assets.created, 1)
}

func TestMaterialize_NoUpscale(t *testing.T) {
	data := "data:image/png;base64," + base64.StdEncoding.EncodeToString(pngBytes(t, 300, 200))
	m := newTestMaterializer(newMemStore(), &memAssets{}, 0)

	asset, err := m.Materialize(context.Background(), "t1", data, entity.UsageInlineImage, "alt")
	require.NoError(t, err)
	assert.Equal(t, 300, asset.Width)
	assert.Equal(t, 200, asset.Height)
	assert.Equal(t, entity.UsageInlineImage, asset.UsageContext)
}

func TestMaterialize_Failures(t *testing.T) {
	payload := pngBytes(t, 64, 64)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/missing":
			http.NotFound(w, r)
		case "/garbage":
			_, _ = w.Write([]byte("not an image"))
		default:
			_, _ = w.Write(payload)
		}
	}))
	defer srv.Close()

	t.Run("status", func(t *testing.T) {
		assets := &memAssets{}
		m := newTestMaterializer(newMemStore(), assets, 0)
		_, err := m.Materialize(context.Background(), "t1", srv.URL+"/missing", entity.UsageInlineImage, "")
		assert.Error(t, err)
		assert.Empty(t, assets.created)
	})

	t.Run("decode", func(t *testing.T) {
		m := newTestMaterializer(newMemStore(), &memAssets{}, 0)
		_, err := m.Materialize(context.Background(), "t1", srv.URL+"/garbage", entity.UsageInlineImage, "")
		assert.Error(t, err)
	})

	t.Run("too large", func(t *testing.T) {
		m := newTestMaterializer(newMemStore(), &memAssets{}, 16)
		_, err := m.Materialize(context.Background(), "t1", srv.URL+"/ok", entity.UsageInlineImage, "")
		assert.ErrorIs(t, err, ErrTooLarge)
	})

	t.Run("scheme", func(t *testing.T) {
		m := newTestMaterializer(newMemStore(), &memAssets{}, 0)
		_, err := m.Materialize(context.Background(), "t1", "file:///etc/passwd", entity.UsageInlineImage, "")
		assert.Error(t, err)
	})
}
