package imagegen

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"z-article-ai-api/internal/config"
)

func newTestServer(t *testing.T, body string, captured *map[string]interface{}) *httptest.Server {
	t.Helper()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/images/generations", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		if captured != nil {
			_ = json.NewDecoder(r.Body).Decode(captured)
		}
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(body))
	}))
	t.Cleanup(srv.Close)
	return srv
}

func TestClient_GenerateImage_URL(t *testing.T) {
	var req map[string]interface{}
	srv := newTestServer(t, `{"created":1,"data":[{"url":"https://cdn.example.com/tmp.png"}]}`, &req)

	client, err := NewClient(&config.ImageConfig{
		APIKey: "test-key", BaseURL: srv.URL + "/", Model: "dall-e-3", DefaultSize: "1792x1024", Timeout: 5 * time.Second,
	})
	require.NoError(t, err)

	url, err := client.GenerateImage(context.Background(), "a temple in autumn", "")
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/tmp.png", url)
	assert.Equal(t, "1792x1024", req["size"])
	assert.Equal(t, "url", req["response_format"])
	assert.Equal(t, "a temple in autumn", req["prompt"])
}

func TestClient_GenerateImage_Base64(t *testing.T) {
	var req map[string]interface{}
	srv := newTestServer(t, `{"created":1,"data":[{"b64_json":"iVBORw0KGgo="}]}`, &req)

	client, err := NewClient(&config.ImageConfig{APIKey: "test-key", BaseURL: srv.URL + "/", Model: "gpt-image-1"})
	require.NoError(t, err)

	url, err := client.GenerateImage(context.Background(), "p", "1024x1024")
	require.NoError(t, err)
	assert.Equal(t, "data:image/png;base64,iVBORw0KGgo=", url)
	_, hasFormat := req["response_format"]
	assert.False(t, hasFormat)
}

func TestClient_GenerateImage_Empty(t *testing.T) {
	srv := newTestServer(t, `{"created":1,"data":[]}`, nil)

	client, err := NewClient(&config.ImageConfig{APIKey: "test-key", BaseURL: srv.URL + "/", Model: "dall-e-3"})
	require.NoError(t, err)

	_, err = client.GenerateImage(context.Background(), "p", "")
	assert.ErrorIs(t, err, ErrEmptyImage)
}

func TestNewClient_MissingKey(t *testing.T) {
	_, err := NewClient(&config.ImageConfig{})
	assert.Error(t, err)
}
