package prompt

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegistry_AllTemplatesLoad(t *testing.T) {
	r := NewRegistry()
	for id := range knownPrompts {
		_, err := r.ChatTemplate(id)
		require.NoError(t, err, id)
	}

	_, err := r.ChatTemplate("nope")
	assert.Error(t, err)
}

func TestRegistry_Render(t *testing.T) {
	r := NewRegistry()
	system, user, err := r.Render(context.Background(), PromptKeywordV1, map[string]any{
		"category":             "travel",
		"category_description": "Travel guides for Japan",
		"year":                 2026,
		"month":                "03",
		"language":             "Japanese",
		"recent_keywords":      "kyoto autumn, okinawa diving",
	})
	require.NoError(t, err)
	assert.Contains(t, system, "Today is 2026-03.")
	assert.Contains(t, system, "travel publication")
	assert.Contains(t, user, "kyoto autumn, okinawa diving")
	assert.NotContains(t, user, "{")
}

func TestRegistry_RenderMissingVar(t *testing.T) {
	r := NewRegistry()
	_, _, err := r.Render(context.Background(), PromptTagSlugV1, map[string]any{})
	assert.Error(t, err)
}
