package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseYAML = `
app:
  name: test-app
llm:
  providers:
    reasoning:
      api_key: ${TEST_REASONING_KEY:}
      model: ${TEST_REASONING_MODEL:sonar}
      timeout: 30s
    general:
      api_key: ${TEST_GENERAL_KEY:fallback-key}
      model: gpt-test
pipeline:
  max_inline_images: 4
  locales: [ja, en]
`

func writeConfig(t *testing.T, dir, name, body string) {
	t.Helper()
	require.NoError(t, os.WriteFile(filepath.Join(dir, name), []byte(body), 0o600))
}

func TestLoadFrom_ExpandsPlaceholdersAndDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.yaml", baseYAML)
	t.Setenv("APP_ENV", "unit")
	t.Setenv("TEST_REASONING_KEY", "rk-123")

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)

	assert.Equal(t, "test-app", cfg.App.Name)
	assert.Equal(t, "rk-123", cfg.LLM.Providers["reasoning"].APIKey)
	assert.Equal(t, "sonar", cfg.LLM.Providers["reasoning"].Model)
	assert.Equal(t, 30*time.Second, cfg.LLM.Providers["reasoning"].Timeout)
	assert.Equal(t, "fallback-key", cfg.LLM.Providers["general"].APIKey)
	assert.Equal(t, []string{"ja", "en"}, cfg.Pipeline.Locales)

	// 默认值兜底
	assert.Equal(t, 5, cfg.Pipeline.RecentKeywordWindow)
	assert.Equal(t, 3, cfg.Pipeline.KeywordAttempts)
	assert.Equal(t, 100, cfg.Pipeline.SlugAttempts)
	assert.Equal(t, 60, cfg.Pipeline.SlugMaxLen)
	assert.Equal(t, 10*time.Minute, cfg.Pipeline.Timeout)
	assert.Equal(t, "local", cfg.Storage.Driver)
}

func TestLoadFrom_EnvOverlayAndEnvVars(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, "config.yaml", baseYAML)
	writeConfig(t, dir, "config.staging.yaml", "pipeline:\n  max_inline_images: 2\n")
	t.Setenv("APP_ENV", "staging")
	t.Setenv("PIPELINE_SLUG_MAX_LEN", "40")

	cfg, err := LoadFrom(dir)
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Pipeline.MaxInlineImages)
	assert.Equal(t, 40, cfg.Pipeline.SlugMaxLen)
}

func TestLoadFrom_MissingBaseFile(t *testing.T) {
	_, err := LoadFrom(t.TempDir())
	assert.Error(t, err)
}

func TestExpandEnv(t *testing.T) {
	t.Setenv("EXPAND_SET", "value")

	assert.Equal(t, "value", expandEnv("${EXPAND_SET}"))
	assert.Equal(t, "value", expandEnv("${EXPAND_SET:other}"))
	assert.Equal(t, "dflt", expandEnv("${EXPAND_UNSET_VAR:dflt}"))
	assert.Equal(t, "", expandEnv("${EXPAND_UNSET_VAR:}"))
	assert.Equal(t, "${EXPAND_UNSET_VAR}", expandEnv("${EXPAND_UNSET_VAR}"))
}
