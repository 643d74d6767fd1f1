package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoad_ValidConfig(t *testing.T) {
	path := writeConfig(t, `
anthropic:
  api_key: "sk-test"
  model: "claude-sonnet-4-20250514"
  max_tokens: 1000

weaviate:
  host: "weaviate.internal:8080"
  scheme: "https"

embeddings:
  base_url: "http://localhost:11434"
  model: "all-minilm"
  dimensions: 384

courses:
  docs_dir: "./docs"

server:
  http_addr: ":9000"

session:
  max_history: 2

search:
  max_results: 5
  chunk_size: 800
  chunk_overlap: 100
`)

	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "sk-test", cfg.Anthropic.APIKey)
	assert.Equal(t, "claude-sonnet-4-20250514", cfg.Anthropic.Model)
	assert.Equal(t, int64(1000), cfg.Anthropic.MaxTokens)
	assert.Equal(t, "weaviate.internal:8080", cfg.Weaviate.Host)
	assert.Equal(t, "https", cfg.Weaviate.Scheme)
	assert.Equal(t, "./docs", cfg.Courses.DocsDir)
	assert.Equal(t, ":9000", cfg.Server.HTTPAddr)
	assert.Equal(t, 2, cfg.Session.MaxHistory)
	assert.Equal(t, 800, cfg.Search.ChunkSize)
}

func TestLoad_EnvExpansion(t *testing.T) {
	t.Setenv("TEST_ANTHROPIC_KEY", "sk-from-env")

	path := writeConfig(t, `
anthropic:
  api_key: "${TEST_ANTHROPIC_KEY}"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "sk-from-env", cfg.Anthropic.APIKey)
}

func TestLoad_Defaults(t *testing.T) {
	path := writeConfig(t, `
anthropic:
  api_key: "sk-test"
`)

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "localhost:8080", cfg.Weaviate.Host)
	assert.Equal(t, "http", cfg.Weaviate.Scheme)
	assert.Equal(t, ":8000", cfg.Server.HTTPAddr)
}

func TestLoad_MissingAPIKey(t *testing.T) {
	path := writeConfig(t, `
weaviate:
  host: "localhost:8080"
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "anthropic.api_key")
}

func TestLoad_SlackRequiresTokens(t *testing.T) {
	path := writeConfig(t, `
anthropic:
  api_key: "sk-test"
slack:
  enabled: true
  bot_token: "xoxb-test"
`)

	_, err := Load(path)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "slack.app_token")
}

func TestLoad_OverlapMustBeSmallerThanChunkSize(t *testing.T) {
	path := writeConfig(t, `
anthropic:
  api_key: "sk-test"
search:
  chunk_size: 100
  chunk_overlap: 100
`)

	_, err := Load(path)
	require.Error(t, err)
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}
