package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "scriptor.db", cfg.Storage.DatabaseURL)
	assert.Equal(t, "topics", cfg.Storage.Workdir)
	assert.Equal(t, "results", cfg.Storage.AssetRoot)
	assert.Equal(t, "ollama:llama3", cfg.LLM.DefaultModel)
	assert.Equal(t, "http://localhost:11434/v1", cfg.LLM.OllamaURL)
}

func TestLoadYAMLFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
server:
  addr: ":9001"
storage:
  workdir: "handouts"
llm:
  default_model: "openai:gpt-4o-mini"
`), 0o644))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":9001", cfg.Server.Addr)
	assert.Equal(t, "handouts", cfg.Storage.Workdir)
	assert.Equal(t, "openai:gpt-4o-mini", cfg.LLM.DefaultModel)
	// Unset fields still fall back to defaults.
	assert.Equal(t, "scriptor.db", cfg.Storage.DatabaseURL)
}

func TestLoadEnvOverridesYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server:\n  addr: \":9001\"\n"), 0o644))

	t.Setenv("SCRIPTOR_ADDR", ":7777")
	t.Setenv("TAVILY_API_KEY", "tv-test")

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, ":7777", cfg.Server.Addr)
	assert.Equal(t, "tv-test", cfg.Tools.TavilyAPIKey)
}

func TestLoadMissingFileIsFine(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.NoError(t, err)
	assert.Equal(t, ":8080", cfg.Server.Addr)
}

func TestLoadUnreadablePath(t *testing.T) {
	// A directory is readable as a path but not as a file; this must surface
	// as an error rather than being silently skipped like a missing file.
	_, err := Load(t.TempDir())
	assert.Error(t, err)
}

func TestLoadInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("server: [not: valid"), 0o644))

	_, err := Load(path)
	assert.Error(t, err)
}
