package file

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_MissingFileUsesDefaults(t *testing.T) {
	cfg, err := Load(filepath.Join(t.TempDir(), "config.toml"))
	require.NoError(t, err)

	assert.Equal(t, "ollama", cfg.Embedding.Provider)
	assert.Equal(t, "perplexity", cfg.LLM.Provider)
	assert.Equal(t, 5, cfg.Retrieval.TopK)
	assert.InDelta(t, 0.7, cfg.Retrieval.Threshold, 1e-9)
}

func TestSaveAndLoad_RoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.Store.Path = "/tmp/index.db"
	cfg.Embedding.Model = "all-minilm"
	cfg.Retrieval.TopK = 10
	cfg.Chunking.ChunkSize = 512

	require.NoError(t, Save(path, cfg))

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "/tmp/index.db", loaded.Store.Path)
	assert.Equal(t, "all-minilm", loaded.Embedding.Model)
	assert.Equal(t, 10, loaded.Retrieval.TopK)
	assert.Equal(t, 512, loaded.Chunking.ChunkSize)
}

func TestLoad_EnvironmentOverridesFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	cfg := Default()
	cfg.LLM.APIKey = "from-file"
	require.NoError(t, Save(path, cfg))

	t.Setenv(EnvPerplexityAPIKey, "from-env")

	loaded, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", loaded.LLM.APIKey)
}

func TestLoad_MalformedFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte("not [valid toml"), 0o600))

	_, err := Load(path)
	assert.Error(t, err)
}
