package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	configfile "github.com/refassist/refassist-cli/internal/adapters/driven/config/file"
)

func TestRootCmd_RegistersCommands(t *testing.T) {
	names := make(map[string]bool)
	for _, cmd := range rootCmd.Commands() {
		names[cmd.Name()] = true
	}

	for _, want := range []string{"index", "query", "ask", "chat", "watch", "mcp", "version"} {
		assert.True(t, names[want], "missing command %q", want)
	}
}

func TestNewEmbedder_DefaultsToOllama(t *testing.T) {
	embedder, err := newEmbedder(configfile.EmbeddingConfig{})
	require.NoError(t, err)
	assert.Equal(t, "nomic-embed-text", embedder.ModelName())
}

func TestNewEmbedder_OpenAIRequiresKey(t *testing.T) {
	_, err := newEmbedder(configfile.EmbeddingConfig{Provider: "openai"})
	assert.Error(t, err)

	embedder, err := newEmbedder(configfile.EmbeddingConfig{Provider: "openai", APIKey: "sk-test"})
	require.NoError(t, err)
	assert.Equal(t, "text-embedding-3-small", embedder.ModelName())
}

func TestNewEmbedder_UnknownProvider(t *testing.T) {
	_, err := newEmbedder(configfile.EmbeddingConfig{Provider: "bogus"})
	assert.Error(t, err)
}
