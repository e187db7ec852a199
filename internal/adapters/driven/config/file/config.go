// Package file loads and persists tool configuration as a TOML file.
package file

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// Environment variables consulted as overrides. Keys usually live in the
// environment (or a .env file) rather than on disk.
const (
	EnvPerplexityAPIKey = "PERPLEXITY_API_KEY"
	EnvOpenAIAPIKey     = "OPENAI_API_KEY"
)

// Config is the full tool configuration.
type Config struct {
	Store     StoreConfig     `toml:"store"`
	Embedding EmbeddingConfig `toml:"embedding"`
	LLM       LLMConfig       `toml:"llm"`
	Retrieval RetrievalConfig `toml:"retrieval"`
	Chunking  ChunkingConfig  `toml:"chunking"`
}

// StoreConfig configures the index database.
type StoreConfig struct {
	// Path is the SQLite database file. Empty means the default location.
	Path string `toml:"path"`
}

// EmbeddingConfig selects and configures the embedding provider.
type EmbeddingConfig struct {
	// Provider is "ollama" or "openai".
	Provider string `toml:"provider"`
	BaseURL  string `toml:"base_url"`
	Model    string `toml:"model"`
	// APIKey applies to the openai provider; the environment wins over
	// the file.
	APIKey     string `toml:"api_key"`
	Dimensions int    `toml:"dimensions"`
}

// LLMConfig configures the answer client.
type LLMConfig struct {
	// Provider is "perplexity" or empty to disable answering.
	Provider    string  `toml:"provider"`
	BaseURL     string  `toml:"base_url"`
	Model       string  `toml:"model"`
	APIKey      string  `toml:"api_key"`
	Temperature float64 `toml:"temperature"`
}

// RetrievalConfig sets query defaults.
type RetrievalConfig struct {
	TopK      int     `toml:"top_k"`
	Threshold float64 `toml:"threshold"`
}

// ChunkingConfig sets chunker parameters; zero values mean defaults.
type ChunkingConfig struct {
	ChunkSize int `toml:"chunk_size"`
	Overlap   int `toml:"overlap"`
}

// Default returns the configuration used when no file is present.
func Default() Config {
	return Config{
		Embedding: EmbeddingConfig{Provider: "ollama"},
		LLM:       LLMConfig{Provider: "perplexity"},
		Retrieval: RetrievalConfig{TopK: 5, Threshold: 0.7},
	}
}

// DefaultPath returns the user-level configuration file path.
func DefaultPath() (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("getting home directory: %w", err)
	}
	return filepath.Join(home, ".refassist", "config.toml"), nil
}

// Load reads the configuration at path, layering file contents and
// environment overrides onto the defaults. A missing file is not an error.
func Load(path string) (Config, error) {
	cfg := Default()

	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return cfg, err
		}
	}

	data, err := os.ReadFile(path)
	switch {
	case os.IsNotExist(err):
		// No config file yet - that's fine, run on defaults
	case err != nil:
		return cfg, fmt.Errorf("reading config: %w", err)
	default:
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return cfg, fmt.Errorf("parsing config %s: %w", path, err)
		}
	}

	applyEnv(&cfg)
	return cfg, nil
}

// Save writes the configuration to path with restricted permissions, since
// it may carry API keys.
func Save(path string, cfg Config) error {
	if path == "" {
		var err error
		path, err = DefaultPath()
		if err != nil {
			return err
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshalling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0600); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}
	return nil
}

// applyEnv layers environment variables over file values.
func applyEnv(cfg *Config) {
	if key := os.Getenv(EnvPerplexityAPIKey); key != "" {
		cfg.LLM.APIKey = key
	}
	if key := os.Getenv(EnvOpenAIAPIKey); key != "" {
		cfg.Embedding.APIKey = key
	}
}
