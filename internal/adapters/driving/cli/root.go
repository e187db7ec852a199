// Package cli wires the cobra command tree to the core services.
package cli

import (
	"fmt"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	configfile "github.com/refassist/refassist-cli/internal/adapters/driven/config/file"
	"github.com/refassist/refassist-cli/internal/adapters/driven/embedding/ollama"
	"github.com/refassist/refassist-cli/internal/adapters/driven/embedding/openai"
	"github.com/refassist/refassist-cli/internal/adapters/driven/llm/perplexity"
	"github.com/refassist/refassist-cli/internal/adapters/driven/storage/sqlite"
	"github.com/refassist/refassist-cli/internal/chunker"
	"github.com/refassist/refassist-cli/internal/core/ports/driven"
	"github.com/refassist/refassist-cli/internal/core/services"
	"github.com/refassist/refassist-cli/internal/loader"
	"github.com/refassist/refassist-cli/internal/logger"
)

// version is set at build time via -ldflags.
var version = "dev"

// Persistent flags.
var (
	configPath string
	dbPath     string
	inMemory   bool
	verbose    bool
)

var rootCmd = &cobra.Command{
	Use:   "refassist",
	Short: "Index local documentation and query it semantically",
	Long: `refassist indexes local documentation files (.md, .txt, .rst) into a
SQLite vector store and answers questions about them using similarity
retrieval, optionally backed by an LLM.`,
	SilenceUsage: true,
	PersistentPreRun: func(_ *cobra.Command, _ []string) {
		logger.SetVerbose(verbose)
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file (default ~/.refassist/config.toml)")
	rootCmd.PersistentFlags().StringVar(&dbPath, "db", "", "index database file (default ~/.refassist/index.db)")
	rootCmd.PersistentFlags().BoolVar(&inMemory, "memory", false, "use an ephemeral in-memory index")
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
}

// Execute runs the root command.
func Execute() error {
	// API keys may live in a .env file next to the working directory.
	_ = godotenv.Load()
	return rootCmd.Execute()
}

// newRAG builds the full service stack from configuration and flags. The
// caller owns the returned service and must Close it.
func newRAG() (*services.RAGService, error) {
	cfg, err := configfile.Load(configPath)
	if err != nil {
		return nil, err
	}

	storePath := cfg.Store.Path
	if dbPath != "" {
		storePath = dbPath
	}
	if inMemory {
		storePath = sqlite.MemoryPath
	}

	store, err := sqlite.NewStore(storePath)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}

	embedder, err := newEmbedder(cfg.Embedding)
	if err != nil {
		store.Close()
		return nil, err
	}

	var llm driven.LLMService
	if cfg.LLM.APIKey != "" {
		llm, err = perplexity.NewLLMService(perplexity.Config{
			APIKey:      cfg.LLM.APIKey,
			BaseURL:     cfg.LLM.BaseURL,
			Model:       cfg.LLM.Model,
			Temperature: cfg.LLM.Temperature,
		})
		if err != nil {
			store.Close()
			return nil, err
		}
	}

	var chunkOpts []chunker.Option
	if cfg.Chunking.ChunkSize > 0 {
		chunkOpts = append(chunkOpts, chunker.WithChunkSize(cfg.Chunking.ChunkSize))
	}
	if cfg.Chunking.Overlap > 0 {
		chunkOpts = append(chunkOpts, chunker.WithOverlap(cfg.Chunking.Overlap))
	}

	return services.NewRAGService(services.RAGConfig{
		Store:     store,
		Loader:    loader.New(),
		Chunker:   chunker.New(chunkOpts...),
		Embedder:  embedder,
		LLM:       llm,
		TopK:      cfg.Retrieval.TopK,
		Threshold: &cfg.Retrieval.Threshold,
	}), nil
}

// newEmbedder selects the embedding provider from configuration.
func newEmbedder(cfg configfile.EmbeddingConfig) (driven.EmbeddingService, error) {
	switch cfg.Provider {
	case "", "ollama":
		return ollama.NewEmbeddingService(ollama.Config{
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
		}), nil
	case "openai":
		return openai.NewEmbeddingService(openai.Config{
			APIKey:     cfg.APIKey,
			BaseURL:    cfg.BaseURL,
			Model:      cfg.Model,
			Dimensions: cfg.Dimensions,
		})
	default:
		return nil, fmt.Errorf("unknown embedding provider %q", cfg.Provider)
	}
}
