package cli

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/refassist/refassist-cli/internal/core/domain"
)

var (
	queryTopK      int
	queryThreshold float64
	queryJSON      bool
)

var queryCmd = &cobra.Command{
	Use:   "query [text]",
	Short: "Retrieve the documents most similar to a query",
	Long: `Embeds the query text and ranks stored chunks by similarity. Prints
each matching source document with its matching chunks. An empty result
means nothing cleared the similarity threshold.`,
	Args: cobra.ExactArgs(1),
	RunE: runQuery,
}

func init() {
	queryCmd.Flags().IntVarP(&queryTopK, "top-k", "k", 0, "number of chunks to rank (default from config)")
	queryCmd.Flags().Float64VarP(&queryThreshold, "threshold", "t", -1, "minimum similarity (default from config)")
	queryCmd.Flags().BoolVar(&queryJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(queryCmd)
}

func runQuery(cmd *cobra.Command, args []string) error {
	rag, err := newRAG()
	if err != nil {
		return err
	}
	defer rag.Close()

	var docs []domain.SourceDocument
	if queryTopK > 0 || queryThreshold >= 0 {
		topK, threshold := rag.Defaults()
		if queryTopK > 0 {
			topK = queryTopK
		}
		if queryThreshold >= 0 {
			threshold = queryThreshold
		}
		docs, err = rag.QueryOpts(cmd.Context(), args[0], topK, threshold)
	} else {
		docs, err = rag.Query(cmd.Context(), args[0])
	}
	if err != nil {
		return fmt.Errorf("query failed: %w", err)
	}

	if queryJSON {
		return outputQueryJSON(cmd, docs)
	}
	return outputQueryText(cmd, docs)
}

func outputQueryJSON(cmd *cobra.Command, docs []domain.SourceDocument) error {
	type matchOut struct {
		Text       string  `json:"text"`
		Index      int     `json:"index"`
		Similarity float64 `json:"similarity"`
	}
	type docOut struct {
		File    string     `json:"file"`
		Matches []matchOut `json:"matches"`
	}

	out := make([]docOut, len(docs))
	for i, doc := range docs {
		out[i] = docOut{File: doc.Document.File, Matches: make([]matchOut, len(doc.Matches))}
		for j, m := range doc.Matches {
			out[i].Matches[j] = matchOut{Text: m.Text, Index: m.Index, Similarity: m.Similarity}
		}
	}

	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputQueryText(cmd *cobra.Command, docs []domain.SourceDocument) error {
	if len(docs) == 0 {
		cmd.Println("No results above the similarity threshold.")
		return nil
	}

	for _, doc := range docs {
		cmd.Printf("%s\n", doc.Document.File)
		for _, m := range doc.Matches {
			cmd.Printf("  [%.3f] chunk %d: %s\n", m.Similarity, m.Index, firstLine(m.Text))
		}
	}
	return nil
}

// firstLine trims a chunk down to a single display line.
func firstLine(text string) string {
	const limit = 120
	for i, r := range text {
		if r == '\n' || i >= limit {
			return text[:i] + "..."
		}
	}
	return text
}
