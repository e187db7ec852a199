package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var indexCmd = &cobra.Command{
	Use:   "index [path]",
	Short: "Index documentation files into the vector store",
	Long: `Loads the file or directory at path, chunks the documents and embeds
them. Documents already indexed with identical content are skipped; changed
files are replaced in place. Re-running after a failure resumes where the
embedding phase stopped.`,
	Args: cobra.ExactArgs(1),
	RunE: runIndex,
}

func init() {
	rootCmd.AddCommand(indexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	rag, err := newRAG()
	if err != nil {
		return err
	}
	defer rag.Close()

	report, err := rag.Initialize(cmd.Context(), args[0])
	if err != nil {
		return fmt.Errorf("indexing failed: %w", err)
	}

	cmd.Printf("Indexed %d new, updated %d, skipped %d documents (%d chunks)\n",
		report.Indexed, report.Updated, report.Skipped, report.Chunks)
	return nil
}
