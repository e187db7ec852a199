package cli

import (
	"fmt"

	"github.com/spf13/cobra"
)

var askCode bool

var askCmd = &cobra.Command{
	Use:   "ask [question]",
	Short: "Ask a question answered from the indexed documentation",
	Long: `Retrieves the documents most relevant to the question and asks the
configured LLM to answer from them. Requires an LLM API key (set
PERPLEXITY_API_KEY or the llm section of the config file).`,
	Args: cobra.ExactArgs(1),
	RunE: runAsk,
}

func init() {
	askCmd.Flags().BoolVar(&askCode, "code", false, "request code examples in the answer")
	rootCmd.AddCommand(askCmd)
}

func runAsk(cmd *cobra.Command, args []string) error {
	rag, err := newRAG()
	if err != nil {
		return err
	}
	defer rag.Close()

	answer, err := rag.Ask(cmd.Context(), args[0], askCode)
	if err != nil {
		return fmt.Errorf("ask failed: %w", err)
	}

	cmd.Println(answer.Text)

	if askCode && len(answer.CodeExamples) > 0 {
		cmd.Println("\nCode examples:")
		for _, code := range answer.CodeExamples {
			cmd.Printf("\n%s\n", code)
		}
	}

	if len(answer.Sources) > 0 {
		cmd.Println("\nSources:")
		for _, src := range answer.Sources {
			cmd.Printf("  %s\n", src)
		}
	}
	return nil
}
