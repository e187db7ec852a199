package cli

import (
	tea "github.com/charmbracelet/bubbletea"
	"github.com/spf13/cobra"

	"github.com/refassist/refassist-cli/internal/adapters/driving/tui"
)

var chatCmd = &cobra.Command{
	Use:   "chat",
	Short: "Interactive question session over the indexed documentation",
	Long: `Opens a terminal REPL. Each question is answered from retrieved
context when an LLM is configured; otherwise raw retrieval results are
shown.`,
	RunE: runChat,
}

func init() {
	rootCmd.AddCommand(chatCmd)
}

func runChat(_ *cobra.Command, _ []string) error {
	rag, err := newRAG()
	if err != nil {
		return err
	}
	defer rag.Close()

	askEnabled := rag.HasLLM()
	model := tui.New(rag, askEnabled)

	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err = program.Run()
	return err
}
