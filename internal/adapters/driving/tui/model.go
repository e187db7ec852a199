package tui

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/refassist/refassist-cli/internal/core/domain"
)

var (
	headerStyle  = lipgloss.NewStyle().Bold(true)
	statusStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("10"))
	errorStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("9"))
	sourceStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("8"))
	answerStyle  = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	queryBox     = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).Padding(0, 1)
	codeStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("11"))
	matchHeading = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("12"))
)

// answerMsg carries a generated answer back into the update loop.
type answerMsg struct{ answer *domain.Answer }

// resultsMsg carries raw retrieval results when answering is disabled.
type resultsMsg struct{ docs []domain.SourceDocument }

// errMsg carries a pipeline failure.
type errMsg struct{ err error }

// Model is the Bubble Tea model for the chat REPL.
type Model struct {
	assistant  Assistant
	askEnabled bool

	input    textinput.Model
	viewport viewport.Model
	status   string
	busy     bool
	ready    bool
}

// New creates a chat model. When askEnabled is false, Enter runs plain
// retrieval instead of generated answers.
func New(assistant Assistant, askEnabled bool) Model {
	ti := textinput.New()
	ti.Prompt = "> "
	ti.Placeholder = "Ask about the indexed documentation"
	ti.Focus()
	ti.CharLimit = 0

	vp := viewport.New(0, 0)

	status := "Ready. Type a question and press Enter."
	if !askEnabled {
		status = "No answer model configured; showing raw retrieval results."
	}

	return Model{
		assistant:  assistant,
		askEnabled: askEnabled,
		input:      ti,
		viewport:   vp,
		status:     status,
	}
}

// Init initializes the model (text input cursor blink).
func (m Model) Init() tea.Cmd { return textinput.Blink }

// Update handles key and window events and updates the view state.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.ready = true
		_, qh := queryBox.GetFrameSize()
		_, ah := answerStyle.GetFrameSize()
		reserved := 2 + qh + ah // header + status + frames
		vh := msg.Height - reserved
		if vh < 3 {
			vh = 3
		}
		m.viewport.Width = max(20, msg.Width-4)
		m.viewport.Height = vh
		return m, nil

	case tea.KeyMsg:
		if msg.Type == tea.KeyCtrlC || msg.Type == tea.KeyCtrlD || msg.Type == tea.KeyEsc {
			return m, tea.Quit
		}
		if msg.String() == "enter" && !m.busy {
			question := strings.TrimSpace(m.input.Value())
			if question == "" {
				return m, nil
			}
			m.busy = true
			m.status = "Thinking..."
			m.input.SetValue("")
			return m, m.dispatch(question)
		}

	case answerMsg:
		m.busy = false
		m.status = "Done. Ask a follow-up or press Esc to quit."
		m.viewport.SetContent(renderAnswer(msg.answer))
		m.viewport.GotoTop()
		return m, nil

	case resultsMsg:
		m.busy = false
		m.status = fmt.Sprintf("%d matching documents.", len(msg.docs))
		m.viewport.SetContent(renderResults(msg.docs))
		m.viewport.GotoTop()
		return m, nil

	case errMsg:
		m.busy = false
		m.status = errorStyle.Render("Error: " + msg.err.Error())
		return m, nil
	}

	var inputCmd, vpCmd tea.Cmd
	m.input, inputCmd = m.input.Update(msg)
	m.viewport, vpCmd = m.viewport.Update(msg)
	return m, tea.Batch(inputCmd, vpCmd)
}

// dispatch runs the question against the assistant off the update loop.
func (m Model) dispatch(question string) tea.Cmd {
	assistant := m.assistant
	if m.askEnabled {
		return func() tea.Msg {
			answer, err := assistant.Ask(context.Background(), question, false)
			if err != nil {
				return errMsg{err}
			}
			return answerMsg{answer}
		}
	}
	return func() tea.Msg {
		docs, err := assistant.Query(context.Background(), question)
		if err != nil {
			return errMsg{err}
		}
		return resultsMsg{docs}
	}
}

// View renders the REPL layout.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	header := headerStyle.Render("refassist chat")
	body := answerStyle.Render(m.viewport.View())
	input := queryBox.Render(m.input.View())
	status := statusStyle.Render(m.status)
	return header + "\n" + body + "\n" + input + "\n" + status
}

// renderAnswer formats a generated answer with its sources.
func renderAnswer(answer *domain.Answer) string {
	var b strings.Builder
	b.WriteString(answer.Text)

	if len(answer.CodeExamples) > 0 {
		b.WriteString("\n\n")
		b.WriteString(matchHeading.Render("Code examples"))
		for _, code := range answer.CodeExamples {
			b.WriteString("\n\n")
			b.WriteString(codeStyle.Render(code))
		}
	}

	if len(answer.Sources) > 0 {
		b.WriteString("\n\n")
		b.WriteString(sourceStyle.Render("Sources: " + strings.Join(answer.Sources, ", ")))
	}

	return b.String()
}

// renderResults formats raw retrieval output, one section per document.
func renderResults(docs []domain.SourceDocument) string {
	if len(docs) == 0 {
		return "No matches above the similarity threshold."
	}

	var b strings.Builder
	for i, doc := range docs {
		if i > 0 {
			b.WriteString("\n\n")
		}
		b.WriteString(matchHeading.Render(doc.Document.File))
		for _, match := range doc.Matches {
			b.WriteString(fmt.Sprintf("\n  [%.2f] %s", match.Similarity, excerpt(match.Text, 160)))
		}
	}
	return b.String()
}

// excerpt truncates text to n runes on a rune boundary.
func excerpt(text string, n int) string {
	runes := []rune(strings.ReplaceAll(text, "\n", " "))
	if len(runes) <= n {
		return string(runes)
	}
	return string(runes[:n]) + "..."
}
