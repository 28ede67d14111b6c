package ui

import (
	"fmt"
	"os"

	tea "github.com/charmbracelet/bubbletea"
)

// Confirm asks a yes/no question on stderr. hint tells non-interactive
// callers how to skip the prompt, e.g. "use --yes to skip".
func Confirm(question, hint string) (bool, error) {
	if err := RequireInteraction(hint); err != nil {
		return false, fmt.Errorf("confirmation required: %w", err)
	}

	m := &confirmModel{question: question}
	if _, err := tea.NewProgram(m, tea.WithOutput(os.Stderr)).Run(); err != nil {
		return false, fmt.Errorf("confirm prompt: %w", err)
	}
	if m.cancelled {
		return false, ErrCancelled
	}
	return m.confirmed, nil
}

type confirmModel struct {
	question  string
	confirmed bool
	cancelled bool
	answered  bool
}

func (m *confirmModel) Init() tea.Cmd { return nil }

func (m *confirmModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return m, nil
	}
	switch key.String() {
	case "y", "Y":
		m.confirmed, m.answered = true, true
		return m, tea.Quit
	case "n", "N", "enter":
		m.answered = true
		return m, tea.Quit
	case "ctrl+c", "esc":
		m.cancelled = true
		return m, tea.Quit
	}
	return m, nil
}

func (m *confirmModel) View() string {
	if m.answered || m.cancelled {
		return ""
	}
	return Accent("?") + " " + m.question + " " + Muted("[y/N]") + " "
}
