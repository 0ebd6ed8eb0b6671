// Package tui provides an interactive shell for list management.
package tui

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
)

// Runner executes keyword command lines (subset of bot.Dispatcher)
type Runner interface {
	Dispatch(text string) (string, bool)
	HelpText() string
}

// entry is one command/response pair in the transcript
type entry struct {
	input    string
	response string
}

// Model represents the shell state
type Model struct {
	runner Runner

	textInput  textinput.Model
	transcript []entry

	width  int
	height int

	promptStyle   lipgloss.Style
	inputStyle    lipgloss.Style
	responseStyle lipgloss.Style
	errorStyle    lipgloss.Style
	helpStyle     lipgloss.Style
}

// New creates a new shell model
func New(runner Runner) *Model {
	ti := textinput.New()
	ti.Placeholder = "Type a command (help for commands, exit to quit)"
	ti.CharLimit = 512
	ti.Focus()

	return &Model{
		runner:    runner,
		textInput: ti,
		promptStyle: lipgloss.NewStyle().
			Bold(true).
			Foreground(lipgloss.Color("212")),
		inputStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("252")),
		responseStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("250")),
		errorStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("203")),
		helpStyle: lipgloss.NewStyle().
			Foreground(lipgloss.Color("241")),
	}
}

// Init initializes the shell
func (m *Model) Init() tea.Cmd {
	return textinput.Blink
}

// Update handles messages
func (m *Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		return m, nil

	case tea.KeyMsg:
		switch msg.Type {
		case tea.KeyCtrlC, tea.KeyEsc:
			return m, tea.Quit
		case tea.KeyEnter:
			return m, m.submit()
		}
	}

	var cmd tea.Cmd
	m.textInput, cmd = m.textInput.Update(msg)
	return m, cmd
}

func (m *Model) submit() tea.Cmd {
	input := strings.TrimSpace(m.textInput.Value())
	m.textInput.SetValue("")

	if input == "" {
		return nil
	}
	if input == "exit" || input == "quit" {
		return tea.Quit
	}

	response, handled := m.runner.Dispatch(input)
	if !handled {
		response = "Unknown command. Type 'help' for available commands."
	}
	m.transcript = append(m.transcript, entry{input: input, response: response})
	return nil
}

// View renders the transcript and prompt
func (m *Model) View() string {
	var b strings.Builder

	b.WriteString(m.promptStyle.Render("listbot shell"))
	b.WriteString("\n")
	b.WriteString(m.helpStyle.Render("Type 'help' for commands, 'exit' to quit."))
	b.WriteString("\n\n")

	// Keep the transcript bounded so the prompt stays on screen
	entries := m.transcript
	if max := m.maxEntries(); len(entries) > max {
		entries = entries[len(entries)-max:]
	}

	for _, e := range entries {
		b.WriteString(m.promptStyle.Render("> "))
		b.WriteString(m.inputStyle.Render(e.input))
		b.WriteString("\n")
		style := m.responseStyle
		if isErrorResponse(e.response) {
			style = m.errorStyle
		}
		b.WriteString(style.Render(e.response))
		b.WriteString("\n\n")
	}

	b.WriteString(m.textInput.View())
	b.WriteString("\n")
	return b.String()
}

func (m *Model) maxEntries() int {
	if m.height <= 0 {
		return 10
	}
	// Rough budget: header, prompt line and three lines per entry
	max := (m.height - 5) / 3
	if max < 1 {
		max = 1
	}
	return max
}

// isErrorResponse checks for the store's failure message shapes so errors
// can be highlighted in the transcript.
func isErrorResponse(response string) bool {
	for _, prefix := range []string{
		"Usage:",
		"Unknown command",
		"An error occurred",
	} {
		if strings.HasPrefix(response, prefix) {
			return true
		}
	}
	return strings.Contains(response, "not found") ||
		strings.Contains(response, "already") ||
		strings.Contains(response, "cannot be") ||
		strings.Contains(response, "Maximum")
}

// Run starts the shell and blocks until the user exits
func Run(runner Runner) error {
	p := tea.NewProgram(New(runner), tea.WithAltScreen())
	_, err := p.Run()
	return err
}
