package help

import (
	"strings"

	"github.com/charmbracelet/bubbles/help"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/tasklists/internal/keys"
	"github.com/nhle/tasklists/internal/theme"
	"github.com/nhle/tasklists/internal/ui/command"
)

// Model is the help overlay: every key binding plus the palette commands.
type Model struct {
	keys     *keys.KeyMap
	help     help.Model
	commands []string
	width    int
	height   int
}

// New creates a help overlay listing k and the command palette's commands.
func New(k *keys.KeyMap, width, height int) Model {
	h := help.New()
	h.ShowAll = true
	m := Model{
		keys:     k,
		help:     h,
		commands: command.Usage,
	}
	m.SetSize(width, height)
	return m
}

// Update is a no-op; the root model closes the overlay.
func (m Model) Update(tea.Msg) (Model, tea.Cmd) {
	return m, nil
}

// View renders the overlay.
func (m Model) View() string {
	heading := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite)

	sections := []string{
		heading.MarginBottom(1).Render("Keyboard Shortcuts"),
		m.help.View(m.keys),
		"",
		heading.Render("Commands (" + m.keys.Command.Help().Key + ")"),
		m.renderCommands(),
	}

	return theme.PanelStyle.
		Width(max(m.width-4, 0)).
		Height(max(m.height-4, 0)).
		Render(lipgloss.JoinVertical(lipgloss.Left, sections...))
}

func (m Model) renderCommands() string {
	lines := make([]string, len(m.commands))
	for i, c := range m.commands {
		lines[i] = "  " + c
	}
	return theme.HelpStyle.Render(strings.Join(lines, "\n"))
}

// SetSize updates the overlay dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	m.help.Width = max(width-8, 0)
}
