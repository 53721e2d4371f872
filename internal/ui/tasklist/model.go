package tasklist

import (
	"context"
	"errors"
	"fmt"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/tasklists/internal/keys"
	"github.com/nhle/tasklists/internal/model"
	"github.com/nhle/tasklists/internal/tasks"
	"github.com/nhle/tasklists/internal/theme"
)

// EditTaskMsg is sent when the user asks to edit the selected task.
type EditTaskMsg struct {
	ListName string
	Task     model.Task
}

// ErrorMsg reports a failed store operation.
type ErrorMsg struct {
	Err error
}

// Model is one list pane: the tasks of a single list name plus an input
// for adding new ones.
type Model struct {
	list          list.Model
	store         *tasks.Store
	keys          *keys.KeyMap
	input         textinput.Model
	adding        bool
	showCompleted bool
	focused       bool
	seen          uint64
	width         int
	height        int
}

// New creates a pane bound to s and fills it from the store's cache.
func New(s *tasks.Store, k *keys.KeyMap, showCompleted bool, width, height int) Model {
	l := list.New([]list.Item{}, ItemDelegate{}, width, height)
	l.SetShowTitle(false)
	l.SetShowStatusBar(false)
	l.SetShowHelp(false)
	l.SetFilteringEnabled(false)
	// The root model owns quitting and help.
	l.KeyMap.Quit.SetEnabled(false)
	l.KeyMap.ForceQuit.SetEnabled(false)
	l.KeyMap.ShowFullHelp.SetEnabled(false)
	l.KeyMap.CloseFullHelp.SetEnabled(false)

	in := textinput.New()
	in.Placeholder = "Add a new task"
	in.Prompt = "+ "
	in.CharLimit = 200

	m := Model{
		list:          l,
		store:         s,
		keys:          k,
		input:         in,
		showCompleted: showCompleted,
	}
	m.SetSize(width, height)
	m.rebuild()
	return m
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return nil
}

// Update handles messages for the pane.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if msg, ok := msg.(tea.KeyMsg); ok {
		if m.adding {
			return m.handleAddKeys(msg)
		}
		return m.handleNormalKeys(msg)
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

// handleAddKeys processes key input while the add-task input is focused.
func (m Model) handleAddKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Submit):
		title := m.input.Value()
		if _, err := m.store.Add(context.Background(), title); err != nil {
			if errors.Is(err, tasks.ErrInvalidTitle) {
				return m, nil
			}
			return m, reportError(err)
		}
		m.input.Reset()
		return m, m.Refresh()

	case key.Matches(msg, m.keys.Back):
		m.StopAdding()
		return m, nil
	}

	var cmd tea.Cmd
	m.input, cmd = m.input.Update(msg)
	return m, cmd
}

// handleNormalKeys processes key input while browsing the list.
func (m Model) handleNormalKeys(msg tea.KeyMsg) (Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Add):
		m.adding = true
		m.input.Reset()
		return m, m.input.Focus()

	case key.Matches(msg, m.keys.Toggle):
		task, ok := m.SelectedTask()
		if !ok {
			return m, nil
		}
		if _, err := m.store.ToggleCompleted(context.Background(), task.ID); err != nil {
			return m, reportError(err)
		}
		return m, m.Refresh()

	case key.Matches(msg, m.keys.Delete):
		task, ok := m.SelectedTask()
		if !ok {
			return m, nil
		}
		if err := m.store.Remove(context.Background(), task.ID); err != nil {
			return m, reportError(err)
		}
		return m, m.Refresh()

	case key.Matches(msg, m.keys.Edit):
		task, ok := m.SelectedTask()
		if !ok {
			return m, nil
		}
		listName := m.store.ListName()
		return m, func() tea.Msg {
			return EditTaskMsg{ListName: listName, Task: task}
		}

	case key.Matches(msg, m.keys.ShowCompleted):
		return m, m.ToggleShowCompleted()
	}

	// Delegate to the list for navigation keys (up/down/pgup/pgdn)
	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	return m, cmd
}

func reportError(err error) tea.Cmd {
	return func() tea.Msg { return ErrorMsg{Err: err} }
}

// Refresh re-reads the store's cache if it changed since the last render.
// Sibling panes on the same list name pick up each other's writes here.
func (m *Model) Refresh() tea.Cmd {
	if m.store.Version() == m.seen {
		return nil
	}
	return m.rebuild()
}

// rebuild replaces the list items with the visible tasks.
func (m *Model) rebuild() tea.Cmd {
	m.seen = m.store.Version()

	visible := m.VisibleTasks()
	items := make([]list.Item, len(visible))
	for i, t := range visible {
		items[i] = TaskItem{Task: t}
	}
	cmd := m.list.SetItems(items)
	if n := len(items); n > 0 && m.list.Index() >= n {
		m.list.Select(n - 1)
	}
	return cmd
}

// VisibleTasks returns the tasks shown in the pane, in store order.
// Completed tasks are hidden unless show-completed is on.
func (m Model) VisibleTasks() []model.Task {
	all := m.store.Tasks()
	if m.showCompleted {
		return all
	}
	visible := make([]model.Task, 0, len(all))
	for _, t := range all {
		if !t.Completed {
			visible = append(visible, t)
		}
	}
	return visible
}

// HiddenCount returns how many completed tasks are currently hidden.
func (m Model) HiddenCount() int {
	if m.showCompleted {
		return 0
	}
	n := 0
	for _, t := range m.store.Tasks() {
		if t.Completed {
			n++
		}
	}
	return n
}

// ToggleShowCompleted shows or hides completed tasks.
func (m *Model) ToggleShowCompleted() tea.Cmd {
	m.showCompleted = !m.showCompleted
	return m.rebuild()
}

// ShowCompleted reports whether completed tasks are shown.
func (m Model) ShowCompleted() bool { return m.showCompleted }

// SelectedTask returns the highlighted task.
func (m Model) SelectedTask() (model.Task, bool) {
	item, ok := m.list.SelectedItem().(TaskItem)
	if !ok {
		return model.Task{}, false
	}
	return item.Task, true
}

// Adding reports whether the add-task input has focus. While it does,
// the root model must not treat letters as shortcuts.
func (m Model) Adding() bool { return m.adding }

// StopAdding leaves the add-task input.
func (m *Model) StopAdding() {
	m.adding = false
	m.input.Blur()
	m.input.Reset()
}

// Store returns the task store behind the pane.
func (m Model) Store() *tasks.Store { return m.store }

// ListName returns the list the pane shows.
func (m Model) ListName() string { return m.store.ListName() }

// SetFocused marks the pane as the receiver of key input.
func (m *Model) SetFocused(focused bool) {
	m.focused = focused
	if !focused {
		m.StopAdding()
	}
}

// Focused reports whether the pane receives key input.
func (m Model) Focused() bool { return m.focused }

// View renders the pane including its frame.
func (m Model) View() string {
	style := theme.PaneStyle
	if m.focused {
		style = theme.FocusedPaneStyle
	}
	innerWidth := max(m.width-style.GetHorizontalFrameSize(), 0)

	title := theme.PaneTitleStyle.Render("Tasks: " + m.store.ListName())

	var body string
	if len(m.list.Items()) == 0 {
		body = m.renderEmptyState(innerWidth, m.list.Height())
	} else {
		body = m.list.View()
	}

	content := lipgloss.JoinVertical(lipgloss.Left, title, body, m.renderFooter())

	// Width and Height include padding but not the border.
	return style.
		Width(max(m.width-style.GetHorizontalBorderSize(), 0)).
		Height(max(m.height-style.GetVerticalBorderSize(), 0)).
		Render(content)
}

// renderEmptyState shows guidance text when no tasks are visible.
func (m Model) renderEmptyState(width, height int) string {
	text := "No tasks yet! Add one below."
	if hidden := m.HiddenCount(); hidden > 0 {
		text += fmt.Sprintf("\n(%d completed task(s) hidden)", hidden)
	}

	return lipgloss.NewStyle().
		Width(width).
		Height(height).
		Align(lipgloss.Center, lipgloss.Center).
		Foreground(theme.ColorGray).
		Render(text)
}

// renderFooter shows the add input while adding, otherwise a hint line.
func (m Model) renderFooter() string {
	if m.adding {
		return m.input.View()
	}
	hint := "a add · H show completed"
	if m.showCompleted {
		hint = "a add · H hide completed"
	}
	if hidden := m.HiddenCount(); hidden > 0 {
		hint += fmt.Sprintf(" (%d hidden)", hidden)
	}
	return theme.HelpStyle.Render(hint)
}

// SetSize updates the pane dimensions, frame included.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height

	innerWidth := max(width-theme.PaneStyle.GetHorizontalFrameSize(), 0)
	innerHeight := max(height-theme.PaneStyle.GetVerticalFrameSize(), 0)

	// Title (with margin) takes two lines, the footer one.
	m.list.SetSize(innerWidth, max(innerHeight-3, 1))
	m.input.Width = max(innerWidth-4, 1)
}
