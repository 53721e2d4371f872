package app

import (
	"context"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/tasklists/internal/keys"
	"github.com/nhle/tasklists/internal/model"
	"github.com/nhle/tasklists/internal/store"
	appsync "github.com/nhle/tasklists/internal/sync"
	"github.com/nhle/tasklists/internal/ui"
	"github.com/nhle/tasklists/internal/ui/command"
	helpview "github.com/nhle/tasklists/internal/ui/help"
	"github.com/nhle/tasklists/internal/ui/taskform"
	"github.com/nhle/tasklists/internal/ui/tasklist"
)

// ViewState represents the current active view in the application.
type ViewState int

const (
	ViewLists ViewState = iota
	ViewHelp
	ViewCommand
	ViewEdit
)

// Model is the root Bubble Tea model. It owns one pane per open list,
// routes key input to the focused pane, and hosts the help, command and
// edit overlays.
type Model struct {
	currentView  ViewState
	previousView ViewState
	layout       ui.Layout
	backend      store.Store
	channel      *appsync.Channel
	keys         *keys.KeyMap
	display      model.DisplayConfig
	panes        []tasklist.Model
	focus        int
	helpView     helpview.Model
	commandView  command.Model
	formView     taskform.Model
	ready        bool
	statusMsg    string
	errMsg       string
}

// New creates the root model with one pane per entry of listNames. Panes
// sharing a name share a list and stay in sync through ch.
func New(backend store.Store, ch *appsync.Channel, listNames []string, display model.DisplayConfig) Model {
	k := keys.DefaultKeyMap()
	m := Model{
		currentView: ViewLists,
		layout:      ui.NewLayout(80, 24),
		backend:     backend,
		channel:     ch,
		keys:        k,
		display:     display,
		helpView:    helpview.New(k, 80, 24),
		commandView: command.New(80, 24),
		formView:    taskform.New(80, 24),
	}
	for _, name := range listNames {
		m.panes = append(m.panes, m.newPane(context.Background(), name))
	}
	m.setFocus(0)
	m.resize()
	return m
}

// Init returns the initial command.
func (m Model) Init() tea.Cmd {
	return tea.SetWindowTitle("tasklists")
}

// Update handles messages and dispatches to the active view. Every pane
// is refreshed afterwards so writes made through one pane show up in its
// siblings.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	next, cmd := m.update(msg)
	refresh := next.refreshPanes()
	return next, tea.Batch(cmd, refresh)
}

func (m Model) update(msg tea.Msg) (Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.layout = ui.NewLayout(msg.Width, msg.Height)
		m.ready = true
		m.resize()
		// Forward to the form so huh can calculate its layout.
		if m.currentView == ViewEdit {
			return m.updateActiveView(msg)
		}
		return m, nil

	case tasklist.EditTaskMsg:
		m.previousView = m.currentView
		m.currentView = ViewEdit
		m.errMsg = ""
		return m, m.formView.StartEdit(msg.ListName, msg.Task)

	case taskform.TaskEditedMsg:
		m.currentView = ViewLists
		m.applyEdit(msg)
		return m, nil

	case taskform.TaskFormCancelMsg:
		m.currentView = ViewLists
		return m, nil

	case tasklist.ErrorMsg:
		m.errMsg = msg.Err.Error()
		return m, nil

	case command.CommandMsg:
		m.currentView = ViewLists
		return m, m.executeCommand(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, m.quit()
		}

		// Text entry in a pane owns every key.
		if m.currentView == ViewLists && m.focusedPane() != nil && m.focusedPane().Adding() {
			break
		}

		switch m.currentView {
		case ViewLists:
			m.errMsg = ""
			m.statusMsg = ""
			switch {
			case key.Matches(msg, m.keys.Quit):
				return m, m.quit()
			case key.Matches(msg, m.keys.Help):
				m.previousView = m.currentView
				m.currentView = ViewHelp
				return m, nil
			case key.Matches(msg, m.keys.Command):
				m.previousView = m.currentView
				m.currentView = ViewCommand
				return m, m.commandView.Focus()
			case key.Matches(msg, m.keys.NextList):
				m.setFocus(m.focus + 1)
				return m, nil
			case key.Matches(msg, m.keys.PrevList):
				m.setFocus(m.focus - 1)
				return m, nil
			}

		case ViewHelp:
			if key.Matches(msg, m.keys.Help, m.keys.Back, m.keys.Quit) {
				m.currentView = m.previousView
				return m, nil
			}

		case ViewCommand:
			if key.Matches(msg, m.keys.Back) {
				m.currentView = m.previousView
				return m, nil
			}
		}
	}

	return m.updateActiveView(msg)
}

// updateActiveView dispatches the message to the currently active view.
func (m Model) updateActiveView(msg tea.Msg) (Model, tea.Cmd) {
	var cmd tea.Cmd

	switch m.currentView {
	case ViewLists:
		if p := m.focusedPane(); p != nil {
			*p, cmd = p.Update(msg)
		}
	case ViewHelp:
		m.helpView, cmd = m.helpView.Update(msg)
	case ViewCommand:
		m.commandView, cmd = m.commandView.Update(msg)
	case ViewEdit:
		m.formView, cmd = m.formView.Update(msg)
	}

	return m, cmd
}

// View renders the full terminal UI using the layout manager.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}

	header := m.layout.RenderHeader("Tasks", m.headerStatus())
	content := m.renderContent()

	var statusBar string
	switch {
	case m.errMsg != "":
		statusBar = m.layout.RenderErrorBar(m.errMsg)
	case m.statusMsg != "" && m.currentView == ViewLists:
		statusBar = m.layout.RenderStatusBar(m.statusMsg)
	default:
		statusBar = m.layout.RenderStatusBar(m.keyHints())
	}

	return m.layout.RenderWithFrame(header, content, statusBar)
}

// renderContent returns the rendered string for the current active view.
func (m Model) renderContent() string {
	switch m.currentView {
	case ViewHelp:
		return m.helpView.View()
	case ViewCommand:
		return m.commandView.View()
	case ViewEdit:
		return m.formView.View()
	}

	views := make([]string, len(m.panes))
	for i, p := range m.panes {
		views[i] = p.View()
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, views...)
}

// headerStatus names the focused list and the number of open panes.
func (m Model) headerStatus() string {
	p := m.focusedPane()
	if p == nil {
		return "no lists"
	}
	if len(m.panes) == 1 {
		return p.ListName()
	}
	return fmt.Sprintf("%s (%d/%d)", p.ListName(), m.focus+1, len(m.panes))
}

// keyHints returns keyboard shortcut hints for the status bar.
func (m Model) keyHints() string {
	switch m.currentView {
	case ViewHelp:
		return "? close help | esc back"
	case ViewCommand:
		return "enter execute | esc back"
	case ViewEdit:
		return "enter submit | esc cancel"
	}
	if p := m.focusedPane(); p != nil && p.Adding() {
		return "enter add | esc done"
	}

	hints := make([]string, 0, 6)
	for _, b := range m.keys.ShortHelp() {
		h := b.Help()
		hints = append(hints, h.Key+" "+h.Desc)
	}
	return strings.Join(hints, " | ")
}
