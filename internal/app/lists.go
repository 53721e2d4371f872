package app

import (
	"context"
	"errors"
	"fmt"
	"log"
	"slices"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/tasklists/internal/tasks"
	"github.com/nhle/tasklists/internal/ui/command"
	"github.com/nhle/tasklists/internal/ui/taskform"
	"github.com/nhle/tasklists/internal/ui/tasklist"
)

// newPane binds a fresh task store for name and wraps it in a pane.
func (m Model) newPane(ctx context.Context, name string) tasklist.Model {
	s := tasks.New(ctx, name, m.backend, m.channel)
	return tasklist.New(s, m.keys, m.display.ShowCompleted, 80, 24)
}

// focusedPane returns the pane receiving key input, or nil when no list
// is open.
func (m *Model) focusedPane() *tasklist.Model {
	if m.focus < 0 || m.focus >= len(m.panes) {
		return nil
	}
	return &m.panes[m.focus]
}

// setFocus moves key input to pane i, wrapping around at either end.
func (m *Model) setFocus(i int) {
	n := len(m.panes)
	if n == 0 {
		m.focus = 0
		return
	}
	m.focus = ((i % n) + n) % n
	for j := range m.panes {
		m.panes[j].SetFocused(j == m.focus)
	}
}

// resize splits the content area between the panes and sizes the
// overlays.
func (m *Model) resize() {
	width := m.layout.ContentWidth()
	height := m.layout.ContentHeight()

	for i, w := range m.layout.PaneWidths(len(m.panes)) {
		m.panes[i].SetSize(w, height)
	}
	m.helpView.SetSize(width, height)
	m.commandView.SetSize(width, height)
	m.formView.SetSize(width, height)
}

// refreshPanes rebuilds every pane whose store changed since it last
// rendered.
func (m *Model) refreshPanes() tea.Cmd {
	cmds := make([]tea.Cmd, 0, len(m.panes))
	for i := range m.panes {
		cmds = append(cmds, m.panes[i].Refresh())
	}
	return tea.Batch(cmds...)
}

// applyEdit writes a submitted edit through a store bound to the edited
// list, preferring the focused pane's.
func (m *Model) applyEdit(msg taskform.TaskEditedMsg) {
	if msg.Patch.IsEmpty() {
		return
	}

	idx := -1
	if p := m.focusedPane(); p != nil && p.ListName() == msg.ListName {
		idx = m.focus
	} else {
		idx = slices.IndexFunc(m.panes, func(p tasklist.Model) bool {
			return p.ListName() == msg.ListName
		})
	}
	if idx < 0 {
		m.errMsg = fmt.Sprintf("list %q is no longer open", msg.ListName)
		return
	}

	if _, err := m.panes[idx].Store().Edit(context.Background(), msg.ID, msg.Patch); err != nil {
		switch {
		case errors.Is(err, tasks.ErrNotFound):
			m.errMsg = fmt.Sprintf("task #%d no longer exists", msg.ID)
		default:
			m.errMsg = err.Error()
		}
	}
}

// executeCommand handles a command line from the command palette.
func (m *Model) executeCommand(cmd command.CommandMsg) tea.Cmd {
	verb, arg := command.Parse(cmd)
	switch verb {
	case "open", "o":
		if arg == "" {
			m.errMsg = "usage: open <name>"
			return nil
		}
		m.openList(arg)
	case "close":
		m.closeList()
	case "lists", "ls":
		m.showLists()
	case "toggle":
		if arg != "completed" {
			m.errMsg = fmt.Sprintf("unknown command %q", string(cmd))
			return nil
		}
		if p := m.focusedPane(); p != nil {
			return p.ToggleShowCompleted()
		}
	case "quit", "q":
		return m.quit()
	case "":
	default:
		m.errMsg = fmt.Sprintf("unknown command %q", string(cmd))
	}
	return nil
}

// openList adds a pane for name to the right and focuses it.
func (m *Model) openList(name string) {
	m.panes = append(m.panes, m.newPane(context.Background(), name))
	m.setFocus(len(m.panes) - 1)
	m.resize()
	m.statusMsg = fmt.Sprintf("opened %s", name)
}

// closeList removes the focused pane and unsubscribes its store. The
// last pane cannot be closed.
func (m *Model) closeList() {
	if len(m.panes) <= 1 {
		m.errMsg = "cannot close the last list"
		return
	}
	closed := m.panes[m.focus]
	closed.Store().Close()

	m.panes = slices.Delete(slices.Clone(m.panes), m.focus, m.focus+1)
	m.setFocus(min(m.focus, len(m.panes)-1))
	m.resize()
	m.statusMsg = fmt.Sprintf("closed %s", closed.ListName())
}

// showLists reports the names of every stored list in the status bar.
func (m *Model) showLists() {
	names, err := tasks.ListNames(context.Background(), m.backend)
	if err != nil {
		log.Printf("app: listing stored lists: %v", err)
		m.errMsg = err.Error()
		return
	}
	if len(names) == 0 {
		m.statusMsg = "no stored lists"
		return
	}
	m.statusMsg = "lists: " + strings.Join(names, ", ")
}

// quit unsubscribes every pane's store and ends the program.
func (m *Model) quit() tea.Cmd {
	for _, p := range m.panes {
		p.Store().Close()
	}
	return tea.Quit
}

// Panes returns the open panes, left to right.
func (m Model) Panes() []tasklist.Model {
	return m.panes
}

// Focus returns the index of the focused pane.
func (m Model) Focus() int {
	return m.focus
}

// CurrentView returns the active view.
func (m Model) CurrentView() ViewState {
	return m.currentView
}

// Err returns the message shown in the error bar, if any.
func (m Model) Err() string {
	return m.errMsg
}

// Status returns the informational status message, if any.
func (m Model) Status() string {
	return m.statusMsg
}
