package taskform

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/lipgloss"

	"github.com/nhle/tasklists/internal/model"
	"github.com/nhle/tasklists/internal/theme"
)

// TaskEditedMsg is dispatched when the user submits the edit form. Patch
// carries only the fields the user changed.
type TaskEditedMsg struct {
	ListName string
	ID       int
	Patch    model.TaskPatch
}

// TaskFormCancelMsg is dispatched when the user cancels the form.
type TaskFormCancelMsg struct{}

// formBindings holds form field values on the heap so that huh's Value()
// pointers remain valid across Bubble Tea model copies.
type formBindings struct {
	title     string
	completed bool
}

// Model is the Bubble Tea model for the task edit form.
type Model struct {
	form     *huh.Form
	fb       *formBindings
	cancel   key.Binding
	listName string
	original model.Task
	width    int
	height   int
}

// New creates a new task form model.
func New(width, height int) Model {
	return Model{
		fb:     &formBindings{},
		cancel: key.NewBinding(key.WithKeys("esc")),
		width:  width,
		height: height,
	}
}

// StartEdit initializes the form for editing task, which belongs to listName.
func (m *Model) StartEdit(listName string, task model.Task) tea.Cmd {
	m.listName = listName
	m.original = task
	m.fb.title = task.Title
	m.fb.completed = task.Completed
	m.form = m.buildForm()
	return m.form.Init()
}

// Update handles messages for the task form.
func (m Model) Update(msg tea.Msg) (Model, tea.Cmd) {
	if m.form == nil {
		return m, nil
	}

	if msg, ok := msg.(tea.KeyMsg); ok && key.Matches(msg, m.cancel) {
		m.form = nil
		return m, func() tea.Msg { return TaskFormCancelMsg{} }
	}

	mdl, cmd := m.form.Update(msg)
	if f, ok := mdl.(*huh.Form); ok {
		m.form = f
	}

	if m.form.State == huh.StateCompleted {
		submit := m.handleSubmit()
		m.form = nil
		return m, submit
	}
	if m.form.State == huh.StateAborted {
		m.form = nil
		return m, func() tea.Msg { return TaskFormCancelMsg{} }
	}

	return m, cmd
}

// Active reports whether an edit is in progress.
func (m Model) Active() bool {
	return m.form != nil
}

// View renders the task form.
func (m Model) View() string {
	if m.form == nil {
		return ""
	}

	titleStyle := lipgloss.NewStyle().
		Bold(true).
		Foreground(theme.ColorWhite).
		MarginBottom(1)

	heading := fmt.Sprintf("Edit Task #%d in %s", m.original.ID, m.listName)
	content := titleStyle.Render(heading) + "\n" + m.form.View() + "\n" +
		theme.HelpStyle.Render("enter next/submit · esc cancel")

	return lipgloss.NewStyle().
		Padding(1, 2).
		Render(content)
}

// SetSize updates the form dimensions.
func (m *Model) SetSize(width, height int) {
	m.width = width
	m.height = height
	if m.form != nil {
		m.form = m.form.WithWidth(m.formWidth()).WithHeight(m.formHeight())
	}
}

func (m *Model) buildForm() *huh.Form {
	return huh.NewForm(
		huh.NewGroup(
			huh.NewInput().
				Title("Title").
				Placeholder("What needs to be done?").
				CharLimit(200).
				Value(&m.fb.title).
				Validate(validateRequired("Title")),
			huh.NewConfirm().
				Title("Completed").
				Affirmative("Done").
				Negative("Open").
				Value(&m.fb.completed),
		),
	).WithShowHelp(false).WithWidth(m.formWidth()).WithHeight(m.formHeight())
}

// Patch returns the changes between the task being edited and the form's
// current values.
func (m Model) Patch() model.TaskPatch {
	var patch model.TaskPatch
	if title := strings.TrimSpace(m.fb.title); title != m.original.Title {
		patch.Title = model.Set(title)
	}
	if m.fb.completed != m.original.Completed {
		patch.Completed = model.Set(m.fb.completed)
	}
	return patch
}

func (m Model) handleSubmit() tea.Cmd {
	edited := TaskEditedMsg{
		ListName: m.listName,
		ID:       m.original.ID,
		Patch:    m.Patch(),
	}
	return func() tea.Msg { return edited }
}

func (m Model) formWidth() int {
	return min(max(m.width-4, 40), 100)
}

func (m Model) formHeight() int {
	return max(m.height-6, 8)
}

func validateRequired(fieldName string) func(string) error {
	return func(s string) error {
		if strings.TrimSpace(s) == "" {
			return fmt.Errorf("%s is required", fieldName)
		}
		return nil
	}
}
