package tasklist

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/nhle/tasklists/internal/model"
	"github.com/nhle/tasklists/internal/theme"
)

// dateLayout is day-month hour:minute, e.g. "3-11 09:05".
const dateLayout = "2-1 15:04"

// TaskItem wraps a model.Task so it can be used in a bubbles/list.
type TaskItem struct {
	Task model.Task
}

// FilterValue returns the string used for fuzzy filtering.
func (i TaskItem) FilterValue() string { return i.Task.Title }

// Title returns the task title for the list.
func (i TaskItem) Title() string { return i.Task.Title }

// Description returns a short summary line for the list.
func (i TaskItem) Description() string {
	return strings.Join(taskDates(i.Task), " | ")
}

// ItemDelegate implements list.ItemDelegate for rendering task rows.
type ItemDelegate struct{}

// Height returns the number of lines each item takes.
func (d ItemDelegate) Height() int { return 1 }

// Spacing returns the number of blank lines between items.
func (d ItemDelegate) Spacing() int { return 0 }

// Update handles per-item messages (unused).
func (d ItemDelegate) Update(_ tea.Msg, _ *list.Model) tea.Cmd {
	return nil
}

// Render draws a single task line.
func (d ItemDelegate) Render(w io.Writer, m list.Model, index int, item list.Item) {
	ti, ok := item.(TaskItem)
	if !ok {
		return
	}
	task := ti.Task

	check := "☐"
	if task.Completed {
		check = "☑"
	}
	checkBadge := theme.CheckStyle(task.Completed).Render(check)

	title := task.Title
	if task.Completed {
		title = theme.DimmedStyle.Render(title)
	}

	dates := theme.TimestampStyle.Render(strings.Join(taskDates(task), " · "))

	line := fmt.Sprintf("%s %s  %s", checkBadge, title, dates)

	if index == m.Index() {
		line = theme.SelectedItemStyle.Render(line)
	} else {
		line = theme.ListItemStyle.Render(line)
	}

	fmt.Fprint(w, line)
}

// taskDates returns the creation, completion and edit annotations shown
// next to a task.
func taskDates(t model.Task) []string {
	var parts []string
	if !t.CreatedAt.IsZero() {
		parts = append(parts, "added "+t.CreatedAt.Local().Format(dateLayout))
	}
	if t.Completed && t.CompletedAt != nil {
		parts = append(parts, "done "+t.CompletedAt.Local().Format(dateLayout))
	}
	if t.UpdatedAt != nil {
		parts = append(parts, "edited "+relativeTime(*t.UpdatedAt))
	}
	return parts
}

// relativeTime returns a human-friendly relative time string.
func relativeTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}

	d := time.Since(t)
	switch {
	case d < time.Minute:
		return "just now"
	case d < time.Hour:
		mins := int(d.Minutes())
		if mins == 1 {
			return "1m ago"
		}
		return fmt.Sprintf("%dm ago", mins)
	case d < 24*time.Hour:
		hrs := int(d.Hours())
		if hrs == 1 {
			return "1h ago"
		}
		return fmt.Sprintf("%dh ago", hrs)
	case d < 7*24*time.Hour:
		days := int(d.Hours() / 24)
		if days == 1 {
			return "1d ago"
		}
		return fmt.Sprintf("%dd ago", days)
	default:
		weeks := int(d.Hours() / 24 / 7)
		if weeks == 1 {
			return "1w ago"
		}
		return fmt.Sprintf("%dw ago", weeks)
	}
}
