package tasklist

import (
	"context"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nhle/tasklists/internal/keys"
	"github.com/nhle/tasklists/internal/model"
	appsync "github.com/nhle/tasklists/internal/sync"
	"github.com/nhle/tasklists/internal/tasks"
	"github.com/nhle/tasklists/internal/testutil"
)

func steppingClock() func() time.Time {
	t := time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC)
	return func() time.Time {
		t = t.Add(time.Minute)
		return t
	}
}

func newPane(t *testing.T, backend *testutil.FakeStore, ch *appsync.Channel, name string) Model {
	t.Helper()
	s := tasks.New(context.Background(), name, backend, ch, tasks.WithClock(steppingClock()))
	t.Cleanup(s.Close)
	m := New(s, keys.DefaultKeyMap(), false, 60, 20)
	m.SetFocused(true)
	return m
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func press(m Model, msgs ...tea.KeyMsg) (Model, tea.Cmd) {
	var cmd tea.Cmd
	for _, msg := range msgs {
		m, cmd = m.Update(msg)
	}
	return m, cmd
}

func titles(list []model.Task) []string {
	out := make([]string, len(list))
	for i, t := range list {
		out[i] = t.Title
	}
	return out
}

func TestPane_AddThroughInput(t *testing.T) {
	m := newPane(t, testutil.NewFakeStore(), appsync.NewChannel(), "inbox")

	m, _ = press(m, runes("a"))
	require.True(t, m.Adding())

	m, _ = press(m, runes("Buy milk"), tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, []string{"Buy milk"}, titles(m.VisibleTasks()))
	assert.True(t, m.Adding(), "input stays open for the next task")

	m, _ = press(m, runes("Walk dog"), tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, []string{"Walk dog", "Buy milk"}, titles(m.VisibleTasks()))

	m, _ = press(m, tea.KeyMsg{Type: tea.KeyEsc})
	assert.False(t, m.Adding())
}

func TestPane_BlankInputAddsNothing(t *testing.T) {
	backend := testutil.NewFakeStore()
	m := newPane(t, backend, appsync.NewChannel(), "inbox")

	m, cmd := press(m, runes("a"), runes("   "), tea.KeyMsg{Type: tea.KeyEnter})
	assert.Nil(t, cmd)
	assert.Empty(t, m.VisibleTasks())
	assert.Zero(t, backend.Writes(tasks.Key("inbox")))
}

func TestPane_LettersAreTextWhileAdding(t *testing.T) {
	m := newPane(t, testutil.NewFakeStore(), appsync.NewChannel(), "inbox")

	m, _ = press(m, runes("a"), runes("x"), runes("d"), tea.KeyMsg{Type: tea.KeyEnter})
	assert.Equal(t, []string{"xd"}, titles(m.VisibleTasks()))
}

func TestPane_ToggleHidesCompleted(t *testing.T) {
	ctx := context.Background()
	m := newPane(t, testutil.NewFakeStore(), appsync.NewChannel(), "inbox")

	_, err := m.Store().Add(ctx, "first")
	require.NoError(t, err)
	_, err = m.Store().Add(ctx, "second")
	require.NoError(t, err)
	m.Refresh()

	// Newest is selected first.
	m, _ = press(m, runes("x"))
	assert.Equal(t, []string{"first"}, titles(m.VisibleTasks()))
	assert.Equal(t, 1, m.HiddenCount())
	assert.Contains(t, m.View(), "1 hidden")

	m, _ = press(m, runes("H"))
	assert.True(t, m.ShowCompleted())
	assert.Equal(t, []string{"first", "second"}, titles(m.VisibleTasks()))
	assert.Zero(t, m.HiddenCount())
}

func TestPane_Delete(t *testing.T) {
	ctx := context.Background()
	m := newPane(t, testutil.NewFakeStore(), appsync.NewChannel(), "inbox")

	_, err := m.Store().Add(ctx, "keep")
	require.NoError(t, err)
	_, err = m.Store().Add(ctx, "drop")
	require.NoError(t, err)
	m.Refresh()

	m, _ = press(m, runes("d"))
	assert.Equal(t, []string{"keep"}, titles(m.VisibleTasks()))
	assert.Equal(t, []string{"keep"}, titles(m.Store().Tasks()))
}

func TestPane_EditEmitsMessage(t *testing.T) {
	m := newPane(t, testutil.NewFakeStore(), appsync.NewChannel(), "work")
	_, err := m.Store().Add(context.Background(), "write report")
	require.NoError(t, err)
	m.Refresh()

	_, cmd := press(m, runes("e"))
	require.NotNil(t, cmd)

	msg, ok := cmd().(EditTaskMsg)
	require.True(t, ok)
	assert.Equal(t, "work", msg.ListName)
	assert.Equal(t, "write report", msg.Task.Title)
}

func TestPane_ActionsOnEmptyListAreNoOps(t *testing.T) {
	backend := testutil.NewFakeStore()
	m := newPane(t, backend, appsync.NewChannel(), "inbox")

	for _, k := range []string{"x", "d", "e"} {
		var cmd tea.Cmd
		m, cmd = press(m, runes(k))
		assert.Nil(t, cmd, k)
	}
	assert.Zero(t, backend.Writes(tasks.Key("inbox")))
	assert.Contains(t, m.View(), "No tasks yet!")
}

func TestPane_StoreFailureReportsError(t *testing.T) {
	backend := testutil.NewFakeStore()
	m := newPane(t, backend, appsync.NewChannel(), "inbox")
	_, err := m.Store().Add(context.Background(), "task")
	require.NoError(t, err)
	m.Refresh()

	backend.SetErr = testutil.ErrInjected
	m, cmd := press(m, runes("x"))
	require.NotNil(t, cmd)

	msg, ok := cmd().(ErrorMsg)
	require.True(t, ok)
	assert.ErrorIs(t, msg.Err, testutil.ErrInjected)
	assert.False(t, m.VisibleTasks()[0].Completed)
}

func TestPane_RefreshPicksUpSiblingWrites(t *testing.T) {
	backend := testutil.NewFakeStore()
	ch := appsync.NewChannel()
	left := newPane(t, backend, ch, "inbox")
	right := newPane(t, backend, ch, "inbox")
	other := newPane(t, backend, ch, "work")

	left, _ = press(left, runes("a"), runes("shared"), tea.KeyMsg{Type: tea.KeyEnter})

	right.Refresh()
	other.Refresh()
	assert.Equal(t, []string{"shared"}, titles(right.VisibleTasks()))
	assert.Empty(t, other.VisibleTasks())
	assert.True(t, strings.Contains(right.View(), "shared"))

	right, _ = press(right, runes("x"))
	left.Refresh()
	assert.Empty(t, left.VisibleTasks())
	assert.Equal(t, 1, left.HiddenCount())
}

func TestTaskDates(t *testing.T) {
	created := time.Date(2024, 11, 3, 9, 5, 0, 0, time.Local)
	done := time.Date(2024, 11, 4, 18, 30, 0, 0, time.Local)

	assert.Equal(t, []string{"added 3-11 09:05"}, taskDates(model.Task{CreatedAt: created}))
	assert.Equal(t,
		[]string{"added 3-11 09:05", "done 4-11 18:30", "edited just now"},
		taskDates(model.Task{
			CreatedAt:   created,
			Completed:   true,
			CompletedAt: &done,
			UpdatedAt:   ptr(time.Now()),
		}),
	)
	assert.Empty(t, taskDates(model.Task{}))
}

func ptr[T any](v T) *T { return &v }
