package ui

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"totwist/internal/app"
	"totwist/internal/config"
	"totwist/internal/settings"
	"totwist/internal/storage"
	"totwist/internal/task"
	"totwist/internal/view"
)

var testNow = time.Date(2026, time.October, 16, 10, 0, 0, 0, time.Local)

func testKeys(t *testing.T) config.Keymap {
	t.Helper()
	cfg, err := config.LoadOrCreate(t.TempDir() + "/config.toml")
	require.NoError(t, err)
	return cfg.Keys
}

func newModel(t *testing.T) (Model, *app.State) {
	t.Helper()
	seq := 0
	state := app.New(context.Background(), storage.NewMemory(),
		app.WithClock(func() time.Time { return testNow }),
		app.WithIDGenerator(func() string {
			seq++
			return fmt.Sprintf("id%d", seq)
		}),
		app.WithLogger(slog.New(slog.NewTextHandler(io.Discard, nil))),
	)
	return New(state, testKeys(t)), state
}

func keyMsg(k string) tea.KeyMsg {
	switch k {
	case "enter":
		return tea.KeyMsg{Type: tea.KeyEnter}
	case "esc":
		return tea.KeyMsg{Type: tea.KeyEsc}
	case "tab":
		return tea.KeyMsg{Type: tea.KeyTab}
	case " ":
		return tea.KeyMsg{Type: tea.KeySpace, Runes: []rune{' '}}
	}
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
}

func press(m Model, keys ...string) Model {
	for _, k := range keys {
		next, _ := m.Update(keyMsg(k))
		m = next.(Model)
	}
	return m
}

func TestAddTaskThroughEditor(t *testing.T) {
	m, state := newModel(t)

	m = press(m, "n")
	require.NotNil(t, m.editor)
	assert.Equal(t, app.OverlayAdd, state.Overlay().Kind())

	m = press(m, "Comprar pan", "tab", "tab")
	m.input.SetValue("")
	m = press(m, "P1", "tab", "tab", "tab", "tab")
	m = press(m, "harina", "enter")
	assert.Equal(t, fieldSubtask, m.editor.index)
	require.Len(t, m.editor.form.Subtasks, 1)

	m = press(m, "enter")
	assert.Nil(t, m.editor)
	assert.False(t, state.Overlay().Open())

	require.Equal(t, 1, state.Tasks().Len())
	got := state.Tasks().Tasks()[0]
	assert.Equal(t, "Comprar pan", got.Title)
	assert.Equal(t, task.P1, got.Priority)
	assert.Equal(t, []task.Subtask{{ID: "id1", Title: "harina"}}, got.Subtasks)
	assert.Equal(t, "Tarea guardada", m.status)
}

func TestEditorRejectsEmptyTitle(t *testing.T) {
	m, state := newModel(t)
	m = press(m, "n")
	m.editor.index = fieldSubtask
	m = press(m, "enter")

	assert.NotNil(t, m.editor)
	assert.Equal(t, "El título no puede estar vacío", m.status)
	assert.Zero(t, state.Tasks().Len())
}

func TestEditorReportsBadDate(t *testing.T) {
	m, state := newModel(t)
	m = press(m, "n", "Cita", "tab", "tab", "tab", "tab")
	require.Equal(t, fieldDate, m.editor.index)
	m = press(m, "pasado mañana", "tab", "tab", "enter")

	assert.NotNil(t, m.editor)
	assert.Contains(t, m.status, "fecha")
	assert.Zero(t, state.Tasks().Len())
}

func TestShortcutsIgnoredWhileEditing(t *testing.T) {
	m, state := newModel(t)
	m = press(m, "n", "v")
	assert.Equal(t, view.ModeList, state.Mode())
	assert.Equal(t, "v", m.input.Value())
}

func TestRouteKeysAndToggle(t *testing.T) {
	m, state := newModel(t)
	state.Tasks().Add(task.Input{Title: "Pagar luz"})

	m = press(m, " ")
	assert.Equal(t, 0, view.Count(state.Visible()))

	m = press(m, "4")
	assert.Equal(t, view.RouteTrash, state.Route())
	assert.Equal(t, 1, view.Count(state.Visible()))

	press(m, "r")
	assert.Equal(t, 0, view.Count(state.Visible()))
}

func TestDeleteNeedsConfirmation(t *testing.T) {
	m, state := newModel(t)
	a := state.Tasks().Add(task.Input{Title: "a"})
	state.Tasks().ToggleComplete(a.ID)

	m = press(m, "d")
	assert.Equal(t, 1, state.Tasks().Len(), "delete outside trash")

	m = press(m, "4", "d")
	assert.Equal(t, pendingDelete, m.pending)
	m = press(m, "n")
	assert.Equal(t, 1, state.Tasks().Len())

	m = press(m, "d", "y")
	assert.Zero(t, state.Tasks().Len())
	assert.Equal(t, pendingNone, m.pending)
	assert.Empty(t, state.Selected())
}

func TestSearchFiltersLive(t *testing.T) {
	m, state := newModel(t)
	state.Tasks().Add(task.Input{Title: "Pagar luz"})
	state.Tasks().Add(task.Input{Title: "Leer"})

	m = press(m, "/", "luz")
	assert.Equal(t, "luz", state.Query())
	assert.Len(t, m.items(), 1)

	m = press(m, "enter")
	assert.False(t, state.Overlay().Open())
	assert.Equal(t, "luz", state.Query())

	m = press(m, "/", "esc")
	assert.Empty(t, state.Query())
	assert.Len(t, m.items(), 2)
}

func TestPriorityKeysAndBulk(t *testing.T) {
	m, state := newModel(t)
	a := state.Tasks().Add(task.Input{Title: "a", Priority: task.P3})
	b := state.Tasks().Add(task.Input{Title: "b", Priority: task.P4})

	m = press(m, "+")
	got, _ := state.Tasks().Get(a.ID)
	assert.Equal(t, task.P2, got.Priority)

	m = press(m, "x", "j", "x", "b")
	require.NotNil(t, m.editor)
	m.editor.index = 2
	m = press(m, "P1", "enter")
	assert.Nil(t, m.editor)

	for _, id := range []string{a.ID, b.ID} {
		got, _ := state.Tasks().Get(id)
		assert.Equal(t, task.P1, got.Priority)
	}
}

func TestRouteDigitsCannotBeRebound(t *testing.T) {
	m, state := newModel(t)
	state.UpdateSettings(func(s *settings.Settings) { s.Shortcuts[settings.ActionNewTask] = "4" })
	assert.Equal(t, "n", state.Settings().Shortcuts[settings.ActionNewTask])

	m = press(m, "4")
	assert.Nil(t, m.editor)
	assert.Equal(t, view.RouteTrash, state.Route())
}

func TestSelectAllAndClear(t *testing.T) {
	m, state := newModel(t)
	a := state.Tasks().Add(task.Input{Title: "a"})
	b := state.Tasks().Add(task.Input{Title: "b"})
	state.Tasks().Add(task.Input{Title: "mañana", When: task.WhenTomorrow})

	m = press(m, "A")
	assert.ElementsMatch(t, []string{a.ID, b.ID}, state.Selected())
	assert.Equal(t, "2 seleccionadas", m.status)

	m = press(m, "c")
	assert.Empty(t, state.Selected())
	assert.Equal(t, "Selección limpia", m.status)
}

func TestSubtaskPick(t *testing.T) {
	m, state := newModel(t)
	tk := state.Tasks().Add(task.Input{Title: "a", Subtasks: []task.Subtask{{ID: "s1", Title: "uno"}, {ID: "s2", Title: "dos"}}})

	m = press(m, "s", "2")
	got, _ := state.Tasks().Get(tk.ID)
	assert.False(t, got.Subtasks[0].Completed)
	assert.True(t, got.Subtasks[1].Completed)

	m = press(m, "s", "9")
	assert.Equal(t, "Cancelado", m.status)
}

func TestSettingsEditor(t *testing.T) {
	m, state := newModel(t)
	m = press(m, ",")
	require.NotNil(t, m.editor)
	assert.Equal(t, app.OverlaySettings, state.Overlay().Kind())

	m.input.SetValue("")
	m = press(m, "mandarina", "tab")
	m.input.SetValue("")
	m = press(m, "200")
	for m.editor.index != shortcutField(settings.ActionNewTask) {
		m = press(m, "enter")
	}
	assert.Equal(t, "n", m.input.Value())
	m.input.SetValue("")
	m = press(m, "a")
	for m.editor != nil && !m.editor.last() {
		m = press(m, "enter")
	}
	m = press(m, "enter")

	assert.Nil(t, m.editor)
	s := state.Settings()
	assert.Equal(t, "mandarina", s.Theme)
	assert.Equal(t, settings.MaxSoonWindow, s.SoonWindowDays)
	assert.Equal(t, "a", s.Shortcuts[settings.ActionNewTask])
	assert.Equal(t, "/", s.Shortcuts[settings.ActionSearch])

	m = press(m, "n")
	assert.Nil(t, m.editor)
	m = press(m, "a")
	require.NotNil(t, m.editor)
	assert.Equal(t, app.OverlayAdd, state.Overlay().Kind())
}

func TestSettingsEditorRejectsBadShortcut(t *testing.T) {
	m, state := newModel(t)
	m = press(m, ",")
	m.editor.values[shortcutField(settings.ActionSearch)] = "j"
	m.editor.index = len(m.editor.labels) - 1
	m.input.SetValue(m.editor.currentValue())
	m = press(m, "enter")

	assert.NotNil(t, m.editor)
	assert.Contains(t, m.status, "ya se usa")
	assert.Equal(t, "/", state.Settings().Shortcuts[settings.ActionSearch])

	m.editor.values[shortcutField(settings.ActionSearch)] = "7"
	m = press(m, "enter")
	assert.NotNil(t, m.editor)
	assert.Contains(t, m.status, "no es una tecla válida")
}

func TestCalendarNavigation(t *testing.T) {
	m, state := newModel(t)
	state.Tasks().Add(task.Input{Title: "Cita 20 de octubre"})

	m = press(m, "5")
	assert.Len(t, m.items(), 1)

	m = press(m, "m")
	assert.Equal(t, view.CalendarWeek, state.CalendarMode())
	assert.Empty(t, m.items())

	press(m, "]")
	assert.Len(t, m.items(), 1)
}

func TestViewRendersWithoutPanicking(t *testing.T) {
	m, state := newModel(t)
	state.Tasks().Add(task.Input{Title: "Pagar luz", Subtasks: []task.Subtask{{ID: "s", Title: "ver"}}})

	for _, k := range []string{"", "v", "v", "5", "m", "m"} {
		if k != "" {
			m = press(m, k)
		}
		out := m.View()
		assert.Contains(t, out, "to-twist")
	}
	m = press(m, "1", "n")
	assert.Contains(t, m.View(), "Campo: título")
}

func TestWhenBadge(t *testing.T) {
	due := time.Date(2026, time.July, 14, 9, 0, 0, 0, time.Local)
	assert.Equal(t, "Hoy", whenBadge(task.Task{When: task.WhenToday, DueDate: &due}))
	assert.Equal(t, "Mañana", whenBadge(task.Task{When: task.WhenTomorrow}))
	assert.Equal(t, "14 de julio", whenBadge(task.Task{When: task.WhenScheduled, DueDate: &due}))
	assert.Empty(t, whenBadge(task.Task{When: task.WhenScheduled}))

	m, state := newModel(t)
	state.Tasks().Add(task.Input{Title: "Pagar luz"})
	assert.Contains(t, m.renderTaskLine(newStyles(state.Settings().Palette()), state.Tasks().Tasks()[0], 0), "Hoy")
}

func TestHelpers(t *testing.T) {
	assert.Equal(t, task.P1, shiftPriority(task.P1, 1))
	assert.Equal(t, task.P4, shiftPriority(task.P3, -1))
	assert.Equal(t, 0, clampCursor(5, 0))
	assert.Equal(t, 2, clampCursor(5, 3))
	assert.Equal(t, 2, wrapIndex(-1, 3))

	p, err := parsePriority("2")
	require.NoError(t, err)
	assert.Equal(t, task.P2, p)
	_, err = parsePriority("P7")
	assert.Error(t, err)

	w, err := parseWhen("Mañana")
	require.NoError(t, err)
	assert.Equal(t, task.WhenTomorrow, w)
}
