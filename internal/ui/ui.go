package ui

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"

	"totwist/internal/app"
	"totwist/internal/config"
	"totwist/internal/settings"
	"totwist/internal/task"
	"totwist/internal/view"
)

type pending int

const (
	pendingNone pending = iota
	pendingDelete
	pendingSubtask
)

type Model struct {
	state     *app.State
	keys      config.Keymap
	cursor    int
	input     textinput.Model
	editor    *fieldEditor
	pending   pending
	pendingID string
	status    string
	width     int
}

func Run(state *app.State, keys config.Keymap) error {
	program := tea.NewProgram(New(state, keys), tea.WithAltScreen())
	_, err := program.Run()
	return err
}

func New(state *app.State, keys config.Keymap) Model {
	ti := textinput.New()
	ti.CharLimit = 256
	ti.Width = 40

	sc := state.Settings().Shortcuts
	return Model{
		state:  state,
		keys:   keys,
		input:  ti,
		status: fmt.Sprintf("Pulsa '%s' para crear, '%s' para buscar, '%s' para salir.", sc[settings.ActionNewTask], sc[settings.ActionSearch], keys.Quit),
	}
}

func (m Model) Init() tea.Cmd {
	return nil
}

func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		if m.editor != nil {
			return m.updateEditor(msg.String(), msg)
		}
		if m.state.Overlay().Kind() == app.OverlaySearch {
			return m.updateSearch(msg.String(), msg)
		}
		switch m.pending {
		case pendingDelete:
			return m.updateDeleteConfirm(msg.String())
		case pendingSubtask:
			return m.updateSubtaskPick(msg.String())
		}
		return m.updateBrowse(msg.String())
	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.input.Width = max(msg.Width-10, 10)
	}
	return m, nil
}

func (m Model) updateBrowse(key string) (tea.Model, tea.Cmd) {
	if r, ok := routeForKey(key); ok {
		m.state.SetRoute(r)
		m.state.ClearSelection()
		m.cursor = 0
		m.status = r.Label()
		return m, nil
	}
	if action, ok := m.state.Shortcut(key); ok {
		return m.runAction(action)
	}

	items := m.items()
	switch key {
	case m.keys.Quit:
		return m, tea.Quit
	case "down":
		m.cursor = clampCursor(m.cursor+1, len(items))
	case "up":
		m.cursor = clampCursor(m.cursor-1, len(items))
	case m.keys.Toggle:
		t, ok := m.current()
		if !ok {
			return m, nil
		}
		m.state.Tasks().ToggleComplete(t.ID)
		if t.Active() {
			m.status = "Tarea completada"
		} else {
			m.status = "Tarea restaurada"
		}
		m.cursor = clampCursor(m.cursor, len(m.items()))
	case m.keys.Select:
		t, ok := m.current()
		if !ok {
			return m, nil
		}
		m.state.ToggleSelected(t.ID)
		m.status = fmt.Sprintf("%d seleccionadas", len(m.state.Selected()))
	case m.keys.SelectAll:
		ids := make([]string, 0, len(items))
		for _, t := range items {
			ids = append(ids, t.ID)
		}
		m.state.SelectAll(ids)
		m.status = fmt.Sprintf("%d seleccionadas", len(m.state.Selected()))
	case m.keys.ClearSelect:
		m.state.ClearSelection()
		m.status = "Selección limpia"
	case m.keys.Bulk:
		if len(m.state.Selected()) == 0 {
			m.status = "Selecciona tareas con '" + m.keys.Select + "' primero"
			return m, nil
		}
		return m.openEditor(bulkEditor(), "Cambios en bloque")
	case m.keys.Edit, m.keys.Confirm:
		t, ok := m.current()
		if !ok {
			m.status = "No hay tareas que editar"
			return m, nil
		}
		m.state.OpenOverlay(app.EditOverlay(t.ID))
		return m.openEditor(taskEditor(m.state.FormFor(m.state.Overlay())), "Editar tarea")
	case m.keys.Delete:
		if m.state.Route() != view.RouteTrash {
			m.status = "Solo se borran tareas desde Eliminadas"
			return m, nil
		}
		n, id := m.targets()
		if n == 0 {
			return m, nil
		}
		m.pending, m.pendingID = pendingDelete, id
		m.status = fmt.Sprintf("¿Eliminar definitivamente %d tarea(s)? y/n", n)
	case m.keys.Restore:
		if m.state.Route() != view.RouteTrash {
			return m, nil
		}
		n, id := m.targets()
		if n == 0 {
			return m, nil
		}
		m.selectIfNone(id)
		m.status = fmt.Sprintf("%d restauradas", m.state.RestoreSelected())
		m.cursor = clampCursor(m.cursor, len(m.items()))
	case m.keys.Subtask:
		t, ok := m.current()
		if !ok {
			return m, nil
		}
		if len(t.Subtasks) == 0 {
			m.status = "Sin subtareas"
			return m, nil
		}
		m.pending, m.pendingID = pendingSubtask, t.ID
		m.status = fmt.Sprintf("¿Qué subtarea? 1-%d", len(t.Subtasks))
	case m.keys.PriorityUp, m.keys.PriorityDown:
		t, ok := m.current()
		if !ok {
			return m, nil
		}
		delta := 1
		if key == m.keys.PriorityDown {
			delta = -1
		}
		next := shiftPriority(t.Priority, delta)
		if len(m.state.Selected()) > 0 {
			n := m.state.ApplyBulk(task.BulkPatch{Priority: next})
			m.status = fmt.Sprintf("Prioridad %s en %d tareas", next, n)
			return m, nil
		}
		m.state.Tasks().Update(t.ID, task.Patch{Priority: &next})
		m.status = "Prioridad " + string(next)
		m.follow(t.ID)
	case m.keys.Settings:
		m.state.OpenOverlay(app.SettingsOverlay())
		return m.openEditor(settingsEditor(m.state.Settings()), "Ajustes")
	case m.keys.CalendarMode:
		if m.state.Route() != view.RouteCalendar {
			return m, nil
		}
		m.state.SetCalendarMode(m.state.CalendarMode().Next())
		m.cursor = 0
	case m.keys.CalendarPrev, m.keys.CalendarNext:
		if !m.calendarShown() {
			return m, nil
		}
		steps := 1
		if key == m.keys.CalendarPrev {
			steps = -1
		}
		m.state.ShiftCalendar(steps)
		m.cursor = 0
	}
	return m, nil
}

func (m Model) runAction(action string) (tea.Model, tea.Cmd) {
	switch action {
	case settings.ActionNewTask:
		return m.openEditor(taskEditor(app.NewForm()), "Nueva tarea")
	case settings.ActionSearch:
		m.input.SetValue(m.state.Query())
		m.input.Placeholder = "buscar"
		m.input.CursorEnd()
		m.status = "Buscar: enter para aplicar, esc para limpiar"
		return m, m.input.Focus()
	case settings.ActionNext:
		m.cursor = clampCursor(m.cursor+1, len(m.items()))
	case settings.ActionPrev:
		m.cursor = clampCursor(m.cursor-1, len(m.items()))
	case settings.ActionCycleView:
		m.cursor = 0
		m.status = "Vista: " + modeLabel(m.state.Mode())
	}
	return m, nil
}

func (m Model) updateSearch(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch key {
	case m.keys.Cancel, "esc":
		m.state.SetQuery("")
		m.state.CloseOverlay()
		m.input.SetValue("")
		m.input.Blur()
		m.cursor = 0
		m.status = "Búsqueda borrada"
		return m, nil
	case m.keys.Confirm, "enter":
		m.state.CloseOverlay()
		m.input.Blur()
		m.status = fmt.Sprintf("%d resultados para %q", len(m.items()), m.state.Query())
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		m.state.SetQuery(m.input.Value())
		m.cursor = clampCursor(m.cursor, len(m.items()))
		return m, cmd
	}
}

func (m Model) updateDeleteConfirm(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "n", "N", "esc":
		m.status = "Borrado cancelado"
		m.pending, m.pendingID = pendingNone, ""
		return m, nil
	case "y", "Y":
		m.selectIfNone(m.pendingID)
		n := m.state.DeleteSelected()
		m.pending, m.pendingID = pendingNone, ""
		m.cursor = clampCursor(m.cursor, len(m.items()))
		m.status = fmt.Sprintf("%d eliminadas", n)
		return m, nil
	default:
		return m, nil
	}
}

func (m Model) updateSubtaskPick(key string) (tea.Model, tea.Cmd) {
	id := m.pendingID
	m.pending, m.pendingID = pendingNone, ""
	t, ok := m.state.Tasks().Get(id)
	if !ok {
		return m, nil
	}
	n, err := strconv.Atoi(key)
	if err != nil || n < 1 || n > len(t.Subtasks) {
		m.status = "Cancelado"
		return m, nil
	}
	sub := t.Subtasks[n-1]
	m.state.Tasks().ToggleSubtask(t.ID, sub.ID)
	m.status = "Subtarea actualizada: " + sub.Title
	return m, nil
}

func (m Model) openEditor(e *fieldEditor, title string) (tea.Model, tea.Cmd) {
	m.editor = e
	m.input.SetValue(e.currentValue())
	m.input.Placeholder = e.currentLabel()
	m.input.CursorEnd()
	m.status = title + ": tab para moverse, enter para guardar/siguiente, esc para cancelar"
	return m, m.input.Focus()
}

func (m *Model) closeEditor(status string) {
	if m.editor != nil && m.editor.kind != editBulk {
		m.state.CloseOverlay()
	}
	m.editor = nil
	m.input.SetValue("")
	m.input.Blur()
	m.status = status
}

func (m Model) updateEditor(key string, msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	e := m.editor
	switch key {
	case m.keys.Cancel, "esc":
		m.closeEditor("Edición cancelada")
		return m, nil
	case "tab", "down":
		e.setCurrentValue(m.input.Value())
		e.move(1)
		m.syncInput()
		return m, nil
	case "shift+tab", "up":
		e.setCurrentValue(m.input.Value())
		e.move(-1)
		m.syncInput()
		return m, nil
	case "ctrl+d":
		if e.kind == editTask && len(e.form.Subtasks) > 0 {
			e.form.RemoveSubtask(e.form.Subtasks[0].ID)
			m.status = "Subtarea quitada"
		}
		return m, nil
	case m.keys.Confirm, "enter":
		e.setCurrentValue(m.input.Value())
		if e.onSubtaskField() && strings.TrimSpace(e.currentValue()) != "" {
			e.form.AddSubtask(m.state.NewSubtaskID(), e.currentValue())
			e.setCurrentValue("")
			m.input.SetValue("")
			m.status = "Subtarea añadida"
			return m, nil
		}
		if e.last() {
			return m.saveEditor()
		}
		e.move(1)
		m.syncInput()
		return m, nil
	default:
		var cmd tea.Cmd
		m.input, cmd = m.input.Update(msg)
		return m, cmd
	}
}

func (m *Model) syncInput() {
	m.input.SetValue(m.editor.currentValue())
	m.input.Placeholder = m.editor.currentLabel()
	m.input.CursorEnd()
	m.status = m.editorPrompt()
}

func (m Model) saveEditor() (tea.Model, tea.Cmd) {
	e := m.editor
	now := m.state.Now()
	switch e.kind {
	case editTask:
		f, err := e.taskForm(now)
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		t, err := m.state.Submit(f)
		if errors.Is(err, app.ErrEmptyTitle) {
			m.status = "El título no puede estar vacío"
			return m, nil
		}
		m.closeEditor("Tarea guardada")
		m.follow(t.ID)
	case editSettings:
		s := m.state.Settings()
		if err := e.applySettings(&s); err != nil {
			m.status = err.Error()
			return m, nil
		}
		m.state.UpdateSettings(func(next *settings.Settings) {
			next.Theme = s.Theme
			next.SoonWindowDays = s.SoonWindowDays
			next.SmartParse = s.SmartParse
			next.StartOfWeek = s.StartOfWeek
			next.Shortcuts = s.Shortcuts
		})
		m.closeEditor("Ajustes guardados")
	case editBulk:
		p, err := e.bulkPatch(now)
		if err != nil {
			m.status = err.Error()
			return m, nil
		}
		if p.Empty() {
			m.closeEditor("Nada que aplicar")
			return m, nil
		}
		n := m.state.ApplyBulk(p)
		m.closeEditor(fmt.Sprintf("Cambios aplicados a %d tareas", n))
	}
	return m, nil
}

func (m Model) editorPrompt() string {
	if m.editor == nil {
		return ""
	}
	return fmt.Sprintf("Editando %s (campo %d de %d). Enter para avanzar, esc para cancelar.",
		m.editor.currentLabel(), m.editor.index+1, len(m.editor.labels))
}

// items is the flat list the cursor walks, in render order.
func (m Model) items() []task.Task {
	var out []task.Task
	if m.calendarShown() {
		for _, row := range m.state.CalendarCells() {
			for _, c := range row {
				out = append(out, c.Tasks...)
			}
		}
		return out
	}
	for _, g := range m.state.Visible() {
		out = append(out, g.Tasks...)
	}
	return out
}

func (m Model) current() (task.Task, bool) {
	items := m.items()
	if len(items) == 0 {
		return task.Task{}, false
	}
	return items[clampCursor(m.cursor, len(items))], true
}

// targets returns how many tasks a bulk-capable action touches and, when
// nothing is selected, the task under the cursor.
func (m Model) targets() (int, string) {
	if sel := m.state.Selected(); len(sel) > 0 {
		return len(sel), ""
	}
	t, ok := m.current()
	if !ok {
		return 0, ""
	}
	return 1, t.ID
}

func (m Model) selectIfNone(id string) {
	if id != "" && len(m.state.Selected()) == 0 {
		m.state.ToggleSelected(id)
	}
}

// follow moves the cursor onto id if it is still visible.
func (m *Model) follow(id string) {
	for i, t := range m.items() {
		if t.ID == id {
			m.cursor = i
			return
		}
	}
	m.cursor = clampCursor(m.cursor, len(m.items()))
}

func (m Model) calendarShown() bool {
	return m.state.Route() == view.RouteCalendar || m.state.Mode() == view.ModeCalendar
}

func routeForKey(key string) (view.Route, bool) {
	n, err := strconv.Atoi(key)
	if err != nil || n < 1 || n > len(view.Routes) {
		return "", false
	}
	return view.Routes[n-1], true
}

// shiftPriority moves p by delta levels, positive towards P1.
func shiftPriority(p task.Priority, delta int) task.Priority {
	lvl := p.Level() - delta
	lvl = max(1, min(lvl, len(task.Priorities)))
	return task.Priorities[lvl-1]
}

func clampCursor(cur, n int) int {
	if n <= 0 {
		return 0
	}
	if cur < 0 {
		return 0
	}
	if cur >= n {
		return n - 1
	}
	return cur
}
