package ui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"totwist/internal/config"
	"totwist/internal/dates"
	"totwist/internal/settings"
	"totwist/internal/task"
	"totwist/internal/view"
)

const (
	sidebarWidth = 22
	minColumn    = 20
)

func (m Model) View() string {
	st := newStyles(m.state.Settings().Palette())
	var b strings.Builder

	b.WriteString(st.title.Render("to-twist"))
	b.WriteString("  ")
	b.WriteString(st.muted.Render(m.state.Route().Label() + " · " + modeLabel(m.state.Mode())))
	if q := m.state.Query(); q != "" {
		b.WriteString(st.muted.Render(fmt.Sprintf(" · búsqueda %q", q)))
	}
	b.WriteString("\n\n")

	body := m.renderBody(st)
	if m.state.Settings().SidebarOpen {
		body = lipgloss.JoinHorizontal(lipgloss.Top, m.renderSidebar(st), body)
	}
	b.WriteString(body)
	b.WriteString("\n---\n")

	switch {
	case m.editor != nil:
		b.WriteString(m.renderEditorBox(st))
		b.WriteString("\n")
		b.WriteString("Campo: " + m.editor.currentLabel())
		b.WriteString("\n")
		b.WriteString(m.input.View())
	case m.input.Focused():
		b.WriteString("Buscar: ")
		b.WriteString(m.input.View())
	default:
		b.WriteString(m.renderDetail())
	}

	b.WriteString("\n\n")
	b.WriteString(m.status)
	b.WriteString("\n")
	b.WriteString(st.muted.Render(renderHelp(m.keys, m.state.Settings().Shortcuts)))
	return b.String()
}

func renderHelp(k config.Keymap, sc map[string]string) string {
	return fmt.Sprintf("1-5 vistas • %s/%s mover • %s nueva • %s buscar • %s editar • %s completar • %s seleccionar • %s todas • %s limpiar • %s en bloque • %s/%s prioridad • %s subtarea • %s restaurar • %s borrar • %s cambiar vista • %s/%s calendario • %s ajustes • %s salir",
		sc[settings.ActionPrev], sc[settings.ActionNext], sc[settings.ActionNewTask], sc[settings.ActionSearch],
		k.Edit, spaceName(k.Toggle), k.Select, k.SelectAll, k.ClearSelect, k.Bulk, k.PriorityUp, k.PriorityDown, k.Subtask,
		k.Restore, k.Delete, sc[settings.ActionCycleView], k.CalendarPrev, k.CalendarNext, k.Settings, k.Quit)
}

func spaceName(k string) string {
	if k == " " {
		return "espacio"
	}
	return k
}

func (m Model) renderSidebar(st styles) string {
	s := m.state.Settings()
	all := m.state.Tasks().Tasks()
	now := m.state.Now()

	var b strings.Builder
	for i, r := range view.Routes {
		line := fmt.Sprintf("%d %s", i+1, r.Label())
		if r != view.RouteCalendar {
			line += fmt.Sprintf(" (%d)", len(view.Filter(all, r, "", s.SoonWindowDays, now)))
		}
		if r == m.state.Route() {
			line = st.active.Render("> " + line)
		} else {
			line = "  " + line
		}
		b.WriteString(line)
		b.WriteString("\n")
	}
	return lipgloss.NewStyle().Width(sidebarWidth).Render(b.String())
}

func (m Model) renderBody(st styles) string {
	switch {
	case m.calendarShown():
		return m.renderCalendar(st)
	case m.state.Mode() == view.ModeBoard:
		return m.renderBoard(st)
	}
	return m.renderList(st)
}

func (m Model) renderList(st styles) string {
	groups := m.state.Visible()
	if view.Count(groups) == 0 {
		return m.emptyMessage()
	}
	var b strings.Builder
	idx := 0
	for _, g := range groups {
		if len(g.Tasks) == 0 {
			continue
		}
		b.WriteString(st.header.Render(g.Title))
		b.WriteString("\n")
		for _, t := range g.Tasks {
			b.WriteString(m.renderTaskLine(st, t, idx))
			b.WriteString("\n")
			idx++
		}
		b.WriteString("\n")
	}
	return b.String()
}

func (m Model) renderBoard(st styles) string {
	groups := m.state.Visible()
	width := m.width
	if m.state.Settings().SidebarOpen {
		width -= sidebarWidth
	}
	colWidth := max(width/max(len(groups), 1)-4, minColumn)

	cols := make([]string, 0, len(groups))
	idx := 0
	for _, g := range groups {
		var b strings.Builder
		b.WriteString(st.header.Render(fmt.Sprintf("%s (%d)", g.Title, len(g.Tasks))))
		for _, t := range g.Tasks {
			b.WriteString("\n")
			b.WriteString(m.renderTaskLine(st, t, idx))
			idx++
		}
		cols = append(cols, st.column.Width(colWidth).Render(b.String()))
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, cols...)
}

func (m Model) calendarMode() view.CalendarMode {
	if m.state.Route() == view.RouteCalendar {
		return m.state.CalendarMode()
	}
	return view.CalendarMonth
}

func (m Model) renderCalendar(st styles) string {
	rows := m.state.CalendarCells()
	mode := m.calendarMode()
	date := m.state.CalendarDate()
	now := m.state.Now()

	var b strings.Builder
	switch mode {
	case view.CalendarMonth:
		b.WriteString(st.header.Render(fmt.Sprintf("%s %d", dates.MonthName(date.Month()), date.Year())))
		b.WriteString("\n")
		b.WriteString(renderMonthGrid(st, rows, now))
	case view.CalendarWeek:
		start := dates.StartOfWeek(date, time.Monday)
		b.WriteString(st.header.Render("Semana del " + dates.FormatDateOnly(start)))
		b.WriteString("\n")
		b.WriteString(renderWeekStrip(st, rows, now))
	case view.CalendarDay:
		b.WriteString(st.header.Render(dates.FormatDateOnly(date)))
		b.WriteString("\n")
	}
	b.WriteString("\n")

	idx := 0
	for _, row := range rows {
		for _, c := range row {
			for _, t := range c.Tasks {
				b.WriteString(m.renderTaskLine(st, t, idx))
				b.WriteString("\n")
				idx++
			}
		}
	}
	if idx == 0 {
		b.WriteString(st.muted.Render("Sin tareas con fecha en este periodo"))
		b.WriteString("\n")
	}
	return b.String()
}

func renderMonthGrid(st styles, rows [][]view.Cell, now time.Time) string {
	var b strings.Builder
	for _, l := range dates.WeekdayLabels {
		b.WriteString(fmt.Sprintf("%-5s", l))
	}
	b.WriteString("\n")
	for _, row := range rows {
		for _, c := range row {
			b.WriteString(renderDayCell(st, c, now))
		}
		b.WriteString("\n")
	}
	return b.String()
}

func renderDayCell(st styles, c view.Cell, now time.Time) string {
	if c.Blank() {
		return "     "
	}
	mark := " "
	if len(c.Tasks) > 0 {
		mark = "•"
	}
	day := fmt.Sprintf("%2d", c.Date.Day())
	if dates.SameDay(now, *c.Date) {
		day = st.today.Render(day)
	}
	return " " + day + mark + " "
}

func renderWeekStrip(st styles, rows [][]view.Cell, now time.Time) string {
	if len(rows) == 0 {
		return ""
	}
	var b strings.Builder
	for i, c := range rows[0] {
		label := fmt.Sprintf("%s %2d (%d)", dates.WeekdayLabels[i%7], c.Date.Day(), len(c.Tasks))
		if dates.SameDay(now, *c.Date) {
			label = st.today.Render(label)
		}
		b.WriteString(label)
		b.WriteString("  ")
	}
	b.WriteString("\n")
	return b.String()
}

func (m Model) renderTaskLine(st styles, t task.Task, idx int) string {
	cursor := " "
	if idx == m.cursor {
		cursor = ">"
	}
	sel := " "
	if m.state.IsSelected(t.ID) {
		sel = "*"
	}
	checkbox := "[ ]"
	if !t.Active() {
		checkbox = "[x]"
	}

	body := fmt.Sprintf("%s%s %s ", cursor, sel, checkbox)
	if badge := whenBadge(t); badge != "" {
		body += st.badge.Render(badge) + " "
	}
	body += st.priority[t.Priority].Render(string(t.Priority)) + " " + t.Title
	if t.DueDate != nil {
		body += " · " + m.formatTime(*t.DueDate)
	}
	if done, total := t.SubtaskProgress(); total > 0 {
		body += fmt.Sprintf(" · %d/%d", done, total)
	}
	if idx == m.cursor {
		return st.cursor.Render(body)
	}
	return body
}

// whenBadge names the day a task belongs to: Hoy, Mañana or its due date.
func whenBadge(t task.Task) string {
	switch {
	case t.When == task.WhenToday, t.When == task.WhenTomorrow:
		return t.When.Label()
	case t.DueDate != nil:
		return dates.FormatDateOnly(*t.DueDate)
	}
	return ""
}

func (m Model) emptyMessage() string {
	if m.state.Route() == view.RouteTrash {
		return "La papelera está vacía."
	}
	return fmt.Sprintf("No hay tareas. Pulsa '%s' para crear una.", m.state.Settings().Shortcuts[settings.ActionNewTask])
}

func (m Model) renderDetail() string {
	t, ok := m.current()
	if !ok {
		return "Ninguna tarea seleccionada"
	}
	var b strings.Builder
	b.WriteString(fmt.Sprintf("Título       : %s\n", t.Title))
	b.WriteString(fmt.Sprintf("Descripción  : %s\n", emptyPlaceholder(t.Description)))
	b.WriteString(fmt.Sprintf("Prioridad    : %s\n", t.Priority))
	b.WriteString(fmt.Sprintf("Cuándo       : %s\n", t.When.Label()))
	b.WriteString(fmt.Sprintf("Fecha        : %s\n", m.formatOptional(t.DueDate)))
	b.WriteString(fmt.Sprintf("Recordatorio : %s\n", m.formatOptional(t.Reminder)))
	b.WriteString(fmt.Sprintf("Creada       : %s\n", m.formatTime(t.CreatedAt)))
	if t.CompletedAt != nil {
		b.WriteString(fmt.Sprintf("Completada   : %s\n", m.formatTime(*t.CompletedAt)))
	}
	for i, s := range t.Subtasks {
		check := "[ ]"
		if s.Completed {
			check = "[x]"
		}
		b.WriteString(fmt.Sprintf("  %d. %s %s\n", i+1, check, s.Title))
	}
	return b.String()
}

func (m Model) renderEditorBox(st styles) string {
	e := m.editor
	var b strings.Builder
	for i, name := range e.labels {
		prefix := " "
		if i == e.index {
			prefix = ">"
		}
		val := e.values[i]
		if i == e.index {
			val = m.input.Value()
		}
		if strings.TrimSpace(val) == "" {
			val = "(vacío)"
		}
		b.WriteString(fmt.Sprintf("%s %-38s : %s\n", prefix, name, val))
	}
	if e.kind == editTask && len(e.form.Subtasks) > 0 {
		b.WriteString("  subtareas (ctrl+d quita la primera):\n")
		for _, s := range e.form.Subtasks {
			b.WriteString("    - " + s.Title + "\n")
		}
	}
	return st.box.Render(strings.TrimRight(b.String(), "\n"))
}

// formatTime honours the 12/24 hour setting.
func (m Model) formatTime(t time.Time) string {
	if m.state.Settings().TimeFormat == 12 {
		return fmt.Sprintf("%s %s", dates.FormatDateOnly(t), t.Format("3:04 PM"))
	}
	return dates.FormatPretty(t)
}

func (m Model) formatOptional(t *time.Time) string {
	if t == nil {
		return "(sin fecha)"
	}
	return m.formatTime(*t)
}

func modeLabel(md view.Mode) string {
	switch md {
	case view.ModeBoard:
		return "tablero"
	case view.ModeCalendar:
		return "calendario"
	}
	return "lista"
}

func emptyPlaceholder(v string) string {
	if strings.TrimSpace(v) == "" {
		return "(vacío)"
	}
	return v
}
