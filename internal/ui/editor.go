package ui

import (
	"fmt"
	"slices"
	"strconv"
	"strings"
	"time"

	"totwist/internal/app"
	"totwist/internal/dates"
	"totwist/internal/settings"
	"totwist/internal/task"
)

type editorKind int

const (
	editTask editorKind = iota
	editSettings
	editBulk
)

// Task editor field order.
const (
	fieldTitle = iota
	fieldDescription
	fieldPriority
	fieldWhen
	fieldDate
	fieldReminder
	fieldSubtask
)

// fieldEditor is a tab-through list of text fields shown under the task
// list. The task editor also carries the form being built.
type fieldEditor struct {
	kind   editorKind
	form   app.Form
	labels []string
	values []string
	index  int
}

func taskEditor(f app.Form) *fieldEditor {
	due := f.DueDate
	if f.When == task.WhenExactDate && f.ExactDate != nil {
		due = f.ExactDate
	}
	return &fieldEditor{
		kind: editTask,
		form: f,
		labels: []string{
			"título",
			"descripción",
			"prioridad (P1-P4)",
			"cuándo (hoy/mañana/programado/fecha)",
			"fecha (DD/MM/AAAA HH:MM)",
			"recordatorio (DD/MM/AAAA HH:MM)",
			"nueva subtarea",
		},
		values: []string{
			f.Title,
			f.Description,
			string(f.Priority),
			whenInput(f.When),
			formatInput(due),
			formatInput(f.Reminder),
			"",
		},
	}
}

// Settings editor fields before the shortcut ones, which follow in
// settings.Actions order.
const settingsFixedFields = 4

func settingsEditor(s settings.Settings) *fieldEditor {
	e := &fieldEditor{
		kind: editSettings,
		labels: []string{
			"tema (" + strings.Join(settings.ThemeNames(), ", ") + ")",
			fmt.Sprintf("días en próximo (%d-%d)", settings.MinSoonWindow, settings.MaxSoonWindow),
			"detectar fechas (s/n)",
			"inicio de semana (lunes/domingo)",
		},
		values: []string{
			s.Theme,
			strconv.Itoa(s.SoonWindowDays),
			boolToSN(s.SmartParse),
			weekStartInput(s.WeekStart()),
		},
	}
	for _, action := range settings.Actions() {
		e.labels = append(e.labels, "atajo: "+actionLabel(action))
		e.values = append(e.values, s.Shortcuts[action])
	}
	return e
}

func shortcutField(action string) int {
	return settingsFixedFields + slices.Index(settings.Actions(), action)
}

func actionLabel(action string) string {
	switch action {
	case settings.ActionNewTask:
		return "nueva tarea"
	case settings.ActionSearch:
		return "buscar"
	case settings.ActionToggleSidebar:
		return "barra lateral"
	case settings.ActionNext:
		return "siguiente"
	case settings.ActionPrev:
		return "anterior"
	case settings.ActionCycleView:
		return "cambiar vista"
	}
	return action
}

func bulkEditor() *fieldEditor {
	return &fieldEditor{
		kind: editBulk,
		labels: []string{
			"fecha (DD/MM/AAAA HH:MM)",
			"recordatorio (DD/MM/AAAA HH:MM)",
			"prioridad (P1-P4)",
		},
		values: []string{"", "", ""},
	}
}

func (e fieldEditor) currentLabel() string {
	return e.labels[e.index]
}

func (e fieldEditor) currentValue() string {
	return e.values[e.index]
}

func (e *fieldEditor) setCurrentValue(v string) {
	e.values[e.index] = v
}

func (e *fieldEditor) move(delta int) {
	e.index = wrapIndex(e.index+delta, len(e.labels))
}

func (e fieldEditor) last() bool {
	return e.index >= len(e.labels)-1
}

func (e fieldEditor) onSubtaskField() bool {
	return e.kind == editTask && e.index == fieldSubtask
}

// taskForm turns the field values into a form ready to submit.
func (e fieldEditor) taskForm(now time.Time) (app.Form, error) {
	f := e.form
	f.Title = e.values[fieldTitle]
	f.Description = strings.TrimSpace(e.values[fieldDescription])

	p, err := parsePriority(e.values[fieldPriority])
	if err != nil {
		return f, fmt.Errorf("prioridad: %w", err)
	}
	w, err := parseWhen(e.values[fieldWhen])
	if err != nil {
		return f, fmt.Errorf("cuándo: %w", err)
	}
	due, err := dates.ParseInput(e.values[fieldDate], now)
	if err != nil {
		return f, fmt.Errorf("fecha: %w", err)
	}
	rem, err := dates.ParseInput(e.values[fieldReminder], now)
	if err != nil {
		return f, fmt.Errorf("recordatorio: %w", err)
	}

	f.Priority = p
	f.When = w
	f.Reminder = rem
	if w == task.WhenExactDate {
		f.ExactDate, f.DueDate = due, nil
	} else {
		f.ExactDate, f.DueDate = nil, due
	}
	return f, nil
}

// applySettings writes the field values into s.
func (e fieldEditor) applySettings(s *settings.Settings) error {
	theme := strings.ToLower(strings.TrimSpace(e.values[0]))
	if !slices.Contains(settings.ThemeNames(), theme) {
		return fmt.Errorf("tema desconocido %q", theme)
	}
	days, err := strconv.Atoi(strings.TrimSpace(e.values[1]))
	if err != nil {
		return fmt.Errorf("días: %w", err)
	}
	start, err := parseWeekStart(e.values[3])
	if err != nil {
		return err
	}
	shortcuts := make(map[string]string, len(settings.Actions()))
	owner := make(map[string]string)
	for _, action := range settings.Actions() {
		key := strings.TrimSpace(e.values[shortcutField(action)])
		if !settings.ValidKey(key) {
			return fmt.Errorf("atajo %s: %q no es una tecla válida", actionLabel(action), key)
		}
		if other, ok := owner[key]; ok {
			return fmt.Errorf("atajo %s: %q ya se usa para %s", actionLabel(action), key, actionLabel(other))
		}
		owner[key] = action
		shortcuts[action] = key
	}
	s.Theme = theme
	s.SoonWindowDays = days
	s.SmartParse = parseSN(e.values[2])
	s.StartOfWeek = int(start)
	s.Shortcuts = shortcuts
	return nil
}

func (e fieldEditor) bulkPatch(now time.Time) (task.BulkPatch, error) {
	var b task.BulkPatch
	due, err := dates.ParseInput(e.values[0], now)
	if err != nil {
		return b, fmt.Errorf("fecha: %w", err)
	}
	rem, err := dates.ParseInput(e.values[1], now)
	if err != nil {
		return b, fmt.Errorf("recordatorio: %w", err)
	}
	b.DueDate, b.Reminder = due, rem
	if strings.TrimSpace(e.values[2]) != "" {
		if b.Priority, err = parsePriority(e.values[2]); err != nil {
			return b, fmt.Errorf("prioridad: %w", err)
		}
	}
	return b, nil
}

func parsePriority(v string) (task.Priority, error) {
	v = strings.ToUpper(strings.TrimSpace(v))
	if v == "" {
		return task.P4, nil
	}
	if !strings.HasPrefix(v, "P") {
		v = "P" + v
	}
	p := task.Priority(v)
	if !p.Valid() {
		return "", fmt.Errorf("%q is not P1-P4", v)
	}
	return p, nil
}

func parseWhen(v string) (task.When, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "hoy", string(task.WhenToday):
		return task.WhenToday, nil
	case "mañana", "manana", string(task.WhenTomorrow):
		return task.WhenTomorrow, nil
	case "programado", string(task.WhenScheduled):
		return task.WhenScheduled, nil
	case "fecha", string(task.WhenExactDate):
		return task.WhenExactDate, nil
	}
	return "", fmt.Errorf("unknown value %q", v)
}

func whenInput(w task.When) string {
	switch w {
	case task.WhenTomorrow:
		return "mañana"
	case task.WhenScheduled:
		return "programado"
	case task.WhenExactDate:
		return "fecha"
	}
	return "hoy"
}

func formatInput(t *time.Time) string {
	if t == nil {
		return ""
	}
	return t.Format(dates.InputLayout)
}

func parseWeekStart(v string) (time.Weekday, error) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "lunes", "1":
		return time.Monday, nil
	case "domingo", "0":
		return time.Sunday, nil
	}
	return time.Monday, fmt.Errorf("inicio de semana %q: use lunes o domingo", v)
}

func weekStartInput(d time.Weekday) string {
	if d == time.Sunday {
		return "domingo"
	}
	return "lunes"
}

func parseSN(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "s" || v == "si" || v == "sí" || v == "y" || v == "yes" || v == "true" || v == "1"
}

func boolToSN(b bool) string {
	if b {
		return "s"
	}
	return "n"
}

func wrapIndex(idx, n int) int {
	if n <= 0 {
		return 0
	}
	idx %= n
	if idx < 0 {
		idx += n
	}
	return idx
}
