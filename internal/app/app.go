// Package app owns the running session: the task repository, the settings
// record, and what the user is currently looking at.
package app

import (
	"context"
	"errors"
	"log/slog"
	"maps"
	"slices"
	"time"

	"github.com/google/uuid"

	"totwist/internal/settings"
	"totwist/internal/storage"
	"totwist/internal/task"
	"totwist/internal/view"
)

var ErrEmptyTitle = errors.New("title cannot be empty")

// State is the single owner of the session. The presentation layer holds
// the only reference and goes through its methods for every change.
type State struct {
	blobs    storage.Blobs
	repo     *task.Repository
	settings settings.Settings

	route   view.Route
	query   string
	mode    view.Mode
	calMode view.CalendarMode
	calDate time.Time

	overlay  Overlay
	selected map[string]struct{}

	now    func() time.Time
	newID  func() string
	logger *slog.Logger
}

type Option func(*State)

func WithClock(now func() time.Time) Option {
	return func(s *State) { s.now = now }
}

func WithIDGenerator(gen func() string) Option {
	return func(s *State) { s.newID = gen }
}

func WithLogger(l *slog.Logger) Option {
	return func(s *State) { s.logger = l }
}

func WithRoute(r view.Route) Option {
	return func(s *State) { s.route = r }
}

func WithMode(m view.Mode) Option {
	return func(s *State) { s.mode = m }
}

// New loads settings and tasks from blobs and runs the trash purge once.
func New(ctx context.Context, blobs storage.Blobs, opts ...Option) *State {
	s := &State{
		blobs:    blobs,
		route:    view.RouteToday,
		mode:     view.ModeList,
		calMode:  view.CalendarMonth,
		selected: make(map[string]struct{}),
		now:      time.Now,
		newID:    uuid.NewString,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.calDate = s.now()
	s.settings = settings.Load(ctx, blobs, s.logger)
	s.repo = task.Load(ctx, blobs,
		task.WithClock(s.now),
		task.WithIDGenerator(s.newID),
		task.WithLogger(s.logger),
		task.WithSmartParse(s.settings.SmartParse),
	)
	if n := s.repo.PurgeExpiredTrash(); n > 0 {
		s.logger.Debug("startup purge", "removed", n)
	}
	return s
}

func (s *State) Tasks() *task.Repository { return s.repo }

func (s *State) Now() time.Time { return s.now() }

func (s *State) Settings() settings.Settings { return s.settings }

// UpdateSettings applies fn to a copy of the settings, normalizes and
// persists the result.
func (s *State) UpdateSettings(fn func(*settings.Settings)) {
	next := s.settings
	next.Shortcuts = maps.Clone(s.settings.Shortcuts)
	fn(&next)
	s.settings = next.Normalize()
	s.repo.SetSmartParse(s.settings.SmartParse)
	settings.Save(context.Background(), s.blobs, s.settings, s.logger)
}

func (s *State) Route() view.Route { return s.route }

func (s *State) SetRoute(r view.Route) { s.route = r }

func (s *State) Query() string { return s.query }

func (s *State) SetQuery(q string) { s.query = q }

func (s *State) Mode() view.Mode { return s.mode }

func (s *State) CycleMode() view.Mode {
	s.mode = s.mode.Next()
	return s.mode
}

func (s *State) CalendarMode() view.CalendarMode { return s.calMode }

func (s *State) SetCalendarMode(m view.CalendarMode) { s.calMode = m }

func (s *State) CalendarDate() time.Time { return s.calDate }

func (s *State) SetCalendarDate(d time.Time) { s.calDate = d }

// ShiftCalendar moves the calendar by steps of its current granularity.
func (s *State) ShiftCalendar(steps int) {
	s.calDate = s.activeCalendarMode().Shift(s.calDate, steps)
}

func (s *State) activeCalendarMode() view.CalendarMode {
	if s.route == view.RouteCalendar {
		return s.calMode
	}
	return view.CalendarMonth
}

// Visible returns the grouped tasks of the current route and query.
func (s *State) Visible() []view.Group {
	return view.Visible(s.repo.Tasks(), s.route, s.query, s.settings.SoonWindowDays, s.now())
}

// CalendarCells returns the grid for the calendar route, or the month grid
// of the current route's tasks when a list route is shown as a calendar.
// The calendar route only shows active tasks.
func (s *State) CalendarCells() [][]view.Cell {
	tasks := view.Filter(s.repo.Tasks(), s.route, s.query, s.settings.SoonWindowDays, s.now())
	if s.route == view.RouteCalendar {
		tasks = slices.DeleteFunc(slices.Clone(tasks), func(t task.Task) bool { return !t.Active() })
	}
	return view.CalendarCells(tasks, s.activeCalendarMode(), s.calDate)
}

func (s *State) Overlay() Overlay { return s.overlay }

func (s *State) OpenOverlay(o Overlay) { s.overlay = o }

func (s *State) CloseOverlay() { s.overlay = NoOverlay() }

// FormFor returns the editor payload matching the open overlay.
func (s *State) FormFor(o Overlay) Form {
	if id, ok := o.TaskID(); ok {
		if t, found := s.repo.Get(id); found {
			return EditForm(t)
		}
	}
	return NewForm()
}

// Submit saves the form as a new task or as an edit, then closes the
// overlay.
func (s *State) Submit(f Form) (task.Task, error) {
	in := f.input()
	if in.Title == "" {
		return task.Task{}, ErrEmptyTitle
	}
	defer s.CloseOverlay()
	if !f.Editing() {
		return s.repo.Add(in), nil
	}
	s.repo.Update(f.TaskID, f.patch())
	t, _ := s.repo.Get(f.TaskID)
	return t, nil
}

// NewSubtaskID hands out ids for subtasks added in the editor.
func (s *State) NewSubtaskID() string { return s.newID() }

// ToggleSelected flips id in the bulk selection.
func (s *State) ToggleSelected(id string) {
	if _, ok := s.selected[id]; ok {
		delete(s.selected, id)
		return
	}
	s.selected[id] = struct{}{}
}

// SelectAll adds ids to the bulk selection.
func (s *State) SelectAll(ids []string) {
	for _, id := range ids {
		s.selected[id] = struct{}{}
	}
}

func (s *State) IsSelected(id string) bool {
	_, ok := s.selected[id]
	return ok
}

func (s *State) Selected() []string {
	return slices.Sorted(maps.Keys(s.selected))
}

func (s *State) ClearSelection() { clear(s.selected) }

func (s *State) ApplyBulk(p task.BulkPatch) int {
	return s.repo.BulkPatch(s.Selected(), p)
}

func (s *State) RestoreSelected() int {
	n := s.repo.Restore(s.Selected())
	s.ClearSelection()
	return n
}

func (s *State) DeleteSelected() int {
	n := s.repo.DeletePermanently(s.Selected())
	s.ClearSelection()
	return n
}

// Shortcut runs the action bound to key. Shortcuts are ignored while an
// overlay is open. Navigation actions are returned for the caller to handle.
func (s *State) Shortcut(key string) (string, bool) {
	if s.overlay.Open() {
		return "", false
	}
	action, ok := s.settings.ActionFor(key)
	if !ok {
		return "", false
	}
	switch action {
	case settings.ActionNewTask:
		s.OpenOverlay(AddOverlay())
	case settings.ActionSearch:
		s.OpenOverlay(SearchOverlay())
	case settings.ActionToggleSidebar:
		s.UpdateSettings(func(st *settings.Settings) { st.SidebarOpen = !st.SidebarOpen })
	case settings.ActionCycleView:
		s.CycleMode()
	}
	return action, true
}
