// Package view projects the task collection into what a screen shows: the
// tasks of a route grouped by priority, and calendar grids.
package view

import (
	"fmt"
	"strings"
	"time"

	"totwist/internal/dates"
	"totwist/internal/task"
)

type Route string

const (
	RouteToday    Route = "today"
	RouteUpcoming Route = "upcoming"
	RouteAll      Route = "all"
	RouteTrash    Route = "trash"
	RouteCalendar Route = "calendar"
)

// Routes is the sidebar order.
var Routes = []Route{RouteToday, RouteUpcoming, RouteAll, RouteTrash, RouteCalendar}

func ParseRoute(s string) (Route, error) {
	for _, r := range Routes {
		if string(r) == strings.ToLower(strings.TrimSpace(s)) {
			return r, nil
		}
	}
	return "", fmt.Errorf("unknown route %q", s)
}

func (r Route) Label() string {
	switch r {
	case RouteToday:
		return "Hoy"
	case RouteUpcoming:
		return "Próximo"
	case RouteAll:
		return "Todas"
	case RouteTrash:
		return "Eliminadas"
	case RouteCalendar:
		return "Calendario"
	}
	return string(r)
}

// Mode is how a non-calendar route is laid out.
type Mode string

const (
	ModeList     Mode = "list"
	ModeBoard    Mode = "board"
	ModeCalendar Mode = "calendar"
)

func ParseMode(s string) (Mode, error) {
	switch m := Mode(strings.ToLower(strings.TrimSpace(s))); m {
	case ModeList, ModeBoard, ModeCalendar:
		return m, nil
	}
	return "", fmt.Errorf("unknown view %q", s)
}

// Next cycles list → board → calendar → list.
func (m Mode) Next() Mode {
	switch m {
	case ModeList:
		return ModeBoard
	case ModeBoard:
		return ModeCalendar
	}
	return ModeList
}

type Group struct {
	Key   string
	Title string
	Tasks []task.Task
}

// Query keeps the tasks whose title or description contains q, ignoring
// case. An empty query keeps everything.
func Query(tasks []task.Task, q string) []task.Task {
	q = strings.ToLower(strings.TrimSpace(q))
	if q == "" {
		return tasks
	}
	var out []task.Task
	for _, t := range tasks {
		if strings.Contains(strings.ToLower(t.Title+" "+t.Description), q) {
			out = append(out, t)
		}
	}
	return out
}

// Filter applies the search query and then the route rules. windowDays is
// how far ahead Upcoming looks.
func Filter(tasks []task.Task, route Route, q string, windowDays int, now time.Time) []task.Task {
	tasks = Query(tasks, q)
	if route == RouteCalendar {
		return tasks
	}
	limit := dates.AddDays(now, windowDays)

	var out []task.Task
	for _, t := range tasks {
		if keep(t, route, now, limit) {
			out = append(out, t)
		}
	}
	return out
}

func keep(t task.Task, route Route, now, limit time.Time) bool {
	switch route {
	case RouteTrash:
		return !t.Active()
	case RouteAll:
		return t.Active()
	case RouteToday:
		return t.Active() && (t.When == task.WhenToday || dueToday(t, now))
	case RouteUpcoming:
		if !t.Active() {
			return false
		}
		if t.DueDate == nil {
			return t.When == task.WhenTomorrow || t.When == task.WhenScheduled
		}
		return !dueToday(t, now) && !t.DueDate.After(limit)
	}
	return true
}

func dueToday(t task.Task, now time.Time) bool {
	return t.DueDate != nil && dates.SameDay(now, *t.DueDate)
}

// GroupByPriority splits tasks into the P1..P4 groups. The trash route is a
// single group. Order inside a group follows the input.
func GroupByPriority(tasks []task.Task, route Route) []Group {
	if route == RouteTrash {
		return []Group{{Key: "completed", Title: "Completadas", Tasks: tasks}}
	}
	groups := make([]Group, 0, len(task.Priorities))
	for _, p := range task.Priorities {
		g := Group{Key: string(p), Title: fmt.Sprintf("Prioridad %d", p.Level())}
		for _, t := range tasks {
			if t.Priority == p {
				g.Tasks = append(g.Tasks, t)
			}
		}
		groups = append(groups, g)
	}
	return groups
}

// Visible is what a list or board shows for route and query.
func Visible(tasks []task.Task, route Route, q string, windowDays int, now time.Time) []Group {
	return GroupByPriority(Filter(tasks, route, q, windowDays, now), route)
}

// Count returns the number of tasks across groups.
func Count(groups []Group) int {
	n := 0
	for _, g := range groups {
		n += len(g.Tasks)
	}
	return n
}
