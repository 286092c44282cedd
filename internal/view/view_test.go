package view

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"totwist/internal/task"
)

// Friday 16 October 2026, mid-morning.
var now = time.Date(2026, time.October, 16, 10, 0, 0, 0, time.Local)

func at(days int, hour int) *time.Time {
	t := time.Date(2026, time.October, 16+days, hour, 0, 0, 0, time.Local)
	return &t
}

func ids(tasks []task.Task) []string {
	out := make([]string, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func fixtureTasks() []task.Task {
	done := now.Add(-time.Hour)
	return []task.Task{
		{ID: "today-tag", Title: "Regar plantas", When: task.WhenToday, Priority: task.P2},
		{ID: "due-today", Title: "Pagar luz", When: task.WhenScheduled, DueDate: at(0, 20), Priority: task.P1},
		{ID: "tomorrow-nodue", Title: "Llamar", When: task.WhenTomorrow, Priority: task.P4},
		{ID: "scheduled-nodue", Title: "Leer", Description: "capítulo de Cortázar", When: task.WhenScheduled, Priority: task.P3},
		{ID: "due-3d", Title: "Informe", When: task.WhenScheduled, DueDate: at(3, 9), Priority: task.P1},
		{ID: "due-30d", Title: "Viaje", When: task.WhenScheduled, DueDate: at(30, 9), Priority: task.P4},
		{ID: "overdue", Title: "Factura vieja", When: task.WhenScheduled, DueDate: at(-5, 9), Priority: task.P2},
		{ID: "trashed", Title: "Hecha", When: task.WhenToday, CompletedAt: &done, Priority: task.P1},
	}
}

func TestFilterToday(t *testing.T) {
	got := Filter(fixtureTasks(), RouteToday, "", 7, now)
	assert.Equal(t, []string{"today-tag", "due-today"}, ids(got))
}

func TestFilterUpcoming(t *testing.T) {
	got := Filter(fixtureTasks(), RouteUpcoming, "", 7, now)
	assert.Equal(t, []string{"tomorrow-nodue", "scheduled-nodue", "due-3d", "overdue"}, ids(got))

	wide := Filter(fixtureTasks(), RouteUpcoming, "", 45, now)
	assert.Contains(t, ids(wide), "due-30d")
}

func TestFilterUpcomingWindowIsInclusive(t *testing.T) {
	edge := now.AddDate(0, 0, 7)
	tasks := []task.Task{{ID: "edge", When: task.WhenScheduled, DueDate: &edge}}
	assert.Len(t, Filter(tasks, RouteUpcoming, "", 7, now), 1)

	past := edge.Add(time.Minute)
	tasks[0].DueDate = &past
	assert.Empty(t, Filter(tasks, RouteUpcoming, "", 7, now))
}

func TestFilterAllAndTrashPartition(t *testing.T) {
	tasks := fixtureTasks()
	all := Filter(tasks, RouteAll, "", 7, now)
	trash := Filter(tasks, RouteTrash, "", 7, now)

	assert.Len(t, all, len(tasks)-1)
	assert.Equal(t, []string{"trashed"}, ids(trash))
	for _, tk := range all {
		assert.True(t, tk.Active())
	}
	for _, r := range []Route{RouteToday, RouteUpcoming, RouteAll} {
		assert.NotContains(t, ids(Filter(tasks, r, "", 90, now)), "trashed", r)
	}
}

func TestFilterCalendarIsUnfiltered(t *testing.T) {
	tasks := fixtureTasks()
	assert.Len(t, Filter(tasks, RouteCalendar, "", 7, now), len(tasks))
}

func TestQueryMatchesTitleAndDescription(t *testing.T) {
	tasks := fixtureTasks()

	assert.Equal(t, []string{"scheduled-nodue"}, ids(Filter(tasks, RouteAll, "  CORTÁZAR ", 7, now)))
	assert.Equal(t, []string{"due-today"}, ids(Filter(tasks, RouteAll, "pagar", 7, now)))
	// The query runs before the route, so it also narrows the trash.
	assert.Equal(t, []string{"trashed"}, ids(Filter(tasks, RouteTrash, "hecha", 7, now)))
	assert.Empty(t, Filter(tasks, RouteTrash, "pagar", 7, now))
}

func TestGroupByPriority(t *testing.T) {
	groups := Visible(fixtureTasks(), RouteAll, "", 7, now)
	require.Len(t, groups, 4)

	assert.Equal(t, "P1", groups[0].Key)
	assert.Equal(t, "Prioridad 1", groups[0].Title)
	assert.Equal(t, []string{"due-today", "due-3d"}, ids(groups[0].Tasks))
	assert.Equal(t, []string{"today-tag", "overdue"}, ids(groups[1].Tasks))
	assert.Equal(t, []string{"scheduled-nodue"}, ids(groups[2].Tasks))
	assert.Equal(t, []string{"tomorrow-nodue", "due-30d"}, ids(groups[3].Tasks))
	assert.Equal(t, 7, Count(groups))
}

func TestGroupTrashIsSingleGroup(t *testing.T) {
	groups := Visible(fixtureTasks(), RouteTrash, "", 7, now)
	require.Len(t, groups, 1)
	assert.Equal(t, "completed", groups[0].Key)
	assert.Equal(t, "Completadas", groups[0].Title)
}

func TestParseRoute(t *testing.T) {
	r, err := ParseRoute(" Upcoming")
	require.NoError(t, err)
	assert.Equal(t, RouteUpcoming, r)
	assert.Equal(t, "Próximo", r.Label())

	_, err = ParseRoute("inbox")
	assert.Error(t, err)
}

func TestModeCycle(t *testing.T) {
	assert.Equal(t, ModeBoard, ModeList.Next())
	assert.Equal(t, ModeCalendar, ModeBoard.Next())
	assert.Equal(t, ModeList, ModeCalendar.Next())
}

func TestParseMode(t *testing.T) {
	m, err := ParseMode("Board")
	require.NoError(t, err)
	assert.Equal(t, ModeBoard, m)

	_, err = ParseMode("kanban")
	assert.Error(t, err)
}
