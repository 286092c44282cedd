package view

import (
	"fmt"
	"time"

	"totwist/internal/dates"
	"totwist/internal/task"
)

type CalendarMode string

const (
	CalendarMonth CalendarMode = "month"
	CalendarWeek  CalendarMode = "week"
	CalendarDay   CalendarMode = "day"
)

func ParseCalendarMode(s string) (CalendarMode, error) {
	switch m := CalendarMode(s); m {
	case CalendarMonth, CalendarWeek, CalendarDay:
		return m, nil
	}
	return "", fmt.Errorf("unknown calendar mode %q", s)
}

func (m CalendarMode) Next() CalendarMode {
	switch m {
	case CalendarMonth:
		return CalendarWeek
	case CalendarWeek:
		return CalendarDay
	}
	return CalendarMonth
}

// Shift moves date by steps months, weeks or days depending on the mode.
func (m CalendarMode) Shift(date time.Time, steps int) time.Time {
	switch m {
	case CalendarMonth:
		first := time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, date.Location())
		return first.AddDate(0, steps, 0)
	case CalendarWeek:
		return dates.AddDays(date, 7*steps)
	}
	return dates.AddDays(date, steps)
}

// Cell is one day of a calendar grid. Blank padding cells have a nil Date.
type Cell struct {
	Date  *time.Time
	Tasks []task.Task
}

func (c Cell) Blank() bool { return c.Date == nil }

// CalendarCells builds the grid for mode around date, in rows of seven for
// month and week, and a single row with one cell for day. Only tasks with a
// due date on the cell's day are listed.
func CalendarCells(tasks []task.Task, mode CalendarMode, date time.Time) [][]Cell {
	switch mode {
	case CalendarWeek:
		start := dates.StartOfWeek(date, time.Monday)
		row := make([]Cell, 7)
		for i := range row {
			row[i] = dayCell(tasks, dates.AddDays(start, i))
		}
		return [][]Cell{row}
	case CalendarDay:
		return [][]Cell{{dayCell(tasks, dates.StartOfDay(date))}}
	}
	return monthCells(tasks, date)
}

func monthCells(tasks []task.Task, date time.Time) [][]Cell {
	first := time.Date(date.Year(), date.Month(), 1, 0, 0, 0, 0, date.Location())
	lead := (int(first.Weekday()) + 6) % 7
	n := dates.DaysInMonth(date.Year(), date.Month())

	flat := make([]Cell, 0, lead+n+6)
	for range lead {
		flat = append(flat, Cell{})
	}
	for d := range n {
		flat = append(flat, dayCell(tasks, dates.AddDays(first, d)))
	}
	for len(flat)%7 != 0 {
		flat = append(flat, Cell{})
	}

	rows := make([][]Cell, 0, len(flat)/7)
	for i := 0; i < len(flat); i += 7 {
		rows = append(rows, flat[i:i+7])
	}
	return rows
}

func dayCell(tasks []task.Task, day time.Time) Cell {
	c := Cell{Date: &day}
	for _, t := range tasks {
		if t.DueDate != nil && dates.SameDay(day, *t.DueDate) {
			c.Tasks = append(c.Tasks, t)
		}
	}
	return c
}
