package task

import (
	"regexp"
	"time"

	"totwist/internal/dates"
)

var (
	todayWord    = regexp.MustCompile(`(?i)\bhoy\b`)
	tomorrowWord = regexp.MustCompile(`(?i)\bmañana\b`)
	inAWeek      = regexp.MustCompile(`(?i)\bdentro de una semana\b`)
)

// applySmartParse derives DueDate and When from the title. The first rule
// that matches wins:
//
//  1. a date like "15 de abril" sets the due date, unless the caller already
//     gave one, and classifies the task as today or scheduled;
//  2. "hoy" schedules for now;
//  3. "mañana" schedules for the same time tomorrow;
//  4. "dentro de una semana" schedules seven days out.
//
// Rules 2-4 replace a due date supplied by the caller while rule 1 keeps it.
func applySmartParse(t *Task, explicitDue bool, now time.Time) {
	if m, ok := dates.ParseNatural(t.Title, now); ok {
		if !explicitDue {
			d := m.Date
			t.DueDate = &d
		}
		if t.DueDate != nil && dates.SameDay(now, *t.DueDate) {
			t.When = WhenToday
		} else {
			t.When = WhenScheduled
		}
		return
	}

	switch {
	case todayWord.MatchString(t.Title):
		t.When = WhenToday
		t.DueDate = &now
	case tomorrowWord.MatchString(t.Title):
		d := dates.AddDays(now, 1)
		t.When = WhenTomorrow
		t.DueDate = &d
	case inAWeek.MatchString(t.Title):
		d := dates.AddDays(now, 7)
		t.When = WhenScheduled
		t.DueDate = &d
	}
}
