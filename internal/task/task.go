package task

import (
	"slices"
	"time"
)

type Priority string

const (
	P1 Priority = "P1"
	P2 Priority = "P2"
	P3 Priority = "P3"
	P4 Priority = "P4"
)

// Priorities lists every priority from most to least urgent.
var Priorities = []Priority{P1, P2, P3, P4}

func (p Priority) Valid() bool {
	return slices.Contains(Priorities, p)
}

// Level is the numeric part of the priority, 1 being the most urgent.
func (p Priority) Level() int {
	if i := slices.Index(Priorities, p); i >= 0 {
		return i + 1
	}
	return len(Priorities)
}

// When is the coarse temporal classification of a task.
type When string

const (
	WhenToday     When = "today"
	WhenTomorrow  When = "tomorrow"
	WhenScheduled When = "scheduled"
	WhenExactDate When = "exact-date"
)

func (w When) Label() string {
	switch w {
	case WhenToday:
		return "Hoy"
	case WhenTomorrow:
		return "Mañana"
	case WhenScheduled:
		return "Programado"
	case WhenExactDate:
		return "Fecha concreta"
	}
	return string(w)
}

type Subtask struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Completed bool   `json:"completed"`
}

type Task struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description"`
	Priority    Priority   `json:"priority"`
	DueDate     *time.Time `json:"dueDate"`
	Reminder    *time.Time `json:"reminder"`
	When        When       `json:"when"`
	Subtasks    []Subtask  `json:"subtasks"`
	CreatedAt   time.Time  `json:"createdAt"`
	CompletedAt *time.Time `json:"completedAt"`
}

// Active reports whether the task is not in the trash.
func (t Task) Active() bool {
	return t.CompletedAt == nil
}

// Expired reports whether a trashed task is old enough to be purged.
func (t Task) Expired(now time.Time) bool {
	return t.CompletedAt != nil && now.Sub(*t.CompletedAt) >= TrashRetention
}

// SubtaskProgress returns how many subtasks are done out of the total.
func (t Task) SubtaskProgress() (done, total int) {
	for _, s := range t.Subtasks {
		if s.Completed {
			done++
		}
	}
	return done, len(t.Subtasks)
}

// clone copies the task so that no slice or pointer is shared with t.
func (t Task) clone() Task {
	c := t
	c.DueDate = cloneTime(t.DueDate)
	c.Reminder = cloneTime(t.Reminder)
	c.CompletedAt = cloneTime(t.CompletedAt)
	if t.Subtasks != nil {
		c.Subtasks = slices.Clone(t.Subtasks)
	}
	return c
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

// Input is what a caller supplies to create a task. Zero values pick the
// defaults.
type Input struct {
	Title       string
	Description string
	Priority    Priority
	DueDate     *time.Time
	Reminder    *time.Time
	When        When
	Subtasks    []Subtask
}

// Patch is a shallow update. Nil fields are left alone; the Clear flags
// reset the optional dates to null.
type Patch struct {
	Title         *string
	Description   *string
	Priority      *Priority
	When          *When
	DueDate       *time.Time
	ClearDueDate  bool
	Reminder      *time.Time
	ClearReminder bool
	Subtasks      []Subtask
}

func (p Patch) apply(t Task) Task {
	if p.Title != nil {
		t.Title = *p.Title
	}
	if p.Description != nil {
		t.Description = *p.Description
	}
	if p.Priority != nil {
		t.Priority = *p.Priority
	}
	if p.When != nil {
		t.When = *p.When
	}
	if p.ClearDueDate {
		t.DueDate = nil
	}
	if p.DueDate != nil {
		t.DueDate = cloneTime(p.DueDate)
	}
	if p.ClearReminder {
		t.Reminder = nil
	}
	if p.Reminder != nil {
		t.Reminder = cloneTime(p.Reminder)
	}
	if p.Subtasks != nil {
		t.Subtasks = slices.Clone(p.Subtasks)
	}
	return t
}

// BulkPatch is the subset of fields that can be set on many tasks at once.
type BulkPatch struct {
	DueDate  *time.Time
	Reminder *time.Time
	Priority Priority
}

func (b BulkPatch) Empty() bool {
	return b.DueDate == nil && b.Reminder == nil && b.Priority == ""
}

func (b BulkPatch) patch() Patch {
	p := Patch{DueDate: b.DueDate, Reminder: b.Reminder}
	if b.Priority != "" {
		pr := b.Priority
		p.Priority = &pr
	}
	return p
}
