package app

import (
	"slices"
	"strings"
	"time"

	"totwist/internal/task"
)

// Form is the editor payload for a new or existing task.
type Form struct {
	TaskID      string
	Title       string
	Description string
	Priority    task.Priority
	When        task.When
	// ExactDate is the date picked alongside WhenExactDate.
	ExactDate *time.Time
	DueDate   *time.Time
	Reminder  *time.Time
	Subtasks  []task.Subtask

	prevDue *time.Time
}

func NewForm() Form {
	return Form{Priority: task.P4, When: task.WhenToday, Subtasks: []task.Subtask{}}
}

func EditForm(t task.Task) Form {
	return Form{
		TaskID:      t.ID,
		Title:       t.Title,
		Description: t.Description,
		Priority:    t.Priority,
		When:        t.When,
		ExactDate:   t.DueDate,
		DueDate:     t.DueDate,
		Reminder:    t.Reminder,
		Subtasks:    slices.Clone(t.Subtasks),
		prevDue:     t.DueDate,
	}
}

func (f Form) Editing() bool { return f.TaskID != "" }

// AddSubtask puts a new subtask at the top of the list. Blank titles are
// ignored.
func (f *Form) AddSubtask(id, title string) bool {
	title = strings.TrimSpace(title)
	if title == "" {
		return false
	}
	f.Subtasks = slices.Insert(f.Subtasks, 0, task.Subtask{ID: id, Title: title})
	return true
}

func (f *Form) RemoveSubtask(id string) {
	f.Subtasks = slices.DeleteFunc(f.Subtasks, func(s task.Subtask) bool { return s.ID == id })
}

// resolved applies the editor rules: an exact date is stored as a scheduled
// task, and an edit without any date keeps the previous due date.
func (f Form) resolved() (task.When, *time.Time) {
	when := f.When
	if when == "" {
		when = task.WhenToday
	}
	due := f.DueDate
	if due == nil && when == task.WhenExactDate && f.ExactDate != nil {
		due = f.ExactDate
	}
	if due == nil {
		due = f.prevDue
	}
	if when == task.WhenExactDate {
		when = task.WhenScheduled
	}
	return when, due
}

func (f Form) input() task.Input {
	when, due := f.resolved()
	return task.Input{
		Title:       strings.TrimSpace(f.Title),
		Description: f.Description,
		Priority:    f.Priority,
		DueDate:     due,
		Reminder:    f.Reminder,
		When:        when,
		Subtasks:    f.Subtasks,
	}
}

func (f Form) patch() task.Patch {
	when, due := f.resolved()
	title := strings.TrimSpace(f.Title)
	desc := f.Description
	pr := f.Priority
	if pr == "" {
		pr = task.P4
	}
	subs := f.Subtasks
	if subs == nil {
		subs = []task.Subtask{}
	}
	return task.Patch{
		Title:         &title,
		Description:   &desc,
		Priority:      &pr,
		When:          &when,
		DueDate:       due,
		ClearDueDate:  due == nil,
		Reminder:      f.Reminder,
		ClearReminder: f.Reminder == nil,
		Subtasks:      subs,
	}
}
