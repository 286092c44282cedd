package task

import (
	"context"
	"log/slog"
	"slices"
	"time"

	"github.com/google/uuid"

	"totwist/internal/storage"
)

// TrashRetention is how long a completed task stays in the trash.
const TrashRetention = 30 * 24 * time.Hour

// Repository is the single in-memory task collection. Every mutation swaps
// in a freshly built slice and writes it to the blob store.
type Repository struct {
	blobs      storage.Blobs
	tasks      []Task
	now        func() time.Time
	newID      func() string
	smartParse bool
	logger     *slog.Logger
}

type Option func(*Repository)

func WithClock(now func() time.Time) Option {
	return func(r *Repository) { r.now = now }
}

func WithIDGenerator(gen func() string) Option {
	return func(r *Repository) { r.newID = gen }
}

func WithSmartParse(on bool) Option {
	return func(r *Repository) { r.smartParse = on }
}

func WithLogger(l *slog.Logger) Option {
	return func(r *Repository) { r.logger = l }
}

// New wraps an existing collection. Nothing is written until the first
// mutation.
func New(blobs storage.Blobs, tasks []Task, opts ...Option) *Repository {
	r := &Repository{
		blobs:      blobs,
		now:        time.Now,
		newID:      uuid.NewString,
		smartParse: true,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(r)
	}
	r.tasks = make([]Task, 0, len(tasks))
	for _, t := range tasks {
		r.tasks = append(r.tasks, normalize(t.clone()))
	}
	return r
}

// Load reads the persisted collection, falling back to an empty one.
func Load(ctx context.Context, blobs storage.Blobs, opts ...Option) *Repository {
	r := New(blobs, nil, opts...)
	for _, t := range storage.Load(ctx, blobs, storage.TasksKey, []Task{}, r.logger) {
		r.tasks = append(r.tasks, normalize(t))
	}
	return r
}

func normalize(t Task) Task {
	if !t.Priority.Valid() {
		t.Priority = P4
	}
	if t.When == "" {
		t.When = WhenToday
	}
	if t.Subtasks == nil {
		t.Subtasks = []Subtask{}
	}
	return t
}

func (r *Repository) SetSmartParse(on bool) { r.smartParse = on }

func (r *Repository) Len() int { return len(r.tasks) }

// Tasks returns a copy of the collection, most recent first.
func (r *Repository) Tasks() []Task {
	out := make([]Task, len(r.tasks))
	for i, t := range r.tasks {
		out[i] = t.clone()
	}
	return out
}

func (r *Repository) Get(id string) (Task, bool) {
	for _, t := range r.tasks {
		if t.ID == id {
			return t.clone(), true
		}
	}
	return Task{}, false
}

func (r *Repository) Add(in Input) Task {
	now := r.now()
	t := Task{
		ID:          r.newID(),
		Title:       in.Title,
		Description: in.Description,
		Priority:    in.Priority,
		DueDate:     cloneTime(in.DueDate),
		Reminder:    cloneTime(in.Reminder),
		When:        in.When,
		Subtasks:    slices.Clone(in.Subtasks),
		CreatedAt:   now,
	}
	if t.Priority == "" {
		t.Priority = P4
	}
	if t.When == "" {
		t.When = WhenToday
	}
	if t.Subtasks == nil {
		t.Subtasks = []Subtask{}
	}
	if r.smartParse {
		applySmartParse(&t, in.DueDate != nil, now)
	}

	next := make([]Task, 0, len(r.tasks)+1)
	next = append(next, t)
	next = append(next, r.tasks...)
	r.commit(next)
	return t.clone()
}

// Update merges patch into the task with the given id. It reports whether
// the task exists.
func (r *Repository) Update(id string, patch Patch) bool {
	return r.rewrite(func(t Task) (Task, bool) {
		if t.ID != id {
			return t, false
		}
		return patch.apply(t), true
	})
}

func (r *Repository) ToggleComplete(id string) bool {
	now := r.now()
	return r.rewrite(func(t Task) (Task, bool) {
		if t.ID != id {
			return t, false
		}
		if t.CompletedAt == nil {
			t.CompletedAt = &now
		} else {
			t.CompletedAt = nil
		}
		return t, true
	})
}

func (r *Repository) ToggleSubtask(taskID, subtaskID string) bool {
	return r.rewrite(func(t Task) (Task, bool) {
		if t.ID != taskID {
			return t, false
		}
		i := slices.IndexFunc(t.Subtasks, func(s Subtask) bool { return s.ID == subtaskID })
		if i < 0 {
			return t, false
		}
		t.Subtasks = slices.Clone(t.Subtasks)
		t.Subtasks[i].Completed = !t.Subtasks[i].Completed
		return t, true
	})
}

// BulkPatch sets the non-empty fields of patch on every listed task.
func (r *Repository) BulkPatch(ids []string, patch BulkPatch) int {
	if len(ids) == 0 || patch.Empty() {
		return 0
	}
	set := idSet(ids)
	p := patch.patch()
	n := 0
	r.rewrite(func(t Task) (Task, bool) {
		if _, ok := set[t.ID]; !ok {
			return t, false
		}
		n++
		return p.apply(t), true
	})
	return n
}

func (r *Repository) DeletePermanently(ids []string) int {
	set := idSet(ids)
	next := make([]Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		if _, ok := set[t.ID]; !ok {
			next = append(next, t)
		}
	}
	removed := len(r.tasks) - len(next)
	r.commit(next)
	return removed
}

// Restore moves trashed tasks back to the active set.
func (r *Repository) Restore(ids []string) int {
	set := idSet(ids)
	n := 0
	r.rewrite(func(t Task) (Task, bool) {
		if _, ok := set[t.ID]; !ok || t.CompletedAt == nil {
			return t, false
		}
		n++
		t.CompletedAt = nil
		return t, true
	})
	return n
}

// PurgeExpiredTrash drops trashed tasks older than TrashRetention. The store
// is only written when something was removed.
func (r *Repository) PurgeExpiredTrash() int {
	now := r.now()
	next := make([]Task, 0, len(r.tasks))
	for _, t := range r.tasks {
		if !t.Expired(now) {
			next = append(next, t)
		}
	}
	removed := len(r.tasks) - len(next)
	if removed == 0 {
		return 0
	}
	r.commit(next)
	r.logger.Info("purged expired trash", "removed", removed)
	return removed
}

// rewrite builds the next collection by passing every task through fn and
// commits it. It reports whether fn changed anything.
func (r *Repository) rewrite(fn func(Task) (Task, bool)) bool {
	next := make([]Task, len(r.tasks))
	changed := false
	for i, t := range r.tasks {
		nt, ok := fn(t.clone())
		if ok {
			changed = true
			next[i] = nt
		} else {
			next[i] = t
		}
	}
	r.commit(next)
	return changed
}

func (r *Repository) commit(next []Task) {
	r.tasks = next
	storage.Save(context.Background(), r.blobs, storage.TasksKey, r.tasks, r.logger)
}

func idSet(ids []string) map[string]struct{} {
	set := make(map[string]struct{}, len(ids))
	for _, id := range ids {
		set[id] = struct{}{}
	}
	return set
}
