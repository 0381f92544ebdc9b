package repository

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"taskmanager/internal/model"
)

// MemoryTaskRepository keeps tasks in process memory.
//
// Records are copied on the way in and out, so a reader never sees a
// half-applied write. Concurrent saves of the same id are last-write-wins.
type MemoryTaskRepository struct {
	mu     sync.RWMutex
	tasks  map[uint64]model.Task
	nextID uint64
	now    func() time.Time
	last   time.Time
}

func NewMemoryTaskRepository() *MemoryTaskRepository {
	return NewMemoryTaskRepositoryWithClock(time.Now)
}

func NewMemoryTaskRepositoryWithClock(now func() time.Time) *MemoryTaskRepository {
	return &MemoryTaskRepository{
		tasks:  make(map[uint64]model.Task),
		nextID: 1,
		now:    now,
	}
}

func (r *MemoryTaskRepository) Create(ctx context.Context, task *model.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	now := r.stamp()
	task.ID = r.nextID
	task.CreatedAt = now
	task.UpdatedAt = now
	r.nextID++

	r.tasks[task.ID] = detach(*task)
	return nil
}

func (r *MemoryTaskRepository) GetByID(ctx context.Context, id uint64) (*model.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	task, ok := r.tasks[id]
	if !ok {
		return nil, ErrTaskNotFound
	}
	task = detach(task)
	return &task, nil
}

func (r *MemoryTaskRepository) Save(ctx context.Context, task *model.Task) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	stored, ok := r.tasks[task.ID]
	if !ok {
		return ErrTaskNotFound
	}

	task.UpdatedAt = r.stamp()
	task.CreatedAt = stored.CreatedAt

	r.tasks[task.ID] = detach(*task)
	return nil
}

func (r *MemoryTaskRepository) ListRoot(ctx context.Context) ([]model.Task, error) {
	tasks, err := r.filter(ctx, func(t *model.Task) bool {
		return !t.IsDeleted && t.IsRoot()
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		if tasks[i].CreatedAt.Equal(tasks[j].CreatedAt) {
			return tasks[i].ID > tasks[j].ID
		}
		return tasks[i].CreatedAt.After(tasks[j].CreatedAt)
	})
	return tasks, nil
}

func (r *MemoryTaskRepository) ListByStatus(ctx context.Context, status model.Status) ([]model.Task, error) {
	return r.filter(ctx, func(t *model.Task) bool {
		return !t.IsDeleted && t.Status == status
	})
}

func (r *MemoryTaskRepository) ListByCategory(ctx context.Context, category model.Category) ([]model.Task, error) {
	return r.filter(ctx, func(t *model.Task) bool {
		return !t.IsDeleted && t.Category == category
	})
}

func (r *MemoryTaskRepository) ListByParent(ctx context.Context, parentID uint64) ([]model.Task, error) {
	return r.filter(ctx, func(t *model.Task) bool {
		return !t.IsDeleted && t.ParentTaskID != nil && *t.ParentTaskID == parentID
	})
}

func (r *MemoryTaskRepository) ListByParentIDs(ctx context.Context, parentIDs []uint64) ([]model.Task, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}
	wanted := make(map[uint64]struct{}, len(parentIDs))
	for _, id := range parentIDs {
		wanted[id] = struct{}{}
	}
	return r.filter(ctx, func(t *model.Task) bool {
		if t.IsDeleted || t.ParentTaskID == nil {
			return false
		}
		_, ok := wanted[*t.ParentTaskID]
		return ok
	})
}

func (r *MemoryTaskRepository) ListDeleted(ctx context.Context) ([]model.Task, error) {
	tasks, err := r.filter(ctx, func(t *model.Task) bool {
		return t.IsDeleted
	})
	if err != nil {
		return nil, err
	}
	sort.SliceStable(tasks, func(i, j int) bool {
		if tasks[i].UpdatedAt.Equal(tasks[j].UpdatedAt) {
			return tasks[i].ID > tasks[j].ID
		}
		return tasks[i].UpdatedAt.After(tasks[j].UpdatedAt)
	})
	return tasks, nil
}

func (r *MemoryTaskRepository) Search(ctx context.Context, keyword string) ([]model.Task, error) {
	needle := strings.ToLower(keyword)
	return r.filter(ctx, func(t *model.Task) bool {
		if t.IsDeleted {
			return false
		}
		if strings.Contains(strings.ToLower(t.Title), needle) {
			return true
		}
		return t.Description != nil && strings.Contains(strings.ToLower(*t.Description), needle)
	})
}

func (r *MemoryTaskRepository) ListByDueDateRange(ctx context.Context, start, end model.Date) ([]model.Task, error) {
	return r.filter(ctx, func(t *model.Task) bool {
		if t.IsDeleted || t.DueDate == nil {
			return false
		}
		return !t.DueDate.Before(start) && !t.DueDate.After(end)
	})
}

// stamp returns a UTC timestamp at microsecond precision that is strictly
// later than every timestamp handed out before. Callers hold mu.
func (r *MemoryTaskRepository) stamp() time.Time {
	now := r.now().UTC().Truncate(time.Microsecond)
	if !now.After(r.last) {
		now = r.last.Add(time.Microsecond)
	}
	r.last = now
	return now
}

// filter returns matching copies ordered by id.
func (r *MemoryTaskRepository) filter(ctx context.Context, match func(*model.Task) bool) ([]model.Task, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	r.mu.RLock()
	defer r.mu.RUnlock()

	tasks := make([]model.Task, 0)
	for _, t := range r.tasks {
		if match(&t) {
			tasks = append(tasks, detach(t))
		}
	}
	sort.Slice(tasks, func(i, j int) bool { return tasks[i].ID < tasks[j].ID })
	return tasks, nil
}

// detach copies the pointer fields so callers cannot mutate stored records.
func detach(t model.Task) model.Task {
	if t.Description != nil {
		v := *t.Description
		t.Description = &v
	}
	if t.DueDate != nil {
		v := *t.DueDate
		t.DueDate = &v
	}
	if t.ParentTaskID != nil {
		v := *t.ParentTaskID
		t.ParentTaskID = &v
	}
	t.SubTasks = nil
	return t
}

// Ping always succeeds unless ctx is done.
func (r *MemoryTaskRepository) Ping(ctx context.Context) error {
	return ctx.Err()
}
