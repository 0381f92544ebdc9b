package repository

import (
	"context"
	"errors"
	"strings"

	"gorm.io/gorm"

	"taskmanager/internal/model"
)

type TaskRepository struct {
	db *gorm.DB
}

func NewTaskRepository(db *gorm.DB) *TaskRepository {
	return &TaskRepository{db: db}
}

// Create inserts a new task. The database assigns the id and gorm stamps
// created_at and updated_at with the same instant.
func (r *TaskRepository) Create(ctx context.Context, task *model.Task) error {
	return r.db.WithContext(ctx).Create(task).Error
}

// GetByID retrieves a task by its ID, deleted or not
func (r *TaskRepository) GetByID(ctx context.Context, id uint64) (*model.Task, error) {
	var task model.Task
	result := r.db.WithContext(ctx).First(&task, "id = ?", id)
	if result.Error != nil {
		if errors.Is(result.Error, gorm.ErrRecordNotFound) {
			return nil, ErrTaskNotFound
		}
		return nil, result.Error
	}
	return &task, nil
}

// Save writes every column of an existing task except created_at and
// refreshes updated_at. Unlike gorm's Save it never inserts.
func (r *TaskRepository) Save(ctx context.Context, task *model.Task) error {
	result := r.db.WithContext(ctx).
		Model(task).
		Select("*").
		Omit("id", "created_at").
		Updates(task)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return ErrTaskNotFound
	}
	return nil
}

// ListRoot returns live tasks without a parent, newest first
func (r *TaskRepository) ListRoot(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	err := r.live(ctx).
		Where("parent_task_id IS NULL").
		Order("created_at DESC").
		Order("id DESC").
		Find(&tasks).Error
	return tasks, err
}

func (r *TaskRepository) ListByStatus(ctx context.Context, status model.Status) ([]model.Task, error) {
	var tasks []model.Task
	err := r.live(ctx).Where("status = ?", status).Order("id").Find(&tasks).Error
	return tasks, err
}

func (r *TaskRepository) ListByCategory(ctx context.Context, category model.Category) ([]model.Task, error) {
	var tasks []model.Task
	err := r.live(ctx).Where("category = ?", category).Order("id").Find(&tasks).Error
	return tasks, err
}

// ListByParent returns the live direct children of a task
func (r *TaskRepository) ListByParent(ctx context.Context, parentID uint64) ([]model.Task, error) {
	var tasks []model.Task
	err := r.live(ctx).Where("parent_task_id = ?", parentID).Order("id").Find(&tasks).Error
	return tasks, err
}

// ListByParentIDs returns the live direct children of several tasks in one query
func (r *TaskRepository) ListByParentIDs(ctx context.Context, parentIDs []uint64) ([]model.Task, error) {
	if len(parentIDs) == 0 {
		return nil, nil
	}
	var tasks []model.Task
	err := r.live(ctx).Where("parent_task_id IN ?", parentIDs).Order("id").Find(&tasks).Error
	return tasks, err
}

// ListDeleted returns soft-deleted tasks, most recently changed first
func (r *TaskRepository) ListDeleted(ctx context.Context) ([]model.Task, error) {
	var tasks []model.Task
	err := r.db.WithContext(ctx).
		Where("is_deleted = ?", true).
		Order("updated_at DESC").
		Order("id DESC").
		Find(&tasks).Error
	return tasks, err
}

// Search matches keyword as a case-insensitive substring of title or description
func (r *TaskRepository) Search(ctx context.Context, keyword string) ([]model.Task, error) {
	pattern := "%" + escapeLike(strings.ToLower(keyword)) + "%"

	var tasks []model.Task
	err := r.live(ctx).
		Where("(LOWER(title) LIKE ? OR LOWER(description) LIKE ?)", pattern, pattern).
		Order("id").
		Find(&tasks).Error
	return tasks, err
}

// ListByDueDateRange returns live tasks due between start and end, both inclusive
func (r *TaskRepository) ListByDueDateRange(ctx context.Context, start, end model.Date) ([]model.Task, error) {
	var tasks []model.Task
	err := r.live(ctx).
		Where("due_date BETWEEN ? AND ?", start, end).
		Order("id").
		Find(&tasks).Error
	return tasks, err
}

func (r *TaskRepository) live(ctx context.Context) *gorm.DB {
	return r.db.WithContext(ctx).Where("is_deleted = ?", false)
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike makes % and _ literal; backslash is the default LIKE escape in postgres.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}

func (r *TaskRepository) Ping(ctx context.Context) error {
	sqlDB, err := r.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}
