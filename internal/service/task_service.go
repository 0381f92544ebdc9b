package service

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"

	"taskmanager/internal/model"
)

const MaxTitleLength = 200

// TaskRepository is the persistence contract the service relies on.
type TaskRepository interface {
	Create(ctx context.Context, task *model.Task) error
	GetByID(ctx context.Context, id uint64) (*model.Task, error)
	Save(ctx context.Context, task *model.Task) error
	ListRoot(ctx context.Context) ([]model.Task, error)
	ListByStatus(ctx context.Context, status model.Status) ([]model.Task, error)
	ListByCategory(ctx context.Context, category model.Category) ([]model.Task, error)
	ListByParent(ctx context.Context, parentID uint64) ([]model.Task, error)
	ListByParentIDs(ctx context.Context, parentIDs []uint64) ([]model.Task, error)
	ListDeleted(ctx context.Context) ([]model.Task, error)
	Search(ctx context.Context, keyword string) ([]model.Task, error)
	ListByDueDateRange(ctx context.Context, start, end model.Date) ([]model.Task, error)
}

// TaskInput carries the client-controlled fields of a task. Empty enum
// values take their defaults.
type TaskInput struct {
	Title        string `validate:"required,max=200"`
	Description  *string
	DueDate      *model.Date
	Priority     model.Priority
	Category     model.Category
	Status       model.Status
	ParentTaskID *uint64
}

type TaskService struct {
	repo     TaskRepository
	validate *validator.Validate
}

func NewTaskService(repo TaskRepository) *TaskService {
	return &TaskService{
		repo:     repo,
		validate: validator.New(),
	}
}

// GetAllTasks returns live root tasks, newest first, each with its live
// direct children attached.
func (s *TaskService) GetAllTasks(ctx context.Context) ([]model.Task, error) {
	tasks, err := s.repo.ListRoot(ctx)
	if err != nil {
		return nil, fmt.Errorf("list root tasks: %w", err)
	}
	if len(tasks) == 0 {
		return tasks, nil
	}

	ids := make([]uint64, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.ID)
	}
	children, err := s.repo.ListByParentIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("list subtasks: %w", err)
	}

	byParent := make(map[uint64][]model.Task, len(tasks))
	for _, child := range children {
		byParent[*child.ParentTaskID] = append(byParent[*child.ParentTaskID], child)
	}
	for i := range tasks {
		tasks[i].SubTasks = byParent[tasks[i].ID]
	}
	return tasks, nil
}

// GetTask returns a task by id whether or not it is deleted, with its live
// direct children attached.
func (s *TaskService) GetTask(ctx context.Context, id uint64) (*model.Task, error) {
	task, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get task %d: %w", id, err)
	}

	children, err := s.repo.ListByParent(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("list subtasks of %d: %w", id, err)
	}
	task.SubTasks = children
	return task, nil
}

func (s *TaskService) CreateTask(ctx context.Context, input TaskInput) (*model.Task, error) {
	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	task := &model.Task{
		Title:        input.Title,
		Description:  input.Description,
		DueDate:      input.DueDate,
		Priority:     priorityOrDefault(input.Priority),
		Category:     categoryOrDefault(input.Category),
		Status:       statusOrDefault(input.Status),
		ParentTaskID: input.ParentTaskID,
	}
	if err := s.repo.Create(ctx, task); err != nil {
		return nil, fmt.Errorf("create task: %w", err)
	}

	zap.L().Info("task created", zap.Uint64("task_id", task.ID))
	return task, nil
}

// UpdateTask overwrites title, description, due date, priority, category
// and status. Id, parent, deletion flag and creation time are kept.
func (s *TaskService) UpdateTask(ctx context.Context, id uint64, input TaskInput) (*model.Task, error) {
	if err := s.validateInput(input); err != nil {
		return nil, err
	}

	task, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get task %d: %w", id, err)
	}

	task.Title = input.Title
	task.Description = input.Description
	task.DueDate = input.DueDate
	task.Priority = priorityOrDefault(input.Priority)
	task.Category = categoryOrDefault(input.Category)
	task.Status = statusOrDefault(input.Status)

	if err := s.repo.Save(ctx, task); err != nil {
		return nil, fmt.Errorf("save task %d: %w", id, err)
	}

	zap.L().Info("task updated", zap.Uint64("task_id", id))
	return task, nil
}

// DeleteTask flags a task as deleted; the record is kept.
func (s *TaskService) DeleteTask(ctx context.Context, id uint64) error {
	if _, err := s.setDeleted(ctx, id, true); err != nil {
		return err
	}
	zap.L().Info("task soft-deleted", zap.Uint64("task_id", id))
	return nil
}

func (s *TaskService) RestoreTask(ctx context.Context, id uint64) (*model.Task, error) {
	task, err := s.setDeleted(ctx, id, false)
	if err != nil {
		return nil, err
	}
	zap.L().Info("task restored", zap.Uint64("task_id", id))
	return task, nil
}

func (s *TaskService) GetTasksByStatus(ctx context.Context, status model.Status) ([]model.Task, error) {
	return s.repo.ListByStatus(ctx, status)
}

func (s *TaskService) GetTasksByCategory(ctx context.Context, category model.Category) ([]model.Task, error) {
	return s.repo.ListByCategory(ctx, category)
}

func (s *TaskService) SearchTasks(ctx context.Context, keyword string) ([]model.Task, error) {
	return s.repo.Search(ctx, keyword)
}

func (s *TaskService) GetSubTasks(ctx context.Context, parentID uint64) ([]model.Task, error) {
	return s.repo.ListByParent(ctx, parentID)
}

func (s *TaskService) GetDeletedTasks(ctx context.Context) ([]model.Task, error) {
	return s.repo.ListDeleted(ctx)
}

func (s *TaskService) GetTasksByDueDateRange(ctx context.Context, start, end model.Date) ([]model.Task, error) {
	if start.After(end) {
		return nil, &ValidationError{Field: "start", Rule: RuleRange, Message: "must not be after end"}
	}
	return s.repo.ListByDueDateRange(ctx, start, end)
}

func (s *TaskService) setDeleted(ctx context.Context, id uint64, deleted bool) (*model.Task, error) {
	task, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get task %d: %w", id, err)
	}

	task.IsDeleted = deleted
	if err := s.repo.Save(ctx, task); err != nil {
		return nil, fmt.Errorf("save task %d: %w", id, err)
	}
	return task, nil
}

func (s *TaskService) validateInput(input TaskInput) error {
	if strings.TrimSpace(input.Title) == "" {
		return &ValidationError{Field: "title", Rule: RuleRequired, Message: "is required"}
	}
	if err := s.validate.Struct(input); err != nil {
		return &ValidationError{
			Field:   "title",
			Rule:    RuleMaxLen,
			Message: fmt.Sprintf("must be at most %d characters", MaxTitleLength),
		}
	}
	if input.Priority != "" && !input.Priority.Valid() {
		return &ValidationError{Field: "priority", Rule: RuleEnum, Message: model.ErrInvalidPriority.Error()}
	}
	if input.Category != "" && !input.Category.Valid() {
		return &ValidationError{Field: "category", Rule: RuleEnum, Message: model.ErrInvalidCategory.Error()}
	}
	if input.Status != "" && !input.Status.Valid() {
		return &ValidationError{Field: "status", Rule: RuleEnum, Message: model.ErrInvalidStatus.Error()}
	}
	return nil
}

func priorityOrDefault(p model.Priority) model.Priority {
	if p == "" {
		return model.DefaultPriority
	}
	return p
}

func categoryOrDefault(c model.Category) model.Category {
	if c == "" {
		return model.DefaultCategory
	}
	return c
}

func statusOrDefault(st model.Status) model.Status {
	if st == "" {
		return model.DefaultStatus
	}
	return st
}
