package handler

import (
	"time"

	"taskmanager/internal/model"
	"taskmanager/internal/service"
)

// TaskRequest is the body of POST /tasks and PUT /tasks/{id}. Server
// managed fields (id, isDeleted, createdAt, updatedAt, subTasks) are not
// bound and are ignored if sent.
type TaskRequest struct {
	Title        string      `json:"title" example:"Write report"`
	Description  *string     `json:"description" example:"Quarterly numbers"`
	DueDate      *model.Date `json:"dueDate" swaggertype:"string" format:"date" example:"2026-05-01"`
	Priority     string      `json:"priority" enums:"LOW,MEDIUM,HIGH,URGENT"`
	Category     string      `json:"category" enums:"WORK,PERSONAL,URGENT,SHOPPING,HEALTH,EDUCATION"`
	Status       string      `json:"status" enums:"PENDING,IN_PROGRESS,COMPLETED"`
	ParentTaskID *uint64     `json:"parentTaskId"`
}

// TaskResponse is the JSON shape of a task.
type TaskResponse struct {
	ID           uint64         `json:"id"`
	Title        string         `json:"title"`
	Description  *string        `json:"description"`
	DueDate      *model.Date    `json:"dueDate" swaggertype:"string" format:"date"`
	Priority     model.Priority `json:"priority"`
	Category     model.Category `json:"category"`
	Status       model.Status   `json:"status"`
	ParentTaskID *uint64        `json:"parentTaskId"`
	SubTasks     []TaskResponse `json:"subTasks"`
	IsDeleted    bool           `json:"isDeleted"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

type HealthResponse struct {
	Status  string `json:"status"`
	Storage string `json:"storage"`
}

// toInput resolves enum names case-insensitively. Empty names stay empty
// so the service applies defaults.
func (r TaskRequest) toInput() (service.TaskInput, error) {
	input := service.TaskInput{
		Title:        r.Title,
		Description:  r.Description,
		DueDate:      r.DueDate,
		ParentTaskID: r.ParentTaskID,
	}

	if r.Priority != "" {
		p, err := model.ParsePriority(r.Priority)
		if err != nil {
			return input, &service.ValidationError{Field: "priority", Rule: service.RuleEnum, Message: err.Error()}
		}
		input.Priority = p
	}
	if r.Category != "" {
		c, err := model.ParseCategory(r.Category)
		if err != nil {
			return input, &service.ValidationError{Field: "category", Rule: service.RuleEnum, Message: err.Error()}
		}
		input.Category = c
	}
	if r.Status != "" {
		s, err := model.ParseStatus(r.Status)
		if err != nil {
			return input, &service.ValidationError{Field: "status", Rule: service.RuleEnum, Message: err.Error()}
		}
		input.Status = s
	}
	return input, nil
}

func toTaskResponses(tasks []model.Task) []TaskResponse {
	items := make([]TaskResponse, 0, len(tasks))
	for _, task := range tasks {
		items = append(items, toTaskResponse(task))
	}
	return items
}

func toTaskResponse(task model.Task) TaskResponse {
	return TaskResponse{
		ID:           task.ID,
		Title:        task.Title,
		Description:  task.Description,
		DueDate:      task.DueDate,
		Priority:     task.Priority,
		Category:     task.Category,
		Status:       task.Status,
		ParentTaskID: task.ParentTaskID,
		SubTasks:     toTaskResponses(task.SubTasks),
		IsDeleted:    task.IsDeleted,
		CreatedAt:    task.CreatedAt,
		UpdatedAt:    task.UpdatedAt,
	}
}
