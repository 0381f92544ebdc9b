package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"

	"taskmanager/internal/middleware"
	"taskmanager/internal/model"
	"taskmanager/internal/repository"
	"taskmanager/internal/service"
	"taskmanager/pkg/apierrors"

	"github.com/gin-gonic/gin"
	"github.com/gin-gonic/gin/binding"
	"go.uber.org/zap"
)

// TaskService is the task lifecycle as seen by the HTTP layer.
type TaskService interface {
	GetAllTasks(ctx context.Context) ([]model.Task, error)
	GetTask(ctx context.Context, id uint64) (*model.Task, error)
	CreateTask(ctx context.Context, input service.TaskInput) (*model.Task, error)
	UpdateTask(ctx context.Context, id uint64, input service.TaskInput) (*model.Task, error)
	DeleteTask(ctx context.Context, id uint64) error
	RestoreTask(ctx context.Context, id uint64) (*model.Task, error)
	GetTasksByStatus(ctx context.Context, status model.Status) ([]model.Task, error)
	GetTasksByCategory(ctx context.Context, category model.Category) ([]model.Task, error)
	SearchTasks(ctx context.Context, keyword string) ([]model.Task, error)
	GetSubTasks(ctx context.Context, parentID uint64) ([]model.Task, error)
	GetDeletedTasks(ctx context.Context) ([]model.Task, error)
	GetTasksByDueDateRange(ctx context.Context, start, end model.Date) ([]model.Task, error)
}

type TaskHandler struct {
	taskService TaskService
}

func NewTaskHandler(taskService TaskService) *TaskHandler {
	return &TaskHandler{taskService: taskService}
}

// GetAll lists live root tasks, newest first.
// @Summary List root tasks
// @Tags Tasks
// @Produce json
// @Success 200 {array} TaskResponse
// @Failure 500 {object} apierrors.JsonErr
// @Router /tasks [get]
func (h *TaskHandler) GetAll(c *gin.Context) {
	tasks, err := h.taskService.GetAllTasks(c.Request.Context())
	if err != nil {
		h.fail(c, err, apierrors.MsgFailListTask)
		return
	}
	c.JSON(http.StatusOK, toTaskResponses(tasks))
}

// GetByID returns a task, deleted or not, with its live subtasks.
// @Summary Get a task by id
// @Tags Tasks
// @Produce json
// @Param id path int true "Task ID"
// @Success 200 {object} TaskResponse
// @Failure 400 {object} apierrors.JsonErr
// @Failure 404 {object} apierrors.JsonErr
// @Failure 500 {object} apierrors.JsonErr
// @Router /tasks/{id} [get]
func (h *TaskHandler) GetByID(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	task, err := h.taskService.GetTask(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, apierrors.MsgFailGetTask)
		return
	}
	c.JSON(http.StatusOK, toTaskResponse(*task))
}

// Create adds a task.
// @Summary Create a task
// @Tags Tasks
// @Accept json
// @Produce json
// @Param task body TaskRequest true "Task"
// @Success 201 {object} TaskResponse
// @Failure 400 {object} apierrors.JsonErr
// @Failure 500 {object} apierrors.JsonErr
// @Router /tasks [post]
func (h *TaskHandler) Create(c *gin.Context) {
	input, ok := h.bindTask(c)
	if !ok {
		return
	}

	task, err := h.taskService.CreateTask(c.Request.Context(), input)
	if err != nil {
		h.fail(c, err, apierrors.MsgFailCreateTask)
		return
	}
	c.JSON(http.StatusCreated, toTaskResponse(*task))
}

// Update replaces the editable fields of a task.
// @Summary Update a task
// @Description Overwrites title, description, dueDate, priority, category and status. Omitted fields are cleared or reset to defaults.
// @Tags Tasks
// @Accept json
// @Produce json
// @Param id path int true "Task ID"
// @Param task body TaskRequest true "Task"
// @Success 200 {object} TaskResponse
// @Failure 400 {object} apierrors.JsonErr
// @Failure 404 {object} apierrors.JsonErr
// @Failure 500 {object} apierrors.JsonErr
// @Router /tasks/{id} [put]
func (h *TaskHandler) Update(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}
	input, ok := h.bindTask(c)
	if !ok {
		return
	}

	task, err := h.taskService.UpdateTask(c.Request.Context(), id, input)
	if err != nil {
		h.fail(c, err, apierrors.MsgFailUpdateTask)
		return
	}
	c.JSON(http.StatusOK, toTaskResponse(*task))
}

// Delete soft-deletes a task.
// @Summary Soft-delete a task
// @Tags Tasks
// @Param id path int true "Task ID"
// @Success 204
// @Failure 400 {object} apierrors.JsonErr
// @Failure 404 {object} apierrors.JsonErr
// @Failure 500 {object} apierrors.JsonErr
// @Router /tasks/{id} [delete]
func (h *TaskHandler) Delete(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	if err := h.taskService.DeleteTask(c.Request.Context(), id); err != nil {
		h.fail(c, err, apierrors.MsgFailDeleteTask)
		return
	}
	c.Status(http.StatusNoContent)
}

// Restore clears the deleted flag.
// @Summary Restore a soft-deleted task
// @Tags Tasks
// @Produce json
// @Param id path int true "Task ID"
// @Success 200 {object} TaskResponse
// @Failure 400 {object} apierrors.JsonErr
// @Failure 404 {object} apierrors.JsonErr
// @Failure 500 {object} apierrors.JsonErr
// @Router /tasks/{id}/restore [put]
func (h *TaskHandler) Restore(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	task, err := h.taskService.RestoreTask(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, apierrors.MsgFailRestoreTask)
		return
	}
	c.JSON(http.StatusOK, toTaskResponse(*task))
}

// GetByStatus filters live tasks by status.
// @Summary List live tasks by status
// @Tags Tasks
// @Produce json
// @Param status path string true "Status, case-insensitive" Enums(PENDING, IN_PROGRESS, COMPLETED)
// @Success 200 {array} TaskResponse
// @Failure 400 {object} apierrors.JsonErr
// @Failure 500 {object} apierrors.JsonErr
// @Router /tasks/status/{status} [get]
func (h *TaskHandler) GetByStatus(c *gin.Context) {
	status, err := model.ParseStatus(c.Param("status"))
	if err != nil {
		h.abort(c, http.StatusBadRequest, apierrors.MsgInvalidStatus)
		return
	}

	tasks, err := h.taskService.GetTasksByStatus(c.Request.Context(), status)
	if err != nil {
		h.fail(c, err, apierrors.MsgFailListTask)
		return
	}
	c.JSON(http.StatusOK, toTaskResponses(tasks))
}

// GetByCategory filters live tasks by category.
// @Summary List live tasks by category
// @Tags Tasks
// @Produce json
// @Param category path string true "Category, case-insensitive" Enums(WORK, PERSONAL, URGENT, SHOPPING, HEALTH, EDUCATION)
// @Success 200 {array} TaskResponse
// @Failure 400 {object} apierrors.JsonErr
// @Failure 500 {object} apierrors.JsonErr
// @Router /tasks/category/{category} [get]
func (h *TaskHandler) GetByCategory(c *gin.Context) {
	category, err := model.ParseCategory(c.Param("category"))
	if err != nil {
		h.abort(c, http.StatusBadRequest, apierrors.MsgInvalidCategory)
		return
	}

	tasks, err := h.taskService.GetTasksByCategory(c.Request.Context(), category)
	if err != nil {
		h.fail(c, err, apierrors.MsgFailListTask)
		return
	}
	c.JSON(http.StatusOK, toTaskResponses(tasks))
}

// Search matches the keyword against title and description.
// @Summary Search live tasks
// @Tags Tasks
// @Produce json
// @Param keyword query string true "Case-insensitive substring"
// @Success 200 {array} TaskResponse
// @Failure 400 {object} apierrors.JsonErr
// @Failure 500 {object} apierrors.JsonErr
// @Router /tasks/search [get]
func (h *TaskHandler) Search(c *gin.Context) {
	keyword, ok := c.GetQuery("keyword")
	if !ok {
		h.abort(c, http.StatusBadRequest, apierrors.MsgKeywordRequired)
		return
	}

	tasks, err := h.taskService.SearchTasks(c.Request.Context(), keyword)
	if err != nil {
		h.fail(c, err, apierrors.MsgFailListTask)
		return
	}
	c.JSON(http.StatusOK, toTaskResponses(tasks))
}

// GetSubTasks lists live direct children. An unknown parent yields an empty list.
// @Summary List subtasks
// @Tags Tasks
// @Produce json
// @Param id path int true "Parent task ID"
// @Success 200 {array} TaskResponse
// @Failure 400 {object} apierrors.JsonErr
// @Failure 500 {object} apierrors.JsonErr
// @Router /tasks/{id}/subtasks [get]
func (h *TaskHandler) GetSubTasks(c *gin.Context) {
	id, ok := h.parseID(c)
	if !ok {
		return
	}

	tasks, err := h.taskService.GetSubTasks(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err, apierrors.MsgFailListSubtasks)
		return
	}
	c.JSON(http.StatusOK, toTaskResponses(tasks))
}

// GetDeleted lists the recycle bin.
// @Summary List soft-deleted tasks, most recently updated first
// @Tags Tasks
// @Produce json
// @Success 200 {array} TaskResponse
// @Failure 500 {object} apierrors.JsonErr
// @Router /tasks/deleted [get]
func (h *TaskHandler) GetDeleted(c *gin.Context) {
	tasks, err := h.taskService.GetDeletedTasks(c.Request.Context())
	if err != nil {
		h.fail(c, err, apierrors.MsgFailListTask)
		return
	}
	c.JSON(http.StatusOK, toTaskResponses(tasks))
}

// GetByDueDate lists live tasks due within [start, end].
// @Summary List live tasks by due date range
// @Tags Tasks
// @Produce json
// @Param start query string true "First day, YYYY-MM-DD"
// @Param end query string true "Last day, YYYY-MM-DD"
// @Success 200 {array} TaskResponse
// @Failure 400 {object} apierrors.JsonErr
// @Failure 500 {object} apierrors.JsonErr
// @Router /tasks/due [get]
func (h *TaskHandler) GetByDueDate(c *gin.Context) {
	start, errStart := model.ParseDate(c.Query("start"))
	end, errEnd := model.ParseDate(c.Query("end"))
	if errStart != nil || errEnd != nil {
		h.abort(c, http.StatusBadRequest, apierrors.MsgInvalidDate)
		return
	}

	tasks, err := h.taskService.GetTasksByDueDateRange(c.Request.Context(), start, end)
	if err != nil {
		h.fail(c, err, apierrors.MsgFailListTask)
		return
	}
	c.JSON(http.StatusOK, toTaskResponses(tasks))
}

func (h *TaskHandler) parseID(c *gin.Context) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		h.abort(c, http.StatusBadRequest, apierrors.MsgInvalidTaskID)
		return 0, false
	}
	return id, true
}

func (h *TaskHandler) bindTask(c *gin.Context) (service.TaskInput, bool) {
	if c.ContentType() != binding.MIMEJSON {
		h.abort(c, http.StatusBadRequest, apierrors.MsgInvalidTaskPayload)
		return service.TaskInput{}, false
	}

	var req TaskRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.abort(c, http.StatusBadRequest, apierrors.MsgInvalidTaskPayload)
		return service.TaskInput{}, false
	}

	input, err := req.toInput()
	if err != nil {
		h.fail(c, err, apierrors.MsgInvalidTaskPayload)
		return service.TaskInput{}, false
	}
	return input, true
}

// fail maps a service error onto the error envelope. failMsg is used for
// anything that is not a validation or lookup failure.
func (h *TaskHandler) fail(c *gin.Context, err error, failMsg string) {
	var validationErr *service.ValidationError
	switch {
	case errors.As(err, &validationErr):
		h.abort(c, http.StatusBadRequest, validationMessage(validationErr))
	case errors.Is(err, repository.ErrTaskNotFound):
		h.abort(c, http.StatusNotFound, apierrors.MsgTaskNotFound)
	case errors.Is(err, context.DeadlineExceeded):
		zap.L().Error("request timed out", zap.String("request_id", middleware.GetRequestID(c)), zap.Error(err))
		_ = c.Error(err)
		h.abort(c, http.StatusInternalServerError, apierrors.MsgRequestTimeout)
	default:
		zap.L().Error("task request failed",
			zap.String("path", c.FullPath()),
			zap.String("request_id", middleware.GetRequestID(c)),
			zap.Error(err),
		)
		_ = c.Error(err)
		h.abort(c, http.StatusInternalServerError, failMsg)
	}
}

func (h *TaskHandler) abort(c *gin.Context, code int, msgKey string) {
	c.AbortWithStatusJSON(code, apierrors.CreateError(code, msgKey, middleware.GetLang(c)))
}

func validationMessage(err *service.ValidationError) string {
	switch err.Field {
	case "title":
		if err.Rule == service.RuleRequired {
			return apierrors.MsgTitleRequired
		}
		return apierrors.MsgTitleTooLong
	case "priority":
		return apierrors.MsgInvalidPriority
	case "category":
		return apierrors.MsgInvalidCategory
	case "status":
		return apierrors.MsgInvalidStatus
	case "start", "end":
		return apierrors.MsgInvalidDateRange
	}
	return apierrors.MsgInvalidTaskPayload
}
