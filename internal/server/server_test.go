package server_test

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strconv"
	"strings"
	"testing"
	"time"

	"taskmanager/internal/config"
	"taskmanager/internal/handler"
	"taskmanager/internal/middleware"
	"taskmanager/internal/repository"
	"taskmanager/internal/server"
	"taskmanager/internal/service"
	"taskmanager/pkg/apierrors"
	"taskmanager/pkg/translator"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/suite"
	"go.uber.org/zap"
)

type TasksEndToEndSuite struct {
	suite.Suite
	router *gin.Engine
}

func TestTasksEndToEndSuite(t *testing.T) {
	suite.Run(t, new(TasksEndToEndSuite))
}

func (s *TasksEndToEndSuite) SetupSuite() {
	gin.SetMode(gin.TestMode)
	translator.InitTranslator(translator.Config{SupportedLanguages: server.SupportedLanguages})
}

func (s *TasksEndToEndSuite) SetupTest() {
	cfg := &config.Config{
		AppEnv:          "test",
		DefaultLanguage: translator.LanguageEn,
		RequestTimeout:  5 * time.Second,
	}
	store := repository.NewMemoryTaskRepository()
	s.router = server.NewRouter(cfg, service.NewTaskService(store), store, zap.NewNop())
}

func (s *TasksEndToEndSuite) do(method, path string, body any) *httptest.ResponseRecorder {
	var req *http.Request
	if body == nil {
		req = httptest.NewRequest(method, path, nil)
	} else {
		payload, err := json.Marshal(body)
		s.Require().NoError(err)
		req = httptest.NewRequest(method, path, bytes.NewReader(payload))
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func (s *TasksEndToEndSuite) create(body map[string]any) handler.TaskResponse {
	rec := s.do(http.MethodPost, "/tasks", body)
	s.Require().Equal(http.StatusCreated, rec.Code, rec.Body.String())
	var task handler.TaskResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &task))
	return task
}

func (s *TasksEndToEndSuite) decodeTask(rec *httptest.ResponseRecorder) handler.TaskResponse {
	var task handler.TaskResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &task))
	return task
}

func (s *TasksEndToEndSuite) decodeList(rec *httptest.ResponseRecorder) []handler.TaskResponse {
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	var tasks []handler.TaskResponse
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &tasks))
	return tasks
}

func ids(tasks []handler.TaskResponse) []uint64 {
	out := make([]uint64, 0, len(tasks))
	for _, t := range tasks {
		out = append(out, t.ID)
	}
	return out
}

func (s *TasksEndToEndSuite) TestCreate_TitleBoundaries() {
	rec := s.do(http.MethodPost, "/tasks", map[string]any{"title": ""})
	s.Equal(http.StatusBadRequest, rec.Code)

	rec = s.do(http.MethodPost, "/tasks", map[string]any{"title": strings.Repeat("x", 201)})
	s.Equal(http.StatusBadRequest, rec.Code)

	var got apierrors.JsonErr
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &got))
	s.Equal(http.StatusBadRequest, got.ErrDetails.Code)

	task := s.create(map[string]any{"title": strings.Repeat("x", 200)})
	s.NotZero(task.ID)
}

func (s *TasksEndToEndSuite) TestCreate_DefaultsAndRoundTrip() {
	created := s.create(map[string]any{
		"title":       "Write report",
		"description": "Quarterly numbers",
		"dueDate":     "2026-05-01",
	})

	s.Equal("MEDIUM", string(created.Priority))
	s.Equal("PERSONAL", string(created.Category))
	s.Equal("PENDING", string(created.Status))
	s.False(created.IsDeleted)
	s.Equal(created.CreatedAt, created.UpdatedAt)

	rec := s.do(http.MethodGet, "/tasks/"+itoa(created.ID), nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	got := s.decodeTask(rec)
	s.Equal(created.ID, got.ID)
	s.Equal("Write report", got.Title)
	s.Equal("Quarterly numbers", *got.Description)
	s.Equal("2026-05-01", got.DueDate.String())
	s.True(got.CreatedAt.Equal(created.CreatedAt))
	s.True(got.CreatedAt.Equal(got.UpdatedAt))
	s.Empty(got.SubTasks)
}

func (s *TasksEndToEndSuite) TestGetByID_Unknown() {
	rec := s.do(http.MethodGet, "/tasks/999", nil)
	s.Equal(http.StatusNotFound, rec.Code)

	rec = s.do(http.MethodGet, "/tasks/abc", nil)
	s.Equal(http.StatusBadRequest, rec.Code)
}

func (s *TasksEndToEndSuite) TestZeroIDIsAnUnknownTask() {
	s.Equal(http.StatusNotFound, s.do(http.MethodGet, "/tasks/0", nil).Code)
	s.Equal(http.StatusNotFound, s.do(http.MethodDelete, "/tasks/0", nil).Code)

	rec := s.do(http.MethodGet, "/tasks/0/subtasks", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	s.JSONEq(`[]`, rec.Body.String())
}

func (s *TasksEndToEndSuite) TestCreate_RejectsPlainTextBody() {
	req := httptest.NewRequest(http.MethodPost, "/tasks", strings.NewReader(`{"title":"x"}`))
	req.Header.Set("Content-Type", "text/plain")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	s.Equal(http.StatusBadRequest, rec.Code)
	s.Empty(s.decodeList(s.do(http.MethodGet, "/tasks", nil)))
}

func (s *TasksEndToEndSuite) TestSoftDeleteAndRestore() {
	task := s.create(map[string]any{"title": "Disposable"})
	path := "/tasks/" + itoa(task.ID)

	rec := s.do(http.MethodDelete, path, nil)
	s.Require().Equal(http.StatusNoContent, rec.Code)

	s.NotContains(ids(s.decodeList(s.do(http.MethodGet, "/tasks", nil))), task.ID)
	s.Contains(ids(s.decodeList(s.do(http.MethodGet, "/tasks/deleted", nil))), task.ID)

	rec = s.do(http.MethodGet, path, nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	deleted := s.decodeTask(rec)
	s.True(deleted.IsDeleted)
	s.True(deleted.UpdatedAt.After(task.UpdatedAt))

	rec = s.do(http.MethodPut, path+"/restore", nil)
	s.Require().Equal(http.StatusOK, rec.Code)
	restored := s.decodeTask(rec)
	s.False(restored.IsDeleted)

	s.Contains(ids(s.decodeList(s.do(http.MethodGet, "/tasks", nil))), task.ID)
	s.NotContains(ids(s.decodeList(s.do(http.MethodGet, "/tasks/deleted", nil))), task.ID)

	s.Equal(http.StatusNotFound, s.do(http.MethodDelete, "/tasks/999", nil).Code)
	s.Equal(http.StatusNotFound, s.do(http.MethodPut, "/tasks/999/restore", nil).Code)
}

func (s *TasksEndToEndSuite) TestUpdate_OverwritesAndKeepsIdentity() {
	parent := s.create(map[string]any{"title": "Parent"})
	task := s.create(map[string]any{
		"title":        "Child",
		"description":  "old",
		"dueDate":      "2026-01-10",
		"priority":     "HIGH",
		"category":     "WORK",
		"status":       "IN_PROGRESS",
		"parentTaskId": parent.ID,
	})

	rec := s.do(http.MethodPut, "/tasks/"+itoa(task.ID), map[string]any{
		"title":        "Child renamed",
		"priority":     "LOW",
		"category":     "HEALTH",
		"status":       "COMPLETED",
		"parentTaskId": 12345,
		"isDeleted":    true,
	})
	s.Require().Equal(http.StatusOK, rec.Code, rec.Body.String())
	updated := s.decodeTask(rec)

	s.Equal(task.ID, updated.ID)
	s.Equal("Child renamed", updated.Title)
	s.Nil(updated.Description)
	s.Nil(updated.DueDate)
	s.Equal("LOW", string(updated.Priority))
	s.Equal("HEALTH", string(updated.Category))
	s.Equal("COMPLETED", string(updated.Status))
	s.Equal(parent.ID, *updated.ParentTaskID)
	s.False(updated.IsDeleted)
	s.True(updated.CreatedAt.Equal(task.CreatedAt))
	s.True(updated.UpdatedAt.After(task.UpdatedAt))

	rec = s.do(http.MethodPut, "/tasks/999", map[string]any{"title": "x"})
	s.Equal(http.StatusNotFound, rec.Code)
}

func (s *TasksEndToEndSuite) TestListByStatusAndCategory() {
	a := s.create(map[string]any{"title": "a", "status": "PENDING", "category": "WORK"})
	b := s.create(map[string]any{"title": "b", "status": "COMPLETED", "category": "WORK"})
	c := s.create(map[string]any{"title": "c", "category": "SHOPPING"})

	upper := s.decodeList(s.do(http.MethodGet, "/tasks/status/PENDING", nil))
	lower := s.decodeList(s.do(http.MethodGet, "/tasks/status/pending", nil))
	s.Equal([]uint64{a.ID, c.ID}, ids(upper))
	s.Equal(ids(upper), ids(lower))

	s.Equal([]uint64{a.ID, b.ID}, ids(s.decodeList(s.do(http.MethodGet, "/tasks/category/work", nil))))

	s.Equal(http.StatusBadRequest, s.do(http.MethodGet, "/tasks/status/bogus", nil).Code)
	s.Equal(http.StatusBadRequest, s.do(http.MethodGet, "/tasks/category/bogus", nil).Code)
}

func (s *TasksEndToEndSuite) TestSearch() {
	byTitle := s.create(map[string]any{"title": "Describe the API"})
	byDescription := s.create(map[string]any{"title": "Other", "description": "Long DESCRIPTION"})
	s.create(map[string]any{"title": "Groceries"})
	literal := s.create(map[string]any{"title": "100% done"})

	s.Equal([]uint64{byTitle.ID, byDescription.ID}, ids(s.decodeList(s.do(http.MethodGet, "/tasks/search?keyword=desc", nil))))
	s.Equal([]uint64{literal.ID}, ids(s.decodeList(s.do(http.MethodGet, "/tasks/search?keyword=%25", nil))))
	s.Empty(s.decodeList(s.do(http.MethodGet, "/tasks/search?keyword=zzz", nil)))
	s.Equal(http.StatusBadRequest, s.do(http.MethodGet, "/tasks/search", nil).Code)
}

func (s *TasksEndToEndSuite) TestSubTasksScenario() {
	a := s.create(map[string]any{"title": "A"})
	b := s.create(map[string]any{"title": "B", "parentTaskId": a.ID})

	subtasksPath := "/tasks/" + itoa(a.ID) + "/subtasks"
	s.Equal([]uint64{b.ID}, ids(s.decodeList(s.do(http.MethodGet, subtasksPath, nil))))

	roots := s.decodeList(s.do(http.MethodGet, "/tasks", nil))
	s.Equal([]uint64{a.ID}, ids(roots))
	s.Equal([]uint64{b.ID}, ids(roots[0].SubTasks))

	s.Require().Equal(http.StatusNoContent, s.do(http.MethodDelete, "/tasks/"+itoa(b.ID), nil).Code)
	s.Empty(s.decodeList(s.do(http.MethodGet, subtasksPath, nil)))

	s.Empty(s.decodeList(s.do(http.MethodGet, "/tasks/4242/subtasks", nil)))
}

func (s *TasksEndToEndSuite) TestRootListNewestFirst() {
	first := s.create(map[string]any{"title": "first"})
	second := s.create(map[string]any{"title": "second"})
	third := s.create(map[string]any{"title": "third"})

	s.Equal([]uint64{third.ID, second.ID, first.ID}, ids(s.decodeList(s.do(http.MethodGet, "/tasks", nil))))
}

func (s *TasksEndToEndSuite) TestDeletedNewestUpdatedFirst() {
	first := s.create(map[string]any{"title": "first"})
	second := s.create(map[string]any{"title": "second"})

	s.do(http.MethodDelete, "/tasks/"+itoa(second.ID), nil)
	s.do(http.MethodDelete, "/tasks/"+itoa(first.ID), nil)

	s.Equal([]uint64{first.ID, second.ID}, ids(s.decodeList(s.do(http.MethodGet, "/tasks/deleted", nil))))
}

func (s *TasksEndToEndSuite) TestDueDateRange() {
	s.create(map[string]any{"title": "feb", "dueDate": "2026-02-28"})
	start := s.create(map[string]any{"title": "start", "dueDate": "2026-03-01"})
	end := s.create(map[string]any{"title": "end", "dueDate": "2026-03-31"})
	s.create(map[string]any{"title": "none"})

	s.Equal([]uint64{start.ID, end.ID}, ids(s.decodeList(s.do(http.MethodGet, "/tasks/due?start=2026-03-01&end=2026-03-31", nil))))
	s.Equal(http.StatusBadRequest, s.do(http.MethodGet, "/tasks/due?start=2026-03-31&end=2026-03-01", nil).Code)
	s.Equal(http.StatusBadRequest, s.do(http.MethodGet, "/tasks/due", nil).Code)
}

func (s *TasksEndToEndSuite) TestLocalizedErrors() {
	req := httptest.NewRequest(http.MethodGet, "/tasks/999", nil)
	req.Header.Set("Accept-Language", "ru")
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)

	var got apierrors.JsonErr
	s.Require().NoError(json.Unmarshal(rec.Body.Bytes(), &got))
	s.Equal("Задача не найдена.", got.ErrDetails.Message)
}

func (s *TasksEndToEndSuite) TestHealthAndRequestID() {
	rec := s.do(http.MethodGet, "/health", nil)
	s.Equal(http.StatusOK, rec.Code)
	s.NotEmpty(rec.Header().Get(middleware.RequestIDHeader))
}

func itoa(id uint64) string {
	return strconv.FormatUint(id, 10)
}
