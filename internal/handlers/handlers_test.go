package handlers_test

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"taskFlow/internal/handlers"
	"taskFlow/internal/handlers/dto"
	"taskFlow/internal/metrics"
	"taskFlow/internal/models/category"
	"taskFlow/internal/models/task"
	"taskFlow/internal/models/user"
	"taskFlow/internal/service"
	"taskFlow/internal/stats"

	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2024, 5, 15, 12, 0, 0, 0, time.UTC)

type testServer struct {
	tasks      *MockTaskService
	categories *MockCategoryService
	stats      *MockStatsService
	users      *MockUserService
	owner      uuid.UUID
	handler    http.Handler
}

func newTestServer() *testServer {
	s := &testServer{
		tasks:      new(MockTaskService),
		categories: new(MockCategoryService),
		stats:      new(MockStatsService),
		users:      new(MockUserService),
		owner:      uuid.New(),
	}
	s.handler = handlers.NewRouter(handlers.RouterConfig{
		Tasks:      s.tasks,
		Categories: s.categories,
		Stats:      s.stats,
		Users:      s.users,
		Tokens:     staticTokens{owner: s.owner},
		Metrics:    metrics.New(),
	})
	return s
}

func (s *testServer) request(method, path, body, token string) *httptest.ResponseRecorder {
	var reader *bytes.Buffer
	if body != "" {
		reader = bytes.NewBufferString(body)
	} else {
		reader = &bytes.Buffer{}
	}
	req := httptest.NewRequest(method, path, reader)
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	w := httptest.NewRecorder()
	s.handler.ServeHTTP(w, req)
	return w
}

func (s *testServer) do(method, path, body string) *httptest.ResponseRecorder {
	return s.request(method, path, body, "good")
}

func (s *testServer) assertExpectations(t *testing.T) {
	s.tasks.AssertExpectations(t)
	s.categories.AssertExpectations(t)
	s.stats.AssertExpectations(t)
	s.users.AssertExpectations(t)
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.NewDecoder(w.Body).Decode(&body))
	return body
}

// assertValidation проверяет ответ VALIDATION_ERROR с полем field
func assertValidation(t *testing.T, w *httptest.ResponseRecorder, field string) {
	t.Helper()
	require.Equal(t, http.StatusBadRequest, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, service.CodeValidation, body["error"])
	details, ok := body["details"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, field, details["field"])
}

func sampleTask(owner uuid.UUID) *task.Task {
	due := fixedNow.Add(36 * time.Hour)
	work := task.CategoryWork
	return &task.Task{
		ID:        uuid.New(),
		OwnerID:   owner,
		Title:     "Купить молоко",
		DueDate:   &due,
		Priority:  task.PriorityHigh,
		Category:  &work,
		CreatedAt: fixedNow,
		UpdatedAt: fixedNow,
		Version:   1,
	}
}

// TestTaskHandler_HealthCheck тестирует HealthCheck
func TestTaskHandler_HealthCheck(t *testing.T) {
	tests := []struct {
		name           string
		setupMock      func(*MockTaskService)
		expectedStatus int
	}{
		{
			name: "success - healthy",
			setupMock: func(m *MockTaskService) {
				m.On("HealthCheck", mock.Anything).Return(nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name: "error - unhealthy",
			setupMock: func(m *MockTaskService) {
				m.On("HealthCheck", mock.Anything).Return(errors.New("service unavailable"))
			},
			expectedStatus: http.StatusServiceUnavailable,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			mockService := new(MockTaskService)
			tt.setupMock(mockService)

			handler := handlers.NewTaskHandler(mockService, nil)

			req := httptest.NewRequest("GET", "/health", nil)
			w := httptest.NewRecorder()

			handler.HealthCheck(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)
			assert.Contains(t, w.Body.String(), "taskflow")

			mockService.AssertExpectations(t)
		})
	}
}

// TestTaskHandler_PostTask тестирует создание задачи
func TestTaskHandler_PostTask(t *testing.T) {
	tests := []struct {
		name           string
		requestBody    string
		contentType    string
		token          string
		setupMock      func(*testServer)
		expectedStatus int
		expectedField  string
	}{
		{
			name:        "success - create task",
			requestBody: `{"title": "Купить молоко", "priority": "high", "category": "work"}`,
			contentType: "application/json",
			token:       "good",
			setupMock: func(s *testServer) {
				work := task.CategoryWork
				s.tasks.On("CreateTask", mock.Anything, s.owner, task.Draft{
					Title:    "Купить молоко",
					Priority: task.PriorityHigh,
					Category: &work,
				}).Return(sampleTask(s.owner), nil)
			},
			expectedStatus: http.StatusCreated,
		},
		{
			name:           "error - no token",
			requestBody:    `{"title": "Купить молоко"}`,
			contentType:    "application/json",
			setupMock:      func(s *testServer) {},
			expectedStatus: http.StatusUnauthorized,
		},
		{
			name:           "error - invalid content type",
			requestBody:    `{}`,
			contentType:    "text/plain",
			token:          "good",
			setupMock:      func(s *testServer) {},
			expectedStatus: http.StatusUnsupportedMediaType,
		},
		{
			name:           "error - invalid JSON",
			requestBody:    `{invalid json}`,
			contentType:    "application/json",
			token:          "good",
			setupMock:      func(s *testServer) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:           "error - missing title",
			requestBody:    `{"description": "без названия"}`,
			contentType:    "application/json",
			token:          "good",
			setupMock:      func(s *testServer) {},
			expectedStatus: http.StatusBadRequest,
			expectedField:  "title",
		},
		{
			name:        "error - foreign custom category",
			requestBody: `{"title": "Купить молоко", "custom_category": "` + uuid.NewString() + `"}`,
			contentType: "application/json",
			token:       "good",
			setupMock: func(s *testServer) {
				s.tasks.On("CreateTask", mock.Anything, s.owner, mock.Anything).
					Return(nil, service.NewValidationError("custom_category", "категория не найдена"))
			},
			expectedStatus: http.StatusBadRequest,
			expectedField:  "custom_category",
		},
		{
			name:        "error - service error",
			requestBody: `{"title": "Купить молоко"}`,
			contentType: "application/json",
			token:       "good",
			setupMock: func(s *testServer) {
				s.tasks.On("CreateTask", mock.Anything, s.owner, mock.Anything).
					Return(nil, errors.New("connection reset"))
			},
			expectedStatus: http.StatusInternalServerError,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer()
			tt.setupMock(s)

			req := httptest.NewRequest("POST", "/api/tasks", bytes.NewBufferString(tt.requestBody))
			req.Header.Set("Content-Type", tt.contentType)
			if tt.token != "" {
				req.Header.Set("Authorization", "Bearer "+tt.token)
			}
			w := httptest.NewRecorder()
			s.handler.ServeHTTP(w, req)

			assert.Equal(t, tt.expectedStatus, w.Code)

			if tt.expectedField != "" {
				assertValidation(t, w, tt.expectedField)
			}
			if tt.expectedStatus == http.StatusCreated {
				var response dto.TaskResponse
				require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
				assert.Equal(t, "Купить молоко", response.Title)
				assert.False(t, response.IsOverdue)
				require.NotNil(t, response.DaysUntilDue)
				assert.Equal(t, 1, *response.DaysUntilDue)
				assert.Equal(t, task.EffectiveDefault, response.EffectiveCategory.Type)
				assert.Equal(t, "Work", response.EffectiveCategory.Name)
			}

			s.assertExpectations(t)
		})
	}
}

// TestTaskHandler_GetTaskByID тестирует получение задачи по ID
func TestTaskHandler_GetTaskByID(t *testing.T) {
	taskID := uuid.New()

	tests := []struct {
		name           string
		taskID         string
		setupMock      func(*testServer)
		expectedStatus int
	}{
		{
			name:   "success - get task",
			taskID: taskID.String(),
			setupMock: func(s *testServer) {
				t := sampleTask(s.owner)
				t.ID = taskID
				s.tasks.On("GetTask", mock.Anything, s.owner, taskID).Return(t, nil)
			},
			expectedStatus: http.StatusOK,
		},
		{
			name:           "error - invalid UUID",
			taskID:         "invalid-uuid",
			setupMock:      func(s *testServer) {},
			expectedStatus: http.StatusBadRequest,
		},
		{
			name:   "error - foreign task is not found",
			taskID: taskID.String(),
			setupMock: func(s *testServer) {
				s.tasks.On("GetTask", mock.Anything, s.owner, taskID).
					Return(nil, service.NewNotFound(service.ResourceTask, taskID.String()))
			},
			expectedStatus: http.StatusNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := newTestServer()
			tt.setupMock(s)

			w := s.do("GET", "/api/tasks/"+tt.taskID, "")

			assert.Equal(t, tt.expectedStatus, w.Code)
			if tt.expectedStatus == http.StatusOK {
				body := decodeBody(t, w)
				assert.Equal(t, taskID.String(), body["id"])
				assert.Equal(t, s.owner.String(), body["owner"])
				assert.Contains(t, body, "effective_category")
				assert.Contains(t, body, "days_until_due")
			}
			if tt.expectedStatus == http.StatusNotFound {
				assert.Equal(t, service.CodeNotFound, decodeBody(t, w)["error"])
			}
			s.assertExpectations(t)
		})
	}
}

// TestTaskHandler_UpdateTask_Partial тестирует PATCH: отсутствующие поля
// не меняются, null снимает дедлайн
func TestTaskHandler_UpdateTask_Partial(t *testing.T) {
	s := newTestServer()
	taskID := uuid.New()

	appliesPatch := mock.MatchedBy(func(opts []task.TaskOption) bool {
		due := fixedNow
		current := &task.Task{Title: "Старое", Description: "описание", DueDate: &due, Priority: task.PriorityLow}
		task.Apply(current, opts...)
		return current.Title == "Новое название" &&
			current.DueDate == nil &&
			current.Description == "описание" &&
			current.Priority == task.PriorityLow
	})

	updated := sampleTask(s.owner)
	updated.ID = taskID
	updated.DueDate = nil
	s.tasks.On("UpdateTask", mock.Anything, s.owner, taskID, appliesPatch).Return(updated, nil)

	w := s.do("PATCH", "/api/tasks/"+taskID.String(), `{"title": "Новое название", "due_date": null}`)

	require.Equal(t, http.StatusOK, w.Code)
	var response dto.TaskResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Nil(t, response.DueDate)
	assert.Nil(t, response.DaysUntilDue)
	s.assertExpectations(t)
}

// TestTaskHandler_UpdateTask_Errors тестирует ошибки обновления
func TestTaskHandler_UpdateTask_Errors(t *testing.T) {
	taskID := uuid.New()

	t.Run("null priority", func(t *testing.T) {
		s := newTestServer()
		w := s.do("PUT", "/api/tasks/"+taskID.String(), `{"priority": null}`)
		assertValidation(t, w, "priority")
		s.assertExpectations(t)
	})

	t.Run("version conflict", func(t *testing.T) {
		s := newTestServer()
		s.tasks.On("UpdateTask", mock.Anything, s.owner, taskID, mock.Anything).
			Return(nil, service.NewVersionConflict(service.ResourceTask, taskID.String()))

		w := s.do("PATCH", "/api/tasks/"+taskID.String(), `{"is_completed": true}`)
		assert.Equal(t, http.StatusConflict, w.Code)
		assert.Equal(t, service.CodeVersionConflict, decodeBody(t, w)["error"])
	})
}

// TestTaskHandler_DeleteAndToggle тестирует удаление и переключение статуса
func TestTaskHandler_DeleteAndToggle(t *testing.T) {
	s := newTestServer()
	taskID := uuid.New()

	s.tasks.On("DeleteTask", mock.Anything, s.owner, taskID).Return(nil)
	toggled := sampleTask(s.owner)
	toggled.ID = taskID
	toggled.IsCompleted = true
	toggled.CompletedAt = &fixedNow
	s.tasks.On("ToggleTask", mock.Anything, s.owner, taskID).Return(toggled, nil)

	w := s.do("DELETE", "/api/tasks/"+taskID.String(), "")
	assert.Equal(t, http.StatusNoContent, w.Code)

	w = s.do("POST", "/api/tasks/"+taskID.String()+"/toggle", "")
	require.Equal(t, http.StatusOK, w.Code)
	var response dto.TaskResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.True(t, response.IsCompleted)
	assert.NotNil(t, response.CompletedAt)

	s.assertExpectations(t)
}

// TestTaskHandler_GetTasks_Filter тестирует разбор query-параметров
func TestTaskHandler_GetTasks_Filter(t *testing.T) {
	s := newTestServer()

	matchesQuery := mock.MatchedBy(func(f task.Filter) bool {
		return f.Priority != nil && *f.Priority == task.PriorityHigh &&
			f.IsCompleted != nil && !*f.IsCompleted &&
			f.Search == "milk" &&
			f.Due == task.DueOverdue &&
			f.Order == task.Ordering{Field: task.OrderPriority, Desc: true} &&
			f.Limit == 10 && f.Offset == 10
	})
	s.tasks.On("ListTasks", mock.Anything, s.owner, matchesQuery).
		Return([]*task.Task{sampleTask(s.owner)}, nil)

	w := s.do("GET", "/api/tasks?priority=high&status=pending&search=%20milk%20&due=overdue&ordering=-priority&page=2&limit=10", "")

	require.Equal(t, http.StatusOK, w.Code)
	var response []dto.TaskResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Len(t, response, 1)
	s.assertExpectations(t)
}

// TestTaskHandler_GetTasks_UnknownOrdering тестирует откат к -created_at
func TestTaskHandler_GetTasks_UnknownOrdering(t *testing.T) {
	s := newTestServer()
	s.tasks.On("ListTasks", mock.Anything, s.owner, mock.MatchedBy(func(f task.Filter) bool {
		return f.Order == task.DefaultOrdering && f.Limit == 0
	})).Return([]*task.Task{}, nil)

	w := s.do("GET", "/api/tasks?ordering=-owner", "")

	assert.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `[]`, w.Body.String())
	s.assertExpectations(t)
}

// TestTaskHandler_GetTasks_InvalidQuery тестирует отказ на неизвестные значения
func TestTaskHandler_GetTasks_InvalidQuery(t *testing.T) {
	tests := []struct {
		query string
		field string
	}{
		{"priority=urgent", "priority"},
		{"category=hobby", "category"},
		{"status=done", "status"},
		{"is_completed=maybe", "is_completed"},
		{"due=tomorrow", "due"},
		{"limit=0", "limit"},
		{"limit=1000", "limit"},
		{"page=-1", "page"},
	}

	for _, tt := range tests {
		t.Run(tt.query, func(t *testing.T) {
			s := newTestServer()
			w := s.do("GET", "/api/tasks?"+tt.query, "")
			assertValidation(t, w, tt.field)
			s.assertExpectations(t)
		})
	}
}

// TestTaskHandler_BulkComplete тестирует массовое завершение
func TestTaskHandler_BulkComplete(t *testing.T) {
	a, b := uuid.New(), uuid.New()

	t.Run("success", func(t *testing.T) {
		s := newTestServer()
		s.tasks.On("BulkSetCompleted", mock.Anything, s.owner, []uuid.UUID{a, b}, true).Return(2, nil)

		body := `{"task_ids": ["` + a.String() + `", "` + b.String() + `"]}`
		w := s.do("POST", "/api/tasks/bulk-complete", body)

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, float64(2), decodeBody(t, w)["updated_count"])
		s.assertExpectations(t)
	})

	t.Run("reopen", func(t *testing.T) {
		s := newTestServer()
		s.tasks.On("BulkSetCompleted", mock.Anything, s.owner, []uuid.UUID{a}, false).Return(1, nil)

		w := s.do("PATCH", "/api/tasks/bulk-complete", `{"task_ids": ["`+a.String()+`"], "is_completed": false}`)
		assert.Equal(t, http.StatusOK, w.Code)
		s.assertExpectations(t)
	})

	t.Run("missing ids", func(t *testing.T) {
		s := newTestServer()
		assertValidation(t, s.do("POST", "/api/tasks/bulk-complete", `{"is_completed": true}`), "task_ids")
		assertValidation(t, s.do("POST", "/api/tasks/bulk-complete", `{"task_ids": []}`), "task_ids")
		s.assertExpectations(t)
	})

	t.Run("only foreign ids", func(t *testing.T) {
		s := newTestServer()
		s.tasks.On("BulkSetCompleted", mock.Anything, s.owner, []uuid.UUID{a}, true).
			Return(0, service.NewBusinessError(service.CodeNotFound, "Подходящие задачи не найдены"))

		w := s.do("POST", "/api/tasks/bulk-complete", `{"task_ids": ["`+a.String()+`"]}`)
		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

// TestTaskHandler_GetUrgentTasks тестирует сводку по объединению множеств
func TestTaskHandler_GetUrgentTasks(t *testing.T) {
	s := newTestServer()
	past := fixedNow.Add(-48 * time.Hour)

	high := sampleTask(s.owner)
	overdue := sampleTask(s.owner)
	overdue.Priority = task.PriorityMedium
	overdue.DueDate = &past
	both := sampleTask(s.owner)
	both.DueDate = &past

	s.tasks.On("UrgentTasks", mock.Anything, s.owner, 0).
		Return([]*task.Task{both, overdue, high}, nil)

	w := s.do("GET", "/api/tasks/urgent?limit=1", "")

	require.Equal(t, http.StatusOK, w.Code)
	var response dto.UrgentResponse
	require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
	assert.Equal(t, dto.UrgentSummary{TotalUrgent: 3, HighPriority: 2, Overdue: 2}, response.Summary)
	require.Len(t, response.Tasks, 1)
	assert.Equal(t, both.ID, response.Tasks[0].ID)
	assert.True(t, response.Tasks[0].IsOverdue)
	s.assertExpectations(t)
}

// TestTaskHandler_GetCalendar тестирует границы периода календаря
func TestTaskHandler_GetCalendar(t *testing.T) {
	t.Run("date bounds", func(t *testing.T) {
		s := newTestServer()
		wantFrom := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
		wantTo := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC).Add(-time.Nanosecond)

		s.tasks.On("CalendarEvents", mock.Anything, s.owner,
			mock.MatchedBy(func(from time.Time) bool { return from.Equal(wantFrom) }),
			mock.MatchedBy(func(to time.Time) bool { return to.Equal(wantTo) }),
		).Return([]service.CalendarEvent{{ID: "task_1", Color: service.ColorPriorityHigh}}, nil)

		w := s.do("GET", "/api/tasks/calendar?start=2024-05-01&end=2024-05-31", "")

		require.Equal(t, http.StatusOK, w.Code)
		var events []service.CalendarEvent
		require.NoError(t, json.NewDecoder(w.Body).Decode(&events))
		require.Len(t, events, 1)
		assert.Equal(t, service.ColorPriorityHigh, events[0].Color)
		s.assertExpectations(t)
	})

	t.Run("bad start", func(t *testing.T) {
		s := newTestServer()
		assertValidation(t, s.do("GET", "/api/tasks/calendar?start=yesterday", ""), "start")
	})

	t.Run("end before start", func(t *testing.T) {
		s := newTestServer()
		s.tasks.On("CalendarEvents", mock.Anything, s.owner, mock.Anything, mock.Anything).
			Return(nil, service.NewValidationError("end", "конец периода раньше начала"))
		assertValidation(t, s.do("GET", "/api/tasks/calendar?start=2024-05-10&end=2024-05-01", ""), "end")
	})
}

// TestCategoryHandler тестирует CRUD категорий
func TestCategoryHandler(t *testing.T) {
	catID := uuid.New()

	t.Run("create", func(t *testing.T) {
		s := newTestServer()
		s.categories.On("CreateCategory", mock.Anything, s.owner, service.CategoryDraft{Name: "my work"}).
			Return(&category.Category{ID: catID, Name: "My Work", Color: category.DefaultColor}, nil)

		w := s.do("POST", "/api/categories", `{"name": "my work"}`)

		require.Equal(t, http.StatusCreated, w.Code)
		var response dto.CategoryResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, "My Work", response.Name)
		assert.Equal(t, category.DefaultColor, response.Color)
		s.assertExpectations(t)
	})

	t.Run("bad color", func(t *testing.T) {
		s := newTestServer()
		assertValidation(t, s.do("POST", "/api/categories", `{"name": "Work", "color": "red"}`), "color")
		s.assertExpectations(t)
	})

	t.Run("list with counts", func(t *testing.T) {
		s := newTestServer()
		s.categories.On("ListCategories", mock.Anything, s.owner).
			Return([]*category.Category{{ID: catID, Name: "Work", TaskCount: 4}}, nil)

		w := s.do("GET", "/api/categories", "")

		require.Equal(t, http.StatusOK, w.Code)
		var response []dto.CategoryResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		require.Len(t, response, 1)
		assert.Equal(t, 4, response[0].TaskCount)
	})

	t.Run("partial update", func(t *testing.T) {
		s := newTestServer()
		color := "#FF0000"
		s.categories.On("UpdateCategory", mock.Anything, s.owner, catID, service.CategoryPatch{Color: &color}).
			Return(&category.Category{ID: catID, Name: "Work", Color: color}, nil)

		w := s.do("PATCH", "/api/categories/"+catID.String(), `{"color": "#FF0000"}`)
		assert.Equal(t, http.StatusOK, w.Code)
		s.assertExpectations(t)
	})

	t.Run("delete in use", func(t *testing.T) {
		s := newTestServer()
		s.categories.On("DeleteCategory", mock.Anything, s.owner, catID).
			Return(service.NewCategoryInUse("Work", 3))

		counter := metrics.New().BusinessErrorsTotal.WithLabelValues(service.CodeCategoryInUse)
		before := testutil.ToFloat64(counter)

		w := s.do("DELETE", "/api/categories/"+catID.String(), "")

		require.Equal(t, http.StatusConflict, w.Code)
		body := decodeBody(t, w)
		assert.Equal(t, service.CodeCategoryInUse, body["error"])
		details := body["details"].(map[string]any)
		assert.Equal(t, "Work", details["category"])
		assert.Equal(t, float64(3), details["task_count"])
		assert.Equal(t, before+1, testutil.ToFloat64(counter))
	})

	t.Run("delete", func(t *testing.T) {
		s := newTestServer()
		s.categories.On("DeleteCategory", mock.Anything, s.owner, catID).Return(nil)
		assert.Equal(t, http.StatusNoContent, s.do("DELETE", "/api/categories/"+catID.String(), "").Code)
	})
}

// TestStatsHandler тестирует выдачу статистики и dashboard
func TestStatsHandler(t *testing.T) {
	s := newTestServer()
	past := fixedNow.Add(-time.Hour)
	overdue := sampleTask(s.owner)
	overdue.DueDate = &past

	overview := stats.Overview{
		Summary: stats.Summary{Total: 3, Completed: 1, Pending: 2, CompletionRate: 33.3},
		Urgent:  stats.UrgentCounts{Total: 1, HighPriority: 1, Overdue: 1},
	}
	s.stats.On("Overview", mock.Anything, s.owner).Return(overview, nil)
	s.stats.On("ByPriority", mock.Anything, s.owner).
		Return([]stats.PriorityStats{{Priority: task.PriorityHigh, Name: "High"}}, nil)
	s.stats.On("ByCategory", mock.Anything, s.owner).Return(stats.CategoryBreakdown{}, nil)
	s.stats.On("Dashboard", mock.Anything, s.owner).Return(stats.Dashboard{
		Overview:    overview,
		RecentTasks: []*task.Task{overdue},
		UrgentTasks: []*task.Task{overdue},
	}, nil)

	w := s.do("GET", "/api/tasks/stats", "")
	require.Equal(t, http.StatusOK, w.Code)
	body := decodeBody(t, w)
	assert.Equal(t, 33.3, body["completion_rate"])
	assert.Equal(t, float64(3), body["total_tasks"])

	assert.Equal(t, http.StatusOK, s.do("GET", "/api/tasks/stats/priorities", "").Code)
	assert.Equal(t, http.StatusOK, s.do("GET", "/api/tasks/stats/categories", "").Code)

	w = s.do("GET", "/api/tasks/dashboard", "")
	require.Equal(t, http.StatusOK, w.Code)
	var dashboard struct {
		Overview    map[string]any     `json:"overview"`
		RecentTasks []dto.TaskResponse `json:"recent_tasks"`
	}
	require.NoError(t, json.NewDecoder(w.Body).Decode(&dashboard))
	assert.Equal(t, 33.3, dashboard.Overview["completion_rate"])
	require.Len(t, dashboard.RecentTasks, 1)
	assert.True(t, dashboard.RecentTasks[0].IsOverdue)

	s.assertExpectations(t)
}

// TestStatsHandler_StoreFailure тестирует 500 при сбое хранилища
func TestStatsHandler_StoreFailure(t *testing.T) {
	s := newTestServer()
	s.stats.On("Overview", mock.Anything, s.owner).Return(stats.Overview{}, errors.New("timeout"))

	w := s.do("GET", "/api/tasks/stats", "")
	assert.Equal(t, http.StatusInternalServerError, w.Code)
}

// TestAuthHandler тестирует регистрацию, вход и профиль
func TestAuthHandler(t *testing.T) {
	u := &user.User{ID: uuid.New(), Username: "ivan", Email: "ivan@example.com", FirstName: "Иван"}

	t.Run("register", func(t *testing.T) {
		s := newTestServer()
		s.users.On("Register", mock.Anything, mock.MatchedBy(func(r service.Registration) bool {
			return r.Username == "ivan" && r.PasswordConfirm == "s3cret-pass"
		})).Return(&service.Account{User: u, Profile: user.NewProfile(u.ID, fixedNow)}, nil)

		body := `{"username": "ivan", "email": "ivan@example.com", "password": "s3cret-pass", "password_confirm": "s3cret-pass"}`
		w := s.request("POST", "/api/auth/register", body, "")

		require.Equal(t, http.StatusCreated, w.Code)
		var response dto.ProfileResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, "ivan", response.User.Username)
		assert.True(t, response.Profile.IsProfilePublic)
		s.assertExpectations(t)
	})

	t.Run("register bad email", func(t *testing.T) {
		s := newTestServer()
		body := `{"username": "ivan", "email": "not-an-email", "password": "s3cret-pass", "password_confirm": "s3cret-pass"}`
		assertValidation(t, s.request("POST", "/api/auth/register", body, ""), "email")
		s.assertExpectations(t)
	})

	t.Run("login", func(t *testing.T) {
		s := newTestServer()
		expires := fixedNow.Add(time.Hour)
		s.users.On("Login", mock.Anything, "ivan@example.com", "s3cret-pass").
			Return(&service.Session{Token: "jwt", ExpiresAt: expires, User: u}, nil)

		w := s.request("POST", "/api/auth/login", `{"email": "ivan@example.com", "password": "s3cret-pass"}`, "")

		require.Equal(t, http.StatusOK, w.Code)
		var response dto.LoginResponse
		require.NoError(t, json.NewDecoder(w.Body).Decode(&response))
		assert.Equal(t, "jwt", response.Token)
		assert.Equal(t, u.ID, response.User.ID)
	})

	t.Run("login invalid credentials", func(t *testing.T) {
		s := newTestServer()
		s.users.On("Login", mock.Anything, "ivan@example.com", "wrong").
			Return(nil, service.NewInvalidCredentials())

		w := s.request("POST", "/api/auth/login", `{"email": "ivan@example.com", "password": "wrong"}`, "")

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Equal(t, service.CodeInvalidCredentials, decodeBody(t, w)["error"])
	})

	t.Run("profile requires token", func(t *testing.T) {
		s := newTestServer()
		assert.Equal(t, http.StatusUnauthorized, s.request("GET", "/api/auth/profile", "", "").Code)
		assert.Equal(t, http.StatusUnauthorized, s.request("GET", "/api/auth/profile", "", "bad").Code)
	})

	t.Run("profile", func(t *testing.T) {
		s := newTestServer()
		s.users.On("Profile", mock.Anything, s.owner).
			Return(&service.Account{User: u, Profile: user.NewProfile(u.ID, fixedNow)}, nil)

		w := s.do("GET", "/api/auth/profile", "")
		require.Equal(t, http.StatusOK, w.Code)
		s.assertExpectations(t)
	})
}

// TestRouter_Metrics тестирует выдачу метрик Prometheus
func TestRouter_Metrics(t *testing.T) {
	s := newTestServer()
	s.tasks.On("HealthCheck", mock.Anything).Return(nil)

	require.Equal(t, http.StatusOK, s.request("GET", "/health", "", "").Code)

	w := s.request("GET", "/metrics", "", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "taskflow_http_requests_total")
}
