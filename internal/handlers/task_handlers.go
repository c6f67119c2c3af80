package handlers

import (
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"taskFlow/internal/handlers/dto"
	"taskFlow/internal/logger"
	"taskFlow/internal/metrics"
	"taskFlow/internal/middleware"
	"taskFlow/internal/models/task"
	"taskFlow/internal/service"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
	// DefaultUrgentLimit - 0 значит весь список
	DefaultUrgentLimit = 0
)

type TaskHandler struct {
	base
	TaskService TaskService
}

func NewTaskHandler(taskService TaskService, m *metrics.Metrics) *TaskHandler {
	return &TaskHandler{
		base:        base{metrics: m},
		TaskService: taskService,
	}
}

func (s *TaskHandler) HealthCheck(w http.ResponseWriter, r *http.Request) {
	if err := s.TaskService.HealthCheck(r.Context()); err != nil {
		logger.Error("HTTP: Хранилище недоступно", err)
		responseWithJSON(w, http.StatusServiceUnavailable,
			toPayload("status", "unhealthy"),
			toPayload("service", "taskflow"),
			toPayload("error", err.Error()))
		return
	}
	responseWithJSON(w, http.StatusOK,
		toPayload("status", "healthy"),
		toPayload("service", "taskflow"),
		toPayload("time", s.TaskService.Now().Format(time.RFC3339)))
}

func (s *TaskHandler) PostTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}

	var request dto.CreateTaskRequest
	if !s.decodeJSON(w, r, &request) {
		return
	}

	draft := task.Draft{
		Title:            request.Title,
		Description:      request.Description,
		DueDate:          request.DueDate,
		CustomCategoryID: request.CustomCategory,
	}
	if request.Priority != "" {
		draft.Priority, _ = task.ParsePriority(request.Priority)
	}
	draft.Category = parseCategoryInput(request.Category)

	logger.Info("HTTP: Вызов сервиса создания задачи")
	created, err := s.TaskService.CreateTask(r.Context(), owner, draft)
	if err != nil {
		s.handleServiceError(w, r, err, "не удалось создать задачу")
		return
	}

	logger.Info("HTTP_OUT: Задача создана",
		zap.String("task_id", created.ID.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	responseWithBody(w, http.StatusCreated, dto.FromTask(created, s.TaskService.Now()))
}

func (s *TaskHandler) GetTasks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}

	filter, err := parseTaskFilter(r.URL.Query())
	if err != nil {
		s.handleServiceError(w, r, err, "неверные параметры запроса")
		return
	}

	tasks, err := s.TaskService.ListTasks(r.Context(), owner, filter)
	if err != nil {
		s.handleServiceError(w, r, err, "не удалось получить задачи")
		return
	}

	logger.Info("HTTP_OUT: Задачи получены",
		zap.Int("count", len(tasks)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithBody(w, http.StatusOK, dto.FromTaskList(tasks, s.TaskService.Now()))
}

func (s *TaskHandler) GetTaskByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	t, err := s.TaskService.GetTask(r.Context(), owner, id)
	if err != nil {
		s.handleServiceError(w, r, err, "не удалось получить задачу")
		return
	}

	logger.Info("HTTP_OUT: Задача получена",
		zap.String("task_id", id.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithBody(w, http.StatusOK, dto.FromTask(t, s.TaskService.Now()))
}

// UpdateTaskByID обслуживает PUT и PATCH: меняются только переданные поля,
// null снимает необязательное значение
func (s *TaskHandler) UpdateTaskByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var request dto.UpdateTaskRequest
	if !s.decodeJSON(w, r, &request) {
		return
	}

	options, err := updateOptions(request)
	if err != nil {
		s.handleServiceError(w, r, err, "")
		return
	}

	updated, err := s.TaskService.UpdateTask(r.Context(), owner, id, options...)
	if err != nil {
		s.handleServiceError(w, r, err, "не удалось обновить задачу")
		return
	}

	logger.Info("HTTP_OUT: Задача обновлена",
		zap.String("task_id", id.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithBody(w, http.StatusOK, dto.FromTask(updated, s.TaskService.Now()))
}

func updateOptions(request dto.UpdateTaskRequest) ([]task.TaskOption, error) {
	var options []task.TaskOption

	if request.Title.Set {
		title := ""
		if request.Title.Value != nil {
			title = *request.Title.Value
		}
		options = append(options, task.WithTitle(title))
	}
	if request.Description.Set {
		description := ""
		if request.Description.Value != nil {
			description = *request.Description.Value
		}
		options = append(options, task.WithDescription(description))
	}
	if request.DueDate.Set {
		options = append(options, task.WithDueDate(request.DueDate.Value))
	}
	if request.Priority.Set {
		if request.Priority.Value == nil || strings.TrimSpace(*request.Priority.Value) == "" {
			return nil, service.NewValidationError("priority", "приоритет не может быть пустым")
		}
		p, _ := task.ParsePriority(*request.Priority.Value)
		options = append(options, task.WithPriority(p))
	}
	if request.Category.Set {
		options = append(options, task.WithCategory(parseCategoryInput(request.Category.Value)))
	}
	if request.CustomCategory.Set {
		options = append(options, task.WithCustomCategory(request.CustomCategory.Value))
	}
	if request.IsCompleted.Set && request.IsCompleted.Value != nil {
		options = append(options, task.WithCompleted(*request.IsCompleted.Value))
	}
	return options, nil
}

// parseCategoryInput: пустая строка и null снимают системную категорию.
// Неизвестное значение передаётся дальше и отклоняется сервисом.
func parseCategoryInput(raw *string) *task.Category {
	if raw == nil || strings.TrimSpace(*raw) == "" {
		return nil
	}
	c, _ := task.ParseCategory(*raw)
	return &c
}

func (s *TaskHandler) DeleteTaskByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := s.TaskService.DeleteTask(r.Context(), owner, id); err != nil {
		s.handleServiceError(w, r, err, "не удалось удалить задачу")
		return
	}

	logger.Info("HTTP_OUT: Задача удалена",
		zap.String("task_id", id.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusNoContent))

	w.WriteHeader(http.StatusNoContent)
}

func (s *TaskHandler) ToggleTask(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	t, err := s.TaskService.ToggleTask(r.Context(), owner, id)
	if err != nil {
		s.handleServiceError(w, r, err, "не удалось изменить статус задачи")
		return
	}

	logger.Info("HTTP_OUT: Статус задачи изменён",
		zap.String("task_id", id.String()),
		zap.Bool("is_completed", t.IsCompleted),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithBody(w, http.StatusOK, dto.FromTask(t, s.TaskService.Now()))
}

// BulkComplete: is_completed по умолчанию true
func (s *TaskHandler) BulkComplete(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}

	var request dto.BulkCompleteRequest
	if !s.decodeJSON(w, r, &request) {
		return
	}
	completed := true
	if request.IsCompleted != nil {
		completed = *request.IsCompleted
	}

	updated, err := s.TaskService.BulkSetCompleted(r.Context(), owner, request.TaskIDs, completed)
	if err != nil {
		s.handleServiceError(w, r, err, "не удалось обновить задачи")
		return
	}

	logger.Info("HTTP_OUT: Задачи обновлены",
		zap.Int("updated_count", updated),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithJSON(w, http.StatusOK,
		toPayload("message", "Задачи обновлены: "+strconv.Itoa(updated)),
		toPayload("updated_count", updated))
}

func (s *TaskHandler) GetUrgentTasks(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}

	limit := DefaultUrgentLimit
	if raw := r.URL.Query().Get("limit"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			s.handleServiceError(w, r, service.NewValidationError("limit", "положительное целое число"), "")
			return
		}
		limit = n
	}

	// сводка считается по всему множеству, limit режет только список
	tasks, err := s.TaskService.UrgentTasks(r.Context(), owner, 0)
	if err != nil {
		s.handleServiceError(w, r, err, "не удалось получить срочные задачи")
		return
	}

	now := s.TaskService.Now()
	summary := dto.UrgentSummary{TotalUrgent: len(tasks)}
	for _, t := range tasks {
		if t.Priority == task.PriorityHigh {
			summary.HighPriority++
		}
		if t.IsOverdue(now) {
			summary.Overdue++
		}
	}
	if limit > 0 && len(tasks) > limit {
		tasks = tasks[:limit]
	}

	logger.Info("HTTP_OUT: Срочные задачи получены",
		zap.Int("total_urgent", summary.TotalUrgent),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithBody(w, http.StatusOK, dto.UrgentResponse{
		Message: "Срочные задачи: " + strconv.Itoa(summary.TotalUrgent),
		Tasks:   dto.FromTaskList(tasks, now),
		Summary: summary,
	})
}

// GetCalendar принимает start и end в RFC3339 или YYYY-MM-DD.
// Дата без времени в end означает конец этого дня.
func (s *TaskHandler) GetCalendar(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}

	loc := s.TaskService.Now().Location()
	q := r.URL.Query()
	from, err := parseCalendarBound(q.Get("start"), "start", loc, false)
	if err != nil {
		s.handleServiceError(w, r, err, "")
		return
	}
	to, err := parseCalendarBound(q.Get("end"), "end", loc, true)
	if err != nil {
		s.handleServiceError(w, r, err, "")
		return
	}

	events, err := s.TaskService.CalendarEvents(r.Context(), owner, from, to)
	if err != nil {
		s.handleServiceError(w, r, err, "не удалось получить календарь")
		return
	}

	logger.Info("HTTP_OUT: События календаря получены",
		zap.Int("count", len(events)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithBody(w, http.StatusOK, events)
}

func parseCalendarBound(raw, field string, loc *time.Location, endOfDay bool) (time.Time, error) {
	if raw == "" {
		return time.Time{}, nil
	}
	if t, err := time.Parse(time.RFC3339, raw); err == nil {
		return t, nil
	}
	d, err := time.ParseInLocation(time.DateOnly, raw, loc)
	if err != nil {
		return time.Time{}, service.NewValidationError(field, "дата в формате RFC3339 или YYYY-MM-DD")
	}
	if endOfDay {
		return d.AddDate(0, 0, 1).Add(-time.Nanosecond), nil
	}
	return d, nil
}

// parseTaskFilter разбирает query-параметры списка задач.
// Неизвестное значение ordering заменяется на -created_at, остальные
// неизвестные значения перечислений дают VALIDATION_ERROR.
func parseTaskFilter(q url.Values) (task.Filter, error) {
	var filter task.Filter

	if raw := q.Get("priority"); raw != "" {
		p, ok := task.ParsePriority(raw)
		if !ok {
			return filter, service.NewValidationError("priority", "допустимые значения HIGH, MEDIUM, LOW")
		}
		filter.Priority = &p
	}

	if raw := q.Get("category"); raw != "" {
		c, ok := task.ParseCategory(raw)
		if !ok {
			return filter, service.NewValidationError("category", "неизвестная категория")
		}
		filter.Category = &c
	}

	if raw := q.Get("status"); raw != "" {
		var completed bool
		switch strings.ToLower(raw) {
		case "completed":
			completed = true
		case "pending":
			completed = false
		default:
			return filter, service.NewValidationError("status", "допустимые значения completed, pending")
		}
		filter.IsCompleted = &completed
	}

	if raw := q.Get("is_completed"); raw != "" {
		completed, err := strconv.ParseBool(raw)
		if err != nil {
			return filter, service.NewValidationError("is_completed", "ожидается true или false")
		}
		filter.IsCompleted = &completed
	}

	filter.Search = strings.TrimSpace(q.Get("search"))

	filter.Due = task.DueWindow(strings.ToLower(q.Get("due")))
	if !filter.Due.Valid() {
		return filter, service.NewValidationError("due", "допустимые значения today, overdue")
	}

	filter.Order = task.ParseOrdering(q.Get("ordering"))

	rawPage, rawLimit := q.Get("page"), q.Get("limit")
	if rawPage == "" && rawLimit == "" {
		return filter, nil
	}

	limit := DefaultPageSize
	if rawLimit != "" {
		n, err := strconv.Atoi(rawLimit)
		if err != nil || n < 1 || n > MaxPageSize {
			return filter, service.NewValidationError("limit", "целое число от 1 до "+strconv.Itoa(MaxPageSize))
		}
		limit = n
	}
	page := 1
	if rawPage != "" {
		n, err := strconv.Atoi(rawPage)
		if err != nil || n < 1 {
			return filter, service.NewValidationError("page", "положительное целое число")
		}
		page = n
	}
	filter.Limit = limit
	filter.Offset = (page - 1) * limit
	return filter, nil
}

// ownerFromRequest - владелец берётся только из проверенного токена
func ownerFromRequest(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	owner, ok := middleware.UserIDFromContext(r.Context())
	if !ok {
		logger.Warn("HTTP: Запрос без владельца",
			zap.String("path", r.URL.Path),
			zap.String("client_ip", r.RemoteAddr))
		responseWithJSON(w, http.StatusUnauthorized,
			toPayload("error", service.CodeUnauthorized),
			toPayload("message", "Требуется авторизация"))
		return uuid.Nil, false
	}
	return owner, true
}

func parseID(w http.ResponseWriter, r *http.Request) (uuid.UUID, bool) {
	rawID := chi.URLParam(r, "id")
	id, err := uuid.Parse(rawID)
	if err != nil || id == uuid.Nil {
		logger.Warn("HTTP: Неверный ID",
			zap.String("id", rawID),
			zap.String("client_ip", r.RemoteAddr))
		responseWithError(w, http.StatusBadRequest, "неверный формат ID")
		return uuid.Nil, false
	}
	return id, true
}
