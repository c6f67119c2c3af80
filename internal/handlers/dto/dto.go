package dto

import (
	"bytes"
	"encoding/json"
	"time"

	"taskFlow/internal/models/category"
	"taskFlow/internal/models/task"
	"taskFlow/internal/models/user"
	"taskFlow/internal/stats"

	"github.com/google/uuid"
)

// Optional различает отсутствующее поле и явный null в PATCH-запросе
type Optional[T any] struct {
	Set   bool
	Value *T
}

func (o *Optional[T]) UnmarshalJSON(data []byte) error {
	o.Set = true
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		o.Value = nil
		return nil
	}
	var v T
	if err := json.Unmarshal(data, &v); err != nil {
		return err
	}
	o.Value = &v
	return nil
}

type CreateTaskRequest struct {
	Title          string     `json:"title" validate:"required"`
	Description    string     `json:"description"`
	DueDate        *time.Time `json:"due_date"`
	Priority       string     `json:"priority"`
	Category       *string    `json:"category"`
	CustomCategory *uuid.UUID `json:"custom_category"`
}

// UpdateTaskRequest - частичное обновление, отсутствующие поля не меняются
type UpdateTaskRequest struct {
	Title          Optional[string]    `json:"title"`
	Description    Optional[string]    `json:"description"`
	DueDate        Optional[time.Time] `json:"due_date"`
	Priority       Optional[string]    `json:"priority"`
	Category       Optional[string]    `json:"category"`
	CustomCategory Optional[uuid.UUID] `json:"custom_category"`
	IsCompleted    Optional[bool]      `json:"is_completed"`
}

type BulkCompleteRequest struct {
	TaskIDs     []uuid.UUID `json:"task_ids" validate:"required,min=1"`
	IsCompleted *bool       `json:"is_completed"`
}

type CategoryRequest struct {
	Name        string `json:"name" validate:"required"`
	Color       string `json:"color" validate:"omitempty,hexcolor,len=7"`
	Description string `json:"description"`
}

type UpdateCategoryRequest struct {
	Name        *string `json:"name"`
	Color       *string `json:"color" validate:"omitempty,hexcolor,len=7"`
	Description *string `json:"description"`
}

type RegisterRequest struct {
	Username        string `json:"username" validate:"required,max=150"`
	Email           string `json:"email" validate:"required,email"`
	Password        string `json:"password" validate:"required"`
	PasswordConfirm string `json:"password_confirm" validate:"required"`
	FirstName       string `json:"first_name" validate:"max=150"`
	LastName        string `json:"last_name" validate:"max=150"`
}

type LoginRequest struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

type CustomCategoryResponse struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Color string    `json:"color"`
}

type TaskResponse struct {
	ID                uuid.UUID               `json:"id"`
	Owner             uuid.UUID               `json:"owner"`
	Title             string                  `json:"title"`
	Description       string                  `json:"description"`
	DueDate           *time.Time              `json:"due_date"`
	Priority          task.Priority           `json:"priority"`
	PriorityDisplay   string                  `json:"priority_display"`
	Category          *task.Category          `json:"category"`
	CustomCategory    *CustomCategoryResponse `json:"custom_category"`
	EffectiveCategory task.EffectiveCategory  `json:"effective_category"`
	IsCompleted       bool                    `json:"is_completed"`
	CompletedAt       *time.Time              `json:"completed_at"`
	CreatedAt         time.Time               `json:"created_at"`
	UpdatedAt         time.Time               `json:"updated_at"`
	IsOverdue         bool                    `json:"is_overdue"`
	DaysUntilDue      *int                    `json:"days_until_due"`
	Version           int                     `json:"version"`
}

// FromTask считает производные поля относительно now
func FromTask(t *task.Task, now time.Time) TaskResponse {
	resp := TaskResponse{
		ID:                t.ID,
		Owner:             t.OwnerID,
		Title:             t.Title,
		Description:       t.Description,
		DueDate:           t.DueDate,
		Priority:          t.Priority,
		PriorityDisplay:   t.Priority.DisplayName(),
		Category:          t.Category,
		EffectiveCategory: t.EffectiveCategory(),
		IsCompleted:       t.IsCompleted,
		CompletedAt:       t.CompletedAt,
		CreatedAt:         t.CreatedAt,
		UpdatedAt:         t.UpdatedAt,
		IsOverdue:         t.IsOverdue(now),
		DaysUntilDue:      t.DaysUntilDue(now),
		Version:           t.Version,
	}
	if t.CustomCategory != nil {
		resp.CustomCategory = &CustomCategoryResponse{
			ID:    t.CustomCategory.ID,
			Name:  t.CustomCategory.Name,
			Color: t.CustomCategory.Color,
		}
	} else if t.CustomCategoryID != nil {
		resp.CustomCategory = &CustomCategoryResponse{ID: *t.CustomCategoryID}
	}
	return resp
}

func FromTaskList(tasks []*task.Task, now time.Time) []TaskResponse {
	result := make([]TaskResponse, len(tasks))
	for i, t := range tasks {
		result[i] = FromTask(t, now)
	}
	return result
}

type UrgentSummary struct {
	TotalUrgent  int `json:"total_urgent"`
	HighPriority int `json:"high_priority"`
	Overdue      int `json:"overdue"`
}

type UrgentResponse struct {
	Message string         `json:"message"`
	Tasks   []TaskResponse `json:"tasks"`
	Summary UrgentSummary  `json:"summary"`
}

// DashboardResponse подменяет списки задач на TaskResponse с производными полями
type DashboardResponse struct {
	stats.Dashboard
	RecentTasks []TaskResponse `json:"recent_tasks"`
	UrgentTasks []TaskResponse `json:"urgent_tasks"`
}

func FromDashboard(d stats.Dashboard, now time.Time) DashboardResponse {
	return DashboardResponse{
		Dashboard:   d,
		RecentTasks: FromTaskList(d.RecentTasks, now),
		UrgentTasks: FromTaskList(d.UrgentTasks, now),
	}
}

type CategoryResponse struct {
	ID          uuid.UUID `json:"id"`
	Name        string    `json:"name"`
	Color       string    `json:"color"`
	Description string    `json:"description"`
	TaskCount   int       `json:"task_count"`
	CreatedAt   time.Time `json:"created_at"`
	UpdatedAt   time.Time `json:"updated_at"`
}

func FromCategory(c *category.Category) CategoryResponse {
	return CategoryResponse{
		ID:          c.ID,
		Name:        c.Name,
		Color:       c.Color,
		Description: c.Description,
		TaskCount:   c.TaskCount,
		CreatedAt:   c.CreatedAt,
		UpdatedAt:   c.UpdatedAt,
	}
}

func FromCategoryList(categories []*category.Category) []CategoryResponse {
	result := make([]CategoryResponse, len(categories))
	for i, c := range categories {
		result[i] = FromCategory(c)
	}
	return result
}

type UserResponse struct {
	ID         uuid.UUID `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	FirstName  string    `json:"first_name"`
	LastName   string    `json:"last_name"`
	FullName   string    `json:"full_name"`
	DateJoined time.Time `json:"date_joined"`
}

func FromUser(u *user.User) UserResponse {
	return UserResponse{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		FirstName:  u.FirstName,
		LastName:   u.LastName,
		FullName:   u.FullName(),
		DateJoined: u.DateJoined,
	}
}

type LoginResponse struct {
	Token     string       `json:"token"`
	ExpiresAt time.Time    `json:"expires_at"`
	User      UserResponse `json:"user"`
}

type ProfileResponse struct {
	User    UserResponse  `json:"user"`
	Profile *user.Profile `json:"profile"`
}
