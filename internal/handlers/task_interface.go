package handlers

import (
	"context"
	"time"

	"taskFlow/internal/models/category"
	"taskFlow/internal/models/task"
	"taskFlow/internal/service"
	"taskFlow/internal/stats"

	"github.com/google/uuid"
)

type TaskService interface {
	Now() time.Time
	HealthCheck(ctx context.Context) error
	CreateTask(ctx context.Context, owner uuid.UUID, draft task.Draft) (*task.Task, error)
	GetTask(ctx context.Context, owner, id uuid.UUID) (*task.Task, error)
	UpdateTask(ctx context.Context, owner, id uuid.UUID, options ...task.TaskOption) (*task.Task, error)
	ToggleTask(ctx context.Context, owner, id uuid.UUID) (*task.Task, error)
	DeleteTask(ctx context.Context, owner, id uuid.UUID) error
	ListTasks(ctx context.Context, owner uuid.UUID, filter task.Filter) ([]*task.Task, error)
	BulkSetCompleted(ctx context.Context, owner uuid.UUID, ids []uuid.UUID, completed bool) (int, error)
	UrgentTasks(ctx context.Context, owner uuid.UUID, limit int) ([]*task.Task, error)
	CalendarEvents(ctx context.Context, owner uuid.UUID, from, to time.Time) ([]service.CalendarEvent, error)
}

type CategoryService interface {
	CreateCategory(ctx context.Context, owner uuid.UUID, draft service.CategoryDraft) (*category.Category, error)
	GetCategory(ctx context.Context, owner, id uuid.UUID) (*category.Category, error)
	UpdateCategory(ctx context.Context, owner, id uuid.UUID, patch service.CategoryPatch) (*category.Category, error)
	DeleteCategory(ctx context.Context, owner, id uuid.UUID) error
	ListCategories(ctx context.Context, owner uuid.UUID) ([]*category.Category, error)
}

type StatsService interface {
	Overview(ctx context.Context, owner uuid.UUID) (stats.Overview, error)
	ByCategory(ctx context.Context, owner uuid.UUID) (stats.CategoryBreakdown, error)
	ByPriority(ctx context.Context, owner uuid.UUID) ([]stats.PriorityStats, error)
	Dashboard(ctx context.Context, owner uuid.UUID) (stats.Dashboard, error)
}

type UserService interface {
	Register(ctx context.Context, r service.Registration) (*service.Account, error)
	Login(ctx context.Context, email, password string) (*service.Session, error)
	Profile(ctx context.Context, userID uuid.UUID) (*service.Account, error)
}

var (
	_ TaskService     = (*service.TaskService)(nil)
	_ CategoryService = (*service.CategoryService)(nil)
	_ StatsService    = (*service.StatsService)(nil)
	_ UserService     = (*service.UserService)(nil)
)
