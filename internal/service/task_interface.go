package service

import (
	"context"
	"time"

	"taskFlow/internal/models/category"
	"taskFlow/internal/models/task"
	"taskFlow/internal/models/user"

	"github.com/google/uuid"
)

// TaskRepository - хранилище задач. Все чтения и записи ограничены владельцем,
// чужая задача неотличима от несуществующей (repository.ErrNotFound).
type TaskRepository interface {
	HealthCheck(ctx context.Context) error
	CreateTask(ctx context.Context, t *task.Task) error
	GetTask(ctx context.Context, owner, id uuid.UUID) (*task.Task, error)
	// UpdateTask сохраняет задачу целиком, проверяя владельца и версию
	UpdateTask(ctx context.Context, t *task.Task) error
	DeleteTask(ctx context.Context, owner, id uuid.UUID) error
	ListTasks(ctx context.Context, owner uuid.UUID, filter task.Filter) ([]*task.Task, error)
	// SetCompletedBulk обновляет в одной транзакции задачи владельца из ids,
	// чужие id молча пропускаются. Возвращает число обновлённых задач.
	SetCompletedBulk(ctx context.Context, owner uuid.UUID, ids []uuid.UUID, completed bool, now time.Time) (int, error)
	CountOverdue(ctx context.Context, now time.Time) (int, error)
}

type CategoryRepository interface {
	CreateCategory(ctx context.Context, c *category.Category) error
	GetCategory(ctx context.Context, owner, id uuid.UUID) (*category.Category, error)
	UpdateCategory(ctx context.Context, c *category.Category) error
	// DeleteCategory отказывает с *repository.InUseError, если на категорию ссылаются задачи
	DeleteCategory(ctx context.Context, owner, id uuid.UUID) error
	// ListCategories заполняет TaskCount одним запросом
	ListCategories(ctx context.Context, owner uuid.UUID) ([]*category.Category, error)
}

type UserRepository interface {
	// CreateUser сохраняет пользователя и его профиль в одной транзакции
	CreateUser(ctx context.Context, u *user.User, p *user.Profile) error
	GetUserByID(ctx context.Context, id uuid.UUID) (*user.User, error)
	GetUserByEmail(ctx context.Context, email string) (*user.User, error)
	GetProfile(ctx context.Context, userID uuid.UUID) (*user.Profile, error)
}
