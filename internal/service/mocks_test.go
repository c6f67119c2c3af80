package service_test

import (
	"context"
	"time"

	"taskFlow/internal/models/category"
	"taskFlow/internal/models/task"
	"taskFlow/internal/models/user"
	"taskFlow/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

// MockTaskRepository - мок репозитория задач
type MockTaskRepository struct {
	mock.Mock
}

func (m *MockTaskRepository) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTaskRepository) CreateTask(ctx context.Context, t *task.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTaskRepository) GetTask(ctx context.Context, owner, id uuid.UUID) (*task.Task, error) {
	args := m.Called(ctx, owner, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockTaskRepository) UpdateTask(ctx context.Context, t *task.Task) error {
	args := m.Called(ctx, t)
	return args.Error(0)
}

func (m *MockTaskRepository) DeleteTask(ctx context.Context, owner, id uuid.UUID) error {
	args := m.Called(ctx, owner, id)
	return args.Error(0)
}

func (m *MockTaskRepository) ListTasks(ctx context.Context, owner uuid.UUID, filter task.Filter) ([]*task.Task, error) {
	args := m.Called(ctx, owner, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *MockTaskRepository) SetCompletedBulk(ctx context.Context, owner uuid.UUID, ids []uuid.UUID, completed bool, now time.Time) (int, error) {
	args := m.Called(ctx, owner, ids, completed, now)
	return args.Int(0), args.Error(1)
}

func (m *MockTaskRepository) CountOverdue(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}

var _ service.TaskRepository = (*MockTaskRepository)(nil)

// MockCategoryRepository - мок репозитория категорий
type MockCategoryRepository struct {
	mock.Mock
}

func (m *MockCategoryRepository) CreateCategory(ctx context.Context, c *category.Category) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCategoryRepository) GetCategory(ctx context.Context, owner, id uuid.UUID) (*category.Category, error) {
	args := m.Called(ctx, owner, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*category.Category), args.Error(1)
}

func (m *MockCategoryRepository) UpdateCategory(ctx context.Context, c *category.Category) error {
	args := m.Called(ctx, c)
	return args.Error(0)
}

func (m *MockCategoryRepository) DeleteCategory(ctx context.Context, owner, id uuid.UUID) error {
	args := m.Called(ctx, owner, id)
	return args.Error(0)
}

func (m *MockCategoryRepository) ListCategories(ctx context.Context, owner uuid.UUID) ([]*category.Category, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*category.Category), args.Error(1)
}

var _ service.CategoryRepository = (*MockCategoryRepository)(nil)

// MockUserRepository - мок репозитория пользователей
type MockUserRepository struct {
	mock.Mock
}

func (m *MockUserRepository) CreateUser(ctx context.Context, u *user.User, p *user.Profile) error {
	args := m.Called(ctx, u, p)
	return args.Error(0)
}

func (m *MockUserRepository) GetUserByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepository) GetUserByEmail(ctx context.Context, email string) (*user.User, error) {
	args := m.Called(ctx, email)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.User), args.Error(1)
}

func (m *MockUserRepository) GetProfile(ctx context.Context, userID uuid.UUID) (*user.Profile, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*user.Profile), args.Error(1)
}

var _ service.UserRepository = (*MockUserRepository)(nil)
