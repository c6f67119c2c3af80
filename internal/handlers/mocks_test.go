package handlers_test

import (
	"context"
	"time"

	"taskFlow/internal/auth"
	"taskFlow/internal/handlers"
	"taskFlow/internal/models/category"
	"taskFlow/internal/models/task"
	"taskFlow/internal/service"
	"taskFlow/internal/stats"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"
)

type MockTaskService struct {
	mock.Mock
}

func (m *MockTaskService) Now() time.Time {
	return fixedNow
}

func (m *MockTaskService) HealthCheck(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

func (m *MockTaskService) CreateTask(ctx context.Context, owner uuid.UUID, draft task.Draft) (*task.Task, error) {
	args := m.Called(ctx, owner, draft)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockTaskService) GetTask(ctx context.Context, owner, id uuid.UUID) (*task.Task, error) {
	args := m.Called(ctx, owner, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockTaskService) UpdateTask(ctx context.Context, owner, id uuid.UUID, options ...task.TaskOption) (*task.Task, error) {
	args := m.Called(ctx, owner, id, options)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockTaskService) ToggleTask(ctx context.Context, owner, id uuid.UUID) (*task.Task, error) {
	args := m.Called(ctx, owner, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*task.Task), args.Error(1)
}

func (m *MockTaskService) DeleteTask(ctx context.Context, owner, id uuid.UUID) error {
	args := m.Called(ctx, owner, id)
	return args.Error(0)
}

func (m *MockTaskService) ListTasks(ctx context.Context, owner uuid.UUID, filter task.Filter) ([]*task.Task, error) {
	args := m.Called(ctx, owner, filter)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *MockTaskService) BulkSetCompleted(ctx context.Context, owner uuid.UUID, ids []uuid.UUID, completed bool) (int, error) {
	args := m.Called(ctx, owner, ids, completed)
	return args.Int(0), args.Error(1)
}

func (m *MockTaskService) UrgentTasks(ctx context.Context, owner uuid.UUID, limit int) ([]*task.Task, error) {
	args := m.Called(ctx, owner, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*task.Task), args.Error(1)
}

func (m *MockTaskService) CalendarEvents(ctx context.Context, owner uuid.UUID, from, to time.Time) ([]service.CalendarEvent, error) {
	args := m.Called(ctx, owner, from, to)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]service.CalendarEvent), args.Error(1)
}

type MockCategoryService struct {
	mock.Mock
}

func (m *MockCategoryService) CreateCategory(ctx context.Context, owner uuid.UUID, draft service.CategoryDraft) (*category.Category, error) {
	args := m.Called(ctx, owner, draft)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*category.Category), args.Error(1)
}

func (m *MockCategoryService) GetCategory(ctx context.Context, owner, id uuid.UUID) (*category.Category, error) {
	args := m.Called(ctx, owner, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*category.Category), args.Error(1)
}

func (m *MockCategoryService) UpdateCategory(ctx context.Context, owner, id uuid.UUID, patch service.CategoryPatch) (*category.Category, error) {
	args := m.Called(ctx, owner, id, patch)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*category.Category), args.Error(1)
}

func (m *MockCategoryService) DeleteCategory(ctx context.Context, owner, id uuid.UUID) error {
	args := m.Called(ctx, owner, id)
	return args.Error(0)
}

func (m *MockCategoryService) ListCategories(ctx context.Context, owner uuid.UUID) ([]*category.Category, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]*category.Category), args.Error(1)
}

type MockStatsService struct {
	mock.Mock
}

func (m *MockStatsService) Overview(ctx context.Context, owner uuid.UUID) (stats.Overview, error) {
	args := m.Called(ctx, owner)
	return args.Get(0).(stats.Overview), args.Error(1)
}

func (m *MockStatsService) ByCategory(ctx context.Context, owner uuid.UUID) (stats.CategoryBreakdown, error) {
	args := m.Called(ctx, owner)
	return args.Get(0).(stats.CategoryBreakdown), args.Error(1)
}

func (m *MockStatsService) ByPriority(ctx context.Context, owner uuid.UUID) ([]stats.PriorityStats, error) {
	args := m.Called(ctx, owner)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]stats.PriorityStats), args.Error(1)
}

func (m *MockStatsService) Dashboard(ctx context.Context, owner uuid.UUID) (stats.Dashboard, error) {
	args := m.Called(ctx, owner)
	return args.Get(0).(stats.Dashboard), args.Error(1)
}

type MockUserService struct {
	mock.Mock
}

func (m *MockUserService) Register(ctx context.Context, r service.Registration) (*service.Account, error) {
	args := m.Called(ctx, r)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Account), args.Error(1)
}

func (m *MockUserService) Login(ctx context.Context, email, password string) (*service.Session, error) {
	args := m.Called(ctx, email, password)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Session), args.Error(1)
}

func (m *MockUserService) Profile(ctx context.Context, userID uuid.UUID) (*service.Account, error) {
	args := m.Called(ctx, userID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*service.Account), args.Error(1)
}

var (
	_ handlers.TaskService     = (*MockTaskService)(nil)
	_ handlers.CategoryService = (*MockCategoryService)(nil)
	_ handlers.StatsService    = (*MockStatsService)(nil)
	_ handlers.UserService     = (*MockUserService)(nil)
)

// staticTokens пропускает только токен "good" и выдаёт владельца owner
type staticTokens struct {
	owner uuid.UUID
}

func (p staticTokens) Parse(token string) (*auth.Principal, error) {
	if token == "" {
		return nil, auth.ErrMissingToken
	}
	if token != "good" {
		return nil, auth.ErrInvalidToken
	}
	return &auth.Principal{UserID: p.owner}, nil
}
