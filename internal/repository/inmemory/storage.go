package inmemory

import (
	"context"
	"sync"

	"taskFlow/internal/logger"
	"taskFlow/internal/models/category"
	"taskFlow/internal/models/task"
	"taskFlow/internal/models/user"

	"github.com/google/uuid"
)

// Storage - хранилище в памяти процесса для разработки и тестов.
// Наружу всегда отдаются копии, поэтому вызывающий код не может
// изменить состояние хранилища в обход методов.
type Storage struct {
	tasks      map[uuid.UUID]*task.Task
	taskIDs    []uuid.UUID
	categories map[uuid.UUID]*category.Category
	users      map[uuid.UUID]*user.User
	profiles   map[uuid.UUID]*user.Profile
	mtx        *sync.RWMutex
}

func New() *Storage {
	return &Storage{
		tasks:      make(map[uuid.UUID]*task.Task),
		taskIDs:    []uuid.UUID{},
		categories: make(map[uuid.UUID]*category.Category),
		users:      make(map[uuid.UUID]*user.User),
		profiles:   make(map[uuid.UUID]*user.Profile),
		mtx:        &sync.RWMutex{},
	}
}

func (s *Storage) HealthCheck(ctx context.Context) error {
	logger.Info("Repository: Соединение стабильно")
	return nil
}

func (s *Storage) Close() {
	logger.Info("Repository: Хранилище в памяти закрыто")
}
