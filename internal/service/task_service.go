package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskFlow/internal/logger"
	"taskFlow/internal/models/category"
	"taskFlow/internal/models/task"
	rep "taskFlow/internal/repository"
	"taskFlow/internal/stats"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

// здесь происходит проверка ошибок бизнес-логики

type TaskService struct {
	repo       TaskRepository
	categories CategoryRepository
	opts       options
}

func NewTaskService(repo TaskRepository, categories CategoryRepository, opts ...Option) *TaskService {
	return &TaskService{
		repo:       repo,
		categories: categories,
		opts:       buildOptions(opts),
	}
}

func (s *TaskService) Now() time.Time {
	return s.opts.now()
}

func (s *TaskService) HealthCheck(ctx context.Context) error {
	if err := s.repo.HealthCheck(ctx); err != nil {
		return fmt.Errorf("проверка хранилища: %w", err)
	}
	return nil
}

func (s *TaskService) CreateTask(ctx context.Context, owner uuid.UUID, draft task.Draft) (*task.Task, error) {
	title, ok := task.NormalizeTitle(draft.Title)
	if !ok {
		return nil, NewValidationError("title", fmt.Sprintf("длина от %d до %d символов", task.TitleMinLen, task.TitleMaxLen))
	}

	priority := draft.Priority
	if priority == "" {
		priority = task.PriorityMedium
	}

	now := s.opts.now()
	t := &task.Task{
		ID:        uuid.New(),
		OwnerID:   owner,
		Title:     title,
		Priority:  priority,
		CreatedAt: now,
		UpdatedAt: now,
	}
	task.Apply(t,
		task.WithDescription(draft.Description),
		task.WithDueDate(draft.DueDate),
		task.WithCategory(draft.Category),
		task.WithCustomCategory(draft.CustomCategoryID),
	)

	if err := s.prepare(ctx, t, now); err != nil {
		return nil, err
	}

	if err := s.repo.CreateTask(ctx, t); err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return nil, customCategoryError()
		}
		return nil, fmt.Errorf("создание задачи: %w", err)
	}

	s.opts.metrics.TaskCreated()
	logger.Info("Service: Задача создана",
		zap.String("task_id", t.ID.String()),
		zap.String("owner_id", owner.String()))
	return t, nil
}

func (s *TaskService) GetTask(ctx context.Context, owner, id uuid.UUID) (*task.Task, error) {
	t, err := s.repo.GetTask(ctx, owner, id)
	if err != nil {
		return nil, s.taskError(err, id)
	}
	return t, nil
}

// UpdateTask применяет опции к копии задачи и сохраняет её целиком.
// При ошибке валидации хранилище не меняется.
func (s *TaskService) UpdateTask(ctx context.Context, owner, id uuid.UUID, options ...task.TaskOption) (*task.Task, error) {
	current, err := s.repo.GetTask(ctx, owner, id)
	if err != nil {
		return nil, s.taskError(err, id)
	}

	updated := current.Clone()
	task.Apply(updated, options...)

	title, ok := task.NormalizeTitle(updated.Title)
	if !ok {
		return nil, NewValidationError("title", fmt.Sprintf("длина от %d до %d символов", task.TitleMinLen, task.TitleMaxLen))
	}
	updated.Title = title

	now := s.opts.now()
	if err := s.prepare(ctx, updated, now); err != nil {
		return nil, err
	}
	updated.UpdatedAt = now

	if err := s.repo.UpdateTask(ctx, updated); err != nil {
		if errors.Is(err, rep.ErrNotFound) && updated.CustomCategoryID != nil {
			// категорию могли удалить между проверкой и записью
			if _, catErr := s.categories.GetCategory(ctx, owner, *updated.CustomCategoryID); errors.Is(catErr, rep.ErrNotFound) {
				return nil, customCategoryError()
			}
		}
		return nil, s.taskError(err, id)
	}

	if !current.IsCompleted && updated.IsCompleted {
		s.opts.metrics.TasksCompleted(1)
	}
	logger.Info("Service: Задача обновлена",
		zap.String("task_id", id.String()),
		zap.Int("version", updated.Version))
	return updated, nil
}

func (s *TaskService) ToggleTask(ctx context.Context, owner, id uuid.UUID) (*task.Task, error) {
	current, err := s.repo.GetTask(ctx, owner, id)
	if err != nil {
		return nil, s.taskError(err, id)
	}
	return s.UpdateTask(ctx, owner, id, task.WithCompleted(!current.IsCompleted))
}

func (s *TaskService) DeleteTask(ctx context.Context, owner, id uuid.UUID) error {
	if err := s.repo.DeleteTask(ctx, owner, id); err != nil {
		return s.taskError(err, id)
	}
	logger.Info("Service: Задача удалена", zap.String("task_id", id.String()))
	return nil
}

func (s *TaskService) ListTasks(ctx context.Context, owner uuid.UUID, filter task.Filter) ([]*task.Task, error) {
	if filter.Now.IsZero() {
		filter.Now = s.opts.now()
	}
	tasks, err := s.repo.ListTasks(ctx, owner, filter)
	if err != nil {
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	return tasks, nil
}

// BulkSetCompleted обновляет только задачи владельца. Если ни одна из ids
// ему не принадлежит, возвращается NOT_FOUND.
func (s *TaskService) BulkSetCompleted(ctx context.Context, owner uuid.UUID, ids []uuid.UUID, completed bool) (int, error) {
	if len(ids) == 0 {
		return 0, NewValidationError("task_ids", "список задач не может быть пустым")
	}

	updated, err := s.repo.SetCompletedBulk(ctx, owner, ids, completed, s.opts.now())
	if err != nil {
		return 0, fmt.Errorf("массовое обновление: %w", err)
	}
	if updated == 0 {
		logger.Info("Service: Задачи для массового обновления не найдены",
			zap.String("owner_id", owner.String()),
			zap.Int("requested", len(ids)))
		return 0, NewBusinessError(CodeNotFound, "Подходящие задачи не найдены",
			ToDetail("resource", ResourceTask),
			ToDetail("requested", len(ids)))
	}

	if completed {
		s.opts.metrics.TasksCompleted(updated)
	}
	return updated, nil
}

func (s *TaskService) UrgentTasks(ctx context.Context, owner uuid.UUID, limit int) ([]*task.Task, error) {
	pending := false
	tasks, err := s.ListTasks(ctx, owner, task.Filter{IsCompleted: &pending})
	if err != nil {
		return nil, err
	}
	return stats.Urgent(tasks, s.opts.now(), limit), nil
}

// prepare проверяет перечисления и пользовательскую категорию,
// выставляет категорию по умолчанию и completed_at
func (s *TaskService) prepare(ctx context.Context, t *task.Task, now time.Time) error {
	if !t.Priority.Valid() {
		return NewValidationError("priority", "допустимые значения HIGH, MEDIUM, LOW")
	}
	if t.Category != nil && !t.Category.Valid() {
		return NewValidationError("category", "неизвестная категория")
	}

	if t.CustomCategoryID != nil && (t.CustomCategory == nil || t.CustomCategory.ID != *t.CustomCategoryID) {
		c, err := s.resolveCategory(ctx, t.OwnerID, *t.CustomCategoryID)
		if err != nil {
			return err
		}
		t.CustomCategory = c
	}

	t.ApplyCategoryDefault()
	t.SyncCompletion(now)
	return nil
}

func (s *TaskService) resolveCategory(ctx context.Context, owner, id uuid.UUID) (*category.Category, error) {
	c, err := s.categories.GetCategory(ctx, owner, id)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Warn("Service: Попытка использовать чужую или несуществующую категорию",
				zap.String("owner_id", owner.String()),
				zap.String("category_id", id.String()))
			return nil, customCategoryError()
		}
		return nil, fmt.Errorf("получение категории: %w", err)
	}
	return c, nil
}

func (s *TaskService) taskError(err error, id uuid.UUID) error {
	switch {
	case errors.Is(err, rep.ErrNotFound):
		logger.Info("Service: Задача не найдена", zap.String("target_id", id.String()))
		return NewNotFound(ResourceTask, id.String())
	case errors.Is(err, rep.ErrVersionConflict):
		return NewVersionConflict(ResourceTask, id.String())
	}
	return fmt.Errorf("операция с задачей %s: %w", id.String(), err)
}

func customCategoryError() *BusinessError {
	return NewValidationError("custom_category", "категория не найдена")
}
