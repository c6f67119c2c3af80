package service

import (
	"context"
	"errors"
	"fmt"

	"taskFlow/internal/logger"
	"taskFlow/internal/models/category"
	rep "taskFlow/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

type CategoryDraft struct {
	Name        string
	Color       string
	Description string
}

// CategoryPatch - частичное обновление, nil поля не меняются
type CategoryPatch struct {
	Name        *string
	Color       *string
	Description *string
}

type CategoryService struct {
	repo CategoryRepository
	opts options
}

func NewCategoryService(repo CategoryRepository, opts ...Option) *CategoryService {
	return &CategoryService{
		repo: repo,
		opts: buildOptions(opts),
	}
}

func (s *CategoryService) CreateCategory(ctx context.Context, owner uuid.UUID, draft CategoryDraft) (*category.Category, error) {
	now := s.opts.now()
	c := &category.Category{
		ID:          uuid.New(),
		OwnerID:     owner,
		Name:        draft.Name,
		Color:       draft.Color,
		Description: draft.Description,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := validateCategory(c); err != nil {
		return nil, err
	}

	if err := s.repo.CreateCategory(ctx, c); err != nil {
		return nil, s.categoryError(err, c)
	}

	logger.Info("Service: Категория создана",
		zap.String("category_id", c.ID.String()),
		zap.String("name", c.Name))
	return c, nil
}

func (s *CategoryService) GetCategory(ctx context.Context, owner, id uuid.UUID) (*category.Category, error) {
	c, err := s.repo.GetCategory(ctx, owner, id)
	if err != nil {
		return nil, s.categoryError(err, &category.Category{ID: id})
	}
	return c, nil
}

func (s *CategoryService) UpdateCategory(ctx context.Context, owner, id uuid.UUID, patch CategoryPatch) (*category.Category, error) {
	current, err := s.repo.GetCategory(ctx, owner, id)
	if err != nil {
		return nil, s.categoryError(err, &category.Category{ID: id})
	}

	updated := *current
	if patch.Name != nil {
		updated.Name = *patch.Name
	}
	if patch.Color != nil {
		updated.Color = *patch.Color
	}
	if patch.Description != nil {
		updated.Description = *patch.Description
	}
	if err := validateCategory(&updated); err != nil {
		return nil, err
	}
	updated.UpdatedAt = s.opts.now()

	if err := s.repo.UpdateCategory(ctx, &updated); err != nil {
		return nil, s.categoryError(err, &updated)
	}
	return &updated, nil
}

// DeleteCategory отказывает, пока на категорию ссылаются задачи
func (s *CategoryService) DeleteCategory(ctx context.Context, owner, id uuid.UUID) error {
	if err := s.repo.DeleteCategory(ctx, owner, id); err != nil {
		return s.categoryError(err, &category.Category{ID: id})
	}
	logger.Info("Service: Категория удалена", zap.String("category_id", id.String()))
	return nil
}

func (s *CategoryService) ListCategories(ctx context.Context, owner uuid.UUID) ([]*category.Category, error) {
	list, err := s.repo.ListCategories(ctx, owner)
	if err != nil {
		return nil, fmt.Errorf("получение категорий: %w", err)
	}
	return list, nil
}

// validateCategory нормализует имя и цвет на месте
func validateCategory(c *category.Category) error {
	c.Name = category.NormalizeName(c.Name)
	if !category.ValidName(c.Name) {
		return NewValidationError("name", fmt.Sprintf("длина от 1 до %d символов", category.NameMaxLen))
	}
	if c.Color == "" {
		c.Color = category.DefaultColor
	}
	if !category.ValidColor(c.Color) {
		return NewValidationError("color", "цвет в формате #RRGGBB")
	}
	return nil
}

func (s *CategoryService) categoryError(err error, c *category.Category) error {
	var inUse *rep.InUseError
	switch {
	case errors.Is(err, rep.ErrNotFound):
		return NewNotFound(ResourceCategory, c.ID.String())
	case errors.Is(err, rep.ErrDuplicate):
		return NewValidationError("name", fmt.Sprintf("категория '%s' уже существует", c.Name))
	case errors.As(err, &inUse):
		logger.Warn("Service: Удаление используемой категории",
			zap.String("category", inUse.Name),
			zap.Int("task_count", inUse.TaskCount))
		return NewCategoryInUse(inUse.Name, inUse.TaskCount)
	}
	return fmt.Errorf("операция с категорией %s: %w", c.ID.String(), err)
}
