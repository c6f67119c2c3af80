package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskFlow/internal/logger"
	"taskFlow/internal/models/category"
	repo "taskFlow/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

func (s *Storage) CreateCategory(ctx context.Context, c *category.Category) error {
	start := time.Now()

	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = c.CreatedAt
	}

	query := `INSERT INTO categories
				(id, owner_id, name, color, description, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7)`

	_, err := s.pool.Exec(ctx, query,
		c.ID, c.OwnerID, c.Name, c.Color, c.Description, c.CreatedAt, c.UpdatedAt)
	if err != nil {
		if _, ok := pgError(err, codeUniqueViolation); ok {
			return &repo.DuplicateError{Field: "name"}
		}
		if _, ok := pgError(err, codeForeignKeyViolation); ok {
			return repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось добавить категорию", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("добавление категории: %w", err)
	}

	warnIfSlow("create_category", start, 50*time.Millisecond)
	return nil
}

func (s *Storage) GetCategory(ctx context.Context, owner, id uuid.UUID) (*category.Category, error) {
	start := time.Now()

	query := `SELECT
				c.id, c.owner_id, c.name, c.color, c.description, c.created_at, c.updated_at,
				(SELECT COUNT(*) FROM tasks t WHERE t.custom_category_id = c.id)
				FROM categories c
				WHERE c.id = $1 AND c.owner_id = $2`

	c, err := scanCategory(s.pool.QueryRow(ctx, query, id, owner))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить категорию", err)
		return nil, fmt.Errorf("получение категории: %w", err)
	}

	warnIfSlow("get_category", start, 50*time.Millisecond)
	return c, nil
}

func (s *Storage) UpdateCategory(ctx context.Context, c *category.Category) error {
	start := time.Now()

	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = time.Now()
	}

	query := `UPDATE categories
			SET name = $1, color = $2, description = $3, updated_at = $4
			WHERE id = $5 AND owner_id = $6
			RETURNING created_at`

	err := s.pool.QueryRow(ctx, query,
		c.Name, c.Color, c.Description, c.UpdatedAt, c.ID, c.OwnerID,
	).Scan(&c.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repo.ErrNotFound
		}
		if _, ok := pgError(err, codeUniqueViolation); ok {
			return &repo.DuplicateError{Field: "name"}
		}
		logger.Error("Repository: Не удалось обновить категорию", err)
		return fmt.Errorf("обновление категории: %w", err)
	}

	warnIfSlow("update_category", start, 50*time.Millisecond)
	return nil
}

// DeleteCategory блокирует строку категории, чтобы между подсчётом задач
// и удалением к ней не привязали новую задачу
func (s *Storage) DeleteCategory(ctx context.Context, owner, id uuid.UUID) error {
	start := time.Now()

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		var name string
		err := tx.QueryRow(ctx,
			`SELECT name FROM categories WHERE id = $1 AND owner_id = $2 FOR UPDATE`,
			id, owner,
		).Scan(&name)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return repo.ErrNotFound
			}
			return err
		}

		var count int
		err = tx.QueryRow(ctx,
			`SELECT COUNT(*) FROM tasks WHERE custom_category_id = $1`, id,
		).Scan(&count)
		if err != nil {
			return err
		}
		if count > 0 {
			return &repo.InUseError{Name: name, TaskCount: count}
		}

		_, err = tx.Exec(ctx, `DELETE FROM categories WHERE id = $1`, id)
		return err
	})
	if err != nil {
		var inUse *repo.InUseError
		if errors.Is(err, repo.ErrNotFound) || errors.As(err, &inUse) {
			return err
		}
		logger.Error("Repository: Удаление категории", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("удаление категории: %w", err)
	}

	warnIfSlow("delete_category", start, 100*time.Millisecond)
	return nil
}

func (s *Storage) ListCategories(ctx context.Context, owner uuid.UUID) ([]*category.Category, error) {
	start := time.Now()

	query := `SELECT
				c.id, c.owner_id, c.name, c.color, c.description, c.created_at, c.updated_at,
				COUNT(t.id)
				FROM categories c
				LEFT JOIN tasks t ON t.custom_category_id = c.id
				WHERE c.owner_id = $1
				GROUP BY c.id
				ORDER BY c.name`

	rows, err := s.pool.Query(ctx, query, owner)
	if err != nil {
		logger.Error("Repository: Не удалось получить категории", err)
		return nil, fmt.Errorf("получение категорий: %w", err)
	}
	defer rows.Close()

	res := []*category.Category{}
	for rows.Next() {
		c, err := scanCategory(rows)
		if err != nil {
			logger.Error("Repository: Ошибка сканирования категории", err)
			return nil, fmt.Errorf("сканирование категории: %w", err)
		}
		res = append(res, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("итерация по строкам: %w", err)
	}

	warnIfSlow("list_categories", start, 50*time.Millisecond)
	return res, nil
}

func scanCategory(row pgx.Row) (*category.Category, error) {
	c := &category.Category{}
	err := row.Scan(
		&c.ID,
		&c.OwnerID,
		&c.Name,
		&c.Color,
		&c.Description,
		&c.CreatedAt,
		&c.UpdatedAt,
		&c.TaskCount,
	)
	if err != nil {
		return nil, err
	}
	return c, nil
}
