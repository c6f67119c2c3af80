package postgres

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"taskFlow/internal/logger"
	"taskFlow/internal/models/category"
	"taskFlow/internal/models/task"
	repo "taskFlow/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"
)

const taskSelect = `SELECT
				t.id,
				t.owner_id,
				t.title,
				t.description,
				t.due_date,
				t.priority,
				t.category,
				t.custom_category_id,
				t.is_completed,
				t.created_at,
				t.updated_at,
				t.completed_at,
				t.version,
				c.name,
				c.color
				FROM tasks t
				LEFT JOIN categories c ON c.id = t.custom_category_id`

func scanTask(row pgx.Row) (*task.Task, error) {
	t := &task.Task{}
	var (
		cat         *string
		customName  *string
		customColor *string
	)

	err := row.Scan(
		&t.ID,
		&t.OwnerID,
		&t.Title,
		&t.Description,
		&t.DueDate,
		&t.Priority,
		&cat,
		&t.CustomCategoryID,
		&t.IsCompleted,
		&t.CreatedAt,
		&t.UpdatedAt,
		&t.CompletedAt,
		&t.Version,
		&customName,
		&customColor,
	)
	if err != nil {
		return nil, err
	}

	if cat != nil {
		c := task.Category(*cat)
		t.Category = &c
	}
	if t.CustomCategoryID != nil && customName != nil {
		t.CustomCategory = &category.Category{
			ID:      *t.CustomCategoryID,
			OwnerID: t.OwnerID,
			Name:    *customName,
		}
		if customColor != nil {
			t.CustomCategory.Color = *customColor
		}
	}
	return t, nil
}

func categoryArg(c *task.Category) any {
	if c == nil {
		return nil
	}
	return string(*c)
}

func (s *Storage) CreateTask(ctx context.Context, taskToCreate *task.Task) error {
	start := time.Now()

	if taskToCreate.CreatedAt.IsZero() {
		taskToCreate.CreatedAt = time.Now()
	}
	if taskToCreate.UpdatedAt.IsZero() {
		taskToCreate.UpdatedAt = taskToCreate.CreatedAt
	}

	query := `INSERT INTO tasks
				(id, owner_id, title, description, due_date, priority, category,
				 custom_category_id, is_completed, created_at, updated_at, completed_at, version)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, 1)
				RETURNING version`

	err := s.pool.QueryRow(ctx, query,
		taskToCreate.ID,
		taskToCreate.OwnerID,
		taskToCreate.Title,
		taskToCreate.Description,
		taskToCreate.DueDate,
		string(taskToCreate.Priority),
		categoryArg(taskToCreate.Category),
		taskToCreate.CustomCategoryID,
		taskToCreate.IsCompleted,
		taskToCreate.CreatedAt,
		taskToCreate.UpdatedAt,
		taskToCreate.CompletedAt,
	).Scan(&taskToCreate.Version)

	if err != nil {
		if _, ok := pgError(err, codeForeignKeyViolation); ok {
			return repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось добавить задачу", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("добавление задачи: %w", err)
	}

	warnIfSlow("create_task", start, 50*time.Millisecond)
	return nil
}

func (s *Storage) GetTask(ctx context.Context, owner, id uuid.UUID) (*task.Task, error) {
	start := time.Now()

	query := taskSelect + `
				WHERE t.id = $1 AND t.owner_id = $2`

	t, err := scanTask(s.pool.QueryRow(ctx, query, id, owner))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить задачу", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение задачи: %w", err)
	}

	warnIfSlow("get_task", start, 100*time.Millisecond)
	return t, nil
}

// UpdateTask записывает все поля одной командой, поэтому заголовок,
// признак завершения и completed_at меняются атомарно
func (s *Storage) UpdateTask(ctx context.Context, taskToUpdate *task.Task) error {
	start := time.Now()

	if taskToUpdate.UpdatedAt.IsZero() {
		taskToUpdate.UpdatedAt = time.Now()
	}

	query := `UPDATE tasks
			SET title = $1,
				description = $2,
				due_date = $3,
				priority = $4,
				category = $5,
				custom_category_id = $6,
				is_completed = $7,
				completed_at = $8,
				updated_at = $9,
				version = version + 1
			WHERE id = $10 AND owner_id = $11 AND version = $12
			RETURNING updated_at, version`

	err := s.pool.QueryRow(ctx, query,
		taskToUpdate.Title,
		taskToUpdate.Description,
		taskToUpdate.DueDate,
		string(taskToUpdate.Priority),
		categoryArg(taskToUpdate.Category),
		taskToUpdate.CustomCategoryID,
		taskToUpdate.IsCompleted,
		taskToUpdate.CompletedAt,
		taskToUpdate.UpdatedAt,
		taskToUpdate.ID,
		taskToUpdate.OwnerID,
		taskToUpdate.Version,
	).Scan(&taskToUpdate.UpdatedAt, &taskToUpdate.Version)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return s.classifyMissedUpdate(ctx, taskToUpdate)
		}
		if _, ok := pgError(err, codeForeignKeyViolation); ok {
			return repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось обновить задачу", err)
		return fmt.Errorf("обновление задачи: %w", err)
	}

	warnIfSlow("update_task", start, 100*time.Millisecond)
	return nil
}

// classifyMissedUpdate отличает отсутствие задачи от устаревшей версии
func (s *Storage) classifyMissedUpdate(ctx context.Context, t *task.Task) error {
	var version int
	err := s.pool.QueryRow(ctx,
		`SELECT version FROM tasks WHERE id = $1 AND owner_id = $2`,
		t.ID, t.OwnerID,
	).Scan(&version)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return repo.ErrNotFound
		}
		return fmt.Errorf("проверка версии: %w", err)
	}

	logger.Warn("Конфликт версий при обновлении задачи",
		zap.String("task_id", t.ID.String()),
		zap.Int("expected_version", t.Version),
		zap.Int("actual_version", version))
	return repo.ErrVersionConflict
}

func (s *Storage) DeleteTask(ctx context.Context, owner, id uuid.UUID) error {
	start := time.Now()

	query := `DELETE FROM tasks
				WHERE id = $1 AND owner_id = $2`

	tag, err := s.pool.Exec(ctx, query, id, owner)
	if err != nil {
		logger.Error("Repository: Удаление задачи", err, zap.Duration("ms", time.Since(start)))
		return fmt.Errorf("удаление задачи: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return repo.ErrNotFound
	}

	warnIfSlow("delete_task", start, 100*time.Millisecond)
	return nil
}

func (s *Storage) ListTasks(ctx context.Context, owner uuid.UUID, filter task.Filter) ([]*task.Task, error) {
	start := time.Now()

	where, args := buildTaskFilter(owner, filter)
	query := taskSelect + `
				WHERE ` + where + `
				ORDER BY ` + orderClause(filter.Order)

	if filter.Limit > 0 {
		args = append(args, filter.Limit)
		query += fmt.Sprintf(" LIMIT $%d", len(args))
	}
	if filter.Offset > 0 {
		args = append(args, filter.Offset)
		query += fmt.Sprintf(" OFFSET $%d", len(args))
	}

	rows, err := s.pool.Query(ctx, query, args...)
	if err != nil {
		logger.Error("Repository: Не удалось получить задачи", err, zap.Duration("ms", time.Since(start)))
		return nil, fmt.Errorf("получение задач: %w", err)
	}
	defer rows.Close()

	tasks := []*task.Task{}
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			logger.Error("Repository: Ошибка сканирования задачи", err)
			return nil, fmt.Errorf("сканирование задачи: %w", err)
		}
		tasks = append(tasks, t)
	}

	if err := rows.Err(); err != nil {
		logger.Error("Repository: Ошибка итерации по строкам", err)
		return nil, fmt.Errorf("итерация по строкам: %w", err)
	}

	warnIfSlow("list_tasks", start, 50*time.Millisecond+time.Millisecond*time.Duration(len(tasks)))
	return tasks, nil
}

func (s *Storage) SetCompletedBulk(ctx context.Context, owner uuid.UUID, ids []uuid.UUID, completed bool, now time.Time) (int, error) {
	start := time.Now()

	idStrings := make([]string, 0, len(ids))
	for _, id := range ids {
		idStrings = append(idStrings, id.String())
	}

	query := `UPDATE tasks
			SET is_completed = $1,
				completed_at = CASE WHEN $1 THEN COALESCE(completed_at, $2) ELSE NULL END,
				updated_at = $2,
				version = version + 1
			WHERE owner_id = $3 AND id = ANY($4::uuid[])`

	var updated int
	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		tag, err := tx.Exec(ctx, query, completed, now, owner, idStrings)
		if err != nil {
			return err
		}
		updated = int(tag.RowsAffected())
		return nil
	})
	if err != nil {
		logger.Error("Repository: Массовое обновление задач", err, zap.Duration("ms", time.Since(start)))
		return 0, fmt.Errorf("массовое обновление: %w", err)
	}

	warnIfSlow("bulk_complete", start, 100*time.Millisecond)
	return updated, nil
}

func (s *Storage) CountOverdue(ctx context.Context, now time.Time) (int, error) {
	var count int
	err := s.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM tasks WHERE is_completed = FALSE AND due_date < $1`,
		now,
	).Scan(&count)
	if err != nil {
		logger.Error("Repository: Подсчёт просроченных задач", err)
		return 0, fmt.Errorf("подсчёт просроченных: %w", err)
	}
	return count, nil
}

func buildTaskFilter(owner uuid.UUID, f task.Filter) (string, []any) {
	now := f.Now
	if now.IsZero() {
		now = time.Now()
	}

	conds := []string{"t.owner_id = $1"}
	args := []any{owner}
	next := func(v any) string {
		args = append(args, v)
		return fmt.Sprintf("$%d", len(args))
	}

	if f.Priority != nil {
		conds = append(conds, "t.priority = "+next(string(*f.Priority)))
	}
	if f.Category != nil {
		conds = append(conds, "t.category = "+next(string(*f.Category)))
	}
	if f.IsCompleted != nil {
		conds = append(conds, "t.is_completed = "+next(*f.IsCompleted))
	}
	if f.Search != "" {
		p := next("%" + escapeLike(f.Search) + "%")
		conds = append(conds, "(t.title ILIKE "+p+" OR t.description ILIKE "+p+")")
	}
	switch f.Due {
	case task.DueToday:
		dayStart, dayEnd := task.DayBounds(now)
		conds = append(conds, "t.due_date >= "+next(dayStart)+" AND t.due_date < "+next(dayEnd))
	case task.DueOverdue:
		conds = append(conds, "t.is_completed = FALSE AND t.due_date < "+next(now))
	}
	if f.DueFrom != nil {
		conds = append(conds, "t.due_date >= "+next(*f.DueFrom))
	}
	if f.DueTo != nil {
		conds = append(conds, "t.due_date <= "+next(*f.DueTo))
	}

	return strings.Join(conds, " AND "), args
}

func orderClause(o task.Ordering) string {
	if o.Field == "" {
		o = task.DefaultOrdering
	}

	var column string
	switch o.Field {
	case task.OrderDueDate:
		column = "t.due_date"
	case task.OrderPriority:
		column = "CASE t.priority WHEN 'HIGH' THEN 3 WHEN 'MEDIUM' THEN 2 ELSE 1 END"
	case task.OrderTitle:
		// побайтовый порядок, как у in-memory хранилища
		column = `t.title COLLATE "C"`
	default:
		column = "t.created_at"
	}

	direction := "ASC"
	if o.Desc {
		direction = "DESC"
	}
	return column + " " + direction + ", t.created_at DESC, t.id"
}

func escapeLike(s string) string {
	r := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return r.Replace(s)
}
