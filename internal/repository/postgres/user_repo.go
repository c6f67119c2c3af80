package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"taskFlow/internal/logger"
	"taskFlow/internal/models/user"
	repo "taskFlow/internal/repository"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
)

const userSelect = `SELECT
				id, username, email, password_hash, first_name, last_name, is_active, date_joined
				FROM users`

// CreateUser сохраняет пользователя и его профиль в одной транзакции
func (s *Storage) CreateUser(ctx context.Context, u *user.User, p *user.Profile) error {
	start := time.Now()

	err := pgx.BeginFunc(ctx, s.pool, func(tx pgx.Tx) error {
		_, err := tx.Exec(ctx,
			`INSERT INTO users
				(id, username, email, password_hash, first_name, last_name, is_active, date_joined)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
			u.ID, u.Username, u.Email, u.PasswordHash, u.FirstName, u.LastName, u.IsActive, u.DateJoined,
		)
		if err != nil {
			return err
		}

		_, err = tx.Exec(ctx,
			`INSERT INTO user_profiles
				(user_id, bio, phone_number, location, website, birth_date,
				 is_profile_public, show_email, created_at, updated_at)
				VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)`,
			p.UserID, p.Bio, p.PhoneNumber, p.Location, p.Website, p.BirthDate,
			p.IsProfilePublic, p.ShowEmail, p.CreatedAt, p.UpdatedAt,
		)
		return err
	})
	if err != nil {
		if pgErr, ok := pgError(err, codeUniqueViolation); ok {
			field := "username"
			if pgErr.ConstraintName == "users_email_lower_key" {
				field = "email"
			}
			return &repo.DuplicateError{Field: field}
		}
		logger.Error("Repository: Не удалось создать пользователя", err)
		return fmt.Errorf("создание пользователя: %w", err)
	}

	warnIfSlow("create_user", start, 100*time.Millisecond)
	return nil
}

func (s *Storage) GetUserByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	return s.getUser(ctx, userSelect+` WHERE id = $1`, id)
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*user.User, error) {
	return s.getUser(ctx, userSelect+` WHERE LOWER(email) = LOWER($1)`, email)
}

func (s *Storage) getUser(ctx context.Context, query string, arg any) (*user.User, error) {
	u := &user.User{}
	err := s.pool.QueryRow(ctx, query, arg).Scan(
		&u.ID,
		&u.Username,
		&u.Email,
		&u.PasswordHash,
		&u.FirstName,
		&u.LastName,
		&u.IsActive,
		&u.DateJoined,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить пользователя", err)
		return nil, fmt.Errorf("получение пользователя: %w", err)
	}
	return u, nil
}

func (s *Storage) GetProfile(ctx context.Context, userID uuid.UUID) (*user.Profile, error) {
	p := &user.Profile{}
	err := s.pool.QueryRow(ctx,
		`SELECT user_id, bio, phone_number, location, website, birth_date,
				is_profile_public, show_email, created_at, updated_at
				FROM user_profiles WHERE user_id = $1`,
		userID,
	).Scan(
		&p.UserID,
		&p.Bio,
		&p.PhoneNumber,
		&p.Location,
		&p.Website,
		&p.BirthDate,
		&p.IsProfilePublic,
		&p.ShowEmail,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, repo.ErrNotFound
		}
		logger.Error("Repository: Не удалось получить профиль", err)
		return nil, fmt.Errorf("получение профиля: %w", err)
	}
	return p, nil
}
