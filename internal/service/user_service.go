package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"
	"unicode"
	"unicode/utf8"

	"taskFlow/internal/auth"
	"taskFlow/internal/logger"
	"taskFlow/internal/models/user"
	rep "taskFlow/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"golang.org/x/crypto/bcrypt"
)

const PasswordMinLen = 8

type Registration struct {
	Username        string
	Email           string
	Password        string
	PasswordConfirm string
	FirstName       string
	LastName        string
}

type Session struct {
	Token     string     `json:"token"`
	ExpiresAt time.Time  `json:"expires_at"`
	User      *user.User `json:"user"`
}

type Account struct {
	User    *user.User    `json:"user"`
	Profile *user.Profile `json:"profile"`
}

// UserService - регистрация, вход и чтение профиля
type UserService struct {
	repo   UserRepository
	tokens *auth.TokenManager
	opts   options
}

func NewUserService(repo UserRepository, tokens *auth.TokenManager, opts ...Option) *UserService {
	return &UserService{
		repo:   repo,
		tokens: tokens,
		opts:   buildOptions(opts),
	}
}

// Register создаёт пользователя и ровно один профиль в одной транзакции
func (s *UserService) Register(ctx context.Context, r Registration) (*Account, error) {
	username := strings.TrimSpace(r.Username)
	if username == "" {
		return nil, NewValidationError("username", "имя пользователя обязательно")
	}
	email := user.NormalizeEmail(r.Email)
	if email == "" {
		return nil, NewValidationError("email", "email обязателен")
	}
	if r.Password != r.PasswordConfirm {
		return nil, NewValidationError("password_confirm", "пароли не совпадают")
	}
	if reason, ok := checkPassword(r.Password, username, email); !ok {
		return nil, NewValidationError("password", reason)
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(r.Password), bcrypt.DefaultCost)
	if err != nil {
		return nil, fmt.Errorf("хеширование пароля: %w", err)
	}

	now := s.opts.now()
	u := &user.User{
		ID:           uuid.New(),
		Username:     username,
		Email:        email,
		PasswordHash: string(hash),
		FirstName:    strings.TrimSpace(r.FirstName),
		LastName:     strings.TrimSpace(r.LastName),
		IsActive:     true,
		DateJoined:   now,
	}
	profile := user.NewProfile(u.ID, now)

	if err := s.repo.CreateUser(ctx, u, profile); err != nil {
		var dup *rep.DuplicateError
		if errors.As(err, &dup) {
			return nil, NewValidationError(dup.Field, "уже используется")
		}
		return nil, fmt.Errorf("регистрация: %w", err)
	}

	logger.Info("Service: Пользователь зарегистрирован",
		zap.String("user_id", u.ID.String()),
		zap.String("username", u.Username))
	return &Account{User: u, Profile: profile}, nil
}

// Login отвечает одинаково для неизвестного email, неверного пароля
// и отключённого аккаунта
func (s *UserService) Login(ctx context.Context, email, password string) (*Session, error) {
	u, err := s.repo.GetUserByEmail(ctx, user.NormalizeEmail(email))
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			logger.Warn("Service: Вход с неизвестным email")
			return nil, NewInvalidCredentials()
		}
		return nil, fmt.Errorf("поиск пользователя: %w", err)
	}

	if err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password)); err != nil {
		logger.Warn("Service: Неверный пароль", zap.String("user_id", u.ID.String()))
		return nil, NewInvalidCredentials()
	}

	if !u.IsActive {
		logger.Warn("Service: Вход в отключённый аккаунт", zap.String("user_id", u.ID.String()))
		return nil, NewInvalidCredentials()
	}

	token, expires, err := s.tokens.Issue(auth.Principal{
		UserID:   u.ID,
		Username: u.Username,
		Email:    u.Email,
	})
	if err != nil {
		return nil, fmt.Errorf("выпуск токена: %w", err)
	}

	logger.Info("Service: Успешный вход", zap.String("user_id", u.ID.String()))
	return &Session{Token: token, ExpiresAt: expires, User: u}, nil
}

func (s *UserService) Profile(ctx context.Context, userID uuid.UUID) (*Account, error) {
	u, err := s.repo.GetUserByID(ctx, userID)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return nil, NewNotFound(ResourceUser, userID.String())
		}
		return nil, fmt.Errorf("получение пользователя: %w", err)
	}

	p, err := s.repo.GetProfile(ctx, userID)
	if err != nil {
		if errors.Is(err, rep.ErrNotFound) {
			return nil, NewNotFound(ResourceUser, userID.String())
		}
		return nil, fmt.Errorf("получение профиля: %w", err)
	}
	return &Account{User: u, Profile: p}, nil
}

// checkPassword: минимальная длина, не только цифры, не совпадает с логином или email
func checkPassword(password, username, email string) (string, bool) {
	if utf8.RuneCountInString(password) < PasswordMinLen {
		return fmt.Sprintf("минимум %d символов", PasswordMinLen), false
	}

	onlyDigits := true
	for _, r := range password {
		if !unicode.IsDigit(r) {
			onlyDigits = false
			break
		}
	}
	if onlyDigits {
		return "пароль не может состоять только из цифр", false
	}

	lower := strings.ToLower(password)
	if lower == strings.ToLower(username) || lower == email {
		return "пароль слишком похож на данные пользователя", false
	}
	return "", true
}
