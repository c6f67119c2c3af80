package handlers

import (
	"net/http"
	"time"

	"taskFlow/internal/handlers/dto"
	"taskFlow/internal/logger"
	"taskFlow/internal/metrics"
	"taskFlow/internal/service"

	"go.uber.org/zap"
)

type AuthHandler struct {
	base
	UserService UserService
}

func NewAuthHandler(userService UserService, m *metrics.Metrics) *AuthHandler {
	return &AuthHandler{
		base:        base{metrics: m},
		UserService: userService,
	}
}

func (s *AuthHandler) Register(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.RegisterRequest
	if !s.decodeJSON(w, r, &request) {
		return
	}

	account, err := s.UserService.Register(r.Context(), service.Registration{
		Username:        request.Username,
		Email:           request.Email,
		Password:        request.Password,
		PasswordConfirm: request.PasswordConfirm,
		FirstName:       request.FirstName,
		LastName:        request.LastName,
	})
	if err != nil {
		s.handleServiceError(w, r, err, "не удалось зарегистрировать пользователя")
		return
	}

	logger.Info("HTTP_OUT: Пользователь зарегистрирован",
		zap.String("user_id", account.User.ID.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	responseWithBody(w, http.StatusCreated, dto.ProfileResponse{
		User:    dto.FromUser(account.User),
		Profile: account.Profile,
	})
}

func (s *AuthHandler) Login(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	var request dto.LoginRequest
	if !s.decodeJSON(w, r, &request) {
		return
	}

	session, err := s.UserService.Login(r.Context(), request.Email, request.Password)
	if err != nil {
		s.handleServiceError(w, r, err, "не удалось выполнить вход")
		return
	}

	logger.Info("HTTP_OUT: Вход выполнен",
		zap.String("user_id", session.User.ID.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithBody(w, http.StatusOK, dto.LoginResponse{
		Token:     session.Token,
		ExpiresAt: session.ExpiresAt,
		User:      dto.FromUser(session.User),
	})
}

func (s *AuthHandler) Profile(w http.ResponseWriter, r *http.Request) {
	userID, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}

	account, err := s.UserService.Profile(r.Context(), userID)
	if err != nil {
		s.handleServiceError(w, r, err, "не удалось получить профиль")
		return
	}

	responseWithBody(w, http.StatusOK, dto.ProfileResponse{
		User:    dto.FromUser(account.User),
		Profile: account.Profile,
	})
}
