package inmemory

import (
	"context"
	"strings"

	"taskFlow/internal/models/user"
	repo "taskFlow/internal/repository"

	"github.com/google/uuid"
)

func (s *Storage) CreateUser(ctx context.Context, u *user.User, p *user.Profile) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	for _, existing := range s.users {
		if existing.Username == u.Username {
			return &repo.DuplicateError{Field: "username"}
		}
		if strings.EqualFold(existing.Email, u.Email) {
			return &repo.DuplicateError{Field: "email"}
		}
	}

	storedUser := *u
	storedProfile := *p
	s.users[u.ID] = &storedUser
	s.profiles[u.ID] = &storedProfile
	return nil
}

func (s *Storage) GetUserByID(ctx context.Context, id uuid.UUID) (*user.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	stored, ok := s.users[id]
	if !ok {
		return nil, repo.ErrNotFound
	}
	u := *stored
	return &u, nil
}

func (s *Storage) GetUserByEmail(ctx context.Context, email string) (*user.User, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	for _, stored := range s.users {
		if strings.EqualFold(stored.Email, email) {
			u := *stored
			return &u, nil
		}
	}
	return nil, repo.ErrNotFound
}

func (s *Storage) GetProfile(ctx context.Context, userID uuid.UUID) (*user.Profile, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	stored, ok := s.profiles[userID]
	if !ok {
		return nil, repo.ErrNotFound
	}
	p := *stored
	return &p, nil
}
