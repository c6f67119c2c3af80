package inmemory

import (
	"context"
	"sort"
	"time"

	"taskFlow/internal/models/category"
	"taskFlow/internal/models/task"
	repo "taskFlow/internal/repository"

	"github.com/google/uuid"
)

func (s *Storage) CreateCategory(ctx context.Context, c *category.Category) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if s.nameTaken(c.OwnerID, c.Name, uuid.Nil) {
		return &repo.DuplicateError{Field: "name"}
	}

	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now()
	}
	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = c.CreatedAt
	}

	stored := *c
	stored.TaskCount = 0
	s.categories[c.ID] = &stored
	return nil
}

func (s *Storage) GetCategory(ctx context.Context, owner, id uuid.UUID) (*category.Category, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	stored, ok := s.categories[id]
	if !ok || stored.OwnerID != owner {
		return nil, repo.ErrNotFound
	}
	c := *stored
	c.TaskCount = s.countTasks(id)
	return &c, nil
}

func (s *Storage) UpdateCategory(ctx context.Context, c *category.Category) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	stored, ok := s.categories[c.ID]
	if !ok || stored.OwnerID != c.OwnerID {
		return repo.ErrNotFound
	}
	if s.nameTaken(c.OwnerID, c.Name, c.ID) {
		return &repo.DuplicateError{Field: "name"}
	}

	if c.UpdatedAt.IsZero() {
		c.UpdatedAt = time.Now()
	}
	updated := *c
	updated.CreatedAt = stored.CreatedAt
	updated.TaskCount = 0
	s.categories[c.ID] = &updated
	return nil
}

func (s *Storage) DeleteCategory(ctx context.Context, owner, id uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	stored, ok := s.categories[id]
	if !ok || stored.OwnerID != owner {
		return repo.ErrNotFound
	}
	if count := s.countTasks(id); count > 0 {
		return &repo.InUseError{Name: stored.Name, TaskCount: count}
	}

	delete(s.categories, id)
	return nil
}

func (s *Storage) ListCategories(ctx context.Context, owner uuid.UUID) ([]*category.Category, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	counts := make(map[uuid.UUID]int)
	for _, t := range s.tasks {
		if t.OwnerID == owner && t.CustomCategoryID != nil {
			counts[*t.CustomCategoryID]++
		}
	}

	res := []*category.Category{}
	for _, stored := range s.categories {
		if stored.OwnerID != owner {
			continue
		}
		c := *stored
		c.TaskCount = counts[c.ID]
		res = append(res, &c)
	}

	sort.Slice(res, func(i, j int) bool {
		return res[i].Name < res[j].Name
	})
	return res, nil
}

func (s *Storage) nameTaken(owner uuid.UUID, name string, except uuid.UUID) bool {
	for _, c := range s.categories {
		if c.OwnerID == owner && c.ID != except && category.SameName(c.Name, name) {
			return true
		}
	}
	return false
}

func (s *Storage) countTasks(categoryID uuid.UUID) int {
	count := 0
	for _, t := range s.tasks {
		if t.CustomCategoryID != nil && *t.CustomCategoryID == categoryID {
			count++
		}
	}
	return count
}

func (s *Storage) customCategory(t *task.Task) *category.Category {
	if t.CustomCategoryID == nil {
		return nil
	}
	stored, ok := s.categories[*t.CustomCategoryID]
	if !ok {
		return nil
	}
	c := *stored
	return &c
}
