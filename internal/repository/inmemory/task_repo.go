package inmemory

import (
	"context"
	"sort"
	"time"

	"taskFlow/internal/models/task"
	repo "taskFlow/internal/repository"

	"github.com/google/uuid"
)

func (s *Storage) CreateTask(ctx context.Context, taskToCreate *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	if taskToCreate.CustomCategoryID != nil {
		c, ok := s.categories[*taskToCreate.CustomCategoryID]
		if !ok || c.OwnerID != taskToCreate.OwnerID {
			return repo.ErrNotFound
		}
	}

	if taskToCreate.CreatedAt.IsZero() {
		taskToCreate.CreatedAt = time.Now()
	}
	if taskToCreate.UpdatedAt.IsZero() {
		taskToCreate.UpdatedAt = taskToCreate.CreatedAt
	}
	taskToCreate.Version = 1

	stored := taskToCreate.Clone()
	stored.CustomCategory = nil
	s.tasks[stored.ID] = stored
	s.taskIDs = append(s.taskIDs, stored.ID)

	taskToCreate.CustomCategory = s.customCategory(stored)
	return nil
}

func (s *Storage) GetTask(ctx context.Context, owner, id uuid.UUID) (*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	stored, ok := s.tasks[id]
	if !ok || stored.OwnerID != owner {
		return nil, repo.ErrNotFound
	}
	return s.view(stored), nil
}

func (s *Storage) UpdateTask(ctx context.Context, taskToUpdate *task.Task) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	stored, ok := s.tasks[taskToUpdate.ID]
	if !ok || stored.OwnerID != taskToUpdate.OwnerID {
		return repo.ErrNotFound
	}
	if stored.Version != taskToUpdate.Version {
		return repo.ErrVersionConflict
	}
	if taskToUpdate.CustomCategoryID != nil {
		c, ok := s.categories[*taskToUpdate.CustomCategoryID]
		if !ok || c.OwnerID != taskToUpdate.OwnerID {
			return repo.ErrNotFound
		}
	}

	if taskToUpdate.UpdatedAt.IsZero() {
		taskToUpdate.UpdatedAt = time.Now()
	}
	taskToUpdate.Version++

	updated := taskToUpdate.Clone()
	updated.CustomCategory = nil
	updated.CreatedAt = stored.CreatedAt
	s.tasks[updated.ID] = updated

	taskToUpdate.CustomCategory = s.customCategory(updated)
	return nil
}

func (s *Storage) DeleteTask(ctx context.Context, owner, id uuid.UUID) error {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	stored, ok := s.tasks[id]
	if !ok || stored.OwnerID != owner {
		return repo.ErrNotFound
	}

	delete(s.tasks, id)
	for ind, val := range s.taskIDs {
		if val == id {
			s.taskIDs = append(s.taskIDs[:ind], s.taskIDs[ind+1:]...)
			break
		}
	}
	return nil
}

func (s *Storage) ListTasks(ctx context.Context, owner uuid.UUID, filter task.Filter) ([]*task.Task, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	if filter.Now.IsZero() {
		filter.Now = time.Now()
	}

	res := []*task.Task{}
	for _, id := range s.taskIDs {
		stored := s.tasks[id]
		if stored.OwnerID != owner || !filter.Match(stored) {
			continue
		}
		res = append(res, s.view(stored))
	}

	order := filter.Order
	sort.SliceStable(res, func(i, j int) bool {
		return order.Less(res[i], res[j])
	})

	if filter.Offset > 0 {
		if filter.Offset >= len(res) {
			return []*task.Task{}, nil
		}
		res = res[filter.Offset:]
	}
	if filter.Limit > 0 && len(res) > filter.Limit {
		res = res[:filter.Limit]
	}
	return res, nil
}

// SetCompletedBulk применяет изменения только после проверки всех id,
// поэтому частичного обновления не бывает.
func (s *Storage) SetCompletedBulk(ctx context.Context, owner uuid.UUID, ids []uuid.UUID, completed bool, now time.Time) (int, error) {
	s.mtx.Lock()
	defer s.mtx.Unlock()

	matched := []*task.Task{}
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true

		stored, ok := s.tasks[id]
		if !ok || stored.OwnerID != owner {
			continue
		}
		matched = append(matched, stored)
	}

	for _, stored := range matched {
		stored.IsCompleted = completed
		stored.SyncCompletion(now)
		stored.UpdatedAt = now
		stored.Version++
	}
	return len(matched), nil
}

func (s *Storage) CountOverdue(ctx context.Context, now time.Time) (int, error) {
	s.mtx.RLock()
	defer s.mtx.RUnlock()

	count := 0
	for _, t := range s.tasks {
		if t.IsOverdue(now) {
			count++
		}
	}
	return count, nil
}

// view - копия задачи с подставленной пользовательской категорией
func (s *Storage) view(stored *task.Task) *task.Task {
	t := stored.Clone()
	t.CustomCategory = s.customCategory(stored)
	return t
}
