package service

import (
	"context"
	"fmt"

	"taskFlow/internal/models/task"
	"taskFlow/internal/stats"

	"github.com/google/uuid"
)

// StatsService загружает задачи владельца одним запросом и считает
// статистику в памяти
type StatsService struct {
	repo TaskRepository
	opts options
}

func NewStatsService(repo TaskRepository, opts ...Option) *StatsService {
	return &StatsService{
		repo: repo,
		opts: buildOptions(opts),
	}
}

func (s *StatsService) Overview(ctx context.Context, owner uuid.UUID) (stats.Overview, error) {
	tasks, err := s.loadTasks(ctx, owner)
	if err != nil {
		return stats.Overview{}, err
	}
	return stats.Compute(tasks, s.opts.now()), nil
}

func (s *StatsService) ByCategory(ctx context.Context, owner uuid.UUID) (stats.CategoryBreakdown, error) {
	tasks, err := s.loadTasks(ctx, owner)
	if err != nil {
		return stats.CategoryBreakdown{}, err
	}
	return stats.ByCategory(tasks), nil
}

func (s *StatsService) ByPriority(ctx context.Context, owner uuid.UUID) ([]stats.PriorityStats, error) {
	tasks, err := s.loadTasks(ctx, owner)
	if err != nil {
		return nil, err
	}
	return stats.ByPriority(tasks), nil
}

func (s *StatsService) Dashboard(ctx context.Context, owner uuid.UUID) (stats.Dashboard, error) {
	tasks, err := s.loadTasks(ctx, owner)
	if err != nil {
		return stats.Dashboard{}, err
	}
	return stats.BuildDashboard(tasks, s.opts.now()), nil
}

func (s *StatsService) loadTasks(ctx context.Context, owner uuid.UUID) ([]*task.Task, error) {
	tasks, err := s.repo.ListTasks(ctx, owner, task.Filter{Now: s.opts.now()})
	if err != nil {
		return nil, fmt.Errorf("загрузка задач для статистики: %w", err)
	}
	return tasks, nil
}
