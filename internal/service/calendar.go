package service

import (
	"context"
	"time"

	"taskFlow/internal/models/task"

	"github.com/google/uuid"
)

const (
	ColorCompleted      = "#28a745"
	ColorPriorityHigh   = "#dc3545"
	ColorPriorityMedium = "#ffc107"
	ColorPriorityLow    = "#17a2b8"
)

type CalendarEvent struct {
	ID        string                 `json:"id"`
	TaskID    uuid.UUID              `json:"task_id"`
	Title     string                 `json:"title"`
	Start     time.Time              `json:"start"`
	Color     string                 `json:"color"`
	Priority  task.Priority          `json:"priority"`
	Category  task.EffectiveCategory `json:"category"`
	Completed bool                   `json:"completed"`
	Overdue   bool                   `json:"overdue"`
}

func EventColor(t *task.Task) string {
	if t.IsCompleted {
		return ColorCompleted
	}
	switch t.Priority {
	case task.PriorityHigh:
		return ColorPriorityHigh
	case task.PriorityMedium:
		return ColorPriorityMedium
	}
	return ColorPriorityLow
}

// CalendarEvents - задачи с дедлайном в [from, to], отсортированные по дедлайну.
// Нулевые границы не ограничивают выборку.
func (s *TaskService) CalendarEvents(ctx context.Context, owner uuid.UUID, from, to time.Time) ([]CalendarEvent, error) {
	if !from.IsZero() && !to.IsZero() && to.Before(from) {
		return nil, NewValidationError("end", "конец периода раньше начала")
	}

	filter := task.Filter{Order: task.Ordering{Field: task.OrderDueDate}}
	if !from.IsZero() {
		filter.DueFrom = &from
	}
	if !to.IsZero() {
		filter.DueTo = &to
	}

	tasks, err := s.ListTasks(ctx, owner, filter)
	if err != nil {
		return nil, err
	}

	now := s.opts.now()
	events := make([]CalendarEvent, 0, len(tasks))
	for _, t := range tasks {
		if t.DueDate == nil {
			continue
		}
		events = append(events, CalendarEvent{
			ID:        "task_" + t.ID.String(),
			TaskID:    t.ID,
			Title:     t.Title,
			Start:     *t.DueDate,
			Color:     EventColor(t),
			Priority:  t.Priority,
			Category:  t.EffectiveCategory(),
			Completed: t.IsCompleted,
			Overdue:   t.IsOverdue(now),
		})
	}
	return events, nil
}
