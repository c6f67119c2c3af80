package task

import (
	"time"

	"github.com/google/uuid"
)

// TaskOption - частичное обновление задачи.
// nil-опции допустимы и пропускаются при применении.
type TaskOption func(*Task)

func Apply(t *Task, options ...TaskOption) {
	for _, opt := range options {
		if opt != nil {
			opt(t)
		}
	}
}

func WithTitle(title string) TaskOption {
	return func(task *Task) {
		task.Title = title
	}
}

func WithDescription(description string) TaskOption {
	return func(task *Task) {
		task.Description = description
	}
}

// WithDueDate с nil снимает дедлайн
func WithDueDate(dueDate *time.Time) TaskOption {
	return func(task *Task) {
		if dueDate == nil {
			task.DueDate = nil
			return
		}
		d := *dueDate
		task.DueDate = &d
	}
}

func WithPriority(priority Priority) TaskOption {
	if priority == "" {
		return nil
	}
	return func(task *Task) {
		task.Priority = priority
	}
}

// WithCategory с nil снимает системную категорию
func WithCategory(category *Category) TaskOption {
	return func(task *Task) {
		if category == nil {
			task.Category = nil
			return
		}
		c := *category
		task.Category = &c
	}
}

// WithCustomCategory с nil снимает пользовательскую категорию
func WithCustomCategory(id *uuid.UUID) TaskOption {
	return func(task *Task) {
		if id == nil {
			task.CustomCategoryID = nil
			task.CustomCategory = nil
			return
		}
		if task.CustomCategoryID == nil || *task.CustomCategoryID != *id {
			task.CustomCategory = nil
		}
		v := *id
		task.CustomCategoryID = &v
	}
}

func WithCompleted(completed bool) TaskOption {
	return func(task *Task) {
		task.IsCompleted = completed
	}
}
