package repository

import (
	"errors"
	"fmt"
)

var (
	// ErrNotFound - записи нет или она принадлежит другому пользователю
	ErrNotFound        = errors.New("запись не найдена")
	ErrVersionConflict = errors.New("конфликт версий")
	// ErrDuplicate - нарушение уникальности, Field указывает на поле
	ErrDuplicate = errors.New("запись уже существует")
)

type DuplicateError struct {
	Field string
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("%s: %s", ErrDuplicate.Error(), e.Field)
}

func (e *DuplicateError) Unwrap() error {
	return ErrDuplicate
}

// InUseError - категория используется задачами и не может быть удалена
type InUseError struct {
	Name      string
	TaskCount int
}

func (e *InUseError) Error() string {
	return fmt.Sprintf("категория %q используется в %d задачах", e.Name, e.TaskCount)
}
