package service

import "fmt"

const (
	CodeValidation         = "VALIDATION_ERROR"
	CodeNotFound           = "NOT_FOUND"
	CodeCategoryInUse      = "CATEGORY_IN_USE"
	CodeVersionConflict    = "VERSION_CONFLICT"
	CodeUnauthorized       = "UNAUTHORIZED"
	CodeInvalidCredentials = "INVALID_CREDENTIALS"
)

type Resource string

const (
	ResourceTask     Resource = "Задача"
	ResourceCategory Resource = "Категория"
	ResourceUser     Resource = "Пользователь"
)

type BusinessError struct {
	Code    string
	Message string
	Details map[string]any
	Err     error
}

type Detail struct {
	Key     string
	Payload any
}

func (b *BusinessError) Error() string {
	if b.Err != nil {
		return fmt.Sprintf("[%s] %s: %s", b.Code, b.Message, b.Err.Error())
	}
	return fmt.Sprintf("[%s] %s", b.Code, b.Message)
}

func (b *BusinessError) Unwrap() error {
	return b.Err
}

func ToDetail(key string, payload any) Detail {
	return Detail{
		Key:     key,
		Payload: payload,
	}
}

func NewBusinessError(code string, message string, details ...Detail) *BusinessError {
	busErr := &BusinessError{
		Code:    code,
		Message: message,
		Details: make(map[string]any),
	}

	for _, detail := range details {
		busErr.Details[detail.Key] = detail.Payload
	}

	return busErr
}

func NewNotFound(resource Resource, id string) *BusinessError {
	return &BusinessError{
		Code:    CodeNotFound,
		Message: fmt.Sprintf("%s %s не найден(а)", resource, id),
		Details: map[string]any{
			"resource": resource,
			"id":       id,
		},
	}
}

func NewValidationError(field, reason string) *BusinessError {
	return &BusinessError{
		Code:    CodeValidation,
		Message: fmt.Sprintf("Неверное значение поля '%s': %s", field, reason),
		Details: map[string]any{
			"field":  field,
			"reason": reason,
		},
	}
}

func NewCategoryInUse(name string, taskCount int) *BusinessError {
	return NewBusinessError(CodeCategoryInUse,
		fmt.Sprintf("Категория '%s' используется в %d задачах и не может быть удалена", name, taskCount),
		ToDetail("category", name),
		ToDetail("task_count", taskCount),
	)
}

func NewVersionConflict(resource Resource, id string) *BusinessError {
	return NewBusinessError(CodeVersionConflict,
		fmt.Sprintf("%s %s была изменена параллельно, повторите запрос", resource, id),
		ToDetail("resource", resource),
		ToDetail("id", id),
	)
}

func NewInvalidCredentials() *BusinessError {
	return NewBusinessError(CodeInvalidCredentials, "Неверный email или пароль")
}
