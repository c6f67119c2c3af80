package task

import (
	"strings"
	"time"
	"unicode/utf8"

	"taskFlow/internal/models/category"

	"github.com/google/uuid"
)

const (
	TitleMinLen = 3
	TitleMaxLen = 200
)

type Task struct {
	ID               uuid.UUID          `json:"id" db:"id"`
	OwnerID          uuid.UUID          `json:"owner_id" db:"owner_id"`
	Title            string             `json:"title" db:"title"`
	Description      string             `json:"description" db:"description"`
	DueDate          *time.Time         `json:"due_date,omitempty" db:"due_date"`
	Priority         Priority           `json:"priority" db:"priority"`
	Category         *Category          `json:"category,omitempty" db:"category"`
	CustomCategoryID *uuid.UUID         `json:"custom_category_id,omitempty" db:"custom_category_id"`
	CustomCategory   *category.Category `json:"-" db:"-"`
	IsCompleted      bool               `json:"is_completed" db:"is_completed"`
	CreatedAt        time.Time          `json:"created_at" db:"created_at"`
	UpdatedAt        time.Time          `json:"updated_at" db:"updated_at"`
	CompletedAt      *time.Time         `json:"completed_at,omitempty" db:"completed_at"`
	Version          int                `json:"version" db:"version"`
}

type Priority string

const PriorityHigh Priority = "HIGH"
const PriorityMedium Priority = "MEDIUM"
const PriorityLow Priority = "LOW"

var Priorities = []Priority{PriorityHigh, PriorityMedium, PriorityLow}

func (p Priority) Valid() bool {
	switch p {
	case PriorityHigh, PriorityMedium, PriorityLow:
		return true
	}
	return false
}

// Rank упорядочивает приоритеты: LOW < MEDIUM < HIGH
func (p Priority) Rank() int {
	switch p {
	case PriorityHigh:
		return 3
	case PriorityMedium:
		return 2
	case PriorityLow:
		return 1
	}
	return 0
}

func (p Priority) DisplayName() string {
	switch p {
	case PriorityHigh:
		return "High"
	case PriorityMedium:
		return "Medium"
	case PriorityLow:
		return "Low"
	}
	return string(p)
}

// ParsePriority принимает значение в любом регистре
func ParsePriority(raw string) (Priority, bool) {
	p := Priority(strings.ToUpper(strings.TrimSpace(raw)))
	return p, p.Valid()
}

// Category - системная категория задачи
type Category string

const (
	CategoryWork      Category = "WORK"
	CategoryPersonal  Category = "PERSONAL"
	CategoryFitness   Category = "FITNESS"
	CategoryShopping  Category = "SHOPPING"
	CategoryHealth    Category = "HEALTH"
	CategoryEducation Category = "EDUCATION"
	CategoryFinance   Category = "FINANCE"
	CategoryOther     Category = "OTHER"
)

var Categories = []Category{
	CategoryWork,
	CategoryPersonal,
	CategoryFitness,
	CategoryShopping,
	CategoryHealth,
	CategoryEducation,
	CategoryFinance,
	CategoryOther,
}

var categoryNames = map[Category]string{
	CategoryWork:      "Work",
	CategoryPersonal:  "Personal",
	CategoryFitness:   "Fitness",
	CategoryShopping:  "Shopping",
	CategoryHealth:    "Health",
	CategoryEducation: "Education",
	CategoryFinance:   "Finance",
	CategoryOther:     "Other",
}

func (c Category) Valid() bool {
	_, ok := categoryNames[c]
	return ok
}

func (c Category) DisplayName() string {
	if name, ok := categoryNames[c]; ok {
		return name
	}
	return string(c)
}

func ParseCategory(raw string) (Category, bool) {
	c := Category(strings.ToUpper(strings.TrimSpace(raw)))
	return c, c.Valid()
}

// NormalizeTitle обрезает пробелы и проверяет длину.
// Возвращает ok=false, если длина вне [TitleMinLen, TitleMaxLen].
func NormalizeTitle(raw string) (string, bool) {
	title := strings.TrimSpace(raw)
	n := utf8.RuneCountInString(title)
	return title, n >= TitleMinLen && n <= TitleMaxLen
}

// SyncCompletion поддерживает связь is_completed <-> completed_at.
// Выставление в true не перезаписывает уже существующий completed_at.
func (t *Task) SyncCompletion(now time.Time) {
	if t.IsCompleted {
		if t.CompletedAt == nil {
			completedAt := now
			t.CompletedAt = &completedAt
		}
		return
	}
	t.CompletedAt = nil
}

// ApplyCategoryDefault гарантирует, что задача имеет хотя бы одну категорию
func (t *Task) ApplyCategoryDefault() {
	if t.Category == nil && t.CustomCategoryID == nil {
		other := CategoryOther
		t.Category = &other
	}
}

func (t *Task) IsOverdue(now time.Time) bool {
	if t.DueDate == nil || t.IsCompleted {
		return false
	}
	return t.DueDate.Before(now)
}

// DaysUntilDue - целое число дней до дедлайна с округлением вниз,
// отрицательное для просроченных задач. nil, если дедлайна нет.
func (t *Task) DaysUntilDue(now time.Time) *int {
	if t.DueDate == nil {
		return nil
	}
	delta := t.DueDate.Sub(now)
	day := 24 * time.Hour
	days := int(delta / day)
	if delta < 0 && delta%day != 0 {
		days--
	}
	return &days
}

// IsUrgent - незавершённая задача с высоким приоритетом или просроченная
func (t *Task) IsUrgent(now time.Time) bool {
	if t.IsCompleted {
		return false
	}
	return t.Priority == PriorityHigh || t.IsOverdue(now)
}

// Clone возвращает копию задачи, не разделяющую указатели с оригиналом
func (t *Task) Clone() *Task {
	c := *t
	if t.DueDate != nil {
		d := *t.DueDate
		c.DueDate = &d
	}
	if t.Category != nil {
		cat := *t.Category
		c.Category = &cat
	}
	if t.CustomCategoryID != nil {
		id := *t.CustomCategoryID
		c.CustomCategoryID = &id
	}
	if t.CustomCategory != nil {
		cc := *t.CustomCategory
		c.CustomCategory = &cc
	}
	if t.CompletedAt != nil {
		d := *t.CompletedAt
		c.CompletedAt = &d
	}
	return &c
}
