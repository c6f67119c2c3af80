package category

import (
	"regexp"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/text/cases"
	"golang.org/x/text/language"
)

const (
	NameMaxLen   = 50
	DefaultColor = "#007BFF"
)

type Category struct {
	ID          uuid.UUID `json:"id" db:"id"`
	OwnerID     uuid.UUID `json:"owner_id" db:"owner_id"`
	Name        string    `json:"name" db:"name"`
	Color       string    `json:"color" db:"color"`
	Description string    `json:"description" db:"description"`
	CreatedAt   time.Time `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time `json:"updated_at" db:"updated_at"`
	// TaskCount заполняется только при выборке списка
	TaskCount int `json:"task_count" db:"-"`
}

var colorPattern = regexp.MustCompile(`^#[0-9A-Fa-f]{6}$`)

// NormalizeName обрезает пробелы и приводит к Title Case ("my work" -> "My Work").
// Уникальность проверяется именно по нормализованному значению.
func NormalizeName(raw string) string {
	name := strings.TrimSpace(raw)
	return cases.Title(language.Und).String(name)
}

func ValidName(name string) bool {
	n := utf8.RuneCountInString(name)
	return n >= 1 && n <= NameMaxLen
}

func ValidColor(color string) bool {
	return colorPattern.MatchString(color)
}

// SameName сравнивает имена без учёта регистра
func SameName(a, b string) bool {
	return strings.EqualFold(NormalizeName(a), NormalizeName(b))
}
