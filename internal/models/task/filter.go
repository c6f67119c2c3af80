package task

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Draft - входные данные для создания задачи
type Draft struct {
	Title            string
	Description      string
	DueDate          *time.Time
	Priority         Priority
	Category         *Category
	CustomCategoryID *uuid.UUID
}

type DueWindow string

const DueToday DueWindow = "today"
const DueOverdue DueWindow = "overdue"

func (d DueWindow) Valid() bool {
	return d == "" || d == DueToday || d == DueOverdue
}

// Filter описывает выборку задач одного владельца.
// Нулевые значения означают отсутствие фильтра.
type Filter struct {
	Priority    *Priority
	Category    *Category
	IsCompleted *bool
	// Search - подстрока без учёта регистра по title и description
	Search string
	// Due: today - дедлайн сегодня (по календарной дате Now),
	// overdue - дедлайн раньше Now и задача не завершена
	Due     DueWindow
	DueFrom *time.Time
	DueTo   *time.Time
	Order   Ordering
	Limit   int
	Offset  int
	// Now - момент, относительно которого считаются today/overdue
	Now time.Time
}

type OrderField string

const (
	OrderCreatedAt OrderField = "created_at"
	OrderDueDate   OrderField = "due_date"
	OrderPriority  OrderField = "priority"
	OrderTitle     OrderField = "title"
)

type Ordering struct {
	Field OrderField
	Desc  bool
}

var DefaultOrdering = Ordering{Field: OrderCreatedAt, Desc: true}

// ParseOrdering разбирает "field" или "-field".
// Неизвестное поле молча заменяется на -created_at.
func ParseOrdering(raw string) Ordering {
	raw = strings.TrimSpace(raw)
	desc := strings.HasPrefix(raw, "-")
	field := OrderField(strings.TrimPrefix(raw, "-"))

	switch field {
	case OrderCreatedAt, OrderDueDate, OrderPriority, OrderTitle:
		return Ordering{Field: field, Desc: desc}
	}
	return DefaultOrdering
}

func (o Ordering) String() string {
	if o.Field == "" {
		return DefaultOrdering.String()
	}
	if o.Desc {
		return "-" + string(o.Field)
	}
	return string(o.Field)
}

// DayBounds - начало текущих и следующих суток в часовом поясе now
func DayBounds(now time.Time) (time.Time, time.Time) {
	y, m, d := now.Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	return start, start.AddDate(0, 0, 1)
}

// WeekBounds - неделя с понедельника, содержащая now
func WeekBounds(now time.Time) (time.Time, time.Time) {
	dayStart, _ := DayBounds(now)
	offset := (int(dayStart.Weekday()) + 6) % 7
	start := dayStart.AddDate(0, 0, -offset)
	return start, start.AddDate(0, 0, 7)
}

// Match проверяет задачу на соответствие фильтру без учёта сортировки и пагинации
func (f Filter) Match(t *Task) bool {
	if f.Priority != nil && t.Priority != *f.Priority {
		return false
	}
	if f.Category != nil && (t.Category == nil || *t.Category != *f.Category) {
		return false
	}
	if f.IsCompleted != nil && t.IsCompleted != *f.IsCompleted {
		return false
	}
	if f.Search != "" {
		q := strings.ToLower(f.Search)
		if !strings.Contains(strings.ToLower(t.Title), q) &&
			!strings.Contains(strings.ToLower(t.Description), q) {
			return false
		}
	}
	switch f.Due {
	case DueToday:
		start, end := DayBounds(f.Now)
		if t.DueDate == nil || t.DueDate.Before(start) || !t.DueDate.Before(end) {
			return false
		}
	case DueOverdue:
		if !t.IsOverdue(f.Now) {
			return false
		}
	}
	if f.DueFrom != nil && (t.DueDate == nil || t.DueDate.Before(*f.DueFrom)) {
		return false
	}
	if f.DueTo != nil && (t.DueDate == nil || t.DueDate.After(*f.DueTo)) {
		return false
	}
	return true
}

// Less - порядок задач для Ordering. Отсутствующий дедлайн считается
// больше любого значения, как NULL в PostgreSQL. Заголовки сравниваются
// побайтово (порядок кодовых точек UTF-8), что совпадает с COLLATE "C".
func (o Ordering) Less(a, b *Task) bool {
	if o.Field == "" {
		o = DefaultOrdering
	}
	cmp := 0
	switch o.Field {
	case OrderCreatedAt:
		cmp = a.CreatedAt.Compare(b.CreatedAt)
	case OrderDueDate:
		switch {
		case a.DueDate == nil && b.DueDate == nil:
			cmp = 0
		case a.DueDate == nil:
			cmp = 1
		case b.DueDate == nil:
			cmp = -1
		default:
			cmp = a.DueDate.Compare(*b.DueDate)
		}
	case OrderPriority:
		cmp = a.Priority.Rank() - b.Priority.Rank()
	case OrderTitle:
		cmp = strings.Compare(a.Title, b.Title)
	}
	if o.Desc {
		cmp = -cmp
	}
	if cmp != 0 {
		return cmp < 0
	}
	// вторичный порядок: новые выше, затем по id
	if c := b.CreatedAt.Compare(a.CreatedAt); c != 0 {
		return c < 0
	}
	return a.ID.String() < b.ID.String()
}
