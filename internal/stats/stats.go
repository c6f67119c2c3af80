// Package stats считает статистику по набору задач одного владельца.
// Все функции чистые: зависят только от переданных задач и момента now
// и не изменяют задачи.
package stats

import (
	"math"
	"sort"
	"time"

	"taskFlow/internal/models/task"

	"github.com/google/uuid"
)

const (
	recentWindow    = 7 * 24 * time.Hour
	topCategoriesN  = 5
	dashboardListsN = 5
)

type Summary struct {
	Total          int     `json:"total_tasks"`
	Completed      int     `json:"completed_tasks"`
	Pending        int     `json:"pending_tasks"`
	CompletionRate float64 `json:"completion_rate"`
}

type TimeBased struct {
	Overdue     int `json:"overdue"`
	DueToday    int `json:"due_today"`
	DueThisWeek int `json:"due_this_week"`
}

// UrgentCounts: Total - объединение множеств, подсчёты HighPriority и Overdue
// могут пересекаться
type UrgentCounts struct {
	Total        int `json:"total"`
	HighPriority int `json:"high_priority"`
	Overdue      int `json:"overdue"`
}

type Overview struct {
	Summary
	TimeBased
	Urgent            UrgentCounts          `json:"urgent"`
	PendingByPriority map[task.Priority]int `json:"pending_by_priority"`
}

type PriorityStats struct {
	Priority task.Priority `json:"priority"`
	Name     string        `json:"name"`
	Summary
}

type CategoryStats struct {
	Category task.Category `json:"category"`
	Name     string        `json:"name"`
	Summary
}

type CustomCategoryStats struct {
	ID    uuid.UUID `json:"id"`
	Name  string    `json:"name"`
	Color string    `json:"color"`
	Summary
}

// CategoryBreakdown: Default содержит все системные категории (в том числе пустые),
// Custom - только пользовательские категории, у которых есть задачи
type CategoryBreakdown struct {
	Default []CategoryStats       `json:"default"`
	Custom  []CustomCategoryStats `json:"custom"`
}

type RecentActivity struct {
	CompletedLast7Days int `json:"completed_last_7_days"`
	CreatedLast7Days   int `json:"created_last_7_days"`
}

type TopCategory struct {
	Name           string  `json:"name"`
	Count          int     `json:"count"`
	CompletionRate float64 `json:"completion_rate"`
}

type Dashboard struct {
	Overview       Overview          `json:"overview"`
	Priorities     []PriorityStats   `json:"priorities"`
	Categories     CategoryBreakdown `json:"categories"`
	TimeBased      TimeBased         `json:"time_based"`
	RecentActivity RecentActivity    `json:"recent_activity"`
	TopCategories  []TopCategory     `json:"top_categories"`
	RecentTasks    []*task.Task      `json:"recent_tasks"`
	UrgentTasks    []*task.Task      `json:"urgent_tasks"`
}

// CompletionRate - процент завершённых, округлённый до одного знака.
// При total == 0 возвращает 0.
func CompletionRate(completed, total int) float64 {
	if total <= 0 {
		return 0
	}
	rate := float64(completed) / float64(total) * 100
	return math.Round(rate*10) / 10
}

func Summarize(tasks []*task.Task) Summary {
	s := Summary{}
	for _, t := range tasks {
		s.add(t)
	}
	s.finish()
	return s
}

func (s *Summary) add(t *task.Task) {
	s.Total++
	if t.IsCompleted {
		s.Completed++
	}
}

func (s *Summary) finish() {
	s.Pending = s.Total - s.Completed
	s.CompletionRate = CompletionRate(s.Completed, s.Total)
}

func ComputeTimeBased(tasks []*task.Task, now time.Time) TimeBased {
	dayStart, dayEnd := task.DayBounds(now)
	weekStart, weekEnd := task.WeekBounds(now)

	tb := TimeBased{}
	for _, t := range tasks {
		if t.IsCompleted || t.DueDate == nil {
			continue
		}
		due := *t.DueDate
		if due.Before(now) {
			tb.Overdue++
		}
		if !due.Before(dayStart) && due.Before(dayEnd) {
			tb.DueToday++
		}
		if !due.Before(weekStart) && due.Before(weekEnd) {
			tb.DueThisWeek++
		}
	}
	return tb
}

func Compute(tasks []*task.Task, now time.Time) Overview {
	o := Overview{
		Summary:           Summarize(tasks),
		TimeBased:         ComputeTimeBased(tasks, now),
		PendingByPriority: make(map[task.Priority]int, len(task.Priorities)),
	}
	for _, p := range task.Priorities {
		o.PendingByPriority[p] = 0
	}

	for _, t := range tasks {
		if t.IsCompleted {
			continue
		}
		o.PendingByPriority[t.Priority]++

		high := t.Priority == task.PriorityHigh
		overdue := t.IsOverdue(now)
		if high {
			o.Urgent.HighPriority++
		}
		if overdue {
			o.Urgent.Overdue++
		}
		if high || overdue {
			o.Urgent.Total++
		}
	}
	return o
}

// ByPriority возвращает разбивку в порядке HIGH, MEDIUM, LOW
func ByPriority(tasks []*task.Task) []PriorityStats {
	res := make([]PriorityStats, len(task.Priorities))
	index := make(map[task.Priority]int, len(task.Priorities))
	for i, p := range task.Priorities {
		res[i] = PriorityStats{Priority: p, Name: p.DisplayName()}
		index[p] = i
	}

	for _, t := range tasks {
		if i, ok := index[t.Priority]; ok {
			res[i].add(t)
		}
	}
	for i := range res {
		res[i].finish()
	}
	return res
}

// ByCategory: системные категории считаются по сохранённому полю category,
// OTHER получают только задачи без обеих категорий. Пользовательские
// категории группируются отдельно по custom_category.
func ByCategory(tasks []*task.Task) CategoryBreakdown {
	res := CategoryBreakdown{
		Default: make([]CategoryStats, len(task.Categories)),
		Custom:  []CustomCategoryStats{},
	}
	index := make(map[task.Category]int, len(task.Categories))
	for i, c := range task.Categories {
		res.Default[i] = CategoryStats{Category: c, Name: c.DisplayName()}
		index[c] = i
	}

	custom := make(map[uuid.UUID]int)
	for _, t := range tasks {
		if t.CustomCategoryID != nil {
			i, ok := custom[*t.CustomCategoryID]
			if !ok {
				i = len(res.Custom)
				custom[*t.CustomCategoryID] = i
				entry := CustomCategoryStats{ID: *t.CustomCategoryID}
				if t.CustomCategory != nil {
					entry.Name = t.CustomCategory.Name
					entry.Color = t.CustomCategory.Color
				}
				res.Custom = append(res.Custom, entry)
			}
			res.Custom[i].add(t)
		}

		switch {
		case t.Category != nil:
			if i, ok := index[*t.Category]; ok {
				res.Default[i].add(t)
			}
		case t.CustomCategoryID == nil:
			res.Default[index[task.CategoryOther]].add(t)
		}
	}

	for i := range res.Default {
		res.Default[i].finish()
	}
	for i := range res.Custom {
		res.Custom[i].finish()
	}
	sort.SliceStable(res.Custom, func(i, j int) bool {
		return res.Custom[i].Name < res.Custom[j].Name
	})
	return res
}

func ComputeRecentActivity(tasks []*task.Task, now time.Time) RecentActivity {
	since := now.Add(-recentWindow)
	ra := RecentActivity{}
	for _, t := range tasks {
		if t.IsCompleted && t.CompletedAt != nil && !t.CompletedAt.Before(since) {
			ra.CompletedLast7Days++
		}
		if !t.CreatedAt.Before(since) {
			ra.CreatedLast7Days++
		}
	}
	return ra
}

// TopCategories - до пяти эффективных категорий с наибольшим числом задач.
// При равенстве счётчиков порядок по имени.
func TopCategories(tasks []*task.Task) []TopCategory {
	type bucket struct {
		name      string
		total     int
		completed int
	}

	buckets := make(map[string]*bucket)
	for _, t := range tasks {
		eff := t.EffectiveCategory()
		b, ok := buckets[eff.Key()]
		if !ok {
			b = &bucket{name: eff.Name}
			buckets[eff.Key()] = b
		}
		b.total++
		if t.IsCompleted {
			b.completed++
		}
	}

	res := make([]TopCategory, 0, len(buckets))
	for _, b := range buckets {
		res = append(res, TopCategory{
			Name:           b.name,
			Count:          b.total,
			CompletionRate: CompletionRate(b.completed, b.total),
		})
	}
	sort.Slice(res, func(i, j int) bool {
		if res[i].Count != res[j].Count {
			return res[i].Count > res[j].Count
		}
		return res[i].Name < res[j].Name
	})

	if len(res) > topCategoriesN {
		res = res[:topCategoriesN]
	}
	return res
}

// Urgent возвращает незавершённые задачи с высоким приоритетом или просроченные.
// Сначала ближайшие дедлайны, задачи без дедлайна в конце.
// limit <= 0 означает без ограничения.
func Urgent(tasks []*task.Task, now time.Time, limit int) []*task.Task {
	res := []*task.Task{}
	for _, t := range tasks {
		if t.IsUrgent(now) {
			res = append(res, t)
		}
	}

	byDue := task.Ordering{Field: task.OrderDueDate}
	sort.SliceStable(res, func(i, j int) bool {
		return byDue.Less(res[i], res[j])
	})

	if limit > 0 && len(res) > limit {
		res = res[:limit]
	}
	return res
}

// Recent - limit самых новых задач по created_at
func Recent(tasks []*task.Task, limit int) []*task.Task {
	res := make([]*task.Task, len(tasks))
	copy(res, tasks)
	sort.SliceStable(res, func(i, j int) bool {
		return task.DefaultOrdering.Less(res[i], res[j])
	})
	if limit > 0 && len(res) > limit {
		res = res[:limit]
	}
	return res
}

func BuildDashboard(tasks []*task.Task, now time.Time) Dashboard {
	overview := Compute(tasks, now)
	return Dashboard{
		Overview:       overview,
		Priorities:     ByPriority(tasks),
		Categories:     ByCategory(tasks),
		TimeBased:      overview.TimeBased,
		RecentActivity: ComputeRecentActivity(tasks, now),
		TopCategories:  TopCategories(tasks),
		RecentTasks:    Recent(tasks, dashboardListsN),
		UrgentTasks:    Urgent(tasks, now, dashboardListsN),
	}
}
