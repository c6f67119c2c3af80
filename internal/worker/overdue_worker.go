package worker

import (
	"context"
	"fmt"
	"time"

	"taskFlow/internal/logger"
	"taskFlow/internal/metrics"

	"github.com/robfig/cron/v3"
	"go.uber.org/zap"
)

const DefaultSchedule = "@every 5m"

// OverdueCounter - часть хранилища задач, нужная воркеру
type OverdueCounter interface {
	CountOverdue(ctx context.Context, now time.Time) (int, error)
}

// OverdueWorker по расписанию считает просроченные задачи всех владельцев
// и публикует число в метрике taskflow_overdue_tasks. Задачи не меняются:
// просроченность вычисляется на чтении.
type OverdueWorker struct {
	repo     OverdueCounter
	schedule string
	metrics  *metrics.Metrics
	now      func() time.Time
}

func NewOverdueWorker(repo OverdueCounter, schedule string, m *metrics.Metrics) *OverdueWorker {
	if schedule == "" {
		schedule = DefaultSchedule
	}
	return &OverdueWorker{
		repo:     repo,
		schedule: schedule,
		metrics:  m,
		now:      time.Now,
	}
}

// Start выполняет первую проверку сразу и блокируется до отмены ctx.
// Ошибка возвращается только для неверного расписания.
func (w *OverdueWorker) Start(ctx context.Context) error {
	c := cron.New(cron.WithLocation(time.Local))
	if _, err := c.AddFunc(w.schedule, func() { w.Check(ctx) }); err != nil {
		return fmt.Errorf("расписание воркера %q: %w", w.schedule, err)
	}

	logger.Info("Worker: Фоновая проверка просроченных задач запущена",
		zap.String("schedule", w.schedule))

	w.Check(ctx)
	c.Start()

	<-ctx.Done()
	logger.Info("Worker: Фоновая проверка останавливается")
	<-c.Stop().Done()
	return nil
}

func (w *OverdueWorker) Check(ctx context.Context) (int, error) {
	start := time.Now()
	now := w.now()

	count, err := w.repo.CountOverdue(ctx, now)
	if err != nil {
		logger.Warn("Worker: ошибка подсчёта просроченных задач", zap.Error(err))
		return 0, fmt.Errorf("подсчёт просроченных задач: %w", err)
	}

	w.metrics.SetOverdue(count, now)
	logger.Info("Worker: Завершение проверки задач",
		zap.Duration("ms", time.Since(start)),
		zap.Int("overdue", count))
	return count, nil
}
