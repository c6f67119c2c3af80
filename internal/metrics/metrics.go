package metrics

import (
	"strconv"
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

var (
	globalMetrics *Metrics
	metricsOnce   sync.Once
)

// Metrics - коллекторы Prometheus приложения. Методы безопасно вызывать на nil.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec

	TasksCreatedTotal   prometheus.Counter
	TasksCompletedTotal prometheus.Counter
	BusinessErrorsTotal *prometheus.CounterVec

	OverdueTasks   prometheus.Gauge
	OverdueLastRun prometheus.Gauge
}

// New регистрирует коллекторы в реестре по умолчанию один раз за процесс.
// Все метрики с префиксом taskflow_.
func New() *Metrics {
	metricsOnce.Do(func() {
		globalMetrics = &Metrics{
			HTTPRequestsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "taskflow_http_requests_total",
					Help: "Количество HTTP запросов",
				},
				[]string{"method", "route", "status"},
			),
			HTTPRequestDuration: promauto.NewHistogramVec(
				prometheus.HistogramOpts{
					Name:    "taskflow_http_request_duration_seconds",
					Help:    "Время обработки HTTP запроса",
					Buckets: prometheus.DefBuckets,
				},
				[]string{"method", "route"},
			),
			TasksCreatedTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "taskflow_tasks_created_total",
					Help: "Количество созданных задач",
				},
			),
			TasksCompletedTotal: promauto.NewCounter(
				prometheus.CounterOpts{
					Name: "taskflow_tasks_completed_total",
					Help: "Количество задач, отмеченных завершёнными",
				},
			),
			BusinessErrorsTotal: promauto.NewCounterVec(
				prometheus.CounterOpts{
					Name: "taskflow_business_errors_total",
					Help: "Количество бизнес-ошибок по коду",
				},
				[]string{"code"},
			),
			OverdueTasks: promauto.NewGauge(
				prometheus.GaugeOpts{
					Name: "taskflow_overdue_tasks",
					Help: "Количество просроченных незавершённых задач",
				},
			),
			OverdueLastRun: promauto.NewGauge(
				prometheus.GaugeOpts{
					Name: "taskflow_overdue_last_run_timestamp_seconds",
					Help: "Время последнего подсчёта просроченных задач",
				},
			),
		}
	})
	return globalMetrics
}

func (m *Metrics) ObserveRequest(method, route string, status int, elapsed time.Duration) {
	if m == nil {
		return
	}
	if route == "" {
		route = "unmatched"
	}
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(status)).Inc()
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(elapsed.Seconds())
}

func (m *Metrics) TaskCreated() {
	if m == nil {
		return
	}
	m.TasksCreatedTotal.Inc()
}

func (m *Metrics) TasksCompleted(n int) {
	if m == nil || n <= 0 {
		return
	}
	m.TasksCompletedTotal.Add(float64(n))
}

func (m *Metrics) BusinessError(code string) {
	if m == nil {
		return
	}
	m.BusinessErrorsTotal.WithLabelValues(code).Inc()
}

func (m *Metrics) SetOverdue(count int, at time.Time) {
	if m == nil {
		return
	}
	m.OverdueTasks.Set(float64(count))
	m.OverdueLastRun.Set(float64(at.Unix()))
}
