package handlers

import (
	"net/http"
	"time"

	"taskFlow/internal/handlers/dto"
	"taskFlow/internal/logger"
	"taskFlow/internal/metrics"

	"go.uber.org/zap"
)

type StatsHandler struct {
	base
	StatsService StatsService
	now          func() time.Time
}

// NewStatsHandler: now нужен для производных полей задач в dashboard
func NewStatsHandler(statsService StatsService, now func() time.Time, m *metrics.Metrics) *StatsHandler {
	if now == nil {
		now = time.Now
	}
	return &StatsHandler{
		base:         base{metrics: m},
		StatsService: statsService,
		now:          now,
	}
}

func (s *StatsHandler) GetStats(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}

	overview, err := s.StatsService.Overview(r.Context(), owner)
	if err != nil {
		s.handleServiceError(w, r, err, "не удалось посчитать статистику")
		return
	}
	responseWithBody(w, http.StatusOK, overview)
}

func (s *StatsHandler) GetCategoryStats(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}

	breakdown, err := s.StatsService.ByCategory(r.Context(), owner)
	if err != nil {
		s.handleServiceError(w, r, err, "не удалось посчитать статистику")
		return
	}
	responseWithBody(w, http.StatusOK, breakdown)
}

func (s *StatsHandler) GetPriorityStats(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}

	priorities, err := s.StatsService.ByPriority(r.Context(), owner)
	if err != nil {
		s.handleServiceError(w, r, err, "не удалось посчитать статистику")
		return
	}
	responseWithBody(w, http.StatusOK, priorities)
}

func (s *StatsHandler) GetDashboard(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}

	d, err := s.StatsService.Dashboard(r.Context(), owner)
	if err != nil {
		s.handleServiceError(w, r, err, "не удалось собрать dashboard")
		return
	}

	logger.Info("HTTP_OUT: Dashboard собран",
		zap.Int("total_tasks", d.Overview.Total),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithBody(w, http.StatusOK, dto.FromDashboard(d, s.now()))
}
