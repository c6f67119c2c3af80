package handlers

import (
	"net/http"
	"time"

	"taskFlow/internal/handlers/dto"
	"taskFlow/internal/logger"
	"taskFlow/internal/metrics"
	"taskFlow/internal/service"

	"go.uber.org/zap"
)

type CategoryHandler struct {
	base
	CategoryService CategoryService
}

func NewCategoryHandler(categoryService CategoryService, m *metrics.Metrics) *CategoryHandler {
	return &CategoryHandler{
		base:            base{metrics: m},
		CategoryService: categoryService,
	}
}

func (s *CategoryHandler) PostCategory(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}

	var request dto.CategoryRequest
	if !s.decodeJSON(w, r, &request) {
		return
	}

	c, err := s.CategoryService.CreateCategory(r.Context(), owner, service.CategoryDraft{
		Name:        request.Name,
		Color:       request.Color,
		Description: request.Description,
	})
	if err != nil {
		s.handleServiceError(w, r, err, "не удалось создать категорию")
		return
	}

	logger.Info("HTTP_OUT: Категория создана",
		zap.String("category_id", c.ID.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusCreated))

	responseWithBody(w, http.StatusCreated, dto.FromCategory(c))
}

func (s *CategoryHandler) GetCategories(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}

	list, err := s.CategoryService.ListCategories(r.Context(), owner)
	if err != nil {
		s.handleServiceError(w, r, err, "не удалось получить категории")
		return
	}

	logger.Info("HTTP_OUT: Категории получены",
		zap.Int("count", len(list)),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithBody(w, http.StatusOK, dto.FromCategoryList(list))
}

func (s *CategoryHandler) GetCategoryByID(w http.ResponseWriter, r *http.Request) {
	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	c, err := s.CategoryService.GetCategory(r.Context(), owner, id)
	if err != nil {
		s.handleServiceError(w, r, err, "не удалось получить категорию")
		return
	}
	responseWithBody(w, http.StatusOK, dto.FromCategory(c))
}

func (s *CategoryHandler) UpdateCategoryByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	var request dto.UpdateCategoryRequest
	if !s.decodeJSON(w, r, &request) {
		return
	}

	c, err := s.CategoryService.UpdateCategory(r.Context(), owner, id, service.CategoryPatch{
		Name:        request.Name,
		Color:       request.Color,
		Description: request.Description,
	})
	if err != nil {
		s.handleServiceError(w, r, err, "не удалось обновить категорию")
		return
	}

	logger.Info("HTTP_OUT: Категория обновлена",
		zap.String("category_id", id.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusOK))

	responseWithBody(w, http.StatusOK, dto.FromCategory(c))
}

func (s *CategoryHandler) DeleteCategoryByID(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	logger.HttpRequestInfo(r, "HTTP_IN:")

	owner, ok := ownerFromRequest(w, r)
	if !ok {
		return
	}
	id, ok := parseID(w, r)
	if !ok {
		return
	}

	if err := s.CategoryService.DeleteCategory(r.Context(), owner, id); err != nil {
		s.handleServiceError(w, r, err, "не удалось удалить категорию")
		return
	}

	logger.Info("HTTP_OUT: Категория удалена",
		zap.String("category_id", id.String()),
		zap.Duration("ms", time.Since(start)),
		zap.Int("http_status", http.StatusNoContent))

	w.WriteHeader(http.StatusNoContent)
}
