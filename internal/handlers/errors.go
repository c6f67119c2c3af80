package handlers

import (
	"errors"
	"net/http"

	"taskFlow/internal/logger"
	"taskFlow/internal/metrics"
	"taskFlow/internal/middleware"
	"taskFlow/internal/service"

	"go.uber.org/zap"
)

// base - общее для всех обработчиков: учёт бизнес-ошибок в метриках
type base struct {
	metrics *metrics.Metrics
}

func (b base) handleBusinessError(w http.ResponseWriter, r *http.Request, err error) bool {
	var businessErr *service.BusinessError
	if !errors.As(err, &businessErr) {
		return false
	}
	statusCode := mapBusinessErrorToHTTP(businessErr.Code)

	logger.Warn("HTTP: Бизнес-ошибка",
		zap.String("request_id", middleware.GetRequestID(r.Context())),
		zap.String("error_code", businessErr.Code),
		zap.Int("http_status", statusCode))
	b.metrics.BusinessError(businessErr.Code)

	responseWithJSON(w, statusCode,
		toPayload("error", businessErr.Code),
		toPayload("message", businessErr.Message),
		toPayload("details", businessErr.Details),
	)
	return true
}

// handleServiceError: бизнес-ошибка уходит клиенту как есть, остальное - 500
func (b base) handleServiceError(w http.ResponseWriter, r *http.Request, err error, defaultMessage string) {
	if b.handleBusinessError(w, r, err) {
		return
	}
	logger.Error("HTTP: Ошибка Service", err,
		zap.String("request_id", middleware.GetRequestID(r.Context())),
		zap.String("path", r.URL.Path))
	responseWithError(w, http.StatusInternalServerError, defaultMessage)
}

func mapBusinessErrorToHTTP(code string) int {
	switch code {
	case service.CodeNotFound:
		return http.StatusNotFound
	case service.CodeValidation:
		return http.StatusBadRequest
	case service.CodeCategoryInUse, service.CodeVersionConflict:
		return http.StatusConflict
	case service.CodeUnauthorized, service.CodeInvalidCredentials:
		return http.StatusUnauthorized
	default:
		return http.StatusBadRequest
	}
}
