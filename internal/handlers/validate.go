package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"net/http"
	"reflect"
	"strings"

	"taskFlow/internal/logger"
	"taskFlow/internal/service"

	"github.com/go-playground/validator/v10"
	"go.uber.org/zap"
)

var validate = newValidator()

// newValidator называет поля по json-тегу, чтобы details.field совпадал с телом запроса
func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name := strings.SplitN(fld.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func checkContentType(r *http.Request, target string) bool {
	contentType := r.Header.Get("Content-Type")
	if contentType == "" {
		return false
	}

	mediaType, _, err := mime.ParseMediaType(contentType)
	if err != nil {
		return false
	}

	return mediaType == target
}

// validateRequest возвращает первую ошибку валидации в виде VALIDATION_ERROR
func validateRequest(req any) error {
	err := validate.Struct(req)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if errors.As(err, &fieldErrs) && len(fieldErrs) > 0 {
		fe := fieldErrs[0]
		return service.NewValidationError(fe.Field(), validationReason(fe))
	}
	return err
}

func validationReason(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "обязательное поле"
	case "email":
		return "неверный формат email"
	case "hexcolor", "len":
		return "цвет в формате #RRGGBB"
	case "min":
		return fmt.Sprintf("минимум %s", fe.Param())
	case "max":
		return fmt.Sprintf("максимум %s символов", fe.Param())
	}
	return fe.Tag()
}

// decodeJSON проверяет Content-Type, читает тело и валидирует его.
// При ошибке ответ уже записан и возвращается false.
func (b base) decodeJSON(w http.ResponseWriter, r *http.Request, dst any) bool {
	if !checkContentType(r, "application/json") {
		logger.Warn("HTTP: Неверный тип контента",
			zap.String("expected", "application/json"),
			zap.String("received", r.Header.Get("Content-Type")),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusUnsupportedMediaType, "Content-Type должен быть application/json")
		return false
	}

	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		logger.Warn("HTTP: ошибка чтения JSON",
			zap.Error(err),
			zap.String("client_ip", r.RemoteAddr))

		responseWithError(w, http.StatusBadRequest, "неверное тело запроса: "+err.Error())
		return false
	}

	if err := validateRequest(dst); err != nil {
		b.handleServiceError(w, r, err, "ошибка валидации")
		return false
	}
	return true
}
