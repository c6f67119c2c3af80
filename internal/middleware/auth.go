package middleware

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"taskFlow/internal/auth"
	"taskFlow/internal/logger"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const principalKey contextKey = "principal"

// TokenParser проверяет bearer-токен и возвращает владельца запроса
type TokenParser interface {
	Parse(token string) (*auth.Principal, error)
}

// Authenticate пропускает дальше только запросы с валидным токеном.
// Владелец кладётся в контекст и доступен через UserIDFromContext.
func Authenticate(tokens TokenParser) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := auth.ExtractBearer(r.Header.Get("Authorization"))

			principal, err := tokens.Parse(token)
			if err != nil {
				message := "Требуется авторизация"
				if errors.Is(err, auth.ErrExpiredToken) {
					message = "Срок действия токена истёк"
				}

				logger.Warn("HTTP: Отказ в доступе",
					zap.String("request_id", GetRequestID(r.Context())),
					zap.String("path", r.URL.Path),
					zap.String("reason", err.Error()),
					zap.String("client_ip", r.RemoteAddr))

				w.Header().Set("Content-Type", "application/json")
				w.Header().Set("WWW-Authenticate", `Bearer realm="taskflow"`)
				w.WriteHeader(http.StatusUnauthorized)
				json.NewEncoder(w).Encode(map[string]any{
					"error":   "UNAUTHORIZED",
					"message": message,
				})
				return
			}

			ctx := WithPrincipal(r.Context(), principal)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

func WithPrincipal(ctx context.Context, p *auth.Principal) context.Context {
	return context.WithValue(ctx, principalKey, p)
}

func PrincipalFromContext(ctx context.Context) (*auth.Principal, bool) {
	p, ok := ctx.Value(principalKey).(*auth.Principal)
	return p, ok && p != nil
}

func UserIDFromContext(ctx context.Context) (uuid.UUID, bool) {
	p, ok := PrincipalFromContext(ctx)
	if !ok {
		return uuid.Nil, false
	}
	return p.UserID, true
}
