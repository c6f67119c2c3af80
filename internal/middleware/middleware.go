package middleware

import (
	"context"
	"encoding/json"
	"net"
	"net/http"
	"strconv"
	"sync"
	"time"

	"taskFlow/internal/logger"
	"taskFlow/internal/metrics"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

type contextKey string

const RequestIdKey contextKey = "request_id"

func RequestID(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestId := r.Header.Get("X-Request-ID")
		if requestId == "" {
			requestId = uuid.New().String()
		}

		w.Header().Set("X-Request-ID", requestId)

		ctx := context.WithValue(r.Context(), RequestIdKey, requestId)
		r = r.WithContext(ctx)

		next.ServeHTTP(w, r)
	})
}

type loggingWriter struct {
	http.ResponseWriter
	status      int
	size        int
	wroteHeader bool
}

func newLoggingWriter(w http.ResponseWriter) *loggingWriter {
	return &loggingWriter{
		ResponseWriter: w,
		status:         http.StatusOK,
	}
}

func (lw *loggingWriter) WriteHeader(code int) {
	if !lw.wroteHeader {
		lw.status = code
		lw.wroteHeader = true
		lw.ResponseWriter.WriteHeader(code)
	}
}

func (lw *loggingWriter) Write(b []byte) (int, error) {
	if !lw.wroteHeader {
		lw.WriteHeader(http.StatusOK)
	}

	n, err := lw.ResponseWriter.Write(b)
	lw.size += n
	return n, err
}

func Logging(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		requestId := GetRequestID(r.Context())

		logger.Info(
			"HTTP_IN: Начало запроса",
			zap.String("request_id", requestId),
			zap.String("method", r.Method),
			zap.String("path", r.URL.Path),
			zap.String("query", r.URL.RawQuery),
			zap.String("client_ip", r.RemoteAddr),
		)

		lw := newLoggingWriter(w)
		next.ServeHTTP(lw, r)

		logLevel := zap.InfoLevel
		if lw.status >= 400 && lw.status < 500 {
			logLevel = zap.WarnLevel
		} else if lw.status >= 500 {
			logLevel = zap.ErrorLevel
		}
		logger.Log(
			logLevel,
			"HTTP_OUT: Завершение запроса",
			zap.String("request_id", requestId),
			zap.Int("status", lw.status),
			zap.Int("bytes_written", lw.size),
			zap.Duration("ms", time.Since(start)),
		)
	})
}

// Metrics считает запросы по шаблону маршрута chi, а не по фактическому пути,
// чтобы id в URL не раздували число меток
func Metrics(m *metrics.Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			lw := newLoggingWriter(w)
			next.ServeHTTP(lw, r)

			route := ""
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				route = rctx.RoutePattern()
			}
			m.ObserveRequest(r.Method, route, lw.status, time.Since(start))
		})
	}
}

func GetRequestID(ctx context.Context) string {
	if id, ok := ctx.Value(RequestIdKey).(string); ok {
		return id
	}
	return ""
}

type clientInfo struct {
	count   int
	resetAt time.Time
}

// rateLimiter - окно фиксированной длины на каждый IP. Истёкшие окна
// удаляются из карты не чаще одного раза за окно.
type rateLimiter struct {
	rpm    int
	window time.Duration
	now    func() time.Time

	mtx       sync.Mutex
	clients   map[string]*clientInfo
	nextSweep time.Time
}

func newRateLimiter(rpm int, window time.Duration) *rateLimiter {
	return &rateLimiter{
		rpm:     rpm,
		window:  window,
		now:     time.Now,
		clients: make(map[string]*clientInfo),
	}
}

// allow учитывает запрос клиента ip и возвращает остаток и время сброса окна
func (l *rateLimiter) allow(ip string) (remaining int, resetAt time.Time, ok bool) {
	now := l.now()

	l.mtx.Lock()
	defer l.mtx.Unlock()

	l.sweep(now)

	info, exists := l.clients[ip]
	switch {
	case !exists:
		info = &clientInfo{count: 1, resetAt: now.Add(l.window)}
		l.clients[ip] = info
	case now.After(info.resetAt):
		info.count = 1
		info.resetAt = now.Add(l.window)
	case info.count >= l.rpm:
		return 0, info.resetAt, false
	default:
		info.count++
	}

	remaining = l.rpm - info.count
	if remaining < 0 {
		remaining = 0
	}
	return remaining, info.resetAt, true
}

func (l *rateLimiter) sweep(now time.Time) {
	if now.Before(l.nextSweep) {
		return
	}
	for ip, info := range l.clients {
		if now.After(info.resetAt) {
			delete(l.clients, ip)
		}
	}
	l.nextSweep = now.Add(l.window)
}

func (l *rateLimiter) size() int {
	l.mtx.Lock()
	defer l.mtx.Unlock()
	return len(l.clients)
}

func (l *rateLimiter) middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ip := getIp(r)
		remaining, resetAt, ok := l.allow(ip)

		if !ok {
			retryAfter := int(resetAt.Sub(l.now()).Seconds())
			if retryAfter < 1 {
				retryAfter = 1
			}

			logger.Warn("HTTP: Превышен лимит запросов",
				zap.String("client_ip", ip),
				zap.Int("rpm", l.rpm))

			w.Header().Set("Content-Type", "application/json")
			w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
			w.WriteHeader(http.StatusTooManyRequests)

			json.NewEncoder(w).Encode(map[string]any{
				"error":       "rate_limit_exceeded",
				"message":     "Слишком много запросов. Попробуйте позже.",
				"retry_after": retryAfter,
				"request_id":  GetRequestID(r.Context()),
			})
			return
		}

		w.Header().Set("X-RateLimit-Limit", strconv.Itoa(l.rpm))
		w.Header().Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		w.Header().Set("X-RateLimit-Reset", strconv.FormatInt(resetAt.Unix(), 10))

		next.ServeHTTP(w, r)
	})
}

// RateLimit ограничивает число запросов с одного IP в минуту
func RateLimit(rpm int) func(http.Handler) http.Handler {
	return newRateLimiter(rpm, time.Minute).middleware
}

func getIp(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}
