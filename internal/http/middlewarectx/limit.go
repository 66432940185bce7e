package middlewarectx

import (
	"context"
	"log/slog"
	"math"
	"net"
	"net/http"
	"strconv"
	"time"

	"github.com/magabrotheeeer/medical-contacts/internal/http/response"
	"github.com/magabrotheeeer/medical-contacts/internal/lib/sl"
)

// Limiter решает, пропускать ли запрос для ключа.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, time.Duration, error)
}

// KeyFunc вычисляет ключ ограничения для запроса.
type KeyFunc func(r *http.Request) string

// KeyByIP ключ по адресу клиента.
func KeyByIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		host = r.RemoteAddr
	}
	return "ip:" + host
}

// KeyByUserOrIP ключ по id пользователя, а для анонимных запросов по адресу.
func KeyByUserOrIP(r *http.Request) string {
	if id, ok := UserIDFromContext(r.Context()); ok {
		return "user:" + id
	}
	return KeyByIP(r)
}

// RateLimitMiddleware отвечает 429, когда лимит ключа исчерпан.
// Если хранилище лимитов недоступно, запрос пропускается.
func RateLimitMiddleware(log *slog.Logger, limiter Limiter, key KeyFunc) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.RateLimitMiddleware"

			k := key(r)
			allowed, retryAfter, err := limiter.Allow(r.Context(), k)
			if err != nil {
				log.Error("rate limiter unavailable", slog.String("op", op), sl.Err(err))
				next.ServeHTTP(w, r)
				return
			}
			if !allowed {
				log.Warn("too many requests", slog.String("op", op), slog.String("key", k))
				w.Header().Set("Retry-After", strconv.Itoa(int(math.Ceil(retryAfter.Seconds()))))
				response.Fail(w, r, http.StatusTooManyRequests, response.CodeRateLimited, "too many requests")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
