package middlewarectx

import (
	"log/slog"
	"net/http"
	"runtime/debug"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/medical-contacts/internal/http/response"
)

// Recoverer перехватывает панику обработчика, пишет ее со стеком в лог и отвечает 500.
func Recoverer(log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				rec := recover()
				if rec == nil {
					return
				}
				if rec == http.ErrAbortHandler {
					panic(rec)
				}
				log.Error("panic recovered",
					slog.String("request_id", middleware.GetReqID(r.Context())),
					slog.String("method", r.Method),
					slog.String("path", r.URL.Path),
					slog.Any("panic", rec),
					slog.String("stack", string(debug.Stack())),
				)
				response.Fail(w, r, http.StatusInternalServerError, response.CodeInternal, response.MsgInternal)
			}()
			next.ServeHTTP(w, r)
		})
	}
}
