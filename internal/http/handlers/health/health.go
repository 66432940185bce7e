// Package health отдает состояние сервиса для балансировщиков и проб.
package health

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"github.com/magabrotheeeer/medical-contacts/internal/http/response"
	"github.com/magabrotheeeer/medical-contacts/internal/lib/sl"
)

// Pinger проверяет доступность хранилища.
type Pinger interface {
	Ping(ctx context.Context) error
}

type Handler struct {
	log    *slog.Logger
	pinger Pinger
}

func New(log *slog.Logger, pinger Pinger) *Handler {
	return &Handler{
		log:    log,
		pinger: pinger,
	}
}

// ServeHTTP godoc
// @Summary Состояние сервиса
// @Tags Health
// @Produce  json
// @Success 200 {object} response.Response "Сервис работает"
// @Failure 503 {object} response.ErrorResponse "База данных недоступна"
// @Router /health [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.health"

	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	if err := h.pinger.Ping(ctx); err != nil {
		h.log.Error("database is unavailable", slog.String("op", op), sl.Err(err))
		response.Fail(w, r, http.StatusServiceUnavailable, response.CodeUnavailable, "database is unavailable")
		return
	}

	response.JSON(w, r, http.StatusOK, response.OK(map[string]any{
		"status": "ok",
	}))
}
