// Package pull реализует HTTP-обработчик выдачи изменений офлайн-клиенту.
//
// Клиент передает last_pulled_at (мс с начала эпохи) и получает карточки и
// заметки, измененные после этого момента, вместе с новой отметкой времени.
package pull

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/medical-contacts/internal/http/middlewarectx"
	"github.com/magabrotheeeer/medical-contacts/internal/http/response"
	"github.com/magabrotheeeer/medical-contacts/internal/lib/sl"
	"github.com/magabrotheeeer/medical-contacts/internal/models"
)

type Handler struct {
	log     *slog.Logger
	service Service
}

type Service interface {
	Pull(ctx context.Context, userID string, lastPulledAt int64) (*models.PullResult, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Получить изменения
// @Tags Sync
// @Produce  json
// @Security BearerAuth
// @Param last_pulled_at query int false "Момент прошлой синхронизации, мс"
// @Success 200 {object} response.Response "Изменения и новая отметка времени"
// @Failure 400 {object} response.ErrorResponse "Некорректный параметр"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /sync/pull [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.sync.pull"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	userID, ok := middlewarectx.UserIDFromContext(r.Context())
	if !ok {
		log.Error("user id not found in context")
		response.Fail(w, r, http.StatusUnauthorized, response.CodeUnauthorized, "unauthorized")
		return
	}

	var lastPulledAt int64
	if raw := r.URL.Query().Get("last_pulled_at"); raw != "" {
		v, err := strconv.ParseInt(raw, 10, 64)
		if err != nil || v < 0 {
			log.Info("invalid last_pulled_at", slog.String("value", raw))
			response.Fail(w, r, http.StatusBadRequest, response.CodeBadRequest, "last_pulled_at must be a non-negative integer")
			return
		}
		lastPulledAt = v
	}

	res, err := h.service.Pull(r.Context(), userID, lastPulledAt)
	if err != nil {
		log.Error("failed to pull changes", sl.Err(err))
		response.Fail(w, r, http.StatusInternalServerError, response.CodeInternal, response.MsgInternal)
		return
	}

	log.Info("changes pulled",
		slog.Int("created", len(res.Changes.Patients.Created)),
		slog.Int("updated", len(res.Changes.Patients.Updated)),
	)
	response.JSON(w, r, http.StatusOK, response.OK(res))
}
