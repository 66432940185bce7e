// Package push реализует HTTP-обработчик приема изменений от офлайн-клиента.
// Конфликты не разрешаются, записи, которые нельзя применить, пропускаются.
package push

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"

	"github.com/magabrotheeeer/medical-contacts/internal/http/middlewarectx"
	"github.com/magabrotheeeer/medical-contacts/internal/http/response"
	"github.com/magabrotheeeer/medical-contacts/internal/lib/sl"
	"github.com/magabrotheeeer/medical-contacts/internal/models"
)

// Request тело запроса.
type Request struct {
	Changes      models.PushChanges `json:"changes"`
	LastPulledAt int64              `json:"last_pulled_at"`
}

type Handler struct {
	log     *slog.Logger
	service Service
}

type Service interface {
	Push(ctx context.Context, userID string, changes models.PushChanges) (*models.PushResult, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Отправить изменения
// @Tags Sync
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body Request true "Изменения клиента"
// @Success 200 {object} response.Response "Итог применения"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /sync/push [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.sync.push"

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

	var req Request
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		response.Fail(w, r, http.StatusBadRequest, response.CodeBadRequest, "invalid request body")
		return
	}

	res, err := h.service.Push(r.Context(), userID, req.Changes)
	if err != nil {
		log.Error("failed to push changes", sl.Err(err))
		response.Fail(w, r, http.StatusInternalServerError, response.CodeInternal, response.MsgInternal)
		return
	}

	log.Info("changes pushed", slog.Int("applied", res.Applied), slog.Int("skipped", res.Skipped))
	response.JSON(w, r, http.StatusOK, response.OK(map[string]any{
		"status":  "success",
		"applied": res.Applied,
		"skipped": res.Skipped,
	}))
}
