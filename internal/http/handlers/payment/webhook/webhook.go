// Package webhook принимает уведомления платежного провайдера.
//
// Подпись уведомления не проверяется: заголовки и тело только пишутся в лог.
// Событие checkout.session.completed переводит пользователя на тариф pro.
package webhook

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/medical-contacts/internal/http/response"
	"github.com/magabrotheeeer/medical-contacts/internal/lib/sl"
	"github.com/magabrotheeeer/medical-contacts/internal/models"
	"github.com/magabrotheeeer/medical-contacts/internal/services/billing"
	"github.com/magabrotheeeer/medical-contacts/internal/storage"
)

// maxPayloadBytes ограничение размера тела уведомления.
const maxPayloadBytes = 1 << 20

type Service interface {
	HandleWebhook(ctx context.Context, event billing.WebhookEvent) (*models.User, error)
}

type Handler struct {
	log     *slog.Logger
	service Service
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Webhook платежного провайдера
// @Tags Payments
// @Accept  json
// @Produce  json
// @Success 200 {object} response.Response "Уведомление принято"
// @Failure 400 {object} response.ErrorResponse "Некорректное тело"
// @Failure 404 {object} response.ErrorResponse "Пользователь не найден"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /webhooks/stripe [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.webhook"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxPayloadBytes))
	if err != nil {
		log.Error("failed to read webhook body", sl.Err(err))
		response.Fail(w, r, http.StatusBadRequest, response.CodeBadRequest, "invalid request body")
		return
	}
	log.Info("webhook received",
		slog.Any("headers", r.Header),
		slog.String("payload", string(body)),
	)

	var event billing.WebhookEvent
	if err = json.Unmarshal(body, &event); err != nil {
		log.Error("failed to unmarshal webhook payload", sl.Err(err))
		response.Fail(w, r, http.StatusBadRequest, response.CodeBadRequest, "invalid request body")
		return
	}

	user, err := h.service.HandleWebhook(r.Context(), event)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("webhook references unknown user", slog.String("user_id", event.Data.Object.ClientReferenceID))
			response.Fail(w, r, http.StatusNotFound, response.CodeNotFound, "user not found")
			return
		}
		log.Error("failed to process webhook event", sl.Err(err))
		response.Fail(w, r, http.StatusInternalServerError, response.CodeInternal, response.MsgInternal)
		return
	}
	if user != nil {
		log.Info("subscription upgraded", slog.String("user_id", user.ID))
	}

	response.JSON(w, r, http.StatusOK, response.OK(map[string]any{
		"status": "received",
	}))
}
