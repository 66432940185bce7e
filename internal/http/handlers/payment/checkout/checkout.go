// Package checkout реализует HTTP-обработчик создания ссылки на оплату тарифа pro.
package checkout

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/medical-contacts/internal/http/middlewarectx"
	"github.com/magabrotheeeer/medical-contacts/internal/http/response"
	"github.com/magabrotheeeer/medical-contacts/internal/lib/sl"
	"github.com/magabrotheeeer/medical-contacts/internal/services/billing"
	"github.com/magabrotheeeer/medical-contacts/internal/storage"
)

// Service определяет интерфейс для работы с платежами.
type Service interface {
	CreateCheckoutSession(ctx context.Context, userID string) (string, error)
}

// Handler обрабатывает запросы на создание сессии оплаты.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service
}

// New создает новый экземпляр Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Создать сессию оплаты
// @Description Возвращает ссылку на оплату тарифа pro для текущего пользователя.
// @Tags Payments
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response "Ссылка на оплату"
// @Failure 400 {object} response.ErrorResponse "Тариф pro уже подключен"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /payments/create-checkout-session [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.payment.checkout"

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

	checkoutURL, err := h.service.CreateCheckoutSession(r.Context(), userID)
	switch {
	case err == nil:
	case errors.Is(err, billing.ErrAlreadyPro):
		log.Info("user already has pro plan", slog.String("user_id", userID))
		response.Fail(w, r, http.StatusBadRequest, response.CodeBadRequest, "user already has pro plan")
		return
	case errors.Is(err, storage.ErrNotFound):
		log.Info("token subject no longer exists", slog.String("user_id", userID))
		response.Fail(w, r, http.StatusUnauthorized, response.CodeInvalidToken, "could not validate credentials")
		return
	default:
		log.Error("failed to create checkout session", sl.Err(err))
		response.Fail(w, r, http.StatusInternalServerError, response.CodeInternal, response.MsgInternal)
		return
	}

	log.Info("checkout session created", slog.String("user_id", userID))
	response.JSON(w, r, http.StatusOK, response.OK(map[string]any{
		"checkout_url": checkoutURL,
	}))
}
