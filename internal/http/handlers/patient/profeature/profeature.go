// Package profeature реализует пример эндпоинта, доступного только на тарифе pro.
// Доступ проверяет middlewarectx.RequirePlan, обработчик лишь подтверждает его.
package profeature

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/medical-contacts/internal/http/middlewarectx"
	"github.com/magabrotheeeer/medical-contacts/internal/http/response"
)

type Handler struct {
	log *slog.Logger
}

func New(log *slog.Logger) *Handler {
	return &Handler{
		log: log,
	}
}

// ServeHTTP godoc
// @Summary Функция тарифа pro
// @Tags Patients
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response "Доступ есть"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Нужен тариф pro"
// @Router /patients/pro-feature [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.patient.profeature"

	userID, _ := middlewarectx.UserIDFromContext(r.Context())
	h.log.Info("pro feature accessed",
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
		slog.String("user_id", userID),
	)

	response.JSON(w, r, http.StatusOK, response.OK(map[string]any{
		"message": "This is a pro feature!",
	}))
}
