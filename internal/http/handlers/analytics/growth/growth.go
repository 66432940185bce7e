// Package growth реализует HTTP-обработчик помесячного прироста пациентов (тариф pro).
package growth

import (
	"context"
	"log/slog"
	"net/http"

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
	PatientGrowth(ctx context.Context, userID string) ([]models.MonthlyGrowth, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Прирост пациентов по месяцам
// @Tags Analytics
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response "Прирост по месяцам"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Нужен тариф pro"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /analytics/patient-growth [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.analytics.growth"

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

	growth, err := h.service.PatientGrowth(r.Context(), userID)
	if err != nil {
		log.Error("failed to compute patient growth", sl.Err(err))
		response.Fail(w, r, http.StatusInternalServerError, response.CodeInternal, response.MsgInternal)
		return
	}

	response.JSON(w, r, http.StatusOK, response.OK(map[string]any{
		"growth": growth,
	}))
}
