// Package list реализует HTTP-обработчик списка карточек пациентов с фильтрами.
package list

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

// Service описывает выборку карточек.
type Service interface {
	List(ctx context.Context, userID string, filter models.PatientFilter) ([]models.Patient, error)
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
// @Summary Список пациентов
// @Description Карточки текущего пользователя, новые первыми. search ищет подстроку без учета регистра в имени, id, телефоне и email.
// @Tags Patients
// @Produce  json
// @Security BearerAuth
// @Param search query string false "Подстрока поиска"
// @Param group query string false "Группа"
// @Param favorites_only query bool false "Только избранные"
// @Success 200 {object} response.Response "Список карточек"
// @Failure 400 {object} response.ErrorResponse "Некорректный параметр"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /patients [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.patient.list"

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

	q := r.URL.Query()
	filter := models.PatientFilter{
		Search: q.Get("search"),
		Group:  q.Get("group"),
	}
	if raw := q.Get("favorites_only"); raw != "" {
		fav, err := strconv.ParseBool(raw)
		if err != nil {
			log.Info("invalid favorites_only", slog.String("value", raw))
			response.Fail(w, r, http.StatusBadRequest, response.CodeBadRequest, "favorites_only must be a boolean")
			return
		}
		filter.FavoritesOnly = fav
	}

	res, err := h.service.List(r.Context(), userID, filter)
	if err != nil {
		log.Error("failed to list patients", sl.Err(err))
		response.Fail(w, r, http.StatusInternalServerError, response.CodeInternal, response.MsgInternal)
		return
	}

	log.Info("list patients", slog.Int("count", len(res)))
	response.JSON(w, r, http.StatusOK, response.OK(map[string]any{
		"patients": res,
		"count":    len(res),
	}))
}
