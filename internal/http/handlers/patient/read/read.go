// Package read реализует HTTP-обработчик получения карточки пациента по id.
//
// Чужая карточка неотличима от отсутствующей: в обоих случаях ответ 404.
package read

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/medical-contacts/internal/http/middlewarectx"
	"github.com/magabrotheeeer/medical-contacts/internal/http/response"
	"github.com/magabrotheeeer/medical-contacts/internal/lib/sl"
	"github.com/magabrotheeeer/medical-contacts/internal/models"
	"github.com/magabrotheeeer/medical-contacts/internal/storage"
)

// Handler обрабатывает запросы на получение карточки.
type Handler struct {
	log     *slog.Logger // Логгер для записи информации и ошибок
	service Service      // Сервис бизнес-логики карточек
}

// Service описывает интерфейс чтения карточки.
type Service interface {
	Get(ctx context.Context, userID, patientID string) (*models.Patient, error)
}

// New создает новый Handler с переданным логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Получить карточку пациента
// @Description Возвращает карточку с заметками, новые заметки первыми.
// @Tags Patients
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID карточки"
// @Success 200 {object} response.Response "Карточка"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Карточка не найдена"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /patients/{id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.patient.read"

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
	id := chi.URLParam(r, "id")

	p, err := h.service.Get(r.Context(), userID, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("patient not found", slog.String("patient_id", id))
			response.Fail(w, r, http.StatusNotFound, response.CodeNotFound, "patient not found")
			return
		}
		log.Error("failed to read patient", sl.Err(err))
		response.Fail(w, r, http.StatusInternalServerError, response.CodeInternal, response.MsgInternal)
		return
	}

	response.JSON(w, r, http.StatusOK, response.OK(map[string]any{
		"patient": p,
	}))
}
