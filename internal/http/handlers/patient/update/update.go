// Package update реализует HTTP-обработчик частичного обновления карточки.
// Поля, которых нет в теле запроса, не меняются.
package update

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/medical-contacts/internal/http/middlewarectx"
	"github.com/magabrotheeeer/medical-contacts/internal/http/response"
	"github.com/magabrotheeeer/medical-contacts/internal/lib/sl"
	"github.com/magabrotheeeer/medical-contacts/internal/models"
	"github.com/magabrotheeeer/medical-contacts/internal/storage"
)

type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

type Service interface {
	Update(ctx context.Context, userID, patientID string, upd models.PatientUpdate) (*models.Patient, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Обновить карточку пациента
// @Description Частичное обновление: меняются только переданные поля.
// @Tags Patients
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID карточки"
// @Param request body models.PatientUpdate true "Изменяемые поля"
// @Success 200 {object} response.Response "Обновленная карточка"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Карточка не найдена"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /patients/{id} [put]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.patient.update"

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

	var req models.PatientUpdate
	if err := render.DecodeJSON(r.Body, &req); err != nil {
		log.Error("failed to decode request body", sl.Err(err))
		response.Fail(w, r, http.StatusBadRequest, response.CodeBadRequest, "invalid request body")
		return
	}

	if err := h.validate.Struct(req); err != nil {
		log.Info("validation failed", sl.Err(err))
		response.JSON(w, r, http.StatusUnprocessableEntity, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}
	if err := req.Check(); err != nil {
		log.Info("validation failed", sl.Err(err))
		response.Fail(w, r, http.StatusUnprocessableEntity, response.CodeValidation, err.Error())
		return
	}

	id := chi.URLParam(r, "id")
	p, err := h.service.Update(r.Context(), userID, id, req)
	if err != nil {
		var fieldErr *models.FieldError
		if errors.As(err, &fieldErr) {
			log.Info("validation failed", sl.Err(err))
			response.Fail(w, r, http.StatusUnprocessableEntity, response.CodeValidation, fieldErr.Error())
			return
		}
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("patient not found", slog.String("patient_id", id))
			response.Fail(w, r, http.StatusNotFound, response.CodeNotFound, "patient not found")
			return
		}
		log.Error("failed to update patient", sl.Err(err))
		response.Fail(w, r, http.StatusInternalServerError, response.CodeInternal, response.MsgInternal)
		return
	}

	log.Info("patient updated", slog.String("patient_id", id))
	response.JSON(w, r, http.StatusOK, response.OK(map[string]any{
		"patient": p,
	}))
}
