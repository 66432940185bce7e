// Package create реализует HTTP-обработчик создания карточки пациента.
//
// Handler валидирует тело запроса и передает его сервису, который выделяет
// следующий отображаемый идентификатор владельца (PAT001, PAT002, ...).
package create

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/medical-contacts/internal/http/middlewarectx"
	"github.com/magabrotheeeer/medical-contacts/internal/http/response"
	"github.com/magabrotheeeer/medical-contacts/internal/lib/sl"
	"github.com/magabrotheeeer/medical-contacts/internal/models"
)

// Handler управляет запросами на создание карточек.
type Handler struct {
	log      *slog.Logger        // Логгер для записи информации и ошибок
	service  Service             // Сервис бизнес-логики карточек
	validate *validator.Validate // Валидатор входящих данных
}

// Service описывает создание карточки.
type Service interface {
	Create(ctx context.Context, userID string, in models.PatientInput) (*models.Patient, error)
}

// New создает новый Handler с переданными логгером и сервисом.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Создать карточку пациента
// @Description Создает карточку текущего пользователя. Отображаемый id выделяется сервером.
// @Tags Patients
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.PatientInput true "Данные пациента"
// @Success 201 {object} response.Response "Карточка создана"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /patients [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.patient.create"

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

	var req models.PatientInput
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

	p, err := h.service.Create(r.Context(), userID, req)
	if err != nil {
		var fieldErr *models.FieldError
		if errors.As(err, &fieldErr) {
			log.Info("validation failed", sl.Err(err))
			response.Fail(w, r, http.StatusUnprocessableEntity, response.CodeValidation, fieldErr.Error())
			return
		}
		log.Error("failed to create patient", sl.Err(err))
		response.Fail(w, r, http.StatusInternalServerError, response.CodeInternal, response.MsgInternal)
		return
	}

	log.Info("patient created", slog.String("patient_id", p.ID), slog.String("display_id", p.DisplayID))
	response.JSON(w, r, http.StatusCreated, response.OK(map[string]any{
		"patient": p,
	}))
}
