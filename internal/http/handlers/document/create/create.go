// Package create реализует HTTP-обработчик сохранения метаданных документа (тариф pro).
// Сам файл хранится снаружи, сервис получает только имя и ссылку.
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
	"github.com/magabrotheeeer/medical-contacts/internal/storage"
)

type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

type Service interface {
	Create(ctx context.Context, userID string, in models.DocumentInput) (*models.Document, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Сохранить документ пациента
// @Tags Documents
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param request body models.DocumentInput true "Метаданные документа"
// @Success 201 {object} response.Response "Документ сохранен"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Нужен тариф pro"
// @Failure 404 {object} response.ErrorResponse "Карточка не найдена"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /documents [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.document.create"

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

	var req models.DocumentInput
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

	doc, err := h.service.Create(r.Context(), userID, req)
	if err != nil {
		var fieldErr *models.FieldError
		if errors.As(err, &fieldErr) {
			log.Info("validation failed", sl.Err(err))
			response.Fail(w, r, http.StatusUnprocessableEntity, response.CodeValidation, fieldErr.Error())
			return
		}
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("patient not found", slog.String("patient_id", req.PatientID))
			response.Fail(w, r, http.StatusNotFound, response.CodeNotFound, "patient not found")
			return
		}
		log.Error("failed to create document", sl.Err(err))
		response.Fail(w, r, http.StatusInternalServerError, response.CodeInternal, response.MsgInternal)
		return
	}

	log.Info("document stored", slog.String("document_id", doc.ID))
	response.JSON(w, r, http.StatusCreated, response.OK(map[string]any{
		"document": doc,
	}))
}
