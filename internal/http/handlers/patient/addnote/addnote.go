// Package addnote реализует HTTP-обработчик добавления клинической заметки к карточке.
// Идентификатор и время заметки назначает сервер.
package addnote

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
	AddNote(ctx context.Context, userID, patientID string, in models.NoteInput) (*models.Note, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Добавить заметку
// @Tags Patients
// @Accept  json
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID карточки"
// @Param request body models.NoteInput true "Текст и тип визита"
// @Success 201 {object} response.Response "Заметка добавлена"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Карточка не найдена"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /patients/{id}/notes [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.patient.addnote"

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

	var req models.NoteInput
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

	id := chi.URLParam(r, "id")
	note, err := h.service.AddNote(r.Context(), userID, id, req)
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
		log.Error("failed to add note", sl.Err(err))
		response.Fail(w, r, http.StatusInternalServerError, response.CodeInternal, response.MsgInternal)
		return
	}

	log.Info("note added", slog.String("patient_id", id), slog.String("note_id", note.ID))
	response.JSON(w, r, http.StatusCreated, response.OK(map[string]any{
		"note": note,
	}))
}
