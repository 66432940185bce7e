// Package listnotes реализует HTTP-обработчик списка заметок карточки, новые первыми.
package listnotes

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

type Handler struct {
	log     *slog.Logger
	service Service
}

type Service interface {
	Notes(ctx context.Context, userID, patientID string) ([]models.Note, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Заметки карточки
// @Tags Patients
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID карточки"
// @Success 200 {object} response.Response "Заметки, новые первыми"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Карточка не найдена"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /patients/{id}/notes [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.patient.listnotes"

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

	notes, err := h.service.Notes(r.Context(), userID, id)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("patient not found", slog.String("patient_id", id))
			response.Fail(w, r, http.StatusNotFound, response.CodeNotFound, "patient not found")
			return
		}
		log.Error("failed to list notes", sl.Err(err))
		response.Fail(w, r, http.StatusInternalServerError, response.CodeInternal, response.MsgInternal)
		return
	}

	response.JSON(w, r, http.StatusOK, response.OK(map[string]any{
		"notes": notes,
	}))
}
