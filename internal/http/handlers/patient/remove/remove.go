// Package remove реализует HTTP-обработчик удаления карточки пациента.
// Отображаемый id удаленной карточки повторно не выдается.
package remove

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
	"github.com/magabrotheeeer/medical-contacts/internal/storage"
)

type Handler struct {
	log     *slog.Logger
	service Service
}

type Service interface {
	Delete(ctx context.Context, userID, patientID string) error
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Удалить карточку пациента
// @Tags Patients
// @Produce  json
// @Security BearerAuth
// @Param id path string true "ID карточки"
// @Success 200 {object} response.Response "Карточка удалена"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 404 {object} response.ErrorResponse "Карточка не найдена"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /patients/{id} [delete]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.patient.remove"

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

	if err := h.service.Delete(r.Context(), userID, id); err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("patient not found", slog.String("patient_id", id))
			response.Fail(w, r, http.StatusNotFound, response.CodeNotFound, "patient not found")
			return
		}
		log.Error("failed to delete patient", sl.Err(err))
		response.Fail(w, r, http.StatusInternalServerError, response.CodeInternal, response.MsgInternal)
		return
	}

	log.Info("patient deleted", slog.String("patient_id", id))
	response.JSON(w, r, http.StatusOK, response.OK(map[string]any{
		"message": "patient deleted successfully",
	}))
}
