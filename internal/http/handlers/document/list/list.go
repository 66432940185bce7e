// Package list реализует HTTP-обработчик списка документов карточки (тариф pro).
package list

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
	List(ctx context.Context, userID, patientID string) ([]models.Document, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Документы пациента
// @Tags Documents
// @Produce  json
// @Security BearerAuth
// @Param patient_id path string true "ID карточки"
// @Success 200 {object} response.Response "Документы, свежие первыми"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 403 {object} response.ErrorResponse "Нужен тариф pro"
// @Failure 404 {object} response.ErrorResponse "Карточка не найдена"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /documents/{patient_id} [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.document.list"

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
	patientID := chi.URLParam(r, "patient_id")

	docs, err := h.service.List(r.Context(), userID, patientID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("patient not found", slog.String("patient_id", patientID))
			response.Fail(w, r, http.StatusNotFound, response.CodeNotFound, "patient not found")
			return
		}
		log.Error("failed to list documents", sl.Err(err))
		response.Fail(w, r, http.StatusInternalServerError, response.CodeInternal, response.MsgInternal)
		return
	}

	response.JSON(w, r, http.StatusOK, response.OK(map[string]any{
		"documents": docs,
	}))
}
