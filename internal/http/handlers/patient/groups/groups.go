// Package groups реализует HTTP-обработчик списка групп пациентов пользователя.
package groups

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/medical-contacts/internal/http/middlewarectx"
	"github.com/magabrotheeeer/medical-contacts/internal/http/response"
	"github.com/magabrotheeeer/medical-contacts/internal/lib/sl"
)

type Handler struct {
	log     *slog.Logger
	service Service
}

type Service interface {
	Groups(ctx context.Context, userID string) ([]string, error)
}

func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Группы пациентов
// @Tags Patients
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response "Группы по алфавиту"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /patients/groups [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.patient.groups"

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

	groups, err := h.service.Groups(r.Context(), userID)
	if err != nil {
		log.Error("failed to list groups", sl.Err(err))
		response.Fail(w, r, http.StatusInternalServerError, response.CodeInternal, response.MsgInternal)
		return
	}

	response.JSON(w, r, http.StatusOK, response.OK(map[string]any{
		"groups": groups,
	}))
}
