// Package me реализует HTTP-обработчик получения профиля текущего пользователя.
package me

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/medical-contacts/internal/http/middlewarectx"
	"github.com/magabrotheeeer/medical-contacts/internal/http/response"
	"github.com/magabrotheeeer/medical-contacts/internal/lib/sl"
	"github.com/magabrotheeeer/medical-contacts/internal/models"
	"github.com/magabrotheeeer/medical-contacts/internal/storage"
)

// Service описывает получение профиля.
type Service interface {
	Me(ctx context.Context, userID string) (*models.User, error)
}

// Handler отдает профиль вызывающего.
type Handler struct {
	log     *slog.Logger
	service Service
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:     log,
		service: service,
	}
}

// ServeHTTP godoc
// @Summary Текущий пользователь
// @Description Возвращает публичный профиль владельца токена.
// @Tags Auth
// @Produce  json
// @Security BearerAuth
// @Success 200 {object} response.Response "Профиль"
// @Failure 401 {object} response.ErrorResponse "Пользователь не авторизован"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /auth/me [get]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.me"

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

	user, err := h.service.Me(r.Context(), userID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			log.Info("token subject no longer exists", slog.String("user_id", userID))
			response.Fail(w, r, http.StatusUnauthorized, response.CodeInvalidToken, "could not validate credentials")
			return
		}
		log.Error("failed to load user", sl.Err(err))
		response.Fail(w, r, http.StatusInternalServerError, response.CodeInternal, response.MsgInternal)
		return
	}

	response.JSON(w, r, http.StatusOK, response.OK(map[string]any{
		"user": user,
	}))
}
