// Package refresh реализует HTTP-обработчик выдачи нового access-токена по refresh-токену.
package refresh

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/medical-contacts/internal/http/response"
	"github.com/magabrotheeeer/medical-contacts/internal/lib/jwt"
	"github.com/magabrotheeeer/medical-contacts/internal/lib/sl"
	"github.com/magabrotheeeer/medical-contacts/internal/services/auth"
)

// Request тело запроса.
type Request struct {
	RefreshToken string `json:"refresh_token" validate:"required"`
}

// Service описывает бизнес-логику обновления токена.
type Service interface {
	Refresh(ctx context.Context, refreshToken string) (*auth.Session, error)
}

// Handler обрабатывает запросы на обновление токена.
type Handler struct {
	log      *slog.Logger
	service  Service
	validate *validator.Validate
}

// New создает Handler.
func New(log *slog.Logger, service Service) *Handler {
	return &Handler{
		log:      log,
		service:  service,
		validate: validator.New(),
	}
}

// ServeHTTP godoc
// @Summary Обновление access-токена
// @Description Проверяет refresh-токен и выдает новый access-токен с текущим тарифом. Refresh-токен возвращается тот же.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Refresh-токен"
// @Success 200 {object} response.Response "Новый access-токен"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Токен истек или недействителен"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /auth/refresh [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.refresh"

	log := h.log.With(
		slog.String("op", op),
		slog.String("request_id", middleware.GetReqID(r.Context())),
	)

	var req Request
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

	session, err := h.service.Refresh(r.Context(), req.RefreshToken)
	switch {
	case err == nil:
	case errors.Is(err, jwt.ErrTokenExpired):
		log.Info("refresh token has expired")
		response.Fail(w, r, http.StatusUnauthorized, response.CodeTokenExpired, "token has expired")
		return
	case errors.Is(err, jwt.ErrTokenInvalid):
		log.Info("invalid refresh token", sl.Err(err))
		response.Fail(w, r, http.StatusUnauthorized, response.CodeInvalidToken, "could not validate credentials")
		return
	default:
		log.Error("refresh failed", sl.Err(err))
		response.Fail(w, r, http.StatusInternalServerError, response.CodeInternal, response.MsgInternal)
		return
	}

	response.JSON(w, r, http.StatusOK, response.OK(session))
}
