// Package login реализует HTTP-обработчик входа по email и паролю.
//
// Неизвестный email и неверный пароль дают одинаковый ответ 401,
// чтобы по ответу нельзя было узнать, зарегистрирован ли адрес.
package login

import (
	"context"
	"errors"
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"
	"github.com/go-chi/render"
	"github.com/go-playground/validator"

	"github.com/magabrotheeeer/medical-contacts/internal/http/response"
	"github.com/magabrotheeeer/medical-contacts/internal/lib/sl"
	"github.com/magabrotheeeer/medical-contacts/internal/services/auth"
)

// Request входные данные для входа.
type Request struct {
	Email    string `json:"email" validate:"required"`
	Password string `json:"password" validate:"required"`
}

// Service описывает бизнес-логику входа.
type Service interface {
	Login(ctx context.Context, email, password string) (*auth.Session, error)
}

// Handler обрабатывает запросы на вход.
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
// @Summary Авторизация пользователя
// @Description Проверяет email и пароль, возвращает access и refresh токены.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Email и пароль"
// @Success 200 {object} response.Response "Успешный вход"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 401 {object} response.ErrorResponse "Неверный email или пароль"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 429 {object} response.ErrorResponse "Слишком много запросов"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /auth/login [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.login"

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

	session, err := h.service.Login(r.Context(), req.Email, req.Password)
	if err != nil {
		if errors.Is(err, auth.ErrInvalidCredentials) {
			log.Info("invalid credentials")
			response.Fail(w, r, http.StatusUnauthorized, response.CodeInvalidCredentials, "invalid email or password")
			return
		}
		log.Error("login failed", sl.Err(err))
		response.Fail(w, r, http.StatusInternalServerError, response.CodeInternal, response.MsgInternal)
		return
	}

	log.Info("user logged in", slog.String("user_id", session.User.ID))
	response.JSON(w, r, http.StatusOK, response.OK(session))
}
