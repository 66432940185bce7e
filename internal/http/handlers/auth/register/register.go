// Package register реализует HTTP-обработчик регистрации пользователя.
//
// Handler валидирует данные, создает пользователя на пробном периоде и сразу
// возвращает пару токенов вместе с публичным профилем.
package register

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
	"github.com/magabrotheeeer/medical-contacts/internal/models"
	"github.com/magabrotheeeer/medical-contacts/internal/services/auth"
	"github.com/magabrotheeeer/medical-contacts/internal/storage"
)

// Request входные данные для регистрации.
type Request struct {
	Email            string `json:"email" validate:"required,email,max=254"`
	Password         string `json:"password" validate:"required,min=6,max=72"`
	FullName         string `json:"full_name" validate:"required,max=200"`
	Phone            string `json:"phone" validate:"max=50"`
	MedicalSpecialty string `json:"medical_specialty" validate:"max=100"`
	Plan             string `json:"plan" validate:"omitempty,oneof=trial regular"`
}

// Service описывает бизнес-логику регистрации.
type Service interface {
	Register(ctx context.Context, in auth.RegisterInput) (*auth.Session, error)
}

// Handler обрабатывает запросы на регистрацию.
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
// @Summary Регистрация нового пользователя
// @Description Создает пользователя на пробном периоде (30 дней) и возвращает access и refresh токены.
// @Tags Auth
// @Accept  json
// @Produce  json
// @Param request body Request true "Данные пользователя"
// @Success 201 {object} response.Response "Пользователь создан"
// @Failure 400 {object} response.ErrorResponse "Некорректный JSON"
// @Failure 409 {object} response.ErrorResponse "Email уже зарегистрирован"
// @Failure 422 {object} response.ErrorResponse "Ошибка валидации"
// @Failure 429 {object} response.ErrorResponse "Слишком много запросов"
// @Failure 500 {object} response.ErrorResponse "Ошибка сервера"
// @Router /auth/register [post]
func (h *Handler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	const op = "handlers.auth.register"

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
	log.Info("request body decoded", slog.String("email", req.Email))

	if err := h.validate.Struct(req); err != nil {
		log.Info("validation failed", sl.Err(err))
		response.JSON(w, r, http.StatusUnprocessableEntity, response.ValidationError(err.(validator.ValidationErrors)))
		return
	}

	session, err := h.service.Register(r.Context(), auth.RegisterInput{
		Email:            req.Email,
		Password:         req.Password,
		FullName:         req.FullName,
		Phone:            req.Phone,
		MedicalSpecialty: req.MedicalSpecialty,
		Plan:             models.Plan(req.Plan),
	})
	if err != nil {
		var fieldErr *models.FieldError
		if errors.As(err, &fieldErr) {
			log.Info("validation failed", sl.Err(err))
			response.Fail(w, r, http.StatusUnprocessableEntity, response.CodeValidation, fieldErr.Error())
			return
		}
		if errors.Is(err, storage.ErrEmailTaken) {
			log.Info("email already registered")
			response.Fail(w, r, http.StatusConflict, response.CodeConflict, "email already registered")
			return
		}
		log.Error("registration failed", sl.Err(err))
		response.Fail(w, r, http.StatusInternalServerError, response.CodeInternal, response.MsgInternal)
		return
	}

	log.Info("user registered", slog.String("user_id", session.User.ID))
	response.JSON(w, r, http.StatusCreated, response.OK(session))
}
