// Package auth содержит логику регистрации, входа и обновления токенов.
package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/magabrotheeeer/medical-contacts/internal/lib/jwt"
	"github.com/magabrotheeeer/medical-contacts/internal/lib/password"
	"github.com/magabrotheeeer/medical-contacts/internal/lib/sl"
	"github.com/magabrotheeeer/medical-contacts/internal/models"
	"github.com/magabrotheeeer/medical-contacts/internal/storage"
)

// ErrInvalidCredentials неизвестный email или неверный пароль. Клиент не должен их различать.
var ErrInvalidCredentials = errors.New("invalid email or password")

// TokenType тип токена в ответе клиенту.
const TokenType = "bearer"

// UserRepository описывает контракт хранилища пользователей.
type UserRepository interface {
	CreateUser(ctx context.Context, user *models.User) error
	GetUserByEmail(ctx context.Context, email string) (*models.User, error)
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
}

// UserCache кэш профилей. Может отсутствовать.
type UserCache interface {
	GetUser(ctx context.Context, userID string) (*models.User, bool, error)
	SetUser(ctx context.Context, user *models.User) error
}

// RegisterInput данные регистрации.
type RegisterInput struct {
	Email            string
	Password         string
	FullName         string
	Phone            string
	MedicalSpecialty string
	Plan             models.Plan
}

// Session пара токенов и профиль пользователя.
type Session struct {
	AccessToken  string       `json:"access_token"`
	RefreshToken string       `json:"refresh_token"`
	TokenType    string       `json:"token_type"`
	User         *models.User `json:"user,omitempty"`
}

// AuthService отвечает за регистрацию, вход и выдачу JWT.
type AuthService struct {
	log      *slog.Logger
	users    UserRepository
	cache    UserCache
	jwtMaker jwt.Maker
	now      func() time.Time
	// dummyHash сравнивается при неизвестном email, чтобы время ответа не выдавало наличие аккаунта.
	dummyHash string
}

// NewAuthService создает сервис. cache может быть nil.
func NewAuthService(log *slog.Logger, users UserRepository, jwtMaker jwt.Maker, cache UserCache) *AuthService {
	dummy, err := password.GetHash("dummy-password-for-timing")
	if err != nil {
		dummy = ""
	}
	return &AuthService{
		log:       log,
		users:     users,
		cache:     cache,
		jwtMaker:  jwtMaker,
		now:       time.Now,
		dummyHash: dummy,
	}
}

// Register создает пользователя на пробном периоде и сразу выдает токены.
func (s *AuthService) Register(ctx context.Context, in RegisterInput) (*Session, error) {
	const op = "services.auth.Register"

	if len(in.Password) > password.MaxBytes {
		return nil, fmt.Errorf("%s: %w", op, &models.FieldError{
			Field:  "password",
			Reason: fmt.Sprintf("must be at most %d bytes", password.MaxBytes),
		})
	}
	hashed, err := password.GetHash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user, err := models.NewUser(in.Email, hashed, in.FullName, in.Phone, in.MedicalSpecialty, in.Plan, s.now())
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = s.users.CreateUser(ctx, user); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.issue(op, user)
}

// Login проверяет пароль и выдает токены.
func (s *AuthService) Login(ctx context.Context, email, rawPassword string) (*Session, error) {
	const op = "services.auth.Login"

	user, err := s.users.GetUserByEmail(ctx, strings.ToLower(strings.TrimSpace(email)))
	if errors.Is(err, storage.ErrNotFound) {
		_ = password.CompareHash(s.dummyHash, rawPassword)
		return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if err = password.CompareHash(user.PasswordHash, rawPassword); err != nil {
		if errors.Is(err, password.ErrMismatch) {
			return nil, fmt.Errorf("%s: %w", op, ErrInvalidCredentials)
		}
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return s.issue(op, user)
}

// Refresh проверяет refresh-токен и выдает новый access-токен с актуальным тарифом.
// Refresh-токен возвращается тот же.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*Session, error) {
	const op = "services.auth.Refresh"

	claims, err := s.jwtMaker.ParseToken(refreshToken, jwt.RefreshToken)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	user, err := s.Me(ctx, claims.UserID())
	if errors.Is(err, storage.ErrNotFound) {
		return nil, fmt.Errorf("%s: %w", op, jwt.ErrTokenInvalid)
	}
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	access, err := s.jwtMaker.GenerateAccessToken(user.ID, string(user.Plan))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Session{
		AccessToken:  access,
		RefreshToken: refreshToken,
		TokenType:    TokenType,
	}, nil
}

// Me возвращает профиль пользователя, сначала из кэша.
func (s *AuthService) Me(ctx context.Context, userID string) (*models.User, error) {
	const op = "services.auth.Me"

	if s.cache != nil {
		user, found, err := s.cache.GetUser(ctx, userID)
		if err != nil {
			s.log.Warn("user cache read failed", slog.String("op", op), sl.Err(err))
		}
		if found {
			return user, nil
		}
	}

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	if s.cache != nil {
		if err = s.cache.SetUser(ctx, user); err != nil {
			s.log.Warn("user cache write failed", slog.String("op", op), sl.Err(err))
		}
	}
	return user, nil
}

func (s *AuthService) issue(op string, user *models.User) (*Session, error) {
	access, err := s.jwtMaker.GenerateAccessToken(user.ID, string(user.Plan))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	refresh, err := s.jwtMaker.GenerateRefreshToken(user.ID)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return &Session{
		AccessToken:  access,
		RefreshToken: refresh,
		TokenType:    TokenType,
		User:         user,
	}, nil
}
