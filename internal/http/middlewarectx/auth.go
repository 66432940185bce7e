// Package middlewarectx содержит HTTP middleware: проверку JWT, проверку тарифа,
// ограничение частоты запросов и перехват паник.
//
// JWTMiddleware проверяет access-токен из заголовка Authorization и кладет в
// контекст id пользователя и его тариф. Остальные middleware читают их оттуда.
package middlewarectx

import (
	"context"
	"errors"
	"log/slog"
	"net/http"
	"strings"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/medical-contacts/internal/http/response"
	"github.com/magabrotheeeer/medical-contacts/internal/lib/jwt"
	"github.com/magabrotheeeer/medical-contacts/internal/lib/sl"
)

// Key тип для ключей контекста HTTP-запроса.
type Key string

const (
	// UserID ключ id пользователя в контексте.
	UserID Key = "user_id"
	// Plan ключ тарифа пользователя в контексте.
	Plan Key = "plan"
)

// TokenParser проверяет подпись и срок действия токена.
type TokenParser interface {
	ParseToken(tokenStr string, want jwt.TokenType) (*jwt.CustomClaims, error)
}

// JWTMiddleware возвращает middleware, который пропускает запрос только с валидным access-токеном.
// Истекший токен дает 401 token_expired, любой другой дефект 401 invalid_token.
func JWTMiddleware(parser TokenParser, log *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.JWTMiddleware"

			log := log.With(
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
			)

			authHeader := r.Header.Get("Authorization")
			scheme, tokenStr, found := strings.Cut(authHeader, " ")
			if !found || !strings.EqualFold(scheme, "Bearer") || strings.TrimSpace(tokenStr) == "" {
				log.Info("missing or invalid authorization header")
				response.Fail(w, r, http.StatusUnauthorized, response.CodeUnauthorized, "missing or invalid authorization header")
				return
			}

			claims, err := parser.ParseToken(strings.TrimSpace(tokenStr), jwt.AccessToken)
			if err != nil {
				if errors.Is(err, jwt.ErrTokenExpired) {
					log.Info("token has expired")
					response.Fail(w, r, http.StatusUnauthorized, response.CodeTokenExpired, "token has expired")
					return
				}
				log.Info("invalid token", sl.Err(err))
				response.Fail(w, r, http.StatusUnauthorized, response.CodeInvalidToken, "could not validate credentials")
				return
			}

			ctx := context.WithValue(r.Context(), UserID, claims.UserID())
			ctx = context.WithValue(ctx, Plan, claims.Plan)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// UserIDFromContext возвращает id пользователя, положенный JWTMiddleware.
func UserIDFromContext(ctx context.Context) (string, bool) {
	id, ok := ctx.Value(UserID).(string)
	return id, ok && id != ""
}

// PlanFromContext возвращает тариф пользователя из токена.
func PlanFromContext(ctx context.Context) string {
	plan, _ := ctx.Value(Plan).(string)
	return plan
}
