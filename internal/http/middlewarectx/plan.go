package middlewarectx

import (
	"log/slog"
	"net/http"

	"github.com/go-chi/chi/middleware"

	"github.com/magabrotheeeer/medical-contacts/internal/http/response"
	"github.com/magabrotheeeer/medical-contacts/internal/models"
)

// RequirePlan пропускает только пользователей с одним из тарифов plans.
// Ставится после JWTMiddleware.
func RequirePlan(log *slog.Logger, plans ...models.Plan) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			const op = "middlewarectx.RequirePlan"

			userID, ok := UserIDFromContext(r.Context())
			if !ok {
				log.Error("user identification missing", slog.String("op", op))
				response.Fail(w, r, http.StatusUnauthorized, response.CodeUnauthorized, "user identification missing")
				return
			}

			plan := models.Plan(PlanFromContext(r.Context()))
			for _, allowed := range plans {
				if plan == allowed {
					next.ServeHTTP(w, r)
					return
				}
			}

			log.Info("plan does not grant access",
				slog.String("op", op),
				slog.String("request_id", middleware.GetReqID(r.Context())),
				slog.String("user_id", userID),
				slog.String("plan", string(plan)),
			)
			response.Fail(w, r, http.StatusForbidden, response.CodeForbidden, "pro plan required")
		})
	}
}
