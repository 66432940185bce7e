// Package medicalcontacts собирает HTTP-приложение: зависимости, маршруты и жизненный цикл.
package medicalcontacts

import (
	"log/slog"

	"github.com/go-chi/chi"
	"github.com/go-chi/chi/middleware"
	httpSwagger "github.com/swaggo/http-swagger"

	// Регистрация swagger-спецификации для /docs.
	_ "github.com/magabrotheeeer/medical-contacts/docs"

	"github.com/magabrotheeeer/medical-contacts/internal/http/handlers/analytics/growth"
	"github.com/magabrotheeeer/medical-contacts/internal/http/handlers/auth/login"
	"github.com/magabrotheeeer/medical-contacts/internal/http/handlers/auth/me"
	"github.com/magabrotheeeer/medical-contacts/internal/http/handlers/auth/refresh"
	"github.com/magabrotheeeer/medical-contacts/internal/http/handlers/auth/register"
	documentcreate "github.com/magabrotheeeer/medical-contacts/internal/http/handlers/document/create"
	documentlist "github.com/magabrotheeeer/medical-contacts/internal/http/handlers/document/list"
	"github.com/magabrotheeeer/medical-contacts/internal/http/handlers/health"
	"github.com/magabrotheeeer/medical-contacts/internal/http/handlers/patient/addnote"
	patientcreate "github.com/magabrotheeeer/medical-contacts/internal/http/handlers/patient/create"
	"github.com/magabrotheeeer/medical-contacts/internal/http/handlers/patient/groups"
	patientlist "github.com/magabrotheeeer/medical-contacts/internal/http/handlers/patient/list"
	"github.com/magabrotheeeer/medical-contacts/internal/http/handlers/patient/listnotes"
	"github.com/magabrotheeeer/medical-contacts/internal/http/handlers/patient/profeature"
	"github.com/magabrotheeeer/medical-contacts/internal/http/handlers/patient/read"
	"github.com/magabrotheeeer/medical-contacts/internal/http/handlers/patient/remove"
	"github.com/magabrotheeeer/medical-contacts/internal/http/handlers/patient/stats"
	"github.com/magabrotheeeer/medical-contacts/internal/http/handlers/patient/update"
	"github.com/magabrotheeeer/medical-contacts/internal/http/handlers/payment/checkout"
	"github.com/magabrotheeeer/medical-contacts/internal/http/handlers/payment/webhook"
	"github.com/magabrotheeeer/medical-contacts/internal/http/handlers/sync/pull"
	"github.com/magabrotheeeer/medical-contacts/internal/http/handlers/sync/push"
	"github.com/magabrotheeeer/medical-contacts/internal/http/metrics"
	"github.com/magabrotheeeer/medical-contacts/internal/http/middlewarectx"
	"github.com/magabrotheeeer/medical-contacts/internal/models"
	analyticsservice "github.com/magabrotheeeer/medical-contacts/internal/services/analytics"
	authservice "github.com/magabrotheeeer/medical-contacts/internal/services/auth"
	billingservice "github.com/magabrotheeeer/medical-contacts/internal/services/billing"
	syncservice "github.com/magabrotheeeer/medical-contacts/internal/services/datasync"
	documentservice "github.com/magabrotheeeer/medical-contacts/internal/services/document"
	patientservice "github.com/magabrotheeeer/medical-contacts/internal/services/patient"
)

// Deps зависимости, из которых собираются маршруты.
type Deps struct {
	Tokens      middlewarectx.TokenParser
	AuthLimiter middlewarectx.Limiter
	APILimiter  middlewarectx.Limiter
	Pinger      health.Pinger
	Metrics     *metrics.Metrics

	Auth      *authservice.AuthService
	Patients  *patientservice.PatientService
	Documents *documentservice.DocumentService
	Analytics *analyticsservice.AnalyticsService
	Sync      *syncservice.SyncService
	Billing   *billingservice.BillingService
}

// RegisterRoutes регистрирует все маршруты приложения.
func RegisterRoutes(r chi.Router, logger *slog.Logger, d Deps) {
	// Глобальные middleware
	r.Use(
		middleware.RequestID,
		middleware.RealIP,
		middleware.Logger,
		middlewarectx.Recoverer(logger),
		middleware.URLFormat,
		d.Metrics.Middleware,
	)

	r.Route("/api", func(r chi.Router) {
		r.Get("/health", health.New(logger, d.Pinger).ServeHTTP)

		// Вебхук платежного провайдера без аутентификации
		wh := webhook.New(logger, d.Billing)
		r.Post("/webhooks/stripe", wh.ServeHTTP)
		r.Post("/payments/webhooks/stripe", wh.ServeHTTP)

		r.Route("/auth", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RateLimitMiddleware(logger, d.AuthLimiter, middlewarectx.KeyByIP))
				r.Post("/register", register.New(logger, d.Auth).ServeHTTP)
				r.Post("/login", login.New(logger, d.Auth).ServeHTTP)
				r.Post("/refresh", refresh.New(logger, d.Auth).ServeHTTP)
			})
			r.With(middlewarectx.JWTMiddleware(d.Tokens, logger)).Get("/me", me.New(logger, d.Auth).ServeHTTP)
		})

		// Группа с JWT аутентификацией
		r.Group(func(r chi.Router) {
			r.Use(middlewarectx.JWTMiddleware(d.Tokens, logger))
			r.Use(middlewarectx.RateLimitMiddleware(logger, d.APILimiter, middlewarectx.KeyByUserOrIP))

			r.Route("/patients", func(r chi.Router) {
				r.Post("/", patientcreate.New(logger, d.Patients).ServeHTTP)
				r.Get("/", patientlist.New(logger, d.Patients).ServeHTTP)
				r.Get("/groups", groups.New(logger, d.Patients).ServeHTTP)
				r.Get("/stats", stats.New(logger, d.Patients).ServeHTTP)
				r.With(middlewarectx.RequirePlan(logger, models.PlanPro)).Get("/pro-feature", profeature.New(logger).ServeHTTP)
				r.Get("/{id}", read.New(logger, d.Patients).ServeHTTP)
				r.Put("/{id}", update.New(logger, d.Patients).ServeHTTP)
				r.Delete("/{id}", remove.New(logger, d.Patients).ServeHTTP)
				r.Post("/{id}/notes", addnote.New(logger, d.Patients).ServeHTTP)
				r.Get("/{id}/notes", listnotes.New(logger, d.Patients).ServeHTTP)
			})

			r.Get("/sync/pull", pull.New(logger, d.Sync).ServeHTTP)
			r.Post("/sync/push", push.New(logger, d.Sync).ServeHTTP)
			r.Post("/payments/create-checkout-session", checkout.New(logger, d.Billing).ServeHTTP)

			// Функции тарифа pro
			r.Group(func(r chi.Router) {
				r.Use(middlewarectx.RequirePlan(logger, models.PlanPro))
				r.Post("/documents", documentcreate.New(logger, d.Documents).ServeHTTP)
				r.Get("/documents/{patient_id}", documentlist.New(logger, d.Documents).ServeHTTP)
				r.Get("/analytics/patient-growth", growth.New(logger, d.Analytics).ServeHTTP)
			})
		})
	})

	r.Handle("/metrics", d.Metrics.Handler())
	// Swagger docs endpoint
	r.Get("/docs/*", httpSwagger.WrapHandler)
}
