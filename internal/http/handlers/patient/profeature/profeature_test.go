package profeature

import (
	"context"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"

	"github.com/magabrotheeeer/medical-contacts/internal/http/middlewarectx"
	"github.com/magabrotheeeer/medical-contacts/internal/models"
)

func TestProFeature_BehindPlanGate(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))

	r := chi.NewRouter()
	r.Use(func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			ctx := context.WithValue(r.Context(), middlewarectx.UserID, "u-1")
			ctx = context.WithValue(ctx, middlewarectx.Plan, r.Header.Get("X-Test-Plan"))
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	})
	r.With(middlewarectx.RequirePlan(logger, models.PlanPro)).Get("/api/patients/pro-feature", New(logger).ServeHTTP)

	tests := []struct {
		plan       string
		wantStatus int
		wantBody   string
	}{
		{plan: "trial", wantStatus: http.StatusForbidden, wantBody: `{"success":false,"code":"forbidden","error":"pro plan required"}`},
		{plan: "regular", wantStatus: http.StatusForbidden, wantBody: `{"success":false,"code":"forbidden","error":"pro plan required"}`},
		{plan: "pro", wantStatus: http.StatusOK, wantBody: `{"success":true,"data":{"message":"This is a pro feature!"}}`},
	}

	for _, tt := range tests {
		t.Run(tt.plan, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/patients/pro-feature", nil)
			req.Header.Set("X-Test-Plan", tt.plan)
			rec := httptest.NewRecorder()
			r.ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			assert.JSONEq(t, tt.wantBody, rec.Body.String())
		})
	}
}
