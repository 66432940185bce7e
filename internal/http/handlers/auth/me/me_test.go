package me

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/medical-contacts/internal/http/middlewarectx"
	"github.com/magabrotheeeer/medical-contacts/internal/models"
	"github.com/magabrotheeeer/medical-contacts/internal/storage"
)

type ServiceMock struct {
	mock.Mock
}

func (m *ServiceMock) Me(ctx context.Context, userID string) (*models.User, error) {
	args := m.Called(ctx, userID)
	if u := args.Get(0); u != nil {
		return u.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func TestMeHandler(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))

	tests := []struct {
		name       string
		userID     string
		setupMock  func(m *ServiceMock)
		wantStatus int
		wantCode   string
	}{
		{
			name:   "profile",
			userID: "u-1",
			setupMock: func(m *ServiceMock) {
				m.On("Me", mock.Anything, "u-1").Return(&models.User{
					ID: "u-1", Email: "a@x.com", PasswordHash: "hash", Plan: models.PlanTrial,
				}, nil).Once()
			},
			wantStatus: http.StatusOK,
		},
		{
			name:       "no user in context",
			setupMock:  func(_ *ServiceMock) {},
			wantStatus: http.StatusUnauthorized,
			wantCode:   "unauthorized",
		},
		{
			name:   "deleted user",
			userID: "gone",
			setupMock: func(m *ServiceMock) {
				m.On("Me", mock.Anything, "gone").Return(nil, storage.ErrNotFound).Once()
			},
			wantStatus: http.StatusUnauthorized,
			wantCode:   "invalid_token",
		},
		{
			name:   "storage failure",
			userID: "u-1",
			setupMock: func(m *ServiceMock) {
				m.On("Me", mock.Anything, "u-1").Return(nil, errors.New("db down")).Once()
			},
			wantStatus: http.StatusInternalServerError,
			wantCode:   "internal_error",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc := new(ServiceMock)
			tt.setupMock(svc)

			req := httptest.NewRequest(http.MethodGet, "/api/auth/me", nil)
			if tt.userID != "" {
				req = req.WithContext(context.WithValue(req.Context(), middlewarectx.UserID, tt.userID))
			}
			rec := httptest.NewRecorder()
			New(logger, svc).ServeHTTP(rec, req)

			assert.Equal(t, tt.wantStatus, rec.Code)
			raw := rec.Body.String()
			var got map[string]any
			require.NoError(t, json.Unmarshal([]byte(raw), &got))
			if tt.wantCode != "" {
				assert.Equal(t, tt.wantCode, got["code"])
			} else {
				user := got["data"].(map[string]any)["user"].(map[string]any)
				assert.Equal(t, "a@x.com", user["email"])
				assert.NotContains(t, raw, "hash\"")
			}
			svc.AssertExpectations(t)
		})
	}
}
