package medicalcontacts

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/go-chi/chi"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/medical-contacts/internal/http/metrics"
	"github.com/magabrotheeeer/medical-contacts/internal/lib/jwt"
	"github.com/magabrotheeeer/medical-contacts/internal/lib/ratelimit"
	"github.com/magabrotheeeer/medical-contacts/internal/models"
	"github.com/magabrotheeeer/medical-contacts/internal/rabbitmq"
	authservice "github.com/magabrotheeeer/medical-contacts/internal/services/auth"
	billingservice "github.com/magabrotheeeer/medical-contacts/internal/services/billing"
	"github.com/magabrotheeeer/medical-contacts/internal/storage"
)

// memoryUsers хранит пользователей в памяти для сквозных сценариев auth и billing.
type memoryUsers struct {
	mu    sync.Mutex
	users map[string]models.User
}

func newMemoryUsers() *memoryUsers {
	return &memoryUsers{users: map[string]models.User{}}
}

func (s *memoryUsers) CreateUser(_ context.Context, u *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, existing := range s.users {
		if existing.Email == u.Email {
			return storage.ErrEmailTaken
		}
	}
	s.users[u.ID] = *u
	return nil
}

func (s *memoryUsers) GetUserByEmail(_ context.Context, email string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, u := range s.users {
		if u.Email == email {
			return &u, nil
		}
	}
	return nil, storage.ErrNotFound
}

func (s *memoryUsers) GetUserByID(_ context.Context, userID string) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	return &u, nil
}

func (s *memoryUsers) UpgradeToPro(_ context.Context, userID string, until time.Time) (*models.User, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	u, ok := s.users[userID]
	if !ok {
		return nil, storage.ErrNotFound
	}
	u.Plan = models.PlanPro
	u.SubscriptionStatus = models.StatusActive
	u.SubscriptionEndDate = until
	s.users[userID] = u
	return &u, nil
}

func TestRoutes_TrialUpgradeRefreshUnlocksPro(t *testing.T) {
	log := slog.New(slog.NewTextHandler(io.Discard, nil))
	maker := jwt.NewJWTMaker("upgrade-test-secret", time.Hour, time.Hour)
	users := newMemoryUsers()

	r := chi.NewRouter()
	RegisterRoutes(r, log, Deps{
		Tokens:      maker,
		AuthLimiter: ratelimit.NewMemoryLimiter(100, time.Minute),
		APILimiter:  ratelimit.NewMemoryLimiter(100, time.Minute),
		Pinger:      stubPinger{},
		Metrics:     metrics.New(nil),
		Auth:        authservice.NewAuthService(log, users, maker, nil),
		Billing:     billingservice.NewBillingService(log, users, nil, rabbitmq.NoopPublisher{}, "https://pay.local/checkout"),
	})
	srv := httptest.NewServer(r)
	t.Cleanup(srv.Close)
	env := &routesEnv{server: srv, maker: maker}

	status, body := env.do(t, http.MethodPost, "/api/auth/register", "",
		`{"email":"dr.new@clinic.com","password":"password123","full_name":"New Doctor"}`)
	require.Equal(t, http.StatusCreated, status)
	session := body["data"].(map[string]any)
	trialToken := session["access_token"].(string)
	refreshToken := session["refresh_token"].(string)
	userID := session["user"].(map[string]any)["id"].(string)

	status, body = env.do(t, http.MethodGet, "/api/patients/pro-feature", trialToken, "")
	assert.Equal(t, http.StatusForbidden, status)
	assert.Equal(t, "forbidden", body["code"])

	event, err := json.Marshal(map[string]any{
		"id":   "evt_1",
		"type": billingservice.EventCheckoutCompleted,
		"data": map[string]any{"object": map[string]any{"client_reference_id": userID}},
	})
	require.NoError(t, err)
	status, _ = env.do(t, http.MethodPost, "/api/webhooks/stripe", "", string(event))
	require.Equal(t, http.StatusOK, status)

	// Тариф зашит в access-токен: старый токен остается trial до обновления.
	status, _ = env.do(t, http.MethodGet, "/api/patients/pro-feature", trialToken, "")
	assert.Equal(t, http.StatusForbidden, status)

	status, body = env.do(t, http.MethodPost, "/api/auth/refresh", "", `{"refresh_token":"`+refreshToken+`"}`)
	require.Equal(t, http.StatusOK, status)
	proToken := body["data"].(map[string]any)["access_token"].(string)

	status, body = env.do(t, http.MethodGet, "/api/patients/pro-feature", proToken, "")
	assert.Equal(t, http.StatusOK, status)
	assert.Equal(t, true, body["success"])
}
