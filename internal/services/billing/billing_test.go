package billing

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/magabrotheeeer/medical-contacts/internal/models"
	"github.com/magabrotheeeer/medical-contacts/internal/rabbitmq"
	"github.com/magabrotheeeer/medical-contacts/internal/storage"
)

type UserRepoMock struct {
	mock.Mock
}

func (m *UserRepoMock) GetUserByID(ctx context.Context, userID string) (*models.User, error) {
	args := m.Called(ctx, userID)
	res, _ := args.Get(0).(*models.User)
	return res, args.Error(1)
}

func (m *UserRepoMock) UpgradeToPro(ctx context.Context, userID string, until time.Time) (*models.User, error) {
	args := m.Called(ctx, userID, until)
	res, _ := args.Get(0).(*models.User)
	return res, args.Error(1)
}

type CacheMock struct {
	mock.Mock
}

func (m *CacheMock) InvalidateUser(ctx context.Context, userID string) error {
	return m.Called(ctx, userID).Error(0)
}

type PublisherMock struct {
	mock.Mock
}

func (m *PublisherMock) Publish(ctx context.Context, routingKey string, message any) error {
	return m.Called(ctx, routingKey, message).Error(0)
}

func newNoopLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{}))
}

func completedEvent(userID string) WebhookEvent {
	var e WebhookEvent
	e.ID = "evt_1"
	e.Type = EventCheckoutCompleted
	e.Data.Object.ClientReferenceID = userID
	return e
}

func TestBillingService_CreateCheckoutSession(t *testing.T) {
	tests := []struct {
		name    string
		user    *models.User
		repoErr error
		want    string
		wantErr error
	}{
		{
			name: "trial user gets checkout url",
			user: &models.User{ID: "user 1", Plan: models.PlanTrial},
			want: "https://example.com/checkout?user_id=user+1",
		},
		{
			name:    "pro user is rejected",
			user:    &models.User{ID: "demo_user_1", Plan: models.PlanPro},
			wantErr: ErrAlreadyPro,
		},
		{
			name:    "unknown user",
			repoErr: storage.ErrNotFound,
			wantErr: storage.ErrNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(UserRepoMock)
			repo.On("GetUserByID", mock.Anything, mock.Anything).Return(tt.user, tt.repoErr).Once()
			svc := NewBillingService(newNoopLogger(), repo, nil, rabbitmq.NoopPublisher{}, "https://example.com/checkout")

			got, err := svc.CreateCheckoutSession(context.Background(), "any")
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestBillingService_HandleWebhook_Upgrade(t *testing.T) {
	repo := new(UserRepoMock)
	cache := new(CacheMock)
	pub := new(PublisherMock)
	svc := NewBillingService(newNoopLogger(), repo, cache, pub, "https://example.com/checkout")
	now := time.Date(2024, 1, 31, 10, 0, 0, 0, time.UTC)
	svc.now = func() time.Time { return now }

	upgraded := &models.User{ID: "user-1", Plan: models.PlanPro, SubscriptionStatus: models.StatusActive, SubscriptionEndDate: now.AddDate(0, 1, 0)}
	repo.On("UpgradeToPro", mock.Anything, "user-1", now.AddDate(0, 1, 0)).Return(upgraded, nil).Once()
	cache.On("InvalidateUser", mock.Anything, "user-1").Return(errors.New("redis down")).Once()
	pub.On("Publish", mock.Anything, rabbitmq.RoutingSubscriptionUpgraded, mock.MatchedBy(func(m SubscriptionUpgraded) bool {
		return m.UserID == "user-1" && m.Plan == models.PlanPro && m.EventID == "evt_1"
	})).Return(errors.New("broker down")).Once()

	user, err := svc.HandleWebhook(context.Background(), completedEvent("user-1"))
	require.NoError(t, err, "cache and broker failures do not fail the webhook")
	assert.Equal(t, models.PlanPro, user.Plan)
	repo.AssertExpectations(t)
	cache.AssertExpectations(t)
	pub.AssertExpectations(t)
}

func TestBillingService_HandleWebhook_Ignored(t *testing.T) {
	repo := new(UserRepoMock)
	svc := NewBillingService(newNoopLogger(), repo, nil, rabbitmq.NoopPublisher{}, "")

	other := completedEvent("user-1")
	other.Type = "invoice.paid"
	user, err := svc.HandleWebhook(context.Background(), other)
	require.NoError(t, err)
	assert.Nil(t, user)

	user, err = svc.HandleWebhook(context.Background(), completedEvent(""))
	require.NoError(t, err)
	assert.Nil(t, user)

	repo.AssertNotCalled(t, "UpgradeToPro", mock.Anything, mock.Anything, mock.Anything)
}

func TestBillingService_HandleWebhook_UnknownUser(t *testing.T) {
	repo := new(UserRepoMock)
	repo.On("UpgradeToPro", mock.Anything, "ghost", mock.Anything).Return(nil, storage.ErrNotFound).Once()
	svc := NewBillingService(newNoopLogger(), repo, nil, rabbitmq.NoopPublisher{}, "")

	_, err := svc.HandleWebhook(context.Background(), completedEvent("ghost"))
	assert.ErrorIs(t, err, storage.ErrNotFound)
}
