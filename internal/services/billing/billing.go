// Package billing реализует заглушку платежного провайдера: ссылку на оплату
// и обработку webhook о завершенной оплате. Подпись webhook не проверяется.
package billing

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"time"

	"github.com/magabrotheeeer/medical-contacts/internal/lib/sl"
	"github.com/magabrotheeeer/medical-contacts/internal/models"
	"github.com/magabrotheeeer/medical-contacts/internal/rabbitmq"
)

// ErrAlreadyPro пользователь уже на тарифе pro.
var ErrAlreadyPro = errors.New("user already has pro plan")

// EventCheckoutCompleted тип события об успешной оплате.
const EventCheckoutCompleted = "checkout.session.completed"

// UserRepository описывает хранилище пользователей.
type UserRepository interface {
	GetUserByID(ctx context.Context, userID string) (*models.User, error)
	UpgradeToPro(ctx context.Context, userID string, until time.Time) (*models.User, error)
}

// UserCache сбрасывает закэшированный профиль. Может отсутствовать.
type UserCache interface {
	InvalidateUser(ctx context.Context, userID string) error
}

// EventPublisher публикует доменные события.
type EventPublisher interface {
	Publish(ctx context.Context, routingKey string, message any) error
}

// WebhookEvent поля события провайдера, которые нужны сервису.
type WebhookEvent struct {
	ID   string `json:"id"`
	Type string `json:"type"`
	Data struct {
		Object struct {
			ClientReferenceID string `json:"client_reference_id"`
		} `json:"object"`
	} `json:"data"`
}

// SubscriptionUpgraded событие перехода пользователя на pro.
type SubscriptionUpgraded struct {
	EventID             string                    `json:"event_id,omitempty"`
	UserID              string                    `json:"user_id"`
	Plan                models.Plan               `json:"plan"`
	SubscriptionStatus  models.SubscriptionStatus `json:"subscription_status"`
	SubscriptionEndDate time.Time                 `json:"subscription_end_date"`
	OccurredAt          time.Time                 `json:"occurred_at"`
}

// BillingService обрабатывает оплату подписки.
type BillingService struct {
	log             *slog.Logger
	users           UserRepository
	cache           UserCache
	publisher       EventPublisher
	checkoutBaseURL string
	now             func() time.Time
}

// NewBillingService создает сервис. cache может быть nil, publisher обязателен
// (rabbitmq.NoopPublisher, если брокер не настроен).
func NewBillingService(log *slog.Logger, users UserRepository, cache UserCache, publisher EventPublisher, checkoutBaseURL string) *BillingService {
	return &BillingService{
		log:             log,
		users:           users,
		cache:           cache,
		publisher:       publisher,
		checkoutBaseURL: checkoutBaseURL,
		now:             time.Now,
	}
}

// CreateCheckoutSession возвращает ссылку на оплату тарифа pro.
func (s *BillingService) CreateCheckoutSession(ctx context.Context, userID string) (string, error) {
	const op = "services.billing.CreateCheckoutSession"

	user, err := s.users.GetUserByID(ctx, userID)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	if user.IsPro() {
		return "", fmt.Errorf("%s: %w", op, ErrAlreadyPro)
	}

	u, err := url.Parse(s.checkoutBaseURL)
	if err != nil {
		return "", fmt.Errorf("%s: %w", op, err)
	}
	q := u.Query()
	q.Set("user_id", user.ID)
	u.RawQuery = q.Encode()
	return u.String(), nil
}

// HandleWebhook переводит пользователя на pro при событии об успешной оплате.
// Остальные события игнорируются, возвращается nil.
func (s *BillingService) HandleWebhook(ctx context.Context, event WebhookEvent) (*models.User, error) {
	const op = "services.billing.HandleWebhook"

	log := s.log.With(slog.String("op", op), slog.String("event_type", event.Type))

	userID := event.Data.Object.ClientReferenceID
	if event.Type != EventCheckoutCompleted || userID == "" {
		log.Info("webhook event ignored")
		return nil, nil
	}

	now := s.now().UTC()
	user, err := s.users.UpgradeToPro(ctx, userID, now.AddDate(0, 1, 0))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	log.Info("user upgraded to pro", slog.String("user_id", user.ID))

	if s.cache != nil {
		if err = s.cache.InvalidateUser(ctx, user.ID); err != nil {
			log.Warn("failed to invalidate cached user", sl.Err(err))
		}
	}

	msg := SubscriptionUpgraded{
		EventID:             event.ID,
		UserID:              user.ID,
		Plan:                user.Plan,
		SubscriptionStatus:  user.SubscriptionStatus,
		SubscriptionEndDate: user.SubscriptionEndDate,
		OccurredAt:          now,
	}
	if err = s.publisher.Publish(ctx, rabbitmq.RoutingSubscriptionUpgraded, msg); err != nil {
		log.Error("failed to publish subscription event", sl.Err(err))
	}
	return user, nil
}
