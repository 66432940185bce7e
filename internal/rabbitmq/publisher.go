package rabbitmq

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/streadway/amqp"
)

// RoutingSubscriptionUpgraded ключ события перехода пользователя на pro.
const RoutingSubscriptionUpgraded = "subscription.upgraded"

// Channel часть amqp.Channel, нужная для публикации.
type Channel interface {
	Publish(exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
}

// Publisher публикует JSON-сообщения в exchange.
// amqp.Channel нельзя использовать из нескольких горутин одновременно, поэтому публикация под мьютексом.
type Publisher struct {
	mu       sync.Mutex
	ch       Channel
	exchange string
}

// NewPublisher создает издателя для exchange.
func NewPublisher(ch Channel, exchange string) *Publisher {
	return &Publisher{ch: ch, exchange: exchange}
}

// Publish сериализует message в JSON и отправляет его как persistent-сообщение.
func (p *Publisher) Publish(ctx context.Context, routingKey string, message any) error {
	const op = "rabbitmq.Publish"

	if err := ctx.Err(); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	body, err := json.Marshal(message)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	err = p.ch.Publish(
		p.exchange,
		routingKey,
		false,
		false,
		amqp.Publishing{
			ContentType:  "application/json",
			Body:         body,
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
		},
	)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}

// NoopPublisher ничего не отправляет. Используется, если брокер не настроен.
type NoopPublisher struct{}

// Publish ничего не делает.
func (NoopPublisher) Publish(context.Context, string, any) error {
	return nil
}
