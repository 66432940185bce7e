// Package rabbitmq публикует доменные события (изменения подписки) в RabbitMQ.
package rabbitmq

import (
	"context"
	"fmt"
	"time"

	"github.com/streadway/amqp"
)

// Connect подключается к брокеру: до retries попыток с паузой delay между ними.
// Отмена ctx прерывает ожидание следующей попытки.
func Connect(ctx context.Context, url string, retries int, delay time.Duration) (*amqp.Connection, error) {
	const op = "rabbitmq.Connect"

	attempts := max(retries, 1)
	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		conn, err := amqp.Dial(url)
		if err == nil {
			return conn, nil
		}
		lastErr = fmt.Errorf("attempt %d/%d: %w", attempt, attempts, err)
		if attempt == attempts {
			break
		}

		timer := time.NewTimer(delay)
		select {
		case <-ctx.Done():
			timer.Stop()
			return nil, fmt.Errorf("%s: %w", op, ctx.Err())
		case <-timer.C:
		}
	}

	return nil, fmt.Errorf("%s: %w", op, lastErr)
}

// SetupExchange открывает канал и объявляет durable topic exchange.
func SetupExchange(conn *amqp.Connection, exchange string) (*amqp.Channel, error) {
	const op = "rabbitmq.SetupExchange"

	ch, err := conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	// durable topic exchange без auto-delete
	if err = ch.ExchangeDeclare(exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return ch, nil
}
