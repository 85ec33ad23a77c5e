// README: RabbitMQ connection with retry on startup; hands out the publishing channel.
package infra

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	amqpMaxAttempts   = 10
	amqpMaxRetryDelay = 30 * time.Second
)

type AMQP struct {
	mu     sync.Mutex
	conn   *amqp.Connection
	ch     *amqp.Channel
	closed bool
}

// DialAMQP connects to url, retrying with a growing delay until ctx ends or
// the attempts run out.
func DialAMQP(ctx context.Context, url string, log *slog.Logger) (*AMQP, error) {
	delay := time.Second
	for attempt := 1; ; attempt++ {
		conn, ch, err := openAMQP(url)
		if err == nil {
			log.Info("rabbitmq connected", "attempt", attempt)
			return &AMQP{conn: conn, ch: ch}, nil
		}
		log.Warn("rabbitmq connection attempt failed", "attempt", attempt, "max_attempts", amqpMaxAttempts, "retry_in", delay, "err", err)
		if attempt == amqpMaxAttempts {
			return nil, fmt.Errorf("connect rabbitmq after %d attempts: %w", amqpMaxAttempts, err)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(delay):
		}
		delay = min(time.Duration(float64(delay)*1.5), amqpMaxRetryDelay)
	}
}

func openAMQP(url string) (*amqp.Connection, *amqp.Channel, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, nil, fmt.Errorf("open channel: %w", err)
	}
	return conn, ch, nil
}

func (a *AMQP) Channel() *amqp.Channel {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.ch
}

func (a *AMQP) Close() {
	a.mu.Lock()
	defer a.mu.Unlock()
	if a.closed {
		return
	}
	a.closed = true
	if a.ch != nil {
		_ = a.ch.Close()
	}
	if a.conn != nil {
		_ = a.conn.Close()
	}
}
