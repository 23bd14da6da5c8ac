package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/url"
	"strings"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"

	"wealthline.backend/pkg/logger"
)

const (
	RoutingWithdrawalRequested = "withdrawal.requested"
	routingAdminPrefix         = "admin."
)

// AdminRoutingKey is the routing key published after a successful admin command.
func AdminRoutingKey(action string) string {
	return routingAdminPrefix + action
}

// Publisher publishes domain events as JSON.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, payload any) error
	Close()
}

// amqpChannel is the subset of *amqp.Channel used by the producer.
type amqpChannel interface {
	ExchangeDeclare(name, kind string, durable, autoDelete, internal, noWait bool, args amqp.Table) error
	PublishWithContext(ctx context.Context, exchange, key string, mandatory, immediate bool, msg amqp.Publishing) error
	Close() error
}

var timeNow = time.Now

// AMQPPublisher publishes to a durable topic exchange.
type AMQPPublisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	channel  amqpChannel
	exchange string
	declared bool
	reopen   func() (amqpChannel, error)
}

func sanitizeAMQPURL(raw string) (string, error) {
	clean := strings.Trim(strings.TrimSpace(raw), "\"'")
	u, err := url.Parse(clean)
	if err != nil {
		return "", err
	}
	if u.Scheme != "amqp" && u.Scheme != "amqps" {
		return "", errors.New("AMQP scheme must be either 'amqp://' or 'amqps://'")
	}
	return clean, nil
}

// NewAMQPPublisher dials the broker and opens a channel.
func NewAMQPPublisher(amqpURL, exchange string) (*AMQPPublisher, error) {
	cleanURL, err := sanitizeAMQPURL(amqpURL)
	if err != nil {
		return nil, err
	}

	conn, err := amqp.DialConfig(cleanURL, amqp.Config{Dial: amqp.DefaultDial(10 * time.Second)})
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}

	p := &AMQPPublisher{conn: conn, channel: ch, exchange: exchange}
	p.reopen = func() (amqpChannel, error) { return conn.Channel() }
	return p, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()

	err = p.publishLocked(ctx, routingKey, body)
	if err == nil || p.reopen == nil {
		return err
	}

	// one retry on a fresh channel
	logger.Warn(ctx, "Publish failed, reopening channel", zap.String("routing_key", routingKey), zap.Error(err))
	ch, chErr := p.reopen()
	if chErr != nil {
		return chErr
	}
	p.channel = ch
	p.declared = false
	return p.publishLocked(ctx, routingKey, body)
}

func (p *AMQPPublisher) publishLocked(ctx context.Context, routingKey string, body []byte) error {
	if !p.declared {
		if err := p.channel.ExchangeDeclare(p.exchange, "topic", true, false, false, false, nil); err != nil {
			return fmt.Errorf("declare exchange %s: %w", p.exchange, err)
		}
		p.declared = true
	}

	err := p.channel.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    timeNow(),
		Body:         body,
	})
	if err != nil {
		return err
	}

	logger.Debug(ctx, "Event published", zap.String("exchange", p.exchange), zap.String("routing_key", routingKey))
	return nil
}

func (p *AMQPPublisher) Close() {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.channel != nil {
		_ = p.channel.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

// LogPublisher logs events instead of publishing them.
type LogPublisher struct{}

func (LogPublisher) Publish(ctx context.Context, routingKey string, payload any) error {
	logger.Info(ctx, "Event (broker disabled)", zap.String("routing_key", routingKey), zap.Any("payload", payload))
	return nil
}

func (LogPublisher) Close() {}

// New connects to RabbitMQ when a URL is configured and falls back to logging
// when it is empty or unreachable.
func New(ctx context.Context, amqpURL, exchange string) Publisher {
	if strings.TrimSpace(amqpURL) == "" {
		return LogPublisher{}
	}
	p, err := NewAMQPPublisher(amqpURL, exchange)
	if err != nil {
		logger.Warn(ctx, "RabbitMQ unavailable, events will be logged", zap.Error(err))
		return LogPublisher{}
	}
	return p
}
