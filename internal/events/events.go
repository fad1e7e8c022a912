// Package events publishes domain events to a RabbitMQ topic exchange.
package events

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/rs/zerolog/log"

	"github.com/codr1/pickup/internal/config"
)

const (
	GameCreated    = "game.created"
	AccountCreated = "account.created"

	publishTimeout = 2 * time.Second
)

// Envelope wraps every published payload.
type Envelope struct {
	ID         string    `json:"id"`
	Type       string    `json:"type"`
	OccurredAt time.Time `json:"occurred_at"`
	Data       any       `json:"data"`
}

type GameCreatedData struct {
	GameID        string    `json:"game_id"`
	Sport         string    `json:"sport"`
	Gym           string    `json:"gym"`
	StartTime     time.Time `json:"start_time"`
	EndTime       time.Time `json:"end_time"`
	NeededPlayers int       `json:"needed_players"`
	CreatedBy     string    `json:"created_by"`
}

type AccountCreatedData struct {
	AccountID string `json:"account_id"`
}

// Publisher sends an event under routingKey.
type Publisher interface {
	Publish(ctx context.Context, routingKey string, data any) error
	Close() error
}

// NewPublisherFromConfig dials RabbitMQ when an AMQP URL is configured and
// returns a no-op publisher otherwise.
func NewPublisherFromConfig(cfg config.EventsConfig) (Publisher, error) {
	if cfg.AMQPURL == "" {
		return NoopPublisher{}, nil
	}
	return NewAMQPPublisher(cfg.AMQPURL, cfg.Exchange)
}

// Emit publishes with a bounded timeout and logs failures. Events are
// best-effort; callers never fail a request because of them.
func Emit(ctx context.Context, publisher Publisher, routingKey string, data any) {
	if publisher == nil {
		return
	}
	publishCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), publishTimeout)
	defer cancel()
	if err := publisher.Publish(publishCtx, routingKey, data); err != nil {
		log.Ctx(ctx).Warn().Err(err).Str("event", routingKey).Msg("Failed to publish event")
	}
}

func newEnvelope(routingKey string, data any) Envelope {
	return Envelope{
		ID:         uuid.NewString(),
		Type:       routingKey,
		OccurredAt: time.Now().UTC(),
		Data:       data,
	}
}

type AMQPPublisher struct {
	mu       sync.Mutex
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

func NewAMQPPublisher(url, exchange string) (*AMQPPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("declare exchange: %w", err)
	}
	return &AMQPPublisher{conn: conn, ch: ch, exchange: exchange}, nil
}

func (p *AMQPPublisher) Publish(ctx context.Context, routingKey string, data any) error {
	envelope := newEnvelope(routingKey, data)
	body, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}

	p.mu.Lock()
	defer p.mu.Unlock()
	return p.ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		MessageId:    envelope.ID,
		Timestamp:    envelope.OccurredAt,
		Type:         routingKey,
		Body:         body,
	})
}

func (p *AMQPPublisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// NoopPublisher drops every event.
type NoopPublisher struct{}

func (NoopPublisher) Publish(context.Context, string, any) error { return nil }

func (NoopPublisher) Close() error { return nil }
