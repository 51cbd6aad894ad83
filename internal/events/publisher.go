package events

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	amqp "github.com/rabbitmq/amqp091-go"
)

// Publisher emits lifecycle events keyed like "booking.confirmed".
type Publisher interface {
	PublishJSON(ctx context.Context, key string, v any) error
	Close() error
}

// Nop discards events. Used when no broker is configured.
type Nop struct{}

func (Nop) PublishJSON(context.Context, string, any) error { return nil }
func (Nop) Close() error                                   { return nil }

// AMQPPublisher publishes JSON events to a RabbitMQ topic exchange.
type AMQPPublisher struct {
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

func (p *AMQPPublisher) PublishJSON(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return p.ch.PublishWithContext(ctx, p.exchange, key, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Body:         b,
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

// Connect returns an AMQP publisher when url is set, Nop otherwise.
// A broker that cannot be reached is logged and replaced by Nop so the
// booking API keeps serving.
func Connect(url, exchange string) Publisher {
	if url == "" {
		return Nop{}
	}
	p, err := NewAMQPPublisher(url, exchange)
	if err != nil {
		log.Printf("[EVENTS] rabbitmq unavailable, events disabled: %v", err)
		return Nop{}
	}
	log.Printf("[EVENTS] publishing to exchange %s", exchange)
	return p
}
