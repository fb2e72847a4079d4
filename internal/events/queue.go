package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/joshua-takyi/fasttrack/internal/models"
	amqp "github.com/rabbitmq/amqp091-go"
)

const (
	BookingExchange    = "fasttrack.bookings"
	RKBookingCreated   = "booking.created"
	NotificationsQueue = "fasttrack.notifications"
)

// BookingCreated carries the inserted row, the same record a database webhook would send.
type BookingCreated struct {
	Record     models.Booking `json:"record"`
	OccurredAt time.Time      `json:"occurred_at"`
}

type Publisher struct {
	conn     *amqp.Connection
	ch       *amqp.Channel
	exchange string
}

func NewPublisher(url, exchange string) (*Publisher, error) {
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
	return &Publisher{conn: conn, ch: ch, exchange: exchange}, nil
}

func (p *Publisher) PublishJSON(ctx context.Context, key string, v any) error {
	b, err := json.Marshal(v)
	if err != nil {
		return err
	}
	return p.ch.PublishWithContext(ctx, p.exchange, key, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now(),
		Body:         b,
	})
}

func (p *Publisher) PublishBookingCreated(ctx context.Context, booking *models.Booking) error {
	return p.PublishJSON(ctx, RKBookingCreated, BookingCreated{Record: *booking, OccurredAt: time.Now().UTC()})
}

func (p *Publisher) Close() error {
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		return p.conn.Close()
	}
	return nil
}

// ErrMalformedEvent marks payloads that can never be processed.
var ErrMalformedEvent = errors.New("malformed event")

type BookingCreatedHandler func(ctx context.Context, ev BookingCreated) error

type Consumer struct {
	conn   *amqp.Connection
	ch     *amqp.Channel
	queue  string
	logger *slog.Logger
}

func NewConsumer(url, exchange, queue string, keys []string, prefetch int, logger *slog.Logger) (*Consumer, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, fmt.Errorf("dial rabbitmq: %w", err)
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("open channel: %w", err)
	}
	fail := func(step string, err error) (*Consumer, error) {
		_ = ch.Close()
		_ = conn.Close()
		return nil, fmt.Errorf("%s: %w", step, err)
	}

	if err := ch.ExchangeDeclare(exchange, "topic", true, false, false, false, nil); err != nil {
		return fail("declare exchange", err)
	}
	q, err := ch.QueueDeclare(queue, true, false, false, false, nil)
	if err != nil {
		return fail("declare queue", err)
	}
	for _, rk := range keys {
		if err := ch.QueueBind(q.Name, rk, exchange, false, nil); err != nil {
			return fail("bind "+rk, err)
		}
	}
	if prefetch <= 0 {
		prefetch = 8
	}
	if err := ch.Qos(prefetch, 0, false); err != nil {
		return fail("set qos", err)
	}
	return &Consumer{conn: conn, ch: ch, queue: q.Name, logger: logger}, nil
}

// Run consumes until ctx is cancelled or the broker closes the channel.
// Nothing is requeued: a failed dispatch is logged and dropped.
func (c *Consumer) Run(ctx context.Context, handle BookingCreatedHandler) error {
	msgs, err := c.ch.ConsumeWithContext(ctx, c.queue, "fasttrack-notifier", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume: %w", err)
	}
	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-msgs:
			if !ok {
				return errors.New("deliveries channel closed")
			}
			c.deliver(ctx, d, handle)
		}
	}
}

func (c *Consumer) deliver(ctx context.Context, d amqp.Delivery, handle BookingCreatedHandler) {
	if err := handleDelivery(ctx, d, handle); err != nil {
		c.logger.Error("Booking event dropped", "routing_key", d.RoutingKey, "error", err)
		_ = d.Nack(false, false)
		return
	}
	_ = d.Ack(false)
}

func handleDelivery(ctx context.Context, d amqp.Delivery, handle BookingCreatedHandler) error {
	switch d.RoutingKey {
	case RKBookingCreated:
		var ev BookingCreated
		if err := json.Unmarshal(d.Body, &ev); err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedEvent, err)
		}
		if ev.Record.ID == 0 {
			return fmt.Errorf("%w: missing booking id", ErrMalformedEvent)
		}
		return handle(ctx, ev)
	default:
		return fmt.Errorf("%w: unknown routing key %q", ErrMalformedEvent, d.RoutingKey)
	}
}

func (c *Consumer) Close() error {
	if c.ch != nil {
		_ = c.ch.Close()
	}
	if c.conn != nil {
		return c.conn.Close()
	}
	return nil
}
