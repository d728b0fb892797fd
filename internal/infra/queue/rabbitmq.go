package queue

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/bytedance/sonic"
	amqp "github.com/rabbitmq/amqp091-go"
	"go.uber.org/zap"
)

// Publisher emits JSON events on a topic exchange.
type Publisher interface {
	PublishJSON(ctx context.Context, routingKey string, data interface{}) error
}

type amqpPublisher struct {
	conn     *amqp.Connection
	exchange string
	log      *zap.Logger

	mu sync.Mutex
	ch *amqp.Channel
}

func NewPublisher(conn *amqp.Connection, exchange string, log *zap.Logger) (Publisher, error) {
	p := &amqpPublisher{conn: conn, exchange: exchange, log: log}
	if _, err := p.channel(); err != nil {
		return nil, err
	}
	return p, nil
}

// channel lazily (re)opens the publishing channel; a channel is closed by the
// broker after any channel-level error.
func (p *amqpPublisher) channel() (*amqp.Channel, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.ch != nil && !p.ch.IsClosed() {
		return p.ch, nil
	}
	ch, err := p.conn.Channel()
	if err != nil {
		return nil, fmt.Errorf("open channel: %w", err)
	}
	if err := ch.ExchangeDeclare(p.exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		_ = ch.Close()
		return nil, fmt.Errorf("declare exchange %s: %w", p.exchange, err)
	}
	p.ch = ch
	return ch, nil
}

func (p *amqpPublisher) PublishJSON(ctx context.Context, routingKey string, data interface{}) error {
	body, err := sonic.Marshal(data)
	if err != nil {
		return fmt.Errorf("marshal event: %w", err)
	}
	ch, err := p.channel()
	if err != nil {
		return err
	}
	err = ch.PublishWithContext(ctx, p.exchange, routingKey, false, false, amqp.Publishing{
		ContentType:  "application/json",
		DeliveryMode: amqp.Persistent,
		Timestamp:    time.Now().UTC(),
		Body:         body,
	})
	if err != nil {
		return fmt.Errorf("publish %s: %w", routingKey, err)
	}
	p.log.Sugar().Debugw("event published", "exchange", p.exchange, "routing_key", routingKey)
	return nil
}

// NopPublisher drops events; used when no broker URL is configured.
type NopPublisher struct{}

func (NopPublisher) PublishJSON(context.Context, string, interface{}) error { return nil }

// Handler processes one delivery body. A returned error nacks the delivery
// without requeue.
type Handler func(ctx context.Context, body []byte) error

type Consumer struct {
	conn     *amqp.Connection
	exchange string
	queue    string
	prefetch int
	log      *zap.Logger
}

func NewConsumer(conn *amqp.Connection, exchange, queue string, prefetch int, log *zap.Logger) *Consumer {
	return &Consumer{conn: conn, exchange: exchange, queue: queue, prefetch: prefetch, log: log}
}

// Run binds the queue to routingKey and dispatches deliveries until ctx is
// done or the channel closes.
func (c *Consumer) Run(ctx context.Context, routingKey string, h Handler) error {
	ch, err := c.conn.Channel()
	if err != nil {
		return fmt.Errorf("open channel: %w", err)
	}
	defer ch.Close()

	if err := ch.ExchangeDeclare(c.exchange, amqp.ExchangeTopic, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare exchange %s: %w", c.exchange, err)
	}
	if _, err := ch.QueueDeclare(c.queue, true, false, false, false, nil); err != nil {
		return fmt.Errorf("declare queue %s: %w", c.queue, err)
	}
	if err := ch.QueueBind(c.queue, routingKey, c.exchange, false, nil); err != nil {
		return fmt.Errorf("bind queue %s: %w", c.queue, err)
	}
	if c.prefetch > 0 {
		if err := ch.Qos(c.prefetch, 0, false); err != nil {
			return fmt.Errorf("set qos: %w", err)
		}
	}

	deliveries, err := ch.ConsumeWithContext(ctx, c.queue, "", false, false, false, false, nil)
	if err != nil {
		return fmt.Errorf("consume %s: %w", c.queue, err)
	}

	for {
		select {
		case <-ctx.Done():
			return nil
		case d, ok := <-deliveries:
			if !ok {
				return nil
			}
			if err := h(ctx, d.Body); err != nil {
				c.log.Sugar().Errorw("handle delivery", "queue", c.queue, "err", err)
				_ = d.Nack(false, false)
				continue
			}
			_ = d.Ack(false)
		}
	}
}
