package helpers

import (
	"context"
	"encoding/json"
	"errors"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
)

// ErrPublishNacked is returned when the broker refuses a published message.
var ErrPublishNacked = errors.New("rabbitmq: publish nacked by broker")

// RabbitPublisher wraps an AMQP channel for publishing messages.
// amqp channels are not safe for concurrent publishes, so every use goes through mu.
type RabbitPublisher struct {
	conn  *amqp.Connection
	ch    *amqp.Channel
	mu    sync.Mutex
	Queue string
}

func NewRabbitPublisher(url, queue string) (*RabbitPublisher, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	// publisher confirms: PublishJSON returns only once the broker has taken the message
	if err := ch.Confirm(false); err != nil {
		_ = ch.Close()
		_ = conn.Close()
		return nil, err
	}
	p := &RabbitPublisher{conn: conn, ch: ch, Queue: queue}
	// Declare durable queue
	if err := p.DeclareQueue(queue, nil); err != nil {
		p.Close()
		return nil, err
	}
	return p, nil
}

func (p *RabbitPublisher) Close() {
	if p == nil {
		return
	}
	if p.ch != nil {
		_ = p.ch.Close()
	}
	if p.conn != nil {
		_ = p.conn.Close()
	}
}

// Healthy reports whether the underlying connection is still open.
func (p *RabbitPublisher) Healthy() bool {
	return p != nil && p.conn != nil && !p.conn.IsClosed()
}

// DeclareQueue declares a durable queue with optional arguments.
func (p *RabbitPublisher) DeclareQueue(name string, args amqp.Table) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	_, err := p.ch.QueueDeclare(
		name,
		true,  // durable
		false, // autoDelete
		false, // exclusive
		false, // noWait
		args,
	)
	return err
}

// PublishJSON publishes a JSON-encoded message through the default exchange and waits
// for the broker confirm. An empty routingKey targets p.Queue.
func (p *RabbitPublisher) PublishJSON(ctx context.Context, routingKey string, body any) error {
	b, err := json.Marshal(body)
	if err != nil {
		return err
	}
	if routingKey == "" {
		routingKey = p.Queue
	}
	p.mu.Lock()
	conf, err := p.ch.PublishWithDeferredConfirmWithContext(ctx,
		"",         // default exchange
		routingKey, // routing key = queue
		false,      // mandatory
		false,      // immediate
		amqp.Publishing{
			ContentType:  "application/json",
			DeliveryMode: amqp.Persistent,
			Timestamp:    time.Now().UTC(),
			Body:         b,
		},
	)
	p.mu.Unlock()
	if err != nil {
		return err
	}
	if conf == nil {
		// channel not in confirm mode
		return nil
	}
	return awaitConfirm(ctx, conf)
}

type confirmation interface {
	WaitContext(ctx context.Context) (bool, error)
}

// awaitConfirm blocks until the broker acks or nacks, or ctx ends.
func awaitConfirm(ctx context.Context, c confirmation) error {
	acked, err := c.WaitContext(ctx)
	if err != nil {
		return err
	}
	if !acked {
		return ErrPublishNacked
	}
	return nil
}
