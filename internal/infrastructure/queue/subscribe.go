package queue

import (
	amqp "github.com/rabbitmq/amqp091-go"
)

// Subscription is a consuming AMQP connection for one queue.
type Subscription struct {
	conn *amqp.Connection
	ch   *amqp.Channel
	Msgs <-chan amqp.Delivery
}

// Subscribe dials url, declares queue and starts a manual-ack consumer.
func Subscribe(url, queue string, prefetch int) (*Subscription, error) {
	conn, err := amqp.Dial(url)
	if err != nil {
		return nil, err
	}
	ch, err := conn.Channel()
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	s := &Subscription{conn: conn, ch: ch}

	// Prefetch for fair dispatch
	if err := ch.Qos(prefetch, 0, false); err != nil {
		s.Close()
		return nil, err
	}
	if _, err := ch.QueueDeclare(queue, true, false, false, false, nil); err != nil {
		s.Close()
		return nil, err
	}
	msgs, err := ch.Consume(queue, "", false, false, false, false, nil)
	if err != nil {
		s.Close()
		return nil, err
	}
	s.Msgs = msgs
	return s, nil
}

func (s *Subscription) Healthy() bool {
	return s != nil && s.conn != nil && !s.conn.IsClosed()
}

func (s *Subscription) Close() {
	if s.ch != nil {
		_ = s.ch.Close()
	}
	if s.conn != nil {
		_ = s.conn.Close()
	}
}
