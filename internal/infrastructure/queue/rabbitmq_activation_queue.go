package queue

import (
	"context"
	"fmt"
	"strconv"
	"sync"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"

	"github.com/oksasatya/go-user-registration/internal/domain/entity"
	"github.com/oksasatya/go-user-registration/internal/domain/repository"
)

// Publisher is the part of helpers.RabbitPublisher the queue needs.
type Publisher interface {
	DeclareQueue(name string, args amqp.Table) error
	PublishJSON(ctx context.Context, routingKey string, body any) error
}

// RabbitActivationQueue delays jobs with per-delay holding queues. A message parked in
// "<queue>.delay.<ms>" expires after ms and is dead-lettered into the work queue.
type RabbitActivationQueue struct {
	pub   Publisher
	queue string

	mu       sync.Mutex
	declared map[int64]string
}

var _ repository.ActivationQueue = (*RabbitActivationQueue)(nil)

func NewRabbitActivationQueue(pub Publisher, queue string) *RabbitActivationQueue {
	return &RabbitActivationQueue{pub: pub, queue: queue, declared: map[int64]string{}}
}

func (q *RabbitActivationQueue) Schedule(ctx context.Context, job entity.ActivationJob) error {
	if err := q.publishAfter(ctx, job, job.Options.Delay); err != nil {
		return fmt.Errorf("schedule activation for user %s: %w", job.User.ID, err)
	}
	return nil
}

// Retry republishes job so it becomes visible again after delay.
func (q *RabbitActivationQueue) Retry(ctx context.Context, job entity.ActivationJob, delay time.Duration) error {
	if err := q.publishAfter(ctx, job, delay); err != nil {
		return fmt.Errorf("retry activation for user %s: %w", job.User.ID, err)
	}
	return nil
}

func (q *RabbitActivationQueue) publishAfter(ctx context.Context, job entity.ActivationJob, delay time.Duration) error {
	routingKey, err := q.holdingQueue(delay)
	if err != nil {
		return err
	}
	return q.pub.PublishJSON(ctx, routingKey, job)
}

// holdingQueue declares the holding queue for delay once and returns its name.
// Non-positive delays go straight to the work queue.
func (q *RabbitActivationQueue) holdingQueue(delay time.Duration) (string, error) {
	ms := delay.Milliseconds()
	if ms <= 0 {
		return q.queue, nil
	}

	q.mu.Lock()
	defer q.mu.Unlock()
	if name, ok := q.declared[ms]; ok {
		return name, nil
	}
	name := HoldingQueueName(q.queue, delay)
	if err := q.pub.DeclareQueue(name, HoldingQueueArgs(q.queue, delay)); err != nil {
		return "", fmt.Errorf("declare %s: %w", name, err)
	}
	q.declared[ms] = name
	return name, nil
}

func HoldingQueueName(queue string, delay time.Duration) string {
	return queue + ".delay." + strconv.FormatInt(delay.Milliseconds(), 10)
}

func HoldingQueueArgs(queue string, delay time.Duration) amqp.Table {
	return amqp.Table{
		"x-message-ttl":             delay.Milliseconds(),
		"x-dead-letter-exchange":    "",
		"x-dead-letter-routing-key": queue,
	}
}
