package queue

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-user-registration/internal/domain/entity"
	"github.com/oksasatya/go-user-registration/internal/observability"
)

type Outcome string

const (
	OutcomeDone     Outcome = "done"
	OutcomeRetry    Outcome = "retry"
	OutcomeFailed   Outcome = "failed"   // attempts exhausted, message dropped
	OutcomeInvalid  Outcome = "invalid"  // undecodable, dead on arrival
	OutcomeRequeued Outcome = "requeued" // retry publish failed, broker redelivers
)

type JobHandler interface {
	Handle(ctx context.Context, job entity.ActivationJob) error
}

type Retrier interface {
	Retry(ctx context.Context, job entity.ActivationJob, delay time.Duration) error
}

// Consumer executes activation jobs delivered from the work queue.
type Consumer struct {
	Handler JobHandler
	Retrier Retrier
	Logger  logrus.FieldLogger
	Metrics *observability.Prom
	Timeout time.Duration
}

// Run processes deliveries until ctx is cancelled or msgs is closed.
func (c *Consumer) Run(ctx context.Context, msgs <-chan amqp.Delivery) error {
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case d, ok := <-msgs:
			if !ok {
				return errors.New("delivery channel closed")
			}
			c.Process(ctx, d)
		}
	}
}

// Process runs one delivery and settles it. Failed executions never propagate: they are
// retried with the job's backoff while attempts remain, then logged and acked.
func (c *Consumer) Process(ctx context.Context, d amqp.Delivery) Outcome {
	var job entity.ActivationJob
	if err := json.Unmarshal(d.Body, &job); err != nil || job.Kind != entity.JobUpdateStatus || job.User.ID == "" {
		c.Logger.WithError(err).WithField("kind", job.Kind).Warn("dropping undecodable activation job")
		_ = d.Nack(false, false)
		return OutcomeInvalid
	}

	log := c.Logger.WithFields(logrus.Fields{
		"user_id": job.User.ID,
		"attempt": job.Attempt + 1,
		"max":     job.Options.MaxAttempts,
	})
	finish := c.Metrics.JobStarted(string(job.Kind))

	runCtx := ctx
	if c.Timeout > 0 {
		var cancel context.CancelFunc
		runCtx, cancel = context.WithTimeout(ctx, c.Timeout)
		defer cancel()
	}

	err := c.Handler.Handle(runCtx, job)
	if err == nil {
		_ = d.Ack(false)
		log.Info("user activated")
		finish(string(OutcomeDone))
		return OutcomeDone
	}

	next, delay, ok := job.Retry()
	if !ok {
		log.WithError(err).Error("activation failed, attempts exhausted")
		_ = d.Ack(false)
		finish(string(OutcomeFailed))
		return OutcomeFailed
	}

	if rerr := c.Retrier.Retry(ctx, next, delay); rerr != nil {
		log.WithError(rerr).Error("activation retry publish failed")
		_ = d.Nack(false, true)
		finish(string(OutcomeRequeued))
		return OutcomeRequeued
	}
	log.WithError(err).WithField("backoff", delay.String()).Warn("activation failed, retry scheduled")
	_ = d.Ack(false)
	finish(string(OutcomeRetry))
	return OutcomeRetry
}
