package application

import (
	"context"
	"errors"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-user-registration/internal/domain/apperror"
	"github.com/oksasatya/go-user-registration/internal/domain/entity"
	repo "github.com/oksasatya/go-user-registration/internal/domain/repository"
	"github.com/oksasatya/go-user-registration/internal/observability"
)

// ActivationNotifier tells a user their account is active.
type ActivationNotifier interface {
	NotifyActivated(ctx context.Context, u entity.User) error
}

// Activator executes activation jobs. Only status is written; the snapshot in the job is
// used for logging and the notice.
type Activator struct {
	Repo     repo.UserRepository
	Cache    repo.UserCache
	Notifier ActivationNotifier // optional
	Logger   logrus.FieldLogger
}

func (a *Activator) Handle(ctx context.Context, job entity.ActivationJob) error {
	id := job.User.ID

	wasActive := false
	if cur, err := a.Repo.FindByID(ctx, id); err == nil {
		wasActive = cur.Status
	} else if !errors.Is(err, apperror.ErrUserNotFound) {
		return err
	}

	if err := a.Repo.UpdateStatus(ctx, id, true); err != nil {
		return err
	}

	if a.Cache != nil {
		if err := a.Cache.Delete(ctx, id); err != nil {
			a.Logger.WithError(err).WithField("user_id", id).Warn("evict cached user failed")
		}
	}

	// duplicate jobs (sweep + original) must not send twice
	if wasActive || a.Notifier == nil {
		return nil
	}
	if err := a.Notifier.NotifyActivated(ctx, job.User); err != nil {
		a.Logger.WithError(err).WithField("user_id", id).Warn("activation notice failed")
	}
	return nil
}

// Reconciler re-enqueues activation for users left pending, e.g. when scheduling failed
// after the registration committed.
type Reconciler struct {
	Repo    repo.UserRepository
	Queue   repo.ActivationQueue
	Options entity.JobOptions
	Grace   time.Duration
	Batch   int
	Logger  logrus.FieldLogger
	Metrics *observability.Prom
	Now     func() time.Time
}

// Sweep schedules one immediate job per pending user older than Grace and returns how
// many were scheduled.
func (r *Reconciler) Sweep(ctx context.Context) (int, error) {
	now := time.Now
	if r.Now != nil {
		now = r.Now
	}
	users, err := r.Repo.ListPendingActivation(ctx, now().Add(-r.Grace), r.Batch)
	if err != nil {
		return 0, err
	}

	opts := r.Options
	opts.Delay = 0

	n := 0
	for _, u := range users {
		if err := r.Queue.Schedule(ctx, entity.NewActivationJob(u, opts)); err != nil {
			r.Metrics.JobRescheduled(n)
			return n, err
		}
		n++
	}
	r.Metrics.JobRescheduled(n)
	if n > 0 {
		r.Logger.WithField("count", n).Info("pending activations rescheduled")
	}
	return n, nil
}

// DefaultSweepInterval replaces a non-positive interval passed to Run.
const DefaultSweepInterval = time.Minute

// Run sweeps every interval until ctx is done.
func (r *Reconciler) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		r.Logger.WithField("interval", interval).Warn("non-positive sweep interval, using default")
		interval = DefaultSweepInterval
	}
	t := time.NewTicker(interval)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			if _, err := r.Sweep(ctx); err != nil && ctx.Err() == nil {
				r.Logger.WithError(err).Error("activation sweep failed")
			}
		}
	}
}
