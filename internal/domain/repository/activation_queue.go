package repository

import (
	"context"

	"github.com/oksasatya/go-user-registration/internal/domain/entity"
)

// ActivationQueue schedules deferred activation jobs. Schedule errors are returned to the
// caller; execution failures are retried and finally swallowed by the consumer.
type ActivationQueue interface {
	Schedule(ctx context.Context, job entity.ActivationJob) error
}
