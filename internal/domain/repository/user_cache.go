package repository

import (
	"context"
	"time"

	"github.com/oksasatya/go-user-registration/internal/domain/entity"
)

// UserCache holds time-bounded copies of users keyed by id. The store stays authoritative.
type UserCache interface {
	Get(ctx context.Context, id string) (*entity.User, bool, error)
	Set(ctx context.Context, u *entity.User, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}
