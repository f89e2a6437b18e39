package repository

import (
	"context"
	"time"

	"github.com/oksasatya/go-user-registration/internal/domain/entity"
)

// UserRepository defines the interface for user-related database operations.
// Lookups return apperror.ErrUserNotFound when no row matches.
type UserRepository interface {
	FindByEmail(ctx context.Context, email string) (*entity.User, error)
	FindByID(ctx context.Context, id string) (*entity.User, error)
	// CreateInTransaction persists a new user atomically. The email unique constraint is
	// the real guard against concurrent registrations; violations surface as
	// apperror.ErrEmailAlreadyExists.
	CreateInTransaction(ctx context.Context, in entity.CreateUserInput) (*entity.User, error)
	UpdateStatus(ctx context.Context, id string, status bool) error
	ListPendingActivation(ctx context.Context, createdBefore time.Time, limit int) ([]entity.User, error)
}
