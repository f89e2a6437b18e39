package application

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-user-registration/internal/domain/apperror"
	"github.com/oksasatya/go-user-registration/internal/domain/entity"
	repo "github.com/oksasatya/go-user-registration/internal/domain/repository"
	"github.com/oksasatya/go-user-registration/internal/observability"
	"github.com/oksasatya/go-user-registration/pkg/validation"
)

type PasswordHasher interface {
	Hash(plain string) (string, error)
}

type IdentifierChecker interface {
	Check(id string) error
}

// DefaultActivation is the job policy applied to every registration.
var DefaultActivation = ActivationPolicy(10*time.Second, 3, 5*time.Second)

const DefaultCacheTTL = 1800 * time.Second

// ActivationPolicy builds job options with a fixed backoff.
func ActivationPolicy(delay time.Duration, attempts int, backoff time.Duration) entity.JobOptions {
	return entity.JobOptions{
		Delay:       delay,
		MaxAttempts: attempts,
		Backoff:     entity.Backoff{Kind: entity.BackoffFixed, Delay: backoff},
	}
}

type Service struct {
	Repo       repo.UserRepository
	Cache      repo.UserCache
	Queue      repo.ActivationQueue
	Hasher     PasswordHasher
	IDs        IdentifierChecker
	Logger     logrus.FieldLogger
	Metrics    *observability.Prom
	CacheTTL   time.Duration
	Activation entity.JobOptions
}

func NewService(
	users repo.UserRepository,
	cache repo.UserCache,
	queue repo.ActivationQueue,
	hasher PasswordHasher,
	ids IdentifierChecker,
	logger logrus.FieldLogger,
	metrics *observability.Prom,
) *Service {
	return &Service{
		Repo:       users,
		Cache:      cache,
		Queue:      queue,
		Hasher:     hasher,
		IDs:        ids,
		Logger:     logger,
		Metrics:    metrics,
		CacheTTL:   DefaultCacheTTL,
		Activation: DefaultActivation,
	}
}

// Create registers a user and schedules its deferred activation.
// The user is committed before the job is scheduled; a scheduling failure is reported
// to the caller while the row stays pending for the reconciliation sweep.
func (s *Service) Create(ctx context.Context, in entity.CreateUserInput) (*entity.User, error) {
	in, err := validation.CreateUser(in)
	if err != nil {
		return nil, err
	}

	existing, err := s.Repo.FindByEmail(ctx, in.Email)
	switch {
	case err == nil && existing != nil:
		return nil, apperror.ErrEmailAlreadyExists
	case err != nil && !errors.Is(err, apperror.ErrUserNotFound):
		return nil, fmt.Errorf("check email: %w", err)
	}

	hash, err := s.Hasher.Hash(in.Password)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}
	in.Password = hash

	u, err := s.Repo.CreateInTransaction(ctx, in)
	if err != nil {
		return nil, err
	}

	job := entity.NewActivationJob(*u, s.Activation)
	if err := s.Queue.Schedule(ctx, job); err != nil {
		s.Logger.WithError(err).WithField("user_id", u.ID).Error("activation scheduling failed after commit")
		return nil, err
	}

	s.Logger.WithField("user_id", u.ID).Info("user registered")
	return u, nil
}

// FindByID is a cache-through lookup. Cache failures degrade to a store read.
func (s *Service) FindByID(ctx context.Context, id string) (*entity.User, error) {
	if err := s.IDs.Check(id); err != nil {
		return nil, err
	}

	cached, ok, err := s.Cache.Get(ctx, id)
	switch {
	case err != nil:
		s.Metrics.CacheResult("error")
		s.Logger.WithError(err).WithField("user_id", id).Warn("user cache read failed")
	case ok:
		s.Metrics.CacheResult("hit")
		return cached, nil
	default:
		s.Metrics.CacheResult("miss")
	}

	u, err := s.Repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := s.Cache.Set(ctx, u, s.CacheTTL); err != nil {
		s.Logger.WithError(err).WithField("user_id", id).Warn("user cache write failed")
	}
	return u, nil
}
