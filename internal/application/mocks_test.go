package application

import (
	"context"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/mock"

	"github.com/oksasatya/go-user-registration/internal/domain/apperror"
	"github.com/oksasatya/go-user-registration/internal/domain/entity"
)

type mockRepo struct{ mock.Mock }

func (m *mockRepo) FindByEmail(ctx context.Context, email string) (*entity.User, error) {
	args := m.Called(ctx, email)
	u, _ := args.Get(0).(*entity.User)
	return u, args.Error(1)
}

func (m *mockRepo) FindByID(ctx context.Context, id string) (*entity.User, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*entity.User)
	return u, args.Error(1)
}

func (m *mockRepo) CreateInTransaction(ctx context.Context, in entity.CreateUserInput) (*entity.User, error) {
	args := m.Called(ctx, in)
	if fn, ok := args.Get(0).(func(context.Context, entity.CreateUserInput) *entity.User); ok {
		return fn(ctx, in), args.Error(1)
	}
	u, _ := args.Get(0).(*entity.User)
	return u, args.Error(1)
}

func (m *mockRepo) UpdateStatus(ctx context.Context, id string, status bool) error {
	return m.Called(ctx, id, status).Error(0)
}

func (m *mockRepo) ListPendingActivation(ctx context.Context, before time.Time, limit int) ([]entity.User, error) {
	args := m.Called(ctx, before, limit)
	users, _ := args.Get(0).([]entity.User)
	return users, args.Error(1)
}

type mockCache struct{ mock.Mock }

func (m *mockCache) Get(ctx context.Context, id string) (*entity.User, bool, error) {
	args := m.Called(ctx, id)
	u, _ := args.Get(0).(*entity.User)
	return u, args.Bool(1), args.Error(2)
}

func (m *mockCache) Set(ctx context.Context, u *entity.User, ttl time.Duration) error {
	return m.Called(ctx, u, ttl).Error(0)
}

func (m *mockCache) Delete(ctx context.Context, id string) error {
	return m.Called(ctx, id).Error(0)
}

type mockQueue struct{ mock.Mock }

func (m *mockQueue) Schedule(ctx context.Context, job entity.ActivationJob) error {
	return m.Called(ctx, job).Error(0)
}

type mockIDs struct{ mock.Mock }

func (m *mockIDs) Check(id string) error { return m.Called(id).Error(0) }

type mockNotifier struct{ mock.Mock }

func (m *mockNotifier) NotifyActivated(ctx context.Context, u entity.User) error {
	return m.Called(ctx, u).Error(0)
}

// memRepo enforces email uniqueness at insert time, like the users_email_key constraint.
type memRepo struct {
	mu      sync.Mutex
	byID    map[string]entity.User
	byEmail map[string]string
	// gate blocks inserts until closed so concurrent creates pass the pre-check together.
	gate chan struct{}
}

func newMemRepo() *memRepo {
	return &memRepo{byID: map[string]entity.User{}, byEmail: map[string]string{}}
}

func (r *memRepo) FindByEmail(_ context.Context, email string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	id, ok := r.byEmail[email]
	if !ok {
		return nil, apperror.ErrUserNotFound
	}
	u := r.byID[id]
	return &u, nil
}

func (r *memRepo) FindByID(_ context.Context, id string) (*entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return nil, apperror.ErrUserNotFound
	}
	return &u, nil
}

func (r *memRepo) CreateInTransaction(_ context.Context, in entity.CreateUserInput) (*entity.User, error) {
	if r.gate != nil {
		<-r.gate
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.byEmail[in.Email]; ok {
		return nil, apperror.ErrEmailAlreadyExists
	}
	now := time.Now().UTC()
	u := entity.User{ID: uuid.NewString(), Name: in.Name, Email: in.Email, Password: in.Password, CreatedAt: now, UpdatedAt: now}
	r.byID[u.ID] = u
	r.byEmail[u.Email] = u.ID
	return &u, nil
}

func (r *memRepo) UpdateStatus(_ context.Context, id string, status bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.byID[id]
	if !ok {
		return apperror.ErrUserNotFound
	}
	if status && !u.Status {
		u.Status = true
		u.UpdatedAt = time.Now().UTC()
		r.byID[id] = u
	}
	return nil
}

func (r *memRepo) ListPendingActivation(_ context.Context, before time.Time, limit int) ([]entity.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []entity.User
	for _, u := range r.byID {
		if !u.Status && u.CreatedAt.Before(before) && len(out) < limit {
			out = append(out, u)
		}
	}
	return out, nil
}

func (r *memRepo) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.byID)
}
