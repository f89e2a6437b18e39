package cache

import (
	"context"
	"time"

	gocache "github.com/patrickmn/go-cache"

	"github.com/oksasatya/go-user-registration/internal/domain/entity"
	"github.com/oksasatya/go-user-registration/internal/domain/repository"
)

// MemoryUserCache is the single-process driver, used when CACHE_DRIVER=memory.
type MemoryUserCache struct {
	c *gocache.Cache
}

var _ repository.UserCache = (*MemoryUserCache)(nil)

func NewMemoryUserCache(defaultTTL, cleanup time.Duration) *MemoryUserCache {
	return &MemoryUserCache{c: gocache.New(defaultTTL, cleanup)}
}

func (m *MemoryUserCache) Get(_ context.Context, id string) (*entity.User, bool, error) {
	v, ok := m.c.Get(key(id))
	if !ok {
		return nil, false, nil
	}
	u := v.(entity.User)
	return &u, true, nil
}

// Set stores a copy without the password hash, matching what the Redis driver keeps.
func (m *MemoryUserCache) Set(_ context.Context, u *entity.User, ttl time.Duration) error {
	cp := *u
	cp.Password = ""
	m.c.Set(key(u.ID), cp, ttl)
	return nil
}

func (m *MemoryUserCache) Delete(_ context.Context, id string) error {
	m.c.Delete(key(id))
	return nil
}
