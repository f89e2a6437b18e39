package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/oksasatya/go-user-registration/internal/domain/entity"
	"github.com/oksasatya/go-user-registration/internal/domain/repository"
	"github.com/oksasatya/go-user-registration/pkg/helpers"
)

const keyPrefix = "user:"

func key(id string) string { return keyPrefix + id }

// RedisUserCache stores users as JSON. The password hash is never serialized.
type RedisUserCache struct {
	rdb redis.Cmdable
}

var _ repository.UserCache = (*RedisUserCache)(nil)

func NewRedisUserCache(rdb redis.Cmdable) *RedisUserCache {
	return &RedisUserCache{rdb: rdb}
}

func (c *RedisUserCache) Get(ctx context.Context, id string) (*entity.User, bool, error) {
	var u entity.User
	ok, err := helpers.RedisGetJSON(ctx, c.rdb, key(id), &u)
	if err != nil || !ok {
		return nil, false, err
	}
	return &u, true, nil
}

func (c *RedisUserCache) Set(ctx context.Context, u *entity.User, ttl time.Duration) error {
	return helpers.RedisSetJSON(ctx, c.rdb, key(u.ID), u, ttl)
}

func (c *RedisUserCache) Delete(ctx context.Context, id string) error {
	return helpers.RedisDel(ctx, c.rdb, key(id))
}
