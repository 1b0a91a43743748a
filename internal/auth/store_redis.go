// Copyright (c) 2026 HKUSTSU Film Society. All rights reserved.

package auth

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/johnmave126/filmsoc-website-backend/internal/platform/constants"
)

// RedisSessionStore keeps live sessions in Redis so every API instance
// sees the same revocation state.
type RedisSessionStore struct {
	client *redis.Client
}

func NewRedisSessionStore(client *redis.Client) *RedisSessionStore {
	return &RedisSessionStore{client: client}
}

func (store *RedisSessionStore) Put(ctx context.Context, sid, itsc string, ttl time.Duration) error {
	return store.client.Set(ctx, constants.RedisPrefixSession+sid, itsc, ttl).Err()
}

func (store *RedisSessionStore) Live(ctx context.Context, sid string) (bool, error) {
	err := store.client.Get(ctx, constants.RedisPrefixSession+sid).Err()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (store *RedisSessionStore) Delete(ctx context.Context, sid string) error {
	return store.client.Del(ctx, constants.RedisPrefixSession+sid).Err()
}
