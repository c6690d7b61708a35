package storage

import (
	"context"

	"github.com/spdm-lab/rewards/pkg/xredis"
)

type redisKV struct {
	client xredis.Client
}

func NewRedisKV(client xredis.Client) *redisKV {
	return &redisKV{client: client}
}

func (r *redisKV) Get(ctx context.Context, key string) (string, error) {
	value, err := r.client.Get(ctx, key)
	if err != nil {
		if xredis.IsNil(err) {
			return "", ErrNotFound
		}

		return "", err
	}

	return value, nil
}

func (r *redisKV) Set(ctx context.Context, key, value string) error {
	return r.client.Set(ctx, key, value)
}

func (r *redisKV) MSet(ctx context.Context, kv map[string]string) error {
	return r.client.MSet(ctx, kv)
}

func (r *redisKV) Keys(ctx context.Context, pattern string) ([]string, error) {
	return r.client.Keys(ctx, pattern)
}
