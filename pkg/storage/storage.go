package storage

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("key not found")

// KV is a durable key-value store which survives process restarts. Values are
// plain strings, the callers own the encoding.
type KV interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error

	// MSet writes every pair atomically, either all of them change or none.
	MSet(ctx context.Context, kv map[string]string) error

	// Keys returns all keys matching the glob pattern.
	Keys(ctx context.Context, pattern string) ([]string, error)
}

// Scoped prefixes every key with scope, so several owners can share one
// store.
func Scoped(kv KV, scope string) KV {
	return &scopedKV{kv: kv, prefix: scope + ":"}
}

type scopedKV struct {
	kv     KV
	prefix string
}

func (s *scopedKV) Get(ctx context.Context, key string) (string, error) {
	return s.kv.Get(ctx, s.prefix+key)
}

func (s *scopedKV) Set(ctx context.Context, key, value string) error {
	return s.kv.Set(ctx, s.prefix+key, value)
}

func (s *scopedKV) MSet(ctx context.Context, kv map[string]string) error {
	prefixed := make(map[string]string, len(kv))
	for k, v := range kv {
		prefixed[s.prefix+k] = v
	}

	return s.kv.MSet(ctx, prefixed)
}

func (s *scopedKV) Keys(ctx context.Context, pattern string) ([]string, error) {
	keys, err := s.kv.Keys(ctx, s.prefix+pattern)
	if err != nil {
		return nil, err
	}

	for i := range keys {
		keys[i] = keys[i][len(s.prefix):]
	}

	return keys, nil
}
