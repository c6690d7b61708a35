package testutil

import (
	"context"
	"encoding/json"
	"path"
	"sort"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// MockRedisClient behaves like an in-memory redis unless the corresponding
// Func field is set. Expirations are ignored.
type MockRedisClient struct {
	GetFunc    func(ctx context.Context, key string) (string, error)
	SetFunc    func(ctx context.Context, key, value string) error
	MSetFunc   func(ctx context.Context, kv map[string]string) error
	GetObjFunc func(ctx context.Context, key string, v any) error
	SetObjFunc func(ctx context.Context, key string, obj any, ttl time.Duration) error
	SAddFunc   func(ctx context.Context, key string, members ...string) (int64, error)

	mutex   sync.Mutex
	strings map[string]string
	sets    map[string]map[string]bool
}

func NewMockRedisClient() *MockRedisClient {
	return &MockRedisClient{
		strings: make(map[string]string),
		sets:    make(map[string]map[string]bool),
	}
}

func (m *MockRedisClient) Del(ctx context.Context, keys ...string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for _, k := range keys {
		delete(m.strings, k)
		delete(m.sets, k)
	}

	return nil
}

func (m *MockRedisClient) Keys(ctx context.Context, pattern string) ([]string, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	keys := []string{}
	for k := range m.strings {
		if ok, _ := path.Match(pattern, k); ok {
			keys = append(keys, k)
		}
	}

	for k := range m.sets {
		if ok, _ := path.Match(pattern, k); ok {
			keys = append(keys, k)
		}
	}

	sort.Strings(keys)
	return keys, nil
}

func (m *MockRedisClient) SAdd(ctx context.Context, key string, members ...string) (int64, error) {
	if m.SAddFunc != nil {
		return m.SAddFunc(ctx, key, members...)
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	if _, ok := m.sets[key]; !ok {
		m.sets[key] = make(map[string]bool)
	}

	var added int64
	for _, member := range members {
		if !m.sets[key][member] {
			m.sets[key][member] = true
			added++
		}
	}

	return added, nil
}

func (m *MockRedisClient) SRem(ctx context.Context, key string, members ...string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for _, member := range members {
		delete(m.sets[key], member)
	}

	if len(m.sets[key]) == 0 {
		delete(m.sets, key)
	}

	return nil
}

func (m *MockRedisClient) SMembers(ctx context.Context, key string) ([]string, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	members := []string{}
	for member := range m.sets[key] {
		members = append(members, member)
	}

	sort.Strings(members)
	return members, nil
}

func (m *MockRedisClient) SCard(ctx context.Context, key string) (uint64, error) {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	return uint64(len(m.sets[key])), nil
}

func (m *MockRedisClient) Set(ctx context.Context, key, value string) error {
	if m.SetFunc != nil {
		return m.SetFunc(ctx, key, value)
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.strings[key] = value
	return nil
}

func (m *MockRedisClient) SetObj(ctx context.Context, key string, obj any, ttl time.Duration) error {
	if m.SetObjFunc != nil {
		return m.SetObjFunc(ctx, key, obj, ttl)
	}

	b, err := json.Marshal(obj)
	if err != nil {
		return err
	}

	return m.Set(ctx, key, string(b))
}

func (m *MockRedisClient) MSet(ctx context.Context, kv map[string]string) error {
	if m.MSetFunc != nil {
		return m.MSetFunc(ctx, kv)
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	for k, v := range kv {
		m.strings[k] = v
	}

	return nil
}

func (m *MockRedisClient) Get(ctx context.Context, key string) (string, error) {
	if m.GetFunc != nil {
		return m.GetFunc(ctx, key)
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	v, ok := m.strings[key]
	if !ok {
		return "", redis.Nil
	}

	return v, nil
}

func (m *MockRedisClient) GetObj(ctx context.Context, key string, v any) error {
	if m.GetObjFunc != nil {
		return m.GetObjFunc(ctx, key, v)
	}

	s, err := m.Get(ctx, key)
	if err != nil {
		return err
	}

	return json.Unmarshal([]byte(s), v)
}

func (m *MockRedisClient) MGet(ctx context.Context, keys ...string) ([]any, error) {
	result := make([]any, 0, len(keys))
	for _, k := range keys {
		v, err := m.Get(ctx, k)
		if err != nil {
			result = append(result, nil)
			continue
		}

		result = append(result, v)
	}

	return result, nil
}
