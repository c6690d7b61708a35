package storage

import (
	"context"
	"path"
	"sort"
	"sync"
)

type memoryKV struct {
	mutex sync.RWMutex
	data  map[string]string
}

func NewMemoryKV() *memoryKV {
	return &memoryKV{data: make(map[string]string)}
}

func (m *memoryKV) Get(_ context.Context, key string) (string, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	value, ok := m.data[key]
	if !ok {
		return "", ErrNotFound
	}

	return value, nil
}

func (m *memoryKV) Set(_ context.Context, key, value string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.data[key] = value
	return nil
}

func (m *memoryKV) MSet(_ context.Context, kv map[string]string) error {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	for k, v := range kv {
		m.data[k] = v
	}

	return nil
}

func (m *memoryKV) Keys(_ context.Context, pattern string) ([]string, error) {
	m.mutex.RLock()
	defer m.mutex.RUnlock()

	keys := []string{}
	for k := range m.data {
		ok, err := path.Match(pattern, k)
		if err != nil {
			return nil, err
		}

		if ok {
			keys = append(keys, k)
		}
	}

	sort.Strings(keys)
	return keys, nil
}
