package testutil

import (
	"context"
	"sync"

	"github.com/spdm-lab/rewards/pkg/errorx"
)

type BalanceCall struct {
	UserID string
	Delta  int64
	Reason string
}

// MockBalanceMutator records every call and keeps balances in memory.
type MockBalanceMutator struct {
	UpdateBalanceFunc func(ctx context.Context, userID string, delta int64, reason string) (int64, error)

	mutex    sync.Mutex
	Calls    []BalanceCall
	Balances map[string]int64
}

func (m *MockBalanceMutator) UpdateBalance(ctx context.Context, userID string, delta int64, reason string) (int64, error) {
	if m.UpdateBalanceFunc != nil {
		return m.UpdateBalanceFunc(ctx, userID, delta, reason)
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	if m.Balances == nil {
		m.Balances = map[string]int64{}
	}

	if m.Balances[userID]+delta < 0 {
		return 0, errorx.New(errorx.InsufficientBalance, "Insufficient balance")
	}

	m.Balances[userID] += delta
	m.Calls = append(m.Calls, BalanceCall{UserID: userID, Delta: delta, Reason: reason})
	return m.Balances[userID], nil
}

func (m *MockBalanceMutator) TotalDelta() int64 {
	m.mutex.Lock()
	defer m.mutex.Unlock()

	var total int64
	for _, c := range m.Calls {
		total += c.Delta
	}

	return total
}
