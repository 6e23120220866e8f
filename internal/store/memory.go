package store

import (
	"context"
	"strings"
	"sync"

	"basesignals/internal/model"
)

// Memory is the volatile keyed store standing in for a database. Addresses
// are keyed lower-cased.
type Memory struct {
	mu     sync.RWMutex
	byAddr map[string]model.UserSignals
}

func NewMemory() *Memory {
	return &Memory{byAddr: make(map[string]model.UserSignals)}
}

func (m *Memory) Init(ctx context.Context) error { return nil }

func (m *Memory) Close() error { return nil }

func (m *Memory) Put(ctx context.Context, signals model.UserSignals) error {
	addr := strings.ToLower(signals.Address)
	m.mu.Lock()
	defer m.mu.Unlock()
	signals.Address = addr
	m.byAddr[addr] = signals
	return nil
}

func (m *Memory) Get(ctx context.Context, address string) (model.UserSignals, bool, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	signals, ok := m.byAddr[strings.ToLower(address)]
	return signals, ok, nil
}

func (m *Memory) All(ctx context.Context) ([]model.UserSignals, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]model.UserSignals, 0, len(m.byAddr))
	for _, signals := range m.byAddr {
		out = append(out, signals)
	}
	return out, nil
}
