package kv

import (
	"context"
	"sync"
)

// Memory is a process-local Storage. Values are copied in and out.
type Memory struct {
	mu   sync.RWMutex
	data map[string][]byte
	// FailPuts makes every Put fail with this error when non-nil.
	FailPuts error
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte)}
}

func (m *Memory) Get(_ context.Context, owner, key string) ([]byte, bool, error) {
	if err := checkOwnerKey(owner, key); err != nil {
		return nil, false, err
	}
	m.mu.RLock()
	defer m.mu.RUnlock()
	v, ok := m.data[owner+"\x00"+key]
	if !ok {
		return nil, false, nil
	}
	return append([]byte(nil), v...), true, nil
}

func (m *Memory) Put(_ context.Context, owner, key string, value []byte) error {
	if err := checkOwnerKey(owner, key); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.FailPuts != nil {
		return m.FailPuts
	}
	m.data[owner+"\x00"+key] = append([]byte(nil), value...)
	return nil
}

func (m *Memory) Delete(_ context.Context, owner, key string) error {
	if err := checkOwnerKey(owner, key); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, owner+"\x00"+key)
	return nil
}
