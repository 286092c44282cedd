package storage

import (
	"context"
	"errors"
	"sync"
	"time"
)

// ErrQuotaExceeded is returned by a Memory store whose writes are disabled.
var ErrQuotaExceeded = errors.New("storage: quota exceeded")

// Memory is an in-process Blobs used for ephemeral sessions and tests.
type Memory struct {
	mu         sync.Mutex
	data       map[string][]byte
	stamps     map[string]time.Time
	failWrites bool
}

func NewMemory() *Memory {
	return &Memory{data: make(map[string][]byte), stamps: make(map[string]time.Time)}
}

// FailWrites makes every later Put return ErrQuotaExceeded.
func (m *Memory) FailWrites(fail bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.failWrites = fail
}

func (m *Memory) Get(_ context.Context, key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	v, ok := m.data[key]
	if !ok {
		return nil, ErrNotFound
	}
	return append([]byte(nil), v...), nil
}

func (m *Memory) Put(_ context.Context, key string, value []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failWrites {
		return ErrQuotaExceeded
	}
	m.data[key] = append([]byte(nil), value...)
	m.stamps[key] = time.Now().UTC()
	return nil
}

func (m *Memory) UpdatedAt(_ context.Context, key string) (time.Time, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	ts, ok := m.stamps[key]
	if !ok {
		return time.Time{}, ErrNotFound
	}
	return ts, nil
}
