package storage

import (
	"context"
	"sync"
)

// MemoryBackend keeps artifacts in memory only. Used in tests and with the "memory" config.
type MemoryBackend struct {
	artifacts map[string][]byte
	mutex     sync.RWMutex
}

func NewMemoryBackend() *MemoryBackend {
	return &MemoryBackend{
		artifacts: make(map[string][]byte),
	}
}

func (m *MemoryBackend) Read(_ context.Context, name string) ([]byte, error) {
	if err := validateName(name); err != nil {
		return nil, err
	}

	m.mutex.RLock()
	defer m.mutex.RUnlock()

	data, ok := m.artifacts[name]
	if !ok {
		return nil, ErrArtifactNotFound
	}
	return append([]byte(nil), data...), nil
}

func (m *MemoryBackend) Write(_ context.Context, name string, data []byte) error {
	if err := validateName(name); err != nil {
		return err
	}

	m.mutex.Lock()
	defer m.mutex.Unlock()

	m.artifacts[name] = append([]byte(nil), data...)
	return nil
}

