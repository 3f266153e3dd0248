package kv

import "sync"

// Memory is an in-process blob for tests and ephemeral runs.
type Memory struct {
	mu   sync.Mutex
	data []byte
}

// NewMemory creates an empty in-memory blob.
func NewMemory() *Memory { return &Memory{} }

// Load returns a copy of the stored bytes, or (nil, nil) before the
// first save.
func (m *Memory) Load() ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.data == nil {
		return nil, nil
	}
	return append([]byte(nil), m.data...), nil
}

// Save replaces the stored bytes.
func (m *Memory) Save(data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data = append([]byte(nil), data...)
	return nil
}

// Close is a no-op.
func (m *Memory) Close() error { return nil }
