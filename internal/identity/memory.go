package identity

import (
	"context"
	"sync"
)

// Memory is an in-process Store used by tests and by deployments without a
// backend API key. Records are keyed by email.
type Memory struct {
	mu      sync.Mutex
	records map[string]Attributes

	// FailNext makes the next call return this error, for exercising the
	// log-and-continue path in the sync handlers.
	FailNext error
}

// NewMemory creates an empty in-memory identity store
func NewMemory() *Memory {
	return &Memory{records: make(map[string]Attributes)}
}

// Seed inserts a record directly, bypassing the Store interface.
func (m *Memory) Seed(email string, attrs Attributes) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[email] = attrs
}

// Get returns the record for email and whether it exists.
func (m *Memory) Get(email string) (Attributes, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	attrs, ok := m.records[email]
	return attrs, ok
}

func (m *Memory) UpdateByEmail(_ context.Context, email string, attrs Attributes) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.takeFailure(); err != nil {
		return err
	}

	if _, ok := m.records[email]; !ok {
		return nil
	}
	m.records[email] = attrs
	return nil
}

func (m *Memory) DeleteByEmail(_ context.Context, email string) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if err := m.takeFailure(); err != nil {
		return err
	}

	delete(m.records, email)
	return nil
}

// takeFailure consumes a pending injected failure. Caller holds mu.
func (m *Memory) takeFailure() error {
	err := m.FailNext
	m.FailNext = nil
	return err
}
