package notify

import (
	"context"
	"fmt"
	"sync"
)

// MockAdapter is an in-memory Adapter for tests. It records every event
// sent and can be told to fail.
type MockAdapter struct {
	mu        sync.Mutex
	connected bool
	closed    bool
	sent      []Event

	// ConnectErr and SendErr, when set, are returned by the matching calls.
	ConnectErr error
	SendErr    error
}

// NewMockAdapter creates a MockAdapter.
func NewMockAdapter() *MockAdapter {
	return &MockAdapter{}
}

// Connect marks the adapter connected.
func (m *MockAdapter) Connect(ctx context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.ConnectErr != nil {
		return m.ConnectErr
	}
	if m.closed {
		return fmt.Errorf("mock: adapter already closed")
	}
	m.connected = true
	return nil
}

// Send records the event.
func (m *MockAdapter) Send(ctx context.Context, evt Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SendErr != nil {
		return m.SendErr
	}
	if !m.connected {
		return fmt.Errorf("mock: not connected")
	}
	m.sent = append(m.sent, evt)
	return nil
}

// Close marks the adapter closed.
func (m *MockAdapter) Close() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.closed = true
	m.connected = false
	return nil
}

// SentCount returns the number of events sent.
func (m *MockAdapter) SentCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.sent)
}

// LastSent returns the most recently sent event, or false if none.
func (m *MockAdapter) LastSent() (Event, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.sent) == 0 {
		return Event{}, false
	}
	return m.sent[len(m.sent)-1], true
}

// AllSent returns a copy of every sent event.
func (m *MockAdapter) AllSent() []Event {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Event, len(m.sent))
	copy(out, m.sent)
	return out
}
