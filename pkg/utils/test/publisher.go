package testutils

import (
	"context"
	"errors"
	"sync"

	"github.com/papercomputeco/ndbprep/pkg/eventstream"
)

// MockPublisher records published events.
type MockPublisher struct {
	mu     sync.Mutex
	Events []*eventstream.ExampleEvent
	Closed bool

	// Batches holds the size of every Publish call in order.
	Batches []int

	// FailPublish causes Publish to return an error.
	FailPublish bool
}

func NewMockPublisher() *MockPublisher {
	return &MockPublisher{}
}

func (m *MockPublisher) Publish(_ context.Context, events []*eventstream.ExampleEvent) error {
	if m.FailPublish {
		return errors.New("mock publish failure")
	}

	m.mu.Lock()
	defer m.mu.Unlock()

	m.Events = append(m.Events, events...)
	m.Batches = append(m.Batches, len(events))
	return nil
}

func (m *MockPublisher) Close() error {
	m.Closed = true
	return nil
}
