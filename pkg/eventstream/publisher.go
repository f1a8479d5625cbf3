package eventstream

import "context"

// Publisher publishes example events to an event stream backend.
type Publisher interface {
	Publish(ctx context.Context, events []*ExampleEvent) error
	Close() error
}
