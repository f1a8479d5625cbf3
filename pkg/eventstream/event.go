package eventstream

import (
	"time"

	"github.com/google/uuid"

	"github.com/papercomputeco/ndbprep/pkg/ndb"
)

const (
	// SchemaVersionV1 is the first version of the event payload schema.
	SchemaVersionV1 = 1

	// EventTypeExampleGenerated is emitted for every generated training example.
	EventTypeExampleGenerated = "ndb.example.generated"
)

// ExampleEvent is a transport-neutral payload for one generated example.
type ExampleEvent struct {
	SchemaVersion int         `json:"schema_version"`
	EventType     string      `json:"event_type"`
	EventID       string      `json:"event_id"`
	RunID         string      `json:"run_id"`
	Sequence      int         `json:"sequence"`
	EmittedAt     time.Time   `json:"emitted_at"`
	Source        EventSource `json:"source"`
	Example       ndb.Example `json:"example"`
}

// EventSource identifies the input the example was generated from.
type EventSource struct {
	Input string `json:"input"`
}

// NewRunID returns a fresh identifier for a generation run.
func NewRunID() string {
	return uuid.NewString()
}

// NewExampleEvents wraps examples in events sharing runID. Sequence numbers
// start at 1 and follow the order of examples.
func NewExampleEvents(runID, input string, examples []ndb.Example) []*ExampleEvent {
	return NewExampleEventsAt(runID, input, 1, examples)
}

// NewExampleEventsAt is NewExampleEvents with the first sequence number set
// to first, for runs published in chunks.
func NewExampleEventsAt(runID, input string, first int, examples []ndb.Example) []*ExampleEvent {
	now := time.Now().UTC()
	events := make([]*ExampleEvent, 0, len(examples))
	for i, ex := range examples {
		events = append(events, &ExampleEvent{
			SchemaVersion: SchemaVersionV1,
			EventType:     EventTypeExampleGenerated,
			EventID:       uuid.NewString(),
			RunID:         runID,
			Sequence:      first + i,
			EmittedAt:     now,
			Source:        EventSource{Input: input},
			Example:       ex,
		})
	}
	return events
}
