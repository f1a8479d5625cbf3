// Package ndb reads neural database records and derives the labeled
// (state, action) training examples used by the sequential fact-selection
// ranker.
package ndb

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

// EOS is the end-of-sequence action. Selecting it means "stop reasoning".
const EOS = "<eos>"

const (
	// LabelNegative marks an action that does not continue the state.
	LabelNegative = 0

	// LabelPositive marks an action that correctly continues the state.
	LabelPositive = 1
)

// Database is one line of an NDB file: an ordered fact list and the queries
// asked against it. Facts are addressed by position.
type Database struct {
	Facts   []string `json:"facts"`
	Queries []Query  `json:"queries"`
}

// Query is a question posed at a given database height. Only facts with an
// index <= Height are visible to it.
type Query struct {
	Query  string      `json:"query"`
	Height int         `json:"height"`
	Facts  []FactGroup `json:"facts"`
}

// FactGroup holds one fact index (single hop) or two (two hop, order
// significant) that together justify part of the answer.
type FactGroup []int

// Example is a single labeled training triple.
type Example struct {
	State  []string
	Action string
	Label  int
}

// MarshalJSON encodes the example as [state, action, label]. Markers such as
// <eos> are written literally rather than as \u003c escapes.
func (e Example) MarshalJSON() ([]byte, error) {
	state := e.State
	if state == nil {
		state = []string{}
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if err := enc.Encode([]any{state, e.Action, e.Label}); err != nil {
		return nil, err
	}
	return bytes.TrimSuffix(buf.Bytes(), []byte("\n")), nil
}

// UnmarshalJSON decodes the [state, action, label] form.
func (e *Example) UnmarshalJSON(data []byte) error {
	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if len(raw) != 3 {
		return fmt.Errorf("example must have 3 elements, got %d", len(raw))
	}
	if err := json.Unmarshal(raw[0], &e.State); err != nil {
		return fmt.Errorf("decoding state: %w", err)
	}
	if err := json.Unmarshal(raw[1], &e.Action); err != nil {
		return fmt.Errorf("decoding action: %w", err)
	}
	if err := json.Unmarshal(raw[2], &e.Label); err != nil {
		return fmt.Errorf("decoding label: %w", err)
	}
	if e.Label != LabelNegative && e.Label != LabelPositive {
		return fmt.Errorf("label must be 0 or 1, got %d", e.Label)
	}
	return nil
}

// QueryError reports a query whose gold facts cannot be resolved against its
// context.
type QueryError struct {
	Database int
	Query    int
	Err      error
}

func (e *QueryError) Error() string {
	return fmt.Sprintf("database %d, query %d: %v", e.Database, e.Query, e.Err)
}

func (e *QueryError) Unwrap() error {
	return e.Err
}

var (
	// ErrNegativeHeight is returned for a query height below -1.
	ErrNegativeHeight = errors.New("negative height")

	// ErrGroupSize is returned for a fact group that is not 1 or 2 indices long.
	ErrGroupSize = errors.New("fact group must hold 1 or 2 indices")

	// ErrFactIndex is returned for a gold fact index outside the query context.
	ErrFactIndex = errors.New("fact index out of context")

	// ErrMissingField is returned when an NDB record lacks a required key.
	ErrMissingField = errors.New("missing field")
)
