// Package storage defines the store the wikidata indexer writes entities to.
package storage

import (
	"context"

	"github.com/papercomputeco/ndbprep/pkg/wikidata"
)

// Driver persists indexed entities. Implementations live in the sqlite,
// postgres, mongo and inmemory subpackages.
type Driver interface {
	// InsertMany stores a batch of entities. An empty batch returns
	// ErrEmptyBatch and stores nothing.
	InsertMany(ctx context.Context, entities []*wikidata.Entity) error

	// Get returns the most recently inserted entity with the given id.
	Get(ctx context.Context, wikidataID string) (*wikidata.Entity, error)

	// Count returns the number of stored records.
	Count(ctx context.Context) (int, error)

	// Close closes the store and releases any resources.
	Close() error
}
