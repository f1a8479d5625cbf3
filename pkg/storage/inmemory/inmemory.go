// Package inmemory provides a map-backed storage driver for tests and dry runs.
package inmemory

import (
	"context"
	"sync"

	"github.com/papercomputeco/ndbprep/pkg/storage"
	"github.com/papercomputeco/ndbprep/pkg/wikidata"
)

// Driver implements storage.Driver in memory. Like a document collection it
// keeps every inserted record, duplicates included.
type Driver struct {
	// mu guards records and latest
	mu sync.RWMutex

	records []*wikidata.Entity

	// latest maps a wikidata id to its most recent position in records
	latest map[string]int
}

// NewDriver creates a new in-memory driver.
func NewDriver() *Driver {
	return &Driver{
		latest: make(map[string]int),
	}
}

func (d *Driver) InsertMany(_ context.Context, entities []*wikidata.Entity) error {
	if err := storage.CheckBatch(entities); err != nil {
		return err
	}

	d.mu.Lock()
	defer d.mu.Unlock()

	for _, e := range entities {
		d.latest[e.WikidataID] = len(d.records)
		d.records = append(d.records, e)
	}
	return nil
}

func (d *Driver) Get(_ context.Context, wikidataID string) (*wikidata.Entity, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	i, ok := d.latest[wikidataID]
	if !ok {
		return nil, storage.NotFoundError{ID: wikidataID}
	}
	return d.records[i], nil
}

func (d *Driver) Count(_ context.Context) (int, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	return len(d.records), nil
}

// Records returns every stored entity in insertion order.
func (d *Driver) Records() []*wikidata.Entity {
	d.mu.RLock()
	defer d.mu.RUnlock()

	out := make([]*wikidata.Entity, len(d.records))
	copy(out, d.records)
	return out
}

func (d *Driver) Close() error {
	return nil
}
