package storage

import (
	"errors"
	"fmt"

	"github.com/papercomputeco/ndbprep/pkg/wikidata"
)

// ErrEmptyBatch is returned by InsertMany when called with no entities.
var ErrEmptyBatch = errors.New("cannot insert an empty batch")

// NotFoundError is returned when no entity with the id exists in the store.
type NotFoundError struct {
	ID string
}

func (e NotFoundError) Error() string {
	if e.ID == "" {
		return "entity not found"
	}

	return "entity not found: " + e.ID
}

// CheckBatch validates a batch before it is written.
func CheckBatch(entities []*wikidata.Entity) error {
	if len(entities) == 0 {
		return ErrEmptyBatch
	}
	for i, e := range entities {
		if e == nil {
			return fmt.Errorf("entity %d in batch is nil", i)
		}
	}
	return nil
}
