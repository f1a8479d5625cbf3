package wikidata

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"

	"github.com/papercomputeco/ndbprep/pkg/logger"
	"github.com/papercomputeco/ndbprep/pkg/utils"
)

// DefaultBatchSize is the number of entities sent per InsertMany call.
const DefaultBatchSize = 5000

// previewLen bounds how much of a rejected line is logged. Entity lines run
// to megabytes.
const previewLen = 120

// Inserter receives batches of indexed entities. storage.Driver satisfies it.
type Inserter interface {
	InsertMany(ctx context.Context, entities []*Entity) error
}

// LineSource yields dump lines until io.EOF. *DumpReader satisfies it.
type LineSource interface {
	Next() (string, error)
}

// Options configures an Indexer.
type Options struct {
	// BatchSize defaults to DefaultBatchSize when zero or negative.
	BatchSize int

	Logger *slog.Logger

	// OnBatch, when set, is called after every successful insert with the
	// running totals.
	OnBatch func(Result)
}

// Indexer streams a dump into an Inserter in fixed-size batches.
type Indexer struct {
	store     Inserter
	batchSize int
	logger    *slog.Logger
	onBatch   func(Result)
}

// NewIndexer creates an Indexer writing to store.
func NewIndexer(store Inserter, opts Options) *Indexer {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.Logger == nil {
		opts.Logger = logger.Nop()
	}

	return &Indexer{
		store:     store,
		batchSize: opts.BatchSize,
		logger:    opts.Logger,
		onBatch:   opts.OnBatch,
	}
}

// Run indexes every line of src. Lines that fail to decode are logged and
// skipped. A store error stops the run; entities of the failed batch are not
// counted as indexed.
func (ix *Indexer) Run(ctx context.Context, src LineSource) (*Result, error) {
	result := &Result{}
	batch := make([]*Entity, 0, ix.batchSize)

	flush := func() error {
		if len(batch) == 0 {
			return nil
		}
		if err := ix.store.InsertMany(ctx, batch); err != nil {
			return fmt.Errorf("inserting batch %d: %w", result.Batches+1, err)
		}

		result.Batches++
		result.Indexed += len(batch)
		ix.logger.Debug("inserted batch",
			"batch", result.Batches,
			"size", len(batch),
			"indexed", result.Indexed,
		)
		if ix.onBatch != nil {
			ix.onBatch(*result)
		}

		batch = make([]*Entity, 0, ix.batchSize)
		return nil
	}

	for {
		if err := ctx.Err(); err != nil {
			return result, err
		}

		line, err := src.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return result, err
		}
		result.Lines++

		entity, err := Index(line)
		if err != nil {
			decodeErr := &DecodeError{Line: result.Lines, Err: err}
			ix.logger.Warn("skipping line",
				"error", decodeErr,
				"preview", utils.Truncate(line, previewLen),
			)
			result.Skipped++
			continue
		}

		batch = append(batch, entity)
		if len(batch) >= ix.batchSize {
			if err := flush(); err != nil {
				return result, err
			}
		}
	}

	if err := flush(); err != nil {
		return result, err
	}

	return result, nil
}
