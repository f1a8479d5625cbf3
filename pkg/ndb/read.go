package ndb

import (
	"bufio"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"os"
)

// maxLineSize bounds a single database line. Large databases serialize
// thousands of facts on one line.
const maxLineSize = 64 * 1024 * 1024

// ReadNDB reads a line-delimited NDB file into memory.
func ReadNDB(path string) ([]Database, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	dbs, err := DecodeNDB(f)
	if err != nil {
		return nil, fmt.Errorf("reading %s: %w", path, err)
	}
	return dbs, nil
}

// DecodeNDB decodes one Database per non-blank line of r. The first
// malformed line aborts decoding, as does a record missing any of facts,
// queries, or a query's query, height or facts.
func DecodeNDB(r io.Reader) ([]Database, error) {
	var dbs []Database

	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 1024*1024), maxLineSize)

	line := 0
	for scanner.Scan() {
		line++
		raw := bytes.TrimSpace(scanner.Bytes())
		if len(raw) == 0 {
			continue
		}

		db, err := decodeDatabase(raw)
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		dbs = append(dbs, db)
	}

	if err := scanner.Err(); err != nil {
		return nil, err
	}

	return dbs, nil
}

// rawDatabase mirrors Database with pointer fields so absent keys can be told
// apart from empty values.
type rawDatabase struct {
	Facts   *[]string   `json:"facts"`
	Queries *[]rawQuery `json:"queries"`
}

type rawQuery struct {
	Query  *string      `json:"query"`
	Height *int         `json:"height"`
	Facts  *[]FactGroup `json:"facts"`
}

func decodeDatabase(raw []byte) (Database, error) {
	var rdb rawDatabase
	if err := json.Unmarshal(raw, &rdb); err != nil {
		return Database{}, err
	}
	if rdb.Facts == nil {
		return Database{}, missingField("facts")
	}
	if rdb.Queries == nil {
		return Database{}, missingField("queries")
	}

	db := Database{
		Facts:   *rdb.Facts,
		Queries: make([]Query, 0, len(*rdb.Queries)),
	}
	for i, rq := range *rdb.Queries {
		switch {
		case rq.Query == nil:
			return Database{}, missingField(fmt.Sprintf("queries[%d].query", i))
		case rq.Height == nil:
			return Database{}, missingField(fmt.Sprintf("queries[%d].height", i))
		case rq.Facts == nil:
			return Database{}, missingField(fmt.Sprintf("queries[%d].facts", i))
		}
		db.Queries = append(db.Queries, Query{
			Query:  *rq.Query,
			Height: *rq.Height,
			Facts:  *rq.Facts,
		})
	}
	return db, nil
}

func missingField(path string) error {
	return fmt.Errorf("%w: %s", ErrMissingField, path)
}
