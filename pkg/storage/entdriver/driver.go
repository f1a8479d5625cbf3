// Package entdriver implements storage.Driver over any SQL database ent
// supports. Statements are built with ent's dialect-aware SQL builder and the
// table is created by ent's schema migrator, so the same code serves SQLite
// and PostgreSQL.
package entdriver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"

	entsql "entgo.io/ent/dialect/sql"
	"entgo.io/ent/dialect/sql/schema"
	"entgo.io/ent/schema/field"

	"github.com/papercomputeco/ndbprep/pkg/storage"
	"github.com/papercomputeco/ndbprep/pkg/wikidata"
)

// DefaultTable holds the indexed entities.
const DefaultTable = "wikidata"

// insertChunk bounds the rows per INSERT statement so a batch stays under the
// bind parameter limits of SQLite and PostgreSQL.
const insertChunk = 500

const idColumn = "wikidata_id"

var columns = []string{
	idColumn,
	"english_name",
	"english_wiki",
	"property_types",
	"properties",
	"sitelinks",
}

// EntDriver provides storage operations using an ent SQL driver.
// It is database-agnostic and can be embedded by specific drivers.
type EntDriver struct {
	Driver *entsql.Driver
	Table  string
}

// New wraps drv. An empty table uses DefaultTable.
func New(drv *entsql.Driver, table string) *EntDriver {
	if table == "" {
		table = DefaultTable
	}
	return &EntDriver{Driver: drv, Table: table}
}

func (ed *EntDriver) builder() *entsql.DialectBuilder {
	return entsql.Dialect(ed.Driver.Dialect())
}

// Migrate creates the entity table if it does not exist. List and map fields
// are stored as JSON text.
func (ed *EntDriver) Migrate(ctx context.Context) error {
	m, err := schema.NewMigrate(ed.Driver, schema.WithForeignKeys(false))
	if err != nil {
		return fmt.Errorf("preparing migration: %w", err)
	}
	if err := m.Create(ctx, ed.schemaTable()); err != nil {
		return fmt.Errorf("creating table %s: %w", ed.Table, err)
	}
	return nil
}

func (ed *EntDriver) schemaTable() *schema.Table {
	cols := make([]*schema.Column, 0, len(columns))
	for _, name := range columns {
		cols = append(cols, &schema.Column{Name: name, Type: field.TypeString, Size: math.MaxInt32})
	}
	return &schema.Table{
		Name:       ed.Table,
		Columns:    cols,
		PrimaryKey: []*schema.Column{cols[0]},
	}
}

// InsertMany upserts the batch in one transaction. The id is the primary key,
// so a later record replaces an earlier one with the same id.
func (ed *EntDriver) InsertMany(ctx context.Context, entities []*wikidata.Entity) error {
	if err := storage.CheckBatch(entities); err != nil {
		return err
	}

	rows, err := encodeRows(lastPerID(entities))
	if err != nil {
		return err
	}

	tx, err := ed.Driver.Tx(ctx)
	if err != nil {
		return fmt.Errorf("starting transaction: %w", err)
	}

	for start := 0; start < len(rows); start += insertChunk {
		end := min(start+insertChunk, len(rows))

		insert := ed.builder().Insert(ed.Table).Columns(columns...)
		for _, row := range rows[start:end] {
			insert.Values(row...)
		}
		insert.OnConflict(
			entsql.ConflictColumns(idColumn),
			entsql.ResolveWithNewValues(),
		)

		query, args := insert.Query()
		if err := tx.Exec(ctx, query, args, nil); err != nil {
			return errors.Join(fmt.Errorf("inserting entities: %w", err), tx.Rollback())
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing entities: %w", err)
	}
	return nil
}

// Get retrieves an entity by its wikidata id.
func (ed *EntDriver) Get(ctx context.Context, wikidataID string) (*wikidata.Entity, error) {
	b := ed.builder()
	query, args := b.Select(columns...).
		From(b.Table(ed.Table)).
		Where(entsql.EQ(idColumn, wikidataID)).
		Limit(1).
		Query()

	rows := &entsql.Rows{}
	if err := ed.Driver.Query(ctx, query, args, rows); err != nil {
		return nil, fmt.Errorf("querying entity: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		if err := rows.Err(); err != nil {
			return nil, fmt.Errorf("querying entity: %w", err)
		}
		return nil, storage.NotFoundError{ID: wikidataID}
	}

	var (
		e                               wikidata.Entity
		propertyTypes, props, sitelinks string
	)
	if err := rows.Scan(&e.WikidataID, &e.EnglishName, &e.EnglishWiki, &propertyTypes, &props, &sitelinks); err != nil {
		return nil, fmt.Errorf("scanning entity: %w", err)
	}

	for _, field := range []struct {
		name string
		raw  string
		dst  any
	}{
		{"property_types", propertyTypes, &e.PropertyTypes},
		{"properties", props, &e.Properties},
		{"sitelinks", sitelinks, &e.Sitelinks},
	} {
		if err := json.Unmarshal([]byte(field.raw), field.dst); err != nil {
			return nil, fmt.Errorf("decoding %s of %s: %w", field.name, wikidataID, err)
		}
	}

	return &e, nil
}

// Count returns the number of stored entities.
func (ed *EntDriver) Count(ctx context.Context) (int, error) {
	b := ed.builder()
	query, args := b.Select(entsql.Count("*")).From(b.Table(ed.Table)).Query()

	rows := &entsql.Rows{}
	if err := ed.Driver.Query(ctx, query, args, rows); err != nil {
		return 0, fmt.Errorf("counting entities: %w", err)
	}
	defer rows.Close()

	n, err := entsql.ScanInt(rows)
	if err != nil {
		return 0, fmt.Errorf("counting entities: %w", err)
	}
	return n, nil
}

// Close closes the underlying database.
func (ed *EntDriver) Close() error {
	return ed.Driver.Close()
}

// lastPerID keeps the final occurrence of each id. PostgreSQL rejects an
// upsert that touches the same row twice in one statement.
func lastPerID(entities []*wikidata.Entity) []*wikidata.Entity {
	last := make(map[string]int, len(entities))
	for i, e := range entities {
		last[e.WikidataID] = i
	}

	out := make([]*wikidata.Entity, 0, len(last))
	for i, e := range entities {
		if last[e.WikidataID] == i {
			out = append(out, e)
		}
	}
	return out
}

func encodeRows(entities []*wikidata.Entity) ([][]any, error) {
	rows := make([][]any, 0, len(entities))
	for _, e := range entities {
		propertyTypes, err := json.Marshal(e.PropertyTypes)
		if err != nil {
			return nil, fmt.Errorf("encoding property_types of %s: %w", e.WikidataID, err)
		}
		props, err := json.Marshal(e.Properties)
		if err != nil {
			return nil, fmt.Errorf("encoding properties of %s: %w", e.WikidataID, err)
		}
		sitelinks, err := json.Marshal(e.Sitelinks)
		if err != nil {
			return nil, fmt.Errorf("encoding sitelinks of %s: %w", e.WikidataID, err)
		}

		rows = append(rows, []any{
			e.WikidataID,
			e.EnglishName,
			e.EnglishWiki,
			string(propertyTypes),
			string(props),
			string(sitelinks),
		})
	}
	return rows, nil
}
