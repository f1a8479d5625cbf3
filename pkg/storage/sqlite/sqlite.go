// Package sqlite provides a SQLite-backed storage driver using ent's SQL layer.
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"

	"github.com/papercomputeco/ndbprep/pkg/storage/entdriver"
)

// Driver implements storage.Driver using SQLite via the ent driver.
type Driver struct {
	*entdriver.EntDriver
}

// NewDriver opens (creating if needed) the SQLite database at dbPath and
// ensures the entity table exists. dbPath can be ":memory:", which opens a
// private in-memory database.
func NewDriver(ctx context.Context, dbPath, table string) (*Driver, error) {
	// Open the database using the github.com/mattn/go-sqlite3 driver (registered as "sqlite3")
	db, err := sql.Open("sqlite3", dsn(dbPath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Bulk loads are write heavy; WAL keeps readers unblocked.
	if _, err := db.ExecContext(ctx, "PRAGMA journal_mode = WAL"); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to set journal mode: %w", err)
	}

	ed := entdriver.New(entsql.OpenDB(dialect.SQLite, db), table)
	if err := ed.Migrate(ctx); err != nil {
		ed.Close()
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &Driver{EntDriver: ed}, nil
}

// dsn enables foreign keys on every pooled connection, which ent's migrator
// requires. Each ":memory:" driver gets its own named database shared by the
// pool's connections.
func dsn(dbPath string) string {
	if dbPath == ":memory:" {
		return fmt.Sprintf("file:ndbprep-%s?mode=memory&cache=shared&_fk=1", uuid.NewString())
	}
	if strings.Contains(dbPath, "?") {
		return dbPath + "&_fk=1"
	}
	return dbPath + "?_fk=1"
}
