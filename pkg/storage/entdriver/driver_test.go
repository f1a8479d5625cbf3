package entdriver_test

import (
	"context"
	"database/sql"
	"path/filepath"

	"entgo.io/ent/dialect"
	entsql "entgo.io/ent/dialect/sql"
	_ "github.com/mattn/go-sqlite3"
	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/ndbprep/pkg/storage/entdriver"
	testutils "github.com/papercomputeco/ndbprep/pkg/utils/test"
	"github.com/papercomputeco/ndbprep/pkg/wikidata"
)

func openSQLite(path string) *sql.DB {
	db, err := sql.Open("sqlite3", path+"?_fk=1")
	Expect(err).NotTo(HaveOccurred())
	return db
}

func tableColumns(ctx context.Context, db *sql.DB, table string) []string {
	rows, err := db.QueryContext(ctx, "SELECT name FROM pragma_table_info(?) ORDER BY cid", table)
	Expect(err).NotTo(HaveOccurred())
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		Expect(rows.Scan(&name)).To(Succeed())
		names = append(names, name)
	}
	Expect(rows.Err()).NotTo(HaveOccurred())
	return names
}

var _ = Describe("EntDriver", func() {
	var (
		ctx context.Context
		db  *sql.DB
		ed  *entdriver.EntDriver
	)

	BeforeEach(func() {
		ctx = context.Background()
		db = openSQLite(filepath.Join(GinkgoT().TempDir(), "entities.db"))
		ed = entdriver.New(entsql.OpenDB(dialect.SQLite, db), "")
	})

	AfterEach(func() {
		Expect(ed.Close()).To(Succeed())
	})

	Describe("New", func() {
		It("defaults the table name", func() {
			Expect(ed.Table).To(Equal(entdriver.DefaultTable))
		})
	})

	Describe("Migrate", func() {
		It("creates the entity table with its six columns", func() {
			Expect(ed.Migrate(ctx)).To(Succeed())

			Expect(tableColumns(ctx, db, entdriver.DefaultTable)).To(Equal([]string{
				"wikidata_id",
				"english_name",
				"english_wiki",
				"property_types",
				"properties",
				"sitelinks",
			}))
		})

		It("keeps wikidata_id as the primary key", func() {
			Expect(ed.Migrate(ctx)).To(Succeed())

			var pk string
			err := db.QueryRowContext(ctx,
				"SELECT name FROM pragma_table_info(?) WHERE pk = 1", entdriver.DefaultTable,
			).Scan(&pk)
			Expect(err).NotTo(HaveOccurred())
			Expect(pk).To(Equal("wikidata_id"))
		})

		It("is a no-op on an existing table", func() {
			Expect(ed.Migrate(ctx)).To(Succeed())
			Expect(ed.InsertMany(ctx, []*wikidata.Entity{testutils.NewTestEntity("Q1", "Universe")})).To(Succeed())

			Expect(ed.Migrate(ctx)).To(Succeed())

			n, err := ed.Count(ctx)
			Expect(err).NotTo(HaveOccurred())
			Expect(n).To(Equal(1))
		})

		It("uses the configured table name", func() {
			custom := entdriver.New(entsql.OpenDB(dialect.SQLite, db), "entities")
			Expect(custom.Migrate(ctx)).To(Succeed())

			Expect(tableColumns(ctx, db, "entities")).To(HaveLen(6))
		})

		It("fails when sqlite foreign keys are disabled", func() {
			plain, err := sql.Open("sqlite3", filepath.Join(GinkgoT().TempDir(), "plain.db"))
			Expect(err).NotTo(HaveOccurred())
			noFK := entdriver.New(entsql.OpenDB(dialect.SQLite, plain), "")
			defer noFK.Close()

			Expect(noFK.Migrate(ctx)).To(MatchError(ContainSubstring("foreign_keys")))
		})
	})

	Describe("after Migrate", func() {
		BeforeEach(func() {
			Expect(ed.Migrate(ctx)).To(Succeed())
		})

		It("round-trips an entity through the JSON text columns", func() {
			in := testutils.NewTestEntity("Q42", "Douglas Adams")
			Expect(ed.InsertMany(ctx, []*wikidata.Entity{in})).To(Succeed())

			out, err := ed.Get(ctx, "Q42")
			Expect(err).NotTo(HaveOccurred())
			Expect(out.EnglishName).To(Equal("Douglas Adams"))
			Expect(out.PropertyTypes).To(Equal(in.PropertyTypes))
			Expect(out.Sitelinks).To(HaveLen(len(in.Sitelinks)))
		})
	})
})
