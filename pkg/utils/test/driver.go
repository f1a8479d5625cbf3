package testutils

import (
	"context"
	"encoding/json"
	"errors"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/ndbprep/pkg/storage"
	"github.com/papercomputeco/ndbprep/pkg/wikidata"
)

// ItBehavesLikeADriver registers the specs every storage.Driver must pass.
// newDriver is called before each test and must return an empty store.
// keepsDuplicates is true for append-only stores.
func ItBehavesLikeADriver(newDriver func() storage.Driver, keepsDuplicates bool) {
	var (
		ctx    context.Context
		driver storage.Driver
	)

	BeforeEach(func() {
		ctx = context.Background()
		driver = newDriver()
		DeferCleanup(func() { _ = driver.Close() })
	})

	It("stores and retrieves an entity", func() {
		in := NewTestEntity("Q42", "Douglas Adams")
		Expect(driver.InsertMany(ctx, []*wikidata.Entity{in})).To(Succeed())

		out, err := driver.Get(ctx, "Q42")
		Expect(err).NotTo(HaveOccurred())

		want, err := json.Marshal(in)
		Expect(err).NotTo(HaveOccurred())
		got, err := json.Marshal(out)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(got)).To(MatchJSON(string(want)))
	})

	It("counts stored entities", func() {
		Expect(driver.InsertMany(ctx, []*wikidata.Entity{
			NewTestEntity("Q1", "Universe"),
			NewTestEntity("Q2", "Earth"),
		})).To(Succeed())
		Expect(driver.InsertMany(ctx, []*wikidata.Entity{NewTestEntity("Q3", "Life")})).To(Succeed())

		n, err := driver.Count(ctx)
		Expect(err).NotTo(HaveOccurred())
		Expect(n).To(Equal(3))
	})

	It("returns the latest record for a repeated id", func() {
		Expect(driver.InsertMany(ctx, []*wikidata.Entity{NewTestEntity("Q7", "old")})).To(Succeed())
		Expect(driver.InsertMany(ctx, []*wikidata.Entity{NewTestEntity("Q7", "new")})).To(Succeed())

		out, err := driver.Get(ctx, "Q7")
		Expect(err).NotTo(HaveOccurred())
		Expect(out.EnglishName).To(Equal("new"))

		n, err := driver.Count(ctx)
		Expect(err).NotTo(HaveOccurred())
		if keepsDuplicates {
			Expect(n).To(Equal(2))
		} else {
			Expect(n).To(Equal(1))
		}
	})

	It("accepts a repeated id within one batch", func() {
		Expect(driver.InsertMany(ctx, []*wikidata.Entity{
			NewTestEntity("Q8", "first"),
			NewTestEntity("Q8", "second"),
		})).To(Succeed())

		out, err := driver.Get(ctx, "Q8")
		Expect(err).NotTo(HaveOccurred())
		Expect(out.EnglishName).To(Equal("second"))
	})

	It("returns NotFoundError for an unknown id", func() {
		_, err := driver.Get(ctx, "Q404")

		var notFound storage.NotFoundError
		Expect(errors.As(err, &notFound)).To(BeTrue())
		Expect(notFound.ID).To(Equal("Q404"))
	})

	It("rejects an empty batch", func() {
		Expect(driver.InsertMany(ctx, nil)).To(MatchError(storage.ErrEmptyBatch))
	})

	It("rejects nil entities", func() {
		err := driver.InsertMany(ctx, []*wikidata.Entity{nil})
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("nil"))
	})
}
