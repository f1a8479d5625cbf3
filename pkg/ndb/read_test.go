package ndb_test

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/ndbprep/pkg/ndb"
)

var _ = Describe("ReadNDB", func() {
	It("reads one database per line and ignores unknown fields", func() {
		dir := GinkgoT().TempDir()
		path := filepath.Join(dir, "train.jsonl")
		content := `{"facts": ["A", "B", "C"], "queries": [{"query": "Q", "height": 2, "facts": [[0], [1, 2]], "answer": ["x"]}]}

{"facts": ["D"], "queries": [], "metadata": {"seed": 1}}
`
		Expect(os.WriteFile(path, []byte(content), 0o644)).To(Succeed())

		dbs, err := ndb.ReadNDB(path)
		Expect(err).NotTo(HaveOccurred())
		Expect(dbs).To(HaveLen(2))
		Expect(dbs[0].Facts).To(Equal([]string{"A", "B", "C"}))
		Expect(dbs[0].Queries).To(HaveLen(1))
		Expect(dbs[0].Queries[0].Height).To(Equal(2))
		Expect(dbs[0].Queries[0].Facts).To(Equal([]ndb.FactGroup{{0}, {1, 2}}))
		Expect(dbs[1].Facts).To(Equal([]string{"D"}))
	})

	It("fails on a missing file", func() {
		_, err := ndb.ReadNDB(filepath.Join(GinkgoT().TempDir(), "missing.jsonl"))
		Expect(err).To(HaveOccurred())
	})

	It("reports the line of a malformed record", func() {
		_, err := ndb.DecodeNDB(strings.NewReader("{\"facts\": [], \"queries\": []}\n{not json}\n"))
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("line 2"))
	})

	DescribeTable("rejects records missing a required key",
		func(record, field string) {
			_, err := ndb.DecodeNDB(strings.NewReader("{\"facts\": [], \"queries\": []}\n" + record + "\n"))
			Expect(err).To(MatchError(ndb.ErrMissingField))
			Expect(err.Error()).To(ContainSubstring("line 2"))
			Expect(err.Error()).To(ContainSubstring(field))
		},
		Entry("facts", `{"queries": []}`, "facts"),
		Entry("misspelled facts", `{"fact": ["A"], "queries": [{"query": "Q", "height": 0, "facts": []}]}`, "facts"),
		Entry("null facts", `{"facts": null, "queries": []}`, "facts"),
		Entry("queries", `{"facts": ["A"]}`, "queries"),
		Entry("query text", `{"facts": ["A"], "queries": [{"height": 0, "facts": [[0]]}]}`, "queries[0].query"),
		Entry("height", `{"facts": ["A", "B"], "queries": [{"query": "Q", "facts": [[0]]}]}`, "queries[0].height"),
		Entry("gold facts", `{"facts": ["A"], "queries": [{"query": "Q", "height": 0}, {"query": "R", "height": 0, "facts": []}]}`, "queries[0].facts"),
		Entry("second query", `{"facts": ["A"], "queries": [{"query": "Q", "height": 0, "facts": []}, {"query": "R", "facts": []}]}`, "queries[1].height"),
	)

	It("keeps empty lists and a zero height", func() {
		dbs, err := ndb.DecodeNDB(strings.NewReader(`{"facts": [], "queries": [{"query": "", "height": 0, "facts": []}]}`))
		Expect(err).NotTo(HaveOccurred())
		Expect(dbs).To(HaveLen(1))
		Expect(dbs[0].Facts).To(BeEmpty())
		Expect(dbs[0].Queries).To(Equal([]ndb.Query{{Query: "", Height: 0, Facts: []ndb.FactGroup{}}}))
	})

	It("rejects a fact index that is not a number", func() {
		_, err := ndb.DecodeNDB(strings.NewReader(`{"facts": ["A"], "queries": [{"query": "Q", "height": 0, "facts": [["0"]]}]}`))
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("WriteJSONL", func() {
	It("writes each example as a [state, action, label] array", func() {
		var buf bytes.Buffer
		err := ndb.WriteJSONL(&buf, []ndb.Example{
			{State: []string{"Q"}, Action: ndb.EOS, Label: 0},
			{State: []string{"Q", "A & B"}, Action: "C", Label: 1},
		})
		Expect(err).NotTo(HaveOccurred())

		lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
		Expect(lines).To(Equal([]string{
			`[["Q"],"<eos>",0]`,
			`[["Q","A & B"],"C",1]`,
		}))
	})

	It("does not escape markers when marshaled directly", func() {
		b, err := ndb.Example{State: []string{"Q", "A & B"}, Action: ndb.EOS, Label: 1}.MarshalJSON()
		Expect(err).NotTo(HaveOccurred())
		Expect(string(b)).To(Equal(`[["Q","A & B"],"<eos>",1]`))
	})

	It("decodes back into examples", func() {
		var got ndb.Example
		Expect(json.Unmarshal([]byte(`[["Q","A"],"B",1]`), &got)).To(Succeed())
		Expect(got).To(Equal(ndb.Example{State: []string{"Q", "A"}, Action: "B", Label: 1}))
	})

	It("rejects malformed triples", func() {
		var got ndb.Example
		Expect(json.Unmarshal([]byte(`[["Q"],"B"]`), &got)).NotTo(Succeed())
		Expect(json.Unmarshal([]byte(`[["Q"],"B",2]`), &got)).NotTo(Succeed())
	})
})

var _ = Describe("Tally", func() {
	It("counts labels and <eos> actions", func() {
		examples, err := ndb.CreateDataset([]ndb.Database{{
			Facts:   []string{"A", "B", "C"},
			Queries: []ndb.Query{{Query: "Q", Height: 2, Facts: []ndb.FactGroup{{0}, {1, 2}}}},
		}})
		Expect(err).NotTo(HaveOccurred())

		stats := ndb.Tally(examples)
		Expect(stats.Examples).To(Equal(18))
		Expect(stats.Positives).To(Equal(3 + 1 + 3))
		Expect(stats.Negatives).To(Equal(11))
		Expect(stats.EOS).To(Equal(3))
		Expect(stats.Summary()).To(ContainSubstring("18 examples"))
	})
})
