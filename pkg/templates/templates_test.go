package templates_test

import (
	"encoding/csv"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/ndbprep/pkg/templates"
)

// sheet renders a template CSV with the banner line, header and rows.
func sheet(rows ...map[string]string) string {
	cols := templates.RequiredColumns()

	var b strings.Builder
	b.WriteString("Relation templates, edit in the shared sheet\n")

	w := csv.NewWriter(&b)
	Expect(w.Write(cols)).To(Succeed())
	for _, r := range rows {
		vals := make([]string, len(cols))
		for i, c := range cols {
			vals[i] = r[c]
		}
		Expect(w.Write(vals)).To(Succeed())
	}
	w.Flush()
	Expect(w.Error()).NotTo(HaveOccurred())

	return b.String()
}

func writeSheet(dir, name, content string) string {
	path := filepath.Join(dir, name)
	Expect(os.WriteFile(path, []byte(content), 0o644)).To(Succeed())
	return path
}

var _ = Describe("SwapSubjectObject", func() {
	It("exchanges the placeholders without collisions", func() {
		Expect(templates.SwapSubjectObject("$s owns $o")).To(Equal("$o owns $s"))
		Expect(templates.SwapSubjectObject("$s and $s met $o")).To(Equal("$o and $o met $s"))
		Expect(templates.SwapSubjectObject("$o")).To(Equal("$s"))
	})

	It("is its own inverse", func() {
		in := "Is $s married to $o?"
		Expect(templates.SwapSubjectObject(templates.SwapSubjectObject(in))).To(Equal(in))
	})

	It("leaves text without placeholders alone", func() {
		Expect(templates.SwapSubjectObject("no markers here")).To(Equal("no markers here"))
	})
})

var _ = Describe("ReadCSV", func() {
	It("sorts rows into categories", func() {
		rel, err := templates.ReadCSV(strings.NewReader(sheet(
			map[string]string{
				"fact":             "$s borders $o",
				"bool":             "Does $s border $o?",
				"bool_answer":      "TRUE",
				"set":              "What borders $s?",
				"set_projection":   "$o",
				"count":            "How many countries border $s?",
				"count_projection": "$o",
			},
			map[string]string{
				"min":               "Which neighbour of $s is smallest?",
				"min_projection":    "$o",
				"max":               "Which neighbour of $s is largest?",
				"max_projection":    "$o",
				"argmin":            "Fewest neighbours?",
				"argmin_projection": "$s",
				"argmax":            "Most neighbours?",
				"argmax_projection": "$s",
			},
		)))
		Expect(err).NotTo(HaveOccurred())

		Expect(rel.Subject).To(Equal("$s"))
		Expect(rel.Object).To(Equal("$o"))
		Expect(rel.Rules).To(HaveLen(len(templates.Categories)))
		Expect(rel.Rules[templates.CategoryFact].Has(templates.Bare("$s borders $o"))).To(BeTrue())
		Expect(rel.Rules[templates.CategoryBool].Has(templates.Paired("Does $s border $o?", "TRUE"))).To(BeTrue())
		Expect(rel.Rules[templates.CategorySet].Has(templates.Paired("What borders $s?", "$o"))).To(BeTrue())
		Expect(rel.Rules[templates.CategoryArgmax].Has(templates.Paired("Most neighbours?", "$s"))).To(BeTrue())
	})

	It("keeps bool templates only for truthy answers", func() {
		rows := []map[string]string{}
		for _, answer := range []string{"true", "T", "1", "Yes", "y", "false", "no", ""} {
			rows = append(rows, map[string]string{"bool": "Q " + answer, "bool_answer": answer})
		}

		rel, err := templates.ReadCSV(strings.NewReader(sheet(rows...)))
		Expect(err).NotTo(HaveOccurred())
		Expect(rel.Rules[templates.CategoryBool]).To(HaveLen(5))
		Expect(rel.Rules[templates.CategoryBool].Has(templates.Paired("Q false", "false"))).To(BeFalse())
	})

	It("deduplicates identical rules regardless of row order", func() {
		a := map[string]string{"fact": "$s is next to $o", "set": "Neighbours of $s?", "set_projection": "$o"}
		b := map[string]string{"fact": "$o is next to $s"}

		first, err := templates.ReadCSV(strings.NewReader(sheet(a, b, a)))
		Expect(err).NotTo(HaveOccurred())
		second, err := templates.ReadCSV(strings.NewReader(sheet(b, a, b)))
		Expect(err).NotTo(HaveOccurred())

		Expect(first.Rules[templates.CategoryFact]).To(HaveLen(2))
		Expect(first.Rules[templates.CategorySet]).To(HaveLen(1))
		Expect(first.Rules).To(Equal(second.Rules))
	})

	It("omits empty categories and markers for a sheet without rows", func() {
		rel, err := templates.ReadCSV(strings.NewReader(sheet()))
		Expect(err).NotTo(HaveOccurred())
		Expect(rel.Rules).To(BeEmpty())
		Expect(rel.Subject).To(BeEmpty())

		data, err := json.Marshal(rel)
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).To(Equal("{}"))
	})

	It("fails when a column is missing", func() {
		_, err := templates.ReadCSV(strings.NewReader("banner\nfact,bool\nx,y\n"))

		var colErr templates.ColumnError
		Expect(errors.As(err, &colErr)).To(BeTrue())
		Expect(colErr.Column).To(Equal("bool_answer"))
	})

	It("fails on a ragged row", func() {
		content := sheet() + "only,three,fields\n"
		_, err := templates.ReadCSV(strings.NewReader(content))
		Expect(err).To(HaveOccurred())
	})
})

var _ = Describe("Relation.Symmetric", func() {
	It("unions swapped variants into each category", func() {
		rel := templates.NewRelation()
		rel.Subject, rel.Object = "$s", "$o"
		rel.Add(templates.CategoryFact, templates.Bare("$s is married to $o"))
		rel.Add(templates.CategorySet, templates.Paired("$s owns $o", "$s"))
		rel.Add(templates.CategoryCount, templates.Paired("How many spouses?", "count"))

		sym := rel.Symmetric()

		Expect(sym.Rules[templates.CategoryFact].Sorted()).To(ConsistOf(
			templates.Bare("$s is married to $o"),
			templates.Bare("$o is married to $s"),
		))
		Expect(sym.Rules[templates.CategorySet].Sorted()).To(ConsistOf(
			templates.Paired("$s owns $o", "$s"),
			templates.Paired("$o owns $s", "$o"),
		))
		Expect(sym.Rules[templates.CategoryCount].Sorted()).To(ConsistOf(
			templates.Paired("How many spouses?", "count"),
		))
		Expect(sym.Subject).To(Equal("$s"))
		Expect(sym.Object).To(Equal("$o"))
	})

	It("leaves no temporary tokens behind", func() {
		rel := templates.NewRelation()
		rel.Add(templates.CategorySet, templates.Paired("$s owns $o", "$s"))

		data, err := json.Marshal(rel.Symmetric())
		Expect(err).NotTo(HaveOccurred())
		Expect(string(data)).NotTo(ContainSubstring("tmp"))
	})

	It("does not modify the receiver", func() {
		rel := templates.NewRelation()
		rel.Add(templates.CategoryFact, templates.Bare("$s borders $o"))

		_ = rel.Symmetric()
		Expect(rel.Rules[templates.CategoryFact]).To(HaveLen(1))
	})
})

var _ = Describe("RelationID", func() {
	It("extracts the property id from a file name", func() {
		Expect(templates.RelationID("configs/for_v2.4/P47.csv")).To(Equal("P47"))
		Expect(templates.RelationID("templates - P1082 population.csv")).To(Equal("P1082"))
		Expect(templates.RelationID("readme.csv")).To(BeEmpty())
	})
})

var _ = Describe("Compiler", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	It("compiles every sheet and swaps only symmetric relations", func() {
		writeSheet(dir, "P47.csv", sheet(map[string]string{"fact": "$s borders $o"}))
		writeSheet(dir, "P19.csv", sheet(map[string]string{"fact": "$s was born in $o"}))
		writeSheet(dir, "notes.csv", sheet(map[string]string{"fact": "ignored"}))

		cfg, err := templates.NewCompiler(templates.Options{}).CompileDir(dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg).To(HaveLen(2))
		Expect(cfg["P47"].Rules[templates.CategoryFact]).To(HaveLen(2))
		Expect(cfg["P19"].Rules[templates.CategoryFact]).To(HaveLen(1))
	})

	It("honours an explicit symmetric list", func() {
		writeSheet(dir, "P47.csv", sheet(map[string]string{"fact": "$s borders $o"}))
		writeSheet(dir, "P3373.csv", sheet(map[string]string{"fact": "$s is a sibling of $o"}))

		c := templates.NewCompiler(templates.Options{Symmetric: []string{"P3373"}})
		cfg, err := c.CompileDir(dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg["P47"].Rules[templates.CategoryFact]).To(HaveLen(1))
		Expect(cfg["P3373"].Rules[templates.CategoryFact]).To(HaveLen(2))
	})

	It("fails when the directory does not exist", func() {
		_, err := templates.NewCompiler(templates.Options{}).CompileDir(filepath.Join(dir, "missing"))
		Expect(err).To(HaveOccurred())
	})

	It("fails on a malformed sheet", func() {
		writeSheet(dir, "P26.csv", "banner\nfact\nx\n")
		_, err := templates.NewCompiler(templates.Options{}).CompileDir(dir)
		Expect(err).To(HaveOccurred())
		Expect(err.Error()).To(ContainSubstring("P26.csv"))
	})

	It("writes a config that reads back to the same rule sets", func() {
		writeSheet(dir, "P26.csv", sheet(
			map[string]string{"fact": "$s is married to $o", "bool": "Is $s married to $o?", "bool_answer": "yes"},
		))

		cfg, err := templates.NewCompiler(templates.Options{}).CompileDir(dir)
		Expect(err).NotTo(HaveOccurred())

		out := templates.OutputPath(dir, "v1")
		Expect(cfg.WriteFile(out)).To(Succeed())

		var raw map[string]map[string]any
		data, err := os.ReadFile(out)
		Expect(err).NotTo(HaveOccurred())
		Expect(json.Unmarshal(data, &raw)).To(Succeed())
		Expect(raw["P26"]["_subject"]).To(Equal("$s"))
		Expect(raw["P26"]["_object"]).To(Equal("$o"))
		Expect(raw["P26"]["bool"]).To(ConsistOf(
			[]any{"Is $s married to $o?", "yes"},
			[]any{"Is $o married to $s?", "yes"},
		))
		Expect(raw["P26"]["fact"]).To(ConsistOf("$s is married to $o", "$o is married to $s"))

		back, err := templates.ReadConfig(out)
		Expect(err).NotTo(HaveOccurred())
		Expect(back["P26"].Rules).To(Equal(cfg["P26"].Rules))
	})

	It("builds version paths under the configs dir", func() {
		Expect(templates.SourceDir("configs", "v2")).To(Equal(filepath.Join("configs", "for_v2")))
		Expect(templates.OutputPath("configs", "v2")).To(Equal(filepath.Join("configs", "generate_v2.json")))
	})
})
