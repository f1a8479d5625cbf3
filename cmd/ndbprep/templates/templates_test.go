package templatescmder_test

import (
	"bytes"
	"encoding/csv"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"
	"github.com/spf13/cobra"

	"github.com/papercomputeco/ndbprep/cmd/ndbprep/cmdutil"
	templatescmder "github.com/papercomputeco/ndbprep/cmd/ndbprep/templates"
	"github.com/papercomputeco/ndbprep/pkg/templates"
)

func sheet(fact string) string {
	cols := templates.RequiredColumns()

	var b strings.Builder
	b.WriteString("banner\n")
	w := csv.NewWriter(&b)
	Expect(w.Write(cols)).To(Succeed())

	row := make([]string, len(cols))
	for i, c := range cols {
		if c == templates.CategoryFact {
			row[i] = fact
		}
	}
	Expect(w.Write(row)).To(Succeed())
	w.Flush()
	return b.String()
}

func newRoot(stdout, stderr *bytes.Buffer) *cobra.Command {
	root := &cobra.Command{Use: "ndbprep", SilenceUsage: true, SilenceErrors: true}
	cmdutil.AddPersistentFlags(root)
	root.AddCommand(templatescmder.NewTemplatesCmd())
	root.SetOut(stdout)
	root.SetErr(stderr)
	return root
}

var _ = Describe("templates command", func() {
	var (
		stdout, stderr bytes.Buffer
		tmp            string
		configsDir     string
	)

	BeforeEach(func() {
		stdout.Reset()
		stderr.Reset()
		tmp = GinkgoT().TempDir()
		configsDir = filepath.Join(tmp, "configs")

		src := filepath.Join(configsDir, "for_v1")
		Expect(os.MkdirAll(src, 0o755)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(src, "P47.csv"), []byte(sheet("$s borders $o")), 0o644)).To(Succeed())
		Expect(os.WriteFile(filepath.Join(src, "P19.csv"), []byte(sheet("$s was born in $o")), 0o644)).To(Succeed())
	})

	run := func(args ...string) error {
		root := newRoot(&stdout, &stderr)
		root.SetArgs(append([]string{"templates", "--config-dir", filepath.Join(tmp, ".ndbprep"), "--configs-dir", configsDir}, args...))
		return root.Execute()
	}

	It("writes generate_<version>.json", func() {
		Expect(run("v1")).To(Succeed())
		out := filepath.Join(configsDir, "generate_v1.json")
		Expect(stdout.String()).To(ContainSubstring("Compiled 2 relations to " + out))

		cfg, err := templates.ReadConfig(out)
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg).To(HaveKey("P47"))
		Expect(cfg).To(HaveKey("P19"))
		Expect(cfg["P47"].Rules[templates.CategoryFact].Has(templates.Bare("$o borders $s"))).To(BeTrue())
		Expect(cfg["P19"].Rules[templates.CategoryFact].Has(templates.Bare("$o was born in $s"))).To(BeFalse())
	})

	It("honors --symmetric", func() {
		Expect(run("v1", "--symmetric", "P19")).To(Succeed())

		cfg, err := templates.ReadConfig(filepath.Join(configsDir, "generate_v1.json"))
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg["P19"].Rules[templates.CategoryFact].Has(templates.Bare("$o was born in $s"))).To(BeTrue())
		Expect(cfg["P47"].Rules[templates.CategoryFact].Has(templates.Bare("$o borders $s"))).To(BeFalse())
	})

	It("disables swapping with an empty --symmetric", func() {
		Expect(run("v1", "--symmetric", "")).To(Succeed())

		cfg, err := templates.ReadConfig(filepath.Join(configsDir, "generate_v1.json"))
		Expect(err).NotTo(HaveOccurred())
		Expect(cfg["P47"].Rules[templates.CategoryFact].Has(templates.Bare("$o borders $s"))).To(BeFalse())
	})

	It("fails for a missing version", func() {
		err := run("v9")
		Expect(err).To(MatchError(ContainSubstring("reading template dir")))
		Expect(filepath.Join(configsDir, "generate_v9.json")).NotTo(BeAnExistingFile())
	})

	It("requires a version argument", func() {
		Expect(run()).To(HaveOccurred())
	})
})
