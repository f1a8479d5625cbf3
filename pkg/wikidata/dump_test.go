package wikidata_test

import (
	"io"
	"os"
	"path/filepath"
	"strings"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	testutils "github.com/papercomputeco/ndbprep/pkg/utils/test"
	"github.com/papercomputeco/ndbprep/pkg/wikidata"
)

var samplePlain = filepath.Join("testdata", "sample.json")

func readAll(d *wikidata.DumpReader) []string {
	var lines []string
	for {
		line, err := d.Next()
		if err == io.EOF {
			return lines
		}
		Expect(err).NotTo(HaveOccurred())
		lines = append(lines, line)
	}
}

var _ = Describe("DumpReader", func() {
	It("skips the array header and strips line terminators", func() {
		d := wikidata.NewLineReader(strings.NewReader("[\n{\"id\":\"Q1\"},\n{\"id\":\"Q2\"}\n]\n"))
		Expect(readAll(d)).To(Equal([]string{`{"id":"Q1"}`, `{"id":"Q2"}`, "]"}))
		Expect(d.Line()).To(Equal(3))
	})

	It("returns a final line without a newline", func() {
		d := wikidata.NewLineReader(strings.NewReader("[\n{\"id\":\"Q1\"},\n]"))
		Expect(readAll(d)).To(Equal([]string{`{"id":"Q1"}`, "]"}))
	})

	It("ends immediately on an empty stream", func() {
		d := wikidata.NewLineReader(strings.NewReader(""))
		_, err := d.Next()
		Expect(err).To(Equal(io.EOF))
	})

	It("decompresses bzip2 dumps", func() {
		f, err := os.Open(testutils.CompressBzip2(samplePlain, GinkgoT().TempDir()))
		Expect(err).NotTo(HaveOccurred())
		defer f.Close()

		d, err := wikidata.NewDumpReader(f)
		Expect(err).NotTo(HaveOccurred())
		defer d.Close()

		lines := readAll(d)
		Expect(lines).To(HaveLen(5))
		Expect(lines[0]).To(HavePrefix(`{"id":"Q1"`))
		Expect(lines[0]).NotTo(HaveSuffix(","))
		Expect(lines[4]).To(Equal("]"))
	})

	It("reports corrupt bzip2 data", func() {
		d, err := wikidata.NewDumpReader(strings.NewReader("definitely not bzip2"))
		if err == nil {
			_, err = d.Next()
		}
		Expect(err).To(HaveOccurred())
		Expect(err).NotTo(Equal(io.EOF))
	})

	It("opens compressed and plain files by extension", func() {
		compressed := testutils.CompressBzip2(samplePlain, GinkgoT().TempDir())
		for _, path := range []string{samplePlain, compressed} {
			d, err := wikidata.OpenDump(path)
			Expect(err).NotTo(HaveOccurred())
			Expect(readAll(d)).To(HaveLen(5))
			Expect(d.Close()).To(Succeed())
		}
	})

	It("reads the same lines from plain and compressed dumps", func() {
		plain, err := wikidata.OpenDump(samplePlain)
		Expect(err).NotTo(HaveOccurred())
		defer plain.Close()

		compressed, err := wikidata.OpenDump(testutils.CompressBzip2(samplePlain, GinkgoT().TempDir()))
		Expect(err).NotTo(HaveOccurred())
		defer compressed.Close()

		Expect(readAll(compressed)).To(Equal(readAll(plain)))
	})

	It("fails to open a missing file", func() {
		_, err := wikidata.OpenDump(filepath.Join("testdata", "missing.json.bz2"))
		Expect(err).To(HaveOccurred())
	})
})
