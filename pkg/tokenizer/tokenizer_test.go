package tokenizer_test

import (
	"encoding/json"
	"errors"
	"os"
	"path/filepath"

	. "github.com/onsi/ginkgo/v2"
	. "github.com/onsi/gomega"

	"github.com/papercomputeco/ndbprep/pkg/tokenizer"
)

type recordingRegistrar struct {
	calls []map[string][]string
	err   error
}

func (r *recordingRegistrar) AddSpecialTokens(tokens map[string][]string) (int, error) {
	if r.err != nil {
		return 0, r.err
	}
	r.calls = append(r.calls, tokens)
	return len(tokens[tokenizer.AdditionalSpecialTokensKey]), nil
}

func readMap(path string) map[string]any {
	data, err := os.ReadFile(path)
	Expect(err).NotTo(HaveOccurred())

	var doc map[string]any
	Expect(json.Unmarshal(data, &doc)).To(Succeed())
	return doc
}

var _ = Describe("Prepare", func() {
	It("registers the four markers as additional special tokens", func() {
		r := &recordingRegistrar{}
		added, err := tokenizer.Prepare(r)

		Expect(err).NotTo(HaveOccurred())
		Expect(added).To(Equal(4))
		Expect(r.calls).To(HaveLen(1))
		Expect(r.calls[0]).To(Equal(map[string][]string{
			"additional_special_tokens": {"<sep>", "<SEP>", "<eos>", "[SEP]"},
		}))
	})

	It("does not let a registrar mutate SpecialTokens", func() {
		r := &recordingRegistrar{}
		_, err := tokenizer.Prepare(r)
		Expect(err).NotTo(HaveOccurred())

		r.calls[0][tokenizer.AdditionalSpecialTokensKey][0] = "changed"
		Expect(tokenizer.SpecialTokens[0]).To(Equal("<sep>"))
	})

	It("wraps registrar errors", func() {
		_, err := tokenizer.Prepare(&recordingRegistrar{err: errors.New("frozen vocab")})
		Expect(err).To(MatchError(ContainSubstring("registering special tokens")))
		Expect(err).To(MatchError(ContainSubstring("frozen vocab")))
	})
})

var _ = Describe("WriteSpecialTokensMap", func() {
	var dir string

	BeforeEach(func() {
		dir = GinkgoT().TempDir()
	})

	It("creates the file when the directory has none", func() {
		added, err := tokenizer.WriteSpecialTokensMap(dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(added).To(Equal(4))

		doc := readMap(filepath.Join(dir, tokenizer.SpecialTokensMapFile))
		Expect(doc).To(HaveKeyWithValue("additional_special_tokens",
			[]any{"<sep>", "<SEP>", "<eos>", "[SEP]"}))
	})

	It("creates a missing directory", func() {
		nested := filepath.Join(dir, "model", "tokenizer")
		_, err := tokenizer.WriteSpecialTokensMap(nested)
		Expect(err).NotTo(HaveOccurred())
		Expect(filepath.Join(nested, tokenizer.SpecialTokensMapFile)).To(BeARegularFile())
	})

	It("keeps other keys and existing tokens first", func() {
		existing := `{
  "bos_token": "<s>",
  "pad_token": {"content": "<pad>", "lstrip": false},
  "additional_special_tokens": ["<extra>", {"content": "<eos>", "special": true}]
}`
		path := filepath.Join(dir, tokenizer.SpecialTokensMapFile)
		Expect(os.WriteFile(path, []byte(existing), 0o644)).To(Succeed())

		added, err := tokenizer.WriteSpecialTokensMap(dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(added).To(Equal(3))

		doc := readMap(path)
		Expect(doc).To(HaveKeyWithValue("bos_token", "<s>"))
		Expect(doc).To(HaveKeyWithValue("pad_token", HaveKeyWithValue("content", "<pad>")))
		Expect(doc["additional_special_tokens"]).To(Equal([]any{
			"<extra>",
			map[string]any{"content": "<eos>", "special": true},
			"<sep>",
			"<SEP>",
			"[SEP]",
		}))
	})

	It("is idempotent", func() {
		_, err := tokenizer.WriteSpecialTokensMap(dir)
		Expect(err).NotTo(HaveOccurred())

		added, err := tokenizer.WriteSpecialTokensMap(dir)
		Expect(err).NotTo(HaveOccurred())
		Expect(added).To(BeZero())

		doc := readMap(filepath.Join(dir, tokenizer.SpecialTokensMapFile))
		Expect(doc["additional_special_tokens"]).To(HaveLen(4))
	})

	It("rejects a malformed map", func() {
		path := filepath.Join(dir, tokenizer.SpecialTokensMapFile)
		Expect(os.WriteFile(path, []byte("{not json"), 0o644)).To(Succeed())

		_, err := tokenizer.WriteSpecialTokensMap(dir)
		Expect(err).To(MatchError(ContainSubstring("parsing")))
	})

	It("rejects a token list that is not a list", func() {
		path := filepath.Join(dir, tokenizer.SpecialTokensMapFile)
		Expect(os.WriteFile(path, []byte(`{"additional_special_tokens": "<sep>"}`), 0o644)).To(Succeed())

		_, err := tokenizer.WriteSpecialTokensMap(dir)
		Expect(err).To(MatchError(ContainSubstring("expected a list")))
	})
})
