// Package tokenizer registers the separator and end-of-sequence markers that
// NeuralDB examples rely on as special tokens.
package tokenizer

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// AdditionalSpecialTokensKey is the tokenizer key that holds extra special tokens.
const AdditionalSpecialTokensKey = "additional_special_tokens"

// SpecialTokensMapFile is the file name a tokenizer directory keeps its special
// tokens in.
const SpecialTokensMapFile = "special_tokens_map.json"

// SpecialTokens are registered in this order.
var SpecialTokens = []string{"<sep>", "<SEP>", "<eos>", "[SEP]"}

// Registrar is a tokenizer that accepts new special tokens. It reports how
// many tokens were actually added.
type Registrar interface {
	AddSpecialTokens(tokens map[string][]string) (int, error)
}

// Prepare registers SpecialTokens with r.
func Prepare(r Registrar) (int, error) {
	tokens := make([]string, len(SpecialTokens))
	copy(tokens, SpecialTokens)

	added, err := r.AddSpecialTokens(map[string][]string{
		AdditionalSpecialTokensKey: tokens,
	})
	if err != nil {
		return 0, fmt.Errorf("registering special tokens: %w", err)
	}
	return added, nil
}

// WriteSpecialTokensMap merges SpecialTokens into the special tokens map of
// the tokenizer in dir.
func WriteSpecialTokensMap(dir string) (int, error) {
	return Prepare(&FileRegistrar{Dir: dir})
}

// FileRegistrar implements Registrar over the special_tokens_map.json file of
// a tokenizer directory. Keys it does not touch are written back unchanged.
type FileRegistrar struct {
	Dir string
}

// Path is the location of the special tokens map.
func (f *FileRegistrar) Path() string {
	return filepath.Join(f.Dir, SpecialTokensMapFile)
}

// AddSpecialTokens appends tokens to each list key. Tokens already present are
// skipped, so existing entries keep their order and position.
func (f *FileRegistrar) AddSpecialTokens(tokens map[string][]string) (int, error) {
	doc, err := f.load()
	if err != nil {
		return 0, err
	}

	added := 0
	for key, values := range tokens {
		existing, err := decodeTokenList(doc[key])
		if err != nil {
			return 0, fmt.Errorf("%s in %s: %w", key, f.Path(), err)
		}

		seen := make(map[string]struct{}, len(existing))
		for _, e := range existing {
			seen[e.content] = struct{}{}
		}

		merged := make([]json.RawMessage, 0, len(existing)+len(values))
		for _, e := range existing {
			merged = append(merged, e.raw)
		}
		for _, v := range values {
			if _, ok := seen[v]; ok {
				continue
			}
			seen[v] = struct{}{}

			raw, err := json.Marshal(v)
			if err != nil {
				return 0, err
			}
			merged = append(merged, raw)
			added++
		}

		raw, err := json.Marshal(merged)
		if err != nil {
			return 0, err
		}
		doc[key] = raw
	}

	if err := f.save(doc); err != nil {
		return 0, err
	}
	return added, nil
}

func (f *FileRegistrar) load() (map[string]json.RawMessage, error) {
	data, err := os.ReadFile(f.Path())
	if errors.Is(err, os.ErrNotExist) {
		return map[string]json.RawMessage{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("reading special tokens map: %w", err)
	}

	doc := map[string]json.RawMessage{}
	if err := json.Unmarshal(data, &doc); err != nil {
		return nil, fmt.Errorf("parsing %s: %w", f.Path(), err)
	}
	if doc == nil {
		doc = map[string]json.RawMessage{}
	}
	return doc, nil
}

func (f *FileRegistrar) save(doc map[string]json.RawMessage) error {
	if err := os.MkdirAll(f.Dir, 0o755); err != nil {
		return fmt.Errorf("creating tokenizer directory: %w", err)
	}

	data, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return fmt.Errorf("encoding special tokens map: %w", err)
	}
	data = append(data, '\n')

	if err := os.WriteFile(f.Path(), data, 0o644); err != nil {
		return fmt.Errorf("writing special tokens map: %w", err)
	}
	return nil
}

type listedToken struct {
	content string
	raw     json.RawMessage
}

// decodeTokenList reads a token list whose entries are either plain strings or
// added-token objects with a "content" field.
func decodeTokenList(raw json.RawMessage) ([]listedToken, error) {
	if len(raw) == 0 {
		return nil, nil
	}

	var entries []json.RawMessage
	if err := json.Unmarshal(raw, &entries); err != nil {
		return nil, fmt.Errorf("expected a list: %w", err)
	}

	tokens := make([]listedToken, 0, len(entries))
	for _, entry := range entries {
		var s string
		if err := json.Unmarshal(entry, &s); err == nil {
			tokens = append(tokens, listedToken{content: s, raw: entry})
			continue
		}

		var obj struct {
			Content *string `json:"content"`
		}
		if err := json.Unmarshal(entry, &obj); err != nil || obj.Content == nil {
			return nil, fmt.Errorf("unsupported token entry %s", entry)
		}
		tokens = append(tokens, listedToken{content: *obj.Content, raw: entry})
	}
	return tokens, nil
}
