package ndb

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
)

// WriteJSONL writes one [state, action, label] array per line.
func WriteJSONL(w io.Writer, examples []Example) error {
	bw := bufio.NewWriter(w)
	enc := json.NewEncoder(bw)
	enc.SetEscapeHTML(false)

	for i, ex := range examples {
		if err := enc.Encode(ex); err != nil {
			return fmt.Errorf("encoding example %d: %w", i, err)
		}
	}

	return bw.Flush()
}

// Stats summarizes a generated dataset.
type Stats struct {
	Examples  int
	Positives int
	Negatives int
	EOS       int
}

// Tally counts labels and <eos> actions across examples.
func Tally(examples []Example) Stats {
	s := Stats{Examples: len(examples)}
	for _, ex := range examples {
		if ex.Label == LabelPositive {
			s.Positives++
		} else {
			s.Negatives++
		}
		if ex.Action == EOS {
			s.EOS++
		}
	}
	return s
}

// Summary returns a human-readable summary of the dataset.
func (s Stats) Summary() string {
	return fmt.Sprintf("Generated %d examples: %d positive, %d negative (%d <eos> actions)",
		s.Examples, s.Positives, s.Negatives, s.EOS)
}
