// Package templates compiles the per-relation CSV template sheets into the
// JSON generation config consumed by the database generator.
package templates

import (
	"cmp"
	"encoding/json"
	"fmt"
	"slices"
	"strings"
)

const (
	// SubjectMarker is the subject placeholder used in every template.
	SubjectMarker = "$s"

	// ObjectMarker is the object placeholder used in every template.
	ObjectMarker = "$o"

	swapMarker = "$tmp_s"
)

// Rule is one template. Bare rules (facts) are a single string; paired rules
// carry a projection or answer alongside the question text.
type Rule struct {
	Text       string
	Projection string
	Pair       bool
}

// Bare returns a single-string rule.
func Bare(text string) Rule {
	return Rule{Text: text}
}

// Paired returns a two-element rule.
func Paired(text, projection string) Rule {
	return Rule{Text: text, Projection: projection, Pair: true}
}

// Swapped returns the rule with subject and object placeholders exchanged in
// every element.
func (r Rule) Swapped() Rule {
	r.Text = SwapSubjectObject(r.Text)
	if r.Pair {
		r.Projection = SwapSubjectObject(r.Projection)
	}
	return r
}

// MarshalJSON encodes bare rules as a string and paired rules as a two
// element array.
func (r Rule) MarshalJSON() ([]byte, error) {
	if r.Pair {
		return json.Marshal([2]string{r.Text, r.Projection})
	}
	return json.Marshal(r.Text)
}

// UnmarshalJSON accepts either encoding produced by MarshalJSON.
func (r *Rule) UnmarshalJSON(data []byte) error {
	var text string
	if err := json.Unmarshal(data, &text); err == nil {
		*r = Bare(text)
		return nil
	}

	var pair []string
	if err := json.Unmarshal(data, &pair); err != nil {
		return fmt.Errorf("rule must be a string or a pair: %w", err)
	}
	if len(pair) != 2 {
		return fmt.Errorf("rule pair must have 2 elements, got %d", len(pair))
	}
	*r = Paired(pair[0], pair[1])
	return nil
}

// SwapSubjectObject exchanges $s and $o. The subject is parked on a temporary
// token first so the two replacements cannot collide.
func SwapSubjectObject(statement string) string {
	statement = strings.ReplaceAll(statement, SubjectMarker, swapMarker)
	statement = strings.ReplaceAll(statement, ObjectMarker, SubjectMarker)
	return strings.ReplaceAll(statement, swapMarker, ObjectMarker)
}

// RuleSet is a set of rules keyed on their full content.
type RuleSet map[Rule]struct{}

// Add inserts rules into the set.
func (s RuleSet) Add(rules ...Rule) {
	for _, r := range rules {
		s[r] = struct{}{}
	}
}

// Has reports whether r is in the set.
func (s RuleSet) Has(r Rule) bool {
	_, ok := s[r]
	return ok
}

// Union returns a new set holding the rules of s and other.
func (s RuleSet) Union(other RuleSet) RuleSet {
	out := make(RuleSet, len(s)+len(other))
	for r := range s {
		out[r] = struct{}{}
	}
	for r := range other {
		out[r] = struct{}{}
	}
	return out
}

// Sorted returns the rules in a stable order. The order carries no meaning.
func (s RuleSet) Sorted() []Rule {
	rules := make([]Rule, 0, len(s))
	for r := range s {
		rules = append(rules, r)
	}
	slices.SortFunc(rules, func(a, b Rule) int {
		if a.Pair != b.Pair {
			if a.Pair {
				return 1
			}
			return -1
		}
		return cmp.Or(cmp.Compare(a.Text, b.Text), cmp.Compare(a.Projection, b.Projection))
	})
	return rules
}

// MarshalJSON encodes the set as a list.
func (s RuleSet) MarshalJSON() ([]byte, error) {
	return json.Marshal(s.Sorted())
}

// UnmarshalJSON decodes a list of rules, collapsing duplicates.
func (s *RuleSet) UnmarshalJSON(data []byte) error {
	var rules []Rule
	if err := json.Unmarshal(data, &rules); err != nil {
		return err
	}
	set := make(RuleSet, len(rules))
	set.Add(rules...)
	*s = set
	return nil
}
