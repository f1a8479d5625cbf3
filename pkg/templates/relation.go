package templates

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Template categories, in sheet column order.
const (
	CategoryFact   = "fact"
	CategoryBool   = "bool"
	CategorySet    = "set"
	CategoryCount  = "count"
	CategoryMin    = "min"
	CategoryMax    = "max"
	CategoryArgmin = "argmin"
	CategoryArgmax = "argmax"
)

// Categories lists every template category.
var Categories = []string{
	CategoryFact,
	CategoryBool,
	CategorySet,
	CategoryCount,
	CategoryMin,
	CategoryMax,
	CategoryArgmin,
	CategoryArgmax,
}

const (
	subjectKey = "_subject"
	objectKey  = "_object"
)

// Relation holds the compiled templates of one Wikidata property. Only
// categories with at least one rule are present in Rules.
type Relation struct {
	Rules map[string]RuleSet

	// Subject and Object are the placeholder markers. They are empty when the
	// sheet had no data rows.
	Subject string
	Object  string
}

// NewRelation returns an empty relation.
func NewRelation() *Relation {
	return &Relation{Rules: make(map[string]RuleSet)}
}

// Add inserts rules under category.
func (r *Relation) Add(category string, rules ...Rule) {
	set, ok := r.Rules[category]
	if !ok {
		set = make(RuleSet)
		r.Rules[category] = set
	}
	set.Add(rules...)
}

// Symmetric returns a copy of r where each category also holds the
// subject/object swapped variant of every rule. Rules without placeholders
// swap onto themselves and are not duplicated.
func (r *Relation) Symmetric() *Relation {
	out := &Relation{
		Rules:   make(map[string]RuleSet, len(r.Rules)),
		Subject: r.Subject,
		Object:  r.Object,
	}

	for category, rules := range r.Rules {
		swapped := make(RuleSet, len(rules))
		for rule := range rules {
			swapped.Add(rule.Swapped())
		}
		out.Rules[category] = rules.Union(swapped)
	}

	return out
}

// MarshalJSON writes categories and markers side by side, as in
// {"fact": [...], "_subject": "$s", "_object": "$o"}.
func (r *Relation) MarshalJSON() ([]byte, error) {
	out := make(map[string]any, len(r.Rules)+2)
	for category, rules := range r.Rules {
		out[category] = rules
	}
	if r.Subject != "" {
		out[subjectKey] = r.Subject
	}
	if r.Object != "" {
		out[objectKey] = r.Object
	}
	return json.Marshal(out)
}

// UnmarshalJSON reads the layout written by MarshalJSON.
func (r *Relation) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	rel := NewRelation()
	for key, value := range raw {
		switch {
		case key == subjectKey:
			if err := json.Unmarshal(value, &rel.Subject); err != nil {
				return fmt.Errorf("decoding %s: %w", key, err)
			}
		case key == objectKey:
			if err := json.Unmarshal(value, &rel.Object); err != nil {
				return fmt.Errorf("decoding %s: %w", key, err)
			}
		case strings.HasPrefix(key, "_"):
			// unknown marker, ignored
		default:
			var set RuleSet
			if err := json.Unmarshal(value, &set); err != nil {
				return fmt.Errorf("decoding category %s: %w", key, err)
			}
			rel.Rules[key] = set
		}
	}

	*r = *rel
	return nil
}
