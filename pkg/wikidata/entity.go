// Package wikidata reads Wikidata JSON dumps and projects each entity into
// the record shape stored by the indexer.
package wikidata

import (
	"bytes"
	"encoding/json"
	"fmt"
	"sort"
)

// Entity is the indexed projection of one Wikidata item.
type Entity struct {
	WikidataID    string             `json:"wikidata_id"`
	EnglishName   string             `json:"english_name"`
	EnglishWiki   string             `json:"english_wiki"`
	PropertyTypes []string           `json:"property_types"`
	Properties    map[string][]Claim `json:"properties"`
	Sitelinks     []json.RawMessage  `json:"sitelinks"`
}

// Claim is one statement for a property: the main snak's data value and the
// qualifier snak lists. Both are kept as raw JSON. Qualifiers is nil when the
// statement has none.
type Claim struct {
	Value      json.RawMessage
	Qualifiers []json.RawMessage
}

var jsonNull = json.RawMessage("null")

// MarshalJSON encodes the claim as a [value, qualifiers] pair.
func (c Claim) MarshalJSON() ([]byte, error) {
	value := c.Value
	if len(value) == 0 {
		value = jsonNull
	}

	var qualifiers any
	if c.Qualifiers != nil {
		qualifiers = c.Qualifiers
	}

	return json.Marshal([2]any{value, qualifiers})
}

// UnmarshalJSON decodes a [value, qualifiers] pair.
func (c *Claim) UnmarshalJSON(data []byte) error {
	var pair []json.RawMessage
	if err := json.Unmarshal(data, &pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("claim: expected 2 elements, got %d", len(pair))
	}

	c.Value = nil
	if !isNull(pair[0]) {
		c.Value = pair[0]
	}

	c.Qualifiers = nil
	if !isNull(pair[1]) {
		if err := json.Unmarshal(pair[1], &c.Qualifiers); err != nil {
			return fmt.Errorf("claim qualifiers: %w", err)
		}
	}
	return nil
}

func isNull(raw json.RawMessage) bool {
	return len(raw) == 0 || bytes.Equal(bytes.TrimSpace(raw), jsonNull)
}

// objectMap is a JSON object decoded lazily. Wikidata serializes some empty
// objects as [], which decodes to an empty map.
type objectMap map[string]json.RawMessage

func (m *objectMap) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if isNull(trimmed) {
		return nil
	}
	if bytes.Equal(trimmed, []byte("[]")) {
		*m = objectMap{}
		return nil
	}

	var raw map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &raw); err != nil {
		return err
	}
	*m = raw
	return nil
}

// sortedKeys returns the map keys in ascending order.
func (m objectMap) sortedKeys() []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

type rawItem struct {
	ID        string    `json:"id"`
	Labels    objectMap `json:"labels"`
	Sitelinks objectMap `json:"sitelinks"`
	Claims    objectMap `json:"claims"`
}

type rawStatement struct {
	Mainsnak struct {
		Datavalue *struct {
			Value json.RawMessage `json:"value"`
		} `json:"datavalue"`
	} `json:"mainsnak"`
	Qualifiers objectMap `json:"qualifiers"`
}

// DecodeError reports a dump line that is not a valid entity document.
type DecodeError struct {
	Line int
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("line %d: decoding entity: %v", e.Line, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// Index decodes one dump line and projects it into an Entity. Missing labels,
// sitelinks or claims produce empty fields.
func Index(line string) (*Entity, error) {
	var item rawItem
	if err := json.Unmarshal([]byte(line), &item); err != nil {
		return nil, err
	}

	e := &Entity{
		WikidataID:    item.ID,
		PropertyTypes: []string{},
		Properties:    map[string][]Claim{},
		Sitelinks:     []json.RawMessage{},
	}

	if raw, ok := item.Labels["en"]; ok {
		var label struct {
			Value string `json:"value"`
		}
		if err := json.Unmarshal(raw, &label); err != nil {
			return nil, fmt.Errorf("labels.en: %w", err)
		}
		e.EnglishName = label.Value
	}

	for _, site := range item.Sitelinks.sortedKeys() {
		e.Sitelinks = append(e.Sitelinks, item.Sitelinks[site])
	}
	if raw, ok := item.Sitelinks["enwiki"]; ok {
		var link struct {
			Title string `json:"title"`
		}
		if err := json.Unmarshal(raw, &link); err != nil {
			return nil, fmt.Errorf("sitelinks.enwiki: %w", err)
		}
		e.EnglishWiki = link.Title
	}

	for _, property := range item.Claims.sortedKeys() {
		var statements []rawStatement
		if err := json.Unmarshal(item.Claims[property], &statements); err != nil {
			return nil, fmt.Errorf("claims.%s: %w", property, err)
		}

		claims := make([]Claim, 0, len(statements))
		for _, st := range statements {
			claims = append(claims, st.claim())
		}

		e.PropertyTypes = append(e.PropertyTypes, property)
		e.Properties[property] = claims
	}

	return e, nil
}

func (st rawStatement) claim() Claim {
	var c Claim
	if st.Mainsnak.Datavalue != nil && !isNull(st.Mainsnak.Datavalue.Value) {
		c.Value = st.Mainsnak.Datavalue.Value
	}
	if st.Qualifiers != nil {
		c.Qualifiers = make([]json.RawMessage, 0, len(st.Qualifiers))
		for _, k := range st.Qualifiers.sortedKeys() {
			c.Qualifiers = append(c.Qualifiers, st.Qualifiers[k])
		}
	}
	return c
}
