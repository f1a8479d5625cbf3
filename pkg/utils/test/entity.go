package testutils

import (
	"encoding/json"

	"github.com/papercomputeco/ndbprep/pkg/wikidata"
)

// NewTestEntity builds an entity with one sitelink and one P31 claim.
func NewTestEntity(id, name string) *wikidata.Entity {
	return &wikidata.Entity{
		WikidataID:    id,
		EnglishName:   name,
		EnglishWiki:   name,
		PropertyTypes: []string{"P31"},
		Properties: map[string][]wikidata.Claim{
			"P31": {{
				Value:      json.RawMessage(`{"entity-type":"item","id":"Q5"}`),
				Qualifiers: []json.RawMessage{json.RawMessage(`[{"property":"P580"}]`)},
			}},
		},
		Sitelinks: []json.RawMessage{
			json.RawMessage(`{"site":"enwiki","title":"` + name + `"}`),
		},
	}
}
