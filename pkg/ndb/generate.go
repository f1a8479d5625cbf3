package ndb

import (
	"fmt"
	"slices"
)

// CreateDataset derives the training examples for every query of every
// database, preserving input order. Nothing is deduplicated: the same
// (state, action) pair can appear several times, with different labels when
// two gold groups of a query overlap.
func CreateDataset(dbs []Database) ([]Example, error) {
	var dataset []Example
	for di, db := range dbs {
		for qi, q := range db.Queries {
			examples, err := QueryExamples(db.Facts, q)
			if err != nil {
				return nil, &QueryError{Database: di, Query: qi, Err: err}
			}
			dataset = append(dataset, examples...)
		}
	}
	return dataset, nil
}

// QueryExamples derives the examples for a single query over facts.
//
// The initial state is the query alone. Stopping there, or picking a fact
// outside the gold groups, is labeled negative; picking any gold fact is
// labeled positive. Each gold group then contributes its continuation: for a two hop group
// both hop orders are labeled, and the state with the group completed is
// labeled positive for <eos> and negative for every visible fact.
func QueryExamples(facts []string, q Query) ([]Example, error) {
	visible, err := queryContext(facts, q.Height)
	if err != nil {
		return nil, err
	}

	if err := validateGroups(q.Facts, len(visible)); err != nil {
		return nil, err
	}

	g := &generator{query: q.Query, context: visible}
	g.initial(flatten(q.Facts))
	for _, group := range q.Facts {
		g.group(group)
	}

	return g.examples, nil
}

// queryContext returns the facts visible at height. A height of -1 sees no
// facts and a height past the last fact sees every fact.
func queryContext(facts []string, height int) ([]string, error) {
	if height < -1 {
		return nil, fmt.Errorf("%w: %d", ErrNegativeHeight, height)
	}
	end := min(height+1, len(facts))
	return facts[:end], nil
}

func validateGroups(groups []FactGroup, size int) error {
	for gi, group := range groups {
		if len(group) != 1 && len(group) != 2 {
			return fmt.Errorf("group %d: %w, got %d", gi, ErrGroupSize, len(group))
		}
		for _, idx := range group {
			if idx < 0 || idx >= size {
				return fmt.Errorf("group %d: %w: index %d, context holds %d facts", gi, ErrFactIndex, idx, size)
			}
		}
	}
	return nil
}

func flatten(groups []FactGroup) map[int]struct{} {
	flat := make(map[int]struct{})
	for _, group := range groups {
		for _, idx := range group {
			flat[idx] = struct{}{}
		}
	}
	return flat
}

type generator struct {
	query    string
	context  []string
	examples []Example
}

func (g *generator) emit(state []string, action string, label int) {
	g.examples = append(g.examples, Example{
		State:  slices.Clone(state),
		Action: action,
		Label:  label,
	})
}

func (g *generator) initial(gold map[int]struct{}) {
	state := []string{g.query}

	g.emit(state, EOS, LabelNegative)

	for i, fact := range g.context {
		if _, ok := gold[i]; !ok {
			g.emit(state, fact, LabelNegative)
		}
	}

	for i, fact := range g.context {
		if _, ok := gold[i]; ok {
			g.emit(state, fact, LabelPositive)
		}
	}
}

func (g *generator) group(group FactGroup) {
	var state []string
	if len(group) == 1 {
		state = []string{g.query, g.context[group[0]]}
	} else {
		first, second := group[0], group[1]
		g.hop(first, second)
		g.hop(second, first)
		state = []string{g.query, g.context[first], g.context[second]}
	}

	// The terminal negatives cover the whole context, including the facts
	// of the group itself.
	g.emit(state, EOS, LabelPositive)
	for _, fact := range g.context {
		g.emit(state, fact, LabelNegative)
	}
}

// hop labels the step from one gold fact of a pair to its partner.
func (g *generator) hop(from, to int) {
	state := []string{g.query, g.context[from]}

	g.emit(state, g.context[to], LabelPositive)
	for i, fact := range g.context {
		if i != to {
			g.emit(state, fact, LabelNegative)
		}
	}
}
