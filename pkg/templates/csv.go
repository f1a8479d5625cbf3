package templates

import (
	"bufio"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"slices"
	"strings"
)

// projectionSuffix names the column paired with each non-fact category.
const projectionSuffix = "_projection"

const boolAnswerColumn = "bool_answer"

// truthy lists the bool_answer values that keep a bool template.
var truthy = []string{"true", "t", "1", "yes", "y"}

// ColumnError reports a template sheet missing a required column.
type ColumnError struct {
	Column string
}

func (e ColumnError) Error() string {
	return "missing template column: " + e.Column
}

// pairedCategories carry a <category>_projection column.
var pairedCategories = []string{
	CategorySet,
	CategoryCount,
	CategoryMin,
	CategoryMax,
	CategoryArgmin,
	CategoryArgmax,
}

// RequiredColumns returns every header column a template sheet must carry.
func RequiredColumns() []string {
	cols := []string{CategoryFact, CategoryBool, boolAnswerColumn}
	for _, category := range pairedCategories {
		cols = append(cols, category, category+projectionSuffix)
	}
	return cols
}

// ReadFile parses a template sheet from path.
func ReadFile(path string) (*Relation, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	rel, err := ReadCSV(f)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", path, err)
	}
	return rel, nil
}

// ReadCSV parses a template sheet. The first line is a banner above the
// header and is skipped. Identical templates collapse to one rule.
func ReadCSV(r io.Reader) (*Relation, error) {
	br := bufio.NewReader(r)
	if _, err := br.ReadString('\n'); err != nil {
		if errors.Is(err, io.EOF) {
			return NewRelation(), nil
		}
		return nil, err
	}

	reader := csv.NewReader(br)

	header, err := reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return NewRelation(), nil
		}
		return nil, fmt.Errorf("reading header: %w", err)
	}

	index := make(map[string]int, len(header))
	for i, name := range header {
		index[name] = i
	}
	for _, col := range RequiredColumns() {
		if _, ok := index[col]; !ok {
			return nil, ColumnError{Column: col}
		}
	}

	rel := NewRelation()
	for {
		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}

		row := func(col string) string { return record[index[col]] }
		addRow(rel, row)

		rel.Subject = SubjectMarker
		rel.Object = ObjectMarker
	}

	return rel, nil
}

func addRow(rel *Relation, row func(string) string) {
	if fact := row(CategoryFact); fact != "" {
		rel.Add(CategoryFact, Bare(fact))
	}

	if q := row(CategoryBool); q != "" {
		answer := row(boolAnswerColumn)
		if slices.Contains(truthy, strings.ToLower(answer)) {
			rel.Add(CategoryBool, Paired(q, answer))
		}
	}

	for _, category := range pairedCategories {
		if q := row(category); q != "" {
			rel.Add(category, Paired(q, row(category+projectionSuffix)))
		}
	}
}
