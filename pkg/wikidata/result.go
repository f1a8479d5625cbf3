package wikidata

import "fmt"

// Result summarizes an indexing run.
type Result struct {
	Lines   int
	Indexed int
	Skipped int
	Batches int
}

// Summary renders the result for the CLI.
func (r Result) Summary() string {
	return fmt.Sprintf("Indexed %d entities in %d batches (%d lines read, %d skipped)",
		r.Indexed, r.Batches, r.Lines, r.Skipped)
}
