package catalog

import (
	"fmt"
	"strings"
)

// Reasons recorded for entries that did not produce an Article.
const (
	ReasonMalformed = "malformed-entry"
	ReasonDuplicate = "title+authors+edition match"
)

// SkippedEntry describes one entry that was not imported.
type SkippedEntry struct {
	Entry  string `json:"entry"`
	Line   int    `json:"linha,omitempty"`
	Reason string `json:"error"`
}

// ImportStats is the result of one batch import. It is returned once per
// call and never persisted.
type ImportStats struct {
	Total           int            `json:"total_entries"`
	ArticlesCreated int            `json:"artigos_criados"`
	EventsCreated   int            `json:"eventos_criados"`
	EditionsCreated int            `json:"edicoes_criadas"`
	Duplicates      int            `json:"artigos_duplicados"`
	Failures        int            `json:"falhas"`
	DuplicateList   []SkippedEntry `json:"duplicados,omitempty"`
	Errors          []SkippedEntry `json:"erros"`
}

// Balanced reports whether every entry was accounted for exactly once.
func (s ImportStats) Balanced() bool {
	return s.ArticlesCreated+s.Duplicates+s.Failures == s.Total
}

// Summary renders the multi-line report shown after an import.
func (s ImportStats) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "Entries processed: %d\n", s.Total)
	fmt.Fprintf(&b, "Articles created: %d\n", s.ArticlesCreated)
	fmt.Fprintf(&b, "Events created: %d\n", s.EventsCreated)
	fmt.Fprintf(&b, "Editions created: %d\n", s.EditionsCreated)
	fmt.Fprintf(&b, "Duplicates skipped: %d\n", s.Duplicates)
	fmt.Fprintf(&b, "Failures: %d", s.Failures)
	for _, e := range s.Errors {
		fmt.Fprintf(&b, "\n  - %s: %s", e.Entry, e.Reason)
	}
	return b.String()
}

// ImportResponse is the body of POST /batch/upload-bibtex.
type ImportResponse struct {
	Message string      `json:"message"`
	Stats   ImportStats `json:"stats"`
}
