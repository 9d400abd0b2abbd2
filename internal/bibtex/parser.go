// Package bibtex turns BibTeX-like batch files into normalized import
// candidates. Broken entries are reported one by one and never stop the
// rest of the file from being read.
package bibtex

import (
	"fmt"
	"iter"
	"strconv"
	"strings"

	"github.com/gst-aqn42/TP1/internal/catalog"
)

// Candidate is a normalized record ready for reconciliation.
type Candidate struct {
	Key              string
	Title            string
	Authors          []string
	Year             int
	EventCode        string
	EventName        string
	EventDescription string
	Location         string
	Abstract         string
	Keywords         []string
	Pages            string
	DOI              string
}

// Result is one parsed entry: a Candidate, or the reason it was rejected.
type Result struct {
	Entry     Entry
	Candidate Candidate
	Err       error // *EntryError when the entry is malformed
}

// OK reports whether the entry produced a Candidate.
func (r Result) OK() bool { return r.Err == nil }

// Label identifies the entry in reports: its key, or its line.
func (r Result) Label() string {
	if r.Entry.Key != "" {
		return r.Entry.Key
	}
	return fmt.Sprintf("line %d", r.Entry.Line)
}

// EntryError reports a malformed entry.
type EntryError struct {
	Key  string
	Line int
	Err  error
}

func (e *EntryError) Error() string {
	return fmt.Sprintf("%s: %v", catalog.ReasonMalformed, e.Err)
}

func (e *EntryError) Unwrap() error { return e.Err }

// Parser converts raw batch files into Candidates.
type Parser struct {
	venues *Venues
}

// NewParser creates a parser resolving venue names with venues. A nil
// catalogue uses DefaultVenues.
func NewParser(venues *Venues) *Parser {
	if venues == nil {
		venues = DefaultVenues()
	}
	return &Parser{venues: venues}
}

// Parse returns the entries of src as a lazy sequence. The sequence is
// finite and may be ranged over any number of times.
func (p *Parser) Parse(src []byte) iter.Seq[Result] {
	return func(yield func(Result) bool) {
		scanEntries(src, func(e Entry) bool {
			return yield(p.convert(e))
		})
	}
}

// ParseAll collects every result of Parse.
func (p *Parser) ParseAll(src []byte) []Result {
	var out []Result
	for r := range p.Parse(src) {
		out = append(out, r)
	}
	return out
}

func (p *Parser) convert(e Entry) Result {
	res := Result{Entry: e}
	fail := func(err error) Result {
		res.Err = &EntryError{Key: e.Key, Line: e.Line, Err: err}
		return res
	}
	if e.Err != nil {
		return fail(e.Err)
	}

	title := cleanText(e.Fields["title"])
	if title == "" {
		return fail(catalog.Required("title"))
	}
	authors := splitAuthors(e.Fields["author"])
	if len(authors) == 0 {
		return fail(catalog.Required("author"))
	}
	year, err := ParseYear(e.Fields["year"])
	if err != nil {
		return fail(err)
	}

	code := cleanText(firstOf(e.Fields, "sigla", "eventcode"))
	venue := cleanText(firstOf(e.Fields, "booktitle", "journal"))
	if code == "" && venue == "" {
		return fail(catalog.Required("booktitle"))
	}
	c := Candidate{
		Key:      e.Key,
		Title:    title,
		Authors:  authors,
		Year:     year,
		Location: cleanText(firstOf(e.Fields, "address", "location")),
		Abstract: cleanText(e.Fields["abstract"]),
		Keywords: splitKeywords(e.Fields["keywords"]),
		Pages:    cleanText(e.Fields["pages"]),
		DOI:      strings.TrimSpace(strings.Trim(e.Fields["doi"], "{}")),
	}
	switch {
	case code != "":
		c.EventCode, c.EventName = strings.ToUpper(code), venue
		if known, ok := p.venues.Lookup(code); ok {
			c.EventCode, c.EventName, c.EventDescription = known.Code, known.Name, known.Description
		}
		if c.EventName == "" {
			c.EventName = c.EventCode
		}
	default:
		c.EventCode, c.EventName, c.EventDescription = p.venues.Resolve(venue)
	}
	if kw := e.Fields["keyword"]; len(c.Keywords) == 0 && kw != "" {
		c.Keywords = splitKeywords(kw)
	}
	res.Candidate = c
	return res
}

// ParseYear accepts exactly four digits within [catalog.MinYear, catalog.MaxYear].
func ParseYear(raw string) (int, error) {
	s := strings.TrimSpace(strings.Trim(strings.TrimSpace(raw), "{}"))
	if s == "" {
		return 0, catalog.Required("year")
	}
	invalid := catalog.ValidationError{Field: "year", Value: s, Message: "invalid year"}
	if len(s) != 4 {
		return 0, invalid
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0, invalid
		}
	}
	y, _ := strconv.Atoi(s)
	if y < catalog.MinYear || y > catalog.MaxYear {
		return 0, invalid
	}
	return y, nil
}

func firstOf(fields map[string]string, names ...string) string {
	for _, n := range names {
		if v := strings.TrimSpace(fields[n]); v != "" {
			return v
		}
	}
	return ""
}
