package bibtex

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/gst-aqn42/TP1/internal/catalog"
)

const sample = `
% exported from the lab's reference manager
@inproceedings{silva2023,
  title     = {Testing {Microservices} in the Wild},
  author    = {Ana Silva and Jo{\~a}o Souza},
  booktitle = {Anais do XXXVII Simpósio Brasileiro de Engenharia de Software},
  year      = 2023,
  address   = {Campo Grande},
  keywords  = {testing; microservices, empirical study},
  pages     = {10--20},
  doi       = {10.1145/1234}
}

@string{icse = "ICSE"}

@article{lee2021,
  title   = "A Study of {Flaky} Tests",
  author  = "Lee, Kim and M{\"u}ller, Hans",
  journal = "Journal of Systems and Software",
  year    = "2021"
}
`

func parse(t *testing.T, src string) []Result {
	t.Helper()
	return NewParser(nil).ParseAll([]byte(src))
}

func TestParse_ValidEntries(t *testing.T) {
	results := parse(t, sample)
	require.Len(t, results, 2)

	first := results[0]
	require.True(t, first.OK(), "unexpected error: %v", first.Err)
	c := first.Candidate
	assert.Equal(t, "silva2023", c.Key)
	assert.Equal(t, "Testing Microservices in the Wild", c.Title)
	assert.Equal(t, []string{"Ana Silva", "João Souza"}, c.Authors)
	assert.Equal(t, 2023, c.Year)
	assert.Equal(t, "SBES", c.EventCode)
	assert.Equal(t, "Simpósio Brasileiro de Engenharia de Software", c.EventName)
	assert.Equal(t, "Campo Grande", c.Location)
	assert.Equal(t, []string{"testing", "microservices", "empirical study"}, c.Keywords)
	assert.Equal(t, "10-20", c.Pages)
	assert.Equal(t, "10.1145/1234", c.DOI)
	assert.Equal(t, 3, first.Entry.Line)

	second := results[1]
	require.True(t, second.OK(), "unexpected error: %v", second.Err)
	assert.Equal(t, "A Study of Flaky Tests", second.Candidate.Title)
	assert.Equal(t, []string{"Lee, Kim", "Müller, Hans"}, second.Candidate.Authors)
	assert.Equal(t, "JS", second.Candidate.EventCode)
	assert.Equal(t, "Journal of Systems and Software", second.Candidate.EventName)
}

func TestParse_YearValidation(t *testing.T) {
	tests := []struct {
		name string
		year string
		ok   bool
	}{
		{"four digits in range", "2024", true},
		{"lower bound", "1900", true},
		{"upper bound", "2100", true},
		{"five digits", "19999", false},
		{"below range", "1899", false},
		{"above range", "2101", false},
		{"not numeric", "20x4", false},
		{"two digits", "99", false},
		{"missing", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			src := `@inproceedings{k, title={T}, author={A}, booktitle={ICSE}, year={` + tt.year + `}}`
			results := parse(t, src)
			require.Len(t, results, 1)
			assert.Equal(t, tt.ok, results[0].OK())
			if !tt.ok {
				var ee *EntryError
				require.ErrorAs(t, results[0].Err, &ee)
				assert.Contains(t, results[0].Err.Error(), catalog.ReasonMalformed)
			}
		})
	}
}

func TestParse_MissingRequiredFields(t *testing.T) {
	tests := []struct {
		name  string
		src   string
		field string
	}{
		{"title", `@misc{a, author={A}, year=2020, booktitle={ICSE}}`, "title"},
		{"author", `@misc{a, title={T}, year=2020, booktitle={ICSE}}`, "author"},
		{"year", `@misc{a, title={T}, author={A}, booktitle={ICSE}}`, "year"},
		{"venue", `@misc{a, title={T}, author={A}, year=2020}`, "booktitle"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			results := parse(t, tt.src)
			require.Len(t, results, 1)
			var ve catalog.ValidationError
			require.True(t, errors.As(results[0].Err, &ve))
			assert.Equal(t, tt.field, ve.Field)
		})
	}
}

func TestParse_BrokenEntryDoesNotStopBatch(t *testing.T) {
	src := `@inproceedings{broken, title={Unclosed, author={A}, year=2020
@inproceedings{ok, title={Fine}, author={B}, year=2020, booktitle={ICSE}}
@inproceedings{nocomma title={X}}
@article{last, title={Last}, author={C}, year=2019, journal={IEEE Software}}
`
	results := parse(t, src)
	require.Len(t, results, 4)

	assert.False(t, results[0].OK())
	assert.Equal(t, "broken", results[0].Entry.Key)
	assert.True(t, results[1].OK())
	assert.Equal(t, "Fine", results[1].Candidate.Title)
	assert.False(t, results[2].OK())
	assert.True(t, results[3].OK())
	assert.Equal(t, 4, results[3].Entry.Line)
}

func TestParse_IgnoresNonRecords(t *testing.T) {
	src := `@comment{anything {nested} here}
@preamble{"\newcommand{\x}{y}"}
Contact: someone@example.com
@string(acm = "ACM")`
	assert.Empty(t, parse(t, src))
}

func TestParse_Restartable(t *testing.T) {
	seq := NewParser(nil).Parse([]byte(sample))

	var first, second []string
	for r := range seq {
		first = append(first, r.Entry.Key)
	}
	for r := range seq {
		second = append(second, r.Entry.Key)
	}
	assert.Equal(t, []string{"silva2023", "lee2021"}, first)
	assert.Equal(t, first, second)
}

func TestParse_StopsEarly(t *testing.T) {
	count := 0
	for range NewParser(nil).Parse([]byte(sample)) {
		count++
		break
	}
	assert.Equal(t, 1, count)
}

func TestParse_ExplicitEventCode(t *testing.T) {
	src := `@inproceedings{a, title={T}, author={A}, year=2020, sigla={icse}}
@inproceedings{b, title={T}, author={A}, year=2020, sigla={xyz}, booktitle={Some Workshop}}`
	results := parse(t, src)
	require.Len(t, results, 2)

	assert.Equal(t, "ICSE", results[0].Candidate.EventCode)
	assert.Equal(t, "International Conference on Software Engineering", results[0].Candidate.EventName)
	assert.Equal(t, "XYZ", results[1].Candidate.EventCode)
	assert.Equal(t, "Some Workshop", results[1].Candidate.EventName)
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{`{\'E}cole`, "École"},
		{`S{\~a}o Paulo`, "São Paulo"},
		{`M\"uller`, "Müller"},
		{`Fran\c{c}ois`, "François"},
		{`Ba\'{\i}a`, "Baía"},
		{`Research \& Practice`, "Research & Practice"},
		{"  many\n   spaces  ", "many spaces"},
		{`{{Nested}} {Braces}`, "Nested Braces"},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanText(tt.in))
		})
	}
}

func TestSplitAuthors(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want []string
	}{
		{"plain", "Ana Silva and Bruno Lima", []string{"Ana Silva", "Bruno Lima"}},
		{"upper case separator", "Ana Silva AND Bruno Lima", []string{"Ana Silva", "Bruno Lima"}},
		{"mixed case across lines", "Ana Silva\n  And Bruno Lima", []string{"Ana Silva", "Bruno Lima"}},
		{"braced corporate name", "{Barnes and Noble} and Carla Dias", []string{"Barnes and Noble", "Carla Dias"}},
		{"accents", `Jo{\~a}o Souza and M{\"u}ller, Hans`, []string{"João Souza", "Müller, Hans"}},
		{"and inside a word", "Alexander Sandoval and Randa Ng", []string{"Alexander Sandoval", "Randa Ng"}},
		{"trailing separator", "Ana Silva and ", []string{"Ana Silva"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, splitAuthors(tt.in))
		})
	}
}
