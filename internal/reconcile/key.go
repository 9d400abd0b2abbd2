package reconcile

import (
	"slices"
	"strings"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"
)

// Normalize folds case and compatibility forms and collapses whitespace,
// so that visually identical strings compare equal.
func Normalize(s string) string {
	s = cases.Fold().String(norm.NFKC.String(s))
	return strings.Join(strings.Fields(s), " ")
}

// DedupKey identifies an Article within an Edition. The author list is
// treated as a set: order and repeated names do not change the key.
func DedupKey(title string, authors []string, editionID string) string {
	names := make([]string, 0, len(authors))
	for _, a := range authors {
		if n := Normalize(a); n != "" {
			names = append(names, n)
		}
	}
	slices.Sort(names)
	names = slices.Compact(names)

	var b strings.Builder
	b.WriteString(Normalize(title))
	b.WriteByte(0x1f)
	b.WriteString(strings.Join(names, "\x1e"))
	b.WriteByte(0x1f)
	b.WriteString(editionID)
	return b.String()
}
